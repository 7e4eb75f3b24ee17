package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"TopicCurator/internal/domain"
	"TopicCurator/internal/ports"
)

// Memory is an in-process store implementing the same ports as
// Postgres. It backs DSN-less runs and tests.
type Memory struct {
	mu       sync.Mutex
	topics   []domain.Topic
	memories map[string]domain.TopicMemory
	pending  map[string]domain.PendingProposal
	accepted []map[string]string
	rejected []map[string]string
	now      func() time.Time
}

var _ ports.TopicStore = (*Memory)(nil)
var _ ports.MemoryStore = (*Memory)(nil)
var _ ports.PendingStore = (*Memory)(nil)
var _ ports.DecisionLog = (*Memory)(nil)

// NewMemory builds an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		memories: map[string]domain.TopicMemory{},
		pending:  map[string]domain.PendingProposal{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TopicsByVertical returns all topics registered under a vertical.
func (m *Memory) TopicsByVertical(_ context.Context, vertical string) ([]domain.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var topics []domain.Topic
	for _, t := range m.topics {
		if t.Vertical == vertical {
			topics = append(topics, t)
		}
	}
	return topics, nil
}

// CreateTopic registers the topic together with its initial memory.
func (m *Memory) CreateTopic(_ context.Context, topic domain.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.topics {
		if t.ID == topic.ID {
			return fmt.Errorf("topic %s already exists", topic.ID)
		}
	}
	m.topics = append(m.topics, topic)
	m.memories[topic.ID] = domain.NewTopicMemory(topic.ID, m.now())
	return nil
}

// LoadMemory returns a copy of the belief record, or (nil, nil).
func (m *Memory) LoadMemory(_ context.Context, topicID string) (*domain.TopicMemory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	memory, ok := m.memories[topicID]
	if !ok {
		return nil, nil
	}
	memory.ProgressHistory = append([]domain.ProgressEntry(nil), memory.ProgressHistory...)
	return &memory, nil
}

// ApplyUpdate rewrites one belief section and appends a progress entry.
func (m *Memory) ApplyUpdate(_ context.Context, update domain.MemoryUpdateProposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	memory, ok := m.memories[update.TopicID]
	if !ok {
		return fmt.Errorf("no topic memory for %s", update.TopicID)
	}

	if err := memory.SetBelief(update.Section, update.NewBelief); err != nil {
		return err
	}
	now := m.now()
	memory.ProgressHistory = append(memory.ProgressHistory, domain.ProgressEntry{
		Section:   update.Section,
		Source:    update.Link,
		Timestamp: now,
	})
	memory.LastUpdated = now
	m.memories[update.TopicID] = memory
	return nil
}

// InsertPending stores a proposal awaiting review.
func (m *Memory) InsertPending(_ context.Context, rec domain.PendingProposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pending[rec.ID]; ok {
		return fmt.Errorf("pending proposal %s already exists", rec.ID)
	}
	m.pending[rec.ID] = rec
	return nil
}

// GetPending returns one pending record, or (nil, nil) for unknown ids.
func (m *Memory) GetPending(_ context.Context, id string) (*domain.PendingProposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.pending[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// ListPending returns pending records in creation order.
func (m *Memory) ListPending(_ context.Context) ([]domain.PendingProposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := make([]domain.PendingProposal, 0, len(m.pending))
	for _, rec := range m.pending {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.Before(recs[j].CreatedAt) })
	return recs, nil
}

// DeletePending removes a resolved record.
func (m *Memory) DeletePending(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.pending, id)
	return nil
}

// LogAccepted appends an accepted audit entry.
func (m *Memory) LogAccepted(_ context.Context, proposal domain.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accepted = append(m.accepted, proposal.LogPayload())
	return nil
}

// LogRejected appends a rejected audit entry with the reviewer's reason.
func (m *Memory) LogRejected(_ context.Context, proposal domain.Proposal, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rejected = append(m.rejected, domain.RejectedLogPayload(proposal, reason))
	return nil
}

// SeenSource reports whether a link appears in either audit log.
func (m *Memory) SeenSource(_ context.Context, link string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range m.accepted {
		if entry["source_link"] == link {
			return true, nil
		}
	}
	for _, entry := range m.rejected {
		if entry["source_link"] == link {
			return true, nil
		}
	}
	return false, nil
}

// Accepted returns a copy of the accepted audit log.
func (m *Memory) Accepted() []map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]map[string]string(nil), m.accepted...)
}

// Rejected returns a copy of the rejected audit log.
func (m *Memory) Rejected() []map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]map[string]string(nil), m.rejected...)
}
