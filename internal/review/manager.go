package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"TopicCurator/internal/domain"
	"TopicCurator/internal/ports"
)

// Decision is a reviewer's verdict on a pending proposal.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ErrNotPending is returned when resolving an id with no pending
// record, e.g. a proposal that was already decided. Re-resolving a
// deleted record is a rejected no-op, never a double apply.
var ErrNotPending = errors.New("proposal is not pending")

// ManagerDeps wires the stores and notifier into the lifecycle manager.
type ManagerDeps struct {
	Pending  ports.PendingStore
	Log      ports.DecisionLog
	Topics   ports.TopicStore
	Memories ports.MemoryStore
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// Manager owns the pending → accepted/rejected lifecycle. It is the
// only component that performs the final mutating write.
type Manager struct {
	pending  ports.PendingStore
	log      ports.DecisionLog
	topics   ports.TopicStore
	memories ports.MemoryStore
	notifier ports.Notifier
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewManager constructs the lifecycle manager.
func NewManager(deps ManagerDeps) *Manager {
	return &Manager{
		pending:  deps.Pending,
		log:      deps.Log,
		topics:   deps.Topics,
		memories: deps.Memories,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Submit stores the proposal as pending and returns its id. The id is
// generated here, before insertion, so no re-lookup is ever needed.
func (m *Manager) Submit(ctx context.Context, p domain.Proposal) (string, error) {
	rec := domain.PendingProposal{
		ID:        m.newID(),
		CreatedAt: m.now(),
		Proposal:  p,
	}
	if err := m.pending.InsertPending(ctx, rec); err != nil {
		return "", fmt.Errorf("insert pending: %w", err)
	}

	if m.logger != nil {
		m.logger.Info("proposal submitted", "pending_id", rec.ID, "kind", p.Kind(), "source", p.SourceLink())
	}
	return rec.ID, nil
}

// Notify pushes the proposal to the operator channel, keyed by its
// pending id. A nil notifier (headless run) is a no-op.
func (m *Manager) Notify(ctx context.Context, p domain.Proposal, pendingID string) error {
	if m.notifier == nil {
		return nil
	}
	return m.notifier.NotifyProposal(ctx, p, pendingID)
}

// Resolve decides a pending proposal. Approval applies the mutation and
// logs it as accepted; rejection logs the reviewer's reason. The
// pending record is deleted last, after the log write succeeds; an
// apply failure leaves it in place for manual inspection.
func (m *Manager) Resolve(ctx context.Context, pendingID string, decision Decision, reason string) error {
	rec, err := m.pending.GetPending(ctx, pendingID)
	if err != nil {
		return fmt.Errorf("load pending %s: %w", pendingID, err)
	}
	if rec == nil {
		return fmt.Errorf("resolve %s: %w", pendingID, ErrNotPending)
	}

	switch decision {
	case DecisionApprove:
		if err := m.apply(ctx, rec.Proposal); err != nil {
			return fmt.Errorf("apply proposal %s: %w", pendingID, err)
		}
		if err := m.log.LogAccepted(ctx, rec.Proposal); err != nil {
			return fmt.Errorf("log accepted: %w", err)
		}
	case DecisionReject:
		if err := m.log.LogRejected(ctx, rec.Proposal, reason); err != nil {
			return fmt.Errorf("log rejected: %w", err)
		}
	default:
		return fmt.Errorf("unknown decision %q", decision)
	}

	if err := m.pending.DeletePending(ctx, pendingID); err != nil {
		return fmt.Errorf("delete pending %s: %w", pendingID, err)
	}

	if m.logger != nil {
		m.logger.Info("proposal resolved", "pending_id", pendingID, "decision", decision)
	}
	return nil
}

// apply dispatches the accepted mutation over the proposal kind.
func (m *Manager) apply(ctx context.Context, p domain.Proposal) error {
	switch v := p.(type) {
	case domain.TopicRoutingProposal:
		topic := domain.Topic{
			ID:       m.newID(),
			Name:     v.SuggestedTopicName,
			Vertical: v.Vertical,
		}
		return m.topics.CreateTopic(ctx, topic)
	case domain.MemoryUpdateProposal:
		return m.memories.ApplyUpdate(ctx, v)
	}
	return fmt.Errorf("unknown proposal kind %q", p.Kind())
}
