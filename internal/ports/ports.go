package ports

import (
	"context"
	"time"

	"TopicCurator/internal/domain"
)

// Oracle is the external text-completion service. Its output is
// best-effort free text; callers own all structural validation.
type Oracle interface {
	Invoke(ctx context.Context, system, user string) (string, error)
}

// TopicStore persists the topic taxonomy. CreateTopic also initializes
// the topic's memory record in the same operation.
type TopicStore interface {
	TopicsByVertical(ctx context.Context, vertical string) ([]domain.Topic, error)
	CreateTopic(ctx context.Context, topic domain.Topic) error
}

// MemoryStore persists per-topic belief records. LoadMemory returns
// (nil, nil) when no record exists.
type MemoryStore interface {
	LoadMemory(ctx context.Context, topicID string) (*domain.TopicMemory, error)
	ApplyUpdate(ctx context.Context, update domain.MemoryUpdateProposal) error
}

// PendingStore holds proposals awaiting human review. GetPending
// returns (nil, nil) for unknown ids.
type PendingStore interface {
	InsertPending(ctx context.Context, rec domain.PendingProposal) error
	GetPending(ctx context.Context, id string) (*domain.PendingProposal, error)
	ListPending(ctx context.Context) ([]domain.PendingProposal, error)
	DeletePending(ctx context.Context, id string) error
}

// DecisionLog is the append-only audit trail of review outcomes.
type DecisionLog interface {
	LogAccepted(ctx context.Context, p domain.Proposal) error
	LogRejected(ctx context.Context, p domain.Proposal, reason string) error
	SeenSource(ctx context.Context, link string) (bool, error)
}

// Notifier pushes proposals to the operator channel for review.
type Notifier interface {
	NotifyProposal(ctx context.Context, p domain.Proposal, pendingID string) error
}

// ItemSource yields discovered feed items. An empty verticals slice
// means all configured verticals.
type ItemSource interface {
	Fetch(ctx context.Context, verticals []string) ([]domain.Item, error)
}

// Scheduler controls when discovery runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
