package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"TopicCurator/internal/domain"
	"TopicCurator/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// pendingColumns is the flattened column set shared by the pending and
// audit tables. Proposal payloads are stored one field per column.
var pendingColumns = []string{
	"proposal_type",
	"suggested_topic_name",
	"vertical",
	"confidence_reason",
	"topic_id",
	"schema_section",
	"old_belief",
	"new_belief",
	"why_this_matters",
	"source_link",
}

// Postgres persists topics, memories, and the proposal lifecycle tables.
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.TopicStore = (*Postgres)(nil)
var _ ports.MemoryStore = (*Postgres)(nil)
var _ ports.PendingStore = (*Postgres)(nil)
var _ ports.DecisionLog = (*Postgres)(nil)

// NewPostgres wires a sql.DB implementation.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// TopicsByVertical returns all topics registered under a vertical.
func (p *Postgres) TopicsByVertical(ctx context.Context, vertical string) ([]domain.Topic, error) {
	query, args, err := psql.
		Select("id", "name", "vertical").
		From("topics").
		Where(sq.Eq{"vertical": vertical}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build topics query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	var topics []domain.Topic
	for rows.Next() {
		var t domain.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.Vertical); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return topics, nil
}

// CreateTopic inserts the topic and its initial memory record in one
// transaction, so a topic can never exist without a memory.
func (p *Postgres) CreateTopic(ctx context.Context, topic domain.Topic) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create topic: %w", err)
	}
	defer tx.Rollback()

	query, args, err := psql.
		Insert("topics").
		Columns("id", "name", "vertical").
		Values(topic.ID, topic.Name, topic.Vertical).
		ToSql()
	if err != nil {
		return fmt.Errorf("build topic insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert topic: %w", err)
	}

	memory := domain.NewTopicMemory(topic.ID, p.now())
	query, args, err = psql.
		Insert("topic_memory").
		Columns("topic_id",
			string(domain.SectionPredecessorsLimitations),
			string(domain.SectionCoreProposal),
			string(domain.SectionEnablingConditions),
			string(domain.SectionProblemsSolved),
			string(domain.SectionOperationalUnderstanding),
			"progress_history", "last_updated_ts").
		Values(memory.TopicID,
			memory.PredecessorsLimitations,
			memory.CoreProposal,
			memory.EnablingConditions,
			memory.ProblemsSolved,
			memory.OperationalUnderstanding,
			[]byte("[]"), memory.LastUpdated).
		ToSql()
	if err != nil {
		return fmt.Errorf("build memory insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert topic memory: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create topic: %w", err)
	}

	return nil
}

// LoadMemory fetches the belief record for a topic, or (nil, nil) when
// no record exists.
func (p *Postgres) LoadMemory(ctx context.Context, topicID string) (*domain.TopicMemory, error) {
	query, args, err := psql.
		Select("topic_id",
			string(domain.SectionPredecessorsLimitations),
			string(domain.SectionCoreProposal),
			string(domain.SectionEnablingConditions),
			string(domain.SectionProblemsSolved),
			string(domain.SectionOperationalUnderstanding),
			"progress_history", "last_updated_ts").
		From("topic_memory").
		Where(sq.Eq{"topic_id": topicID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build memory query: %w", err)
	}

	var (
		memory  domain.TopicMemory
		rawHist []byte
	)
	row := p.db.QueryRowContext(ctx, query, args...)
	err = row.Scan(&memory.TopicID,
		&memory.PredecessorsLimitations,
		&memory.CoreProposal,
		&memory.EnablingConditions,
		&memory.ProblemsSolved,
		&memory.OperationalUnderstanding,
		&rawHist, &memory.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan topic memory: %w", err)
	}

	if len(rawHist) > 0 {
		if err := json.Unmarshal(rawHist, &memory.ProgressHistory); err != nil {
			return nil, fmt.Errorf("decode progress history: %w", err)
		}
	}

	return &memory, nil
}

// ApplyUpdate rewrites exactly one belief column, appends one progress
// entry, and bumps the timestamp.
func (p *Postgres) ApplyUpdate(ctx context.Context, update domain.MemoryUpdateProposal) error {
	section, err := domain.ParseSection(string(update.Section))
	if err != nil {
		return err
	}

	memory, err := p.LoadMemory(ctx, update.TopicID)
	if err != nil {
		return err
	}
	if memory == nil {
		return fmt.Errorf("no topic memory for %s", update.TopicID)
	}

	now := p.now()
	history := append(memory.ProgressHistory, domain.ProgressEntry{
		Section:   section,
		Source:    update.Link,
		Timestamp: now,
	})
	rawHist, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode progress history: %w", err)
	}

	query, args, err := psql.
		Update("topic_memory").
		Set(string(section), update.NewBelief).
		Set("progress_history", rawHist).
		Set("last_updated_ts", now).
		Where(sq.Eq{"topic_id": update.TopicID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build memory update: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("apply memory update: %w", err)
	}

	return nil
}

// InsertPending stores a proposal with its client-generated id.
func (p *Postgres) InsertPending(ctx context.Context, rec domain.PendingProposal) error {
	values := map[string]interface{}{
		"id":         rec.ID,
		"created_at": rec.CreatedAt,
	}
	for key, value := range rec.Proposal.LogPayload() {
		values[key] = value
	}

	query, args, err := psql.Insert("pending_proposals").SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("build pending insert: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert pending proposal: %w", err)
	}

	return nil
}

// GetPending loads one pending proposal, or (nil, nil) when the id is
// unknown (already resolved or never submitted).
func (p *Postgres) GetPending(ctx context.Context, id string) (*domain.PendingProposal, error) {
	recs, err := p.queryPending(ctx, sq.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// ListPending returns all pending proposals in creation order.
func (p *Postgres) ListPending(ctx context.Context) ([]domain.PendingProposal, error) {
	return p.queryPending(ctx, nil)
}

func (p *Postgres) queryPending(ctx context.Context, where interface{}) ([]domain.PendingProposal, error) {
	builder := psql.
		Select(append([]string{"id", "created_at"}, pendingColumns...)...).
		From("pending_proposals").
		OrderBy("created_at")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pending query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending proposals: %w", err)
	}
	defer rows.Close()

	var recs []domain.PendingProposal
	for rows.Next() {
		var (
			rec       domain.PendingProposal
			createdAt time.Time
			fields    = make([]sql.NullString, len(pendingColumns))
			dest      = make([]interface{}, 0, len(pendingColumns)+2)
		)
		dest = append(dest, &rec.ID, &createdAt)
		for i := range fields {
			dest = append(dest, &fields[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan pending proposal: %w", err)
		}

		payload := make(map[string]string, len(pendingColumns))
		for i, column := range pendingColumns {
			if fields[i].Valid {
				payload[column] = fields[i].String
			}
		}

		proposal, err := domain.ProposalFromPayload(payload)
		if err != nil {
			return nil, fmt.Errorf("rebuild pending proposal %s: %w", rec.ID, err)
		}
		rec.CreatedAt = createdAt
		rec.Proposal = proposal
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return recs, nil
}

// DeletePending removes a resolved pending record.
func (p *Postgres) DeletePending(ctx context.Context, id string) error {
	query, args, err := psql.Delete("pending_proposals").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build pending delete: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete pending proposal: %w", err)
	}

	return nil
}

// LogAccepted appends a write-once accepted audit entry.
func (p *Postgres) LogAccepted(ctx context.Context, proposal domain.Proposal) error {
	values := map[string]interface{}{"created_at": p.now()}
	for key, value := range proposal.LogPayload() {
		values[key] = value
	}

	query, args, err := psql.Insert("accepted_proposals").SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("build accepted insert: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert accepted proposal: %w", err)
	}

	return nil
}

// LogRejected appends a write-once rejected audit entry with the
// reviewer's reason.
func (p *Postgres) LogRejected(ctx context.Context, proposal domain.Proposal, reason string) error {
	values := map[string]interface{}{"created_at": p.now()}
	for key, value := range domain.RejectedLogPayload(proposal, reason) {
		values[key] = value
	}

	query, args, err := psql.Insert("rejected_proposals").SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("build rejected insert: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert rejected proposal: %w", err)
	}

	return nil
}

// SeenSource reports whether a source link already appears in either
// audit table. Used to skip already-reviewed inputs before ingestion.
func (p *Postgres) SeenSource(ctx context.Context, link string) (bool, error) {
	for _, table := range []string{"accepted_proposals", "rejected_proposals"} {
		query, args, err := psql.
			Select("1").
			From(table).
			Where(sq.Eq{"source_link": link}).
			Limit(1).
			ToSql()
		if err != nil {
			return false, fmt.Errorf("build seen query: %w", err)
		}

		var one int
		err = p.db.QueryRowContext(ctx, query, args...).Scan(&one)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("query %s: %w", table, err)
		}
	}

	return false, nil
}
