package review

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"TopicCurator/internal/domain"
	"TopicCurator/internal/ports"
)

// InteractiveReviewer walks pending proposals over a blocking terminal
// prompt. Functionally equivalent to the Telegram review channel.
type InteractiveReviewer struct {
	manager *Manager
	pending ports.PendingStore
	in      *bufio.Reader
	out     io.Writer
}

// NewInteractiveReviewer wires the manager with reviewer I/O.
func NewInteractiveReviewer(manager *Manager, pending ports.PendingStore, in io.Reader, out io.Writer) *InteractiveReviewer {
	return &InteractiveReviewer{
		manager: manager,
		pending: pending,
		in:      bufio.NewReader(in),
		out:     out,
	}
}

// Run reviews every pending proposal in creation order.
func (r *InteractiveReviewer) Run(ctx context.Context) error {
	recs, err := r.pending.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("list pending: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintln(r.out, "No pending proposals.")
		return nil
	}

	for _, rec := range recs {
		if err := r.reviewOne(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (r *InteractiveReviewer) reviewOne(ctx context.Context, rec domain.PendingProposal) error {
	fmt.Fprintln(r.out, rec.Proposal.Summary())

	for {
		fmt.Fprint(r.out, "Choose 1 (Approve) or 2 (Reject): ")
		choice, err := r.readLine()
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			return r.manager.Resolve(ctx, rec.ID, DecisionApprove, "")
		case "2":
			fmt.Fprint(r.out, "Why are you rejecting this proposal? ")
			reason, err := r.readLine()
			if err != nil {
				return err
			}
			return r.manager.Resolve(ctx, rec.ID, DecisionReject, reason)
		}
	}
}

func (r *InteractiveReviewer) readLine() (string, error) {
	line, err := r.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read reviewer input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
