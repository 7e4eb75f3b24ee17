package sections

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"TopicCurator/internal/domain"
	"TopicCurator/internal/ports"
)

const selectorSystemPrompt = "You are a careful research analyst."

const sectionSelectionPrompt = `You are a research analyst responsible for maintaining a structured knowledge base.

Below is:
1) The current understanding of a topic, organized into fixed schema sections
2) A new article or research excerpt
3) A list of candidate schema sections identified by heuristics

Your task:
- From the candidate schema sections, choose EXACTLY ONE section that is most impacted by the new information
- If none are meaningfully impacted, respond with NO_UPDATE

Rules:
- You may ONLY choose from the provided candidate sections
- Do NOT invent new sections
- Do NOT summarize the article
- Do NOT propose memory updates
- Your justification must be 1-2 sentences and explain why this section is most impacted

Output format (follow exactly):

SECTION: <one_candidate_section_or_NO_UPDATE>
REASON: <brief justification>`

const noUpdateMarker = "NO_UPDATE"

const maxSelectAttempts = 3

const (
	reasonNoCandidates   = "No candidate sections."
	reasonRetryExhausted = "LLM failed to select a valid section."
)

// Selector asks the oracle to pick exactly one impacted section from
// the heuristic candidates, retrying on malformed answers.
type Selector struct {
	oracle ports.Oracle
	logger *slog.Logger
}

// NewSelector wires the oracle.
func NewSelector(oracle ports.Oracle, logger *slog.Logger) *Selector {
	return &Selector{oracle: oracle, logger: logger}
}

// Select returns the chosen section, or "" with a reason when there is
// nothing to update. NO_UPDATE is a valid terminal answer and is
// distinct from exhausting all attempts on malformed output. The base
// prompt is immutable; retries append one emphatic suffix.
func (s *Selector) Select(ctx context.Context, articleText string, candidates []domain.Section, memorySnapshot string) (domain.Section, string, error) {
	if len(candidates) == 0 {
		return "", reasonNoCandidates, nil
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = string(c)
	}

	base := fmt.Sprintf(
		"%s\n\nCurrent Topic Understanding:\n%s\n\nCandidate Schema Sections:\n%s\n\nArticle Text:\n%s\n",
		sectionSelectionPrompt, memorySnapshot, strings.Join(names, ", "), articleText)

	for attempt := 0; attempt < maxSelectAttempts; attempt++ {
		prompt := base
		if attempt > 0 {
			prompt += "\nIMPORTANT: Follow the output format exactly."
		}

		raw, err := s.oracle.Invoke(ctx, selectorSystemPrompt, prompt)
		if err != nil {
			return "", "", fmt.Errorf("section selection completion: %w", err)
		}

		selection, reason, ok := parseSectionResponse(raw, candidates)
		if !ok {
			if s.logger != nil {
				s.logger.Debug("section selection malformed", "attempt", attempt+1)
			}
			continue
		}

		if selection == noUpdateMarker {
			return "", reason, nil
		}
		return domain.Section(selection), reason, nil
	}

	return "", reasonRetryExhausted, nil
}

// parseSectionResponse enforces the SECTION/REASON grammar. The chosen
// value must be NO_UPDATE or a member of the candidate set; anything
// else reports !ok so the caller retries.
func parseSectionResponse(raw string, candidates []domain.Section) (string, string, bool) {
	var (
		selection, reason       string
		haveSection, haveReason bool
	)

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		switch {
		case strings.HasPrefix(line, "SECTION:"):
			selection = strings.TrimSpace(strings.TrimPrefix(line, "SECTION:"))
			haveSection = true
		case strings.HasPrefix(line, "REASON:"):
			reason = strings.TrimSpace(strings.TrimPrefix(line, "REASON:"))
			haveReason = true
		}
	}

	if !haveSection || !haveReason {
		return "", "", false
	}
	if selection == noUpdateMarker {
		return selection, reason, true
	}
	for _, c := range candidates {
		if selection == string(c) {
			return selection, reason, true
		}
	}
	return "", "", false
}
