package sections

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"TopicCurator/internal/domain"
	"TopicCurator/internal/ports"
)

const rewriterSystemPrompt = "You are a careful research editor."

const sectionRewritePrompt = `You are a research editor responsible for updating ONE section of a structured knowledge base.

Below is:
1) The name of the schema section to update
2) The current belief text for that section (old_belief)
3) A new article or research excerpt

Your task:
- Rewrite the section text to reflect the most accurate current understanding
- Integrate relevant new information from the article
- Preserve useful prior context unless it is contradicted or outdated

Rules:
- Output ONLY the updated section text
- Do NOT explain your reasoning
- Do NOT justify why the update matters
- Do NOT summarize the entire article
- Do NOT introduce information not present in the old belief or the article
- Keep the result concise (1-2 short paragraphs)

Output format (follow exactly):

NEW_BELIEF: <updated_section_text>`

const newBeliefMarker = "NEW_BELIEF:"

// ErrMalformedRewrite reports a rewrite response without the required
// marker. Unlike every other oracle-consuming layer, the rewriter does
// not tolerate malformed output: the caller fails and submits nothing.
var ErrMalformedRewrite = errors.New("rewrite response missing NEW_BELIEF marker")

// Rewriter drafts a replacement belief for one section of a topic memory.
type Rewriter struct {
	oracle ports.Oracle
}

// NewRewriter wires the oracle.
func NewRewriter(oracle ports.Oracle) *Rewriter {
	return &Rewriter{oracle: oracle}
}

// BuildMemoryUpdate asks the oracle once, with no retry, to rewrite the
// chosen section in light of the article.
func (w *Rewriter) BuildMemoryUpdate(ctx context.Context, memory domain.TopicMemory, section domain.Section, justification, articleText, sourceLink string) (*domain.MemoryUpdateProposal, error) {
	oldBelief, err := memory.Belief(section)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"%s\n\nSchema Section Name:\n%s\n\nCurrent Belief:\n%s\n\nArticle Text:\n%s\n",
		sectionRewritePrompt, section, oldBelief, articleText)

	raw, err := w.oracle.Invoke(ctx, rewriterSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("rewrite completion: %w", err)
	}

	newBelief, err := parseNewBelief(raw)
	if err != nil {
		return nil, err
	}

	return &domain.MemoryUpdateProposal{
		TopicID:        memory.TopicID,
		Section:        section,
		OldBelief:      oldBelief,
		NewBelief:      newBelief,
		WhyThisMatters: justification,
		Link:           sourceLink,
	}, nil
}

func parseNewBelief(raw string) (string, error) {
	_, after, ok := strings.Cut(raw, newBeliefMarker)
	if !ok {
		return "", ErrMalformedRewrite
	}
	return strings.TrimSpace(after), nil
}
