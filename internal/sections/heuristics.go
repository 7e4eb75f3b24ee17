package sections

import (
	"strings"

	"TopicCurator/internal/domain"
)

// heuristicGroups maps keyword groups to the section they signal.
// Groups are checked in schema order so the candidate set is
// order-stable. enabling_conditions has no cheap textual signal and is
// only ever reached through explicit review, never heuristics.
var heuristicGroups = []struct {
	section  domain.Section
	keywords []string
}{
	{domain.SectionPredecessorsLimitations, []string{"previous models", "prior approaches"}},
	{domain.SectionCoreProposal, []string{"we propose", "this paper introduces"}},
	{domain.SectionProblemsSolved, []string{"scales better", "solves prior limitations"}},
	{domain.SectionOperationalUnderstanding, []string{
		"market unlocked",
		"novel product",
		"multiple business usecases",
		"model works like this",
	}},
}

// CandidateSections heuristically narrows which belief sections an
// article may impact. Matching is case-insensitive substring search;
// the result is deterministic for a given text. Returns nil when
// nothing matches.
func CandidateSections(articleText string) []domain.Section {
	text := strings.ToLower(articleText)

	var matched []domain.Section
	for _, group := range heuristicGroups {
		for _, keyword := range group.keywords {
			if strings.Contains(text, keyword) {
				matched = append(matched, group.section)
				break
			}
		}
	}
	return matched
}
