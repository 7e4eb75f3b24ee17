package domain

import (
	"fmt"
	"strings"
	"time"
)

// Section names one of the five fixed belief slots of a topic memory.
type Section string

const (
	SectionPredecessorsLimitations  Section = "predecessors_limitations"
	SectionCoreProposal             Section = "core_proposal"
	SectionEnablingConditions       Section = "enabling_conditions"
	SectionProblemsSolved           Section = "problems_solved"
	SectionOperationalUnderstanding Section = "operational_understanding"
)

// NotYetResearched is the initial belief text for every section.
const NotYetResearched = "Not yet researched"

// Sections lists the belief sections in schema order.
func Sections() []Section {
	return []Section{
		SectionPredecessorsLimitations,
		SectionCoreProposal,
		SectionEnablingConditions,
		SectionProblemsSolved,
		SectionOperationalUnderstanding,
	}
}

// ParseSection validates a stored section tag.
func ParseSection(raw string) (Section, error) {
	for _, s := range Sections() {
		if Section(raw) == s {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown schema section %q", raw)
}

// ProgressEntry records one applied update in a topic's history.
type ProgressEntry struct {
	Section   Section   `json:"section"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// TopicMemory is the structured belief record owned 1:1 by a topic.
// Only applying an accepted memory update mutates it: exactly one
// section is rewritten, one progress entry is appended, and the
// timestamp is bumped. History entries are never removed or reordered.
type TopicMemory struct {
	TopicID                  string
	PredecessorsLimitations  string
	CoreProposal             string
	EnablingConditions       string
	ProblemsSolved           string
	OperationalUnderstanding string
	ProgressHistory          []ProgressEntry
	LastUpdated              time.Time
}

// NewTopicMemory returns the initial record created alongside a topic.
func NewTopicMemory(topicID string, now time.Time) TopicMemory {
	return TopicMemory{
		TopicID:                  topicID,
		PredecessorsLimitations:  NotYetResearched,
		CoreProposal:             NotYetResearched,
		EnablingConditions:       NotYetResearched,
		ProblemsSolved:           NotYetResearched,
		OperationalUnderstanding: NotYetResearched,
		LastUpdated:              now,
	}
}

// Belief returns the current text for one section.
func (m *TopicMemory) Belief(section Section) (string, error) {
	switch section {
	case SectionPredecessorsLimitations:
		return m.PredecessorsLimitations, nil
	case SectionCoreProposal:
		return m.CoreProposal, nil
	case SectionEnablingConditions:
		return m.EnablingConditions, nil
	case SectionProblemsSolved:
		return m.ProblemsSolved, nil
	case SectionOperationalUnderstanding:
		return m.OperationalUnderstanding, nil
	}
	return "", fmt.Errorf("unknown schema section %q", section)
}

// SetBelief replaces the text of one section.
func (m *TopicMemory) SetBelief(section Section, text string) error {
	switch section {
	case SectionPredecessorsLimitations:
		m.PredecessorsLimitations = text
	case SectionCoreProposal:
		m.CoreProposal = text
	case SectionEnablingConditions:
		m.EnablingConditions = text
	case SectionProblemsSolved:
		m.ProblemsSolved = text
	case SectionOperationalUnderstanding:
		m.OperationalUnderstanding = text
	default:
		return fmt.Errorf("unknown schema section %q", section)
	}
	return nil
}

// Snapshot renders the record for inclusion in an oracle prompt.
func (m *TopicMemory) Snapshot() string {
	var b strings.Builder
	for _, section := range Sections() {
		belief, _ := m.Belief(section)
		fmt.Fprintf(&b, "%s:\n%s\n\n", section, belief)
	}
	return strings.TrimSpace(b.String())
}
