package domain

// Topic is a named research thread inside a vertical. Topics are
// immutable once created; each owns exactly one TopicMemory record.
type Topic struct {
	ID       string
	Name     string
	Vertical string
}
