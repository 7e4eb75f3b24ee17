package domain

import "time"

// Item is one unit of discovered content entering the pipeline.
type Item struct {
	Title       string
	Text        string
	Link        string
	Vertical    string
	PublishedAt time.Time
}

// Usable reports whether the item carries enough content to process.
// Items without text or a source link are dropped at the boundary.
func (i Item) Usable() bool {
	return i.Text != "" && i.Link != ""
}
