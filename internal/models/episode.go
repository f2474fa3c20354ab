package models

import "podcast-archive/internal/dateparts"

// Episode is the resolved, normalized view of one audio file. It is built
// fresh per listing or feed request and never mutated afterwards. Year and
// PublishedAt are nil when no tag value parsed as a date; Description is
// never nil, just empty.
type Episode struct {
	Filename        string
	Title           string
	Artist          string
	Album           string
	Description     string
	Year            *int
	PublishedAt     *dateparts.Parts
	FileSizeBytes   int64
	DurationSeconds int
	DurationText    string
}
