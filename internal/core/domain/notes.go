package domain

import "strings"

// ReleaseNotes is release-note text with the labels used in summaries.
type ReleaseNotes struct {
	// Text is the release-note body.
	Text string

	// Version is the release label, e.g. a tag name.
	Version string

	// Date is the release date label.
	Date string

	// Source describes where the notes came from (file path, URL).
	Source string
}

// IsEmpty reports whether the notes contain no text.
func (n ReleaseNotes) IsEmpty() bool {
	return strings.TrimSpace(n.Text) == ""
}

// Request builds an analysis request from the notes.
func (n ReleaseNotes) Request() AnalysisRequest {
	return AnalysisRequest{
		ReleaseNotes: n.Text,
		Version:      n.Version,
		Date:         n.Date,
	}
}
