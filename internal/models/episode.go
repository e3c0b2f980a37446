package models

import "time"

// Episode represents one audio file as a feed entry. Episodes are value
// objects; once constructed they are never modified.
type Episode struct {
	RelativePath    string
	Filename        string
	EnclosureURL    string
	Title           string
	Artist          string
	PubDate         time.Time
	MIMEType        string
	SizeBytes       int64
	DurationSeconds *float64
}
