// Package entities contains catalog scraper entities
package entities

import (
	"io"
	"time"

	broadcastentities "github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
)

// Link is one anchor on the source list page
type Link struct {
	Text string
	URL  string
}

// ParsedLink is the catalog data encoded in a link text
type ParsedLink struct {
	RoleName    string
	ReleaseType broadcastentities.ReleaseType
	ReleaseDate *time.Time
	// Comment keeps a date token that is not a day, e.g. "=2015="
	Comment *string
}

// Download is a fetched audio file; the caller closes Body
type Download struct {
	Filename string
	Body     io.ReadCloser
	// Size is -1 when the site did not report it
	Size int64
}

// Summary counts what one ingest run did
type Summary struct {
	Seen     int
	Ingested int
	Skipped  int
	Failed   int
}
