// Package deps contains interface definitions for the catalog domain dependencies
package deps

import (
	"context"
	"io"
	"time"

	broadcastentities "github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	"github.com/RaShaimardanov/franky/internal/domain/catalog/entities"
	"github.com/RaShaimardanov/franky/pkg/events"
)

// Site reads the external broadcast archive
type Site interface {
	// ListLinks returns every broadcast link of the archive page
	ListLinks(ctx context.Context) ([]entities.Link, error)

	// Download fetches the audio behind a link
	Download(ctx context.Context, link entities.Link) (*entities.Download, error)
}

// CatalogRepository writes scraped broadcasts
type CatalogRepository interface {
	ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error)

	// Create returns errors.ErrAlreadyIngested when the source url is taken
	Create(ctx context.Context, broadcast *broadcastentities.Broadcast) error

	Count(ctx context.Context) (int64, error)
}

// FileSaver stores downloaded audio
type FileSaver interface {
	Save(ctx context.Context, filename string, data io.Reader, size int64) error
}

// EventProducer publishes catalog events
type EventProducer interface {
	SendBroadcastIngested(ctx context.Context, event *events.BroadcastIngested) error
}

// IngestMetrics records scraper outcomes
type IngestMetrics interface {
	RecordIngested()
	RecordIngestFailure(reason string)
	RecordScrapeRun(duration time.Duration)
}
