// Package ingest fills the broadcast catalog from the external archive
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/RaShaimardanov/franky/config"
	broadcastentities "github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	"github.com/RaShaimardanov/franky/internal/domain/catalog/deps"
	"github.com/RaShaimardanov/franky/internal/domain/catalog/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
	catalogerrors "github.com/RaShaimardanov/franky/internal/domain/catalog/errors"
	pkgerrors "github.com/RaShaimardanov/franky/pkg/errors"
	"github.com/RaShaimardanov/franky/pkg/events"
)

// Ingest failure reasons reported to metrics
const (
	ReasonParse    = "parse"
	ReasonDownload = "download"
	ReasonStorage  = "storage"
	ReasonDatabase = "database"
)

// UseCase runs catalog ingests
type UseCase struct {
	site     deps.Site
	repo     deps.CatalogRepository
	files    deps.FileSaver
	producer deps.EventProducer
	metrics  deps.IngestMetrics
	cfg      *config.ScraperConfig
	logger   zerolog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewUseCase creates a new ingest UseCase
func NewUseCase(
	site deps.Site,
	repo deps.CatalogRepository,
	files deps.FileSaver,
	producer deps.EventProducer,
	metrics deps.IngestMetrics,
	cfg *config.ScraperConfig,
	logger zerolog.Logger,
) *UseCase {
	return &UseCase{
		site:     site,
		repo:     repo,
		files:    files,
		producer: producer,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger,
		sleep:    sleepContext,
	}
}

// Run ingests every new link of the archive. A failing link is counted and skipped;
// only a failed list fetch or a cancelled context ends the run early.
func (uc *UseCase) Run(ctx context.Context) (entities.Summary, error) {
	var summary entities.Summary
	start := time.Now()
	defer func() {
		uc.metrics.RecordScrapeRun(time.Since(start))
	}()

	links, err := uc.site.ListLinks(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list links: %w", err)
	}

	uc.logger.Info().Int("links", len(links)).Msg("Starting catalog ingest")

	attempted := 0
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if uc.cfg.Limit > 0 && attempted >= uc.cfg.Limit {
			uc.logger.Info().Int("limit", uc.cfg.Limit).Msg("Ingest limit reached")
			break
		}
		summary.Seen++

		exists, err := uc.repo.ExistsBySourceURL(ctx, link.URL)
		if err != nil {
			summary.Failed++
			uc.metrics.RecordIngestFailure(ReasonDatabase)
			uc.logger.Error().Err(err).Str("url", link.URL).Msg("Failed to check source url")
			continue
		}
		if exists {
			summary.Skipped++
			continue
		}

		if attempted > 0 {
			if err := uc.sleep(ctx, uc.cfg.Pause); err != nil {
				return summary, err
			}
		}
		attempted++

		switch err := uc.ingestLink(ctx, link); {
		case err == nil:
			summary.Ingested++
		case errors.Is(err, catalogerrors.ErrAlreadyIngested):
			summary.Skipped++
		default:
			summary.Failed++
			uc.logger.Error().
				Err(err).
				Str("error_type", pkgerrors.TypeOf(err).String()).
				Str("link", link.Text).
				Str("url", link.URL).
				Msg("Failed to ingest link")
		}
	}

	total, err := uc.repo.Count(ctx)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("Failed to count broadcasts")
	}

	uc.logger.Info().
		Int64("catalog_size", total).
		Int("seen", summary.Seen).
		Int("ingested", summary.Ingested).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Dur("duration", time.Since(start)).
		Msg("Catalog ingest finished")

	return summary, nil
}

func (uc *UseCase) ingestLink(ctx context.Context, link entities.Link) error {
	parsed, err := ParseLink(link.Text)
	if err != nil {
		uc.metrics.RecordIngestFailure(ReasonParse)
		return err
	}

	filename, err := uc.download(ctx, link)
	if err != nil {
		return err
	}

	sourceURL := link.URL
	broadcast := &broadcastentities.Broadcast{
		RoleName:    parsed.RoleName,
		ReleaseType: parsed.ReleaseType,
		ReleaseDate: parsed.ReleaseDate,
		Comment:     parsed.Comment,
		Filename:    &filename,
		SourceURL:   &sourceURL,
	}
	if err := uc.repo.Create(ctx, broadcast); err != nil {
		if !errors.Is(err, catalogerrors.ErrAlreadyIngested) {
			uc.metrics.RecordIngestFailure(ReasonDatabase)
		}
		return err
	}
	uc.metrics.RecordIngested()

	uc.logger.Info().
		Int64("broadcast_id", broadcast.ID).
		Str("role_name", broadcast.RoleName).
		Str("filename", filename).
		Msg("Broadcast ingested")

	event := &events.BroadcastIngested{
		EventID:     events.NewID(),
		BroadcastID: broadcast.ID,
		RoleName:    broadcast.RoleName,
		ReleaseType: broadcast.ReleaseType.Label(),
		ReleaseDate: broadcast.ReleaseDate,
		Filename:    filename,
		OccurredAt:  time.Now().UTC(),
	}
	if err := uc.producer.SendBroadcastIngested(ctx, event); err != nil {
		uc.logger.Warn().Err(err).Int64("broadcast_id", broadcast.ID).Msg("Failed to publish ingest event")
	}

	return nil
}

// download stores the linked file and returns its name in the file store
func (uc *UseCase) download(ctx context.Context, link entities.Link) (string, error) {
	if uc.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.Timeout)
		defer cancel()
	}

	file, err := uc.site.Download(ctx, link)
	if err != nil {
		uc.metrics.RecordIngestFailure(ReasonDownload)
		return "", err
	}
	defer file.Body.Close()

	name := StoredName(link.URL, file.Filename)
	if err := uc.files.Save(ctx, name, file.Body, file.Size); err != nil {
		// the name is bound to the source url, so an existing file is a leftover of an earlier run for this link
		if errors.Is(err, broadcasterrors.ErrFileExists) {
			uc.logger.Warn().Str("filename", name).Str("url", link.URL).Msg("Reusing stored file")
			return name, nil
		}
		uc.metrics.RecordIngestFailure(ReasonStorage)
		return "", fmt.Errorf("failed to store %s: %w", name, err)
	}

	return name, nil
}

// StoredName prefixes the server supplied filename with a digest of the source url.
// The archive serves many links under the same name.
func StoredName(sourceURL, filename string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return hex.EncodeToString(sum[:6]) + "-" + filename
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
