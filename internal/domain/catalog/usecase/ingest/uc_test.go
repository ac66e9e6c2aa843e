package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaShaimardanov/franky/config"
	broadcastentities "github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
	"github.com/RaShaimardanov/franky/internal/domain/catalog/entities"
	catalogerrors "github.com/RaShaimardanov/franky/internal/domain/catalog/errors"
	"github.com/RaShaimardanov/franky/internal/infrastructure/storage"
	"github.com/RaShaimardanov/franky/pkg/events"
)

type fakeSite struct {
	links     []entities.Link
	listErr   error
	failURLs  map[string]bool
	downloads []string
	// filename overrides the per-link name when set
	filename string
}

func (f *fakeSite) ListLinks(ctx context.Context) ([]entities.Link, error) {
	return f.links, f.listErr
}

func (f *fakeSite) Download(ctx context.Context, link entities.Link) (*entities.Download, error) {
	f.downloads = append(f.downloads, link.URL)
	if f.failURLs[link.URL] {
		return nil, catalogerrors.ErrDownloadFailed
	}
	name := strings.TrimPrefix(link.URL, "https://site/") + ".mp3"
	if f.filename != "" {
		name = f.filename
	}
	body := "audio-of-" + link.Text
	return &entities.Download{Filename: name, Body: io.NopCloser(strings.NewReader(body)), Size: int64(len(body))}, nil
}

type fakeCatalog struct {
	mu      sync.Mutex
	nextID  int64
	sources map[string]bool
	created []broadcastentities.Broadcast
	// raceURL is reported free by Exists but taken on Create
	raceURL string
}

func newFakeCatalog(existing ...string) *fakeCatalog {
	f := &fakeCatalog{sources: map[string]bool{}}
	for _, s := range existing {
		f.sources[s] = true
	}
	return f
}

func (f *fakeCatalog) ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sources[sourceURL], nil
}

func (f *fakeCatalog) Create(ctx context.Context, b *broadcastentities.Broadcast) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if *b.SourceURL == f.raceURL {
		return catalogerrors.ErrAlreadyIngested
	}
	f.nextID++
	b.ID = f.nextID
	f.sources[*b.SourceURL] = true
	f.created = append(f.created, *b)
	return nil
}

func (f *fakeCatalog) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.sources)), nil
}

type fakeFiles struct {
	saved map[string]string
	err   error
}

func (f *fakeFiles) Save(ctx context.Context, filename string, data io.Reader, size int64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.saved[filename]; ok {
		return broadcasterrors.ErrFileExists
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.saved[filename] = string(b)
	return nil
}

type fakeProducer struct {
	events []*events.BroadcastIngested
	err    error
}

func (f *fakeProducer) SendBroadcastIngested(ctx context.Context, event *events.BroadcastIngested) error {
	f.events = append(f.events, event)
	return f.err
}

type fakeMetrics struct {
	ingested int
	failures []string
	runs     int
}

func (f *fakeMetrics) RecordIngested()                   { f.ingested++ }
func (f *fakeMetrics) RecordIngestFailure(reason string) { f.failures = append(f.failures, reason) }
func (f *fakeMetrics) RecordScrapeRun(time.Duration)     { f.runs++ }

type fixture struct {
	site     *fakeSite
	catalog  *fakeCatalog
	files    *fakeFiles
	producer *fakeProducer
	metrics  *fakeMetrics
	cfg      *config.ScraperConfig
	pauses   int
}

func newFixture(links ...entities.Link) *fixture {
	return &fixture{
		site:     &fakeSite{links: links, failURLs: map[string]bool{}},
		catalog:  newFakeCatalog(),
		files:    &fakeFiles{saved: map[string]string{}},
		producer: &fakeProducer{},
		metrics:  &fakeMetrics{},
		cfg:      &config.ScraperConfig{Pause: time.Second, Timeout: time.Minute},
	}
}

func (f *fixture) useCase() *UseCase {
	uc := NewUseCase(f.site, f.catalog, f.files, f.producer, f.metrics, f.cfg, zerolog.Nop())
	uc.sleep = func(ctx context.Context, d time.Duration) error {
		f.pauses++
		return ctx.Err()
	}
	return uc
}

func link(id, text string) entities.Link {
	return entities.Link{Text: text, URL: "https://site/" + id}
}

func TestRun_IngestsNewLinks(t *testing.T) {
	f := newFixture(
		link("1", "14.03.15 (Фрагмент) Бабушка"),
		link("2", "=2009= Дедушка"),
	)

	summary, err := f.useCase().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.Summary{Seen: 2, Ingested: 2}, summary)
	require.Len(t, f.catalog.created, 2)

	first := f.catalog.created[0]
	assert.Equal(t, "Бабушка", first.RoleName)
	assert.Equal(t, broadcastentities.ReleaseTypeFragment, first.ReleaseType)
	assert.Equal(t, StoredName("https://site/1", "1.mp3"), *first.Filename)
	assert.True(t, strings.HasSuffix(*first.Filename, "-1.mp3"))
	assert.Equal(t, "https://site/1", *first.SourceURL)
	assert.Equal(t, "audio-of-14.03.15 (Фрагмент) Бабушка", f.files.saved[*first.Filename])

	require.Len(t, f.producer.events, 2)
	assert.Equal(t, int64(1), f.producer.events[0].BroadcastID)
	assert.Equal(t, "Фрагмент", f.producer.events[0].ReleaseType)

	assert.Equal(t, 2, f.metrics.ingested)
	assert.Equal(t, 1, f.metrics.runs)
	assert.Equal(t, 1, f.pauses)
}

func TestRun_SkipsKnownSources(t *testing.T) {
	f := newFixture(link("1", "14.03.15 Бабушка"), link("2", "15.03.15 Дедушка"))
	f.catalog = newFakeCatalog("https://site/1")

	summary, err := f.useCase().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.Summary{Seen: 2, Ingested: 1, Skipped: 1}, summary)
	assert.Equal(t, []string{"https://site/2"}, f.site.downloads)
	assert.Zero(t, f.pauses)
}

func TestRun_BadLinksDoNotAbort(t *testing.T) {
	f := newFixture(
		link("1", "просто текст"),
		link("2", "14.03.15 Бабушка"),
		link("3", "15.03.15 Дедушка"),
	)
	f.site.failURLs["https://site/2"] = true

	summary, err := f.useCase().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.Summary{Seen: 3, Ingested: 1, Failed: 2}, summary)
	assert.Equal(t, []string{ReasonParse, ReasonDownload}, f.metrics.failures)
	assert.Equal(t, []string{"https://site/2", "https://site/3"}, f.site.downloads)
}

func TestRun_SameServerFilenameKeepsFilesApart(t *testing.T) {
	f := newFixture(link("1", "14.03.15 Бабушка"), link("2", "15.03.15 Директор"))
	f.site.filename = "download.mp3"

	summary, err := f.useCase().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.Summary{Seen: 2, Ingested: 2}, summary)
	require.Len(t, f.catalog.created, 2)

	first, second := *f.catalog.created[0].Filename, *f.catalog.created[1].Filename
	assert.NotEqual(t, first, second)
	assert.Equal(t, "audio-of-14.03.15 Бабушка", f.files.saved[first])
	assert.Equal(t, "audio-of-15.03.15 Директор", f.files.saved[second])
	assert.Equal(t, second, f.producer.events[1].Filename)
}

func TestRun_LocalStoreKeepsEveryBroadcastAudio(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	f := newFixture(link("1", "14.03.15 Бабушка"), link("2", "15.03.15 Директор"))
	f.site.filename = "download.mp3"
	uc := NewUseCase(f.site, f.catalog, store, f.producer, f.metrics, f.cfg, zerolog.Nop())
	uc.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	summary, err := uc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Ingested)

	ctx := context.Background()
	for _, b := range f.catalog.created {
		source, err := store.Resolve(ctx, *b.Filename)
		require.NoError(t, err)

		r, err := store.Open(ctx, source)
		require.NoError(t, err)
		data, err := io.ReadAll(r)
		r.Close()
		require.NoError(t, err)

		assert.Contains(t, string(data), b.RoleName)
	}
}

func TestRun_ReusesFileLeftByEarlierRun(t *testing.T) {
	f := newFixture(link("1", "14.03.15 Бабушка"))
	stored := StoredName("https://site/1", "1.mp3")
	f.files.saved[stored] = "earlier"

	summary, err := f.useCase().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, stored, *f.catalog.created[0].Filename)
	assert.Equal(t, "earlier", f.files.saved[stored])
	assert.Empty(t, f.metrics.failures)
}

func TestStoredName(t *testing.T) {
	a := StoredName("https://site/get?id=1", "download.mp3")
	b := StoredName("https://site/get?id=2", "download.mp3")

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, StoredName("https://site/get?id=1", "download.mp3"))
	assert.True(t, strings.HasSuffix(a, "-download.mp3"))
	assert.NotContains(t, a, "/")
}

func TestRun_StorageFailure(t *testing.T) {
	f := newFixture(link("1", "14.03.15 Бабушка"))
	f.files.err = errors.New("disk full")

	summary, err := f.useCase().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, f.catalog.created)
	assert.Equal(t, []string{ReasonStorage}, f.metrics.failures)
}

func TestRun_DuplicateOnCreateCountsAsSkipped(t *testing.T) {
	f := newFixture(link("1", "14.03.15 Бабушка"))
	f.catalog.raceURL = "https://site/1"

	summary, err := f.useCase().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.Summary{Seen: 1, Skipped: 1}, summary)
	assert.Empty(t, f.metrics.failures)
	assert.Empty(t, f.producer.events)
}

func TestRun_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(link("1", "14.03.15 Бабушка"))
	f.producer.err = errors.New("broker down")

	summary, err := f.useCase().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Ingested)
}

func TestRun_Limit(t *testing.T) {
	f := newFixture(
		link("1", "14.03.15 Бабушка"),
		link("2", "15.03.15 Дедушка"),
		link("3", "16.03.15 Директор"),
	)
	f.catalog = newFakeCatalog("https://site/1")
	f.cfg.Limit = 1

	summary, err := f.useCase().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.Summary{Seen: 2, Ingested: 1, Skipped: 1}, summary)
	assert.Equal(t, []string{"https://site/2"}, f.site.downloads)
}

func TestRun_ListFailure(t *testing.T) {
	f := newFixture()
	f.site.listErr = catalogerrors.ErrSiteUnavailable

	_, err := f.useCase().Run(context.Background())
	assert.ErrorIs(t, err, catalogerrors.ErrSiteUnavailable)
	assert.Equal(t, 1, f.metrics.runs)
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(link("1", "14.03.15 Бабушка"), link("2", "15.03.15 Дедушка"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.useCase().Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.site.downloads)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), 0))
}
