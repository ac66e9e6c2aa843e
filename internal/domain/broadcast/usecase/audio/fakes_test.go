package audio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
)

// mockBroadcastRepository keeps broadcasts in memory and counts writes
type mockBroadcastRepository struct {
	mu         sync.Mutex
	broadcasts map[int64]entities.Broadcast
	updates    []entities.BroadcastUpdate
	updateErr  error
}

func newMockBroadcastRepository(items ...entities.Broadcast) *mockBroadcastRepository {
	repo := &mockBroadcastRepository{broadcasts: make(map[int64]entities.Broadcast)}
	for _, b := range items {
		repo.broadcasts[b.ID] = b
	}
	return repo
}

func (m *mockBroadcastRepository) GetRandom(ctx context.Context, exclude []int64) (*entities.Broadcast, error) {
	return nil, broadcasterrors.ErrBroadcastNotFound
}

func (m *mockBroadcastRepository) GetByID(ctx context.Context, id int64) (*entities.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.broadcasts[id]
	if !ok {
		return nil, broadcasterrors.ErrBroadcastNotFound
	}
	return &b, nil
}

func (m *mockBroadcastRepository) GetByHandle(ctx context.Context, handle string) (*entities.Broadcast, error) {
	return nil, broadcasterrors.ErrBroadcastNotFound
}

func (m *mockBroadcastRepository) Update(ctx context.Context, broadcast *entities.Broadcast, update entities.BroadcastUpdate) (*entities.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.updates = append(m.updates, update)
	current, ok := m.broadcasts[broadcast.ID]
	if !ok {
		return nil, broadcasterrors.ErrBroadcastNotFound
	}
	updated := applyUpdate(update, current)
	m.broadcasts[broadcast.ID] = updated
	return &updated, nil
}

func applyUpdate(u entities.BroadcastUpdate, b entities.Broadcast) entities.Broadcast {
	if u.TelegramFileID != nil {
		v := *u.TelegramFileID
		b.TelegramFileID = &v
	}
	if u.TelegramFileIDAlt != nil {
		v := *u.TelegramFileIDAlt
		b.TelegramFileIDAlt = &v
	}
	if u.Filename != nil {
		v := *u.Filename
		b.Filename = &v
	}
	if u.Comment != nil {
		v := *u.Comment
		b.Comment = &v
	}
	return b
}

type sentByHandle struct {
	chatID int64
	handle string
	meta   entities.AudioMeta
}

type uploaded struct {
	chatID   int64
	filename string
	body     string
	meta     entities.AudioMeta
}

// mockTransport records calls; handles listed in stale are rejected as unresolvable
type mockTransport struct {
	stale      map[string]bool
	sendErr    error
	uploadErr  error
	nextHandle string
	byHandle   []sentByHandle
	uploads    []uploaded
}

func newMockTransport() *mockTransport {
	return &mockTransport{stale: map[string]bool{}, nextHandle: "fresh-handle"}
}

func (m *mockTransport) SendByHandle(ctx context.Context, chatID int64, handle string, meta entities.AudioMeta) (*entities.DeliveredAudio, error) {
	m.byHandle = append(m.byHandle, sentByHandle{chatID: chatID, handle: handle, meta: meta})
	if m.stale[handle] {
		return nil, fmt.Errorf("send audio: %w", broadcasterrors.ErrAssetUnresolvable)
	}
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return &entities.DeliveredAudio{ChatID: chatID, MessageID: len(m.byHandle), Handle: handle}, nil
}

func (m *mockTransport) Upload(ctx context.Context, chatID int64, req entities.UploadRequest) (*entities.DeliveredAudio, error) {
	body, _ := io.ReadAll(req.Data)
	m.uploads = append(m.uploads, uploaded{chatID: chatID, filename: req.Filename, body: string(body), meta: req.Meta})
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	return &entities.DeliveredAudio{ChatID: chatID, MessageID: 100 + len(m.uploads), Handle: m.nextHandle, Uploaded: true}, nil
}

// mockFileStore serves files from a map of filename to content
type mockFileStore struct {
	files      map[string]string
	resolveErr error
	opened     int
}

func (m *mockFileStore) Resolve(ctx context.Context, filename string) (*entities.AudioSource, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	content, ok := m.files[filename]
	if filename == "" || !ok {
		return nil, broadcasterrors.ErrSourceFileMissing
	}
	return &entities.AudioSource{Filename: filename, Location: "/broadcasts/" + filename, Size: int64(len(content))}, nil
}

func (m *mockFileStore) Open(ctx context.Context, source *entities.AudioSource) (io.ReadCloser, error) {
	m.opened++
	return io.NopCloser(strings.NewReader(m.files[source.Filename])), nil
}

// mockNotifier collects operator notifications
type mockNotifier struct {
	messages []string
}

func (m *mockNotifier) Notify(ctx context.Context, text string) {
	m.messages = append(m.messages, text)
}

// mockMetrics counts recorded outcomes
type mockMetrics struct {
	handleHits int
	uploads    int
	fallbacks  map[string]int
	failures   map[string]int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{fallbacks: map[string]int{}, failures: map[string]int{}}
}

func (m *mockMetrics) RecordHandleHit() { m.handleHits++ }
func (m *mockMetrics) RecordUpload(time.Duration) { m.uploads++ }
func (m *mockMetrics) RecordFallback(reason string) { m.fallbacks[reason]++ }
func (m *mockMetrics) RecordFailure(reason string) { m.failures[reason]++ }
func (m *mockMetrics) RecordShow(outcome string, attempts int) {}

func strPtr(s string) *string {
	return &s
}
