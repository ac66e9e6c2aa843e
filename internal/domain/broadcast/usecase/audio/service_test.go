package audio

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaShaimardanov/franky/config"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
)

type fixture struct {
	repo      *mockBroadcastRepository
	transport *mockTransport
	files     *mockFileStore
	notifier  *mockNotifier
	metrics   *mockMetrics
	service   *Service
}

func newFixture(items ...entities.Broadcast) *fixture {
	f := &fixture{
		repo:      newMockBroadcastRepository(items...),
		transport: newMockTransport(),
		files:     &mockFileStore{files: map[string]string{}},
		notifier:  &mockNotifier{},
		metrics:   newMockMetrics(),
	}
	sender := NewSender(f.transport, f.files, f.notifier, f.metrics, zerolog.Nop())
	f.service = NewService(f.repo, sender, &config.DeliveryConfig{
		DefaultTitle: "Угадай, кто звонит",
		Performer:    "Фрэнки - Шоу",
	})
	return f
}

func (f *fixture) broadcast(t *testing.T, id int64) *entities.Broadcast {
	t.Helper()
	b, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func TestDeliver_UploadsThenReusesPrimaryHandle(t *testing.T) {
	f := newFixture(entities.Broadcast{ID: 1, RoleName: "Бабушка", Filename: strPtr("ep1.mp3")})
	f.files.files["ep1.mp3"] = "ID3-audio"
	user := &entities.User{ID: 7, TelegramID: 1001, ShowRoleName: false}
	ctx := context.Background()

	first, err := f.service.Deliver(ctx, user, f.broadcast(t, 1))
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.Uploaded)
	assert.Equal(t, "fresh-handle", first.Handle)

	require.Len(t, f.transport.uploads, 1)
	assert.Equal(t, "ep1.mp3", f.transport.uploads[0].filename)
	assert.Equal(t, "ID3-audio", f.transport.uploads[0].body)
	require.Len(t, f.repo.updates, 1)
	assert.Equal(t, map[string]interface{}{"telegram_file_id": "fresh-handle"}, f.repo.updates[0].Columns())

	stored := f.broadcast(t, 1)
	assert.Equal(t, "fresh-handle", stored.Handle(entities.SlotPrimary))
	assert.Empty(t, stored.Handle(entities.SlotAlternate))

	second, err := f.service.Deliver(ctx, user, stored)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.False(t, second.Uploaded)

	assert.Len(t, f.transport.uploads, 1, "second delivery must not upload")
	require.Len(t, f.transport.byHandle, 1)
	assert.Equal(t, "fresh-handle", f.transport.byHandle[0].handle)
	assert.Len(t, f.repo.updates, 1, "handle reuse must not write the ledger")
}

func TestDeliver_AlternateVariantWritesAlternateSlot(t *testing.T) {
	f := newFixture(entities.Broadcast{ID: 4, RoleName: "Сантехник", Filename: strPtr("ep4.mp3"), TelegramFileID: strPtr("primary-1")})
	f.files.files["ep4.mp3"] = "bytes"
	user := &entities.User{ID: 8, TelegramID: 1002, ShowRoleName: true}

	delivered, err := f.service.Deliver(context.Background(), user, f.broadcast(t, 4))
	require.NoError(t, err)
	require.NotNil(t, delivered)

	assert.Empty(t, f.transport.byHandle, "primary handle belongs to the other variant")
	require.Len(t, f.repo.updates, 1)
	assert.Equal(t, map[string]interface{}{"telegram_file_id_alt": "fresh-handle"}, f.repo.updates[0].Columns())

	stored := f.broadcast(t, 4)
	assert.Equal(t, "primary-1", stored.Handle(entities.SlotPrimary))
	assert.Equal(t, "fresh-handle", stored.Handle(entities.SlotAlternate))
	assert.Equal(t, "Сантехник", f.transport.uploads[0].meta.Title)
	assert.Equal(t, "Фрэнки - Шоу", f.transport.uploads[0].meta.Performer)
}

func TestDeliver_StaleHandleFallsBackToUpload(t *testing.T) {
	f := newFixture(entities.Broadcast{ID: 2, RoleName: "Директор", Filename: strPtr("ep2.mp3"), TelegramFileID: strPtr("stale123")})
	f.files.files["ep2.mp3"] = "bytes"
	f.transport.stale["stale123"] = true
	user := &entities.User{ID: 9, TelegramID: 1003}

	delivered, err := f.service.Deliver(context.Background(), user, f.broadcast(t, 2))
	require.NoError(t, err)
	require.NotNil(t, delivered)
	assert.True(t, delivered.Uploaded)

	assert.Len(t, f.transport.byHandle, 1)
	assert.Len(t, f.transport.uploads, 1)
	assert.Equal(t, "fresh-handle", f.broadcast(t, 2).Handle(entities.SlotPrimary))
	assert.Equal(t, 1, f.metrics.fallbacks[ReasonStaleHandle])
	assert.Empty(t, f.notifier.messages)
}

func TestDeliver_NoHandleNoFileNotifiesOperatorOnce(t *testing.T) {
	f := newFixture(entities.Broadcast{ID: 3, RoleName: "Почтальон"})
	user := &entities.User{ID: 10, TelegramID: 1004}

	delivered, err := f.service.Deliver(context.Background(), user, f.broadcast(t, 3))
	require.NoError(t, err)
	assert.Nil(t, delivered)

	require.Len(t, f.notifier.messages, 1)
	assert.Contains(t, f.notifier.messages[0], "#3")
	assert.Empty(t, f.transport.uploads)
	assert.Empty(t, f.repo.updates)
	assert.Equal(t, 1, f.metrics.failures[ReasonFileMissing])
}

func TestDeliver_StaleHandleAndMissingFile(t *testing.T) {
	f := newFixture(entities.Broadcast{ID: 5, Filename: strPtr("gone.mp3"), TelegramFileID: strPtr("stale")})
	f.transport.stale["stale"] = true

	delivered, err := f.service.Deliver(context.Background(), &entities.User{TelegramID: 1}, f.broadcast(t, 5))
	require.NoError(t, err)
	assert.Nil(t, delivered)
	assert.Len(t, f.notifier.messages, 1)
	assert.Contains(t, f.notifier.messages[0], "gone.mp3")
}

func TestDeliver_OtherTransportErrorAbandonsWithoutFallback(t *testing.T) {
	f := newFixture(entities.Broadcast{ID: 6, Filename: strPtr("ep6.mp3"), TelegramFileID: strPtr("valid")})
	f.files.files["ep6.mp3"] = "bytes"
	f.transport.sendErr = errors.New("Too Many Requests: retry after 5")

	delivered, err := f.service.Deliver(context.Background(), &entities.User{TelegramID: 1}, f.broadcast(t, 6))
	require.NoError(t, err)
	assert.Nil(t, delivered)
	assert.Empty(t, f.transport.uploads)
	assert.Empty(t, f.notifier.messages)
	assert.Equal(t, 1, f.metrics.failures[ReasonTransport])
}

func TestDeliver_UploadErrorReturnsAbsent(t *testing.T) {
	f := newFixture(entities.Broadcast{ID: 7, Filename: strPtr("ep7.mp3")})
	f.files.files["ep7.mp3"] = "bytes"
	f.transport.uploadErr = errors.New("network error")

	delivered, err := f.service.Deliver(context.Background(), &entities.User{TelegramID: 1}, f.broadcast(t, 7))
	require.NoError(t, err)
	assert.Nil(t, delivered)
	assert.Empty(t, f.repo.updates)
}

func TestDeliver_PersistenceErrorSurfaces(t *testing.T) {
	f := newFixture(entities.Broadcast{ID: 8, Filename: strPtr("ep8.mp3")})
	f.files.files["ep8.mp3"] = "bytes"
	f.repo.updateErr = broadcasterrors.ErrDatabaseOperation

	delivered, err := f.service.Deliver(context.Background(), &entities.User{TelegramID: 1}, f.broadcast(t, 8))
	require.Error(t, err)
	assert.Nil(t, delivered)
	assert.ErrorIs(t, err, broadcasterrors.ErrPersistence)
	assert.Len(t, f.transport.uploads, 1)
	assert.Equal(t, 1, f.metrics.failures[ReasonPersistence])
}

func TestDeliver_StorageErrorIsNotReportedAsMissingFile(t *testing.T) {
	f := newFixture(entities.Broadcast{ID: 9, Filename: strPtr("ep9.mp3")})
	f.files.resolveErr = errors.New("connection refused")

	delivered, err := f.service.Deliver(context.Background(), &entities.User{TelegramID: 1}, f.broadcast(t, 9))
	require.NoError(t, err)
	assert.Nil(t, delivered)
	assert.Empty(t, f.notifier.messages)
	assert.Equal(t, 1, f.metrics.failures[ReasonStorage])
}

func TestTitle(t *testing.T) {
	f := newFixture()
	b := &entities.Broadcast{RoleName: "Бабушка"}

	assert.Equal(t, "Бабушка", f.service.Title(&entities.User{ShowRoleName: true}, b))
	assert.Equal(t, "Угадай, кто звонит", f.service.Title(&entities.User{ShowRoleName: false}, b))
}

func TestLedger_Handle(t *testing.T) {
	b := &entities.Broadcast{ID: 1, TelegramFileID: strPtr("p"), TelegramFileIDAlt: strPtr("a")}
	ledger := NewLedger(newMockBroadcastRepository(*b), b)

	assert.Equal(t, "p", ledger.Handle(false))
	assert.Equal(t, "a", ledger.Handle(true))
	assert.Empty(t, NewLedger(nil, &entities.Broadcast{}).Handle(true))
}

func TestLedger_SetHandleUpdatesRecord(t *testing.T) {
	b := &entities.Broadcast{ID: 1}
	repo := newMockBroadcastRepository(*b)
	ledger := NewLedger(repo, b)

	updated, err := ledger.SetHandle(context.Background(), entities.SlotAlternate, "new")
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Handle(entities.SlotAlternate))
	assert.Equal(t, "new", ledger.Handle(true))
	assert.Empty(t, b.Handle(entities.SlotAlternate), "caller's record is not mutated")
}
