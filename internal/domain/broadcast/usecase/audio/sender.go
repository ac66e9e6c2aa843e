package audio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/deps"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
)

// Fallback and failure reasons reported to metrics
const (
	ReasonNoHandle    = "no_handle"
	ReasonStaleHandle = "stale_handle"
	ReasonFileMissing = "file_missing"
	ReasonStorage     = "storage"
	ReasonTransport   = "transport"
	ReasonUpload      = "upload"
	ReasonPersistence = "persistence"
)

// SendRequest is one delivery attempt of a broadcast to a chat
type SendRequest struct {
	ChatID    int64
	Alternate bool
	Meta      entities.AudioMeta
}

// Sender picks the cheapest way to deliver audio and heals the ledger when a handle went stale
type Sender struct {
	transport deps.AudioTransport
	files     deps.FileStore
	notifier  deps.OperatorNotifier
	metrics   deps.DeliveryMetrics
	logger    zerolog.Logger
}

// NewSender creates a new Sender
func NewSender(
	transport deps.AudioTransport,
	files deps.FileStore,
	notifier deps.OperatorNotifier,
	metrics deps.DeliveryMetrics,
	logger zerolog.Logger,
) *Sender {
	return &Sender{
		transport: transport,
		files:     files,
		notifier:  notifier,
		metrics:   metrics,
		logger:    logger,
	}
}

// Send delivers the ledger's broadcast. It returns (nil, nil) when the attempt was
// abandoned and the caller should try another broadcast; the only returned error
// is ErrPersistence.
func (s *Sender) Send(ctx context.Context, ledger *Ledger, req SendRequest) (*entities.DeliveredAudio, error) {
	broadcastID := ledger.Broadcast().ID
	log := s.logger.With().
		Int64("broadcast_id", broadcastID).
		Int64("chat_id", req.ChatID).
		Str("variant", string(entities.SlotFor(req.Alternate))).
		Logger()

	handle := ledger.Handle(req.Alternate)
	if handle == "" {
		s.metrics.RecordFallback(ReasonNoHandle)
		log.Debug().Msg("No asset handle on record, uploading from file store")
		return s.fallback(ctx, ledger, req, log)
	}

	delivered, err := s.transport.SendByHandle(ctx, req.ChatID, handle, req.Meta)
	switch {
	case err == nil:
		s.metrics.RecordHandleHit()
		log.Debug().Msg("Audio delivered by asset handle")
		return delivered, nil

	case errors.Is(err, broadcasterrors.ErrAssetUnresolvable):
		s.metrics.RecordFallback(ReasonStaleHandle)
		log.Warn().Str("handle", handle).Msg("Asset handle is stale, uploading from file store")
		return s.fallback(ctx, ledger, req, log)

	default:
		s.metrics.RecordFailure(ReasonTransport)
		log.Error().Err(err).Msg("Failed to send audio by handle")
		return nil, nil
	}
}

func (s *Sender) fallback(ctx context.Context, ledger *Ledger, req SendRequest, log zerolog.Logger) (*entities.DeliveredAudio, error) {
	broadcast := ledger.Broadcast()
	filename := broadcast.FileName()

	source, err := s.files.Resolve(ctx, filename)
	if err != nil {
		if errors.Is(err, broadcasterrors.ErrSourceFileMissing) {
			s.metrics.RecordFailure(ReasonFileMissing)
			text := fmt.Sprintf("Файл %q выпуска #%d отсутствует в хранилище", filename, broadcast.ID)
			log.Error().Err(err).Str("filename", filename).Msg("Audio file missing for broadcast")
			s.notifier.Notify(ctx, text)
			return nil, nil
		}

		s.metrics.RecordFailure(ReasonStorage)
		log.Error().Err(err).Str("filename", filename).Msg("Failed to resolve audio file")
		return nil, nil
	}

	data, err := s.files.Open(ctx, source)
	if err != nil {
		s.metrics.RecordFailure(ReasonStorage)
		log.Error().Err(err).Str("filename", filename).Msg("Failed to open audio file")
		return nil, nil
	}
	defer data.Close()

	started := time.Now()
	delivered, err := s.transport.Upload(ctx, req.ChatID, entities.UploadRequest{
		Filename: source.Filename,
		Data:     data,
		Meta:     req.Meta,
	})
	if err != nil {
		s.metrics.RecordFailure(ReasonUpload)
		log.Error().Err(err).Str("filename", filename).Msg("Failed to upload audio")
		return nil, nil
	}
	s.metrics.RecordUpload(time.Since(started))

	if delivered.Handle == "" {
		log.Warn().Msg("Upload returned no asset handle, ledger left unchanged")
		return delivered, nil
	}

	slot := entities.SlotFor(req.Alternate)
	if _, err := ledger.SetHandle(ctx, slot, delivered.Handle); err != nil {
		s.metrics.RecordFailure(ReasonPersistence)
		log.Error().Err(err).Msg("Failed to persist new asset handle")
		return nil, err
	}

	log.Info().Str("slot", string(slot)).Msg("Audio uploaded and asset handle stored")
	return delivered, nil
}
