package audio

import (
	"context"

	"github.com/RaShaimardanov/franky/config"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/deps"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
)

// Service is the entry point command handlers use to deliver a broadcast to a user
type Service struct {
	repo         deps.BroadcastRepository
	sender       *Sender
	defaultTitle string
	performer    string
}

// NewService creates a new Service
func NewService(repo deps.BroadcastRepository, sender *Sender, cfg *config.DeliveryConfig) *Service {
	return &Service{
		repo:         repo,
		sender:       sender,
		defaultTitle: cfg.DefaultTitle,
		performer:    cfg.Performer,
	}
}

// Deliver sends the broadcast to the user's chat. A nil descriptor without error
// means the broadcast is unusable right now and another one should be picked.
func (s *Service) Deliver(ctx context.Context, user *entities.User, broadcast *entities.Broadcast) (*entities.DeliveredAudio, error) {
	if user == nil || broadcast == nil {
		return nil, broadcasterrors.ErrInvalidUser
	}

	ledger := NewLedger(s.repo, broadcast)

	return s.sender.Send(ctx, ledger, SendRequest{
		ChatID:    user.TelegramID,
		Alternate: user.ShowRoleName,
		Meta: entities.AudioMeta{
			BroadcastID: broadcast.ID,
			Title:       s.Title(user, broadcast),
			Performer:   s.performer,
		},
	})
}

// Title is the broadcast's display name for users who see role names, the default title otherwise
func (s *Service) Title(user *entities.User, broadcast *entities.Broadcast) string {
	if user.ShowRoleName {
		return broadcast.RoleName
	}
	return s.defaultTitle
}
