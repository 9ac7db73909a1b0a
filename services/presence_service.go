//go:generate go run go.uber.org/mock/mockgen -source=presence_service.go -destination=../mocks/mock_presence_service.go -package=mocks
package services

import (
	"chat-room/domain"
	apperrors "chat-room/errors"
	"chat-room/repositories"
	"chat-room/validation"
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
)

type IPresenceService interface {
	Join(ctx context.Context, name string) error
	List(ctx context.Context) ([]domain.Participant, error)
	Heartbeat(ctx context.Context, name string) error
	IsActive(ctx context.Context, name string) (bool, error)
}

// PresenceService tracks who is in the room and stamps their activity.
type PresenceService struct {
	log          *slog.Logger
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	clock        clockwork.Clock
}

func NewPresenceService(
	log *slog.Logger,
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	clock clockwork.Clock,
) *PresenceService {
	return &PresenceService{log: log, participants: participants, messages: messages, clock: clock}
}

// Join admits a participant and announces it to the room.
// The existence check and the insert are not atomic: two concurrent joins
// with the same name may both succeed.
// The participant insert and the status message insert are two separate
// writes. If the second one fails the participant stays registered and
// the store failure is returned.
func (s *PresenceService) Join(ctx context.Context, name string) error {
	if err := validation.ValidateParticipant(validation.ParticipantRequest{Name: name}); err != nil {
		return err
	}

	exists, err := s.participants.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %q", apperrors.ErrConflict, name)
	}

	now := s.clock.Now()
	if err := s.participants.CreateParticipant(domain.NewParticipant(name, now)); err != nil {
		return err
	}

	if err := s.messages.StoreMessage(domain.NewStatusMessage(name, domain.JoinedText, now)); err != nil {
		s.log.ErrorContext(ctx, "Participant registered without join notice", "name", name, "error", err)
		return err
	}

	s.log.InfoContext(ctx, "Participant joined", "name", name)
	return nil
}

func (s *PresenceService) List(_ context.Context) ([]domain.Participant, error) {
	return s.participants.GetParticipants()
}

// Heartbeat refreshes the activity timestamp of an active participant.
func (s *PresenceService) Heartbeat(ctx context.Context, name string) error {
	if err := validation.ValidateViewer(validation.ViewerRequest{User: name}); err != nil {
		return err
	}
	if err := s.participants.Touch(name, s.clock.Now().UnixMilli()); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "Heartbeat", "name", name)
	return nil
}

func (s *PresenceService) IsActive(_ context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	return s.participants.Exists(name)
}
