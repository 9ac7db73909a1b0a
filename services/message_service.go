//go:generate go run go.uber.org/mock/mockgen -source=message_service.go -destination=../mocks/mock_message_service.go -package=mocks
package services

import (
	"chat-room/domain"
	apperrors "chat-room/errors"
	"chat-room/repositories"
	"chat-room/validation"
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
)

type IMessageService interface {
	Post(ctx context.Context, cmd domain.PostMessageCommand) (domain.Message, error)
	Edit(ctx context.Context, cmd domain.EditMessageCommand) (domain.Message, error)
	Delete(ctx context.Context, cmd domain.DeleteMessageCommand) error
	List(ctx context.Context, cmd domain.ListMessagesCommand) ([]domain.Message, error)
}

// MessageService validates, authorizes and persists messages.
// Authorization always runs in the same order: membership (ErrUnauthorized),
// message type (ErrInvalidType), payload, existence (ErrNotFound), ownership (ErrForbidden).
// A sender outside the room learns nothing about its payload.
type MessageService struct {
	log      *slog.Logger
	presence IPresenceService
	messages repositories.IMessageRepository
	clock    clockwork.Clock
}

func NewMessageService(
	log *slog.Logger,
	presence IPresenceService,
	messages repositories.IMessageRepository,
	clock clockwork.Clock,
) *MessageService {
	return &MessageService{log: log, presence: presence, messages: messages, clock: clock}
}

func (s *MessageService) Post(ctx context.Context, cmd domain.PostMessageCommand) (domain.Message, error) {
	if err := s.authorizeWrite(ctx, cmd.Sender, cmd.To, cmd.Text, cmd.Type); err != nil {
		return domain.Message{}, err
	}

	message := domain.NewMessage(cmd.Sender, cmd.To, cmd.Text, cmd.Type, s.clock.Now())
	if err := s.messages.StoreMessage(message); err != nil {
		return domain.Message{}, err
	}
	s.log.DebugContext(ctx, "Message posted", "id", message.ID, "from", message.From, "type", message.Type)
	return message, nil
}

// Edit overwrites recipient, text, type and time of a message owned by the sender.
// Sender and position in the history never change.
func (s *MessageService) Edit(ctx context.Context, cmd domain.EditMessageCommand) (domain.Message, error) {
	if err := s.authorizeWrite(ctx, cmd.Sender, cmd.To, cmd.Text, cmd.Type); err != nil {
		return domain.Message{}, err
	}

	message, err := s.owned(cmd.ID, cmd.Sender)
	if err != nil {
		return domain.Message{}, err
	}

	message.To = cmd.To
	message.Text = cmd.Text
	message.Type = cmd.Type
	message.Time = domain.FormatTime(s.clock.Now())
	if err := s.messages.UpdateMessage(message); err != nil {
		return domain.Message{}, err
	}
	s.log.DebugContext(ctx, "Message edited", "id", message.ID, "from", message.From)
	return message, nil
}

// Delete removes a message owned by the sender. Membership is not required.
func (s *MessageService) Delete(ctx context.Context, cmd domain.DeleteMessageCommand) error {
	if err := validation.ValidateViewer(validation.ViewerRequest{User: cmd.Sender}); err != nil {
		return err
	}

	message, err := s.owned(cmd.ID, cmd.Sender)
	if err != nil {
		return err
	}

	if err := s.messages.DeleteMessage(message.ID); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "Message deleted", "id", message.ID, "from", message.From)
	return nil
}

// List returns the messages visible to the viewer in history order.
// With a limit, only the last limit visible messages are kept.
// Listing does not require the viewer to be in the room.
func (s *MessageService) List(_ context.Context, cmd domain.ListMessagesCommand) ([]domain.Message, error) {
	if err := validation.ValidateViewer(validation.ViewerRequest{User: cmd.Viewer}); err != nil {
		return nil, err
	}
	limit, err := validation.ParseLimit(cmd.Limit)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.GetMessages()
	if err != nil {
		return nil, err
	}

	visible := lo.Filter(messages, func(m domain.Message, _ int) bool {
		return m.VisibleTo(cmd.Viewer)
	})
	if limit == nil {
		return visible, nil
	}
	return lo.Subset(visible, -*limit, uint(*limit)), nil
}

func (s *MessageService) authorizeWrite(ctx context.Context, sender, to, text string, messageType domain.MessageType) error {
	active, err := s.presence.IsActive(ctx, sender)
	if err != nil {
		return err
	}
	if !active {
		return fmt.Errorf("%w: %q", apperrors.ErrUnauthorized, sender)
	}

	if !messageType.IsClientWritable() {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidType, messageType)
	}

	return validation.ValidateMessage(validation.MessageRequest{
		To:   to,
		Text: text,
		Type: string(messageType),
	})
}

// owned loads a message and checks that sender wrote it.
func (s *MessageService) owned(rawID, sender string) (domain.Message, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: message %q", apperrors.ErrNotFound, rawID)
	}
	message, err := s.messages.GetMessage(id)
	if err != nil {
		return domain.Message{}, err
	}
	if message.From != sender {
		return domain.Message{}, fmt.Errorf("%w: message %s", apperrors.ErrForbidden, id)
	}
	return message, nil
}
