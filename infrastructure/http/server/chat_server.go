package server

import (
	"chat-room/domain"
	"chat-room/sanitize"
	"chat-room/services"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/samber/lo"
)

const maxBodyBytes = 1 << 16

type ChatServer struct {
	log      *slog.Logger
	presence services.IPresenceService
	messages services.IMessageService
}

func NewChatServer(log *slog.Logger, presence services.IPresenceService, messages services.IMessageService) *ChatServer {
	return &ChatServer{log: log, presence: presence, messages: messages}
}

func (s *ChatServer) Join(w http.ResponseWriter, r *http.Request) {
	var body participantRequest
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.presence.Join(r.Context(), sanitize.Text(body.Name)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *ChatServer) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := s.presence.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, http.StatusOK, lo.Map(participants, toParticipantResponse))
}

func (s *ChatServer) Heartbeat(w http.ResponseWriter, r *http.Request) {
	if err := s.presence.Heartbeat(r.Context(), user(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *ChatServer) PostMessage(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if !s.decode(w, r, &body) {
		return
	}
	message, err := s.messages.Post(r.Context(), domain.PostMessageCommand{
		Sender: user(r),
		To:     sanitize.Text(body.To),
		Text:   sanitize.Text(body.Text),
		Type:   domain.MessageType(sanitize.Text(body.Type)),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, http.StatusCreated, toMessageResponse(message, 0))
}

func (s *ChatServer) ListMessages(w http.ResponseWriter, r *http.Request) {
	var limit *string
	if r.URL.Query().Has("limit") {
		limit = lo.ToPtr(r.URL.Query().Get("limit"))
	}
	messages, err := s.messages.List(r.Context(), domain.ListMessagesCommand{
		Viewer: user(r),
		Limit:  sanitize.OptionalText(limit),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, http.StatusOK, lo.Map(messages, toMessageResponse))
}

func (s *ChatServer) EditMessage(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if !s.decode(w, r, &body) {
		return
	}
	message, err := s.messages.Edit(r.Context(), domain.EditMessageCommand{
		ID:     r.PathValue("id"),
		Sender: user(r),
		To:     sanitize.Text(body.To),
		Text:   sanitize.Text(body.Text),
		Type:   domain.MessageType(sanitize.Text(body.Type)),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, http.StatusOK, toMessageResponse(message, 0))
}

func (s *ChatServer) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	err := s.messages.Delete(r.Context(), domain.DeleteMessageCommand{
		ID:     r.PathValue("id"),
		Sender: user(r),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *ChatServer) Health(w http.ResponseWriter, _ *http.Request) {
	s.write(w, http.StatusOK, map[string]string{"status": "ok"})
}

// user returns the sanitized identity claimed in the User header.
func user(r *http.Request) string {
	return sanitize.Text(r.Header.Get(UserHeader))
}

func (s *ChatServer) decode(w http.ResponseWriter, r *http.Request, body any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(body); err != nil {
		s.write(w, http.StatusUnprocessableEntity, errorResponse{Error: fmt.Sprintf("invalid body: %v", err)})
		return false
	}
	return true
}

func (s *ChatServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.log.DebugContext(r.Context(), "Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	s.write(w, status, errorResponse{Error: publicMessage(status, err)})
}

func (s *ChatServer) write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Warn("Failed to write response", "error", err)
	}
}
