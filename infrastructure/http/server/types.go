package server

import "chat-room/domain"

// UserHeader carries the claimed identity of the caller.
const UserHeader = "User"

type participantRequest struct {
	Name string `json:"name"`
}

type participantResponse struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type messageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
}

type messageResponse struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toParticipantResponse(p domain.Participant, _ int) participantResponse {
	return participantResponse{Name: p.Name, LastStatus: p.LastStatus}
}

func toMessageResponse(m domain.Message, _ int) messageResponse {
	return messageResponse{
		ID:   m.ID.String(),
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Type: string(m.Type),
		Time: m.Time,
	}
}
