// Package domain contains core concepts of the chat room.
// This file defines Message records and visibility rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypePublic  MessageType = "message"
	MessageTypePrivate MessageType = "private_message"
	MessageTypeStatus  MessageType = "status"
)

const (
	// Broadcast is the recipient meaning "everyone in the room".
	Broadcast  = "Todos"
	JoinedText = "entra na sala..."
	LeftText   = "sai da sala..."
	TimeLayout = "15:04:05"
)

// Message represents a chat event. CreatedAt fixes its position in the
// history and never changes on edit, Time does.
type Message struct {
	ID        uuid.UUID
	From      string
	To        string
	Text      string
	Type      MessageType
	Time      string
	CreatedAt time.Time
}

// IsClientWritable reports whether clients may author messages of this type.
// Status messages are reserved to the server.
func (t MessageType) IsClientWritable() bool {
	return t == MessageTypePublic || t == MessageTypePrivate
}

// VisibleTo reports whether viewer may read the message.
// Public and status messages are visible to everyone, private ones only
// to their sender and recipient.
func (m Message) VisibleTo(viewer string) bool {
	return m.To == viewer ||
		m.From == viewer ||
		m.Type == MessageTypePublic ||
		m.Type == MessageTypeStatus
}

func NewMessage(from, to, text string, messageType MessageType, now time.Time) Message {
	return Message{
		ID:        uuid.New(),
		From:      from,
		To:        to,
		Text:      text,
		Type:      messageType,
		Time:      FormatTime(now),
		CreatedAt: now,
	}
}

// NewStatusMessage builds a system notice such as a join or a departure.
func NewStatusMessage(name, text string, now time.Time) Message {
	return NewMessage(name, Broadcast, text, MessageTypeStatus, now)
}

func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}
