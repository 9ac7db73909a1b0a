package domain

// PostMessageCommand is the sanitized intent of a participant to write to the room.
type PostMessageCommand struct {
	Sender string
	To     string
	Text   string
	Type   MessageType
}

type EditMessageCommand struct {
	ID     string
	Sender string
	To     string
	Text   string
	Type   MessageType
}

type DeleteMessageCommand struct {
	ID     string
	Sender string
}

// ListMessagesCommand carries the raw limit as received, parsing is part of validation.
type ListMessagesCommand struct {
	Viewer string
	Limit  *string
}
