package repositories

import (
	"chat-room/domain"
	apperrors "chat-room/errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestMessageRepository(t *testing.T, db *badger.DB) *MessageRepository {
	repository, err := NewMessageRepository(db, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func Test_Record_And_Get_Messages_In_Insertion_Order(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, openTestDB(t))
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	// Given messages whose timestamps do not follow the order they were stored in
	messages := []domain.Message{
		domain.NewMessage("Clara", domain.Broadcast, "first", domain.MessageTypePublic, at.Add(2*time.Minute)),
		domain.NewMessage("Alice", domain.Broadcast, "second", domain.MessageTypePublic, at),
		domain.NewMessage("Bob", "Alice", "third", domain.MessageTypePrivate, at.Add(1*time.Minute)),
	}
	for _, m := range messages {
		req.NoError(repository.StoreMessage(m))
	}

	// When fetching the history
	fetched, err := repository.GetMessages()
	req.NoError(err)

	// Then messages come back in the order they were stored
	req.Equal(messages, fetched)
}

func Test_Messages_Created_At_The_Same_Instant_Keep_Insertion_Order(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, openTestDB(t))
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	// Given departure notices stamped with one sweep time
	var messages []domain.Message
	for _, name := range []string{"Dan", "Alice", "Carol", "Bob", "Eve", "Zoe", "Mallory", "Trent"} {
		m := domain.NewStatusMessage(name, domain.LeftText, at)
		messages = append(messages, m)
		req.NoError(repository.StoreMessage(m))
	}

	fetched, err := repository.GetMessages()
	req.NoError(err)
	req.Equal(messages, fetched)
}

func Test_Insertion_Order_Survives_Reopening_The_Repository(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	// Given a message stored before a restart
	before, err := NewMessageRepository(db, slog.Default())
	req.NoError(err)
	first := domain.NewMessage("Alice", domain.Broadcast, "before", domain.MessageTypePublic, at)
	req.NoError(before.StoreMessage(first))
	req.NoError(before.Close())

	// When another one is stored after it, with an earlier timestamp
	after := newTestMessageRepository(t, db)
	second := domain.NewMessage("Bob", domain.Broadcast, "after", domain.MessageTypePublic, at.Add(-time.Hour))
	req.NoError(after.StoreMessage(second))

	// Then the history still follows insertion order
	fetched, err := after.GetMessages()
	req.NoError(err)
	req.Equal([]domain.Message{first, second}, fetched)
}

func Test_Get_Messages_On_Empty_Store(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, openTestDB(t))

	fetched, err := repository.GetMessages()

	req.NoError(err)
	req.Empty(fetched)
}

func Test_Get_Message_By_ID(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, openTestDB(t))
	message := domain.NewMessage("Alice", domain.Broadcast, "hi", domain.MessageTypePublic, time.Now().UTC())
	req.NoError(repository.StoreMessage(message))

	fetched, err := repository.GetMessage(message.ID)
	req.NoError(err)
	req.Equal(message, fetched)

	_, err = repository.GetMessage(uuid.New())
	req.ErrorIs(err, apperrors.ErrNotFound)
}

func Test_Update_Message_Keeps_Position(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, openTestDB(t))
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	first := domain.NewMessage("Alice", domain.Broadcast, "first", domain.MessageTypePublic, at)
	second := domain.NewMessage("Bob", domain.Broadcast, "second", domain.MessageTypePublic, at.Add(time.Minute))
	req.NoError(repository.StoreMessage(first))
	req.NoError(repository.StoreMessage(second))

	// When the first message is edited later
	edited := first
	edited.Text = "first, edited"
	edited.Time = domain.FormatTime(at.Add(5 * time.Minute))
	req.NoError(repository.UpdateMessage(edited))

	// Then it is still the first one of the history
	fetched, err := repository.GetMessages()
	req.NoError(err)
	req.Equal([]domain.Message{edited, second}, fetched)
}

func Test_Update_Unknown_Message(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, openTestDB(t))

	err := repository.UpdateMessage(domain.NewMessage("Alice", "Bob", "hi", domain.MessageTypePrivate, time.Now()))

	req.ErrorIs(err, apperrors.ErrNotFound)
}

func Test_Delete_Message(t *testing.T) {
	req := require.New(t)
	repository := newTestMessageRepository(t, openTestDB(t))
	message := domain.NewMessage("Alice", domain.Broadcast, "oops", domain.MessageTypePublic, time.Now().UTC())
	req.NoError(repository.StoreMessage(message))

	req.NoError(repository.DeleteMessage(message.ID))

	fetched, err := repository.GetMessages()
	req.NoError(err)
	req.Empty(fetched)
	_, err = repository.GetMessage(message.ID)
	req.ErrorIs(err, apperrors.ErrNotFound)
	req.ErrorIs(repository.DeleteMessage(message.ID), apperrors.ErrNotFound)
}
