//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-room/domain"
	apperrors "chat-room/errors"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(message domain.Message) error
	GetMessage(id uuid.UUID) (domain.Message, error)
	UpdateMessage(message domain.Message) error
	DeleteMessage(id uuid.UUID) error
	GetMessages() ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
	seq *badger.Sequence
}

// NewMessageRepository leases the history position sequence.
// Close must be called before the database is closed.
func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(messageSequenceKey), messageSequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("%w: message sequence: %v", apperrors.ErrStoreFailure, err)
	}
	return &MessageRepository{db: db, log: log, seq: seq}, nil
}

// Close returns the unused leased positions to the store.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

// StoreMessage persists a message under "msg:{position_padded}:{uuid}" and
// an index entry "idx:msg:{uuid}" pointing to it, in the same transaction.
//  1. The position comes from a store sequence, so history order is insertion
//     order even when timestamps collide or the clock steps back.
//  2. The 20-digit zero padding keeps lexicographical order numeric.
//
// CreatedAt is only stored as data.
func (m *MessageRepository) StoreMessage(message domain.Message) error {
	data, err := encodeMessage(message)
	if err != nil {
		return fmt.Errorf("%w: marshal failed: %v", apperrors.ErrStoreFailure, err)
	}
	position, err := m.seq.Next()
	if err != nil {
		return fmt.Errorf("%w: next message position: %v", apperrors.ErrStoreFailure, err)
	}
	key := messageKey(position, message.ID)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(messageIndexKey(message.ID), key)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreFailure, err)
	}
	return nil
}

// GetMessage resolves the message through its id index.
func (m *MessageRepository) GetMessage(id uuid.UUID) (domain.Message, error) {
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := m.lookup(txn, id)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			message, err = decodeMessage(val)
			return err
		})
	})
	if err != nil {
		return domain.Message{}, m.wrap(id, err)
	}
	return message, nil
}

// UpdateMessage overwrites the stored value of an existing message.
// The primary key is kept, so the message keeps its place in the history.
func (m *MessageRepository) UpdateMessage(message domain.Message) error {
	data, err := encodeMessage(message)
	if err != nil {
		return fmt.Errorf("%w: marshal failed: %v", apperrors.ErrStoreFailure, err)
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		item, err := m.lookup(txn, message.ID)
		if err != nil {
			return err
		}
		return txn.Set(item.KeyCopy(nil), data)
	})
	return m.wrap(message.ID, err)
}

// DeleteMessage removes both the message and its index entry.
func (m *MessageRepository) DeleteMessage(id uuid.UUID) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		item, err := m.lookup(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(item.KeyCopy(nil)); err != nil {
			return err
		}
		return txn.Delete(messageIndexKey(id))
	})
	return m.wrap(id, err)
}

// GetMessages returns the whole history in insertion order.
func (m *MessageRepository) GetMessages() ([]domain.Message, error) {
	messages := make([]domain.Message, 0)
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				message, err := decodeMessage(val)
				if err != nil {
					return fmt.Errorf("failed to unmarshal message: %w", err)
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreFailure, err)
	}
	m.log.Debug("Messages loaded", "count", len(messages))
	return messages, nil
}

// lookup follows the index entry of id to the primary message item.
func (m *MessageRepository) lookup(txn *badger.Txn, id uuid.UUID) (*badger.Item, error) {
	indexItem, err := txn.Get(messageIndexKey(id))
	if err != nil {
		return nil, err
	}
	key, err := indexItem.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return txn.Get(key)
}

func (m *MessageRepository) wrap(id uuid.UUID, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return fmt.Errorf("%w: message %s", apperrors.ErrNotFound, id)
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrStoreFailure, err)
	}
}
