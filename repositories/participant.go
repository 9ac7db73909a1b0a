//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"chat-room/domain"
	apperrors "chat-room/errors"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

type IParticipantRepository interface {
	Exists(name string) (bool, error)
	CreateParticipant(participant domain.Participant) error
	GetParticipants() ([]domain.Participant, error)
	Touch(name string, lastStatus int64) error
	GetStale(cutoff int64) ([]domain.Participant, error)
	DeleteStale(cutoff int64) (int, error)
}

type ParticipantRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewParticipantRepository(db *badger.DB, log *slog.Logger) *ParticipantRepository {
	return &ParticipantRepository{db: db, log: log}
}

// Exists reports whether an active participant holds exactly this name.
func (r ParticipantRepository) Exists(name string) (bool, error) {
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(participantKey(name))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", apperrors.ErrStoreFailure, err)
	}
}

// CreateParticipant stores the participant under "participant:{name}".
// It does not check for an existing record, uniqueness is enforced by the caller.
func (r ParticipantRepository) CreateParticipant(participant domain.Participant) error {
	data, err := encodeParticipant(participant)
	if err != nil {
		return fmt.Errorf("%w: marshal failed: %v", apperrors.ErrStoreFailure, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(participantKey(participant.Name), data)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreFailure, err)
	}
	return nil
}

// GetParticipants returns every active participant in key order.
func (r ParticipantRepository) GetParticipants() ([]domain.Participant, error) {
	return r.scan(func(domain.Participant) bool { return true })
}

// Touch refreshes the activity timestamp of an existing participant.
// Returns ErrNotFound when nobody holds the name.
func (r ParticipantRepository) Touch(name string, lastStatus int64) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(name)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		data, err := encodeParticipant(domain.Participant{Name: name, LastStatus: lastStatus})
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return fmt.Errorf("%w: participant %q", apperrors.ErrNotFound, name)
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrStoreFailure, err)
	}
}

// GetStale returns participants whose LastStatus is older than cutoff.
func (r ParticipantRepository) GetStale(cutoff int64) ([]domain.Participant, error) {
	return r.scan(func(p domain.Participant) bool { return p.IsStale(cutoff) })
}

// DeleteStale removes, in a single transaction, every participant whose
// LastStatus is older than cutoff at the time of the transaction.
// The predicate is evaluated again here, so a participant refreshed after
// GetStale survives unless its new timestamp is still under the cutoff.
func (r ParticipantRepository) DeleteStale(cutoff int64) (int, error) {
	var deleted int
	err := r.db.Update(func(txn *badger.Txn) error {
		var keys [][]byte
		err := func() error {
			prefix := []byte(participantPrefix)
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				item := it.Item()
				err := item.Value(func(val []byte) error {
					p, err := decodeParticipant(val)
					if err != nil {
						return err
					}
					if p.IsStale(cutoff) {
						keys = append(keys, item.KeyCopy(nil))
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		}()
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		deleted = len(keys)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrStoreFailure, err)
	}
	if deleted > 0 {
		r.log.Debug("Stale participants deleted", "count", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}

func (r ParticipantRepository) scan(keep func(domain.Participant) bool) ([]domain.Participant, error) {
	participants := make([]domain.Participant, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(participantPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				p, err := decodeParticipant(val)
				if err != nil {
					return fmt.Errorf("failed to unmarshal participant: %w", err)
				}
				if keep(p) {
					participants = append(participants, p)
				}
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
	return participants, nil
}
