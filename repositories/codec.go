package repositories

import (
	"chat-room/domain"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

const (
	participantPrefix  = "participant:"
	messagePrefix      = "msg:"
	messageIndexPrefix = "idx:msg:"
	messageSequenceKey = "seq:msg"
	// messageSequenceBandwidth is how many positions are leased from the store at once.
	messageSequenceBandwidth = 100
)

// encMode uses Core Deterministic Encoding so the same record always
// produces the same bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("repositories: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("repositories: CBOR decoder initialization failed: " + err.Error())
	}
}

type participantRecord struct {
	Name       string `cbor:"1,keyasint"`
	LastStatus int64  `cbor:"2,keyasint"`
}

type messageRecord struct {
	ID        string `cbor:"1,keyasint"`
	From      string `cbor:"2,keyasint"`
	To        string `cbor:"3,keyasint"`
	Text      string `cbor:"4,keyasint"`
	Type      string `cbor:"5,keyasint"`
	Time      string `cbor:"6,keyasint"`
	CreatedAt int64  `cbor:"7,keyasint"`
}

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}

// messageKey is formatted as "msg:{position_padded}:{uuid}" so that a
// prefix scan returns messages in insertion order, whatever their timestamps.
func messageKey(position uint64, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", messagePrefix, position, id))
}

func messageIndexKey(id uuid.UUID) []byte {
	return []byte(messageIndexPrefix + id.String())
}

func encodeParticipant(p domain.Participant) ([]byte, error) {
	return encMode.Marshal(participantRecord{Name: p.Name, LastStatus: p.LastStatus})
}

func decodeParticipant(data []byte) (domain.Participant, error) {
	var record participantRecord
	if err := decMode.Unmarshal(data, &record); err != nil {
		return domain.Participant{}, err
	}
	return domain.Participant{Name: record.Name, LastStatus: record.LastStatus}, nil
}

func encodeMessage(m domain.Message) ([]byte, error) {
	return encMode.Marshal(messageRecord{
		ID:        m.ID.String(),
		From:      m.From,
		To:        m.To,
		Text:      m.Text,
		Type:      string(m.Type),
		Time:      m.Time,
		CreatedAt: m.CreatedAt.UnixNano(),
	})
}

func decodeMessage(data []byte) (domain.Message, error) {
	var record messageRecord
	if err := decMode.Unmarshal(data, &record); err != nil {
		return domain.Message{}, err
	}
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:        id,
		From:      record.From,
		To:        record.To,
		Text:      record.Text,
		Type:      domain.MessageType(record.Type),
		Time:      record.Time,
		CreatedAt: time.Unix(0, record.CreatedAt).UTC(),
	}, nil
}

// DescribeRecord decodes a raw badger entry for inspection tools.
// It returns the record kind and a one-line summary.
func DescribeRecord(key string, val []byte) (string, string) {
	switch {
	case strings.HasPrefix(key, participantPrefix):
		p, err := decodeParticipant(val)
		if err != nil {
			return "PARTICIPANT", "Error: decode failed"
		}
		return "PARTICIPANT", fmt.Sprintf("%s last seen %s", p.Name, time.UnixMilli(p.LastStatus).Format(time.RFC3339))
	case strings.HasPrefix(key, messagePrefix):
		m, err := decodeMessage(val)
		if err != nil {
			return "MESSAGE", "Error: decode failed"
		}
		return string(m.Type), fmt.Sprintf("[%s] %s -> %s: %s", m.Time, m.From, m.To, m.Text)
	case strings.HasPrefix(key, messageIndexPrefix):
		return "INDEX", string(val)
	case key == messageSequenceKey && len(val) == 8:
		return "SEQUENCE", fmt.Sprintf("leased up to %d", binary.BigEndian.Uint64(val))
	default:
		return "RAW", fmt.Sprintf("Size: %d bytes", len(val))
	}
}
