// Package domain contains core concepts of the chat room.
// This file defines Participant entities and the presence TTL rules.
// No runtime, network, or storage logic should be added here.
package domain

import "time"

// Participant is a named occupant of the room. LastStatus is the
// last known activity in milliseconds since epoch.
type Participant struct {
	Name       string
	LastStatus int64
}

func NewParticipant(name string, now time.Time) Participant {
	return Participant{Name: name, LastStatus: now.UnixMilli()}
}

// StaleCutoff returns the LastStatus value under which a participant is
// considered stale at now. The same cutoff must be used for selecting and
// deleting stale participants within one sweep.
func StaleCutoff(now time.Time, staleAfter time.Duration) int64 {
	return now.UnixMilli() - staleAfter.Milliseconds()
}

func (p Participant) IsStale(cutoff int64) bool {
	return p.LastStatus < cutoff
}
