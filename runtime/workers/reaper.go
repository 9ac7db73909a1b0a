package workers

import (
	"chat-room/domain"
	"chat-room/repositories"
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// ReaperWorker evicts participants whose last activity is older than
// staleAfter, every interval, and announces each departure to the room.
type ReaperWorker struct {
	log          *slog.Logger
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	clock        clockwork.Clock
	interval     time.Duration
	staleAfter   time.Duration
}

func NewReaperWorker(
	log *slog.Logger,
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	clock clockwork.Clock,
	interval, staleAfter time.Duration,
) *ReaperWorker {
	return &ReaperWorker{
		log:          log,
		participants: participants,
		messages:     messages,
		clock:        clock,
		interval:     interval,
		staleAfter:   staleAfter,
	}
}

// Run sweeps on every tick until ctx is canceled.
// A failed sweep is logged and never stops the loop.
func (w *ReaperWorker) Run(ctx context.Context) error {
	w.log.Info("Starting reaper worker", "interval", w.interval, "stale_after", w.staleAfter)
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			w.Sweep(ctx)
		}
	}
}

// Sweep removes stale participants and returns how many were deleted.
//  1. Stale participants are read with the cutoff computed once for the sweep.
//  2. A departure notice is written for each of them, one failure does not block the others.
//  3. They are deleted in one batch, re-evaluating the same cutoff.
//
// A participant refreshing between 1 and 3 with a timestamp still under the
// cutoff is evicted anyway.
func (w *ReaperWorker) Sweep(ctx context.Context) int {
	now := w.clock.Now()
	cutoff := domain.StaleCutoff(now, w.staleAfter)

	stale, err := w.participants.GetStale(cutoff)
	if err != nil {
		w.log.ErrorContext(ctx, "Reaper failed to read stale participants", "error", err)
		return 0
	}
	if len(stale) == 0 {
		return 0
	}

	for _, p := range stale {
		if err := w.messages.StoreMessage(domain.NewStatusMessage(p.Name, domain.LeftText, now)); err != nil {
			w.log.WarnContext(ctx, "Reaper failed to announce departure", "name", p.Name, "error", err)
		}
	}

	deleted, err := w.participants.DeleteStale(cutoff)
	if err != nil {
		w.log.ErrorContext(ctx, "Reaper failed to delete stale participants", "error", err)
		return 0
	}
	w.log.InfoContext(ctx, "Stale participants evicted", "count", deleted)
	return deleted
}
