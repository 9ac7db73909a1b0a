package workers

import (
	"chat-room/domain"
	apperrors "chat-room/errors"
	"chat-room/mocks"
	"chat-room/repositories"
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jonboulle/clockwork"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var reaperNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func TestReaper_Sweep_Evicts_And_Announces(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	messages := mocks.NewMockIMessageRepository(ctrl)
	fake := clockwork.NewFakeClockAt(reaperNow)
	reaper := NewReaperWorker(logs.GetLoggerFromLevel(slog.LevelDebug), participants, messages, fake, 15*time.Second, 10*time.Second)
	cutoff := reaperNow.Add(-10 * time.Second).UnixMilli()

	stale := []domain.Participant{{Name: "alice", LastStatus: 1}, {Name: "bob", LastStatus: 2}}
	var announced []string
	gomock.InOrder(
		participants.EXPECT().GetStale(cutoff).Return(stale, nil),
		messages.EXPECT().StoreMessage(gomock.Any()).DoAndReturn(func(m domain.Message) error {
			announced = append(announced, m.From)
			req.Equal(domain.MessageTypeStatus, m.Type)
			req.Equal(domain.LeftText, m.Text)
			req.Equal(domain.Broadcast, m.To)
			return nil
		}).Times(2),
		participants.EXPECT().DeleteStale(cutoff).Return(2, nil),
	)

	deleted := reaper.Sweep(context.Background())

	req.Equal(2, deleted)
	req.Equal([]string{"alice", "bob"}, announced)
}

func TestReaper_Sweep_Announce_Failure_Does_Not_Block_Others(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	messages := mocks.NewMockIMessageRepository(ctrl)
	reaper := NewReaperWorker(slog.Default(), participants, messages, clockwork.NewFakeClockAt(reaperNow), time.Second, 10*time.Second)

	participants.EXPECT().GetStale(gomock.Any()).
		Return([]domain.Participant{{Name: "alice"}, {Name: "bob"}}, nil)
	messages.EXPECT().StoreMessage(gomock.Any()).Return(apperrors.ErrStoreFailure)
	messages.EXPECT().StoreMessage(gomock.Any()).Return(nil)
	participants.EXPECT().DeleteStale(gomock.Any()).Return(2, nil)

	req.Equal(2, reaper.Sweep(context.Background()))
}

func TestReaper_Sweep_Nothing_Stale(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	messages := mocks.NewMockIMessageRepository(ctrl)
	reaper := NewReaperWorker(slog.Default(), participants, messages, clockwork.NewFakeClockAt(reaperNow), time.Second, 10*time.Second)

	participants.EXPECT().GetStale(gomock.Any()).Return([]domain.Participant{}, nil)
	messages.EXPECT().StoreMessage(gomock.Any()).Times(0)
	participants.EXPECT().DeleteStale(gomock.Any()).Times(0)

	req.Zero(reaper.Sweep(context.Background()))
}

func TestReaper_Sweep_Store_Failure_Is_Swallowed(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	messages := mocks.NewMockIMessageRepository(ctrl)
	reaper := NewReaperWorker(slog.Default(), participants, messages, clockwork.NewFakeClockAt(reaperNow), time.Second, 10*time.Second)

	participants.EXPECT().GetStale(gomock.Any()).Return(nil, apperrors.ErrStoreFailure)

	req.NotPanics(func() { reaper.Sweep(context.Background()) })
}

func TestReaper_Run_Keeps_Sweeping_After_Failures(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	messages := mocks.NewMockIMessageRepository(ctrl)
	reaper := NewReaperWorker(slog.Default(), participants, messages, clockwork.NewRealClock(), 10*time.Millisecond, 10*time.Second)

	var sweeps atomic.Int32
	participants.EXPECT().GetStale(gomock.Any()).
		DoAndReturn(func(int64) ([]domain.Participant, error) {
			sweeps.Add(1)
			return nil, apperrors.ErrStoreFailure
		}).
		AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() { errChan <- reaper.Run(ctx) }()

	req.Eventually(func() bool { return sweeps.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	req.ErrorIs(<-errChan, context.Canceled)
}

func TestReaper_Run_Sweeps_On_Each_Interval(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	messages := mocks.NewMockIMessageRepository(ctrl)
	fake := clockwork.NewFakeClockAt(reaperNow)
	reaper := NewReaperWorker(slog.Default(), participants, messages, fake, 15*time.Second, 10*time.Second)

	var sweeps atomic.Int32
	participants.EXPECT().GetStale(gomock.Any()).
		DoAndReturn(func(int64) ([]domain.Participant, error) {
			sweeps.Add(1)
			return []domain.Participant{}, nil
		}).
		AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errChan := make(chan error, 1)
	go func() { errChan <- reaper.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
	defer waitCancel()
	req.NoError(fake.BlockUntilContext(waitCtx, 1))

	// Nothing happens before the interval elapses
	fake.Advance(14 * time.Second)
	req.Never(func() bool { return sweeps.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	fake.Advance(time.Second)
	req.Eventually(func() bool { return sweeps.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	req.ErrorIs(<-errChan, context.Canceled)
}

func TestReaper_Sweep_With_Badger(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	log := slog.Default()
	participants := repositories.NewParticipantRepository(db, log)
	messages, err := repositories.NewMessageRepository(db, log)
	req.NoError(err)
	defer messages.Close()
	fake := clockwork.NewFakeClockAt(reaperNow)
	reaper := NewReaperWorker(log, participants, messages, fake, 15*time.Second, 10*time.Second)

	// Given alice idle and bob active
	req.NoError(participants.CreateParticipant(domain.NewParticipant("alice", reaperNow)))
	fake.Advance(8 * time.Second)
	req.NoError(participants.CreateParticipant(domain.NewParticipant("bob", fake.Now())))

	// When the sweep runs 11 seconds after alice's last activity
	fake.Advance(3 * time.Second)
	req.Equal(1, reaper.Sweep(context.Background()))

	// Then only bob remains and alice's departure is announced
	remaining, err := participants.GetParticipants()
	req.NoError(err)
	req.Equal([]string{"bob"}, lo.Map(remaining, func(p domain.Participant, _ int) string { return p.Name }))

	history, err := messages.GetMessages()
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("alice", history[0].From)
	req.Equal(domain.MessageTypeStatus, history[0].Type)
	req.Equal(domain.LeftText, history[0].Text)
}
