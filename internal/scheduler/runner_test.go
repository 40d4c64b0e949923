package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Arnutt-N/time-reminder/internal/dispatch"
	"github.com/Arnutt-N/time-reminder/internal/domain"
	"github.com/Arnutt-N/time-reminder/internal/mocks"
)

type runnerDeps struct {
	cal   *mocks.MockCalendar
	store *mocks.MockRecipientStore
	disp  *mocks.MockDispatcher
	coord *Coordinator
}

func setupRunner(t *testing.T, log *zap.Logger) (*Runner, runnerDeps) {
	ctrl := gomock.NewController(t)
	deps := runnerDeps{
		cal:   mocks.NewMockCalendar(ctrl),
		store: mocks.NewMockRecipientStore(ctrl),
		disp:  mocks.NewMockDispatcher(ctrl),
		coord: readyCoordinator(t, log),
	}
	loc, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)

	r := NewRunner(deps.coord, deps.cal, deps.store, deps.disp, RunnerConfig{
		BroadcastChatID: "900",
		SuperAdminID:    "300",
		Location:        loc,
	}, log)
	r.now = func() time.Time { return time.Date(2025, time.May, 12, 7, 25, 0, 0, loc) }
	return r, deps
}

func okReport(_ context.Context, id uuid.UUID, _ string, recipients []string) dispatch.Report {
	return dispatch.Report{RunID: id, Sent: append([]string(nil), recipients...)}
}

func TestFire_DeliversDeduplicatedSet(t *testing.T) {
	r, deps := setupRunner(t, zap.NewNop())
	slot, _ := deps.coord.Slots().Lookup("morning", "07:25")

	deps.cal.EXPECT().IsNonBusinessDay(gomock.Any(), gomock.Any()).Return(false)
	deps.store.EXPECT().ListSubscribers(gomock.Any()).Return([]string{"100", "200"}, nil)
	deps.store.EXPECT().ListAdmins(gomock.Any()).Return([]domain.User{{ChatID: "200"}, {ChatID: "300"}}, nil)
	deps.disp.EXPECT().
		Dispatch(gomock.Any(), gomock.Any(), gomock.Any(), []string{"100", "200", "300", "900"}).
		DoAndReturn(okReport)

	res, err := r.Fire(context.Background(), slot, SourceExternal)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.Equal(t, 2, res.Resolution.DuplicatesRemoved)
	assert.Len(t, res.Report.Sent, 4)
	assert.Equal(t, res.RunID, res.Report.RunID)
}

func TestFire_DuplicateSkipsEverything(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r, deps := setupRunner(t, zap.New(core))
	slot, _ := deps.coord.Slots().Lookup("morning", "07:25")

	deps.cal.EXPECT().IsNonBusinessDay(gomock.Any(), gomock.Any()).Return(false).Times(1)
	deps.store.EXPECT().ListSubscribers(gomock.Any()).Return(nil, nil).Times(1)
	deps.store.EXPECT().ListAdmins(gomock.Any()).Return(nil, nil).Times(1)
	deps.disp.EXPECT().Dispatch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(okReport).Times(1)

	first, err := r.Fire(context.Background(), slot, SourceExternal)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, first.Outcome)

	second, err := r.Fire(context.Background(), slot, SourceInternal)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second.Outcome)
	assert.Equal(t, 1, logs.FilterMessage("duplicate slot execution skipped").Len())
}

func TestFire_NonBusinessDay(t *testing.T) {
	r, deps := setupRunner(t, zap.NewNop())
	slot, _ := deps.coord.Slots().Lookup("evening", "17:30")

	deps.cal.EXPECT().IsNonBusinessDay(gomock.Any(), gomock.Any()).Return(true)

	res, err := r.Fire(context.Background(), slot, SourceInternal)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNonBusinessDay, res.Outcome)
}

func TestFire_SubscriberStoreDown(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r, deps := setupRunner(t, zap.New(core))
	slot, _ := deps.coord.Slots().Lookup("afternoon", "15:30")

	deps.cal.EXPECT().IsNonBusinessDay(gomock.Any(), gomock.Any()).Return(false)
	deps.store.EXPECT().ListSubscribers(gomock.Any()).Return(nil, errors.New("db gone"))
	deps.store.EXPECT().ListAdmins(gomock.Any()).Return(nil, errors.New("db gone"))
	deps.disp.EXPECT().
		Dispatch(gomock.Any(), gomock.Any(), gomock.Any(), []string{"300", "900"}).
		DoAndReturn(okReport)

	res, err := r.Fire(context.Background(), slot, SourceExternal)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.Equal(t, 1, logs.FilterMessage("list subscribers failed, continuing without them").Len())
}

func TestFire_AfternoonUsesCheckOutCopy(t *testing.T) {
	r, deps := setupRunner(t, zap.NewNop())
	slot, _ := deps.coord.Slots().Lookup("afternoon", "16:30")

	deps.cal.EXPECT().IsNonBusinessDay(gomock.Any(), gomock.Any()).Return(false)
	deps.store.EXPECT().ListSubscribers(gomock.Any()).Return(nil, nil)
	deps.store.EXPECT().ListAdmins(gomock.Any()).Return(nil, nil)
	deps.disp.EXPECT().Dispatch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, id uuid.UUID, msg string, recipients []string) dispatch.Report {
			assert.Contains(t, msg, "check out")
			assert.Contains(t, msg, "12/05/2568")
			return okReport(ctx, id, msg, recipients)
		},
	)

	_, err := r.Fire(context.Background(), slot, SourceExternal)
	require.NoError(t, err)
}

func TestFire_NotReady(t *testing.T) {
	ctrl := gomock.NewController(t)
	coord := NewCoordinator(ModeExternal, testSlots(t), "s3cret", 0, zap.NewNop())
	r := NewRunner(coord, mocks.NewMockCalendar(ctrl), mocks.NewMockRecipientStore(ctrl), mocks.NewMockDispatcher(ctrl), RunnerConfig{}, zap.NewNop())
	slot, _ := coord.Slots().First(domain.SlotMorning)

	_, err := r.Fire(context.Background(), slot, SourceExternal)
	assert.ErrorIs(t, err, ErrNotReady)
}
