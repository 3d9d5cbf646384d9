package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/eventdrop/internal/common"
	"github.com/dmitrijs2005/eventdrop/internal/logging"
	"github.com/dmitrijs2005/eventdrop/internal/server/models"
	"github.com/dmitrijs2005/eventdrop/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventService(t *testing.T) (*EventService, *fakeRepoMgr, *fakeStorage, *recordedMetrics) {
	t.Helper()
	rm := newFakeRepoMgr()
	st := newFakeStorage()
	m := &recordedMetrics{}
	svc := NewEventService(nil, rm, st, logging.Nop{}, m)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC) }
	return svc, rm, st, m
}

func TestCreateEvent_BlankName(t *testing.T) {
	svc, rm, st, _ := newEventService(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := svc.CreateEvent(context.Background(), name)
		require.ErrorIs(t, err, common.ErrorValidation)

		var appErr *common.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Nome do evento é obrigatório", appErr.Message)
	}
	assert.Empty(t, rm.events.rows)
	assert.Empty(t, st.folders)
}

func TestCreateEvent_TrimsAndActivates(t *testing.T) {
	svc, rm, st, _ := newEventService(t)

	res, err := svc.CreateEvent(context.Background(), "  Casamento  ")
	require.NoError(t, err)
	assert.Equal(t, "Casamento", res.Event.Name)
	assert.True(t, res.Event.Active)
	assert.NotEmpty(t, res.Event.ID)
	assert.Equal(t, "Casamento", st.folders[res.Event.DriveFolderID])
	assert.Empty(t, res.Warnings)
	assert.Len(t, rm.events.active(), 1)
}

func TestCreateEvent_SequentialCallsLeaveOnlyLatestActive(t *testing.T) {
	svc, rm, _, _ := newEventService(t)
	ctx := context.Background()

	first, err := svc.CreateEvent(ctx, "Primeiro")
	require.NoError(t, err)
	second, err := svc.CreateEvent(ctx, "Segundo")
	require.NoError(t, err)

	active := rm.events.active()
	require.Len(t, active, 1)
	assert.Equal(t, second.Event.ID, active[0].ID)
	assert.NotEqual(t, first.Event.ID, active[0].ID)
}

func TestCreateEvent_DeactivateFailureIsWarning(t *testing.T) {
	svc, rm, _, m := newEventService(t)
	rm.events.deactivateAllErr = errors.New("timeout")

	res, err := svc.CreateEvent(context.Background(), "Festa")
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, StepDeactivatePrevious, res.Warnings[0].Step)
	assert.Equal(t, []string{"deactivate-previous:failed"}, m.compensations)
}

func TestCreateEvent_FolderFailure(t *testing.T) {
	svc, rm, st, _ := newEventService(t)
	st.createErr = errors.New("quota exceeded")

	_, err := svc.CreateEvent(context.Background(), "Festa")
	require.ErrorIs(t, err, common.ErrorUpstream)
	assert.ErrorContains(t, err, "quota exceeded")
	assert.Empty(t, rm.events.rows)
}

func TestCreateEvent_InsertFailureDeletesFolder(t *testing.T) {
	svc, rm, st, m := newEventService(t)
	rm.events.createErr = errors.New("connection reset")

	_, err := svc.CreateEvent(context.Background(), "Festa")
	require.ErrorIs(t, err, common.ErrorUpstream)
	assert.ErrorContains(t, err, "connection reset")

	var stepErr *StepError
	assert.False(t, errors.As(err, &stepErr), "successful compensation adds no warning")

	assert.Equal(t, []string{"folder-1"}, st.deleted)
	assert.Empty(t, st.folders)
	assert.Equal(t, []string{"delete-folder:ok"}, m.compensations)
}

func TestCreateEvent_CompensationFailureIsReported(t *testing.T) {
	svc, rm, st, m := newEventService(t)
	rm.events.createErr = errors.New("connection reset")
	st.deleteErr = errors.New("forbidden")

	_, err := svc.CreateEvent(context.Background(), "Festa")
	require.ErrorIs(t, err, common.ErrorUpstream)
	assert.NotErrorIs(t, err, st.deleteErr)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	require.Len(t, stepErr.Warnings, 1)
	assert.Equal(t, StepDeleteFolder, stepErr.Warnings[0].Step)
	assert.Equal(t, "folder-1", stepErr.Warnings[0].Subject)
	assert.Equal(t, []string{"delete-folder:failed"}, m.compensations)
}

func TestCreateEvent_CompensationSurvivesCancelledContext(t *testing.T) {
	svc, rm, st, _ := newEventService(t)
	rm.events.createErr = context.Canceled

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CreateEvent(ctx, "Festa")
	require.Error(t, err)
	assert.Equal(t, []string{"folder-1"}, st.deleted)
}

func TestCloseEvent(t *testing.T) {
	svc, rm, _, _ := newEventService(t)
	ctx := context.Background()

	created, err := svc.CreateEvent(ctx, "Festa")
	require.NoError(t, err)
	rm.uploads.countOut = 12

	res, err := svc.CloseEvent(ctx, created.Event.ID)
	require.NoError(t, err)
	assert.False(t, res.Event.Active)
	assert.Equal(t, int64(12), res.UploadsCount)
	assert.Equal(t, time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC), res.ClosedAt)
	assert.Empty(t, rm.events.active())
}

func TestCloseEvent_MissingID(t *testing.T) {
	svc, _, _, _ := newEventService(t)

	_, err := svc.CloseEvent(context.Background(), " ")
	require.ErrorIs(t, err, common.ErrorValidation)
	var appErr *common.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ID do evento é obrigatório", appErr.Message)
}

func TestCloseEvent_UnknownOrMalformedIDIsNotFoundWithoutMutation(t *testing.T) {
	svc, rm, _, _ := newEventService(t)
	ctx := context.Background()

	created, err := svc.CreateEvent(ctx, "Festa")
	require.NoError(t, err)

	for _, id := range []string{"not-a-uuid", "11111111-2222-3333-4444-555555555555"} {
		_, err := svc.CloseEvent(ctx, id)
		require.ErrorIs(t, err, common.ErrorNotFound, id)
		var appErr *common.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Evento não encontrado", appErr.Message)
	}

	active := rm.events.active()
	require.Len(t, active, 1)
	assert.Equal(t, created.Event.ID, active[0].ID)
}

func TestCloseEvent_NonCanonicalIDForms(t *testing.T) {
	for _, form := range []func(id string) string{
		func(id string) string { return "urn:uuid:" + id },
		func(id string) string { return "{" + strings.ToUpper(id) + "}" },
	} {
		svc, rm, _, _ := newEventService(t)
		ctx := context.Background()

		created, err := svc.CreateEvent(ctx, "Festa")
		require.NoError(t, err)

		res, err := svc.CloseEvent(ctx, form(created.Event.ID))
		require.NoError(t, err)
		assert.Equal(t, created.Event.ID, res.Event.ID)
		assert.Empty(t, rm.events.active())
	}
}

func TestCloseEvent_CountFailureReportsZero(t *testing.T) {
	svc, rm, _, _ := newEventService(t)
	ctx := context.Background()

	created, err := svc.CreateEvent(ctx, "Festa")
	require.NoError(t, err)
	rm.uploads.countOut = 5
	rm.uploads.countErr = errors.New("statement timeout")

	res, err := svc.CloseEvent(ctx, created.Event.ID)
	require.NoError(t, err)
	assert.Zero(t, res.UploadsCount)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, StepCountUploads, res.Warnings[0].Step)
	assert.False(t, res.Event.Active)
}

func TestCloseEvent_LookupError(t *testing.T) {
	svc, rm, _, _ := newEventService(t)
	rm.events.getErr = errors.New("db down")

	_, err := svc.CloseEvent(context.Background(), "11111111-2222-3333-4444-555555555555")
	assert.ErrorIs(t, err, common.ErrorUpstream)
}

func TestListEvents(t *testing.T) {
	svc, rm, _, _ := newEventService(t)
	ctx := context.Background()

	a, err := svc.CreateEvent(ctx, "A")
	require.NoError(t, err)
	b, err := svc.CreateEvent(ctx, "B")
	require.NoError(t, err)
	rm.events.counts[a.Event.ID] = 4

	list, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 1, list.ActiveEvents)
	require.Len(t, list.Events, 2)
	assert.Equal(t, b.Event.ID, list.Events[0].ID)
	assert.Equal(t, int64(4), list.Events[1].UploadsCount)
}

func TestListEvents_Empty(t *testing.T) {
	svc, _, _, _ := newEventService(t)

	list, err := svc.ListEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &EventList{Events: []*models.EventSummary{}, Total: 0, ActiveEvents: 0}, list)
}

func TestListEvents_Error(t *testing.T) {
	svc, rm, _, _ := newEventService(t)
	rm.events.listErr = errors.New("boom")

	_, err := svc.ListEvents(context.Background())
	assert.ErrorIs(t, err, common.ErrorUpstream)
}

func TestQuotaReport(t *testing.T) {
	svc, _, st, _ := newEventService(t)
	st.quota = &storage.Quota{Limit: 3000, Usage: 1000, UsageInDrive: 900, UsageInTrash: 100}

	q, err := svc.QuotaReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2000), q.Available)
	assert.Equal(t, 33.33, q.UsagePercentage)
	assert.Equal(t, int64(900), q.UsageInDrive)
	assert.False(t, q.Timestamp.IsZero())
}

func TestQuotaReport_ZeroLimit(t *testing.T) {
	svc, _, st, _ := newEventService(t)
	st.quota = &storage.Quota{Usage: 1234}

	q, err := svc.QuotaReport(context.Background())
	require.NoError(t, err)
	assert.Zero(t, q.UsagePercentage)
	assert.Equal(t, int64(-1234), q.Available)
}

func TestQuotaReport_Error(t *testing.T) {
	svc, _, st, _ := newEventService(t)
	st.quotaErr = errors.New("denied")

	_, err := svc.QuotaReport(context.Background())
	assert.ErrorIs(t, err, common.ErrorUpstream)
}

func TestUsagePercentage(t *testing.T) {
	tests := []struct {
		usage, limit int64
		want         float64
	}{
		{0, 0, 0},
		{10, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{5, 5, 100},
		{1, 8, 12.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, usagePercentage(tt.usage, tt.limit), "%d/%d", tt.usage, tt.limit)
	}
}
