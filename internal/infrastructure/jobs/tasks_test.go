package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	calls []string
	err   error
}

func (f *fakeSweeper) Sweep(_ context.Context, organizationID string) (*inventory.SweepResult, error) {
	f.calls = append(f.calls, organizationID)
	if f.err != nil {
		return nil, f.err
	}
	return &inventory.SweepResult{OrganizationID: organizationID, ReleasedIDs: []string{"r-1"}, SweptAt: time.Now()}, nil
}

func TestNewReservationSweepTask(t *testing.T) {
	task, err := NewReservationSweepTask(ReservationSweepPayload{OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.Equal(t, TaskReservationSweep, task.Type())

	var payload ReservationSweepPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "org-1", payload.OrganizationID)
}

func TestSweepHandler_PasaElAlcance(t *testing.T) {
	sw := &fakeSweeper{}
	h := NewReservationSweepHandler(sw, nil)

	task, err := NewReservationSweepTask(ReservationSweepPayload{OrganizationID: "org-9"})
	require.NoError(t, err)
	require.NoError(t, h(context.Background(), task))

	require.NoError(t, h(context.Background(), asynq.NewTask(TaskReservationSweep, nil)))
	assert.Equal(t, []string{"org-9", ""}, sw.calls)
}

func TestSweepHandler_PayloadInvalidoNoSeReintenta(t *testing.T) {
	sw := &fakeSweeper{}
	h := NewReservationSweepHandler(sw, nil)

	err := h(context.Background(), asynq.NewTask(TaskReservationSweep, []byte("{no-json")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Empty(t, sw.calls)
}

func TestSweepHandler_ErrorDeBDSeReintenta(t *testing.T) {
	sw := &fakeSweeper{err: errors.New("db caída")}
	h := NewReservationSweepHandler(sw, nil)

	err := h(context.Background(), asynq.NewTask(TaskReservationSweep, nil))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestSweepCron(t *testing.T) {
	reg, err := SweepCron("@every 6h0m0s", "")
	require.NoError(t, err)
	assert.Equal(t, "@every 6h0m0s", reg.Spec)
	assert.Equal(t, TaskReservationSweep, reg.Task.Type())
}
