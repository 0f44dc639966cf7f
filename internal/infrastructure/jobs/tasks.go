package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

const (
	// QueueDefault cola de los trabajos de inventario.
	QueueDefault = "default"
	// TaskReservationSweep libera las reservas vencidas.
	TaskReservationSweep = "inventory:reservations:sweep"
)

// ReservationSweepPayload alcance del barrido; OrganizationID vacío = todas.
type ReservationSweepPayload struct {
	OrganizationID string `json:"organization_id,omitempty"`
}

// NewReservationSweepTask construye la tarea de barrido.
func NewReservationSweepTask(payload ReservationSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal sweep payload: %w", err)
	}
	return asynq.NewTask(TaskReservationSweep, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// Sweeper lo que el handler necesita del barrido de reservas.
type Sweeper interface {
	Sweep(ctx context.Context, organizationID string) (*inventory.SweepResult, error)
}

// NewReservationSweepHandler ejecuta el barrido. Un payload ilegible se descarta sin reintentos;
// un fallo de BD se devuelve para que asynq reintente.
func NewReservationSweepHandler(sweeper Sweeper, log *logger.Logger) asynq.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("jobs")
	return func(ctx context.Context, task *asynq.Task) error {
		var payload ReservationSweepPayload
		if len(task.Payload()) > 0 {
			if err := json.Unmarshal(task.Payload(), &payload); err != nil {
				log.Error().Err(err).Str("task", task.Type()).Msg("payload inválido")
				return fmt.Errorf("decode sweep payload: %v: %w", err, asynq.SkipRetry)
			}
		}
		res, err := sweeper.Sweep(ctx, payload.OrganizationID)
		if err != nil {
			return err
		}
		log.Debug().Int("released", res.Count()).Msg("tarea de barrido completada")
		return nil
	}
}
