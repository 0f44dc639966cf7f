package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// SweepResult resultado de una pasada del barrido.
type SweepResult struct {
	OrganizationID string
	ReleasedIDs    []string
	SweptAt        time.Time
}

// Count cantidad de reservas liberadas.
func (r *SweepResult) Count() int { return len(r.ReleasedIDs) }

// ReservationSweeper libera las reservas vencidas con motivo "expired".
// Es un único UPDATE en bloque: ejecuciones concurrentes no liberan dos veces la misma reserva.
type ReservationSweeper struct {
	reservations repository.ReservationRepository
	log          *logger.Logger
	now          clock
}

// NewReservationSweeper construye el barrido sobre el repositorio del pool (fuera de transacciones de request).
func NewReservationSweeper(reservations repository.ReservationRepository, log *logger.Logger) *ReservationSweeper {
	if log == nil {
		log = logger.Nop()
	}
	return &ReservationSweeper{
		reservations: reservations,
		log:          log.Component("reservation_sweeper"),
		now:          systemClock,
	}
}

// Sweep libera las reservas vencidas; organizationID vacío barre todas las organizaciones.
// Los errores se registran y se devuelven; la siguiente ejecución reintenta.
func (s *ReservationSweeper) Sweep(ctx context.Context, organizationID string) (*SweepResult, error) {
	now := s.now()
	ids, err := s.reservations.ReleaseExpired(ctx, organizationID, now)
	if err != nil {
		s.log.Error().Err(err).Str("organization_id", organizationID).Msg("barrido de reservas fallido")
		return nil, fmt.Errorf("barrido de reservas: %w", err)
	}
	s.log.Info().
		Str("organization_id", organizationID).
		Int("released", len(ids)).
		Time("swept_at", now).
		Msg("barrido de reservas completado")
	return &SweepResult{OrganizationID: organizationID, ReleasedIDs: ids, SweptAt: now}, nil
}
