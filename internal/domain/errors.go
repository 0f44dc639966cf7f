package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrProductNotFound      = fmt.Errorf("producto: %w", ErrNotFound)
	ErrReservationNotFound  = fmt.Errorf("reserva: %w", ErrNotFound)
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrInvalidState         = errors.New("transición de estado inválida")
	ErrProductNotPhysical   = errors.New("el producto no es físico")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrInsufficientPackages = errors.New("empaques insuficientes para desempacar")
	ErrConversionNotFound   = errors.New("conversión de unidad no encontrada")
	ErrDuplicateRequest     = errors.New("solicitud duplicada")
)

// ConversionNotFoundError indica que no existe factor directo entre dos unidades para un producto.
// errors.Is la reconoce como ErrConversionNotFound y como ErrNotFound.
type ConversionNotFoundError struct {
	ProductID string
	From      string
	To        string
}

func (e *ConversionNotFoundError) Error() string {
	return fmt.Sprintf("conversión de unidad no encontrada: %s -> %s (producto %s)", e.From, e.To, e.ProductID)
}

// Is permite errors.Is(err, ErrConversionNotFound) y errors.Is(err, ErrNotFound).
func (e *ConversionNotFoundError) Is(target error) bool {
	return target == ErrConversionNotFound || target == ErrNotFound
}

// InvalidInputf envuelve ErrInvalidInput con el detalle del campo rechazado.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
