package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isRetryable errores de concurrencia que se resuelven repitiendo la transacción completa.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", // serialization_failure
		"40P01": // deadlock_detected
		return true
	}
	return false
}

// nullIfEmpty convierte "" en NULL para columnas opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// whereClause acumula condiciones con placeholders posicionales ($1, $2...).
type whereClause struct {
	conds []string
	args  []any
}

// add agrega una condición; format lleva un único %d para el número de placeholder.
func (w *whereClause) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(format, len(w.args)))
}

// addLiteral agrega una condición sin argumentos.
func (w *whereClause) addLiteral(cond string) {
	w.conds = append(w.conds, cond)
}

// addWarehouse filtra por bodega; exact con bodega nil exige warehouse_id IS NULL.
func (w *whereClause) addWarehouse(warehouseID *string, exact bool) {
	switch {
	case warehouseID != nil:
		w.add("warehouse_id = $%d", *warehouseID)
	case exact:
		w.addLiteral("warehouse_id IS NULL")
	}
}

// next devuelve el siguiente placeholder libre y registra su argumento.
func (w *whereClause) next(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
