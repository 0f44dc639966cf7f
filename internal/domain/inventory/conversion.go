package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ErrInvalidFactor indica un factor almacenado que no es estrictamente positivo.
var ErrInvalidFactor = errors.New("factor de conversión no positivo")

// Factor multiplicador exacto entre dos unidades, guardado como fracción num/den.
// Se multiplica antes de dividir para no perder precisión y para que
// un factor por su inverso sea exactamente 1.
type Factor struct {
	num decimal.Decimal
	den decimal.Decimal
}

// One factor identidad.
func One() Factor {
	return Factor{num: decimal.NewFromInt(1), den: decimal.NewFromInt(1)}
}

// NewFactor construye num/den; ambos deben ser estrictamente positivos.
func NewFactor(num, den decimal.Decimal) (Factor, error) {
	if !num.IsPositive() || !den.IsPositive() {
		return Factor{}, fmt.Errorf("%w: %s/%s", ErrInvalidFactor, num, den)
	}
	return Factor{num: num, den: den}, nil
}

// QuantityScale decimales con que se guardan cantidades y costos (NUMERIC(20,6)).
const QuantityScale int32 = 6

// Apply convierte una cantidad: q * num / den, redondeada a QuantityScale para que
// lo que se compara sea lo mismo que se persiste.
func (f Factor) Apply(q decimal.Decimal) decimal.Decimal {
	if f.den.Equal(decimal.NewFromInt(1)) {
		return q.Mul(f.num).Round(QuantityScale)
	}
	return q.Mul(f.num).DivRound(f.den, QuantityScale)
}

// Inverse factor de la dirección contraria.
func (f Factor) Inverse() Factor {
	return Factor{num: f.den, den: f.num}
}

// Decimal valor del factor como decimal (para mostrar).
func (f Factor) Decimal() decimal.Decimal {
	return f.num.Div(f.den)
}

// IsOne indica si el factor es la identidad.
func (f Factor) IsOne() bool {
	return f.num.Equal(f.den)
}

func (f Factor) String() string {
	return f.Decimal().String()
}

// PackagingOption unidad de empaque utilizable para un producto y su contenido en unidad base.
type PackagingOption struct {
	UnitCode     string
	BaseQuantity decimal.Decimal
}

// Resolver calcula factores entre unidades para un producto:
// override del producto primero, luego tabla global directa o inversa. Sin saltos transitivos.
type Resolver struct {
	units repository.UnitRepository
}

// NewResolver construye el resolvedor sobre el repositorio de unidades (pool o tx).
func NewResolver(units repository.UnitRepository) *Resolver {
	return &Resolver{units: units}
}

// Resolve devuelve f tal que cantidad(to) = cantidad(from) * f.
func (r *Resolver) Resolve(ctx context.Context, product *entity.Product, fromUnit, toUnit string) (Factor, error) {
	if fromUnit == toUnit {
		return One(), nil
	}

	if fromUnit == product.BaseUnitCode || toUnit == product.BaseUnitCode {
		other := fromUnit
		if fromUnit == product.BaseUnitCode {
			other = toUnit
		}
		ov, err := r.units.GetOverride(ctx, product.ID, other)
		if err != nil {
			return Factor{}, err
		}
		if ov != nil {
			// 1 other = QuantityInBaseUnit base
			f, err := NewFactor(ov.QuantityInBaseUnit, decimal.NewFromInt(1))
			if err != nil {
				return Factor{}, fmt.Errorf("override %s/%s: %w", product.ID, other, err)
			}
			if fromUnit == other {
				return f, nil
			}
			return f.Inverse(), nil
		}
	}

	conv, err := r.units.GetConversion(ctx, fromUnit, toUnit)
	if err != nil {
		return Factor{}, err
	}
	if conv != nil {
		return globalFactor(conv)
	}
	conv, err = r.units.GetConversion(ctx, toUnit, fromUnit)
	if err != nil {
		return Factor{}, err
	}
	if conv != nil {
		f, err := globalFactor(conv)
		if err != nil {
			return Factor{}, err
		}
		return f.Inverse(), nil
	}

	return Factor{}, &domain.ConversionNotFoundError{ProductID: product.ID, From: fromUnit, To: toUnit}
}

func globalFactor(c *entity.UnitConversion) (Factor, error) {
	f, err := NewFactor(c.Factor, decimal.NewFromInt(1))
	if err != nil {
		return Factor{}, fmt.Errorf("conversión %s->%s: %w", c.FromUnit, c.ToUnit, err)
	}
	return f, nil
}

// ToBase convierte una cantidad ingresada a la unidad base del producto.
func (r *Resolver) ToBase(ctx context.Context, product *entity.Product, qty decimal.Decimal, unitCode string) (decimal.Decimal, error) {
	f, err := r.Resolve(ctx, product, unitCode, product.BaseUnitCode)
	if err != nil {
		return decimal.Zero, err
	}
	return f.Apply(qty), nil
}

// PackagingOptions lista las unidades de empaque convertibles a la unidad base del producto,
// de menor a mayor contenido (empate por código).
func (r *Resolver) PackagingOptions(ctx context.Context, product *entity.Product) ([]PackagingOption, error) {
	units, err := r.units.ListPackagingUnits(ctx)
	if err != nil {
		return nil, err
	}
	var opts []PackagingOption
	for _, u := range units {
		if u.Code == product.BaseUnitCode {
			continue
		}
		f, err := r.Resolve(ctx, product, u.Code, product.BaseUnitCode)
		if err != nil {
			if errors.Is(err, domain.ErrConversionNotFound) {
				continue
			}
			return nil, err
		}
		opts = append(opts, PackagingOption{UnitCode: u.Code, BaseQuantity: f.Apply(decimal.NewFromInt(1))})
	}
	sort.Slice(opts, func(i, j int) bool {
		if c := opts[i].BaseQuantity.Cmp(opts[j].BaseQuantity); c != 0 {
			return c < 0
		}
		return opts[i].UnitCode < opts[j].UnitCode
	})
	return opts, nil
}
