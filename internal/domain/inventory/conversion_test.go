package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Doble de prueba del repositorio de unidades
// ──────────────────────────────────────────────────────────────────────────────

type stubUnits struct {
	units       map[string]*entity.UnitOfMeasure
	overrides   map[string]decimal.Decimal // productID|unit
	conversions map[string]decimal.Decimal // from|to
	failWith    error
}

func newStubUnits() *stubUnits {
	return &stubUnits{
		units:       map[string]*entity.UnitOfMeasure{},
		overrides:   map[string]decimal.Decimal{},
		conversions: map[string]decimal.Decimal{},
	}
}

func (s *stubUnits) unit(code string, packaging bool) *stubUnits {
	s.units[code] = &entity.UnitOfMeasure{Code: code, Name: code, IsPackaging: packaging}
	return s
}

func (s *stubUnits) GetUnit(_ context.Context, code string) (*entity.UnitOfMeasure, error) {
	return s.units[code], s.failWith
}

func (s *stubUnits) GetOverride(_ context.Context, productID, unitCode string) (*entity.ProductUnitOverride, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	q, ok := s.overrides[productID+"|"+unitCode]
	if !ok {
		return nil, nil
	}
	return &entity.ProductUnitOverride{ProductID: productID, UnitCode: unitCode, QuantityInBaseUnit: q}, nil
}

func (s *stubUnits) GetConversion(_ context.Context, from, to string) (*entity.UnitConversion, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	f, ok := s.conversions[from+"|"+to]
	if !ok {
		return nil, nil
	}
	return &entity.UnitConversion{FromUnit: from, ToUnit: to, Factor: f}, nil
}

func (s *stubUnits) ListPackagingUnits(_ context.Context) ([]*entity.UnitOfMeasure, error) {
	var out []*entity.UnitOfMeasure
	for _, u := range s.units {
		if u.IsPackaging {
			out = append(out, u)
		}
	}
	return out, s.failWith
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var productX = &entity.Product{ID: "prod-x", OrganizationID: "org-1", BaseUnitCode: "EACH", IsPhysical: true}

// ──────────────────────────────────────────────────────────────────────────────
// Resolve
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_MismaUnidadEsUno(t *testing.T) {
	r := NewResolver(newStubUnits())
	f, err := r.Resolve(context.Background(), productX, "KG", "KG")
	require.NoError(t, err)
	assert.True(t, f.IsOne())
}

func TestResolve_GlobalDirectaEInversa(t *testing.T) {
	units := newStubUnits()
	units.conversions["PACK|EACH"] = dec("6")
	r := NewResolver(units)
	ctx := context.Background()

	f, err := r.Resolve(ctx, productX, "PACK", "EACH")
	require.NoError(t, err)
	assert.True(t, f.Apply(dec("2")).Equal(dec("12")), "2 PACK = 12 EACH")

	inv, err := r.Resolve(ctx, productX, "EACH", "PACK")
	require.NoError(t, err)
	assert.True(t, inv.Apply(dec("12")).Equal(dec("2")), "12 EACH = 2 PACK")
}

func TestResolve_OverrideGanaSobreGlobal(t *testing.T) {
	units := newStubUnits()
	units.conversions["PACK|EACH"] = dec("6")
	units.overrides["prod-x|PACK"] = dec("10")
	r := NewResolver(units)

	got, err := r.ToBase(context.Background(), productX, dec("3"), "PACK")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("30")), "3 PACK del producto X deben ser 30 EACH, no 18; got %s", got)

	// Otro producto sin override usa la tabla global.
	other := &entity.Product{ID: "prod-y", BaseUnitCode: "EACH", IsPhysical: true}
	got, err = r.ToBase(context.Background(), other, dec("3"), "PACK")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("18")))
}

func TestResolve_OverrideEnDireccionInversa(t *testing.T) {
	units := newStubUnits()
	units.overrides["prod-x|CASE"] = dec("24")
	r := NewResolver(units)

	f, err := r.Resolve(context.Background(), productX, "EACH", "CASE")
	require.NoError(t, err)
	assert.True(t, f.Apply(dec("48")).Equal(dec("2")))
}

func TestResolve_IdaYVueltaEsExactamenteUno(t *testing.T) {
	units := newStubUnits()
	units.conversions["PACK|EACH"] = dec("6")
	units.conversions["G|KG"] = dec("0.001")
	units.conversions["L|ML"] = dec("1000")
	units.overrides["prod-x|CASE"] = dec("7")
	r := NewResolver(units)
	ctx := context.Background()

	pairs := [][2]string{{"PACK", "EACH"}, {"EACH", "PACK"}, {"G", "KG"}, {"ML", "L"}, {"CASE", "EACH"}, {"EACH", "CASE"}}
	for _, p := range pairs {
		ab, err := r.Resolve(ctx, productX, p[0], p[1])
		require.NoError(t, err, p)
		ba, err := r.Resolve(ctx, productX, p[1], p[0])
		require.NoError(t, err, p)
		// ab * ba = 1 exacto: num(ab)*num(ba) == den(ab)*den(ba)
		assert.True(t, ab.num.Mul(ba.num).Equal(ab.den.Mul(ba.den)), "%s<->%s", p[0], p[1])
	}
}

func TestFactorApply_RedondeaAEscalaDeAlmacenamiento(t *testing.T) {
	third, err := NewFactor(dec("1"), dec("3"))
	require.NoError(t, err)
	assert.Equal(t, "0.333333", third.Apply(dec("1")).String())
	assert.Equal(t, "0.666667", third.Apply(dec("2")).String())

	seventh, err := NewFactor(dec("1"), dec("7"))
	require.NoError(t, err)
	assert.Equal(t, "0.142857", seventh.Apply(dec("1")).String())
	assert.Equal(t, int32(-6), seventh.Apply(dec("1")).Exponent())
}

func TestResolve_SinConversion(t *testing.T) {
	units := newStubUnits()
	units.conversions["PACK|EACH"] = dec("6")
	units.conversions["CASE|PACK"] = dec("4")
	r := NewResolver(units)

	// Sin saltos transitivos: CASE -> PACK -> EACH no se resuelve.
	_, err := r.Resolve(context.Background(), productX, "CASE", "EACH")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConversionNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var cnf *domain.ConversionNotFoundError
	require.True(t, errors.As(err, &cnf))
	assert.Equal(t, "CASE", cnf.From)
	assert.Equal(t, "EACH", cnf.To)
}

func TestResolve_FactorNoPositivoEsRechazado(t *testing.T) {
	units := newStubUnits()
	units.conversions["PACK|EACH"] = dec("0")
	r := NewResolver(units)

	_, err := r.Resolve(context.Background(), productX, "PACK", "EACH")
	assert.ErrorIs(t, err, ErrInvalidFactor)
}

func TestResolve_PropagaErrorDeRepositorio(t *testing.T) {
	units := newStubUnits()
	units.failWith = errors.New("db caída")
	r := NewResolver(units)

	_, err := r.Resolve(context.Background(), productX, "PACK", "EACH")
	assert.EqualError(t, err, "db caída")
}

// ──────────────────────────────────────────────────────────────────────────────
// PackagingOptions
// ──────────────────────────────────────────────────────────────────────────────

func TestPackagingOptions_OrdenadasPorTamano(t *testing.T) {
	units := newStubUnits().unit("EACH", false).unit("PACK", true).unit("CASE", true).unit("BOX", true).unit("PALLET", true)
	units.conversions["CASE|EACH"] = dec("24")
	units.conversions["PACK|EACH"] = dec("6")
	units.conversions["BOX|EACH"] = dec("6")
	// PALLET sin conversión: se omite.
	r := NewResolver(units)

	opts, err := r.PackagingOptions(context.Background(), productX)
	require.NoError(t, err)
	require.Len(t, opts, 3)
	assert.Equal(t, "BOX", opts[0].UnitCode, "empate de tamaño se resuelve por código")
	assert.Equal(t, "PACK", opts[1].UnitCode)
	assert.Equal(t, "CASE", opts[2].UnitCode)
	assert.True(t, opts[2].BaseQuantity.Equal(dec("24")))
}
