package inventory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria con semántica transaccional: cada Run trabaja sobre una copia
// del estado y solo la publica si fn devuelve nil. Run se serializa con un mutex,
// igual que el bloqueo de la fila del producto en Postgres.
// ──────────────────────────────────────────────────────────────────────────────

type memState struct {
	products      map[string]*entity.Product
	warehouses    map[string]*entity.Warehouse
	units         map[string]*entity.UnitOfMeasure
	overrides     map[string]decimal.Decimal // productID|unit
	conversions   map[string]decimal.Decimal // from|to
	ledger        []*entity.LedgerEntry
	handlingUnits []*entity.HandlingUnit
	reservations  []*entity.Reservation
}

func (s *memState) clone() *memState {
	c := &memState{
		products:      s.products,
		warehouses:    s.warehouses,
		units:         s.units,
		overrides:     s.overrides,
		conversions:   s.conversions,
		ledger:        append([]*entity.LedgerEntry(nil), s.ledger...),
		handlingUnits: make([]*entity.HandlingUnit, len(s.handlingUnits)),
		reservations:  make([]*entity.Reservation, len(s.reservations)),
	}
	for i, hu := range s.handlingUnits {
		cp := *hu
		c.handlingUnits[i] = &cp
	}
	for i, r := range s.reservations {
		cp := *r
		c.reservations[i] = &cp
	}
	return c
}

type memStore struct {
	mu    sync.Mutex
	state *memState
	// failAppend simula un fallo de BD al escribir en el libro.
	failAppend error
	runs       int
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		products:    map[string]*entity.Product{},
		warehouses:  map[string]*entity.Warehouse{},
		units:       map[string]*entity.UnitOfMeasure{},
		overrides:   map[string]decimal.Decimal{},
		conversions: map[string]decimal.Decimal{},
	}}
}

func (m *memStore) Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	tx := m.state.clone()
	if err := fn(ctx, m.reposFor(tx)); err != nil {
		return err
	}
	*m.state = *tx
	return nil
}

// repos repositorios fuera de transacción (lecturas del pool). Ven siempre el último commit.
func (m *memStore) repos() Repos {
	return m.reposFor(m.state)
}

func (m *memStore) reposFor(s *memState) Repos {
	return Repos{
		Products:      memProducts{s},
		Warehouses:    memWarehouses{s},
		Units:         memUnits{s},
		Ledger:        &memLedger{s: s, store: m},
		HandlingUnits: memHandlingUnits{s},
		Reservations:  memReservations{s},
	}
}

func (m *memStore) addProduct(p *entity.Product) {
	m.state.products[p.ID] = p
}

func (m *memStore) addWarehouse(orgID, id string) {
	m.state.warehouses[id] = &entity.Warehouse{ID: id, OrganizationID: orgID, Code: id, Name: id}
}

func (m *memStore) addUnit(code string, packaging bool) {
	m.state.units[code] = &entity.UnitOfMeasure{Code: code, Name: code, IsPackaging: packaging}
}

func (m *memStore) ledgerEntries() []*entity.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*entity.LedgerEntry(nil), m.state.ledger...)
}

func (m *memStore) sealedCount(productID, unitCode string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, hu := range m.state.handlingUnits {
		if hu.ProductID == productID && hu.UnitCode == unitCode && hu.Status == entity.HandlingUnitSealed {
			n++
		}
	}
	return n
}

func sameWarehouse(scope, got *string) bool {
	if scope == nil {
		return true
	}
	return got != nil && *got == *scope
}

// inWarehouse igual que sameWarehouse; exact con scope nil solo acepta entradas sin bodega.
func inWarehouse(scope *string, exact bool, got *string) bool {
	if scope == nil && exact {
		return got == nil
	}
	return sameWarehouse(scope, got)
}

// ── productos y bodegas ──────────────────────────────────────────────────────

type memProducts struct{ s *memState }

func (r memProducts) GetByID(_ context.Context, orgID, id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok || p.OrganizationID != orgID {
		return nil, nil
	}
	return p, nil
}

func (r memProducts) GetForUpdate(ctx context.Context, orgID, id string) (*entity.Product, error) {
	return r.GetByID(ctx, orgID, id)
}

type memWarehouses struct{ s *memState }

func (r memWarehouses) GetByID(_ context.Context, orgID, id string) (*entity.Warehouse, error) {
	w, ok := r.s.warehouses[id]
	if !ok || w.OrganizationID != orgID {
		return nil, nil
	}
	return w, nil
}

// ── unidades ─────────────────────────────────────────────────────────────────

type memUnits struct{ s *memState }

func (r memUnits) GetUnit(_ context.Context, code string) (*entity.UnitOfMeasure, error) {
	return r.s.units[code], nil
}

func (r memUnits) GetOverride(_ context.Context, productID, unitCode string) (*entity.ProductUnitOverride, error) {
	q, ok := r.s.overrides[productID+"|"+unitCode]
	if !ok {
		return nil, nil
	}
	return &entity.ProductUnitOverride{ProductID: productID, UnitCode: unitCode, QuantityInBaseUnit: q}, nil
}

func (r memUnits) GetConversion(_ context.Context, from, to string) (*entity.UnitConversion, error) {
	f, ok := r.s.conversions[from+"|"+to]
	if !ok {
		return nil, nil
	}
	return &entity.UnitConversion{FromUnit: from, ToUnit: to, Factor: f}, nil
}

func (r memUnits) ListPackagingUnits(_ context.Context) ([]*entity.UnitOfMeasure, error) {
	var out []*entity.UnitOfMeasure
	for _, u := range r.s.units {
		if u.IsPackaging {
			out = append(out, u)
		}
	}
	return out, nil
}

// ── libro ────────────────────────────────────────────────────────────────────

type memLedger struct {
	s     *memState
	store *memStore
}

func (r *memLedger) Append(_ context.Context, entries ...*entity.LedgerEntry) error {
	if r.store.failAppend != nil {
		return r.store.failAppend
	}
	for _, e := range entries {
		if !e.QuantityInBaseUnit.IsPositive() {
			return errors.New("check violation: quantity_in_base_unit > 0")
		}
	}
	r.s.ledger = append(r.s.ledger, entries...)
	return nil
}

func (r *memLedger) match(scope repository.LedgerScope, e *entity.LedgerEntry) bool {
	return e.OrganizationID == scope.OrganizationID &&
		e.ProductID == scope.ProductID &&
		inWarehouse(scope.WarehouseID, scope.ExactWarehouse, e.WarehouseID) &&
		(scope.StockForm == "" || e.StockForm == scope.StockForm)
}

func (r *memLedger) SumByType(_ context.Context, scope repository.LedgerScope) (map[entity.MovementType]decimal.Decimal, error) {
	sums := map[entity.MovementType]decimal.Decimal{}
	for _, e := range r.s.ledger {
		if r.match(scope, e) {
			sums[e.MovementType] = sums[e.MovementType].Add(e.QuantityInBaseUnit)
		}
	}
	return sums, nil
}

func (r *memLedger) ReceiptCostTotals(_ context.Context, scope repository.LedgerScope) (repository.CostTotals, error) {
	var t repository.CostTotals
	for _, e := range r.s.ledger {
		if r.match(scope, e) && e.MovementType == entity.MovementReceipt && e.UnitCost != nil {
			t.Quantity = t.Quantity.Add(e.QuantityInBaseUnit)
			t.Value = t.Value.Add(e.QuantityInBaseUnit.Mul(*e.UnitCost))
		}
	}
	return t, nil
}

func (r *memLedger) List(_ context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		e := r.s.ledger[i]
		if e.OrganizationID != f.OrganizationID || e.ProductID != f.ProductID || !sameWarehouse(f.WarehouseID, e.WarehouseID) {
			continue
		}
		if f.From != nil && e.OccurredAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.OccurredAt.After(*f.To) {
			continue
		}
		out = append(out, e)
	}
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// ── empaques ─────────────────────────────────────────────────────────────────

type memHandlingUnits struct{ s *memState }

func (r memHandlingUnits) CreateMany(_ context.Context, units []*entity.HandlingUnit) error {
	for _, hu := range units {
		cp := *hu
		r.s.handlingUnits = append(r.s.handlingUnits, &cp)
	}
	return nil
}

func (r memHandlingUnits) sealed(scope repository.HandlingUnitScope) []*entity.HandlingUnit {
	var out []*entity.HandlingUnit
	for _, hu := range r.s.handlingUnits {
		if hu.OrganizationID == scope.OrganizationID && hu.ProductID == scope.ProductID &&
			hu.UnitCode == scope.UnitCode && inWarehouse(scope.WarehouseID, scope.ExactWarehouse, hu.WarehouseID) &&
			hu.Status == entity.HandlingUnitSealed {
			out = append(out, hu)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r memHandlingUnits) CountSealed(_ context.Context, scope repository.HandlingUnitScope) (int64, error) {
	return int64(len(r.sealed(scope))), nil
}

func (r memHandlingUnits) LockSealed(_ context.Context, scope repository.HandlingUnitScope, limit int64) ([]*entity.HandlingUnit, error) {
	out := r.sealed(scope)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memHandlingUnits) MarkOpened(_ context.Context, ids []string, at time.Time) error {
	set := map[string]bool{}
	for _, id := range ids {
		set[id] = true
	}
	for _, hu := range r.s.handlingUnits {
		if set[hu.ID] {
			hu.Status = entity.HandlingUnitOpened
			t := at
			hu.OpenedAt = &t
		}
	}
	return nil
}

// ── reservas ─────────────────────────────────────────────────────────────────

type memReservations struct{ s *memState }

func (r memReservations) find(orgID, id string) *entity.Reservation {
	for _, res := range r.s.reservations {
		if res.ID == id && res.OrganizationID == orgID {
			return res
		}
	}
	return nil
}

func (r memReservations) Create(_ context.Context, res *entity.Reservation) error {
	cp := *res
	r.s.reservations = append(r.s.reservations, &cp)
	return nil
}

func (r memReservations) GetByID(_ context.Context, orgID, id string) (*entity.Reservation, error) {
	res := r.find(orgID, id)
	if res == nil {
		return nil, nil
	}
	cp := *res
	return &cp, nil
}

func (r memReservations) Release(_ context.Context, orgID, id, reason string, at time.Time) (bool, error) {
	res := r.find(orgID, id)
	if res == nil || !res.Active() {
		return false, nil
	}
	t, why := at, reason
	res.ReleasedAt, res.ReleaseReason = &t, &why
	return true, nil
}

func (r memReservations) Extend(_ context.Context, orgID, id string, expiresAt time.Time) (bool, error) {
	res := r.find(orgID, id)
	if res == nil || !res.Active() {
		return false, nil
	}
	t := expiresAt
	res.ExpiresAt = &t
	return true, nil
}

func (r memReservations) ListActive(_ context.Context, orgID string) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	for _, res := range r.s.reservations {
		if res.OrganizationID == orgID && res.Active() {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memReservations) ListByReference(_ context.Context, orgID, refType, refID string) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	for _, res := range r.s.reservations {
		if res.OrganizationID == orgID && res.ReferenceType == refType && res.ReferenceID == refID {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memReservations) SumActive(_ context.Context, orgID, productID string, warehouseID *string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, res := range r.s.reservations {
		if res.OrganizationID == orgID && res.ProductID == productID && res.Active() && sameWarehouse(warehouseID, res.WarehouseID) {
			total = total.Add(res.QuantityInBaseUnit)
		}
	}
	return total, nil
}

func (r memReservations) ReleaseExpired(_ context.Context, orgID string, now time.Time) ([]string, error) {
	var ids []string
	for _, res := range r.s.reservations {
		if orgID != "" && res.OrganizationID != orgID {
			continue
		}
		if res.ExpiredAt(now) {
			t, why := now, entity.ReleaseReasonExpired
			res.ReleasedAt, res.ReleaseReason = &t, &why
			ids = append(ids, res.ID)
		}
	}
	return ids, nil
}

var (
	_ repository.ProductRepository      = memProducts{}
	_ repository.WarehouseRepository    = memWarehouses{}
	_ repository.UnitRepository         = memUnits{}
	_ repository.LedgerRepository       = (*memLedger)(nil)
	_ repository.HandlingUnitRepository = memHandlingUnits{}
	_ repository.ReservationRepository  = memReservations{}
	_ TxRunner                          = (*memStore)(nil)
)
