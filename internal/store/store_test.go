package store

import (
	"errors"
	"testing"
	"time"

	"github.com/jeffersontgc/anastore/internal/models"
)

// memKV is an in-memory snapshot storage for tests.
type memKV struct {
	data     map[string][]byte
	failSave bool
	saves    int
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Save(name string, data []byte) error {
	if m.failSave {
		return errors.New("disk full")
	}
	m.saves++
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[name] = cp
	return nil
}

func (m *memKV) Load(name string) ([]byte, error) {
	data, ok := m.data[name]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return data, nil
}

func newTestStore(t *testing.T) (*Store, *memKV) {
	t.Helper()
	kv := newMemKV()
	s := New(kv, "test")
	if err := s.Hydrate(); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	return s, kv
}

func seedUserAndProduct(t *testing.T, s *Store, stock int) (models.User, models.Product) {
	t.Helper()
	u, err := s.CreateUser(models.User{Firstname: "Ana", Lastname: "García", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	p, err := s.CreateProduct(models.Product{Name: "Arroz", PriceCent: 2500, Stock: stock, Type: models.TypeGranosBasicos})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	return u, p
}

func TestStore_NotReadyBeforeHydrate(t *testing.T) {
	s := New(newMemKV(), "test")
	if s.Ready() {
		t.Fatal("Ready() = true before Hydrate")
	}
	if _, err := s.CreateUser(models.User{Email: "a@b.c"}); !errors.Is(err, ErrNotReady) {
		t.Errorf("CreateUser before Hydrate: err = %v, want ErrNotReady", err)
	}
}

func TestStore_HydrateMissingSnapshotStartsEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	if !s.Ready() {
		t.Fatal("Ready() = false after Hydrate")
	}
	if len(s.Users()) != 0 || len(s.Products()) != 0 || len(s.Debts()) != 0 {
		t.Error("store not empty after hydrating without snapshot")
	}
}

func TestStore_CreateUserDuplicateEmail(t *testing.T) {
	s, _ := newTestStore(t)
	seedUserAndProduct(t, s, 10)

	if _, err := s.CreateUser(models.User{Firstname: "Otra", Email: "ANA@example.com"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("duplicate email: err = %v, want ErrDuplicateEmail", err)
	}
}

func TestStore_CreateDebtAggregates(t *testing.T) {
	s, _ := newTestStore(t)
	u, p := seedUserAndProduct(t, s, 10)

	if len(s.Guarantors()) != 0 {
		t.Fatal("guarantors not empty before any debt")
	}

	d1, err := s.CreateDebt(CreateDebtInput{
		UserID:  u.ID,
		DueDate: day("2026-10-01"),
		Lines:   []DebtLine{{ProductUUID: p.UUID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}
	if d1.AmountCent != 5000 {
		t.Errorf("amount = %d, want 5000", d1.AmountCent)
	}
	if d1.Status != models.StatusActive {
		t.Errorf("status = %q, want ACTIVE", d1.Status)
	}

	gs := s.Guarantors()
	if len(gs) != 1 || gs[0].UserID != u.ID || gs[0].TotalCent != 5000 || gs[0].Status != models.StatusActive {
		t.Fatalf("guarantors = %+v, want [{user %d total 5000 ACTIVE}]", gs, u.ID)
	}

	// second debt: total accumulates, status follows the newest debt
	d2, err := s.CreateDebt(CreateDebtInput{
		UserID:  u.ID,
		DueDate: day("2026-09-01"),
		Lines:   []DebtLine{{ProductUUID: p.UUID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}
	if _, err := s.UpdateDebtStatus(d2.UUID, models.StatusPending); err != nil {
		t.Fatalf("UpdateDebtStatus: %v", err)
	}

	gs = s.Guarantors()
	if gs[0].TotalCent != 7500 {
		t.Errorf("total = %d, want 7500", gs[0].TotalCent)
	}
	if gs[0].Status != models.StatusPending {
		t.Errorf("status = %q, want PENDING", gs[0].Status)
	}
}

func TestStore_UpdateDebtRefreshesAggregates(t *testing.T) {
	s, _ := newTestStore(t)
	u, p := seedUserAndProduct(t, s, 10)

	d, err := s.CreateDebt(CreateDebtInput{
		UserID:  u.ID,
		DueDate: day("2026-10-01"),
		Lines:   []DebtLine{{ProductUUID: p.UUID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}

	d.Status = models.StatusSettled
	d.DueDate = day("2026-11-15")
	updated, err := s.UpdateDebt(d)
	if err != nil {
		t.Fatalf("UpdateDebt: %v", err)
	}
	if updated.Status != models.StatusSettled || !updated.DueDate.Equal(day("2026-11-15")) {
		t.Errorf("updated debt = %+v, want SETTLED due 2026-11-15", updated)
	}

	gs := s.Guarantors()
	if len(gs) != 1 || gs[0].Status != models.StatusSettled {
		t.Errorf("guarantors = %+v, want status SETTLED after update", gs)
	}
	if gs[0].TotalCent != 2500 {
		t.Errorf("total = %d, want 2500 (settled debts stay in the total)", gs[0].TotalCent)
	}

	if _, err := s.UpdateDebt(models.Debt{UUID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown debt: err = %v, want ErrNotFound", err)
	}
}

func TestStore_DeleteDebtRemovesAggregate(t *testing.T) {
	s, _ := newTestStore(t)
	u, p := seedUserAndProduct(t, s, 10)

	d, err := s.CreateDebt(CreateDebtInput{
		UserID:  u.ID,
		DueDate: day("2026-10-01"),
		Lines:   []DebtLine{{ProductUUID: p.UUID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}

	if err := s.DeleteDebt(d.UUID); err != nil {
		t.Fatalf("DeleteDebt: %v", err)
	}
	if gs := s.Guarantors(); len(gs) != 0 {
		t.Errorf("guarantors = %+v after deleting the only debt, want empty", gs)
	}
}

func TestStore_OversellFloorsStockAtZero(t *testing.T) {
	s, _ := newTestStore(t)
	u, p := seedUserAndProduct(t, s, 3)

	d, err := s.CreateDebt(CreateDebtInput{
		UserID:  u.ID,
		DueDate: day("2026-10-01"),
		Lines:   []DebtLine{{ProductUUID: p.UUID, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}
	// oversell is not rejected, amount still charges the full quantity
	if d.AmountCent != 5*2500 {
		t.Errorf("amount = %d, want %d", d.AmountCent, 5*2500)
	}

	got, _ := s.ProductByUUID(p.UUID)
	if got.Stock != 0 {
		t.Errorf("stock = %d, want 0 (never negative)", got.Stock)
	}
}

func TestStore_CreateDebtValidation(t *testing.T) {
	s, _ := newTestStore(t)
	u, p := seedUserAndProduct(t, s, 3)

	if _, err := s.CreateDebt(CreateDebtInput{UserID: u.ID}); !errors.Is(err, ErrNoItems) {
		t.Errorf("no items: err = %v, want ErrNoItems", err)
	}
	if _, err := s.CreateDebt(CreateDebtInput{
		UserID: u.ID,
		Lines:  []DebtLine{{ProductUUID: p.UUID, Quantity: 0}},
	}); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero quantity: err = %v, want ErrInvalidQuantity", err)
	}
	if _, err := s.CreateDebt(CreateDebtInput{
		UserID: u.ID,
		Lines:  []DebtLine{{ProductUUID: "nope", Quantity: 1}},
	}); !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("unknown product: err = %v, want ErrUnknownProduct", err)
	}
	if _, err := s.CreateDebt(CreateDebtInput{
		UserID: 999,
		Lines:  []DebtLine{{ProductUUID: p.UUID, Quantity: 1}},
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user: err = %v, want ErrNotFound", err)
	}
	// nothing partially applied
	got, _ := s.ProductByUUID(p.UUID)
	if got.Stock != 3 {
		t.Errorf("stock = %d after rejected debts, want 3", got.Stock)
	}
}

func TestStore_DeletedUserKeepsAggregateWithPlaceholder(t *testing.T) {
	s, _ := newTestStore(t)
	u, p := seedUserAndProduct(t, s, 10)

	if _, err := s.CreateDebt(CreateDebtInput{
		UserID:  u.ID,
		DueDate: day("2026-10-01"),
		Lines:   []DebtLine{{ProductUUID: p.UUID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}
	if err := s.DeleteUser(u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	// deleting a user does not recompute; the next debt mutation does
	debts := s.Debts()
	if _, err := s.UpdateDebtStatus(debts[0].UUID, models.StatusPending); err != nil {
		t.Fatalf("UpdateDebtStatus: %v", err)
	}

	gs := s.Guarantors()
	if len(gs) != 1 {
		t.Fatalf("guarantors = %+v, want 1", gs)
	}
	if want := "Guarantor 1"; gs[0].Name != want {
		t.Errorf("name = %q, want %q", gs[0].Name, want)
	}
}

func TestStore_SnapshotRoundTrip(t *testing.T) {
	kv := newMemKV()
	s := New(kv, "credistore")
	if err := s.Hydrate(); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	u, p := seedUserAndProduct(t, s, 10)
	if _, err := s.CreateDebt(CreateDebtInput{
		UserID:  u.ID,
		DueDate: day("2026-10-01"),
		Lines:   []DebtLine{{ProductUUID: p.UUID, Quantity: 2}},
	}); err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}

	// a fresh store over the same storage sees the same state
	s2 := New(kv, "credistore")
	if err := s2.Hydrate(); err != nil {
		t.Fatalf("Hydrate(second): %v", err)
	}
	if len(s2.Users()) != 1 || len(s2.Products()) != 1 || len(s2.Debts()) != 1 {
		t.Fatalf("rehydrated store: %d users %d products %d debts, want 1/1/1",
			len(s2.Users()), len(s2.Products()), len(s2.Debts()))
	}
	gs := s2.Guarantors()
	if len(gs) != 1 || gs[0].TotalCent != 5000 {
		t.Errorf("rehydrated guarantors = %+v, want total 5000", gs)
	}
}

func TestStore_PersistFailureKeepsMutation(t *testing.T) {
	s, kv := newTestStore(t)
	kv.failSave = true

	u, err := s.CreateUser(models.User{Firstname: "Ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, ok := s.UserByID(u.ID); !ok {
		t.Error("mutation rolled back on persistence failure")
	}
	if s.LastError() == "" {
		t.Error("LastError empty after failed snapshot write")
	}

	// next successful write clears the error flag
	kv.failSave = false
	if _, err := s.CreateProduct(models.Product{Name: "Café", PriceCent: 100, Stock: 1, Type: models.TypeBebidas}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if s.LastError() != "" {
		t.Errorf("LastError = %q after successful write, want empty", s.LastError())
	}
}

func TestStore_IsDelinquent(t *testing.T) {
	s, _ := newTestStore(t)
	u, p := seedUserAndProduct(t, s, 10)

	d, err := s.CreateDebt(CreateDebtInput{
		UserID:  u.ID,
		DueDate: time.Now().Add(-24 * time.Hour),
		Lines:   []DebtLine{{ProductUUID: p.UUID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}
	if !s.IsDelinquent(u.ID, time.Now()) {
		t.Error("IsDelinquent = false with an open past-due debt")
	}

	if _, err := s.UpdateDebtStatus(d.UUID, models.StatusPaid); err != nil {
		t.Fatalf("UpdateDebtStatus: %v", err)
	}
	if s.IsDelinquent(u.ID, time.Now()) {
		t.Error("IsDelinquent = true after the debt was paid")
	}
}
