package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jeffersontgc/anastore/internal/models"

	"github.com/google/uuid"
)

var (
	ErrNotReady        = errors.New("store not hydrated yet")
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrUnknownProduct  = errors.New("unknown product reference")
	ErrNoItems         = errors.New("debt needs at least one item")
	ErrInvalidQuantity = errors.New("item quantity must be positive")
)

// snapshotState is what gets serialized into the key-value storage.
// Guarantor aggregates are derived and deliberately not part of it.
type snapshotState struct {
	Users    []models.User    `json:"users"`
	Products []models.Product `json:"products"`
	Debts    []models.Debt    `json:"debts"`
	SavedAt  time.Time        `json:"saved_at"`
}

// Store owns the entity collections. All mutation goes through its
// methods; debt mutations refresh the guarantor aggregates before the
// method returns, so readers never observe stale totals. Each mutation
// is followed by a snapshot write; a failed write only sets LastError
// and never rolls the in-memory change back.
type Store struct {
	mu   sync.RWMutex
	kv   SnapshotKV
	name string

	users      []models.User
	products   []models.Product
	debts      []models.Debt
	guarantors []models.Guarantor

	ready   bool
	lastErr string
}

// New builds an empty, not yet hydrated store persisting under name.
func New(kv SnapshotKV, name string) *Store {
	return &Store{kv: kv, name: name}
}

// Hydrate loads the persisted snapshot. Rehydration is all-or-nothing:
// a missing or unreadable snapshot leaves the store empty. The store is
// marked ready in every case so the boot sequence can proceed.
func (s *Store) Hydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ready = true

	data, err := s.kv.Load(s.name)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return nil
		}
		s.lastErr = err.Error()
		return fmt.Errorf("hydrate: %w", err)
	}

	var st snapshotState
	if err := json.Unmarshal(data, &st); err != nil {
		s.lastErr = err.Error()
		return fmt.Errorf("hydrate: decode snapshot: %w", err)
	}

	s.users = st.Users
	s.products = st.Products
	s.debts = st.Debts
	s.guarantors = Recompute(s.debts, s.users)
	return nil
}

// Ready reports whether Hydrate has run.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// LastError returns the most recent persistence error message, empty
// when the last snapshot write succeeded.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// persistLocked writes the current state to the key-value storage.
// Callers hold the write lock. Fire-and-forget semantics: the mutation
// already applied, a write failure is only recorded.
func (s *Store) persistLocked() {
	st := snapshotState{
		Users:    s.users,
		Products: s.products,
		Debts:    s.debts,
		SavedAt:  time.Now(),
	}
	data, err := json.Marshal(&st)
	if err != nil {
		s.lastErr = err.Error()
		return
	}
	if err := s.kv.Save(s.name, data); err != nil {
		s.lastErr = err.Error()
		return
	}
	s.lastErr = ""
}

func nextID[T any](items []T, id func(T) uint) uint {
	var max uint
	for _, it := range items {
		if v := id(it); v > max {
			max = v
		}
	}
	return max + 1
}

// ---------- users ----------

func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out
}

func (s *Store) UserByID(id uint) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// UserByEmail matches case-insensitively.
func (s *Store) UserByEmail(email string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *Store) CreateUser(u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return models.User{}, ErrNotReady
	}

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return models.User{}, ErrDuplicateEmail
		}
	}

	now := time.Now()
	u.ID = nextID(s.users, func(x models.User) uint { return x.ID })
	if u.UUID == "" {
		u.UUID = uuid.New().String()
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users = append(s.users, u)
	s.persistLocked()
	return u, nil
}

func (s *Store) UpdateUser(u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return models.User{}, ErrNotReady
	}

	for i := range s.users {
		if s.users[i].ID != u.ID {
			continue
		}
		for j := range s.users {
			if j != i && strings.EqualFold(s.users[j].Email, u.Email) {
				return models.User{}, ErrDuplicateEmail
			}
		}
		u.UUID = s.users[i].UUID
		u.CreatedAt = s.users[i].CreatedAt
		u.UpdatedAt = time.Now()
		s.users[i] = u
		s.persistLocked()
		return u, nil
	}
	return models.User{}, ErrNotFound
}

// DeleteUser removes the user only. Debts referencing it stay; the
// aggregate for a deleted user keeps showing with a placeholder name
// until the next recompute resolves it the same way.
func (s *Store) DeleteUser(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}

	for i := range s.users {
		if s.users[i].ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			s.persistLocked()
			return nil
		}
	}
	return ErrNotFound
}

// ---------- products ----------

func (s *Store) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) ProductByUUID(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.UUID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *Store) CreateProduct(p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return models.Product{}, ErrNotReady
	}

	now := time.Now()
	p.ID = nextID(s.products, func(x models.Product) uint { return x.ID })
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	s.products = append(s.products, p)
	s.persistLocked()
	return p, nil
}

func (s *Store) UpdateProduct(p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return models.Product{}, ErrNotReady
	}

	for i := range s.products {
		if s.products[i].UUID != p.UUID {
			continue
		}
		p.ID = s.products[i].ID
		p.CreatedAt = s.products[i].CreatedAt
		p.UpdatedAt = time.Now()
		s.products[i] = p
		s.persistLocked()
		return p, nil
	}
	return models.Product{}, ErrNotFound
}

func (s *Store) DeleteProduct(uuidStr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}

	for i := range s.products {
		if s.products[i].UUID == uuidStr {
			s.products = append(s.products[:i], s.products[i+1:]...)
			s.persistLocked()
			return nil
		}
	}
	return ErrNotFound
}

// ---------- debts ----------

// DebtLine references a product consumed in a new debt.
type DebtLine struct {
	ProductUUID string
	Quantity    int
}

// CreateDebtInput is the payload of the "nueva deuda" form.
type CreateDebtInput struct {
	UserID  uint
	DueDate time.Time
	Lines   []DebtLine
}

func (s *Store) Debts() []models.Debt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Debt, len(s.debts))
	copy(out, s.debts)
	return out
}

func (s *Store) DebtByUUID(id string) (models.Debt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.debts {
		if d.UUID == id {
			return d, true
		}
	}
	return models.Debt{}, false
}

// Guarantors returns the derived aggregates as of the last debt
// mutation. The slice is a copy; editing it has no effect on the store.
func (s *Store) Guarantors() []models.Guarantor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Guarantor, len(s.guarantors))
	copy(out, s.guarantors)
	return out
}

// CreateDebt validates the lines, snapshots product name and price into
// the items, decrements stock (floored at zero, oversell is accepted)
// and refreshes the aggregates. The new debt starts ACTIVE.
func (s *Store) CreateDebt(in CreateDebtInput) (models.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return models.Debt{}, ErrNotReady
	}
	if len(in.Lines) == 0 {
		return models.Debt{}, ErrNoItems
	}

	userFound := false
	for i := range s.users {
		if s.users[i].ID == in.UserID {
			userFound = true
			break
		}
	}
	if !userFound {
		return models.Debt{}, ErrNotFound
	}

	// resolve every line before touching any stock
	idx := make([]int, 0, len(in.Lines))
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return models.Debt{}, ErrInvalidQuantity
		}
		found := -1
		for i := range s.products {
			if s.products[i].UUID == line.ProductUUID {
				found = i
				break
			}
		}
		if found < 0 {
			return models.Debt{}, ErrUnknownProduct
		}
		idx = append(idx, found)
	}

	now := time.Now()
	debt := models.Debt{
		ID:        nextID(s.debts, func(x models.Debt) uint { return x.ID }),
		UUID:      uuid.New().String(),
		UserID:    in.UserID,
		Status:    models.StatusActive,
		DueDate:   in.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for n, line := range in.Lines {
		p := &s.products[idx[n]]
		debt.Items = append(debt.Items, models.DebtItem{
			ProductID:   p.ID,
			ProductUUID: p.UUID,
			Name:        p.Name,
			PriceCent:   p.PriceCent,
			Quantity:    line.Quantity,
		})
		debt.AmountCent += p.PriceCent * int64(line.Quantity)

		// stock never goes negative, even on oversell
		p.Stock -= line.Quantity
		if p.Stock < 0 {
			p.Stock = 0
		}
		p.UpdatedAt = now
	}

	s.debts = append(s.debts, debt)
	s.guarantors = Recompute(s.debts, s.users)
	s.persistLocked()
	return debt, nil
}

func (s *Store) UpdateDebt(d models.Debt) (models.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return models.Debt{}, ErrNotReady
	}

	for i := range s.debts {
		if s.debts[i].UUID != d.UUID {
			continue
		}
		d.ID = s.debts[i].ID
		d.CreatedAt = s.debts[i].CreatedAt
		d.UpdatedAt = time.Now()
		s.debts[i] = d
		s.guarantors = Recompute(s.debts, s.users)
		s.persistLocked()
		return d, nil
	}
	return models.Debt{}, ErrNotFound
}

// UpdateDebtStatus moves a debt along its lifecycle without touching
// items or amount. Stock is not restored when a debt closes.
func (s *Store) UpdateDebtStatus(uuidStr string, status models.DebtStatus) (models.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return models.Debt{}, ErrNotReady
	}

	for i := range s.debts {
		if s.debts[i].UUID != uuidStr {
			continue
		}
		s.debts[i].Status = status
		s.debts[i].UpdatedAt = time.Now()
		s.guarantors = Recompute(s.debts, s.users)
		s.persistLocked()
		return s.debts[i], nil
	}
	return models.Debt{}, ErrNotFound
}

func (s *Store) DeleteDebt(uuidStr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}

	for i := range s.debts {
		if s.debts[i].UUID == uuidStr {
			s.debts = append(s.debts[:i], s.debts[i+1:]...)
			s.guarantors = Recompute(s.debts, s.users)
			s.persistLocked()
			return nil
		}
	}
	return ErrNotFound
}

// ExportState serializes the current collections, e.g. for a backup
// file. Same format the snapshot storage holds.
func (s *Store) ExportState() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := snapshotState{
		Users:    s.users,
		Products: s.products,
		Debts:    s.debts,
		SavedAt:  time.Now(),
	}
	return json.MarshalIndent(&st, "", "  ")
}

// RestoreState replaces every collection with the given serialized
// snapshot, recomputes the aggregates and persists. Used by backup
// restore; the previous state is gone after this returns nil.
func (s *Store) RestoreState(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}

	var st snapshotState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("restore: decode snapshot: %w", err)
	}

	s.users = st.Users
	s.products = st.Products
	s.debts = st.Debts
	s.guarantors = Recompute(s.debts, s.users)
	s.persistLocked()
	return nil
}

// IsDelinquent reports whether the user has any open debt past due.
func (s *Store) IsDelinquent(userID uint, now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.debts {
		if d.UserID == userID && !d.Status.Closed() && d.DueDate.Before(now) {
			return true
		}
	}
	return false
}
