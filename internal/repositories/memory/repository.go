// Package memory is an in-process Repository used for development and
// tests. Writes are serialised with transactions; reads are not isolated
// from a running transaction.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/repositories"
)

type snapshotter interface {
	snapshot() func()
}

// Database owns every table and the locks shared by them.
type Database struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	tables []snapshotter
}

func (db *Database) register(t snapshotter) {
	db.tables = append(db.tables, t)
}

type Repository struct {
	db   *Database
	inTx bool

	users       *table[models.User]
	profiles    *table[models.Profile]
	submissions *table[models.Submission]
	diets       *table[models.Diet]
	mealPlans   *table[models.MealPlan]
	foods       *table[models.Food]
	nutritions  *table[models.Nutrition]
}

func New() (*Repository, error) {
	db := &Database{}
	r := &Repository{db: db}

	var err error
	if r.users, err = newTable[models.User](db, "user"); err != nil {
		return nil, err
	}
	if r.profiles, err = newTable[models.Profile](db, "profile"); err != nil {
		return nil, err
	}
	if r.submissions, err = newTable[models.Submission](db, "submission"); err != nil {
		return nil, err
	}
	if r.diets, err = newTable[models.Diet](db, "diet"); err != nil {
		return nil, err
	}
	if r.mealPlans, err = newTable[models.MealPlan](db, "meal plan"); err != nil {
		return nil, err
	}
	if r.foods, err = newTable[models.Food](db, "food"); err != nil {
		return nil, err
	}
	if r.nutritions, err = newTable[models.Nutrition](db, "nutrition"); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) Users() repositories.Store[models.User] {
	return &store[models.User]{t: r.users, inTx: r.inTx}
}

func (r *Repository) Profiles() repositories.Store[models.Profile] {
	return &store[models.Profile]{t: r.profiles, inTx: r.inTx}
}

func (r *Repository) Submissions() repositories.Store[models.Submission] {
	return &store[models.Submission]{t: r.submissions, inTx: r.inTx}
}

func (r *Repository) Diets() repositories.Store[models.Diet] {
	return &store[models.Diet]{t: r.diets, inTx: r.inTx}
}

func (r *Repository) MealPlans() repositories.Store[models.MealPlan] {
	return &store[models.MealPlan]{t: r.mealPlans, inTx: r.inTx}
}

func (r *Repository) Foods() repositories.Store[models.Food] {
	return &store[models.Food]{t: r.foods, inTx: r.inTx}
}

func (r *Repository) Nutritions() repositories.Store[models.Nutrition] {
	return &store[models.Nutrition]{t: r.nutritions, inTx: r.inTx}
}

// WithTransaction snapshots every table and restores them when fn fails.
// Nested calls join the outer transaction.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	r.db.txMu.Lock()
	defer r.db.txMu.Unlock()

	r.db.mu.RLock()
	restores := make([]func(), len(r.db.tables))
	for i, t := range r.db.tables {
		restores[i] = t.snapshot()
	}
	r.db.mu.RUnlock()

	tx := *r
	tx.inTx = true
	if err := fn(&tx); err != nil {
		r.db.mu.Lock()
		for _, restore := range restores {
			restore()
		}
		r.db.mu.Unlock()
		return err
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *Repository) Close() error {
	return nil
}

// RepositoryManager implements repositories.RepositoryManager for the
// in-process store. Data lives until the process exits.
type RepositoryManager struct {
	repo *Repository
}

func NewRepositoryManager() repositories.RepositoryManager {
	return &RepositoryManager{}
}

func (rm *RepositoryManager) Initialize() error {
	repo, err := New()
	if err != nil {
		return err
	}
	rm.repo = repo
	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	return nil
}

// store adapts a table to repositories.Store.
type store[T any] struct {
	t    *table[T]
	inTx bool
}

// write serialises a mutation with running transactions.
func (s *store[T]) write(fn func() error) error {
	if !s.inTx {
		s.t.db.txMu.Lock()
		defer s.t.db.txMu.Unlock()
	}
	s.t.db.mu.Lock()
	defer s.t.db.mu.Unlock()
	return fn()
}

func (s *store[T]) FindOne(ctx context.Context, filter repositories.Filter) (*T, error) {
	rows, err := s.FindMany(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repositories.ErrNotFound
	}
	return &rows[0], nil
}

func (s *store[T]) FindMany(ctx context.Context, filter repositories.Filter) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.t.db.mu.RLock()
	defer s.t.db.mu.RUnlock()
	return s.t.sorted(filter)
}

func (s *store[T]) All(ctx context.Context) ([]T, error) {
	return s.FindMany(ctx, nil)
}

func (s *store[T]) Page(ctx context.Context, offset, limit int) ([]T, int64, error) {
	rows, err := s.FindMany(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(rows))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) || limit <= 0 {
		return []T{}, total, nil
	}
	end := min(offset+limit, len(rows))
	return rows[offset:end], total, nil
}

func (s *store[T]) Count(ctx context.Context, filter repositories.Filter) (int64, error) {
	rows, err := s.FindMany(ctx, filter)
	return int64(len(rows)), err
}

func (s *store[T]) Create(ctx context.Context, record *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(func() error { return s.t.insert(record) })
}

func (s *store[T]) Save(ctx context.Context, record *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(func() error { return s.t.upsert(record) })
}

func (s *store[T]) Delete(ctx context.Context, filter repositories.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int64
	err := s.write(func() error {
		var err error
		n, err = s.t.remove(filter)
		return err
	})
	return n, err
}

var _ repositories.Repository = (*Repository)(nil)
