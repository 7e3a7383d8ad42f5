// Package migration runs and tracks gorm schema migrations.
//
// Migrations register themselves from init() in database/migrations:
//
//	func init() {
//	    migration.Register("20260101000000_create_orders_table", &CreateOrdersTable{})
//	}
//
// and run from the CLI:
//
//	duka migrate             // run all pending
//	duka migrate:rollback    // roll back the last batch
//	duka migrate:status
package migration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/duka/pkg/logger"
)

// ErrNotRegistered is returned by Rollback for a recorded migration whose
// code is no longer registered.
var ErrNotRegistered = errors.New("migration: not registered")

// Migration is implemented by every schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "duka_migrations" }

type registered struct {
	name string
	m    Migration
}

var (
	regMu    sync.Mutex
	registry []registered
)

// Register adds a migration. name should start with a sortable timestamp.
func Register(name string, m Migration) {
	regMu.Lock()
	defer regMu.Unlock()
	registry = append(registry, registered{name: name, m: m})
}

func snapshot() []registered {
	regMu.Lock()
	defer regMu.Unlock()
	out := append([]registered(nil), registry...)
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Status is one row of Runner.Status.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

// Runner executes and tracks migrations against one database.
type Runner struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

func (r *Runner) ensureTable(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&migrationRecord{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran(ctx context.Context) (map[string]migrationRecord, error) {
	var recs []migrationRecord
	if err := r.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("migration: load history: %w", err)
	}
	out := make(map[string]migrationRecord, len(recs))
	for _, rec := range recs {
		out[rec.Name] = rec
	}
	return out, nil
}

// Run applies every pending migration as one batch and returns the names
// it ran.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := r.ran(ctx)
	if err != nil {
		return nil, err
	}

	var pending []registered
	for _, reg := range snapshot() {
		if _, ok := done[reg.name]; !ok {
			pending = append(pending, reg)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	batch, err := r.lastBatch(ctx)
	if err != nil {
		return nil, err
	}
	batch++

	names := make([]string, 0, len(pending))
	for _, reg := range pending {
		logger.Info("migration: running", "name", reg.name, "batch", batch)
		if err := reg.m.Up(r.db.WithContext(ctx)); err != nil {
			return names, fmt.Errorf("migration: %s up: %w", reg.name, err)
		}
		if err := r.db.WithContext(ctx).Create(&migrationRecord{Name: reg.name, Batch: batch}).Error; err != nil {
			return names, fmt.Errorf("migration: record %s: %w", reg.name, err)
		}
		names = append(names, reg.name)
	}
	return names, nil
}

// Rollback reverses the most recent batch, newest first, and returns the
// names it rolled back.
func (r *Runner) Rollback(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	batch, err := r.lastBatch(ctx)
	if err != nil || batch == 0 {
		return nil, err
	}

	var recs []migrationRecord
	if err := r.db.WithContext(ctx).Where("batch = ?", batch).Order("id desc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("migration: load batch %d: %w", batch, err)
	}

	known := make(map[string]Migration)
	for _, reg := range snapshot() {
		known[reg.name] = reg.m
	}

	var names []string
	for _, rec := range recs {
		m, ok := known[rec.Name]
		if !ok {
			return names, fmt.Errorf("%w: %s", ErrNotRegistered, rec.Name)
		}
		logger.Info("migration: rolling back", "name", rec.Name)
		if err := m.Down(r.db.WithContext(ctx)); err != nil {
			return names, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := r.db.WithContext(ctx).Delete(&rec).Error; err != nil {
			return names, fmt.Errorf("migration: forget %s: %w", rec.Name, err)
		}
		names = append(names, rec.Name)
	}
	return names, nil
}

// Status lists every registered migration and whether it has run.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := r.ran(ctx)
	if err != nil {
		return nil, err
	}

	regs := snapshot()
	out := make([]Status, 0, len(regs))
	for _, reg := range regs {
		rec, ok := done[reg.name]
		out = append(out, Status{Name: reg.name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

func (r *Runner) lastBatch(ctx context.Context) (int, error) {
	var row struct{ Max int }
	err := r.db.WithContext(ctx).Model(&migrationRecord{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&row).Error
	if err != nil {
		return 0, fmt.Errorf("migration: last batch: %w", err)
	}
	return row.Max, nil
}
