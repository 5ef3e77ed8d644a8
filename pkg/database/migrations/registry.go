// Package migrations applies versioned schema changes once per database.
//
// Applied versions are recorded in schema_migrations; Run skips them on the
// next start and applies the rest in ascending version order.
package migrations

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Migration is one schema change identified by a unique version.
type Migration struct {
	Version int
	Name    string
	Up      func(*gorm.DB) error
}

// Record is a row of schema_migrations.
type Record struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"type:varchar(100);not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (Record) TableName() string { return "schema_migrations" }

// Registry holds migrations keyed by version.
type Registry struct {
	mu         sync.RWMutex
	migrations map[int]Migration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{migrations: make(map[int]Migration)}
}

var defaultRegistry = NewRegistry()

// Register adds m to the process-wide registry used by Run.
func Register(m Migration) {
	defaultRegistry.Register(m)
}

// Run applies pending migrations from the process-wide registry.
func Run(db *gorm.DB, log *slog.Logger) error {
	return defaultRegistry.Run(db, log)
}

// Register adds m. Versions must be positive and unique.
func (r *Registry) Register(m Migration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.Version <= 0 {
		panic(fmt.Sprintf("migrations: invalid version %d for %q", m.Version, m.Name))
	}
	if existing, ok := r.migrations[m.Version]; ok {
		panic(fmt.Sprintf("migrations: version %d registered twice (%q, %q)", m.Version, existing.Name, m.Name))
	}
	r.migrations[m.Version] = m
}

// Pending lists migrations not yet recorded in db, lowest version first.
func (r *Registry) Pending(db *gorm.DB) ([]Migration, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("prepare schema_migrations: %w", err)
	}

	var applied []int
	if err := db.Model(&Record{}).Pluck("version", &applied).Error; err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	r.mu.RLock()
	pending := make([]Migration, 0, len(r.migrations))
	for version, m := range r.migrations {
		if !done[version] {
			pending = append(pending, m)
		}
	}
	r.mu.RUnlock()

	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })
	return pending, nil
}

// Run applies every pending migration and records it.
func (r *Registry) Run(db *gorm.DB, log *slog.Logger) error {
	pending, err := r.Pending(db)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		if log != nil {
			log.Info("database schema up to date")
		}
		return nil
	}

	for _, m := range pending {
		if log != nil {
			log.Info("running migration", slog.Int("version", m.Version), slog.String("name", m.Name))
		}

		if err := m.Up(db); err != nil {
			return fmt.Errorf("migration %d_%s failed: %w", m.Version, m.Name, err)
		}

		record := Record{Version: m.Version, Name: m.Name, AppliedAt: time.Now().UTC()}
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("record migration %d_%s: %w", m.Version, m.Name, err)
		}

		if log != nil {
			log.Info("migration completed", slog.Int("version", m.Version), slog.String("name", m.Name))
		}
	}

	return nil
}
