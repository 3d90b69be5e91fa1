// Package store provides storage backends for the lead archive.
//
// Captured leads are appended to an in-memory, SQLite, or PostgreSQL
// backend. The archive is write-mostly: the funnel appends one row per
// completed conversation and the API reads them back for the operator.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/BTreeMap/LeadFunnel/internal/models"
)

// Store is the minimal persistence surface the funnel and API depend on.
type Store interface {
	// AddLead appends a captured lead to the archive.
	AddLead(lead models.Lead) error
	// ListLeads returns all archived leads, newest first.
	ListLeads() ([]models.Lead, error)
	// Close releases any underlying database resources.
	Close() error
}

// Opts holds configuration options for store implementations.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store implementations.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite file path for the store.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string for the store.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType inspects a DSN and reports which database driver it
// addresses: "postgres" for URL-style or key=value connection strings,
// "sqlite3" for plain file paths.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	if strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite3"
}

// InMemoryStore keeps leads in process memory. It is the default when no
// DSN is configured and the backend used throughout the tests.
type InMemoryStore struct {
	mu    sync.Mutex
	leads []models.Lead
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) AddLead(lead models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = append(s.leads, lead)
	return nil
}

func (s *InMemoryStore) ListLeads() ([]models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Lead, len(s.leads))
	copy(out, s.leads)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CapturedAt.After(out[j].CapturedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
