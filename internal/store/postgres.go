// Package store provides storage backends for the lead archive.
//
// This file implements the PostgreSQL-backed archive.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/BTreeMap/LeadFunnel/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) AddLead(lead models.Lead) error {
	_, err := s.db.Exec(
		`INSERT INTO leads (id, conversation_id, sender_name, goal, time_slot, contact_raw, contact_phone, contact_email, contact_handle, contact_name, captured_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		lead.ID, lead.ConversationID, lead.SenderName, string(lead.Goal), string(lead.TimeSlot),
		lead.Contact.RawText, lead.Contact.Phone, lead.Contact.Email, lead.Contact.SocialHandle, lead.Contact.Name,
		lead.CapturedAt,
	)
	if err != nil {
		slog.Error("PostgresStore failed to add lead", "error", err, "lead_id", lead.ID)
		return err
	}
	return nil
}

func (s *PostgresStore) ListLeads() ([]models.Lead, error) {
	rows, err := s.db.Query(
		`SELECT id, conversation_id, sender_name, goal, time_slot, contact_raw, contact_phone, contact_email, contact_handle, contact_name, captured_at
		 FROM leads ORDER BY captured_at DESC`)
	if err != nil {
		slog.Error("PostgresStore failed to query leads", "error", err)
		return nil, err
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			slog.Error("PostgresStore failed to scan lead", "error", err)
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
