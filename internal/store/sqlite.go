// Package store provides storage backends for the lead archive.
//
// This file implements the SQLite-backed archive.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/BTreeMap/LeadFunnel/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the permissions used when creating the
// database directory.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) AddLead(lead models.Lead) error {
	_, err := s.db.Exec(
		`INSERT INTO leads (id, conversation_id, sender_name, goal, time_slot, contact_raw, contact_phone, contact_email, contact_handle, contact_name, captured_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.ConversationID, lead.SenderName, string(lead.Goal), string(lead.TimeSlot),
		lead.Contact.RawText, lead.Contact.Phone, lead.Contact.Email, lead.Contact.SocialHandle, lead.Contact.Name,
		lead.CapturedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore failed to add lead", "error", err, "lead_id", lead.ID)
		return err
	}
	return nil
}

func (s *SQLiteStore) ListLeads() ([]models.Lead, error) {
	rows, err := s.db.Query(
		`SELECT id, conversation_id, sender_name, goal, time_slot, contact_raw, contact_phone, contact_email, contact_handle, contact_name, captured_at
		 FROM leads ORDER BY captured_at DESC`)
	if err != nil {
		slog.Error("SQLiteStore failed to query leads", "error", err)
		return nil, err
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			slog.Error("SQLiteStore failed to scan lead", "error", err)
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
