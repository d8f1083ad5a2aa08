package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
)

// Infrastructure configuration: a small key/value table seeded with
// defaults on first run and updated in validated batches.

var (
	// ErrSchemaMissing means the database is reachable but the config
	// table does not exist. Unlike an unreachable database (tolerated so
	// a first run can bootstrap before migrations), this is fatal.
	ErrSchemaMissing = errors.New("config: schema missing")

	// ErrUnknownSetting is returned when an update names a setting that
	// is not part of the known set.
	ErrUnknownSetting = errors.New("config: unknown setting")

	// ErrInvalidValue is returned when a value fails its per-field
	// validation. The first failure aborts the whole batch.
	ErrInvalidValue = errors.New("config: invalid value")
)

// Entry is one configuration row.
type Entry struct {
	Name  string
	Value string
}

type validation int

const (
	validateNonEmpty validation = iota
	validateURL
	validateEmail
)

type setting struct {
	kind   validation
	defval string
}

// Known settings with their validation rule and seeded default.
var settings = map[string]setting{
	"app_url":        {kind: validateURL, defval: "http://localhost:3000"},
	"smtp_url":       {kind: validateURL, defval: "smtp://localhost:587"},
	"mail_from":      {kind: validateEmail, defval: "no-reply@example.com"},
	"support_email":  {kind: validateEmail, defval: "support@example.com"},
	"workspace_name": {kind: validateNonEmpty, defval: "My Workspace"},
}

// Service manages the infra configuration table.
type Service struct {
	db *sql.DB
}

// NewService creates a config service over an open database handle.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Migrate creates the configuration table.
func (s *Service) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS infra_config (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`)
	return err
}

// EnsureSeeded inserts the default value for every known setting that has
// no row yet. Idempotent - existing values are never overwritten. An
// unreachable database is tolerated silently (first-run bootstrap happens
// before migrations); a reachable database without the table is fatal.
func (s *Service) EnsureSeeded(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return nil
	}
	for name, def := range settings {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO infra_config (name, value) VALUES (?, ?)`, name, def.defval)
		if err != nil {
			if isMissingTable(err) {
				return fmt.Errorf("%w: infra_config", ErrSchemaMissing)
			}
			return err
		}
	}
	return nil
}

// Get returns the value of a setting.
func (s *Service) Get(ctx context.Context, name string) (string, error) {
	if _, ok := settings[name]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM infra_config WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return settings[name].defval, nil
	}
	if err != nil {
		if isMissingTable(err) {
			return "", fmt.Errorf("%w: infra_config", ErrSchemaMissing)
		}
		return "", err
	}
	return value, nil
}

// List returns every configuration row.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value FROM infra_config ORDER BY name`)
	if err != nil {
		if isMissingTable(err) {
			return nil, fmt.Errorf("%w: infra_config", ErrSchemaMissing)
		}
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Value); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Update validates every entry before writing anything; the first
// validation failure aborts the whole batch with no partial writes.
func (s *Service) Update(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		if err := Validate(e); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO infra_config (name, value) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
			e.Name, e.Value)
		if err != nil {
			if isMissingTable(err) {
				return fmt.Errorf("%w: infra_config", ErrSchemaMissing)
			}
			return err
		}
	}
	return tx.Commit()
}

// Validate checks a single entry against its per-field rule.
func Validate(e Entry) error {
	def, ok := settings[e.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, e.Name)
	}
	switch def.kind {
	case validateNonEmpty:
		if strings.TrimSpace(e.Value) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidValue, e.Name)
		}
	case validateURL:
		u, err := url.Parse(e.Value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s must be a URL", ErrInvalidValue, e.Name)
		}
	case validateEmail:
		if _, err := mail.ParseAddress(e.Value); err != nil {
			return fmt.Errorf("%w: %s must be an email address", ErrInvalidValue, e.Name)
		}
	}
	return nil
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
