// Package store persists named simulation configurations in an embedded
// SQLite database so runs can be repeated and compared over time.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/finsim/retirement-simulator/internal/domain"

	_ "modernc.org/sqlite"
)

// SavedSimulation is a named, persisted parameter set.
type SavedSimulation struct {
	ID        string                       `json:"id"`
	Name      string                       `json:"name"`
	Params    *domain.SimulationParameters `json:"input_params"`
	CreatedAt time.Time                    `json:"created_at"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

// Store is a SQLite-backed repository of saved simulations.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS saved_simulations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	params     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// Open opens (creating if needed) the store at path.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening simulation store")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initializing simulation store schema")
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create saves a new named simulation and returns it with its id and
// timestamps filled in.
func (s *Store) Create(ctx context.Context, name string, params *domain.SimulationParameters) (*SavedSimulation, error) {
	if name == "" {
		return nil, errors.New("saved simulation needs a name")
	}
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "refusing to save invalid parameters")
	}

	encoded, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrap(err, "encoding simulation parameters")
	}

	now := time.Now().UTC()
	saved := &SavedSimulation{
		ID:        uuid.New().String(),
		Name:      name,
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_simulations (id, name, params, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		saved.ID, saved.Name, string(encoded), saved.CreatedAt, saved.UpdatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "inserting saved simulation")
	}

	s.log.Info().Str("id", saved.ID).Str("name", name).Msg("simulation saved")
	return saved, nil
}

// Get fetches one saved simulation by id.
func (s *Store) Get(ctx context.Context, id string) (*SavedSimulation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, params, created_at, updated_at FROM saved_simulations WHERE id = ?`, id)
	return scanSaved(row)
}

// List returns all saved simulations, most recently updated first.
func (s *Store) List(ctx context.Context) ([]*SavedSimulation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, params, created_at, updated_at FROM saved_simulations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "listing saved simulations")
	}
	defer rows.Close()

	var out []*SavedSimulation
	for rows.Next() {
		saved, err := scanSaved(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, rows.Err()
}

// Update replaces the parameters of an existing saved simulation.
func (s *Store) Update(ctx context.Context, id string, params *domain.SimulationParameters) error {
	if err := params.Validate(); err != nil {
		return errors.Wrap(err, "refusing to save invalid parameters")
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return errors.Wrap(err, "encoding simulation parameters")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE saved_simulations SET params = ?, updated_at = ? WHERE id = ?`,
		string(encoded), time.Now().UTC(), id)
	if err != nil {
		return errors.Wrap(err, "updating saved simulation")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Errorf("saved simulation %s not found", id)
	}
	return nil
}

// Delete removes a saved simulation by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_simulations WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "deleting saved simulation")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Errorf("saved simulation %s not found", id)
	}
	s.log.Info().Str("id", id).Msg("simulation deleted")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSaved(row rowScanner) (*SavedSimulation, error) {
	var saved SavedSimulation
	var encoded string
	if err := row.Scan(&saved.ID, &saved.Name, &encoded, &saved.CreatedAt, &saved.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("saved simulation not found")
		}
		return nil, errors.Wrap(err, "scanning saved simulation")
	}
	if err := json.Unmarshal([]byte(encoded), &saved.Params); err != nil {
		return nil, errors.Wrap(err, "decoding simulation parameters")
	}
	return &saved, nil
}
