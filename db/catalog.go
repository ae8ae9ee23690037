package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"neo-overwatch/pkg/extract"
	"neo-overwatch/pkg/ontology"
)

var ErrNoImport = errors.New("catalog has never been imported")

// ImportRun records one load of the catalog from a source.
type ImportRun struct {
	RunID      string    `json:"run_id" db:"run_id"`
	NEOs       int       `json:"neos" db:"neos"`
	Approaches int       `json:"approaches" db:"approaches"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`
}

// Import replaces the catalog contents with everything src produces, in a
// single transaction. Record order is preserved.
func (s *Service) Import(ctx context.Context, src extract.Source) (*ImportRun, error) {
	run := &ImportRun{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}

	neos, err := src.LoadNEOs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load neos: %w", err)
	}
	approaches, err := src.LoadApproaches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load close approaches: %w", err)
	}

	err = s.Transaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{`DELETE FROM close_approaches`, `DELETE FROM neos`} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to clear catalog: %w", err)
			}
		}

		neoStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO neos (designation, name, diameter_km, hazardous, position) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare neo insert: %w", err)
		}
		defer neoStmt.Close()

		for i, neo := range neos {
			var name any
			if neo.Name != nil {
				name = *neo.Name
			}
			if _, err := neoStmt.ExecContext(ctx, neo.Designation, name, nullableFloat(neo.Diameter), neo.Hazardous, i); err != nil {
				return fmt.Errorf("failed to insert neo %s: %w", neo.Designation, err)
			}
		}

		caStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO close_approaches (designation, approach_time, distance_au, velocity_km_s) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare close approach insert: %w", err)
		}
		defer caStmt.Close()

		for _, ca := range approaches {
			if _, err := caStmt.ExecContext(ctx, ca.Designation, ca.Time.UTC().Format(time.RFC3339Nano),
				nullableFloat(ca.Distance), nullableFloat(ca.Velocity)); err != nil {
				return fmt.Errorf("failed to insert close approach for %s: %w", ca.Designation, err)
			}
		}

		run.NEOs = len(neos)
		run.Approaches = len(approaches)
		run.FinishedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx,
			`INSERT INTO import_runs (run_id, neos, approaches, started_at, finished_at) VALUES (?, ?, ?, ?, ?)`,
			run.RunID, run.NEOs, run.Approaches,
			run.StartedAt.Format(time.RFC3339Nano), run.FinishedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("failed to record import run: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("catalog imported", "run_id", run.RunID, "neos", run.NEOs, "approaches", run.Approaches)
	return run, nil
}

// LoadNEOs reads the catalog's objects in import order.
func (s *Service) LoadNEOs(ctx context.Context) ([]*ontology.NearEarthObject, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT designation, name, diameter_km, hazardous FROM neos ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query neos: %w", err)
	}
	defer rows.Close()

	var neos []*ontology.NearEarthObject
	for rows.Next() {
		var (
			designation string
			name        sql.NullString
			diameter    sql.NullFloat64
			hazardous   bool
		)
		if err := rows.Scan(&designation, &name, &diameter, &hazardous); err != nil {
			return nil, fmt.Errorf("failed to scan neo: %w", err)
		}
		neo, err := ontology.NewNearEarthObject(designation, name.String, floatOrNaN(diameter), hazardous)
		if err != nil {
			return nil, fmt.Errorf("neo %q: %w", designation, err)
		}
		neos = append(neos, neo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate neos: %w", err)
	}
	return neos, nil
}

// LoadApproaches reads the catalog's close approaches in import order.
func (s *Service) LoadApproaches(ctx context.Context) ([]*ontology.CloseApproach, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT designation, approach_time, distance_au, velocity_km_s FROM close_approaches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query close approaches: %w", err)
	}
	defer rows.Close()

	var approaches []*ontology.CloseApproach
	for rows.Next() {
		var (
			designation string
			approachAt  string
			distance    sql.NullFloat64
			velocity    sql.NullFloat64
		)
		if err := rows.Scan(&designation, &approachAt, &distance, &velocity); err != nil {
			return nil, fmt.Errorf("failed to scan close approach: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, approachAt)
		if err != nil {
			return nil, fmt.Errorf("close approach for %q: invalid time: %w", designation, err)
		}
		ca, err := ontology.NewCloseApproach(designation, t, floatOrNaN(distance), floatOrNaN(velocity))
		if err != nil {
			return nil, fmt.Errorf("close approach for %q: %w", designation, err)
		}
		approaches = append(approaches, ca)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate close approaches: %w", err)
	}
	return approaches, nil
}

// LastImport returns the most recent import run.
func (s *Service) LastImport(ctx context.Context) (*ImportRun, error) {
	var (
		run               ImportRun
		started, finished string
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT run_id, neos, approaches, started_at, finished_at FROM import_runs ORDER BY rowid DESC LIMIT 1`,
	).Scan(&run.RunID, &run.NEOs, &run.Approaches, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoImport
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query import runs: %w", err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("invalid import start time: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return nil, fmt.Errorf("invalid import finish time: %w", err)
	}
	return &run, nil
}

var _ extract.Source = (*Service)(nil)

func nullableFloat(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
