// Package store persists model results, forecasts and grid-search rows in
// SQLite, keyed by a run id.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sartorproj/ridecast/model"
	"github.com/sartorproj/ridecast/sarima"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Run kinds.
const (
	KindGrid  = "grid"
	KindModel = "model"
)

// ErrUnknownRun is returned when reading a run id that was never created.
var ErrUnknownRun = errors.New("store: unknown run")

// Store is a SQLite database of ridecast runs.
type Store struct {
	*sql.DB
}

// Open opens (or creates) the database at path and applies pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrateUp() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// m is not closed: that would close the shared connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// NewRun registers a run of the given kind and returns its id.
func (s *Store) NewRun(kind string) (string, error) {
	id := uuid.NewString()
	if _, err := s.Exec("INSERT INTO runs (run_id, kind) VALUES (?, ?)", id, kind); err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

// Run describes a stored run.
type Run struct {
	ID        string
	Kind      string
	CreatedAt time.Time
}

// Runs lists every run, newest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.Query("SELECT run_id, kind, created_at FROM runs ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Kind, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *Store) checkRun(runID string) error {
	var n int
	if err := s.QueryRow("SELECT COUNT(*) FROM runs WHERE run_id = ?", runID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	return nil
}

// withTx runs fn in a transaction, committing only if fn succeeds.
func (s *Store) withTx(fn func(*sql.Tx) error) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ResultRow is a stored model result. The fitted model itself is not kept.
type ResultRow struct {
	Neighborhood         string
	Order                sarima.Order
	Seasonal             sarima.SeasonalOrder
	Logged               bool
	ExplainedVariance    float64
	MAE                  float64
	RMSE                 float64
	R2                   float64
	ActualAfterCutoff    float64
	PredictedAfterCutoff float64
	Delta                float64
	AIC                  float64
	BIC                  float64
}

// SaveResults writes every row of results under runID.
func (s *Store) SaveResults(runID string, results *model.Results) error {
	if err := s.checkRun(runID); err != nil {
		return err
	}
	return s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT OR REPLACE INTO results (
			run_id, neighborhood, p, d, q, seasonal_p, seasonal_d, seasonal_q, period, logged,
			explained_variance, mae, rmse, r2, actual_after_cutoff, predicted_after_cutoff, delta, aic, bic
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, nb := range results.Neighborhoods() {
			r, _ := results.Get(nb)
			_, err := stmt.Exec(runID, nb,
				r.Order.P, r.Order.D, r.Order.Q,
				r.Seasonal.P, r.Seasonal.D, r.Seasonal.Q, r.Seasonal.S, r.Logged,
				nullable(r.Scores.ExplainedVariance), nullable(r.Scores.MAE),
				nullable(r.Scores.RMSE), nullable(r.Scores.R2),
				nullable(r.ActualAfterCutoff), nullable(r.PredictedAfterCutoff), nullable(r.Delta),
				nullable(r.AIC), nullable(r.BIC))
			if err != nil {
				return fmt.Errorf("save result %s: %w", nb, err)
			}
		}
		return nil
	})
}

// Results reads back the results of a run, ordered by neighborhood.
func (s *Store) Results(runID string) ([]ResultRow, error) {
	if err := s.checkRun(runID); err != nil {
		return nil, err
	}
	rows, err := s.Query(`SELECT neighborhood, p, d, q, seasonal_p, seasonal_d, seasonal_q, period, logged,
		explained_variance, mae, rmse, r2, actual_after_cutoff, predicted_after_cutoff, delta, aic, bic
		FROM results WHERE run_id = ? ORDER BY neighborhood`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResultRow
	for rows.Next() {
		var r ResultRow
		var ev, mae, rmse, r2, actual, predicted, delta, aic, bic sql.NullFloat64
		err := rows.Scan(&r.Neighborhood,
			&r.Order.P, &r.Order.D, &r.Order.Q,
			&r.Seasonal.P, &r.Seasonal.D, &r.Seasonal.Q, &r.Seasonal.S, &r.Logged,
			&ev, &mae, &rmse, &r2, &actual, &predicted, &delta, &aic, &bic)
		if err != nil {
			return nil, err
		}
		r.ExplainedVariance, r.MAE, r.RMSE, r.R2 = fromNull(ev), fromNull(mae), fromNull(rmse), fromNull(r2)
		r.ActualAfterCutoff, r.PredictedAfterCutoff, r.Delta = fromNull(actual), fromNull(predicted), fromNull(delta)
		r.AIC, r.BIC = fromNull(aic), fromNull(bic)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SavePredictions writes every non-NaN forecast value under runID.
func (s *Store) SavePredictions(runID string, preds *model.Predictions) error {
	if err := s.checkRun(runID); err != nil {
		return err
	}
	return s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("INSERT OR REPLACE INTO predictions (run_id, neighborhood, day, value) VALUES (?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, nb := range preds.Columns() {
			col, _ := preds.Column(nb)
			for i, v := range col {
				if math.IsNaN(v) {
					continue
				}
				if _, err := stmt.Exec(runID, nb, preds.Dates[i].Format(time.DateOnly), v); err != nil {
					return fmt.Errorf("save prediction %s: %w", nb, err)
				}
			}
		}
		return nil
	})
}

// Predictions rebuilds the predictions table of a run.
func (s *Store) Predictions(runID string) (*model.Predictions, error) {
	if err := s.checkRun(runID); err != nil {
		return nil, err
	}
	rows, err := s.Query("SELECT neighborhood, day, value FROM predictions WHERE run_id = ? ORDER BY neighborhood, day", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	dates := make(map[string][]time.Time)
	values := make(map[string][]float64)
	seen := make(map[string]bool)
	var index []time.Time
	for rows.Next() {
		var nb, day string
		var v float64
		if err := rows.Scan(&nb, &day, &v); err != nil {
			return nil, err
		}
		d, err := time.Parse(time.DateOnly, day)
		if err != nil {
			return nil, fmt.Errorf("prediction %s: %w", nb, err)
		}
		if _, ok := dates[nb]; !ok {
			names = append(names, nb)
		}
		dates[nb] = append(dates[nb], d)
		values[nb] = append(values[nb], v)
		if !seen[day] {
			seen[day] = true
			index = append(index, d)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })
	preds := model.NewPredictions(index)
	for _, nb := range names {
		if err := preds.Set(nb, dates[nb], values[nb]); err != nil {
			return nil, err
		}
	}
	return preds, nil
}

// SaveGrid writes every recorded grid row, oldest write first per neighborhood.
func (s *Store) SaveGrid(runID string, table *model.GridTable) error {
	if err := s.checkRun(runID); err != nil {
		return err
	}
	return s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT OR REPLACE INTO grid (
			run_id, neighborhood, seq, p, d, q, seasonal_p, seasonal_d, seasonal_q, period, explained_variance
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, best := range table.Rows() {
			for seq, r := range table.History(best.Neighborhood) {
				_, err := stmt.Exec(runID, r.Neighborhood, seq,
					r.Order.P, r.Order.D, r.Order.Q,
					r.Seasonal.P, r.Seasonal.D, r.Seasonal.Q, r.Seasonal.S,
					nullable(r.ExplainedVariance))
				if err != nil {
					return fmt.Errorf("save grid row %s: %w", r.Neighborhood, err)
				}
			}
		}
		return nil
	})
}

// GridRows reads back every grid row written in a run, oldest write first
// per neighborhood.
func (s *Store) GridRows(runID string) ([]model.GridRow, error) {
	return s.gridRows(runID, false)
}

// BestGridRows returns only the last write per neighborhood.
func (s *Store) BestGridRows(runID string) ([]model.GridRow, error) {
	return s.gridRows(runID, true)
}

func (s *Store) gridRows(runID string, bestOnly bool) ([]model.GridRow, error) {
	if err := s.checkRun(runID); err != nil {
		return nil, err
	}
	query := `SELECT neighborhood, p, d, q, seasonal_p, seasonal_d, seasonal_q, period, explained_variance
		FROM grid g WHERE run_id = ?`
	if bestOnly {
		query += ` AND seq = (SELECT MAX(seq) FROM grid WHERE run_id = g.run_id AND neighborhood = g.neighborhood)`
	}
	query += ` ORDER BY neighborhood, seq`

	rows, err := s.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GridRow
	for rows.Next() {
		var r model.GridRow
		var ev sql.NullFloat64
		err := rows.Scan(&r.Neighborhood,
			&r.Order.P, &r.Order.D, &r.Order.Q,
			&r.Seasonal.P, &r.Seasonal.D, &r.Seasonal.Q, &r.Seasonal.S, &ev)
		if err != nil {
			return nil, err
		}
		r.ExplainedVariance = fromNull(ev)
		out = append(out, r)
	}
	return out, rows.Err()
}

// nullable stores NaN and infinities as NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
