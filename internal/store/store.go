// Package store persists and queries biologics combinations in Postgres.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cmcmaster/rheum-biologics/internal/model"
)

// Store wraps a pgx pool with the combination queries.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// New creates a Store.
func New(pool *pgxpool.Pool, log zerolog.Logger) *Store {
	return &Store{pool: pool, log: log}
}

// Replace atomically swaps the stored rows for one schedule code: within a
// single transaction it deletes the prior snapshot and bulk-inserts the new
// rows via COPY. A failed insert rolls the delete back too, so the old
// snapshot survives any partial failure. An empty row set is a no-op.
func (s *Store) Replace(ctx context.Context, scheduleCode string, rows []model.Combination) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		"DELETE FROM biologics_combinations WHERE schedule_code = $1",
		scheduleCode,
	)
	if err != nil {
		return fmt.Errorf("delete schedule %s: %w", scheduleCode, err)
	}

	inserted, err := tx.CopyFrom(ctx,
		pgx.Identifier{"biologics_combinations"},
		model.CombinationColumns(),
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return rows[i].CopyValues(), nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy combinations: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}

	s.log.Info().
		Str("schedule_code", scheduleCode).
		Int64("deleted", tag.RowsAffected()).
		Int64("inserted", inserted).
		Msg("schedule replaced")
	return nil
}

// PaginatedResult is one page of combinations plus the unpaginated total.
type PaginatedResult struct {
	Data  []model.Combination `json:"data"`
	Total int                 `json:"total"`
}

const combinationSelect = `
SELECT
    id, pbs_code, drug, brand, formulation, indication,
    treatment_phase, streamlined_code, authority_method,
    online_application, hospital_type,
    maximum_prescribable_pack, maximum_quantity_units, number_of_repeats,
    schedule_code, schedule_year, schedule_month,
    created_at, updated_at`

// Search returns one page of combinations matching the filters, plus the
// total match count.
func (s *Store) Search(ctx context.Context, f Filters, limit, offset int) (*PaginatedResult, error) {
	whereSQL, args := f.whereClause("")

	dataSQL := fmt.Sprintf(`
WITH ranked AS (
    SELECT *, TO_DATE(schedule_month, 'MONTH') AS schedule_month_date
    FROM biologics_combinations
)
%s
FROM ranked
%s
%s
LIMIT $%d OFFSET $%d`, combinationSelect, whereSQL, f.orderBy(), len(args)+1, len(args)+2)

	rows, err := s.pool.Query(ctx, dataSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("search combinations: %w", err)
	}
	defer rows.Close()

	data := make([]model.Combination, 0, limit)
	for rows.Next() {
		var c model.Combination
		if err := rows.Scan(
			&c.ID, &c.PBSCode, &c.Drug, &c.Brand, &c.Formulation, &c.Indication,
			&c.TreatmentPhase, &c.StreamlinedCode, &c.AuthorityMethod,
			&c.OnlineApplication, &c.HospitalType,
			&c.MaximumPrescribablePack, &c.MaximumQuantityUnits, &c.NumberOfRepeats,
			&c.ScheduleCode, &c.ScheduleYear, &c.ScheduleMonth,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan combination: %w", err)
		}
		data = append(data, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search combinations: %w", err)
	}

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM biologics_combinations %s", whereSQL)
	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count combinations: %w", err)
	}

	return &PaginatedResult{Data: data, Total: total}, nil
}

// lookupColumns are the columns the lookup endpoints may enumerate.
var lookupColumns = map[string]bool{
	"drug":            true,
	"brand":           true,
	"formulation":     true,
	"indication":      true,
	"treatment_phase": true,
	"hospital_type":   true,
}

// Lookup returns the distinct non-null values of one column, narrowed by
// every filter except the column's own.
func (s *Store) Lookup(ctx context.Context, column string, f Filters) ([]string, error) {
	if !lookupColumns[column] {
		return nil, fmt.Errorf("unsupported lookup column: %s", column)
	}

	whereSQL, args := f.whereClause(column)
	sql := fmt.Sprintf(`
SELECT DISTINCT %s
FROM biologics_combinations
%s
ORDER BY %s ASC`, column, whereSQL, column)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v *string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		if v != nil && *v != "" {
			values = append(values, *v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lookup %s: %w", column, err)
	}
	return values, nil
}

// Schedules lists the distinct ingested schedules, newest first, flagging
// the most recent one.
func (s *Store) Schedules(ctx context.Context) ([]model.ScheduleEntry, error) {
	const sql = `
WITH distinct_schedules AS (
    SELECT DISTINCT schedule_year, schedule_month, schedule_code
    FROM biologics_combinations
), ranked AS (
    SELECT
        schedule_year,
        schedule_month,
        schedule_code,
        TO_DATE(schedule_month, 'MONTH') AS schedule_month_date,
        ROW_NUMBER() OVER (
            ORDER BY schedule_year DESC, TO_DATE(schedule_month, 'MONTH') DESC
        ) AS position
    FROM distinct_schedules
)
SELECT schedule_year, schedule_month, schedule_code, position = 1 AS latest
FROM ranked
ORDER BY schedule_year DESC, schedule_month_date DESC`

	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var entries []model.ScheduleEntry
	for rows.Next() {
		var e model.ScheduleEntry
		if err := rows.Scan(&e.ScheduleYear, &e.ScheduleMonth, &e.ScheduleCode, &e.Latest); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return entries, nil
}
