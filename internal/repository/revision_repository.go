package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mzurek/ward-roster-api/internal/models"
	apperrors "github.com/mzurek/ward-roster-api/pkg/errors"
)

// RevisionRepository stores month revisions as JSONB documents keyed by
// their revision address. Writes are guarded by an optimistic rev counter.
type RevisionRepository struct {
	db *sqlx.DB
}

// NewRevisionRepository creates a new revision repository.
func NewRevisionRepository(db *sqlx.DB) *RevisionRepository {
	return &RevisionRepository{db: db}
}

type revisionRow struct {
	RevisionKey string    `db:"revision_key"`
	Month       int       `db:"month"`
	Year        int       `db:"year"`
	Kind        string    `db:"kind"`
	Payload     []byte    `db:"payload"`
	Rev         int64     `db:"rev"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Get loads one stored month revision. Absence is reported as (nil, nil).
func (r *RevisionRepository) Get(ctx context.Context, key models.RevisionKey) (*models.MonthDataModel, error) {
	const query = `SELECT revision_key, month, year, kind, payload, rev, updated_at
FROM month_revisions WHERE revision_key = $1`
	var row revisionRow
	if err := r.db.GetContext(ctx, &row, query, string(key)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get month revision: %w", err)
	}
	var month models.MonthDataModel
	if err := json.Unmarshal(row.Payload, &month); err != nil {
		return nil, fmt.Errorf("decode month revision %s: %w", key, err)
	}
	return &month, nil
}

// Put upserts one month revision. A concurrent writer racing between the
// rev read and the update surfaces as a revision conflict.
func (r *RevisionRepository) Put(ctx context.Context, key models.RevisionKey, month models.MonthDataModel) error {
	scheduleKey, kind, err := models.ParseRevisionKey(key)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(month)
	if err != nil {
		return fmt.Errorf("encode month revision %s: %w", key, err)
	}

	const selectRev = `SELECT rev FROM month_revisions WHERE revision_key = $1`
	var rev int64
	switch err := r.db.GetContext(ctx, &rev, selectRev, string(key)); {
	case errors.Is(err, sql.ErrNoRows):
		const insert = `INSERT INTO month_revisions (revision_key, month, year, kind, payload, rev, updated_at)
VALUES ($1, $2, $3, $4, $5, 1, $6)`
		if _, err := r.db.ExecContext(ctx, insert, string(key), scheduleKey.Month, scheduleKey.Year, string(kind), payload, time.Now().UTC()); err != nil {
			return fmt.Errorf("insert month revision: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read month revision rev: %w", err)
	}

	const update = `UPDATE month_revisions SET payload = $1, rev = rev + 1, updated_at = $2
WHERE revision_key = $3 AND rev = $4`
	res, err := r.db.ExecContext(ctx, update, payload, time.Now().UTC(), string(key), rev)
	if err != nil {
		return fmt.Errorf("update month revision: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update month revision: %w", err)
	}
	if affected == 0 {
		return apperrors.Clone(apperrors.ErrRevisionConflict, fmt.Sprintf("revision %s was modified concurrently", key))
	}
	return nil
}

// ListAll returns every stored month revision keyed by revision address.
func (r *RevisionRepository) ListAll(ctx context.Context) (map[models.RevisionKey]models.MonthDataModel, error) {
	const query = `SELECT revision_key, month, year, kind, payload, rev, updated_at
FROM month_revisions ORDER BY year ASC, month ASC, kind ASC`
	var rows []revisionRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list month revisions: %w", err)
	}
	result := make(map[models.RevisionKey]models.MonthDataModel, len(rows))
	for _, row := range rows {
		var month models.MonthDataModel
		if err := json.Unmarshal(row.Payload, &month); err != nil {
			return nil, fmt.Errorf("decode month revision %s: %w", row.RevisionKey, err)
		}
		result[models.RevisionKey(row.RevisionKey)] = month
	}
	return result, nil
}
