package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/chronolog/internal/db"
	"github.com/alexanderramin/chronolog/internal/domain"
)

// SQLiteBatchRepo implements BatchRepo using a SQLite database.
type SQLiteBatchRepo struct {
	db db.DBTX
}

// NewSQLiteBatchRepo creates a new SQLiteBatchRepo. Pass a transaction-scoped
// DBTX to persist a batch atomically.
func NewSQLiteBatchRepo(dbtx db.DBTX) *SQLiteBatchRepo {
	return &SQLiteBatchRepo{db: dbtx}
}

func (r *SQLiteBatchRepo) Save(ctx context.Context, id, label string, in []domain.Interval) error {
	query := `INSERT INTO batches (id, label, created_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, id, label, time.Now().UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}

	ivQuery := `INSERT INTO intervals
		(batch_id, seq, source, title, start_time, end_time, task_type, ticket, description, billable, raw_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for seq, iv := range in {
		var taskType, ticket, description any
		var billable any
		if iv.Annotation != nil {
			taskType = iv.Annotation.TaskType
			ticket = iv.Annotation.Ticket
			description = iv.Annotation.Description
			billable = boolToInt(iv.Annotation.Billable)
		}

		var rawJSON any
		if iv.Raw != nil {
			data, err := json.Marshal(iv.Raw)
			if err != nil {
				return fmt.Errorf("marshaling raw payload (seq %d): %w", seq, err)
			}
			rawJSON = string(data)
		}

		_, err := r.db.ExecContext(ctx, ivQuery,
			id, seq, iv.Source, iv.Title,
			iv.Start.Format(timeLayout), iv.End.Format(timeLayout),
			taskType, ticket, description, billable, rawJSON,
		)
		if err != nil {
			return fmt.Errorf("inserting interval (seq %d): %w", seq, err)
		}
	}
	return nil
}

func (r *SQLiteBatchRepo) Load(ctx context.Context, id string) ([]domain.Interval, error) {
	var exists int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM batches WHERE id = ?`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking batch: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}

	query := `SELECT source, title, start_time, end_time, task_type, ticket, description, billable, raw_json
		FROM intervals WHERE batch_id = ? ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("loading batch intervals: %w", err)
	}
	defer rows.Close()

	out := []domain.Interval{}
	for rows.Next() {
		iv, err := scanInterval(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batch intervals: %w", err)
	}
	return out, nil
}

func (r *SQLiteBatchRepo) List(ctx context.Context) ([]BatchInfo, error) {
	query := `SELECT b.id, b.label, b.created_at, COUNT(i.batch_id)
		FROM batches b LEFT JOIN intervals i ON i.batch_id = b.id
		GROUP BY b.id ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	defer rows.Close()

	var out []BatchInfo
	for rows.Next() {
		var info BatchInfo
		var createdStr string
		if err := rows.Scan(&info.ID, &info.Label, &createdStr, &info.IntervalCount); err != nil {
			return nil, fmt.Errorf("scanning batch row: %w", err)
		}
		created, err := time.Parse(timeLayout, createdStr)
		if err != nil {
			return nil, fmt.Errorf("parsing batch created_at: %w", err)
		}
		info.CreatedAt = created
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batches: %w", err)
	}
	return out, nil
}

func (r *SQLiteBatchRepo) Latest(ctx context.Context) (*BatchInfo, error) {
	batches, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, fmt.Errorf("latest batch: %w", ErrNotFound)
	}
	return &batches[0], nil
}

func (r *SQLiteBatchRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting batch: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanInterval(rows *sql.Rows) (domain.Interval, error) {
	var iv domain.Interval
	var startStr, endStr string
	var taskType, ticket, description, rawJSON sql.NullString
	var billable sql.NullInt64

	err := rows.Scan(&iv.Source, &iv.Title, &startStr, &endStr,
		&taskType, &ticket, &description, &billable, &rawJSON)
	if err != nil {
		return domain.Interval{}, fmt.Errorf("scanning interval row: %w", err)
	}

	if iv.Start, err = time.Parse(timeLayout, startStr); err != nil {
		return domain.Interval{}, fmt.Errorf("parsing interval start: %w", err)
	}
	if iv.End, err = time.Parse(timeLayout, endStr); err != nil {
		return domain.Interval{}, fmt.Errorf("parsing interval end: %w", err)
	}

	if taskType.Valid {
		iv.Annotation = &domain.Annotation{
			TaskType:    taskType.String,
			Ticket:      stringOrNull(ticket),
			Description: stringOrNull(description),
			Billable:    billable.Valid && intToBool(int(billable.Int64)),
		}
	}

	if rawJSON.Valid && rawJSON.String != "" {
		raw := map[string]any{}
		if err := json.Unmarshal([]byte(rawJSON.String), &raw); err != nil {
			return domain.Interval{}, fmt.Errorf("decoding raw payload: %w", err)
		}
		iv.Raw = raw
	}

	return iv, nil
}
