package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
)

// insertChunk bounds the rows per INSERT so the statement stays under the
// bind parameter limits of both drivers.
const insertChunk = 500

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

// CreateDatasetWithRecords stores the dataset and all of its rows in one
// transaction. On any error nothing is persisted.
func (r *Repos) CreateDatasetWithRecords(ctx context.Context, filename string, uploadedAt time.Time, items []domain.Equipment) (domain.Dataset, error) {
	ds := domain.Dataset{Filename: filename, UploadedAt: uploadedAt.UTC().Truncate(time.Microsecond)}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx,
		tx.Rebind(`INSERT INTO datasets (filename, uploaded_at) VALUES (?, ?) RETURNING id`),
		ds.Filename, ds.UploadedAt,
	).Scan(&ds.ID)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("insert dataset: %w", err)
	}

	records := make([]domain.EquipmentRecord, len(items))
	for i, it := range items {
		records[i] = domain.EquipmentRecord{DatasetID: ds.ID, RowIndex: i, Equipment: it}
	}
	for start := 0; start < len(records); start += insertChunk {
		end := min(start+insertChunk, len(records))
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO equipment (dataset_id, row_index, name, type, flowrate, pressure, temperature)
			 VALUES (:dataset_id, :row_index, :name, :type, :flowrate, :pressure, :temperature)`,
			records[start:end])
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("insert equipment rows %d-%d: %w", start, end-1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Dataset{}, fmt.Errorf("commit: %w", err)
	}
	return ds, nil
}

func (r *Repos) GetDataset(ctx context.Context, id int64) (domain.Dataset, error) {
	var ds domain.Dataset
	err := r.db.GetContext(ctx, &ds, r.db.Rebind(`SELECT id, filename, uploaded_at FROM datasets WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return ds, fmt.Errorf("dataset %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return ds, fmt.Errorf("get dataset %d: %w", id, err)
	}
	return ds, nil
}

func (r *Repos) LatestDataset(ctx context.Context) (domain.Dataset, error) {
	list, err := r.RecentDatasets(ctx, 1)
	if err != nil {
		return domain.Dataset{}, err
	}
	if len(list) == 0 {
		return domain.Dataset{}, fmt.Errorf("latest dataset: %w", domain.ErrNotFound)
	}
	return list[0], nil
}

// RecentDatasets lists datasets newest first; equal upload times fall back
// to the higher id.
func (r *Repos) RecentDatasets(ctx context.Context, limit int) ([]domain.Dataset, error) {
	out := []domain.Dataset{}
	err := r.db.SelectContext(ctx, &out,
		r.db.Rebind(`SELECT id, filename, uploaded_at FROM datasets ORDER BY uploaded_at DESC, id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("recent datasets: %w", err)
	}
	return out, nil
}

// RecordsFor returns the dataset rows in upload order.
func (r *Repos) RecordsFor(ctx context.Context, datasetID int64) ([]domain.Equipment, error) {
	out := []domain.Equipment{}
	err := r.db.SelectContext(ctx, &out,
		r.db.Rebind(`SELECT name, type, flowrate, pressure, temperature FROM equipment WHERE dataset_id = ? ORDER BY row_index`), datasetID)
	if err != nil {
		return nil, fmt.Errorf("records for dataset %d: %w", datasetID, err)
	}
	return out, nil
}

// DeleteDataset removes a dataset; its rows go with it via ON DELETE CASCADE.
func (r *Repos) DeleteDataset(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM datasets WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete dataset %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dataset %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("dataset %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
