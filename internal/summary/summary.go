package summary

import (
	"context"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/aggregate"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
)

const DefaultHistoryLimit = 5

type Store interface {
	LatestDataset(ctx context.Context) (domain.Dataset, error)
	RecentDatasets(ctx context.Context, limit int) ([]domain.Dataset, error)
	GetDataset(ctx context.Context, id int64) (domain.Dataset, error)
	RecordsFor(ctx context.Context, datasetID int64) ([]domain.Equipment, error)
}

// Assembler builds summaries from stored records on every call. Nothing is
// cached, so a summary always reflects the rows currently stored.
type Assembler struct {
	store        Store
	historyLimit int
}

func NewAssembler(store Store, historyLimit int) *Assembler {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Assembler{store: store, historyLimit: historyLimit}
}

func (a *Assembler) Latest(ctx context.Context) (domain.Summary, error) {
	ds, err := a.store.LatestDataset(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	return a.build(ctx, ds)
}

func (a *Assembler) ForDataset(ctx context.Context, id int64) (domain.Summary, error) {
	ds, err := a.store.GetDataset(ctx, id)
	if err != nil {
		return domain.Summary{}, err
	}
	return a.build(ctx, ds)
}

// History returns summaries of the most recent datasets, newest first.
// limit is clamped to 1..historyLimit.
func (a *Assembler) History(ctx context.Context, limit int) ([]domain.Summary, error) {
	limit = a.clamp(limit)
	list, err := a.store.RecentDatasets(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Summary, 0, len(list))
	for _, ds := range list {
		s, err := a.build(ctx, ds)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (a *Assembler) clamp(limit int) int {
	if limit < 1 || limit > a.historyLimit {
		return a.historyLimit
	}
	return limit
}

func (a *Assembler) build(ctx context.Context, ds domain.Dataset) (domain.Summary, error) {
	records, err := a.store.RecordsFor(ctx, ds.ID)
	if err != nil {
		return domain.Summary{}, err
	}
	return aggregate.Summarize(ds, records), nil
}
