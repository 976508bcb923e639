package aggregate

import "github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"

// Stats holds the derived figures for one dataset.
type Stats struct {
	Count            int
	AvgFlowrate      float64
	AvgPressure      float64
	AvgTemperature   float64
	TypeDistribution domain.Distribution
}

// Compute averages the numeric fields and counts records per type.
// Empty input yields zero averages and an empty distribution.
func Compute(items []domain.Equipment) Stats {
	st := Stats{
		Count:            len(items),
		TypeDistribution: make(domain.Distribution),
	}
	if len(items) == 0 {
		return st
	}

	for i, it := range items {
		k := float64(i + 1)
		st.AvgFlowrate = step(st.AvgFlowrate, it.Flowrate, k)
		st.AvgPressure = step(st.AvgPressure, it.Pressure, k)
		st.AvgTemperature = step(st.AvgTemperature, it.Temperature, k)
		st.TypeDistribution[it.Type]++
	}
	return st
}

// step folds x into the running mean of k-1 values. Both terms are divided
// before subtracting, so finite input near the float64 limits never
// overflows.
func step(mean, x, k float64) float64 {
	return mean + (x/k - mean/k)
}

// Summarize attaches stats for the records to the dataset metadata.
func Summarize(ds domain.Dataset, records []domain.Equipment) domain.Summary {
	st := Compute(records)
	if records == nil {
		records = []domain.Equipment{}
	}
	return domain.Summary{
		DatasetID:        ds.ID,
		Filename:         ds.Filename,
		UploadedAt:       ds.UploadedAt,
		AvgFlowrate:      st.AvgFlowrate,
		AvgPressure:      st.AvgPressure,
		AvgTemperature:   st.AvgTemperature,
		TypeDistribution: st.TypeDistribution,
		Records:          records,
	}
}
