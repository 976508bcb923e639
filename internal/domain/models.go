package domain

import (
	"sort"
	"time"
)

type Dataset struct {
	ID         int64     `db:"id" json:"id"`
	Filename   string    `db:"filename" json:"filename"`
	UploadedAt time.Time `db:"uploaded_at" json:"upload_date"`
}

// Equipment is one row of equipment parameters. JSON keys match the
// uploaded column headers so clients can render rows as-is.
type Equipment struct {
	Name        string  `db:"name" json:"Equipment Name"`
	Type        string  `db:"type" json:"Type"`
	Flowrate    float64 `db:"flowrate" json:"Flowrate"`
	Pressure    float64 `db:"pressure" json:"Pressure"`
	Temperature float64 `db:"temperature" json:"Temperature"`
}

type EquipmentRecord struct {
	ID        int64 `db:"id" json:"id"`
	DatasetID int64 `db:"dataset_id" json:"dataset_id"`
	RowIndex  int   `db:"row_index" json:"row_index"`
	Equipment
}

// Distribution counts records per equipment type.
type Distribution map[string]int

type CategoryCount struct {
	Category string
	Count    int
}

// Sorted returns the categories ordered by name ascending.
func (d Distribution) Sorted() []CategoryCount {
	out := make([]CategoryCount, 0, len(d))
	for k, v := range d {
		out = append(out, CategoryCount{Category: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

func (d Distribution) Total() int {
	n := 0
	for _, v := range d {
		n += v
	}
	return n
}

// Summary is derived from a dataset on every read and never stored.
type Summary struct {
	DatasetID        int64        `json:"id"`
	Filename         string       `json:"filename"`
	UploadedAt       time.Time    `json:"upload_date"`
	AvgFlowrate      float64      `json:"avg_flowrate"`
	AvgPressure      float64      `json:"avg_pressure"`
	AvgTemperature   float64      `json:"avg_temperature"`
	TypeDistribution Distribution `json:"type_distribution"`
	Records          []Equipment  `json:"data"`
}

func (s Summary) RecordCount() int { return len(s.Records) }
