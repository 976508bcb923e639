package ingestor

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math/rand"
	"strconv"
)

type equipmentProfile struct {
	kind              string
	flow, press, temp [2]float64
}

var profiles = []equipmentProfile{
	{"Pump", [2]float64{80, 160}, [2]float64{4, 8}, [2]float64{90, 130}},
	{"Compressor", [2]float64{60, 120}, [2]float64{7, 12}, [2]float64{100, 140}},
	{"Valve", [2]float64{40, 90}, [2]float64{3, 6}, [2]float64{80, 120}},
	{"HeatExchanger", [2]float64{140, 200}, [2]float64{5, 9}, [2]float64{110, 150}},
	{"Reactor", [2]float64{100, 180}, [2]float64{8, 15}, [2]float64{120, 180}},
	{"Condenser", [2]float64{90, 170}, [2]float64{4, 7}, [2]float64{60, 100}},
}

func between(rng *rand.Rand, r [2]float64) float64 {
	return r[0] + rng.Float64()*(r[1]-r[0])
}

// GenerateCSV builds a plausible equipment dataset with the given number
// of rows.
func GenerateCSV(rng *rand.Rand, rows int) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Equipment Name", "Type", "Flowrate", "Pressure", "Temperature"}); err != nil {
		return nil, err
	}
	for i := 0; i < rows; i++ {
		p := profiles[rng.Intn(len(profiles))]
		rec := []string{
			fmt.Sprintf("%s-%d", p.kind, i+1),
			p.kind,
			strconv.FormatFloat(between(rng, p.flow), 'f', 1, 64),
			strconv.FormatFloat(between(rng, p.press), 'f', 1, 64),
			strconv.FormatFloat(between(rng, p.temp), 'f', 1, 64),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
