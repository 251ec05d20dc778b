package telemetry

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"
)

// ExportData is the JSON export envelope for a recorded run.
type ExportData struct {
	Profile string   `json:"profile"`
	Route   string   `json:"route"`
	Steps   int      `json:"steps"`
	Samples []Sample `json:"samples"`
}

func ExportJSON(path, profile, route string, samples []Sample) error {
	data := ExportData{
		Profile: profile,
		Route:   route,
		Steps:   len(samples),
		Samples: samples,
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportCSV(path string, samples []Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"t", "x", "y", "theta", "left", "right"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.FormatFloat(s.T, 'f', 4, 64),
			strconv.FormatFloat(s.X, 'f', 4, 64),
			strconv.FormatFloat(s.Y, 'f', 4, 64),
			strconv.FormatFloat(s.Theta, 'f', 5, 64),
			strconv.FormatFloat(s.Left, 'f', 2, 64),
			strconv.FormatFloat(s.Right, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
