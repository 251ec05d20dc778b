package telemetry

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/driveline/internal/geo"
)

func record(n int) *Recorder {
	r := NewRecorder()
	for i := 0; i < n; i++ {
		r.OnTick(
			geo.Pose{X: float64(i), Y: float64(i) / 2, Theta: 0.1},
			50, 60,
			time.Duration(i)*10*time.Millisecond,
		)
	}
	return r
}

func TestRecorderCollects(t *testing.T) {
	r := record(5)

	samples := r.Samples()
	if len(samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(samples))
	}
	if samples[3].X != 3 || samples[3].Left != 50 || samples[3].T != 0.03 {
		t.Errorf("sample content wrong: %+v", samples[3])
	}
}

func TestSamplesReturnsCopy(t *testing.T) {
	r := record(3)

	samples := r.Samples()
	samples[0].X = 999
	if r.Samples()[0].X == 999 {
		t.Error("Samples exposed internal storage")
	}
}

func TestReset(t *testing.T) {
	r := record(4)
	r.Reset()
	if len(r.Samples()) != 0 {
		t.Error("reset left samples behind")
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	r := record(3)

	if err := ExportJSON(path, "demo", "20,0;20,20", r.Samples()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got ExportData
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Profile != "demo" || got.Route != "20,0;20,20" || got.Steps != 3 {
		t.Errorf("envelope wrong: %+v", got)
	}
	if len(got.Samples) != 3 || got.Samples[2].X != 2 {
		t.Errorf("samples wrong: %+v", got.Samples)
	}
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	r := record(2)

	if err := ExportCSV(path, r.Samples()); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "t" || rows[0][5] != "right" {
		t.Errorf("header wrong: %v", rows[0])
	}
	if rows[2][1] != "1.0000" {
		t.Errorf("x column wrong: %v", rows[2])
	}
}

func TestPlotsEmptyInput(t *testing.T) {
	if DistancePlot(nil, geo.Point{}) != "" || SpeedPlot(nil) != "" || HeadingPlot(nil) != "" {
		t.Error("empty traces should render to empty strings")
	}
}

func TestDistancePlotRenders(t *testing.T) {
	r := record(20)
	out := DistancePlot(r.Samples(), geo.Point{X: 19})
	if out == "" {
		t.Fatal("no plot output")
	}
	if !strings.Contains(out, "distance to target") {
		t.Error("caption missing")
	}
}

func TestSpeedPlotRenders(t *testing.T) {
	r := record(20)
	if out := SpeedPlot(r.Samples()); !strings.Contains(out, "wheel speeds") {
		t.Error("caption missing")
	}
}
