package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
)

// PopulationRow is one sampled line of the population CSV.
type PopulationRow struct {
	Tick       uint64  `csv:"tick"`
	SimSeconds float64 `csv:"sim_seconds"`
	Hour       int     `csv:"hour"`
	Weather    string  `csv:"weather"`

	Population int `csv:"population"`
	Tamed      int `csv:"tamed"`
	Rare       int `csv:"rare"`
	Packs      int `csv:"packs"`

	Idle      int `csv:"idle"`
	Wandering int `csv:"wandering"`
	Fleeing   int `csv:"fleeing"`
	Sleeping  int `csv:"sleeping"`
	Other     int `csv:"other"`

	MeanTrust float64 `csv:"mean_trust"`
	MeanFear  float64 `csv:"mean_fear"`
}

// OutputManager appends sampled rows to a timestamped CSV file. A nil
// manager is a valid no-op sink.
type OutputManager struct {
	file          *os.File
	headerWritten bool
}

// NewOutputManager creates the output directory and opens a fresh CSV
// file named by wall-clock start time.
func NewOutputManager(dir string) (*OutputManager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create telemetry dir: %w", err)
	}
	name := fmt.Sprintf("population_%s.csv", time.Now().Format("20060102_150405"))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("create telemetry file: %w", err)
	}
	return &OutputManager{file: f}, nil
}

// WriteRow appends one row, emitting the header on first write.
func (m *OutputManager) WriteRow(row PopulationRow) error {
	if m == nil || m.file == nil {
		return nil
	}
	rows := []PopulationRow{row}
	if !m.headerWritten {
		if err := gocsv.Marshal(rows, m.file); err != nil {
			return fmt.Errorf("write telemetry header: %w", err)
		}
		m.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, m.file); err != nil {
		return fmt.Errorf("write telemetry row: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (m *OutputManager) Close() error {
	if m == nil || m.file == nil {
		return nil
	}
	return m.file.Close()
}
