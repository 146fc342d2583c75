package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/dtgrowth/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string    `json:"id"`
	Model        string    `json:"model"`
	Integrator   string    `json:"integrator"`
	Preset       string    `json:"preset,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	StartTime    float64   `json:"start_time"`
	Duration     float64   `json:"duration"`
	GrowthFactor float64   `json:"-"`
	MinDT        float64   `json:"min_dt"`
	Accepted     int       `json:"accepted"`
	Rejected     int       `json:"rejected"`
	EnergyDrift  float64   `json:"energy_drift"`
	Knots        []float64 `json:"knots,omitempty"`
}

// MarshalJSON stores growth_factor as a string so that +Inf survives JSON.
func (m RunMetadata) MarshalJSON() ([]byte, error) {
	type plain RunMetadata
	return json.Marshal(struct {
		plain
		GrowthFactor string `json:"growth_factor"`
	}{plain(m), strconv.FormatFloat(m.GrowthFactor, 'g', -1, 64)})
}

func (m *RunMetadata) UnmarshalJSON(data []byte) error {
	type plain RunMetadata
	aux := struct {
		*plain
		GrowthFactor string `json:"growth_factor"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.GrowthFactor == "" {
		return nil
	}
	g, err := strconv.ParseFloat(aux.GrowthFactor, 64)
	if err != nil {
		return fmt.Errorf("growth_factor: %w", err)
	}
	m.GrowthFactor = g
	return nil
}

var stepsHeader = []string{"step", "time", "dt", "cutbacks", "on_knot"}

// Save writes metadata.json and steps.csv into a new run directory and
// returns the run id.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	meta.Timestamp = time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Model, meta.Timestamp.UnixNano())
	meta.Accepted = result.Accepted
	meta.Rejected = result.Rejected
	meta.EnergyDrift = result.EnergyDrift

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "steps.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)

	header := append([]string(nil), stepsHeader...)
	if len(result.States) > 0 {
		for i := range result.States[0] {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i, rec := range result.Steps {
		row := []string{
			strconv.Itoa(rec.Step),
			strconv.FormatFloat(rec.Time, 'g', -1, 64),
			strconv.FormatFloat(rec.DT, 'g', -1, 64),
			strconv.Itoa(rec.Cutbacks),
			strconv.FormatBool(rec.OnKnot),
		}
		if i+1 < len(result.States) {
			for _, val := range result.States[i+1] {
				row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns all runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSteps reads back the step records of a run. State columns are skipped.
func (s *Store) LoadSteps(runID string) ([]sim.StepRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "steps.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []sim.StepRecord{}, nil
	}

	steps := make([]sim.StepRecord, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < len(stepsHeader) {
			return nil, fmt.Errorf("steps.csv line %d: expected %d columns, got %d", i+2, len(stepsHeader), len(record))
		}
		var rec sim.StepRecord
		if rec.Step, err = strconv.Atoi(record[0]); err != nil {
			return nil, fmt.Errorf("steps.csv line %d: %w", i+2, err)
		}
		if rec.Time, err = strconv.ParseFloat(record[1], 64); err != nil {
			return nil, fmt.Errorf("steps.csv line %d: %w", i+2, err)
		}
		if rec.DT, err = strconv.ParseFloat(record[2], 64); err != nil {
			return nil, fmt.Errorf("steps.csv line %d: %w", i+2, err)
		}
		if rec.Cutbacks, err = strconv.Atoi(record[3]); err != nil {
			return nil, fmt.Errorf("steps.csv line %d: %w", i+2, err)
		}
		if rec.OnKnot, err = strconv.ParseBool(record[4]); err != nil {
			return nil, fmt.Errorf("steps.csv line %d: %w", i+2, err)
		}
		steps = append(steps, rec)
	}

	return steps, nil
}
