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

	"github.com/san-kum/tiltsim/internal/grid"
	"github.com/san-kum/tiltsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	loadsFile    = "loads.csv"
	finalFile    = "final.txt"
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
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Timestamp    time.Time          `json:"timestamp"`
	Transform    string             `json:"transform"`
	Detector     string             `json:"detector"`
	Target       int                `json:"target"`
	Accelerated  bool               `json:"accelerated"`
	FellBack     bool               `json:"fell_back,omitempty"`
	Rows         int                `json:"rows"`
	Cols         int                `json:"cols"`
	PreCycleLen  int                `json:"pre_cycle_len,omitempty"`
	CycleLen     int                `json:"cycle_len,omitempty"`
	Applications int                `json:"applications"`
	FinalLoad    int                `json:"final_load"`
	Metrics      map[string]float64 `json:"metrics"`
}

// RunInfo is what the caller knows about a run beyond its result.
type RunInfo struct {
	Name      string
	Transform string
	Detector  string
	Target    int
}

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", info.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Name:         info.Name,
		Timestamp:    now,
		Transform:    info.Transform,
		Detector:     info.Detector,
		Target:       info.Target,
		Accelerated:  result.Record != nil,
		FellBack:     result.FellBack,
		Rows:         result.Final.Rows(),
		Cols:         result.Final.Cols(),
		Applications: result.Applications,
		FinalLoad:    result.Final.Load(),
		Metrics:      result.Metrics,
	}
	if result.Record != nil {
		meta.PreCycleLen = result.Record.PreCycleLen
		meta.CycleLen = result.Record.CycleLen
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeLoads(filepath.Join(runDir, loadsFile), result.LoadsFrom, result.Loads); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, finalFile), []byte(result.Final.String()), 0644); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeLoads(path string, from int, loads []int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"step", "load"}); err != nil {
		return err
	}
	for i, l := range loads {
		if err := w.Write([]string{strconv.Itoa(from + i), strconv.Itoa(l)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns stored runs, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadLoads returns the recorded step indices and their loads.
func (s *Store) LoadLoads(runID string) ([]int, []int, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, loadsFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []int{}, []int{}, nil
	}

	steps := make([]int, 0, len(records)-1)
	loads := make([]int, 0, len(records)-1)
	for i, record := range records[1:] {
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%s row %d: %w", loadsFile, i+2, err)
		}
		load, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, nil, fmt.Errorf("%s row %d: %w", loadsFile, i+2, err)
		}
		steps = append(steps, step)
		loads = append(loads, load)
	}

	return steps, loads, nil
}

func (s *Store) LoadGrid(runID string) (grid.Grid, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, finalFile))
	if err != nil {
		return grid.Grid{}, err
	}
	return grid.Parse(string(data))
}
