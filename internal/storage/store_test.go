package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/tiltsim/internal/cycle"
	"github.com/san-kum/tiltsim/internal/grid"
	"github.com/san-kum/tiltsim/internal/sim"
)

func testResult() *sim.Result {
	final := grid.MustParse("O.#\n..O\n")
	return &sim.Result{
		Final: final,
		Record: &cycle.Record[grid.Grid]{
			PreCycleLen:    3,
			CycleLen:       2,
			Representative: final,
		},
		Applications: 9,
		LoadsFrom:    3,
		Loads:        []int{5, 3},
		Metrics: map[string]float64{
			"load": 3,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	info := RunInfo{Name: "test", Transform: "spin", Detector: "floyd", Target: 1000}
	runID, err := st.Save(info, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Name != "test" {
		t.Errorf("expected name 'test', got '%s'", meta.Name)
	}
	if !meta.Accelerated || meta.PreCycleLen != 3 || meta.CycleLen != 2 {
		t.Errorf("cycle fields not stored: %+v", meta)
	}
	if meta.FinalLoad != 3 {
		t.Errorf("expected final load 3, got %d", meta.FinalLoad)
	}
	if meta.Metrics["load"] != 3 {
		t.Errorf("expected load metric 3, got %f", meta.Metrics["load"])
	}

	steps, loads, err := st.LoadLoads(runID)
	if err != nil {
		t.Fatalf("load loads failed: %v", err)
	}
	if len(steps) != 2 || steps[0] != 3 || steps[1] != 4 {
		t.Errorf("unexpected steps %v", steps)
	}
	if len(loads) != 2 || loads[0] != 5 || loads[1] != 3 {
		t.Errorf("unexpected loads %v", loads)
	}

	g, err := st.LoadGrid(runID)
	if err != nil {
		t.Fatalf("load grid failed: %v", err)
	}
	if !g.Equal(testResult().Final) {
		t.Errorf("final grid mismatch:\n%s", g)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for _, name := range []string{"first", "second"} {
		if _, err := st.Save(RunInfo{Name: name}, testResult()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	// Stray entries are skipped.
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Name != "first" {
		t.Errorf("expected oldest run first, got %s", runs[0].Name)
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(RunInfo{Name: "files"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, loadsFile, finalFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestStoreExport(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunInfo{Name: "export", Detector: "brent"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.Export(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid json: %v", err)
	}
	if data.ID != runID || data.Detector != "brent" {
		t.Errorf("unexpected metadata %+v", data.RunMetadata)
	}
	if len(data.Final) != 2 || data.Final[0] != "O.#" {
		t.Errorf("unexpected final grid %v", data.Final)
	}
	if len(data.Loads) != 2 {
		t.Errorf("expected 2 loads, got %d", len(data.Loads))
	}
}
