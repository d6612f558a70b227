package storage

import (
	"encoding/json"
	"io"
	"strings"
)

type ExportData struct {
	RunMetadata
	Steps []int    `json:"steps"`
	Loads []int    `json:"loads"`
	Final []string `json:"final"`
}

// Export writes a run's metadata, load trace and final grid as indented JSON.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	steps, loads, err := s.LoadLoads(runID)
	if err != nil {
		return err
	}
	g, err := s.LoadGrid(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Steps:       steps,
		Loads:       loads,
		Final:       strings.Split(strings.TrimSuffix(g.String(), "\n"), "\n"),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
