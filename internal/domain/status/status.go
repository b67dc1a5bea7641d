// Package status generates the daemon status file.
//
// The daemon rewrites a small JSON file every time it activates a dataset
// generation, so shell prompts and scripts can show what is being served
// without talking to the socket.
package status

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/corey/chatmon/internal/domain/dataset"
)

// StatusFile is the filename within the .chatmon/run directory where status JSON is written.
const StatusFile = "status.json"

// StatusData is the JSON payload the daemon writes on every dataset swap.
type StatusData struct {
	Dataset  string `json:"dataset"`
	Entries  int    `json:"entries"`
	Rows     int    `json:"rows"`
	Dropped  int    `json:"dropped"`
	Fallback bool   `json:"fallback"`
	Reason   string `json:"reason,omitempty"`
	LoadedAt int64  `json:"loaded_at"`
	Reloads  int    `json:"reloads"`
}

// Generate produces a StatusData from a load report and the active table size.
func Generate(report dataset.LoadReport, entries int, loadedAt time.Time, reloads int) *StatusData {
	sd := &StatusData{
		Dataset:  report.Source,
		Entries:  entries,
		Rows:     report.Rows,
		Dropped:  report.Dropped,
		Fallback: report.Fallback,
		LoadedAt: loadedAt.Unix(),
		Reloads:  reloads,
	}
	if report.Err != nil {
		sd.Reason = report.Err.Error()
	}
	return sd
}

// WriteJSON writes the status data as JSON to a file. The file is replaced
// atomically so readers never see a partial write.
func WriteJSON(path string, data *StatusData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
