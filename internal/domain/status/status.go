// Package status generates the daemon's status file.
//
// The daemon rewrites a small JSON file after every analysis so that shell
// prompts and status bars can show the latest BBFS set without a socket call.
package status

import (
	"encoding/json"
	"os"
	"time"

	"github.com/corey/bbfs/internal/domain/bbfs"
)

// StatusFile is the filename within the run directory where status JSON is written.
const StatusFile = "status.json"

// StatusData is the JSON payload written after each analysis.
type StatusData struct {
	Analyses  int64     `json:"analyses"`
	Source    string    `json:"source"`
	Outcome   string    `json:"outcome"`
	Entries   int       `json:"entries"`
	BBFS      string    `json:"bbfs,omitempty"`
	Mirror    string    `json:"mirror,omitempty"`
	TopPairs  []string  `json:"top_pairs,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Generate produces a StatusData from the latest analysis. source names where
// the history came from ("socket", "http" or an inbox file path).
func Generate(a *bbfs.Analysis, source string, analyses int64, now time.Time) *StatusData {
	return &StatusData{
		Analyses:  analyses,
		Source:    source,
		Outcome:   string(a.Outcome),
		Entries:   a.Entries,
		BBFS:      a.BBFS,
		Mirror:    a.Mirror,
		TopPairs:  topPairs(a, 3),
		UpdatedAt: now.UTC(),
	}
}

// WriteJSON writes the status data as JSON to a file.
func WriteJSON(path string, data *StatusData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadJSON loads a status file written by WriteJSON.
func ReadJSON(path string) (*StatusData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sd StatusData
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

// topPairs returns the first n pairs, already ranked by the engine.
func topPairs(a *bbfs.Analysis, n int) []string {
	if len(a.Pairs) == 0 {
		return nil
	}
	limit := n
	if limit > len(a.Pairs) {
		limit = len(a.Pairs)
	}
	result := make([]string, limit)
	for i := 0; i < limit; i++ {
		result[i] = a.Pairs[i].Pair.String()
	}
	return result
}
