// Package history appends confirmed link-state transitions to a CSV
// file for later inspection. Purely observational; failures here never
// affect the state machine.
package history

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"autoswitch/internal/linkstate"
)

// Entry is one confirmed transition record.
type Entry struct {
	Timestamp time.Time
	State     linkstate.State
	Reason    string
	Applied   bool
}

var header = []string{"timestamp", "state", "reason", "applied"}

// Append writes one entry, creating the file with a header row when it
// does not exist yet.
func Append(path string, e Entry) error {
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if writeHeader {
		if err := writer.Write(header); err != nil {
			return err
		}
	}
	record := []string{
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.State.String(),
		e.Reason,
		strconv.FormatBool(e.Applied),
	}
	if err := writer.Write(record); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
