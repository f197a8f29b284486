package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/insightdelivered/bank-notify/internal/models"
)

// Entry is one journaled announcement.
type Entry struct {
	ID           uuid.UUID
	Time         time.Time
	Announcement models.Announcement
}

var header = []string{"ID", "Time", "Source", "Amount", "SpokenText", "ChimeVolume", "SpeechVolume"}

// CSVWriter writes announcements to CSV format.
type CSVWriter struct {
	IncludeHeader bool

	mu sync.Mutex
}

// AppendToFile appends entries to the CSV file at path, writing the column
// header only when the file is new or empty.
func (w *CSVWriter) AppendToFile(path string, entries ...Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open journal %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat journal %q: %w", path, err)
	}

	return write(f, info.Size() == 0, entries)
}

// Write writes entries in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, entries ...Entry) error {
	return write(out, w.IncludeHeader, entries)
}

func write(out io.Writer, includeHeader bool, entries []Entry) error {
	writer := csv.NewWriter(out)

	if includeHeader {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, e := range entries {
		a := e.Announcement
		row := []string{
			e.ID.String(),
			e.Time.UTC().Format(time.RFC3339),
			string(a.Source),
			a.Amount,
			a.SpokenText,
			formatVolume(a.ChimeVolume),
			formatVolume(a.SpeechVolume),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatVolume(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Journal appends announcements to a CSV file.
type Journal struct {
	Path string

	w CSVWriter
}

// Record appends entries to the journal file.
func (j *Journal) Record(entries ...Entry) error {
	return j.w.AppendToFile(j.Path, entries...)
}
