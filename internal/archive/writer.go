package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Writer is an interface to support different archive sinks.
type Writer interface {
	Write(Row) error
}

// Optional: writers can also support batch mode.
type batchWriter interface {
	WriteBatch([]Row) error
}

// MultiWriter fans each row out to several writers. A failing sink
// does not stop the others.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter wraps the given writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write forwards the row to every writer, returning the first error.
func (m *MultiWriter) Write(row Row) error {
	var first error
	for _, w := range m.writers {
		if err := w.Write(row); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes any writer that supports it.
func (m *MultiWriter) Close() error {
	var first error
	for _, w := range m.writers {
		if c, ok := w.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// StdoutWriter prints rows as single-line records.
type StdoutWriter struct{}

// Write implements Writer.
func (StdoutWriter) Write(row Row) error {
	_, err := fmt.Printf("[%s] robot=%s type=%s lat=%.5f lon=%.5f alt=%.1f batt=%.1f sig=%.1f status=%s\n",
		row.Timestamp.Format(time.RFC3339), row.RobotID, row.RobotType,
		row.Lat, row.Lon, row.Alt, row.Battery, row.Signal, row.Status)
	return err
}

// FileWriter appends rows to a JSONL file suitable for replay.
type FileWriter struct {
	file *os.File
	enc  *json.Encoder
}

// NewFileWriter creates (truncating) the archive file at path.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileWriter{file: f, enc: json.NewEncoder(f)}, nil
}

// Write logs a single row.
func (f *FileWriter) Write(row Row) error {
	return f.enc.Encode(row)
}

// WriteBatch logs multiple rows.
func (f *FileWriter) WriteBatch(rows []Row) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying file.
func (f *FileWriter) Close() error {
	return f.file.Close()
}
