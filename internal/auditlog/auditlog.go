// Package auditlog appends one CSV row per committed mutation to
// <dir>/logs/audit-log.csv.
package auditlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp time.Time
	Actor     string
	Namespace string // "chart" or a client id
	Action    string
	TargetID  string
	Details   string
}

// Header is the CSV header for audit-log.csv.
const Header = "timestamp,actor,namespace,action,target_id,details"

const (
	numFields    = 6
	logDir       = "logs"
	logFile      = "audit-log.csv"
	colTimestamp = 0
	colActor     = 1
	colNamespace = 2
	colAction    = 3
	colTargetID  = 4
	colDetails   = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colActor] = e.Actor
	row[colNamespace] = e.Namespace
	row[colAction] = e.Action
	row[colTargetID] = e.TargetID
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		Actor:     record[colActor],
		Namespace: record[colNamespace],
		Action:    record[colAction],
		TargetID:  record[colTargetID],
		Details:   record[colDetails],
	}, nil
}

// Path returns the audit log location under dir.
func Path(dir string) string {
	return filepath.Join(dir, logDir, logFile)
}

// Append writes entries to <dir>/logs/audit-log.csv, creating the file and
// header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Join(dir, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(dir)
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/logs/audit-log.csv. It returns nil if
// the file does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(Path(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Log serializes appends from concurrent callers.
type Log struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// New returns a Log rooted at dir.
func New(dir string) *Log {
	return &Log{dir: dir, now: time.Now}
}

// Record appends a single entry stamped with the current time.
func (l *Log) Record(actor, namespace, action, targetID, details string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Append(l.dir, []Entry{{
		Timestamp: l.now(),
		Actor:     actor,
		Namespace: namespace,
		Action:    action,
		TargetID:  targetID,
		Details:   details,
	}})
}
