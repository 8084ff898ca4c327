// Package audit keeps the per-profile, append-only operation trail.
//
// Every profile gets two streams under <base>/logs/<profile_id>/: the
// query stream (mysql.log.txt, the full timeline) and the error stream
// (error.log.txt). Writes are best effort: a failure to open or append
// a stream never reaches the caller.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/workgrid/studio/pkg/appdir"
)

// Stream selects one of the per-profile log files.
type Stream string

const (
	// StreamQuery is the unified timeline: queries, lifecycle events and
	// a copy of every error.
	StreamQuery Stream = "mysql"
	// StreamError holds errors only.
	StreamError Stream = "error"
)

const (
	queryLogFile = "mysql.log.txt"
	errorLogFile = "error.log.txt"
)

func (s Stream) filename() string {
	if s == StreamError {
		return errorLogFile
	}
	return queryLogFile
}

// ParseStream maps the wire names used by the UI onto a Stream.
func ParseStream(kind string) (Stream, error) {
	switch kind {
	case "query", "mysql":
		return StreamQuery, nil
	case "error":
		return StreamError, nil
	default:
		return "", fmt.Errorf("unknown log type %q: use 'mysql' or 'error'", kind)
	}
}

// Logger appends timestamped lines to profile streams. The zero value is
// usable; New exists for symmetry with the rest of the wiring.
type Logger struct{}

// New creates an audit logger.
func New() *Logger {
	return &Logger{}
}

// Record appends one "[timestamp] message" line to the given stream,
// creating the profile's log directory on first use. Failures are
// swallowed: audit logging must never affect command outcome.
func (l *Logger) Record(profileID string, stream Stream, message string) {
	dir, err := appdir.LogDir(profileID)
	if err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, stream.filename()), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "[%s] %s\n", time.Now().UTC().Format("2006-01-02 15:04:05"), message)
}

// Query records a statement without a row count.
func (l *Logger) Query(profileID, query string) {
	l.Record(profileID, StreamQuery, "QUERY: "+query)
}

// QueryResult records a statement together with its row count.
func (l *Logger) QueryResult(profileID, query string, rows int) {
	l.Record(profileID, StreamQuery, fmt.Sprintf("QUERY: %s → %d rows", query, rows))
}

// Info records a lifecycle event on the query stream.
func (l *Logger) Info(profileID, message string) {
	l.Record(profileID, StreamQuery, "INFO: "+message)
}

// Error records an error on the error stream and mirrors it on the
// query stream so the timeline stays complete.
func (l *Logger) Error(profileID, message string) {
	l.Record(profileID, StreamError, "ERROR: "+message)
	l.Record(profileID, StreamQuery, "ERROR: "+message)
}

// Read returns the full contents of one stream. A stream that was never
// written reads as an empty string.
func (l *Logger) Read(profileID string, stream Stream) (string, error) {
	dir, err := appdir.LogDir(profileID)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(dir, stream.filename()))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read log: %w", err)
	}
	return string(data), nil
}

// Clear removes one stream file. Clearing an absent stream is a no-op.
func (l *Logger) Clear(profileID string, stream Stream) error {
	dir, err := appdir.LogDir(profileID)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, stream.filename())
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete log: %w", err)
	}
	return nil
}

// ClearAll removes both streams for a profile.
func (l *Logger) ClearAll(profileID string) error {
	for _, s := range []Stream{StreamQuery, StreamError} {
		if err := l.Clear(profileID, s); err != nil {
			return err
		}
	}
	return nil
}
