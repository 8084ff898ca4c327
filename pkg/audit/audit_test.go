package audit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workgrid/studio/pkg/appdir"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	t.Setenv(appdir.EnvOverride, t.TempDir())
	return New()
}

func TestReadNeverWrittenStreamIsEmpty(t *testing.T) {
	l := newTestLogger(t)

	for _, s := range []Stream{StreamQuery, StreamError} {
		contents, err := l.Read("p1", s)
		require.NoError(t, err)
		assert.Equal(t, "", contents)
	}
}

func TestQueryResultAppendsOneLine(t *testing.T) {
	l := newTestLogger(t)

	l.QueryResult("p1", "SHOW DATABASES", 3)

	contents, err := l.Read("p1", StreamQuery)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(contents, "\n"), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "QUERY: SHOW DATABASES → 3 rows")
	assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] `, lines[0])

	errContents, err := l.Read("p1", StreamError)
	require.NoError(t, err)
	assert.Equal(t, "", errContents)
}

func TestErrorGoesToBothStreams(t *testing.T) {
	l := newTestLogger(t)

	l.Error("p1", "Query error [SELECT 1]: boom")

	errContents, err := l.Read("p1", StreamError)
	require.NoError(t, err)
	assert.Contains(t, errContents, "ERROR: Query error [SELECT 1]: boom")

	queryContents, err := l.Read("p1", StreamQuery)
	require.NoError(t, err)
	assert.Contains(t, queryContents, "ERROR: Query error [SELECT 1]: boom")
}

func TestStreamsAreProfileScoped(t *testing.T) {
	l := newTestLogger(t)

	l.Info("p1", "Connected to root@localhost:3306")

	other, err := l.Read("p2", StreamQuery)
	require.NoError(t, err)
	assert.Equal(t, "", other)
}

func TestAppendOrderWithinStream(t *testing.T) {
	l := newTestLogger(t)

	l.Query("p1", "USE `app`")
	l.QueryResult("p1", "SHOW TABLES", 5)
	l.Info("p1", "Disconnected")

	contents, err := l.Read("p1", StreamQuery)
	require.NoError(t, err)
	first := strings.Index(contents, "USE `app`")
	second := strings.Index(contents, "SHOW TABLES")
	third := strings.Index(contents, "Disconnected")
	assert.True(t, first >= 0 && first < second && second < third)
}

func TestClearIsIdempotent(t *testing.T) {
	l := newTestLogger(t)

	l.Query("p1", "SELECT 1")
	l.Error("p1", "boom")

	require.NoError(t, l.ClearAll("p1"))
	contents, err := l.Read("p1", StreamQuery)
	require.NoError(t, err)
	assert.Equal(t, "", contents)

	// Clearing absent files succeeds
	require.NoError(t, l.ClearAll("p1"))
	require.NoError(t, l.Clear("p1", StreamError))
}

func TestParseStream(t *testing.T) {
	s, err := ParseStream("mysql")
	require.NoError(t, err)
	assert.Equal(t, StreamQuery, s)

	s, err = ParseStream("query")
	require.NoError(t, err)
	assert.Equal(t, StreamQuery, s)

	s, err = ParseStream("error")
	require.NoError(t, err)
	assert.Equal(t, StreamError, s)

	_, err = ParseStream("debug")
	assert.Error(t, err)
}
