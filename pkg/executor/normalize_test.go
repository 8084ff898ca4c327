package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeVariablesUnion(t *testing.T) {
	session := []NameValue{
		{Name: "autocommit", Value: "ON"},
		{Name: "sql_mode", Value: "STRICT_TRANS_TABLES"},
	}
	global := []NameValue{
		{Name: "sql_mode", Value: "ANSI"},
		{Name: "max_connections", Value: "151"},
	}
	scopes := map[string]string{
		"sql_mode": "BOTH",
	}

	merged := MergeVariables(session, global, scopes)
	require.Len(t, merged, 3)

	// Sorted by name, one record per variable.
	assert.Equal(t, "autocommit", merged[0].Name)
	assert.Equal(t, "ON", merged[0].SessionValue)
	assert.Equal(t, "", merged[0].GlobalValue)
	assert.Nil(t, merged[0].Scope)

	assert.Equal(t, "max_connections", merged[1].Name)
	assert.Equal(t, "", merged[1].SessionValue)
	assert.Equal(t, "151", merged[1].GlobalValue)

	assert.Equal(t, "sql_mode", merged[2].Name)
	assert.Equal(t, "STRICT_TRANS_TABLES", merged[2].SessionValue)
	assert.Equal(t, "ANSI", merged[2].GlobalValue)
	require.NotNil(t, merged[2].Scope)
	assert.Equal(t, "BOTH", *merged[2].Scope)
}

func TestMergeVariablesScopeLookupIsCaseInsensitive(t *testing.T) {
	merged := MergeVariables(
		[]NameValue{{Name: "Version_Comment", Value: "MySQL"}},
		nil,
		map[string]string{"version_comment": "GLOBAL"},
	)
	require.Len(t, merged, 1)
	require.NotNil(t, merged[0].Scope)
	assert.Equal(t, "GLOBAL", *merged[0].Scope)
}

func TestMergeVariablesEmptyInputs(t *testing.T) {
	assert.Empty(t, MergeVariables(nil, nil, nil))
}

func TestDefaultCollationLastMatchWins(t *testing.T) {
	rows := []CharsetRow{
		{Charset: "latin1", DefaultCollation: "latin1_swedish_ci"},
		{Charset: "utf8mb4", DefaultCollation: "utf8mb4_general_ci"},
		{Charset: "utf8mb4", DefaultCollation: "utf8mb4_0900_ai_ci"},
	}
	assert.Equal(t, "utf8mb4_0900_ai_ci", DefaultCollation(rows))
}

func TestDefaultCollationFallback(t *testing.T) {
	assert.Equal(t, "utf8mb4_general_ci", DefaultCollation(nil))
	assert.Equal(t, "utf8mb4_general_ci", DefaultCollation([]CharsetRow{
		{Charset: "latin1", DefaultCollation: "latin1_swedish_ci"},
	}))
}

func TestNullableFromIndicator(t *testing.T) {
	assert.True(t, NullableFromIndicator("YES"))
	assert.False(t, NullableFromIndicator("NO"))
	assert.False(t, NullableFromIndicator(""))
	assert.False(t, NullableFromIndicator("yes"))
}
