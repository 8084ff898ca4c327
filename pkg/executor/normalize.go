package executor

import (
	"sort"
	"strings"

	"github.com/workgrid/studio/pkg/domain"
)

const (
	defaultCharset           = "utf8mb4"
	defaultCollationFallback = "utf8mb4_general_ci"
)

// NameValue is one raw (name, value) row from a SHOW listing.
type NameValue struct {
	Name  string
	Value string
}

// CharsetRow is one raw row of SHOW CHARACTER SET.
type CharsetRow struct {
	Charset          string
	DefaultCollation string
}

// MergeVariables folds the session and global listings into one record
// per distinct variable name, sorted by name. A name present in only
// one listing keeps an empty string on the other side. Scope labels
// come from performance_schema keyed by lowercased name; a miss leaves
// the scope nil.
func MergeVariables(session, global []NameValue, scopes map[string]string) []domain.VariableInfo {
	type pair struct {
		session string
		global  string
	}
	merged := make(map[string]*pair, len(session)+len(global))

	for _, nv := range session {
		p, ok := merged[nv.Name]
		if !ok {
			p = &pair{}
			merged[nv.Name] = p
		}
		p.session = nv.Value
	}
	for _, nv := range global {
		p, ok := merged[nv.Name]
		if !ok {
			p = &pair{}
			merged[nv.Name] = p
		}
		p.global = nv.Value
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.VariableInfo, 0, len(names))
	for _, name := range names {
		p := merged[name]
		v := domain.VariableInfo{
			Name:         name,
			SessionValue: p.session,
			GlobalValue:  p.global,
		}
		if scope, ok := scopes[strings.ToLower(name)]; ok {
			s := scope
			v.Scope = &s
		}
		out = append(out, v)
	}
	return out
}

// DefaultCollation picks the default collation of the utf8mb4 charset.
// The last matching row wins; server row order is not guaranteed unique,
// and the observed behavior keys on the final entry. With no match the
// literal fallback applies.
func DefaultCollation(rows []CharsetRow) string {
	collation := defaultCollationFallback
	for _, row := range rows {
		if row.Charset == defaultCharset {
			collation = row.DefaultCollation
		}
	}
	return collation
}

// NullableFromIndicator maps the raw IS_NULLABLE/Null indicator onto a
// bool. Only the exact string "YES" counts.
func NullableFromIndicator(raw string) bool {
	return raw == "YES"
}
