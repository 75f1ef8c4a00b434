package form

import (
	"sort"
	"strings"
)

// EnvironmentRows renders environment variables as rows sorted by key.
func EnvironmentRows(env map[string]any) []VarRow {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]VarRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, VarRow{Key: k, Value: TextValue(env[k])})
	}
	return rows
}

// BuildEnvironments turns rows into a fresh environment map. Keys are trimmed,
// empty keys are skipped and the last duplicate wins. Values are kept as entered.
func BuildEnvironments(rows []VarRow) map[string]any {
	env := make(map[string]any, len(rows))
	for _, r := range rows {
		key := strings.TrimSpace(r.Key)
		if key == "" {
			continue
		}
		env[key] = r.Value
	}
	return env
}
