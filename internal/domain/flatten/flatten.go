// Package flatten collapses nested records into dotted-key scalar
// mappings suitable for tabular export.
package flatten

import (
	"encoding/json"
	"sort"

	"github.com/okian/dashport/internal/domain/model"
)

// priorityColumns is the hard-coded header order matching the dashboard's
// table layout. Priority columns present in a key set always precede any
// other key, so CSV output stays stable and diff-friendly across runs
// even as new endpoints add columns.
var priorityColumns = []string{
	model.ColUser,
	model.ColFirstSeen,
	model.ColLastSeen,
	model.ColActiveDays,
	model.ColCompletions,
	model.ColAcceptedCompletions,
	model.ColAcceptRate,
	model.ColChatMessages,
	model.ColAgentMessages,
	model.ColRemoteAgentMessages,
	model.ColInteractiveCLI,
	model.ColNonInteractiveCLI,
	model.ColToolUses,
	model.ColTotalModifiedLOC,
	model.ColCompletionLOC,
	model.ColInstructionLOC,
	model.ColAgentLOC,
	model.ColRemoteAgentLOC,
	model.ColCLIAgentLOC,
	// Summary metrics
	model.ColMetricType,
	model.ColValue,
	model.ColUserMessages,
	model.ColToolCalls,
	model.ColLinesOfCode,
}

// Flatten recursively walks nested mappings, joining keys with ".".
// Array values are serialized to their compact JSON text instead of being
// expanded, so row shape stays stable across records with variable-length
// arrays.
func Flatten(rec map[string]any) map[string]any {
	out := map[string]any{}
	walk("", rec, out)
	return out
}

func walk(prefix string, value any, out map[string]any) {
	switch v := value.(type) {
	case map[string]any:
		for k, child := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			walk(key, child, out)
		}
	case []any:
		text, err := json.Marshal(v)
		if err != nil {
			out[prefix] = ""
			return
		}
		out[prefix] = string(text)
	default:
		out[prefix] = v
	}
}

// ColumnOrder orders a key set for tabular output: priority columns
// first, in the dashboard's order, then remaining keys sorted
// lexicographically. Deterministic and idempotent.
func ColumnOrder(keys []string) []string {
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}

	ordered := make([]string, 0, len(keys))
	taken := make(map[string]bool, len(keys))
	for _, k := range priorityColumns {
		if present[k] {
			ordered = append(ordered, k)
			taken[k] = true
		}
	}

	rest := make([]string, 0, len(keys))
	for _, k := range keys {
		if !taken[k] {
			rest = append(rest, k)
			taken[k] = true
		}
	}
	sort.Strings(rest)

	return append(ordered, rest...)
}
