// Package normalize maps raw per-endpoint API payloads into canonical
// records with fixed, human-labeled field sets.
package normalize

import (
	"fmt"
	"strings"

	"github.com/okian/dashport/internal/domain/model"
)

// userStatsArrayKey wraps the per-user rows in the user stats payload.
const userStatsArrayKey = "userFeatureStats"

// Wrapper keys probed, in order, when an unknown endpoint returns an
// object instead of an array.
var genericWrapperKeys = []string{"data", "results", "items"}

// UserStats emits one canonical record per element of the payload's
// userFeatureStats array. Missing numeric fields default to 0 and a null
// accept rate defaults to 0 before formatting.
func UserStats(payload any) []model.Record {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	rows, ok := obj[userStatsArrayKey].([]any)
	if !ok {
		return nil
	}

	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		raw, ok := row.(map[string]any)
		if !ok {
			continue
		}
		records = append(records, userStatsRecord(raw))
	}
	return records
}

// userStatsRecord extracts the dashboard table columns from one raw
// per-user stat object.
func userStatsRecord(raw map[string]any) model.Record {
	return model.Record{
		Kind: model.KindUserStats,
		Fields: map[string]any{
			model.ColUser:                strField(raw, "userEmail"),
			model.ColFirstSeen:           dateOnly(strField(raw, "firstSeen")),
			model.ColLastSeen:            dateOnly(strField(raw, "lastSeen")),
			model.ColActiveDays:          intField(raw, "totalActiveDays"),
			model.ColCompletions:         intField(raw, "totalCompletionsInTimePeriod"),
			model.ColAcceptedCompletions: intField(raw, "acceptedCompletionsInTimePeriod"),
			model.ColAcceptRate:          fmt.Sprintf("%.2f%%", floatField(raw, "acceptanceRatePercentage")),
			model.ColChatMessages:        intField(raw, "totalChatMessagesInTimePeriod"),
			model.ColAgentMessages:       intField(raw, "totalAgentChatMessagesInTimePeriod"),
			model.ColRemoteAgentMessages: intField(raw, "totalRemoteAgentMessagesInTimePeriod"),
			model.ColInteractiveCLI:      intField(raw, "totalInteractiveCliAgentMessagesInTimePeriod"),
			model.ColNonInteractiveCLI:   intField(raw, "totalNoninteractiveCliAgentMessagesInTimePeriod"),
			model.ColToolUses:            intField(raw, "totalToolUsesInTimePeriod"),
			model.ColTotalModifiedLOC:    intField(raw, "totalModifiedLinesOfCode"),
			model.ColCompletionLOC:       intField(raw, "completionLinesOfCode"),
			model.ColInstructionLOC:      intField(raw, "instructionLinesOfCode"),
			model.ColAgentLOC:            intField(raw, "agentLinesOfCode"),
			model.ColRemoteAgentLOC:      intField(raw, "remoteAgentLinesOfCode"),
			model.ColCLIAgentLOC:         intField(raw, "cliAgentLinesOfCode"),
		},
	}
}

// TenantSummary emits exactly one summary record with the three
// tenant-wide aggregate counters.
func TenantSummary(payload any) model.Record {
	raw, _ := payload.(map[string]any)
	return model.Record{
		Kind: model.KindTenantSummary,
		Fields: map[string]any{
			model.ColMetricType:   "Tenant Summary",
			model.ColUserMessages: intField(raw, "userMessages"),
			model.ColToolCalls:    intField(raw, "toolCalls"),
			model.ColLinesOfCode:  intField(raw, "linesOfCode"),
		},
	}
}

// TenantMAU emits exactly one record carrying the monthly-active-users
// value.
func TenantMAU(payload any) model.Record {
	raw, _ := payload.(map[string]any)
	return model.Record{
		Kind: model.KindTenantMetric,
		Fields: map[string]any{
			model.ColMetricType: "Monthly Active Users",
			model.ColValue:      intField(raw, "monthlyActiveUsers"),
		},
	}
}

// Generic handles unknown endpoints: lists are taken as-is, objects are
// probed for common wrapper keys (data, results, items) and otherwise
// treated as a single record. Fields pass through unchanged; each record
// is stamped with its source endpoint for traceability.
func Generic(name, path string, payload any) []model.Record {
	var rows []any
	switch v := payload.(type) {
	case []any:
		rows = v
	case map[string]any:
		rows = unwrap(v)
	default:
		rows = []any{payload}
	}

	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		fields := map[string]any{}
		if m, ok := row.(map[string]any); ok {
			for k, val := range m {
				fields[k] = val
			}
		} else {
			fields[model.ColValue] = row
		}
		fields["_source"] = name
		fields["_endpoint"] = path
		records = append(records, model.Record{Kind: model.KindGeneric, Fields: fields})
	}
	return records
}

func unwrap(obj map[string]any) []any {
	for _, key := range genericWrapperKeys {
		if rows, ok := obj[key].([]any); ok {
			return rows
		}
	}
	return []any{obj}
}

// dateOnly truncates a full ISO-8601 timestamp to its calendar date.
func dateOnly(ts string) string {
	if i := strings.Index(ts, "T"); i >= 0 {
		return ts[:i]
	}
	return ts
}

func strField(raw map[string]any, key string) string {
	if s, ok := raw[key].(string); ok {
		return s
	}
	return ""
}

func floatField(raw map[string]any, key string) float64 {
	if f, ok := raw[key].(float64); ok {
		return f
	}
	return 0
}

func intField(raw map[string]any, key string) int {
	return int(floatField(raw, key))
}
