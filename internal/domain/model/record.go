// Package model contains domain models passed between layers.
package model

// Kind discriminates the canonical record shapes. Downstream code
// dispatches on it instead of probing for key presence.
type Kind int

const (
	// KindGeneric is the fallback for records from unknown endpoints,
	// passed through with their original fields.
	KindGeneric Kind = iota
	// KindUserStats is one per-user activity row from the user stats endpoint.
	KindUserStats
	// KindTenantSummary is the single tenant-wide summary record.
	KindTenantSummary
	// KindTenantMetric is a single named tenant metric, e.g. monthly active users.
	KindTenantMetric
)

// String returns the kind label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindUserStats:
		return "user_stats"
	case KindTenantSummary:
		return "tenant_summary"
	case KindTenantMetric:
		return "tenant_metric"
	default:
		return "generic"
	}
}

// Column names for canonical records, matching the dashboard table layout.
const (
	ColUser                = "User"
	ColFirstSeen           = "First Seen"
	ColLastSeen            = "Last Seen"
	ColActiveDays          = "Active Days"
	ColCompletions         = "Completions"
	ColAcceptedCompletions = "Accepted Completions"
	ColAcceptRate          = "Accept Rate"
	ColChatMessages        = "Chat Messages"
	ColAgentMessages       = "Agent Messages"
	ColRemoteAgentMessages = "Remote Agent Messages"
	ColInteractiveCLI      = "Interactive CLI Agent Messages"
	ColNonInteractiveCLI   = "Non-Interactive CLI Agent Messages"
	ColToolUses            = "Tool Uses"
	ColTotalModifiedLOC    = "Total Modified Lines of Code"
	ColCompletionLOC       = "Completion Lines of Code"
	ColInstructionLOC      = "Instruction Lines of Code"
	ColAgentLOC            = "Agent Lines of Code"
	ColRemoteAgentLOC      = "Remote Agent Lines of Code"
	ColCLIAgentLOC         = "CLI Agent Lines of Code"

	// Summary columns.
	ColMetricType   = "Metric Type"
	ColValue        = "Value"
	ColUserMessages = "User Messages"
	ColToolCalls    = "Tool Calls"
	ColLinesOfCode  = "Lines of Code"
)

// Record is one canonical record: a flat, human-labeled field set plus
// an explicit shape discriminant.
type Record struct {
	Kind   Kind
	Fields map[string]any
}
