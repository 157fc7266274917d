// Package convert maps canonical per-user rows into the downstream
// analytics provider's per-user-per-day report schema.
package convert

import (
	"crypto/md5" //nolint:gosec // not used for security: stable id derivation only
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/okian/dashport/internal/domain/model"
	"github.com/okian/dashport/internal/domain/window"
)

// userIDHexDigits is how much of the email hash feeds the numeric id.
const userIDHexDigits = 8

// UserID derives a numeric user id from an email address: the first 8
// hex digits of the address's MD5, parsed base 16. One-way and
// deterministic, so the same email yields the same id across runs with
// no lookup table.
func UserID(email string) int64 {
	sum := md5.Sum([]byte(email)) //nolint:gosec // stable id derivation, not security
	digest := hex.EncodeToString(sum[:])
	id, err := strconv.ParseInt(digest[:userIDHexDigits], 16, 64)
	if err != nil {
		return 0
	}
	return id
}

// parseCount coerces a row value to a counter. A trailing "%" is
// stripped, the value goes through floating point and is truncated to an
// integer. Any parse failure yields 0; this never errors.
func parseCount(value string) int {
	value = strings.TrimSpace(strings.ReplaceAll(value, "%", ""))
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// FromRow converts one canonical row into a UserReport for the given
// reporting window. Returns ok=false for rows that should not be
// emitted: no user identity, or zero recorded active days.
func FromRow(row map[string]string, win window.Window, enterpriseID string) (model.UserReport, bool) {
	email := strings.TrimSpace(row[model.ColUser])
	if email == "" {
		return model.UserReport{}, false
	}

	// Zero active days means "no activity", not an empty report. A value
	// that does not parse as an integer is not treated as zero.
	if days, err := strconv.Atoi(strings.TrimSpace(row[model.ColActiveDays])); err == nil && days == 0 {
		return model.UserReport{}, false
	}

	completions := parseCount(row[model.ColCompletions])
	acceptedCompletions := parseCount(row[model.ColAcceptedCompletions])
	chatMessages := parseCount(row[model.ColChatMessages])
	agentMessages := parseCount(row[model.ColAgentMessages])
	remoteAgentMessages := parseCount(row[model.ColRemoteAgentMessages])
	interactiveCLIMessages := parseCount(row[model.ColInteractiveCLI])
	nonInteractiveCLIMessages := parseCount(row[model.ColNonInteractiveCLI])

	totalModifiedLOC := parseCount(row[model.ColTotalModifiedLOC])
	completionLOC := parseCount(row[model.ColCompletionLOC])
	agentLOC := parseCount(row[model.ColAgentLOC])
	remoteAgentLOC := parseCount(row[model.ColRemoteAgentLOC])
	cliAgentLOC := parseCount(row[model.ColCLIAgentLOC])

	totalAgentMessages := agentMessages + remoteAgentMessages +
		interactiveCLIMessages + nonInteractiveCLIMessages
	totalAgentLOC := agentLOC + remoteAgentLOC + cliAgentLOC
	totalUserInteractions := chatMessages + totalAgentMessages

	report := model.UserReport{
		ReportStartDay: win.StartDay(),
		ReportEndDay:   win.EndDay(),
		// The provider schema carries a single reporting day; the end of
		// the window stands in for it.
		Day:          win.EndDay(),
		EnterpriseID: enterpriseID,
		UserID:       UserID(email),
		UserLogin:    email,

		UserInitiatedInteractionCount: totalUserInteractions,
		CodeGenerationActivityCount:   completions,
		CodeAcceptanceActivityCount:   acceptedCompletions,

		// Each source counter lands in exactly one bucket; nothing is
		// double-counted across features.
		TotalsByFeature: []model.FeatureTotals{
			{
				Feature:                     model.FeatureCodeCompletion,
				CodeGenerationActivityCount: completions,
				CodeAcceptanceActivityCount: acceptedCompletions,
				LOCSuggestedToAddSum:        completionLOC,
				LOCAddedSum:                 completionLOC,
			},
			{
				Feature:                       model.FeatureChatPanel,
				UserInitiatedInteractionCount: chatMessages,
			},
			{
				Feature:                       model.FeatureAgentEdit,
				UserInitiatedInteractionCount: totalAgentMessages,
				LOCAddedSum:                   totalAgentLOC,
			},
		},

		UsedAgent: totalAgentMessages > 0,
		UsedChat:  chatMessages > 0,

		LOCSuggestedToAddSum: completionLOC,
		LOCAddedSum:          totalModifiedLOC,
	}

	return report, true
}

// Rows converts a sequence of canonical rows, dropping the ones FromRow
// rejects.
func Rows(rows []map[string]string, win window.Window, enterpriseID string) []model.UserReport {
	reports := make([]model.UserReport, 0, len(rows))
	for _, row := range rows {
		if report, ok := FromRow(row, win, enterpriseID); ok {
			reports = append(reports, report)
		}
	}
	return reports
}
