// Package aggregate merges daily per-user report files into one summed
// report per user over the full period.
package aggregate

import (
	"context"

	"github.com/okian/dashport/internal/domain/model"
	"github.com/okian/dashport/internal/domain/window"
	"github.com/okian/dashport/pkg/logger"
	"github.com/okian/dashport/pkg/metrics"
)

// Loader reads one daily report file. Supplied by the caller so this
// package stays free of file-format concerns.
type Loader func(path string) ([]model.UserReport, error)

// userTotals accumulates one user's counters across days. Feature
// buckets live in an explicit name-keyed map built through get-or-insert,
// so every field present in the output is one this code put there.
type userTotals struct {
	report   model.UserReport
	features map[string]*model.FeatureTotals
	order    []string // feature names in first-seen order
}

func (u *userTotals) feature(name string) *model.FeatureTotals {
	if ft, ok := u.features[name]; ok {
		return ft
	}
	ft := &model.FeatureTotals{Feature: name}
	u.features[name] = ft
	u.order = append(u.order, name)
	return ft
}

// accumulator is the explicit two-level mapping user -> feature -> counters.
type accumulator struct {
	users map[string]*userTotals
	order []string // user logins in first-seen order
}

func (a *accumulator) user(rec model.UserReport) *userTotals {
	if u, ok := a.users[rec.UserLogin]; ok {
		return u
	}
	u := &userTotals{
		report: model.UserReport{
			EnterpriseID: rec.EnterpriseID,
			UserID:       rec.UserID,
			UserLogin:    rec.UserLogin,
		},
		features: map[string]*model.FeatureTotals{},
	}
	a.users[rec.UserLogin] = u
	a.order = append(a.order, rec.UserLogin)
	return u
}

func (a *accumulator) add(rec model.UserReport) {
	u := a.user(rec)
	r := &u.report

	r.UserInitiatedInteractionCount += rec.UserInitiatedInteractionCount
	r.CodeGenerationActivityCount += rec.CodeGenerationActivityCount
	r.CodeAcceptanceActivityCount += rec.CodeAcceptanceActivityCount
	r.LOCSuggestedToAddSum += rec.LOCSuggestedToAddSum
	r.LOCSuggestedToDeleteSum += rec.LOCSuggestedToDeleteSum
	r.LOCAddedSum += rec.LOCAddedSum
	r.LOCDeletedSum += rec.LOCDeletedSum

	r.UsedAgent = r.UsedAgent || rec.UsedAgent
	r.UsedChat = r.UsedChat || rec.UsedChat

	for _, day := range rec.TotalsByFeature {
		ft := u.feature(day.Feature)
		ft.UserInitiatedInteractionCount += day.UserInitiatedInteractionCount
		ft.CodeGenerationActivityCount += day.CodeGenerationActivityCount
		ft.CodeAcceptanceActivityCount += day.CodeAcceptanceActivityCount
		ft.LOCSuggestedToAddSum += day.LOCSuggestedToAddSum
		ft.LOCSuggestedToDeleteSum += day.LOCSuggestedToDeleteSum
		ft.LOCAddedSum += day.LOCAddedSum
		ft.LOCDeletedSum += day.LOCDeletedSum
	}
}

// Files aggregates the daily report files into one record per user over
// the given window. A file that fails to load is logged and skipped, and
// the remaining files still contribute. Summed counters do not depend on
// file order; output follows the first-seen order of user logins across
// the input sequence.
func Files(ctx context.Context, paths []string, win window.Window, load Loader, log logger.Logger) []model.UserReport {
	acc := &accumulator{users: map[string]*userTotals{}}

	for _, path := range paths {
		records, err := load(path)
		if err != nil {
			log.Error(ctx, "skipping unreadable report file",
				logger.String("path", path),
				logger.Error(err),
			)
			metrics.RecordAggregateFileSkipped()
			continue
		}
		for _, rec := range records {
			acc.add(rec)
		}
	}

	merged := make([]model.UserReport, 0, len(acc.order))
	for _, login := range acc.order {
		u := acc.users[login]

		u.report.TotalsByFeature = make([]model.FeatureTotals, 0, len(u.order))
		for _, name := range u.order {
			u.report.TotalsByFeature = append(u.report.TotalsByFeature, *u.features[name])
		}

		// The merged record spans the whole aggregation period.
		u.report.ReportStartDay = win.StartDay()
		u.report.ReportEndDay = win.EndDay()
		u.report.Day = win.EndDay()

		merged = append(merged, u.report)
	}

	metrics.SetUsersAggregated(len(merged))
	return merged
}
