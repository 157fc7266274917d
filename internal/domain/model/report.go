package model

// Feature labels used in TotalsByFeature. The three buckets are disjoint:
// a source counter contributes to exactly one bucket.
const (
	FeatureCodeCompletion = "code_completion"
	FeatureChatPanel      = "chat_panel"
	FeatureAgentEdit      = "agent_edit"
)

// FeatureTotals is the per-feature counter breakdown inside a UserReport.
type FeatureTotals struct {
	Feature                       string `json:"feature"`
	UserInitiatedInteractionCount int    `json:"user_initiated_interaction_count"`
	CodeGenerationActivityCount   int    `json:"code_generation_activity_count"`
	CodeAcceptanceActivityCount   int    `json:"code_acceptance_activity_count"`
	LOCSuggestedToAddSum          int    `json:"loc_suggested_to_add_sum"`
	LOCSuggestedToDeleteSum       int    `json:"loc_suggested_to_delete_sum"`
	LOCAddedSum                   int    `json:"loc_added_sum"`
	LOCDeletedSum                 int    `json:"loc_deleted_sum"`
}

// UserReport is the externally-imposed per-user-per-day record shape
// consumed by the downstream analytics provider. Field order mirrors the
// provider's published schema.
type UserReport struct {
	ReportStartDay string `json:"report_start_day"`
	ReportEndDay   string `json:"report_end_day"`
	Day            string `json:"day"`
	EnterpriseID   string `json:"enterprise_id"`
	UserID         int64  `json:"user_id"`
	UserLogin      string `json:"user_login"`

	UserInitiatedInteractionCount int `json:"user_initiated_interaction_count"`
	CodeGenerationActivityCount   int `json:"code_generation_activity_count"`
	CodeAcceptanceActivityCount   int `json:"code_acceptance_activity_count"`

	TotalsByFeature []FeatureTotals `json:"totals_by_feature"`

	UsedAgent bool `json:"used_agent"`
	UsedChat  bool `json:"used_chat"`

	LOCSuggestedToAddSum    int `json:"loc_suggested_to_add_sum"`
	LOCSuggestedToDeleteSum int `json:"loc_suggested_to_delete_sum"`
	LOCAddedSum             int `json:"loc_added_sum"`
	LOCDeletedSum           int `json:"loc_deleted_sum"`
}

// Feature returns a pointer to the totals for the named feature, or nil
// if the report carries no such bucket.
func (r *UserReport) Feature(name string) *FeatureTotals {
	for i := range r.TotalsByFeature {
		if r.TotalsByFeature[i].Feature == name {
			return &r.TotalsByFeature[i]
		}
	}
	return nil
}
