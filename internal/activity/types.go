// Package activity models the project activity log: a closed set of event
// kinds, human-readable descriptions with actor resolution, and the pure
// filter/group/paginate operations backing the dashboard feed.
package activity

import "time"

// Kind identifies what happened. The set is closed; anything else is
// treated as KindUnknown and still rendered, never dropped.
type Kind string

const (
	KindTaskCompleted          Kind = "task_completed"
	KindTaskUnchecked          Kind = "task_unchecked"
	KindCompetitorAdded        Kind = "competitor_added"
	KindCompetitorRemoved      Kind = "competitor_removed"
	KindMemberAdded            Kind = "member_added"
	KindMemberRemoved          Kind = "member_removed"
	KindRoleChanged            Kind = "role_changed"
	KindSiteConnected          Kind = "site_connected"
	KindSchemaGenerated        Kind = "schema_generated"
	KindContentCreated         Kind = "content_created"
	KindAnalyzerRun            Kind = "analyzer_run"
	KindMetricsRun             Kind = "metrics_run"
	KindCitationCheck          Kind = "citation_check"
	KindMonitorDue             Kind = "monitor_run"
	KindProjectCreated         Kind = "project_created"
	KindQuestionnaireCompleted Kind = "questionnaire_completed"
	KindUnknown                Kind = ""
)

// Record is one immutable activity log entry. Kind-specific fields are set
// per variant; absent fields fall back to neutral placeholders when the
// record is described.
type Record struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id,omitempty"`
	ActorName string    `json:"actor_name,omitempty"`

	TaskTitle      string `json:"task_title,omitempty"`
	ItemTitle      string `json:"item_title,omitempty"`
	CompetitorName string `json:"competitor_name,omitempty"`
	MemberName     string `json:"member_name,omitempty"`
	Role           string `json:"role,omitempty"`
	SiteDomain     string `json:"site_domain,omitempty"`
	SchemaType     string `json:"schema_type,omitempty"`
	ContentTitle   string `json:"content_title,omitempty"`
}

// HasActor reports whether the record carries any author identity.
func (r Record) HasActor() bool {
	return r.ActorID != "" || r.ActorName != ""
}

// RenderHint is the presentation cue for an activity kind. The dashboard
// maps hints to icons and colors; this package only names the bucket.
type RenderHint string

const (
	HintChecklist  RenderHint = "checklist"
	HintTeam       RenderHint = "team"
	HintContent    RenderHint = "content"
	HintMonitoring RenderHint = "monitoring"
	HintSetup      RenderHint = "setup"
	HintGeneric    RenderHint = "generic"
)

// Hint returns the rendering hint for a kind. Unrecognized kinds get the
// generic hint.
func Hint(k Kind) RenderHint {
	switch k {
	case KindTaskCompleted, KindTaskUnchecked:
		return HintChecklist
	case KindMemberAdded, KindMemberRemoved, KindRoleChanged:
		return HintTeam
	case KindContentCreated, KindSchemaGenerated, KindAnalyzerRun:
		return HintContent
	case KindMetricsRun, KindCitationCheck, KindMonitorDue:
		return HintMonitoring
	case KindSiteConnected, KindProjectCreated, KindQuestionnaireCompleted,
		KindCompetitorAdded, KindCompetitorRemoved:
		return HintSetup
	default:
		return HintGeneric
	}
}

// FilterGroup names a fixed set of kind filters for the feed. GroupAll
// imposes no restriction.
type FilterGroup string

const (
	GroupAll        FilterGroup = "all"
	GroupChecklist  FilterGroup = "checklist"
	GroupTeam       FilterGroup = "team"
	GroupContent    FilterGroup = "content"
	GroupMonitoring FilterGroup = "monitoring"
)

var groupKinds = map[FilterGroup]map[Kind]bool{
	GroupChecklist: {
		KindTaskCompleted: true,
		KindTaskUnchecked: true,
	},
	GroupTeam: {
		KindMemberAdded:   true,
		KindMemberRemoved: true,
		KindRoleChanged:   true,
	},
	GroupContent: {
		KindContentCreated:  true,
		KindSchemaGenerated: true,
		KindAnalyzerRun:     true,
	},
	GroupMonitoring: {
		KindMetricsRun:    true,
		KindCitationCheck: true,
		KindMonitorDue:    true,
		KindSiteConnected: true,
	},
}

// FilterGroups lists the selectable groups in display order.
func FilterGroups() []FilterGroup {
	return []FilterGroup{GroupAll, GroupChecklist, GroupTeam, GroupContent, GroupMonitoring}
}

// Allows reports whether the group admits the given kind.
func (g FilterGroup) Allows(k Kind) bool {
	if g == GroupAll || g == "" {
		return true
	}
	set, ok := groupKinds[g]
	if !ok {
		// Unknown group behaves like "all" rather than hiding everything.
		return true
	}
	return set[k]
}
