package activity

import (
	"hash/fnv"
	"strings"
)

// AvatarPaletteSize is the number of avatar color slots the presentation
// layer provides. Indices returned by AvatarColorIndex are always below it.
const AvatarPaletteSize = 12

// Describe renders a record as a single human-readable sentence:
// actor prefix + kind-specific body. Missing fields fall back to neutral
// placeholders; unknown kinds degrade to prefix + generated label.
func Describe(rec Record, viewerUID string) string {
	prefix := actorPrefix(rec, viewerUID)
	body := describeBody(rec)
	if body == "" {
		body = Label(rec.Kind)
	}
	if prefix == "" {
		return body
	}
	return prefix + " " + body
}

// Label returns a short display label for a kind. Unknown kinds get a label
// generated from the kind name so nothing ever renders blank.
func Label(k Kind) string {
	switch k {
	case KindTaskCompleted:
		return "completed a task"
	case KindTaskUnchecked:
		return "unchecked an item"
	case KindCompetitorAdded:
		return "added a competitor"
	case KindCompetitorRemoved:
		return "removed a competitor"
	case KindMemberAdded:
		return "added a member"
	case KindMemberRemoved:
		return "removed a member"
	case KindRoleChanged:
		return "changed a role"
	case KindSiteConnected:
		return "connected a site"
	case KindSchemaGenerated:
		return "generated schema markup"
	case KindContentCreated:
		return "created content"
	case KindAnalyzerRun:
		return "ran the content analyzer"
	case KindMetricsRun:
		return "ran a visibility analysis"
	case KindCitationCheck:
		return "ran a citation check"
	case KindMonitorDue:
		return "completed a scheduled re-check"
	case KindProjectCreated:
		return "created the project"
	case KindQuestionnaireCompleted:
		return "completed the onboarding questionnaire"
	case KindUnknown:
		return "did something"
	default:
		return strings.ReplaceAll(string(k), "_", " ")
	}
}

// AvatarColorIndex maps an actor identifier to a stable palette slot.
// Empty identifiers map to slot 0.
func AvatarColorIndex(id string) int {
	if id == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % AvatarPaletteSize)
}

func actorPrefix(rec Record, viewerUID string) string {
	if !rec.HasActor() {
		return ""
	}
	if rec.ActorID != "" && rec.ActorID == viewerUID {
		return "You"
	}
	if rec.ActorName != "" {
		return rec.ActorName
	}
	return "Someone"
}

// describeBody returns the kind-specific sentence body, or "" for kinds
// without a body template.
func describeBody(rec Record) string {
	switch rec.Kind {
	case KindTaskCompleted:
		return "completed \"" + fallback(rec.TaskTitle, "task") + "\""
	case KindTaskUnchecked:
		return "unchecked \"" + fallback(rec.ItemTitle, "item") + "\""
	case KindCompetitorAdded:
		return "added competitor " + fallback(rec.CompetitorName, "competitor")
	case KindCompetitorRemoved:
		return "removed competitor " + fallback(rec.CompetitorName, "competitor")
	case KindMemberAdded:
		return "added " + fallback(rec.MemberName, "member") + " to the project"
	case KindMemberRemoved:
		return "removed " + fallback(rec.MemberName, "member") + " from the project"
	case KindRoleChanged:
		return "changed " + fallback(rec.MemberName, "member") + "'s role to " + fallback(rec.Role, "role")
	case KindSiteConnected:
		return "connected " + fallback(rec.SiteDomain, "site")
	case KindSchemaGenerated:
		return "generated " + fallback(rec.SchemaType, "schema") + " markup"
	case KindContentCreated:
		return "created \"" + fallback(rec.ContentTitle, "content") + "\""
	case KindAnalyzerRun, KindMetricsRun, KindCitationCheck, KindMonitorDue,
		KindProjectCreated, KindQuestionnaireCompleted:
		return Label(rec.Kind)
	default:
		return ""
	}
}

func fallback(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
