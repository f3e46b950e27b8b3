package activity

import (
	"time"

	"github.com/lensboard/lensboard/internal/timeutil"
)

// Default pagination values. ShowMore extends the window by a fixed
// increment rather than multiplying pages, so already-visible items never
// move.
const (
	DefaultPageSize = 20
	DefaultShowMore = 20
)

// FeedState distinguishes "nothing ever happened" from "nothing matches the
// current filters"; the dashboard renders them differently.
type FeedState int

const (
	FeedOK FeedState = iota
	FeedEmpty
	FeedNoMatch
)

// Author is a distinct actor seen in the log, used for the author facet.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is one rendered feed entry.
type Item struct {
	Record      Record     `json:"record"`
	Description string     `json:"description"`
	TimeAgo     string     `json:"time_ago"`
	Hint        RenderHint `json:"hint"`
	AvatarColor int        `json:"avatar_color"`
}

// DateGroup is a run of consecutive feed items sharing a date label.
type DateGroup struct {
	Label string `json:"label"`
	Items []Item `json:"items"`
}

// View is the fully assembled feed for one render.
type View struct {
	Groups  []DateGroup `json:"groups"`
	Authors []Author    `json:"authors"`
	HasMore bool        `json:"has_more"`
	State   FeedState   `json:"state"`
}

// DistinctAuthors returns (id, name) pairs in first-seen order, deduplicated
// by id. Records missing either field are skipped.
func DistinctAuthors(log []Record) []Author {
	seen := make(map[string]bool)
	var out []Author
	for _, rec := range log {
		if rec.ActorID == "" || rec.ActorName == "" {
			continue
		}
		if seen[rec.ActorID] {
			continue
		}
		seen[rec.ActorID] = true
		out = append(out, Author{ID: rec.ActorID, Name: rec.ActorName})
	}
	return out
}

// Filter applies the kind-group restriction and then the author restriction,
// preserving the input order. "all" (or empty) disables a restriction, so
// the two compose by intersection in either order.
func Filter(log []Record, group FilterGroup, user string) []Record {
	var out []Record
	for _, rec := range log {
		if !group.Allows(rec.Kind) {
			continue
		}
		if user != "" && user != "all" && rec.ActorID != user {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Paginate slices the filtered log to the visible window and reports whether
// more items remain.
func Paginate(filtered []Record, visible int) ([]Record, bool) {
	if visible < 0 {
		visible = 0
	}
	if len(filtered) <= visible {
		return filtered, false
	}
	return filtered[:visible], true
}

// GroupByDateLabel splits visible records into consecutive runs sharing a
// date label. Concatenating the groups yields the input in the same order;
// no two adjacent groups share a label.
func GroupByDateLabel(visible []Item, now time.Time) []DateGroup {
	var groups []DateGroup
	for _, it := range visible {
		label := timeutil.DateLabel(it.Record.Timestamp, now)
		if n := len(groups); n > 0 && groups[n-1].Label == label {
			groups[n-1].Items = append(groups[n-1].Items, it)
			continue
		}
		groups = append(groups, DateGroup{Label: label, Items: []Item{it}})
	}
	return groups
}

// BuildFeed is the pure feed entry point: filter, paginate, describe, and
// group in one pass. The caller supplies the log newest-first; ordering is
// preserved, never imposed.
func BuildFeed(log []Record, group FilterGroup, user string, visible int, viewerUID string, now time.Time) View {
	view := View{Authors: DistinctAuthors(log)}
	if len(log) == 0 {
		view.State = FeedEmpty
		return view
	}

	filtered := Filter(log, group, user)
	if len(filtered) == 0 {
		view.State = FeedNoMatch
		return view
	}

	page, hasMore := Paginate(filtered, visible)
	items := make([]Item, 0, len(page))
	for _, rec := range page {
		items = append(items, Item{
			Record:      rec,
			Description: Describe(rec, viewerUID),
			TimeAgo:     timeutil.RelativeTime(rec.Timestamp, now),
			Hint:        Hint(rec.Kind),
			AvatarColor: AvatarColorIndex(rec.ActorID),
		})
	}
	view.Groups = GroupByDateLabel(items, now)
	view.HasMore = hasMore
	return view
}

// Feed holds the mutable pagination and filter state for one viewer's feed.
// Changing a filter resets the visible window so a stale "more" cursor never
// applies to a differently sized filtered set.
type Feed struct {
	pageSize  int
	increment int
	visible   int
	group     FilterGroup
	user      string
}

// NewFeed creates feed state with the given page size and show-more
// increment. Non-positive values fall back to the defaults.
func NewFeed(pageSize, increment int) *Feed {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if increment <= 0 {
		increment = DefaultShowMore
	}
	return &Feed{
		pageSize:  pageSize,
		increment: increment,
		visible:   pageSize,
		group:     GroupAll,
		user:      "all",
	}
}

// SetGroup switches the kind filter and resets pagination.
func (f *Feed) SetGroup(g FilterGroup) {
	f.group = g
	f.visible = f.pageSize
}

// SetUser switches the author filter and resets pagination.
func (f *Feed) SetUser(user string) {
	f.user = user
	f.visible = f.pageSize
}

// ShowMore widens the visible window by the fixed increment.
func (f *Feed) ShowMore() {
	f.visible += f.increment
}

// Visible returns the current pagination cursor.
func (f *Feed) Visible() int { return f.visible }

// Build assembles the view for the current filter and pagination state.
func (f *Feed) Build(log []Record, viewerUID string, now time.Time) View {
	return BuildFeed(log, f.group, f.user, f.visible, viewerUID, now)
}
