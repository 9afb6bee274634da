// Package coalesce groups adjacent call log rows for the same caller into a
// single entry.
package coalesce

import (
	"sort"
	"time"

	"callerid_backend/internal/calllog/display"
	"callerid_backend/platform/phone"
)

// maxCallTypes is how many call type icons an entry shows.
const maxCallTypes = 3

// Row is one call log row.
type Row struct {
	ID   string
	Meta display.CallMeta
	Read bool
}

// Group is a run of rows shown as one entry. Newest is the most recent row.
type Group struct {
	IDs       []string
	Newest    Row
	CallTypes []display.CallType
	Unread    bool
}

// Count is the number of calls in the group.
func (g Group) Count() int {
	return len(g.IDs)
}

// TimeBucket separates entries into today, yesterday and older, relative
// to now in loc. Rows in different buckets are never combined.
type TimeBucket int

const (
	BucketToday TimeBucket = iota
	BucketYesterday
	BucketOlder
)

// BucketFor returns the bucket of ts.
func BucketFor(ts, now time.Time, loc *time.Location) TimeBucket {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	startOfToday := time.Date(y, m, d, 0, 0, 0, 0, loc)
	switch {
	case !ts.Before(startOfToday):
		return BucketToday
	case !ts.Before(startOfToday.AddDate(0, 0, -1)):
		return BucketYesterday
	default:
		return BucketOlder
	}
}

// Coalesce sorts rows newest first and merges adjacent rows that belong to
// the same caller. The input slice is not modified.
func Coalesce(rows []Row, now time.Time, loc *time.Location) []Group {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Meta.Timestamp.After(sorted[j].Meta.Timestamp)
	})

	groups := make([]Group, 0, len(sorted))
	for _, row := range sorted {
		if n := len(groups); n > 0 && shouldCombine(groups[n-1].Newest, row, now, loc) {
			groups[n-1] = appendRow(groups[n-1], row)
			continue
		}
		groups = append(groups, appendRow(Group{Newest: row}, row))
	}

	for i := range groups {
		groups[i].Newest.Meta.CoalescedCount = groups[i].Count()
	}
	return groups
}

func appendRow(g Group, row Row) Group {
	g.IDs = append(g.IDs, row.ID)
	if len(g.CallTypes) < maxCallTypes {
		g.CallTypes = append(g.CallTypes, row.Meta.CallType)
	}
	if !row.Read {
		g.Unread = true
	}
	return g
}

func shouldCombine(a, b Row, now time.Time, loc *time.Location) bool {
	am, bm := a.Meta, b.Meta
	if am.PhoneAccount.ComponentName != bm.PhoneAccount.ComponentName || am.PhoneAccount.ID != bm.PhoneAccount.ID {
		return false
	}
	if am.Presentation != bm.Presentation {
		return false
	}
	if am.IsVideo() != bm.IsVideo() {
		return false
	}
	if am.IsVoicemail() != bm.IsVoicemail() {
		return false
	}
	if BucketFor(am.Timestamp, now, loc) != BucketFor(bm.Timestamp, now, loc) {
		return false
	}
	// Restricted and unknown callers have no number to compare.
	if am.Presentation != display.PresentationAllowed {
		return true
	}
	return phone.IsMatch(am.Number, bm.Number)
}
