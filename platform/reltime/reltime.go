// Package reltime renders call timestamps relative to the current time the
// way a call log does: "Now", "5 min ago", "14:32", "Tue", "Jan 15".
package reltime

import (
	"fmt"
	"strconv"
	"time"
)

// Texts supplies the localized pieces. i18n.Localizer satisfies it.
type Texts interface {
	Text(key string) string
}

// Formatter formats timestamps in a fixed location.
type Formatter struct {
	texts Texts
	loc   *time.Location
}

// New returns a Formatter. A nil loc means UTC.
func New(texts Texts, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{texts: texts, loc: loc}
}

// Format renders ts relative to now. Future timestamps count as "now".
func (f *Formatter) Format(ts, now time.Time) string {
	ts, now = ts.In(f.loc), now.In(f.loc)
	elapsed := now.Sub(ts)

	switch {
	case elapsed < time.Minute:
		return f.texts.Text("reltime.now")
	case elapsed < time.Hour:
		return fmt.Sprintf(f.texts.Text("reltime.minutes_ago"), int(elapsed/time.Minute))
	case sameDay(ts, now):
		return ts.Format("15:04")
	case elapsed < 7*24*time.Hour:
		return f.texts.Text("weekday." + strconv.Itoa(int(ts.Weekday())))
	}

	month := f.texts.Text("month." + strconv.Itoa(int(ts.Month())))
	if ts.Year() == now.Year() {
		return fmt.Sprintf(f.texts.Text("reltime.date"), month, ts.Day())
	}
	return fmt.Sprintf(f.texts.Text("reltime.date_year"), month, ts.Day(), ts.Year())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
