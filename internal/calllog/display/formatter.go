package display

import (
	"strconv"
	"strings"
	"time"

	"callerid_backend/internal/lookup/consolidate"
)

// Keys of the localized strings the formatter asks Resources for.
const (
	KeyBlocked       = "blocked"
	KeySpam          = "spam"
	KeyUnknown       = "unknown"
	KeyPrivateNumber = "private_number"
	KeyPayphone      = "payphone"
	KeyDuoVideo      = "duo_video"
	KeyCarrierVideo  = "carrier_video"
)

const separator = " • "

// Resources supplies localized fixed labels.
type Resources interface {
	Text(key string) string
}

// RelativeTimeFormatter renders a call timestamp relative to now ("10 min ago").
type RelativeTimeFormatter interface {
	Format(ts, now time.Time) string
}

// VideoTechDetector reports whether a phone account belongs to the
// app-based video calling technology rather than carrier video.
type VideoTechDetector interface {
	IsDuoAccount(account PhoneAccount) bool
}

// ComponentDetector recognizes video accounts by component name.
type ComponentDetector []string

func (d ComponentDetector) IsDuoAccount(account PhoneAccount) bool {
	for _, component := range d {
		if component != "" && component == account.ComponentName {
			return true
		}
	}
	return false
}

// Formatter builds display text. All methods are pure.
type Formatter struct {
	res   Resources
	times RelativeTimeFormatter
	video VideoTechDetector
}

// NewFormatter creates a Formatter. A nil detector treats every video call
// as carrier video.
func NewFormatter(res Resources, times RelativeTimeFormatter, video VideoTechDetector) *Formatter {
	if video == nil {
		video = ComponentDetector(nil)
	}
	return &Formatter{res: res, times: times, video: video}
}

// BuildPrimaryText returns the first non-empty of: presentation placeholder,
// voicemail tag, identity name, formatted number, "Unknown".
func (f *Formatter) BuildPrimaryText(identity consolidate.Identity, meta CallMeta) string {
	if placeholder := f.presentationText(meta.Presentation); placeholder != "" {
		return placeholder
	}
	if meta.IsVoicemail() && meta.VoicemailTag != "" {
		return meta.VoicemailTag
	}
	if name := identity.Name(); name != "" {
		return name
	}
	if meta.FormattedNumber != "" {
		return meta.FormattedNumber
	}
	return f.res.Text(KeyUnknown)
}

// BuildEntryPrimaryText is BuildPrimaryText with the coalesced call count
// appended when the entry stands for more than one call.
func (f *Formatter) BuildEntryPrimaryText(identity consolidate.Identity, meta CallMeta) string {
	text := f.BuildPrimaryText(identity, meta)
	if meta.CoalescedCount > 1 {
		text += " (" + strconv.Itoa(meta.CoalescedCount) + ")"
	}
	return text
}

// BuildSecondaryText joins blocked, spam, the number label component and the
// relative call time, skipping empty parts.
func (f *Formatter) BuildSecondaryText(identity consolidate.Identity, meta CallMeta, now time.Time) string {
	parts := f.leadingComponents(identity, meta)
	if f.times != nil && !meta.Timestamp.IsZero() {
		parts = append(parts, f.times.Format(meta.Timestamp, now))
	}
	return joinNonEmpty(parts)
}

// BuildSecondaryTextForBottomSheet ends with the formatted number instead of
// a time, and only when the primary text is a name rather than the number.
func (f *Formatter) BuildSecondaryTextForBottomSheet(identity consolidate.Identity, meta CallMeta) string {
	parts := f.leadingComponents(identity, meta)
	if f.presentationText(meta.Presentation) == "" && identity.Name() != "" && meta.FormattedNumber != "" {
		parts = append(parts, meta.FormattedNumber)
	}
	return joinNonEmpty(parts)
}

func (f *Formatter) leadingComponents(identity consolidate.Identity, meta CallMeta) []string {
	parts := make([]string, 0, 4)
	if identity.IsBlocked() {
		parts = append(parts, f.res.Text(KeyBlocked))
	}
	if identity.IsSpam() {
		parts = append(parts, f.res.Text(KeySpam))
	}
	parts = append(parts, f.numberTypeComponent(identity, meta))
	return parts
}

// numberTypeComponent is "<label>[, <video>]"; without a label the location
// takes its place, except for spam numbers whose location is never shown.
func (f *Formatter) numberTypeComponent(identity consolidate.Identity, meta CallMeta) string {
	var b strings.Builder
	if label := identity.Label(); label != "" {
		b.WriteString(label)
	} else if !identity.IsSpam() {
		b.WriteString(location(identity, meta))
	}

	if meta.IsVideo() {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		if f.video.IsDuoAccount(meta.PhoneAccount) {
			b.WriteString(f.res.Text(KeyDuoVideo))
		} else {
			b.WriteString(f.res.Text(KeyCarrierVideo))
		}
	}
	return b.String()
}

// location prefers the geolocation resolved with the identity over the one
// stored with the call.
func location(identity consolidate.Identity, meta CallMeta) string {
	if loc := identity.Geolocation(); loc != "" {
		return loc
	}
	return meta.GeocodedLocation
}

func (f *Formatter) presentationText(p Presentation) string {
	switch p {
	case PresentationRestricted:
		return f.res.Text(KeyPrivateNumber)
	case PresentationUnknown:
		return f.res.Text(KeyUnknown)
	case PresentationPayphone:
		return f.res.Text(KeyPayphone)
	default:
		return ""
	}
}

func joinNonEmpty(parts []string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, separator)
}
