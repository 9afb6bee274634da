// Package display builds the primary and secondary text shown for a call
// log entry from a consolidated identity and the call's metadata.
package display

import (
	"time"

	"callerid_backend/platform/phone"
)

// Presentation is how the network presented the caller's number.
type Presentation int

const (
	PresentationAllowed Presentation = iota
	PresentationRestricted
	PresentationUnknown
	PresentationPayphone
)

// ParsePresentation maps the stored name back to a Presentation.
func ParsePresentation(value string) Presentation {
	switch value {
	case "restricted":
		return PresentationRestricted
	case "unknown":
		return PresentationUnknown
	case "payphone":
		return PresentationPayphone
	default:
		return PresentationAllowed
	}
}

func (p Presentation) String() string {
	switch p {
	case PresentationRestricted:
		return "restricted"
	case PresentationUnknown:
		return "unknown"
	case PresentationPayphone:
		return "payphone"
	default:
		return "allowed"
	}
}

// CallType mirrors the call log's call type column.
type CallType int

const (
	CallTypeIncoming CallType = iota + 1
	CallTypeOutgoing
	CallTypeMissed
	CallTypeVoicemail
	CallTypeRejected
	CallTypeBlocked
	CallTypeAnsweredExternally
)

var callTypeNames = map[CallType]string{
	CallTypeIncoming:           "incoming",
	CallTypeOutgoing:           "outgoing",
	CallTypeMissed:             "missed",
	CallTypeVoicemail:          "voicemail",
	CallTypeRejected:           "rejected",
	CallTypeBlocked:            "blocked",
	CallTypeAnsweredExternally: "answered_externally",
}

func (t CallType) String() string {
	if name, ok := callTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseCallType maps the stored name back to a CallType; unknown names give 0.
func ParseCallType(value string) CallType {
	for t, name := range callTypeNames {
		if name == value {
			return t
		}
	}
	return 0
}

// Feature is the call log features bitmask.
type Feature uint32

const (
	FeatureVideo            Feature = 1 << 0
	FeaturePulledExternally Feature = 1 << 1
	FeatureHDCall           Feature = 1 << 2
	FeatureWifi             Feature = 1 << 3
	FeatureAssistedDialing  Feature = 1 << 4
	FeatureRTT              Feature = 1 << 5
)

// Has reports whether all bits of flag are set.
func (f Feature) Has(flag Feature) bool {
	return f&flag == flag
}

// PhoneAccount identifies the account that placed or received the call.
type PhoneAccount struct {
	ComponentName string `json:"componentName,omitempty"`
	ID            string `json:"id,omitempty"`
	Label         string `json:"label,omitempty"`
}

// CallMeta is the per-call information the formatter needs besides the
// caller's identity.
type CallMeta struct {
	Number           phone.CanonicalNumber
	FormattedNumber  string
	Presentation     Presentation
	CallType         CallType
	Features         Feature
	PhoneAccount     PhoneAccount
	VoicemailTag     string
	GeocodedLocation string
	Timestamp        time.Time
	CoalescedCount   int
}

// IsVideo reports whether the call carried video.
func (m CallMeta) IsVideo() bool {
	return m.Features.Has(FeatureVideo)
}

// IsVoicemail reports whether the entry is a voicemail.
func (m CallMeta) IsVoicemail() bool {
	return m.CallType == CallTypeVoicemail
}
