// Package consolidate merges the per-source identity records found for one
// phone number into the single identity shown to the user.
package consolidate

// Source identifies where an identity record came from. The declaration
// order is the name-resolution priority.
type Source int

const (
	// SourceNone means no source supplied a name.
	SourceNone Source = iota
	// SourceLocalContact is the device/user's own contacts store.
	SourceLocalContact
	// SourceRemoteContact is a remote or corporate directory.
	SourceRemoteContact
	// SourceCallerID is the network caller-ID service.
	SourceCallerID
)

// Priority lists the sources in name-resolution order.
var Priority = []Source{SourceLocalContact, SourceRemoteContact, SourceCallerID}

func (s Source) String() string {
	switch s {
	case SourceLocalContact:
		return "local_contact"
	case SourceRemoteContact:
		return "remote_contact"
	case SourceCallerID:
		return "caller_id"
	default:
		return "none"
	}
}

// ParseSource is the inverse of Source.String.
func ParseSource(value string) Source {
	switch value {
	case "local_contact":
		return SourceLocalContact
	case "remote_contact":
		return SourceRemoteContact
	case "caller_id":
		return SourceCallerID
	default:
		return SourceNone
	}
}

// MarshalText stores sources by name in cached and persisted candidates.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Source) UnmarshalText(text []byte) error {
	*s = ParseSource(string(text))
	return nil
}

// InfoType classifies a caller-ID result.
type InfoType int

const (
	InfoTypeUnknown InfoType = iota
	InfoTypeContact
	InfoTypeBusiness
	InfoTypeNearbyBusiness
)

func (t InfoType) String() string {
	switch t {
	case InfoTypeContact:
		return "contact"
	case InfoTypeBusiness:
		return "business"
	case InfoTypeNearbyBusiness:
		return "nearby_business"
	default:
		return "unknown"
	}
}

// ParseInfoType is the inverse of InfoType.String.
func ParseInfoType(value string) InfoType {
	switch value {
	case "contact":
		return InfoTypeContact
	case "business":
		return InfoTypeBusiness
	case "nearby_business":
		return InfoTypeNearbyBusiness
	default:
		return InfoTypeUnknown
	}
}

func (t InfoType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *InfoType) UnmarshalText(text []byte) error {
	*t = ParseInfoType(string(text))
	return nil
}

// Record is one candidate identity for a number from a single source.
// Records are values and are never modified after a lookup returns them.
type Record struct {
	Source            Source   `json:"source"`
	Name              string   `json:"name,omitempty"`
	PhotoURI          string   `json:"photoUri,omitempty"`
	PhotoThumbnailURI string   `json:"photoThumbnailUri,omitempty"`
	PhotoID           int64    `json:"photoId,omitempty"`
	Label             string   `json:"label,omitempty"`
	ContactID         string   `json:"contactId,omitempty"`
	LookupKey         string   `json:"lookupKey,omitempty"`
	DirectoryID       string   `json:"directoryId,omitempty"`
	InfoType          InfoType `json:"infoType,omitempty"`
	PersonID          string   `json:"personId,omitempty"`
}

// ReportableAsInvalid reports whether the user may flag this record's number
// as wrongly identified. Only caller-ID records can qualify.
func (r Record) ReportableAsInvalid() bool {
	return r.Source == SourceCallerID && r.InfoType != InfoTypeUnknown && r.PersonID != ""
}

// SpamInfo carries spam reports for a number.
type SpamInfo struct {
	IsSpam      bool `json:"isSpam"`
	ReportCount int  `json:"reportCount,omitempty"`
}

// Candidates is everything known about one number, at most one record per
// source. A nil record means that source had no data.
type Candidates struct {
	Local       *Record  `json:"local,omitempty"`
	Remote      *Record  `json:"remote,omitempty"`
	CallerID    *Record  `json:"callerId,omitempty"`
	Blocked     bool     `json:"blocked"`
	Spam        SpamInfo `json:"spam"`
	Geolocation string   `json:"geolocation,omitempty"`
}

// Get returns the record for s, or nil.
func (c Candidates) Get(s Source) *Record {
	switch s {
	case SourceLocalContact:
		return c.Local
	case SourceRemoteContact:
		return c.Remote
	case SourceCallerID:
		return c.CallerID
	default:
		return nil
	}
}

// Set stores r under its own source. Records with an unknown source are ignored.
func (c *Candidates) Set(r Record) {
	rec := r
	switch r.Source {
	case SourceLocalContact:
		c.Local = &rec
	case SourceRemoteContact:
		c.Remote = &rec
	case SourceCallerID:
		c.CallerID = &rec
	}
}

// CandidatesFromRecords keeps the first record seen for each source.
func CandidatesFromRecords(records []Record) Candidates {
	var c Candidates
	for _, r := range records {
		if c.Get(r.Source) != nil {
			continue
		}
		c.Set(r)
	}
	return c
}
