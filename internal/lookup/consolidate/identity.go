package consolidate

import "fmt"

// NameSource is the winning source of a consolidated identity. The set of
// variants is closed: NoName, LocalName, RemoteName and CallerIDName.
type NameSource interface {
	nameSource()
}

type (
	// NoName means none of the sources supplied a name.
	NoName struct{}
	// LocalName wraps a winning local contacts record.
	LocalName struct{ Record Record }
	// RemoteName wraps a winning remote directory record.
	RemoteName struct{ Record Record }
	// CallerIDName wraps a winning caller-ID record.
	CallerIDName struct{ Record Record }
)

func (NoName) nameSource()       {}
func (LocalName) nameSource()    {}
func (RemoteName) nameSource()   {}
func (CallerIDName) nameSource() {}

// Identity is the single view of a number chosen across sources. Every field
// shown to the user is read from the winning record alone.
type Identity struct {
	winner     NameSource
	candidates Candidates
}

// Consolidate picks the first source in priority order with a non-empty name.
func Consolidate(c Candidates) Identity {
	return Identity{winner: selectWinner(c), candidates: c}
}

func selectWinner(c Candidates) NameSource {
	for _, src := range Priority {
		rec := c.Get(src)
		if rec == nil || rec.Name == "" {
			continue
		}
		switch src {
		case SourceLocalContact:
			return LocalName{Record: *rec}
		case SourceRemoteContact:
			return RemoteName{Record: *rec}
		case SourceCallerID:
			return CallerIDName{Record: *rec}
		}
	}
	return NoName{}
}

// Winner returns the winning variant.
func (i Identity) Winner() NameSource {
	if i.winner == nil {
		return NoName{}
	}
	return i.winner
}

// Candidates returns the inputs the identity was built from.
func (i Identity) Candidates() Candidates {
	return i.candidates
}

// NameSource returns the tag of the winning source.
func (i Identity) NameSource() Source {
	switch i.Winner().(type) {
	case NoName:
		return SourceNone
	case LocalName:
		return SourceLocalContact
	case RemoteName:
		return SourceRemoteContact
	case CallerIDName:
		return SourceCallerID
	default:
		panic(unsupported(i.winner))
	}
}

// winningRecord returns the record of the winning source, or false for NoName.
func (i Identity) winningRecord() (Record, bool) {
	switch w := i.Winner().(type) {
	case NoName:
		return Record{}, false
	case LocalName:
		return w.Record, true
	case RemoteName:
		return w.Record, true
	case CallerIDName:
		return w.Record, true
	default:
		panic(unsupported(i.winner))
	}
}

// HasName reports whether any source supplied a name.
func (i Identity) HasName() bool {
	_, ok := i.winningRecord()
	return ok
}

func (i Identity) Name() string {
	rec, _ := i.winningRecord()
	return rec.Name
}

func (i Identity) PhotoURI() string {
	rec, _ := i.winningRecord()
	return rec.PhotoURI
}

func (i Identity) PhotoThumbnailURI() string {
	rec, _ := i.winningRecord()
	return rec.PhotoThumbnailURI
}

func (i Identity) PhotoID() int64 {
	rec, _ := i.winningRecord()
	return rec.PhotoID
}

func (i Identity) ContactID() string {
	rec, _ := i.winningRecord()
	return rec.ContactID
}

func (i Identity) LookupKey() string {
	rec, _ := i.winningRecord()
	return rec.LookupKey
}

// Label returns the winning record's number type label ("Mobile", "Work").
func (i Identity) Label() string {
	rec, _ := i.winningRecord()
	return rec.Label
}

// NumberLabel returns blockedLabel when the number is on the blocklist,
// whatever source won, and the winning record's label otherwise.
func (i Identity) NumberLabel(blockedLabel string) string {
	if i.candidates.Blocked {
		return blockedLabel
	}
	return i.Label()
}

// IsBusiness reports whether caller-ID tags the number as a nearby
// business. This does not depend on which source won the name.
func (i Identity) IsBusiness() bool {
	rec := i.candidates.CallerID
	return rec != nil && rec.InfoType == InfoTypeNearbyBusiness
}

// CanReportAsInvalidNumber is true only when caller-ID won the name and its
// record is reportable. Contacts-sourced names can never be reported.
func (i Identity) CanReportAsInvalidNumber() bool {
	switch w := i.Winner().(type) {
	case NoName, LocalName, RemoteName:
		return false
	case CallerIDName:
		return w.Record.ReportableAsInvalid()
	default:
		panic(unsupported(i.winner))
	}
}

// IsPhotoVisible reports whether the winning photo may be shown. Caller-ID
// photos are only shown for businesses.
func (i Identity) IsPhotoVisible() bool {
	switch w := i.Winner().(type) {
	case NoName:
		return false
	case LocalName:
		return w.Record.PhotoURI != "" || w.Record.PhotoThumbnailURI != ""
	case RemoteName:
		return w.Record.PhotoURI != "" || w.Record.PhotoThumbnailURI != ""
	case CallerIDName:
		business := w.Record.InfoType == InfoTypeBusiness || w.Record.InfoType == InfoTypeNearbyBusiness
		return business && w.Record.PhotoURI != ""
	default:
		panic(unsupported(i.winner))
	}
}

// IsDefaultContactIncomplete reports whether the local contact won but lacks
// a photo that the remote directory has, which makes the number worth
// looking up again once the local store syncs.
func (i Identity) IsDefaultContactIncomplete() bool {
	local, ok := i.Winner().(LocalName)
	if !ok {
		return false
	}
	remote := i.candidates.Remote
	return local.Record.PhotoURI == "" && remote != nil && remote.PhotoURI != ""
}

func (i Identity) IsBlocked() bool {
	return i.candidates.Blocked
}

func (i Identity) IsSpam() bool {
	return i.candidates.Spam.IsSpam
}

func (i Identity) Spam() SpamInfo {
	return i.candidates.Spam
}

// Geolocation returns the geocoded location attached during lookup.
func (i Identity) Geolocation() string {
	return i.candidates.Geolocation
}

func unsupported(w NameSource) string {
	return fmt.Sprintf("consolidate: unsupported name source %T", w)
}
