package display

import (
	"strings"
	"testing"
	"time"

	"callerid_backend/internal/lookup/consolidate"
)

type testResources map[string]string

func (r testResources) Text(key string) string { return r[key] }

var englishTexts = testResources{
	KeyBlocked:       "Blocked",
	KeySpam:          "Spam",
	KeyUnknown:       "Unknown",
	KeyPrivateNumber: "Private number",
	KeyPayphone:      "Payphone",
	KeyDuoVideo:      "Duo video",
	KeyCarrierVideo:  "Carrier video",
}

type fixedTimes struct{}

func (fixedTimes) Format(ts, now time.Time) string {
	if now.Sub(ts) < time.Minute {
		return "Now"
	}
	return "Earlier"
}

const duoComponent = "com.google.android.apps.tachyon/.TachyonConnectionService"

func newTestFormatter() *Formatter {
	return NewFormatter(englishTexts, fixedTimes{}, ComponentDetector{duoComponent})
}

func named(name, label string) consolidate.Identity {
	return consolidate.Consolidate(consolidate.Candidates{
		Local: &consolidate.Record{Source: consolidate.SourceLocalContact, Name: name, Label: label},
	})
}

func TestBuildPrimaryTextPriority(t *testing.T) {
	f := newTestFormatter()
	alice := named("Alice", "Mobile")

	cases := []struct {
		desc     string
		identity consolidate.Identity
		meta     CallMeta
		want     string
	}{
		{"restricted beats everything", alice, CallMeta{Presentation: PresentationRestricted, FormattedNumber: "(650) 253-0000"}, "Private number"},
		{"payphone placeholder", alice, CallMeta{Presentation: PresentationPayphone}, "Payphone"},
		{"voicemail tag", alice, CallMeta{CallType: CallTypeVoicemail, VoicemailTag: "Work voicemail"}, "Work voicemail"},
		{"tag ignored for non-voicemail", alice, CallMeta{CallType: CallTypeIncoming, VoicemailTag: "Work voicemail"}, "Alice"},
		{"name", alice, CallMeta{FormattedNumber: "(650) 253-0000"}, "Alice"},
		{"number", consolidate.Identity{}, CallMeta{FormattedNumber: "(650) 253-0000"}, "(650) 253-0000"},
		{"unknown fallback", consolidate.Identity{}, CallMeta{}, "Unknown"},
	}

	for _, tc := range cases {
		if got := f.BuildPrimaryText(tc.identity, tc.meta); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.desc, tc.want, got)
		}
	}
}

func TestBuildEntryPrimaryTextAppendsCount(t *testing.T) {
	f := newTestFormatter()
	got := f.BuildEntryPrimaryText(named("Alice", ""), CallMeta{CoalescedCount: 3})
	if got != "Alice (3)" {
		t.Fatalf("expected Alice (3), got %q", got)
	}
	got = f.BuildEntryPrimaryText(named("Alice", ""), CallMeta{CoalescedCount: 1})
	if got != "Alice" {
		t.Fatalf("expected Alice, got %q", got)
	}
}

func TestBuildSecondaryTextOrdering(t *testing.T) {
	f := newTestFormatter()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	identity := consolidate.Consolidate(consolidate.Candidates{
		Local:   &consolidate.Record{Source: consolidate.SourceLocalContact, Name: "Alice", Label: "Mobile"},
		Blocked: true,
		Spam:    consolidate.SpamInfo{IsSpam: true},
	})
	meta := CallMeta{Features: FeatureVideo, Timestamp: now}

	got := f.BuildSecondaryText(identity, meta, now)
	want := "Blocked • Spam • Mobile, Carrier video • Now"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBuildSecondaryTextSkipsEmptyComponents(t *testing.T) {
	f := newTestFormatter()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	got := f.BuildSecondaryText(consolidate.Identity{}, CallMeta{}, now)
	if got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}

	got = f.BuildSecondaryText(consolidate.Identity{}, CallMeta{Timestamp: now.Add(-time.Hour)}, now)
	if got != "Earlier" {
		t.Fatalf("expected only the time, got %q", got)
	}

	spamOnly := consolidate.Consolidate(consolidate.Candidates{Spam: consolidate.SpamInfo{IsSpam: true}})
	got = f.BuildSecondaryText(spamOnly, CallMeta{}, now)
	if got != "Spam" {
		t.Fatalf("expected Spam, got %q", got)
	}
	if strings.Contains(got, "•") {
		t.Fatal("single component must not carry a separator")
	}
}

func TestBuildSecondaryTextLocation(t *testing.T) {
	f := newTestFormatter()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	withGeo := consolidate.Consolidate(consolidate.Candidates{Geolocation: "Mountain View, CA"})
	meta := CallMeta{GeocodedLocation: "California", Timestamp: now}

	if got := f.BuildSecondaryText(withGeo, meta, now); got != "Mountain View, CA • Now" {
		t.Fatalf("identity geolocation should win, got %q", got)
	}
	if got := f.BuildSecondaryText(consolidate.Identity{}, meta, now); got != "California • Now" {
		t.Fatalf("stored location should be the fallback, got %q", got)
	}

	spam := consolidate.Consolidate(consolidate.Candidates{
		Geolocation: "Mountain View, CA",
		Spam:        consolidate.SpamInfo{IsSpam: true},
	})
	if got := f.BuildSecondaryText(spam, meta, now); got != "Spam • Now" {
		t.Fatalf("spam numbers must not show a location, got %q", got)
	}
}

func TestBuildSecondaryTextVideoTechnology(t *testing.T) {
	f := newTestFormatter()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	identity := named("Alice", "Work")

	duo := CallMeta{Features: FeatureVideo | FeatureHDCall, PhoneAccount: PhoneAccount{ComponentName: duoComponent}}
	if got := f.BuildSecondaryText(identity, duo, now); got != "Work, Duo video" {
		t.Fatalf("unexpected duo text %q", got)
	}

	audio := CallMeta{Features: FeatureHDCall, PhoneAccount: PhoneAccount{ComponentName: duoComponent}}
	if got := f.BuildSecondaryText(identity, audio, now); got != "Work" {
		t.Fatalf("audio calls must not carry a video label, got %q", got)
	}

	spamVideo := consolidate.Consolidate(consolidate.Candidates{Spam: consolidate.SpamInfo{IsSpam: true}})
	if got := f.BuildSecondaryText(spamVideo, CallMeta{Features: FeatureVideo}, now); got != "Spam • Carrier video" {
		t.Fatalf("unexpected spam video text %q", got)
	}
}

func TestBuildSecondaryTextForBottomSheet(t *testing.T) {
	f := newTestFormatter()
	meta := CallMeta{FormattedNumber: "(650) 253-0000", Timestamp: time.Now()}

	if got := f.BuildSecondaryTextForBottomSheet(named("Alice", "Mobile"), meta); got != "Mobile • (650) 253-0000" {
		t.Fatalf("unexpected bottom sheet text %q", got)
	}
	if got := f.BuildSecondaryTextForBottomSheet(consolidate.Identity{}, meta); got != "" {
		t.Fatalf("number must not repeat when it is the primary text, got %q", got)
	}

	restricted := meta
	restricted.Presentation = PresentationRestricted
	if got := f.BuildSecondaryTextForBottomSheet(named("Alice", ""), restricted); got != "" {
		t.Fatalf("restricted calls must not reveal the number, got %q", got)
	}
}

func TestFormattingIsPure(t *testing.T) {
	f := newTestFormatter()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	identity := consolidate.Consolidate(consolidate.Candidates{
		CallerID: &consolidate.Record{Source: consolidate.SourceCallerID, Name: "Pizza", InfoType: consolidate.InfoTypeNearbyBusiness},
		Spam:     consolidate.SpamInfo{IsSpam: true},
	})
	meta := CallMeta{Features: FeatureVideo, Timestamp: now.Add(-2 * time.Hour), FormattedNumber: "555"}

	if f.BuildPrimaryText(identity, meta) != f.BuildPrimaryText(identity, meta) {
		t.Fatal("primary text should be deterministic")
	}
	if f.BuildSecondaryText(identity, meta, now) != f.BuildSecondaryText(identity, meta, now) {
		t.Fatal("secondary text should be deterministic")
	}
}
