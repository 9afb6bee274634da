// Package service records calls and renders the call log.
package service

import (
	"context"
	"strings"
	"time"

	"callerid_backend/internal/calllog/coalesce"
	"callerid_backend/internal/calllog/display"
	"callerid_backend/internal/calllog/repository"
	"callerid_backend/internal/calllog/transport"
	"callerid_backend/internal/events"
	"callerid_backend/internal/lookup/consolidate"
	"callerid_backend/platform/apperr"
	"callerid_backend/platform/i18n"
	"callerid_backend/platform/logger"
	"callerid_backend/platform/phone"
	"callerid_backend/platform/reltime"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 100
	storedGeoLang    = "en"
)

// Service handles call log business logic.
type Service struct {
	repo          repository.Repository
	bus           events.Bus
	strings       *i18n.Bundle
	video         display.VideoTechDetector
	defaultRegion string
	log           *logger.Logger
	now           func() time.Time
}

// New creates a new call log service. video recognizes app-based video
// accounts; nil treats all video calls as carrier video.
func New(repo repository.Repository, bus events.Bus, strings *i18n.Bundle, video display.VideoTechDetector, defaultRegion string, log *logger.Logger) *Service {
	return &Service{
		repo:          repo,
		bus:           bus,
		strings:       strings,
		video:         video,
		defaultRegion: defaultRegion,
		log:           log,
		now:           time.Now,
	}
}

// Record stores a call and announces it so the caller gets looked up.
// A call without a number is stored with unknown presentation.
func (s *Service) Record(ctx context.Context, req transport.RecordCallRequest) (transport.CallResponse, error) {
	presentation := display.ParsePresentation(req.Presentation)
	raw := strings.TrimSpace(req.Number)
	if raw == "" && presentation == display.PresentationAllowed {
		presentation = display.PresentationUnknown
	}
	if presentation != display.PresentationAllowed {
		raw = ""
	}

	callType := display.ParseCallType(req.CallType)
	if callType == 0 {
		return transport.CallResponse{}, apperr.Validation("unknown call type").WithOp("calllog.Record")
	}

	country := strings.ToUpper(req.CountryISO)
	if country == "" {
		country = s.defaultRegion
	}
	number := phone.Parse(raw, country)

	occurredAt := s.now().UTC()
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	call := repository.Call{
		ID:               uuid.New(),
		RawNumber:        raw,
		CountryISO:       country,
		NormalizedNumber: phone.Normalize(number),
		Presentation:     presentation.String(),
		CallType:         callType.String(),
		Features:         req.Features,
		VoicemailTag:     req.VoicemailTag,
		GeocodedLocation: phone.Geolocation(number, storedGeoLang),
		Read:             req.Read,
		OccurredAt:       occurredAt,
	}
	if req.Account != nil {
		call.AccountComponent = req.Account.ComponentName
		call.AccountID = req.Account.ID
		call.AccountLabel = req.Account.Label
	}

	if err := s.repo.InsertCall(ctx, call); err != nil {
		s.log.DatabaseError("insert call", err)
		return transport.CallResponse{}, apperr.Internal("failed to record call").WithOp("calllog.Record").WithCause(err)
	}

	if s.bus != nil && call.NormalizedNumber != "" {
		s.bus.Publish(ctx, events.CallRecorded{
			BaseEvent:        events.NewBaseEvent(),
			CallID:           call.ID,
			RawNumber:        call.RawNumber,
			CountryISO:       call.CountryISO,
			NormalizedNumber: call.NormalizedNumber,
		})
	}
	return s.toCallResponse(call), nil
}

// List returns the call log coalesced into entries and rendered in the
// language of acceptLanguage.
func (s *Service) List(ctx context.Context, req transport.ListCallsRequest, acceptLanguage string) (transport.ListCallsResponse, error) {
	loc, err := location(req.Timezone)
	if err != nil {
		return transport.ListCallsResponse{}, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	calls, err := s.repo.ListCalls(ctx, limit)
	if err != nil {
		s.log.DatabaseError("list calls", err)
		return transport.ListCallsResponse{}, apperr.Internal("failed to list calls").WithOp("calllog.List").WithCause(err)
	}
	history, err := s.history(ctx, calls)
	if err != nil {
		return transport.ListCallsResponse{}, err
	}

	localizer := s.strings.Localizer(acceptLanguage)
	formatter := display.NewFormatter(localizer, reltime.New(localizer, loc), s.video)
	now := s.now()

	rows := make([]coalesce.Row, 0, len(calls))
	byID := make(map[string]repository.Call, len(calls))
	for _, c := range calls {
		rows = append(rows, coalesce.Row{ID: c.ID.String(), Meta: s.meta(c), Read: c.Read})
		byID[c.ID.String()] = c
	}

	resp := transport.ListCallsResponse{Entries: []transport.EntryResponse{}}
	for _, g := range coalesce.Coalesce(rows, now, loc) {
		newest := byID[g.Newest.ID]
		identity := s.identity(history, newest, g.Newest.Meta.Number, localizer.Language())

		entry := transport.EntryResponse{
			ID:            newest.ID,
			Count:         g.Count(),
			PrimaryText:   formatter.BuildEntryPrimaryText(identity, g.Newest.Meta),
			SecondaryText: formatter.BuildSecondaryText(identity, g.Newest.Meta, now),
			Unread:        g.Unread,
			Bucket:        bucketName(coalesce.BucketFor(newest.OccurredAt, now, loc)),
			Number:        newest.RawNumber,
			DisplayNumber: g.Newest.Meta.FormattedNumber,
			IsBlocked:     identity.IsBlocked(),
			IsSpam:        identity.IsSpam(),
			IsBusiness:    identity.IsBusiness(),
			OccurredAt:    newest.OccurredAt,
		}
		if identity.IsPhotoVisible() {
			entry.PhotoURI = identity.PhotoThumbnailURI()
			if entry.PhotoURI == "" {
				entry.PhotoURI = identity.PhotoURI()
			}
		}
		for _, id := range g.IDs {
			entry.CallIDs = append(entry.CallIDs, byID[id].ID)
		}
		for _, t := range g.CallTypes {
			entry.CallTypes = append(entry.CallTypes, t.String())
		}
		resp.Entries = append(resp.Entries, entry)
	}
	return resp, nil
}

// Sheet returns the bottom-sheet text of one call.
func (s *Service) Sheet(ctx context.Context, id uuid.UUID, req transport.SheetRequest, acceptLanguage string) (transport.SheetResponse, error) {
	loc, err := location(req.Timezone)
	if err != nil {
		return transport.SheetResponse{}, err
	}
	call, err := s.repo.GetCall(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return transport.SheetResponse{}, err
		}
		s.log.DatabaseError("get call", err)
		return transport.SheetResponse{}, apperr.Internal("failed to load call").WithOp("calllog.Sheet").WithCause(err)
	}
	history, err := s.history(ctx, []repository.Call{call})
	if err != nil {
		return transport.SheetResponse{}, err
	}

	localizer := s.strings.Localizer(acceptLanguage)
	formatter := display.NewFormatter(localizer, reltime.New(localizer, loc), s.video)
	meta := s.meta(call)
	identity := s.identity(history, call, meta.Number, localizer.Language())

	return transport.SheetResponse{
		ID:                 call.ID,
		PrimaryText:        formatter.BuildPrimaryText(identity, meta),
		SecondaryText:      formatter.BuildSecondaryTextForBottomSheet(identity, meta),
		CanReportAsInvalid: identity.CanReportAsInvalidNumber(),
	}, nil
}

// MarkRead flags calls as read.
func (s *Service) MarkRead(ctx context.Context, req transport.MarkReadRequest) (transport.MarkReadResponse, error) {
	updated, err := s.repo.MarkRead(ctx, req.IDs)
	if err != nil {
		s.log.DatabaseError("mark calls read", err)
		return transport.MarkReadResponse{}, apperr.Internal("failed to update calls").WithOp("calllog.MarkRead").WithCause(err)
	}
	return transport.MarkReadResponse{Updated: updated}, nil
}

func (s *Service) history(ctx context.Context, calls []repository.Call) (map[string]consolidate.Candidates, error) {
	seen := make(map[string]struct{}, len(calls))
	numbers := make([]string, 0, len(calls))
	for _, c := range calls {
		if c.NormalizedNumber == "" {
			continue
		}
		if _, ok := seen[c.NormalizedNumber]; ok {
			continue
		}
		seen[c.NormalizedNumber] = struct{}{}
		numbers = append(numbers, c.NormalizedNumber)
	}

	history, err := s.repo.GetHistory(ctx, numbers)
	if err != nil {
		s.log.DatabaseError("get lookup history", err)
		return nil, apperr.Internal("failed to load caller identities").WithOp("calllog.history").WithCause(err)
	}
	return history, nil
}

// identity consolidates the stored candidates of the call's number and
// geocodes it in the reader's language.
func (s *Service) identity(history map[string]consolidate.Candidates, c repository.Call, number phone.CanonicalNumber, language string) consolidate.Identity {
	candidates := history[c.NormalizedNumber]
	candidates.Geolocation = phone.Geolocation(number, language)
	return consolidate.Consolidate(candidates)
}

func (s *Service) meta(c repository.Call) display.CallMeta {
	number := phone.Parse(c.RawNumber, c.CountryISO)
	return display.CallMeta{
		Number:          number,
		FormattedNumber: phone.FormatForDisplay(number, s.defaultRegion),
		Presentation:    display.ParsePresentation(c.Presentation),
		CallType:        display.ParseCallType(c.CallType),
		Features:        display.Feature(c.Features),
		PhoneAccount: display.PhoneAccount{
			ComponentName: c.AccountComponent,
			ID:            c.AccountID,
			Label:         c.AccountLabel,
		},
		VoicemailTag:     c.VoicemailTag,
		GeocodedLocation: c.GeocodedLocation,
		Timestamp:        c.OccurredAt,
	}
}

func (s *Service) toCallResponse(c repository.Call) transport.CallResponse {
	number := phone.Parse(c.RawNumber, c.CountryISO)
	return transport.CallResponse{
		ID:               c.ID,
		Number:           c.RawNumber,
		NormalizedNumber: c.NormalizedNumber,
		DisplayNumber:    phone.FormatForDisplay(number, s.defaultRegion),
		Presentation:     c.Presentation,
		CallType:         c.CallType,
		GeocodedLocation: c.GeocodedLocation,
		Read:             c.Read,
		OccurredAt:       c.OccurredAt,
	}
}

func location(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, apperr.Validation("unknown time zone").WithOp("calllog.location")
	}
	return loc, nil
}

func bucketName(b coalesce.TimeBucket) string {
	switch b {
	case coalesce.BucketToday:
		return "today"
	case coalesce.BucketYesterday:
		return "yesterday"
	default:
		return "older"
	}
}
