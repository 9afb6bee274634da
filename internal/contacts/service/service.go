// Package service implements contact creation and dialpad search.
package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"callerid_backend/internal/contacts/repository"
	"callerid_backend/internal/contacts/transport"
	"callerid_backend/platform/apperr"
	"callerid_backend/platform/logger"
	"callerid_backend/platform/phone"
	"callerid_backend/platform/sanitize"
	"callerid_backend/platform/smartdial"

	"github.com/google/uuid"
)

const (
	defaultSearchLimit = 20
	searchScanLimit    = 2000
)

// How a search hit matched.
const (
	MatchedByName   = "name"
	MatchedByT9     = "name_t9"
	MatchedByNumber = "number"
)

// Service handles contact business logic.
type Service struct {
	repo          repository.Repository
	log           *logger.Logger
	defaultRegion string
	now           func() time.Time
}

// New creates a new contacts service.
func New(repo repository.Repository, defaultRegion string, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log, defaultRegion: defaultRegion, now: time.Now}
}

// Create stores a contact. Each number is normalized in its own country, or
// in the default region when none is given.
func (s *Service) Create(ctx context.Context, req transport.CreateContactRequest) (transport.ContactResponse, error) {
	contact := repository.Contact{
		ID:                uuid.New(),
		DisplayName:       sanitize.Name(req.DisplayName),
		LookupKey:         req.LookupKey,
		PhotoURI:          req.PhotoURI,
		PhotoThumbnailURI: req.PhotoThumbnailURI,
		PhotoID:           req.PhotoID,
		DirectoryID:       req.DirectoryID,
		CreatedAt:         s.now().UTC(),
	}
	if contact.DisplayName == "" {
		return transport.ContactResponse{}, apperr.Validation("display name is required").WithOp("contacts.Create")
	}

	for _, n := range req.Numbers {
		region := strings.ToUpper(n.CountryISO)
		if region == "" {
			region = s.defaultRegion
		}
		parsed := phone.Parse(n.Number, region)
		normalized := phone.Normalize(parsed)
		if normalized == "" {
			return transport.ContactResponse{}, apperr.Validation("number has no dialable digits").
				WithOp("contacts.Create").
				WithDetails(map[string]string{"number": n.Number})
		}
		contact.Numbers = append(contact.Numbers, repository.Number{
			ID:               uuid.New(),
			RawNumber:        n.Number,
			CountryISO:       region,
			NormalizedNumber: normalized,
			MinMatch:         phone.MinMatch(parsed),
			Label:            n.Label,
		})
	}

	if err := s.repo.Create(ctx, contact); err != nil {
		s.log.DatabaseError("create contact", err)
		return transport.ContactResponse{}, apperr.Internal("failed to create contact").WithOp("contacts.Create").WithCause(err)
	}
	s.log.WithContext(ctx).Info("contact created", "contactId", contact.ID, "numbers", len(contact.Numbers))
	return s.toResponse(contact), nil
}

// Search filters contacts the way a dialpad does: the query may spell a name
// on the keypad, appear literally in the name, or be part of a number.
// language is an Accept-Language value picking the keypad alphabets; "ru"
// adds Cyrillic.
func (s *Service) Search(ctx context.Context, req transport.SearchContactsRequest, language string) (transport.SearchContactsResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return transport.SearchContactsResponse{}, apperr.Validation("query is required").WithOp("contacts.Search")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	contacts, err := s.repo.List(ctx, searchScanLimit)
	if err != nil {
		s.log.DatabaseError("list contacts", err)
		return transport.SearchContactsResponse{}, apperr.Internal("failed to search contacts").WithOp("contacts.Search").WithCause(err)
	}

	matcher := smartdial.NewMatcher(smartdial.ConfigForLanguage(language))
	resp := transport.SearchContactsResponse{Items: []transport.SearchResultResponse{}}
	for _, c := range contacts {
		hit, ok := s.match(matcher, query, c)
		if !ok {
			continue
		}
		resp.Total++
		if len(resp.Items) < limit {
			resp.Items = append(resp.Items, hit)
		}
	}
	return resp, nil
}

func (s *Service) match(m *smartdial.Matcher, query string, c repository.Contact) (transport.SearchResultResponse, bool) {
	hit := transport.SearchResultResponse{Contact: s.toResponse(c)}

	if match, ok := m.MatchT9(query, c.DisplayName); ok {
		hit.MatchedBy = MatchedByT9
		hit.Highlight = &transport.HighlightResponse{Start: match.Start, End: match.End, Initials: match.Initials}
		return hit, true
	}
	if m.NameContainsQuery(query, c.DisplayName) {
		hit.MatchedBy = MatchedByName
		hit.Highlight = literalHighlight(query, c.DisplayName)
		return hit, true
	}
	for _, n := range c.Numbers {
		if m.NumberMatchesQuery(query, n.RawNumber) || m.NumberMatchesQuery(query, n.NormalizedNumber) {
			hit.MatchedBy = MatchedByNumber
			hit.MatchedNumber = n.RawNumber
			return hit, true
		}
	}
	return transport.SearchResultResponse{}, false
}

// literalHighlight locates query at a word start in name, in rune offsets.
func literalHighlight(query, name string) *transport.HighlightResponse {
	nameRunes := []rune(strings.ToLower(name))
	queryRunes := []rune(strings.ToLower(strings.TrimSpace(query)))
	for start := 0; start+len(queryRunes) <= len(nameRunes); start++ {
		if start > 0 && !unicode.IsSpace(nameRunes[start-1]) {
			continue
		}
		if string(nameRunes[start:start+len(queryRunes)]) == string(queryRunes) {
			return &transport.HighlightResponse{Start: start, End: start + len(queryRunes)}
		}
	}
	return nil
}

func (s *Service) toResponse(c repository.Contact) transport.ContactResponse {
	resp := transport.ContactResponse{
		ID:                c.ID,
		DisplayName:       c.DisplayName,
		LookupKey:         c.LookupKey,
		PhotoURI:          c.PhotoURI,
		PhotoThumbnailURI: c.PhotoThumbnailURI,
		Numbers:           make([]transport.ContactNumberResponse, 0, len(c.Numbers)),
	}
	for _, n := range c.Numbers {
		resp.Numbers = append(resp.Numbers, transport.ContactNumberResponse{
			Raw:        n.RawNumber,
			Normalized: n.NormalizedNumber,
			Display:    phone.FormatForDisplay(phone.Parse(n.RawNumber, n.CountryISO), s.defaultRegion),
			Label:      n.Label,
		})
	}
	return resp
}
