package handler

import (
	"errors"

	"callerid_backend/internal/lookup/service"
	"callerid_backend/internal/lookup/transport"
	"callerid_backend/platform/apperr"
	"callerid_backend/platform/i18n"
	"callerid_backend/platform/phone"
)

func toNumberResponse(n phone.CanonicalNumber, userRegion string) transport.NumberResponse {
	return transport.NumberResponse{
		Raw:            n.RawInput,
		Region:         phone.Region(n),
		Parsed:         n.Parsed,
		Valid:          n.Valid,
		E164:           n.E164,
		Normalized:     phone.Normalize(n),
		NetworkPortion: n.NetworkPortion,
		PostDial:       n.PostDial,
		Display:        phone.FormatForDisplay(n, userRegion),
		ServiceCode:    phone.IsServiceCode(n.RawInput),
	}
}

func toIdentityResponse(r service.Result, userRegion string, loc *i18n.Localizer) transport.IdentityResponse {
	id := r.Identity
	return transport.IdentityResponse{
		Number:             toNumberResponse(r.Number, userRegion),
		Name:               id.Name(),
		NameSource:         id.NameSource().String(),
		PhotoURI:           id.PhotoURI(),
		PhotoThumbnailURI:  id.PhotoThumbnailURI(),
		PhotoVisible:       id.IsPhotoVisible(),
		Label:              id.Label(),
		NumberLabel:        id.NumberLabel(loc.Text("blocked")),
		ContactID:          id.ContactID(),
		LookupKey:          id.LookupKey(),
		IsBusiness:         id.IsBusiness(),
		IsBlocked:          id.IsBlocked(),
		IsSpam:             id.IsSpam(),
		SpamReportCount:    id.Spam().ReportCount,
		CanReportAsInvalid: id.CanReportAsInvalidNumber(),
		ContactIncomplete:  id.IsDefaultContactIncomplete(),
		Geolocation:        id.Geolocation(),
		Cached:             r.Cached,
	}
}

// errorMessage exposes domain error messages and hides everything else.
func errorMessage(err error) string {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "internal error"
}
