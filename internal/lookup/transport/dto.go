package transport

// LookupRequest asks for the identity behind one number.
type LookupRequest struct {
	Number string `json:"number" validate:"required,max=64,dialstring"`
	Region string `json:"region,omitempty" validate:"omitempty,region"`
}

// BatchLookupRequest asks for several numbers at once.
type BatchLookupRequest struct {
	Numbers []string `json:"numbers" validate:"required,min=1,max=50,dive,required,max=64"`
	Region  string   `json:"region,omitempty" validate:"omitempty,region"`
}

// NormalizeRequest is bound from the query string.
type NormalizeRequest struct {
	Number string `form:"number" validate:"required,max=64"`
	Region string `form:"region" validate:"omitempty,region"`
}

// MatchRequest compares two dial strings.
type MatchRequest struct {
	A       string `json:"a" validate:"max=64"`
	B       string `json:"b" validate:"max=64"`
	Region  string `json:"region,omitempty" validate:"omitempty,region"`
	RegionA string `json:"regionA,omitempty" validate:"omitempty,region"`
	RegionB string `json:"regionB,omitempty" validate:"omitempty,region"`
}

// NumberStatusRequest targets the blocklist or spam reports.
type NumberStatusRequest struct {
	Number string `json:"number" validate:"required,max=64,dialstring"`
	Region string `json:"region,omitempty" validate:"omitempty,region"`
}

// NumberResponse describes a parsed number.
type NumberResponse struct {
	Raw            string `json:"raw"`
	Region         string `json:"region"`
	Parsed         bool   `json:"parsed"`
	Valid          bool   `json:"valid"`
	E164           string `json:"e164,omitempty"`
	Normalized     string `json:"normalized"`
	NetworkPortion string `json:"networkPortion"`
	PostDial       string `json:"postDial,omitempty"`
	Display        string `json:"display"`
	ServiceCode    bool   `json:"serviceCode"`
}

// IdentityResponse is the consolidated view of a number.
type IdentityResponse struct {
	Number             NumberResponse `json:"number"`
	Name               string         `json:"name,omitempty"`
	NameSource         string         `json:"nameSource"`
	PhotoURI           string         `json:"photoUri,omitempty"`
	PhotoThumbnailURI  string         `json:"photoThumbnailUri,omitempty"`
	PhotoVisible       bool           `json:"photoVisible"`
	Label              string         `json:"label,omitempty"`
	NumberLabel        string         `json:"numberLabel,omitempty"`
	ContactID          string         `json:"contactId,omitempty"`
	LookupKey          string         `json:"lookupKey,omitempty"`
	IsBusiness         bool           `json:"isBusiness"`
	IsBlocked          bool           `json:"isBlocked"`
	IsSpam             bool           `json:"isSpam"`
	SpamReportCount    int            `json:"spamReportCount"`
	CanReportAsInvalid bool           `json:"canReportAsInvalid"`
	ContactIncomplete  bool           `json:"contactIncomplete"`
	Geolocation        string         `json:"geolocation,omitempty"`
	Cached             bool           `json:"cached"`
}

// BatchItemResponse is one entry of a batch lookup.
type BatchItemResponse struct {
	Input    string            `json:"input"`
	Identity *IdentityResponse `json:"identity,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// BatchLookupResponse wraps a batch lookup.
type BatchLookupResponse struct {
	Items []BatchItemResponse `json:"items"`
}

// MatchResponse reports whether two numbers are the same.
type MatchResponse struct {
	Match bool           `json:"match"`
	A     NumberResponse `json:"a"`
	B     NumberResponse `json:"b"`
}

// NumberStatusResponse reports the number status after a change.
type NumberStatusResponse struct {
	Number          NumberResponse `json:"number"`
	Blocked         *bool          `json:"blocked,omitempty"`
	SpamReportCount *int           `json:"spamReportCount,omitempty"`
}

// RefreshQueuedResponse reports a queued refresh.
type RefreshQueuedResponse struct {
	TaskID string `json:"taskId"`
}
