// Package service resolves the identity behind a phone number by asking every
// configured source in parallel and consolidating their answers.
package service

import (
	"context"
	"strings"
	"time"

	"callerid_backend/internal/events"
	"callerid_backend/internal/lookup/cache"
	"callerid_backend/internal/lookup/consolidate"
	"callerid_backend/internal/lookup/repository"
	"callerid_backend/internal/lookup/sources"
	"callerid_backend/platform/apperr"
	"callerid_backend/platform/logger"
	"callerid_backend/platform/metrics"
	"callerid_backend/platform/phone"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// MaxBatchSize caps LookupBatch.
	MaxBatchSize = 50

	batchConcurrency = 8
	statusSource     = "number_status"
)

// PhotoResolver turns stored photo references into fetchable URLs.
type PhotoResolver interface {
	Resolve(ctx context.Context, uri string) (string, error)
}

// Query is one lookup request.
type Query struct {
	Raw      string
	Region   string
	Language string
}

// Result is a consolidated lookup.
type Result struct {
	Number   phone.CanonicalNumber
	Identity consolidate.Identity
	Cached   bool
}

// BatchItem is one entry of LookupBatch; Err is set when that number failed.
type BatchItem struct {
	Result Result
	Err    error
}

// Options configures a Service.
type Options struct {
	DefaultRegion string
	SourceTimeout time.Duration
	CacheTTL      time.Duration
}

// Service handles identity lookups.
type Service struct {
	providers []sources.Provider
	status    repository.Repository
	cache     cache.Cache
	photos    PhotoResolver
	bus       events.Bus
	metrics   *metrics.Metrics
	log       *logger.Logger
	opts      Options
	flight    singleflight.Group
	now       func() time.Time
}

// New creates a lookup service. photos and m may be nil.
func New(providers []sources.Provider, status repository.Repository, c cache.Cache, photos PhotoResolver, bus events.Bus, m *metrics.Metrics, log *logger.Logger, opts Options) *Service {
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = 1500 * time.Millisecond
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.DefaultRegion == "" {
		opts.DefaultRegion = phone.UnknownRegion
	}
	return &Service{
		providers: providers,
		status:    status,
		cache:     c,
		photos:    photos,
		bus:       bus,
		metrics:   m,
		log:       log,
		opts:      opts,
		now:       time.Now,
	}
}

// DefaultRegion is the region used when a query carries none.
func (s *Service) DefaultRegion() string {
	return s.opts.DefaultRegion
}

// Parse normalizes raw in region, falling back to the default region.
func (s *Service) Parse(raw, region string) phone.CanonicalNumber {
	return phone.Parse(raw, s.region(region))
}

// Lookup returns the consolidated identity for q.
func (s *Service) Lookup(ctx context.Context, q Query) (Result, error) {
	if strings.TrimSpace(q.Raw) == "" {
		return Result{}, apperr.Validation("number is required").WithOp("lookup.Lookup")
	}
	return s.lookupNumber(ctx, s.Parse(q.Raw, q.Region), q.Language, false)
}

// Refresh drops any cached answer for the number and looks it up again.
func (s *Service) Refresh(ctx context.Context, q Query) (Result, error) {
	if strings.TrimSpace(q.Raw) == "" {
		return Result{}, apperr.Validation("number is required").WithOp("lookup.Refresh")
	}
	return s.lookupNumber(ctx, s.Parse(q.Raw, q.Region), q.Language, true)
}

// LookupBatch looks up to MaxBatchSize numbers concurrently. A failure for
// one number is reported in its item and does not fail the batch.
func (s *Service) LookupBatch(ctx context.Context, raws []string, region, language string) ([]BatchItem, error) {
	if len(raws) == 0 {
		return nil, apperr.Validation("numbers are required").WithOp("lookup.LookupBatch")
	}
	if len(raws) > MaxBatchSize {
		return nil, apperr.Validation("too many numbers").
			WithOp("lookup.LookupBatch").
			WithDetails(map[string]int{"max": MaxBatchSize})
	}

	items := make([]BatchItem, len(raws))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, raw := range raws {
		g.Go(func() error {
			res, err := s.Lookup(gctx, Query{Raw: raw, Region: region, Language: language})
			items[i] = BatchItem{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return items, nil
}

// Block adds the number to the blocklist and republishes its identity.
func (s *Service) Block(ctx context.Context, raw, region string) (phone.CanonicalNumber, error) {
	number, key, err := s.statusTarget(raw, region, "lookup.Block")
	if err != nil {
		return number, err
	}
	if err := s.status.Block(ctx, phone.Normalize(number)); err != nil {
		s.log.DatabaseError("block number", err)
		return number, apperr.Internal("failed to block number").WithOp("lookup.Block").WithCause(err)
	}
	s.statusChanged(ctx, key, number)
	return number, nil
}

// Unblock removes the number from the blocklist and republishes its identity.
func (s *Service) Unblock(ctx context.Context, raw, region string) (phone.CanonicalNumber, error) {
	number, key, err := s.statusTarget(raw, region, "lookup.Unblock")
	if err != nil {
		return number, err
	}
	if err := s.status.Unblock(ctx, phone.Normalize(number)); err != nil {
		s.log.DatabaseError("unblock number", err)
		return number, apperr.Internal("failed to unblock number").WithOp("lookup.Unblock").WithCause(err)
	}
	s.statusChanged(ctx, key, number)
	return number, nil
}

// ReportSpam records a spam report, republishes the identity and returns
// the new report count.
func (s *Service) ReportSpam(ctx context.Context, raw, region string) (int, error) {
	number, key, err := s.statusTarget(raw, region, "lookup.ReportSpam")
	if err != nil {
		return 0, err
	}
	count, err := s.status.ReportSpam(ctx, phone.Normalize(number))
	if err != nil {
		s.log.DatabaseError("report spam", err)
		return 0, apperr.Internal("failed to report spam").WithOp("lookup.ReportSpam").WithCause(err)
	}
	s.statusChanged(ctx, key, number)
	return count, nil
}

// statusChanged drops the cached answer and fetches fresh candidates, so the
// new blocked or spam state is cached and published to the call log history.
// It bypasses singleflight: a fetch already in flight predates the change.
func (s *Service) statusChanged(ctx context.Context, key string, number phone.CanonicalNumber) {
	s.invalidate(ctx, key)
	s.fetch(context.WithoutCancel(ctx), number)
}

func (s *Service) statusTarget(raw, region, op string) (phone.CanonicalNumber, string, error) {
	number := s.Parse(raw, region)
	if phone.Normalize(number) == "" {
		return number, "", apperr.Validation("number is required").WithOp(op)
	}
	return number, CacheKey(number), nil
}

func (s *Service) invalidate(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.WithContext(ctx).Warn("lookup cache delete failed", "error", err)
	}
}

// CacheKey identifies a number across formatting differences. Parsed numbers
// share a key regardless of the region they were dialled from.
func CacheKey(n phone.CanonicalNumber) string {
	if n.Valid {
		return n.E164 + n.PostDial
	}
	return phone.Region(n) + ":" + phone.Normalize(n)
}

func (s *Service) region(region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return s.opts.DefaultRegion
	}
	return region
}

func (s *Service) lookupNumber(ctx context.Context, number phone.CanonicalNumber, language string, refresh bool) (Result, error) {
	start := s.now()
	key := CacheKey(number)
	log := s.log.WithContext(ctx)

	if refresh {
		s.invalidate(ctx, key)
	} else {
		candidates, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn("lookup cache read failed", "error", err)
		}
		s.metrics.ObserveCache(ok)
		if ok {
			return s.finish(ctx, number, candidates, language, true, start), nil
		}
	}

	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		return s.fetch(context.WithoutCancel(ctx), number), nil
	})
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, apperr.Unavailable("lookup cancelled").WithOp("lookup.Lookup")
	}
	return s.finish(ctx, number, v.(consolidate.Candidates), language, false, start), nil
}

// fetch queries every source and the number status concurrently. A source
// that fails or runs past the timeout contributes nothing.
func (s *Service) fetch(ctx context.Context, number phone.CanonicalNumber) consolidate.Candidates {
	key := CacheKey(number)
	perSource := make([][]consolidate.Record, len(s.providers))
	var status repository.Status

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range s.providers {
		g.Go(func() error {
			perSource[i] = s.querySource(gctx, p, number)
			return nil
		})
	}
	g.Go(func() error {
		status = s.queryStatus(gctx, number)
		return nil
	})
	_ = g.Wait()

	var records []consolidate.Record
	for _, src := range consolidate.Priority {
		for _, recs := range perSource {
			for _, r := range recs {
				if r.Source == src {
					records = append(records, r)
				}
			}
		}
	}

	candidates := consolidate.CandidatesFromRecords(records)
	candidates.Blocked = status.Blocked
	candidates.Spam = consolidate.SpamInfo{IsSpam: status.IsSpam(), ReportCount: status.SpamReports}

	if err := s.cache.Set(ctx, key, candidates, s.opts.CacheTTL); err != nil {
		s.log.Warn("lookup cache write failed", "error", err)
	}
	if s.bus != nil {
		s.bus.Publish(ctx, events.IdentityResolved{
			BaseEvent:        events.NewBaseEvent(),
			NormalizedNumber: phone.Normalize(number),
			Candidates:       candidates,
		})
	}
	return candidates
}

func (s *Service) querySource(ctx context.Context, p sources.Provider, number phone.CanonicalNumber) []consolidate.Record {
	ctx, cancel := context.WithTimeout(ctx, s.opts.SourceTimeout)
	defer cancel()

	name := p.Source().String()
	start := s.now()
	records, err := p.Lookup(ctx, number)
	s.metrics.ObserveSource(name, s.now().Sub(start), err)
	if err != nil {
		s.log.SourceFailure(name, phone.Normalize(number), err)
		return nil
	}

	// A source may only speak for itself.
	own := records[:0:0]
	for _, r := range records {
		if r.Source == p.Source() {
			own = append(own, r)
		}
	}
	return own
}

func (s *Service) queryStatus(ctx context.Context, number phone.CanonicalNumber) repository.Status {
	if s.status == nil {
		return repository.Status{}
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.SourceTimeout)
	defer cancel()

	start := s.now()
	status, err := s.status.Status(ctx, phone.Normalize(number))
	s.metrics.ObserveSource(statusSource, s.now().Sub(start), err)
	if err != nil {
		s.log.SourceFailure(statusSource, phone.Normalize(number), err)
		return repository.Status{}
	}
	return status
}

// finish attaches request-specific data that is never cached: geolocation in
// the caller's language and presigned photo URLs.
func (s *Service) finish(ctx context.Context, number phone.CanonicalNumber, candidates consolidate.Candidates, language string, cached bool, start time.Time) Result {
	candidates.Geolocation = phone.Geolocation(number, language)
	candidates.Local = s.resolvePhotos(ctx, candidates.Local)
	candidates.Remote = s.resolvePhotos(ctx, candidates.Remote)
	candidates.CallerID = s.resolvePhotos(ctx, candidates.CallerID)

	identity := consolidate.Consolidate(candidates)
	s.metrics.ObserveLookup(identity.NameSource().String())
	s.log.WithContext(ctx).LookupResolved(phone.Normalize(number), identity.NameSource().String(), cached, s.now().Sub(start))

	return Result{Number: number, Identity: identity, Cached: cached}
}

func (s *Service) resolvePhotos(ctx context.Context, r *consolidate.Record) *consolidate.Record {
	if r == nil || s.photos == nil {
		return r
	}
	resolved := *r
	resolved.PhotoURI = s.resolvePhoto(ctx, r.PhotoURI)
	resolved.PhotoThumbnailURI = s.resolvePhoto(ctx, r.PhotoThumbnailURI)
	return &resolved
}

func (s *Service) resolvePhoto(ctx context.Context, uri string) string {
	if uri == "" {
		return ""
	}
	resolved, err := s.photos.Resolve(ctx, uri)
	if err != nil {
		s.log.WithContext(ctx).Warn("photo presign failed", "error", err)
		return ""
	}
	return resolved
}
