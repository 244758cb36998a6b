// Package session runs the two-phase address-field resolution pipeline for a
// single form: fetch country metadata for the current (country, locale)
// selection, then derive the ordered field descriptors from it.
//
// Fetches run asynchronously and are tagged with the generation of the
// selection that issued them. A completion is committed only while its
// generation is still current, so the last started selection wins even when
// an older fetch finishes later.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-addressfields/internal/logging"
	"github.com/goliatone/go-addressfields/pkg/address"
	"github.com/goliatone/go-addressfields/pkg/catalog"
	"github.com/goliatone/go-addressfields/pkg/locale"
	"github.com/goliatone/go-addressfields/pkg/metrics"
)

const (
	DefaultAttemptTimeout = 5 * time.Second
	DefaultMaxAttempts    = 2
)

var (
	ErrClosed         = errors.New("session: closed")
	ErrMissingCountry = errors.New("session: missing country")
	ErrNoSelection    = errors.New("session: no selection")
	ErrMissingCatalog = errors.New("session: missing catalog")
)

// Status is the resolution state of the current selection.
type Status int

const (
	// StatusPending means the metadata for the current selection has not
	// arrived yet.
	StatusPending Status = iota
	// StatusReady means Fields holds the resolved descriptors.
	StatusReady
	// StatusUnavailable means every fetch attempt failed; Err holds the last
	// failure.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is a snapshot of the session state. Fields may be empty while
// Status is StatusReady; callers distinguish that from StatusPending.
type Result struct {
	Status     Status
	Generation uint64
	Requested  string
	Country    string
	Locale     string
	Fields     []address.FieldDescriptor
	Err        error
}

// Ready reports whether Fields holds descriptors for the current selection.
func (r Result) Ready() bool { return r.Status == StatusReady }

// Option customises a Session.
type Option func(*Session)

// WithLocaleResolver sets the resolver used to turn preferences into lookup
// locales.
func WithLocaleResolver(r *locale.Resolver) Option {
	return func(s *Session) {
		if r != nil {
			s.locales = r
		}
	}
}

// WithAttemptTimeout bounds each catalog call. Zero disables the bound.
func WithAttemptTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.attemptTimeout = d
		}
	}
}

// WithMaxAttempts sets how many catalog calls a selection makes before it
// settles as unavailable.
func WithMaxAttempts(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logging.OrNop(logger)
	}
}

// WithMetrics records fetch outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithOnChange registers fn to be called with every committed result. fn runs
// on the fetch goroutine and must not block.
func WithOnChange(fn func(Result)) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// Session owns the derived state for one form.
type Session struct {
	catalog        catalog.Catalog
	locales        *locale.Resolver
	resolver       *address.Resolver
	attemptTimeout time.Duration
	maxAttempts    int
	logger         *slog.Logger
	metrics        *metrics.Metrics
	onChange       func(Result)

	base     context.Context
	shutdown context.CancelFunc
	wg       sync.WaitGroup

	mu         sync.Mutex
	generation uint64
	current    Result
	cancel     context.CancelFunc
	done       chan struct{}
	settled    bool
	closed     bool
}

// New builds a Session that fetches metadata from cat.
func New(cat catalog.Catalog, options ...Option) *Session {
	base, shutdown := context.WithCancel(context.Background())
	s := &Session{
		catalog:        cat,
		locales:        locale.NewResolver(),
		resolver:       address.NewResolver(),
		attemptTimeout: DefaultAttemptTimeout,
		maxAttempts:    DefaultMaxAttempts,
		logger:         logging.NewNop(),
		base:           base,
		shutdown:       shutdown,
		done:           make(chan struct{}),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Select starts resolution for country using the stored locale preference
// (which may be empty). Any in-flight fetch for an earlier selection is
// cancelled and its result will be discarded. The returned snapshot is
// pending.
func (s *Session) Select(country, localePreference string) (Result, error) {
	if s == nil || s.catalog == nil {
		return Result{}, ErrMissingCatalog
	}
	requested := strings.TrimSpace(country)
	if requested == "" {
		return Result{}, ErrMissingCountry
	}
	effective := address.EffectiveCountry(requested)
	loc := s.locales.Resolve(localePreference)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Result{}, ErrClosed
	}
	if s.cancel != nil {
		s.cancel()
	}
	if !s.settled && s.generation > 0 {
		// Wake waiters of the superseded generation so they re-read state.
		close(s.done)
	}

	s.generation++
	gen := s.generation
	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.settled = false
	s.current = Result{
		Status:     StatusPending,
		Generation: gen,
		Requested:  requested,
		Country:    effective,
		Locale:     loc,
	}
	snapshot := s.current
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Debug("address selection started", "generation", gen, "country", requested, "effective", effective, "locale", loc)
	go s.run(ctx, gen, effective, loc)
	return snapshot, nil
}

// Current returns the latest snapshot without blocking.
func (s *Session) Current() Result {
	if s == nil {
		return Result{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Wait blocks until the current selection settles (ready or unavailable) or
// ctx is done. If the selection changes while waiting, Wait follows the new
// selection.
func (s *Session) Wait(ctx context.Context) (Result, error) {
	if s == nil {
		return Result{}, ErrMissingCatalog
	}
	for {
		s.mu.Lock()
		res, done, settled, closed, gen := s.current, s.done, s.settled, s.closed, s.generation
		s.mu.Unlock()

		if settled {
			return res, nil
		}
		if closed {
			return res, ErrClosed
		}
		if gen == 0 {
			return res, ErrNoSelection
		}

		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-done:
		}
	}
}

// Close cancels any in-flight fetch and waits for fetch goroutines to exit.
// Further selections fail with ErrClosed.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if !s.settled {
		close(s.done)
	}
	s.mu.Unlock()

	s.shutdown()
	s.wg.Wait()
	return nil
}

func (s *Session) run(ctx context.Context, gen uint64, country, loc string) {
	defer s.wg.Done()

	meta, err := s.fetch(ctx, gen, country, loc)
	var fields []address.FieldDescriptor
	if err == nil {
		fields = s.resolver.Resolve(meta)
	}
	s.commit(gen, fields, err)
}

func (s *Session) fetch(ctx context.Context, gen uint64, country, loc string) (address.CountryMetadata, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if s.attemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, s.attemptTimeout)
		}
		meta, err := s.catalog.Country(attemptCtx, country, loc)
		cancel()
		if err == nil {
			return meta, nil
		}
		lastErr = err

		if ctx.Err() != nil || !s.isCurrent(gen) {
			return address.CountryMetadata{}, lastErr
		}
		if attempt < s.maxAttempts {
			s.metrics.IncFetch(metrics.FetchRetried)
			s.logger.Warn("address metadata fetch failed, retrying",
				"generation", gen, "country", country, "locale", loc, "attempt", attempt, "error", err)
		}
	}
	return address.CountryMetadata{}, lastErr
}

func (s *Session) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.generation == gen
}

func (s *Session) commit(gen uint64, fields []address.FieldDescriptor, err error) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		s.metrics.IncFetch(metrics.FetchSuperseded)
		s.logger.Debug("discarding superseded address metadata", "generation", gen)
		return
	}

	if err != nil {
		s.current.Status = StatusUnavailable
		s.current.Err = err
		s.metrics.IncFetch(metrics.FetchFailed)
	} else {
		s.current.Status = StatusReady
		s.current.Fields = fields
		s.metrics.IncFetch(metrics.FetchCommitted)
	}
	s.settled = true
	close(s.done)
	res := s.current
	onChange := s.onChange
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("address metadata unavailable", "generation", gen, "country", res.Country, "locale", res.Locale, "error", err)
	}
	if onChange != nil {
		onChange(res)
	}
}
