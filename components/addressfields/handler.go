package addressfields

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-addressfields/internal/logging"
	"github.com/goliatone/go-addressfields/pkg/address"
	"github.com/goliatone/go-addressfields/pkg/catalog"
	"github.com/goliatone/go-addressfields/pkg/locale"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// FieldsPayload is the body of a fields response.
type FieldsPayload struct {
	Country          string                    `json:"country"`
	RequestedCountry string                    `json:"requestedCountry"`
	Locale           string                    `json:"locale"`
	Fields           []address.FieldDescriptor `json:"fields"`
	ZonesEndpoint    *Endpoint                 `json:"zonesEndpoint,omitempty"`
}

type fieldsResponse struct {
	Data FieldsPayload `json:"data"`
}

type optionsResponse struct {
	Data []address.ZoneOption `json:"data"`
}

// Handler builds the fields handler with default options plus any overrides.
// It is an alias of NewHandler to match the recommended component API surface.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return HandlerWithOptions(opts)
}

// HandlerWithOptions builds the fields handler from a pre-constructed Options
// value. Callers are expected to pass an Options value produced by NewOptions
// (or equivalent) so defaults are applied.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	svc := newService(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !svc.admit(w, r) {
			return
		}
		lookup, ok := svc.lookup(w, r)
		if !ok {
			return
		}

		payload := FieldsPayload{
			Country:          lookup.country,
			RequestedCountry: lookup.requested,
			Locale:           lookup.locale,
			Fields:           address.Resolve(lookup.meta),
		}
		for _, field := range payload.Fields {
			if field.HasZoneOptions() {
				endpoint := zonesEndpoint(strings.TrimRight(r.URL.Path, "/")+normalizePath(opts.ZonesPath), lookup.requested, lookup.locale, opts)
				payload.ZonesEndpoint = &endpoint
				break
			}
		}
		writeJSON(w, r, fieldsResponse{Data: payload})
	})
}

// ZonesHandler builds the zone options handler with default options plus any
// overrides.
func ZonesHandler(fns ...OptionFn) http.Handler {
	return ZonesHandlerWithOptions(NewOptions(fns...))
}

// ZonesHandlerWithOptions builds the zone options handler from a
// pre-constructed Options value.
func ZonesHandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	svc := newService(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !svc.admit(w, r) {
			return
		}
		lookup, ok := svc.lookup(w, r)
		if !ok {
			return
		}

		query := r.URL.Query().Get(opts.SearchParam)
		limit := parseInt(r.URL.Query().Get(opts.LimitParam))
		results := SearchZoneOptions(address.BuildZoneOptions(lookup.meta.Zones), query, limit, opts)
		if results == nil {
			results = []address.ZoneOption{}
		}
		writeJSON(w, r, optionsResponse{Data: results})
	})
}

type service struct {
	opts    Options
	locales *locale.Resolver
	logger  *slog.Logger
}

type lookupResult struct {
	requested string
	country   string
	locale    string
	meta      address.CountryMetadata
}

func newService(opts Options) *service {
	return &service{
		opts:    opts,
		locales: locale.NewResolver(locale.WithDefault(opts.DefaultLocale)),
		logger:  logging.OrNop(opts.Logger),
	}
}

func (s *service) catalog() (catalog.Catalog, error) {
	if s.opts.Catalog != nil {
		return s.opts.Catalog, nil
	}
	static, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	return catalog.NewSanitized(static), nil
}

func (s *service) admit(w http.ResponseWriter, r *http.Request) bool {
	if r == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return false
	}
	if s.opts.Guard != nil {
		if err := s.opts.Guard(r); err != nil {
			writeGuardError(w, err)
			return false
		}
	}
	return true
}

func (s *service) lookup(w http.ResponseWriter, r *http.Request) (lookupResult, bool) {
	requested := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get(s.opts.CountryParam)))
	if requested == "" {
		http.Error(w, fmt.Sprintf("missing %q parameter", s.opts.CountryParam), http.StatusBadRequest)
		return lookupResult{}, false
	}

	cat, err := s.catalog()
	if err != nil {
		s.logger.Error("address catalog unavailable", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return lookupResult{}, false
	}

	res := lookupResult{
		requested: requested,
		country:   address.EffectiveCountry(requested),
		locale:    s.locales.Resolve(s.preference(r)),
	}
	res.meta, err = cat.Country(r.Context(), res.country, res.locale)
	if err != nil {
		s.logger.Warn("address metadata lookup failed", "country", res.country, "locale", res.locale, "error", err)
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return lookupResult{}, false
	}
	return res, true
}

// preference prefers an explicit locale parameter over the stored cookie.
func (s *service) preference(r *http.Request) string {
	if pref := strings.TrimSpace(r.URL.Query().Get(s.opts.LocaleParam)); pref != "" {
		return pref
	}
	return locale.PreferenceFromRequest(r, s.opts.LocaleCookie)
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
