package addressfields

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-addressfields/pkg/address"
	"github.com/goliatone/go-addressfields/pkg/catalog"
)

type fieldsHandlerResponse struct {
	Data FieldsPayload `json:"data"`
}

type zonesHandlerResponse struct {
	Data []address.ZoneOption `json:"data"`
}

type recordingCatalog struct {
	country string
	locale  string
	meta    address.CountryMetadata
	err     error
}

func (c *recordingCatalog) Country(ctx context.Context, country, locale string) (address.CountryMetadata, error) {
	c.country = country
	c.locale = locale
	return c.meta, c.err
}

func usCatalog() *recordingCatalog {
	return &recordingCatalog{meta: address.CountryMetadata{
		Format: "{address1}_{city}{province}{zip}",
		Labels: map[string]string{
			"address1":   "Address",
			"city":       "City",
			"zone":       "State",
			"postalCode": "ZIP",
		},
		OptionalLabels: map[string]string{},
		Zones: []address.Zone{
			{Name: "California", Code: "CA"},
			{Name: "Alabama", Code: "AL"},
		},
	}}
}

func decodeFields(t *testing.T, res *http.Response) FieldsPayload {
	t.Helper()
	var payload fieldsHandlerResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload.Data
}

func TestNewHandler_ResolvesOrderedFields(t *testing.T) {
	cat := usCatalog()
	h := NewHandler(WithCatalog(cat))

	req := httptest.NewRequest(http.MethodGet, "/api/address-fields?country=us", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if ct := strings.TrimSpace(res.Header.Get("Content-Type")); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}

	payload := decodeFields(t, res)
	want := []address.FieldDescriptor{
		{Key: address.FieldAddress1, Label: "Address", Required: true},
		{Key: address.FieldCity, Label: "City", Required: true},
		{Key: address.FieldZone, Label: "State", Required: true, ZoneOptions: []address.ZoneOption{
			{Value: "Alabama", Label: "Alabama - AL"},
			{Value: "California", Label: "California - CA"},
		}},
		{Key: address.FieldPostalCode, Label: "ZIP", Required: true},
	}
	if diff := cmp.Diff(want, payload.Fields); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
	if payload.Country != "US" || payload.Locale != "en" {
		t.Fatalf("unexpected country/locale: %q/%q", payload.Country, payload.Locale)
	}
	if payload.ZonesEndpoint == nil || payload.ZonesEndpoint.URL != "/api/address-fields/zones" {
		t.Fatalf("expected zones endpoint, got %#v", payload.ZonesEndpoint)
	}
}

func TestNewHandler_FallbackCountry(t *testing.T) {
	cat := usCatalog()
	h := NewHandler(WithCatalog(cat))

	req := httptest.NewRequest(http.MethodGet, "/api/address-fields?country=GU", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if cat.country != address.DefaultCountry {
		t.Fatalf("expected catalog lookup for %s, got %q", address.DefaultCountry, cat.country)
	}
	payload := decodeFields(t, rec.Result())
	if payload.RequestedCountry != "GU" || payload.Country != address.DefaultCountry {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestNewHandler_LocaleFromParamThenCookie(t *testing.T) {
	cat := usCatalog()
	h := NewHandler(WithCatalog(cat))

	req := httptest.NewRequest(http.MethodGet, "/api/address-fields?country=CA", nil)
	req.AddCookie(&http.Cookie{Name: "language", Value: "FR"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if cat.locale != "fr" {
		t.Fatalf("expected cookie locale fr, got %q", cat.locale)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/address-fields?country=CA&locale=es", nil)
	req.AddCookie(&http.Cookie{Name: "language", Value: "fr"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if cat.locale != "es" {
		t.Fatalf("expected explicit locale es, got %q", cat.locale)
	}
}

func TestNewHandler_DefaultCatalog(t *testing.T) {
	h := NewHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/address-fields?country=DE&locale=de", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	payload := decodeFields(t, rec.Result())
	if len(payload.Fields) != 4 || payload.Fields[2].Key != address.FieldPostalCode {
		t.Fatalf("unexpected German layout: %#v", payload.Fields)
	}
	if payload.ZonesEndpoint != nil {
		t.Fatalf("did not expect a zones endpoint without zone options")
	}
}

func TestNewHandler_NoRecognizedTokensReturnsEmptyFields(t *testing.T) {
	cat := &recordingCatalog{meta: address.CountryMetadata{
		Format: "{firstName}{lastName}_{country}",
		Labels: map[string]string{"address1": "Address"},
	}}
	h := NewHandler(WithCatalog(cat))

	req := httptest.NewRequest(http.MethodGet, "/api/address-fields?country=XX", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"fields":[]`) {
		t.Fatalf("expected empty fields array, got %s", rec.Body.String())
	}
}

func TestNewHandler_MissingCountry(t *testing.T) {
	h := NewHandler(WithCatalog(usCatalog()))

	req := httptest.NewRequest(http.MethodGet, "/api/address-fields", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestNewHandler_CatalogFailure(t *testing.T) {
	h := NewHandler(WithCatalog(&recordingCatalog{err: errors.New("down")}))

	req := httptest.NewRequest(http.MethodGet, "/api/address-fields?country=US", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
}

func TestNewHandler_GuardRejects(t *testing.T) {
	h := NewHandler(
		WithCatalog(usCatalog()),
		WithGuard(func(r *http.Request) error {
			return StatusError{Code: http.StatusUnauthorized}
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/address-fields?country=US", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestNewHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler(WithCatalog(usCatalog()))

	req := httptest.NewRequest(http.MethodPost, "/api/address-fields?country=US", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Fatalf("unexpected Allow header: %q", allow)
	}
}

func TestNewHandler_HeadHasNoBody(t *testing.T) {
	h := NewHandler(WithCatalog(usCatalog()))

	req := httptest.NewRequest(http.MethodHead, "/api/address-fields?country=US", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 200 response, got %d with %d bytes", rec.Code, rec.Body.Len())
	}
}

func TestZonesHandler_SearchAndLimit(t *testing.T) {
	h := ZonesHandler(WithCatalog(usCatalog()))

	req := httptest.NewRequest(http.MethodGet, "/api/address-fields/zones?country=US&q=al", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload zonesHandlerResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := []address.ZoneOption{
		{Value: "Alabama", Label: "Alabama - AL"},
		{Value: "California", Label: "California - CA"},
	}
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("unexpected options (-want +got):\n%s", diff)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/address-fields/zones?country=US&limit=1", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	payload = zonesHandlerResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Data) != 1 || payload.Data[0].Value != "Alabama" {
		t.Fatalf("unexpected limited options: %#v", payload.Data)
	}
}

func TestZonesHandler_NoZonesReturnsEmptyArray(t *testing.T) {
	cat := &recordingCatalog{meta: address.CountryMetadata{Format: "{city}", Labels: map[string]string{"city": "City"}}}
	h := ZonesHandler(WithCatalog(cat))

	req := httptest.NewRequest(http.MethodGet, "/api/address-fields/zones?country=GB", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var payload zonesHandlerResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Data == nil || len(payload.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", payload.Data)
	}
}

func TestHandler_SanitizesDefaultCatalog(t *testing.T) {
	// The default catalog is wrapped with the sanitizer; a custom catalog can
	// opt in explicitly.
	cat := catalog.NewSanitized(&recordingCatalog{meta: address.CountryMetadata{
		Format: "{city}",
		Labels: map[string]string{"city": "<b>City</b>"},
	}})
	h := NewHandler(WithCatalog(cat))

	req := httptest.NewRequest(http.MethodGet, "/api/address-fields?country=US", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	payload := decodeFields(t, rec.Result())
	if len(payload.Fields) != 1 || payload.Fields[0].Label != "City" {
		t.Fatalf("expected sanitized label, got %#v", payload.Fields)
	}
}
