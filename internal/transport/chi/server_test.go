package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/confradar/confradar/internal/domain"
	"github.com/confradar/confradar/internal/logger"
	"github.com/confradar/confradar/internal/domain/query"
	"github.com/confradar/confradar/internal/usecase/discovery"
	"github.com/confradar/confradar/internal/usecase/retrieval"
)

type fakeSearcher struct {
	resp *retrieval.Response
	err  error
	got  query.Normalized
}

func (f *fakeSearcher) Search(_ context.Context, q query.Normalized) (*retrieval.Response, error) {
	f.got = q
	return f.resp, f.err
}

type fakeDiscoverer struct {
	res discovery.Result
	err error
	got discovery.Input
}

func (f *fakeDiscoverer) RunSearch(_ context.Context, in discovery.Input) (discovery.Result, error) {
	f.got = in
	return f.res, f.err
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(context.Context) error { return f.err }

func newTestServer(search *fakeSearcher, discover *fakeDiscoverer, ping *fakePinger) http.Handler {
	if search == nil {
		search = &fakeSearcher{resp: &retrieval.Response{Items: []retrieval.Item{}}}
	}
	if discover == nil {
		discover = &fakeDiscoverer{}
	}
	if ping == nil {
		ping = &fakePinger{}
	}
	s := NewServer(search, discover, ping, zap.NewNop())
	r := chirouter.NewRouter()
	s.Routes(r)
	return r
}

func TestSearchEndpoint(t *testing.T) {
	search := &fakeSearcher{resp: &retrieval.Response{Items: []retrieval.Item{{Score: 0.5}}}}
	h := newTestServer(search, nil, nil)

	body := `{"query":"ai conference","country":"de","intent":"event"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Fatal("missing correlation id header")
	}
	if search.got.Country != "de" || search.got.Intent != query.IntentEvent {
		t.Fatalf("normalized query = %+v", search.got)
	}

	var resp retrieval.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(resp.Items))
	}
}

func TestSearchEndpointValidation(t *testing.T) {
	h := newTestServer(nil, nil, nil)

	for _, body := range []string{
		`{"query":"","country":"de"}`,
		`{"query":"x","country":"zz"}`,
		`{"query":"x","country":"de","intent":"nope"}`,
		`not json`,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestSearchEndpointCountryMismatch(t *testing.T) {
	search := &fakeSearcher{err: &domain.CountryMismatchError{Requested: "de", DocIDs: []string{"d1", "d2"}}}
	h := newTestServer(search, nil, nil)

	body := `{"query":"ai conference","country":"de","intent":"event"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(body)))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var payload struct {
		Code   string   `json:"code"`
		DocIDs []string `json:"doc_ids"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Code != "country_mismatch" || len(payload.DocIDs) != 2 {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestDiscoverEndpoint(t *testing.T) {
	discover := &fakeDiscoverer{res: discovery.Result{URLs: []string{"https://a.example.com"}, RetriedWithBase: true}}
	h := newTestServer(nil, discover, nil)

	body := `{"query":"ai conference","country":"de"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/discover", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp DiscoverResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.URLs) != 1 || !resp.RetriedWithBase {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestDiscoverEndpointForwardsDays(t *testing.T) {
	discover := &fakeDiscoverer{}
	h := newTestServer(nil, discover, nil)

	body := `{"query":"ai conference","country":"de","days":30}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/discover", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if discover.got.Days != 30 {
		t.Fatalf("days = %d, want 30", discover.got.Days)
	}
}

func TestDiscoverEndpointRejectsNegativeDays(t *testing.T) {
	h := newTestServer(nil, nil, nil)

	body := `{"query":"ai conference","country":"de","days":-1}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/discover", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlersUseRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := NewServer(&fakeSearcher{}, &fakeDiscoverer{err: domain.ErrRogueAugmentation}, &fakePinger{}, zap.NewNop())

	r := chirouter.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := logger.WithContext(req.Context(), zap.New(core))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	s.Routes(r)

	body := `{"query":"ai conference","country":"de"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/discover", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if logs.FilterMessage("domain error").Len() != 1 {
		t.Fatalf("request logger saw %d domain error entries, want 1", logs.FilterMessage("domain error").Len())
	}
}

func TestDiscoverEndpointRogueQuery(t *testing.T) {
	discover := &fakeDiscoverer{err: domain.ErrRogueAugmentation}
	h := newTestServer(nil, discover, nil)

	body := `{"query":"ai conference","country":"de"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/discover", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(nil, nil, &fakePinger{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	h = newTestServer(nil, nil, &fakePinger{err: errors.New("down")})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
