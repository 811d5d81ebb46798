package admin_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huynhanx03/arenakv/pkg/admin"
	"github.com/huynhanx03/arenakv/pkg/arena"
	"github.com/huynhanx03/arenakv/pkg/server"
)

// fakeCounters is a Counters implementation with canned values, isolating
// the router's JSON shape from the dispatcher's concurrency.
type fakeCounters struct {
	ready  bool
	verbs  map[string]int64
	hits   int64
	misses int64
	hot    []server.HotKey
}

func (f fakeCounters) Ready() bool                      { return f.ready }
func (f fakeCounters) VerbCount(verb string) int64       { return f.verbs[verb] }
func (f fakeCounters) CacheHits() int64                  { return f.hits }
func (f fakeCounters) CacheMisses() int64                { return f.misses }
func (f fakeCounters) TopHotKeys(n int) []server.HotKey {
	if n < len(f.hot) {
		return f.hot[:n]
	}
	return f.hot
}

func TestHealth_ReflectsReadiness(t *testing.T) {
	a := arena.New(1<<16, 1<<12, 64)

	r := admin.Router(a, fakeCounters{ready: false})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/health with ready=false = %d, want 503", rec.Code)
	}

	r = admin.Router(a, fakeCounters{ready: true})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health with ready=true = %d, want 200", rec.Code)
	}
}

func TestDebugStats_ReturnsJSON(t *testing.T) {
	a := arena.New(1<<16, 1<<12, 64)
	a.Store().Set("k", "v")

	r := admin.Router(a, fakeCounters{ready: true, verbs: map[string]int64{"GET": 5}, hits: 3, misses: 2})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/debug/stats = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct == "" {
		t.Error("/debug/stats should set a Content-Type header")
	}
}

func TestDebugHotkeys_DefaultsToTen(t *testing.T) {
	a := arena.New(1<<16, 1<<12, 64)
	hot := make([]server.HotKey, 20)
	for i := range hot {
		hot[i] = server.HotKey{Key: "k", Count: int64(i)}
	}

	r := admin.Router(a, fakeCounters{ready: true, hot: hot})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/hotkeys", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/debug/hotkeys = %d, want 200", rec.Code)
	}
	var body struct {
		Hotkeys []server.HotKey `json:"hotkeys"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("/debug/hotkeys body: %v", err)
	}
	if len(body.Hotkeys) != 10 {
		t.Errorf("/debug/hotkeys returned %d keys, want 10", len(body.Hotkeys))
	}
}

func TestDebugFingerprint_ReturnsJSON(t *testing.T) {
	a := arena.New(1<<16, 1<<12, 64)

	r := admin.Router(a, fakeCounters{ready: true})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/fingerprint", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/debug/fingerprint = %d, want 200", rec.Code)
	}
}
