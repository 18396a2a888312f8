package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mgriesel/lumenfield/internal/analyzer"
	"github.com/mgriesel/lumenfield/internal/effects"
	"github.com/mgriesel/lumenfield/internal/mode"
	"github.com/mgriesel/lumenfield/internal/params"
)

// stubController records applied updates and answers with a canned status,
// standing in for the app so handler behavior can be checked in isolation.
type stubController struct {
	mu      sync.Mutex
	status  Status
	applied []Update
	fail    error
}

func newStubController() *stubController {
	return &stubController{
		status: Status{
			Mode:     "drift",
			Preset:   "clean",
			Settings: params.Defaults(),
			Effects:  effects.Targets{Bloom: 0.4, Exposure: 1.0},
			Features: analyzer.Features{BassSmooth: 0.5, BeatIntensity: 0.2},
			FPS:      60,
		},
	}
}

func (c *stubController) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *stubController) Modes() []mode.Info {
	return []mode.Info{
		{ID: "drift", Name: "Drift"},
		{ID: "vortex", Name: "Vortex"},
	}
}

func (c *stubController) Presets() []effects.Preset {
	return effects.BuiltinPresets()
}

func (c *stubController) Apply(u Update) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return Status{}, c.fail
	}
	c.applied = append(c.applied, u)
	if u.Mode != nil {
		c.status.Mode = *u.Mode
	}
	if u.Preset != nil {
		c.status.Preset = *u.Preset
	}
	if u.FPS != nil {
		c.status.FPS = *u.FPS
	}
	c.status.Settings = c.status.Settings.Apply(u.Settings)
	return c.status, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *stubController) {
	t.Helper()
	ctrl := newStubController()
	srv := httptest.NewServer(NewServer(ctrl, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, ctrl
}

func getJSON(t *testing.T, url string, into any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("GET %s: content type %q", url, ct)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("GET %s: decode: %v", url, err)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var st Status
	getJSON(t, srv.URL+"/api/status", &st)

	if st.Mode != "drift" || st.Preset != "clean" {
		t.Fatalf("status = %+v, want mode drift preset clean", st)
	}
	if st.Settings.ParticleCount != params.Defaults().ParticleCount {
		t.Fatalf("settings did not round-trip: %+v", st.Settings)
	}
	if st.Features.BassSmooth != 0.5 {
		t.Fatalf("features did not round-trip: %+v", st.Features)
	}
}

func TestUpdateAppliesPartialChange(t *testing.T) {
	srv, ctrl := newTestServer(t)

	body := `{"mode":"vortex","settings":{"speed":2.5}}`
	resp, err := http.Post(srv.URL+"/api/update", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Mode != "vortex" {
		t.Fatalf("mode = %q, want vortex", st.Mode)
	}
	if st.Settings.Speed != 2.5 {
		t.Fatalf("speed = %v, want 2.5", st.Settings.Speed)
	}
	if st.Preset != "clean" {
		t.Fatalf("preset changed unexpectedly: %q", st.Preset)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.applied) != 1 {
		t.Fatalf("applied %d updates, want 1", len(ctrl.applied))
	}
	u := ctrl.applied[0]
	if u.Preset != nil || u.FPS != nil {
		t.Fatalf("untouched fields were set: %+v", u)
	}
	if u.Settings.Speed == nil || *u.Settings.Speed != 2.5 {
		t.Fatalf("settings patch lost the speed: %+v", u.Settings)
	}
	if u.Settings.ParticleCount != nil {
		t.Fatalf("particleCount should stay nil in a partial patch")
	}
}

func TestUpdateRejectsGet(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/update")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestUpdateRejectsMalformedBody(t *testing.T) {
	srv, ctrl := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/update", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.applied) != 0 {
		t.Fatalf("malformed body reached the controller")
	}
}

func TestUpdatePropagatesControllerError(t *testing.T) {
	srv, ctrl := newTestServer(t)
	ctrl.mu.Lock()
	ctrl.fail = errors.New(`unknown mode "nope"`)
	ctrl.mu.Unlock()

	resp, err := http.Post(srv.URL+"/api/update", "application/json", strings.NewReader(`{"mode":"nope"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(buf.String(), "unknown mode") {
		t.Fatalf("body %q does not carry the controller error", buf.String())
	}
}

func TestModesAndPresetsListings(t *testing.T) {
	srv, _ := newTestServer(t)

	var modes []mode.Info
	getJSON(t, srv.URL+"/api/modes", &modes)
	if len(modes) != 2 || modes[0].ID != "drift" {
		t.Fatalf("modes = %+v", modes)
	}

	var presets []effects.Preset
	getJSON(t, srv.URL+"/api/presets", &presets)
	if len(presets) == 0 {
		t.Fatalf("no presets listed")
	}
	seen := false
	for _, p := range presets {
		if p.ID == "neon" {
			seen = true
		}
	}
	if !seen {
		t.Fatalf("builtin preset missing from listing: %+v", presets)
	}
}

func TestIndexServesEmbeddedPanel(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(buf.String(), "lumenfield") {
		t.Fatalf("index page looks wrong")
	}

	resp2, err := http.Get(srv.URL + "/definitely-not-here")
	if err != nil {
		t.Fatalf("GET missing: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("missing path status = %d, want 404", resp2.StatusCode)
	}
}

func TestUpdateEmpty(t *testing.T) {
	if !(Update{}).Empty() {
		t.Fatalf("zero update should be empty")
	}
	m := "drift"
	if (Update{Mode: &m}).Empty() {
		t.Fatalf("mode change should not be empty")
	}
	v := 2.0
	if (Update{Settings: params.Patch{Speed: &v}}).Empty() {
		t.Fatalf("settings patch should not be empty")
	}
}
