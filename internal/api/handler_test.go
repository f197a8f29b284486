package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/insightdelivered/bank-notify/internal/announce"
	"github.com/insightdelivered/bank-notify/internal/models"
	"github.com/insightdelivered/bank-notify/internal/player"
	"github.com/insightdelivered/bank-notify/internal/settings"
	"github.com/insightdelivered/bank-notify/internal/writer"
)

type fakePlayer struct {
	mu     sync.Mutex
	played []models.Announcement
	err    error
}

func (f *fakePlayer) Play(a models.Announcement) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.played = append(f.played, a)
	return uuid.New(), nil
}

type fakeJournal struct {
	entries []writer.Entry
}

func (f *fakeJournal) Record(entries ...writer.Entry) error {
	f.entries = append(f.entries, entries...)
	return nil
}

type testEnv struct {
	app     *fiber.App
	player  *fakePlayer
	journal *fakeJournal
	store   *settings.Store
}

func setupTestApp(t *testing.T) *testEnv {
	t.Helper()
	store, err := settings.Open(filepath.Join(t.TempDir(), "bank_preferences.yaml"), nil)
	if err != nil {
		t.Fatalf("open settings: %v", err)
	}
	env := &testEnv{player: &fakePlayer{}, journal: &fakeJournal{}, store: store}
	env.app = NewApp(&Handler{
		Settings: store,
		Player:   env.player,
		Journal:  env.journal,
	})
	return env
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestApp(t)

	resp, body := doJSON(t, env.app, "GET", "/api/health", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", result["status"])
	}
}

func TestNotifyEndpointAnnounces(t *testing.T) {
	env := setupTestApp(t)

	resp, body := doJSON(t, env.app, "POST", "/api/notify",
		`{"title":"Thong bao thay doi so du tai khoan ABC","body":"TK 123456789(VND) + 1,500,000 luc 10:15"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var result NotifyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.Success || !result.Announced || result.Announcement == nil {
		t.Fatalf("expected announcement, got %+v", result)
	}
	want := "Số tiền 1500000 đồng đã được chuyển vào tài khoản ngân hàng ACB"
	if result.Announcement.SpokenText != want {
		t.Errorf("got %q, want %q", result.Announcement.SpokenText, want)
	}
	if _, err := uuid.Parse(result.ID); err != nil {
		t.Errorf("expected uuid id, got %q", result.ID)
	}
	if len(env.player.played) != 1 {
		t.Errorf("expected 1 played announcement, got %d", len(env.player.played))
	}
	if len(env.journal.entries) != 1 {
		t.Errorf("expected 1 journal entry, got %d", len(env.journal.entries))
	}
}

func TestNotifyEndpointIgnoresUnrelated(t *testing.T) {
	env := setupTestApp(t)

	resp, body := doJSON(t, env.app, "POST", "/api/notify", `{"title":"Quảng cáo","body":"Giảm giá 50%"}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result NotifyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.Success || result.Announced {
		t.Errorf("expected silent success, got %+v", result)
	}
	if len(env.player.played) != 0 {
		t.Error("nothing should be played")
	}
}

func TestNotifyEndpointRespectsDisabledBank(t *testing.T) {
	env := setupTestApp(t)
	if err := env.store.SetEnabled(models.SourceTechcombank, false); err != nil {
		t.Fatalf("disable: %v", err)
	}

	_, body := doJSON(t, env.app, "POST", "/api/notify", `{"title":"+ VND 750,000"}`)

	var result NotifyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Announced {
		t.Errorf("disabled bank announced: %+v", result)
	}
}

func TestNotifyEndpointEmptyBody(t *testing.T) {
	env := setupTestApp(t)

	resp, _ := doJSON(t, env.app, "POST", "/api/notify", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 for empty notification, got %d", resp.StatusCode)
	}
}

func TestNotifyEndpointBadJSON(t *testing.T) {
	env := setupTestApp(t)

	resp, _ := doJSON(t, env.app, "POST", "/api/notify", "{not json")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestNotifyEndpointPlayerClosed(t *testing.T) {
	env := setupTestApp(t)
	env.player.err = player.ErrClosed

	resp, _ := doJSON(t, env.app, "POST", "/api/notify", `{"title":"+ VND 750,000"}`)
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
	if len(env.journal.entries) != 0 {
		t.Error("unplayed announcement should not be journaled")
	}
}

func TestTestEndpointPlaysSample(t *testing.T) {
	env := setupTestApp(t)

	resp, _ := doJSON(t, env.app, "POST", "/api/test", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(env.player.played) != 1 || env.player.played[0].SpokenText != announce.SampleText {
		t.Errorf("expected sample announcement, got %+v", env.player.played)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	env := setupTestApp(t)

	resp, body := doJSON(t, env.app, "PUT", "/api/settings", `{"OCB_enabled":false,"sound_volume":0.8}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, env.app, "GET", "/api/settings", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var values map[string]any
	if err := json.Unmarshal(body, &values); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if values["OCB_enabled"] != false {
		t.Errorf("OCB_enabled: got %v", values["OCB_enabled"])
	}
	if values["ACB_enabled"] != true {
		t.Errorf("ACB_enabled: got %v", values["ACB_enabled"])
	}
	if values["sound_volume"] != 0.8 {
		t.Errorf("sound_volume: got %v", values["sound_volume"])
	}
}

func TestSettingsEndpointRejectsBadInput(t *testing.T) {
	env := setupTestApp(t)

	tests := []string{
		`{"Vietcombank_enabled":true}`,
		`{"sound_volume":1.5}`,
		`{"ACB_enabled":"yes"}`,
		`[1,2]`,
	}
	for _, body := range tests {
		resp, _ := doJSON(t, env.app, "PUT", "/api/settings", body)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, resp.StatusCode)
		}
	}
}
