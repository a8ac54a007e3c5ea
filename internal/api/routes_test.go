package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/models"
	"github.com/playmatatu/snooker/internal/store"
	"github.com/playmatatu/snooker/internal/ws"
)

type fakeFrames struct {
	frames []store.FrameRecord
	err    error
}

func (f *fakeFrames) RecentFrames(ctx context.Context, token string, limit int) ([]store.FrameRecord, error) {
	return f.frames, f.err
}

func (f *fakeFrames) TableSummary(ctx context.Context, token string) (store.Summary, error) {
	return store.Summary{FramesPlayed: len(f.frames)}, f.err
}

func newTestRouter(t *testing.T, hist *fakeFrames) (*gin.Engine, *game.TableManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Environment:         "production",
		JWTSecret:           "api-secret",
		SeatTokenHours:      1,
		MaxTables:           2,
		BroadcastEveryTicks: 2,
		WSMessagesPerSecond: 60,
		WSMessageBurst:      30,
	}
	manager := game.NewTableManager(cfg, config.DefaultTableConfig(), nil, nil, nil)
	t.Cleanup(manager.Shutdown)

	router := gin.New()
	SetupRoutes(router, cfg, manager, ws.NewHub(), hist)
	return router, manager
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndJoinTable(t *testing.T) {
	router, manager := newTestRouter(t, &fakeFrames{})

	w := doJSON(router, http.MethodPost, "/api/v1/tables", models.CreateTableRequest{
		Player1: "Ann", Passcode: "9999", Layout: "RANDOM",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created models.SeatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if created.SeatToken == "" || len(created.Seats) != 1 || created.Seats[0] != 1 {
		t.Errorf("unexpected seat response %+v", created)
	}
	if _, err := manager.VerifySeatToken(created.SeatToken); err != nil {
		t.Errorf("issued token does not verify: %v", err)
	}

	joinPath := "/api/v1/tables/" + created.Table + "/join"
	if w := doJSON(router, http.MethodPost, joinPath, models.JoinTableRequest{Name: "Bob", Passcode: "1"}); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for a wrong passcode, got %d", w.Code)
	}
	w = doJSON(router, http.MethodPost, joinPath, models.JoinTableRequest{Name: "Bob", Passcode: "9999"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var joined models.SeatResponse
	json.Unmarshal(w.Body.Bytes(), &joined)
	if len(joined.Seats) != 1 || joined.Seats[0] != 2 {
		t.Errorf("expected seat 2, got %v", joined.Seats)
	}
	if w := doJSON(router, http.MethodPost, joinPath, models.JoinTableRequest{Passcode: "9999"}); w.Code != http.StatusConflict {
		t.Errorf("expected 409 for a full table, got %d", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/api/v1/tables/"+created.Table, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got struct {
		Open  bool `json:"open"`
		Table struct {
			Seats []struct {
				Name string `json:"name"`
			} `json:"seats"`
		} `json:"table"`
		State struct {
			Match struct {
				Layout string `json:"layout"`
			} `json:"match"`
		} `json:"state"`
	}
	json.Unmarshal(w.Body.Bytes(), &got)
	if !got.Open || got.State.Match.Layout != "RANDOM" || len(got.Table.Seats) != 2 || got.Table.Seats[1].Name != "Bob" {
		t.Errorf("unexpected table view %+v", got)
	}
}

func TestCreateTableValidation(t *testing.T) {
	router, _ := newTestRouter(t, &fakeFrames{})

	if w := doJSON(router, http.MethodPost, "/api/v1/tables", map[string]string{"layout": "DIAMOND"}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown layout, got %d", w.Code)
	}
	if w := doJSON(router, http.MethodPost, "/api/v1/tables", map[string]string{"rules_mode": "EASY"}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown rules mode, got %d", w.Code)
	}
}

func TestCreateTableLimit(t *testing.T) {
	router, _ := newTestRouter(t, &fakeFrames{})

	for i := 0; i < 2; i++ {
		if w := doJSON(router, http.MethodPost, "/api/v1/tables", models.CreateTableRequest{}); w.Code != http.StatusCreated {
			t.Fatalf("table %d: expected 201, got %d", i, w.Code)
		}
	}
	if w := doJSON(router, http.MethodPost, "/api/v1/tables", models.CreateTableRequest{}); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 past the limit, got %d", w.Code)
	}
}

func TestMissingTable(t *testing.T) {
	router, _ := newTestRouter(t, &fakeFrames{})

	if w := doJSON(router, http.MethodGet, "/api/v1/tables/nope", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if w := doJSON(router, http.MethodPost, "/api/v1/tables/nope/join", models.JoinTableRequest{}); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 on join, got %d", w.Code)
	}
}

func TestTableFrames(t *testing.T) {
	hist := &fakeFrames{frames: []store.FrameRecord{{TableToken: "abc", FrameNo: 1, Score1: 12}}}
	router, _ := newTestRouter(t, hist)

	w := doJSON(router, http.MethodGet, "/api/v1/tables/abc/frames", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp models.FramesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(resp.Frames) != 1 || resp.Frames[0].Score1 != 12 || resp.Summary.FramesPlayed != 1 {
		t.Errorf("unexpected frames response %+v", resp)
	}

	hist.err = errors.New("db down")
	if w := doJSON(router, http.MethodGet, "/api/v1/tables/abc/frames", nil); w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t, &fakeFrames{})

	w := doJSON(router, http.MethodGet, "/api/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", w.Code)
	}
	w = doJSON(router, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("snooker_")) {
		t.Errorf("metrics endpoint missing snooker collectors (status %d)", w.Code)
	}
}
