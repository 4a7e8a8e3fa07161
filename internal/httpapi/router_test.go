package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/abramau/gavrila/internal/history"
	"github.com/abramau/gavrila/internal/httpapi/handlers"
)

const testSecret = "test-secret"

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&history.Row{}, &history.ChatEpoch{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestRouter(t *testing.T) (*gin.Engine, *history.Store, *history.EpochRegistry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	store := history.NewStore(db)
	epochs := history.NewEpochRegistry(db)
	h := handlers.NewHandler(store, epochs, nil, nil, 30*24*time.Hour)
	return NewRouter(h, testSecret), store, epochs
}

func opsToken(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func doReq(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPingIsPublic(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doReq(r, http.MethodGet, "/ping", "")
	if w.Code != http.StatusOK {
		t.Fatalf("ping status = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestOpsRequiresToken(t *testing.T) {
	r, _, _ := newTestRouter(t)

	if w := doReq(r, http.MethodPost, "/ops/purge", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).
		SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if w := doReq(r, http.MethodPost, "/ops/purge", bad); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad signature, got %d", w.Code)
	}
}

func TestPurgeEndpoint(t *testing.T) {
	r, store, _ := newTestRouter(t)

	// one stale row, one fresh
	if err := store.Append(context.Background(), 1, 0, history.RoleUser, 1, "m1", "fresh"); err != nil {
		t.Fatalf("append: %v", err)
	}

	w := doReq(r, http.MethodPost, "/ops/purge", opsToken(t))
	if w.Code != http.StatusOK {
		t.Fatalf("purge status = %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Removed int64 `json:"removed"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Removed != 0 {
		t.Fatalf("fresh rows removed: %d", resp.Data.Removed)
	}
}

func TestChatHistoryEndpointEpochScoping(t *testing.T) {
	r, store, epochs := newTestRouter(t)
	ctx := context.Background()

	if err := store.Append(ctx, 42, 0, history.RoleUser, 1, "m1", "old talk"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := epochs.Advance(ctx, 42); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := store.Append(ctx, 42, 1, history.RoleUser, 1, "m2", "new talk"); err != nil {
		t.Fatalf("append: %v", err)
	}

	type resp struct {
		Data struct {
			Epoch int64         `json:"epoch"`
			Rows  []history.Row `json:"rows"`
		} `json:"data"`
	}

	// default: current epoch
	w := doReq(r, http.MethodGet, "/ops/chats/42/history", opsToken(t))
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d body=%s", w.Code, w.Body.String())
	}
	var cur resp
	if err := json.Unmarshal(w.Body.Bytes(), &cur); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cur.Data.Epoch != 1 || len(cur.Data.Rows) != 1 || cur.Data.Rows[0].Content != "new talk" {
		t.Fatalf("unexpected current-epoch payload: %+v", cur.Data)
	}

	// explicit orphaned epoch
	w = doReq(r, http.MethodGet, "/ops/chats/42/history?epoch=0", opsToken(t))
	var old resp
	if err := json.Unmarshal(w.Body.Bytes(), &old); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if old.Data.Epoch != 0 || len(old.Data.Rows) != 1 || old.Data.Rows[0].Content != "old talk" {
		t.Fatalf("unexpected orphaned-epoch payload: %+v", old.Data)
	}
}

func TestChatHistoryRejectsBadParams(t *testing.T) {
	r, _, _ := newTestRouter(t)

	if w := doReq(r, http.MethodGet, "/ops/chats/abc/history", opsToken(t)); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad chat id, got %d", w.Code)
	}
	if w := doReq(r, http.MethodGet, "/ops/chats/42/history?epoch=-1", opsToken(t)); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative epoch, got %d", w.Code)
	}
}
