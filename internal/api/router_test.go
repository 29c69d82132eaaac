package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"github.com/Arcshia42/immigration-news/internal/collector"
	"github.com/Arcshia42/immigration-news/internal/scheduler"
	"github.com/Arcshia42/immigration-news/internal/storage"
)

type stubRunner struct {
	report *scheduler.Report
	err    error
	ctxErr error
}

func (r *stubRunner) RunOnce(ctx context.Context) (*scheduler.Report, error) {
	r.ctxErr = ctx.Err()
	return r.report, r.err
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T, runner Runner, user, pass string) (*gin.Engine, *storage.FileStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fs := storage.NewFileStore(t.TempDir())
	items := []collector.NewsItem{{
		Title:  "[NIA] 国家移民管理局发布新规",
		Link:   "https://www.nia.gov.cn/n1.html",
		Source: "中国国家移民管理局",
		Date:   "2024-05-01",
	}}
	ctx := context.Background()
	if err := fs.Write(ctx, storage.SnapshotName("2024-05-01"), items); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := fs.Write(ctx, storage.LatestName, items); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return NewRouter(NewServer(fs, runner), user, pass), fs
}

func do(r *gin.Engine, method, path string) (*httptest.ResponseRecorder, envelope) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestHealth(t *testing.T) {
	r, _ := setup(t, nil, "", "")
	w, _ := do(r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListNewsLatestAndByDate(t *testing.T) {
	r, _ := setup(t, nil, "", "")

	w, env := do(r, http.MethodGet, "/api/v1/news")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", env.Code)
	var items []collector.NewsItem
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	assert.Equal(t, 1, len(items))
	assert.Equal(t, "[NIA] 国家移民管理局发布新规", items[0].Title)

	w, _ = do(r, http.MethodGet, "/api/v1/news?date=2024-05-01")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(r, http.MethodGet, "/api/v1/news?date=2023-01-01")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", env.Code)

	w, _ = do(r, http.MethodGet, "/api/v1/news?date=yesterday")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSnapshots(t *testing.T) {
	r, _ := setup(t, nil, "", "")
	w, env := do(r, http.MethodGet, "/api/v1/snapshots")
	assert.Equal(t, http.StatusOK, w.Code)
	var names []string
	if err := json.Unmarshal(env.Data, &names); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	assert.Equal(t, []string{"news_2024-05-01"}, names)
}

func TestCollect(t *testing.T) {
	r, _ := setup(t, nil, "", "")
	w, _ := do(r, http.MethodPost, "/api/v1/collect")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	report := &scheduler.Report{RunID: "run-1", Date: "2024-05-02", Snapshots: []string{"news_2024-05-02", "latest"}}
	r, _ = setup(t, &stubRunner{report: report}, "", "")
	w, env := do(r, http.MethodPost, "/api/v1/collect")
	assert.Equal(t, http.StatusOK, w.Code)
	var data struct {
		RunID string `json:"runId"`
		Total int    `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	assert.Equal(t, "run-1", data.RunID)

	r, _ = setup(t, &stubRunner{err: scheduler.ErrRunInProgress}, "", "")
	w, _ = do(r, http.MethodPost, "/api/v1/collect")
	assert.Equal(t, http.StatusConflict, w.Code)

	r, _ = setup(t, &stubRunner{err: &storage.PersistError{Name: "latest", Err: errors.New("disk full")}}, "", "")
	w, env = do(r, http.MethodPost, "/api/v1/collect")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "persist_failed", env.Code)
}

func TestBasicAuth(t *testing.T) {
	r, _ := setup(t, nil, "user", "pass")

	w, _ := do(r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(r, http.MethodGet, "/api/v1/news")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/news", nil)
	req.SetBasicAuth("user", "pass")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

// 客户端断开后采集照常进行，runner 拿到的 ctx 不随请求取消
func TestCollectDetachedFromRequest(t *testing.T) {
	runner := &stubRunner{report: &scheduler.Report{RunID: "run-2"}}
	r, _ := setup(t, runner, "", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/collect", nil).WithContext(ctx)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	if runner.ctxErr != nil {
		t.Fatalf("runner ctx cancelled with request: %v", runner.ctxErr)
	}

	r, _ = setup(t, &stubRunner{err: context.Canceled}, "", "")
	w, env := do(r, http.MethodPost, "/api/v1/collect")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", env.Code)
}
