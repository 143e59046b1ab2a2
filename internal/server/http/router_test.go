package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goalbridge/internal/app/engine"
	"goalbridge/internal/domain/framework"
	"goalbridge/internal/infra/frameworkstore"
	"goalbridge/internal/shared/logging"
)

var fixedNow = time.Date(2026, 5, 15, 12, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T, store *frameworkstore.MemoryStore, rateLimit RateLimitConfig) (http.Handler, *engine.Pool) {
	t.Helper()
	pool, err := engine.NewPool(engine.Deps{
		Configurations: store,
		Rules:          store,
		Metrics:        store,
		Audit:          store,
		Logger:         logging.Nop(),
		Now:            func() time.Time { return fixedNow },
	}, engine.PoolConfig{Size: 8, TTL: time.Minute}, nil)
	require.NoError(t, err)
	return NewRouter(RouterDeps{Pool: pool, Logger: logging.Nop(), RateLimit: rateLimit}), pool
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func keyResultPayload() map[string]any {
	return map[string]any{
		"id":              "kr-1",
		"title":           "Reach 100 paying customers",
		"owner_id":        "user-1",
		"parent_id":       "obj-0",
		"timeframe_start": "2026-04-01T00:00:00Z",
		"timeframe_end":   "2026-06-30T00:00:00Z",
		"timeframe_type":  "quarter",
		"current_value":   50,
		"target_value":    100,
		"progress_method": "decimal",
		"objective_type":  "key_result",
		"status":          "active",
		"framework_attributes": map[string]any{
			"start_value": 0,
		},
	}
}

func drainPool(t *testing.T, pool *engine.Pool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, pool.Drain(ctx))
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t, frameworkstore.NewMemoryStore(), RateLimitConfig{})
	rec := doJSON(t, h, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestHealthReportsFailingDependency(t *testing.T) {
	pool, err := engine.NewPool(engine.Deps{}, engine.PoolConfig{}, nil)
	require.NoError(t, err)
	h := NewRouter(RouterDeps{Pool: pool, Health: func(context.Context) error { return errors.New("db down") }})

	rec := doJSON(t, h, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTranslateEndpoint(t *testing.T) {
	store := frameworkstore.NewMemoryStore()
	h, pool := newTestRouter(t, store, RateLimitConfig{})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/translate", map[string]any{
		"objective":        keyResultPayload(),
		"target_framework": "okr",
		"organization_id":  "org-1",
		"user_id":          "user-9",
	}, map[string]string{headerRequestID: "req-42"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "req-42", rec.Header().Get(headerRequestID))

	var view framework.TranslatedObjective
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, framework.KindOKR, view.Framework)
	assert.Equal(t, 0.5, view.Fields["score"])
	assert.Equal(t, "Behind", view.Progress.Status)

	drainPool(t, pool)
	history := store.History()
	require.Len(t, history, 1)
	assert.Equal(t, "user-9", history[0].UserID)
}

func TestTranslateEndpointErrors(t *testing.T) {
	h, _ := newTestRouter(t, frameworkstore.NewMemoryStore(), RateLimitConfig{})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/translate", map[string]any{
		"objective":        keyResultPayload(),
		"target_framework": "kanban",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := keyResultPayload()
	bad["status"] = "paused"
	rec = doJSON(t, h, http.MethodPost, "/api/v1/translate", map[string]any{
		"objective":        bad,
		"target_framework": "okr",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/translate", "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/translate", map[string]any{"objective": keyResultPayload()}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, frameworkstore.NewMemoryStore(), RateLimitConfig{})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/translate/bulk", map[string]any{
		"items":            []any{keyResultPayload(), map[string]any{"title": "bad", "timeframe_end": "soon"}},
		"target_framework": "4dx",
	}, map[string]string{headerOrganizationID: "org-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp bulkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
}

func TestPreviewValidateAndCompatibility(t *testing.T) {
	h, _ := newTestRouter(t, frameworkstore.NewMemoryStore(), RateLimitConfig{})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/translate/preview", map[string]any{
		"objective":        keyResultPayload(),
		"target_framework": "eos",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var preview engine.Preview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Equal(t, framework.KindEOS, preview.Translation.Framework)
	assert.Equal(t, framework.KindEOS, preview.Compatibility.Framework)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/validate", map[string]any{
		"objective":        keyResultPayload(),
		"target_framework": "scaling_up",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result framework.ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotNil(t, result.Errors)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/compatibility", map[string]any{
		"objectives":       []any{},
		"target_framework": "okr",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary engine.CompatibilitySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Zero(t, summary.Score)
}

func TestHybridEndpoint(t *testing.T) {
	store := frameworkstore.NewMemoryStore()
	store.PutConfiguration(framework.Configuration{OrganizationID: "org-1", GoalFramework: framework.KindOKR})
	store.PutConfiguration(framework.Configuration{
		OrganizationID:   "org-2",
		GoalFramework:    framework.KindOKR,
		MeetingFramework: framework.KindEOS,
		AllowHybrid:      true,
	})
	h, _ := newTestRouter(t, store, RateLimitConfig{})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/translate/hybrid", map[string]any{
		"objective":       keyResultPayload(),
		"organization_id": "org-1",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/translate/hybrid", map[string]any{
		"objective": keyResultPayload(),
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/translate/hybrid", map[string]any{
		"objective":       keyResultPayload(),
		"organization_id": "org-2",
		"business_area":   "meetings",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view framework.TranslatedObjective
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, framework.KindEOS, view.Framework)
}

func TestRecommendationEndpoint(t *testing.T) {
	store := frameworkstore.NewMemoryStore()
	employees := int64(100)
	store.PutSnapshot("org-1", framework.OrganizationSnapshot{EmployeeCount: &employees})
	h, _ := newTestRouter(t, store, RateLimitConfig{})

	rec := doJSON(t, h, http.MethodGet, "/api/v1/organizations/org-1/recommendation", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var recommendation engine.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recommendation))
	assert.NotEmpty(t, recommendation.Recommended)
	assert.LessOrEqual(t, len(recommendation.Alternatives), 2)
	assert.Equal(t, 100, recommendation.Metrics.EmployeeCount)
}

func TestFrameworksEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, frameworkstore.NewMemoryStore(), RateLimitConfig{})
	rec := doJSON(t, h, http.MethodGet, "/api/v1/frameworks", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Frameworks []engine.FrameworkInfo `json:"frameworks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Frameworks, 4)
}

func TestRateLimitPerOrganization(t *testing.T) {
	h, _ := newTestRouter(t, frameworkstore.NewMemoryStore(), RateLimitConfig{RequestsPerMinute: 1, Burst: 1})
	headers := map[string]string{headerOrganizationID: "org-1"}

	first := doJSON(t, h, http.MethodGet, "/api/v1/frameworks", nil, headers)
	assert.Equal(t, http.StatusOK, first.Code)
	second := doJSON(t, h, http.MethodGet, "/api/v1/frameworks", nil, headers)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	other := doJSON(t, h, http.MethodGet, "/api/v1/frameworks", nil, map[string]string{headerOrganizationID: "org-2"})
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestMapDomainError(t *testing.T) {
	status, _ := mapDomainError(&framework.UnsupportedFrameworkError{Framework: "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = mapDomainError(&framework.HybridNotEnabledError{})
	assert.Equal(t, http.StatusConflict, status)
	status, _ = mapDomainError(framework.ErrNotInitialized)
	assert.Equal(t, http.StatusConflict, status)
	status, _ = mapDomainError(errors.New("other"))
	assert.Zero(t, status)
}
