package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/classifier"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/config"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/database"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type testAPI struct {
	t      *testing.T
	app    *fiber.App
	engine *moderation.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	cfg := &config.Config{
		DatabaseURL: "sqlite://:memory:",
		JWTSecret:   secret,
		AdminIDs:    "mod-1",
		AdminToken:  "admin-token",
		CORSOrigins: "*",
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	contents := store.NewContents(db)
	heuristic := classifier.NewHeuristic()
	engine, err := moderation.NewEngine(moderation.Options{
		Reports:    store.NewReports(db),
		Contents:   contents,
		Classifier: heuristic,
		Identity:   identity.Provider{},
		Thresholds: moderation.DefaultThresholds(),
		Features:   moderation.DefaultFeatures(),
	})
	require.NoError(t, err)
	t.Cleanup(engine.Wait)

	app := fiber.New()
	Setup(app, cfg,
		handlers.NewHealthHandler(db),
		handlers.NewModerationHandler(engine),
		handlers.NewContentHandler(contents, heuristic),
	)
	return &testAPI{t: t, app: app, engine: engine}
}

func token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func (a *testAPI) as(sub string) string {
	return token(a.t, jwt.MapClaims{"sub": sub})
}

func (a *testAPI) do(method, path, bearer string, body any, headers ...string) (int, map[string]any) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(a.t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (a *testAPI) createPost(id, author, text string) {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/contents", a.as(author), map[string]any{
		"id": id, "type": "post", "sphere_id": "sphere-1", "text": text,
	})
	require.Equal(a.t, http.StatusCreated, status, body)
}

func (a *testAPI) report(contentID, reporter string) string {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/reports", a.as(reporter), map[string]any{
		"content_id": contentID, "content_type": "post", "reason": "spam",
	})
	require.Equal(a.t, http.StatusCreated, status, body)
	a.engine.Wait()
	return body["id"].(string)
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["db"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(raw), "go_goroutines"))
}

func TestRequiresToken(t *testing.T) {
	api := newTestAPI(t)
	status, body := api.do(http.MethodGet, "/api/reports", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, true, body["error"])

	status, _ = api.do(http.MethodGet, "/api/reports", token(t, jwt.MapClaims{}), nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestContentEndpoints(t *testing.T) {
	assert := assert.New(t)
	api := newTestAPI(t)
	author := api.as("0xauthor")

	status, body := api.do(http.MethodPost, "/api/contents", author, map[string]any{
		"id": "post-1", "type": "post", "text": "gm from the sphere",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal("0xauthor", body["author_id"])
	assert.Equal("active", body["status"])

	status, _ = api.do(http.MethodPost, "/api/contents", author, map[string]any{
		"id": "post-1", "type": "post", "text": "again",
	})
	assert.Equal(http.StatusConflict, status)

	status, _ = api.do(http.MethodPost, "/api/contents", author, map[string]any{
		"type": "post", "text": "email me at someone@example.com",
	})
	assert.Equal(http.StatusUnprocessableEntity, status)

	status, _ = api.do(http.MethodPost, "/api/contents", author, map[string]any{"type": "video", "text": "x"})
	assert.Equal(http.StatusBadRequest, status)

	status, body = api.do(http.MethodGet, "/api/contents/post-1", author, nil)
	assert.Equal(http.StatusOK, status)
	assert.Equal("post-1", body["id"])

	status, _ = api.do(http.MethodGet, "/api/contents/missing", author, nil)
	assert.Equal(http.StatusNotFound, status)

	api.createPost("post-2", "0xauthor", "second post in the sphere")
	status, body = api.do(http.MethodGet, "/api/contents?sphere_id=sphere-1", author, nil)
	assert.Equal(http.StatusOK, status)
	assert.EqualValues(1, body["total"])
	assert.Len(body["contents"], 1)

	status, body = api.do(http.MethodGet, "/api/contents?sphere_id=sphere-1&limit=500", author, nil)
	assert.Equal(http.StatusOK, status)
	assert.EqualValues(100, body["limit"])

	status, _ = api.do(http.MethodGet, "/api/contents", author, nil)
	assert.Equal(http.StatusBadRequest, status)
}

func TestReportAndVoteFlow(t *testing.T) {
	assert := assert.New(t)
	api := newTestAPI(t)
	api.createPost("post-1", "0xauthor", "a perfectly normal post")

	status, _ := api.do(http.MethodPost, "/api/reports", api.as("0xauthor"), map[string]any{
		"content_id": "post-1", "content_type": "post", "reason": "spam",
	})
	assert.Equal(http.StatusForbidden, status, "self report")

	status, _ = api.do(http.MethodPost, "/api/reports", api.as("0xreporter"), map[string]any{
		"content_id": "post-1", "content_type": "post", "reason": "boring",
	})
	assert.Equal(http.StatusBadRequest, status)

	id := api.report("post-1", "0xreporter")

	_, body := api.do(http.MethodGet, "/api/contents/post-1", api.as("0xreporter"), nil)
	assert.Equal("under_review", body["status"])

	decisions := []string{"remove", "keep", "remove", "keep", "remove"}
	for i, d := range decisions {
		status, body = api.do(http.MethodPost, "/api/reports/"+id+"/votes", api.as("voter-"+string(rune('a'+i))), map[string]any{"decision": d})
		require.Equal(t, http.StatusOK, status, body)
	}
	assert.Equal("resolved_removed", body["status"])
	assert.Equal("vote_threshold", body["resolution_cause"])

	status, _ = api.do(http.MethodPost, "/api/reports/"+id+"/votes", api.as("voter-z"), map[string]any{"decision": "keep"})
	assert.Equal(http.StatusConflict, status)

	status, body = api.do(http.MethodGet, "/api/reports/"+id+"/voting-status", api.as("voter-a"), nil)
	assert.Equal(http.StatusOK, status)
	assert.EqualValues(5, body["total"])
	assert.EqualValues(3, body["remove_count"])
	assert.Equal("remove", body["user_vote"])
	assert.EqualValues(0, body["time_remaining_ms"])

	_, body = api.do(http.MethodGet, "/api/contents/post-1", api.as("0xreporter"), nil)
	assert.Equal("removed", body["status"])

	status, body = api.do(http.MethodGet, "/api/moderation/stats", api.as("0xreporter"), nil)
	assert.Equal(http.StatusOK, status)
	assert.EqualValues(1, body["resolved_removed"])
	assert.EqualValues(5, body["community_votes"])

	status, body = api.do(http.MethodGet, "/api/reports?sphere_id=sphere-1&status=resolved_removed", api.as("0xreporter"), nil)
	assert.Equal(http.StatusOK, status)
	assert.EqualValues(1, body["total"])
}

func TestReportLookupErrors(t *testing.T) {
	api := newTestAPI(t)
	tok := api.as("0xreporter")

	status, _ := api.do(http.MethodGet, "/api/reports/not-a-uuid", tok, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = api.do(http.MethodGet, "/api/reports/6c1f9a52-9a65-4a4e-9d1c-0f0b5c1e7d11", tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = api.do(http.MethodGet, "/api/reports?status=archived", tok, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = api.do(http.MethodPost, "/api/reports/6c1f9a52-9a65-4a4e-9d1c-0f0b5c1e7d11/votes", tok, map[string]any{"decision": "maybe"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestThresholdsAndCheck(t *testing.T) {
	assert := assert.New(t)
	api := newTestAPI(t)
	tok := api.as("0xanyone")

	status, body := api.do(http.MethodGet, "/api/moderation/thresholds", tok, nil)
	assert.Equal(http.StatusOK, status)
	assert.EqualValues(5, body["min_votes_required"])
	assert.InDelta(0.6, body["removal_threshold"], 1e-9)
	assert.EqualValues((72 * time.Hour).Milliseconds(), body["voting_period_ms"])

	status, body = api.do(http.MethodPost, "/api/moderation/check", tok, map[string]any{"text": "how to build a bomb"})
	assert.Equal(http.StatusOK, status)
	assert.InDelta(0.9, body["confidence"], 1e-9)
	assert.Equal([]any{"terrorism"}, body["flags"])
}

func TestAdminEndpoints(t *testing.T) {
	assert := assert.New(t)
	api := newTestAPI(t)
	api.createPost("post-1", "0xauthor", "a perfectly normal post")
	id := api.report("post-1", "0xreporter")
	notesPath := "/api/admin/moderation/reports/" + id + "/notes"

	status, _ := api.do(http.MethodPut, notesPath, api.as("0xreporter"), map[string]any{"notes": "x"})
	assert.Equal(http.StatusForbidden, status)

	status, body := api.do(http.MethodPut, notesPath, api.as("mod-1"), map[string]any{"notes": "  looks fine  "})
	assert.Equal(http.StatusOK, status)
	assert.Equal("looks fine", body["moderator_notes"])

	status, _ = api.do(http.MethodPut, notesPath, token(t, jwt.MapClaims{"sub": "ops", "role": "admin"}), map[string]any{"notes": "role admin"})
	assert.Equal(http.StatusOK, status)

	status, body = api.do(http.MethodPost, "/api/admin/moderation/expire", api.as("0xreporter"), nil, "X-Admin-Token", "admin-token")
	assert.Equal(http.StatusOK, status)
	assert.EqualValues(0, body["resolved"])
}
