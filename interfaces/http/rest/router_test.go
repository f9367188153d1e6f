package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnpath-backend/application/services"
	"learnpath-backend/infrastructure/config"
	"learnpath-backend/infrastructure/persistence/docstore"
	"learnpath-backend/infrastructure/persistence/memory"
	"learnpath-backend/pkg/auth"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Environment: "development",
		EnableCORS:  false,
	}

	logger := zap.NewNop()
	store := memory.NewStore()
	service := services.NewProgressService(
		docstore.NewPathRepository(store, logger),
		docstore.NewFeedbackRepository(store, logger),
		logger,
	)

	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: testSecret})
	require.NoError(t, err)

	server := httptest.NewServer(NewRouter(cfg, service, validator, logger).Setup())
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, method, url string, body []byte, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func asUser(userID string) map[string]string {
	return map[string]string{"X-User-ID": userID}
}

func storeTestPath(t *testing.T, server *httptest.Server) {
	t.Helper()

	body := []byte(`{
		"name": "Go from scratch",
		"description": "An introduction to Go",
		"sections": [
			{"id": 11, "name": "Concurrency", "sequence": 2, "items": [
				{"id": 110, "name": "Goroutines", "sequence": 1}
			]},
			{"id": 10, "name": "Basics", "sequence": 1, "items": [
				{"id": 101, "name": "Types", "sequence": 2},
				{"id": 100, "name": "Hello world", "sequence": 1, "url": "https://example.com/hello"}
			]}
		]
	}`)

	resp, _ := doRequest(t, http.MethodPut, server.URL+"/api/v1/paths/1", body, asUser("editor"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_HealthEndpoints(t *testing.T) {
	server := newTestServer(t)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestRouter_RequiresIdentity(t *testing.T) {
	server := newTestServer(t)

	resp, body := doRequest(t, http.MethodGet, server.URL+"/api/v1/paths", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestRouter_AcceptsBearerToken(t *testing.T) {
	server := newTestServer(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	resp, _ := doRequest(t, http.MethodGet, server.URL+"/api/v1/paths", nil,
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_RejectsForgedToken(t *testing.T) {
	server := newTestServer(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "mallory",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	resp, _ := doRequest(t, http.MethodGet, server.URL+"/api/v1/paths", nil,
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_StoreAndGetPath(t *testing.T) {
	server := newTestServer(t)
	storeTestPath(t, server)

	resp, body := doRequest(t, http.MethodGet, server.URL+"/api/v1/paths/1", nil, asUser("alice"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Go from scratch", data["name"])
	assert.Equal(t, "An introduction to Go", data["description"])

	sections := data["sections"].([]interface{})
	require.Len(t, sections, 2)
	first := sections[0].(map[string]interface{})
	assert.Equal(t, "Basics", first["name"], "sections come back in sequence order")

	items := first["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "Hello world", items[0].(map[string]interface{})["name"])
}

func TestRouter_ListPaths(t *testing.T) {
	server := newTestServer(t)
	storeTestPath(t, server)

	resp, body := doRequest(t, http.MethodGet, server.URL+"/api/v1/paths", nil, asUser("alice"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	summary := data[0].(map[string]interface{})
	assert.Equal(t, "Go from scratch", summary["name"])
	assert.Equal(t, float64(1), summary["id"])
}

func TestRouter_FeedbackAndProgress(t *testing.T) {
	server := newTestServer(t)
	storeTestPath(t, server)

	resp, body := doRequest(t, http.MethodPost, server.URL+"/api/v1/items/100/feedback",
		[]byte(`{"pathId": 1, "rating": 4, "completed": true}`), asUser("alice"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	item := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), item["ratingCount"])
	assert.Equal(t, float64(4), item["ratingTotal"])

	resp, body = doRequest(t, http.MethodGet, server.URL+"/api/v1/paths/1/progress", nil, asUser("alice"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	sections := data["sections"].([]interface{})
	basics := sections[0].(map[string]interface{})
	assert.InDelta(t, 0.5, basics["completion"].(float64), 1e-9)

	// Another user sees the shared average but not alice's rating
	resp, body = doRequest(t, http.MethodGet, server.URL+"/api/v1/paths/1/progress", nil, asUser("bob"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = body["data"].(map[string]interface{})
	hello := data["sections"].([]interface{})[0].(map[string]interface{})["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(4), hello["averageRating"])
	assert.Nil(t, hello["userRating"])
}

func TestRouter_FeedbackValidation(t *testing.T) {
	server := newTestServer(t)
	storeTestPath(t, server)

	resp, _ := doRequest(t, http.MethodPost, server.URL+"/api/v1/items/100/feedback",
		[]byte(`{"pathId": 1, "rating": 9, "completed": false}`), asUser("alice"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_FeedbackOnMissingItem(t *testing.T) {
	server := newTestServer(t)
	storeTestPath(t, server)

	resp, _ := doRequest(t, http.MethodPost, server.URL+"/api/v1/items/404/feedback",
		[]byte(`{"pathId": 1, "rating": 3, "completed": false}`), asUser("alice"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_GetMissingPath(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doRequest(t, http.MethodGet, server.URL+"/api/v1/paths/404", nil, asUser("alice"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_RejectsMalformedPathID(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doRequest(t, http.MethodGet, server.URL+"/api/v1/paths/abc", nil, asUser("alice"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_RejectsDuplicateSectionSequence(t *testing.T) {
	server := newTestServer(t)

	body := []byte(`{
		"name": "Broken",
		"sections": [
			{"id": 10, "name": "A", "sequence": 1, "items": []},
			{"id": 11, "name": "B", "sequence": 1, "items": []}
		]
	}`)
	resp, _ := doRequest(t, http.MethodPut, server.URL+"/api/v1/paths/1", body, asUser("editor"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_RejectsUnknownBodyFields(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doRequest(t, http.MethodPut, server.URL+"/api/v1/paths/1",
		[]byte(`{"name": "x", "bogus": true}`), asUser("editor"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
