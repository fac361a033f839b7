package flaresolverr_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/saletrack"
	"github.com/fwojciec/saletrack/flaresolverr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Resolve(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "request.get", req["cmd"])
		assert.Equal(t, "https://example.test/search", req["url"])
		assert.Equal(t, float64(60000), req["maxTimeout"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"message": "Challenge solved!",
			"solution": {
				"url": "https://example.test/search",
				"status": 200,
				"response": "<html><article class=\"item\"></article></html>",
				"cookies": [
					{"name": "cf_clearance", "value": "tok", "domain": ".example.test", "path": "/"}
				]
			}
		}`))
	}))
	defer srv.Close()

	client := flaresolverr.NewClient(srv.URL + "/v1")

	res, err := client.Resolve(context.Background(), "https://example.test/search")
	require.NoError(t, err)
	assert.Equal(t, 200, res.Status)
	assert.Contains(t, res.HTML, "article")
	require.Len(t, res.Cookies, 1)
	assert.Equal(t, "cf_clearance", res.Cookies[0].Name)
	assert.Equal(t, ".example.test", res.Cookies[0].Domain)
}

func TestClient_Resolve_ServiceReportsFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "error", "message": "Challenge not solved"}`))
	}))
	defer srv.Close()

	client := flaresolverr.NewClient(srv.URL + "/v1")

	_, err := client.Resolve(context.Background(), "https://example.test/search")
	require.Error(t, err)
	assert.Equal(t, saletrack.EREJECTED, saletrack.ErrorCode(err))
	assert.Contains(t, saletrack.ErrorMessage(err), "Challenge not solved")
}

func TestClient_Resolve_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := flaresolverr.NewClient(srv.URL + "/v1")

	_, err := client.Resolve(context.Background(), "https://example.test/search")
	require.Error(t, err)
	assert.Equal(t, saletrack.EREJECTED, saletrack.ErrorCode(err))
}

func TestClient_Resolve_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := flaresolverr.NewClient(srv.URL + "/v1")

	_, err := client.Resolve(context.Background(), "https://example.test/search")
	require.Error(t, err)
	assert.Equal(t, saletrack.EUNAVAILABLE, saletrack.ErrorCode(err))
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()

	var pinged string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pinged = r.URL.Path
		_, _ = w.Write([]byte(`{"msg": "FlareSolverr is ready!"}`))
	}))
	defer srv.Close()

	client := flaresolverr.NewClient(srv.URL + "/v1")

	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, "/", pinged)
}

func TestClient_Ping_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := flaresolverr.NewClient(srv.URL + "/v1")

	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.Equal(t, saletrack.EUNAVAILABLE, saletrack.ErrorCode(err))
}
