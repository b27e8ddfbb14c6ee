package deploy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeploy(t *testing.T) {
	var gotAuth string
	var gotBody deployRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/deployments", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(Deployment{ID: "dep-42", URL: "https://bakery.pages.example"})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "secret-token")
	dep, err := client.Deploy(context.Background(), "bakery", map[string]string{"index.html": "<html></html>"})
	require.NoError(t, err)

	assert.Equal(t, "dep-42", dep.ID)
	assert.Equal(t, "https://bakery.pages.example", dep.URL)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "bakery", gotBody.Project)
	assert.Contains(t, gotBody.Files, "index.html")
}

func TestDeploy_FillsMissingID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Deployment{URL: "https://x.example"})
	}))
	defer ts.Close()

	dep, err := NewClient(ts.URL, "").Deploy(context.Background(), "p", map[string]string{"index.html": "x"})
	require.NoError(t, err)
	assert.NotEmpty(t, dep.ID, "a missing provider id is generated locally")
}

func TestDeploy_ProviderErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upload rejected", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, "").Deploy(context.Background(), "p", map[string]string{"index.html": "x"})
	assert.ErrorContains(t, err, "502")
}

func TestDeploy_NoURLIsAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Deployment{ID: "dep-1"})
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, "").Deploy(context.Background(), "p", map[string]string{"index.html": "x"})
	assert.ErrorContains(t, err, "no deployment URL")
}

func TestDeploy_EmptyProject(t *testing.T) {
	_, err := NewClient("http://unused", "").Deploy(context.Background(), "p", nil)
	assert.ErrorContains(t, err, "no files")
}
