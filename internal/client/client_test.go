package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phdi/tcr/internal/platform/fhir"
)

func TestClient_StampBundle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/stamp-condition-extensions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"bundle":{"resourceType":"Bundle","total":3}}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"extended_bundle":{"resourceType":"Bundle","total":3,"entry":[]}}`))
	}))
	defer srv.Close()

	in, err := fhir.ParseBundle([]byte(`{"resourceType":"Bundle","total":3}`))
	require.NoError(t, err)

	c := New(srv.URL, 5*time.Second, zerolog.Nop())
	out, err := c.StampBundle(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Bundle", out.ResourceType())

	raw, err := out.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"resourceType":"Bundle","total":3,"entry":[]}`, string(raw))
}

func TestClient_StampBundle_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"resourceType":"OperationOutcome","issue":[{"severity":"error","code":"required"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, zerolog.Nop())
	_, err := c.StampBundle(context.Background(), fhir.NewBundle(nil))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "OperationOutcome")
}

func TestClient_ValueSets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get-value-sets", r.URL.Path)
		assert.Equal(t, "840539006", r.URL.Query().Get("condition_code"))
		assert.Equal(t, "lotc", r.URL.Query().Get("filter_clinical_services"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lotc":[{"codes":["94310-0","94309-2"],"system":"http://loinc.org"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, zerolog.Nop())
	set, err := c.ValueSets(context.Background(), "840539006", "lotc")
	require.NoError(t, err)

	require.Len(t, set["lotc"], 1)
	assert.Equal(t, []string{"94310-0", "94309-2"}, set["lotc"][0].Codes)
	assert.Equal(t, "http://loinc.org", set["lotc"][0].System)
}

func TestClient_ValueSets_OmitsEmptyFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["filter_clinical_services"]
		assert.False(t, ok)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, zerolog.Nop())
	set, err := c.ValueSets(context.Background(), "840539006", "")
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestClient_ValueSets_BadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"2 SNOMED codes provided. Provide only one SNOMED code."}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, zerolog.Nop())
	_, err := c.ValueSets(context.Background(), "1,2", "")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "Provide only one SNOMED code")
}
