package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/sitebrief/models"
)

func TestClient_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/extract", r.URL.Path)
		var req models.ExtractRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://acme.test", req.URL)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.ExtractResponse{
			Success: true,
			Result:  &models.ExtractionResult{Content: "Welcome", Brand: "Acme", Strategy: models.StrategyInnerText},
		})
	}))
	defer srv.Close()

	resp, err := newAPIClient(srv.URL + "/").Extract(context.Background(), "https://acme.test")
	require.NoError(t, err)
	assert.Equal(t, "Brand: Acme\nStrategy: inner_text\n\nWelcome", formatExtraction(resp))
}

func TestClient_ExtractDiagnostic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(models.ExtractResponse{
			Result: &models.ExtractionResult{Content: models.ErrorContentPrefix + "timeout", Strategy: models.StrategyNone},
			Error:  &models.ErrorDetail{Code: models.ErrCodeNavigation, Message: "timeout"},
		})
	}))
	defer srv.Close()

	resp, err := newAPIClient(srv.URL).Extract(context.Background(), "https://down.test")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, formatExtraction(resp), models.ErrorContentPrefix)
}

func TestClient_ExtractRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(models.ExtractResponse{
			Error: &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: "url is required"},
		})
	}))
	defer srv.Close()

	_, err := newAPIClient(srv.URL).Extract(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), models.ErrCodeInvalidInput)
}

func TestClient_Submit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/submit", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.SubmitResponse{PDFURL: "http://localhost/files/s1.pdf", SessionID: "s1"})
	}))
	defer srv.Close()

	resp, err := newAPIClient(srv.URL).Submit(context.Background(), models.SubmitRequest{URL: "https://acme.test"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/files/s1.pdf", resp.PDFURL)
}

func TestClient_SubmitFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(models.FailureResponse{Message: "Failed to process request: upload"})
	}))
	defer srv.Close()

	_, err := newAPIClient(srv.URL).Submit(context.Background(), models.SubmitRequest{URL: "https://acme.test"})
	require.Error(t, err)
	assert.Equal(t, "Failed to process request: upload", err.Error())
}

func TestFormatExtraction_Empty(t *testing.T) {
	assert.Empty(t, formatExtraction(&models.ExtractResponse{}))
}
