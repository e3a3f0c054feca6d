package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_PredictImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict-image" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		f, fh, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("missing image field: %v", err)
		}
		defer f.Close()
		if fh.Filename != "scan.png" {
			t.Errorf("expected filename scan.png, got %s", fh.Filename)
		}
		content, _ := io.ReadAll(f)
		if string(content) != "png-bytes" {
			t.Errorf("unexpected content %q", content)
		}
		json.NewEncoder(w).Encode(map[string]string{"data": "no anomaly detected"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.PredictImage(context.Background(), "scan.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "no anomaly detected" {
		t.Errorf("unexpected prediction %q", result)
	}
}

func TestClient_PredictImage_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.PredictImage(context.Background(), "scan.png", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error for upstream failure")
	}
}

func TestClient_PredictImage_EmptyPrediction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"data": ""})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.PredictImage(context.Background(), "scan.png", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error for empty prediction")
	}
}

func TestClient_PredictImage_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.PredictImage(context.Background(), "scan.png", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error for unreachable service")
	}
}
