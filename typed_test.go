package baseapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type artistRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"id": 7, "name": "flux"}`)); err != nil {
			t.Fatalf(failedWriteResponseMsg, err)
		}
	}))
	defer server.Close()

	client := New(server.URL + "/")

	var artist artistRecord
	if err := client.GetJSON(context.Background(), "artists/7?", &artist); err != nil {
		t.Fatalf("GetJSON() returned error: %v", err)
	}

	if artist.ID != 7 {
		t.Errorf("Expected ID=7, got %d", artist.ID)
	}
	if artist.Name != "flux" {
		t.Errorf("Expected Name=flux, got %q", artist.Name)
	}
}

func TestGetJSONClassifiesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		if _, err := w.Write([]byte("limited")); err != nil {
			t.Fatalf(failedWriteResponseMsg, err)
		}
	}))
	defer server.Close()

	client := New(server.URL + "/")

	var artist artistRecord
	err := client.GetJSON(context.Background(), "artists/7?", &artist)
	if !IsRateLimit(err) {
		t.Fatalf("Expected rate limit error, got %v", err)
	}
	if artist.ID != 0 || artist.Name != "" {
		t.Error("Expected target to stay untouched on error")
	}
}

func TestPostJSON(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("Failed to read request body: %v", err)
		}
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if _, err := w.Write([]byte(`{"id": 12, "name": "flux"}`)); err != nil {
			t.Fatalf(failedWriteResponseMsg, err)
		}
	}))
	defer server.Close()

	client := New(server.URL+"/", WithAuth(Params{{Key: "token", Value: "abc"}}))

	var created artistRecord
	err := client.PostJSON(context.Background(), "artists", Payload{"name": "flux"}, &created)
	if err != nil {
		t.Fatalf("PostJSON() returned error: %v", err)
	}

	if gotBody["name"] != "flux" {
		t.Errorf("Expected payload in request body, got %v", gotBody)
	}
	if gotBody["token"] != "abc" {
		t.Errorf("Expected auth in request body, got %v", gotBody)
	}
	if created.ID != 12 {
		t.Errorf("Expected decoded response, got %+v", created)
	}
}

func TestPutJSONAndDeleteJSON(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		if _, err := w.Write([]byte(`{"id": 1, "name": "x"}`)); err != nil {
			t.Fatalf(failedWriteResponseMsg, err)
		}
	}))
	defer server.Close()

	client := New(server.URL + "/")
	ctx := context.Background()

	var out artistRecord
	if err := client.PutJSON(ctx, "artists/1", Payload{"name": "x"}, &out); err != nil {
		t.Fatalf("PutJSON() returned error: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("Expected PUT, got %s", gotMethod)
	}

	if err := client.DeleteJSON(ctx, "artists/1", Payload{}, &out); err != nil {
		t.Fatalf("DeleteJSON() returned error: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("Expected DELETE, got %s", gotMethod)
	}
}

func TestStrictUnmarshaler(t *testing.T) {
	var artist artistRecord

	err := StrictUnmarshaler{}.Unmarshal([]byte(`{"id": 1, "name": "x"}`), &artist)
	if err != nil {
		t.Fatalf("Expected known fields to decode, got %v", err)
	}

	err = StrictUnmarshaler{}.Unmarshal([]byte(`{"id": 1, "surprise": true}`), &artist)
	if err == nil {
		t.Fatal("Expected unknown field to be rejected")
	}
}

func TestGetJSONWithStrictUnmarshaler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"id": 1, "name": "x", "surprise": true}`)); err != nil {
			t.Fatalf(failedWriteResponseMsg, err)
		}
	}))
	defer server.Close()

	client := New(server.URL+"/", WithUnmarshaler(StrictUnmarshaler{}))

	var artist artistRecord
	err := client.GetJSON(context.Background(), "artists/1?", &artist)
	if err == nil {
		t.Fatal("Expected decode error for unexpected field")
	}
	if !strings.Contains(err.Error(), "decode response") {
		t.Errorf("Expected decode error, got %v", err)
	}
}

func TestGetJSONCached(t *testing.T) {
	serverCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverCalls++
		if _, err := w.Write([]byte(`{"id": 7, "name": "flux"}`)); err != nil {
			t.Fatalf(failedWriteResponseMsg, err)
		}
	}))
	defer server.Close()

	client := New(server.URL + "/")
	ctx := context.Background()

	first, err := GetJSONCached[artistRecord](ctx, client, "artists/7?")
	if err != nil {
		t.Fatalf("GetJSONCached() returned error: %v", err)
	}
	second, err := GetJSONCached[artistRecord](ctx, client, "artists/7?")
	if err != nil {
		t.Fatalf("GetJSONCached() returned error: %v", err)
	}

	if serverCalls != 1 {
		t.Errorf("Expected 1 server call, got %d", serverCalls)
	}
	if first != second {
		t.Errorf("Expected identical results, got %+v and %+v", first, second)
	}
	if first.Name != "flux" {
		t.Errorf("Expected decoded record, got %+v", first)
	}
}

func TestGetJSONCachedSeparateFromUntyped(t *testing.T) {
	serverCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverCalls++
		if _, err := w.Write([]byte(`{"id": 7, "name": "flux"}`)); err != nil {
			t.Fatalf(failedWriteResponseMsg, err)
		}
	}))
	defer server.Close()

	client := New(server.URL + "/")
	ctx := context.Background()

	if _, err := client.GetCached(ctx, "artists/7?"); err != nil {
		t.Fatalf("GetCached() returned error: %v", err)
	}
	if _, err := GetJSONCached[artistRecord](ctx, client, "artists/7?"); err != nil {
		t.Fatalf("GetJSONCached() returned error: %v", err)
	}

	// Typed and untyped reads cache under different method names.
	if serverCalls != 2 {
		t.Errorf("Expected 2 server calls, got %d", serverCalls)
	}
}
