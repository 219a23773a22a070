package driver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marvelxcodes/asana-rl-gym/internal/action"
	"github.com/marvelxcodes/asana-rl-gym/internal/observe"
)

func TestHTTPDriver_executeAction(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session/actions" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	d := NewHTTPDriver(srv.URL, "", "")
	spec, _ := action.Lookup(20)
	ok, err := d.ExecuteAction(context.Background(), spec)
	if err != nil {
		t.Fatalf("ExecuteAction: %v", err)
	}
	if !ok {
		t.Fatal("expected success")
	}
	if gotBody["name"] != "create_new_task" || gotBody["action_id"] != float64(20) {
		t.Fatalf("request body = %v", gotBody)
	}
}

func TestHTTPDriver_executeActionBridgeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"browser crashed"}`))
	}))
	defer srv.Close()

	d := NewHTTPDriver(srv.URL, "", "")
	spec, _ := action.Lookup(0)
	if _, err := d.ExecuteAction(context.Background(), spec); err == nil {
		t.Fatal("expected error from 502")
	}
}

func TestHTTPDriver_observeStructured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session/observation" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("mode"); got != "structured" {
			t.Errorf("mode = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"task_counts": [2, 1, 3],
			"project_count": 2,
			"current_view": "board",
			"page_elements": [1, 0, 1]
		}`))
	}))
	defer srv.Close()

	d := NewHTTPDriver(srv.URL, "", "")
	obs, err := d.Observe(context.Background(), observe.ModeStructured)
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if obs.Structured == nil {
		t.Fatal("structured state missing")
	}
	if obs.Structured.TaskCounts != [3]int{2, 1, 3} || obs.Structured.ProjectCount != 2 {
		t.Fatalf("snapshot = %+v", obs.Structured)
	}
	if obs.Structured.CurrentView != observe.ViewBoard {
		t.Fatalf("view = %v, want board", obs.Structured.CurrentView)
	}
	if obs.Structured.PageElements[0] != 1 || obs.Structured.PageElements[2] != 1 {
		t.Fatalf("page elements = %v", obs.Structured.PageElements)
	}
	if obs.Visual != nil {
		t.Fatal("structured mode should not carry a frame")
	}
}

func TestHTTPDriver_observeHybridFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Pixels are base64 per encoding/json []byte handling: 6 zero bytes.
		_, _ = w.Write([]byte(`{
			"task_counts": [0, 0, 0],
			"project_count": 0,
			"current_view": "dashboard",
			"page_elements": [],
			"frame": {"width": 2, "height": 1, "pixels": "AAAAAAAA"}
		}`))
	}))
	defer srv.Close()

	d := NewHTTPDriver(srv.URL, "", "")
	obs, err := d.Observe(context.Background(), observe.ModeHybrid)
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if obs.Visual == nil || obs.Visual.Width != 2 || obs.Visual.Height != 1 {
		t.Fatalf("frame = %+v", obs.Visual)
	}
	if len(obs.Visual.Pixels) != 6 {
		t.Fatalf("pixel bytes = %d, want 6", len(obs.Visual.Pixels))
	}
}

func TestHTTPDriver_loginAndURL(t *testing.T) {
	var loginBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/session/login":
			_ = json.NewDecoder(r.Body).Decode(&loginBody)
			w.WriteHeader(http.StatusNoContent)
		case "/session/url":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"url":"http://app.local/projects/3"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	d := NewHTTPDriver(srv.URL, "trainer", "hunter2")
	if err := d.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loginBody["username"] != "trainer" || loginBody["password"] != "hunter2" {
		t.Fatalf("login body = %v", loginBody)
	}
	u, err := d.CurrentURL(context.Background())
	if err != nil {
		t.Fatalf("CurrentURL: %v", err)
	}
	if u != "http://app.local/projects/3" {
		t.Fatalf("url = %q", u)
	}
}
