package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marvelxcodes/asana-rl-gym/internal/action"
	"github.com/marvelxcodes/asana-rl-gym/internal/observe"
)

// HTTPDriver drives the application through a browser-automation bridge that
// exposes a small HTTP+JSON API. It is safe for concurrent use, though the
// training loop calls it from one goroutine.
type HTTPDriver struct {
	BaseURL    string       // bridge address, e.g. "http://localhost:7310"
	Username   string       // optional; set for Login
	Password   string       // optional; set for Login
	HTTPClient *http.Client // optional; nil uses a client with a sane timeout
}

// NewHTTPDriver returns a driver for the bridge at baseURL. Credentials are
// optional; without them Login is a no-op on the bridge side.
func NewHTTPDriver(baseURL, username, password string) *HTTPDriver {
	return &HTTPDriver{BaseURL: baseURL, Username: username, Password: password}
}

func (d *HTTPDriver) client() *http.Client {
	if d.HTTPClient != nil {
		return d.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func (d *HTTPDriver) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, d.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return d.client().Do(req)
}

func (d *HTTPDriver) doJSON(ctx context.Context, method, path string, body any, out any) error {
	resp, err := d.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error != "" {
			return fmt.Errorf("bridge %s %s: %s", method, path, errBody.Error)
		}
		return fmt.Errorf("bridge %s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Health reports whether the bridge is reachable and ready.
func (d *HTTPDriver) Health(ctx context.Context) (bool, error) {
	var out struct {
		OK bool `json:"ok"`
	}
	err := d.doJSON(ctx, http.MethodGet, "/health", nil, &out)
	return out.OK, err
}

func (d *HTTPDriver) Login(ctx context.Context) error {
	body := map[string]string{"username": d.Username, "password": d.Password}
	return d.doJSON(ctx, http.MethodPost, "/session/login", body, nil)
}

func (d *HTTPDriver) Navigate(ctx context.Context, path string) error {
	return d.doJSON(ctx, http.MethodPost, "/session/navigate", map[string]string{"path": path}, nil)
}

func (d *HTTPDriver) ExecuteAction(ctx context.Context, spec action.Spec) (bool, error) {
	body := map[string]any{
		"action_id": int(spec.ID),
		"name":      spec.Name,
		"category":  string(spec.Category),
	}
	var out struct {
		Success bool `json:"success"`
	}
	if err := d.doJSON(ctx, http.MethodPost, "/session/actions", body, &out); err != nil {
		return false, err
	}
	return out.Success, nil
}

// observationPayload is the bridge's wire form of an observation. Pixels are
// standard-library base64 via encoding/json's []byte handling.
type observationPayload struct {
	TaskCounts   [3]int    `json:"task_counts"`
	ProjectCount int       `json:"project_count"`
	CurrentView  string    `json:"current_view"`
	PageElements []float32 `json:"page_elements"`
	Frame        *struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Pixels []byte `json:"pixels"`
	} `json:"frame,omitempty"`
}

func (d *HTTPDriver) Observe(ctx context.Context, mode observe.Mode) (observe.Observation, error) {
	var payload observationPayload
	if err := d.doJSON(ctx, http.MethodGet, "/session/observation?mode="+string(mode), nil, &payload); err != nil {
		return observe.Observation{}, err
	}
	obs := observe.Observation{Mode: mode}
	if mode == observe.ModeStructured || mode == observe.ModeHybrid {
		snap := observe.Snapshot{
			TaskCounts:   payload.TaskCounts,
			ProjectCount: payload.ProjectCount,
			CurrentView:  observe.ParseView(payload.CurrentView),
		}
		copy(snap.PageElements[:], payload.PageElements)
		obs.Structured = &snap
	}
	if (mode == observe.ModeVisual || mode == observe.ModeHybrid) && payload.Frame != nil {
		obs.Visual = &observe.Frame{
			Width:  payload.Frame.Width,
			Height: payload.Frame.Height,
			Pixels: payload.Frame.Pixels,
		}
	}
	return obs, nil
}

func (d *HTTPDriver) CurrentURL(ctx context.Context) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := d.doJSON(ctx, http.MethodGet, "/session/url", nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (d *HTTPDriver) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return d.doJSON(ctx, http.MethodDelete, "/session", nil, nil)
}
