package iri

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/heliolab/iri-lab-apps/internal/ndarray"
)

// DefaultURL is the sidecar address used when nothing else is configured.
const DefaultURL = "http://localhost:8606"

// Client is an HTTP JSON client for the PyIRI sidecar service.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a client for the given base URL. An empty URL selects
// DefaultURL; a zero timeout defaults to 120s (global grids are slow).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// HealthCheck verifies the model service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("model service not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// wireArray is the numpy-style array encoding used by the sidecar: a shape
// vector plus flat row-major data.
type wireArray struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

func (w *wireArray) toArray() (*ndarray.Array, error) {
	if w == nil {
		return nil, nil
	}
	return ndarray.New(w.Shape, w.Data)
}

type wirePeak struct {
	Fo *wireArray `json:"fo"`
	Hm *wireArray `json:"hm"`
	Nm *wireArray `json:"Nm"`
}

func (w wirePeak) toPeak(layer string) (Peak, error) {
	fo, err := w.Fo.toArray()
	if err != nil {
		return Peak{}, fmt.Errorf("%s fo: %w", layer, err)
	}
	hm, err := w.Hm.toArray()
	if err != nil {
		return Peak{}, fmt.Errorf("%s hm: %w", layer, err)
	}
	nm, err := w.Nm.toArray()
	if err != nil {
		return Peak{}, fmt.Errorf("%s Nm: %w", layer, err)
	}
	return Peak{Fo: fo, Hm: hm, Nm: nm}, nil
}

type wireOutput struct {
	F2  wirePeak   `json:"f2"`
	F1  wirePeak   `json:"f1"`
	E   wirePeak   `json:"e_peak"`
	Es  wirePeak   `json:"es_peak"`
	EDP *wireArray `json:"edp,omitempty"`
}

func (w *wireOutput) toOutput() (*Output, error) {
	var out Output
	var err error
	if out.F2, err = w.F2.toPeak("f2"); err != nil {
		return nil, err
	}
	if out.F1, err = w.F1.toPeak("f1"); err != nil {
		return nil, err
	}
	if out.E, err = w.E.toPeak("e_peak"); err != nil {
		return nil, err
	}
	if out.Es, err = w.Es.toPeak("es_peak"); err != nil {
		return nil, err
	}
	if out.EDP, err = w.EDP.toArray(); err != nil {
		return nil, fmt.Errorf("edp: %w", err)
	}
	if out.F2.Nm == nil {
		return nil, fmt.Errorf("model response missing f2 peak arrays")
	}
	return &out, nil
}

// MonthlyMean runs the monthly-mean parameter path (no density profiles).
func (c *Client) MonthlyMean(ctx context.Context, req MonthlyMeanRequest) (*Output, error) {
	return c.post(ctx, "/monthly-mean", req)
}

// Density1Day runs the single-day path with electron density profiles.
func (c *Client) Density1Day(ctx context.Context, req Density1DayRequest) (*Output, error) {
	return c.post(ctx, "/density-1day", req)
}

func (c *Client) post(ctx context.Context, path string, payload any) (*Output, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("model service returned status %d: %s", resp.StatusCode, string(msg))
	}

	var wire wireOutput
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return wire.toOutput()
}
