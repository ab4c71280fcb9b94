package iri

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakePeak builds a wire peak with the given shape, filled with value.
func fakePeak(shape []int, value float64) map[string]any {
	n := 1
	for _, s := range shape {
		n *= s
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = value
	}
	arr := map[string]any{"shape": shape, "data": data}
	return map[string]any{"fo": arr, "hm": arr, "Nm": arr}
}

func TestMonthlyMeanDecodesShapedArrays(t *testing.T) {
	var gotPath string
	var gotReq MonthlyMeanRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := map[string]any{
			"f2":      fakePeak([]int{24, 2, 3}, 8.5),
			"f1":      fakePeak([]int{24, 2, 3}, 4.2),
			"e_peak":  fakePeak([]int{24, 2, 3}, 3.1),
			"es_peak": fakePeak([]int{24, 2, 3}, 5.0),
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	out, err := c.MonthlyMean(context.Background(), MonthlyMeanRequest{
		Year:  2020,
		Month: 4,
		Hours: []float64{0, 1},
		Lons:  []float64{-100, -50},
		Lats:  []float64{40, 40},
	})
	if err != nil {
		t.Fatalf("MonthlyMean: %v", err)
	}
	if gotPath != "/monthly-mean" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotReq.Year != 2020 || gotReq.Month != 4 || len(gotReq.Lons) != 2 {
		t.Fatalf("request not forwarded: %+v", gotReq)
	}
	if out.F2.Nm == nil || out.F2.Nm.NDim() != 3 {
		t.Fatalf("F2.Nm = %+v", out.F2.Nm)
	}
	if out.F2.Nm.At(0, 0, 0) != 8.5 {
		t.Fatalf("F2.Nm value = %v, want 8.5", out.F2.Nm.At(0, 0, 0))
	}
	if out.EDP != nil {
		t.Fatal("monthly-mean path should not carry a density cube")
	}
}

func TestDensity1DayCarriesEDP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/density-1day" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req Density1DayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.F107 != 120 || len(req.Alts) != 3 {
			t.Errorf("request not forwarded: %+v", req)
		}
		edp := make([]float64, 24*3*1)
		for i := range edp {
			edp[i] = 1e11
		}
		resp := map[string]any{
			"f2":      fakePeak([]int{24, 1}, 9.0),
			"f1":      fakePeak([]int{24, 1}, 4.0),
			"e_peak":  fakePeak([]int{24, 1}, 3.0),
			"es_peak": fakePeak([]int{24, 1}, 5.0),
			"edp":     map[string]any{"shape": []int{24, 3, 1}, "data": edp},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	out, err := c.Density1Day(context.Background(), Density1DayRequest{
		Year: 2022, Month: 6, Day: 15,
		Hours: Hours24(),
		Lons:  []float64{-100},
		Lats:  []float64{40},
		Alts:  []float64{60, 70, 80},
		F107:  120,
	})
	if err != nil {
		t.Fatalf("Density1Day: %v", err)
	}
	if out.EDP == nil {
		t.Fatal("expected density cube")
	}
	if got := out.EDP.Shape; got[0] != 24 || got[1] != 3 || got[2] != 1 {
		t.Fatalf("EDP shape = %v", got)
	}
}

func TestHealthCheckOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestClientErrorPaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/monthly-mean":
			http.Error(w, "coefficients not loaded", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if err := c.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check failure")
	}
	if _, err := c.MonthlyMean(context.Background(), MonthlyMeanRequest{}); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestClientRejectsMalformedArrays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// f2 shape says 6 values but only 2 arrive.
		bad := map[string]any{"shape": []int{2, 3}, "data": []float64{1, 2}}
		resp := map[string]any{
			"f2": map[string]any{"fo": bad, "hm": bad, "Nm": bad},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.MonthlyMean(context.Background(), MonthlyMeanRequest{}); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", 0)
	if c.baseURL != DefaultURL {
		t.Fatalf("baseURL = %q, want %q", c.baseURL, DefaultURL)
	}
	if c.httpc.Timeout != 120*time.Second {
		t.Fatalf("timeout = %v, want 120s", c.httpc.Timeout)
	}
}
