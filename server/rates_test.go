package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meenmo/rateedge/ratestore"
)

func TestAddAndQueryRates(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/rates", map[string]any{
		"date":     "2025-08-01",
		"currency": "aud",
		"tenor":    "5y",
		"rate":     0.0435,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status mismatch: got %d body %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["message"] != "Rate added successfully" {
		t.Fatalf("message mismatch: got %v", body["message"])
	}

	w = doJSON(t, s, http.MethodGet, "/api/rates?currency=AUD", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("query status mismatch: got %d", w.Code)
	}
	var resp struct {
		Count int                  `json:"count"`
		Data  []ratestore.SwapRate `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Count != 1 || len(resp.Data) != 1 {
		t.Fatalf("count mismatch: got %d", resp.Count)
	}
	got := resp.Data[0]
	if got.Currency != "AUD" || got.Tenor != "5Y" || got.Rate != 0.0435 {
		t.Fatalf("stored rate mismatch: %+v", got)
	}
	if got.FloatingRate != "6M" {
		t.Fatalf("floating rate default mismatch: got %q", got.FloatingRate)
	}
}

func TestAddRateValidation(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)

	cases := []struct {
		name    string
		body    map[string]any
		wantErr string
	}{
		{
			name:    "missing date",
			body:    map[string]any{"currency": "AUD", "tenor": "5Y", "rate": 0.04},
			wantErr: "missing field: date",
		},
		{
			name:    "missing rate",
			body:    map[string]any{"date": "2025-08-01", "currency": "AUD", "tenor": "5Y"},
			wantErr: "missing field: rate",
		},
		{
			name:    "bad date format",
			body:    map[string]any{"date": "01/08/2025", "currency": "AUD", "tenor": "5Y", "rate": 0.04},
			wantErr: "invalid date",
		},
		{
			name:    "unsupported currency",
			body:    map[string]any{"date": "2025-08-01", "currency": "CHF", "tenor": "5Y", "rate": 0.04},
			wantErr: `unsupported currency "CHF"`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/api/rates", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status mismatch: got %d", w.Code)
			}
			body := decodeBody(t, w)
			if body["success"] != false {
				t.Fatalf("success flag mismatch: got %v", body["success"])
			}
			if msg, _ := body["error"].(string); !strings.Contains(msg, tc.wantErr) {
				t.Fatalf("error mismatch: got %q want substring %q", msg, tc.wantErr)
			}
		})
	}
}

func TestBulkAddRates(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/rates/bulk", []map[string]any{
		{"date": "2025-08-01", "currency": "AUD", "tenor": "2Y", "rate": 0.038},
		{"date": "2025-08-01", "currency": "AUD", "tenor": "5Y", "rate": 0.0415},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status mismatch: got %d body %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["message"] != "2 rates added successfully" {
		t.Fatalf("message mismatch: got %v", body["message"])
	}
	if n, _ := store.Count(context.Background()); n != 2 {
		t.Fatalf("stored count mismatch: got %d", n)
	}

	w = doJSON(t, s, http.MethodPost, "/api/rates/bulk", map[string]any{"date": "2025-08-01"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-array status mismatch: got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "request body must be an array of rate objects" {
		t.Fatalf("non-array error mismatch: got %v", body["error"])
	}

	w = doJSON(t, s, http.MethodPost, "/api/rates/bulk", []map[string]any{
		{"date": "2025-08-01", "currency": "AUD", "tenor": "2Y", "rate": 0.038},
		{"date": "2025-08-01", "currency": "AUD", "rate": 0.0415},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad record status mismatch: got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "record 1: missing field: tenor" {
		t.Fatalf("bad record error mismatch: got %v", body["error"])
	}
}

func TestLatestRates(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t)
	seedRates(t, store,
		ratestore.SwapRate{Date: daysAgo(5), Currency: "AUD", Tenor: "5Y", Rate: 0.0410},
		ratestore.SwapRate{Date: daysAgo(1), Currency: "AUD", Tenor: "10Y", Rate: 0.0462},
		ratestore.SwapRate{Date: daysAgo(1), Currency: "AUD", Tenor: "2Y", Rate: 0.0381},
		ratestore.SwapRate{Date: daysAgo(0), Currency: "USD", Tenor: "5Y", Rate: 0.0390},
	)

	for _, path := range []string{"/api/rates/latest?currency=AUD", "/api/rates/latest/aud"} {
		w := doJSON(t, s, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s status mismatch: got %d", path, w.Code)
		}
		var resp struct {
			Count int                  `json:"count"`
			Data  []ratestore.SwapRate `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if resp.Count != 2 {
			t.Fatalf("%s count mismatch: got %d", path, resp.Count)
		}
		// Latest AUD date only, shortest tenor first.
		if resp.Data[0].Tenor != "2Y" || resp.Data[1].Tenor != "10Y" {
			t.Fatalf("%s tenor order mismatch: got %s, %s", path, resp.Data[0].Tenor, resp.Data[1].Tenor)
		}
		for _, r := range resp.Data {
			if !r.Date.Equal(daysAgo(1)) {
				t.Fatalf("%s stale date in latest: got %s", path, r.Date)
			}
		}
	}
}

func TestDeleteRates(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t)
	seedRates(t, store,
		ratestore.SwapRate{Date: daysAgo(3), Currency: "AUD", Tenor: "5Y", Rate: 0.041},
		ratestore.SwapRate{Date: daysAgo(2), Currency: "AUD", Tenor: "5Y", Rate: 0.042},
		ratestore.SwapRate{Date: daysAgo(1), Currency: "AUD", Tenor: "5Y", Rate: 0.043},
	)

	path := fmt.Sprintf("/api/rates?currency=AUD&start_date=%s&end_date=%s",
		daysAgo(3).Format("2006-01-02"), daysAgo(2).Format("2006-01-02"))
	w := doJSON(t, s, http.MethodDelete, path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status mismatch: got %d", w.Code)
	}
	if body := decodeBody(t, w); body["message"] != "2 rates deleted" {
		t.Fatalf("message mismatch: got %v", body["message"])
	}
	if n, _ := store.Count(context.Background()); n != 1 {
		t.Fatalf("remaining count mismatch: got %d", n)
	}

	w = doJSON(t, s, http.MethodDelete, "/api/rates/AUD/"+daysAgo(1).Format("2006-01-02"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("by-day status mismatch: got %d", w.Code)
	}
	if body := decodeBody(t, w); body["message"] != "1 rates deleted" {
		t.Fatalf("by-day message mismatch: got %v", body["message"])
	}

	w = doJSON(t, s, http.MethodDelete, "/api/rates/AUD/yesterday", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad day status mismatch: got %d", w.Code)
	}
}

func TestMetadataEndpoints(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t)
	seedRates(t, store,
		ratestore.SwapRate{Date: daysAgo(2), Currency: "AUD", Tenor: "10Y", Rate: 0.046},
		ratestore.SwapRate{Date: daysAgo(1), Currency: "AUD", Tenor: "2Y", Rate: 0.038},
		ratestore.SwapRate{Date: daysAgo(1), Currency: "USD", Tenor: "5Y", Rate: 0.039},
	)

	w := doJSON(t, s, http.MethodGet, "/api/metadata/dates?currency=AUD", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dates status mismatch: got %d", w.Code)
	}
	var dates struct {
		Count int      `json:"count"`
		Dates []string `json:"dates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &dates); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	want := []string{daysAgo(1).Format("2006-01-02"), daysAgo(2).Format("2006-01-02")}
	if dates.Count != 2 || dates.Dates[0] != want[0] || dates.Dates[1] != want[1] {
		t.Fatalf("dates mismatch: got %v want %v", dates.Dates, want)
	}

	w = doJSON(t, s, http.MethodGet, "/api/metadata/tenors?currency=AUD", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tenors status mismatch: got %d", w.Code)
	}
	var tenors struct {
		Count  int      `json:"count"`
		Tenors []string `json:"tenors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tenors); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if tenors.Count != 2 || tenors.Tenors[0] != "2Y" || tenors.Tenors[1] != "10Y" {
		t.Fatalf("tenors mismatch: got %v", tenors.Tenors)
	}
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t)
	seedRates(t, store,
		ratestore.SwapRate{Date: daysAgo(1), Currency: "AUD", Tenor: "5Y", FloatingRate: "3M BBSW", Rate: 0.0435},
	)

	w := doJSON(t, s, http.MethodGet, "/api/export?currency=AUD", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status mismatch: got %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="swap_rates_export.csv"` {
		t.Fatalf("disposition mismatch: got %q", got)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if strings.TrimSpace(lines[0]) != "id,date,currency,floating_rate,tenor,rate,created_at,updated_at" {
		t.Fatalf("header mismatch: got %q", lines[0])
	}
	if !strings.Contains(lines[1], "AUD") || !strings.Contains(lines[1], "3M BBSW") {
		t.Fatalf("row mismatch: got %q", lines[1])
	}
}

// multipartFile builds a one-file multipart body for the import endpoint.
func multipartFile(t *testing.T, filename, contents string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile error: %v", err)
	}
	if _, err := fw.Write([]byte(contents)); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField error: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestImportCSV(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t)

	csvFile := "date,currency,floating_rate,tenor,rate\n" +
		"2025-08-01,AUD,3M,2Y,3.80\n" +
		"2025-08-01,AUD,3M,5Y,4.15\n"
	body, contentType := multipartFile(t, "quotes.csv", csvFile, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status mismatch: got %d body %s", w.Code, w.Body.String())
	}
	var res struct {
		Success         bool `json:"success"`
		RecordsImported int  `json:"records_imported"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !res.Success || res.RecordsImported != 2 {
		t.Fatalf("result mismatch: %+v", res)
	}

	rates, err := store.Query(context.Background(), ratestore.Filter{Currency: "AUD"})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("stored count mismatch: got %d", len(rates))
	}
	for _, r := range rates {
		if r.Source != "quotes.csv" {
			t.Fatalf("source default mismatch: got %q", r.Source)
		}
		if r.FloatingRate != "3M BBSW" {
			t.Fatalf("fixing reference mismatch: got %q", r.FloatingRate)
		}
	}
}

func TestImportRejectsBadInput(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)

	// No multipart file part at all.
	w := doJSON(t, s, http.MethodPost, "/api/import", map[string]any{"file": "quotes.csv"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing file status mismatch: got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != `multipart field "file" is required` {
		t.Fatalf("missing file error mismatch: got %v", body["error"])
	}

	// An empty upload has no detectable layout.
	body, contentType := multipartFile(t, "empty.csv", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty file status mismatch: got %d body %s", rec.Code, rec.Body.String())
	}
}
