package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/api/middleware"
	"github.com/algobros/terminal-backend/internal/analysis"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
)

type stubAnalyzer struct {
	charts []analysis.Chart
	result *analysis.Result
	err    error
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ uuid.UUID, charts []analysis.Chart) (*analysis.Result, error) {
	s.charts = charts
	return s.result, s.err
}

func chartRequest(t *testing.T, parts map[string][]byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for field, data := range parts {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="chart.png"`)
		header.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/analysis", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func TestAnalysisRunOrdersChartsHighestFirst(t *testing.T) {
	svc := &stubAnalyzer{result: &analysis.Result{Bias: enums.BiasBullish, Narrative: "clean break of structure"}}
	handler := AnalysisRun(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, chartRequest(t, map[string][]byte{
		"15min": {0x03},
		"1D":    {0x01},
		"4H":    {0x02},
	}))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.charts) != 3 {
		t.Fatalf("expected 3 charts, got %d", len(svc.charts))
	}
	order := []enums.Timeframe{svc.charts[0].Timeframe, svc.charts[1].Timeframe, svc.charts[2].Timeframe}
	want := []enums.Timeframe{enums.TimeframeDaily, enums.Timeframe4H, enums.Timeframe15Min}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order %v", order)
		}
	}

	var envelope struct {
		Data analysis.Result `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Bias != enums.BiasBullish {
		t.Fatalf("unexpected bias %q", envelope.Data.Bias)
	}
}

func TestAnalysisRunRejectsUnknownTimeframe(t *testing.T) {
	handler := AnalysisRun(&stubAnalyzer{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, chartRequest(t, map[string][]byte{"2H": {0x01}}))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAnalysisRunRequiresCharts(t *testing.T) {
	handler := AnalysisRun(&stubAnalyzer{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, chartRequest(t, nil))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAnalysisRunSurfacesFailureVerbatim(t *testing.T) {
	svc := &stubAnalyzer{err: pkgerrors.New(pkgerrors.CodeAnalysis, "model returned malformed analysis")}
	handler := AnalysisRun(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, chartRequest(t, map[string][]byte{"1D": {0x01}}))

	if resp.Code == http.StatusOK {
		t.Fatal("expected failure status")
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("model returned malformed analysis")) {
		t.Fatalf("expected literal failure message, got %s", resp.Body.String())
	}
}
