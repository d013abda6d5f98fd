package controllers

import (
	"context"
	"io"
	"net/http"
	"sort"

	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/api/responses"
	"github.com/algobros/terminal-backend/internal/analysis"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/logger"
)

const maxAnalysisUploadBytes = 32 << 20

type chartAnalyzer interface {
	Analyze(ctx context.Context, profileID uuid.UUID, charts []analysis.Chart) (*analysis.Result, error)
}

// AnalysisRun accepts a multipart upload of chart images. Each file part is
// named after its timeframe (1M, 1W, 1D, 4H, 1H, 15min, 5min, 1min); the
// charts are analyzed together, ordered highest timeframe first.
func AnalysisRun(svc chartAnalyzer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analysis service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxAnalysisUploadBytes)
		if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}
		if r.MultipartForm == nil || len(r.MultipartForm.File) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "at least one chart image is required"))
			return
		}

		charts := make([]analysis.Chart, 0, len(r.MultipartForm.File))
		for field, headers := range r.MultipartForm.File {
			timeframe, err := enums.ParseTimeframe(field)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "chart parts must be named after a timeframe"))
				return
			}
			if len(headers) == 0 {
				continue
			}

			file, err := headers[0].Open()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading chart upload"))
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading chart upload"))
				return
			}

			charts = append(charts, analysis.Chart{
				Timeframe: timeframe,
				MimeType:  headers[0].Header.Get("Content-Type"),
				Data:      data,
			})
		}

		// Map iteration order is random; the prompt wants highest first.
		sort.SliceStable(charts, func(i, j int) bool {
			return charts[i].Timeframe.Rank() < charts[j].Timeframe.Rank()
		})

		result, err := svc.Analyze(r.Context(), userID, charts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
