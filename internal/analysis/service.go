package analysis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
	"github.com/algobros/terminal-backend/pkg/gemini"
	"github.com/algobros/terminal-backend/pkg/logger"
	"github.com/algobros/terminal-backend/pkg/metrics"
)

// Generator is the model surface the analysis pipeline depends on.
type Generator interface {
	GenerateContent(ctx context.Context, parts []gemini.Part, opts gemini.GenerateOptions) (string, error)
}

type knowledgeSource interface {
	Learned(ctx context.Context, profileID uuid.UUID) ([]models.KnowledgeItem, error)
}

type tradeSource interface {
	Recent(ctx context.Context, profileID uuid.UUID, limit int) ([]models.Trade, error)
}

// Setup is the trade proposal attached to an analysis when the strategy
// rules support one.
type Setup struct {
	Valid      bool   `json:"valid"`
	Entry      string `json:"entry,omitempty"`
	StopLoss   string `json:"sl,omitempty"`
	TakeProfit string `json:"tp,omitempty"`
	Reasoning  string `json:"reasoning,omitempty"`
}

// Result is the structured outcome of one chart analysis.
type Result struct {
	Bias          enums.Bias `json:"bias"`
	Narrative     string     `json:"narrative"`
	ConceptsFound []string   `json:"conceptsFound"`
	Setup         *Setup     `json:"setup,omitempty"`
}

// Service assembles analysis requests and parses the model's response.
type Service struct {
	generator Generator
	knowledge knowledgeSource
	trades    tradeSource
	stats     *metrics.AnalysisMetrics
	logg      *logger.Logger
}

// NewService wires the analysis service.
func NewService(generator Generator, ks knowledgeSource, ts tradeSource, stats *metrics.AnalysisMetrics, logg *logger.Logger) *Service {
	return &Service{
		generator: generator,
		knowledge: ks,
		trades:    ts,
		stats:     stats,
		logg:      logg,
	}
}

// Analyze runs one chart analysis round trip. There is exactly one request
// and no retry; any failure surfaces verbatim as an analysis error and is
// never replaced with a default result.
func (s *Service) Analyze(ctx context.Context, profileID uuid.UUID, charts []Chart) (*Result, error) {
	if len(charts) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one chart is required")
	}
	for _, chart := range charts {
		if !chart.Timeframe.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown chart timeframe")
		}
		if len(chart.Data) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "chart image data is required")
		}
	}

	learned, err := s.knowledge.Learned(ctx, profileID)
	if err != nil {
		return nil, err
	}
	history, err := s.trades.Recent(ctx, profileID, maxExperienceTrades)
	if err != nil {
		return nil, err
	}

	parts := buildParts(charts, learned, history)
	started := time.Now()

	raw, err := s.generator.GenerateContent(ctx, parts, gemini.GenerateOptions{
		ResponseSchema: responseSchema(),
	})
	if err != nil {
		s.stats.Observe("error", time.Since(started))
		// The caller sees the literal failure, never a default result.
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysis, err, "analysis request failed").WithDetails(err.Error())
	}

	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.stats.Observe("malformed", time.Since(started))
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysis, err, "analysis response was not valid JSON")
	}
	if !result.Bias.IsValid() {
		s.stats.Observe("malformed", time.Since(started))
		return nil, pkgerrors.New(pkgerrors.CodeAnalysis, "analysis response carried an unknown bias")
	}
	if result.ConceptsFound == nil {
		result.ConceptsFound = []string{}
	}

	s.stats.Observe("ok", time.Since(started))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"profile_id": profileID.String(),
		"charts":     len(charts),
		"bias":       result.Bias.String(),
	}), "chart analysis completed")
	return &result, nil
}
