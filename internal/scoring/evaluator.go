package scoring

import (
	"context"
	"math"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/craftfolio/craftfolio-api/pkg/ai"
)

const (
	fallbackScore      = 70
	fallbackConfidence = 40

	// Blend ratio for the documentation criterion: the deterministic
	// structural heuristic anchors the oracle score against hallucination.
	docHeuristicShare = 0.3
	docOracleShare    = 0.7
)

// CriterionEvaluator scores one criterion of a submission by delegating to
// the text oracle and parsing its tagged reply. Oracle failures never
// propagate; they degrade to a fixed fallback score.
type CriterionEvaluator struct {
	oracle    ai.Oracle
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCriterionEvaluator constructs an evaluator bound to the given oracle.
func NewCriterionEvaluator(oracle ai.Oracle, logger zerolog.Logger) *CriterionEvaluator {
	return &CriterionEvaluator{
		oracle:    oracle,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "criterion_evaluator").Logger(),
	}
}

// Evaluate scores a single criterion. The returned CriterionScore always
// carries the craft-appropriate weight, even on fallback.
func (e *CriterionEvaluator) Evaluate(ctx context.Context, req Request, evalContext string, criterion Criterion) CriterionScore {
	weight := WeightsFor(req.CraftType)[criterion]

	sanitized := req
	sanitized.Description = e.sanitizer.Sanitize(req.Description)
	prompt := BuildCriterionPrompt(sanitized, e.sanitizer.Sanitize(evalContext), criterion)

	result, err := e.oracle.Generate(ctx, ai.GenerationRequest{
		System: evaluationSystemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		e.logger.Warn().Err(err).Str("criterion", string(criterion)).Msg("oracle evaluation failed, using fallback")
		return CriterionScore{
			Criterion:  criterion,
			Score:      fallbackScore,
			Weight:     weight,
			Feedback:   criterion.DisplayName() + " evaluation unavailable",
			Confidence: fallbackConfidence,
		}
	}

	reply := ParseEvaluationReply(result.Text, result.Confidence)

	score := reply.Score
	if criterion == CriterionDocumentation {
		heuristic := DocumentationHeuristic(req)
		score = int(math.Round(docHeuristicShare*float64(heuristic) + docOracleShare*float64(reply.Score)))
	}

	return CriterionScore{
		Criterion:  criterion,
		Score:      score,
		Weight:     weight,
		Feedback:   reply.Feedback,
		Confidence: reply.Confidence,
	}
}
