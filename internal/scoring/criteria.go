package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// CraftType identifies the discipline a project belongs to. Weight tables,
// safety notes and quality indicators are keyed by craft type.
type CraftType string

// Supported craft types. CraftGeneral is the fallback discipline.
const (
	CraftWoodworking  CraftType = "woodworking"
	CraftMetalworking CraftType = "metalworking"
	CraftLeathercraft CraftType = "leathercraft"
	CraftPottery      CraftType = "pottery"
	CraftTextiles     CraftType = "textiles"
	CraftJewelry      CraftType = "jewelry"
	CraftGeneral      CraftType = "general"
)

// ErrUnknownCraftType indicates a craft type outside the supported set.
var ErrUnknownCraftType = errors.New("unknown craft type")

var craftTypes = map[CraftType]struct{}{
	CraftWoodworking:  {},
	CraftMetalworking: {},
	CraftLeathercraft: {},
	CraftPottery:      {},
	CraftTextiles:     {},
	CraftJewelry:      {},
	CraftGeneral:      {},
}

// ParseCraftType normalises and validates a craft type string.
func ParseCraftType(value string) (CraftType, error) {
	craft := CraftType(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := craftTypes[craft]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCraftType, value)
	}
	return craft, nil
}

// Criterion is one of the five fixed evaluation dimensions.
type Criterion string

// The five criteria every project is scored against.
const (
	CriterionTechnicalExecution Criterion = "technical_execution"
	CriterionDocumentation      Criterion = "documentation_completeness"
	CriterionToolUsage          Criterion = "tool_usage"
	CriterionSafety             Criterion = "safety_adherence"
	CriterionInnovation         Criterion = "innovation"
)

// Criteria lists the evaluation dimensions in canonical order.
var Criteria = [5]Criterion{
	CriterionTechnicalExecution,
	CriterionDocumentation,
	CriterionToolUsage,
	CriterionSafety,
	CriterionInnovation,
}

// DisplayName returns the human-readable criterion name used in feedback.
func (c Criterion) DisplayName() string {
	switch c {
	case CriterionTechnicalExecution:
		return "Technical execution"
	case CriterionDocumentation:
		return "Documentation completeness"
	case CriterionToolUsage:
		return "Tool usage"
	case CriterionSafety:
		return "Safety adherence"
	case CriterionInnovation:
		return "Innovation"
	default:
		return string(c)
	}
}

// Weights maps each criterion to its share of the aggregate score.
type Weights map[Criterion]float64

var defaultWeights = Weights{
	CriterionTechnicalExecution: 0.40,
	CriterionDocumentation:      0.30,
	CriterionToolUsage:          0.15,
	CriterionSafety:             0.10,
	CriterionInnovation:         0.05,
}

// Craft-specific overrides. Every table must still sum to 1.0; this is
// checked at package init and treated as a programmer error.
var craftWeights = map[CraftType]Weights{
	CraftPottery: {
		CriterionTechnicalExecution: 0.35,
		CriterionDocumentation:      0.25,
		CriterionToolUsage:          0.15,
		CriterionSafety:             0.10,
		CriterionInnovation:         0.15,
	},
	CraftJewelry: {
		CriterionTechnicalExecution: 0.35,
		CriterionDocumentation:      0.25,
		CriterionToolUsage:          0.10,
		CriterionSafety:             0.10,
		CriterionInnovation:         0.20,
	},
}

const weightEpsilon = 1e-6

func init() {
	validateWeights("default", defaultWeights)
	for craft, weights := range craftWeights {
		validateWeights(string(craft), weights)
	}
}

func validateWeights(name string, weights Weights) {
	if len(weights) != len(Criteria) {
		panic(fmt.Sprintf("scoring: weight table %q must cover all %d criteria", name, len(Criteria)))
	}
	sum := 0.0
	for _, criterion := range Criteria {
		weight, ok := weights[criterion]
		if !ok {
			panic(fmt.Sprintf("scoring: weight table %q missing criterion %s", name, criterion))
		}
		sum += weight
	}
	if sum < 1.0-weightEpsilon || sum > 1.0+weightEpsilon {
		panic(fmt.Sprintf("scoring: weight table %q sums to %f, expected 1.0", name, sum))
	}
}

// WeightsFor returns the criterion weights for the given craft type. Craft
// types without an override use the default table.
func WeightsFor(craft CraftType) Weights {
	if weights, ok := craftWeights[craft]; ok {
		return weights
	}
	return defaultWeights
}

// HasCraftOverride reports whether the craft type carries its own weight
// table rather than the default one.
func HasCraftOverride(craft CraftType) bool {
	_, ok := craftWeights[craft]
	return ok
}
