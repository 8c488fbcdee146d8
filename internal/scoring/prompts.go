package scoring

import (
	"fmt"
	"strings"
)

// Per-criterion rubric text embedded in evaluation prompts.
var criterionRubrics = map[Criterion]string{
	CriterionTechnicalExecution: "Assess the precision, fit and finish of the work. Look for clean joints or seams, " +
		"consistent surfaces, dimensional accuracy and control of the medium relative to the maker's stated skill level.",
	CriterionDocumentation: "Assess how completely the project is documented. Look for before/process/after coverage, " +
		"a materials list, a tools list, time spent and honest notes on what went wrong.",
	CriterionToolUsage: "Assess whether the tools used were appropriate for the techniques involved and whether they " +
		"were applied correctly. Penalise forcing the wrong tool; reward deliberate tool selection.",
	CriterionSafety: "Assess adherence to safe working practice for this craft: guards, protective equipment, " +
		"ventilation, sharp-edge and heat handling. Flag anything in the description or photos that looks unsafe.",
	CriterionInnovation: "Assess originality: novel design choices, creative problem solving, personal style, or an " +
		"unusual combination of techniques. A competent copy of a standard pattern scores mid-range.",
}

// Craft-specific safety notes appended to the safety rubric.
var craftSafetyNotes = map[CraftType]string{
	CraftWoodworking:  "Watch for missing blade guards, push sticks, eye and hearing protection, and dust control.",
	CraftMetalworking: "Watch for missing eye protection, heat handling, secure workholding and welding fume control.",
	CraftLeathercraft: "Watch for blade technique when skiving and cutting, and ventilation when dyeing or gluing.",
	CraftPottery:      "Watch for silica dust control, glaze chemical handling and kiln safety.",
	CraftTextiles:     "Watch for needle and rotary-cutter handling and machine guarding.",
	CraftJewelry:      "Watch for torch and pickle handling, flux fumes and small-part workholding.",
}

// Craft-specific quality indicators appended to the technical rubric.
var craftQualityIndicators = map[CraftType]string{
	CraftWoodworking:  "Tight joinery, flat panels, even finish, crisp edges.",
	CraftMetalworking: "Consistent welds or solder joints, clean bends, deburred edges, even finish.",
	CraftLeathercraft: "Even stitching, burnished edges, clean cuts, symmetric hardware placement.",
	CraftPottery:      "Even wall thickness, stable form, controlled glaze application.",
	CraftTextiles:     "Straight seams, matched patterns, clean hems, appropriate tension.",
	CraftJewelry:      "Secure stone setting, polished surfaces, clean solder seams, symmetric forms.",
}

const evaluationSystemPrompt = "You are an experienced craft instructor scoring a documented project. " +
	"Reply using exactly three tagged lines: SCORE: <0-100>, FEEDBACK: <two or three sentences>, CONFIDENCE: <0-100>. " +
	"CONFIDENCE reflects how certain you are given the evidence available."

// BuildCriterionPrompt assembles the evaluation prompt for one criterion.
// evalContext is the shared submission context built once per scoring pass.
func BuildCriterionPrompt(req Request, evalContext string, criterion Criterion) string {
	builder := strings.Builder{}
	builder.WriteString("# Craft type\n")
	builder.WriteString(string(req.CraftType))
	builder.WriteString("\n\n# Criterion\n")
	builder.WriteString(criterion.DisplayName())
	builder.WriteString("\n\n# Rubric\n")
	builder.WriteString(criterionRubrics[criterion])

	switch criterion {
	case CriterionSafety:
		if notes, ok := craftSafetyNotes[req.CraftType]; ok {
			builder.WriteString("\n")
			builder.WriteString(notes)
		}
	case CriterionTechnicalExecution:
		if indicators, ok := craftQualityIndicators[req.CraftType]; ok {
			builder.WriteString("\nQuality indicators: ")
			builder.WriteString(indicators)
		}
	}

	builder.WriteString("\n\n# Project description\n")
	builder.WriteString(req.Description)

	if len(req.Materials) > 0 {
		builder.WriteString("\n\n# Materials\n")
		builder.WriteString(strings.Join(req.Materials, ", "))
	}
	if len(req.Tools) > 0 {
		builder.WriteString("\n\n# Tools\n")
		builder.WriteString(strings.Join(req.Tools, ", "))
	}
	if len(req.ImageURLs) > 0 {
		builder.WriteString(fmt.Sprintf("\n\n# Photos\n%d photo(s) attached", len(req.ImageURLs)))
	}
	if evalContext != "" {
		builder.WriteString("\n\n# Context\n")
		builder.WriteString(evalContext)
	}

	builder.WriteString("\n\nScore this single criterion.")
	return builder.String()
}

// NarrativeSystemPrompt primes the oracle for the feedback-generation call.
const NarrativeSystemPrompt = "You are an encouraging craft mentor summarising an automated assessment for the maker. " +
	"Reply with an OVERALL: paragraph followed by STRENGTHS:, IMPROVEMENTS: and NEXT_STEPS: sections of short '-' bullets."

// BuildNarrativePrompt assembles the feedback-generation prompt from the
// already-computed criterion scores.
func BuildNarrativePrompt(craft CraftType, criteria []CriterionScore, overallScore int) string {
	builder := strings.Builder{}
	builder.WriteString("# Craft type\n")
	builder.WriteString(string(craft))
	builder.WriteString(fmt.Sprintf("\n\n# Overall score\n%d/100", overallScore))
	builder.WriteString("\n\n# Criterion scores\n")
	for _, criterion := range criteria {
		builder.WriteString(fmt.Sprintf("- %s: %d/100 (%s)\n", criterion.Criterion.DisplayName(), criterion.Score, criterion.Feedback))
	}
	builder.WriteString("\nWrite the summary for the maker.")
	return builder.String()
}
