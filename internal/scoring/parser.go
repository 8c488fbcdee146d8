package scoring

import (
	"regexp"
	"strconv"
	"strings"
)

// The oracle replies with a loose tagged-text protocol rather than JSON:
//
//	SCORE: 82
//	FEEDBACK: Clean joinery, visible glue squeeze-out on the rear panel.
//	CONFIDENCE: 90
//
// Replies are frequently decorated with surrounding prose, so every field is
// extracted permissively and defaulted when absent.
var (
	scoreTagPattern      = regexp.MustCompile(`(?i)\bSCORE\s*[:=]\s*(\d{1,3})`)
	confidenceTagPattern = regexp.MustCompile(`(?i)\bCONFIDENCE\s*[:=]\s*(\d{1,3})`)
	feedbackTagPattern   = regexp.MustCompile(`(?is)\bFEEDBACK\s*[:=]\s*(.+?)(?:\n\s*(?:SCORE|CONFIDENCE)\s*[:=]|\z)`)
)

const (
	defaultCriterionScore  = 70
	fallbackFeedbackLength = 200
)

// CriterionReply is the parsed form of a single criterion evaluation reply.
type CriterionReply struct {
	Score      int
	Feedback   string
	Confidence int
}

// ParseEvaluationReply extracts the tagged fields from a raw oracle reply.
// A missing score defaults to 70, a missing confidence falls back to the
// oracle's self-reported generation confidence, and missing feedback falls
// back to a prefix of the raw reply.
func ParseEvaluationReply(raw string, oracleConfidence int) CriterionReply {
	reply := CriterionReply{
		Score:      defaultCriterionScore,
		Confidence: clampPercent(oracleConfidence),
	}

	if match := scoreTagPattern.FindStringSubmatch(raw); match != nil {
		if value, err := strconv.Atoi(match[1]); err == nil {
			reply.Score = clampPercent(value)
		}
	}

	if match := confidenceTagPattern.FindStringSubmatch(raw); match != nil {
		if value, err := strconv.Atoi(match[1]); err == nil {
			reply.Confidence = clampPercent(value)
		}
	}

	if match := feedbackTagPattern.FindStringSubmatch(raw); match != nil {
		reply.Feedback = strings.TrimSpace(match[1])
	}
	if reply.Feedback == "" {
		reply.Feedback = truncate(strings.TrimSpace(raw), fallbackFeedbackLength)
	}

	return reply
}

// Narrative is the parsed form of the feedback-generation reply.
type Narrative struct {
	Overall      string
	Strengths    []string
	Improvements []string
	NextSteps    []string
}

var narrativeSectionPattern = regexp.MustCompile(`(?i)^\s*(OVERALL|STRENGTHS|IMPROVEMENTS|NEXT_STEPS)\s*[:=]?\s*(.*)$`)

// ParseNarrativeReply splits the feedback reply into its named sections.
// Bullet lines ("- ..." or "* ...") under a list section become entries;
// unrecognised leading prose is folded into the overall summary.
func ParseNarrativeReply(raw string) Narrative {
	narrative := Narrative{}
	section := "OVERALL"
	var overall []string

	for _, line := range strings.Split(raw, "\n") {
		if match := narrativeSectionPattern.FindStringSubmatch(line); match != nil {
			section = strings.ToUpper(match[1])
			if rest := strings.TrimSpace(match[2]); rest != "" {
				appendNarrativeLine(&narrative, &overall, section, rest)
			}
			continue
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		appendNarrativeLine(&narrative, &overall, section, text)
	}

	narrative.Overall = strings.TrimSpace(strings.Join(overall, " "))
	return narrative
}

func appendNarrativeLine(narrative *Narrative, overall *[]string, section, text string) {
	text = strings.TrimSpace(strings.TrimLeft(text, "-*• \t"))
	if text == "" {
		return
	}
	switch section {
	case "STRENGTHS":
		narrative.Strengths = append(narrative.Strengths, text)
	case "IMPROVEMENTS":
		narrative.Improvements = append(narrative.Improvements, text)
	case "NEXT_STEPS":
		narrative.NextSteps = append(narrative.NextSteps, text)
	default:
		*overall = append(*overall, text)
	}
}

func clampPercent(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

// truncate keeps the first limit characters. Counting runes rather than
// bytes keeps multi-byte text valid UTF-8 at the cut.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}
