package scoring

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestParseEvaluationReplyWellFormed(t *testing.T) {
	raw := "SCORE: 82\nFEEDBACK: Clean joinery with minor glue squeeze-out on the rear panel.\nCONFIDENCE: 90"

	reply := ParseEvaluationReply(raw, 60)
	require.Equal(t, 82, reply.Score)
	require.Equal(t, 90, reply.Confidence)
	require.Equal(t, "Clean joinery with minor glue squeeze-out on the rear panel.", reply.Feedback)
}

func TestParseEvaluationReplyToleratesSurroundingProse(t *testing.T) {
	raw := "Here is my assessment of the project.\n\nscore: 64\nfeedback: Solid effort overall.\nSome closing remarks.\nconfidence = 75\nThanks!"

	reply := ParseEvaluationReply(raw, 60)
	require.Equal(t, 64, reply.Score)
	require.Equal(t, 75, reply.Confidence)
	require.Contains(t, reply.Feedback, "Solid effort overall.")
}

func TestParseEvaluationReplyMissingScoreDefaults(t *testing.T) {
	reply := ParseEvaluationReply("FEEDBACK: hard to tell from the photos\nCONFIDENCE: 55", 60)
	require.Equal(t, defaultCriterionScore, reply.Score)
	require.Equal(t, 55, reply.Confidence)
}

func TestParseEvaluationReplyMissingConfidenceUsesOracleConfidence(t *testing.T) {
	reply := ParseEvaluationReply("SCORE: 88\nFEEDBACK: great", 85)
	require.Equal(t, 88, reply.Score)
	require.Equal(t, 85, reply.Confidence)
}

func TestParseEvaluationReplyMissingFeedbackUsesRawPrefix(t *testing.T) {
	raw := strings.Repeat("the workmanship is solid ", 20)
	reply := ParseEvaluationReply(raw, 60)
	require.Equal(t, defaultCriterionScore, reply.Score)
	require.Len(t, reply.Feedback, fallbackFeedbackLength)
	require.True(t, strings.HasPrefix(raw, reply.Feedback))
}

func TestParseEvaluationReplyFallbackKeepsMultiByteTextValid(t *testing.T) {
	// 250 two-byte runes; a byte-based cut at 200 would land mid-rune.
	raw := strings.Repeat("é", 250)

	reply := ParseEvaluationReply(raw, 60)
	require.True(t, utf8.ValidString(reply.Feedback))
	require.Equal(t, fallbackFeedbackLength, utf8.RuneCountInString(reply.Feedback))
	require.True(t, strings.HasPrefix(raw, reply.Feedback))
}

func TestParseEvaluationReplyClampsOutOfRangeValues(t *testing.T) {
	reply := ParseEvaluationReply("SCORE: 140\nCONFIDENCE: 999", 60)
	require.Equal(t, 100, reply.Score)
	require.Equal(t, 100, reply.Confidence)
}

func TestParseNarrativeReplySections(t *testing.T) {
	raw := "OVERALL: A confident build with room to grow.\n" +
		"STRENGTHS:\n- tight joinery\n- honest documentation\n" +
		"IMPROVEMENTS:\n* finish consistency\n" +
		"NEXT_STEPS:\n- try hand-cut dovetails\n- experiment with oil finishes\n"

	narrative := ParseNarrativeReply(raw)
	require.Equal(t, "A confident build with room to grow.", narrative.Overall)
	require.Equal(t, []string{"tight joinery", "honest documentation"}, narrative.Strengths)
	require.Equal(t, []string{"finish consistency"}, narrative.Improvements)
	require.Equal(t, []string{"try hand-cut dovetails", "experiment with oil finishes"}, narrative.NextSteps)
}

func TestParseNarrativeReplyUnstructuredProseBecomesOverall(t *testing.T) {
	narrative := ParseNarrativeReply("Nice work on this piece.\nKeep practising your edge finishing.")
	require.Equal(t, "Nice work on this piece. Keep practising your edge finishing.", narrative.Overall)
	require.Empty(t, narrative.Strengths)
}
