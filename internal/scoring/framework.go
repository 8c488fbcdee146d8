package scoring

import (
	"fmt"
	"math"
	"strings"
)

// SkillLevel is the ordered proficiency band derived from a numeric score.
type SkillLevel string

// Skill levels in ascending order of proficiency.
const (
	LevelNovice     SkillLevel = "novice"
	LevelApprentice SkillLevel = "apprentice"
	LevelJourneyman SkillLevel = "journeyman"
	LevelCraftsman  SkillLevel = "craftsman"
	LevelMaster     SkillLevel = "master"
)

// levelFloors defines the inclusive lower bound of each band. The bands are
// contiguous and partition [0,100]: novice 0-20, apprentice 21-40,
// journeyman 41-60, craftsman 61-80, master 81-100.
var levelFloors = []struct {
	level SkillLevel
	floor int
}{
	{LevelNovice, 0},
	{LevelApprentice, 21},
	{LevelJourneyman, 41},
	{LevelCraftsman, 61},
	{LevelMaster, 81},
}

// LevelForScore maps a score in [0,100] to its skill level. A score outside
// that range is a contract violation by the caller and panics.
func LevelForScore(score int) SkillLevel {
	if score < 0 || score > 100 {
		panic(fmt.Sprintf("scoring: score %d outside [0,100]", score))
	}
	level := LevelNovice
	for _, band := range levelFloors {
		if score >= band.floor {
			level = band.level
		}
	}
	return level
}

// LevelFloor returns the inclusive lower bound of the given level.
func LevelFloor(level SkillLevel) int {
	for _, band := range levelFloors {
		if band.level == level {
			return band.floor
		}
	}
	return 0
}

// NextLevel returns the level above the given one, or the level itself when
// already at the top band.
func NextLevel(level SkillLevel) SkillLevel {
	for i, band := range levelFloors {
		if band.level == level && i+1 < len(levelFloors) {
			return levelFloors[i+1].level
		}
	}
	return level
}

// CriterionScore is a single criterion's contribution to a project score.
type CriterionScore struct {
	Criterion  Criterion `json:"criterion"`
	Score      int       `json:"score"`
	Weight     float64   `json:"weight"`
	Feedback   string    `json:"feedback"`
	Confidence int       `json:"confidence"`
}

// Aggregate combines the criterion scores into a single weighted score,
// rounded to the nearest integer and clamped to [0,100].
func Aggregate(criteria []CriterionScore, craft CraftType) int {
	weights := WeightsFor(craft)
	total := 0.0
	for _, criterion := range criteria {
		total += float64(criterion.Score) * weights[criterion.Criterion]
	}
	score := int(math.Round(total))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// LevelProgress describes how far a score sits between its level floor and
// the next level's floor.
type LevelProgress struct {
	Percent         float64 `json:"percent"`
	PointsRemaining int     `json:"points_remaining"`
	NextThreshold   int     `json:"next_threshold"`
}

// ProgressToNextLevel linearly interpolates the score between the current
// level's floor and the next level's floor. At the top band progress is
// complete by definition.
func ProgressToNextLevel(score int, level SkillLevel) LevelProgress {
	if level == LevelMaster {
		return LevelProgress{Percent: 100, PointsRemaining: 0, NextThreshold: 100}
	}

	floor := LevelFloor(level)
	next := LevelFloor(NextLevel(level))
	span := next - floor
	percent := float64(score-floor) / float64(span) * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	remaining := next - score
	if remaining < 0 {
		remaining = 0
	}
	return LevelProgress{Percent: percent, PointsRemaining: remaining, NextThreshold: next}
}

// Request is an immutable project submission handed to the scoring engine by
// the post-creation flow.
type Request struct {
	ProjectID        string
	UserID           string
	CraftType        CraftType
	Description      string
	Materials        []string
	Tools            []string
	TimeSpentMinutes int
	ImageURLs        []string
	UserSkillLevel   SkillLevel
	UserProfile      string
}

// Structural documentation signals and their contribution to the heuristic
// percentage. The weights sum to 100.
const (
	docWeightBeforeCue   = 20
	docWeightProcessCue  = 5
	docWeightAfterCue    = 20
	docWeightMaterials   = 5
	docWeightTools       = 20
	docWeightTime        = 5
	docWeightChallenges  = 5
	docWeightDetailedLen = 20

	docDetailedWordCount = 100
)

// DocumentationHeuristic computes a deterministic documentation score from
// structural signals in the submission. It is blended with the oracle's
// documentation score to reduce hallucination risk.
func DocumentationHeuristic(req Request) int {
	text := strings.ToLower(req.Description)
	score := 0

	if containsAny(text, "before") {
		score += docWeightBeforeCue
	}
	if containsAny(text, "process", "step", "during", "progress") {
		score += docWeightProcessCue
	}
	if containsAny(text, "after", "finished", "final", "result") {
		score += docWeightAfterCue
	}
	if len(req.Materials) > 0 || containsAny(text, "material") {
		score += docWeightMaterials
	}
	if len(req.Tools) > 0 || containsAny(text, "tool") {
		score += docWeightTools
	}
	if req.TimeSpentMinutes > 0 || containsAny(text, "hour", "minute", "took me", "spent") {
		score += docWeightTime
	}
	if containsAny(text, "challenge", "problem", "mistake", "difficult", "struggle") {
		score += docWeightChallenges
	}
	if len(strings.Fields(req.Description)) >= docDetailedWordCount {
		score += docWeightDetailedLen
	}

	return score
}

func containsAny(text string, cues ...string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}
