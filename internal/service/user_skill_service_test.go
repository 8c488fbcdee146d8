package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/craftfolio/craftfolio-api/internal/models"
	"github.com/craftfolio/craftfolio-api/internal/scoring"
)

func newSkillService(users *stubUserRepo, scorings *stubScoringRepo) UserSkillLevelService {
	service := NewUserSkillLevelService(users, scorings, nil, nil, zerolog.Nop())
	service.(*userSkillLevelService).now = fixedTime
	return service
}

// seedHistory stores scored results for the user, most recent first, matching
// the repository's ordering contract.
func seedHistory(scorings *stubScoringRepo, userID string, scores ...int) {
	for i, score := range scores {
		scorings.history = append(scorings.history, models.ProjectScoringResult{
			ID:                   userID + "-scoring-" + string(rune('a'+i)),
			UserID:               userID,
			IndividualSkillScore: score,
		})
	}
}

func TestCalculateUserSkillLevelEmptyHistory(t *testing.T) {
	service := newSkillService(newStubUserRepo(), newStubScoringRepo())

	snapshot, err := service.CalculateUserSkillLevel(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, scoring.LevelNovice, snapshot.Level)
	require.Zero(t, snapshot.AverageScore)
	require.Zero(t, snapshot.Confidence)
	require.Zero(t, snapshot.ProjectCount)
}

func TestCalculateUserSkillLevelWeighsRecentScoresMore(t *testing.T) {
	scorings := newStubScoringRepo()
	seedHistory(scorings, "improving", 100, 10)
	seedHistory(scorings, "declining", 10, 100)
	service := newSkillService(newStubUserRepo(), scorings)

	improving, err := service.CalculateUserSkillLevel(context.Background(), "improving")
	require.NoError(t, err)
	declining, err := service.CalculateUserSkillLevel(context.Background(), "declining")
	require.NoError(t, err)

	// Weights are 1 and e^-0.1 for the two scores, so the recent score pulls
	// the average to its side of the plain mean of 55.
	require.InDelta(t, 57.248, improving.AverageScore, 0.01)
	require.InDelta(t, 52.752, declining.AverageScore, 0.01)
	require.Greater(t, improving.AverageScore, declining.AverageScore)
}

func TestCalculateUserSkillLevelConfidence(t *testing.T) {
	scorings := newStubScoringRepo()
	seedHistory(scorings, "steady", 75, 75, 75, 75, 75, 75, 75, 75, 75, 75)
	seedHistory(scorings, "sparse", 75)
	seedHistory(scorings, "erratic", 20, 95, 15, 90, 25, 85, 10, 95, 30, 80)
	service := newSkillService(newStubUserRepo(), scorings)

	steady, err := service.CalculateUserSkillLevel(context.Background(), "steady")
	require.NoError(t, err)
	sparse, err := service.CalculateUserSkillLevel(context.Background(), "sparse")
	require.NoError(t, err)
	erratic, err := service.CalculateUserSkillLevel(context.Background(), "erratic")
	require.NoError(t, err)

	// Ten identical scores saturate both the sample and the spread factor.
	require.InDelta(t, 1.0, steady.Confidence, 0.001)
	require.Less(t, sparse.Confidence, steady.Confidence)
	require.Less(t, erratic.Confidence, steady.Confidence)
}

func TestUpdateUserSkillLevelRecordsTransition(t *testing.T) {
	users := newStubUserRepo()
	users.users["user-1"] = models.User{ID: "user-1", CalculatedSkillLevel: string(scoring.LevelApprentice)}

	// A strong third project pulls the recency-weighted average across the
	// journeyman threshold.
	scorings := newStubScoringRepo()
	seedHistory(scorings, "user-1", 60, 35, 30)
	service := newSkillService(users, scorings)

	update, err := service.UpdateUserSkillLevel(context.Background(), "user-1", "project-3")
	require.NoError(t, err)
	require.True(t, update.LevelChanged)
	require.Equal(t, string(scoring.LevelApprentice), update.OldLevel)
	require.Equal(t, string(scoring.LevelJourneyman), update.NewLevel)
	require.Equal(t, 3, update.ProjectCount)

	stored := users.users["user-1"]
	require.Equal(t, string(scoring.LevelJourneyman), stored.CalculatedSkillLevel)
	require.Equal(t, 3, stored.ProjectCount)
	require.NotNil(t, stored.LastScoreUpdate)

	require.Len(t, users.entries, 1)
	require.Equal(t, string(scoring.LevelJourneyman), users.entries[0].SkillLevel)
	require.Equal(t, "project-3", users.entries[0].TriggerProjectID)
}

func TestUpdateUserSkillLevelIdempotent(t *testing.T) {
	users := newStubUserRepo()
	users.users["user-1"] = models.User{ID: "user-1", CalculatedSkillLevel: string(scoring.LevelNovice)}

	scorings := newStubScoringRepo()
	seedHistory(scorings, "user-1", 72, 70, 68)
	service := newSkillService(users, scorings)

	first, err := service.UpdateUserSkillLevel(context.Background(), "user-1", "project-3")
	require.NoError(t, err)
	require.True(t, first.LevelChanged)

	// Re-running against unchanged history must not move the level or grow
	// the ledger.
	second, err := service.UpdateUserSkillLevel(context.Background(), "user-1", "project-3")
	require.NoError(t, err)
	require.False(t, second.LevelChanged)
	require.Equal(t, first.NewLevel, second.NewLevel)
	require.Len(t, users.entries, 1)
}

func TestUpdateUserSkillLevelSerializesPerUser(t *testing.T) {
	users := newStubUserRepo()
	users.users["user-1"] = models.User{ID: "user-1", CalculatedSkillLevel: string(scoring.LevelApprentice)}

	scorings := newStubScoringRepo()
	seedHistory(scorings, "user-1", 60, 35, 30)
	service := newSkillService(users, scorings)

	// Two scoring passes land for the same maker at once. The per-user lock
	// must serialise them so only one observes the transition and only one
	// ledger entry is written.
	updates := make(chan SkillUpdate, 2)
	var group errgroup.Group
	for i := 0; i < 2; i++ {
		group.Go(func() error {
			update, err := service.UpdateUserSkillLevel(context.Background(), "user-1", "project-3")
			if err != nil {
				return err
			}
			updates <- update
			return nil
		})
	}
	require.NoError(t, group.Wait())
	close(updates)

	changed := 0
	for update := range updates {
		if update.LevelChanged {
			changed++
		}
		require.Equal(t, string(scoring.LevelJourneyman), update.NewLevel)
	}
	require.Equal(t, 1, changed)
	require.Len(t, users.entries, 1)
	require.Equal(t, string(scoring.LevelJourneyman), users.users["user-1"].CalculatedSkillLevel)
}

func TestUpdateUserSkillLevelFirstAssignment(t *testing.T) {
	users := newStubUserRepo()
	users.users["user-1"] = models.User{ID: "user-1"}

	scorings := newStubScoringRepo()
	seedHistory(scorings, "user-1", 55)
	service := newSkillService(users, scorings)

	update, err := service.UpdateUserSkillLevel(context.Background(), "user-1", "project-1")
	require.NoError(t, err)
	require.False(t, update.LevelChanged, "the first assignment is not a transition")
	require.Equal(t, string(scoring.LevelJourneyman), update.NewLevel)

	// The ledger still records where the user started.
	require.Len(t, users.entries, 1)
	require.Equal(t, string(scoring.LevelJourneyman), users.entries[0].SkillLevel)
}

func TestUpdateUserSkillLevelUnknownUser(t *testing.T) {
	service := newSkillService(newStubUserRepo(), newStubScoringRepo())

	_, err := service.UpdateUserSkillLevel(context.Background(), "missing", "project-1")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSkillProfile(t *testing.T) {
	users := newStubUserRepo()
	users.users["user-1"] = models.User{ID: "user-1", CalculatedSkillLevel: string(scoring.LevelJourneyman)}
	users.entries = append(users.entries, models.SkillProgressionEntry{
		UserID:     "user-1",
		SkillLevel: string(scoring.LevelJourneyman),
		AchievedAt: fixedTime(),
	})

	scorings := newStubScoringRepo()
	seedHistory(scorings, "user-1", 50, 50, 50)
	service := newSkillService(users, scorings)

	profile, err := service.SkillProfile(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "user-1", profile.UserID)
	require.Equal(t, string(scoring.LevelJourneyman), profile.SkillLevel)
	require.InDelta(t, 50.0, profile.AverageScore, 0.001)
	require.Equal(t, 3, profile.ProjectCount)
	require.Len(t, profile.Progression, 1)
	require.Equal(t, 61, profile.Progress.NextThreshold)
}

func TestSkillProfileUnknownUser(t *testing.T) {
	service := newSkillService(newStubUserRepo(), newStubScoringRepo())

	_, err := service.SkillProfile(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}
