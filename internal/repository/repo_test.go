package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/craftfolio/craftfolio-api/internal/models"
)

func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))

	return db
}

func TestScoringRepositoryListScoredByUserOrdersAndFilters(t *testing.T) {
	db := setupTestDB(t, &models.ProjectScoringResult{})
	repo := NewScoringRepository(db)

	now := time.Now()
	older := models.ProjectScoringResult{ID: "s1", ProjectID: "p1", UserID: "u1", CraftType: "woodworking", IndividualSkillScore: 55, SkillLevelCategory: "journeyman", CreatedAt: now.Add(-2 * time.Hour)}
	newer := models.ProjectScoringResult{ID: "s2", ProjectID: "p2", UserID: "u1", CraftType: "woodworking", IndividualSkillScore: 70, SkillLevelCategory: "craftsman", CreatedAt: now.Add(-time.Hour)}
	unscored := models.ProjectScoringResult{ID: "s3", ProjectID: "p3", UserID: "u1", CraftType: "woodworking", IndividualSkillScore: 0, SkillLevelCategory: "novice", CreatedAt: now}
	other := models.ProjectScoringResult{ID: "s4", ProjectID: "p4", UserID: "u2", CraftType: "pottery", IndividualSkillScore: 80, SkillLevelCategory: "craftsman", CreatedAt: now}

	for _, result := range []models.ProjectScoringResult{older, newer, unscored, other} {
		require.NoError(t, repo.Create(context.Background(), &result))
	}

	results, err := repo.ListScoredByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "s2", results[0].ID, "most recent scored result first")
	require.Equal(t, "s1", results[1].ID)
}

func TestScoringRepositoryApplyRevision(t *testing.T) {
	db := setupTestDB(t, &models.ProjectScoringResult{})
	repo := NewScoringRepository(db)

	result := models.ProjectScoringResult{ID: "s1", ProjectID: "p1", UserID: "u1", CraftType: "general", IndividualSkillScore: 40, SkillLevelCategory: "apprentice"}
	require.NoError(t, repo.Create(context.Background(), &result))

	require.NoError(t, repo.ApplyRevision(context.Background(), "s1", 62, "revised after review"))

	stored, err := repo.GetByID(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, 62, stored.IndividualSkillScore)
	require.Equal(t, "revised after review", stored.OverallFeedback)

	err = repo.ApplyRevision(context.Background(), "missing", 50, "n/a")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepositoryUpdateScoringAppendsLedgerEntry(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.SkillProgressionEntry{})
	repo := NewUserRepository(db)

	user := models.User{ID: "u1", Name: "Mara", Email: "mara@example.com", CalculatedSkillLevel: "novice"}
	require.NoError(t, repo.Create(context.Background(), &user))

	updated := time.Now().UTC()
	user.AverageProjectScore = 44.2
	user.CalculatedSkillLevel = "journeyman"
	user.ProjectCount = 3
	user.LastScoreUpdate = &updated

	entry := models.SkillProgressionEntry{
		UserID:           "u1",
		SkillLevel:       "journeyman",
		AverageScore:     44.2,
		ProjectCount:     3,
		TriggerProjectID: "p3",
		AchievedAt:       updated,
	}
	require.NoError(t, repo.UpdateScoring(context.Background(), &user, &entry))

	stored, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "journeyman", stored.CalculatedSkillLevel)
	require.Equal(t, 3, stored.ProjectCount)
	require.InDelta(t, 44.2, stored.AverageProjectScore, 1e-9)
	require.Len(t, stored.SkillProgression, 1)
	require.Equal(t, "p3", stored.SkillProgression[0].TriggerProjectID)

	// No ledger entry when the level did not change.
	require.NoError(t, repo.UpdateScoring(context.Background(), &user, nil))
	stored, err = repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, stored.SkillProgression, 1)
}

func TestReviewRepositoryListOpenOrdersByPriorityThenAge(t *testing.T) {
	db := setupTestDB(t, &models.ProjectScoringResult{}, &models.ReviewRequest{})
	repo := NewReviewRepository(db)

	now := time.Now()
	lowOld := models.ReviewRequest{ID: "r1", ProjectID: "p1", UserID: "u1", ScoringID: "s1", Status: models.ReviewStatusPending, Priority: models.ReviewPriorityLow, RequestedAt: now.Add(-3 * time.Hour)}
	highNew := models.ReviewRequest{ID: "r2", ProjectID: "p2", UserID: "u1", ScoringID: "s2", Status: models.ReviewStatusPending, Priority: models.ReviewPriorityHigh, RequestedAt: now.Add(-time.Hour)}
	highOld := models.ReviewRequest{ID: "r3", ProjectID: "p3", UserID: "u2", ScoringID: "s3", Status: models.ReviewStatusInReview, Priority: models.ReviewPriorityHigh, RequestedAt: now.Add(-2 * time.Hour)}
	completed := models.ReviewRequest{ID: "r4", ProjectID: "p4", UserID: "u2", ScoringID: "s4", Status: models.ReviewStatusCompleted, Priority: models.ReviewPriorityHigh, RequestedAt: now.Add(-4 * time.Hour)}
	medium := models.ReviewRequest{ID: "r5", ProjectID: "p5", UserID: "u3", ScoringID: "s5", Status: models.ReviewStatusPending, Priority: models.ReviewPriorityMedium, RequestedAt: now.Add(-5 * time.Hour)}

	for _, request := range []models.ReviewRequest{lowOld, highNew, highOld, completed, medium} {
		require.NoError(t, repo.Create(context.Background(), &request))
	}

	open, err := repo.ListOpen(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, open, 4)
	require.Equal(t, []string{"r3", "r2", "r5", "r1"}, []string{open[0].ID, open[1].ID, open[2].ID, open[3].ID})
}

func TestReviewRepositoryCountByStatus(t *testing.T) {
	db := setupTestDB(t, &models.ProjectScoringResult{}, &models.ReviewRequest{})
	repo := NewReviewRepository(db)

	now := time.Now()
	for i, status := range []string{models.ReviewStatusPending, models.ReviewStatusPending, models.ReviewStatusCompleted} {
		request := models.ReviewRequest{
			ID:          string(rune('a' + i)),
			ProjectID:   "p",
			UserID:      "u",
			ScoringID:   "s",
			Status:      status,
			Priority:    models.ReviewPriorityLow,
			RequestedAt: now,
		}
		require.NoError(t, repo.Create(context.Background(), &request))
	}

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), counts[models.ReviewStatusPending])
	require.Equal(t, int64(1), counts[models.ReviewStatusCompleted])
}
