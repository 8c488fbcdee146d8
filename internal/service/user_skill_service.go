package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/craftfolio/craftfolio-api/internal/dto"
	"github.com/craftfolio/craftfolio-api/internal/models"
	"github.com/craftfolio/craftfolio-api/internal/observability"
	"github.com/craftfolio/craftfolio-api/internal/repository"
	"github.com/craftfolio/craftfolio-api/internal/scoring"
)

// ErrUserNotFound indicates the user record cannot be located.
var ErrUserNotFound = errors.New("user not found")

const (
	// recencyDecayRate controls how quickly older project scores lose
	// influence on the weighted average. Weight for the i-th most recent
	// score is e^(-recencyDecayRate * i).
	recencyDecayRate = 0.1

	// Sample-size and spread parameters for the confidence estimate.
	confidenceFullSampleSize = 10
	confidenceSpreadDivisor  = 50.0
	confidenceSampleShare    = 0.6
	confidenceSpreadShare    = 0.4
)

// Event channels for skill level transitions.
const (
	skillEventRedisChannel = "craftfolio.skill.level-changed"
	skillEventNATSSubject  = "craftfolio.skill.level-changed"
)

// SkillSnapshot is the recomputed skill state for a user, before any
// persistence.
type SkillSnapshot struct {
	AverageScore float64
	Level        scoring.SkillLevel
	Confidence   float64
	ProjectCount int
}

// SkillUpdate reports the outcome of a persistence pass.
type SkillUpdate struct {
	LevelChanged bool
	OldLevel     string
	NewLevel     string
	AverageScore float64
	ProjectCount int
}

// UserSkillLevelService recomputes and persists user skill levels from
// scoring history.
type UserSkillLevelService interface {
	CalculateUserSkillLevel(ctx context.Context, userID string) (SkillSnapshot, error)
	UpdateUserSkillLevel(ctx context.Context, userID, triggerProjectID string) (SkillUpdate, error)
	SkillProfile(ctx context.Context, userID string) (dto.SkillLevelResponse, error)
}

type userSkillLevelService struct {
	users    repository.UserRepository
	scorings repository.ScoringRepository
	cache    *redis.Client
	events   *nats.Conn
	nodeID   string
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time

	// userLocks serialises concurrent updates per user so two scoring
	// passes for the same maker cannot interleave their read-recompute-write
	// cycles. Values are *sync.Mutex.
	userLocks sync.Map
}

// NewUserSkillLevelService constructs the skill progression service. The
// redis client and NATS connection are optional; events are skipped when nil.
func NewUserSkillLevelService(users repository.UserRepository, scorings repository.ScoringRepository, cache *redis.Client, events *nats.Conn, logger zerolog.Logger) UserSkillLevelService {
	return &userSkillLevelService{
		users:    users,
		scorings: scorings,
		cache:    cache,
		events:   events,
		nodeID:   uuid.NewString(),
		logger:   logger.With().Str("component", "user_skill_service").Logger(),
		tracer:   otel.Tracer("github.com/craftfolio/craftfolio-api/internal/service/user_skill"),
		now:      time.Now,
	}
}

// CalculateUserSkillLevel recomputes the recency-weighted skill state from
// the user's scoring history without persisting anything.
func (s *userSkillLevelService) CalculateUserSkillLevel(ctx context.Context, userID string) (SkillSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "skill.calculate", trace.WithAttributes(
		attribute.String("skill.user_id", userID),
	))
	defer span.End()

	history, err := s.scorings.ListScoredByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return SkillSnapshot{}, err
	}

	if len(history) == 0 {
		return SkillSnapshot{
			AverageScore: 0,
			Level:        scoring.LevelNovice,
			Confidence:   0,
			ProjectCount: 0,
		}, nil
	}

	scores := make([]float64, len(history))
	for i, result := range history {
		scores[i] = float64(result.IndividualSkillScore)
	}

	average := weightedAverage(scores)
	return SkillSnapshot{
		AverageScore: average,
		Level:        scoring.LevelForScore(clampAverage(average)),
		Confidence:   skillConfidence(scores),
		ProjectCount: len(history),
	}, nil
}

// UpdateUserSkillLevel recomputes the user's skill state and persists it.
// When the calculated level moves, a ledger entry is appended and a
// skill-level-changed event is published.
func (s *userSkillLevelService) UpdateUserSkillLevel(ctx context.Context, userID, triggerProjectID string) (SkillUpdate, error) {
	ctx, span := s.tracer.Start(ctx, "skill.update", trace.WithAttributes(
		attribute.String("skill.user_id", userID),
		attribute.String("skill.trigger_project_id", triggerProjectID),
	))
	defer span.End()

	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SkillUpdate{}, ErrUserNotFound
		}
		span.RecordError(err)
		return SkillUpdate{}, err
	}

	snapshot, err := s.CalculateUserSkillLevel(ctx, userID)
	if err != nil {
		return SkillUpdate{}, err
	}

	oldLevel := user.CalculatedSkillLevel
	newLevel := string(snapshot.Level)
	levelChanged := oldLevel != "" && oldLevel != newLevel
	firstAssignment := oldLevel == ""

	updatedAt := s.now().UTC()
	user.AverageProjectScore = snapshot.AverageScore
	user.CalculatedSkillLevel = newLevel
	user.ProjectCount = snapshot.ProjectCount
	user.LastScoreUpdate = &updatedAt

	var entry *models.SkillProgressionEntry
	if levelChanged || firstAssignment {
		entry = &models.SkillProgressionEntry{
			UserID:           userID,
			SkillLevel:       newLevel,
			AverageScore:     snapshot.AverageScore,
			ProjectCount:     snapshot.ProjectCount,
			TriggerProjectID: triggerProjectID,
			AchievedAt:       updatedAt,
		}
	}

	if err := s.users.UpdateScoring(ctx, &user, entry); err != nil {
		span.RecordError(err)
		return SkillUpdate{}, err
	}

	if levelChanged {
		observability.SkillLevelChanges().Inc()
		s.publishLevelChange(ctx, dto.SkillLevelChangedEvent{
			UserID:       userID,
			OldLevel:     oldLevel,
			NewLevel:     newLevel,
			AverageScore: snapshot.AverageScore,
		})
	}

	return SkillUpdate{
		LevelChanged: levelChanged,
		OldLevel:     oldLevel,
		NewLevel:     newLevel,
		AverageScore: snapshot.AverageScore,
		ProjectCount: snapshot.ProjectCount,
	}, nil
}

// SkillProfile returns the user's persisted skill standing with the full
// progression ledger.
func (s *userSkillLevelService) SkillProfile(ctx context.Context, userID string) (dto.SkillLevelResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SkillLevelResponse{}, ErrUserNotFound
		}
		return dto.SkillLevelResponse{}, err
	}

	snapshot, err := s.CalculateUserSkillLevel(ctx, userID)
	if err != nil {
		return dto.SkillLevelResponse{}, err
	}

	level := scoring.SkillLevel(user.CalculatedSkillLevel)
	if level == "" {
		level = snapshot.Level
	}

	return dto.SkillLevelResponse{
		UserID:       user.ID,
		SkillLevel:   string(level),
		AverageScore: snapshot.AverageScore,
		Confidence:   snapshot.Confidence,
		ProjectCount: snapshot.ProjectCount,
		Progress:     scoring.ProgressToNextLevel(clampAverage(snapshot.AverageScore), level),
		Progression:  dto.NewSkillProgressionEntryResponses(user.SkillProgression),
	}, nil
}

func (s *userSkillLevelService) lockFor(userID string) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// publishLevelChange fans the event out to redis and NATS. Failures are
// logged, never surfaced; event delivery must not block scoring.
func (s *userSkillLevelService) publishLevelChange(ctx context.Context, event dto.SkillLevelChangedEvent) {
	payload, err := json.Marshal(struct {
		dto.SkillLevelChangedEvent
		Source     string    `json:"source"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		SkillLevelChangedEvent: event,
		Source:                 s.nodeID,
		OccurredAt:             s.now().UTC(),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode skill level event")
		return
	}

	if s.cache != nil {
		if err := s.cache.Publish(ctx, skillEventRedisChannel, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish skill level event to redis")
		}
	}
	if s.events != nil {
		if err := s.events.Publish(skillEventNATSSubject, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish skill level event to nats")
		}
	}

	s.logger.Info().
		Str("user_id", event.UserID).
		Str("old_level", event.OldLevel).
		Str("new_level", event.NewLevel).
		Msg("skill level changed")
}

// weightedAverage computes the recency-weighted mean of scores ordered most
// recent first.
func weightedAverage(scores []float64) float64 {
	weightedSum := 0.0
	weightTotal := 0.0
	for i, score := range scores {
		weight := math.Exp(-recencyDecayRate * float64(i))
		weightedSum += weight * score
		weightTotal += weight
	}
	if weightTotal == 0 {
		return 0
	}
	return weightedSum / weightTotal
}

// skillConfidence blends sample size against score spread. More projects and
// tighter scoring both raise confidence toward 1.
func skillConfidence(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}

	sampleFactor := math.Min(1, float64(len(scores))/float64(confidenceFullSampleSize))

	mean := 0.0
	for _, score := range scores {
		mean += score
	}
	mean /= float64(len(scores))

	variance := 0.0
	for _, score := range scores {
		variance += (score - mean) * (score - mean)
	}
	variance /= float64(len(scores))
	spreadFactor := math.Max(0, 1-math.Sqrt(variance)/confidenceSpreadDivisor)

	return confidenceSampleShare*sampleFactor + confidenceSpreadShare*spreadFactor
}

func clampAverage(average float64) int {
	rounded := int(math.Round(average))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
