package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"learning_copilot_backend/internal/config"
	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/internal/repository"
	"learning_copilot_backend/internal/util"
	"learning_copilot_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ContentService fronts the content index with a short-lived Redis cache
// and a static fallback set so plan generation always has inputs, even
// when the index is empty or unreachable.
type ContentService struct {
	ContentRepo *repository.ContentRepository
	Cfg         *config.Config
	Redis       *redis.Client
}

func NewContentService(contentRepo *repository.ContentRepository, cfg *config.Config, rdb *redis.Client) *ContentService {
	return &ContentService{
		ContentRepo: contentRepo,
		Cfg:         cfg,
		Redis:       rdb,
	}
}

const contentCacheKeyPrefix = "content_search:"
const contentCacheTTL = 5 * time.Minute

// RetrieveForPlan returns content for the generation pipeline, falling
// back to the static set on an empty result.
func (s *ContentService) RetrieveForPlan(ctx context.Context, profile *model.StudentProfile, subject string) []model.ContentItem {
	items := s.ContentRepo.Retrieve(ctx, profile, subject, s.Cfg.Plan.RetrievalCount)
	if len(items) == 0 {
		logger.Log.Warn("no indexed content found, using fallback set",
			zap.String("subject", subject))
		return FallbackContent(subject)
	}
	return items
}

// Search is the user-facing content lookup, cached per query.
func (s *ContentService) Search(ctx context.Context, queryText, subject, topic string, top int) ([]model.ContentItem, error) {
	if top <= 0 || top > 50 {
		top = 20
	}

	cacheKey := fmt.Sprintf("%s%s:%s:%s:%d", contentCacheKeyPrefix, subject, topic, queryText, top)
	if s.Redis != nil {
		if data, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []model.ContentItem
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	items, err := s.ContentRepo.Search(ctx, queryText, subject, topic, top)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(items); err == nil {
			s.Redis.Set(ctx, cacheKey, data, contentCacheTTL)
		}
	}
	return items, nil
}

func (s *ContentService) GetByID(ctx context.Context, id string) (*model.ContentItem, error) {
	return s.ContentRepo.GetByID(ctx, id)
}

// FallbackContent is the static content set used when retrieval comes back
// empty. Durations are intentionally present here; fallback items must not
// reintroduce unresolved activities.
func FallbackContent(subject string) []model.ContentItem {
	mk := func(n int, title string, ct model.ContentType, minutes int) model.ContentItem {
		return model.ContentItem{
			ID:              fmt.Sprintf("fallback-%s-%d", ct, n),
			Title:           title,
			Subject:         subject,
			ContentType:     ct,
			Difficulty:      model.DifficultyBeginner,
			DurationMinutes: util.IntPtr(minutes),
			URL:             fmt.Sprintf("https://content.learning-copilot.example/fallback/%s/%d", ct, n),
		}
	}
	return []model.ContentItem{
		mk(1, fmt.Sprintf("Introduction to %s", subject), model.ContentLesson, 20),
		mk(2, fmt.Sprintf("%s fundamentals explained", subject), model.ContentVideo, 15),
		mk(3, fmt.Sprintf("Practice worksheet: %s basics", subject), model.ContentWorksheet, 30),
		mk(4, fmt.Sprintf("Quick quiz: check your %s knowledge", subject), model.ContentQuiz, 10),
		mk(5, fmt.Sprintf("Going further with %s", subject), model.ContentArticle, 25),
	}
}
