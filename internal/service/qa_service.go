package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"learning_copilot_backend/internal/ai"
	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/internal/repository"
	"learning_copilot_backend/internal/util"
	"learning_copilot_backend/pkg/logger"

	"go.uber.org/zap"
)

// QAService answers student questions grounded in retrieved content.
type QAService struct {
	AI        *ai.Client
	Content   *ContentService
	EventRepo *repository.EventRepository
}

func NewQAService(aiClient *ai.Client, content *ContentService, eventRepo *repository.EventRepository) *QAService {
	return &QAService{AI: aiClient, Content: content, EventRepo: eventRepo}
}

type QAAnswer struct {
	Answer  string              `json:"answer"`
	Sources []model.ContentItem `json:"sources,omitempty"`
}

const qaSystemPrompt = "You are a friendly learning assistant for students. Answer clearly at the student's level. When background material is provided, ground your answer in it and do not invent facts beyond it."

const (
	qaCandidateCount = 8
	qaSourceCount    = 3
)

// Ask retrieves supporting content for the question, re-ranks it by
// embedding similarity and asks the model for a grounded answer. Retrieval
// failure degrades to an ungrounded answer rather than failing the question.
func (s *QAService) Ask(ctx context.Context, user *model.User, question string) (*QAAnswer, error) {
	start := time.Now()

	sources, err := s.Content.Search(ctx, question, "", "", qaCandidateCount)
	if err != nil {
		logger.Log.Warn("content retrieval for question failed, answering without grounding",
			zap.Error(err))
		sources = nil
	}
	sources = s.rankByRelevance(ctx, question, sources)
	if len(sources) > qaSourceCount {
		sources = sources[:qaSourceCount]
	}

	var prompt strings.Builder
	if profile := user.Profile(); profile.GradeLevel != nil {
		fmt.Fprintf(&prompt, "The student is in grade %d.\n\n", *profile.GradeLevel)
	}
	if len(sources) > 0 {
		prompt.WriteString("Background material:\n")
		for _, item := range sources {
			fmt.Fprintf(&prompt, "- %s (%s): %s\n", item.Title, item.ContentType, item.Description)
		}
		prompt.WriteString("\n")
	}
	fmt.Fprintf(&prompt, "Question: %s", question)

	answer, err := s.AI.ChatCompletion(ctx, ai.ChatCompletionRequest{
		Messages: []ai.ChatMessage{
			{Role: "system", Content: qaSystemPrompt},
			{Role: "user", Content: prompt.String()},
		},
	})
	if err != nil {
		return nil, util.NewUpstreamError("ai", "question answering", err)
	}

	if s.EventRepo != nil {
		_ = s.EventRepo.Create(&model.LearningEvent{
			UserID:    user.ID,
			EventType: model.EventQuestionAsked,
			Detail:    question,
			Duration:  int(time.Since(start).Milliseconds()),
			Succeeded: true,
		})
	}

	return &QAAnswer{Answer: answer, Sources: sources}, nil
}

// rankByRelevance reorders keyword-matched candidates by cosine similarity
// between the question embedding and each item's embedding. Any embedding
// failure keeps the keyword order.
func (s *QAService) rankByRelevance(ctx context.Context, question string, candidates []model.ContentItem) []model.ContentItem {
	if len(candidates) < 2 {
		return candidates
	}

	questionVec, err := s.AI.CreateEmbedding(ctx, question)
	if err != nil {
		logger.Log.Warn("question embedding failed, keeping keyword order", zap.Error(err))
		return candidates
	}

	type scoredItem struct {
		item  model.ContentItem
		score float64
	}
	ranked := make([]scoredItem, 0, len(candidates))
	for _, item := range candidates {
		vec, err := s.AI.CreateEmbedding(ctx, item.Title+". "+item.Description)
		if err != nil {
			logger.Log.Warn("content embedding failed, keeping keyword order",
				zap.String("content_id", item.ID), zap.Error(err))
			return candidates
		}
		ranked = append(ranked, scoredItem{item: item, score: cosineSimilarity(questionVec, vec)})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]model.ContentItem, len(ranked))
	for i, r := range ranked {
		out[i] = r.item
	}
	return out
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
