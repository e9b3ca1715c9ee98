package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/internal/search"
	"learning_copilot_backend/internal/util"
	"learning_copilot_backend/pkg/logger"

	"go.uber.org/zap"
)

// ContentRepository reads the educational-content index. The index is
// populated by an external ingestion process and read-only here.
type ContentRepository struct {
	Client *search.Client
}

func NewContentRepository(client *search.Client) *ContentRepository {
	return &ContentRepository{Client: client}
}

// BuildFilter combines an exact subject match with the grade-level window
// [grade-1, grade+1]. A nil grade omits the window.
func BuildFilter(subject string, grade *int) string {
	clauses := []string{search.Eq("subject", subject)}
	if grade != nil {
		clauses = append(clauses, search.GradeWindow("grade_levels", *grade))
	}
	return search.And(clauses...)
}

// Retrieve returns up to count items matching the student's subject and
// grade, in service ranking order. Client errors are logged and surface as
// an empty list so the caller can fall back and generation can proceed.
func (r *ContentRepository) Retrieve(ctx context.Context, profile *model.StudentProfile, subject string, count int) []model.ContentItem {
	queryText := subject
	if profile.GradeLevel != nil {
		queryText = fmt.Sprintf("%s for grade %d", subject, *profile.GradeLevel)
	}

	items, err := r.query(ctx, search.Query{
		Search: queryText,
		Filter: BuildFilter(subject, profile.GradeLevel),
		Top:    count,
	})
	if err != nil {
		logger.Log.Error("content retrieval failed, proceeding with empty result",
			zap.String("subject", subject), zap.Error(err))
		return nil
	}
	return items
}

// Search runs a free-text lookup, optionally narrowed to one subject and
// one topic.
func (r *ContentRepository) Search(ctx context.Context, queryText, subject, topic string, top int) ([]model.ContentItem, error) {
	q := search.Query{Search: queryText, Top: top}

	var clauses []string
	if subject != "" {
		clauses = append(clauses, search.Eq("subject", subject))
	}
	if topic != "" {
		clauses = append(clauses, search.CollectionAnyString("topics", topic))
	}
	q.Filter = search.And(clauses...)
	items, err := r.query(ctx, q)
	if err != nil {
		return nil, util.NewUpstreamError("search", "content search", err)
	}
	return items, nil
}

func (r *ContentRepository) GetByID(ctx context.Context, id string) (*model.ContentItem, error) {
	var item model.ContentItem
	if err := r.Client.GetDocument(ctx, util.IndexContent, id, &item); err != nil {
		if errors.Is(err, search.ErrDocumentNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, util.NewUpstreamError("search", "content lookup", err)
	}
	return &item, nil
}

func (r *ContentRepository) query(ctx context.Context, q search.Query) ([]model.ContentItem, error) {
	raw, err := r.Client.Search(ctx, util.IndexContent, q)
	if err != nil {
		return nil, err
	}

	items := make([]model.ContentItem, 0, len(raw))
	for _, doc := range raw {
		var item model.ContentItem
		if err := json.Unmarshal(doc, &item); err != nil {
			logger.Log.Warn("skipping malformed content document", zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
