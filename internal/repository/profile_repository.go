package repository

import (
	"context"
	"errors"

	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/internal/search"
	"learning_copilot_backend/internal/util"
)

// ProfileRepository keeps the student-profile projection in the profiles
// index so retrieval-side consumers see the same documents as the rest of
// the corpus.
type ProfileRepository struct {
	Client *search.Client
}

func NewProfileRepository(client *search.Client) *ProfileRepository {
	return &ProfileRepository{Client: client}
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile *model.StudentProfile) error {
	if err := r.Client.UploadDocuments(ctx, util.IndexProfiles, profile); err != nil {
		return util.NewUpstreamError("search", "profile upsert", err)
	}
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	if err := r.Client.GetDocument(ctx, util.IndexProfiles, id, &profile); err != nil {
		if errors.Is(err, search.ErrDocumentNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, util.NewUpstreamError("search", "profile lookup", err)
	}
	return &profile, nil
}
