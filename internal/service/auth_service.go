package service

import (
	"context"
	"errors"

	"learning_copilot_backend/internal/config"
	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/internal/repository"
	"learning_copilot_backend/internal/util"
	"learning_copilot_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService owns user accounts and the student-profile projection. The
// profile document is re-upserted into the index on every change so the
// retrieval side always sees the current profile.
type AuthService struct {
	UserRepo    *repository.UserRepository
	ProfileRepo *repository.ProfileRepository
	Cfg         *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:    userRepo,
		ProfileRepo: profileRepo,
		Cfg:         cfg,
	}
}

func (s *AuthService) Register(ctx context.Context, user *model.User) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	if user.LearningStyle == "" {
		user.LearningStyle = model.Mixed
	}

	if err := s.UserRepo.Create(user); err != nil {
		return err
	}

	s.syncProfile(ctx, user)
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", nil, util.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrUnauthorized
	}

	if err := s.UserRepo.UpdateLastLogin(user.ID); err != nil {
		logger.Log.Warn("failed to update last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) GetUser(claims *util.Claims) (*model.User, error) {
	user, err := s.UserRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// ProfileUpdate carries the mutable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name          *string              `json:"name"`
	GradeLevel    *int                 `json:"gradeLevel"`
	Subjects      *[]string            `json:"subjectsOfInterest"`
	LearningStyle *model.LearningStyle `json:"learningStyle"`
}

func (s *AuthService) UpdateProfile(ctx context.Context, claims *util.Claims, update ProfileUpdate) (*model.User, error) {
	user, err := s.GetUser(claims)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.GradeLevel != nil {
		user.GradeLevel = update.GradeLevel
	}
	if update.Subjects != nil {
		user.Subjects = *update.Subjects
	}
	if update.LearningStyle != nil {
		user.LearningStyle = *update.LearningStyle
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}

	s.syncProfile(ctx, user)
	return user, nil
}

// syncProfile pushes the profile projection into the index; failure is
// logged and does not fail the account operation.
func (s *AuthService) syncProfile(ctx context.Context, user *model.User) {
	if err := s.ProfileRepo.Upsert(ctx, user.Profile()); err != nil {
		logger.Log.Error("failed to sync profile document",
			zap.Uint("user_id", user.ID), zap.Error(err))
	}
}
