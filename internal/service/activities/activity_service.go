package activities

import (
	"context"

	"github.com/zvrva/tourbooking/internal/domain"
	"github.com/zvrva/tourbooking/internal/repository"
)

type ActivityUseCase interface {
	List(ctx context.Context) ([]domain.Activity, error)
	GetByID(ctx context.Context, id int64) (*domain.Activity, error)
}

type Cache interface {
	GetActivities(ctx context.Context) ([]domain.Activity, error)
	SetActivities(ctx context.Context, activities []domain.Activity) error
	GetActivity(ctx context.Context, id int64) (*domain.Activity, error)
	SetActivity(ctx context.Context, activity *domain.Activity) error
}

type ActivityService struct {
	repo  repository.ActivityRepository
	cache Cache
}

func NewActivityService(repo repository.ActivityRepository, cache Cache) *ActivityService {
	return &ActivityService{repo: repo, cache: cache}
}

func (s *ActivityService) List(ctx context.Context) ([]domain.Activity, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetActivities(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	activities, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetActivities(ctx, activities)
	}
	return activities, nil
}

func (s *ActivityService) GetByID(ctx context.Context, id int64) (*domain.Activity, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetActivity(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetActivity(ctx, activity)
	}
	return activity, nil
}

var _ ActivityUseCase = (*ActivityService)(nil)
