package comment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"scanplant/internal/domain"
	"scanplant/internal/metrics"
	"scanplant/internal/pkg/cache"
	"scanplant/internal/repository"
)

type Service interface {
	Create(ctx context.Context, caller domain.Caller, plantID uuid.UUID, input domain.CreateCommentInput) (*domain.Comment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	Update(ctx context.Context, caller domain.Caller, id uuid.UUID, input domain.UpdateCommentInput) (*domain.Comment, error)
	Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error
	ListByPlant(ctx context.Context, plantID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Comment], error)
	ListByAuthor(ctx context.Context, caller domain.Caller) ([]domain.Comment, error)
}

type service struct {
	commentRepo repository.CommentRepository
	plantRepo   repository.PlantRepository
	redis       *redis.Client
	metrics     *metrics.Metrics
	cacheTTL    time.Duration
}

func NewService(commentRepo repository.CommentRepository, plantRepo repository.PlantRepository, redis *redis.Client, m *metrics.Metrics, cacheTTL time.Duration) Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &service{
		commentRepo: commentRepo,
		plantRepo:   plantRepo,
		redis:       redis,
		metrics:     m,
		cacheTTL:    cacheTTL,
	}
}

func (s *service) Create(ctx context.Context, caller domain.Caller, plantID uuid.UUID, input domain.CreateCommentInput) (*domain.Comment, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	plant, err := s.plantRepo.GetByID(ctx, plantID)
	if err != nil {
		return nil, err
	}
	if plant == nil {
		return nil, domain.ErrCommentPlantNotFound
	}

	comment := &domain.Comment{
		ID:                  uuid.New(),
		PlantID:             plantID,
		UserID:              caller.UserID,
		Text:                input.Text,
		PlantScientificName: plant.ScientificName,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.invalidatePlantCache(ctx, plantID)
	s.metrics.IncCommentCreated()

	return comment, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, domain.ErrCommentNotFound
	}
	return comment, nil
}

func (s *service) Update(ctx context.Context, caller domain.Caller, id uuid.UUID, input domain.UpdateCommentInput) (*domain.Comment, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	comment, err := s.getAccessible(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	comment.Text = input.Text

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	s.invalidatePlantCache(ctx, comment.PlantID)
	return comment, nil
}

func (s *service) Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	comment, err := s.getAccessible(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidatePlantCache(ctx, comment.PlantID)
	return nil
}

func (s *service) ListByPlant(ctx context.Context, plantID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Comment], error) {
	params.Validate()
	cacheKey := cache.CommentsPageKey(plantID, params.Page, params.PageSize)

	exists, err := s.plantRepo.Exists(ctx, plantID)
	if err != nil {
		return domain.PaginatedResponse[domain.Comment]{}, err
	}
	if !exists {
		return domain.PaginatedResponse[domain.Comment]{}, domain.ErrPlantNotFound
	}

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var result domain.PaginatedResponse[domain.Comment]
			if json.Unmarshal([]byte(cached), &result) == nil {
				s.metrics.ObserveCache("comments", true)
				return result, nil
			}
		}
		s.metrics.ObserveCache("comments", false)
	}

	comments, total, err := s.commentRepo.ListByPlant(ctx, plantID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Comment]{}, err
	}

	result := domain.NewPaginatedResponse(comments, params.Page, params.PageSize, total)

	if s.redis != nil {
		if resultJSON, err := json.Marshal(result); err == nil {
			_ = s.redis.Set(ctx, cacheKey, resultJSON, s.cacheTTL).Err()
		}
	}

	return result, nil
}

func (s *service) ListByAuthor(ctx context.Context, caller domain.Caller) ([]domain.Comment, error) {
	return s.commentRepo.ListByUser(ctx, caller.UserID)
}

func (s *service) getAccessible(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil || !caller.CanAccess(comment.UserID) {
		return nil, domain.ErrCommentNotFound
	}
	return comment, nil
}

func (s *service) invalidatePlantCache(ctx context.Context, plantID uuid.UUID) {
	cache.DeletePattern(ctx, s.redis, cache.CommentsPattern(plantID))
}
