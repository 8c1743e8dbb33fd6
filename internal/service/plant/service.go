package plant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"scanplant/internal/domain"
	"scanplant/internal/metrics"
	"scanplant/internal/pkg/cache"
	"scanplant/internal/pkg/geo"
	"scanplant/internal/repository"
	"scanplant/internal/service/storage"
)

const allPlantsCacheKey = "plants:all"

type Service interface {
	List(ctx context.Context) ([]domain.Plant, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Plant, error)
	ListNear(ctx context.Context, query domain.NearbyQuery) ([]domain.Plant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Plant, error)
	Search(ctx context.Context, term string) ([]domain.Plant, error)
	Create(ctx context.Context, caller domain.Caller, input domain.PlantInput, image *domain.ImageUpload) (*domain.Plant, error)
	Update(ctx context.Context, caller domain.Caller, id uuid.UUID, input domain.PlantInput, image *domain.ImageUpload) (*domain.Plant, error)
	Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error
}

type Options struct {
	DefaultRadiusKm float64
	CacheTTL        time.Duration
}

type service struct {
	plantRepo repository.PlantRepository
	storage   storage.Service
	redis     *redis.Client
	metrics   *metrics.Metrics
	opts      Options
}

func NewService(plantRepo repository.PlantRepository, store storage.Service, redis *redis.Client, m *metrics.Metrics, opts Options) Service {
	if opts.DefaultRadiusKm <= 0 {
		opts.DefaultRadiusKm = domain.DefaultNearbyRadiusKm
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	return &service{
		plantRepo: plantRepo,
		storage:   store,
		redis:     redis,
		metrics:   m,
		opts:      opts,
	}
}

func (s *service) List(ctx context.Context) ([]domain.Plant, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, allPlantsCacheKey).Result(); err == nil {
			var plants []domain.Plant
			if json.Unmarshal([]byte(cached), &plants) == nil {
				s.metrics.ObserveCache("plants", true)
				return plants, nil
			}
		}
		s.metrics.ObserveCache("plants", false)
	}

	plants, err := s.plantRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.resolveImages(plants)

	if s.redis != nil {
		if data, err := json.Marshal(plants); err == nil {
			_ = s.redis.Set(ctx, allPlantsCacheKey, data, s.opts.CacheTTL).Err()
		}
	}

	return plants, nil
}

func (s *service) ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Plant, error) {
	plants, err := s.plantRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.resolveImages(plants)
	return plants, nil
}

// ListNear scans every plant and keeps those inside the radius. Results keep
// the newest-first order of List.
func (s *service) ListNear(ctx context.Context, query domain.NearbyQuery) ([]domain.Plant, error) {
	start := time.Now()
	defer s.metrics.ObserveNearbyLookup(start)

	plants, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	radius := query.RadiusOr(s.opts.DefaultRadiusKm)
	nearby := []domain.Plant{}
	for _, p := range plants {
		if geo.Within(query.Latitude, query.Longitude, p.Latitude, p.Longitude, radius) {
			nearby = append(nearby, p)
		}
	}
	return nearby, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plant, error) {
	plant, err := s.plantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plant == nil {
		return nil, domain.ErrPlantNotFound
	}
	plant.ImageURL = s.storage.Resolve(plant.ImageURL)
	return plant, nil
}

func (s *service) Search(ctx context.Context, term string) ([]domain.Plant, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx)
	}
	plants, err := s.plantRepo.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	s.resolveImages(plants)
	return plants, nil
}

func (s *service) Create(ctx context.Context, caller domain.Caller, input domain.PlantInput, image *domain.ImageUpload) (*domain.Plant, error) {
	if image.Empty() {
		return nil, domain.ErrImageRequired
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	imageURL, err := s.storage.Store(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	plant := &domain.Plant{
		ID:       uuid.New(),
		ImageURL: imageURL,
		UserID:   caller.UserID,
	}
	input.Apply(plant)

	if err := s.plantRepo.Create(ctx, plant); err != nil {
		s.discardImage(ctx, imageURL)
		return nil, err
	}

	s.invalidateCache(ctx)
	s.metrics.IncPlantCreated()

	return plant, nil
}

// Update replaces every editable field. A new image replaces the stored one;
// without one the current image is kept.
func (s *service) Update(ctx context.Context, caller domain.Caller, id uuid.UUID, input domain.PlantInput, image *domain.ImageUpload) (*domain.Plant, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	plant, err := s.getAccessible(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	oldImageURL := plant.ImageURL
	var newImageURL string
	if !image.Empty() {
		newImageURL, err = s.storage.Store(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		plant.ImageURL = newImageURL
	}

	input.Apply(plant)

	if err := s.plantRepo.Update(ctx, plant); err != nil {
		if newImageURL != "" {
			s.discardImage(ctx, newImageURL)
		}
		return nil, err
	}

	// The row now points at the new image, so the old one is unreferenced.
	if newImageURL != "" && oldImageURL != newImageURL {
		s.discardImage(ctx, oldImageURL)
	}

	s.invalidateCache(ctx)
	return plant, nil
}

// Delete removes the stored image, then the record. Comments go with the
// plant; reminders and notifications lose their plant reference.
func (s *service) Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	plant, err := s.getAccessible(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, plant.ImageURL); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	if err := s.plantRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	cache.DeletePattern(ctx, s.redis, cache.CommentsPattern(id))
	return nil
}

// getAccessible loads a plant the caller may modify. Missing and foreign
// plants both report ErrPlantNotFound.
func (s *service) getAccessible(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Plant, error) {
	plant, err := s.plantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plant == nil || !caller.CanAccess(plant.UserID) {
		return nil, domain.ErrPlantNotFound
	}
	return plant, nil
}

// discardImage removes an image no plant row references anymore.
func (s *service) discardImage(ctx context.Context, ref string) {
	if err := s.storage.Delete(ctx, ref); err != nil {
		log.Printf("Warning: failed to remove orphaned image %s: %v", ref, err)
	}
}

// resolveImages turns bare object names left by older rows into public URLs.
func (s *service) resolveImages(plants []domain.Plant) {
	for i := range plants {
		plants[i].ImageURL = s.storage.Resolve(plants[i].ImageURL)
	}
}

func (s *service) invalidateCache(ctx context.Context) {
	if s.redis != nil {
		_ = s.redis.Del(ctx, allPlantsCacheKey).Err()
	}
}
