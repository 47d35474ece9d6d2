package category

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"cartify/internal/cache"
	"cartify/internal/domain"
	"cartify/internal/repository/category"
	"github.com/google/uuid"
)

type Service struct {
	repo   category.Repository
	cache  cache.CatalogCache
	logger *log.Logger
}

// New builds a Service. catalogCache may be nil when no catalog cache is configured.
func New(repo category.Repository, catalogCache cache.CatalogCache, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, cache: catalogCache, logger: logger}
}

// Input is the admin payload for a category.
type Input struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Category, error) {
	c, err := validate(in)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, c)
	return created, mapWriteError(err)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	c, err := validate(in)
	if err != nil {
		return nil, err
	}
	c.ID = id
	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, mapWriteError(err)
	}
	s.invalidate(ctx, id)
	return updated, nil
}

// Delete removes the category. Its products stay and lose their category_id, so every cached
// catalog read is dropped.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Upsert creates the category or refreshes its description. Used by the seed and import tools.
func (s *Service) Upsert(ctx context.Context, in Input) (*domain.Category, error) {
	c, err := validate(in)
	if err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, c)
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		s.logger.Printf("category service: cache invalidate category_id=%s error=%v", id, err)
	}
}

func validate(in Input) (domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if len([]rune(name)) < 2 {
		return domain.Category{}, domain.Validation("invalid name")
	}
	return domain.Category{Name: name, Description: strings.TrimSpace(in.Description)}, nil
}

func mapWriteError(err error) error {
	if errors.Is(err, domain.ErrAlreadyExists) {
		return domain.Validation("category name already exists")
	}
	return err
}
