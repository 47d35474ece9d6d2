package product

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"strings"
	"unicode"

	"cartify/internal/cache"
	"cartify/internal/domain"
	productrepo "cartify/internal/repository/product"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Service serves catalog reads through an optional cache and validates admin mutations.
type Service struct {
	repo     productrepo.Repository
	cache    cache.CatalogCache
	group    singleflight.Group
	currency string
	logger   *log.Logger
}

// New builds a Service. catalogCache may be nil, in which case every read hits the repository.
func New(repo productrepo.Repository, catalogCache cache.CatalogCache, defaultCurrency string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if defaultCurrency == "" {
		defaultCurrency = "INR"
	}
	return &Service{repo: repo, cache: catalogCache, currency: defaultCurrency, logger: logger}
}

// Input is the admin payload for creating or replacing a product. Price is in major units.
type Input struct {
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Currency    string           `json:"currency"`
	CategoryID  *string          `json:"category_id"`
	InStock     *bool            `json:"in_stock"`
	ImageURL    string           `json:"image_url"`
}

func (s *Service) List(ctx context.Context, categoryID string) ([]domain.Product, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID != "" {
		if _, err := uuid.Parse(categoryID); err != nil {
			return nil, domain.Validation("invalid category_id")
		}
	}
	if s.cache != nil {
		list, err := s.cache.GetProductList(ctx, categoryID)
		if err == nil {
			return list, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Printf("product service: cache list category_id=%s error=%v", categoryID, err)
		}
	}

	v, err, _ := s.group.Do("list:"+categoryID, func() (any, error) {
		list, err := s.repo.List(ctx, productrepo.ListFilter{CategoryID: categoryID})
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.SetProductList(ctx, categoryID, list); err != nil {
				s.logger.Printf("product service: cache set list category_id=%s error=%v", categoryID, err)
			}
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	if s.cache != nil {
		p, err := s.cache.GetProduct(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Printf("product service: cache get id=%s error=%v", id, err)
		}
	}

	v, err, _ := s.group.Do("product:"+id, func() (any, error) {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.SetProduct(ctx, p); err != nil {
				s.logger.Printf("product service: cache set id=%s error=%v", id, err)
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	p, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, *p)
	if err != nil {
		return nil, mapWriteError(err)
	}
	s.invalidate(ctx, "")
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	updated, err := s.repo.Update(ctx, *p)
	if err != nil {
		return nil, mapWriteError(err)
	}
	s.invalidate(ctx, id)
	return updated, nil
}

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

// Upsert creates or refreshes a product keyed by slug. Used by the seed and import tools.
func (s *Service) Upsert(ctx context.Context, in Input) (*domain.Product, error) {
	p, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.Upsert(ctx, *p)
	if err != nil {
		return nil, mapWriteError(err)
	}
	s.invalidate(ctx, saved.ID)
	return saved, nil
}

// maxPriceCents is the largest price the BIGINT price_cents column can hold.
var maxPriceCents = decimal.NewFromInt(math.MaxInt64)

func (s *Service) fromInput(in Input) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if len([]rune(name)) < 2 {
		return nil, domain.Validation("invalid name")
	}
	if in.Price == nil || in.Price.IsNegative() || in.Price.Shift(2).Round(0).GreaterThan(maxPriceCents) {
		return nil, domain.Validation("invalid price")
	}
	var categoryID *string
	if in.CategoryID != nil && strings.TrimSpace(*in.CategoryID) != "" {
		id := strings.TrimSpace(*in.CategoryID)
		if _, err := uuid.Parse(id); err != nil {
			return nil, domain.Validation("invalid category_id")
		}
		categoryID = &id
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, domain.Validation("invalid slug")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.currency
	}
	inStock := true
	if in.InStock != nil {
		inStock = *in.InStock
	}
	return &domain.Product{
		CategoryID:  categoryID,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
		PriceCents:  ToCents(*in.Price),
		Currency:    currency,
		InStock:     inStock,
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}, nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, id); err != nil {
		s.logger.Printf("product service: cache invalidate id=%s error=%v", id, err)
	}
}

func mapWriteError(err error) error {
	if errors.Is(err, domain.ErrAlreadyExists) {
		return domain.Validation("slug already in use")
	}
	return err
}

// ToCents converts a major-unit price to integer minor units, rounding half away from zero.
func ToCents(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}

// FromCents is the inverse of ToCents.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
