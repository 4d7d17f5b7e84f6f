package tags

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/redis/go-redis/v9"

	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

const cacheKeyPrefix = "catalog:tag:"

type Service struct {
	repo     Repository
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewService constructs the tag service. cache may be nil; resolution then
// always hits storage.
func NewService(repo Repository, cache *redis.Client, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

// Normalize lowercases the name and strips all whitespace.
func Normalize(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

// ResolveOrCreate maps each input name to a tag id, creating missing tags on
// first use. Inputs normalizing to the same string resolve to the same id,
// and the result order matches the input order.
func (s *Service) ResolveOrCreate(ctx context.Context, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	resolved := make(map[string]int64, len(names))
	for _, name := range names {
		normalized := Normalize(name)
		if normalized == "" {
			return nil, fmt.Errorf("tag name %q normalizes to empty: %w", name, shared.ErrValidation)
		}
		if id, ok := resolved[normalized]; ok {
			ids = append(ids, id)
			continue
		}
		id, err := s.resolve(ctx, normalized)
		if err != nil {
			return nil, err
		}
		resolved[normalized] = id
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Service) resolve(ctx context.Context, normalized string) (int64, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKeyPrefix+normalized).Result()
		if err == nil {
			if id, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
				return id, nil
			}
		}
	}
	id, err := s.repo.Upsert(ctx, normalized)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKeyPrefix+normalized, strconv.FormatInt(id, 10), s.cacheTTL).Err()
	}
	return id, nil
}

// LinkProducts attaches tags to the product. Existing pairs are skipped, so
// the call is idempotent.
func (s *Service) LinkProducts(ctx context.Context, productID int64, tagIDs []int64) error {
	if productID <= 0 {
		return fmt.Errorf("invalid product id: %w", shared.ErrValidation)
	}
	for _, tagID := range tagIDs {
		if err := s.repo.InsertLink(ctx, productID, tagID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (Tag, error) {
	if id <= 0 {
		return Tag{}, fmt.Errorf("invalid tag id: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}
