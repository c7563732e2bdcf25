package pet

import (
	"context"
	"strings"

	"github.com/hitoshi/furcode/internal/cache"
	"github.com/hitoshi/furcode/internal/model"
)

// BreedFetcher は外部犬種APIのクライアント。
type BreedFetcher interface {
	FetchBreedByID(ctx context.Context, id string) (*model.DogBreed, error)
	FetchBreedByName(ctx context.Context, name string) (*model.DogBreed, error)
	FetchAllBreedNames(ctx context.Context) ([]string, error)
}

// BreedService は犬種の検索結果をキャッシュする。
// 犬種のエントリは破棄されない。
type BreedService struct {
	fetcher BreedFetcher
	cache   *cache.Manager
}

// NewBreedService はBreedServiceを生成する。
func NewBreedService(fetcher BreedFetcher, cacheManager *cache.Manager) *BreedService {
	return &BreedService{fetcher: fetcher, cache: cacheManager}
}

// ByID は外部APIのIDで犬種を返す。
func (s *BreedService) ByID(ctx context.Context, id string) (*model.DogBreed, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.NewValidationError("breed id is required")
	}
	ref := cache.Ref{Region: cache.RegionDogBreeds, Key: id}
	return cache.FetchStable(ctx, s.cache, ref, func(ctx context.Context) (*model.DogBreed, error) {
		return s.fetcher.FetchBreedByID(ctx, id)
	})
}

// ByName は犬種名（大文字小文字を区別しない）で犬種を返す。
func (s *BreedService) ByName(ctx context.Context, name string) (*model.DogBreed, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewValidationError("breed name is required")
	}
	ref := cache.Ref{Region: cache.RegionDogBreedByName, Key: strings.ToLower(name)}
	return cache.FetchStable(ctx, s.cache, ref, func(ctx context.Context) (*model.DogBreed, error) {
		return s.fetcher.FetchBreedByName(ctx, name)
	})
}

// AllNames は全犬種名を返す。
func (s *BreedService) AllNames(ctx context.Context) ([]string, error) {
	ref := cache.Ref{Region: cache.RegionAllBreedsNames, Key: cache.KeyAll}
	return cache.FetchStable(ctx, s.cache, ref, func(ctx context.Context) ([]string, error) {
		names, err := s.fetcher.FetchAllBreedNames(ctx)
		if err != nil {
			return nil, err
		}
		if names == nil {
			names = []string{}
		}
		return names, nil
	})
}
