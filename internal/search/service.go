package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/grocerease/grocerease-backend/pkg/cache"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
	"github.com/grocerease/grocerease-backend/pkg/logger"
	"github.com/grocerease/grocerease-backend/pkg/pagination"
)

const (
	// FiltersCacheKey holds the /search/filters payload.
	FiltersCacheKey        = "search:filters"
	DefaultFiltersCacheTTL = 5 * time.Minute

	minSuggestionLength    = 2
	defaultSuggestionLimit = 10
	maxSuggestionLimit     = 20
)

const (
	SuggestAll        = "all"
	SuggestItems      = "items"
	SuggestStores     = "stores"
	SuggestCategories = "categories"
)

// Service answers catalogue searches.
type Service interface {
	Search(ctx context.Context, p Params) (*Result, error)
	Advanced(ctx context.Context, req AdvancedRequest) (*Result, error)
	Preset(ctx context.Context, name string, base Params) (*Result, error)
	Filters(ctx context.Context) (*FilterOptions, error)
	Suggestions(ctx context.Context, q, kind, limit string) (*Suggestions, error)
	// Page runs a resolved query without facets, for callers that scope it first.
	Page(ctx context.Context, q Query) (*Page, error)
}

// Page is one page of matching items.
type Page struct {
	Items      []models.GroceryItem `json:"items"`
	Pagination pagination.Meta      `json:"pagination"`
}

// Facets are the option lists computed alongside every search.
type Facets struct {
	Categories []string `json:"categories"`
	Stores     []string `json:"stores"`
	Units      []string `json:"units"`
}

// FilterOptions is the cached payload of /search/filters.
type FilterOptions struct {
	Facets
	PriceRange  PriceRange   `json:"priceRange"`
	SortOptions []SortOption `json:"sortOptions"`
}

type Result struct {
	Results          []models.GroceryItem `json:"results"`
	Pagination       pagination.Meta      `json:"pagination"`
	AppliedFilters   AppliedFilters       `json:"appliedFilters"`
	AvailableFilters Facets               `json:"availableFilters"`
}

type Suggestions struct {
	Items      []string `json:"items"`
	Stores     []string `json:"stores"`
	Categories []string `json:"categories"`
}

type service struct {
	repo     *Repository
	cache    cache.Cache
	cacheTTL time.Duration
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams bundles the search service dependencies.
type ServiceParams struct {
	Repo     *Repository
	Cache    cache.Cache
	CacheTTL time.Duration
	Logger   *logger.Logger
	Clock    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("search repository required")
	}
	if params.Cache == nil {
		params.Cache = cache.NewMemory()
	}
	if params.CacheTTL <= 0 {
		params.CacheTTL = DefaultFiltersCacheTTL
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{
		repo:     params.Repo,
		cache:    params.Cache,
		cacheTTL: params.CacheTTL,
		logg:     params.Logger,
		now:      params.Clock,
	}, nil
}

// InvalidParams is the validation error for a failed ValidationResult.
func InvalidParams(res ValidationResult) error {
	return pkgerrors.Validation("Invalid search parameters").WithDetails(map[string]any{"errors": res.Errors})
}

func (s *service) Search(ctx context.Context, p Params) (*Result, error) {
	if res := CheckSearchParams(p); !res.IsValid {
		return nil, InvalidParams(res)
	}
	return s.run(ctx, BuildQuery(p, s.now()))
}

func (s *service) Advanced(ctx context.Context, req AdvancedRequest) (*Result, error) {
	if res := req.Validate(); !res.IsValid {
		return nil, InvalidParams(res)
	}
	return s.run(ctx, req.Query(s.now()))
}

func (s *service) Preset(ctx context.Context, name string, base Params) (*Result, error) {
	p, ok := ApplyPreset(strings.TrimSpace(name), base)
	if !ok {
		return nil, pkgerrors.NotFound("Preset not found").WithDetails(map[string]any{"validPresets": PresetNames()})
	}
	return s.Search(ctx, p)
}

// run fetches the page, the total and the facets concurrently.
func (s *service) run(ctx context.Context, q Query) (*Result, error) {
	var (
		items  []models.GroceryItem
		total  int64
		facets Facets
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.Find(gctx, q.Filter, q.Sort, q.Page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, q.Filter)
		return err
	})
	g.Go(func() error {
		var err error
		facets, err = s.facets(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search items")
	}

	return &Result{
		Results:          nonNil(items),
		Pagination:       pagination.NewMeta(q.Page, total),
		AppliedFilters:   q.Applied,
		AvailableFilters: facets,
	}, nil
}

func (s *service) Page(ctx context.Context, q Query) (*Page, error) {
	var (
		items []models.GroceryItem
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.Find(gctx, q.Filter, q.Sort, q.Page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, q.Filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	return &Page{Items: nonNil(items), Pagination: pagination.NewMeta(q.Page, total)}, nil
}

func (s *service) facets(ctx context.Context) (Facets, error) {
	var out Facets
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Categories, err = s.repo.DistinctValues(gctx, columnCategory)
		return err
	})
	g.Go(func() error {
		var err error
		out.Stores, err = s.repo.DistinctValues(gctx, columnStore)
		return err
	})
	g.Go(func() error {
		var err error
		out.Units, err = s.repo.DistinctValues(gctx, columnUnit)
		return err
	})
	return out, g.Wait()
}

func (s *service) Filters(ctx context.Context) (*FilterOptions, error) {
	opts, err := cache.GetOrLoad(ctx, s.cache, FiltersCacheKey, s.cacheTTL, s.loadFilters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load filter options")
	}
	return &opts, nil
}

func (s *service) loadFilters(ctx context.Context) (FilterOptions, error) {
	var (
		facets Facets
		prices PriceRange
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		facets, err = s.facets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		prices, err = s.repo.PriceRange(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return FilterOptions{}, err
	}
	s.logg.Debug(ctx, "search.filters.loaded")
	return FilterOptions{Facets: facets, PriceRange: prices, SortOptions: SortOptions()}, nil
}

func (s *service) Suggestions(ctx context.Context, q, kind, rawLimit string) (*Suggestions, error) {
	out := &Suggestions{Items: []string{}, Stores: []string{}, Categories: []string{}}
	q = strings.TrimSpace(q)
	if len([]rune(q)) < minSuggestionLength {
		return out, nil
	}

	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = SuggestAll
	}
	switch kind {
	case SuggestAll, SuggestItems, SuggestStores, SuggestCategories:
	default:
		return nil, pkgerrors.Validation("type must be one of all, items, stores, categories")
	}
	limit := suggestionLimit(rawLimit)

	g, gctx := errgroup.WithContext(ctx)
	if kind == SuggestAll || kind == SuggestItems {
		g.Go(func() error {
			var err error
			out.Items, err = s.repo.Matching(gctx, columnItemName, q, limit)
			return err
		})
	}
	if kind == SuggestAll || kind == SuggestStores {
		g.Go(func() error {
			var err error
			out.Stores, err = s.repo.Matching(gctx, columnStore, q, limit)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load suggestions")
	}
	if kind == SuggestAll || kind == SuggestCategories {
		out.Categories = matchCategories(q, limit)
	}
	return out, nil
}

func suggestionLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit < 1 {
		return defaultSuggestionLimit
	}
	if limit > maxSuggestionLimit {
		return maxSuggestionLimit
	}
	return limit
}

func matchCategories(q string, limit int) []string {
	needle := strings.ToLower(q)
	out := []string{}
	for _, c := range enums.Categories() {
		if strings.Contains(c.String(), needle) {
			out = append(out, c.String())
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func nonNil(items []models.GroceryItem) []models.GroceryItem {
	if items == nil {
		return []models.GroceryItem{}
	}
	return items
}
