package menu

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/teahouse-dev/tea-house-client/internal/api"
)

const noImage = "/static/images/no-image.png"

// Section is one menu category with its dishes, in catalog order.
type Section struct {
	Category api.Category
	Dishes   []api.Dish
}

// Catalog is the loaded menu. Dishes whose category is unknown are kept
// reachable through search even though no section shows them.
type Catalog struct {
	Sections []Section
	dishes   []api.Dish
}

// Loader is the slice of the gateway the service needs.
type Loader interface {
	Categories(ctx context.Context) ([]api.Category, error)
	Dishes(ctx context.Context, f api.DishFilter) ([]api.Dish, error)
}

// Service loads and normalizes the catalog.
type Service struct {
	api Loader
	log *zap.Logger
}

func NewService(loader Loader, log *zap.Logger) *Service {
	return &Service{api: loader, log: log}
}

// Load fetches categories and dishes and groups them. Failures are soft:
// the caller gets an empty catalog plus the error to show, never a panic
// or a half-built menu.
func (s *Service) Load(ctx context.Context) (Catalog, error) {
	cats, err := s.api.Categories(ctx)
	if err != nil {
		s.log.Warn("could not load categories", zap.Error(err))
		return Catalog{}, err
	}
	dishes, err := s.api.Dishes(ctx, api.DishFilter{})
	if err != nil {
		s.log.Warn("could not load dishes", zap.Error(err))
		return Catalog{}, err
	}

	for i := range dishes {
		dishes[i].ImageURL = imageURL(dishes[i])
	}

	c := Catalog{dishes: dishes}
	for _, cat := range cats {
		sec := Section{Category: cat}
		for _, d := range dishes {
			if d.CategoryID == cat.ID {
				sec.Dishes = append(sec.Dishes, d)
			}
		}
		c.Sections = append(c.Sections, sec)
	}
	s.log.Info("menu loaded",
		zap.Int("categories", len(cats)), zap.Int("dishes", len(dishes)))
	return c, nil
}

// Page fetches one page of dishes without grouping, for browsing past
// the initial load.
func (s *Service) Page(ctx context.Context, limit, offset int) ([]api.Dish, error) {
	dishes, err := s.api.Dishes(ctx, api.DishFilter{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	for i := range dishes {
		dishes[i].ImageURL = imageURL(dishes[i])
	}
	return dishes, nil
}

// imageURL falls back from image_url to image_path the same way the
// backend derives it, with a placeholder when neither is set.
func imageURL(d api.Dish) string {
	if d.ImageURL != "" {
		return d.ImageURL
	}
	if d.ImagePath != "" {
		return "/static/" + strings.TrimPrefix(d.ImagePath, "/")
	}
	return noImage
}

func (c Catalog) Empty() bool { return len(c.dishes) == 0 }

// AllDishes returns every loaded dish regardless of section.
func (c Catalog) AllDishes() []api.Dish { return c.dishes }

// FindDish looks a dish up by id.
func (c Catalog) FindDish(id int) (api.Dish, bool) {
	for _, d := range c.dishes {
		if d.ID == id {
			return d, true
		}
	}
	return api.Dish{}, false
}

// SearchByName returns dishes whose name contains the query,
// case-insensitively.
func (c Catalog) SearchByName(query string) []api.Dish {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []api.Dish
	for _, d := range c.dishes {
		if strings.Contains(strings.ToLower(d.Name), q) {
			out = append(out, d)
		}
	}
	return out
}
