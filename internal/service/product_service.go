package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/repository"
	"github.com/rs/zerolog"
)

// ProductService serves the menu from the catalog
type ProductService struct {
	repo repository.ProductRepository
	log  zerolog.Logger
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository, log zerolog.Logger) *ProductService {
	return &ProductService{
		repo: repo,
		log:  log,
	}
}

// ListProducts returns the catalog in menu order. Option images that name
// no option of their product are logged, since their indicator would never
// show.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	for _, p := range products {
		if stray := strayImages(p); len(stray) > 0 {
			s.log.Warn().
				Str("product_id", p.ID).
				Strs("images", stray).
				Msg("images name unknown options")
		}
	}
	return products, nil
}

// strayImages returns images named "<product>-<category>-<option>.<ext>"
// whose category and option do not exist. Other images, such as
// "<product>-base.jpg", are not option images.
func strayImages(p models.Product) []string {
	var stray []string
	for _, img := range p.Images {
		base := strings.TrimSuffix(path.Base(img), path.Ext(img))
		rest, ok := strings.CutPrefix(base, p.ID+"-")
		if !ok {
			continue
		}
		paramID, optionID, ok := strings.Cut(rest, "-")
		if !ok {
			continue
		}
		param, found := p.Params.Get(paramID)
		if found {
			_, found = param.Options.Get(optionID)
		}
		if !found {
			stray = append(stray, img)
		}
	}
	return stray
}
