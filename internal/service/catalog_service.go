package service

import (
	"storefront-api/internal/domain"
	"storefront-api/internal/repository"
)

// CatalogService fronts the product store for the storefront handlers.
// Public listings only see published products; the admin surface sees all.
type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) ListPublished(page, pageSize int, titlePrefix string) (repository.PageResult[domain.Product], error) {
	return s.products.ListPaged(repository.ProductListQuery{
		PageRequest:   repository.PageRequest{Page: page, PageSize: pageSize},
		PublishedOnly: true,
		TitlePrefix:   titlePrefix,
	})
}

func (s *CatalogService) ListAll(page, pageSize int) (repository.PageResult[domain.Product], error) {
	return s.products.ListPaged(repository.ProductListQuery{
		PageRequest: repository.PageRequest{Page: page, PageSize: pageSize},
	})
}

func (s *CatalogService) Get(id uint) (*domain.Product, error) {
	return s.products.FindByID(id)
}

func (s *CatalogService) Create(p *domain.Product) error {
	return s.products.Create(p)
}

func (s *CatalogService) Update(p *domain.Product) error {
	return s.products.Update(p)
}

func (s *CatalogService) Delete(id uint) error {
	return s.products.Delete(id)
}
