package repository

import (
	"context"
	"errors"

	"storefront-api/internal/domain"
	"storefront-api/internal/observability"

	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

type ProductListQuery struct {
	PageRequest
	PublishedOnly bool
	TitlePrefix   string
}

type ProductRepository interface {
	FindByID(id uint) (*domain.Product, error)
	ListPaged(query ProductListQuery) (PageResult[domain.Product], error)
	Create(p *domain.Product) error
	Update(p *domain.Product) error
	Delete(id uint) error
}

type GormProductRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &GormProductRepository{db: db} }

func (r *GormProductRepository) FindByID(id uint) (*domain.Product, error) {
	var p domain.Product
	err := r.db.First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "product", "find_by_id", "not_found")
			return nil, ErrProductNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "product", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "find_by_id", "success")
	return &p, nil
}

func (r *GormProductRepository) ListPaged(query ProductListQuery) (PageResult[domain.Product], error) {
	req := normalizePageRequest(query.PageRequest)
	result := PageResult[domain.Product]{Page: req.Page, PageSize: req.PageSize}

	base := r.db.Model(&domain.Product{})
	if query.PublishedOnly {
		base = base.Where("published = ?", true)
	}
	if query.TitlePrefix != "" {
		base = base.Where("title LIKE ?", query.TitlePrefix+"%")
	}

	if err := base.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "list_paged", "error")
		return PageResult[domain.Product]{}, err
	}

	offset := (req.Page - 1) * req.PageSize
	if err := base.Order("id ASC").Offset(offset).Limit(req.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "list_paged", "error")
		return PageResult[domain.Product]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, req.PageSize)
	observability.RecordRepositoryOperation(context.Background(), "product", "list_paged", "success")
	return result, nil
}

func (r *GormProductRepository) Create(p *domain.Product) error {
	err := r.db.Create(p).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "create", "success")
	return nil
}

func (r *GormProductRepository) Update(p *domain.Product) error {
	err := r.db.Save(p).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "update", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "update", "success")
	return nil
}

func (r *GormProductRepository) Delete(id uint) error {
	res := r.db.Delete(&domain.Product{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "product", "delete", "not_found")
		return ErrProductNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "delete", "success")
	return nil
}
