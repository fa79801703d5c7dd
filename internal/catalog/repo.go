package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvnd/lumenshop-backend/internal/repo"
	"github.com/minhvnd/lumenshop-backend/pkg/db/models"
	pkgerrors "github.com/minhvnd/lumenshop-backend/pkg/errors"
)

type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.WithTx(tx)}
}

// VariantView joins the variant with the product fields checkout snapshots.
type VariantView struct {
	Variant models.ProductVariant
	Product models.Product
}

// WarrantyMonths resolves the coverage period: the variant override wins,
// otherwise the product default applies.
func (v VariantView) WarrantyMonths() int {
	if v.Variant.WarrantyMonths != nil {
		return *v.Variant.WarrantyMonths
	}
	return v.Product.WarrantyMonths
}

// FindVariantViews loads active variants plus their parent products, keyed by
// variant ID. Missing or inactive variants surface as NOT_FOUND.
func (r *Repository) FindVariantViews(ctx context.Context, variantIDs []uuid.UUID) (map[uuid.UUID]VariantView, error) {
	if len(variantIDs) == 0 {
		return map[uuid.UUID]VariantView{}, nil
	}

	var variants []models.ProductVariant
	err := r.base.DB(ctx).
		Where("id IN ? AND active = ?", variantIDs, true).
		Find(&variants).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variants")
	}

	productIDs := make([]uuid.UUID, 0, len(variants))
	for _, v := range variants {
		productIDs = append(productIDs, v.ProductID)
	}

	var products []models.Product
	if len(productIDs) > 0 {
		err = r.base.DB(ctx).
			Where("id IN ?", productIDs).
			Find(&products).Error
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading products")
		}
	}
	productsByID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	views := make(map[uuid.UUID]VariantView, len(variants))
	for _, v := range variants {
		views[v.ID] = VariantView{Variant: v, Product: productsByID[v.ProductID]}
	}

	for _, id := range variantIDs {
		if _, ok := views[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not available").
				WithDetails(map[string]any{"variant_id": id.String()})
		}
	}
	return views, nil
}
