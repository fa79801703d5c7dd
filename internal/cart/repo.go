package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvnd/lumenshop-backend/internal/repo"
	"github.com/minhvnd/lumenshop-backend/pkg/db/models"
	"github.com/minhvnd/lumenshop-backend/pkg/enums"
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

// FindActiveByCustomer loads the customer's open cart with its lines.
func (r *Repository) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.base.DB(ctx).
		Preload("Lines").
		Where("customer_id = ? AND status = ?", customerID, enums.CartStatusActive).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart for customer")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	return &cart, nil
}

// MarkConverted closes the cart after checkout has committed its order.
func (r *Repository) MarkConverted(ctx context.Context, cartID uuid.UUID) error {
	res := r.base.DB(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND status = ?", cartID, enums.CartStatusActive).
		Update("status", enums.CartStatusConverted)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "marking cart converted")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is not active")
	}
	return nil
}

// ClearLines removes the cart's lines once they have been snapshotted onto an
// order.
func (r *Repository) ClearLines(ctx context.Context, cartID uuid.UUID) error {
	err := r.base.DB(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartLine{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart lines")
	}
	return nil
}
