package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

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

// Find loads an order with its line items.
func (r *Repository) Find(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.base.DB(ctx).
		Preload("Items").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return &order, nil
}

// FindForUpdate loads the order row under FOR UPDATE so concurrent status
// changes serialize on it. Must run inside a transaction.
func (r *Repository) FindForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.base.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking order")
	}
	return &order, nil
}

// Create persists the order and its line items in one write.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	if err := r.base.DB(ctx).Create(order).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}
	return nil
}

// Save writes back the mutated order fields.
func (r *Repository) Save(ctx context.Context, order *models.Order) error {
	err := r.base.DB(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":          order.Status,
			"payment_status":  order.PaymentStatus,
			"gateway_txn_ref": order.GatewayTxnRef,
			"paid_at":         order.PaidAt,
			"completed_at":    order.CompletedAt,
			"cancelled_at":    order.CancelledAt,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
	}
	return nil
}

// ListByCustomer returns the customer's orders newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	err := r.base.DB(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return out, nil
}
