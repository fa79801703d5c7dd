package warranty

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/minhvnd/lumenshop-backend/internal/repo"
	"github.com/minhvnd/lumenshop-backend/pkg/db"
	"github.com/minhvnd/lumenshop-backend/pkg/db/models"
	"github.com/minhvnd/lumenshop-backend/pkg/enums"
	pkgerrors "github.com/minhvnd/lumenshop-backend/pkg/errors"
	"github.com/minhvnd/lumenshop-backend/pkg/logger"
	"github.com/minhvnd/lumenshop-backend/pkg/metrics"
)

// Matches both the Postgres constraint name and SQLite's column-path message.
const uniqueLineItemConstraint = "order_line_item_id"

// Issuer creates warranties for completed orders. Issuance is idempotent per
// line item: the unique index on order_line_item_id is the backstop, so a
// duplicate insert is treated as already-issued rather than an error.
type Issuer struct {
	defaultMonths int
	metrics       *metrics.CommerceMetrics
	logg          *logger.Logger
}

func NewIssuer(defaultMonths int, m *metrics.CommerceMetrics, logg *logger.Logger) *Issuer {
	if defaultMonths <= 0 {
		defaultMonths = 12
	}
	return &Issuer{defaultMonths: defaultMonths, metrics: m, logg: logg}
}

// IssueForOrder creates one warranty per line item. Each insert is its own
// write: a failure on one line is accumulated and does not stop the others,
// so issuance is best-effort from the caller's point of view. Coverage starts
// at the order's placement time, falling back to now for zero timestamps.
func (i *Issuer) IssueForOrder(ctx context.Context, gdb *gorm.DB, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "order is required")
	}

	start := order.CreatedAt.UTC()
	if start.IsZero() {
		start = time.Now().UTC()
	}

	var errs error
	issued := 0
	for _, item := range order.Items {
		var existing int64
		err := gdb.WithContext(ctx).
			Model(&models.Warranty{}).
			Where("order_line_item_id = ?", item.ID).
			Count(&existing).Error
		if err != nil {
			errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking existing warranty"))
			continue
		}
		if existing > 0 {
			continue
		}

		months := item.WarrantyMonths
		if months <= 0 {
			months = i.defaultMonths
		}
		w := &models.Warranty{
			OrderID:         order.ID,
			OrderLineItemID: item.ID,
			CustomerID:      order.CustomerID,
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			Status:          enums.WarrantyStatusActive,
			Months:          months,
			StartAt:         start,
			EndAt:           start.AddDate(0, months, 0),
		}
		if err := gdb.WithContext(ctx).Create(w).Error; err != nil {
			// The unique index catches the race between the check above and
			// a concurrent issuer; losing it means the warranty exists.
			if db.IsUniqueViolation(err, uniqueLineItemConstraint) {
				continue
			}
			errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issuing warranty"))
			continue
		}
		issued++
	}
	i.metrics.AddWarrantiesIssued(issued)
	if errs != nil {
		return errs
	}

	if i.logg != nil {
		lctx := i.logg.WithOrderID(ctx, order.ID.String())
		i.logg.Info(lctx, "warranties issued for order")
	}
	return nil
}

// Repository reads and maintains warranty rows outside of issuance.
type Repository struct {
	base repo.Base
}

func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(gdb)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.WithTx(tx)}
}

// ListByOrder returns the warranties issued for an order.
func (r *Repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Warranty, error) {
	var out []models.Warranty
	err := r.base.DB(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing warranties")
	}
	return out, nil
}

// ExpireOverdue flips active warranties whose coverage window has closed.
// Returns the number of rows expired.
func (r *Repository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.base.DB(ctx).
		Model(&models.Warranty{}).
		Where("status = ? AND end_at <= ?", enums.WarrantyStatusActive, now).
		Update("status", enums.WarrantyStatusExpired)
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "expiring warranties")
	}
	return res.RowsAffected, nil
}
