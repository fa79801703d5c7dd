package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvnd/lumenshop-backend/internal/repo"
	pkgerrors "github.com/minhvnd/lumenshop-backend/pkg/errors"
)

// Ledger performs stock movements against product_variants.available_qty.
// All mutations are conditional single-statement updates so concurrent
// checkouts can never drive stock negative.
type Ledger struct {
	base repo.Base
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{base: repo.NewBase(db)}
}

// WithTx rebinds the ledger onto an open transaction.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{base: l.base.WithTx(tx)}
}

// TryReserve decrements available stock for the variant if and only if at
// least qty units remain. A zero-row update means there was not enough stock;
// callers receive INSUFFICIENT_STOCK with the variant attached.
func (l *Ledger) TryReserve(ctx context.Context, variantID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation quantity must be positive")
	}

	res := l.base.DB(ctx).Exec(
		`UPDATE product_variants
		 SET available_qty = available_qty - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND available_qty >= ?`,
		qty, variantID, qty,
	)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "reserving stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"variant_id": variantID.String(),
				"requested":  qty,
			})
	}
	return nil
}

// Release returns previously reserved units to the variant. Used when an
// order is cancelled after its stock was committed.
func (l *Ledger) Release(ctx context.Context, variantID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "release quantity must be positive")
	}

	res := l.base.DB(ctx).Exec(
		`UPDATE product_variants
		 SET available_qty = available_qty + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		qty, variantID,
	)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "releasing stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	return nil
}

// AvailableQty reads the current stock level for a variant.
func (l *Ledger) AvailableQty(ctx context.Context, variantID uuid.UUID) (int, error) {
	var qty int
	err := l.base.DB(ctx).
		Raw(`SELECT available_qty FROM product_variants WHERE id = ?`, variantID).
		Scan(&qty).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading stock level")
	}
	return qty, nil
}
