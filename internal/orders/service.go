package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvnd/lumenshop-backend/internal/inventory"
	"github.com/minhvnd/lumenshop-backend/pkg/db"
	"github.com/minhvnd/lumenshop-backend/pkg/db/models"
	"github.com/minhvnd/lumenshop-backend/pkg/enums"
	pkgerrors "github.com/minhvnd/lumenshop-backend/pkg/errors"
	"github.com/minhvnd/lumenshop-backend/pkg/logger"
)

// StockReleaser puts reserved units back when an order is cancelled.
type StockReleaser interface {
	Release(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int) error
}

// WarrantyIssuer creates coverage for every line item of a completed order.
// Issuance is best-effort: it runs after the status change commits and each
// line item is its own write, so a partial failure never rolls the order back.
type WarrantyIssuer interface {
	IssueForOrder(ctx context.Context, gdb *gorm.DB, order *models.Order) error
}

// Service owns order reads and status transitions. All transitions run under
// a row lock so concurrent requests against the same order serialize.
type Service struct {
	client *db.Client
	repo   *Repository
	stock  StockReleaser
	wrnty  WarrantyIssuer
	logg   *logger.Logger
}

func NewService(client *db.Client, repo *Repository, stock StockReleaser, wrnty WarrantyIssuer, logg *logger.Logger) (*Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service requires a db client")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service requires a repository")
	}
	if stock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service requires a stock releaser")
	}
	if wrnty == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service requires a warranty issuer")
	}
	return &Service{client: client, repo: repo, stock: stock, wrnty: wrnty, logg: logg}, nil
}

// Get returns the order with its line items.
func (s *Service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.repo.Find(ctx, orderID)
}

// ListForCustomer returns the customer's orders newest first.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// Transition moves the order to target, firing side effects exactly once.
// Repeating the current status is a successful no-op; hooks only run when the
// status actually changes.
func (s *Service) Transition(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	var result *models.Order
	var issueWarranties bool
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		order, err := r.FindForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if order.Status == target {
			result = order
			return nil
		}
		if err := CheckTransition(order.Status, target); err != nil {
			return err
		}

		from := order.Status
		now := time.Now().UTC()
		order.Status = target

		switch target {
		case enums.OrderStatusCompleted:
			order.CompletedAt = &now
			issueWarranties = true
		case enums.OrderStatusCancelled:
			order.CancelledAt = &now
			for _, item := range order.Items {
				if err := s.stock.Release(ctx, tx, item.VariantID, item.Quantity); err != nil {
					return err
				}
			}
		}

		if err := r.Save(ctx, order); err != nil {
			return err
		}
		if s.logg != nil {
			lctx := s.logg.WithOrderID(ctx, order.ID.String())
			lctx = s.logg.WithFields(lctx, map[string]any{
				"from": from.String(),
				"to":   target.String(),
			})
			s.logg.Info(lctx, "order status changed")
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Best-effort relative to the transition itself: the order is completed
	// even if some warranties could not be written. Issuance is idempotent,
	// so ReissueWarranties can fill the gaps afterwards.
	if issueWarranties {
		if err := s.wrnty.IssueForOrder(ctx, s.client.DB(), result); err != nil {
			if s.logg != nil {
				s.logg.Error(s.logg.WithOrderID(ctx, result.ID.String()), "warranty issuance incomplete", err)
			}
		}
	}
	return result, nil
}

// ReissueWarranties retries warranty issuance for a completed order. Line
// items that already carry a warranty are skipped, so calling it on a fully
// covered order is a no-op.
func (s *Service) ReissueWarranties(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "warranties are only issued for completed orders").
			WithDetails(map[string]any{"order_id": orderID, "status": order.Status.String()})
	}
	if err := s.wrnty.IssueForOrder(ctx, s.client.DB(), order); err != nil {
		return nil, err
	}
	return order, nil
}

// ApplyPaymentResult records the gateway outcome. A success marks the order
// paid and moves a pending order into processing; a failure marks the payment
// failed and cancels the order, releasing its reserved stock. Paid is sticky
// and terminal statuses are left alone, so duplicate or late callbacks stay
// harmless.
func (s *Service) ApplyPaymentResult(ctx context.Context, orderID uuid.UUID, success bool, gatewayRef string) (*models.Order, error) {
	var result *models.Order
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		order, err := r.FindForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if order.PaymentStatus == enums.PaymentStatusPaid {
			result = order
			return nil
		}

		now := time.Now().UTC()
		if gatewayRef != "" {
			order.GatewayTxnRef = &gatewayRef
		}
		if success {
			order.PaymentStatus = enums.PaymentStatusPaid
			order.PaidAt = &now
			if order.Status == enums.OrderStatusPending {
				order.Status = enums.OrderStatusProcessing
			}
		} else {
			order.PaymentStatus = enums.PaymentStatusFailed
			if !order.Status.IsTerminal() {
				order.Status = enums.OrderStatusCancelled
				order.CancelledAt = &now
				for _, item := range order.Items {
					if err := s.stock.Release(ctx, tx, item.VariantID, item.Quantity); err != nil {
						return err
					}
				}
			}
		}

		if err := r.Save(ctx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LedgerReleaser adapts the inventory ledger to the StockReleaser hook.
type LedgerReleaser struct{}

func (LedgerReleaser) Release(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int) error {
	return inventory.NewLedger(tx).Release(ctx, variantID, qty)
}
