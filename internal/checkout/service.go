package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/minhvnd/lumenshop-backend/internal/cart"
	"github.com/minhvnd/lumenshop-backend/internal/catalog"
	"github.com/minhvnd/lumenshop-backend/internal/inventory"
	"github.com/minhvnd/lumenshop-backend/internal/orders"
	"github.com/minhvnd/lumenshop-backend/pkg/config"
	"github.com/minhvnd/lumenshop-backend/pkg/db"
	"github.com/minhvnd/lumenshop-backend/pkg/db/models"
	"github.com/minhvnd/lumenshop-backend/pkg/enums"
	pkgerrors "github.com/minhvnd/lumenshop-backend/pkg/errors"
	"github.com/minhvnd/lumenshop-backend/pkg/logger"
)

// Service converts a customer's active cart into an order. The whole
// conversion runs in one transaction: stock reservation, order creation, and
// cart close-out either all commit or all roll back.
type Service struct {
	client  *db.Client
	carts   *cart.Repository
	catalog *catalog.Repository
	orders  *orders.Repository
	cfg     config.CheckoutConfig
	logg    *logger.Logger
}

func NewService(
	client *db.Client,
	carts *cart.Repository,
	catalogRepo *catalog.Repository,
	orderRepo *orders.Repository,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
) (*Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service requires a db client")
	}
	if carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service requires a cart repository")
	}
	if catalogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service requires a catalog repository")
	}
	if orderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service requires an order repository")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 25 * time.Millisecond
	}
	return &Service{
		client:  client,
		carts:   carts,
		catalog: catalogRepo,
		orders:  orderRepo,
		cfg:     cfg,
		logg:    logg,
	}, nil
}

// Input carries the order details captured at checkout time.
type Input struct {
	ShippingAddress string
}

// CreateOrderFromCart runs the checkout. Transient transaction conflicts are
// retried a bounded number of times; exhaustion surfaces CHECKOUT_CONFLICT so
// the client knows a retry may still succeed.
func (s *Service) CreateOrderFromCart(ctx context.Context, customerID uuid.UUID, input Input) (*models.Order, error) {
	var out *models.Order

	backoff := retry.WithMaxRetries(uint64(s.cfg.MaxAttempts-1), retry.NewConstant(s.cfg.RetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		order, err := s.attempt(ctx, customerID, input)
		if err != nil {
			if db.IsSerializationFailure(err) {
				return retry.RetryableError(
					pkgerrors.Wrap(pkgerrors.CodeCheckoutConflict, err, "checkout transaction conflicted"),
				)
			}
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		lctx := s.logg.WithCustomerID(ctx, customerID.String())
		lctx = s.logg.WithOrderID(lctx, out.ID.String())
		s.logg.Info(lctx, "checkout completed")
	}
	return out, nil
}

func (s *Service) attempt(ctx context.Context, customerID uuid.UUID, input Input) (*models.Order, error) {
	var created *models.Order
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)

		activeCart, err := carts.FindActiveByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		if len(activeCart.Lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart contains no items")
		}

		variantIDs := make([]uuid.UUID, 0, len(activeCart.Lines))
		for _, line := range activeCart.Lines {
			if line.Quantity <= 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart line quantity must be positive").
					WithDetails(map[string]any{"variant_id": line.VariantID.String()})
			}
			variantIDs = append(variantIDs, line.VariantID)
		}

		views, err := s.catalog.WithTx(tx).FindVariantViews(ctx, variantIDs)
		if err != nil {
			return err
		}

		ledger := inventory.NewLedger(tx)
		order := &models.Order{
			CustomerID:      customerID,
			CartID:          activeCart.ID,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusUnpaid,
			Currency:        enums.CurrencyVND,
			ShippingAddress: input.ShippingAddress,
		}

		subtotal := 0
		for _, line := range activeCart.Lines {
			view := views[line.VariantID]

			if err := ledger.TryReserve(ctx, line.VariantID, line.Quantity); err != nil {
				return err
			}

			lineSubtotal := view.Variant.UnitPriceCents * line.Quantity
			subtotal += lineSubtotal
			if view.Product.Currency.IsValid() {
				order.Currency = view.Product.Currency
			}
			order.Items = append(order.Items, models.OrderLineItem{
				ProductID:         view.Product.ID,
				VariantID:         view.Variant.ID,
				NameSnapshot:      view.Product.Name + " / " + view.Variant.Name,
				UnitPriceCents:    view.Variant.UnitPriceCents,
				Quantity:          line.Quantity,
				LineSubtotalCents: lineSubtotal,
				WarrantyMonths:    view.WarrantyMonths(),
			})
		}
		order.SubtotalCents = subtotal
		order.TotalCents = subtotal

		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		if err := carts.ClearLines(ctx, activeCart.ID); err != nil {
			return err
		}
		if err := carts.MarkConverted(ctx, activeCart.ID); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
