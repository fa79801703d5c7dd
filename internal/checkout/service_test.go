package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvnd/lumenshop-backend/internal/cart"
	"github.com/minhvnd/lumenshop-backend/internal/catalog"
	"github.com/minhvnd/lumenshop-backend/internal/orders"
	"github.com/minhvnd/lumenshop-backend/pkg/config"
	"github.com/minhvnd/lumenshop-backend/pkg/db"
	"github.com/minhvnd/lumenshop-backend/pkg/db/models"
	"github.com/minhvnd/lumenshop-backend/pkg/enums"
	pkgerrors "github.com/minhvnd/lumenshop-backend/pkg/errors"
)

func newTestClient(t *testing.T) *db.Client {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn, Driver: "sqlite"}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = client.DB().AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.Cart{},
		&models.CartLine{},
		&models.Order{},
		&models.OrderLineItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return client
}

func newTestService(t *testing.T, client *db.Client) *Service {
	t.Helper()
	svc, err := NewService(
		client,
		cart.NewRepository(client.DB()),
		catalog.NewRepository(client.DB()),
		orders.NewRepository(client.DB()),
		config.CheckoutConfig{MaxAttempts: 2},
		nil,
	)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func seedVariant(t *testing.T, gdb *gorm.DB, priceCents, qty int, warrantyOverride *int) *models.ProductVariant {
	t.Helper()
	product := &models.Product{
		Name:           "Speaker",
		Slug:           "speaker-" + uuid.NewString(),
		Currency:       enums.CurrencyVND,
		WarrantyMonths: 12,
		Active:         true,
	}
	if err := gdb.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	variant := &models.ProductVariant{
		ProductID:      product.ID,
		SKU:            "SKU-" + uuid.NewString(),
		Name:           "Walnut",
		UnitPriceCents: priceCents,
		AvailableQty:   qty,
		WarrantyMonths: warrantyOverride,
		Active:         true,
	}
	if err := gdb.Create(variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
	return variant
}

func seedCart(t *testing.T, gdb *gorm.DB, customerID uuid.UUID, lines ...models.CartLine) *models.Cart {
	t.Helper()
	c := &models.Cart{
		CustomerID: customerID,
		Status:     enums.CartStatusActive,
		Lines:      lines,
	}
	if err := gdb.Create(c).Error; err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	return c
}

func TestCreateOrderFromCart(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()
	customerID := uuid.New()

	override := 24
	variantA := seedVariant(t, client.DB(), 150000, 10, &override)
	variantB := seedVariant(t, client.DB(), 80000, 5, nil)
	seededCart := seedCart(t, client.DB(), customerID,
		models.CartLine{VariantID: variantA.ID, Quantity: 2},
		models.CartLine{VariantID: variantB.ID, Quantity: 1},
	)

	order, err := svc.CreateOrderFromCart(ctx, customerID, Input{ShippingAddress: "12 Hang Bac, Hanoi"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending order, got %s", order.Status)
	}
	if order.ShippingAddress != "12 Hang Bac, Hanoi" {
		t.Fatalf("shipping address not captured: %q", order.ShippingAddress)
	}
	if order.PaymentStatus != enums.PaymentStatusUnpaid {
		t.Fatalf("expected unpaid order, got %s", order.PaymentStatus)
	}
	wantTotal := 150000*2 + 80000
	if order.TotalCents != wantTotal || order.SubtotalCents != wantTotal {
		t.Fatalf("unexpected totals: %d / %d", order.SubtotalCents, order.TotalCents)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(order.Items))
	}
	for _, item := range order.Items {
		switch item.VariantID {
		case variantA.ID:
			if item.WarrantyMonths != 24 {
				t.Fatalf("variant override ignored: %d", item.WarrantyMonths)
			}
			if item.UnitPriceCents != 150000 {
				t.Fatalf("price not snapshotted: %d", item.UnitPriceCents)
			}
		case variantB.ID:
			if item.WarrantyMonths != 12 {
				t.Fatalf("product default ignored: %d", item.WarrantyMonths)
			}
		default:
			t.Fatalf("unexpected line item variant %s", item.VariantID)
		}
	}

	// Stock committed.
	var reloaded models.ProductVariant
	if err := client.DB().First(&reloaded, "id = ?", variantA.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.AvailableQty != 8 {
		t.Fatalf("expected 8 remaining, got %d", reloaded.AvailableQty)
	}

	// Cart closed out.
	var reloadedCart models.Cart
	if err := client.DB().Preload("Lines").First(&reloadedCart, "id = ?", seededCart.ID).Error; err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	if reloadedCart.Status != enums.CartStatusConverted {
		t.Fatalf("expected converted cart, got %s", reloadedCart.Status)
	}
	if len(reloadedCart.Lines) != 0 {
		t.Fatalf("expected cleared cart lines, got %d", len(reloadedCart.Lines))
	}
}

func TestCreateOrderFromCartEmptyCart(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()
	customerID := uuid.New()
	seedCart(t, client.DB(), customerID)

	_, err := svc.CreateOrderFromCart(ctx, customerID, Input{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart) {
		t.Fatalf("expected empty cart error, got %v", err)
	}
}

func TestCreateOrderFromCartNoActiveCart(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	_, err := svc.CreateOrderFromCart(ctx, uuid.New(), Input{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateOrderFromCartInsufficientStockRollsBack(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()
	customerID := uuid.New()

	variantA := seedVariant(t, client.DB(), 150000, 10, nil)
	variantB := seedVariant(t, client.DB(), 80000, 1, nil)
	seededCart := seedCart(t, client.DB(), customerID,
		models.CartLine{VariantID: variantA.ID, Quantity: 2},
		models.CartLine{VariantID: variantB.ID, Quantity: 3},
	)

	_, err := svc.CreateOrderFromCart(ctx, customerID, Input{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// Nothing may leak out of the failed attempt: no order, stock intact,
	// cart still active with its lines.
	var orderCount int64
	if err := client.DB().Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("order leaked from rolled-back checkout: %d", orderCount)
	}

	var reloaded models.ProductVariant
	if err := client.DB().First(&reloaded, "id = ?", variantA.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.AvailableQty != 10 {
		t.Fatalf("partial reservation leaked: %d", reloaded.AvailableQty)
	}

	var reloadedCart models.Cart
	if err := client.DB().Preload("Lines").First(&reloadedCart, "id = ?", seededCart.ID).Error; err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	if reloadedCart.Status != enums.CartStatusActive || len(reloadedCart.Lines) != 2 {
		t.Fatalf("cart mutated by failed checkout: %s with %d lines", reloadedCart.Status, len(reloadedCart.Lines))
	}
}

func TestPriceChangeAfterPurchaseLeavesOrderUntouched(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()
	customerID := uuid.New()

	variant := seedVariant(t, client.DB(), 150000, 10, nil)
	seedCart(t, client.DB(), customerID, models.CartLine{VariantID: variant.ID, Quantity: 2})

	order, err := svc.CreateOrderFromCart(ctx, customerID, Input{})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// Reprice the variant after the sale.
	err = client.DB().
		Model(&models.ProductVariant{}).
		Where("id = ?", variant.ID).
		Update("unit_price_cents", 999900).Error
	if err != nil {
		t.Fatalf("reprice variant: %v", err)
	}

	var reloaded models.Order
	if err := client.DB().Preload("Items").First(&reloaded, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.TotalCents != 300000 || reloaded.SubtotalCents != 300000 {
		t.Fatalf("order totals recomputed from live catalog: %d / %d", reloaded.SubtotalCents, reloaded.TotalCents)
	}
	if len(reloaded.Items) != 1 || reloaded.Items[0].UnitPriceCents != 150000 {
		t.Fatalf("captured price changed after purchase: %+v", reloaded.Items)
	}
}

func TestCreateOrderFromCartUnknownVariant(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()
	customerID := uuid.New()
	seedCart(t, client.DB(), customerID, models.CartLine{VariantID: uuid.New(), Quantity: 1})

	_, err := svc.CreateOrderFromCart(ctx, customerID, Input{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown variant, got %v", err)
	}
}
