package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvnd/lumenshop-backend/internal/warranty"
	"github.com/minhvnd/lumenshop-backend/pkg/config"
	"github.com/minhvnd/lumenshop-backend/pkg/db"
	"github.com/minhvnd/lumenshop-backend/pkg/db/models"
	"github.com/minhvnd/lumenshop-backend/pkg/enums"
	pkgerrors "github.com/minhvnd/lumenshop-backend/pkg/errors"
)

func newTestClient(t *testing.T) *db.Client {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn, Driver: "sqlite"}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = client.DB().AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.Order{},
		&models.OrderLineItem{},
		&models.Warranty{},
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
		NewRepository(client.DB()),
		LedgerReleaser{},
		warranty.NewIssuer(12, nil, nil),
		nil,
	)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func seedVariant(t *testing.T, gdb *gorm.DB, qty int) *models.ProductVariant {
	t.Helper()
	product := &models.Product{Name: "Lamp", Slug: "lamp-" + uuid.NewString()}
	if err := gdb.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	variant := &models.ProductVariant{
		ProductID:      product.ID,
		SKU:            "SKU-" + uuid.NewString(),
		Name:           "Brass",
		UnitPriceCents: 45000,
		AvailableQty:   qty,
		Active:         true,
	}
	if err := gdb.Create(variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
	return variant
}

func seedOrder(t *testing.T, gdb *gorm.DB, status enums.OrderStatus, variantID uuid.UUID, qty int) *models.Order {
	t.Helper()
	order := &models.Order{
		CustomerID:    uuid.New(),
		CartID:        uuid.New(),
		Status:        status,
		PaymentStatus: enums.PaymentStatusUnpaid,
		SubtotalCents: 45000 * qty,
		TotalCents:    45000 * qty,
		Items: []models.OrderLineItem{
			{
				ProductID:         uuid.New(),
				VariantID:         variantID,
				NameSnapshot:      "Lamp / Brass",
				UnitPriceCents:    45000,
				Quantity:          qty,
				LineSubtotalCents: 45000 * qty,
				WarrantyMonths:    12,
			},
		},
	}
	if err := gdb.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func TestTransitionPendingToProcessing(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()
	variant := seedVariant(t, client.DB(), 3)
	order := seedOrder(t, client.DB(), enums.OrderStatusPending, variant.ID, 2)

	updated, err := svc.Transition(ctx, order.ID, enums.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", updated.Status)
	}
}

func TestTransitionSkipsIllegalEdges(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()
	variant := seedVariant(t, client.DB(), 3)
	order := seedOrder(t, client.DB(), enums.OrderStatusCompleted, variant.ID, 1)

	_, err := svc.Transition(ctx, order.ID, enums.OrderStatusCancelled)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}

	loaded, err := svc.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Status != enums.OrderStatusCompleted {
		t.Fatalf("status changed despite denied transition: %s", loaded.Status)
	}
}

func TestTransitionPendingToCompletedStaffOverride(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()
	variant := seedVariant(t, client.DB(), 3)
	order := seedOrder(t, client.DB(), enums.OrderStatusPending, variant.ID, 1)

	updated, err := svc.Transition(ctx, order.ID, enums.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.Status != enums.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", updated.Status)
	}

	warranties, err := warranty.NewRepository(client.DB()).ListByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("list warranties: %v", err)
	}
	if len(warranties) != 1 {
		t.Fatalf("expected 1 warranty, got %d", len(warranties))
	}
	wantEnd := warranties[0].StartAt.AddDate(0, 12, 0)
	if !warranties[0].EndAt.Equal(wantEnd) {
		t.Fatalf("expected end %s, got %s", wantEnd, warranties[0].EndAt)
	}
}

func TestTransitionToCompletedIssuesWarranties(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()
	variant := seedVariant(t, client.DB(), 3)
	order := seedOrder(t, client.DB(), enums.OrderStatusProcessing, variant.ID, 1)

	updated, err := svc.Transition(ctx, order.ID, enums.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}

	warranties, err := warranty.NewRepository(client.DB()).ListByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("list warranties: %v", err)
	}
	if len(warranties) != 1 {
		t.Fatalf("expected 1 warranty, got %d", len(warranties))
	}

	// Re-running the completed transition must not duplicate coverage.
	if _, err := svc.Transition(ctx, order.ID, enums.OrderStatusCompleted); err != nil {
		t.Fatalf("repeat transition should be a no-op: %v", err)
	}
	warranties, err = warranty.NewRepository(client.DB()).ListByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("list warranties: %v", err)
	}
	if len(warranties) != 1 {
		t.Fatalf("warranty duplicated on repeat transition: %d", len(warranties))
	}
}

func TestReissueWarrantiesFillsMissingCoverage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()
	variant := seedVariant(t, client.DB(), 3)
	order := seedOrder(t, client.DB(), enums.OrderStatusProcessing, variant.ID, 1)

	if _, err := svc.Transition(ctx, order.ID, enums.OrderStatusCompleted); err != nil {
		t.Fatalf("transition: %v", err)
	}

	// Simulate issuance having failed after the transition committed.
	err := client.DB().Where("order_id = ?", order.ID).Delete(&models.Warranty{}).Error
	if err != nil {
		t.Fatalf("drop warranties: %v", err)
	}

	if _, err := svc.ReissueWarranties(ctx, order.ID); err != nil {
		t.Fatalf("reissue: %v", err)
	}
	warranties, err := warranty.NewRepository(client.DB()).ListByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("list warranties: %v", err)
	}
	if len(warranties) != 1 {
		t.Fatalf("expected 1 warranty after reissue, got %d", len(warranties))
	}

	// Reissuing a covered order must not duplicate anything.
	if _, err := svc.ReissueWarranties(ctx, order.ID); err != nil {
		t.Fatalf("repeat reissue: %v", err)
	}
	warranties, err = warranty.NewRepository(client.DB()).ListByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("list warranties: %v", err)
	}
	if len(warranties) != 1 {
		t.Fatalf("warranty duplicated on repeat reissue: %d", len(warranties))
	}
}

func TestReissueWarrantiesRequiresCompletedOrder(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()
	variant := seedVariant(t, client.DB(), 3)
	order := seedOrder(t, client.DB(), enums.OrderStatusPending, variant.ID, 1)

	_, err := svc.ReissueWarranties(ctx, order.ID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}

	var count int64
	if err := client.DB().Model(&models.Warranty{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("warranty issued for non-completed order: %d", count)
	}
}

func TestTransitionToCancelledReleasesStock(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	// Stock already committed to the order: 3 on hand, 2 sold.
	variant := seedVariant(t, client.DB(), 3)
	order := seedOrder(t, client.DB(), enums.OrderStatusPending, variant.ID, 2)

	updated, err := svc.Transition(ctx, order.ID, enums.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.CancelledAt == nil {
		t.Fatal("expected cancelled_at to be set")
	}

	var reloaded models.ProductVariant
	if err := client.DB().First(&reloaded, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.AvailableQty != 5 {
		t.Fatalf("expected stock back at 5, got %d", reloaded.AvailableQty)
	}

	// Cancelling again must not release twice.
	if _, err := svc.Transition(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
		t.Fatalf("repeat cancel should be a no-op: %v", err)
	}
	if err := client.DB().First(&reloaded, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.AvailableQty != 5 {
		t.Fatalf("stock released twice: %d", reloaded.AvailableQty)
	}
}

func TestApplyPaymentResult(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()
	variant := seedVariant(t, client.DB(), 3)
	order := seedOrder(t, client.DB(), enums.OrderStatusPending, variant.ID, 1)

	updated, err := svc.ApplyPaymentResult(ctx, order.ID, true, "VNP123456")
	if err != nil {
		t.Fatalf("apply success: %v", err)
	}
	if updated.PaymentStatus != enums.PaymentStatusPaid || updated.PaidAt == nil {
		t.Fatalf("expected paid with timestamp, got %+v", updated)
	}
	if updated.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected processing after payment, got %s", updated.Status)
	}
	if updated.GatewayTxnRef == nil || *updated.GatewayTxnRef != "VNP123456" {
		t.Fatalf("gateway reference not recorded: %+v", updated.GatewayTxnRef)
	}
	firstPaidAt := *updated.PaidAt

	// A late failure callback after success must not downgrade the order.
	updated, err = svc.ApplyPaymentResult(ctx, order.ID, false, "VNP999999")
	if err != nil {
		t.Fatalf("apply duplicate: %v", err)
	}
	if updated.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("paid status downgraded: %s", updated.PaymentStatus)
	}
	if updated.Status != enums.OrderStatusProcessing {
		t.Fatalf("late failure cancelled a paid order: %s", updated.Status)
	}
	if updated.PaidAt == nil || !updated.PaidAt.Equal(firstPaidAt) {
		t.Fatalf("paid_at changed on duplicate callback")
	}
}

func TestApplyPaymentResultFailure(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()
	variant := seedVariant(t, client.DB(), 3)
	order := seedOrder(t, client.DB(), enums.OrderStatusPending, variant.ID, 1)

	updated, err := svc.ApplyPaymentResult(ctx, order.ID, false, "VNP000001")
	if err != nil {
		t.Fatalf("apply failure: %v", err)
	}
	if updated.PaymentStatus != enums.PaymentStatusFailed {
		t.Fatalf("expected failed, got %s", updated.PaymentStatus)
	}
	if updated.Status != enums.OrderStatusCancelled || updated.CancelledAt == nil {
		t.Fatalf("failed payment must cancel the order, got %s", updated.Status)
	}

	// The failed order's reservation goes back on the shelf.
	var reloaded models.ProductVariant
	if err := client.DB().First(&reloaded, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.AvailableQty != 4 {
		t.Fatalf("expected stock back at 4, got %d", reloaded.AvailableQty)
	}

	// Replaying the failure must not release stock again.
	if _, err := svc.ApplyPaymentResult(ctx, order.ID, false, "VNP000001"); err != nil {
		t.Fatalf("replay failure: %v", err)
	}
	if err := client.DB().First(&reloaded, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.AvailableQty != 4 {
		t.Fatalf("stock released twice: %d", reloaded.AvailableQty)
	}
}
