package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhvnd/lumenshop-backend/pkg/db/models"
)

type orderResponse struct {
	OrderID         uuid.UUID          `json:"order_id"`
	CustomerID      uuid.UUID          `json:"customer_id"`
	Status          string             `json:"status"`
	PaymentStatus   string             `json:"payment_status"`
	Currency        string             `json:"currency"`
	SubtotalCents   int                `json:"subtotal_cents"`
	TotalCents      int                `json:"total_cents"`
	Total           string             `json:"total"`
	ShippingAddress string             `json:"shipping_address,omitempty"`
	GatewayTxnRef   *string            `json:"gateway_txn_ref,omitempty"`
	PaidAt          *time.Time         `json:"paid_at,omitempty"`
	CompletedAt     *time.Time         `json:"completed_at,omitempty"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	Items           []lineItemResponse `json:"items"`
}

type lineItemResponse struct {
	LineItemID        uuid.UUID `json:"line_item_id"`
	ProductID         uuid.UUID `json:"product_id"`
	VariantID         uuid.UUID `json:"variant_id"`
	Name              string    `json:"name"`
	Qty               int       `json:"qty"`
	UnitPriceCents    int       `json:"unit_price_cents"`
	LineSubtotalCents int       `json:"line_subtotal_cents"`
	WarrantyMonths    int       `json:"warranty_months"`
}

type warrantyResponse struct {
	WarrantyID      uuid.UUID `json:"warranty_id"`
	OrderLineItemID uuid.UUID `json:"order_line_item_id"`
	ProductID       uuid.UUID `json:"product_id"`
	VariantID       uuid.UUID `json:"variant_id"`
	Status          string    `json:"status"`
	Months          int       `json:"months"`
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
}

func displayAmount(cents int) string {
	return decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func newOrderResponse(order *models.Order) orderResponse {
	if order == nil {
		return orderResponse{}
	}
	items := make([]lineItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, lineItemResponse{
			LineItemID:        item.ID,
			ProductID:         item.ProductID,
			VariantID:         item.VariantID,
			Name:              item.NameSnapshot,
			Qty:               item.Quantity,
			UnitPriceCents:    item.UnitPriceCents,
			LineSubtotalCents: item.LineSubtotalCents,
			WarrantyMonths:    item.WarrantyMonths,
		})
	}
	return orderResponse{
		OrderID:         order.ID,
		CustomerID:      order.CustomerID,
		Status:          order.Status.String(),
		PaymentStatus:   order.PaymentStatus.String(),
		Currency:        order.Currency.String(),
		SubtotalCents:   order.SubtotalCents,
		TotalCents:      order.TotalCents,
		Total:           displayAmount(order.TotalCents),
		ShippingAddress: order.ShippingAddress,
		GatewayTxnRef:   order.GatewayTxnRef,
		PaidAt:          order.PaidAt,
		CompletedAt:     order.CompletedAt,
		CancelledAt:     order.CancelledAt,
		CreatedAt:       order.CreatedAt,
		Items:           items,
	}
}

func newWarrantyResponses(warranties []models.Warranty) []warrantyResponse {
	out := make([]warrantyResponse, 0, len(warranties))
	for _, w := range warranties {
		out = append(out, warrantyResponse{
			WarrantyID:      w.ID,
			OrderLineItemID: w.OrderLineItemID,
			ProductID:       w.ProductID,
			VariantID:       w.VariantID,
			Status:          w.Status.String(),
			Months:          w.Months,
			StartAt:         w.StartAt,
			EndAt:           w.EndAt,
		})
	}
	return out
}
