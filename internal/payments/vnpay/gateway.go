package vnpay

import (
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/minhvnd/lumenshop-backend/pkg/config"
	"github.com/minhvnd/lumenshop-backend/pkg/db/models"
	pkgerrors "github.com/minhvnd/lumenshop-backend/pkg/errors"
)

const (
	commandPay          = "pay"
	orderTypeOther      = "other"
	responseCodeSuccess = "00"
	createDateFormat    = "20060102150405"
)

// Gateway builds signed redirect URLs and verifies signed callbacks for the
// hosted-payment flow.
type Gateway struct {
	cfg config.VNPayConfig
}

func NewGateway(cfg config.VNPayConfig) (*Gateway, error) {
	if cfg.TmnCode == "" || cfg.HashSecret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway requires merchant credentials")
	}
	if cfg.PayURL == "" || cfg.ReturnURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway requires pay and return urls")
	}
	return &Gateway{cfg: cfg}, nil
}

// RedirectRequest carries what the hosted payment page needs to know.
type RedirectRequest struct {
	Order     *models.Order
	ClientIP  string
	OrderInfo string
	Now       time.Time
}

// BuildRedirectURL returns the fully signed URL the customer is sent to.
// Amounts are already in minor units so they map straight onto vnp_Amount.
func (g *Gateway) BuildRedirectURL(req RedirectRequest) (string, error) {
	if req.Order == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}
	if req.Order.TotalCents <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	info := req.OrderInfo
	if info == "" {
		info = "Thanh toan don hang " + req.Order.ID.String()
	}

	params := map[string]string{
		"vnp_Version":    g.cfg.Version,
		"vnp_Command":    commandPay,
		"vnp_TmnCode":    g.cfg.TmnCode,
		"vnp_Amount":     strconv.Itoa(req.Order.TotalCents),
		"vnp_CurrCode":   g.cfg.CurrCode,
		"vnp_TxnRef":     req.Order.ID.String(),
		"vnp_OrderInfo":  info,
		"vnp_OrderType":  orderTypeOther,
		"vnp_Locale":     g.cfg.Locale,
		"vnp_ReturnUrl":  g.cfg.ReturnURL,
		"vnp_IpAddr":     req.ClientIP,
		"vnp_CreateDate": now.Format(createDateFormat),
	}

	canonical := Canonicalize(params)
	hash := Sign(g.cfg.HashSecret, canonical)
	return g.cfg.PayURL + "?" + canonical + "&" + paramSecureHash + "=" + hash, nil
}

// CallbackData is the verified, parsed content of a gateway return.
type CallbackData struct {
	OrderID       uuid.UUID
	AmountCents   int
	ResponseCode  string
	TransactionNo string
	BankCode      string
}

// Success reports whether the gateway confirmed the payment.
func (d CallbackData) Success() bool {
	return d.ResponseCode == responseCodeSuccess
}

// EventID keys idempotency tracking for this callback delivery.
func (d CallbackData) EventID() string {
	return d.OrderID.String() + ":" + d.ResponseCode
}

// VerifyCallback checks the callback signature and parses the payload. A bad
// or missing signature yields an opaque INVALID_SIGNATURE; nothing about the
// mismatch is leaked to the caller.
func (g *Gateway) VerifyCallback(query url.Values) (*CallbackData, error) {
	params := make(map[string]string, len(query))
	for k := range query {
		params[k] = query.Get(k)
	}

	if !VerifySignature(g.cfg.HashSecret, params, params[paramSecureHash]) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidSignature, "callback signature mismatch")
	}

	orderID, err := uuid.Parse(params["vnp_TxnRef"])
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "callback txn ref is not a valid order id")
	}
	amount, err := strconv.Atoi(params["vnp_Amount"])
	if err != nil || amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "callback amount is invalid")
	}
	code := params["vnp_ResponseCode"]
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "callback response code is missing")
	}

	return &CallbackData{
		OrderID:       orderID,
		AmountCents:   amount,
		ResponseCode:  code,
		TransactionNo: params["vnp_TransactionNo"],
		BankCode:      params["vnp_BankCode"],
	}, nil
}
