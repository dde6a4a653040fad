package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

type RazorpayProvider struct {
	client    *razorpay.Client
	keySecret string
}

func NewRazorpayProvider(keyID, keySecret string) *RazorpayProvider {
	return &RazorpayProvider{
		client:    razorpay.NewClient(keyID, keySecret),
		keySecret: keySecret,
	}
}

func (r *RazorpayProvider) CreateOrder(ctx context.Context, request *OrderRequest) (*OrderResponse, error) {
	data := map[string]interface{}{
		"amount":   int64(request.Amount * 100), // paise
		"currency": request.Currency,
		"receipt":  request.Receipt,
	}
	if len(request.Notes) > 0 {
		notes := make(map[string]interface{}, len(request.Notes))
		for k, v := range request.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	order, err := r.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}

	orderID, _ := order["id"].(string)
	status, _ := order["status"].(string)

	return &OrderResponse{
		OrderID:  orderID,
		Amount:   request.Amount,
		Currency: request.Currency,
		Status:   status,
	}, nil
}

func (r *RazorpayProvider) VerifyPayment(ctx context.Context, request *VerificationRequest) (*VerificationResponse, error) {
	payload := request.OrderID + "|" + request.PaymentID
	mac := hmac.New(sha256.New, []byte(r.keySecret))
	mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(request.Signature)) {
		return &VerificationResponse{
			Verified:  false,
			PaymentID: request.PaymentID,
			Status:    "signature_mismatch",
		}, nil
	}

	paymentData, err := r.client.Payment.Fetch(request.PaymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch razorpay payment: %w", err)
	}

	status, _ := paymentData["status"].(string)
	amount := float64(0)
	if v, ok := paymentData["amount"].(float64); ok {
		amount = v / 100
	}

	return &VerificationResponse{
		Verified:  status == "captured" || status == "authorized",
		PaymentID: request.PaymentID,
		Amount:    amount,
		Status:    status,
	}, nil
}

func (r *RazorpayProvider) RefundPayment(ctx context.Context, request *RefundRequest) (*RefundResponse, error) {
	data := map[string]interface{}{
		"amount": int64(request.Amount * 100),
	}
	if request.Reason != "" {
		data["notes"] = map[string]interface{}{"reason": request.Reason}
	}

	refund, err := r.client.Payment.Refund(request.PaymentID, int(request.Amount*100), data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to refund razorpay payment: %w", err)
	}

	refundID, _ := refund["id"].(string)
	status, _ := refund["status"].(string)

	return &RefundResponse{
		RefundID: refundID,
		Amount:   request.Amount,
		Status:   status,
	}, nil
}
