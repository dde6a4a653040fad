package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
)

type StripeProvider struct {
	secretKey string
}

func NewStripeProvider(secretKey string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{
		secretKey: secretKey,
	}
}

func (s *StripeProvider) CreateOrder(ctx context.Context, request *OrderRequest) (*OrderResponse, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(request.Amount * 100)),
		Currency: stripe.String(request.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if request.Receipt != "" {
		params.AddMetadata("receipt", request.Receipt)
	}
	for k, v := range request.Notes {
		params.AddMetadata(k, v)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe payment intent: %w", err)
	}

	return &OrderResponse{
		OrderID:  intent.ID,
		Amount:   request.Amount,
		Currency: request.Currency,
		Status:   string(intent.Status),
	}, nil
}

func (s *StripeProvider) VerifyPayment(ctx context.Context, request *VerificationRequest) (*VerificationResponse, error) {
	intent, err := paymentintent.Get(request.PaymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stripe payment intent: %w", err)
	}

	return &VerificationResponse{
		Verified:  intent.Status == stripe.PaymentIntentStatusSucceeded,
		PaymentID: intent.ID,
		Amount:    float64(intent.Amount) / 100,
		Status:    string(intent.Status),
	}, nil
}

func (s *StripeProvider) RefundPayment(ctx context.Context, request *RefundRequest) (*RefundResponse, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(request.PaymentID),
		Amount:        stripe.Int64(int64(request.Amount * 100)),
	}
	if request.Reason != "" {
		params.Reason = stripe.String(request.Reason)
	}

	ref, err := refund.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to refund stripe payment: %w", err)
	}

	return &RefundResponse{
		RefundID: ref.ID,
		Amount:   request.Amount,
		Status:   string(ref.Status),
	}, nil
}
