package payment

import (
	"context"
	"math"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// CheckoutGateway turns a cart total into a provider-hosted checkout page.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, totalMajor float64) (string, error)
}

// StripeGateway sends a single aggregate line item of quantity 1; the cart is
// not itemized towards the provider.
type StripeGateway struct {
	SuccessURL string
	CancelURL  string
}

func NewStripeGateway(secretKey, baseURL string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{
		SuccessURL: baseURL + "/success",
		CancelURL:  baseURL + "/cancel",
	}
}

// MinorUnits converts a major-unit amount to the provider's minor units.
func MinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, totalMajor float64) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		Mode:   stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Cart total"),
					},
					UnitAmount: stripe.Int64(MinorUnits(totalMajor)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(g.SuccessURL),
		CancelURL:  stripe.String(g.CancelURL),
	}

	s, err := session.New(params)
	if err != nil {
		return "", err
	}
	return s.URL, nil
}
