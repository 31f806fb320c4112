package payment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	require.Equal(t, int64(2500), MinorUnits(25))
	require.Equal(t, int64(850), MinorUnits(8.5))
	require.Equal(t, int64(690), MinorUnits(6.9))
	require.Equal(t, int64(1), MinorUnits(0.01))
	require.Equal(t, int64(0), MinorUnits(0))
}

func TestNewStripeGatewayURLs(t *testing.T) {
	g := NewStripeGateway("sk_test_123", "http://localhost:8080")
	require.Equal(t, "http://localhost:8080/success", g.SuccessURL)
	require.Equal(t, "http://localhost:8080/cancel", g.CancelURL)
}
