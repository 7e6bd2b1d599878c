package gateway

import (
	"fmt"
	"strings"
)

// Type identifies a gateway implementation
type Type string

const (
	TypeMock     Type = "mock"
	TypeRazorpay Type = "razorpay"
)

// New creates a billing gateway based on the configured type
func New(gatewayType string, cfg *Config) (BillingGateway, error) {
	switch Type(strings.ToLower(gatewayType)) {
	case TypeMock, "":
		return NewMockGateway(), nil

	case TypeRazorpay:
		return NewRazorpayGateway(cfg)

	default:
		return nil, fmt.Errorf("unsupported gateway type: %s", gatewayType)
	}
}
