package ports

import (
	"context"

	"github.com/aretw0/hotelbot/pkg/domain"
)

// Endpoint paths exposed by the booking service.
const (
	EndpointRequestHotel = "/request_hotel"
	EndpointSelectHotel  = "/select_hotel"
	EndpointBookHotel    = "/book_hotel"
)

// Backend sends a user message to the booking service.
//
// Implementations return a non-nil error only for transport or decoding
// failures. Application errors reported by the service travel in Reply.Error.
type Backend interface {
	Send(ctx context.Context, endpoint string, message string) (domain.Reply, error)
}

// BackendFunc adapts an ordinary function to the Backend interface.
type BackendFunc func(ctx context.Context, endpoint string, message string) (domain.Reply, error)

// Send calls f(ctx, endpoint, message).
func (f BackendFunc) Send(ctx context.Context, endpoint string, message string) (domain.Reply, error) {
	return f(ctx, endpoint, message)
}
