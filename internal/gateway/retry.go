package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/petofy/petcare-payments/internal/config"
)

// RetryClient wraps a Client with bounded retries for transient gateway
// failures. It is wired into the reconciliation read path; order creation
// deliberately bypasses it, since a failed create falls back to a demo
// order instead of retrying.
type RetryClient struct {
	inner      Client
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryClient(inner Client, cfg config.RetryConfig) *RetryClient {
	return &RetryClient{
		inner:      inner,
		baseDelay:  cfg.GatewayBaseDelay,
		maxRetries: cfg.GatewayMaxRetries,
	}
}

func (r *RetryClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	return retry(r, ctx, func(ctx context.Context) (*Order, error) {
		return r.inner.CreateOrder(ctx, req)
	})
}

func (r *RetryClient) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	return retry(r, ctx, func(ctx context.Context) (*Payment, error) {
		return r.inner.FetchPayment(ctx, paymentID)
	})
}

func (r *RetryClient) ListOrderPayments(ctx context.Context, orderID string) ([]Payment, error) {
	resp, err := retry(r, ctx, func(ctx context.Context) (*[]Payment, error) {
		payments, err := r.inner.ListOrderPayments(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return &payments, nil
	})
	if err != nil {
		return nil, err
	}
	return *resp, nil
}

// Generic retry helper
func retry[T any](r *RetryClient, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			time.Sleep(r.backoff(attempt))
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

func isRetryable(err error) bool {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.IsRetryable()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// Network-level failures without a gateway response are retryable.
	return true
}

// Backoff calculation with exponential delay and jitter
func (r *RetryClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond

	return base + jitter
}
