package gateway_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petofy/petcare-payments/internal/config"
	"github.com/petofy/petcare-payments/internal/gateway"
)

type fakeClient struct {
	createOrderFn       func(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error)
	fetchPaymentFn      func(ctx context.Context, paymentID string) (*gateway.Payment, error)
	listOrderPaymentsFn func(ctx context.Context, orderID string) ([]gateway.Payment, error)
}

func (f *fakeClient) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error) {
	return f.createOrderFn(ctx, req)
}

func (f *fakeClient) FetchPayment(ctx context.Context, paymentID string) (*gateway.Payment, error) {
	return f.fetchPaymentFn(ctx, paymentID)
}

func (f *fakeClient) ListOrderPayments(ctx context.Context, orderID string) ([]gateway.Payment, error) {
	return f.listOrderPaymentsFn(ctx, orderID)
}

func retryConfig() config.RetryConfig {
	return config.RetryConfig{
		GatewayBaseDelay:  1,
		GatewayMaxRetries: 3,
	}
}

func TestRetryClient_FetchPayment_Success(t *testing.T) {
	expected := &gateway.Payment{ID: "pay_123", Status: gateway.PaymentStatusCaptured}
	calls := 0

	client := gateway.NewRetryClient(&fakeClient{
		fetchPaymentFn: func(ctx context.Context, paymentID string) (*gateway.Payment, error) {
			calls++
			return expected, nil
		},
	}, retryConfig())

	resp, err := client.FetchPayment(context.Background(), "pay_123")

	require.NoError(t, err)
	assert.Equal(t, expected, resp)
	assert.Equal(t, 1, calls)
}

func TestRetryClient_FetchPayment_RetriesOn5xx(t *testing.T) {
	expected := &gateway.Payment{ID: "pay_123"}
	calls := 0

	client := gateway.NewRetryClient(&fakeClient{
		fetchPaymentFn: func(ctx context.Context, paymentID string) (*gateway.Payment, error) {
			calls++
			if calls < 3 {
				return nil, &gateway.GatewayError{
					Code:       "internal_error",
					Message:    "internal server error",
					StatusCode: 500,
				}
			}
			return expected, nil
		},
	}, retryConfig())

	resp, err := client.FetchPayment(context.Background(), "pay_123")

	require.NoError(t, err)
	assert.Equal(t, expected, resp)
	assert.Equal(t, 3, calls)
}

func TestRetryClient_FetchPayment_NoRetryOn4xx(t *testing.T) {
	calls := 0

	client := gateway.NewRetryClient(&fakeClient{
		fetchPaymentFn: func(ctx context.Context, paymentID string) (*gateway.Payment, error) {
			calls++
			return nil, &gateway.GatewayError{
				Code:       "not_found",
				Message:    "payment not found",
				StatusCode: 404,
			}
		},
	}, retryConfig())

	_, err := client.FetchPayment(context.Background(), "pay_123")

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	gwErr, ok := gateway.IsGatewayError(err)
	require.True(t, ok)
	assert.True(t, gwErr.IsNotFound())
}

func TestRetryClient_FetchPayment_ExhaustsRetries(t *testing.T) {
	calls := 0

	client := gateway.NewRetryClient(&fakeClient{
		fetchPaymentFn: func(ctx context.Context, paymentID string) (*gateway.Payment, error) {
			calls++
			return nil, &gateway.GatewayError{
				Code:       "server_error",
				StatusCode: 503,
			}
		},
	}, retryConfig())

	_, err := client.FetchPayment(context.Background(), "pay_123")

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "maximum retries exceeded")
}

func TestRetryClient_ListOrderPayments_RetriesNetworkErrors(t *testing.T) {
	calls := 0
	expected := []gateway.Payment{{ID: "pay_1", Status: gateway.PaymentStatusFailed}}

	client := gateway.NewRetryClient(&fakeClient{
		listOrderPaymentsFn: func(ctx context.Context, orderID string) ([]gateway.Payment, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("connection reset by peer")
			}
			return expected, nil
		},
	}, retryConfig())

	resp, err := client.ListOrderPayments(context.Background(), "order_1")

	require.NoError(t, err)
	assert.Equal(t, expected, resp)
	assert.Equal(t, 2, calls)
}

func TestRetryClient_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := gateway.NewRetryClient(&fakeClient{
		fetchPaymentFn: func(ctx context.Context, paymentID string) (*gateway.Payment, error) {
			t.Fatal("operation should not run with a cancelled context")
			return nil, nil
		},
	}, retryConfig())

	_, err := client.FetchPayment(ctx, "pay_123")

	assert.ErrorIs(t, err, context.Canceled)
}
