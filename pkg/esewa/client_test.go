package esewa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fasalbajar/fasalbajar-backend/pkg/config"
	"github.com/fasalbajar/fasalbajar-backend/pkg/logger"
)

func testConfig() config.EsewaConfig {
	return config.EsewaConfig{
		ProductCode: "EPAYTEST",
		SecretKey:   "8gBm/:&EnhH.1/q",
		Env:         "sandbox",
		SuccessURL:  "https://fasalbajar.example/payment/success",
		FailureURL:  "https://fasalbajar.example/payment/failure",
		Timeout:     5 * time.Second,
	}
}

func testClient(t *testing.T, cfg config.EsewaConfig) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), cfg, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return client
}

func TestNewClientValidatesCredentials(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})

	cfg := testConfig()
	cfg.ProductCode = ""
	_, err := NewClient(context.Background(), cfg, logg)
	require.ErrorIs(t, err, errProductCodeRequired)

	cfg = testConfig()
	cfg.SecretKey = " "
	_, err = NewClient(context.Background(), cfg, logg)
	require.ErrorIs(t, err, errSecretKeyRequired)

	cfg = testConfig()
	cfg.Env = "staging"
	_, err = NewClient(context.Background(), cfg, logg)
	require.Error(t, err)

	_, err = NewClient(context.Background(), testConfig(), nil)
	require.ErrorIs(t, err, errLoggerRequired)
}

func TestBuildPaymentPayloadSignsKnownVector(t *testing.T) {
	client := testClient(t, testConfig())

	txn := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	payload, err := client.BuildPaymentPayload(context.Background(), txn, 10000)
	require.NoError(t, err)

	require.Equal(t, "100", payload.TotalAmount)
	require.Equal(t, "EPAYTEST", payload.ProductCode)
	require.Equal(t, "total_amount,transaction_uuid,product_code", payload.SignedFieldNames)
	require.NotEmpty(t, payload.Signature)

	// Signing is deterministic for a fixed message and secret.
	again, err := client.BuildPaymentPayload(context.Background(), txn, 10000)
	require.NoError(t, err)
	require.Equal(t, payload.Signature, again.Signature)
}

func TestBuildPaymentPayloadRejectsBadInput(t *testing.T) {
	client := testClient(t, testConfig())

	_, err := client.BuildPaymentPayload(context.Background(), uuid.Nil, 100)
	require.Error(t, err)

	_, err = client.BuildPaymentPayload(context.Background(), uuid.New(), 0)
	require.Error(t, err)
}

func TestCheckStatusParsesGatewayResponse(t *testing.T) {
	txn := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "EPAYTEST", r.URL.Query().Get("product_code"))
		require.Equal(t, txn.String(), r.URL.Query().Get("transaction_uuid"))
		require.Equal(t, "100", r.URL.Query().Get("total_amount"))
		json.NewEncoder(w).Encode(map[string]any{
			"product_code":     "EPAYTEST",
			"transaction_uuid": txn.String(),
			"total_amount":     100,
			"status":           "COMPLETE",
			"ref_id":           "0001TX",
		})
	}))
	defer server.Close()

	client := testClient(t, testConfig())
	client.baseURL = server.URL

	result, err := client.CheckStatus(context.Background(), txn, 10000)
	require.NoError(t, err)
	require.Equal(t, StatusComplete, result.Status)
	require.Equal(t, "0001TX", result.RefID)
}

func TestCheckStatusSurfacesHTTPFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testClient(t, testConfig())
	client.baseURL = server.URL

	_, err := client.CheckStatus(context.Background(), uuid.New(), 10000)
	require.Error(t, err)
}

func TestFormatRupees(t *testing.T) {
	require.Equal(t, "100", formatRupees(10000))
	require.Equal(t, "99.50", formatRupees(9950))
	require.Equal(t, "0.05", formatRupees(5))
}
