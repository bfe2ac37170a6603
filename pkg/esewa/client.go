package esewa

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/config"
	"github.com/fasalbajar/fasalbajar-backend/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"

	formPath   = "/api/epay/main/v2/form"
	statusPath = "/api/epay/transaction/status/"
)

var (
	errProductCodeRequired = errors.New("esewa product code is required")
	errSecretKeyRequired   = errors.New("esewa secret key is required")
	errInvalidEsewaEnv     = fmt.Errorf("esewa environment must be %q or %q", sandboxEnv, productionEnv)
	errLoggerRequired      = errors.New("esewa logger is required")
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://rc-epay.esewa.com.np",
	productionEnv: "https://epay.esewa.com.np",
}

// TransactionStatus is the gateway's verdict for a transaction uuid.
type TransactionStatus string

const (
	StatusComplete   TransactionStatus = "COMPLETE"
	StatusPending    TransactionStatus = "PENDING"
	StatusCanceled   TransactionStatus = "CANCELED"
	StatusNotFound   TransactionStatus = "NOT_FOUND"
	StatusAmbiguous  TransactionStatus = "AMBIGUOUS"
	StatusFullRefund TransactionStatus = "FULL_REFUND"
)

// PaymentPayload is the signed form a buyer's browser posts to the gateway.
type PaymentPayload struct {
	GatewayURL       string `json:"gateway_url"`
	Amount           string `json:"amount"`
	TaxAmount        string `json:"tax_amount"`
	TotalAmount      string `json:"total_amount"`
	TransactionUUID  string `json:"transaction_uuid"`
	ProductCode      string `json:"product_code"`
	ServiceCharge    string `json:"product_service_charge"`
	DeliveryCharge   string `json:"product_delivery_charge"`
	SuccessURL       string `json:"success_url"`
	FailureURL       string `json:"failure_url"`
	SignedFieldNames string `json:"signed_field_names"`
	Signature        string `json:"signature"`
}

// StatusResult is the parsed status-check response.
type StatusResult struct {
	ProductCode     string            `json:"product_code"`
	TransactionUUID string            `json:"transaction_uuid"`
	TotalAmount     json.Number       `json:"total_amount"`
	Status          TransactionStatus `json:"status"`
	RefID           string            `json:"ref_id"`
}

// Client exposes eSewa ePay primitives with centralized signing, logging, and error mapping.
type Client struct {
	httpClient  *http.Client
	productCode string
	secretKey   string
	environment string
	baseURL     string
	successURL  string
	failureURL  string
	logger      *logger.Logger
}

// NewClient initializes the eSewa wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.EsewaConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	productCode := strings.TrimSpace(cfg.ProductCode)
	if productCode == "" {
		return nil, errProductCodeRequired
	}
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, errSecretKeyRequired
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		productCode: productCode,
		secretKey:   secretKey,
		environment: env,
		baseURL:     baseURLs[env],
		successURL:  cfg.SuccessURL,
		failureURL:  cfg.FailureURL,
		logger:      logg,
	}

	logg.Info(ctx, "esewa client initialized")
	return c, nil
}

// Environment reports the normalized eSewa environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// NewTransactionUUID returns a fresh gateway transaction identifier.
func (c *Client) NewTransactionUUID() uuid.UUID {
	return uuid.New()
}

// BuildPaymentPayload signs the redirect form for the given transaction.
// Amounts are paisa internally; the gateway speaks whole rupees.
func (c *Client) BuildPaymentPayload(ctx context.Context, transactionUUID uuid.UUID, amountPaisa int) (*PaymentPayload, error) {
	if transactionUUID == uuid.Nil {
		return nil, errors.New("transaction uuid is required")
	}
	if amountPaisa <= 0 {
		return nil, errors.New("amount must be positive")
	}

	total := formatRupees(amountPaisa)
	message := fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s", total, transactionUUID, c.productCode)
	signature := c.sign(message)

	payload := &PaymentPayload{
		GatewayURL:       c.baseURL + formPath,
		Amount:           total,
		TaxAmount:        "0",
		TotalAmount:      total,
		TransactionUUID:  transactionUUID.String(),
		ProductCode:      c.productCode,
		ServiceCharge:    "0",
		DeliveryCharge:   "0",
		SuccessURL:       c.successURL,
		FailureURL:       c.failureURL,
		SignedFieldNames: "total_amount,transaction_uuid,product_code",
		Signature:        signature,
	}

	c.log(ctx, "request", "build_payment_payload", map[string]any{
		"transaction_uuid": transactionUUID.String(),
		"total_amount":     total,
	})
	return payload, nil
}

// CheckStatus queries the gateway's transaction status endpoint.
func (c *Client) CheckStatus(ctx context.Context, transactionUUID uuid.UUID, amountPaisa int) (*StatusResult, error) {
	if transactionUUID == uuid.Nil {
		return nil, errors.New("transaction uuid is required")
	}

	endpoint, err := url.Parse(c.baseURL + statusPath)
	if err != nil {
		return nil, fmt.Errorf("building status url: %w", err)
	}
	q := endpoint.Query()
	q.Set("product_code", c.productCode)
	q.Set("total_amount", formatRupees(amountPaisa))
	q.Set("transaction_uuid", transactionUUID.String())
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building status request: %w", err)
	}

	c.log(ctx, "request", "check_status", map[string]any{
		"transaction_uuid": transactionUUID.String(),
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("esewa status check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("esewa status check returned %d", resp.StatusCode)
	}

	var result StatusResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding status response: %w", err)
	}

	c.log(ctx, "response", "check_status", map[string]any{
		"transaction_uuid": result.TransactionUUID,
		"status":           string(result.Status),
		"ref_id":           result.RefID,
	})
	return &result, nil
}

func (c *Client) sign(message string) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (c *Client) log(ctx context.Context, direction, operation string, fields map[string]any) {
	if c.logger == nil {
		return
	}
	merged := map[string]any{
		"gateway":   "esewa",
		"direction": direction,
		"operation": operation,
	}
	for k, v := range fields {
		merged[k] = v
	}
	c.logger.Info(c.logger.WithFields(ctx, merged), "esewa."+operation)
}

func normalizeEnv(env string) (string, error) {
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	default:
		return "", errInvalidEsewaEnv
	}
}

func formatRupees(paisa int) string {
	if paisa%100 == 0 {
		return fmt.Sprintf("%d", paisa/100)
	}
	return fmt.Sprintf("%d.%02d", paisa/100, paisa%100)
}
