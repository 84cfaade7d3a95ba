package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "foodhub/internal/errors"
)

const (
	initializePath = "/payment/iyzipos/checkoutform/initialize/auth/ecom"
	retrievePath   = "/payment/iyzipos/checkoutform/auth/ecom/detail"

	maxResponseBytes = 1 << 20
)

type Config struct {
	BaseURL   string
	APIKey    string
	SecretKey string
	Timeout   time.Duration
}

// Client talks to the hosted checkout form API. Every request is signed
// with the IYZWSv2 scheme.
type Client struct {
	baseURL    string
	apiKey     string
	secretKey  string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		now:        time.Now,
	}
}

func (c *Client) InitializeCheckoutForm(ctx context.Context, req InitializeCheckoutFormRequest) (*InitializeCheckoutFormResponse, error) {
	var resp InitializeCheckoutFormResponse
	if err := c.post(ctx, "initialize", initializePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RetrieveCheckoutForm asks the gateway for the authoritative result behind
// a callback token.
func (c *Client) RetrieveCheckoutForm(ctx context.Context, req RetrieveCheckoutFormRequest) (*RetrieveCheckoutFormResponse, error) {
	var resp RetrieveCheckoutFormResponse
	if err := c.post(ctx, "retrieve", retrievePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type enveloped interface {
	envelope() result
}

func (c *Client) post(ctx context.Context, operation, path string, body interface{}, out enveloped) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperrors.NewGatewayError(operation, "", "encoding request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return apperrors.NewGatewayError(operation, "", "building request", err)
	}

	randomKey := c.randomKey()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("x-iyzi-rnd", randomKey)
	httpReq.Header.Set("Authorization", c.authorization(randomKey, path, payload))

	start := c.now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apperrors.NewGatewayError(operation, "", "request failed", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return apperrors.NewGatewayError(operation, "", "reading response", err)
	}

	c.logger.Debug("gateway call finished",
		zap.String("operation", operation),
		zap.Int("httpStatus", httpResp.StatusCode),
		zap.Duration("elapsed", c.now().Sub(start)),
	)

	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewGatewayError(operation, strconv.Itoa(httpResp.StatusCode), "unreadable response", err)
	}

	env := out.envelope()
	if env.Status != StatusSuccess {
		code := env.ErrorCode
		if code == "" {
			code = strconv.Itoa(httpResp.StatusCode)
		}
		return apperrors.NewGatewayError(operation, code, env.ErrorMessage, nil)
	}

	return nil
}

// authorization builds the IYZWSv2 header: an HMAC-SHA256 over the random
// key, request path and body, base64 wrapped together with the api key.
func (c *Client) authorization(randomKey, path string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(randomKey))
	mac.Write([]byte(path))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	params := fmt.Sprintf("apiKey:%s&randomKey:%s&signature:%s", c.apiKey, randomKey, signature)
	return "IYZWSv2 " + base64.StdEncoding.EncodeToString([]byte(params))
}

func (c *Client) randomKey() string {
	return strconv.FormatInt(c.now().UnixMilli(), 10) + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
