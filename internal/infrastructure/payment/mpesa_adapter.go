package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pos/backend/internal/domain/payment"
	"github.com/pos/backend/internal/infrastructure/config"
)

const (
	mpesaTimeLayout      = "20060102150405"
	mpesaTransactionType = "CustomerPayBillOnline"
	mpesaTokenPath       = "/oauth/v1/generate?grant_type=client_credentials"
	mpesaSTKPushPath     = "/mpesa/stkpush/v1/processrequest"

	// tokens last an hour; refresh a little early
	tokenExpiryMargin = 2 * time.Minute
)

// MpesaAdapter implements the payment Gateway against the Safaricom Daraja
// API. Access tokens are cached and refreshed shortly before they expire.
type MpesaAdapter struct {
	config     config.MpesaConfig
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time

	// now is swappable for testing
	now func() time.Time
}

// NewMpesaAdapter creates a new MpesaAdapter
func NewMpesaAdapter(cfg config.MpesaConfig) (*MpesaAdapter, error) {
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, fmt.Errorf("mpesa consumer credentials are required")
	}
	if cfg.ShortCode == "" || cfg.Passkey == "" {
		return nil, fmt.Errorf("mpesa short code and passkey are required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &MpesaAdapter{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}, nil
}

// InitiateSTKPush asks Daraja to push a payment prompt to the customer's
// phone. The returned identifiers are matched against the asynchronous
// callback later.
func (a *MpesaAdapter) InitiateSTKPush(ctx context.Context, pay *payment.MpesaPayment, accountReference string) (*payment.STKPushResult, error) {
	token, err := a.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := a.now().Format(mpesaTimeLayout)
	req := mpesaSTKPushRequest{
		BusinessShortCode: a.config.ShortCode,
		Password:          a.stkPassword(timestamp),
		Timestamp:         timestamp,
		TransactionType:   mpesaTransactionType,
		Amount:            pay.Amount.Round(0).String(),
		PartyA:            pay.PhoneNumber,
		PartyB:            a.config.ShortCode,
		PhoneNumber:       pay.PhoneNumber,
		CallBackURL:       a.config.CallbackURL,
		AccountReference:  accountReference,
		TransactionDesc:   "POS sale " + accountReference,
	}

	body, err := a.doRequest(ctx, mpesaSTKPushPath, token, req)
	if err != nil {
		return nil, err
	}

	var resp mpesaSTKPushResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse stk push response: %w", err)
	}
	if resp.ResponseCode != "0" {
		return nil, fmt.Errorf("stk push rejected: %s (%s)", resp.ResponseDescription, resp.ResponseCode)
	}

	return &payment.STKPushResult{
		CheckoutRequestID: resp.CheckoutRequestID,
		MerchantRequestID: resp.MerchantRequestID,
		ResponseCode:      resp.ResponseCode,
		CustomerMessage:   resp.CustomerMessage,
	}, nil
}

// stkPassword builds the Daraja request password for the given timestamp
func (a *MpesaAdapter) stkPassword(timestamp string) string {
	return base64.StdEncoding.EncodeToString(
		[]byte(a.config.ShortCode + a.config.Passkey + timestamp),
	)
}

// getAccessToken returns a cached token or fetches a fresh one
func (a *MpesaAdapter) getAccessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && a.now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.BaseURL+mpesaTokenPath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(a.config.ConsumerKey, a.config.ConsumerSecret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request access token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, body)
	}

	var tokenResp mpesaTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token")
	}

	a.accessToken = tokenResp.AccessToken
	a.tokenExpiry = a.now().Add(time.Hour - tokenExpiryMargin)
	return a.accessToken, nil
}

// doRequest posts a JSON payload to Daraja with bearer authentication
func (a *MpesaAdapter) doRequest(ctx context.Context, path, token string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr mpesaErrorResponse
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.ErrorMessage != "" {
			return nil, fmt.Errorf("daraja error %s: %s", apiErr.ErrorCode, apiErr.ErrorMessage)
		}
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, body)
	}

	return body, nil
}

// Ensure MpesaAdapter implements Gateway
var _ payment.Gateway = (*MpesaAdapter)(nil)
