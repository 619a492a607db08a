// Package tink integrates the Tink open-banking API: OAuth2 authorization,
// account and transaction retrieval, and normalization of API payloads into
// the canonical transaction shape.
package tink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/alex-robert-fr/ForecastPro/pkg/errors"
	"github.com/alex-robert-fr/ForecastPro/pkg/logger"
)

// Scopes requested when connecting an account.
const authScope = "accounts:read,transactions:read,balances:read,credentials:read"

// ClientConfig holds the credentials and endpoints of a Tink app.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Market       string
	Locale       string
	// APIBaseURL is the API host, e.g. "https://api.tink.com".
	APIBaseURL string
	// LinkBaseURL is the user-facing account-connection host,
	// e.g. "https://link.tink.com".
	LinkBaseURL string
}

// Validate checks that the required credentials are present.
func (c *ClientConfig) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return apperrors.ValidationError(apperrors.CodeMissingField, "client_id", c.ClientID)
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return apperrors.ValidationError(apperrors.CodeMissingField, "client_secret", "")
	}
	if strings.TrimSpace(c.RedirectURI) == "" {
		return apperrors.ValidationError(apperrors.CodeMissingField, "redirect_uri", c.RedirectURI)
	}
	return nil
}

// DefaultClientConfig returns a configuration pointed at the production
// Tink hosts for the French market.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Market:      "FR",
		Locale:      "fr_FR",
		APIBaseURL:  "https://api.tink.com",
		LinkBaseURL: "https://link.tink.com",
	}
}

// Client performs sequential blocking calls against the Tink API. A
// transient failure aborts the current sync; there is no retry policy.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	logger     logger.Logger
	now        func() time.Time
}

// NewClient creates a Tink API client.
func NewClient(config *ClientConfig, httpClient *http.Client, log logger.Logger) (*Client, error) {
	if config == nil {
		return nil, apperrors.ValidationError(apperrors.CodeInvalidConfig, "tink_config", nil)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logger.Global()
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     log.WithComponent("tink_client"),
		now:        time.Now,
	}, nil
}

// AuthURL builds the user-facing account-connection URL for the OAuth2
// authorization-code flow. The trailing timestamp parameter busts any
// intermediary cache.
func (c *Client) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.config.ClientID)
	q.Set("redirect_uri", c.config.RedirectURI)
	q.Set("scope", authScope)
	q.Set("market", c.config.Market)
	q.Set("locale", c.config.Locale)
	q.Set("response_type", "code")
	q.Set("state", state)
	q.Set("t", strconv.FormatInt(c.now().Unix(), 10))

	return fmt.Sprintf("%s/1.0/transactions/connect-accounts?%s",
		strings.TrimRight(c.config.LinkBaseURL, "/"), q.Encode())
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	endpoint := c.config.APIBaseURL + "/api/v1/oauth/token"

	form := url.Values{}
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.config.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperrors.SyncError(apperrors.CodeTokenExchange, endpoint, 0, "", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token TokenResponse
	if err := c.do(req, apperrors.CodeTokenExchange, &token); err != nil {
		return nil, err
	}

	c.logger.WithFields(logger.Fields{
		"token_type": token.TokenType,
		"expires_in": token.ExpiresIn,
	}).Info("exchanged authorization code for access token")

	return &token, nil
}

// Accounts fetches the accounts visible to the given access token.
func (c *Client) Accounts(ctx context.Context, accessToken string) ([]APIAccount, error) {
	endpoint := c.config.APIBaseURL + "/data/v2/accounts"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.SyncError(apperrors.CodeAPIRequest, endpoint, 0, "", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var body accountsResponse
	if err := c.do(req, apperrors.CodeAPIRequest, &body); err != nil {
		return nil, err
	}

	c.logger.WithField("accounts", len(body.Accounts)).Debug("fetched accounts")
	return body.Accounts, nil
}

// Transactions fetches up to pageSize transactions for one account.
func (c *Client) Transactions(ctx context.Context, accessToken, accountID string, pageSize int) ([]APITransaction, error) {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("accountIdIn", accountID)
	endpoint := c.config.APIBaseURL + "/data/v2/transactions?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.SyncError(apperrors.CodeAPIRequest, endpoint, 0, "", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var body transactionsResponse
	if err := c.do(req, apperrors.CodeAPIRequest, &body); err != nil {
		return nil, err
	}

	c.logger.WithFields(logger.Fields{
		"account_id":   accountID,
		"transactions": len(body.Transactions),
	}).Debug("fetched transactions")

	return body.Transactions, nil
}

// do executes the request and decodes a 2xx JSON response into out. Non-2xx
// responses surface the status and body to the caller.
func (c *Client) do(req *http.Request, code apperrors.ErrorCode, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.SyncError(code, req.URL.Path, 0, "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.SyncError(code, req.URL.Path, resp.StatusCode, "", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.SyncError(code, req.URL.Path, resp.StatusCode, string(raw), nil)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.SyncError(apperrors.CodeAPIResponse, req.URL.Path, resp.StatusCode, string(raw), err)
	}

	return nil
}
