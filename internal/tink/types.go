package tink

// Wire types for the Tink open-banking API. Amounts arrive as an
// unscaled value and a scale, both encoded as strings.

// APIAmount is the scaled amount encoding used across the API.
type APIAmount struct {
	Value struct {
		UnscaledValue string `json:"unscaledValue"`
		Scale         string `json:"scale"`
	} `json:"value"`
	CurrencyCode string `json:"currencyCode"`
}

// TokenResponse is the body of a successful OAuth2 code exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// APIAccount is one account as reported by GET /data/v2/accounts.
type APIAccount struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Balances struct {
		Booked struct {
			Amount APIAmount `json:"amount"`
		} `json:"booked"`
	} `json:"balances"`
	Identifiers struct {
		IBAN struct {
			IBAN string `json:"iban"`
		} `json:"iban"`
	} `json:"identifiers"`
}

type accountsResponse struct {
	Accounts []APIAccount `json:"accounts"`
}

// APITransaction is one transaction as reported by GET /data/v2/transactions.
type APITransaction struct {
	ID           string    `json:"id"`
	Amount       APIAmount `json:"amount"`
	Descriptions struct {
		Original string `json:"original"`
		Display  string `json:"display"`
	} `json:"descriptions"`
	Dates struct {
		Booked string `json:"booked"`
	} `json:"dates"`
	Status string `json:"status"`
}

type transactionsResponse struct {
	Transactions []APITransaction `json:"transactions"`
}

// StatusBooked marks a settled transaction; only these are imported.
const StatusBooked = "BOOKED"
