package deploy

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// serviceTokenTTL bounds how long a minted service token stays valid. The
// token only needs to outlive the single request it authorizes.
const serviceTokenTTL = 5 * time.Minute

// authorize attaches credentials to an outgoing platform request. A service
// key mints a fresh short-lived token per request; otherwise the long-lived
// API token is sent as-is.
func (c *Client) authorize(req *http.Request) error {
	if c.serviceKey != "" {
		token, err := mintServiceToken(c.serviceKey, c.accountID, time.Now())
		if err != nil {
			return fmt.Errorf("deploy: failed to mint service token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}

	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	return nil
}

// mintServiceToken signs an HS256 token identifying the account. The
// platform verifies it against the shared service key configured for the
// account.
func mintServiceToken(key, accountID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    accountID,
		Subject:   "mdxld-workers-deploy",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(serviceTokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		return "", err
	}
	return signed, nil
}
