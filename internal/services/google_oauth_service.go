package services

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"

	"pawfectBack/internal/models"
)

const (
	googleTokenURL        = "https://oauth2.googleapis.com/token"
	androidPublisherScope = "https://www.googleapis.com/auth/androidpublisher"
	jwtBearerGrantType    = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

// GoogleOAuthService exchanges a service-account key for short-lived bearer
// tokens via an RS256 JWT assertion. Tokens are not cached: every call
// re-authenticates, which keeps the exchange stateless at the cost of one
// extra round trip per validation.
type GoogleOAuthService struct {
	clientEmail string
	key         *rsa.PrivateKey
	tokenURL    string
	client      *http.Client
}

// NewGoogleOAuthService parses the JSON-encoded service-account key.
// Malformed or incomplete credentials fail here, before any network I/O.
func NewGoogleOAuthService(serviceAccountJSON string, client *http.Client) (*GoogleOAuthService, error) {
	var account models.GoogleServiceAccount
	if err := json.Unmarshal([]byte(serviceAccountJSON), &account); err != nil {
		return nil, fmt.Errorf("google iap: parse service account json: %w", err)
	}
	if strings.TrimSpace(account.ClientEmail) == "" || strings.TrimSpace(account.PrivateKey) == "" {
		return nil, errors.New("google iap: client_email and private_key are required")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(account.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("google iap: parse private key: %w", err)
	}
	tokenURL := strings.TrimSpace(account.TokenURI)
	if tokenURL == "" {
		tokenURL = googleTokenURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleOAuthService{
		clientEmail: strings.TrimSpace(account.ClientEmail),
		key:         key,
		tokenURL:    tokenURL,
		client:      client,
	}, nil
}

// AccessToken signs a fresh assertion and exchanges it at the token endpoint.
// Any non-2xx response or timeout is a hard failure, no retry.
func (s *GoogleOAuthService) AccessToken(ctx context.Context) (string, error) {
	assertion, err := s.signedAssertion()
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {jwtBearerGrantType},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("google oauth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("google oauth: %s (%s)", resp.Status, strings.TrimSpace(string(body)))
	}

	var token models.GoogleAccessToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("google oauth: decode token response: %w", err)
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return "", errors.New("google oauth: empty access token")
	}
	return token.AccessToken, nil
}

func (s *GoogleOAuthService) signedAssertion() (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"iss":   s.clientEmail,
		"scope": androidPublisherScope,
		"aud":   s.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
}
