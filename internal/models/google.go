package models

// GoogleServiceAccount holds the fields this module needs from a Play Console
// service-account key. Parsed from a JSON-encoded environment value.
type GoogleServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri,omitempty"`
}

// GoogleAccessToken is the OAuth2 token endpoint response.
type GoogleAccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
