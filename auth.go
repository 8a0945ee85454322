package adwords

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

const (
	libraryVersion = "0.1.0"
	adwordsScope   = "https://www.googleapis.com/auth/adwords"
)

// Auth handles header generation and OAuth2 token refresh.
type Auth struct {
	cfg    Config
	tokens oauth2.TokenSource
}

// newAuth builds the token source. Token refreshes go through client so
// they share the SDK's proxy and timeout settings.
func newAuth(cfg Config, client *http.Client) Auth {
	token := &oauth2.Token{
		AccessToken:  cfg.OAuth2AccessToken,
		RefreshToken: cfg.OAuth2RefreshToken,
		Expiry:       cfg.OAuth2TokenExpiry,
		TokenType:    "Bearer",
	}

	if cfg.OAuth2RefreshToken == "" {
		return Auth{cfg: cfg, tokens: oauth2.StaticTokenSource(token)}
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.OAuth2ClientID,
		ClientSecret: cfg.OAuth2ClientSecret,
		Scopes:       []string{adwordsScope},
		Endpoint: oauth2.Endpoint{
			TokenURL:  firstNonEmpty(cfg.OAuth2TokenURL, defaultTokenURL),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx := context.Background()
	if client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	}
	return Auth{cfg: cfg, tokens: oauthCfg.TokenSource(ctx, token)}
}

// Headers returns default headers including auth. A token that cannot be
// obtained or refreshed is reported as an *AuthorizationError.
func (a Auth) Headers() (http.Header, error) {
	h := http.Header{}
	if a.tokens != nil {
		tok, err := a.tokens.Token()
		if err != nil {
			return nil, &AuthorizationError{Message: "obtain OAuth2 access token", Err: err}
		}
		h.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	}
	h.Set("developerToken", a.cfg.DeveloperToken)
	h.Set("clientCustomerId", a.cfg.ClientCustomerID)
	h.Set("User-Agent", a.userAgent())
	return h, nil
}

func (a Auth) userAgent() string {
	lib := "adwords-golang/" + libraryVersion
	if a.cfg.UserAgent == "" {
		return lib
	}
	return a.cfg.UserAgent + " (" + lib + ")"
}
