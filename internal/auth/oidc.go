package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"storefront-be/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Authenticator is the identity provider side of the login flow.
type Authenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*User, error)
	LogoutURL(returnTo string) string
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type OIDCProvider struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
	issuer   string
	clientID string
	logout   string
}

// NewOIDCProvider discovers the provider metadata from the issuer.
func NewOIDCProvider(ctx context.Context, cfg OIDCConfig) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", cfg.Issuer, err)
	}

	var meta struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if err := provider.Claims(&meta); err != nil {
		logger.FromCtx(ctx).Warn("failed to read provider metadata", zap.Error(err))
	}

	return &OIDCProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		issuer:   cfg.Issuer,
		clientID: cfg.ClientID,
		logout:   meta.EndSessionEndpoint,
	}, nil
}

func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens and returns the identity
// from the verified ID token.
func (p *OIDCProvider) Exchange(ctx context.Context, code string) (*User, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	rawID, ok := token.Extra("id_token").(string)
	if !ok || rawID == "" {
		return nil, ErrMissingIDToken
	}

	idToken, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	var u User
	if err := idToken.Claims(&u); err != nil {
		return nil, fmt.Errorf("decode id token claims: %w", err)
	}
	if u.Sub == "" {
		u.Sub = idToken.Subject
	}
	return &u, nil
}

// LogoutURL ends the provider session and sends the browser to returnTo.
// Providers without an end_session_endpoint get the /v2/logout convention.
func (p *OIDCProvider) LogoutURL(returnTo string) string {
	if p.logout != "" {
		q := url.Values{}
		q.Set("client_id", p.clientID)
		q.Set("post_logout_redirect_uri", returnTo)
		return p.logout + "?" + q.Encode()
	}

	q := url.Values{}
	q.Set("client_id", p.clientID)
	q.Set("returnTo", returnTo)
	return strings.TrimSuffix(p.issuer, "/") + "/v2/logout?" + q.Encode()
}

var _ Authenticator = (*OIDCProvider)(nil)
