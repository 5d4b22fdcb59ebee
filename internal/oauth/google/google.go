// Package google implements the Google OpenID Connect sign-in provider.
package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/quanty/quanty-backend/internal/auth"
	"github.com/quanty/quanty-backend/internal/users"
	"github.com/quanty/quanty-backend/pkg/config"
	"github.com/quanty/quanty-backend/pkg/logger"
	"golang.org/x/oauth2"
)

const issuerURL = "https://accounts.google.com"

type Provider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
	logg        *logger.Logger
}

// New discovers Google's OIDC endpoints and builds a provider for cfg.
func New(ctx context.Context, cfg config.GoogleConfig, logg *logger.Logger) (*Provider, error) {
	return NewWithIssuer(ctx, issuerURL, cfg, logg)
}

// NewWithIssuer is New against an arbitrary OIDC issuer.
func NewWithIssuer(ctx context.Context, issuer string, cfg config.GoogleConfig, logg *logger.Logger) (*Provider, error) {
	if !cfg.Enabled() {
		return nil, errors.New("google oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("init google oidc provider: %w", err)
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     oidcProvider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: oidcProvider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		logg:     logg,
	}, nil
}

// AuthCodeURL builds the authorization URL with an S256 PKCE challenge.
func (p *Provider) AuthCodeURL(state, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// ExchangeCode trades the authorization code for tokens and verifies the ID token.
func (p *Provider) ExchangeCode(ctx context.Context, code, codeVerifier string) (*auth.Identity, error) {
	token, err := p.oauthConfig.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
	if err != nil {
		return nil, fmt.Errorf("google token exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("google did not return id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google id_token verification: %w", err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("google id_token claims: %w", err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, errors.New("google id_token missing required claims")
	}
	if !claims.EmailVerified {
		return nil, errors.New("google email not verified")
	}

	if p.logg != nil {
		p.logg.Debug(p.logg.WithFields(ctx, map[string]any{
			"issuer":   idToken.Issuer,
			"audience": idToken.Audience,
			"expiry":   idToken.Expiry.Unix(),
		}), "google oidc verified")
	}

	return &auth.Identity{
		Provider: users.ProviderGoogle,
		Subject:  claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
	}, nil
}
