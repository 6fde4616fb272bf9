package oauth

import (
	"context"
	"errors"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/obraplan/obraplan/internal/config"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// GoogleProfile is the subset of the Google identity the rest of the system
// cares about. The OAuth exchange maps into this shape before anything else
// sees it.
type GoogleProfile struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type Google struct {
	conf     *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogle builds the Google OAuth client. When no client id is configured
// it returns a disabled instance rather than an error, so the rest of the
// app can run without OAuth.
func NewGoogle(ctx context.Context, cfg *config.Config) (*Google, error) {
	g := cfg.Auth.Google
	if g.ClientID == "" {
		return &Google{}, nil
	}

	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, err
	}

	return &Google{
		conf: &oauth2.Config{
			ClientID:     g.ClientID,
			ClientSecret: g.ClientSecret,
			RedirectURL:  g.CallbackURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: g.ClientID}),
	}, nil
}

func (g *Google) Enabled() bool { return g.conf != nil }

func (g *Google) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens and returns the verified
// identity claims.
func (g *Google) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	if !g.Enabled() {
		return nil, errors.New("google oauth is not configured")
	}

	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("no id_token field in oauth2 token")
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	var claims struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}

	return &GoogleProfile{
		Subject: claims.Sub,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
