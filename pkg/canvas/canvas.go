package canvas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/requests"
	"github.com/spf13/cast"
	"golang.org/x/oauth2"
)

const (
	authorizePath = "/login/oauth2/auth"
	tokenPath     = "/login/oauth2/token"
)

// PassThroughParams are copied from the login request to the Canvas
// authorize URL when present.
var PassThroughParams = []string{"scope", "purpose", "force_login", "unique_id"}

// TokenResponse is the result of a successful code exchange.
type TokenResponse struct {
	AccessToken  string
	TokenType    string
	RefreshToken string
	Expiry       time.Time
	UserID       string
	UserName     string
}

// RevokeResponse is the result of a token revocation. ForwardURL is set when
// Canvas asks the browser to continue to a provider logout page.
type RevokeResponse struct {
	ForwardURL string
}

// Client talks to the Canvas OAuth2 endpoints.
type Client interface {
	Exchange(ctx context.Context, code, redirectURI string) (*TokenResponse, error)
	Revoke(ctx context.Context, accessToken string, expireAll bool) (*RevokeResponse, error)
}

// Config identifies a Canvas instance and the developer key registered with it.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	// HTTPClient is used for every outbound call. Defaults to
	// requests.NewHTTPClient().
	HTTPClient *http.Client
}

// ProviderError is returned when Canvas rejects a token request with an
// OAuth2 error response.
type ProviderError struct {
	Code        string
	Description string
	StatusCode  int
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("canvas returned %q (status %d): %s", e.Code, e.StatusCode, e.Description)
	}
	return fmt.Sprintf("canvas returned %q (status %d)", e.Code, e.StatusCode)
}

type canvasClient struct {
	cfg        Config
	httpClient *http.Client
}

var _ Client = (*canvasClient)(nil)

// NewClient creates a Client for the Canvas instance in cfg.
func NewClient(cfg Config) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("missing canvas base url")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		var err error
		httpClient, err = requests.NewHTTPClient()
		if err != nil {
			return nil, err
		}
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &canvasClient{cfg: cfg, httpClient: httpClient}, nil
}

func (c Config) oauth2Config(redirectURI string) *oauth2.Config {
	base := strings.TrimSuffix(c.BaseURL, "/")
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + authorizePath,
			TokenURL:  base + tokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: redirectURI,
	}
}

// AuthCodeURL builds the Canvas authorize URL. Only the PassThroughParams
// present in params are forwarded.
func (c Config) AuthCodeURL(state, redirectURI string, params url.Values) string {
	var opts []oauth2.AuthCodeOption
	for _, name := range PassThroughParams {
		if v := params.Get(name); v != "" {
			opts = append(opts, oauth2.SetAuthURLParam(name, v))
		}
	}
	return c.oauth2Config(redirectURI).AuthCodeURL(state, opts...)
}

// Exchange redeems an authorization code. It makes a single attempt.
func (c *canvasClient) Exchange(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	if code == "" {
		return nil, errors.New("missing code")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.cfg.oauth2Config(redirectURI).Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			return nil, &ProviderError{
				Code:        retrieveErr.ErrorCode,
				Description: retrieveErr.ErrorDescription,
				StatusCode:  status,
			}
		}
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	resp := &TokenResponse{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}

	user, ok := token.Extra("user").(map[string]interface{})
	if !ok {
		return nil, errors.New("token response has no user")
	}
	resp.UserID, err = cast.ToStringE(user["id"])
	if err != nil || resp.UserID == "" {
		return nil, fmt.Errorf("token response has an invalid user id: %v", user["id"])
	}
	resp.UserName = cast.ToString(user["name"])

	logger.Verbose(logger.ProviderDebug).Infof("exchanged code for user %s", resp.UserID)
	return resp, nil
}

// Revoke deletes the access token. With expireAll Canvas also ends the
// user's web sessions.
func (c *canvasClient) Revoke(ctx context.Context, accessToken string, expireAll bool) (*RevokeResponse, error) {
	endpoint := c.cfg.BaseURL + tokenPath
	if expireAll {
		endpoint += "?expire_sessions=1"
	}

	json, err := requests.New(endpoint).
		WithContext(ctx).
		WithClient(c.httpClient).
		WithMethod(http.MethodDelete).
		SetHeader("Authorization", "Bearer "+accessToken).
		SetHeader("Accept", "application/json").
		Do().
		UnmarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("token revocation: %w", err)
	}

	forwardURL, _ := json.Get("forward_url").String()
	return &RevokeResponse{ForwardURL: forwardURL}, nil
}
