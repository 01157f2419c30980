package authsdk

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the portal authentication service. It keeps
// cookies between calls like a browser and never follows redirects.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with its own cookie jar.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil) // only fails on a non-nil bad PublicSuffixList
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Login authenticates with email and password. On success the session
// cookie is stored in the client's jar and the token is also returned.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", LoginRequest{Email: email, Password: password}, nil)
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout clears the session cookie. It succeeds even without a session.
func (c *SDKClient) Logout(ctx context.Context) (*LogoutResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	if err != nil {
		return nil, err
	}

	var out LogoutResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the principal behind the stored session cookie.
func (c *SDKClient) Me(ctx context.Context) (*PrincipalResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var out PrincipalResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPage requests a page route with the stored cookies. Redirects are
// returned, not followed. The caller closes the body.
func (c *SDKClient) GetPage(ctx context.Context, path string) (*http.Response, error) {
	return c.doRequest(ctx, http.MethodGet, path, nil, nil)
}

// SessionCookie returns the value of the named cookie held for BaseURL.
func (c *SDKClient) SessionCookie(name string) string {
	u, err := url.Parse(c.BaseURL)
	if err != nil || c.HTTPClient.Jar == nil {
		return ""
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// SetSessionCookie plants a cookie for BaseURL, e.g. to replay a stale or
// forged session in tests.
func (c *SDKClient) SetSessionCookie(name, value string) {
	u, err := url.Parse(c.BaseURL)
	if err != nil || c.HTTPClient.Jar == nil {
		return
	}
	c.HTTPClient.Jar.SetCookies(u, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}

// NewSession returns a Session that authenticates with token as a bearer
// credential.
func (c *SDKClient) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}
