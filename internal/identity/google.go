// Package identity signs people in through Google and sorts the ways that
// can fail into errors the UI can explain.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"glow/internal/auth"
)

var (
	ErrNotConfigured      = errors.New("identity: provider is not configured")
	ErrCancelled          = errors.New("identity: sign-in was cancelled")
	ErrInvalidCredentials = errors.New("identity: provider rejected the credentials")
	ErrNetwork            = errors.New("identity: provider unreachable")
)

const googleUserInfo = "https://openidconnect.googleapis.com/v1/userinfo"

// Message is the operator-facing explanation of a sign-in failure.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "Chưa cấu hình khóa đăng nhập Google. Vui lòng liên hệ quản trị viên."
	case errors.Is(err, ErrCancelled):
		return "Bạn đã đóng cửa sổ đăng nhập."
	case errors.Is(err, ErrInvalidCredentials):
		return "Tên miền chưa được cấp quyền hoặc khóa đăng nhập không hợp lệ."
	case errors.Is(err, ErrNetwork):
		return "Lỗi mạng, vui lòng thử lại."
	}
	return "Đăng nhập thất bại, vui lòng thử lại."
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Endpoint and UserInfoURL default to Google.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
	HTTPClient  *http.Client
}

// placeholder catches values copied from sample configs.
func placeholder(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return true
	}
	for _, p := range []string{"your_", "your-", "changeme", "xxx", "<", "placeholder"} {
		if strings.Contains(v, p) {
			return true
		}
	}
	return false
}

type Google struct {
	oauth       *oauth2.Config
	userInfoURL string
	client      *http.Client
}

// NewGoogle returns ErrNotConfigured when the client id or secret is
// missing or still a placeholder.
func NewGoogle(c Config) (*Google, error) {
	if placeholder(c.ClientID) || placeholder(c.ClientSecret) {
		return nil, ErrNotConfigured
	}
	ep := c.Endpoint
	if ep.AuthURL == "" {
		ep = endpoints.Google
	}
	info := c.UserInfoURL
	if info == "" {
		info = googleUserInfo
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint:     ep,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: info,
		client:      client,
	}, nil
}

// AuthCodeURL builds the consent URL with a PKCE challenge for verifier.
func (g *Google) AuthCodeURL(state, verifier string) string {
	return g.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier), oauth2.SetAuthURLParam("prompt", "select_account"))
}

// NewVerifier returns a fresh PKCE verifier.
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

// CallbackError inspects the provider's redirect for an error parameter.
func CallbackError(q url.Values) error {
	switch q.Get("error") {
	case "":
		return nil
	case "access_denied":
		return ErrCancelled
	case "temporarily_unavailable", "server_error":
		return ErrNetwork
	default:
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, q.Get("error"))
	}
}

type userInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Exchange trades the authorization code for a token and loads the profile.
func (g *Google) Exchange(ctx context.Context, code, verifier string) (auth.Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)
	tok, err := g.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return auth.Profile{}, classify(err)
	}

	resp, err := g.oauth.Client(ctx, tok).Get(g.userInfoURL)
	if err != nil {
		return auth.Profile{}, classify(err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode >= 500:
		return auth.Profile{}, fmt.Errorf("%w: userinfo returned %d", ErrNetwork, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return auth.Profile{}, fmt.Errorf("%w: userinfo returned %d", ErrInvalidCredentials, resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return auth.Profile{}, fmt.Errorf("%w: decode userinfo: %v", ErrNetwork, err)
	}
	if info.Sub == "" || info.Email == "" {
		return auth.Profile{}, fmt.Errorf("%w: profile without subject or email", ErrInvalidCredentials)
	}
	return auth.Profile{UID: info.Sub, Email: info.Email, Name: info.Name, Picture: info.Picture}, nil
}

func classify(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.Response != nil && re.Response.StatusCode >= 500 {
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, re.ErrorCode)
	}
	var ne net.Error
	var ue *url.Error
	if errors.As(err, &ne) || errors.As(err, &ue) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
