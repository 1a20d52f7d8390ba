package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestNotConfigured(t *testing.T) {
	for _, c := range []Config{
		{},
		{ClientID: "YOUR_CLIENT_ID", ClientSecret: "s"},
		{ClientID: "id", ClientSecret: "changeme"},
	} {
		if _, err := NewGoogle(c); !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("NewGoogle(%+v) err = %v", c, err)
		}
	}
}

func TestCallbackError(t *testing.T) {
	cases := map[string]error{
		"":                        nil,
		"access_denied":           ErrCancelled,
		"temporarily_unavailable": ErrNetwork,
		"unauthorized_client":     ErrInvalidCredentials,
	}
	for code, want := range cases {
		q := url.Values{}
		if code != "" {
			q.Set("error", code)
		}
		if err := CallbackError(q); !errors.Is(err, want) || (want == nil && err != nil) {
			t.Fatalf("CallbackError(%q) = %v, want %v", code, err, want)
		}
	}
}

func TestMessagesAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, err := range []error{ErrNotConfigured, ErrCancelled, ErrInvalidCredentials, ErrNetwork} {
		m := Message(err)
		if seen[m] {
			t.Fatalf("duplicate message %q", m)
		}
		seen[m] = true
	}
}

func provider(t *testing.T, tokenStatus int) (*Google, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenStatus != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tokenStatus)
			w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"sub":"g-1","email":"lan@example.com","name":"Lan","picture":"https://p"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	g, err := NewGoogle(Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/auth/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		UserInfoURL:  srv.URL + "/userinfo",
	})
	if err != nil {
		t.Fatal(err)
	}
	return g, srv
}

func TestExchange(t *testing.T) {
	g, _ := provider(t, http.StatusOK)
	p, err := g.Exchange(context.Background(), "code", NewVerifier())
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if p.UID != "g-1" || p.Email != "lan@example.com" || p.Name != "Lan" {
		t.Fatalf("profile = %+v", p)
	}

	u := g.AuthCodeURL("st", NewVerifier())
	if !strings.Contains(u, "state=st") || !strings.Contains(u, "code_challenge=") {
		t.Fatalf("auth url = %s", u)
	}
}

func TestExchangeRejected(t *testing.T) {
	g, _ := provider(t, http.StatusUnauthorized)
	if _, err := g.Exchange(context.Background(), "code", NewVerifier()); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestExchangeUnreachable(t *testing.T) {
	g, srv := provider(t, http.StatusOK)
	srv.Close()
	if _, err := g.Exchange(context.Background(), "code", NewVerifier()); !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}
