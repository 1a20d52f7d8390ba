package rsvp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"sync"
	"syscall"
	"time"

	"glow/internal/appinfo"
	"glow/pkg/logger"
)

var vietnam = time.FixedZone("ICT", 7*60*60)

// webhookPayload is the body a Google Sheet script expects.
type webhookPayload struct {
	GuestName     string     `json:"guestName"`
	GuestRelation string     `json:"guestRelation"`
	GuestWishes   string     `json:"guestWishes"`
	Attendance    Attendance `json:"attendance"`
	SubmittedAt   string     `json:"submittedAt"`
}

var (
	ErrWebhookScheme  = errors.New("rsvp: webhook must be an https URL")
	ErrBlockedAddress = errors.New("rsvp: webhook address is not public")
)

// Forwarder posts replies to webhooks without blocking the caller. The
// response is ignored. Only https endpoints on public addresses are
// contacted.
type Forwarder struct {
	client  *http.Client
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewForwarder(timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialer := &net.Dialer{Timeout: timeout, Control: publicOnly}
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: timeout,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return errors.New("rsvp: too many webhook redirects")
			}
			return checkWebhookURL(req.URL)
		},
	}
	return &Forwarder{client: client, timeout: timeout}
}

// publicOnly runs after DNS resolution, so every address actually dialled
// is checked, including each redirect hop.
func publicOnly(network, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	if !isPublic(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ap.Addr())
	}
	return nil
}

func isPublic(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case !ip.IsValid(),
		ip.IsUnspecified(),
		ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(),
		ip.IsMulticast():
		return false
	}
	// 100.64.0.0/10 carrier-grade NAT.
	if ip.Is4() && ip.As4()[0] == 100 && ip.As4()[1]&0xc0 == 64 {
		return false
	}
	return ip.IsGlobalUnicast()
}

func checkWebhookURL(u *url.URL) error {
	if u.Scheme != "https" || u.Hostname() == "" {
		return ErrWebhookScheme
	}
	return nil
}

// ValidWebhook reports whether raw is a URL the forwarder will contact.
func ValidWebhook(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && checkWebhookURL(u) == nil
}

func (f *Forwarder) Forward(target string, rec Record) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		defer cancel()
		if err := f.post(ctx, target, rec); err != nil {
			appinfo.RSVPForwards.WithLabelValues("error").Inc()
			logger.LogWarn("RSVP webhook for %s failed: %v", rec.InvitationID, err)
			return
		}
		appinfo.RSVPForwards.WithLabelValues("ok").Inc()
	}()
}

func (f *Forwarder) post(ctx context.Context, target string, rec Record) error {
	body, err := json.Marshal(webhookPayload{
		GuestName:     rec.GuestName,
		GuestRelation: rec.GuestRelation,
		GuestWishes:   rec.GuestWishes,
		Attendance:    rec.Attendance,
		SubmittedAt:   rec.CreatedAt.In(vietnam).Format("15:04:05 2/1/2006"),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if err := checkWebhookURL(req.URL); err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

// Wait blocks until in-flight forwards finish. Used on shutdown.
func (f *Forwarder) Wait() {
	f.wg.Wait()
}
