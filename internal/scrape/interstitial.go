package scrape

import (
	"net/http"
	"net/url"
	"strings"
)

// Interstitial is the kind of page the store serves in place of a detail page.
type Interstitial string

const (
	InterstitialNone           Interstitial = ""
	InterstitialConsent        Interstitial = "consent"
	InterstitialSignIn         Interstitial = "sign_in"
	InterstitialUnusualTraffic Interstitial = "unusual_traffic"
	InterstitialOffOrigin      Interstitial = "off_origin"
	InterstitialRedirectShell  Interstitial = "redirect_shell"
)

// redirectShellMaxBytes bounds the meta-refresh check to bodies that carry
// nothing else.
const redirectShellMaxBytes = 2000

// InterstitialGuard recognizes consent walls, sign-in redirects and traffic
// checks that stand in for a detail page. A page carrying any detail-page
// locator is always treated as real.
type InterstitialGuard struct {
	origin   *url.URL
	locators []string
}

// NewInterstitialGuard creates a guard for pages served from origin. An empty
// origin disables the redirect check.
func NewInterstitialGuard(origin string, locators ...string) *InterstitialGuard {
	g := &InterstitialGuard{}
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		g.origin = u
	}
	for _, l := range locators {
		if l = strings.TrimPrefix(strings.TrimSpace(l), "."); l != "" {
			g.locators = append(g.locators, l)
		}
	}
	return g
}

// Check classifies a response and its body.
func (g *InterstitialGuard) Check(resp *http.Response, body []byte) Interstitial {
	if resp == nil {
		return InterstitialNone
	}

	if g.origin != nil && resp.Request != nil && resp.Request.URL != nil {
		if host := resp.Request.URL.Host; !strings.EqualFold(host, g.origin.Host) {
			switch {
			case strings.HasPrefix(host, "consent."):
				return InterstitialConsent
			case strings.HasPrefix(host, "accounts."):
				return InterstitialSignIn
			default:
				return InterstitialOffOrigin
			}
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return InterstitialUnusualTraffic
	}

	text := string(body)
	for _, l := range g.locators {
		if strings.Contains(text, l) {
			return InterstitialNone
		}
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "unusual traffic") || strings.Contains(lower, "/sorry/index"):
		return InterstitialUnusualTraffic
	case strings.Contains(lower, "consent.google") || strings.Contains(lower, "before you continue"):
		return InterstitialConsent
	case strings.Contains(lower, "accounts.google.com/servicelogin"):
		return InterstitialSignIn
	case len(body) < redirectShellMaxBytes && strings.Contains(lower, `http-equiv="refresh"`):
		return InterstitialRedirectShell
	}
	return InterstitialNone
}
