package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions tunes the hardening headers for the JSON API.
//
// EnableHSTS should only be turned on once traffic is HTTPS end to end,
// including the hop between the load balancer and the app. HSTSMaxAge
// defaults to 180 days when unset.
//
// NoStore adds Cache-Control: no-store. Leave it off here: the thoughts
// feed relies on ETag revalidation, and no-store would stop well-behaved
// clients from replaying conditional requests.
//
// EnablePolicy emits Permissions-Policy and related headers. Only
// browsers honor them; the native apps ignore them, so there is no cost
// to leaving them on.
type SecurityOptions struct {
	EnableHSTS   bool
	HSTSMaxAge   time.Duration
	NoStore      bool
	EnablePolicy bool
}

// SecurityHeaders hardens every response. This API serves private journal
// entries to native mobile clients, so the defaults lean locked-down:
// responses must never be sniffed, framed, or leak URLs through referrers.
//
// Always set:
//
//	X-Content-Type-Options: nosniff
//	X-Frame-Options: DENY
//	Referrer-Policy: no-referrer
//
// With EnablePolicy, browser feature access is shut off entirely; voice
// messages are recorded in the native apps, so nothing served here ever
// needs microphone or camera access. With EnableHSTS,
// Strict-Transport-Security is sent only on requests that actually
// arrived over HTTPS.
//
// When an X-Request-ID is on the response, it is appended to
// Access-Control-Expose-Headers so browser-based clients can surface it
// in bug reports.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hstsValue := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hstsValue)
		}

		if rid := h.Get("X-Request-ID"); rid != "" {
			const hdr = "Access-Control-Expose-Headers"
			switch cur := h.Get(hdr); {
			case cur == "":
				h.Set(hdr, "X-Request-ID")
			case !strings.Contains(cur, "X-Request-ID"):
				h.Set(hdr, cur+", X-Request-ID")
			}
		}

		c.Next()
	}
}

// isHTTPS accepts either a direct TLS connection or a proxy that vouches
// for one via X-Forwarded-Proto.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
