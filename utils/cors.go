package utils

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/cors"
)

// PrivateOrigins is a CORS_ORIGINS entry that admits any LAN origin.
const PrivateOrigins = "private"

var privateNetworks = []*net.IPNet{
	mustParseCIDR("10.0.0.0/8"),
	mustParseCIDR("172.16.0.0/12"),
	mustParseCIDR("192.168.0.0/16"),
	mustParseCIDR("127.0.0.0/8"),
	mustParseCIDR("169.254.0.0/16"), // link-local IPv4
	mustParseCIDR("::1/128"),
	mustParseCIDR("fe80::/10"), // link-local IPv6
	mustParseCIDR("fc00::/7"),  // unique local IPv6
}

// NewCORS builds the CORS middleware for the configured origins. "*" admits
// every origin, "private" admits LAN origins, anything else is matched
// literally (go-chi/cors wildcards such as https://*.example.com work too).
func NewCORS(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	var explicit []string
	allowPrivate := false
	for _, origin := range origins {
		switch origin = strings.TrimSpace(origin); origin {
		case "":
		case PrivateOrigins:
			allowPrivate = true
		default:
			explicit = append(explicit, origin)
		}
	}

	if allowPrivate {
		exact := make(map[string]struct{}, len(explicit))
		wildcard := false
		for _, o := range explicit {
			if o == "*" {
				wildcard = true
			}
			exact[strings.ToLower(o)] = struct{}{}
		}
		opts.AllowOriginFunc = func(_ *http.Request, origin string) bool {
			if wildcard || IsAllowedOrigin(origin) {
				return true
			}
			_, ok := exact[strings.ToLower(origin)]
			return ok
		}
	} else {
		opts.AllowedOrigins = explicit
	}
	return cors.Handler(opts)
}

// IsAllowedOrigin reports whether origin is on the local network: localhost,
// private or link-local IPs, .local hostnames and single-label hostnames.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	hostname := parsed.Hostname()
	switch {
	case hostname == "localhost", strings.HasSuffix(hostname, ".local"):
		return true
	case !strings.Contains(hostname, ".") && !strings.Contains(hostname, ":"):
		return true
	}

	ip := net.ParseIP(hostname)
	if ip == nil {
		return false
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func mustParseCIDR(s string) *net.IPNet {
	_, network, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return network
}
