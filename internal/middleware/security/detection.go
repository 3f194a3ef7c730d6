package security

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

// Reason names why a request was flagged.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonTraversal     Reason = "path_traversal"
	ReasonFileScan      Reason = "file_scan"
	ReasonInjection     Reason = "injection"
	ReasonScannerAgent  Reason = "scanner_agent"
	ReasonMethod        Reason = "unusual_method"
	ReasonOversizedURL  Reason = "oversized_url"
	ReasonForwardedHops Reason = "forwarded_hops"
)

const (
	maxURLLength    = 2048
	maxForwardedIPs = 6
)

// Files and admin panels scanners look for. None of them exist on a JSON API.
var scanTargets = []string{
	".env", ".git", ".ssh", ".php", ".asp", "wp-admin", "wp-login", "phpmyadmin", "cgi-bin", "etc/passwd",
}

// Payload fragments that never belong in a user id, month or year.
var injectionFragments = []string{
	"<script", "javascript:", "union select", "' or ", "\" or ", "sleep(", "eval(", "${jndi:",
}

var scannerAgents = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab", "nuclei", "wpscan",
}

// Detector flags requests that look like scans of the API and resolves
// client addresses behind trusted proxies.
type Detector struct {
	trustedProxies []*net.IPNet
	flagged        atomic.Int64
}

// NewDetector trusts forwarding headers from loopback and private networks.
func NewDetector() *Detector {
	d := &Detector{}
	for _, cidr := range []string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "::1/128"} {
		if err := d.AddTrustedProxy(cidr); err != nil {
			panic(err)
		}
	}
	return d
}

// AddTrustedProxy trusts X-Forwarded-For and X-Real-IP from cidr.
func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

// Classify returns the first reason r looks hostile, or ReasonNone.
func (d *Detector) Classify(r *http.Request) Reason {
	if r.Method == http.MethodTrace || r.Method == http.MethodConnect || r.Method == "TRACK" || r.Method == "DEBUG" {
		return ReasonMethod
	}
	if len(r.URL.RequestURI()) > maxURLLength {
		return ReasonOversizedURL
	}

	// Match on the decoded form so %2e%2e and %3Cscript are caught too.
	path := strings.ToLower(r.URL.Path)
	rawPath := strings.ToLower(r.URL.EscapedPath())
	if strings.Contains(path, "..") || strings.Contains(rawPath, "%2e%2e") {
		return ReasonTraversal
	}
	for _, p := range scanTargets {
		if strings.Contains(path, p) {
			return ReasonFileScan
		}
	}

	query, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		query = r.URL.RawQuery
	}
	haystack := path + "?" + strings.ToLower(query)
	for _, f := range injectionFragments {
		if strings.Contains(haystack, f) {
			return ReasonInjection
		}
	}

	agent := strings.ToLower(r.UserAgent())
	for _, a := range scannerAgents {
		if strings.Contains(agent, a) {
			return ReasonScannerAgent
		}
	}

	if xff := r.Header.Get("X-Forwarded-For"); strings.Count(xff, ",") >= maxForwardedIPs {
		return ReasonForwardedHops
	}
	return ReasonNone
}

// Flagged returns how many requests Middleware has flagged.
func (d *Detector) Flagged() int64 {
	return d.flagged.Load()
}

// ExtractClientIP returns the connecting address, or the forwarded client
// address when the connection comes from a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}
	parsed := net.ParseIP(directIP)
	if parsed == nil || !d.isTrustedProxy(parsed) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// Middleware logs and counts flagged requests. It never blocks.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := d.Classify(r); reason != ReasonNone {
			d.flagged.Add(1)
			slog.WarnContext(r.Context(), "Suspicious request detected",
				"component", "security",
				"reason", string(reason),
				"client_ip", d.ExtractClientIP(r),
				"method", r.Method,
				"path", r.URL.Path,
				"user_agent", r.UserAgent())
		}
		next.ServeHTTP(w, r)
	})
}
