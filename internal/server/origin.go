// Package server normalizes and validates HTTP origins for WebSocket requests
// to enforce configured access control.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

var errInvalidOrigin = errors.New("origin needs a scheme and a host")

// originPolicy decides which browser origins may open a WebSocket.
type originPolicy struct {
	allowAll bool
	allowed  map[string]struct{}
	log      logrus.FieldLogger
}

// newOriginPolicy builds a policy from configured origins. Blank entries are
// skipped, "*" allows every origin and malformed entries are logged and
// ignored.
func newOriginPolicy(origins []string, log logrus.FieldLogger) *originPolicy {
	policy := &originPolicy{allowed: make(map[string]struct{}, len(origins)), log: log}

	for _, configured := range origins {
		switch origin := strings.TrimSpace(configured); origin {
		case "":
		case "*":
			policy.allowAll = true
		default:
			key, err := originKey(origin)
			if err != nil {
				log.WithError(err).Warnf("Ignoring invalid origin in configuration: %q", configured)
				continue
			}
			policy.allowed[key] = struct{}{}
		}
	}
	return policy
}

// originKey reduces an origin to its lower-cased scheme://host form.
func originKey(origin string) (string, error) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("parse origin %q: %w", origin, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%q: %w", origin, errInvalidOrigin)
	}
	return strings.ToLower(parsed.Scheme + "://" + parsed.Host), nil
}

func (p *originPolicy) isAllowed(r *http.Request) bool {
	header := r.Header.Get("Origin")
	// Non-browser clients such as the terminal friend do not send an Origin.
	if header == "" || p.allowAll {
		return true
	}

	key, err := originKey(header)
	if err != nil {
		return false
	}
	_, ok := p.allowed[key]
	return ok
}

func (p *originPolicy) checkOrigin(r *http.Request) bool {
	if p.isAllowed(r) {
		return true
	}

	p.log.Warnf("Blocked WebSocket connection from disallowed origin: %q", r.Header.Get("Origin"))
	return false
}
