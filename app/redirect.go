package app

import (
	"net/url"
	"strings"
)

// SafeRedirect keeps post-login redirects on our own client. Relative paths
// and absolute URLs on the web origin pass; anything else yields fallback.
func SafeRedirect(target, origin, fallback string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return fallback
	}
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.Contains(target, `\`) {
		return target
	}
	u, err := url.Parse(target)
	if err != nil || origin == "" {
		return fallback
	}
	o, err := url.Parse(origin)
	if err != nil {
		return fallback
	}
	if u.Scheme == o.Scheme && u.Host == o.Host {
		return target
	}
	return fallback
}
