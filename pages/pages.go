// Package pages maps client page names to their paths.
package pages

import (
	"regexp"
	"strings"
)

const (
	Home          = "Home"
	Browse        = "Browse"
	Equipment     = "Equipment"
	Dashboard     = "Dashboard"
	MyBookings    = "MyBookings"
	MyListings    = "MyListings"
	Profile       = "Profile"
	ListEquipment = "ListEquipment"
	HowItWorks    = "HowItWorks"
)

var routes = map[string]string{
	Home:          "/",
	Browse:        "/browse",
	Equipment:     "/equipment",
	Dashboard:     "/dashboard",
	MyBookings:    "/my-bookings",
	MyListings:    "/my-listings",
	Profile:       "/profile",
	ListEquipment: "/list-equipment",
	HowItWorks:    "/how-it-works",
}

var slashes = regexp.MustCompile(`/+`)

// Table builds page URLs under a base path (e.g. "/rentkit/" on a static host).
type Table struct {
	base string
}

func New(base string) Table { return Table{base: strings.TrimRight(base, "/")} }

// URL returns the path for a page name; unknown names map to Home.
func (t Table) URL(name string) string {
	p, ok := routes[name]
	if !ok {
		p = "/"
	}
	return slashes.ReplaceAllString(t.base+p, "/")
}

// Paths lists every page path, as served by the SPA fallback.
func (t Table) Paths() map[string]string {
	out := make(map[string]string, len(routes))
	for name := range routes {
		out[name] = t.URL(name)
	}
	return out
}
