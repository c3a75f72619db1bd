// Package bypass recognizes bot-protection challenge pages. A challenge
// page has not delivered the article, so its text must not be treated as
// article content.
package bypass

import (
	"bytes"
	"net/http"
	"slices"
	"strings"
)

// Response is the part of an HTTP response the detectors look at.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Detector reports the protection vendor that challenged res, or "".
type Detector func(res Response) string

// signature describes one vendor's challenge page.
type signature struct {
	vendor   string
	statuses []int
	server   string   // substring of the Server header
	headers  []string // any of these headers present
	body     [][]byte // any of these byte strings in the body
}

var signatures = []signature{
	{
		vendor:   "Cloudflare",
		statuses: []int{http.StatusForbidden, http.StatusServiceUnavailable},
		server:   "cloudflare",
		body: [][]byte{
			[]byte("cf-browser-verification"),
			[]byte("cf-turnstile"),
			[]byte("cf-chl-"),
			[]byte("Attention Required! | Cloudflare"),
		},
	},
	{
		vendor:   "Akamai",
		statuses: []int{http.StatusForbidden},
		server:   "akamai",
	},
	{
		vendor:   "DataDome",
		statuses: []int{http.StatusForbidden},
		server:   "datadome",
		headers:  []string{"X-Datadome", "X-Datadome-Response"},
		body:     [][]byte{[]byte("geo.captcha-delivery.com")},
	},
	{
		vendor:   "PerimeterX",
		statuses: []int{http.StatusForbidden},
		headers:  []string{"X-Px-Captcha"},
		body: [][]byte{
			[]byte("client.perimeterx.net"),
			[]byte("px-captcha"),
			[]byte("_pxBlock"),
		},
	},
}

func (s signature) match(res Response) bool {
	if !slices.Contains(s.statuses, res.StatusCode) {
		return false
	}
	if s.server != "" && strings.Contains(strings.ToLower(res.Header.Get("Server")), s.server) {
		return true
	}
	for _, h := range s.headers {
		if res.Header.Get(h) != "" {
			return true
		}
	}
	for _, b := range s.body {
		if bytes.Contains(res.Body, b) {
			return true
		}
	}
	return false
}

// akamaiBlockPage catches Akamai's generic "Access Denied ... Reference #" page
// that carries no vendor header.
func akamaiBlockPage(res Response) string {
	if res.StatusCode == http.StatusForbidden &&
		bytes.Contains(res.Body, []byte("Access Denied")) &&
		bytes.Contains(res.Body, []byte("Reference #")) {
		return "Akamai"
	}
	return ""
}

// DefaultDetectors returns one detector per known vendor.
func DefaultDetectors() []Detector {
	detectors := make([]Detector, 0, len(signatures)+1)
	for _, s := range signatures {
		detectors = append(detectors, func(res Response) string {
			if s.match(res) {
				return s.vendor
			}
			return ""
		})
	}
	return append(detectors, akamaiBlockPage)
}

// Analyze returns the first vendor any detector reports, or "".
func Analyze(res Response, detectors []Detector) string {
	for _, d := range detectors {
		if vendor := d(res); vendor != "" {
			return vendor
		}
	}
	return ""
}
