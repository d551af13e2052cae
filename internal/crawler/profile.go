package crawler

import "strings"

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

var stealthHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Cache-Control":             "no-cache",
	"Pragma":                    "no-cache",
	"Sec-Ch-Ua":                 `"Chromium";v="126", "Not.A/Brand";v="24", "Google Chrome";v="126"`,
	"Sec-Ch-Ua-Mobile":          "?0",
	"Sec-Ch-Ua-Platform":        `"Windows"`,
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
}

// StealthHeaders returns a fresh copy of the browser-like header set.
func StealthHeaders(userAgent string) map[string]string {
	h := make(map[string]string, len(stealthHeaders)+1)
	for k, v := range stealthHeaders {
		h[k] = v
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	h["User-Agent"] = userAgent
	return h
}

// Checked in order; the first match names the challenge.
var captchaMarkers = []struct {
	marker string
	kind   string
}{
	{"g-recaptcha", "recaptcha"},
	{"www.google.com/recaptcha", "recaptcha"},
	{"h-captcha", "hcaptcha"},
	{"hcaptcha.com", "hcaptcha"},
	{"cf-turnstile", "turnstile"},
	{"challenges.cloudflare.com", "cloudflare"},
	{"/sorry/index", "google_sorry"},
	{"unusual traffic from your computer network", "google_sorry"},
}

// DetectCaptcha returns the challenge type found in html, if any.
func DetectCaptcha(html string) (string, bool) {
	lower := strings.ToLower(html)
	for _, m := range captchaMarkers {
		if strings.Contains(lower, m.marker) {
			return m.kind, true
		}
	}
	return "", false
}
