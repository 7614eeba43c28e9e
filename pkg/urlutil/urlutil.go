// Package urlutil finds, canonicalizes and validates URLs mentioned in chat text.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

const tldPattern = `(?:com|net|org|edu|gov|mil|biz|info|name|museum|coop|aero|[a-z]{2}|co)`

var (
	duplicateSlashRegex = regexp.MustCompile(`([^:])/{2,}`)
	nakedURLRegex       = regexp.MustCompile(`^(?:www\.)?(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+` + tldPattern + `(?:/\S*)?$`)
	candidateRegex      = regexp.MustCompile(
		`(?:https?://(?:[a-z0-9\-._~%!$&'()*+,;=:@/]*[a-z0-9])?` +
			`|www\.(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}` +
			`|(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+` + tldPattern + `\b)` +
			`(?:/\S*)?`)

	trackingParams = map[string]bool{
		"utm_source": true, "utm_medium": true, "utm_campaign": true, "utm_term": true, "utm_content": true,
		"fbclid": true, "gclid": true, "_ga": true, "ref": true, "source": true,
	}

	validTLDs = map[string]bool{
		"com": true, "net": true, "org": true, "edu": true, "gov": true, "mil": true, "biz": true,
		"info": true, "name": true, "museum": true, "coop": true, "aero": true, "ca": true, "co": true,
		"uk": true, "us": true, "eu": true, "de": true, "fr": true, "au": true, "jp": true, "ru": true,
		"ch": true, "it": true, "nl": true, "se": true, "no": true, "es": true, "pl": true,
	}
)

// Preprocess trims and lower-cases the URL, collapses duplicate slashes and forces https.
func Preprocess(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	u = duplicateSlashRegex.ReplaceAllString(u, "$1/")

	if strings.HasPrefix(u, "www.") || nakedURLRegex.MatchString(u) {
		return "https://" + u
	}

	parsed, err := url.Parse(u)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "https://" + strings.TrimPrefix(u, "//")
	}
	if parsed.Scheme == "http" {
		parsed.Scheme = "https"
		return parsed.String()
	}
	return u
}

// Normalize drops tracking query parameters and the fragment. Remaining
// parameters keep their original order.
func Normalize(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	if parsed.RawQuery != "" {
		var kept []string
		for _, pair := range strings.Split(parsed.RawQuery, "&") {
			if pair == "" {
				continue
			}
			key := pair
			if i := strings.IndexByte(pair, '='); i >= 0 {
				key = pair[:i]
			}
			if decoded, err := url.QueryUnescape(key); err == nil {
				key = decoded
			}
			if trackingParams[strings.ToLower(key)] {
				continue
			}
			kept = append(kept, pair)
		}
		parsed.RawQuery = strings.Join(kept, "&")
	}
	parsed.ForceQuery = false
	parsed.Fragment = ""
	parsed.RawFragment = ""

	return parsed.String()
}

// IsValid reports whether the URL has a host whose top-level domain is allowed.
func IsValid(raw string) bool {
	parsed, err := url.Parse(Preprocess(raw))
	if err != nil || parsed.Scheme == "" {
		return false
	}
	host := parsed.Hostname()
	if host == "" {
		return false
	}
	labels := strings.Split(host, ".")
	return len(labels) > 1 && validTLDs[labels[len(labels)-1]]
}

// Extract returns the distinct canonical URLs found in text, in first-seen
// order. Scheme-qualified, www. and naked-domain forms are recognized;
// domains that are part of an e-mail address are ignored.
func Extract(text string) []string {
	lower := strings.ToLower(text)

	var urls []string
	seen := make(map[string]bool)
	for _, loc := range candidateRegex.FindAllStringIndex(lower, -1) {
		if loc[0] > 0 && lower[loc[0]-1] == '@' {
			continue
		}
		match := strings.TrimRight(lower[loc[0]:loc[1]], `.,;:!?)"'`)

		normalized := Normalize(Preprocess(match))
		if seen[normalized] || !IsValid(normalized) {
			continue
		}
		seen[normalized] = true
		urls = append(urls, normalized)
	}
	return urls
}
