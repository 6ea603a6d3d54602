// Package link pulls a single download link out of page markup with a regular
// expression. It does not parse HTML; a page whose markup drifts away from the
// pattern simply stops matching.
package link

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// DefaultPattern matches an anchor carrying a download attribute and captures
// its href.
const DefaultPattern = `<a download href="([A-Za-z0-9./]*)">`

var (
	ErrLinkNotFound   = errors.New("document link not found")
	ErrInvalidPattern = errors.New("invalid link pattern")
)

// Resolve applies pattern once to page and returns the first capture group of
// the leftmost match.
func Resolve(page, pattern string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", errors.WithMessagef(ErrInvalidPattern, "%v", err)
	}
	if re.NumSubexp() < 1 {
		return "", errors.WithMessagef(ErrInvalidPattern, "pattern %q has no capture group", pattern)
	}

	m := re.FindStringSubmatch(page)
	if m == nil {
		return "", errors.WithMessagef(ErrLinkNotFound, "pattern %q", pattern)
	}
	return m[1], nil
}

// Absolute turns a resolved href into a document reference. Relative paths are
// appended to domain verbatim; hrefs that already carry an http(s) scheme are
// returned unchanged.
func Absolute(domain, href string) string {
	if u, err := url.Parse(href); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return href
	}
	return strings.TrimSpace(domain) + href
}
