package platform

import (
	"bufio"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Netscape cookies.txt layout
const (
	netscapeFields     = 7
	httpOnlyPrefix     = "#HttpOnly_"
	CookieSeparator    = "; "
	netscapeCommentTag = "#"
)

// ParseNetscapeCookies parses a Netscape cookies.txt export.
// Format: domain flag path secure expiration name value
func ParseNetscapeCookies(r io.Reader) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		httpOnly := false
		if strings.HasPrefix(line, httpOnlyPrefix) {
			line = strings.TrimPrefix(line, httpOnlyPrefix)
			httpOnly = true
		}
		if line == "" || strings.HasPrefix(line, netscapeCommentTag) {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < netscapeFields {
			continue
		}

		expiresUnix, _ := strconv.ParseInt(parts[4], 10, 64)
		cookie := &http.Cookie{
			Domain:   parts[0],
			Path:     parts[2],
			Secure:   strings.EqualFold(parts[3], "TRUE"),
			Name:     parts[5],
			Value:    parts[6],
			HttpOnly: httpOnly,
		}
		if expiresUnix > 0 {
			cookie.Expires = time.Unix(expiresUnix, 0)
		}
		cookies = append(cookies, cookie)
	}

	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read cookie file")
	}
	return cookies, nil
}

// LoadCookieFile reads a Netscape cookies.txt from disk
func LoadCookieFile(path string) ([]*http.Cookie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open cookie file", goerr.V("path", path))
	}
	defer f.Close()
	return ParseNetscapeCookies(f)
}

// CookieHeader joins cookies into a Cookie header value ("a=1; b=2"),
// skipping cookies that expired before now
func CookieHeader(cookies []*http.Cookie, now time.Time) string {
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, CookieSeparator)
}
