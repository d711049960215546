// Package kenpom extracts structured team and player statistics from
// kenpom.com pages. Pages are fetched through an authenticated Fetcher and
// parsed positionally: table order within a page is treated as a schema
// contract, and layout drift surfaces as *StructureError.
package kenpom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const baseURL = "https://kenpom.com"

var userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119 Safari/537.36 (+cbb-stats-research)"

// Fetcher retrieves a page as raw HTML. Implementations own authentication;
// the extraction core treats them as opaque.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Client is an authenticated kenpom.com session.
type Client struct {
	http *http.Client
}

// Login establishes a session with user credentials. The login handler
// responds with an error page even on success; what matters is that the
// session cookie sticks, so success is checked by looking for the Logout
// link on the home page afterwards.
func Login(ctx context.Context, email, password string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{http: &http.Client{Timeout: 30 * time.Second, Jar: jar}}

	if _, err := c.Fetch(ctx, baseURL+"/index.php"); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	form := url.Values{
		"email":    {email},
		"password": {password},
		"submit":   {"Login!"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/handlers/login_handler.php", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	home, err := c.Fetch(ctx, baseURL+"/")
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !strings.Contains(home, "Logout") {
		return nil, errors.New("login failed: check credentials")
	}
	return c, nil
}

// Fetch performs an authenticated GET. Non-200 responses become *NetworkError.
func (c *Client) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &NetworkError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &NetworkError{URL: pageURL, StatusCode: resp.StatusCode}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{URL: pageURL, Err: err}
	}
	return string(b), nil
}

func fetchDoc(ctx context.Context, f Fetcher, pageURL string) (*goquery.Document, error) {
	html, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// teamPageURL builds a team-scoped URL. The site expects '+' for spaces and
// an escaped ampersand; everything else passes through verbatim.
func teamPageURL(page, team string, season int) string {
	t := strings.ReplaceAll(team, " ", "+")
	t = strings.ReplaceAll(t, "&", "%26")
	return fmt.Sprintf("%s/%s?team=%s&y=%d", baseURL, page, t, season)
}
