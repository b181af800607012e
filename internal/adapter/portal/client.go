// Package portal fetches per-aerodrome SNOWTAM pages.
package portal

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/couchcryptid/snowtam-watch/internal/config"
	"github.com/couchcryptid/snowtam-watch/internal/domain"
)

// Getter retrieves a document as text.
type Getter interface {
	Get(ctx context.Context, url string) (string, error)
}

// Client fetches SNOWTAM pages from the portal.
type Client struct {
	getter      Getter
	urlTemplate string
}

// NewClient creates a portal client. urlTemplate must contain the "{icao}"
// placeholder.
func NewClient(getter Getter, urlTemplate string) *Client {
	return &Client{getter: getter, urlTemplate: urlTemplate}
}

// PageURL returns the page address for one site.
func (c *Client) PageURL(icao string) string {
	return strings.ReplaceAll(c.urlTemplate, config.ICAOPlaceholder, url.QueryEscape(icao))
}

// Source is the provenance attached to records scraped from the site's page.
func (c *Client) Source(icao string) domain.Source {
	return domain.Source{Name: domain.PortalSourceName, URL: c.PageURL(icao)}
}

// FetchPage returns the raw page document for one site.
func (c *Client) FetchPage(ctx context.Context, icao string) (string, error) {
	body, err := c.getter.Get(ctx, c.PageURL(icao))
	if err != nil {
		return "", fmt.Errorf("fetch snowtam page %s: %w", icao, err)
	}
	return body, nil
}
