// Package wakfu reads the public Wakfu game data dumps.
package wakfu

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/meur/wakfudex/internal/models"
	"github.com/tidwall/gjson"
)

const (
	DefaultConfigURL = "https://wakfu.cdn.ankama.com/gamedata/config.json"
	DefaultBaseURL   = "https://wakfu.cdn.ankama.com/gamedata"
)

// Client fetches the versioned game data from the CDN
type Client struct {
	client    *http.Client
	ConfigURL string
	BaseURL   string
}

// NewClient creates a CDN client with the given request timeout
func NewClient(timeout time.Duration) *Client {
	return &Client{
		client:    &http.Client{Timeout: timeout},
		ConfigURL: DefaultConfigURL,
		BaseURL:   DefaultBaseURL,
	}
}

// FetchVersion returns the current game data version, e.g. "1.90.1.48"
func (c *Client) FetchVersion(ctx context.Context) (string, error) {
	body, err := c.get(ctx, c.ConfigURL)
	if err != nil {
		return "", err
	}
	version := gjson.GetBytes(body, "version").String()
	if version == "" {
		return "", fmt.Errorf("no version in %s", c.ConfigURL)
	}
	return version, nil
}

// FetchItems downloads items.json for version
func (c *Client) FetchItems(ctx context.Context, version string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/items.json", strings.TrimRight(c.BaseURL, "/"), version)
	return c.get(ctx, url)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// ParseItems extracts reference items from an items.json document.
// It accepts the CDN shape ({"definition":{"item":{"id"}}, "title":{"en","fr"}})
// and a flat shape ({"id", "title"}). Entries without id or title are skipped.
func ParseItems(data []byte, locale string) ([]models.ReferenceItem, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("items: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("items: expected a JSON array")
	}
	if locale == "" {
		locale = "en"
	}

	var items []models.ReferenceItem
	root.ForEach(func(_, v gjson.Result) bool {
		item := models.ReferenceItem{}
		if def := v.Get("definition.item"); def.Exists() {
			item.ID = int(def.Get("id").Int())
			item.Icon = def.Get("graphicParameters.gfxId").String()
			item.Category = def.Get("baseParameters.itemTypeId").String()
		} else {
			item.ID = int(v.Get("id").Int())
			item.Icon = v.Get("icon").String()
		}

		title := v.Get("title")
		if title.Type == gjson.String {
			item.Title = strings.TrimSpace(title.String())
		} else {
			item.Title = strings.TrimSpace(title.Get(locale).String())
			item.TitleFr = strings.TrimSpace(title.Get("fr").String())
		}

		if item.ID == 0 || item.Title == "" {
			return true
		}
		items = append(items, item)
		return true
	})
	return items, nil
}
