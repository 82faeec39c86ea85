package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// CrtshHTML scrapes the crt.sh search page. It is only run as a fallback
// for the JSON endpoint.
type CrtshHTML struct {
	client  Getter
	baseURL string
	logger  *zap.Logger
}

func NewCrtshHTML(client Getter, baseURL string, logger *zap.Logger) *CrtshHTML {
	return &CrtshHTML{client: client, baseURL: baseURL, logger: loggerOrNop(logger)}
}

func (c *CrtshHTML) Name() string { return NameCrtshHTML }

func (c *CrtshHTML) Fetch(ctx context.Context, domain string) Result {
	hosts, err := c.fetch(ctx, domain)
	return finish(c.logger, NameCrtshHTML, "crt.sh HTML fallback", hosts, err)
}

func (c *CrtshHTML) fetch(ctx context.Context, domain string) (Set, error) {
	query := url.Values{"q": {"%." + domain}}
	body, err := c.client.Get(ctx, c.baseURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse crt.sh page: %w", err)
	}

	hosts := Set{}
	doc.Find("td").Each(func(_ int, cell *goquery.Selection) {
		text := cell.Text()
		if !strings.Contains(text, domain) {
			return
		}
		// one cell may list several names
		for _, token := range strings.Fields(text) {
			hosts.Add(token)
		}
	})
	return hosts, nil
}
