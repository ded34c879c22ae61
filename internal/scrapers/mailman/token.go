package mailman

import (
	"context"
	"fmt"

	"mailman-admin/internal/components/assert"

	"github.com/PuerkitoBio/goquery"
)

func tokenFromDocument(doc *goquery.Document, layout Layout) string {
	return doc.Find(layout.TokenForm).First().
		Find(layout.TokenInput).First().
		AttrOr("value", "")
}

// csrfToken views the members page and returns the token of its form.
// mailman may rotate the token on every page view, so it must be fetched
// right before each submission and never reused. `page` names the form the
// token is for.
func (c *Client) csrfToken(ctx context.Context, page string) (string, error) {
	assert.NotEmptyStr(page)

	ctx, span := tracer.Start(ctx, "client:csrfToken")
	defer span.End()

	doc, _, err := c.fetch(ctx, endpoint_members)
	if err != nil {
		return "", fmt.Errorf("mailman: csrf token for %s: %w", page, err)
	}

	token := tokenFromDocument(doc, c.layout)
	if token == "" {
		c.tel.ReportWarning(
			report_client_csrf_token,
			fmt.Errorf("could not find csrf token"),
			page,
		)
	}
	return token, nil
}
