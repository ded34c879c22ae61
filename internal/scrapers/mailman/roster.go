package mailman

import (
	"context"
	"fmt"
	"net/url"

	"mailman-admin/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// rosterRows returns every <tr> of the roster table, false if the page has
// no roster table.
func rosterRows(doc *goquery.Document, layout Layout) (*goquery.Selection, bool) {
	table := doc.Find("table").Eq(layout.RosterTable)
	if table.Length() == 0 {
		return nil, false
	}
	return table.Find("tr"), true
}

// letterLinks returns the per-letter pages of a roster, none if the roster
// fits on a single page.
func letterLinks(ctx context.Context, base *url.URL, rows *goquery.Selection, layout Layout) []htmlutil.Anchor {
	return htmlutil.GetAnchors(ctx, base, rows.Eq(layout.LetterRow).Find("a"))
}

// membersFromRows extracts the member address of every row starting at
// `firstRow`, one entry per row. A row without an address cell yields an
// empty address so the result stays aligned with the roster rows.
func membersFromRows(rows *goquery.Selection, firstRow int, layout Layout) []string {
	members := []string{}
	rows.Each(func(i int, row *goquery.Selection) {
		if i < firstRow {
			return
		}
		cell := row.Find("td").Eq(layout.AddressCell)
		members = append(members, htmlutil.CleanText(cell.Text()))
	})
	return members
}

// ListMembers returns the address of every member of the list.
//
// Large rosters are split by mailman into one page per first letter, those
// pages are fetched one after another and concatenated in the order their
// links appear.
func (c *Client) ListMembers(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:ListMembers")
	defer span.End()

	doc, location, err := c.fetch(ctx, endpoint_members)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch roster")
		return nil, fmt.Errorf("mailman: list members: %w", err)
	}

	rows, ok := rosterRows(doc, c.layout)
	if !ok {
		c.tel.ReportWarning(
			report_client_list_members,
			fmt.Errorf("could not find roster table #%d", c.layout.RosterTable),
		)
		return []string{}, nil
	}

	links := letterLinks(ctx, location, rows, c.layout)
	span.SetAttributes(attribute.Int("letter_pages", len(links)))

	if len(links) == 0 {
		members := membersFromRows(rows, c.layout.SinglePageFirstRow, c.layout)
		c.tel.ReportCount(report_client_list_members, int64(len(members)))
		return members, nil
	}

	members := []string{}
	for _, link := range links {
		endpoint := link.Url.String()

		doc, _, err := c.fetch(ctx, endpoint)
		if err != nil {
			span.SetStatus(codes.Error, "failed to fetch letter page")
			return nil, fmt.Errorf("mailman: list members: letter %q: %w", link.Name, err)
		}

		rows, ok := rosterRows(doc, c.layout)
		if !ok {
			c.tel.ReportWarning(
				report_client_list_members,
				fmt.Errorf("could not find roster table #%d", c.layout.RosterTable),
				endpoint,
			)
			continue
		}
		members = append(members, membersFromRows(rows, c.layout.LetterPageFirstRow, c.layout)...)
	}

	c.tel.ReportCount(report_client_list_members, int64(len(members)))
	return members, nil
}
