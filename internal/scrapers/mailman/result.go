package mailman

import (
	"strings"

	"mailman-admin/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// hasFailureMarker reports whether a result entry carries a warning.
// mailman appends the reason an entry failed after the marker, ex.
// "b@example.org -- Bereits Mitglied". An address that itself contains the
// marker is misreported as failed.
func hasFailureMarker(entry string, marker string) bool {
	if marker == "" {
		return false
	}
	return strings.Contains(entry, marker)
}

// confirmsChange reports whether a change-of-address heading mentions both
// addresses. The heading is localized free text, so a heading that happens to
// contain both addresses in a failure message is misreported as success.
func confirmsChange(heading, from, to string) bool {
	if from == "" || to == "" {
		return false
	}
	return strings.Contains(heading, from) && strings.Contains(heading, to)
}

// parseResultList returns the entries an add/remove result page reports as
// successful, in page order. Pages without the result heading had no
// successful entry.
func parseResultList(doc *goquery.Document, layout Layout) []string {
	result := []string{}

	if doc.Find(layout.ResultHeading).Length() == 0 {
		return result
	}

	doc.Find(layout.ResultList).First().
		Find(layout.ResultItem).
		Each(func(_ int, item *goquery.Selection) {
			entry := htmlutil.CleanText(item.Text())
			if entry == "" || hasFailureMarker(entry, layout.FailureMarker) {
				return
			}
			result = append(result, entry)
		})

	return result
}

// confirmationHeading returns the text of the heading of a change-of-address
// result page, false if there is none.
func confirmationHeading(doc *goquery.Document, layout Layout) (string, bool) {
	heading := doc.Find(layout.ConfirmationHeading).First()
	if heading.Length() == 0 {
		return "", false
	}
	return htmlutil.CleanText(heading.Text()), true
}
