package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Sentinels used when a detail page lacks the corresponding element.
const (
	NoDescription   = "No description available"
	UnknownCategory = "Unknown"
)

// DetailPage holds the fields extracted from one item's detail page.
type DetailPage struct {
	Description string
	Category    string
	Attrs       map[string]string
}

// ParseDetailPage extracts the description, the breadcrumb category, and the
// product information table from a parsed detail page. The table rows are
// captured generically: whatever label the page renders becomes the map key.
// Errors are returned to the caller, which owns the skip/log policy.
func ParseDetailPage(doc *goquery.Document) (*DetailPage, error) {
	if doc == nil {
		return nil, fmt.Errorf("detail page: nil document")
	}
	if doc.Find("body").Length() == 0 {
		return nil, fmt.Errorf("detail page: document has no body")
	}

	page := &DetailPage{
		Description: NoDescription,
		Category:    UnknownCategory,
		Attrs:       make(map[string]string),
	}

	// The description is the paragraph immediately after the marker div.
	marker := doc.Find("div#product_description")
	if marker.Length() > 0 {
		if text := strings.TrimSpace(marker.Next().Filter("p").Text()); text != "" {
			page.Description = text
		}
	}

	// Category is the third breadcrumb entry (Home > Books > <category>).
	crumbs := doc.Find("ul.breadcrumb li")
	if crumbs.Length() > 2 {
		page.Category = strings.TrimSpace(crumbs.Eq(2).Text())
	}

	doc.Find("table.table-striped tr").Each(func(_ int, row *goquery.Selection) {
		key := strings.TrimSpace(row.Find("th").Text())
		value := strings.TrimSpace(row.Find("td").Text())
		if key != "" {
			page.Attrs[key] = value
		}
	})

	return page, nil
}
