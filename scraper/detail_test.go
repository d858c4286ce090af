package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFromString(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestParseDetailPageFull(t *testing.T) {
	html := `<html><body>
		<ul class="breadcrumb">
			<li><a href="/">Home</a></li>
			<li><a href="/books">Books</a></li>
			<li><a href="/books/travel">Travel</a></li>
			<li class="active">It's Only the Himalayas</li>
		</ul>
		<div id="product_description"><h2>Product Description</h2></div>
		<p>A thrilling journey across the high passes.</p>
		<table class="table table-striped">
			<tr><th>UPC</th><td>a22124811bfa8350</td></tr>
			<tr><th>Product Type</th><td>Books</td></tr>
			<tr><th>Price (excl. tax)</th><td>Â£45.17</td></tr>
			<tr><th>Tax</th><td>Â£0.00</td></tr>
			<tr><th>Availability</th><td>In stock (19 available)</td></tr>
			<tr><th>Number of reviews</th><td>0</td></tr>
		</table>
	</body></html>`

	page, err := ParseDetailPage(docFromString(t, html))
	if err != nil {
		t.Fatalf("ParseDetailPage() error = %v", err)
	}

	if page.Description != "A thrilling journey across the high passes." {
		t.Errorf("Description = %q", page.Description)
	}
	if page.Category != "Travel" {
		t.Errorf("Category = %q, want Travel", page.Category)
	}
	if len(page.Attrs) != 6 {
		t.Errorf("Attrs has %d entries, want 6: %v", len(page.Attrs), page.Attrs)
	}
	if got := page.Attrs["Availability"]; got != "In stock (19 available)" {
		t.Errorf("Attrs[Availability] = %q", got)
	}
	if got := page.Attrs["UPC"]; got != "a22124811bfa8350" {
		t.Errorf("Attrs[UPC] = %q", got)
	}
}

func TestParseDetailPageMissingDescription(t *testing.T) {
	html := `<html><body>
		<ul class="breadcrumb">
			<li>Home</li><li>Books</li><li>Mystery</li>
		</ul>
		<table class="table table-striped">
			<tr><th>Availability</th><td>In stock</td></tr>
		</table>
	</body></html>`

	page, err := ParseDetailPage(docFromString(t, html))
	if err != nil {
		t.Fatalf("ParseDetailPage() error = %v", err)
	}
	if page.Description != NoDescription {
		t.Errorf("Description = %q, want sentinel %q", page.Description, NoDescription)
	}
	if page.Category != "Mystery" {
		t.Errorf("Category = %q, want Mystery", page.Category)
	}
}

func TestParseDetailPageShortBreadcrumb(t *testing.T) {
	html := `<html><body>
		<ul class="breadcrumb"><li>Home</li><li>Books</li></ul>
	</body></html>`

	page, err := ParseDetailPage(docFromString(t, html))
	if err != nil {
		t.Fatalf("ParseDetailPage() error = %v", err)
	}
	if page.Category != UnknownCategory {
		t.Errorf("Category = %q, want %q", page.Category, UnknownCategory)
	}
}

func TestParseDetailPageNoBreadcrumb(t *testing.T) {
	html := `<html><body><p>bare page</p></body></html>`

	page, err := ParseDetailPage(docFromString(t, html))
	if err != nil {
		t.Fatalf("ParseDetailPage() error = %v", err)
	}
	if page.Category != UnknownCategory {
		t.Errorf("Category = %q, want %q", page.Category, UnknownCategory)
	}
	if page.Description != NoDescription {
		t.Errorf("Description = %q, want sentinel", page.Description)
	}
	if len(page.Attrs) != 0 {
		t.Errorf("Attrs = %v, want empty", page.Attrs)
	}
}

func TestParseDetailPageDynamicKeys(t *testing.T) {
	// The key set must not be hardcoded: whatever labels the table renders
	// become map keys.
	html := `<html><body>
		<table class="table table-striped">
			<tr><th>Custom Label</th><td>custom value</td></tr>
			<tr><th>Another</th><td>42</td></tr>
		</table>
	</body></html>`

	page, err := ParseDetailPage(docFromString(t, html))
	if err != nil {
		t.Fatalf("ParseDetailPage() error = %v", err)
	}
	if page.Attrs["Custom Label"] != "custom value" || page.Attrs["Another"] != "42" {
		t.Errorf("Attrs = %v", page.Attrs)
	}
}

func TestParseDetailPageNilDocument(t *testing.T) {
	if _, err := ParseDetailPage(nil); err == nil {
		t.Fatal("ParseDetailPage(nil) should fail")
	}
}
