package parser

import (
	"testing"

	"github.com/aluiziolira/go-book-analytics/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantErr  bool
	}{
		{name: "mojibaked pound prefix", input: "Â£51.77", expected: 51.77},
		{name: "clean pound prefix", input: "£10.50", expected: 10.50},
		{name: "with whitespace", input: "  Â£22.65  ", expected: 22.65},
		{name: "no symbol", input: "25.99", expected: 25.99},
		{name: "zero", input: "Â£0.00", expected: 0},
		{name: "not a number", input: "free", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "negative", input: "-5.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrice(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got != tt.expected {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			if got < 0 {
				t.Errorf("ParsePrice(%q) = %v, prices must be non-negative", tt.input, got)
			}
		})
	}
}

func TestAvailabilityStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "in stock with count", input: "In stock (19 available)", expected: StatusInStock},
		{name: "plain in stock", input: "In stock", expected: StatusInStock},
		{name: "out of stock", input: "Out of stock", expected: StatusOutOfStock},
		{name: "case sensitive", input: "in stock", expected: StatusOutOfStock},
		{name: "empty", input: "", expected: StatusOutOfStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AvailabilityStatus(tt.input); got != tt.expected {
				t.Errorf("AvailabilityStatus(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAvailabilityCount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "count in parens", input: "In stock (19 available)", expected: 19},
		{name: "first digit run wins", input: "3 of 22 available", expected: 3},
		{name: "no digits", input: "In stock", expected: 0},
		{name: "empty", input: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AvailabilityCount(tt.input)
			if got != tt.expected {
				t.Errorf("AvailabilityCount(%q) = %d, want %d", tt.input, got, tt.expected)
			}
			if got < 0 {
				t.Errorf("AvailabilityCount(%q) = %d, counts must be non-negative", tt.input, got)
			}
		})
	}
}

func TestDescriptionLength(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "simple sentence", input: "A gripping tale of adventure", expected: 5},
		{name: "extra whitespace", input: "  two   words  ", expected: 2},
		{name: "sentinel counts as words", input: "No description available", expected: 3},
		{name: "empty", input: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DescriptionLength(tt.input); got != tt.expected {
				t.Errorf("DescriptionLength(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidateRaw(t *testing.T) {
	valid := func() *models.RawBook {
		return &models.RawBook{
			Title:  "Test Book",
			Price:  "Â£10.00",
			Rating: "Five",
			Link:   "http://example.test/book",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*models.RawBook)
		wantErr bool
	}{
		{name: "valid", mutate: func(*models.RawBook) {}},
		{name: "missing title", mutate: func(b *models.RawBook) { b.Title = "" }, wantErr: true},
		{name: "missing price", mutate: func(b *models.RawBook) { b.Price = " " }, wantErr: true},
		{name: "missing rating", mutate: func(b *models.RawBook) { b.Rating = "" }, wantErr: true},
		{name: "missing link", mutate: func(b *models.RawBook) { b.Link = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid()
			tt.mutate(b)
			err := ValidateRaw(b)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRaw() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := ValidateRaw(nil); err == nil {
		t.Error("ValidateRaw(nil) should fail")
	}
}

func TestNormalize(t *testing.T) {
	raw := &models.RawBook{
		Title:       "It's Only the Himalayas",
		Price:       "Â£45.17",
		Rating:      "Two",
		Link:        "http://example.test/catalogue/its-only-the-himalayas/index.html",
		Category:    "Travel",
		Description: "Wherever you go, whatever you do, just don't do anything stupid",
		Attrs: map[string]string{
			"UPC":          "a22124811bfa8350",
			"Availability": "In stock (19 available)",
			"Tax":          "Â£0.00",
		},
	}

	record, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if record.Price != 45.17 {
		t.Errorf("Price = %v, want 45.17", record.Price)
	}
	if record.AvailabilityStatus != StatusInStock {
		t.Errorf("AvailabilityStatus = %q, want %q", record.AvailabilityStatus, StatusInStock)
	}
	if record.AvailabilityCount != 19 {
		t.Errorf("AvailabilityCount = %d, want 19", record.AvailabilityCount)
	}
	if record.DescriptionLength != 11 {
		t.Errorf("DescriptionLength = %d, want 11", record.DescriptionLength)
	}
	if record.Category != "Travel" || record.Rating != "Two" {
		t.Errorf("Category/Rating = %q/%q, want Travel/Two", record.Category, record.Rating)
	}
}

func TestNormalizeMissingAvailability(t *testing.T) {
	raw := &models.RawBook{
		Title:  "No Attrs",
		Price:  "Â£5.00",
		Rating: "One",
		Link:   "http://example.test/book",
	}

	record, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if record.AvailabilityStatus != StatusOutOfStock {
		t.Errorf("AvailabilityStatus = %q, want %q", record.AvailabilityStatus, StatusOutOfStock)
	}
	if record.AvailabilityCount != 0 {
		t.Errorf("AvailabilityCount = %d, want 0", record.AvailabilityCount)
	}
	if record.DescriptionLength != 0 {
		t.Errorf("DescriptionLength = %d, want 0", record.DescriptionLength)
	}
}

func TestNormalizeBadPrice(t *testing.T) {
	raw := &models.RawBook{
		Title:  "Bad Price",
		Price:  "Â£not-a-price",
		Rating: "Three",
		Link:   "http://example.test/book",
	}

	if _, err := Normalize(raw); err == nil {
		t.Fatal("Normalize() should fail on unparseable price")
	}
}
