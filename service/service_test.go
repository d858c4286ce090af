package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/aluiziolira/go-book-analytics/config"
	"github.com/aluiziolira/go-book-analytics/dataset"
	"github.com/aluiziolira/go-book-analytics/models"
	"github.com/aluiziolira/go-book-analytics/pipeline"
)

func listingHTML(titles ...string) string {
	page := `<html><body><section class="products">`
	for i, title := range titles {
		page += fmt.Sprintf(`<article class="product_pod">
			<h3><a href="book-%d/index.html" title="%s">%s</a></h3>
			<p class="price_color">Â£20.00</p>
			<p class="star-rating Three"></p>
		</article>`, i+1, title, title)
	}
	return page + `</section></body></html>`
}

func detailHTML(category string) string {
	return fmt.Sprintf(`<html><body>
		<ul class="breadcrumb"><li>Home</li><li>Books</li><li>%s</li></ul>
		<div id="product_description"><h2>Product Description</h2></div>
		<p>A book worth reading.</p>
		<table class="table table-striped">
			<tr><th>Availability</th><td>In stock (3 available)</td></tr>
		</table>
	</body></html>`, category)
}

// catalogServer serves a one-page catalog; the listing handler is swappable
// so tests can change the content between crawls.
func catalogServer(t *testing.T, listing func() string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/catalogue/page-1.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, listing())
	})
	mux.HandleFunc("/catalogue/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, detailHTML("Travel"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func serviceConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BaseURL = baseURL + "/catalogue/"
	cfg.Delay = 0
	cfg.OutputFile = filepath.Join(t.TempDir(), "books.csv")
	cfg.SQLiteFile = filepath.Join(t.TempDir(), "books.sqlite")
	return cfg
}

func TestServiceScrapesAndCaches(t *testing.T) {
	server := catalogServer(t, func() string { return listingHTML("Book A", "Book B") })
	cfg := serviceConfig(t, server.URL)

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ds, err := svc.Dataset(context.Background())
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("dataset has %d records, want 2", ds.Len())
	}
	if ds.Records[0].Title != "Book A" || ds.Records[0].Category != "Travel" {
		t.Errorf("first record = %+v", ds.Records[0])
	}

	if !dataset.NewCSVStore(cfg.OutputFile).Exists() {
		t.Error("crawl should persist the csv dataset")
	}

	// Second read must come from the cache, not the network.
	server.Close()
	again, err := svc.Dataset(context.Background())
	if err != nil {
		t.Fatalf("cached dataset: %v", err)
	}
	if again != ds {
		t.Error("second Dataset() call should return the cached dataset")
	}
}

func TestServiceLoadsPersistedDataset(t *testing.T) {
	// Port 1 is never listening; any crawl attempt would fail.
	cfg := serviceConfig(t, "http://127.0.0.1:1")

	persisted := dataset.New([]*models.Record{{
		Title:              "Persisted Book",
		Description:        "Saved earlier",
		Category:           "Mystery",
		Price:              9.99,
		Rating:             "Four",
		AvailabilityStatus: "In stock",
		AvailabilityCount:  2,
		DescriptionLength:  2,
	}})
	if err := dataset.NewCSVStore(cfg.OutputFile).Save(persisted); err != nil {
		t.Fatalf("save persisted dataset: %v", err)
	}

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ds, err := svc.Dataset(context.Background())
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	if ds.Len() != 1 || ds.Records[0].Title != "Persisted Book" {
		t.Errorf("dataset = %+v, want the persisted record", ds.Records)
	}
}

func TestServiceEmptyCrawlIsErrNoData(t *testing.T) {
	server := catalogServer(t, func() string { return listingHTML() })
	cfg := serviceConfig(t, server.URL)

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Dataset(context.Background()); !errors.Is(err, ErrNoData) {
		t.Errorf("Dataset() error = %v, want ErrNoData", err)
	}
}

func TestServiceAllFilteredIsErrNoData(t *testing.T) {
	server := catalogServer(t, func() string { return listingHTML("Filtered Out") })
	cfg := serviceConfig(t, server.URL)
	cfg.TargetCategories = []string{"Poetry"} // nothing the server serves

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Dataset(context.Background()); !errors.Is(err, ErrNoData) {
		t.Errorf("Dataset() error = %v, want ErrNoData", err)
	}
}

func TestServiceRefreshRecrawls(t *testing.T) {
	titles := []string{"Old Edition"}
	server := catalogServer(t, func() string { return listingHTML(titles...) })
	cfg := serviceConfig(t, server.URL)

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	first, err := svc.Dataset(context.Background())
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	if first.Records[0].Title != "Old Edition" {
		t.Fatalf("first crawl = %q", first.Records[0].Title)
	}

	titles = []string{"New Edition"}
	refreshed, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.Records[0].Title != "New Edition" {
		t.Errorf("refreshed crawl = %q, want New Edition", refreshed.Records[0].Title)
	}

	// The refreshed dataset replaces the cached one.
	cached, err := svc.Dataset(context.Background())
	if err != nil {
		t.Fatalf("dataset after refresh: %v", err)
	}
	if cached != refreshed {
		t.Error("Dataset() after Refresh() should return the new dataset")
	}
}

func TestNewWriter(t *testing.T) {
	tests := []struct {
		format  string
		want    interface{}
		wantErr bool
	}{
		{format: "csv", want: (*pipeline.CSVWriter)(nil)},
		{format: "json", want: (*pipeline.JSONWriter)(nil)},
		{format: "sqlite", want: (*pipeline.SQLiteWriter)(nil)},
		{format: "dual", want: (*pipeline.MultiWriter)(nil)},
		{format: "parquet", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.OutputFile = filepath.Join(t.TempDir(), "out.csv")
			cfg.SQLiteFile = filepath.Join(t.TempDir(), "out.sqlite")
			cfg.OutputFormat = tt.format

			w, err := NewWriter(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWriter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer w.Close()

			switch tt.want.(type) {
			case *pipeline.CSVWriter:
				if _, ok := w.(*pipeline.CSVWriter); !ok {
					t.Errorf("NewWriter() = %T, want *pipeline.CSVWriter", w)
				}
			case *pipeline.JSONWriter:
				if _, ok := w.(*pipeline.JSONWriter); !ok {
					t.Errorf("NewWriter() = %T, want *pipeline.JSONWriter", w)
				}
			case *pipeline.SQLiteWriter:
				if _, ok := w.(*pipeline.SQLiteWriter); !ok {
					t.Errorf("NewWriter() = %T, want *pipeline.SQLiteWriter", w)
				}
			case *pipeline.MultiWriter:
				if _, ok := w.(*pipeline.MultiWriter); !ok {
					t.Errorf("NewWriter() = %T, want *pipeline.MultiWriter", w)
				}
			}
		})
	}
}
