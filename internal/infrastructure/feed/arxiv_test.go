package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"TopicCurator/internal/scanner"
)

func TestBuildPageURL(t *testing.T) {
	t.Parallel()

	base := "https://export.arxiv.org/list/cs.AI/pastweek"
	u, err := buildPageURL(base, 200, 100)
	if err != nil {
		t.Fatalf("buildPageURL returned error: %v", err)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}

	if parsed.Scheme != "https" || parsed.Host != "export.arxiv.org" {
		t.Fatalf("unexpected host: %s", parsed.Host)
	}

	q := parsed.Query()
	if q.Get("skip") != "200" {
		t.Fatalf("expected skip=200, got %s", q.Get("skip"))
	}
	if q.Get("show") != "100" {
		t.Fatalf("expected show=100, got %s", q.Get("show"))
	}
}

func TestParseEntry(t *testing.T) {
	t.Parallel()

	html := `
	<dl>
	  <dt>
	    <span class="list-identifier"><a href="/abs/1234.56789">arXiv:1234.56789</a></span>
	  </dt>
	  <dd>
	    <div class="list-date">Date: 8 Nov 2025</div>
	    <div class="list-title mathjax">Title: Sample Title</div>
	    <p class="mathjax">Abstract: Sample abstract text.</p>
	  </dd>
	</dl>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	dt := doc.Find("dt").First()
	dd := doc.Find("dd").First()

	item, err := parseEntry(dt, dd, "ai")
	if err != nil {
		t.Fatalf("parseEntry error: %v", err)
	}

	if item.Link != "https://arxiv.org/abs/1234.56789" {
		t.Fatalf("unexpected link: %s", item.Link)
	}
	if item.Title != "Sample Title" {
		t.Fatalf("unexpected title: %s", item.Title)
	}
	if item.Text != "Sample abstract text." {
		t.Fatalf("unexpected abstract: %s", item.Text)
	}
	if item.Vertical != "ai" {
		t.Fatalf("unexpected vertical: %s", item.Vertical)
	}

	wantDate := time.Date(2025, time.November, 8, 0, 0, 0, 0, time.UTC)
	if item.PublishedAt.Format("2006-01-02") != wantDate.Format("2006-01-02") {
		t.Fatalf("unexpected published date: %v", item.PublishedAt)
	}
}

func TestParseEntryWithoutLink(t *testing.T) {
	t.Parallel()

	html := `<dl><dt><span class="list-identifier">arXiv:1234.56789</span></dt><dd></dd></dl>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	_, err = parseEntry(doc.Find("dt").First(), doc.Find("dd").First(), "ai")
	if err == nil {
		t.Fatalf("expected error for entry without abstract link")
	}
}

func TestArxivScannerScan(t *testing.T) {
	t.Parallel()

	targetDay := time.Date(2025, time.November, 8, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<dl>
		  <dt>
		    <span class="list-identifier"><a href="/abs/2501.00001">arXiv:2501.00001</a></span>
		  </dt>
		  <dd>
		    <div class="list-date">Date: 8 Nov 2025</div>
		    <div class="list-title mathjax">Title: Fresh Article</div>
		    <p class="mathjax">Abstract: brand new.</p>
		  </dd>
		  <dt>
		    <span class="list-identifier"><a href="/abs/2501.00002">arXiv:2501.00002</a></span>
		  </dt>
		  <dd>
		    <div class="list-date">Date: 7 Nov 2025</div>
		    <div class="list-title mathjax">Title: Old Article</div>
		    <p class="mathjax">Abstract: older.</p>
		  </dd>
		</dl>`))
	}))
	defer server.Close()

	sc := NewArxivScanner(server.Client())
	sc.pageSize = 10

	req := scanner.Request{
		Day:      targetDay,
		SiteName: "arxiv-ai",
		Vertical: "ai",
		Categories: []scanner.Category{
			{Name: "cs.AI", URL: server.URL + "/list/cs.AI"},
		},
	}

	items, err := sc.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Link != "https://arxiv.org/abs/2501.00001" {
		t.Fatalf("unexpected link: %s", items[0].Link)
	}
	if items[0].Text != "brand new." {
		t.Fatalf("unexpected text: %s", items[0].Text)
	}
	if items[0].Vertical != "ai" {
		t.Fatalf("unexpected vertical: %s", items[0].Vertical)
	}
}
