package googlebooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchReturnsBestMatch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		if r.URL.Query().Get("maxResults") != "1" {
			t.Errorf("maxResults = %q, want 1", r.URL.Query().Get("maxResults"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"totalItems": 2,
			"items": [{
				"volumeInfo": {
					"title": "The Long Way",
					"authors": ["Becky Chambers"],
					"publisher": "Hodder",
					"publishedDate": "2015"
				}
			}]
		}`))
	}))
	defer server.Close()

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	match, err := client.Search(context.Background(), "The Long Way", "Becky Chambers", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.Title != "The Long Way" {
		t.Errorf("title = %q", match.Title)
	}
	if len(match.Authors) != 1 || match.Authors[0] != "Becky Chambers" {
		t.Errorf("authors = %v", match.Authors)
	}
	if match.Publisher != "Hodder" {
		t.Errorf("publisher = %q", match.Publisher)
	}
	if gotQuery != "intitle:The Long Way inauthor:Becky Chambers" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestSearchISBNTakesPrecedence(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"totalItems": 0}`))
	}))
	defer server.Close()

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	match, err := client.Search(context.Background(), "Dune", "", "9780441172719")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if match != nil {
		t.Fatalf("expected no match, got %+v", match)
	}
	if gotQuery != "isbn:9780441172719 intitle:Dune" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestSearchRequiresTerms(t *testing.T) {
	client, err := New("https://example.com")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Search(context.Background(), "", "  ", ""); err == nil {
		t.Fatal("expected error for empty search terms")
	}
}

func TestSearchSendsAPIKey(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		w.Write([]byte(`{"totalItems": 0}`))
	}))
	defer server.Close()

	client, err := New(server.URL, WithAPIKey("secret"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Search(context.Background(), "Dune", "", ""); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotKey != "secret" {
		t.Errorf("key = %q", gotKey)
	}
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend unavailable", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Search(context.Background(), "Dune", "", ""); err == nil {
		t.Fatal("expected error for server failure")
	}
}
