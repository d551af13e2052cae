package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCollyFetcher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("SID")
		if err != nil || c.Value != "abc" {
			http.Error(w, "no session", http.StatusForbidden)
			return
		}
		if r.Header.Get("Accept-Language") == "" || r.Header.Get("User-Agent") != "test-agent" {
			http.Error(w, "bad headers", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><li class=\"result\">ok</li></body></html>"))
	})
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewCollyFetcher(quietLogger())
	headers := StealthHeaders("test-agent")
	cookies := []*http.Cookie{{Name: "SID", Value: "abc"}}

	res, err := f.Fetch(context.Background(), FetchRequest{
		URL: srv.URL + "/page", Headers: headers, Cookies: cookies, WaitSelector: "li.result", Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Fetch page: %v", err)
	}
	if !res.Success || res.StatusCode != 200 || len(res.NetworkEvents) != 0 {
		t.Errorf("page result = %+v", res)
	}

	res, err = f.Fetch(context.Background(), FetchRequest{URL: srv.URL + "/api", Headers: headers, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Fetch api: %v", err)
	}
	if len(res.NetworkEvents) != 1 || string(res.NetworkEvents[0].Body) != `{"results":[]}` {
		t.Errorf("api events = %+v", res.NetworkEvents)
	}

	res, err = f.Fetch(context.Background(), FetchRequest{URL: srv.URL + "/missing", Headers: headers, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Fetch missing: %v", err)
	}
	if res.Success || res.StatusCode != 404 {
		t.Errorf("missing result = %+v", res)
	}
}

func TestCollyFetcherTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := NewCollyFetcher(quietLogger())
	if _, err := f.Fetch(context.Background(), FetchRequest{URL: url, Timeout: time.Second}); err == nil {
		t.Fatal("expected transport error for closed server")
	}
}
