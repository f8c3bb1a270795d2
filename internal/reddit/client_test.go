// Package reddit tests document the expected behavior of the listing client.
//
// Test requirements (this file serves as documentation):
// - Client requests /r/{subreddit}/{category}.json restricted to the subreddit
// - Client forwards the page size and the after cursor
// - Client maps 404, 403, 429 and other statuses to the error taxonomy
// - Client reports malformed envelopes as invalid response shape
// - Client reports caller cancellation distinctly from other failures
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func listingJSON(after *string, ids ...string) map[string]interface{} {
	children := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		children = append(children, map[string]interface{}{
			"kind": "t3",
			"data": map[string]interface{}{
				"id":    id,
				"name":  "t3_" + id,
				"title": "Post " + id,
				"url":   "https://i.redd.it/" + id + ".jpg",
			},
		})
	}
	data := map[string]interface{}{"children": children, "after": nil}
	if after != nil {
		data["after"] = *after
	}
	return map[string]interface{}{"kind": "Listing", "data": data}
}

func strPtr(s string) *string { return &s }

func mustQuery(t *testing.T, sub, cat string) Query {
	t.Helper()
	q, err := NewQuery(sub, cat)
	if err != nil {
		t.Fatalf("NewQuery(%q, %q): %v", sub, cat, err)
	}
	return q
}

// TestClient_FetchPage_BuildsListingRequest documents the request contract:
// - Path is /r/{subreddit}/{category}.json
// - restrict_sr, include_over_18 and limit are always present
// - after is only sent when a cursor is given
func TestClient_FetchPage_BuildsListingRequest(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(listingJSON(nil, "a"))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithUserAgent("redditview-test/1.0"))
	_, err := client.FetchPage(context.Background(), mustQuery(t, "Pics", "top"), "t3_prev", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.URL.Path != "/r/pics/top.json" {
		t.Errorf("expected /r/pics/top.json, got %q", captured.URL.Path)
	}
	params := captured.URL.Query()
	expects := map[string]string{
		"restrict_sr":     "true",
		"include_over_18": "on",
		"limit":           "25",
		"after":           "t3_prev",
	}
	for key, want := range expects {
		if got := params.Get(key); got != want {
			t.Errorf("expected %s=%q, got %q", key, want, got)
		}
	}
	if ua := captured.Header.Get("User-Agent"); ua != "redditview-test/1.0" {
		t.Errorf("expected custom User-Agent, got %q", ua)
	}
}

func TestClient_FetchPage_OmitsCursorOnFirstPage(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(listingJSON(nil))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	if _, err := client.FetchPage(context.Background(), mustQuery(t, "pics", "hot"), "", 25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(rawQuery, "after=") {
		t.Errorf("first page should not send a cursor, got query %q", rawQuery)
	}
}

func TestClient_FetchPage_ReturnsPostsInUpstreamOrderWithCursor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(listingJSON(strPtr("t3_c"), "a", "b", "c"))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	page, err := client.FetchPage(context.Background(), mustQuery(t, "pics", "hot"), "", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.RawCount() != 3 {
		t.Fatalf("expected 3 raw posts, got %d", page.RawCount())
	}
	for i, want := range []string{"a", "b", "c"} {
		if page.Posts[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, page.Posts[i].ID)
		}
	}
	if page.After != "t3_c" {
		t.Errorf("expected cursor t3_c, got %q", page.After)
	}
	if page.Requested != 3 {
		t.Errorf("expected requested page size 3, got %d", page.Requested)
	}
}

func TestClient_FetchPage_NullCursorMeansNoMorePages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(listingJSON(nil, "a"))
	}))
	defer server.Close()

	page, err := NewClient(WithBaseURL(server.URL)).FetchPage(context.Background(), mustQuery(t, "pics", "hot"), "", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.After != "" {
		t.Errorf("null after should yield empty cursor, got %q", page.After)
	}
}

func TestClient_FetchPage_ClampsPageSize(t *testing.T) {
	testCases := []struct {
		name  string
		limit int
		want  string
	}{
		{"zero uses default", 0, "25"},
		{"negative uses default", -4, "25"},
		{"above maximum", 500, "100"},
		{"within range", 10, "10"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.Query().Get("limit")
				_ = json.NewEncoder(w).Encode(listingJSON(nil))
			}))
			defer server.Close()

			_, err := NewClient(WithBaseURL(server.URL)).FetchPage(context.Background(), mustQuery(t, "pics", "hot"), "", tc.limit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected limit=%s, got %s", tc.want, got)
			}
		})
	}
}

func TestClient_FetchPage_MapsStatusCodesToKinds(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		kind     ErrorKind
		contains string
	}{
		{"not found", http.StatusNotFound, `{"message":"Not Found","error":404}`, KindSubredditNotFound, `subreddit "doesnotexist123xyz" not found`},
		{"banned", http.StatusNotFound, `{"reason":"banned","message":"Not Found","error":404}`, KindSubredditNotFound, "banned"},
		{"forbidden", http.StatusForbidden, `{"reason":"private","message":"Forbidden","error":403}`, KindAccessForbidden, "forbidden"},
		{"server error with message", http.StatusInternalServerError, `{"message":"Internal Server Error"}`, KindUpstream, "Internal Server Error"},
		{"server error without body", http.StatusBadGateway, ``, KindUpstream, "502"},
		{"rate limited", http.StatusTooManyRequests, `{"message":"Too Many Requests"}`, KindUpstream, "rate limit"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			_, err := NewClient(WithBaseURL(server.URL)).FetchPage(context.Background(), mustQuery(t, "doesnotexist123xyz", "hot"), "", 25)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if KindOf(err) != tc.kind {
				t.Errorf("expected kind %s, got %s (%v)", tc.kind, KindOf(err), err)
			}
			if !strings.Contains(err.Error(), tc.contains) {
				t.Errorf("expected error to contain %q, got %q", tc.contains, err.Error())
			}

			var apiErr *Error
			if errors.As(err, &apiErr) && apiErr.StatusCode != tc.status {
				t.Errorf("expected status %d on error, got %d", tc.status, apiErr.StatusCode)
			}
		})
	}
}

func TestClient_FetchPage_RateLimitCarriesRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ratelimit-Reset", "42")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewClient(WithBaseURL(server.URL)).FetchPage(context.Background(), mustQuery(t, "pics", "hot"), "", 25)

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.RetryAfter != 42*time.Second {
		t.Errorf("expected retry after 42s, got %s", apiErr.RetryAfter)
	}
}

func TestClient_FetchPage_RedirectToSearchMeansNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/r/nosuchplace/hot.json", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/subreddits/search.json?q=nosuchplace", http.StatusFound)
	})
	mux.HandleFunc("/subreddits/search.json", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(listingJSON(nil))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := NewClient(WithBaseURL(server.URL)).FetchPage(context.Background(), mustQuery(t, "nosuchplace", "hot"), "", 25)

	if KindOf(err) != KindSubredditNotFound {
		t.Errorf("expected subreddit not found, got %v", err)
	}
}

func TestClient_FetchPage_RejectsMalformedEnvelope(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"not json", `{"invalid": json}`},
		{"missing data", `{"kind":"Listing"}`},
		{"missing children", `{"kind":"Listing","data":{"after":null}}`},
		{"truncated", `{"data":{"children":[{"data":{"id":"a"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			_, err := NewClient(WithBaseURL(server.URL)).FetchPage(context.Background(), mustQuery(t, "pics", "hot"), "", 25)
			if KindOf(err) != KindInvalidResponseShape {
				t.Errorf("expected invalid response shape, got %v", err)
			}
		})
	}
}

func TestClient_FetchPage_IgnoresUnexpectedFieldsAndNulls(t *testing.T) {
	body := `{"kind":"Listing","data":{"after":null,"dist":1,"children":[
		{"kind":"t3","data":{"id":"a","title":"t","brand_new_field":{"x":1},
		"media":null,"preview":null,"gallery_data":null,"media_metadata":null}}]}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	page, err := NewClient(WithBaseURL(server.URL)).FetchPage(context.Background(), mustQuery(t, "pics", "hot"), "", 25)
	if err != nil {
		t.Fatalf("unexpected fields and nulls should not fail decoding: %v", err)
	}
	if len(page.Posts) != 1 || page.Posts[0].ID != "a" {
		t.Errorf("expected single post a, got %+v", page.Posts)
	}
}

func TestClient_FetchPage_ReportsCancellationDistinctly(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := NewClient(WithBaseURL(server.URL)).FetchPage(ctx, mustQuery(t, "pics", "hot"), "", 25)

	if !IsCancelled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestClient_FetchPage_DeadlineIsNotCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(WithBaseURL(server.URL)).FetchPage(ctx, mustQuery(t, "pics", "hot"), "", 25)

	if IsCancelled(err) {
		t.Fatal("a timeout must surface as an error, not as a silent cancellation")
	}
	if KindOf(err) != KindUpstream {
		t.Errorf("expected upstream error for timeout, got %v", err)
	}
}

func TestClient_FetchPage_LimiterWaitHonoursCancellation(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(listingJSON(nil))
	}))
	defer server.Close()

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	client := NewClient(WithBaseURL(server.URL), WithLimiter(limiter))
	q := mustQuery(t, "pics", "hot")

	if _, err := client.FetchPage(context.Background(), q, "", 25); err != nil {
		t.Fatalf("first request should use the burst token: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.FetchPage(ctx, q, "", 25)

	if !IsCancelled(err) {
		t.Errorf("expected cancellation while waiting for the limiter, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected only 1 request to reach upstream, got %d", calls)
	}
}

type staticToken string

func (s staticToken) AccessToken(context.Context) (string, error) { return string(s), nil }

func TestClient_FetchPage_SendsBearerTokenWhenConfigured(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(listingJSON(nil))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithTokenSource(staticToken("abc")))
	if _, err := client.FetchPage(context.Background(), mustQuery(t, "pics", "hot"), "", 25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "bearer abc" {
		t.Errorf("expected bearer token, got %q", auth)
	}
}

func TestNewClient_UsesOAuthHostWithTokenSource(t *testing.T) {
	client := NewClient(WithTokenSource(staticToken("abc")))
	if client.baseURL != oauthBaseURL {
		t.Errorf("expected %s, got %s", oauthBaseURL, client.baseURL)
	}
	if NewClient().baseURL != defaultBaseURL {
		t.Errorf("expected %s without token source", defaultBaseURL)
	}
}
