package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/collagefm/pkg/cache"
	"github.com/matzehuels/collagefm/pkg/collage"
	errs "github.com/matzehuels/collagefm/pkg/errors"
)

func imagesJSON(large, xl string) []map[string]string {
	return []map[string]string{
		{"#text": "https://img/s.png", "size": "small"},
		{"#text": "https://img/m.png", "size": "medium"},
		{"#text": large, "size": "large"},
		{"#text": xl, "size": "extralarge"},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts = append([]Option{WithBaseURL(server.URL + "/2.0/"), WithRetry(1, time.Millisecond)}, opts...)
	return NewClient("key", opts...)
}

func TestTopAlbums(t *testing.T) {
	var gotQuery map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"method": q.Get("method"), "user": q.Get("user"), "period": q.Get("period"),
			"limit": q.Get("limit"), "api_key": q.Get("api_key"), "format": q.Get("format"),
		}
		json.NewEncoder(w).Encode(map[string]any{
			"topalbums": map[string]any{"album": []map[string]any{
				{"name": "OK Computer", "artist": map[string]string{"name": "Radiohead"}, "image": imagesJSON("https://img/l1.png", "https://img/xl1.png")},
				{"name": "Vespertine", "artist": map[string]string{"name": "Björk"}, "image": imagesJSON("https://img/l2.png", "")},
				{"name": "Untitled", "artist": map[string]string{"name": "Nobody"}, "image": []map[string]string{}},
			}},
		})
	})

	items, err := c.TopItems(context.Background(), Request{Username: " rj ", Period: "1month", Type: Albums, Limit: 3})
	if err != nil {
		t.Fatalf("TopItems() error: %v", err)
	}

	want := []collage.Item{
		{DisplayLink: "https://img/xl1.png", Label: "Radiohead – OK Computer"},
		{DisplayLink: "https://img/l2.png", Label: "Björk – Vespertine"},
		{DisplayLink: "", Label: "Nobody – Untitled"},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	wantQuery := map[string]string{
		"method": "user.gettopalbums", "user": "rj", "period": "1month",
		"limit": "3", "api_key": "key", "format": "json",
	}
	if diff := cmp.Diff(wantQuery, gotQuery); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestTopAlbumsCached(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"topalbums":{"album":[{"name":"A","artist":{"name":"B"},"image":[]}]}}`)
	}, WithCache(mustBadger(t)))

	req := Request{Username: "rj", Period: "7day", Type: Albums, Limit: 1}
	for range 2 {
		if _, err := c.TopItems(context.Background(), req); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("upstream calls = %d, want 1", calls.Load())
	}

	req.Refresh = true
	if _, err := c.TopItems(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("upstream calls after refresh = %d, want 2", calls.Load())
	}
}

func mustBadger(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewBadgerCache("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestTopItemsErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode errs.Code
	}{
		{"unknown user", http.StatusNotFound, `{"error":6,"message":"User not found"}`, errs.ErrCodeUserNotFound},
		{"error with 200", http.StatusOK, `{"error":6,"message":"User not found"}`, errs.ErrCodeUserNotFound},
		{"rate limited", http.StatusTooManyRequests, `{"error":29,"message":"Rate Limit Exceeded"}`, errs.ErrCodeRateLimited},
		{"bad key", http.StatusForbidden, `{"error":10,"message":"Invalid API key"}`, errs.ErrCodeUnauthorized},
		{"suspended key", http.StatusForbidden, `{"error":26,"message":"Suspended"}`, errs.ErrCodeUnauthorized},
		{"other api error", http.StatusBadRequest, `{"error":8,"message":"Operation failed"}`, errs.ErrCodeUpstream},
		{"bare 400", http.StatusBadRequest, `oops`, errs.ErrCodeUpstream},
		{"server error", http.StatusBadGateway, ``, errs.ErrCodeNetwork},
		{"garbage body", http.StatusOK, `<html>`, errs.ErrCodeUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			items, err := c.TopItems(context.Background(), Request{Username: "ghost", Period: "7day", Type: Albums, Limit: 10})
			if err == nil {
				t.Fatalf("TopItems() = %v, want error", items)
			}
			if got := errs.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %s, want %s (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestTopItemsValidation(t *testing.T) {
	c := NewClient("key", WithBaseURL("http://127.0.0.1:0/"))
	ctx := context.Background()

	_, err := c.TopItems(ctx, Request{Username: "", Limit: 10})
	if !errs.Is(err, errs.ErrCodeInvalidUsername) {
		t.Errorf("empty username: %v", err)
	}
	_, err = c.TopItems(ctx, Request{Username: "rj", Limit: 0})
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("zero limit: %v", err)
	}
	_, err = c.TopItems(ctx, Request{Username: "rj", Limit: 5, Type: "playlists"})
	if !errs.Is(err, errs.ErrCodeInvalidItemType) {
		t.Errorf("bad type: %v", err)
	}
	_, err = NewClient("").TopItems(ctx, Request{Username: "rj", Limit: 5})
	if !errs.Is(err, errs.ErrCodeUnauthorized) {
		t.Errorf("missing key: %v", err)
	}
}

func TestTopTracksBatched(t *testing.T) {
	var mu sync.Mutex
	var infoCalls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch q.Get("method") {
		case "user.gettoptracks":
			tracks := make([]map[string]any, 5)
			for i := range tracks {
				tracks[i] = map[string]any{"name": fmt.Sprintf("song %d", i), "artist": map[string]string{"name": "band"}}
			}
			json.NewEncoder(w).Encode(map[string]any{"toptracks": map[string]any{"track": tracks}})
		case "track.getInfo":
			mu.Lock()
			infoCalls = append(infoCalls, q.Get("track"))
			mu.Unlock()
			switch q.Get("track") {
			case "song 1":
				fmt.Fprint(w, `{"track":{"name":"song 1"}}`)
			case "song 3":
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"error":6,"message":"Track not found"}`)
			default:
				json.NewEncoder(w).Encode(map[string]any{"track": map[string]any{
					"album": map[string]any{"title": "LP", "image": imagesJSON("https://img/"+q.Get("track")+".png", "")},
				}})
			}
		default:
			t.Errorf("unexpected method %q", q.Get("method"))
		}
	}, WithBatching(2, time.Second))

	var pauses []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}

	items, err := c.TopItems(context.Background(), Request{Username: "rj", Period: "7day", Type: Tracks, Limit: 5})
	if err != nil {
		t.Fatalf("TopItems() error: %v", err)
	}

	want := []collage.Item{
		{DisplayLink: "https://img/song 0.png", Label: "song 0"},
		{DisplayLink: "", Label: "song 1"},
		{DisplayLink: "https://img/song 2.png", Label: "song 2"},
		{DisplayLink: "", Label: "song 3"},
		{DisplayLink: "https://img/song 4.png", Label: "song 4"},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if len(infoCalls) != 5 {
		t.Errorf("track.getInfo calls = %d, want 5", len(infoCalls))
	}
	// 5 tracks in batches of 2: pauses after the first and second batch only.
	if diff := cmp.Diff([]time.Duration{time.Second, time.Second}, pauses); diff != "" {
		t.Errorf("pauses mismatch (-want +got):\n%s", diff)
	}
}

func TestTrackImagesCancelledDuringPause(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"track":{}}`)
	}, WithBatching(1, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.TrackImages(ctx, []Track{{Title: "a"}, {Title: "b"}}, false)
	if err == nil {
		t.Error("TrackImages() should fail once the context is cancelled")
	}
}

type fakeFinder map[string]string

func (f fakeFinder) ArtistImage(_ context.Context, name string) (string, error) {
	return f[name], nil
}

func TestTopArtists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"topartists":{"artist":[{"name":"Radiohead"},{"name":"Obscure"},{"name":"Björk"}]}}`)
	}, WithArtistImages(fakeFinder{
		"Radiohead": "https://discogs/rh.jpg",
		"Björk":     "https://discogs/bj.jpg",
	}))

	items, err := c.TopItems(context.Background(), Request{Username: "rj", Period: "overall", Type: Artists, Limit: 3})
	if err != nil {
		t.Fatalf("TopItems() error: %v", err)
	}
	want := []collage.Item{
		{DisplayLink: "https://discogs/rh.jpg", Label: "Radiohead"},
		{DisplayLink: "https://discogs/bj.jpg", Label: "Björk"},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestTopArtistsWithoutFinder(t *testing.T) {
	c := NewClient("key")
	_, err := c.TopItems(context.Background(), Request{Username: "rj", Type: Artists, Limit: 3})
	if !errs.Is(err, errs.ErrCodeInvalidItemType) {
		t.Errorf("err = %v, want INVALID_ITEM_TYPE", err)
	}
}

func TestNormalizePeriod(t *testing.T) {
	tests := map[string]string{
		"1 week":    "7day",
		"7day":      "7day",
		"1 Month":   "1month",
		"3 months":  "3month",
		"6months":   "6month",
		"12 months": "12month",
		"overall":   "overall",
		"OVERALL":   "overall",
		"":          "7day",
		"fortnight": "7day",
	}
	for in, want := range tests {
		if got := NormalizePeriod(in); got != want {
			t.Errorf("NormalizePeriod(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestArtistRefForms(t *testing.T) {
	var refs []artistRef
	if err := json.Unmarshal([]byte(`["plain", {"name": "obj"}, {"#text": "text"}]`), &refs); err != nil {
		t.Fatal(err)
	}
	got := []string{refs[0].Name, refs[1].Name, refs[2].Name}
	if diff := cmp.Diff([]string{"plain", "obj", "text"}, got); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}
