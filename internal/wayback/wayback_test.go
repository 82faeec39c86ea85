package wayback

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/resistanceisuseless/sovax/internal/httpclient"
	"go.uber.org/zap/zaptest"
)

func TestFilter(t *testing.T) {
	f, err := NewFilter()
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "admin only",
			in:   []string{"http://x.com/admin", "http://x.com/page"},
			want: []string{"http://x.com/admin"},
		},
		{
			name: "case insensitive and deduplicated",
			in:   []string{"http://x.com/LOGIN", "http://x.com/app.JS", "http://x.com/LOGIN"},
			want: []string{"http://x.com/LOGIN", "http://x.com/app.JS"},
		},
		{
			name: "query parameters",
			in:   []string{"http://x.com/search?q=1", "http://x.com/about"},
			want: []string{"http://x.com/search?q=1"},
		},
		{
			name: "nothing interesting",
			in:   []string{"http://x.com/", "http://x.com/about"},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Apply(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterExtraPatterns(t *testing.T) {
	f, err := NewFilter(`/debug/`)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	got := f.Apply([]string{"http://x.com/debug/vars", "http://x.com/page"})
	if want := []string{"http://x.com/debug/vars"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Apply = %v, want %v", got, want)
	}

	if _, err := NewFilter(`(`); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestFetch(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query = map[string]string{"url": q.Get("url"), "output": q.Get("output"), "fl": q.Get("fl"), "collapse": q.Get("collapse")}
		if q.Get("url") == "broken.com/*" {
			w.Write([]byte(`[["original"],`))
			return
		}
		w.Write([]byte(`[["original"],["http://x.com/admin"],["http://x.com/page"]]`))
	}))
	defer srv.Close()

	c := NewClient(httpclient.New(httpclient.Options{Timeout: 2 * time.Second}), srv.URL, zaptest.NewLogger(t))

	got := c.Fetch(context.Background(), "x.com")
	if want := []string{"http://x.com/admin", "http://x.com/page"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Fetch = %v, want %v", got, want)
	}
	wantQuery := map[string]string{"url": "x.com/*", "output": "json", "fl": "original", "collapse": "urlkey"}
	if !reflect.DeepEqual(query, wantQuery) {
		t.Errorf("query = %v, want %v", query, wantQuery)
	}

	if got := c.Fetch(context.Background(), "broken.com"); len(got) != 0 {
		t.Errorf("malformed response should give no URLs, got %v", got)
	}
}
