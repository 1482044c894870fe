package fetch_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/datapass/internal/domain"
	"github.com/mmcdole/datapass/internal/fetch"
	"github.com/mmcdole/datapass/internal/log"
)

func TestFetch_PostsEmptyBodyWithDesktopUA(t *testing.T) {
	var gotMethod, gotUA string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotUA = r.Header.Get("User-Agent")
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, "2,5 GB von 5 GB")
	}))
	defer srv.Close()

	c := fetch.NewClient(log.NullLogger())
	text, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text != "2,5 GB von 5 GB" {
		t.Errorf("text = %q", text)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if len(gotBody) != 0 {
		t.Errorf("body = %q, want empty", gotBody)
	}
	if !strings.Contains(gotUA, "Firefox") {
		t.Errorf("user agent = %q", gotUA)
	}
}

func TestFetch_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := fetch.NewClient(log.NullLogger()).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, domain.ErrUnexpectedStatus) {
		t.Errorf("err = %v, want ErrUnexpectedStatus", err)
	}
}

func TestFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := fetch.NewClient(log.NullLogger()).Fetch(context.Background(), url)
	if !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	hc := &http.Client{Timeout: 50 * time.Millisecond}
	_, err := fetch.NewClientWithHTTP(hc, log.NullLogger()).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
}
