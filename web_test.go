package main

import (
	"bytes"
	"io"
	"net/http"
	"regexp"
	"strings"
	"testing"
)

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}

	return resp, body
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, _ := get(t, srv.URL+"/")
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/rps" {
		t.Errorf("/ = %d to %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp, _ = get(t, srv.URL+"/rps")
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("/rps status = %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !regexp.MustCompile(`^/rps/\d{6}$`).MatchString(loc) {
		t.Errorf("/rps redirected to %q", loc)
	}

	resp, body := get(t, srv.URL+"/rps/482913")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte("rps.js")) {
		t.Errorf("room page = %d, %d bytes", resp.StatusCode, len(body))
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("room page missing security headers")
	}

	resp, _ = get(t, srv.URL+"/rps/abc")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("room page for bad code = %d, want 404", resp.StatusCode)
	}

	resp, body = get(t, srv.URL+"/rps/482913/qr")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("qr = %d, %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Error("qr body is not a PNG")
	}

	resp, _ = get(t, srv.URL+"/rps/482913/status")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status of unknown room = %d, want 404", resp.StatusCode)
	}

	resp, body = get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || string(body) != "Ok\n" {
		t.Errorf("healthz = %d, %q", resp.StatusCode, body)
	}

	_, body = get(t, srv.URL+"/version")
	if string(body) != "rpsbox v"+releaseVersion+"\n" {
		t.Errorf("version = %q", body)
	}

	resp, _ = get(t, srv.URL+"/assets/rps.js")
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/javascript") {
		t.Errorf("rps.js content type = %q", resp.Header.Get("Content-Type"))
	}

	resp, _ = get(t, srv.URL+"/assets/missing.js")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing asset = %d, want 404", resp.StatusCode)
	}

	resp, _ = get(t, srv.URL+"/favicons/favicon.svg")
	if resp.Header.Get("Content-Type") != "image/svg+xml" {
		t.Errorf("favicon content type = %q", resp.Header.Get("Content-Type"))
	}
}

func TestRoutesWithPrefix(t *testing.T) {
	cfg := testConfig()
	cfg.prefix = "/games/"
	cfg.profile = true
	srv := newTestServer(t, cfg)

	resp, _ := get(t, srv.URL+"/games/rps")
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/games/rps/") {
		t.Errorf("redirect = %q, want prefixed room", loc)
	}

	resp, _ = get(t, srv.URL+"/games/pprof/cmdline")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("pprof cmdline = %d", resp.StatusCode)
	}

	resp, _ = get(t, srv.URL+"/rps")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unprefixed route = %d, want 404", resp.StatusCode)
	}
}

func TestHumanReadableSize(t *testing.T) {
	tests := map[int64]string{
		0:         "0 B",
		999:       "999 B",
		1500:      "1.5 kB",
		2_000_000: "2.0 MB",
	}

	for in, want := range tests {
		if got := humanReadableSize(in); got != want {
			t.Errorf("humanReadableSize(%d) = %q, want %q", in, got, want)
		}
	}
}
