package fingerprint

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTransport_Profiles(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	for _, p := range []Profile{ProfileChrome, ProfileFirefox, ProfileSafari, ProfileGo} {
		t.Run(string(p), func(t *testing.T) {
			rt, err := Transport(Options{Profile: p, InsecureSkipVerify: true})
			if err != nil {
				t.Fatalf("unexpected error creating transport: %v", err)
			}

			client := &http.Client{Transport: rt}
			resp, err := client.Get(ts.URL)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected 200 OK, got %d", resp.StatusCode)
			}
		})
	}
}

func TestTransport_UnknownProfile(t *testing.T) {
	if _, err := Transport(Options{Profile: "netscape"}); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestParseProfile(t *testing.T) {
	tests := map[string]Profile{
		"":         ProfileChrome,
		"Chrome":   ProfileChrome,
		" firefox": ProfileFirefox,
		"go":       ProfileGo,
		"random":   ProfileRandom,
	}
	for in, want := range tests {
		got, err := ParseProfile(in)
		if err != nil || got != want {
			t.Errorf("ParseProfile(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseProfile("lynx"); err == nil {
		t.Error("expected error for unknown profile")
	}
}
