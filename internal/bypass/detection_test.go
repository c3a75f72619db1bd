package bypass

import (
	"net/http"
	"testing"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name string
		res  Response
		want string
	}{
		{
			name: "plain article",
			res:  Response{StatusCode: 200, Header: http.Header{"Server": {"nginx"}}, Body: []byte("<p>story</p>")},
			want: "",
		},
		{
			name: "cloudflare server header",
			res:  Response{StatusCode: 403, Header: http.Header{"Server": {"cloudflare"}}},
			want: "Cloudflare",
		},
		{
			name: "cloudflare turnstile body on 503",
			res:  Response{StatusCode: 503, Header: http.Header{}, Body: []byte("<div class=cf-turnstile></div>")},
			want: "Cloudflare",
		},
		{
			name: "cloudflare header on 200 is not a challenge",
			res:  Response{StatusCode: 200, Header: http.Header{"Server": {"cloudflare"}}},
			want: "",
		},
		{
			name: "akamai header",
			res:  Response{StatusCode: 403, Header: http.Header{"Server": {"AkamaiGHost"}}},
			want: "Akamai",
		},
		{
			name: "akamai block page",
			res:  Response{StatusCode: 403, Header: http.Header{}, Body: []byte("Access Denied. Reference #18.abc")},
			want: "Akamai",
		},
		{
			name: "datadome header",
			res:  Response{StatusCode: 403, Header: http.Header{"X-Datadome": {"protected"}}},
			want: "DataDome",
		},
		{
			name: "datadome captcha body",
			res:  Response{StatusCode: 403, Header: http.Header{}, Body: []byte("https://geo.captcha-delivery.com/captcha")},
			want: "DataDome",
		},
		{
			name: "perimeterx body",
			res:  Response{StatusCode: 403, Header: http.Header{}, Body: []byte(`<div id="px-captcha"></div>`)},
			want: "PerimeterX",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Analyze(tt.res, DefaultDetectors()); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAnalyze_NoDetectors(t *testing.T) {
	res := Response{StatusCode: 403, Header: http.Header{"Server": {"cloudflare"}}}
	if got := Analyze(res, nil); got != "" {
		t.Errorf("expected no detection without detectors, got %q", got)
	}
}
