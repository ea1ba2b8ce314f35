package middleware

import (
	"strings"
	"testing"
)

func TestScrubBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		hidden  string
		keep    string
		wantRaw bool
	}{
		{name: "token replaced", body: `{"name":"east","apiToken":"abc123"}`, hidden: "abc123", keep: `"name":"east"`},
		{name: "no token", body: `{"cacheTtl":30}`, wantRaw: true},
		{name: "empty token kept", body: `{"apiToken":""}`, wantRaw: true},
		{name: "not json", body: `apiToken=abc123`, hidden: "abc123"},
		{name: "empty body", body: ``, wantRaw: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scrubBody([]byte(tt.body))
			if tt.wantRaw && got != tt.body {
				t.Errorf("scrubBody() = %q, want %q", got, tt.body)
			}
			if tt.hidden != "" && strings.Contains(got, tt.hidden) {
				t.Errorf("scrubBody() = %q still contains %q", got, tt.hidden)
			}
			if tt.keep != "" && !strings.Contains(got, tt.keep) {
				t.Errorf("scrubBody() = %q, want it to contain %q", got, tt.keep)
			}
		})
	}
}
