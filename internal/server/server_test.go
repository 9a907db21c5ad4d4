package server

import "testing"

func TestShouldSkipJWT_WebhookPaths(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want bool
	}{
		{path: "/ping", want: true},
		{path: "/health", want: true},
		{path: "/channels/whatsapp/webhook/cb-1", want: true},
		{path: "/channels/whatsapp/webhook", want: false},
		{path: "/channels", want: false},
		{path: "/api/channels/whatsapp/webhook/cb-1", want: false},
	}

	for _, tc := range cases {
		got := shouldSkipJWT(tc.path)
		if got != tc.want {
			t.Fatalf("path=%q want=%v got=%v", tc.path, tc.want, got)
		}
	}
}
