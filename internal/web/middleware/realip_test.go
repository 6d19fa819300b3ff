package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "trusted proxy with X-Real-IP",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:4567",
			headers:    map[string]string{"X-Real-IP": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "trusted proxy with X-Forwarded-For chain",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:4567",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.1.2.3"},
			want:       "203.0.113.7",
		},
		{
			name:       "untrusted client cannot spoof",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "198.51.100.9:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.7"},
			want:       "198.51.100.9:1234",
		},
		{
			name:       "no trusted proxies configured",
			trusted:    nil,
			remoteAddr: "10.1.2.3:4567",
			headers:    map[string]string{"X-Real-IP": "203.0.113.7"},
			want:       "10.1.2.3:4567",
		},
		{
			name:       "bare IP accepted as trusted entry",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:9999",
			headers:    map[string]string{"X-Real-IP": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "garbage header value ignored",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:4567",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "10.1.2.3:4567",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}
