package api

import (
	"net/http"
	"testing"

	"github.com/angelmondragon/smartsales/pkg/config"
)

func TestNewServerUsesConfiguredPort(t *testing.T) {
	t.Setenv("PORT", "")
	cfg := &config.Config{App: config.AppConfig{Port: "8080"}}
	srv := NewServer(cfg, http.NotFoundHandler())
	if srv.Addr != ":8080" {
		t.Fatalf("expected :8080 got %s", srv.Addr)
	}
	if srv.ReadHeaderTimeout == 0 || srv.WriteTimeout == 0 {
		t.Fatalf("expected timeouts to be set")
	}
}

func TestNewServerPrefersPlatformPort(t *testing.T) {
	t.Setenv("PORT", "9090")
	srv := NewServer(&config.Config{App: config.AppConfig{Port: "8080"}}, http.NotFoundHandler())
	if srv.Addr != ":9090" {
		t.Fatalf("expected :9090 got %s", srv.Addr)
	}
}
