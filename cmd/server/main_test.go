package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/fundflow/internal/infrastructure/config"
	"github.com/iho/fundflow/internal/infrastructure/eventpublisher"
)

func TestNewHTTPServerAppliesConfig(t *testing.T) {
	cfg := &config.Config{
		HTTPPort:         "9090",
		HTTPReadTimeout:  3 * time.Second,
		HTTPWriteTimeout: 4 * time.Second,
		HTTPIdleTimeout:  5 * time.Second,
	}

	srv := newHTTPServer(cfg, http.NotFoundHandler())

	if srv.Addr != ":9090" {
		t.Fatalf("expected :9090, got %s", srv.Addr)
	}
	if srv.ReadTimeout != 3*time.Second || srv.WriteTimeout != 4*time.Second || srv.IdleTimeout != 5*time.Second {
		t.Fatalf("unexpected timeouts %v %v %v", srv.ReadTimeout, srv.WriteTimeout, srv.IdleTimeout)
	}
}

func TestNewPublisherSelection(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	if _, ok := newPublisher(&config.Config{EventsPublisher: "redis", EventsChannel: "c"}, client, zerolog.Nop()).(*eventpublisher.RedisPublisher); !ok {
		t.Fatalf("expected redis publisher")
	}
	if _, ok := newPublisher(&config.Config{EventsPublisher: "log"}, client, zerolog.Nop()).(*eventpublisher.LogPublisher); !ok {
		t.Fatalf("expected log publisher")
	}
	if _, ok := newPublisher(&config.Config{EventsPublisher: "redis"}, nil, zerolog.Nop()).(*eventpublisher.LogPublisher); !ok {
		t.Fatalf("expected log publisher without a redis client")
	}
}
