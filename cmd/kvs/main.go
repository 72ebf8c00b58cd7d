package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/O-Nicolinho/idem_kv/internal/idem_kvs"
)

func main() {
	def := idem_kvs.DefaultServerConfig()

	host := flag.String("host", "localhost", "host to listen on")
	port := flag.Int("port", 0, "port to listen on (required)")
	shards := flag.Int("shards", def.Shards, "number of lock shards (1 = one global lock)")
	dedupMax := flag.Int("dedup-max", def.MaxDedupEntries, "max remembered requests across all shards (0 = unbounded)")
	flag.Parse()

	if *port <= 0 {
		log.Fatalf("must provide -port")
	}

	cfg := idem_kvs.ServerConfig{
		Addr:            fmt.Sprintf("%s:%d", *host, *port),
		Shards:          *shards,
		MaxDedupEntries: *dedupMax,
	}

	node, err := idem_kvs.OpenNode(cfg)
	if err != nil {
		log.Fatalf("OpenNode failed: %v", err)
	}
	defer func() {
		if err := node.Close(); err != nil {
			log.Printf("node.Close error: %v", err)
		}
	}()

	srv := idem_kvs.NewHTTPServer(node, cfg.Addr)
	go func() {
		log.Printf("server listening at %s (shards=%d dedup_max=%d)", cfg.Addr, cfg.Shards, cfg.MaxDedupEntries)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server exited: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
	<-sigch

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("adieu")
}
