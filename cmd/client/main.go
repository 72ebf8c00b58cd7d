package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/O-Nicolinho/idem_kv/internal/idem_kvs"
)

// client/main.go runs a small fixed workload against a server:
// put a few keys, read them back, append to some, read again.

func main() {
	def := idem_kvs.DefaultClientConfig()

	host := flag.String("host", "localhost", "server host")
	sport := flag.Int("sport", 0, "server port (required)")
	timeout := flag.Duration("timeout", def.Timeout, "per attempt timeout")
	backoff := flag.Duration("backoff", def.Backoff, "sleep between retries")
	flag.Parse()

	if *sport <= 0 {
		log.Fatalf("must provide -sport")
	}

	client, err := idem_kvs.NewClient(idem_kvs.ClientConfig{
		Addr:    fmt.Sprintf("%s:%d", *host, *sport),
		Timeout: *timeout,
		Backoff: *backoff,
	})
	if err != nil {
		log.Fatalf("NewClient: %v", err)
	}

	ctx := context.Background()
	keys := []string{"test", "test1", "test2"}

	for _, k := range keys {
		if _, err := client.Put(ctx, k, k+"-123"); err != nil {
			log.Fatalf("put %q: %v", k, err)
		}
	}
	printAll(ctx, client, keys)

	for _, k := range keys[:2] {
		if _, err := client.Append(ctx, k, "456"); err != nil {
			log.Fatalf("append %q: %v", k, err)
		}
	}
	printAll(ctx, client, keys)
}

func printAll(ctx context.Context, client *idem_kvs.Client, keys []string) {
	for _, k := range keys {
		v, err := client.Get(ctx, k)
		if err != nil {
			log.Fatalf("get %q: %v", k, err)
		}
		fmt.Println(v)
	}
}
