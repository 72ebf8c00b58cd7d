package idem_kvs

import (
	"fmt"
	"time"
)

// config.go holds the static config for the server and the client.
// cmd/kvs and cmd/client fill these in from flags.

type ServerConfig struct {
	Addr            string // listen address, host:port
	Shards          int    // number of lock shards, 1 = one global lock
	MaxDedupEntries int    // store-wide, split across shards; 0 = remember every request forever
}

type ClientConfig struct {
	Addr    string        // server address, host:port
	Timeout time.Duration // per attempt
	Backoff time.Duration // sleep between attempts
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            "localhost:8090",
		Shards:          1,
		MaxDedupEntries: 0,
	}
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Addr:    "localhost:8090",
		Timeout: 5 * time.Second,
		Backoff: 3 * time.Second,
	}
}

func (c ServerConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("server config: empty listen address")
	}
	if c.Shards < 1 {
		return fmt.Errorf("server config: shards must be >= 1, got %d", c.Shards)
	}
	if c.MaxDedupEntries < 0 {
		return fmt.Errorf("server config: dedup bound must be >= 0, got %d", c.MaxDedupEntries)
	}
	return nil
}

func (c ClientConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("client config: empty server address")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("client config: timeout must be > 0, got %s", c.Timeout)
	}
	if c.Backoff < 0 {
		return fmt.Errorf("client config: backoff must be >= 0, got %s", c.Backoff)
	}
	return nil
}
