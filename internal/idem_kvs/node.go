package idem_kvs

import (
	"fmt"
	"log"
)

// Node is the server side of the store: it validates commands,
// applies them and keeps count of what it did.
// everything it knows is lost when the process exits.
type Node struct {
	store   *Store
	metrics metrics
	cfg     ServerConfig
}

func OpenNode(cfg ServerConfig) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error: OpenNode() failure: %w", err)
	}

	nstore, err := NewStore(cfg.Shards, cfg.MaxDedupEntries)
	if err != nil {
		return nil, fmt.Errorf("error: OpenNode() failure, unable to create store: %w", err)
	}

	return &Node{
		store: nstore,
		cfg:   cfg,
	}, nil
}

// Close is a no-op: there is nothing to flush, the state goes with the process.
func (n *Node) Close() error {
	return nil
}

func (n *Node) Exec(cmd Command) (ApplyResult, error) {
	// we check the command is well formed before touching the store
	if err := cmd.validate(); err != nil {
		return ApplyResult{}, err
	}

	res, err := n.store.Apply(cmd)
	if err != nil {
		return res, err
	}

	n.metrics.inc(cmd.Instruct, res.Duplicate)
	if res.Duplicate {
		log.Printf("dedup_hit op=%s key=%q request_id=%s", cmd.Instruct, cmd.Key, cmd.RequestID)
	}

	return res, nil
}

func (n *Node) Get(key string) (string, error) {
	res, err := n.Exec(Command{Instruct: CmdGet, Key: key})
	if err != nil {
		return "", err
	}
	return res.Value, nil
}

func (n *Node) Metrics() MetricsSnapshot {
	return n.metrics.Snapshot()
}

func (n *Node) Keys() int {
	return n.store.Len()
}

func (n *Node) DedupEntries() int {
	return n.store.DedupLen()
}
