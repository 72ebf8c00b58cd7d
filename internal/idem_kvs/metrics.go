package idem_kvs

import "sync/atomic"

type metrics struct {
	exec   atomic.Uint64
	gets   atomic.Uint64
	puts   atomic.Uint64
	appnds atomic.Uint64
	dedup  atomic.Uint64
}

type MetricsSnapshot struct {
	ExecTotal   uint64 `json:"exec_total"`
	GetTotal    uint64 `json:"get_total"`
	PutTotal    uint64 `json:"put_total"`
	AppendTotal uint64 `json:"append_total"`
	DedupHits   uint64 `json:"dedup_hits"`
}

func (m *metrics) inc(op CommandType, dup bool) {
	m.exec.Add(1)
	switch op {
	case CmdGet:
		m.gets.Add(1)
	case CmdPut:
		m.puts.Add(1)
	case CmdAppend:
		m.appnds.Add(1)
	}
	if dup {
		m.dedup.Add(1)
	}
}

func (m *metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ExecTotal:   m.exec.Load(),
		GetTotal:    m.gets.Load(),
		PutTotal:    m.puts.Load(),
		AppendTotal: m.appnds.Load(),
		DedupHits:   m.dedup.Load(),
	}
}
