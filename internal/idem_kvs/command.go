package idem_kvs

import "errors"

// command.go defines the commands our store understands.
// every request that reaches the node, whatever the transport,
// gets mapped to a Command before it is applied.

type Command struct {
	Instruct  CommandType
	RequestID string // empty for gets
	Key       string
	Value     string
}

type CommandType uint8

const (
	CmdUnknown CommandType = iota // invalid or unset
	CmdGet                        // = 1
	CmdPut                        // = 2
	CmdAppend                     // = 3
)

func (t CommandType) String() string {
	switch t {
	case CmdGet:
		return "GET"
	case CmdPut:
		return "PUT"
	case CmdAppend:
		return "APPEND"
	}
	return "UNKNOWN"
}

func validType(t CommandType) bool {
	return t == CmdGet || t == CmdPut || t == CmdAppend
}

func (t CommandType) mutates() bool {
	return t == CmdPut || t == CmdAppend
}

type ApplyResult struct {
	Value     string // the value read for a get, the resulting value for a put/append
	Duplicate bool   // true if the result came from the dedup cache
}

var (
	ErrUnknownCommand   = errors.New("unknown command type")
	ErrEmptyKey         = errors.New("missing key")
	ErrMissingRequestID = errors.New("missing request_id")
)

// validate checks that a command is well formed before it gets near the store.
func (c Command) validate() error {
	if !validType(c.Instruct) {
		return ErrUnknownCommand
	}
	if c.Key == "" {
		return ErrEmptyKey
	}
	if c.Instruct.mutates() && c.RequestID == "" {
		return ErrMissingRequestID
	}
	return nil
}
