package chain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a chain failure.
type Kind string

const (
	KindNetwork           Kind = "network"
	KindRejected          Kind = "rejected"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindTimeout           Kind = "timeout"
	KindUnknown           Kind = "unknown"
)

// sdkInsufficientFunds is ErrInsufficientFunds in the Cosmos SDK "sdk" codespace.
const sdkInsufficientFunds = 5

// broadcastBoundary marks where verbose broadcast traces start in node error text.
const broadcastBoundary = "Broadcasting transaction failed"

// Error is a classified failure from the node or the transport.
type Error struct {
	Kind      Kind
	Op        string
	Code      uint32
	Codespace string
	Log       string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.Code != 0 {
		fmt.Fprintf(&b, " (codespace=%s code=%d)", e.Codespace, e.Code)
	}
	if e.Log != "" {
		b.WriteString(": ")
		b.WriteString(e.Log)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func networkError(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

func rejection(op string, code uint32, codespace, log string) *Error {
	kind := KindRejected
	if (codespace == "sdk" && code == sdkInsufficientFunds) || strings.Contains(strings.ToLower(log), "insufficient funds") {
		kind = KindInsufficientFunds
	}
	return &Error{Kind: kind, Op: op, Code: code, Codespace: codespace, Log: log}
}

// KindOf returns the classification of err, or KindUnknown when err did not come from this package.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// Summarize flattens err into a single line of at most max runes, dropping any
// broadcast trace that follows the node's boundary marker.
func Summarize(err error, max int) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.Index(msg, broadcastBoundary); i > 0 {
		msg = msg[:i]
	}
	msg = strings.Join(strings.Fields(msg), " ")
	msg = strings.TrimRight(msg, " :")
	if max > 0 {
		r := []rune(msg)
		if len(r) > max {
			msg = string(r[:max]) + "..."
		}
	}
	return msg
}
