package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type RetryKind string

const (
	RetryNone      RetryKind = "none"
	RetryImmediate RetryKind = "immediate"
	RetryFixed     RetryKind = "fixed"
	RetryFibonacci RetryKind = "fibonacci"
)

// JobRetry is the retry policy attached to a job: how many times to retry
// and how long to wait between attempts.
type JobRetry struct {
	Kind  RetryKind
	Count uint16
	Delay uint32 // seconds, unused for none/immediate
}

// fibTable holds fib(0)..fib(31) with fib(0)=fib(1)=1. Backoff saturates at
// fib(31) so the delay multiplier never overflows.
var fibTable = func() [32]uint32 {
	var t [32]uint32
	t[0], t[1] = 1, 1
	for i := 2; i < len(t); i++ {
		t[i] = t[i-1] + t[i-2]
	}
	return t
}()

func Fibonacci(idx int) uint32 {
	if idx >= len(fibTable) {
		return fibTable[len(fibTable)-1]
	}
	return fibTable[idx]
}

func (r JobRetry) IsNone() bool {
	return r.Kind == "" || r.Kind == RetryNone
}

// NextRetryIn returns the delay in seconds before attempt retry+1, or false
// when the policy has no retries left.
func (r JobRetry) NextRetryIn(retry uint16) (uint32, bool) {
	switch r.Kind {
	case RetryImmediate:
		if retry < r.Count {
			return 0, true
		}
	case RetryFixed:
		if retry < r.Count {
			return r.Delay, true
		}
	case RetryFibonacci:
		if retry < r.Count {
			return r.Delay * Fibonacci(int(retry)), true
		}
	}
	return 0, false
}

// ParseRetry parses a retry spec of the form "N", "N|kind|D" or "N,kind,D".
// Kind "exponential" is an alias for fibonacci; any other kind with three
// parts means fixed. An empty spec is the none policy.
func ParseRetry(s string) (JobRetry, error) {
	if s == "" {
		return JobRetry{Kind: RetryNone}, nil
	}
	parts := strings.Split(strings.ReplaceAll(s, ",", "|"), "|")
	count, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return JobRetry{}, &InvalidParamsError{Name: "retry"}
	}
	switch len(parts) {
	case 1, 2:
		return JobRetry{Kind: RetryImmediate, Count: uint16(count)}, nil
	case 3:
		delay, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return JobRetry{}, &InvalidParamsError{Name: "retry"}
		}
		kind := RetryFixed
		if parts[1] == "exponential" || parts[1] == "fibonacci" {
			kind = RetryFibonacci
		}
		return JobRetry{Kind: kind, Count: uint16(count), Delay: uint32(delay)}, nil
	default:
		return JobRetry{Kind: RetryNone}, nil
	}
}

// String renders the canonical spec form, so parse-then-print is stable.
func (r JobRetry) String() string {
	switch r.Kind {
	case RetryImmediate:
		return strconv.FormatUint(uint64(r.Count), 10)
	case RetryFixed:
		return fmt.Sprintf("%d|fixed|%d", r.Count, r.Delay)
	case RetryFibonacci:
		return fmt.Sprintf("%d|fibonacci|%d", r.Count, r.Delay)
	default:
		return ""
	}
}

type retryJSON struct {
	Retry RetryKind `json:"retry"`
	Count uint16    `json:"retry_count,omitempty"`
	Delay uint32    `json:"retry_delay,omitempty"`
}

func (r JobRetry) MarshalJSON() ([]byte, error) {
	kind := r.Kind
	if kind == "" {
		kind = RetryNone
	}
	return json.Marshal(retryJSON{Retry: kind, Count: r.Count, Delay: r.Delay})
}

func (r *JobRetry) UnmarshalJSON(data []byte) error {
	var raw retryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Kind = raw.Retry
	if r.Kind == "" {
		r.Kind = RetryNone
	}
	r.Count = raw.Count
	r.Delay = raw.Delay
	return nil
}
