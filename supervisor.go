package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"syscall"
	"time"
)

const reconnectBackoff = 5 * time.Second

type ErrorClass int

const (
	// ClassDiscard: log it, drop the tick, keep waiting.
	ClassDiscard ErrorClass = iota
	// ClassTransient: the daemon went away; reconnect.
	ClassTransient
	// ClassFatal: abort the process.
	ClassFatal
)

func (c ErrorClass) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassFatal:
		return "fatal"
	default:
		return "discard"
	}
}

type IOKind int

const (
	IONone IOKind = iota
	IOBrokenPipe
	IOConnectionReset
)

func (k IOKind) String() string {
	switch k {
	case IOBrokenPipe:
		return "broken pipe"
	case IOConnectionReset:
		return "connection reset"
	default:
		return "none"
	}
}

// Classify sorts an error from a wait or poll call. Only broken pipe and
// connection reset are retryable; every other I/O failure is fatal.
func Classify(err error) (ErrorClass, IOKind) {
	switch {
	case err == nil:
		return ClassDiscard, IONone
	case errors.Is(err, syscall.EPIPE):
		return ClassTransient, IOBrokenPipe
	case errors.Is(err, syscall.ECONNRESET):
		return ClassTransient, IOConnectionReset
	case errors.Is(err, ErrMissingElapsed):
		return ClassFatal, IONone
	case isIOError(err):
		return ClassFatal, IONone
	}
	return ClassDiscard, IONone
}

func isIOError(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		return true
	}
	var errno syscall.Errno
	return errors.As(err, &errno)
}

// Supervisor owns dialing the daemon with a fixed backoff between attempts.
type Supervisor struct {
	Addr       string
	Password   string
	MaxRetries uint // 0 retries forever
	Backoff    time.Duration

	dial  Dialer
	sleep func(time.Duration)
	debug bool
}

func NewSupervisor(addr, password string, maxRetries uint, dial Dialer, debug bool) *Supervisor {
	return &Supervisor{
		Addr:       addr,
		Password:   password,
		MaxRetries: maxRetries,
		Backoff:    reconnectBackoff,
		dial:       dial,
		sleep:      time.Sleep,
		debug:      debug,
	}
}

// Connect dials until it succeeds or the retry budget runs out, in which
// case the last dial error is returned.
func (s *Supervisor) Connect() (PlayerSource, error) {
	limit := "∞"
	if s.MaxRetries > 0 {
		limit = fmt.Sprint(s.MaxRetries)
	}

	for attempt := uint(1); ; attempt++ {
		src, err := s.dial(s.Addr, s.Password)
		if err == nil {
			if s.debug || attempt > 1 {
				log.Printf("✅ Connected to MPD at %s on attempt %d", s.Addr, attempt)
			}
			return src, nil
		}

		log.Printf("🔄 Connect attempt %d/%s failed: %v", attempt, limit, err)

		if s.MaxRetries > 0 && attempt >= s.MaxRetries {
			return nil, fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		s.sleep(s.Backoff)
	}
}
