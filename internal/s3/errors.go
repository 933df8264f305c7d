package s3

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/aws/smithy-go"
)

// ErrTransient marks transport and rate-limit conditions that are worth
// retrying. Everything else that fails a listing is wrapped as
// ErrFatalListing and ends the current target immediately.
var (
	ErrTransient    = errors.New("transient storage error")
	ErrFatalListing = errors.New("listing failed")
)

var transientAPICodes = map[string]struct{}{
	"SlowDown":                {},
	"Throttling":              {},
	"ThrottlingException":     {},
	"RequestTimeout":          {},
	"RequestTimeoutException": {},
	"InternalError":           {},
	"ServiceUnavailable":      {},
	"503":                     {},
}

var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"connection closed",
	"broken pipe",
	"i/o timeout",
	"timeout",
	"no such host",
	"network is unreachable",
	"temporary failure",
	"unexpected eof",
	"tls handshake",
}

func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if _, ok := transientAPICodes[apiErr.ErrorCode()]; ok {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

func WrapTransient(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrTransient, msg, err)
}

func WrapFatalListing(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrFatalListing, msg, err)
}
