package dnsbench

import (
	"context"
	"errors"
	"net"
)

var (
	// ErrConfiguration is returned by Benchmark.Run when the benchmark cannot be started.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrTimeout signals that the query did not complete in time.
	ErrTimeout = errors.New("timeout")
	// ErrNXDomain signals NXDOMAIN response.
	ErrNXDomain = errors.New("NXDOMAIN")
	// ErrServFail signals SERVFAIL response.
	ErrServFail = errors.New("SERVFAIL")
	// ErrRefused signals REFUSED response.
	ErrRefused = errors.New("REFUSED")
	// ErrNoAnswer signals successful response without records of the requested type.
	ErrNoAnswer = errors.New("no answer")
)

// Classify maps an error returned by Querier to the query status. Nil error means success.
func Classify(err error) QueryStatus {
	var netErr net.Error
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrNXDomain):
		return StatusNXDomain
	case errors.Is(err, ErrServFail):
		return StatusServFail
	case errors.Is(err, ErrRefused):
		return StatusRefused
	case errors.Is(err, ErrNoAnswer):
		return StatusNoAnswer
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return StatusTimeout
	default:
		return StatusError
	}
}

// retryable reports whether the failed attempt should be repeated.
// NXDOMAIN and NOANSWER are authoritative answers, asking again yields the same result.
func retryable(err error) bool {
	switch Classify(err) {
	case StatusSuccess, StatusNXDomain, StatusNoAnswer:
		return false
	default:
		return true
	}
}

func errString(err error) string {
	var errorString string
	var netOpErr *net.OpError
	var resolveErr *net.DNSError

	switch {
	case errors.As(err, &resolveErr):
		errorString = resolveErr.Err + " " + resolveErr.Name
	case errors.As(err, &netOpErr):
		errorString = netOpErr.Op + " " + netOpErr.Net
		if netOpErr.Addr != nil {
			errorString += " " + netOpErr.Addr.String()
		}
		if netOpErr.Timeout() {
			errorString = ErrTimeout.Error() + ": " + errorString
		}
	default:
		errorString = err.Error()
	}
	return errorString
}
