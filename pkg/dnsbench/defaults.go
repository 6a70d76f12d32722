package dnsbench

import (
	"time"
)

const (
	// DefaultRequestLogPath is a default path to the file, where the requests will be logged.
	DefaultRequestLogPath = "requests.log"

	// DefaultTimeout is a default timeout of a single query attempt.
	DefaultTimeout = 5 * time.Second

	// DefaultRetries is a default number of additional attempts after a failed query.
	DefaultRetries = 2

	// DefaultMaxConcurrent is a default maximum number of queries in flight.
	DefaultMaxConcurrent = 100

	// DefaultIterations is a default number of measured iterations.
	DefaultIterations = 1

	// DefaultQueryType is a default type for queries if no other is specified.
	DefaultQueryType = "A"

	// DefaultEdns0BufferSize default EDNS0 buffer size according to the http://www.dnsflagday.net/2020/
	DefaultEdns0BufferSize = 1232
)

const (
	// UDPTransport represents plain DNS over UDP.
	UDPTransport = "udp"
	// TCPTransport represents plain DNS over TCP.
	TCPTransport = "tcp"
	// TLSTransport represents DNS over TLS (DoT).
	TLSTransport = "tcp-tls"
)

const (
	// GetHTTPMethod represents GET HTTP method used for DoH.
	GetHTTPMethod = "get"
	// PostHTTPMethod represents POST HTTP method used for DoH.
	PostHTTPMethod = "post"
)

const (
	// HTTP1Proto represents HTTP/1.1 used for DoH.
	HTTP1Proto = "1.1"
	// HTTP2Proto represents HTTP/2 used for DoH.
	HTTP2Proto = "2"
	// HTTP3Proto represents HTTP/3 used for DoH.
	HTTP3Proto = "3"
)
