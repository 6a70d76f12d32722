package dnsbench

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
)

const quicPrefix = "quic://"

// Question is a single DNS question directed to a resolver.
type Question struct {
	// Server is a normalized resolver address, see Resolver.IP for supported formats.
	Server string
	// Name is a fully qualified domain name.
	Name string
	// Type is a DNS record type, like dns.TypeA.
	Type uint16
}

// Answer holds the data of a successful response.
type Answer struct {
	// Records are the rdata of answer records matching the question type.
	Records []string
	// TTL is the lowest TTL of the matching answer records.
	TTL uint32
}

// Querier performs a single DNS query. A nil error means the response contains at least one record.
// Failures are reported by errors wrapping ErrTimeout, ErrNXDomain, ErrServFail, ErrRefused or ErrNoAnswer,
// any other error is considered as a generic query error. Implementations must be safe for concurrent use.
type Querier interface {
	Query(ctx context.Context, q Question) (Answer, error)
}

// QuerierFunc is an adapter to allow the use of ordinary functions as Querier.
type QuerierFunc func(ctx context.Context, q Question) (Answer, error)

// Query calls f(ctx, q).
func (f QuerierFunc) Query(ctx context.Context, q Question) (Answer, error) {
	return f(ctx, q)
}

// ClientOptions configure transports of the ClientQuerier.
type ClientOptions struct {
	TCP         bool
	DOT         bool
	DohMethod   string
	DohProtocol string
	Insecure    bool
	Recurse     bool
	Timeout     time.Duration
}

// ClientQuerier is the default Querier. It uses plain DNS, DoT, DoH or DoQ based on the format of the server address.
type ClientQuerier struct {
	opts ClientOptions

	mu      sync.Mutex
	queries map[string]queryFunc
}

// NewClientQuerier creates ClientQuerier with provided options.
func NewClientQuerier(opts ClientOptions) *ClientQuerier {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &ClientQuerier{opts: opts, queries: make(map[string]queryFunc)}
}

// Query sends the question to the server and converts the response.
func (c *ClientQuerier) Query(ctx context.Context, q Question) (Answer, error) {
	query := c.queryFunc(q.Server)

	msg := dns.Msg{}
	msg.SetQuestion(dns.Fqdn(q.Name), q.Type)
	msg.RecursionDesired = c.opts.Recurse
	if strings.HasPrefix(q.Server, quicPrefix) {
		// https://www.rfc-editor.org/rfc/rfc9250#section-4.2.1
		msg.Id = 0
	}

	resp, err := query(ctx, &msg)
	if err != nil {
		return Answer{}, transportError(ctx, err)
	}
	return answerFromResponse(&msg, resp)
}

func (c *ClientQuerier) queryFunc(server string) queryFunc {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.queries[server]; ok {
		return f
	}
	f := serverQueryFactory(server, c.opts)
	c.queries[server] = f
	return f
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(err, ErrTimeout) {
		return err
	}
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

func answerFromResponse(req, resp *dns.Msg) (Answer, error) {
	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return Answer{}, ErrNXDomain
	case dns.RcodeServerFailure:
		return Answer{}, ErrServFail
	case dns.RcodeRefused:
		return Answer{}, ErrRefused
	default:
		return Answer{}, fmt.Errorf("unexpected response code %s", dns.RcodeToString[resp.Rcode])
	}

	if resp.Id != req.Id {
		return Answer{}, errors.New("response ID mismatch")
	}

	qtype := req.Question[0].Qtype
	var ans Answer
	for _, rr := range resp.Answer {
		hdr := rr.Header()
		if qtype != dns.TypeANY && hdr.Rrtype != qtype {
			// CNAME chains and other records not asked for
			continue
		}
		if len(ans.Records) == 0 || hdr.Ttl < ans.TTL {
			ans.TTL = hdr.Ttl
		}
		ans.Records = append(ans.Records, strings.TrimPrefix(rr.String(), hdr.String()))
	}
	if len(ans.Records) == 0 {
		return Answer{}, ErrNoAnswer
	}
	return ans, nil
}

// ServerAddress normalizes the resolver address. Plain IP addresses get default port 53 (853 for DoT),
// DoH URLs without path get the default /dns-query path and DoQ addresses get default port 853.
func ServerAddress(ip string, dot bool) (string, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return "", errors.New("empty resolver address")
	}

	if ok, _ := isHTTPUrl(ip); ok {
		u, err := url.Parse(ip)
		if err != nil {
			return "", fmt.Errorf("invalid DoH URL '%s': %w", ip, err)
		}
		if u.Path == "" || u.Path == "/" {
			u.Path = "/dns-query"
		}
		return u.String(), nil
	}

	if strings.HasPrefix(ip, quicPrefix) {
		host := strings.TrimPrefix(ip, quicPrefix)
		if _, _, err := net.SplitHostPort(host); err != nil {
			// https://www.rfc-editor.org/rfc/rfc9250#section-4.1.1
			host = net.JoinHostPort(host, "853")
		}
		return quicPrefix + host, nil
	}

	if _, _, err := net.SplitHostPort(ip); err == nil {
		return ip, nil
	}
	if dot {
		// https://www.rfc-editor.org/rfc/rfc7858
		return net.JoinHostPort(ip, "853"), nil
	}
	return net.JoinHostPort(ip, "53"), nil
}

func isHTTPUrl(s string) (ok bool, network string) {
	if strings.HasPrefix(s, "http://") {
		return true, "http"
	}
	if strings.HasPrefix(s, "https://") {
		return true, "https"
	}
	return false, ""
}
