package dnsbench

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"

	"github.com/miekg/dns"
	"github.com/quic-go/quic-go/http3"
	"github.com/tantalor93/doh-go/doh"
	"github.com/tantalor93/doq-go/doq"
	"golang.org/x/net/http2"
)

type queryFunc func(context.Context, *dns.Msg) (*dns.Msg, error)

func serverQueryFactory(server string, opts ClientOptions) queryFunc {
	switch {
	case strings.HasPrefix(server, quicPrefix):
		return getDoQClient(strings.TrimPrefix(server, quicPrefix), opts).Send
	default:
		if ok, _ := isHTTPUrl(server); ok {
			return dohQuery(server, opts)
		}
		return dnsQuery(server, opts)
	}
}

func dnsQuery(server string, opts ClientOptions) queryFunc {
	dnsClient := getDNSClient(opts)
	return func(ctx context.Context, msg *dns.Msg) (*dns.Msg, error) {
		r, _, err := dnsClient.ExchangeContext(ctx, msg, server)
		return r, err
	}
}

func dohQuery(server string, opts ClientOptions) queryFunc {
	var tr http.RoundTripper
	switch opts.DohProtocol {
	case HTTP3Proto:
		// nolint:gosec
		tr = &http3.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.Insecure}}
	case HTTP2Proto:
		// nolint:gosec
		tr = &http2.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.Insecure}}
	case HTTP1Proto:
		fallthrough
	default:
		// nolint:gosec
		tr = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.Insecure}}
	}
	c := http.Client{Transport: tr, Timeout: opts.Timeout}
	dohClient := doh.NewClient(server, doh.WithHTTPClient(&c))

	switch opts.DohMethod {
	case GetHTTPMethod:
		return dohClient.SendViaGet
	case PostHTTPMethod:
		fallthrough
	default:
		return dohClient.SendViaPost
	}
}

func getDoQClient(server string, opts ClientOptions) *doq.Client {
	h, _, _ := net.SplitHostPort(server)
	return doq.NewClient(server,
		// nolint:gosec
		doq.WithTLSConfig(&tls.Config{ServerName: h, InsecureSkipVerify: opts.Insecure}),
		doq.WithReadTimeout(opts.Timeout),
		doq.WithWriteTimeout(opts.Timeout),
		doq.WithConnectTimeout(opts.Timeout),
	)
}

func getDNSClient(opts ClientOptions) *dns.Client {
	network := UDPTransport
	if opts.TCP {
		network = TCPTransport
	}
	if opts.DOT {
		network = TLSTransport
	}

	return &dns.Client{
		Net:     network,
		Timeout: opts.Timeout,
		UDPSize: DefaultEdns0BufferSize,
		// nolint:gosec
		TLSConfig: &tls.Config{InsecureSkipVerify: opts.Insecure},
	}
}
