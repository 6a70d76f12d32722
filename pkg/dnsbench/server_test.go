package dnsbench_test

import (
	"net"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
)

// startResolver serves the handler on a random loopback port until the test finishes and returns the address.
func startResolver(t *testing.T, network string, handler dns.HandlerFunc) string {
	t.Helper()

	srv := &dns.Server{Net: network, Handler: handler}
	var addr string
	if network == dnsbench.UDPTransport {
		pc, err := net.ListenPacket("udp", "127.0.0.1:0")
		require.NoError(t, err)
		srv.PacketConn = pc
		addr = pc.LocalAddr().String()
	} else {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		srv.Listener = l
		addr = l.Addr().String()
	}

	started := make(chan struct{})
	srv.NotifyStartedFunc = func() { close(started) }
	go func() {
		_ = srv.ActivateAndServe()
	}()
	<-started
	t.Cleanup(func() {
		_ = srv.Shutdown()
	})
	return addr
}

// rr parses a record in zone file format.
func rr(s string) dns.RR {
	r, err := dns.NewRR(s)
	if err != nil {
		panic(err)
	}
	return r
}
