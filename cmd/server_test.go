package cmd

import (
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

// startResolver runs UDP resolver on loopback until the test finishes and returns its address.
// It answers A questions with 127.0.0.1 after the delay, nx.example.org. does not exist and other types have no records.
func startResolver(t *testing.T, delay time.Duration) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &dns.Server{
		PacketConn:        pc,
		Handler:           answering(delay),
		NotifyStartedFunc: func() { close(started) },
	}
	go func() {
		_ = srv.ActivateAndServe()
	}()
	<-started
	t.Cleanup(func() {
		_ = srv.Shutdown()
	})
	return pc.LocalAddr().String()
}

func answering(delay time.Duration) dns.HandlerFunc {
	return func(w dns.ResponseWriter, r *dns.Msg) {
		ret := new(dns.Msg)
		ret.SetReply(r)
		q := r.Question[0]
		switch {
		case q.Name == "nx.example.org.":
			ret.Rcode = dns.RcodeNameError
		case q.Qtype == dns.TypeA:
			a, _ := dns.NewRR(q.Name + " 60 IN A 127.0.0.1")
			ret.Answer = append(ret.Answer, a)
		}

		time.Sleep(delay)
		_ = w.WriteMsg(ret)
	}
}
