package dnsbench_test

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
)

func TestBenchmark_RunRequestLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.log")

	var calls atomic.Int32
	bench := dnsbench.Benchmark{
		Resolvers: []dnsbench.Resolver{cloudflare},
		Domains:   []string{"example.com"},
		Retries:   1,
		Querier: dnsbench.QuerierFunc(func(context.Context, dnsbench.Question) (dnsbench.Answer, error) {
			if calls.Add(1) == 1 {
				return dnsbench.Answer{}, dnsbench.ErrServFail
			}
			return dnsbench.Answer{Records: []string{"127.0.0.1"}}, nil
		}),
		RequestLogEnabled: true,
		RequestLogPath:    path,
		Silent:            true,
	}

	res, err := bench.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 1)

	lines := readLines(t, path)
	require.Len(t, lines, 2)

	prefix := `^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2} resolver:\[Cloudflare\] qid:\[[0-9a-f-]{36}\] qname:\[example.com\] qtype:\[A\] `
	assert.Regexp(t, regexp.MustCompile(prefix+`attempt:\[1\] status:\[SERVFAIL\] answers:\[0\] err:\[SERVFAIL\] duration:\[.+\]$`), lines[0])
	assert.Regexp(t, regexp.MustCompile(prefix+`attempt:\[2\] status:\[SUCCESS\] answers:\[1\] err:\[<nil>\] duration:\[.+\]$`), lines[1])
	assert.Contains(t, lines[1], "qid:["+res[0].QueryID+"]")
}

func TestBenchmark_RunRequestLogAttemptsShareQueryID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.log")

	var calls atomic.Int32
	bench := dnsbench.Benchmark{
		Resolvers: []dnsbench.Resolver{cloudflare},
		Domains:   []string{"example.com"},
		Retries:   2,
		Querier: dnsbench.QuerierFunc(func(context.Context, dnsbench.Question) (dnsbench.Answer, error) {
			if calls.Add(1) <= 2 {
				return dnsbench.Answer{}, dnsbench.ErrServFail
			}
			return dnsbench.Answer{Records: []string{"127.0.0.1"}}, nil
		}),
		RequestLogEnabled: true,
		RequestLogPath:    path,
		Silent:            true,
	}

	res, err := bench.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, dnsbench.StatusSuccess, res[0].Status)

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	for i, line := range lines {
		assert.Contains(t, line, "qid:["+res[0].QueryID+"]", "attempt %d", i+1)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestBenchmark_RunRequestLogUnwritable(t *testing.T) {
	bench := dnsbench.Benchmark{
		Resolvers:         []dnsbench.Resolver{cloudflare},
		Domains:           []string{"example.com"},
		Querier:           answering("127.0.0.1"),
		RequestLogEnabled: true,
		RequestLogPath:    filepath.Join(t.TempDir(), "missing", "requests.log"),
		Silent:            true,
	}

	_, err := bench.Run(context.Background())

	require.ErrorIs(t, err, dnsbench.ErrConfiguration)
}
