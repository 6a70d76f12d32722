package dnsbench

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/tantalor93/resolverbench/pkg/printutils"
	"go.uber.org/ratelimit"
)

// Benchmark is representation of benchmark run configuration. The same Benchmark can be run repeatedly,
// Run never modifies it.
type Benchmark struct {
	// Resolvers to benchmark, at least one is required.
	Resolvers []Resolver
	// Domains to query, at least one is required.
	Domains []string
	// Types are the DNS record types queried for each domain, DefaultQueryType is used when empty.
	Types []string

	// Iterations is how many times the whole resolver × domain × type matrix is queried, DefaultIterations when 0.
	Iterations int
	// MaxConcurrent is the maximum number of queries in flight, DefaultMaxConcurrent when 0.
	MaxConcurrent int
	// Timeout of a single query attempt, DefaultTimeout when 0.
	Timeout time.Duration
	// Retries is the number of additional attempts after a failed attempt.
	Retries int
	// RetryDelay is a fixed delay between attempts of the same query.
	RetryDelay time.Duration

	// UseCache enables reusing of successful answers from earlier iterations instead of querying again.
	UseCache bool
	// Warmup runs the whole matrix once before measured iterations, the results are discarded.
	Warmup bool
	// WarmupFast runs only the first domain and the first type for each resolver before measured iterations.
	WarmupFast bool

	// Rate is a global limit of queries per second, 0 means unlimited.
	Rate int

	Recurse     bool
	TCP         bool
	DOT         bool
	DohMethod   string
	DohProtocol string
	Insecure    bool

	// RequestLogEnabled enables logging of each query attempt into the RequestLogPath.
	RequestLogEnabled bool
	RequestLogPath    string

	// Querier performs the DNS queries, ClientQuerier configured by the transport options is used when nil.
	Querier Querier

	// Progress is called after each emitted QueryResult, possibly from multiple goroutines at once.
	Progress func(QueryResult)

	// Writer is where the benchmark header is written, os.Stdout when nil.
	Writer io.Writer
	Silent bool

	// internal variables so we do not have to parse the configuration with each query.
	servers []string
	qtypes  []uint16
	names   []string
}

func (b *Benchmark) init() error {
	if len(b.Resolvers) == 0 {
		return fmt.Errorf("%w: no resolvers specified", ErrConfiguration)
	}
	if len(b.Domains) == 0 {
		return fmt.Errorf("%w: no domains specified", ErrConfiguration)
	}
	if b.Iterations < 0 {
		return fmt.Errorf("%w: number of iterations must not be negative", ErrConfiguration)
	}
	if b.MaxConcurrent < 0 {
		return fmt.Errorf("%w: maximum concurrency must not be negative", ErrConfiguration)
	}
	if b.Retries < 0 {
		return fmt.Errorf("%w: number of retries must not be negative", ErrConfiguration)
	}
	if b.Timeout < 0 || b.RetryDelay < 0 {
		return fmt.Errorf("%w: timeouts and delays must not be negative", ErrConfiguration)
	}
	if b.Rate < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrConfiguration)
	}
	switch b.DohMethod {
	case "", GetHTTPMethod, PostHTTPMethod:
	default:
		return fmt.Errorf("%w: unsupported DoH method '%s'", ErrConfiguration, b.DohMethod)
	}
	switch b.DohProtocol {
	case "", HTTP1Proto, HTTP2Proto, HTTP3Proto:
	default:
		return fmt.Errorf("%w: unsupported DoH protocol '%s'", ErrConfiguration, b.DohProtocol)
	}

	if b.Iterations == 0 {
		b.Iterations = DefaultIterations
	}
	if b.MaxConcurrent == 0 {
		b.MaxConcurrent = DefaultMaxConcurrent
	}
	if b.Timeout == 0 {
		b.Timeout = DefaultTimeout
	}
	if len(b.Types) == 0 {
		b.Types = []string{DefaultQueryType}
	}
	if b.RequestLogEnabled && b.RequestLogPath == "" {
		b.RequestLogPath = DefaultRequestLogPath
	}
	if b.Writer == nil {
		b.Writer = os.Stdout
	}

	b.servers = make([]string, len(b.Resolvers))
	for i, r := range b.Resolvers {
		server, err := ServerAddress(r.IP, b.DOT)
		if err != nil {
			return fmt.Errorf("%w: resolver '%s': %w", ErrConfiguration, r.Name, err)
		}
		b.servers[i] = server
	}

	b.qtypes = make([]uint16, len(b.Types))
	types := make([]string, len(b.Types))
	for i, t := range b.Types {
		t = strings.ToUpper(strings.TrimSpace(t))
		qtype, ok := dns.StringToType[t]
		if !ok {
			return fmt.Errorf("%w: unknown record type '%s'", ErrConfiguration, t)
		}
		b.qtypes[i] = qtype
		types[i] = t
	}
	b.Types = types

	b.names = make([]string, len(b.Domains))
	domains := make([]string, len(b.Domains))
	for i, d := range b.Domains {
		d = strings.TrimSpace(d)
		if d == "" {
			return fmt.Errorf("%w: empty domain name", ErrConfiguration)
		}
		domains[i] = d
		b.names[i] = dns.Fqdn(d)
	}
	b.Domains = domains

	if b.Querier == nil {
		b.Querier = NewClientQuerier(ClientOptions{
			TCP:         b.TCP,
			DOT:         b.DOT,
			DohMethod:   b.DohMethod,
			DohProtocol: b.DohProtocol,
			Insecure:    b.Insecure,
			Recurse:     b.Recurse,
			Timeout:     b.Timeout,
		})
	}
	return nil
}

// Run executes the benchmark. If the benchmark is unable to start, the error wrapping ErrConfiguration is returned,
// otherwise one QueryResult for each query task of measured iterations is returned, ordered by iteration, resolver,
// domain and record type. Failures of individual queries are part of the results and never abort the run.
func (b Benchmark) Run(ctx context.Context) ([]QueryResult, error) {
	if err := b.init(); err != nil {
		return nil, err
	}

	var limit ratelimit.Limiter
	limits := ""
	if b.Rate > 0 {
		limit = ratelimit.New(b.Rate)
		limits = fmt.Sprintf("(limited to %s QPS)", printutils.HighlightSprint(b.Rate))
	}

	var requestLog *log.Logger
	if b.RequestLogEnabled {
		logger, closeLog, err := openRequestLog(b.RequestLogPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		defer closeLog()
		requestLog = logger
	}

	if !b.Silent {
		printutils.NeutralFprintf(b.Writer, "Benchmarking %s resolvers using %s domains and %s record types, %s iterations with %s concurrent queries %s\n",
			printutils.HighlightSprint(len(b.Resolvers)), printutils.HighlightSprint(len(b.Domains)),
			printutils.HighlightSprint(len(b.Types)), printutils.HighlightSprint(b.Iterations),
			printutils.HighlightSprint(b.MaxConcurrent), limits)
	}

	e := &executor{
		querier:       b.Querier,
		maxConcurrent: b.MaxConcurrent,
		timeout:       b.Timeout,
		retries:       b.Retries,
		retryDelay:    b.RetryDelay,
		useCache:      b.UseCache,
		limit:         limit,
		requestLog:    requestLog,
	}

	if b.Warmup || b.WarmupFast {
		e.dispatch(ctx, b.warmupTasks(), nil)
	}

	e.progress = b.Progress
	cache := make(map[cacheKey]QueryResult)
	results := make([]QueryResult, 0, b.Iterations*len(b.Resolvers)*len(b.names)*len(b.qtypes))
	for it := 0; it < b.Iterations; it++ {
		batch := e.dispatch(ctx, b.tasks(it), cache)
		for _, r := range batch {
			k := keyOf(r)
			if _, ok := cache[k]; !ok && r.Success() {
				cache[k] = r
			}
		}
		results = append(results, batch...)
	}
	return results, nil
}

// Tasks returns the number of query tasks of measured iterations the benchmark will execute.
func (b Benchmark) Tasks() int {
	iterations := b.Iterations
	if iterations == 0 {
		iterations = DefaultIterations
	}
	types := len(b.Types)
	if types == 0 {
		types = 1
	}
	return iterations * len(b.Resolvers) * len(b.Domains) * types
}

func (b *Benchmark) tasks(iteration int) []task {
	tasks := make([]task, 0, len(b.Resolvers)*len(b.names)*len(b.qtypes))
	for i, r := range b.Resolvers {
		for j := range b.names {
			for k := range b.qtypes {
				tasks = append(tasks, task{
					resolver:   r,
					server:     b.servers[i],
					domain:     b.Domains[j],
					name:       b.names[j],
					recordType: b.Types[k],
					qtype:      b.qtypes[k],
					iteration:  iteration,
				})
			}
		}
	}
	return tasks
}

func (b *Benchmark) warmupTasks() []task {
	if !b.WarmupFast {
		return b.tasks(0)
	}
	tasks := make([]task, 0, len(b.Resolvers))
	for i, r := range b.Resolvers {
		tasks = append(tasks, task{
			resolver:   r,
			server:     b.servers[i],
			domain:     b.Domains[0],
			name:       b.names[0],
			recordType: b.Types[0],
			qtype:      b.qtypes[0],
		})
	}
	return tasks
}
