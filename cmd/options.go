package cmd

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/miekg/dns"
	"github.com/tantalor93/resolverbench/pkg/catalog"
	"github.com/tantalor93/resolverbench/pkg/dnsbench"
)

// runOptions are the flags shared by the commands executing benchmarks.
type runOptions struct {
	config string

	resolversFile string
	resolverNames []string
	category      string
	includeSystem bool

	domainsFile    string
	domains        []string
	domainCategory string

	types         []string
	iterations    int
	maxConcurrent int
	timeout       time.Duration
	retries       int
	retryDelay    time.Duration
	useCache      bool
	warmup        bool
	warmupFast    bool
	rate          int

	tcp         bool
	dot         bool
	dohMethod   string
	dohProtocol string
	insecure    bool
	recurse     bool

	requestLog     bool
	requestLogPath string
}

func (o *runOptions) registerConfig(cmd *kingpin.CmdClause) {
	cmd.Flag("config", "YAML configuration of the benchmark, see generate-config command. "+
		"The configuration defines resolvers, domains, record types and query policy, transport flags are still applied.").
		PlaceHolder("/path/to/config.yaml").StringVar(&o.config)
}

func (o *runOptions) registerResolvers(cmd *kingpin.CmdClause) {
	cmd.Flag("resolvers", "JSON or YAML file with the list of resolvers to benchmark, each having name and ip.").
		PlaceHolder("/path/to/resolvers.json").StringVar(&o.resolversFile)

	cmd.Flag("resolver", "Resolver to benchmark. Repeatable flag. Either a name of a built-in resolver (see list-resolvers command) "+
		"or name=address pair, for example 'local=127.0.0.1:53'. Addresses can also be DoH URLs like https://1.1.1.1/dns-query "+
		"or DoQ addresses like quic://dns.adguard-dns.com.").
		Short('r').StringsVar(&o.resolverNames)

	cmd.Flag("category", "Benchmark built-in resolvers of the category, see list-categories command.").
		StringVar(&o.category)

	cmd.Flag("include-system", "Include the system resolver from /etc/resolv.conf.").
		Default("false").BoolVar(&o.includeSystem)
}

func (o *runOptions) registerQueries(cmd *kingpin.CmdClause) {
	cmd.Flag("domains", "File with domains to query, one per line, lines starting with # are ignored. JSON array is accepted for .json files.").
		PlaceHolder("/path/to/domains.txt").StringVar(&o.domainsFile)

	cmd.Flag("domain", "Domain to query. Repeatable flag.").
		Short('d').StringsVar(&o.domains)

	cmd.Flag("domain-category", "Query built-in domains of the category, see list-categories command.").
		StringVar(&o.domainCategory)

	cmd.Flag("type", "Query type. Repeatable flag. If multiple query types are specified then each domain is queried for each type.").
		Short('t').Default(dnsbench.DefaultQueryType).EnumsVar(&o.types, getSupportedDNSTypes()...)

	cmd.Flag("iterations", "How many times the whole resolver × domain × type matrix is queried.").
		Short('n').Default(fmt.Sprint(dnsbench.DefaultIterations)).IntVar(&o.iterations)

	cmd.Flag("max-concurrent", "Maximum number of concurrent queries.").
		Short('c').Default(fmt.Sprint(dnsbench.DefaultMaxConcurrent)).IntVar(&o.maxConcurrent)

	cmd.Flag("timeout", "Timeout of a single query attempt.").
		Default(dnsbench.DefaultTimeout.String()).DurationVar(&o.timeout)

	cmd.Flag("retries", "Number of additional attempts after a failed query. NXDOMAIN and empty answers are never retried.").
		Default(fmt.Sprint(dnsbench.DefaultRetries)).IntVar(&o.retries)

	cmd.Flag("retry-delay", "Delay between attempts of the same query.").
		Default("0s").DurationVar(&o.retryDelay)

	cmd.Flag("use-cache", "Reuse successful answers of earlier iterations instead of querying again.").
		Default("false").BoolVar(&o.useCache)

	cmd.Flag("warmup", "Query the whole matrix once before the measured iterations.").
		Default("false").BoolVar(&o.warmup)

	cmd.Flag("warmup-fast", "Query only the first domain and type of each resolver before the measured iterations.").
		Default("false").BoolVar(&o.warmupFast)

	cmd.Flag("rate-limit", "Apply a global questions / second rate limit.").
		Short('l').Default("0").IntVar(&o.rate)

	cmd.Flag("tcp", "Use TCP for DNS requests.").Default("false").BoolVar(&o.tcp)

	cmd.Flag("dot", "Use DoT (DNS over TLS) for DNS requests.").Default("false").BoolVar(&o.dot)

	cmd.Flag("doh-method", "HTTP method to use for DoH requests. Supported values: get, post.").
		Default(dnsbench.PostHTTPMethod).EnumVar(&o.dohMethod, dnsbench.GetHTTPMethod, dnsbench.PostHTTPMethod)

	cmd.Flag("doh-protocol", "HTTP protocol to use for DoH requests. Supported values: 1.1, 2 and 3.").
		Default(dnsbench.HTTP1Proto).EnumVar(&o.dohProtocol, dnsbench.HTTP1Proto, dnsbench.HTTP2Proto, dnsbench.HTTP3Proto)

	cmd.Flag("insecure", "Disables server TLS certificate validation. Applicable for DoT, DoH and DoQ.").
		Default("false").BoolVar(&o.insecure)

	cmd.Flag("recurse", "Allow DNS recursion. Enabled by default.").
		Default("true").BoolVar(&o.recurse)

	cmd.Flag("log-requests", "Controls whether the benchmark logs individual query attempts.").
		Default("false").BoolVar(&o.requestLog)

	cmd.Flag("log-requests-path", "Specifies path to the file, where the query attempts will be logged.").
		Default(dnsbench.DefaultRequestLogPath).StringVar(&o.requestLogPath)
}

// benchmark creates the benchmark from the flags, resolvers are selected by the flags unless provided.
func (o *runOptions) benchmark(resolvers []dnsbench.Resolver) (dnsbench.Benchmark, error) {
	var b dnsbench.Benchmark
	if o.config != "" {
		cfg, err := catalog.LoadConfig(o.config)
		if err != nil {
			return dnsbench.Benchmark{}, err
		}
		b = cfg.Benchmark()
		if len(resolvers) > 0 {
			b.Resolvers = resolvers
		}
	} else {
		if len(resolvers) == 0 {
			var err error
			if resolvers, err = o.resolvers(); err != nil {
				return dnsbench.Benchmark{}, err
			}
		}
		domains, err := o.domainNames()
		if err != nil {
			return dnsbench.Benchmark{}, err
		}
		b = dnsbench.Benchmark{
			Resolvers:     resolvers,
			Domains:       domains,
			Types:         o.types,
			Iterations:    o.iterations,
			MaxConcurrent: o.maxConcurrent,
			Timeout:       o.timeout,
			Retries:       o.retries,
			RetryDelay:    o.retryDelay,
			UseCache:      o.useCache,
			Warmup:        o.warmup,
			WarmupFast:    o.warmupFast,
		}
	}

	if o.includeSystem {
		b.Resolvers = append(slices.Clone(b.Resolvers), dnsbench.SystemResolver())
	}
	b.Rate = o.rate
	b.TCP = o.tcp
	b.DOT = o.dot
	b.DohMethod = o.dohMethod
	b.DohProtocol = o.dohProtocol
	b.Insecure = o.insecure
	b.Recurse = o.recurse
	b.RequestLogEnabled = o.requestLog
	b.RequestLogPath = o.requestLogPath
	return b, nil
}

func (o *runOptions) resolvers() ([]dnsbench.Resolver, error) {
	switch {
	case o.resolversFile != "":
		return catalog.LoadResolvers(o.resolversFile)
	case len(o.resolverNames) > 0:
		return parseResolvers(o.resolverNames)
	case o.category != "":
		infos := catalog.ResolversByCategory(o.category)
		if len(infos) == 0 {
			return nil, fmt.Errorf("unknown resolver category '%s', use one of %s",
				o.category, strings.Join(catalog.Categories().Resolvers, ", "))
		}
		res := make([]dnsbench.Resolver, 0, len(infos))
		for _, r := range infos {
			res = append(res, r.Resolver())
		}
		return res, nil
	default:
		return catalog.DefaultResolvers(), nil
	}
}

func (o *runOptions) domainNames() ([]string, error) {
	switch {
	case o.domainsFile != "":
		return catalog.LoadDomains(o.domainsFile)
	case len(o.domains) > 0:
		return o.domains, nil
	case o.domainCategory != "":
		ds := catalog.DomainsByCategory(o.domainCategory)
		if len(ds) == 0 {
			return nil, fmt.Errorf("unknown domain category '%s', use one of %s",
				o.domainCategory, strings.Join(catalog.Categories().Domains, ", "))
		}
		return catalog.Names(ds), nil
	default:
		return catalog.SampleDomains(), nil
	}
}

// parseResolvers resolves each argument either as name=address pair or as a name of a built-in resolver.
func parseResolvers(args []string) ([]dnsbench.Resolver, error) {
	res := make([]dnsbench.Resolver, 0, len(args))
	for _, arg := range args {
		if name, addr, ok := strings.Cut(arg, "="); ok {
			name, addr = strings.TrimSpace(name), strings.TrimSpace(addr)
			if name == "" || addr == "" {
				return nil, fmt.Errorf("invalid resolver '%s', expected name=address", arg)
			}
			res = append(res, dnsbench.Resolver{Name: name, IP: addr})
			continue
		}
		found, err := catalog.FindResolvers(arg)
		if err != nil {
			return nil, fmt.Errorf("%w, see list-resolvers command for built-in resolvers", err)
		}
		res = append(res, found...)
	}
	return res, nil
}

func getSupportedDNSTypes() []string {
	keys := make([]string, 0, len(dns.StringToType))
	for k := range dns.StringToType {
		keys = append(keys, k)
	}
	return keys
}
