package dnsbench

import (
	"context"
	"errors"
	"log"
	"slices"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	"go.uber.org/ratelimit"
)

// task is a single query of the benchmark matrix.
type task struct {
	resolver   Resolver
	server     string
	domain     string
	name       string
	recordType string
	qtype      uint16
	iteration  int
}

type cacheKey struct {
	resolverName string
	resolverIP   string
	domain       string
	recordType   string
}

func (t task) key() cacheKey {
	return cacheKey{resolverName: t.resolver.Name, resolverIP: t.resolver.IP, domain: t.domain, recordType: t.recordType}
}

func keyOf(r QueryResult) cacheKey {
	return cacheKey{resolverName: r.ResolverName, resolverIP: r.ResolverIP, domain: r.Domain, recordType: r.RecordType}
}

type executor struct {
	querier       Querier
	maxConcurrent int
	timeout       time.Duration
	retries       int
	retryDelay    time.Duration
	useCache      bool
	limit         ratelimit.Limiter
	requestLog    *log.Logger
	progress      func(QueryResult)
}

// dispatch executes the tasks using at most maxConcurrent workers and returns results in the order of tasks.
// The cache is only read here, it must not be modified until dispatch returns.
func (e *executor) dispatch(ctx context.Context, tasks []task, cache map[cacheKey]QueryResult) []QueryResult {
	results := make([]QueryResult, len(tasks))
	pool := workerpool.New(e.maxConcurrent)
	for i := range tasks {
		pool.Submit(func() {
			// each task owns its own slot in results
			results[i] = e.execute(ctx, tasks[i], cache)
			observeResult(results[i])
			if e.progress != nil {
				e.progress(results[i])
			}
		})
	}
	pool.StopWait()
	return results
}

func (e *executor) execute(ctx context.Context, t task, cache map[cacheKey]QueryResult) QueryResult {
	if e.useCache && t.iteration > 0 {
		if cached, ok := cache[t.key()]; ok {
			return cacheHit(cached, t)
		}
	}

	// shared by all attempts of the task
	id := uuid.NewString()
	var res QueryResult
	attempts := 0
	err := retry.Do(
		func() error {
			attempts++
			var err error
			res, err = e.attempt(ctx, t, id)
			if e.requestLog != nil {
				logRequest(e.requestLog, attempts, res)
			}
			return err
		},
		retry.Attempts(uint(e.retries)+1),
		retry.Delay(e.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.Context(ctx),
	)
	if attempts == 0 {
		// context was done before the first attempt
		now := time.Now()
		res = failedResult(t, id, now, now, err)
	}
	return res
}

func (e *executor) attempt(ctx context.Context, t task, id string) (QueryResult, error) {
	if e.limit != nil {
		e.limit.Take()
	}

	attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	ans, err := e.querier.Query(attemptCtx, Question{Server: t.server, Name: t.name, Type: t.qtype})
	end := time.Now()
	if err == nil && len(ans.Records) == 0 {
		err = ErrNoAnswer
	}

	var res QueryResult
	if err != nil {
		res = failedResult(t, id, start, end, err)
	} else {
		ttl := ans.TTL
		res = newResult(t, id, start, end)
		res.Status = StatusSuccess
		res.Answers = slices.Clone(ans.Records)
		res.TTL = &ttl
	}
	observeAttempt(res)
	return res, err
}

func newResult(t task, id string, start, end time.Time) QueryResult {
	return QueryResult{
		ResolverIP:   t.resolver.IP,
		ResolverName: t.resolver.Name,
		Domain:       t.domain,
		RecordType:   t.recordType,
		StartTime:    start,
		EndTime:      end,
		LatencyMs:    millis(end.Sub(start)),
		Answers:      []string{},
		Iteration:    t.iteration,
		QueryID:      id,
	}
}

func failedResult(t task, id string, start, end time.Time, err error) QueryResult {
	if err == nil {
		err = errors.New("query was not executed")
	}
	res := newResult(t, id, start, end)
	res.Status = Classify(err)
	if res.Status == StatusSuccess {
		res.Status = StatusError
	}
	res.ErrorMessage = errString(err)
	return res
}

func cacheHit(cached QueryResult, t task) QueryResult {
	start := time.Now()
	res := newResult(t, uuid.NewString(), start, start)
	res.Status = StatusSuccess
	res.Answers = slices.Clone(cached.Answers)
	if cached.TTL != nil {
		ttl := *cached.TTL
		res.TTL = &ttl
	}
	res.CacheHit = true
	res.EndTime = time.Now()
	res.LatencyMs = millis(res.EndTime.Sub(start))
	return res
}
