/*
Package dnsbench contains the query execution engine used to benchmark DNS resolvers.
A benchmark is described by the Benchmark struct, which lists the resolvers, domains and record types
to query together with the concurrency, timeout, retry and caching policy. Benchmark.Run executes the
whole resolver × domain × record type × iteration matrix and returns one QueryResult per query task.
The actual DNS exchange is delegated to a Querier, the default one supports plain DNS, DoT, DoH and DoQ.
*/
package dnsbench
