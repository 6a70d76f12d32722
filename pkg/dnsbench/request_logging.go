package dnsbench

import (
	"fmt"
	"log"
	"os"
)

func openRequestLog(path string) (*log.Logger, func() error, error) {
	// nolint:gosec
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open request log '%s': %w", path, err)
	}
	return log.New(f, "", log.LstdFlags), f.Close, nil
}

func logRequest(logger *log.Logger, attempt int, res QueryResult) {
	errstr := "<nil>"
	if res.ErrorMessage != "" {
		errstr = res.ErrorMessage
	}
	logger.Printf("resolver:[%s] qid:[%s] qname:[%s] qtype:[%s] attempt:[%d] status:[%s] answers:[%d] err:[%s] duration:[%v]",
		res.ResolverName, res.QueryID, res.Domain, res.RecordType, attempt, res.Status, len(res.Answers), errstr, res.Latency())
}
