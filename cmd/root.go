package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tantalor93/resolverbench/internal/sysutil"
	"github.com/tantalor93/resolverbench/pkg/printutils"
)

var (
	// Version is set during release of project during build process.
	Version = "development"

	author = "Ondrej Benkovsky <obenky@gmail.com>"
)

// fileNoBuffer is the number of file descriptors reserved for other purposes than sockets of the queries.
const fileNoBuffer = 64

// command is a single subcommand of the application.
type command interface {
	run(ctx context.Context, out, errOut io.Writer) error
}

type globalOptions struct {
	color      bool
	prometheus string
}

type application struct {
	app      *kingpin.Application
	global   globalOptions
	commands map[string]command
}

func newApplication() *application {
	a := &application{
		app:      kingpin.New("resolverbench", "Benchmark, compare and monitor DNS resolvers.").Author(author),
		commands: make(map[string]command),
	}
	a.app.Version(Version)

	a.app.Flag("color", "ANSI Color output. Enabled by default.").
		Default("true").BoolVar(&a.global.color)

	a.app.Flag("prometheus", "Enables Prometheus metrics endpoint on the specified address. For example :8080 or localhost:8080. "+
		"The endpoint is available at /metrics path.").
		PlaceHolder(":8080").StringVar(&a.global.prometheus)

	a.register(newBenchmarkCommand)
	a.register(newMonitoringCommand)
	a.register(newTopCommand)
	a.register(newCompareCommand)
	a.register(newListDefaultsCommand)
	a.register(newListResolversCommand)
	a.register(newListDomainsCommand)
	a.register(newListCategoriesCommand)
	a.register(newGenerateConfigCommand)
	return a
}

func (a *application) register(newCommand func(app *kingpin.Application) (*kingpin.CmdClause, command)) {
	clause, cmd := newCommand(a.app)
	a.commands[clause.FullCommand()] = cmd
}

// run parses the arguments and executes the selected command.
func (a *application) run(ctx context.Context, args []string, out, errOut io.Writer) error {
	a.app.UsageWriter(errOut)
	a.app.ErrorWriter(errOut)
	selected, err := a.app.Parse(args)
	if err != nil {
		return err
	}

	if !a.global.color {
		color.NoColor = true
	}

	if a.global.prometheus != "" {
		stop := serveMetrics(a.global.prometheus, errOut)
		defer stop()
	}

	cmd, ok := a.commands[selected]
	if !ok {
		return fmt.Errorf("unknown command '%s'", selected)
	}
	return cmd.run(ctx, out, errOut)
}

// Execute starts main logic of command.
func Execute() {
	sigsInt := make(chan os.Signal, 8)
	signal.Notify(sigsInt, syscall.SIGINT)

	defer close(sigsInt)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_, ok := <-sigsInt
		if !ok {
			// standard exit based on channel close
			return
		}
		fmt.Fprintf(os.Stderr, "\nCancelling ^C, again to terminate now.\n")
		cancel()
		<-sigsInt
		os.Exit(1)
	}()

	if err := newApplication().run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		printutils.ErrFprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
}

func serveMetrics(addr string, errOut io.Writer) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			printutils.ErrFprintf(errOut, "Failed to serve Prometheus metrics: %s\n", err.Error())
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

// writeFile creates the file and writes its content using write.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file '%s': %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("failed to write file '%s': %w", path, err)
	}
	return nil
}

// checkFileLimit verifies that the process can open enough sockets for the requested concurrency.
func checkFileLimit(concurrency int, errOut io.Writer) error {
	lim, err := sysutil.RlimitNofile()
	if err != nil {
		printutils.WarnFprintf(errOut, "Cannot check limit of number of files. Skipping check. Please make sure it is sufficient manually. %s\n", err.Error())
		return nil
	}
	needed := uint64(concurrency) + uint64(fileNoBuffer)
	if lim < needed {
		return fmt.Errorf("current process limit for number of files is %d and insufficient for level of requested concurrency %d", lim, concurrency)
	}
	return nil
}
