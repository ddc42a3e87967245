// Command sparsela solves a sparse linear system stored as triplet files.
//
//	sparsela -A a.dat -b b.dat -method cgnr -offset 1 -out x.dat
//
// Inputs and the output are read from and written to -store, which is a
// local directory (default: the working directory), s3://bucket/prefix or
// minio://host:port/bucket/prefix. Names ending in .zst or .lz4 are
// compressed. With -journal-table the outcome is appended to a DynamoDB
// solve journal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/sparsela"
	"github.com/hupe1980/sparsela/blobstore"
	"github.com/hupe1980/sparsela/journal"
	"github.com/hupe1980/sparsela/journal/dynamodb"
)

type cliConfig struct {
	matrix       string
	rhs          string
	guess        string
	method       string
	offset       int
	maxIter      int
	tol          float64
	printFreq    int
	param        float64
	verbosity    int
	logFile      string
	store        string
	out          string
	journalTable string
	system       string
}

func parseFlags(args []string, stderr io.Writer) (*cliConfig, error) {
	fs := flag.NewFlagSet("sparsela", flag.ContinueOnError)
	fs.SetOutput(stderr)

	c := &cliConfig{}
	fs.StringVar(&c.matrix, "A", "", "matrix triplet blob (required)")
	fs.StringVar(&c.rhs, "b", "", "right-hand side blob (required)")
	fs.StringVar(&c.guess, "x0", "", "initial guess blob (default: zeros)")
	fs.StringVar(&c.method, "method", "CGNR", "solver method: CG, CGNR, TCGNR or IRLS")
	fs.IntVar(&c.offset, "offset", 0, "index offset of the triplet files (1 for 1-based)")
	fs.IntVar(&c.maxIter, "max-iter", sparsela.DefaultMaxIterations, "maximum number of iterations")
	fs.Float64Var(&c.tol, "tol", sparsela.DefaultTolerance, "convergence tolerance")
	fs.IntVar(&c.printFreq, "print-freq", sparsela.DefaultPrintFrequency, "iterations between progress lines (0 disables)")
	fs.Float64Var(&c.param, "param", sparsela.DefaultParam, "TCGNR regularization or IRLS p")
	fs.IntVar(&c.verbosity, "verbosity", sparsela.DefaultVerbosity, "log verbosity 1 (errors) to 5 (debug); 4 adds low-priority iteration records")
	fs.StringVar(&c.logFile, "log-file", "", "append log output to this file instead of stderr")
	fs.StringVar(&c.store, "store", "", "directory, s3://bucket/prefix or minio://host/bucket/prefix")
	fs.StringVar(&c.out, "out", "", "solution blob (default: print to stdout)")
	fs.StringVar(&c.journalTable, "journal-table", "", "DynamoDB table receiving a journal entry")
	fs.StringVar(&c.system, "system", "", "system name used in the journal (default: the matrix blob name)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.matrix == "" || c.rhs == "" {
		fs.Usage()
		return nil, errors.New("-A and -b are required")
	}
	if c.system == "" {
		c.system = strings.TrimSuffix(path.Base(c.matrix), path.Ext(c.matrix))
	}
	return c, nil
}

func newLogger(c *cliConfig, stderr io.Writer) (*sparsela.Logger, error) {
	if c.logFile != "" {
		return sparsela.NewFileLogger(c.logFile, c.verbosity)
	}
	return sparsela.NewTextLogger(stderr, c.verbosity), nil
}

func loadGuess(ctx context.Context, store blobstore.BlobStore, c *cliConfig, cols int) (*sparsela.Vector[float64], error) {
	if c.guess == "" {
		return sparsela.NewVector[float64](cols)
	}
	x0, err := sparsela.LoadVectorBlob[float64](ctx, store, c.guess, c.offset)
	if err != nil {
		return nil, err
	}
	if x0.Len() != cols {
		return nil, fmt.Errorf("%s has %d elements, the matrix has %d columns", c.guess, x0.Len(), cols)
	}
	return x0, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger, err := newLogger(c, stderr)
	if err != nil {
		return err
	}
	defer logger.Close()

	store, err := openStore(ctx, c.store)
	if err != nil {
		return err
	}

	var (
		a  *sparsela.Matrix[float64]
		b  *sparsela.Vector[float64]
		x0 *sparsela.Vector[float64]
	)
	a, b, err = sparsela.LoadSystem[float64](ctx, store, c.matrix, c.rhs, c.offset)
	if err != nil {
		return err
	}
	if x0, err = loadGuess(ctx, store, c, a.Cols()); err != nil {
		return err
	}

	solver, err := sparsela.NewLinearSolver(a, b, sparsela.WithLogger(logger.With("system", c.system)))
	if err != nil {
		return err
	}
	err = solver.Solve(c.method, x0,
		sparsela.WithMaxIterations(c.maxIter),
		sparsela.WithTolerance(c.tol),
		sparsela.WithPrintFrequency(c.printFreq),
		sparsela.WithParam(c.param),
	)
	if err != nil {
		return err
	}

	report, err := solver.Report()
	if err != nil {
		return err
	}
	x, err := solver.Solution()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if c.out == "" {
			return x.Save(stdout, c.offset)
		}
		return sparsela.SaveVectorBlob(gctx, store, c.out, x, c.offset)
	})
	if c.journalTable != "" {
		g.Go(func() error {
			j, err := openJournal(gctx, c.journalTable)
			if err != nil {
				return err
			}
			return j.Append(gctx, journal.NewEntry(c.system, report))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("solve finished",
		"method", report.Method,
		"iterations", report.Iterations,
		"residual", report.Residual,
		"converged", report.Converged,
		"elapsed", report.Elapsed,
	)
	return nil
}

func openJournal(ctx context.Context, table string) (journal.Journal, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return dynamodb.New(awsdynamodb.NewFromConfig(cfg), table), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "sparsela: %v\n", err)
		os.Exit(1)
	}
}
