// Command cf4j fits a KNN recommender on a ratings file and prints the top-N
// recommendations for one user.
//
// Usage:
//
//	cf4j -ratings ratings.csv -user u42 -n 10
//	cf4j -config cf4j.yaml -ratings ratings.dat -user 7 -save
//	cf4j -config cf4j.yaml -ratings ratings.dat -user 7 -load -metrics-addr :9090
//
// With -metrics-addr the command keeps serving /metrics after printing the
// recommendations until it is interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ferortega/cf4j-sub001"
	"github.com/ferortega/cf4j-sub001/config"
	"github.com/ferortega/cf4j-sub001/metrics"
)

type options struct {
	configPath  string
	ratingsPath string
	userID      string
	n           int
	save        bool
	load        bool
	metricsAddr string

	// onServe is called with the bound metrics address.
	onServe func(net.Addr)
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err == nil {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err = run(ctx, opts, os.Stdout)
		stop()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "cf4j:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("cf4j", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML config file (CF4J_* environment variables override it)")
	fs.StringVar(&opts.ratingsPath, "ratings", "", "delimited ratings file (required)")
	fs.StringVar(&opts.userID, "user", "", "user to recommend items for (required)")
	fs.IntVar(&opts.n, "n", 10, "number of recommendations")
	fs.BoolVar(&opts.save, "save", false, "write the fitted tables to the configured snapshot")
	fs.BoolVar(&opts.load, "load", false, "restore tables from the configured snapshot instead of fitting")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address until interrupted, e.g. :9090")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.ratingsPath == "" || opts.userID == "" {
		fs.Usage()
		return options{}, errors.New("-ratings and -user are required")
	}
	if opts.save && opts.load {
		return options{}, errors.New("-save and -load are mutually exclusive")
	}
	return opts, nil
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger := cf4j.NewLogger(cfg.Logging)

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewPrometheus(reg, "cf4j")
	if err != nil {
		return err
	}

	var srv *http.Server
	if opts.metricsAddr != "" {
		ln, err := net.Listen("tcp", opts.metricsAddr)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		srv = &http.Server{
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer srv.Close()

		logger.Info("serving metrics", "addr", ln.Addr().String())
		if opts.onServe != nil {
			opts.onServe(ln.Addr())
		}
	}

	dm, err := cf4j.LoadRatings(opts.ratingsPath, cfg.Ratings)
	if err != nil {
		return err
	}
	logger.Info("ratings loaded",
		"users", dm.NumberOfUsers(),
		"items", dm.NumberOfItems(),
		"ratings", dm.NumberOfRatings())

	rec, err := cf4j.New(dm, cfg, cf4j.WithLogger(logger), cf4j.WithMetricsCollector(collector))
	if err != nil {
		return err
	}
	defer rec.Close()

	if opts.load {
		err = rec.LoadSnapshot(ctx)
	} else {
		err = rec.Fit(ctx)
	}
	if err != nil {
		return err
	}

	if opts.save {
		if err := rec.SaveSnapshot(ctx); err != nil {
			return err
		}
	}

	recs, err := rec.RecommendID(opts.userID, opts.n)
	if err != nil {
		return err
	}
	for rank, r := range recs {
		fmt.Fprintf(stdout, "%d\t%s\t%.4f\n", rank+1, r.ID, r.Score)
	}

	if srv == nil {
		return nil
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
