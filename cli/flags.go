// Package cli holds the flags shared by the vdb commands and the plumbing
// that turns them into a logger, a catalog and an output writer.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/brimdata/vdb/cli/catalogflags"
	"github.com/brimdata/vdb/cli/logflags"
	"github.com/brimdata/vdb/cli/outputflags"
	"github.com/brimdata/vdb/compiler/semantic"
	"github.com/brimdata/vdb/metadata"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type Initializer interface {
	Init() error
}

type Flags struct {
	Catalog catalogflags.Flags
	Output  outputflags.Flags
	Log     logflags.Flags

	Logger   *zap.Logger
	Registry *prometheus.Registry
	metrics  bool
}

func (f *Flags) SetFlags(fs *pflag.FlagSet) {
	f.Catalog.SetFlags(fs)
	f.Output.SetFlags(fs)
	f.Log.SetFlags(fs)
	fs.BoolVar(&f.metrics, "metrics", false, "write resolver and cache metrics to stderr on exit")
}

// Init builds the logger and metrics registry and initializes each of
// all.  The returned cleanup flushes the logger and writes the metrics
// when requested.
func (f *Flags) Init(all ...Initializer) (context.Context, func(), error) {
	for _, i := range append([]Initializer{&f.Output}, all...) {
		if err := i.Init(); err != nil {
			return nil, nil, err
		}
	}
	logger, err := f.Log.Open()
	if err != nil {
		return nil, nil, err
	}
	f.Logger = logger
	f.Registry = prometheus.NewRegistry()
	if err := semantic.RegisterMetrics(f.Registry); err != nil {
		return nil, nil, err
	}
	if err := metadata.RegisterMetrics(f.Registry); err != nil {
		return nil, nil, err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	cleanup := func() {
		cancel()
		if f.metrics {
			if err := WriteMetrics(os.Stderr, f.Registry); err != nil {
				logger.Warn("Writing metrics", zap.Error(err))
			}
		}
		logger.Sync()
	}
	return ctx, cleanup, nil
}

// WriteMetrics writes the metrics gathered by g in the Prometheus text
// exposition format.
func WriteMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
