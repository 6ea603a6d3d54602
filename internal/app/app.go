package app

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/edward-yakop/go-pubdoc/api/document"
	"github.com/edward-yakop/go-pubdoc/internal/config"
	"github.com/edward-yakop/go-pubdoc/internal/core"
	"github.com/edward-yakop/go-pubdoc/internal/export"
	"github.com/edward-yakop/go-pubdoc/internal/metrics"
	"github.com/edward-yakop/go-pubdoc/internal/misc"
	"github.com/edward-yakop/go-pubdoc/internal/progress"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	exportStage = "exporting"
	exportKind  = "ExportError"
)

var (
	log = misc.NewLogger("App")
)

// ArgsList holds the raw command line.
type ArgsList struct {
	Verbose     bool
	LogJSON     bool
	NoProgress  bool
	Decompress  bool
	StateDir    string
	Domain      string
	URL         string
	Re          string
	Output      string
	MetricsFile string
	Timeout     time.Duration
}

// AppOption is the resolved configuration of a run.
type AppOption struct {
	StateDir    string
	Document    document.Config
	Output      string
	Decompress  bool
	Progress    bool
	MetricsFile string
	Timeout     time.Duration
}

// ParseOption resolves the state directory, creates it when missing, and
// layers conf.yaml, the environment and the command line.
func ParseOption(args ArgsList) (*AppOption, error) {
	stateDir := args.StateDir
	if stateDir == "" {
		dir, err := config.DefaultStateDir()
		if err != nil {
			return nil, err
		}
		stateDir = dir
	}
	if err := misc.EnsureDir(stateDir); err != nil {
		return nil, err
	}

	cfg, err := config.Load(stateDir)
	if err != nil {
		return nil, err
	}
	cfg = cfg.Merge(config.Config{
		Domain: args.Domain,
		URL:    args.URL,
		Re:     args.Re,
	})

	return &AppOption{
		StateDir:    stateDir,
		Document:    cfg.Document(stateDir),
		Output:      args.Output,
		Decompress:  args.Decompress,
		Progress:    !args.NoProgress && args.Output != export.Stdout,
		MetricsFile: args.MetricsFile,
		Timeout:     args.Timeout,
	}, nil
}

// PubdocApp fetches the configured document once per Execute.
type PubdocApp struct {
	option AppOption
	net    core.Downloader
	stdout io.Writer
}

// NewApp create an application instance by resolved options
func NewApp(opt *AppOption) *PubdocApp {
	return &PubdocApp{
		option: *opt,
		net:    core.NewDownloader(core.Options{Timeout: opt.Timeout}),
		stdout: os.Stdout,
	}
}

// Execute runs the pipeline, then writes the document and metrics if asked
// to. The returned error is the pipeline's *document.StageError when the run
// itself failed.
func (app *PubdocApp) Execute(ctx context.Context) error {
	var (
		opt       = app.option
		startTime = time.Now()
		runLog    = log.With("run", uuid.NewString())
		bar       *progress.Bar
		stats     = metrics.NewRun()
	)

	pipeline := document.New(opt.Document,
		document.WithDownloader(app.net),
		document.WithStateListener(func(s document.State) {
			runLog.Debugf("State: %s.", s)
		}),
		document.WithProgress(func(received, total uint64) {
			if !opt.Progress {
				return
			}
			if bar == nil {
				bar = progress.NewBar(progress.Options{
					Total:       total,
					Description: "Downloading",
				})
			}
			bar.Set(received)
		}),
	)

	runLog.Infof("Fetching document listed at %s.", opt.Document.PageURL())
	res, err := pipeline.Run(ctx)
	if bar != nil {
		bar.Finish()
	}
	took := time.Since(startTime)

	if err != nil {
		stage := document.Failed
		var stageErr *document.StageError
		if errors.As(err, &stageErr) {
			stage = stageErr.Stage
		}
		kind := document.KindOf(err)
		runLog.Errorf("Run failed while %s [%s]: %v.", stage, kind, err)
		stats.Failed(stage.String(), kind.String(), took)
		app.writeMetrics(stats, runLog)
		return err
	}

	source := "network"
	if res.FromCache {
		source = "cache"
	}
	runLog.Infof("Got %s (%d bytes) from %s in %v.", res.URL, len(res.Data), source, took)
	stats.Succeeded(res.Length, uint64(len(res.Data)), res.FromCache, took)

	if opt.Output != "" {
		n, err := export.Write(res.Data, export.Options{
			Path:       opt.Output,
			Decompress: opt.Decompress,
			Stdout:     app.stdout,
		})
		if err != nil {
			runLog.Errorf("Export to %s failed: %v.", opt.Output, err)
			stats.Failed(exportStage, exportKind, time.Since(startTime))
			app.writeMetrics(stats, runLog)
			return errors.Wrap(err, "Export document failed")
		}
		runLog.Infof("Wrote %d bytes to %s.", n, opt.Output)
	}

	app.writeMetrics(stats, runLog)
	return nil
}

func (app *PubdocApp) writeMetrics(stats *metrics.Run, runLog misc.Logger) {
	if app.option.MetricsFile == "" {
		return
	}
	if err := stats.WriteFile(app.option.MetricsFile); err != nil {
		runLog.Warnf("%v.", err)
	}
}
