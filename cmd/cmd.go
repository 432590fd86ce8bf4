package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thiagokokada/gitk-graph/internal/buildinfo"
	"github.com/thiagokokada/gitk-graph/internal/config"
	"github.com/thiagokokada/gitk-graph/internal/git"
)

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

type options struct {
	configPath string
	limit      int
	maxCols    int
	find       string
	search     string
	field      string
	from       int
	watch      bool
	verbose    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("gitk-graph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.configPath, "config", config.DefaultPath(), "path of the YAML config file")
	fs.IntVar(&opts.limit, "limit", 0, "stop after this many commits (0 loads everything)")
	fs.IntVar(&opts.maxCols, "maxcols", config.DefaultMaxColumns, "maximum graph lanes printed per row (0 for no limit)")
	fs.StringVar(&opts.find, "find", "", "show the commit whose id starts with this prefix")
	fs.StringVar(&opts.search, "search", "", "show the first commit whose field contains this text")
	fs.StringVar(&opts.field, "field", config.DefaultSearchField, "field used by -search: sha, parents, author, committer, date, summary, message")
	fs.IntVar(&opts.from, "from", 0, "row where -search starts")
	fs.BoolVar(&opts.watch, "watch", false, "reload when the capture or repository changes")
	fs.BoolVar(&opts.verbose, "verbose", false, "enable verbose logging")
	showVersion := fs.Bool("version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, buildinfo.Summary())
		return nil
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := loadConfig(opts.configPath, set["config"])
	if err != nil {
		return err
	}
	mergeConfig(cfg, &opts, set)

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	field := cfg.Field()
	if set["field"] {
		f, ok := git.FieldFromString(opts.field)
		if !ok {
			return fmt.Errorf("unknown search field %q", opts.field)
		}
		field = f
	}

	repoPath := "."
	if remaining := fs.Args(); len(remaining) > 0 {
		repoPath = remaining[len(remaining)-1]
	}
	svc, err := git.Open(repoPath, git.ServiceOptions{
		Logger:        logger,
		Capacity:      cfg.Capacity,
		Limit:         opts.limit,
		MinGitVersion: cfg.MinGitVersion,
	})
	if err != nil {
		return err
	}
	stats, err := svc.Load(ctx)
	if err != nil {
		return err
	}
	logger.Info("history loaded", loadAttrs(stats)...)

	p := &printer{w: stdout, maxCols: opts.maxCols, now: time.Now}
	switch {
	case opts.find != "":
		ci, ok := svc.Cache().GetCommitInfo(opts.find)
		if !ok {
			return fmt.Errorf("no commit matches %q", opts.find)
		}
		p.printCommit(svc.Cache(), ci)
		return nil
	case opts.search != "":
		ci, ok := svc.Cache().GetCommitInfoByField(field, opts.search, opts.from)
		if !ok {
			return fmt.Errorf("no commit has %q in its %s", opts.search, field)
		}
		p.printCommit(svc.Cache(), ci)
		return nil
	}

	p.printGraph(svc.Cache())
	if !opts.watch {
		return nil
	}
	return watchAndReload(ctx, svc, p, cfg.WatchDebounce, logger)
}

// loadConfig reads path; a missing file is only an error when the user
// named it explicitly.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if explicit {
		return config.Load(path)
	}
	return config.LoadOrDefault(path)
}

// mergeConfig fills the options the command line left unset from cfg.
func mergeConfig(cfg *config.Config, opts *options, set map[string]bool) {
	if !set["maxcols"] {
		opts.maxCols = cfg.GraphMaxColumns
	}
	if !set["watch"] {
		opts.watch = cfg.Watch
	}
}

func loadAttrs(stats git.LoadStats) []any {
	return []any{
		slog.String("load", stats.LoadID),
		slog.String("commits", commaInt(stats.Commits)),
		slog.Int("skipped_commits", stats.SkippedCommits),
		slog.Int("refs", stats.Refs),
		slog.Int("skipped_diff_lines", stats.SkippedDiffLines),
		slog.String("head", stats.HeadName),
		slog.Duration("elapsed", stats.Duration),
	}
}
