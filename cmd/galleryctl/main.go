package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"portfolio_gallery/internal/app"
	"portfolio_gallery/internal/config"
	services "portfolio_gallery/internal/services/gallery_service"
	galleryview "portfolio_gallery/internal/services/gallery_view"
	"portfolio_gallery/internal/services/sweeper"

	"github.com/fatih/color"
)

const usage = `usage: galleryctl [-config path] [-v] <command> [flags] [args]

commands:
  list                                      show all images, newest first
  upload -title T [-description D] FILE     upload an image
  edit [-title T] [-description D] ID       change title and/or description
  delete [-yes] ID                          delete an image and its bytes
  sweep                                     remove orphaned objects now
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("galleryctl", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("CONFIG_PATH"), "path to config file")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 || *configPath == "" {
		fs.Usage()
		return 2
	}

	cfg, err := config.LoadPath(*configPath)
	if err != nil {
		color.Red("config: %v", err)
		return 1
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stores, err := app.NewStores(ctx, log, cfg)
	if err != nil {
		color.Red("%v", err)
		return 1
	}
	defer stores.Close()

	gallery := services.NewGalleryService(log, stores.Repo.Gallery, stores.Objects, stores.Ledger, cfg.Sweeper.GracePeriod)

	c := &cli{
		out:  color.Output,
		in:   os.Stdin,
		ctrl: galleryview.New(log, gallery, app.UploadRules(cfg)),
		sweeper: sweeper.New(log, stores.Repo.Gallery, stores.Objects, stores.Ledger, gallery,
			cfg.Sweeper.GracePeriod, cfg.Sweeper.Interval),
	}

	if err := c.dispatch(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		color.Red("%v", err)
		return 1
	}

	return 0
}
