package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/sifan077/snipr/config"
	"github.com/sifan077/snipr/internal/app/client"
	"github.com/sifan077/snipr/internal/app/model"
	"github.com/sifan077/snipr/internal/app/workflow"
	"github.com/sifan077/snipr/internal/cli"
	"github.com/sifan077/snipr/internal/infra/clipboard"
	"github.com/sifan077/snipr/internal/infra/files"
	"github.com/sifan077/snipr/internal/infra/logger"
	natsclient "github.com/sifan077/snipr/internal/infra/nats"
	"github.com/sifan077/snipr/internal/infra/platform"
	infraPrometheus "github.com/sifan077/snipr/internal/infra/prometheus"
	"github.com/sifan077/snipr/internal/infra/qr"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const prompt = "snipr> "

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	listen := len(args) > 0 && args[0] == "listen"
	if listen {
		args = args[1:]
	}

	fs := pflag.NewFlagSet("snipr", pflag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: snipr [flags] [url]\n       snipr listen [flags]\n\nflags:\n")
		fs.PrintDefaults()
	}
	fs.String("service-url", "", "base URL of the link shortening service")
	fs.Duration("timeout", 0, "bound on one shorten request (0 waits indefinitely)")
	fs.String("qr-dir", "", "directory QR code images are saved to")
	fs.Int("viewport", 0, "viewport width used to size QR codes")
	fs.Bool("share-nats", false, "share links over NATS instead of copying")
	fs.String("log-level", "", "log level")
	fs.Bool("metrics", false, "expose Prometheus metrics while running")
	fs.Int("metrics-port", 0, "Prometheus metrics port")
	fs.Duration("copied-timeout", 0, "how long the copied indicator stays set")

	alias := fs.String("alias", "", "custom alias for the short link")
	expire := fs.String("expire", "", "expiration: never, 1day, 7days or custom")
	date := fs.String("date", "", "expiration date (YYYY-MM-DD) for --expire custom")
	doCopy := fs.Bool("copy", false, "copy the short link to the clipboard")
	doShare := fs.Bool("share", false, "share the short link")
	doQR := fs.Bool("qr", false, "save the short link as a QR code PNG")
	doOpen := fs.Bool("open", false, "open the short link in the browser")
	_ = fs.Parse(args)

	cfg, err := config.Load(fs)
	if err != nil {
		logger.MustInit(logger.Config{Development: true}).Fatal("Failed to load config", zap.Error(err))
	}

	log := logger.MustInit(logger.FromAppConfig(cfg.Log, "stderr"))
	defer func() { _ = logger.Sync() }()

	if listen {
		if err := runListener(ctx, cfg, log); err != nil {
			log.Fatal("Listener stopped", zap.Error(err))
		}
		return
	}

	registry := prom.NewRegistry()
	metrics := infraPrometheus.NewWorkflowMetrics(registry)
	if cfg.Prometheus.Enabled {
		promServer := infraPrometheus.NewServer(cfg.Prometheus, registry)
		go func() {
			log.Debug("Starting Prometheus metrics server", zap.String("addr", promServer.Addr))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer promServer.Close()
	}

	shortener, err := client.New(cfg.Service, log)
	if err != nil {
		log.Fatal("Invalid service configuration", zap.Error(err))
	}
	log.Debug("Using link service", zap.String("endpoint", shortener.Endpoint()))

	ctrl := workflow.NewController(workflow.ControllerDeps{
		Logger:    log,
		Shortener: shortener,
		Metrics:   metrics,
	})

	var sharer workflow.Sharer
	if cfg.Share.Enabled {
		conn, err := natsclient.Connect(cfg.NATS, "snipr", log)
		if err != nil {
			// Share falls back to copy when no target is configured.
			log.Warn("NATS unavailable, sharing will copy instead", zap.Error(err))
		} else {
			defer conn.Close()
			sharer = natsclient.NewShareTarget(conn, cfg.Share.Subject, log)
		}
	}

	qrDir := cfg.QR.OutputDir
	if qrDir == "" {
		qrDir = files.DefaultDownloadDir()
	}

	dist := workflow.NewDistributor(workflow.DistributorDeps{
		Logger:         log,
		Results:        ctrl,
		Clipboard:      clipboard.New(),
		Sharer:         sharer,
		QR:             qr.NewRenderer(),
		Files:          files.NewSaver(afero.NewOsFs(), qrDir),
		Opener:         platform.NewOpener(),
		Metrics:        metrics,
		ShareTitle:     cfg.Share.Title,
		ShareText:      cfg.Share.Text,
		IndicatorDelay: cfg.Clipboard.CopiedReset,
	})

	if url := fs.Arg(0); url != "" {
		err := cli.RunOnce(ctx, ctrl, dist, cli.Options{
			URL:        url,
			Alias:      *alias,
			Expiration: *expire,
			Date:       *date,
			Copy:       *doCopy,
			Share:      *doShare,
			QR:         *doQR,
			Open:       *doOpen,
			Viewport:   cfg.QR.ViewportWidth,
		}, os.Stdout, os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "snipr: %v\n", err)
			_ = logger.Sync()
			os.Exit(1)
		}
		return
	}

	if err := runInteractive(ctx, ctrl, dist, cfg, log); err != nil {
		log.Fatal("Session ended with error", zap.Error(err))
	}
}

func runInteractive(ctx context.Context, ctrl *workflow.Controller, dist *workflow.Distributor, cfg *config.Config, log *zap.Logger) error {
	deps := cli.Deps{
		Controller:    ctrl,
		Distributor:   dist,
		Logger:        log,
		ViewportWidth: cfg.QR.ViewportWidth,
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		deps.Input = cli.NewLineReader(os.Stdin)
		deps.Output = os.Stdout
		return cli.NewSession(deps).Run(ctx)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	terminal := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, prompt)
	if width, height, err := term.GetSize(fd); err == nil {
		_ = terminal.SetSize(width, height)
	}

	deps.Input = terminal
	deps.Output = terminal
	return cli.NewSession(deps).Run(ctx)
}

func runListener(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	conn, err := natsclient.Connect(cfg.NATS, "snipr-listen", log)
	if err != nil {
		return err
	}
	defer conn.Close()

	listener := natsclient.NewListener(conn, cfg.Share.Subject, clipboard.New(), log)
	listener.OnReceive = func(req model.ShareRequest, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "received link could not be copied: %v\n", err)
			return
		}
		fmt.Fprintf(os.Stdout, "Copied! %s\n", req.URL)
	}
	return listener.Run(ctx)
}
