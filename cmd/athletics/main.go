package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"athletics/internal/auth"
	"athletics/internal/config"
	"athletics/internal/ics"
	"athletics/internal/importer"
	appLog "athletics/internal/log"
	"athletics/internal/scheduler"
	"athletics/internal/store"
	"athletics/internal/web"
)

const version = "0.1.0"

type flagConfig struct {
	configPath string
	listen     string
	importOnce bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	flush := appLog.Setup(appLog.Options{
		Level: appLog.ParseLevel(conf.Log.Level),
		File:  conf.Log.File,
	})
	defer flush()

	appLog.Info("athletics starting", "version", version)
	appLog.Info("effective config",
		"listen", conf.Listen,
		"data_dir", conf.DataDir,
		"timezone", conf.Timezone,
		"fetch_timeout", conf.FetchTimeout().String(),
		"import_cron", conf.ImportCron,
		"static_dir", conf.StaticDir,
	)

	secrets, err := config.LoadSecrets()
	if err != nil {
		appLog.Error("failed to load secrets", err)
		os.Exit(1)
	}
	codec, err := auth.NewCodec(secrets.CookieSecret)
	if err != nil {
		appLog.Error("failed to create session codec", err)
		os.Exit(1)
	}
	if secrets.AdminPassword == "" {
		appLog.Warn("ADMIN_PASSWORD is not set; admin login is disabled")
	}

	stores := store.Open(conf.DataDir)
	fetcher := ics.NewFetcher(filepath.Join(conf.DataDir, "ics-cache"), conf.FetchTimeout())
	imp := importer.New(fetcher, stores.Settings, stores.Sports, conf.Timezone)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flags.importOnce {
		res, err := imp.Run(ctx, importer.Request{})
		if err != nil {
			appLog.Error("import failed", err)
			os.Exit(1)
		}
		appLog.Info("import finished",
			"run_id", res.RunID,
			"sports", len(res.Imported),
			"unrecognized", res.Unrecognized,
			"skipped", res.Skipped,
			"total", res.Total,
		)
		return
	}

	srv := web.NewServer(web.Deps{
		Config:   conf,
		Secrets:  secrets,
		Codec:    codec,
		Stores:   stores,
		Importer: imp,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })

	if conf.ImportCron != "" {
		loc, err := time.LoadLocation(conf.Timezone)
		if err != nil {
			appLog.Warn("invalid timezone for scheduler, using local time", "timezone", conf.Timezone)
			loc = time.Local
		}
		sched, err := scheduler.New(conf.ImportCron, loc, imp)
		if err != nil {
			appLog.Error("failed to create scheduler", err)
			os.Exit(1)
		}
		g.Go(func() error { return sched.Start(gctx) })
	} else {
		appLog.Info("import_cron not set; imports are manual only")
	}

	if err := g.Wait(); err != nil {
		appLog.Error("athletics stopped with error", err)
		flush()
		os.Exit(1)
	}
	appLog.Info("athletics exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/athletics/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.importOnce, "import", false, "Run one import of every sport from the stored feed and exit")

	flag.Parse()

	return cfg
}
