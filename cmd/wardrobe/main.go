// Command wardrobe renders the picker sheet of one set type to a PNG file.
//
// Configuration comes from WARDROBE_* environment variables, optionally
// seeded from a .env file (see config.go).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/wardrobe"
	"github.com/unkn0wn-root/wardrobe/bundle"
	"github.com/unkn0wn-root/wardrobe/catalog"
	"github.com/unkn0wn-root/wardrobe/codec"
	asynchook "github.com/unkn0wn-root/wardrobe/hooks/async"
	"github.com/unkn0wn-root/wardrobe/layout"
	"github.com/unkn0wn-root/wardrobe/loader"
	zapadapter "github.com/unkn0wn-root/wardrobe/log/zap"
	ggsurface "github.com/unkn0wn-root/wardrobe/render/gg"
	"github.com/unkn0wn-root/wardrobe/sloghooks"
	"github.com/unkn0wn-root/wardrobe/telemetry"
)

func main() {
	dotenv := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	cfg, err := loadConfig(*dotenv)
	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg config) int {
	zl, logFile := newLogger(cfg.Dev, cfg.LogFile)
	defer logFile.Close()
	defer zl.Sync() //nolint:errcheck
	logger := zapadapter.ZapLogger{L: zl}

	shutdown, err := telemetry.Setup(ctx, telemetry.Config{Endpoint: cfg.OTLPEndpoint})
	if err != nil {
		zl.Error("telemetry setup failed", zap.Error(err))
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			zl.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	cat, err := catalog.LoadDir(cfg.CatalogDir, cfg.CatalogFormat)
	if err != nil {
		zl.Error("load catalog", zap.String("dir", cfg.CatalogDir), zap.Error(err))
		return 1
	}

	src, closeSrc, err := source(cfg, logger)
	if err != nil {
		zl.Error("bundle source", zap.Error(err))
		return 1
	}
	defer func() {
		if err := closeSrc(context.Background()); err != nil {
			zl.Warn("close bundle source", zap.Error(err))
		}
	}()

	docCodec, err := catalog.CodecFor[bundle.Document](cfg.BundleFormat)
	if err != nil {
		zl.Error("bundle codec", zap.Error(err))
		return 1
	}
	docCodec = codec.LimitCodec[bundle.Document]{Inner: docCodec, MaxDecode: int(cfg.BundleMaxBytes)}

	events := sloghooks.New(newEventLogger(cfg.Dev, logFile), sloghooks.Options{
		PartSkippedEvery: 10,
		FetchSlow:        2 * time.Second,
	})
	hooks := asynchook.New(events, 1, 1024)
	defer hooks.Close()

	ld, err := loader.New(loader.Options[*bundle.Library]{
		Fetch:        bundle.Fetcher(src, docCodec),
		Logger:       logger,
		Hooks:        events,
		FetchTimeout: cfg.FetchTimeout,
	})
	if err != nil {
		zl.Error("loader", zap.Error(err))
		return 1
	}

	grid := layout.Grid{Width: cfg.Width}
	surf := ggsurface.New(ggsurface.Options{})
	comp, err := wardrobe.New(wardrobe.Options{
		Catalog:       cat,
		Loader:        ld,
		Surface:       surf,
		Logger:        logger,
		Hooks:         hooks,
		Geometry:      cfg.Geometry,
		HiddenLayers:  cfg.HiddenLayers,
		Grid:          grid,
		BakeCacheSize: 64,
	})
	if err != nil {
		zl.Error("compositor", zap.Error(err))
		return 1
	}
	if cfg.Selected != "" {
		comp.Select(cfg.Selected)
	}

	start := time.Now()
	pass, err := comp.Generate(ctx, wardrobe.Request{
		SetType: cfg.SetType,
		Gender:  cfg.Gender,
		Colors:  cfg.Colors,
	})
	if err != nil {
		zl.Error("generate", zap.String("set_type", cfg.SetType), zap.Error(err))
		return 1
	}
	results, err := pass.Wait(ctx)
	if err != nil {
		zl.Error("pass interrupted", zap.String("pass", pass.ID), zap.Error(err))
		return 1
	}

	tiles := make([]ggsurface.Tile, len(results))
	for i, r := range results {
		tiles[i] = ggsurface.Tile{ID: r.EntryID, Cell: r.Cell, Texture: r.Texture}
	}
	button, _ := catalog.ParseColor(cfg.ButtonColor) // validated in loadConfig
	sheet := ggsurface.Sheet{Grid: comp.Grid(), ButtonColor: button, Selected: pass.Selected}
	if err := sheet.SavePNG(cfg.Output, tiles); err != nil {
		zl.Error("save sheet", zap.String("path", cfg.Output), zap.Error(err))
		return 1
	}

	failed := summarize(os.Stdout, results)
	w, h, _ := surf.Size(wardrobe.DefaultContainer)
	zl.Info("pass complete",
		zap.String("pass", pass.ID),
		zap.String("set_type", cfg.SetType),
		zap.Int("entries", len(results)),
		zap.Int("failed", failed),
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Int("libraries", ld.Len()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Uint64("dropped_events", hooks.Dropped()),
	)
	fmt.Printf("sheet written to %s\n", cfg.Output)
	if failed > 0 {
		return 1
	}
	return 0
}
