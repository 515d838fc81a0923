// Package main provides the build-mode simulator binary: it loads item
// content, restores the player save, and runs the placement session on a
// fixed-step loop with a scripted demo host.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/erin-fowler/buildmode/internal/config"
	"github.com/erin-fowler/buildmode/internal/game/crafting"
	"github.com/erin-fowler/buildmode/internal/game/grid"
	"github.com/erin-fowler/buildmode/internal/game/inventory"
	"github.com/erin-fowler/buildmode/internal/game/item"
	"github.com/erin-fowler/buildmode/internal/game/placement"
	"github.com/erin-fowler/buildmode/internal/observability"
	"github.com/erin-fowler/buildmode/internal/recorder"
	"github.com/erin-fowler/buildmode/internal/scripting"
	"github.com/erin-fowler/buildmode/internal/sim"
	"github.com/erin-fowler/buildmode/internal/storage/sqlite"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	itemsDir := flag.String("items-dir", "", "override for item definition YAML directory")
	recipesDir := flag.String("recipes-dir", "", "override for crafting recipe YAML directory")
	scriptsDir := flag.String("scripts-dir", "", "override for Lua placement hook directory")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *itemsDir != "" {
		cfg.Content.ItemsDir = *itemsDir
	}
	if *recipesDir != "" {
		cfg.Content.RecipesDir = *recipesDir
	}
	if *scriptsDir != "" {
		cfg.Content.ScriptsDir = *scriptsDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// Load item content
	contentStart := time.Now()
	defs, err := item.LoadDefs(cfg.Content.ItemsDir, observability.Component(logger, "content"))
	if err != nil {
		logger.Fatal("loading item definitions", zap.Error(err))
	}
	registry := item.NewRegistry()
	for _, def := range defs {
		if err := registry.Register(def); err != nil {
			logger.Fatal("registering item", zap.String("id", def.ID), zap.Error(err))
		}
	}
	logger.Info("item definitions loaded",
		zap.Int("count", registry.Len()),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	recipes, err := crafting.LoadRecipes(cfg.Content.RecipesDir)
	if err != nil {
		logger.Fatal("loading recipes", zap.Error(err))
	}
	book := crafting.NewBook()
	for _, r := range recipes {
		if err := book.Register(r); err != nil {
			logger.Fatal("registering recipe", zap.String("id", r.ID), zap.Error(err))
		}
	}
	logger.Info("recipes loaded", zap.Int("count", book.Len()))

	// Placement hook scripts
	scriptMgr := scripting.NewManager(registry, cfg.Placement.ScriptOpBudget, observability.Component(logger, "scripting"))
	if err := scriptMgr.LoadDir(cfg.Content.ScriptsDir); err != nil {
		logger.Fatal("loading placement scripts", zap.Error(err))
	}
	defer scriptMgr.Close()
	logger.Info("placement scripts loaded", zap.Int("count", scriptMgr.Loaded()))

	// Placement grid
	model, err := grid.NewModel(cfg.Grid.Width, cfg.Grid.Height, cfg.Grid.CellSize, cfg.Grid.Origin())
	if err != nil {
		logger.Fatal("creating grid", zap.Error(err))
	}
	logger.Info("grid ready",
		zap.Int("width", cfg.Grid.Width),
		zap.Int("height", cfg.Grid.Height),
		zap.Float64("cell_size", cfg.Grid.CellSize),
	)

	// Save database and player inventory
	store, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		logger.Fatal("opening save database", zap.Error(err))
	}
	container, err := inventory.NewContainer(cfg.Storage.InventorySlots)
	if err != nil {
		logger.Fatal("creating inventory", zap.Error(err))
	}
	stacks, err := store.LoadInventory(ctx)
	if err != nil {
		logger.Fatal("loading saved inventory", zap.Error(err))
	}
	if len(stacks) > 0 {
		if err := container.Restore(stacks); err != nil {
			logger.Fatal("restoring inventory", zap.Error(err))
		}
	}
	logger.Info("inventory restored", zap.Int("stacks", len(stacks)))

	// Placement attempt recorder
	var sink placement.AttemptSink
	var rec *recorder.Recorder
	if cfg.Recorder.Enabled {
		rec, err = recorder.New(cfg.Recorder.Dir)
		if err != nil {
			logger.Fatal("creating attempt recorder", zap.Error(err))
		}
		sink = rec
		logger.Info("recording placement attempts", zap.String("file", rec.Path()))
	}

	// Placement session with the headless host driver
	driver := newHostDriver(observability.Component(logger, "host"))
	session, err := placement.NewSession(
		model, driver, driver, driver, scriptMgr, sink,
		cfg.Placement.SessionConfig(), observability.Component(logger, "placement"),
	)
	if err != nil {
		logger.Fatal("creating placement session", zap.Error(err))
	}

	host := newScriptedHost(session, driver, model, registry, cfg.Placement.Policy(), cfg.Placement.TickRate, logger)
	loop, err := sim.NewLoop(host, cfg.Placement.TickRate, observability.Component(logger, "sim"))
	if err != nil {
		logger.Fatal("creating simulation loop", zap.Error(err))
	}

	// Wire lifecycle
	lifecycle := sim.NewLifecycle(logger)
	lifecycle.Add("simulation", loop)
	lifecycle.Add("save", &sim.FuncService{
		StartFn: func() error {
			select {} // save only participates in shutdown
		},
		StopFn: func() {
			saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.SaveInventory(saveCtx, container.Contents()); err != nil {
				logger.Error("saving inventory", zap.Error(err))
			}
			if rec != nil {
				if err := rec.Close(); err != nil {
					logger.Error("closing attempt recorder", zap.Error(err))
				}
			}
			if err := store.Close(); err != nil {
				logger.Error("closing save database", zap.Error(err))
			}
		},
	})

	logger.Info("simulator initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("simulator error", zap.Error(err))
	}
}
