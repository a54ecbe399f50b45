package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/riftgate/server/internal/collision"
	"github.com/riftgate/server/internal/config"
	"github.com/riftgate/server/internal/core/event"
	"github.com/riftgate/server/internal/core/task"
	"github.com/riftgate/server/internal/data"
	"github.com/riftgate/server/internal/persist"
	"github.com/riftgate/server/internal/scripting"
	"github.com/riftgate/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            riftgate  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      headless simulation server           \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("RIFTGATE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Core services: event bus, task pool, actor store
	bus := event.NewBus()
	pool := task.NewPool(cfg.Collision.ThreadCount, log)
	defer pool.Shutdown()
	actors := world.NewActorStore(bus, log)

	// 4. Collision manager
	mgr := collision.NewManager(actors, bus, pool, collision.Config{
		ThreadingEnabled:       cfg.Collision.ThreadingEnabled,
		ThreadCount:            cfg.Collision.ThreadCount,
		ThreadingThreshold:     cfg.Collision.ThreadingThreshold,
		DefaultTriggerCooldown: cfg.Collision.DefaultTriggerCooldown,
		StaticCoarseCell:       cfg.Collision.StaticCoarseCell,
		StaticFineCell:         cfg.Collision.StaticFineCell,
		MovableCell:            cfg.Collision.MovableCell,
		TriggerCell:            cfg.Collision.TriggerCell,
		MovementThreshold:      cfg.Collision.MovementThreshold,
	}, log)
	mgr.Init()
	mgr.SetWorldBounds(cfg.Collision.WorldMinX, cfg.Collision.WorldMinY,
		cfg.Collision.WorldMaxX, cfg.Collision.WorldMaxY)

	// 5. Optional durable geometry from PostgreSQL
	if cfg.Database.Enabled {
		printSection("database")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("postgres connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		rows, err := persist.NewGeometryRepo(db).LoadAll(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("load geometry: %w", err)
		}
		for _, g := range rows {
			mgr.AddStaticBody(g.ID,
				collision.Vec2{X: g.CX, Y: g.CY},
				collision.Vec2{X: g.HalfW, Y: g.HalfH},
				g.Layer, g.Mask, g.IsTrigger,
				collision.TriggerTag(g.TriggerTag),
				collision.TriggerType(g.TriggerType),
				collision.NoIndex)
		}
		printStat("geometry rows", len(rows))
		fmt.Println()
	}

	// 6. Level data
	printSection("level data")

	lvlPath := "data/yaml/level.yaml"
	if p := os.Getenv("RIFTGATE_LEVEL"); p != "" {
		lvlPath = p
	}
	if _, err := os.Stat(lvlPath); err == nil {
		lvl, err := data.LoadLevel(lvlPath)
		if err != nil {
			return fmt.Errorf("load level: %w", err)
		}
		printStat("static bodies", loadStatics(mgr, lvl))
		printStat("trigger areas", loadTriggers(mgr, lvl))
		printStat("actor spawns", loadSpawns(actors, lvl))
	} else {
		log.Warn("no level file, starting empty", zap.String("path", lvlPath))
	}

	// 7. Lua scripting engine
	luaEngine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("lua scripts loaded")
	fmt.Println()

	// 8. Event subscriptions
	event.Subscribe(bus, func(ev collision.TriggerFired) {
		luaEngine.CallTriggerHook(ev.Phase == collision.PhaseEnter, scripting.TriggerContext{
			TriggerID:  ev.TriggerID,
			DetectorID: ev.DetectorID,
			Tag:        ev.Tag.String(),
			X:          ev.Position.X,
			Y:          ev.Position.Y,
		})
		log.Debug("trigger fired",
			zap.Uint64("trigger", ev.TriggerID),
			zap.Uint64("detector", ev.DetectorID),
			zap.String("tag", ev.Tag.String()),
			zap.String("phase", ev.Phase.String()))
	})
	event.Subscribe(bus, func(ev collision.ObstacleChanged) {
		// Pathfinding grids and nav caches hang off this.
		log.Debug("obstacle changed",
			zap.Float64("x", ev.Position.X),
			zap.Float64("y", ev.Position.Y),
			zap.Float64("radius", ev.Radius))
	})

	// 9. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate.Duration)
	defer ticker.Stop()
	dt := cfg.Server.TickRate.Seconds()

	printSection("server ready")
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Server.TickRate.Duration))
	fmt.Println()

	perfCounter := 0
	const perfInterval = 1200 // 1200 ticks at 50ms = 1 minute

	for {
		select {
		case <-ticker.C:
			bus.SwapBuffers()
			bus.DispatchAll()
			mgr.Update(dt)

			perfCounter++
			if perfCounter >= perfInterval {
				perfCounter = 0
				st := mgr.PerfStats()
				log.Info("collision perf",
					zap.Float64("avg_ms", st.AvgTotalMs),
					zap.Float64("last_ms", st.LastTotalMs),
					zap.Int("last_pairs", st.LastPairs),
					zap.Int("last_collisions", st.LastCollisions),
					zap.Bool("threaded", st.LastFrameThreaded))
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			if bus.Pending() > 0 {
				bus.SwapBuffers()
				bus.DispatchAll()
			}
			mgr.Clean()
			log.Info("server stopped")
			return nil
		}
	}
}

func loadStatics(mgr *collision.Manager, lvl *data.Level) int {
	for _, e := range lvl.Statics {
		layer, _ := data.ResolveLayer(e.Layer)
		mask, _ := data.ResolveMask(e.Mask)
		mgr.AddStaticBody(e.ID,
			collision.Vec2{X: e.X, Y: e.Y},
			collision.Vec2{X: e.HalfW, Y: e.HalfH},
			layer, mask, false, collision.TagNone, collision.TriggerEventOnly,
			collision.NoIndex)
	}
	return len(lvl.Statics)
}

func loadTriggers(mgr *collision.Manager, lvl *data.Level) int {
	for _, e := range lvl.Triggers {
		tag, _ := data.ResolveTag(e.Tag)
		ttype, _ := data.ResolveTriggerType(e.Type)
		layer, _ := data.ResolveLayer(e.Layer)
		mask, _ := data.ResolveMask(e.Mask)
		id := mgr.CreateTriggerAreaAt(e.X, e.Y, e.HalfW, e.HalfH, tag, ttype, layer, mask)
		if e.Cooldown > 0 {
			mgr.SetTriggerCooldown(id, e.Cooldown)
		}
	}
	return len(lvl.Triggers)
}

func loadSpawns(actors *world.ActorStore, lvl *data.Level) int {
	for _, e := range lvl.Spawns {
		kind, _ := data.ResolveBodyKind(e.Kind)
		layer, _ := data.ResolveLayer(e.Layer)
		mask, _ := data.ResolveMask(e.Mask)
		actors.Spawn(world.SpawnParams{
			Name:            e.Name,
			Kind:            kind,
			Pos:             collision.Vec2{X: e.X, Y: e.Y},
			HalfW:           e.HalfW,
			HalfH:           e.HalfH,
			Layer:           layer,
			Mask:            mask,
			Player:          e.Player,
			DetectsTriggers: e.DetectsTriggers,
		})
	}
	return len(lvl.Spawns)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
