package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/openmyr/myrgo/internal/config"
	"github.com/openmyr/myrgo/internal/data"
	"github.com/openmyr/myrgo/internal/db"
	"github.com/openmyr/myrgo/internal/model"
	"github.com/openmyr/myrgo/internal/world"
)

const ConfigPath = "config/worldserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("MYRGO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadWorldServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("world server starting", "log_level", cfg.LogLevel, "data_source", cfg.Data.Source)

	loader, cleanup, err := newTemplateSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	mapTemplates, monsterTemplates, err := loader.load(ctx)
	if err != nil {
		return err
	}

	monsters, err := data.NewMonsterRegistry(monsterTemplates)
	if err != nil {
		return fmt.Errorf("building monster registry: %w", err)
	}

	wm := world.NewManager(newLogNotifier(), monsters, world.Config{
		IdleZoneTTL:        cfg.IdleZoneTTL(),
		CompactionInterval: cfg.CompactionInterval(),
	})
	wm.LoadMaps(mapTemplates)
	defer wm.Shutdown()

	loop := world.NewGameLoop(wm, cfg.TickInterval())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx)
	})
	g.Go(func() error {
		return watchReload(gctx, wm, loader)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// watchReload reloads map templates into the live world on SIGHUP.
func watchReload(ctx context.Context, wm *world.Manager, loader templateSource) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-hup:
			slog.Info("reload requested")
			mapTemplates, _, err := loader.load(ctx)
			if err != nil {
				slog.Error("reload failed, keeping current data", "err", err)
				continue
			}
			wm.ReloadMapData(mapTemplates)
		}
	}
}

// templateSource abstracts the YAML and PostgreSQL template loaders.
type templateSource interface {
	load(ctx context.Context) ([]*data.MapTemplate, []*data.MonsterTemplate, error)
}

type yamlSource struct {
	mapsPath     string
	monstersPath string
}

func (s yamlSource) load(context.Context) ([]*data.MapTemplate, []*data.MonsterTemplate, error) {
	maps, err := data.LoadMapTemplates(s.mapsPath)
	if err != nil {
		return nil, nil, err
	}
	monsters, err := data.LoadMonsterTemplates(s.monstersPath)
	if err != nil {
		return nil, nil, err
	}
	return maps, monsters, nil
}

type dbSource struct {
	maps     *db.MapRepository
	monsters *db.MonsterRepository
}

func (s dbSource) load(ctx context.Context) ([]*data.MapTemplate, []*data.MonsterTemplate, error) {
	maps, err := s.maps.LoadAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	monsters, err := s.monsters.LoadAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	return maps, monsters, nil
}

func newTemplateSource(ctx context.Context, cfg config.WorldServer) (templateSource, func(), error) {
	switch cfg.Data.Source {
	case "postgres":
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database connected, migrations applied")
		return dbSource{
			maps:     db.NewMapRepository(database.Pool()),
			monsters: db.NewMonsterRepository(database.Pool()),
		}, database.Close, nil

	default:
		return yamlSource{
			mapsPath:     cfg.Data.MapsPath,
			monstersPath: cfg.Data.MonstersPath,
		}, func() {}, nil
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// logNotifier is a stand-in outbound collaborator: it logs every
// notification at debug level. Real deployments plug a transport in here.
type logNotifier struct{}

func newLogNotifier() logNotifier { return logNotifier{} }

func (logNotifier) SendMapChange(to *model.Player, pos model.Position) error {
	slog.Debug("notify map change", "to", to.ID(), "map", pos.MapID, "x", pos.X, "y", pos.Y)
	return nil
}

func (logNotifier) SendPlayerEnter(to, subject *model.Player) error {
	slog.Debug("notify enter", "to", to.ID(), "subject", subject.ID())
	return nil
}

func (logNotifier) SendPlayerExit(to *model.Player, subjectID uint32) error {
	slog.Debug("notify exit", "to", to.ID(), "subject", subjectID)
	return nil
}

func (logNotifier) SendMonsterInfo(to *model.Player, m *model.Monster) error {
	slog.Debug("notify monster", "to", to.ID(), "monster", m.ID())
	return nil
}

func (logNotifier) SendEquipment(to, subject *model.Player) error {
	slog.Debug("notify equipment", "to", to.ID(), "subject", subject.ID())
	return nil
}

func (logNotifier) SendMountState(to, subject *model.Player) error {
	slog.Debug("notify mount", "to", to.ID(), "subject", subject.ID(), "mounted", subject.Mounted())
	return nil
}

func (logNotifier) SendDropItem(to *model.Player, d *model.DropItem) error {
	slog.Debug("notify drop", "to", to.ID(), "drop", d.DropID(), "item", d.Item().ID)
	return nil
}

func (logNotifier) SendDropRemoved(to *model.Player, dropID uint32) error {
	slog.Debug("notify drop removed", "to", to.ID(), "drop", dropID)
	return nil
}
