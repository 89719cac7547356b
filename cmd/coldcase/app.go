package main

import (
	"bufio"
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/joho/godotenv"
	"github.com/myrjola/coldcase/internal/ai"
	"github.com/myrjola/coldcase/internal/config"
	"github.com/myrjola/coldcase/internal/engine"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/guard"
	"github.com/myrjola/coldcase/internal/logging"
	"github.com/myrjola/coldcase/internal/memory"
	"github.com/myrjola/coldcase/internal/repositories"
	"github.com/myrjola/coldcase/internal/savegame"
	"github.com/myrjola/coldcase/internal/scenario"
	"github.com/myrjola/coldcase/internal/sqlite"
)

type application struct {
	in  *bufio.Scanner
	out io.Writer

	logger      *slog.Logger
	engine      *engine.Engine
	generator   *scenario.Generator
	saves       *savegame.Store
	db          *sqlite.Database
	transcripts *repositories.TranscriptRepository
	renderer    *glamour.TermRenderer
}

func newApplication(in io.Reader, out io.Writer) *application {
	return &application{ //nolint:exhaustruct // collaborators are created in init
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// init wires the collaborators from the environment. A missing .env file is fine.
func (app *application) init(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "load .env")
	}
	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	app.logger = slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource:   false,
		Level:       logging.ParseLevel(cfg.LogLevel),
		ReplaceAttr: nil,
	})))

	client, err := ai.New(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "create ai client")
	}
	scanner, err := guard.NewMarkerScanner(cfg.RefusalMarkers)
	if err != nil {
		return errors.Wrap(err, "create marker scanner")
	}
	db, err := sqlite.NewDatabase(ctx, cfg.DatabaseURL, app.logger)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return errors.Wrap(err, "create markdown renderer")
	}

	app.wire(client, client, scanner, engine.Temperatures{
		Creative: float32(cfg.CreativeTemperature),
		Logical:  float32(cfg.LogicalTemperature),
	}, savegame.New(cfg.SavesDir), db, renderer)
	return nil
}

// wire assembles the application from its collaborators.
func (app *application) wire(
	generator engine.Generator,
	embedder memory.Embedder,
	scanner *guard.MarkerScanner,
	temperatures engine.Temperatures,
	saves *savegame.Store,
	db *sqlite.Database,
	renderer *glamour.TermRenderer,
) {
	app.engine = engine.New(generator, embedder, scanner, temperatures, app.logger)
	app.generator = scenario.NewGenerator(generator, temperatures.Creative, app.logger)
	app.saves = saves
	app.db = db
	app.transcripts = repositories.NewTranscriptRepository(db, app.logger)
	app.renderer = renderer
}

func (app *application) close(ctx context.Context) error {
	if app.db == nil {
		return nil
	}
	if err := app.db.Close(ctx); err != nil {
		return errors.Wrap(err, "close database")
	}
	return nil
}
