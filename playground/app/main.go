package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/cradle-di/cradle"
	"github.com/cradle-di/cradle/config"
	"github.com/cradle-di/cradle/runner"
)

type (
	Greeter struct {
		Label string
	}

	Ticker struct {
		Every time.Duration
	}

	App struct {
		Runnables []runner.Runnable
	}
)

func NewGreeter(label string) *Greeter {
	return &Greeter{Label: label}
}

func (g *Greeter) Run(ctx context.Context) error {
	log.Printf("hello %s", g.Label)
	return nil
}

func NewTicker() *Ticker {
	return &Ticker{Every: 200 * time.Millisecond}
}

func (t *Ticker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.Every)
	defer ticker.Stop()
	for i := 0; i < 3; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			log.Printf("tick %d", i+1)
		}
	}
	return nil
}

func NewApp(runnables []runner.Runnable) *App {
	return &App{Runnables: runnables}
}

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}
	level, err := zerolog.ParseLevel(settings.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		Level(level).
		With().
		Timestamp().
		Logger()

	registry := cradle.NewRegistry(cradle.WithRegistryLogger(logger))
	//goland:noinspection GoUnhandledErrorResult
	defer registry.Close()

	registry.
		MustRegister(must(cradle.NewDefinition("greeter",
			cradle.Constructors(NewGreeter),
			cradle.IndexedArgument(0, "world"),
		))).
		MustRegister(must(cradle.NewDefinition("ticker",
			cradle.Constructors(NewTicker),
		))).
		MustRegister(must(cradle.NewDefinition("app",
			cradle.Constructors(NewApp),
		)))

	log.Printf("\n\nhere is what we have registered before running:\n%s\n", registry.Describe())

	bean, err := registry.GetBean("app")
	if err != nil {
		log.Fatalf("failed to create app: %v", err)
	}
	app := bean.(*App)

	if err := runner.RunAll(context.Background(), app.Runnables...); err != nil {
		log.Fatalf("error running app: %v", err)
	}

	log.Println("bye.")
}

func must(def *cradle.Definition, err error) *cradle.Definition {
	if err != nil {
		panic(err)
	}
	return def
}
