package main

// manasim is a Monte Carlo simulation of how often a Commander deck is
// mana screwed or flooded. Each game is goldfished against an empty board:
// play a land, cast whatever the mana allows, and classify the turn by what
// was left unused.

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"manasim/internal/api"
	"manasim/internal/config"
	"manasim/internal/storage"
)

// flags holds the parsed command line.
type flags struct {
	configPath string
	deckPath   string
	sims       int
	turns      int
	seed       int64
	workers    int
	multicolor string
	output     string
	csv        string
	report     string
	chart      string
	dbPath     string
	addr       string
	verbose    bool
	watch      bool
	serve      bool
	debug      bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*flags, map[string]bool, error) {
	f := &flags{}
	fs.StringVar(&f.configPath, "config", config.DefaultPath, "path to the TOML config file")
	fs.StringVar(&f.deckPath, "deck", "", "path to the deck file (.json, .yaml)")
	fs.IntVar(&f.sims, "sims", 50_000, "number of games to simulate")
	fs.IntVar(&f.turns, "turns", 12, "number of turns per game")
	fs.Int64Var(&f.seed, "seed", 0, "random seed (0 uses current time)")
	fs.IntVar(&f.workers, "workers", 0, "worker goroutines (0 uses every CPU)")
	fs.StringVar(&f.multicolor, "multicolor", "generic", "mana from multi-symbol sources: generic or first")
	fs.StringVar(&f.output, "output", "", "write the JSON result to this path")
	fs.StringVar(&f.csv, "csv", "", "write per-turn rows as CSV to this path")
	fs.StringVar(&f.report, "report", "", "write the text report to this path")
	fs.StringVar(&f.chart, "chart", "", "write the HTML charts to this path")
	fs.StringVar(&f.dbPath, "db", "", "store the run in this SQLite database")
	fs.StringVar(&f.addr, "addr", "", "listen address for -serve")
	fs.BoolVar(&f.verbose, "verbose", false, "print the example game traces")
	fs.BoolVar(&f.watch, "watch", false, "re-run when the deck file changes")
	fs.BoolVar(&f.serve, "serve", false, "serve the HTTP API instead of running once")
	fs.BoolVar(&f.debug, "debug", false, "include file and line in log output")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set, nil
}

// apply overrides cfg with every flag given on the command line.
func (f *flags) apply(cfg *config.Config, set map[string]bool) {
	if set["sims"] {
		cfg.Simulation.Simulations = f.sims
	}
	if set["turns"] {
		cfg.Simulation.Turns = f.turns
	}
	if set["seed"] {
		cfg.Simulation.Seed = f.seed
	}
	if set["workers"] {
		cfg.Simulation.Workers = f.workers
	}
	if set["multicolor"] {
		cfg.Simulation.MultiColor = f.multicolor
	}
	if set["output"] {
		cfg.Output.JSONPath = f.output
	}
	if set["csv"] {
		cfg.Output.CSVPath = f.csv
	}
	if set["report"] {
		cfg.Output.ReportPath = f.report
	}
	if set["chart"] {
		cfg.Output.ChartPath = f.chart
	}
	if set["db"] {
		cfg.Storage.Enabled = f.dbPath != ""
		cfg.Storage.DBPath = f.dbPath
	}
	if set["addr"] {
		cfg.Server.Addr = f.addr
	}
	if set["debug"] {
		cfg.Log.Debug = f.debug
	}
}

func main() {
	fmt.Println("🔮 manasim booting up")

	f, set, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	f.apply(cfg, set)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if cfg.Log.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	if f.serve {
		if err := serve(cfg); err != nil {
			log.Fatalf("error: %+v", err)
		}
		return
	}

	if f.deckPath == "" {
		log.Fatalf("invalid config: -deck is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner{cfg: cfg, deckPath: f.deckPath, verbose: f.verbose, out: os.Stdout}
	if f.watch {
		err = r.watch(ctx)
	} else {
		err = r.run(ctx)
	}
	if err != nil {
		log.Fatalf("error: %+v", err)
	}
}

func serve(cfg *config.Config) error {
	var store api.RunStore
	if cfg.Storage.Enabled {
		db, err := storage.Open(storage.DefaultConfig(cfg.Storage.DBPath))
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
		fmt.Printf("🗄️  run history: %s\n", cfg.Storage.DBPath)
	}

	apiCfg := api.DefaultConfig()
	apiCfg.Addr = cfg.Server.Addr
	apiCfg.MaxSimulations = cfg.Server.MaxSimulations
	apiCfg.MaxTurns = cfg.Server.MaxTurns
	apiCfg.MaxTraceSamples = cfg.Server.MaxTraceSamples
	apiCfg.DefaultSimulations = min(cfg.Simulation.Simulations, cfg.Server.MaxSimulations)
	apiCfg.DefaultTurns = min(cfg.Simulation.Turns, cfg.Server.MaxTurns)
	apiCfg.Workers = cfg.Simulation.Workers
	apiCfg.MultiColor = cfg.MultiColorPolicy()

	server := api.NewServer(apiCfg, store)
	if err := server.Start(); err != nil {
		return err
	}

	fmt.Printf("🌐 API server running at %s\n", cfg.Server.Addr)
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("🛑 shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
