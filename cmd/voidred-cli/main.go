package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/peterkuimelis/voidred/internal/config"
	"github.com/peterkuimelis/voidred/internal/game"
	evlog "github.com/peterkuimelis/voidred/internal/log"
	vnet "github.com/peterkuimelis/voidred/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	cmd := os.Args[1]
	switch cmd {
	case "play":
		err = runPlay(ctx, os.Args[2:])
	case "host":
		err = runHost(ctx, os.Args[2:])
	case "join":
		err = runJoin(ctx, os.Args[2:])
	case "sim":
		err = runSim(ctx, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  voidred play [--config FILE] [--deck N] [--seed S] [--name NAME]")
	fmt.Println("  voidred host [--config FILE] [--addr ADDR] [--seed S]")
	fmt.Println("  voidred join [--addr ADDR] [--deck N] [--name NAME]")
	fmt.Println("  voidred sim  [--config FILE] [--games N] [--seed S] [--verbose]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play    Play against the AI in this terminal")
	fmt.Println("  host    Serve remote players over TCP, each against the AI")
	fmt.Println("  join    Connect to a host and play in this terminal")
	fmt.Println("  sim     Run headless AI-vs-AI sessions and print statistics")
}

// commonFlags registers the flags shared by the commands that run sessions.
type commonFlags struct {
	configPath *string
	seed       *int64
	catalog    *string
	scoring    *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		configPath: fs.String("config", "", "path to a YAML config file"),
		seed:       fs.Int64("seed", 0, "RNG seed (0 = from config, or random)"),
		catalog:    fs.String("catalog", "", "path to a catalog YAML (default: embedded)"),
		scoring:    fs.String("scoring", "", "scoring policy: attribute or distance"),
	}
}

// load reads the config, applies flag overrides and sets up logging.
func (f commonFlags) load() (config.Config, *game.Catalog, error) {
	cfg, err := config.Load(*f.configPath)
	if err != nil {
		return cfg, nil, err
	}
	if *f.seed != 0 {
		cfg.Seed = *f.seed
	}
	if *f.catalog != "" {
		cfg.Catalog = *f.catalog
	}
	if *f.scoring != "" {
		cfg.Rules.Scoring = *f.scoring
		if err := cfg.Validate(); err != nil {
			return cfg, nil, err
		}
	}
	cfg.SetupLogging(os.Stderr)

	cat, err := game.LoadCatalog(cfg.Catalog)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, cat, nil
}

func newServer(cfg config.Config, cat *game.Catalog, zl zerolog.Logger) *vnet.Server {
	return &vnet.Server{
		Addr:    cfg.Server.Addr,
		Catalog: cat,
		Rules:   cfg.Rules,
		Pacing:  cfg.EffectivePacing(),
		Seed:    cfg.Seed,
		Logger:  zl,
	}
}

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	common := addCommonFlags(fs)
	deck := fs.Int("deck", 0, "starter deck number (0 = random deal)")
	name := fs.String("name", "Player", "your name")
	fs.Parse(args)

	cfg, cat, err := common.load()
	if err != nil {
		return err
	}
	// Session logs would interleave with the board; keep only warnings.
	srv := newServer(cfg, cat, log.Logger.Level(zerolog.WarnLevel))
	return vnet.PlayLocal(ctx, srv, *name, *deck, os.Stdin, os.Stdout)
}

func runHost(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	common := addCommonFlags(fs)
	addr := fs.String("addr", "", "TCP address to listen on (default from config)")
	enemyDeck := fs.Int("enemy-deck", 0, "AI starter deck number (0 = random deal)")
	once := fs.Bool("once", false, "exit after the first session")
	fs.Parse(args)

	cfg, cat, err := common.load()
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	srv := newServer(cfg, cat, log.Logger)
	srv.EnemyDeck = *enemyDeck
	srv.Once = *once
	return srv.Run(ctx)
}

func runJoin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	deck := fs.Int("deck", 0, "starter deck number (0 = random deal)")
	addr := fs.String("addr", "localhost:7777", "server address to connect to")
	name := fs.String("name", "Player", "your name")
	fs.Parse(args)

	return vnet.Connect(ctx, *addr, *name, *deck, os.Stdin, os.Stdout)
}

// simReport aggregates a batch of AI-vs-AI sessions.
type simReport struct {
	Games        int     `json:"games"`
	PlayerWins   int     `json:"player_wins"`
	EnemyWins    int     `json:"enemy_wins"`
	Draws        int     `json:"draws"`
	Rounds       int     `json:"rounds"`
	Collapses    int     `json:"collapses"`
	Evolutions   int     `json:"evolutions"`
	Degradations int     `json:"degradations"`
	PlayerRate   float64 `json:"player_win_rate"`
}

func runSim(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	common := addCommonFlags(fs)
	games := fs.Int("games", 1, "number of sessions to run")
	verbose := fs.Bool("verbose", false, "print every event")
	fs.Parse(args)

	cfg, cat, err := common.load()
	if err != nil {
		return err
	}

	var report simReport
	for i := 0; i < *games; i++ {
		var logger evlog.EventLogger = evlog.NewStructuredLogger(log.Logger)
		if *verbose {
			logger = evlog.NewTextLogger(os.Stdout)
		}
		seed := cfg.Seed
		if seed != 0 {
			seed += int64(i)
		}
		session, err := game.NewSession(game.SessionConfig{
			Catalog: cat,
			Rules:   cfg.Rules,
			Logger:  logger,
			Seed:    seed,
		}, game.NewAIController(), game.NewAIController())
		if err != nil {
			return err
		}
		winner, err := session.Run(ctx)
		if err != nil {
			return fmt.Errorf("session %d: %w", i+1, err)
		}
		sum := session.Summary()
		if sum.Cancelled {
			break
		}

		report.Games++
		switch winner {
		case game.SidePlayer:
			report.PlayerWins++
		case game.SideEnemy:
			report.EnemyWins++
		default:
			report.Draws++
		}
		report.Rounds += sum.Rounds
		report.Collapses += sum.Collapses[0] + sum.Collapses[1]
		report.Evolutions += sum.Evolutions
		report.Degradations += sum.Degradations
		log.Info().Int("game", i+1).Int("winner", winner).Int("rounds", sum.Rounds).Str("result", sum.Result).Msg("session finished")
	}
	if report.Games > 0 {
		report.PlayerRate = float64(report.PlayerWins) / float64(report.Games)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
