package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/peterkuimelis/voidred/internal/config"
	"github.com/peterkuimelis/voidred/internal/game"
	vmcp "github.com/peterkuimelis/voidred/internal/mcp"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	catalog := flag.String("catalog", "", "path to a catalog YAML (default: embedded)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *catalog != "" {
		cfg.Catalog = *catalog
	}
	// stdout carries the MCP protocol; logs go to stderr.
	cfg.SetupLogging(os.Stderr)

	cat, err := game.LoadCatalog(cfg.Catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("load catalog")
	}

	s := server.NewMCPServer("voidred", "1.0.0",
		server.WithToolCapabilities(false),
		server.WithInstructions("Play Void Red against the AI enemy. Call start_game, then play_card once per round "+
			"until game_over is true. card_stats shows which of your cards are close to evolving."),
	)
	vmcp.NewTools(cat, cfg.Rules, cfg.Seed, log.Logger).Register(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
