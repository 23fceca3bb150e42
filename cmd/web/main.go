package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/peterkuimelis/voidred/internal/config"
	"github.com/peterkuimelis/voidred/internal/game"
	vnet "github.com/peterkuimelis/voidred/internal/net"
	"github.com/peterkuimelis/voidred/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "HTTP address to listen on (default from config)")
	gameAddr := flag.String("game", "", "TCP game host for the websocket bridge (default from config)")
	embedHost := flag.Bool("host", true, "also run the TCP game host in this process")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if *addr != "" {
		cfg.Server.WebAddr = *addr
	}
	if *gameAddr != "" {
		cfg.Server.Addr = *gameAddr
	}
	cfg.SetupLogging(os.Stderr)

	cat, err := game.LoadCatalog(cfg.Catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("load catalog")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(web.Options{
		Catalog:      cat,
		Rules:        cfg.Rules,
		GameAddr:     dialAddr(cfg.Server.Addr),
		RateLimit:    cfg.Server.RateLimit,
		RateBurst:    cfg.Server.RateBurst,
		AllowedHosts: cfg.Server.AllowedHosts,
		Logger:       log.Logger,
	})
	httpSrv := &http.Server{Addr: cfg.Server.WebAddr, Handler: srv}

	g, gctx := errgroup.WithContext(ctx)
	if *embedHost {
		host := &vnet.Server{
			Addr:    cfg.Server.Addr,
			Catalog: cat,
			Rules:   cfg.Rules,
			Pacing:  cfg.EffectivePacing(),
			Seed:    cfg.Seed,
			Logger:  log.Logger,
		}
		g.Go(func() error { return host.Run(gctx) })
	}
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.WebAddr).Msg("voidred web UI listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// dialAddr turns a listen address like ":7777" into one the bridge can dial.
func dialAddr(listen string) string {
	if len(listen) > 0 && listen[0] == ':' {
		return "localhost" + listen
	}
	return listen
}
