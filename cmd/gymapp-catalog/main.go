// Command gymapp-catalog checks and queries the remote exercise catalog
// without starting the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/gymapp/internal/app"
	"github.com/claude/gymapp/internal/catalog"
	"github.com/claude/gymapp/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	search := flag.String("search", "", "search term; omit to only check availability")
	list := flag.Bool("list", false, "list one page of the remote catalog")
	offset := flag.Int("offset", 0, "first entry of the page with -list")
	limit := flag.Int("limit", 10, "maximum results")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	local, err := catalog.NewLocal()
	if err != nil {
		log.Error("failed to load local catalog", "error", err)
		os.Exit(1)
	}
	var remote *catalog.Remote
	p := catalog.NewProvider(local, nil, log)
	if cfg.Catalog.APIKey != "" {
		cache := catalog.NewCache(cfg.Catalog.CacheSizeBytes(), cfg.Catalog.CacheTTL.D())
		remote = app.NewRemote(cfg.Catalog, cache, log)
		p = catalog.NewProvider(local, remote, log)
	}

	ctx := context.Background()
	status := p.CheckAvailability(ctx)
	log.Info("remote catalog", "available", status.Available, "reason", status.Reason)

	var out any
	switch {
	case *list:
		if remote == nil {
			log.Error("-list needs catalog.api_key")
			os.Exit(1)
		}
		page, err := remote.List(ctx, *limit, *offset)
		if err != nil {
			log.Error("listing remote catalog", "error", err)
			os.Exit(1)
		}
		out = page
	case *search != "":
		out = p.Search(ctx, *search, *limit)
	default:
		if !status.Available {
			os.Exit(1)
		}
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Error("write results", "error", err)
		os.Exit(1)
	}
}
