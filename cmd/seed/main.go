// Command main seeds the Agora ledger with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"agora/internal/config"
	"agora/internal/contentstore"
	"agora/internal/database"
	"agora/internal/journal"
	"agora/internal/ledger"
	"agora/internal/observability"
	"agora/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "Number of accounts to create")
	flag.IntVar(&opts.Posts, "posts", opts.Posts, "Number of posts to create")
	flag.IntVar(&opts.Proposals, "proposals", opts.Proposals, "Number of proposals to create")
	flag.Int64Var(&opts.Seed, "seed", opts.Seed, "Random seed")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	store := journal.NewStore(db)
	sink := journal.NewSink(store, observability.Logger)
	social := ledger.NewSocialLedger(sink, nil)
	governance := ledger.NewGovernanceLedger(cfg.LedgerOwner, cfg.MinVotingPeriod, cfg.QuorumPercent, sink, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Replay first so seeding continues from the existing ledger state
	// instead of colliding with it.
	if err := journal.Replay(ctx, store, social, governance); err != nil {
		log.Fatalf("Failed to replay event journal: %v", err)
	}

	seeder := seed.New(db, social, governance, contentstore.NewMemoryStore())
	summary, err := seeder.Run(ctx, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d accounts, %d posts, %d likes, %d comments, %d follows, %d proposals, %d votes",
		summary.Accounts, summary.Posts, summary.Likes, summary.Comments,
		summary.Follows, summary.Proposals, summary.Votes)
}
