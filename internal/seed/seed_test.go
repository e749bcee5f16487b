package seed

import (
	"context"
	"testing"
	"time"

	"agora/internal/contentstore"
	"agora/internal/journal"
	"agora/internal/ledger"
	"agora/internal/models"
	"agora/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func seedEnv(t *testing.T) (*Seeder, journal.Store, *ledger.SocialLedger, *ledger.GovernanceLedger) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Event{}))

	store := journal.NewStore(db)
	sink := journal.NewSink(store, observability.Logger)
	social := ledger.NewSocialLedger(sink, nil)
	governance := ledger.NewGovernanceLedger("owner", time.Hour, 51, sink, nil)

	return New(db, social, governance, contentstore.NewMemoryStore()), store, social, governance
}

func TestSeederRun(t *testing.T) {
	seeder, store, social, governance := seedEnv(t)
	ctx := context.Background()

	opts := Options{Users: 8, Posts: 20, Proposals: 2, Password: "password123", Seed: 42}
	summary, err := seeder.Run(ctx, opts)
	require.NoError(t, err)

	assert.Equal(t, opts.Users, summary.Accounts)
	assert.Equal(t, opts.Posts, summary.Posts)
	assert.Equal(t, opts.Proposals, summary.Proposals)
	assert.Equal(t, uint64(opts.Posts), social.TotalPosts())
	assert.Equal(t, uint64(opts.Proposals), governance.TotalProposals())

	// Every seeded mutation was journaled.
	count, err := store.Count(ctx)
	require.NoError(t, err)
	expected := int64(summary.Accounts + summary.Posts + summary.Likes +
		summary.Comments + summary.Follows + summary.Proposals + summary.Votes)
	assert.Equal(t, expected, count)
}

func TestSeederIsDeterministic(t *testing.T) {
	opts := Options{Users: 5, Posts: 10, Proposals: 1, Password: "password123", Seed: 7}

	first, _, _, _ := seedEnv(t)
	a, err := first.Run(context.Background(), opts)
	require.NoError(t, err)

	// Fresh environment, same seed: identical shape.
	db, err := gorm.Open(sqlite.Open("file:second?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Event{}))
	store := journal.NewStore(db)
	sink := journal.NewSink(store, observability.Logger)
	social := ledger.NewSocialLedger(sink, nil)
	governance := ledger.NewGovernanceLedger("owner", time.Hour, 51, sink, nil)
	second := New(db, social, governance, contentstore.NewMemoryStore())

	b, err := second.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
