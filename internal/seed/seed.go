// Package seed populates the ledger with demo data for development and
// testing. Everything goes through the public ledger operations so the seeded
// state is indistinguishable from organically created state, and every
// mutation lands in the event journal like any other.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"agora/internal/contentstore"
	"agora/internal/ledger"
	"agora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much data the seeder creates.
type Options struct {
	Users     int
	Posts     int
	Proposals int
	// Password is the plaintext password shared by all seeded accounts.
	Password string
	// Seed fixes the random source so repeated runs produce the same data.
	Seed int64
}

// DefaultOptions returns the sizes used by the development seeder.
func DefaultOptions() Options {
	return Options{
		Users:     25,
		Posts:     100,
		Proposals: 5,
		Password:  "password123",
		Seed:      0,
	}
}

// Summary reports what a seeding run created.
type Summary struct {
	Accounts  int
	Posts     int
	Likes     int
	Comments  int
	Follows   int
	Proposals int
	Votes     int
}

// Seeder creates demo accounts and drives the ledgers with them.
type Seeder struct {
	db         *gorm.DB
	social     *ledger.SocialLedger
	governance *ledger.GovernanceLedger
	content    contentstore.Store
	rng        *rand.Rand
}

// New creates a Seeder bound to the given database and ledgers.
func New(db *gorm.DB, social *ledger.SocialLedger, governance *ledger.GovernanceLedger, content contentstore.Store) *Seeder {
	return &Seeder{
		db:         db,
		social:     social,
		governance: governance,
		content:    content,
	}
}

// Run seeds accounts, profiles, posts, likes, comments, follows, proposals
// and votes. It is not idempotent: running it twice doubles the data.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	gofakeit.Seed(opts.Seed)
	s.rng = rand.New(rand.NewSource(opts.Seed))

	summary := &Summary{}

	addresses, err := s.seedAccounts(ctx, opts, summary)
	if err != nil {
		return nil, err
	}
	postIDs, err := s.seedPosts(ctx, opts, addresses, summary)
	if err != nil {
		return nil, err
	}
	if err := s.seedEngagement(ctx, addresses, postIDs, summary); err != nil {
		return nil, err
	}
	if err := s.seedGovernance(ctx, opts, addresses, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// seedAccounts creates credential rows and a ledger profile for each. All
// accounts share one password, so the bcrypt hash is computed once.
func (s *Seeder) seedAccounts(ctx context.Context, opts Options, summary *Summary) ([]string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	addresses := make([]string, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		address := gofakeit.UUID()
		handle := fmt.Sprintf("%s%d", gofakeit.Username(), i)

		account := &models.Account{
			Address:      address,
			Handle:       handle,
			PasswordHash: string(hash),
		}
		if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
			return nil, fmt.Errorf("create account %s: %w", handle, err)
		}

		avatar, err := s.storeBlob(ctx, gofakeit.ImageJpeg(64, 64))
		if err != nil {
			return nil, err
		}
		if _, err := s.social.CreateProfile(ctx, address, handle, gofakeit.Quote(), avatar); err != nil {
			return nil, fmt.Errorf("create profile %s: %w", handle, err)
		}

		addresses = append(addresses, address)
		summary.Accounts++
	}
	return addresses, nil
}

func (s *Seeder) seedPosts(ctx context.Context, opts Options, addresses []string, summary *Summary) ([]uint64, error) {
	postIDs := make([]uint64, 0, opts.Posts)
	for i := 0; i < opts.Posts; i++ {
		creator := addresses[s.rng.Intn(len(addresses))]

		ref, err := s.storeBlob(ctx, []byte(gofakeit.HipsterParagraph(1, 3, 12, " ")))
		if err != nil {
			return nil, err
		}
		post, err := s.social.CreatePost(ctx, creator, ref)
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		postIDs = append(postIDs, post.ID)
		summary.Posts++
	}
	return postIDs, nil
}

// seedEngagement sprinkles likes, comments and follow edges across the
// seeded accounts. Duplicate edges are simply skipped.
func (s *Seeder) seedEngagement(ctx context.Context, addresses []string, postIDs []uint64, summary *Summary) error {
	for _, postID := range postIDs {
		for i := 0; i < s.rng.Intn(6); i++ {
			liker := addresses[s.rng.Intn(len(addresses))]
			err := s.social.LikePost(ctx, liker, postID)
			if err == nil {
				summary.Likes++
			} else if !isDuplicate(err) {
				return fmt.Errorf("like post %d: %w", postID, err)
			}
		}
		for i := 0; i < s.rng.Intn(3); i++ {
			commenter := addresses[s.rng.Intn(len(addresses))]
			if _, err := s.social.AddComment(ctx, commenter, postID, gofakeit.Sentence(8)); err != nil {
				return fmt.Errorf("comment on post %d: %w", postID, err)
			}
			summary.Comments++
		}
	}

	for _, follower := range addresses {
		for i := 0; i < 3; i++ {
			target := addresses[s.rng.Intn(len(addresses))]
			if target == follower {
				continue
			}
			err := s.social.FollowUser(ctx, follower, target)
			if err == nil {
				summary.Follows++
			} else if !isDuplicate(err) {
				return fmt.Errorf("follow %s: %w", target, err)
			}
		}
	}
	return nil
}

func (s *Seeder) seedGovernance(ctx context.Context, opts Options, addresses []string, summary *Summary) error {
	for i := 0; i < opts.Proposals; i++ {
		proposer := addresses[s.rng.Intn(len(addresses))]
		period := time.Duration(72+s.rng.Intn(96)) * time.Hour

		proposal, err := s.governance.CreateProposal(ctx, proposer, gofakeit.Sentence(10), "", period)
		if err != nil {
			return fmt.Errorf("create proposal: %w", err)
		}
		summary.Proposals++

		for _, voter := range addresses {
			if s.rng.Intn(2) == 0 {
				continue
			}
			if err := s.governance.CastVote(ctx, voter, proposal.ID, s.rng.Intn(3) > 0); err != nil {
				return fmt.Errorf("vote on proposal %d: %w", proposal.ID, err)
			}
			summary.Votes++
		}
	}
	return nil
}

func (s *Seeder) storeBlob(ctx context.Context, data []byte) (string, error) {
	ref, err := s.content.Store(ctx, data)
	if err != nil {
		return "", fmt.Errorf("store content: %w", err)
	}
	return ref, nil
}

// isDuplicate reports whether err is one of the benign already-done codes the
// random engagement pass is allowed to hit.
func isDuplicate(err error) bool {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Code {
	case models.CodeAlreadyLiked, models.CodeAlreadyFollowing, models.CodeAlreadyExists:
		return true
	}
	return false
}
