package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agora/internal/config"
	"agora/internal/contentstore"
	"agora/internal/journal"
	"agora/internal/ledger"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestServer wires a Server against an in-memory database with no redis.
// It mirrors NewServerWithDeps minus the prometheus middleware, which uses
// the global registry and cannot be constructed once per test.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Event{}))

	cfg := &config.Config{
		Port:            "0",
		JWTSecret:       "test-secret",
		Env:             "test",
		DBDriver:        "sqlite",
		LedgerOwner:     "owner",
		MinVotingPeriod: time.Hour,
		QuorumPercent:   51,
	}

	store := journal.NewStore(db)
	hub := notifications.NewHub()
	notifier := notifications.NewNotifier(nil)
	fanout := notifications.NewSink(notifier, hub, observability.Logger)
	sink := journal.NewSink(store, observability.Logger, fanout, metricsSink{})

	middleware.InitMiddleware(cfg)

	srv := &Server{
		config:     cfg,
		db:         db,
		social:     ledger.NewSocialLedger(sink, nil),
		governance: ledger.NewGovernanceLedger(cfg.LedgerOwner, cfg.MinVotingPeriod, cfg.QuorumPercent, sink, nil),
		journal:    store,
		content:    contentstore.NewMemoryStore(),
		notifier:   notifier,
		hub:        hub,
	}

	app := fiber.New()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	return srv, app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerAccount creates a credential through the API and returns the
// freshly minted address plus a bearer token for it.
func registerAccount(t *testing.T, app *fiber.App, handle string) (string, string) {
	t.Helper()

	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"handle":   handle,
		"password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Account models.Account `json:"account"`
		Token   string         `json:"token"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Account.Address)
	require.NotEmpty(t, body.Token)
	return body.Account.Address, body.Token
}

func TestRegisterAndLogin(t *testing.T) {
	_, app := newTestServer(t)
	registerAccount(t, app, "alice")

	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"handle":   "alice",
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"handle":   "alice",
		"password": "wrong-password",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	_, app := newTestServer(t)

	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"handle":   "alice",
		"password": "short",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRegisterRejectsDuplicateHandle(t *testing.T) {
	_, app := newTestServer(t)
	registerAccount(t, app, "alice")

	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"handle":   "alice",
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	_, app := newTestServer(t)

	resp := doJSON(t, app, fiber.MethodPost, "/api/profiles", "", fiber.Map{"username": "alice"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/api/profiles", "not-a-token", fiber.Map{"username": "alice"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProfileEndpoints(t *testing.T) {
	_, app := newTestServer(t)
	address, token := registerAccount(t, app, "alice")

	resp := doJSON(t, app, fiber.MethodPost, "/api/profiles", token, fiber.Map{
		"username": "alice",
		"bio":      "hello",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var profile models.Profile
	decodeBody(t, resp, &profile)
	assert.Equal(t, address, profile.Account)
	assert.Equal(t, "alice", profile.Username)
	assert.True(t, profile.Active)

	// Same principal cannot create twice.
	resp = doJSON(t, app, fiber.MethodPost, "/api/profiles", token, fiber.Map{"username": "alice2"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPut, "/api/profiles/me", token, fiber.Map{
		"username": "alice",
		"bio":      "updated",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &profile)
	assert.Equal(t, "updated", profile.Bio)

	resp = doJSON(t, app, fiber.MethodGet, "/api/profiles/"+address, "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/profiles/nobody", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPostLifecycle(t *testing.T) {
	_, app := newTestServer(t)
	address, token := registerAccount(t, app, "alice")

	resp := doJSON(t, app, fiber.MethodPost, "/api/profiles", token, fiber.Map{"username": "alice"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Upload the body first, then reference it from the post.
	req := httptest.NewRequest(fiber.MethodPost, "/api/content", bytes.NewReader([]byte("first post")))
	req.Header.Set("Content-Type", fiber.MIMEOctetStream)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var upload struct {
		ContentRef string `json:"content_ref"`
	}
	decodeBody(t, resp, &upload)
	require.NotEmpty(t, upload.ContentRef)

	resp = doJSON(t, app, fiber.MethodPost, "/api/posts", token, fiber.Map{"content_ref": upload.ContentRef})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var post models.Post
	decodeBody(t, resp, &post)
	assert.Equal(t, uint64(1), post.ID)
	assert.Equal(t, address, post.Creator)

	resp = doJSON(t, app, fiber.MethodGet, "/api/posts/1", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/posts/total", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var total struct {
		TotalPosts uint64 `json:"total_posts"`
	}
	decodeBody(t, resp, &total)
	assert.Equal(t, uint64(1), total.TotalPosts)

	// Content comes back byte-for-byte.
	resp = doJSON(t, app, fiber.MethodGet, "/api/content/"+upload.ContentRef, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("first post"), data)

	resp = doJSON(t, app, fiber.MethodGet, "/api/content/deadbeef", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLikeEndpoints(t *testing.T) {
	_, app := newTestServer(t)
	aliceAddr, aliceToken := registerAccount(t, app, "alice")
	_, bobToken := registerAccount(t, app, "bob")

	resp := doJSON(t, app, fiber.MethodPost, "/api/profiles", aliceToken, fiber.Map{"username": "alice"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp = doJSON(t, app, fiber.MethodPost, "/api/posts", aliceToken, fiber.Map{"content_ref": "ref-1"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Bob never created a profile; liking still works.
	resp = doJSON(t, app, fiber.MethodPost, "/api/posts/1/like", bobToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/api/posts/1/like", bobToken, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/posts/1", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)
	assert.Equal(t, uint64(1), post.LikeCount)

	resp = doJSON(t, app, fiber.MethodDelete, "/api/posts/1/like", bobToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/posts/1/likes/"+aliceAddr, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var liked struct {
		Liked bool `json:"liked"`
	}
	decodeBody(t, resp, &liked)
	assert.False(t, liked.Liked)
}

func TestCommentDiscoveryThroughEvents(t *testing.T) {
	_, app := newTestServer(t)
	_, token := registerAccount(t, app, "alice")

	resp := doJSON(t, app, fiber.MethodPost, "/api/profiles", token, fiber.Map{"username": "alice"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp = doJSON(t, app, fiber.MethodPost, "/api/posts", token, fiber.Map{"content_ref": "ref-1"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/api/posts/1/comments", token, fiber.Map{"content": "nice one"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// The comment body is only retrievable from the post's event history.
	resp = doJSON(t, app, fiber.MethodGet, "/api/posts/1/events", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var feed struct {
		Events []models.Event `json:"events"`
	}
	decodeBody(t, resp, &feed)
	require.NotEmpty(t, feed.Events)

	var found bool
	for i := range feed.Events {
		if feed.Events[i].Kind != models.EventCommentAdded {
			continue
		}
		var payload models.CommentEventPayload
		require.NoError(t, feed.Events[i].DecodePayload(&payload))
		assert.Equal(t, "nice one", payload.Content)
		found = true
	}
	assert.True(t, found, "comment_added event should be in the post history")
}

func TestFollowEndpoints(t *testing.T) {
	_, app := newTestServer(t)
	aliceAddr, aliceToken := registerAccount(t, app, "alice")
	bobAddr, bobToken := registerAccount(t, app, "bob")

	resp := doJSON(t, app, fiber.MethodPost, "/api/profiles", aliceToken, fiber.Map{"username": "alice"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp = doJSON(t, app, fiber.MethodPost, "/api/profiles", bobToken, fiber.Map{"username": "bob"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/api/follows/"+bobAddr, aliceToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/api/follows/"+aliceAddr, aliceToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "self-follow is rejected")

	resp = doJSON(t, app, fiber.MethodGet, "/api/profiles/"+aliceAddr+"/following/"+bobAddr, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var following struct {
		Following bool `json:"following"`
	}
	decodeBody(t, resp, &following)
	assert.True(t, following.Following)

	resp = doJSON(t, app, fiber.MethodDelete, "/api/follows/"+bobAddr, aliceToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodDelete, "/api/follows/"+bobAddr, aliceToken, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestGovernanceEndpoints(t *testing.T) {
	_, app := newTestServer(t)
	_, aliceToken := registerAccount(t, app, "alice")
	_, bobToken := registerAccount(t, app, "bob")

	resp := doJSON(t, app, fiber.MethodPost, "/api/proposals", aliceToken, fiber.Map{
		"description":   "fund the archive",
		"voting_period": "1m",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "period below the minimum")

	resp = doJSON(t, app, fiber.MethodPost, "/api/proposals", aliceToken, fiber.Map{
		"description":   "fund the archive",
		"voting_period": "2h",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var proposal models.Proposal
	decodeBody(t, resp, &proposal)
	assert.Equal(t, uint64(1), proposal.ID)

	resp = doJSON(t, app, fiber.MethodPost, "/api/proposals/1/votes", bobToken, fiber.Map{"support": true})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/api/proposals/1/votes", bobToken, fiber.Map{"support": false})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, "one vote per account")

	resp = doJSON(t, app, fiber.MethodGet, "/api/proposals/1/votes/nobody", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var voted struct {
		Voted bool `json:"voted"`
	}
	decodeBody(t, resp, &voted)
	assert.False(t, voted.Voted)

	// Voting window is still open.
	resp = doJSON(t, app, fiber.MethodPost, "/api/proposals/1/execute", aliceToken, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	// Only the proposer or the owner may cancel.
	resp = doJSON(t, app, fiber.MethodPost, "/api/proposals/1/cancel", bobToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/api/proposals/1/cancel", aliceToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/api/proposals/1/votes", bobToken, fiber.Map{"support": true})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode, "canceled proposals take no votes")
}

func TestEventsEndpointFilters(t *testing.T) {
	_, app := newTestServer(t)
	address, token := registerAccount(t, app, "alice")

	resp := doJSON(t, app, fiber.MethodPost, "/api/profiles", token, fiber.Map{"username": "alice"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp = doJSON(t, app, fiber.MethodPost, "/api/posts", token, fiber.Map{"content_ref": "ref-1"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var feed struct {
		Events []models.Event `json:"events"`
	}

	resp = doJSON(t, app, fiber.MethodGet, "/api/events", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &feed)
	assert.Len(t, feed.Events, 2)

	resp = doJSON(t, app, fiber.MethodGet, "/api/events?actor="+address, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &feed)
	assert.Len(t, feed.Events, 2)

	resp = doJSON(t, app, fiber.MethodGet, "/api/events?kind="+models.EventPostCreated, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &feed)
	require.Len(t, feed.Events, 1)
	assert.Equal(t, models.EventPostCreated, feed.Events[0].Kind)

	resp = doJSON(t, app, fiber.MethodGet, "/api/events?post_id=borked", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestInvalidPathIDs(t *testing.T) {
	_, app := newTestServer(t)

	resp := doJSON(t, app, fiber.MethodGet, "/api/posts/0", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/posts/not-a-number", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/proposals/99", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	_, app := newTestServer(t)

	resp := doJSON(t, app, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/health/ready", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health struct {
		Status string `json:"status"`
		Checks struct {
			Database string `json:"database"`
			Redis    string `json:"redis"`
		} `json:"checks"`
	}
	decodeBody(t, resp, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Checks.Database)
	assert.Equal(t, "unavailable", health.Checks.Redis)
}
