package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/postpilot/postpilot-api/configs"
	"github.com/postpilot/postpilot-api/internal/apperrors"
	"github.com/postpilot/postpilot-api/internal/models"
	"github.com/postpilot/postpilot-api/internal/transfer"
	"github.com/postpilot/postpilot-api/pkg/utils"
)

const testEncryptionKey = "test-encryption-key"

func TestBuildCaption(t *testing.T) {
	tests := []struct {
		name     string
		caption  string
		hashtags []string
		brand    string
		cta      string
		want     string
	}{
		{"all parts", "A", []string{"x"}, "", "Go", "A\n\n#x\n\nGo"},
		{"hashtags only", "", []string{"#x", "y"}, "", "", "#x #y"},
		{"brand appended", "A", []string{"#x"}, "#Luna", "", "A\n\n#x #Luna"},
		{"brand already present", "A", []string{"#luna", "#x"}, "Luna", "", "A\n\n#luna #x"},
		{"blank tags dropped", "A", []string{" ", "#", "x"}, "", "Go", "A\n\n#x\n\nGo"},
		{"no hashtags", "A", nil, "", "Go", "A\n\nGo"},
		{"empty", "", nil, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildCaption(tt.caption, tt.hashtags, tt.brand, tt.cta))
		})
	}
}

type graphStub struct {
	server   *httptest.Server
	hits     atomic.Int32
	captions []string
	failStep string
}

func newGraphStub(t *testing.T) *graphStub {
	g := &graphStub{}
	mux := http.NewServeMux()
	mux.HandleFunc("/ig-1/media", func(w http.ResponseWriter, r *http.Request) {
		g.hits.Add(1)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "plain-token", body["access_token"])
		g.captions = append(g.captions, body["caption"])
		if g.failStep == "media" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"message": "Invalid image URL", "code": 9004}}`))
			return
		}
		w.Write([]byte(`{"id": "container-1"}`))
	})
	mux.HandleFunc("/ig-1/media_publish", func(w http.ResponseWriter, r *http.Request) {
		g.hits.Add(1)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "container-1", body["creation_id"])
		if g.failStep == "publish" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": {"message": "Service temporarily unavailable"}}`))
			return
		}
		w.Write([]byte(`{"id": "post-42"}`))
	})
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		g.hits.Add(1)
		if r.URL.Query().Get("grant_type") == "fb_exchange_token" {
			w.Write([]byte(`{"access_token": "long-lived", "token_type": "bearer", "expires_in": 5184000}`))
			return
		}
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "short-lived", "token_type": "bearer", "expires_in": 3600}`))
	})
	mux.HandleFunc("/me/accounts", func(w http.ResponseWriter, r *http.Request) {
		g.hits.Add(1)
		w.Write([]byte(`{"data": [{"id": "page-1", "name": "Page"}, {"id": "page-2", "instagram_business_account": {"id": "ig-1"}}]}`))
	})
	g.server = httptest.NewServer(mux)
	t.Cleanup(g.server.Close)
	return g
}

func (g *graphStub) config() config.Config {
	return config.Config{
		TokenEncryptionKey: testEncryptionKey,
		Instagram: config.Instagram{
			AppID:        "app-1",
			AppSecret:    "secret",
			GraphBaseURL: g.server.URL,
			TokenURL:     g.server.URL + "/oauth/access_token",
		},
	}
}

func connectedProfile(t *testing.T) *models.BusinessProfile {
	enc, err := utils.Encrypt([]byte("plain-token"), utils.DeriveKey(testEncryptionKey))
	require.NoError(t, err)
	expires := time.Now().Add(30 * 24 * time.Hour)

	p := testBusinessProfile()
	p.InstagramPostingEnabled = true
	p.InstagramAccessToken = enc
	p.InstagramTokenExpiresAt = &expires
	p.InstagramUserID = "ig-1"
	p.BrandHashtag = "#LunaBakery"
	return p
}

func postableItem() *models.CalendarItem {
	return &models.CalendarItem{
		ID:          testItem,
		CalendarID:  "cal-1",
		DayNumber:   1,
		CaptionLong: "Fresh bread today",
		Hashtags:    []string{"austin", "#bread"},
		CTA:         "Come by!",
	}
}

func newTestInstagramService(g *graphStub, profile *models.BusinessProfile) (InstagramService, *fakeCalendars, *fakeTasks, *fakeProfiles) {
	cfg := g.config()
	cals := newFakeCalendars()
	cals.addItem(postableItem(), testProfile, testUser)
	tasks := &fakeTasks{}
	profiles := newFakeProfiles(profile)
	return NewInstagramService(cfg, NewGraphClient(cfg.Instagram), profiles, cals, tasks), cals, tasks, profiles
}

func TestPublish_Success(t *testing.T) {
	g := newGraphStub(t)
	svc, cals, tasks, _ := newTestInstagramService(g, connectedProfile(t))

	resp, err := svc.Publish(context.Background(), testUser, &transfer.PostToInstagramRequest{
		CalendarItemID: testItem,
		ImageURL:       "https://cdn.example.com/bread.jpg",
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "post-42", resp.PostID)
	assert.Equal(t, int32(2), g.hits.Load())
	require.Len(t, g.captions, 1)
	assert.Equal(t, "Fresh bread today\n\n#austin #bread #LunaBakery\n\nCome by!", g.captions[0])
	assert.Equal(t, "post-42", cals.posted[testItem])
	assert.Equal(t, []string{testUser}, tasks.insights)
}

func TestPublish_PreconditionsFailBeforeNetwork(t *testing.T) {
	expired := time.Now().Add(-time.Hour)

	tests := []struct {
		name     string
		mutate   func(p *models.BusinessProfile)
		imageURL string
		field    string
	}{
		{"posting disabled", func(p *models.BusinessProfile) {
			p.InstagramPostingEnabled = false
			p.InstagramAccessToken = ""
		}, "", "instagram_posting_enabled"},
		{"no token", func(p *models.BusinessProfile) { p.InstagramAccessToken = "" }, "", "instagram_access_token"},
		{"expired token", func(p *models.BusinessProfile) { p.InstagramTokenExpiresAt = &expired }, "", "instagram_token_expires_at"},
		{"no image", func(p *models.BusinessProfile) {}, "  ", "imageUrl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGraphStub(t)
			profile := connectedProfile(t)
			tt.mutate(profile)
			svc, cals, _, _ := newTestInstagramService(g, profile)

			_, err := svc.Publish(context.Background(), testUser, &transfer.PostToInstagramRequest{
				CalendarItemID: testItem,
				ImageURL:       tt.imageURL,
			})

			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Zero(t, g.hits.Load())
			assert.Empty(t, cals.posted)
		})
	}
}

func TestPublish_GraphFailures(t *testing.T) {
	for _, step := range []string{"media", "publish"} {
		t.Run(step, func(t *testing.T) {
			g := newGraphStub(t)
			g.failStep = step
			svc, cals, tasks, _ := newTestInstagramService(g, connectedProfile(t))

			_, err := svc.Publish(context.Background(), testUser, &transfer.PostToInstagramRequest{
				CalendarItemID: testItem,
				ImageURL:       "https://cdn.example.com/bread.jpg",
			})

			var upErr *apperrors.UpstreamError
			require.ErrorAs(t, err, &upErr)
			assert.Equal(t, "Instagram", upErr.Service)
			assert.Empty(t, cals.posted)
			assert.Empty(t, tasks.insights)
		})
	}
}

func TestPublish_InsightsFailureDoesNotFailPublish(t *testing.T) {
	g := newGraphStub(t)
	svc, _, tasks, _ := newTestInstagramService(g, connectedProfile(t))
	tasks.err = assert.AnError

	resp, err := svc.Publish(context.Background(), testUser, &transfer.PostToInstagramRequest{
		CalendarItemID: testItem,
		ImageURL:       "https://cdn.example.com/bread.jpg",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestPublish_ForeignItem(t *testing.T) {
	g := newGraphStub(t)
	svc, cals, _, _ := newTestInstagramService(g, connectedProfile(t))
	cals.owners[testItem].UserID = "someone-else"

	_, err := svc.Publish(context.Background(), testUser, &transfer.PostToInstagramRequest{
		CalendarItemID: testItem,
		ImageURL:       "https://cdn.example.com/bread.jpg",
	})
	var ownErr *apperrors.OwnershipError
	require.ErrorAs(t, err, &ownErr)
	assert.Zero(t, g.hits.Load())
}

func TestCheckConfig(t *testing.T) {
	g := newGraphStub(t)
	svc, _, _, _ := newTestInstagramService(g, connectedProfile(t))
	assert.Equal(t, &transfer.ConnectConfigResponse{Configured: true, AppID: "app-1"}, svc.CheckConfig())

	cfg := g.config()
	cfg.Instagram.AppSecret = ""
	bare := NewInstagramService(cfg, NewGraphClient(cfg.Instagram), newFakeProfiles(), newFakeCalendars(), &fakeTasks{})
	assert.Equal(t, &transfer.ConnectConfigResponse{Configured: false}, bare.CheckConfig())
}

func TestConnect_StoresEncryptedLongLivedToken(t *testing.T) {
	g := newGraphStub(t)
	svc, _, _, profiles := newTestInstagramService(g, testBusinessProfile())

	resp, err := svc.Connect(context.Background(), testUser, "the-code", "https://app.example.com/callback")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.WithinDuration(t, time.Now().Add(60*24*time.Hour), resp.ExpiresAt, time.Minute)

	require.NotNil(t, profiles.conn)
	assert.Equal(t, "ig-1", profiles.conn.UserID)
	assert.NotEqual(t, "long-lived", profiles.conn.AccessToken)

	plain, err := utils.Decrypt(profiles.conn.AccessToken, utils.DeriveKey(testEncryptionKey))
	require.NoError(t, err)
	assert.Equal(t, "long-lived", plain)
}

func TestConnect_MissingInput(t *testing.T) {
	g := newGraphStub(t)
	svc, _, _, _ := newTestInstagramService(g, testBusinessProfile())

	_, err := svc.Connect(context.Background(), testUser, "", "https://app.example.com/callback")
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "code", vErr.Field)
	assert.Zero(t, g.hits.Load())
}

func TestRefreshToken(t *testing.T) {
	g := newGraphStub(t)
	profile := connectedProfile(t)
	svc, _, _, profiles := newTestInstagramService(g, profile)

	require.NoError(t, svc.RefreshToken(context.Background(), profile))
	require.NotNil(t, profiles.conn)

	plain, err := utils.Decrypt(profiles.conn.AccessToken, utils.DeriveKey(testEncryptionKey))
	require.NoError(t, err)
	assert.Equal(t, "long-lived", plain)
}

func TestDisconnect(t *testing.T) {
	g := newGraphStub(t)
	svc, _, _, profiles := newTestInstagramService(g, connectedProfile(t))

	require.NoError(t, svc.Disconnect(context.Background(), testUser))
	assert.True(t, profiles.cleared)

	err := svc.Disconnect(context.Background(), "someone-else")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = svc.Disconnect(context.Background(), "")
	var authErr *apperrors.NotAuthenticatedError
	assert.ErrorAs(t, err, &authErr)
}
