package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/postpilot/postpilot-api/configs"
	"github.com/postpilot/postpilot-api/internal/api/handlers"
	"github.com/postpilot/postpilot-api/internal/apperrors"
	"github.com/postpilot/postpilot-api/internal/calendar"
	"github.com/postpilot/postpilot-api/internal/models"
	"github.com/postpilot/postpilot-api/internal/service"
	"github.com/postpilot/postpilot-api/internal/transfer"
	"github.com/postpilot/postpilot-api/pkg/utils"
)

const (
	testSecret = "test-jwt-secret"
	testUser   = "9b2f6c1e-3d4a-4f5b-8c6d-7e8f9a0b1c2d"
	testItem   = "1f0e2d3c-4b5a-4968-8776-a5b4c3d2e1f0"
)

type fakeCalendarService struct {
	service.CalendarService
	userID string
	req    *transfer.GenerateCalendarRequest
}

func (f *fakeCalendarService) Generate(ctx context.Context, userID string, req *transfer.GenerateCalendarRequest) ([]calendar.Day, error) {
	f.userID, f.req = userID, req
	return []calendar.Day{{Day: 1, Theme: "Launch"}}, nil
}

func (f *fakeCalendarService) Delete(ctx context.Context, userID, calendarID string) error {
	return apperrors.Ownership("calendar")
}

type fakeInstagramService struct {
	service.InstagramService
	userID string
}

func (f *fakeInstagramService) Publish(ctx context.Context, userID string, req *transfer.PostToInstagramRequest) (*transfer.PostToInstagramResponse, error) {
	f.userID = userID
	return &transfer.PostToInstagramResponse{Success: true, PostID: "ig-post-1", Message: "Successfully posted to Instagram!"}, nil
}

func (f *fakeInstagramService) CheckConfig() *transfer.ConnectConfigResponse {
	return &transfer.ConnectConfigResponse{Configured: true, AppID: "app-1"}
}

type fakeProductImageService struct {
	service.ProductImageService
	meta *transfer.UploadProductImage
	file []byte
}

func (f *fakeProductImageService) Upload(ctx context.Context, userID string, meta *transfer.UploadProductImage, file []byte) (*models.ProductImage, error) {
	f.meta, f.file = meta, file
	return &models.ProductImage{ID: "img-1", UserID: userID, ProductName: meta.ProductName}, nil
}

type fakeSubscriptionService struct {
	service.SubscriptionService
	payload   []byte
	signature string
}

func (f *fakeSubscriptionService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	f.payload, f.signature = payload, signature
	return nil
}

type testDeps struct {
	calendar  *fakeCalendarService
	instagram *fakeInstagramService
	images    *fakeProductImageService
	billing   *fakeSubscriptionService
}

func newTestApp(t *testing.T) (*fiber.App, *testDeps) {
	t.Helper()
	return newTestAppWithSecret(t, testSecret)
}

func newTestAppWithSecret(t *testing.T, secret string) (*fiber.App, *testDeps) {
	t.Helper()
	deps := &testDeps{
		calendar:  &fakeCalendarService{},
		instagram: &fakeInstagramService{},
		images:    &fakeProductImageService{},
		billing:   &fakeSubscriptionService{},
	}
	cfg := config.Config{JWTSecret: secret, Server: config.Server{BodyLimit: 4 * 1024 * 1024}}
	app := NewApp(cfg, Handlers{
		Calendar:     handlers.NewCalendarHandler(deps.calendar),
		Instagram:    handlers.NewInstagramHandler(deps.instagram, nil),
		Schedule:     handlers.NewScheduleHandler(nil),
		Content:      handlers.NewContentHandler(nil),
		ProductImage: handlers.NewProductImageHandler(deps.images),
		Billing:      handlers.NewBillingHandler(deps.billing),
	})
	return app, deps
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := utils.GenerateToken(testSecret, testUser, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t))
	return req
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestPreflight(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/generate-calendar", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestMissingToken(t *testing.T) {
	app, deps := newTestApp(t)

	req := jsonRequest(t, http.MethodPost, "/functions/v1/post-to-instagram", map[string]string{"calendarItemId": testItem})
	req.Header.Del("Authorization")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Not authenticated", decode(t, resp)["error"])
	assert.Empty(t, deps.instagram.userID)
}

func TestInvalidToken(t *testing.T) {
	app, _ := newTestApp(t)

	req := jsonRequest(t, http.MethodPost, "/functions/v1/post-to-instagram", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid or expired token", decode(t, resp)["error"])
}

func TestPostToInstagram(t *testing.T) {
	app, deps := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/functions/v1/post-to-instagram", map[string]string{
		"calendarItemId": testItem,
		"imageUrl":       "https://cdn.example.com/a.png",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ig-post-1", body["postId"])
	assert.Equal(t, testUser, deps.instagram.userID)
}

func TestValidationEnvelope(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/functions/v1/post-to-instagram", map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "calendarItemId is required", decode(t, resp)["error"])
}

func TestGenerateCalendar_UsesTokenUser(t *testing.T) {
	app, deps := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/functions/v1/generate-calendar", map[string]any{
		"businessName":     "Luna Bakery",
		"monthYear":        "March 2025",
		"postingFrequency": "3x-week",
		"userId":           "someone-else",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Len(t, body["items"], 1)
	assert.Equal(t, testUser, deps.calendar.userID)
	assert.Equal(t, testUser, deps.calendar.req.UserID)
	assert.Equal(t, "3x-week", deps.calendar.req.PostingFrequency)
}

func TestDeleteCalendar_Errors(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/functions/v1/calendars/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "id must be a valid id", decode(t, resp)["error"])

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/functions/v1/calendars/"+testItem, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "You do not have access to this calendar", decode(t, resp)["error"])
}

func TestConnectInstagram_CheckConfig(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/functions/v1/connect-instagram", map[string]bool{"checkConfig": true}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, true, body["configured"])
	assert.Equal(t, "app-1", body["appId"])
}

func TestUploadProductImage(t *testing.T) {
	app, deps := newTestApp(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("productName", "Sourdough Loaf"))
	require.NoError(t, w.WriteField("menuItemId", "m1"))
	part, err := w.CreateFormFile("file", "loaf.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("image-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/functions/v1/product-images", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", bearer(t))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, deps.images.meta)
	assert.Equal(t, "Sourdough Loaf", deps.images.meta.ProductName)
	assert.Equal(t, "m1", deps.images.meta.MenuItemID)
	assert.Equal(t, []byte("image-bytes"), deps.images.file)
}

func TestStripeWebhook_NoBearerRequired(t *testing.T) {
	app, deps := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/functions/v1/stripe-webhook", bytes.NewBufferString(`{"id":"evt_1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"id":"evt_1"}`, string(deps.billing.payload))
	assert.Equal(t, "t=1,v1=abc", deps.billing.signature)
}

func TestEmptySecretRejectsEveryToken(t *testing.T) {
	app, deps := newTestAppWithSecret(t, "")

	claims := utils.AuthClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "attacker-chosen-user",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(""))
	require.NoError(t, err)

	req := jsonRequest(t, http.MethodPost, "/functions/v1/post-to-instagram", map[string]string{"calendarItemId": testItem})
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "AUTH_JWT_SECRET is not configured", decode(t, resp)["error"])
	assert.Empty(t, deps.instagram.userID)
}
