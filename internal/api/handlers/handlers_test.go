package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/api/handlers"
	"Food-Rescue-Ledger/internal/api/routes"
	"Food-Rescue-Ledger/internal/middleware"
	"Food-Rescue-Ledger/internal/metrics"
	"Food-Rescue-Ledger/internal/utils"
	"Food-Rescue-Ledger/internal/utils/storage"
	"Food-Rescue-Ledger/internal/utils/txn"
	"Food-Rescue-Ledger/pkg/account"
	"Food-Rescue-Ledger/pkg/analytics"
	"Food-Rescue-Ledger/pkg/donation"
	"Food-Rescue-Ledger/pkg/jwt"
	"Food-Rescue-Ledger/pkg/request"
	"Food-Rescue-Ledger/pkg/store"
	"Food-Rescue-Ledger/pkg/task"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var baseTime = time.Date(2025, 2, 7, 9, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

const password = "s3cret"

type sentMail struct {
	to        string
	requestID string
}

type fakeNotifier struct {
	sent chan sentMail
}

func (f *fakeNotifier) NotifyRequestConfirmed(toEmail string, fr domain.FoodRequest, _ domain.DonationListing) error {
	f.sent <- sentMail{to: toEmail, requestID: fr.ID}
	return nil
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

type testServer struct {
	app      *fiber.App
	notifier *fakeNotifier
	tokens   map[string]string
}

func newTestServer(t *testing.T, quotaBytes int) *testServer {
	t.Helper()
	utils.InitValidator()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	accounts := []utils.Account{
		{ID: "donor-1", Email: "donor@example.org", DisplayName: "Corner Bakery", Role: domain.RoleDonor},
		{ID: "donor-2", Email: "other@example.org", DisplayName: "Green Kitchen", Role: domain.RoleDonor},
		{ID: "r1", Email: "r1@example.org", DisplayName: "Hope Shelter", Role: domain.RoleRecipient},
		{ID: "r2", Email: "r2@example.org", DisplayName: "Eastside Fridge", Role: domain.RoleNGO},
		{ID: "v1", Email: "v1@example.org", DisplayName: "Sam", Role: domain.RoleVolunteer},
		{ID: "v2", Email: "v2@example.org", DisplayName: "Alex", Role: domain.RoleVolunteer},
	}
	for i := range accounts {
		accounts[i].PasswordHash = string(hash)
	}

	now := func() time.Time { return baseTime }
	serial := &txn.Serial{}
	recordStore := store.NewRecordStore(store.NewMemoryMedium(quotaBytes))

	donationRepository := donation.NewDonationRepository(recordStore)
	requestRepository := request.NewRequestRepository(recordStore)
	taskRepository := task.NewTaskRepository(recordStore)

	jwtService, err := jwt.NewJWTServiceWithSecret("test-secret", nil)
	require.NoError(t, err)
	accountService := account.NewAccountService(accounts, jwtService)
	donationService := donation.NewDonationService(donationRepository, storage.NewDisabledS3(), serial, now)
	requestService := request.NewRequestService(requestRepository, donationRepository, serial, now)
	taskService := task.NewTaskService(taskRepository, serial, now)
	analyticsService := analytics.NewAnalyticsService(donationRepository, serial, now)

	_, err = taskService.SeedTasks(context.Background(), []domain.VolunteerTask{
		{ID: "t1", Title: "Bakery pickup", Type: domain.TaskPickup, ScheduledAt: baseTime.Add(8 * time.Hour), Points: 20},
	})
	require.NoError(t, err)

	notifier := &fakeNotifier{sent: make(chan sentMail, 4)}
	app := fiber.New()
	cfg := routes.Config{
		App:              app,
		AuthHandler:      handlers.NewAuthHandler(accountService, utils.Validate),
		DonationHandler:  handlers.NewDonationHandler(donationService, utils.Validate),
		RequestHandler:   handlers.NewRequestHandler(requestService, donationService, accountService, notifier, utils.Validate),
		TaskHandler:      handlers.NewTaskHandler(taskService, utils.Validate),
		AnalyticsHandler: handlers.NewAnalyticsHandler(analyticsService),
		Middleware:       middleware.NewMiddleware(),
		JWTService:       jwtService,
	}
	cfg.Setup()

	s := &testServer{app: app, notifier: notifier, tokens: map[string]string{}}
	for _, a := range accounts {
		var res domain.LoginResponse
		code := s.do(t, "", http.MethodPost, "/api/v1/auth/login", domain.LoginRequest{Email: a.Email, Password: password}, &res)
		require.Equal(t, fiber.StatusOK, code)
		s.tokens[a.ID] = res.Token
	}
	return s
}

// do sends body as JSON with userID's token and decodes data into out. It
// returns the status code.
func (s *testServer) do(t *testing.T, userID, method, path string, body any, out any) int {
	code, _ := s.doEnvelope(t, userID, method, path, body, out)
	return code
}

func (s *testServer) doEnvelope(t *testing.T, userID, method, path string, body any, out any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token := s.tokens[userID]; token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode, env
}

func createBody(title string, expiresIn time.Duration) map[string]any {
	return map[string]any{
		"title":          title,
		"category":       "prepared",
		"quantity":       25,
		"unit":           "kg",
		"expiry_at":      baseTime.Add(expiresIn).Format(time.RFC3339),
		"storage":        "refrigerated",
		"pickup_address": "456 Oak Ave",
		"pickup_window": map[string]string{
			"start": baseTime.Format(time.RFC3339),
			"end":   baseTime.Add(2 * time.Hour).Format(time.RFC3339),
		},
	}
}

func (s *testServer) createDonation(t *testing.T, donorID string) domain.DonationListing {
	t.Helper()
	var created domain.DonationListing
	code := s.do(t, donorID, http.MethodPost, "/api/v1/donations", createBody("Prepared meals", 48*time.Hour), &created)
	require.Equal(t, fiber.StatusCreated, code)
	return created
}

func (s *testServer) submit(t *testing.T, recipientID, donationID string) (int, domain.FoodRequest) {
	t.Helper()
	var fr domain.FoodRequest
	code := s.do(t, recipientID, http.MethodPost, "/api/v1/requests", domain.SubmitRequestRequest{DonationID: donationID}, &fr)
	return code, fr
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, 0)

	var me domain.CurrentUser
	code := s.do(t, "r1", http.MethodGet, "/api/v1/auth/me", nil, &me)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, domain.CurrentUser{ID: "r1", DisplayName: "Hope Shelter", Role: domain.RoleRecipient}, me)

	code = s.do(t, "", http.MethodGet, "/api/v1/auth/me", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code = s.do(t, "", http.MethodPost, "/api/v1/auth/login", domain.LoginRequest{Email: "r1@example.org", Password: "nope"}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, env := s.doEnvelope(t, "", http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "not-an-email", "password": "x"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "email", env.Error.Field)
}

func TestConfirmFlowOverHTTP(t *testing.T) {
	s := newTestServer(t, 0)
	listing := s.createDonation(t, "donor-1")
	assert.Equal(t, domain.DonationListed, listing.Status)

	code, fr := s.submit(t, "r1", listing.ID)
	require.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, domain.RequestPending, fr.Status)

	code, _ = s.submit(t, "r1", listing.ID)
	assert.Equal(t, fiber.StatusConflict, code, "duplicate request")

	code = s.do(t, "donor-2", http.MethodPost, "/api/v1/requests/"+fr.ID+"/confirm", nil, nil)
	assert.Equal(t, fiber.StatusForbidden, code, "only the listing's donor confirms")

	code = s.do(t, "r1", http.MethodPost, "/api/v1/requests/"+fr.ID+"/confirm", nil, nil)
	assert.Equal(t, fiber.StatusForbidden, code, "recipients cannot confirm")

	var confirmed domain.FoodRequest
	code = s.do(t, "donor-1", http.MethodPost, "/api/v1/requests/"+fr.ID+"/confirm", nil, &confirmed)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, domain.RequestConfirmed, confirmed.Status)

	select {
	case mail := <-s.notifier.sent:
		assert.Equal(t, sentMail{to: "r1@example.org", requestID: fr.ID}, mail)
	case <-time.After(time.Second):
		t.Fatal("confirmation mail was not sent")
	}

	var got domain.DonationListing
	code = s.do(t, "r2", http.MethodGet, "/api/v1/donations/"+listing.ID, nil, &got)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, domain.DonationAllocated, got.Status)

	code, _ = s.submit(t, "r2", listing.ID)
	assert.Equal(t, fiber.StatusNotFound, code, "donation no longer listed")

	var cancelled domain.FoodRequest
	code = s.do(t, "r1", http.MethodPost, "/api/v1/requests/"+fr.ID+"/cancel", nil, &cancelled)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, domain.RequestCancelled, cancelled.Status)

	code, _ = s.submit(t, "r2", listing.ID)
	assert.Equal(t, fiber.StatusCreated, code)

	var page struct {
		Requests []domain.FoodRequest `json:"requests"`
		Total    int                  `json:"total"`
	}
	code = s.do(t, "donor-1", http.MethodGet, "/api/v1/donations/"+listing.ID+"/requests", nil, &page)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, 2, page.Total)
}

func TestCreateDonationValidation(t *testing.T) {
	s := newTestServer(t, 0)

	body := createBody("Prepared meals", -time.Second)
	code, env := s.doEnvelope(t, "donor-1", http.MethodPost, "/api/v1/donations", body, nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "expiry_at", env.Error.Field)

	code = s.do(t, "r1", http.MethodPost, "/api/v1/donations", createBody("Prepared meals", time.Hour), nil)
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestListDonationsSortedByExpiry(t *testing.T) {
	s := newTestServer(t, 0)
	for i, hours := range []int{1, 5, 3} {
		code := s.do(t, "donor-1", http.MethodPost, "/api/v1/donations", createBody(fmt.Sprintf("batch %d", i), time.Duration(hours)*time.Hour), nil)
		require.Equal(t, fiber.StatusCreated, code)
	}

	var page struct {
		Donations []domain.DonationListing `json:"donations"`
	}
	code := s.do(t, "r1", http.MethodGet, "/api/v1/donations", nil, &page)
	require.Equal(t, fiber.StatusOK, code)
	require.Len(t, page.Donations, 3)
	assert.Equal(t, []string{"batch 0", "batch 2", "batch 1"}, []string{
		page.Donations[0].Title, page.Donations[1].Title, page.Donations[2].Title,
	})

	code = s.do(t, "r1", http.MethodGet, "/api/v1/donations?expiring_within=soon", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	code = s.do(t, "r1", http.MethodGet, "/api/v1/donations?lat=200&lng=0", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func registerBody(name string) domain.RegisterVolunteerRequest {
	return domain.RegisterVolunteerRequest{
		Name:         name,
		Email:        strings.ToLower(name) + "@example.org",
		Phone:        "+62 812 0000 0000",
		Address:      "12 Baker St",
		Availability: domain.AvailabilityWeekdays,
	}
}

func TestVolunteerRegistrationOverHTTP(t *testing.T) {
	s := newTestServer(t, 0)

	code, env := s.doEnvelope(t, "v1", http.MethodPost, "/api/v1/tasks/t1/accept", nil, nil)
	assert.Equal(t, fiber.StatusForbidden, code)
	assert.Equal(t, domain.MessageRegisterFirst, env.Message)

	bad := registerBody("Sam")
	bad.Availability = "nights"
	code, env = s.doEnvelope(t, "v1", http.MethodPost, "/api/v1/volunteers/register", bad, nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "availability", env.Error.Field)

	code = s.do(t, "donor-1", http.MethodPost, "/api/v1/volunteers/register", registerBody("Bakery"), nil)
	assert.Equal(t, fiber.StatusForbidden, code, "only volunteers register")

	var profile domain.VolunteerProfile
	code = s.do(t, "v1", http.MethodPost, "/api/v1/volunteers/register", registerBody("Sam"), &profile)
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, profile.Registered())
	assert.Equal(t, "sam@example.org", profile.Email)

	code = s.do(t, "v1", http.MethodPost, "/api/v1/tasks/t1/accept", nil, nil)
	assert.Equal(t, fiber.StatusOK, code)
}

func TestTaskAcceptOverHTTP(t *testing.T) {
	s := newTestServer(t, 0)
	for id, name := range map[string]string{"v1": "Sam", "v2": "Alex"} {
		code := s.do(t, id, http.MethodPost, "/api/v1/volunteers/register", registerBody(name), nil)
		require.Equal(t, fiber.StatusOK, code)
	}

	var accepted domain.VolunteerTask
	code := s.do(t, "v1", http.MethodPost, "/api/v1/tasks/t1/accept", nil, &accepted)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "v1", accepted.AssigneeID)

	code, env := s.doEnvelope(t, "v2", http.MethodPost, "/api/v1/tasks/t1/accept", nil, nil)
	assert.Equal(t, fiber.StatusConflict, code)
	assert.Equal(t, domain.MessageTaskJustTaken, env.Message)

	var profile domain.VolunteerProfile
	code = s.do(t, "v2", http.MethodGet, "/api/v1/volunteers/me", nil, &profile)
	require.Equal(t, fiber.StatusOK, code)
	assert.Zero(t, profile.TotalPoints)

	code = s.do(t, "v1", http.MethodGet, "/api/v1/volunteers/me", nil, &profile)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, 20, profile.TotalPoints)

	code = s.do(t, "v2", http.MethodPost, "/api/v1/tasks/t1/complete", nil, nil)
	assert.Equal(t, fiber.StatusConflict, code)

	code = s.do(t, "v1", http.MethodGet, "/api/v1/tasks?date=07-02-2025", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code = s.do(t, "donor-1", http.MethodGet, "/api/v1/tasks", nil, nil)
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestCreateDonationFieldOrderOverHTTP(t *testing.T) {
	s := newTestServer(t, 0)

	tests := []struct {
		name      string
		mutate    func(map[string]any)
		wantField string
	}{
		{
			name: "zero quantity and no expiry",
			mutate: func(b map[string]any) {
				b["quantity"] = 0
				delete(b, "expiry_at")
			},
			wantField: "quantity",
		},
		{
			name: "negative quantity and no title",
			mutate: func(b map[string]any) {
				b["quantity"] = -3
				b["title"] = ""
			},
			wantField: "quantity",
		},
		{
			name:      "no expiry",
			mutate:    func(b map[string]any) { delete(b, "expiry_at") },
			wantField: "expiry_at",
		},
		{
			name:      "no title",
			mutate:    func(b map[string]any) { b["title"] = "" },
			wantField: "title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := createBody("Prepared meals", time.Hour)
			tt.mutate(body)

			code, env := s.doEnvelope(t, "donor-1", http.MethodPost, "/api/v1/donations", body, nil)
			assert.Equal(t, fiber.StatusBadRequest, code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantField, env.Error.Field)
		})
	}
}

// uploadPhoto posts a multipart form. An empty filename sends no file.
func (s *testServer) uploadPhoto(t *testing.T, userID, donationID, filename string) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := form.CreateFormFile("photo", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("\xff\xd8\xff\xe0 not really a jpeg"))
		require.NoError(t, err)
	}
	require.NoError(t, form.WriteField("caption", "crates"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/donations/"+donationID+"/photo", &buf)
	req.Header.Set(fiber.HeaderContentType, form.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.tokens[userID])

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestUploadPhotoWithoutObjectStorage(t *testing.T) {
	s := newTestServer(t, 0)
	listing := s.createDonation(t, "donor-1")

	code, env := s.uploadPhoto(t, "donor-1", listing.ID, "bread.jpg")
	assert.Equal(t, fiber.StatusServiceUnavailable, code)
	assert.Equal(t, domain.MessageFailedUploadPhoto, env.Message)

	code, _ = s.uploadPhoto(t, "donor-1", listing.ID, "")
	assert.Equal(t, fiber.StatusBadRequest, code, "no file")

	code, _ = s.uploadPhoto(t, "donor-2", listing.ID, "bread.jpg")
	assert.Equal(t, fiber.StatusForbidden, code, "only the listing's donor")

	var got domain.DonationListing
	require.Equal(t, fiber.StatusOK, s.do(t, "donor-1", http.MethodGet, "/api/v1/donations/"+listing.ID, nil, &got))
	assert.Empty(t, got.PhotoURL)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, 0)
	origin := "https://app.example.org"

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/donations", nil)
	req.Header.Set(fiber.HeaderOrigin, origin)
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodPost)
	req.Header.Set(fiber.HeaderAccessControlRequestHeaders, "authorization,content-type")

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, []string{"*", origin}, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowMethods), http.MethodPost)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, 0)
	s.createDonation(t, "donor-1")

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ledger_store_writes_total{collection="donations",result="ok"}`)
	assert.Contains(t, string(body), `ledger_operations_total{operation="donation.create",outcome="ok"}`)
}

func TestStorageFullOverHTTP(t *testing.T) {
	s := newTestServer(t, 300)

	code, env := s.doEnvelope(t, "donor-1", http.MethodPost, "/api/v1/donations", createBody("Prepared meals", time.Hour), nil)
	assert.Equal(t, fiber.StatusInsufficientStorage, code)
	assert.False(t, env.Status)

	var page struct {
		Donations []domain.DonationListing `json:"donations"`
	}
	code = s.do(t, "r1", http.MethodGet, "/api/v1/donations", nil, &page)
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, page.Donations)
}

func TestAnalyticsOverHTTP(t *testing.T) {
	s := newTestServer(t, 0)
	s.createDonation(t, "donor-1")

	var stats domain.DonorStatistics
	code := s.do(t, "donor-1", http.MethodGet, "/api/v1/analytics/donor", nil, &stats)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, 1, stats.TotalDonations)
	assert.Equal(t, 1, stats.ListedDonations)

	var series []domain.SeriesPoint
	code = s.do(t, "r1", http.MethodGet, "/api/v1/analytics/categories", nil, &series)
	require.Equal(t, fiber.StatusOK, code)
	require.Len(t, series, len(domain.Categories))
	assert.Equal(t, 25.0, series[0].Value)
}
