package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/acentrik/hr-portal/controllers"
	"github.com/acentrik/hr-portal/database"
	"github.com/acentrik/hr-portal/models"
	"github.com/acentrik/hr-portal/repository"
	"github.com/acentrik/hr-portal/routes"
	"github.com/acentrik/hr-portal/services"
)

type stubMailer struct {
	fail bool
	sent int
}

func (m *stubMailer) SendPDF(to, subject, body string, attachment []byte, name string) error {
	if m.fail {
		return fmt.Errorf("smtp unreachable")
	}
	m.sent++
	return nil
}

type testApp struct {
	router *gin.Engine
	store  *repository.MemoryStore
	users  *services.UserService
	mailer *stubMailer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	mr := miniredis.RunT(t)
	redisClient, err := database.GetRedisClient(mr.Addr(), "", 0)
	require.NoError(t, err)

	validator := services.NewPasswordValidator()
	hasher := &services.BcryptHasher{Cost: bcrypt.MinCost}
	audit := services.NewAuditService()

	userService := services.NewUserService(store.Users(), store.Tokens(), store.Letters(),
		validator, hasher, audit, services.UserServiceConfig{
			AdminUsername:     "Admin",
			AdminPassword:     "Admin123!",
			UserUsername:      "User",
			UserPassword:      "User123!",
			AdminAutoRecreate: true,
			ResetTokenTTL:     30 * time.Minute,
			PasswordMaxAge:    90 * 24 * time.Hour,
		})
	require.NoError(t, userService.InitializeUsers(context.Background()))

	mailer := &stubMailer{}
	letterService := services.NewOfferLetterService(store.Letters(), userService,
		validator, services.NewOfferPDFGenerator(), mailer, audit)

	authController := controllers.NewAuthController(userService, store.Sessions(), redisClient, time.Hour)
	userController := controllers.NewUserController(userService, letterService, audit)
	resetController := controllers.NewPasswordResetController(userService)
	letterController := controllers.NewOfferLetterController(letterService, audit)

	router := gin.New()
	routes.SetupRoutes(router, authController, userController, resetController, letterController)

	return &testApp{router: router, store: store, users: userService, mailer: mailer}
}

func (app *testApp) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "127.0.0.1:54321"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func (app *testApp) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	w := app.do(t, http.MethodPost, "/auth/login", gin.H{"username": username, "password": password}, nil)
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_token" {
			return c
		}
	}
	t.Fatal("no session cookie in login response")
	return nil
}

func (app *testApp) register(t *testing.T, username, password string) {
	t.Helper()
	w := app.do(t, http.MethodPost, "/register", gin.H{"username": username, "password": password}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) controllers.Response {
	t.Helper()
	var resp controllers.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestLoginLockoutFlow(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Str0ng!Pwd")

	badLogin := gin.H{"username": "alice", "password": "wrong secret"}

	for i := 0; i < 4; i++ {
		w := app.do(t, http.MethodPost, "/auth/login", badLogin, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid credentials", decodeEnvelope(t, w).Error)
	}

	// The fifth failure trips the lock and says so.
	w := app.do(t, http.MethodPost, "/auth/login", badLogin, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Account locked due to too many failed login attempts", decodeEnvelope(t, w).Error)

	// Even the correct password is rejected once locked.
	w = app.do(t, http.MethodPost, "/auth/login", gin.H{"username": "alice", "password": "Str0ng!Pwd"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Account is locked due to too many failed login attempts", decodeEnvelope(t, w).Error)
}

func TestLoginUnknownUserIndistinguishable(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Str0ng!Pwd")

	known := app.do(t, http.MethodPost, "/auth/login", gin.H{"username": "alice", "password": "nope"}, nil)
	unknown := app.do(t, http.MethodPost, "/auth/login", gin.H{"username": "nobody", "password": "nope"}, nil)

	assert.Equal(t, known.Code, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
}

func TestForgotPasswordMasksUnknownUsers(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Str0ng!Pwd")

	known := app.do(t, http.MethodPost, "/forgot-password", gin.H{"username": "alice"}, nil)
	unknown := app.do(t, http.MethodPost, "/forgot-password", gin.H{"username": "nobody"}, nil)

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.Contains(t, known.Body.String(), "If your account exists")
}

func TestResetPasswordFlow(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Str0ng!Pwd")

	token, err := app.users.CreatePasswordResetToken(context.Background(), "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Pre-flight probe does not consume the token.
	w := app.do(t, http.MethodGet, "/reset-password?token="+token, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, "/reset-password", gin.H{
		"token":            token,
		"password":         "N3w!Secret",
		"confirm_password": "N3w!Secret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The token is single use.
	w = app.do(t, http.MethodGet, "/reset-password?token="+token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Old password is dead, new one works.
	w = app.do(t, http.MethodPost, "/auth/login", gin.H{"username": "alice", "password": "Str0ng!Pwd"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	app.login(t, "alice", "N3w!Secret")
}

func TestResetPasswordRejectsWeakPassword(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Str0ng!Pwd")

	token, err := app.users.CreatePasswordResetToken(context.Background(), "alice")
	require.NoError(t, err)

	w := app.do(t, http.MethodPost, "/reset-password", gin.H{
		"token":            token,
		"password":         "weak",
		"confirm_password": "weak",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The failed attempt did not burn the token.
	w = app.do(t, http.MethodGet, "/reset-password?token="+token, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleGating(t *testing.T) {
	app := newTestApp(t)

	// Anonymous callers are refused outright.
	w := app.do(t, http.MethodGet, "/api/users", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	userCookie := app.login(t, "User", "User123!")
	adminCookie := app.login(t, "Admin", "Admin123!")

	// USER role cannot reach the admin surface.
	w = app.do(t, http.MethodGet, "/api/users", nil, userCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = app.do(t, http.MethodPost, "/emailPdf", gin.H{}, userCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// ADMIN can.
	w = app.do(t, http.MethodGet, "/api/users", nil, adminCookie)
	assert.Equal(t, http.StatusOK, w.Code)

	// Both roles reach the shared authenticated surface.
	w = app.do(t, http.MethodGet, "/api/profile", nil, userCookie)
	assert.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodGet, "/api/profile", nil, adminCookie)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGeneratePdfAndOwnership(t *testing.T) {
	app := newTestApp(t)
	adminCookie := app.login(t, "Admin", "Admin123!")

	form := gin.H{
		"first_name":   "Bob",
		"last_name":    "Stone",
		"email":        "bob.stone@example.com",
		"manager":      "Alex Smith",
		"joining_date": "2026-09-14",
		"role":         "Data Engineer",
	}
	w := app.do(t, http.MethodPost, "/generatePdf", form, adminCookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "BobStone_OfferLetter.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	// The letter landed on the provisioned recipient account.
	bob, err := app.users.GetUserByUsername(context.Background(), "bob.stone@example.com")
	require.NoError(t, err)
	letters, err := app.store.Letters().FindByUser(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	letterPath := fmt.Sprintf("/viewOfferLetter/%d", letters[0].ID)

	// An unrelated user cannot read someone else's letter.
	app.register(t, "carol", "Str0ng!Pwd")
	carolCookie := app.login(t, "carol", "Str0ng!Pwd")
	w = app.do(t, http.MethodGet, letterPath, nil, carolCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The admin can.
	w = app.do(t, http.MethodGet, letterPath, nil, adminCookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "inline")
}

func TestEmailPdfReportsAccountCreation(t *testing.T) {
	app := newTestApp(t)
	adminCookie := app.login(t, "Admin", "Admin123!")

	form := gin.H{
		"first_name":   "Dana",
		"last_name":    "Reed",
		"email":        "dana.reed@example.com",
		"manager":      "Alex Smith",
		"joining_date": "2026-10-01",
		"role":         "QA Analyst",
	}
	w := app.do(t, http.MethodPost, "/emailPdf", form, adminCookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, app.mailer.sent)

	resp := decodeEnvelope(t, w)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "dana.reed@example.com", data["recipient_email"])
	assert.Equal(t, true, data["account_created"])
}

func TestEmailPdfDeliveryFailure(t *testing.T) {
	app := newTestApp(t)
	app.mailer.fail = true
	adminCookie := app.login(t, "Admin", "Admin123!")

	form := gin.H{
		"first_name":   "Evan",
		"last_name":    "Cole",
		"email":        "evan.cole@example.com",
		"manager":      "Alex Smith",
		"joining_date": "2026-10-01",
		"role":         "Analyst",
	}
	w := app.do(t, http.MethodPost, "/emailPdf", form, adminCookie)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to deliver email", decodeEnvelope(t, w).Error)

	// The letter is persisted even though delivery failed.
	evan, err := app.users.GetUserByUsername(context.Background(), "evan.cole@example.com")
	require.NoError(t, err)
	letters, err := app.store.Letters().FindByUser(context.Background(), evan.ID)
	require.NoError(t, err)
	assert.Len(t, letters, 1)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "User", "User123!")

	w := app.do(t, http.MethodGet, "/api/profile", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, "/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/profile", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeProbe(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/auth/me", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	cookie := app.login(t, "Admin", "Admin123!")
	w = app.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
	assert.Contains(t, w.Body.String(), string(models.RoleAdmin))
}

func TestAdminCannotBeDeleted(t *testing.T) {
	app := newTestApp(t)
	adminCookie := app.login(t, "Admin", "Admin123!")

	admin, err := app.users.GetUserByUsername(context.Background(), "Admin")
	require.NoError(t, err)

	w := app.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), nil, adminCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDuplicateRegistrationConflict(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Str0ng!Pwd")

	w := app.do(t, http.MethodPost, "/register", gin.H{"username": "alice", "password": "Str0ng!Pwd"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/register", gin.H{"username": "alice", "password": "weak"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	// The violations come back verbatim.
	assert.Contains(t, w.Body.String(), "8 characters")
}

func TestUpdatePasswordOverHTTP(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Str0ng!Pwd")
	cookie := app.login(t, "alice", "Str0ng!Pwd")

	w := app.do(t, http.MethodPut, "/api/profile/password", gin.H{
		"new_password":     "N3w!Secret",
		"confirm_password": "N3w!Secret",
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, http.MethodPut, "/api/profile/password", gin.H{
		"new_password":     "An0ther!Pwd",
		"confirm_password": "Mismatch!1",
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Passwords do not match")
}
