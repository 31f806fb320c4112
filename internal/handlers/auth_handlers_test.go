package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kmezhova/online-shop/internal/models"
	"github.com/kmezhova/online-shop/internal/mykafka"
	"github.com/kmezhova/online-shop/internal/repo"
	"github.com/kmezhova/online-shop/internal/service/token"
	"github.com/kmezhova/online-shop/internal/view"
)

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.CartItem{}, &models.Product{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newAuthEnv(t *testing.T) (*echo.Echo, *AuthHandler, *repo.GormRepo) {
	store := &repo.GormRepo{DB: InitTestDB(t)}
	h := &AuthHandler{
		Repo:     store,
		Tokens:   &token.Service{Secret: []byte("test_secret")},
		Producer: &mykafka.Producer{},
	}
	e := echo.New()
	e.Renderer = view.New()
	return e, h, store
}

func doFormRequest(e *echo.Echo, method, target string, form url.Values) (*httptest.ResponseRecorder, echo.Context) {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, c
}

func flashCookie(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "flash" && ck.Value != "" {
			msg, err := url.QueryUnescape(ck.Value)
			require.NoError(t, err)
			return msg
		}
	}
	return ""
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == token.CookieName && ck.Value != "" {
			return ck
		}
	}
	return nil
}

func TestRegisterStartsSession(t *testing.T) {
	e, h, store := newAuthEnv(t)

	rec, c := doFormRequest(e, http.MethodPost, "/register", url.Values{
		"email":    {"a@example.com"},
		"name":     {"Alice"},
		"password": {"password"},
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/cart", rec.Header().Get(echo.HeaderLocation))
	require.NotNil(t, sessionCookie(rec))

	var user models.User
	require.NoError(t, store.DB.Where("email = ?", "a@example.com").First(&user).Error)
	require.Equal(t, "Alice", user.Name)
	require.NotEqual(t, "password", user.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e, h, store := newAuthEnv(t)

	form := url.Values{
		"email":    {"a@example.com"},
		"name":     {"Alice"},
		"password": {"password"},
	}
	_, c := doFormRequest(e, http.MethodPost, "/register", form)
	require.NoError(t, h.Register(c))

	form.Set("name", "Impostor")
	rec, c2 := doFormRequest(e, http.MethodPost, "/register", form)
	require.NoError(t, h.Register(c2))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	require.Equal(t, "You've already signed up with that email, log in instead!", flashCookie(t, rec))
	require.Nil(t, sessionCookie(rec))

	// the first account is unaffected
	var users []models.User
	require.NoError(t, store.DB.Find(&users).Error)
	require.Len(t, users, 1)
	require.Equal(t, "Alice", users[0].Name)
}

func TestLoginUnknownEmail(t *testing.T) {
	e, h, _ := newAuthEnv(t)

	rec, c := doFormRequest(e, http.MethodPost, "/login", url.Values{
		"email":    {"nobody@example.com"},
		"password": {"password"},
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	require.Equal(t, "That email does not exist, please try again.", flashCookie(t, rec))
}

func TestLoginBadPassword(t *testing.T) {
	e, h, store := newAuthEnv(t)

	created, err := store.CreateUser(context.Background(), "a@example.com", "Alice", "password")
	require.NoError(t, err)

	rec, c := doFormRequest(e, http.MethodPost, "/login", url.Values{
		"email":    {"a@example.com"},
		"password": {"wrong"},
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "Password incorrect, please try again.", flashCookie(t, rec))
	require.Nil(t, sessionCookie(rec))

	var stored models.User
	require.NoError(t, store.DB.First(&stored, created.ID).Error)
	require.Equal(t, created.PasswordHash, stored.PasswordHash)
}

func TestLoginThreadsPendingItem(t *testing.T) {
	e, h, store := newAuthEnv(t)

	_, err := store.CreateUser(context.Background(), "a@example.com", "Alice", "password")
	require.NoError(t, err)

	rec, c := doFormRequest(e, http.MethodPost, "/login", url.Values{
		"email":    {"a@example.com"},
		"password": {"password"},
		"item_id":  {"pending-token"},
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/add_after_log_or_reg?item_id=pending-token", rec.Header().Get(echo.HeaderLocation))
	require.NotNil(t, sessionCookie(rec))
}

func TestRegisterThreadsPendingItem(t *testing.T) {
	e, h, _ := newAuthEnv(t)

	rec, c := doFormRequest(e, http.MethodPost, "/register", url.Values{
		"email":    {"a@example.com"},
		"name":     {"Alice"},
		"password": {"password"},
		"item_id":  {"pending-token"},
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/add_after_log_or_reg?item_id=pending-token", rec.Header().Get(echo.HeaderLocation))
	require.NotNil(t, sessionCookie(rec))
}

func TestLoginFailureKeepsPendingItem(t *testing.T) {
	e, h, _ := newAuthEnv(t)

	rec, c := doFormRequest(e, http.MethodPost, "/login", url.Values{
		"email":    {"nobody@example.com"},
		"password": {"password"},
		"item_id":  {"pending-token"},
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, "/login?item_id=pending-token", rec.Header().Get(echo.HeaderLocation))
}

func TestLoginPageRendersFlash(t *testing.T) {
	e, h, _ := newAuthEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/login?item_id=tok", nil)
	req.AddCookie(&http.Cookie{Name: "flash", Value: url.QueryEscape("Password incorrect, please try again.")})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.LoginPage(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Password incorrect, please try again.")
	require.Contains(t, rec.Body.String(), `value="tok"`)
}

func TestLogoutExpiresSession(t *testing.T) {
	e, h, store := newAuthEnv(t)

	user, err := store.CreateUser(context.Background(), "a@example.com", "Alice", "password")
	require.NoError(t, err)
	signed, exp, err := h.Tokens.Sign(user.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(token.CreateCookie(token.CookieName, signed, "/", exp))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == token.CookieName {
			require.Empty(t, ck.Value)
		}
	}
}
