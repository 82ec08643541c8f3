package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/eshop/backend/internal/apperrors"
	"github.com/eshop/backend/internal/config"
	"github.com/eshop/backend/internal/handlers"
	"github.com/eshop/backend/internal/models"
	"github.com/eshop/backend/internal/otp"
	"github.com/eshop/backend/internal/ratelimit"
	"github.com/eshop/backend/internal/routes"
	"github.com/eshop/backend/internal/storage"
	"github.com/eshop/backend/internal/token"
)

type fakeSender struct {
	sent []string // template names, in order
	err  error
}

func (f *fakeSender) Send(to, subject, templateName string, data map[string]interface{}) error {
	f.sent = append(f.sent, templateName)
	return f.err
}

type fakePayments struct {
	accountID string
	url       string
	calls     int
}

func (f *fakePayments) CreateOnboardingLink(email, country, accountID string) (string, string, error) {
	f.calls++
	if accountID != "" {
		return accountID, f.url, nil
	}
	return f.accountID, f.url, nil
}

type testEnv struct {
	app      *fiber.App
	store    *storage.MemoryStore
	mr       *miniredis.Miniredis
	sender   *fakeSender
	payments *fakePayments
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	store := storage.NewMemoryStore()
	sender := &fakeSender{}
	paymentsFake := &fakePayments{accountID: "acct_test123", url: "https://connect.stripe.com/setup/s/test"}

	ledger := ratelimit.NewLedger(rdb)
	otpService := otp.NewService(rdb, ledger, sender, logger)

	tokens, err := token.NewService(&config.JWTConfig{
		AccessSecret:  "test-access-secret-test-access-secret",
		RefreshSecret: "test-refresh-secret-test-refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	auth := handlers.NewAuthHandler(store, otpService, ledger, tokens, paymentsFake, logger)

	app := fiber.New(fiber.Config{
		ErrorHandler: apperrors.ErrorHandler(logger),
	})
	routes.SetupRoutes(app, auth, store, tokens)

	return &testEnv{app: app, store: store, mr: mr, sender: sender, payments: paymentsFake}
}

func (e *testEnv) post(t *testing.T, path string, body interface{}, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func (e *testEnv) get(t *testing.T, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func (e *testEnv) storedOTP(t *testing.T, email string) string {
	t.Helper()

	code, err := e.mr.Get("otp:" + email)
	if err != nil {
		t.Fatalf("no stored OTP for %s: %v", email, err)
	}
	return code
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(hash)
}

func TestRegisterUserDoesNotCreateAccount(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/user-register", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "pw123456",
	})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if _, err := env.store.GetUserByEmail("a@x.com"); err != storage.ErrNotFound {
		t.Fatalf("no account row may exist before verification, got %v", err)
	}
	if len(env.sender.sent) != 1 || env.sender.sent[0] != "user-activation-email" {
		t.Fatalf("expected one activation email, got %v", env.sender.sent)
	}
}

func TestRegisterUserValidation(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/user-register", map[string]string{"email": "a@x.com"})
	if resp.StatusCode != 400 {
		t.Fatalf("missing fields: expected 400, got %d", resp.StatusCode)
	}

	resp = env.post(t, "/user-register", map[string]string{
		"name": "Alice", "email": "not-an-email", "password": "pw123456",
	})
	if resp.StatusCode != 400 {
		t.Fatalf("bad email: expected 400, got %d", resp.StatusCode)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.store.CreateUser(&models.User{Name: "Alice", Email: "a@x.com", Password: hashPassword(t, "pw123456")})

	resp := env.post(t, "/user-register", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "pw123456",
	})
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "User with this email already exists" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestRegisterWithinCooldownRejected(t *testing.T) {
	env := newTestEnv(t)

	first := env.post(t, "/user-register", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "pw123456",
	})
	if first.StatusCode != 200 {
		t.Fatalf("first register: expected 200, got %d", first.StatusCode)
	}

	second := env.post(t, "/user-register", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "pw123456",
	})
	if second.StatusCode != 400 {
		t.Fatalf("second register within cooldown: expected 400, got %d", second.StatusCode)
	}
	if len(env.sender.sent) != 1 {
		t.Fatalf("cooldown rejection must not send another email, got %d", len(env.sender.sent))
	}
}

func TestSpamLockOnThirdRequestInWindow(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]string{"name": "Alice", "email": "a@x.com", "password": "pw123456"}

	env.post(t, "/user-register", body)
	env.mr.FastForward(11 * time.Minute) // cooldown expires, hourly counter does not
	env.post(t, "/user-register", body)
	env.mr.FastForward(11 * time.Minute)

	resp := env.post(t, "/user-register", body)
	if resp.StatusCode != 400 {
		t.Fatalf("third request in window: expected 400, got %d", resp.StatusCode)
	}
	if !env.mr.Exists("otp_spam_lock:a@x.com") {
		t.Fatal("spam lock should be set")
	}
}

func TestUserEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/user-register", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "pw123456",
	})
	if resp.StatusCode != 200 {
		t.Fatalf("register: expected 200, got %d", resp.StatusCode)
	}

	code := env.storedOTP(t, "a@x.com")
	resp = env.post(t, "/verify-user", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "pw123456", "otp": code,
	})
	if resp.StatusCode != 200 {
		t.Fatalf("verify: expected 200, got %d", resp.StatusCode)
	}

	user, err := env.store.GetUserByEmail("a@x.com")
	if err != nil {
		t.Fatalf("account should exist after verify: %v", err)
	}
	if user.Password == "pw123456" {
		t.Fatal("password must be stored hashed")
	}

	resp = env.post(t, "/login-user", map[string]string{
		"email": "a@x.com", "password": "pw123456",
	})
	if resp.StatusCode != 200 {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	got, ok := body["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("login body missing user: %v", body)
	}
	if got["email"] != "a@x.com" || got["name"] != "Alice" || got["id"] == "" {
		t.Fatalf("unexpected user payload: %v", got)
	}

	access := findCookie(resp, "access_token")
	refresh := findCookie(resp, "refresh_token")
	if access == nil || refresh == nil {
		t.Fatal("login must set both user cookies")
	}
	if access.MaxAge != 15*60 {
		t.Fatalf("access cookie MaxAge should be 900, got %d", access.MaxAge)
	}
	if refresh.MaxAge != 7*24*60*60 {
		t.Fatalf("refresh cookie MaxAge should be 604800, got %d", refresh.MaxAge)
	}
	if !access.HttpOnly || !refresh.HttpOnly {
		t.Fatal("auth cookies must be httpOnly")
	}
}

func TestVerifyUserWrongOTP(t *testing.T) {
	env := newTestEnv(t)

	env.post(t, "/user-register", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "pw123456",
	})
	code := env.storedOTP(t, "a@x.com")
	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}

	resp := env.post(t, "/verify-user", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "pw123456", "otp": wrong,
	})
	if resp.StatusCode != 400 {
		t.Fatalf("wrong OTP: expected 400, got %d", resp.StatusCode)
	}
	if _, err := env.store.GetUserByEmail("a@x.com"); err != storage.ErrNotFound {
		t.Fatal("account must not be created on failed verify")
	}
}

func TestVerifySellerMissingFields(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []map[string]string{
		{"name": "Bob", "email": "s@x.com", "password": "pw123456", "otp": "1234", "country": "IN"},
		{"name": "Bob", "email": "s@x.com", "password": "pw123456", "otp": "1234", "phone_number": "+911234567890"},
	} {
		resp := env.post(t, "/verify-seller", body)
		if resp.StatusCode != 400 {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
		respBody := decodeBody(t, resp)
		if respBody["message"] != "All fields are mandate" {
			t.Fatalf("unexpected message: %v", respBody["message"])
		}
	}
}

func TestSellerLoginClearsUserCookies(t *testing.T) {
	env := newTestEnv(t)
	env.store.CreateSeller(&models.Seller{
		Name: "Bob", Email: "s@x.com", Password: hashPassword(t, "pw123456"),
		PhoneNumber: "+911234567890", Country: "IN",
	})

	resp := env.post(t, "/login-seller", map[string]string{
		"email": "s@x.com", "password": "pw123456",
	})
	if resp.StatusCode != 200 {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}

	sellerAccess := findCookie(resp, "seller_access_token")
	sellerRefresh := findCookie(resp, "seller_refresh_token")
	if sellerAccess == nil || sellerAccess.Value == "" || sellerRefresh == nil || sellerRefresh.Value == "" {
		t.Fatal("seller cookies must be set")
	}

	// the user namespace is explicitly expired
	userAccess := findCookie(resp, "access_token")
	userRefresh := findCookie(resp, "refresh_token")
	if userAccess == nil || userRefresh == nil {
		t.Fatal("user cookies must be cleared on seller login")
	}
	if userAccess.Value != "" || userRefresh.Value != "" {
		t.Fatal("cleared cookies must be empty")
	}
	if userAccess.Expires.After(time.Now()) {
		t.Fatal("cleared cookie must be expired")
	}
}

func TestUserLoginClearsSellerCookies(t *testing.T) {
	env := newTestEnv(t)
	env.store.CreateUser(&models.User{Name: "Alice", Email: "a@x.com", Password: hashPassword(t, "pw123456")})

	resp := env.post(t, "/login-user", map[string]string{
		"email": "a@x.com", "password": "pw123456",
	})
	if resp.StatusCode != 200 {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}

	sellerAccess := findCookie(resp, "seller_access_token")
	if sellerAccess == nil || sellerAccess.Value != "" {
		t.Fatal("seller cookies must be cleared on user login")
	}
}

func TestLoginUserBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.store.CreateUser(&models.User{Name: "Alice", Email: "a@x.com", Password: hashPassword(t, "pw123456")})

	resp := env.post(t, "/login-user", map[string]string{"email": "a@x.com", "password": "nope"})
	if resp.StatusCode != 401 {
		t.Fatalf("wrong password: expected 401, got %d", resp.StatusCode)
	}

	resp = env.post(t, "/login-user", map[string]string{"email": "ghost@x.com", "password": "pw123456"})
	if resp.StatusCode != 401 {
		t.Fatalf("unknown email: expected 401, got %d", resp.StatusCode)
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	env := newTestEnv(t)
	env.store.CreateUser(&models.User{Name: "Alice", Email: "a@x.com", Password: hashPassword(t, "pw123456")})

	resp := env.post(t, "/forgot-password-user", map[string]string{"email": "a@x.com"})
	if resp.StatusCode != 200 {
		t.Fatalf("forgot: expected 200, got %d", resp.StatusCode)
	}
	if len(env.sender.sent) != 1 || env.sender.sent[0] != "forgot-password-user-mail" {
		t.Fatalf("expected forgot-password template, got %v", env.sender.sent)
	}

	code := env.storedOTP(t, "a@x.com")
	resp = env.post(t, "/verify-password-user", map[string]string{"email": "a@x.com", "otp": code})
	if resp.StatusCode != 200 {
		t.Fatalf("verify reset OTP: expected 200, got %d", resp.StatusCode)
	}

	// same password is rejected
	resp = env.post(t, "/reset-password-user", map[string]string{"email": "a@x.com", "password": "pw123456"})
	if resp.StatusCode != 400 {
		t.Fatalf("same password: expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "New password cannot be same as old password" {
		t.Fatalf("unexpected message: %v", body["message"])
	}

	resp = env.post(t, "/reset-password-user", map[string]string{"email": "a@x.com", "password": "newpw7890"})
	if resp.StatusCode != 200 {
		t.Fatalf("reset: expected 200, got %d", resp.StatusCode)
	}

	resp = env.post(t, "/login-user", map[string]string{"email": "a@x.com", "password": "newpw7890"})
	if resp.StatusCode != 200 {
		t.Fatalf("login with new password: expected 200, got %d", resp.StatusCode)
	}
}

func TestForgotPasswordUnknownAccount(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/forgot-password-user", map[string]string{"email": "ghost@x.com"})
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if len(env.sender.sent) != 0 {
		t.Fatal("no email may be sent for unknown accounts")
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	env := newTestEnv(t)
	env.store.CreateUser(&models.User{Name: "Alice", Email: "a@x.com", Password: hashPassword(t, "pw123456")})

	login := env.post(t, "/login-user", map[string]string{"email": "a@x.com", "password": "pw123456"})
	refresh := findCookie(login, "refresh_token")
	if refresh == nil {
		t.Fatal("login must set refresh cookie")
	}

	resp := env.post(t, "/refresh-token", map[string]string{}, &http.Cookie{Name: "refresh_token", Value: refresh.Value})
	if resp.StatusCode != 201 {
		t.Fatalf("rotation: expected 201, got %d", resp.StatusCode)
	}

	newAccess := findCookie(resp, "access_token")
	newRefresh := findCookie(resp, "refresh_token")
	if newAccess == nil || newAccess.Value == "" || newRefresh == nil || newRefresh.Value == "" {
		t.Fatal("rotation must set a fresh user pair")
	}
	// seller namespace is untouched
	if findCookie(resp, "seller_access_token") != nil || findCookie(resp, "seller_refresh_token") != nil {
		t.Fatal("rotation for user must not touch seller cookies")
	}
}

func TestRefreshTokenMissing(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/refresh-token", map[string]string{})
	if resp.StatusCode != 401 {
		t.Fatalf("no cookie: expected 401, got %d", resp.StatusCode)
	}
}

func TestRefreshTokenInvalid(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/refresh-token", map[string]string{},
		&http.Cookie{Name: "refresh_token", Value: "garbage.token.value"})
	if resp.StatusCode != 403 {
		t.Fatalf("invalid token: expected 403, got %d", resp.StatusCode)
	}
}

func TestRefreshTokenUnknownAccount(t *testing.T) {
	env := newTestEnv(t)
	env.store.CreateUser(&models.User{Name: "Alice", Email: "a@x.com", Password: hashPassword(t, "pw123456")})

	login := env.post(t, "/login-user", map[string]string{"email": "a@x.com", "password": "pw123456"})
	refresh := findCookie(login, "refresh_token")

	// a different store no longer knows the account
	fresh := newTestEnv(t)
	resp := fresh.post(t, "/refresh-token", map[string]string{},
		&http.Cookie{Name: "refresh_token", Value: refresh.Value})
	if resp.StatusCode != 403 {
		t.Fatalf("unknown account: expected 403, got %d", resp.StatusCode)
	}
}

func TestCreateShop(t *testing.T) {
	env := newTestEnv(t)
	seller, _ := env.store.CreateSeller(&models.Seller{
		Name: "Bob", Email: "s@x.com", Password: hashPassword(t, "pw123456"),
		PhoneNumber: "+911234567890", Country: "IN",
	})

	resp := env.post(t, "/create-shop", map[string]string{
		"sellerId": seller.SellerID, "name": "Bob's Shop", "bio": "Fresh goods",
		"category": "grocery", "address": "12 Market St", "opening_hours": "9-5",
	})
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	shop, err := env.store.GetShopBySellerID(seller.SellerID)
	if err != nil {
		t.Fatalf("shop should be persisted: %v", err)
	}
	if shop.Name != "Bob's Shop" {
		t.Fatalf("unexpected shop: %+v", shop)
	}

	// missing required field
	resp = env.post(t, "/create-shop", map[string]string{
		"sellerId": seller.SellerID, "name": "No bio",
	})
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	// unknown seller
	resp = env.post(t, "/create-shop", map[string]string{
		"sellerId": "nope", "name": "X", "bio": "X", "category": "X",
		"address": "X", "opening_hours": "X",
	})
	if resp.StatusCode != 400 {
		t.Fatalf("unknown seller: expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateStripeLink(t *testing.T) {
	env := newTestEnv(t)
	seller, _ := env.store.CreateSeller(&models.Seller{
		Name: "Bob", Email: "s@x.com", Password: hashPassword(t, "pw123456"),
		PhoneNumber: "+911234567890", Country: "IN",
	})

	resp := env.post(t, "/create-stripe-link", map[string]string{"sellerId": seller.SellerID})
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["url"] != env.payments.url {
		t.Fatalf("unexpected url: %v", body["url"])
	}

	stored, _ := env.store.GetSellerByID(seller.SellerID)
	if stored.StripeID != env.payments.accountID {
		t.Fatalf("stripe id should be persisted, got %q", stored.StripeID)
	}

	// second call reuses the stored account
	env.post(t, "/create-stripe-link", map[string]string{"sellerId": seller.SellerID})
	if env.payments.calls != 2 {
		t.Fatalf("expected 2 provider calls, got %d", env.payments.calls)
	}

	resp = env.post(t, "/create-stripe-link", map[string]string{})
	if resp.StatusCode != 400 {
		t.Fatalf("missing seller id: expected 400, got %d", resp.StatusCode)
	}
}

func TestLoggedInUser(t *testing.T) {
	env := newTestEnv(t)
	env.store.CreateUser(&models.User{Name: "Alice", Email: "a@x.com", Password: hashPassword(t, "pw123456")})

	login := env.post(t, "/login-user", map[string]string{"email": "a@x.com", "password": "pw123456"})
	access := findCookie(login, "access_token")
	if access == nil {
		t.Fatal("login must set access cookie")
	}

	resp := env.get(t, "/logged-in-user", &http.Cookie{Name: "access_token", Value: access.Value})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	user, ok := body["user"].(map[string]interface{})
	if !ok || user["email"] != "a@x.com" {
		t.Fatalf("unexpected body: %v", body)
	}

	if resp := env.get(t, "/logged-in-user"); resp.StatusCode != 401 {
		t.Fatalf("no cookie: expected 401, got %d", resp.StatusCode)
	}

	// a user token cannot read the seller endpoint
	if resp := env.get(t, "/logged-in-seller", &http.Cookie{Name: "access_token", Value: access.Value}); resp.StatusCode != 401 {
		t.Fatalf("role guard: expected 401, got %d", resp.StatusCode)
	}
}

func TestThreeWrongGuessesLockEmail(t *testing.T) {
	env := newTestEnv(t)

	env.post(t, "/user-register", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "pw123456",
	})
	code := env.storedOTP(t, "a@x.com")
	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}

	for i := 0; i < 3; i++ {
		resp := env.post(t, "/verify-user", map[string]string{
			"name": "Alice", "email": "a@x.com", "password": "pw123456", "otp": wrong,
		})
		if resp.StatusCode != 400 {
			t.Fatalf("guess %d: expected 400, got %d", i+1, resp.StatusCode)
		}
	}

	if !env.mr.Exists("otp_lock:a@x.com") {
		t.Fatal("third wrong guess must lock the email")
	}

	// lock also blocks re-registration until it expires
	env.mr.FastForward(11 * time.Minute) // past the cooldown, lock still live
	resp := env.post(t, "/user-register", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "pw123456",
	})
	if resp.StatusCode != 400 {
		t.Fatalf("locked email: expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] == "" {
		t.Fatal("lock rejection should carry a message")
	}
}

func TestErrorShapeForUnknownFailure(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/user-register", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("malformed body: expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["status"] != "error" {
		t.Fatalf("expected error envelope, got %v", body)
	}
}
