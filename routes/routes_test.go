package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"food-storefront/middlewares"
	"food-storefront/mock"
	"food-storefront/models"
	"food-storefront/services"
	"food-storefront/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newRouter(t *testing.T, adminToken string) *gin.Engine {
	t.Helper()
	return SetupRouter(newDeps(t, adminToken, nil))
}

// newDeps wires the services over a seeded memory store, wrapped by wrap
// when it is set.
func newDeps(t *testing.T, adminToken string, wrap func(store.Store) store.Store) Deps {
	t.Helper()
	acct, err := mock.LoadUserAccount()
	require.NoError(t, err)
	dash, err := mock.LoadAdminDashboard()
	require.NoError(t, err)
	var st store.Store = store.NewMemory(store.Seed{Account: acct, Dashboard: dash})
	if wrap != nil {
		st = wrap(st)
	}

	menu, err := services.NewMenu(st)
	require.NoError(t, err)
	subs, err := services.NewSubscriptions(st, nil)
	require.NoError(t, err)
	return Deps{
		Menu:          menu,
		Cart:          services.NewCart(st, menu, nil, services.DefaultDeliveryFee),
		Subscriptions: subs,
		Catering:      services.NewCatering(st, menu, nil),
		Accounts:      services.NewAccounts(st, nil, "routes-secret", time.Hour),
		Admin:         services.NewAdmin(st, menu, nil),
		AdminToken:    adminToken,
	}
}

// readOnlyStore rejects every insert.
type readOnlyStore struct {
	store.Store
}

var errReadOnly = errors.New("store is read-only")

func (readOnlyStore) CreateOrder(context.Context, models.Order) error { return errReadOnly }

func (readOnlyStore) CreateSubscription(context.Context, models.Subscription) error {
	return errReadOnly
}

func (readOnlyStore) CreateCateringRequest(context.Context, models.CateringRequest) error {
	return errReadOnly
}

// client replays cookies between requests like a browser.
type client struct {
	t       *testing.T
	r       *gin.Engine
	cookies map[string]*http.Cookie
	headers map[string]string
}

func newClient(t *testing.T, r *gin.Engine) *client {
	return &client{t: t, r: r, cookies: map[string]*http.Cookie{}, headers: map[string]string{}}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestOperationalRoutes(t *testing.T) {
	c := newClient(t, newRouter(t, ""))

	w := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/mock/daily-menu.json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Grilled Salmon Bowl")

	w = c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMenuRoutes(t *testing.T) {
	c := newClient(t, newRouter(t, ""))

	w := c.do(http.MethodGet, "/api/menu?q=salmon", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]any)
	require.Len(t, items, 1)
	assert.Contains(t, c.cookies, middlewares.VisitorCookie)

	w = c.do(http.MethodGet, "/api/menu/zzz", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "menu item not found", decode(t, w)["error"])

	w = c.do(http.MethodGet, "/api/how-it-works", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/api/catering/event-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["eventTypes"], 10)
}

func TestCartFlow(t *testing.T) {
	c := newClient(t, newRouter(t, ""))

	w := c.do(http.MethodPost, "/api/cart/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodPost, "/api/cart/items", map[string]any{"menuItemId": "m1", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["itemCount"])

	w = c.do(http.MethodPost, "/api/cart/items", map[string]any{"menuItemId": "m8"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.do(http.MethodPost, "/api/cart/items", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodPatch, "/api/cart/items/m2", map[string]any{"quantity": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodPatch, "/api/cart/items/m1", map[string]any{"quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode(t, w)
	assert.EqualValues(t, 1, cart["itemCount"])
	assert.EqualValues(t, 5, cart["deliveryFee"])

	// a fresh visitor sees an empty cart
	other := newClient(t, c.r)
	w = other.do(http.MethodGet, "/api/cart", nil)
	assert.EqualValues(t, 0, decode(t, w)["itemCount"])

	w = c.do(http.MethodPost, "/api/cart/checkout", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	res := decode(t, w)
	assert.Equal(t, "Checkout functionality coming soon! Total: $17.00", res["message"])
	assert.Equal(t, "Guest", res["order"].(map[string]any)["customerName"])

	w = c.do(http.MethodGet, "/api/cart", nil)
	assert.EqualValues(t, 0, decode(t, w)["itemCount"])

	w = c.do(http.MethodGet, "/api/admin/orders?search=guest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["totalItems"])
}

func TestSubscriptionFlow(t *testing.T) {
	c := newClient(t, newRouter(t, ""))

	w := c.do(http.MethodPost, "/api/subscriptions/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please select a subscription plan first", decode(t, w)["error"])

	w = c.do(http.MethodPut, "/api/subscriptions/selection", map[string]any{"planId": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodPut, "/api/subscriptions/selection", map[string]any{"planId": "plan-10"})
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/api/subscriptions/selection", nil)
	assert.Equal(t, "plan-10", decode(t, w)["plan"].(map[string]any)["id"])

	w = c.do(http.MethodPost, "/api/subscriptions/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Checkout would proceed with Balanced - $109.99/week", decode(t, w)["message"])

	w = c.do(http.MethodGet, "/api/subscriptions/selection", nil)
	assert.Nil(t, decode(t, w)["plan"])

	w = c.do(http.MethodDelete, "/api/subscriptions/selection", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCateringFlow(t *testing.T) {
	c := newClient(t, newRouter(t, ""))

	w := c.do(http.MethodPost, "/api/catering/next", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "validation failed", body["error"])
	assert.Equal(t, "Event date is required", body["fields"].(map[string]any)["date"])
	assert.NotNil(t, body["draft"])

	w = c.do(http.MethodPatch, "/api/catering", map[string]any{
		"date":         "2099-06-01",
		"eventType":    "Birthday Party",
		"guestCount":   40,
		"venue":        "Community Hall",
		"contactName":  "Ana",
		"contactEmail": "ana@example.com",
		"contactPhone": "(555) 123-4567",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodPost, "/api/catering/validate/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodPost, "/api/catering/validate/x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodPost, "/api/catering/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["currentStep"])

	w = c.do(http.MethodPost, "/api/catering/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = c.do(http.MethodPost, "/api/catering/menu-items/toggle", map[string]any{"name": "Truffle Fries"})
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodPut, "/api/catering/step", map[string]any{"step": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["currentStep"])

	w = c.do(http.MethodPost, "/api/catering/back", nil)
	assert.EqualValues(t, 2, decode(t, w)["currentStep"])

	w = c.do(http.MethodPost, "/api/catering/submit", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	res := decode(t, w)
	assert.Equal(t, "new", res["request"].(map[string]any)["status"])
	assert.EqualValues(t, 1, res["draft"].(map[string]any)["currentStep"])

	w = c.do(http.MethodGet, "/api/admin/catering-requests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["requests"], 1)

	w = c.do(http.MethodDelete, "/api/catering", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWritesFailing(t *testing.T) {
	r := SetupRouter(newDeps(t, "", func(st store.Store) store.Store { return readOnlyStore{st} }))
	c := newClient(t, r)

	w := c.do(http.MethodPost, "/api/cart/items", map[string]any{"menuItemId": "m1", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodPost, "/api/cart/checkout", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["error"])
	w = c.do(http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1, "cart survives the failed checkout")

	w = c.do(http.MethodPatch, "/api/catering", map[string]any{
		"date":         "2099-06-01",
		"eventType":    "Birthday Party",
		"guestCount":   40,
		"venue":        "Community Hall",
		"contactName":  "Ana",
		"contactEmail": "ana@example.com",
		"contactPhone": "(555) 123-4567",
		"menuItems":    []string{"Truffle Fries"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodPost, "/api/catering/submit", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, services.MsgSubmitFailed, body["error"])
	draft := body["draft"].(map[string]any)
	assert.Equal(t, services.MsgSubmitFailed, draft["errors"].(map[string]any)[services.FormErrorField])
	assert.Equal(t, "Community Hall", draft["formData"].(map[string]any)["venue"])

	w = c.do(http.MethodGet, "/api/catering", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ana", decode(t, w)["formData"].(map[string]any)["contactName"])
}

func TestSecureSessionCookie(t *testing.T) {
	d := newDeps(t, "", nil)
	d.SecureCookie = true
	r := SetupRouter(d)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"email":"sam@example.com","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var session *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middlewares.SessionCookie {
			session = ck
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.Secure)
	assert.True(t, session.HttpOnly)
}

func TestAuthAndAccount(t *testing.T) {
	c := newClient(t, newRouter(t, ""))

	w := c.do(http.MethodGet, "/api/account", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = c.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "jordan@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email and password are required", decode(t, w)["error"])

	w = c.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "jordan@example.com", "password": "pw"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w = c.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "sam@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["token"])
	require.Contains(t, c.cookies, middlewares.SessionCookie)

	w = c.do(http.MethodGet, "/api/account", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Jordan Rivera", decode(t, w)["name"])

	w = c.do(http.MethodPatch, "/api/account/profile", map[string]any{"phone": "4155550100"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "(415) 555-0100", decode(t, w)["phone"])

	w = c.do(http.MethodPatch, "/api/account/profile", map[string]any{"email": "bad"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Please enter a valid email address", decode(t, w)["fields"].(map[string]any)["email"])

	w = c.do(http.MethodPatch, "/api/account/preferences", map[string]any{"spiceLevel": "hot"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodPatch, "/api/account/settings", map[string]any{"privacy": map[string]any{"profileVisibility": "public"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodPost, "/api/account/payment-methods", map[string]any{
		"type": "debit", "brand": "Visa", "last4": "1111", "expiryMonth": "05", "expiryYear": "2031",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = c.do(http.MethodPut, "/api/account/payment-methods/card-2/default", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodDelete, "/api/account/payment-methods/card-x", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodPost, "/api/account/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "(555) 123-4567", decode(t, w)["phone"])

	// logged-in checkout is attributed to the account
	c.do(http.MethodPost, "/api/cart/items", map[string]any{"menuItemId": "m4"})
	w = c.do(http.MethodPost, "/api/cart/checkout", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Jordan Rivera", decode(t, w)["order"].(map[string]any)["customerName"])

	w = c.do(http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotContains(t, c.cookies, middlewares.SessionCookie)
	w = c.do(http.MethodGet, "/api/account", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	r := newRouter(t, "admin-secret")
	c := newClient(t, r)

	w := c.do(http.MethodGet, "/api/admin/overview", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c.headers[middlewares.AdminHeader] = "admin-secret"
	w = c.do(http.MethodGet, "/api/admin/overview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 6, decode(t, w)["totalUsers"])

	w = c.do(http.MethodGet, "/api/admin/users?status=inactive", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 2)

	w = c.do(http.MethodPost, "/api/admin/users/u2/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "active", decode(t, w)["status"])
	w = c.do(http.MethodPost, "/api/admin/users/u2/status", map[string]any{"status": "banned"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// a chunked body without Content-Length still sets, not toggles
	req := httptest.NewRequest(http.MethodPost, "/api/admin/users/u2/status", bytes.NewBufferString(`{"status":"active"}`))
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middlewares.AdminHeader, "admin-secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "active", decode(t, w)["status"])

	w = c.do(http.MethodGet, "/api/admin/orders?page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 2)

	w = c.do(http.MethodPatch, "/api/admin/orders/ORD-1001", map[string]any{"status": "processing"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodPatch, "/api/admin/orders/ORD-1001", map[string]any{"status": "pending"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.do(http.MethodGet, "/api/admin/subscriptions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodPatch, "/api/admin/subscriptions/sub-404", map[string]any{"status": "paused"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodPost, "/api/admin/menu/m1/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["available"])

	// storefront sees the admin's availability change
	w = c.do(http.MethodPost, "/api/cart/items", map[string]any{"menuItemId": "m1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.do(http.MethodGet, "/api/admin/menu", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
