package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/breno/product-api/internal/api/middleware"
	"github.com/breno/product-api/internal/core/domain"
	"github.com/breno/product-api/internal/core/service"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (m *memUsers) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[login]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Login]; ok {
		return nil, domain.ErrDuplicateLogin
	}
	m.users[u.Login] = *u
	return u, nil
}

type memProducts struct {
	mu       sync.Mutex
	products map[string]domain.Product
}

func (m *memProducts) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = *p
	return p, nil
}

func (m *memProducts) FindByID(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (m *memProducts) ExistsByName(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memProducts) List(_ context.Context) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		p := p
		out = append(out, &p)
	}
	return out, nil
}

func (m *memProducts) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return nil, domain.ErrProductNotFound
	}
	m.products[p.ID] = *p
	return p, nil
}

func (m *memProducts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

type testServer struct {
	e   *echo.Echo
	now time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{now: time.Now()}

	users := &memUsers{users: make(map[string]domain.User)}
	products := &memProducts{products: make(map[string]domain.Product)}
	tokens := service.NewTokenService("test-secret", service.WithClock(func() time.Time { return ts.now }))
	log := zerolog.Nop()

	ts.e = NewRouter(Deps{
		Auth:     service.NewAuthService(users, tokens, service.NewBcryptHasher(bcrypt.MinCost), true, log),
		Products: service.NewProductService(products, nil, log),
		Tokens:   tokens,
		Users:    users,
		Policy:   middleware.NewPolicy(false),
		Logger:   log,
	})
	return ts
}

func (ts *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T, login, password string) string {
	t.Helper()
	rec := ts.do(http.MethodPost, "/auth/login", "", `{"login":"`+login+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%s)", login, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login %s: no token in %s", login, rec.Body.String())
	}
	return resp.Token
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d (%s)", want, rec.Code, rec.Body.String())
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestRouter_ProductLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/auth/register", "", `{"login":"alice","password":"pw1","role":"ADMIN"}`)
	expectStatus(t, rec, http.StatusCreated)
	if rec.Body.String() != "User created successfully." {
		t.Fatalf("unexpected register body: %q", rec.Body.String())
	}

	token := ts.login(t, "alice", "pw1")

	expectStatus(t, ts.do(http.MethodGet, "/products", token, ""), http.StatusNoContent)

	rec = ts.do(http.MethodPost, "/products", token, `{"name":"Mouse","value":50.0}`)
	expectStatus(t, rec, http.StatusCreated)
	var created struct {
		Status string `json:"status"`
		Data   struct {
			IDProduct string  `json:"idProduct"`
			Name      string  `json:"name"`
			Value     float64 `json:"value"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.Status != "success" || created.Data.Name != "Mouse" || created.Data.Value != 50 {
		t.Fatalf("unexpected create body: %s", rec.Body.String())
	}
	id := created.Data.IDProduct

	rec = ts.do(http.MethodGet, "/products", token, "")
	expectStatus(t, rec, http.StatusOK)
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("expected one product, got %s", rec.Body.String())
	}
	self := list[0]["_links"].(map[string]any)["self"].(map[string]any)["href"]
	if self != "/products/"+id {
		t.Fatalf("unexpected self link: %v", self)
	}

	rec = ts.do(http.MethodPost, "/products", token, `{"name":"Mouse","value":10}`)
	expectStatus(t, rec, http.StatusConflict)

	rec = ts.do(http.MethodPut, "/products/"+id, token, `{"name":"Mouse","value":45.5}`)
	expectStatus(t, rec, http.StatusOK)

	rec = ts.do(http.MethodGet, "/products/"+id, token, "")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"value":45.5`) {
		t.Fatalf("expected updated value, got %s", rec.Body.String())
	}

	rec = ts.do(http.MethodDelete, "/products/"+id, token, "")
	expectStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "Product deleted." {
		t.Fatalf("unexpected delete body: %q", rec.Body.String())
	}

	rec = ts.do(http.MethodGet, "/products/"+id, token, "")
	expectStatus(t, rec, http.StatusNotFound)
	if msg := errorMessage(t, rec); msg != "Product not found." {
		t.Fatalf("unexpected message: %q", msg)
	}

	expectStatus(t, ts.do(http.MethodGet, "/products/not-a-uuid", token, ""), http.StatusNotFound)
	expectStatus(t, ts.do(http.MethodDelete, "/products/"+id, token, ""), http.StatusNotFound)
}

func TestRouter_RegisterTwice(t *testing.T) {
	ts := newTestServer(t)

	body := `{"login":"alice","password":"pw1","role":"ADMIN"}`
	expectStatus(t, ts.do(http.MethodPost, "/auth/register", "", body), http.StatusCreated)

	rec := ts.do(http.MethodPost, "/auth/register", "", `{"login":"alice","password":"other","role":"USER"}`)
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := errorMessage(t, rec); msg != "User already registered with this login." {
		t.Fatalf("unexpected message: %q", msg)
	}

	ts.login(t, "alice", "pw1")
}

func TestRouter_LoginFailures(t *testing.T) {
	ts := newTestServer(t)
	expectStatus(t, ts.do(http.MethodPost, "/auth/register", "", `{"login":"alice","password":"pw1","role":"USER"}`), http.StatusCreated)

	for _, body := range []string{
		`{"login":"alice","password":"wrong"}`,
		`{"login":"ghost","password":"pw1"}`,
	} {
		rec := ts.do(http.MethodPost, "/auth/login", "", body)
		expectStatus(t, rec, http.StatusUnauthorized)
		if msg := errorMessage(t, rec); msg != "invalid credentials" {
			t.Fatalf("unexpected message: %q", msg)
		}
	}
}

func TestRouter_UserCannotWrite(t *testing.T) {
	ts := newTestServer(t)
	expectStatus(t, ts.do(http.MethodPost, "/auth/register", "", `{"login":"alice","password":"pw1","role":"ADMIN"}`), http.StatusCreated)
	expectStatus(t, ts.do(http.MethodPost, "/auth/register", "", `{"login":"bob","password":"pw2","role":"USER"}`), http.StatusCreated)

	admin := ts.login(t, "alice", "pw1")
	user := ts.login(t, "bob", "pw2")

	rec := ts.do(http.MethodPost, "/products", admin, `{"name":"Mouse","value":50}`)
	expectStatus(t, rec, http.StatusCreated)
	var created struct {
		Data struct {
			IDProduct string `json:"idProduct"`
		} `json:"data"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	id := created.Data.IDProduct

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPost, "/products", `{"name":"Keyboard","value":10}`},
		{http.MethodPut, "/products/" + id, `{"name":"Keyboard","value":10}`},
		{http.MethodDelete, "/products/" + id, ""},
	} {
		rec := ts.do(tc.method, tc.path, user, tc.body)
		expectStatus(t, rec, http.StatusForbidden)
		if msg := errorMessage(t, rec); msg != "Access Denied: You don't have permission to access this resource." {
			t.Fatalf("unexpected message: %q", msg)
		}
	}

	expectStatus(t, ts.do(http.MethodGet, "/products", user, ""), http.StatusOK)
	expectStatus(t, ts.do(http.MethodGet, "/products/"+id, user, ""), http.StatusOK)
}

func TestRouter_Unauthenticated(t *testing.T) {
	ts := newTestServer(t)

	expectStatus(t, ts.do(http.MethodGet, "/products", "", ""), http.StatusUnauthorized)
	expectStatus(t, ts.do(http.MethodPost, "/products", "", `{"name":"Mouse","value":50}`), http.StatusUnauthorized)

	rec := ts.do(http.MethodGet, "/products", "not-a-token", "")
	expectStatus(t, rec, http.StatusUnauthorized)
	if msg := errorMessage(t, rec); msg != "invalid or expired token" {
		t.Fatalf("unexpected message: %q", msg)
	}

	expectStatus(t, ts.do(http.MethodGet, "/health", "", ""), http.StatusOK)
	expectStatus(t, ts.do(http.MethodGet, "/health/ready", "", ""), http.StatusOK)
}

func TestRouter_TokenExpires(t *testing.T) {
	ts := newTestServer(t)
	expectStatus(t, ts.do(http.MethodPost, "/auth/register", "", `{"login":"alice","password":"pw1","role":"ADMIN"}`), http.StatusCreated)
	token := ts.login(t, "alice", "pw1")

	expectStatus(t, ts.do(http.MethodGet, "/products", token, ""), http.StatusNoContent)

	ts.now = ts.now.Add(2*time.Hour + time.Second)
	expectStatus(t, ts.do(http.MethodGet, "/products", token, ""), http.StatusUnauthorized)
}

func TestRouter_ForeignToken(t *testing.T) {
	ts := newTestServer(t)
	expectStatus(t, ts.do(http.MethodPost, "/auth/register", "", `{"login":"alice","password":"pw1","role":"ADMIN"}`), http.StatusCreated)

	foreign, err := service.NewTokenService("another-secret").Issue(&domain.User{Login: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	expectStatus(t, ts.do(http.MethodGet, "/products", foreign, ""), http.StatusUnauthorized)
}

func TestRouter_PublicRead(t *testing.T) {
	log := zerolog.Nop()
	users := &memUsers{users: make(map[string]domain.User)}
	tokens := service.NewTokenService("test-secret")
	e := NewRouter(Deps{
		Auth:     service.NewAuthService(users, tokens, service.NewBcryptHasher(bcrypt.MinCost), true, log),
		Products: service.NewProductService(&memProducts{products: make(map[string]domain.Product)}, nil, log),
		Tokens:   tokens,
		Users:    users,
		Policy:   middleware.NewPolicy(true),
		Logger:   log,
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	expectStatus(t, rec, http.StatusNoContent)
}

func TestRouter_PaddedLoginRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/auth/register", "", `{"login":" bob ","password":"pw","role":"USER"}`)
	expectStatus(t, rec, http.StatusCreated)

	ts.login(t, " bob ", "pw")
	ts.login(t, "bob", "pw")
}

func TestRouter_BlankProductName(t *testing.T) {
	ts := newTestServer(t)
	expectStatus(t, ts.do(http.MethodPost, "/auth/register", "", `{"login":"alice","password":"pw1","role":"ADMIN"}`), http.StatusCreated)
	token := ts.login(t, "alice", "pw1")

	rec := ts.do(http.MethodPost, "/products", token, `{"name":"   ","value":1}`)
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := errorMessage(t, rec); msg != "name must not be blank" {
		t.Fatalf("unexpected message: %q", msg)
	}

	rec = ts.do(http.MethodPost, "/products", token, `{"name":"Mouse","value":1}`)
	expectStatus(t, rec, http.StatusCreated)
	var created struct {
		Data struct {
			IDProduct string `json:"idProduct"`
		} `json:"data"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	rec = ts.do(http.MethodPut, "/products/"+created.Data.IDProduct, token, `{"name":"  ","value":1}`)
	expectStatus(t, rec, http.StatusBadRequest)

	expectStatus(t, ts.do(http.MethodGet, "/products", token, ""), http.StatusOK)
}
