package v1

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"todoweb/internal/identity"
	"todoweb/internal/models"
	"todoweb/internal/todolist"
)

var errStoreDown = errors.New("store unavailable")

// mockProvider implements identity.Provider with per-call hooks and
// call counters.
type mockProvider struct {
	CurrentUserFunc func(ctx context.Context, accessToken, fingerprint string) (*identity.Identity, error)
	SignInFunc      func(ctx context.Context, params identity.SignInParams) (*identity.Session, error)
	SignUpFunc      func(ctx context.Context, email, password string) (string, error)
	RefreshFunc     func(ctx context.Context, refreshToken, fingerprint string) (*identity.Session, error)
	SignOutFunc     func(ctx context.Context, userID string) error
	VerifyFunc      func(ctx context.Context, token string) error

	signOutCalls int
}

func (m *mockProvider) CurrentUser(ctx context.Context, accessToken, fingerprint string) (*identity.Identity, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx, accessToken, fingerprint)
	}
	return nil, identity.ErrSessionNotFound
}

func (m *mockProvider) SignIn(ctx context.Context, params identity.SignInParams) (*identity.Session, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, params)
	}
	return nil, identity.ErrInvalidCredentials
}

func (m *mockProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, email, password)
	}
	return "", errors.New("unexpected SignUp call")
}

func (m *mockProvider) Refresh(ctx context.Context, refreshToken, fingerprint string) (*identity.Session, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken, fingerprint)
	}
	return nil, identity.ErrSessionNotFound
}

func (m *mockProvider) SignOut(ctx context.Context, userID string) error {
	m.signOutCalls++
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, userID)
	}
	return nil
}

func (m *mockProvider) Verify(ctx context.Context, token string) error {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, token)
	}
	return nil
}

// mockStore implements store.TodoStore with per-call hooks and
// call counters.
type mockStore struct {
	ListByOwnerFunc func(ctx context.Context, ownerID string) ([]models.Todo, error)
	InsertFunc      func(ctx context.Context, ownerID, task string) (*models.Todo, error)
	SetCompleteFunc func(ctx context.Context, id int64, ownerID string, complete bool) error
	RenameFunc      func(ctx context.Context, id int64, ownerID, task string) error
	DeleteFunc      func(ctx context.Context, id int64, ownerID string) error

	listCalls   int
	insertCalls int
}

func (m *mockStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Todo, error) {
	m.listCalls++
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockStore) Insert(ctx context.Context, ownerID, task string) (*models.Todo, error) {
	m.insertCalls++
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, ownerID, task)
	}
	return &models.Todo{ID: 1, UserID: ownerID, Task: task}, nil
}

func (m *mockStore) SetComplete(ctx context.Context, id int64, ownerID string, complete bool) error {
	if m.SetCompleteFunc != nil {
		return m.SetCompleteFunc(ctx, id, ownerID, complete)
	}
	return nil
}

func (m *mockStore) Rename(ctx context.Context, id int64, ownerID, task string) error {
	if m.RenameFunc != nil {
		return m.RenameFunc(ctx, id, ownerID, task)
	}
	return nil
}

func (m *mockStore) Delete(ctx context.Context, id int64, ownerID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, ownerID)
	}
	return nil
}

const (
	testUserID    = "user-1"
	testEmail     = "user@example.com"
	testSessionID = "session-1"
)

// authenticatedProvider returns a provider whose CurrentUser always
// admits the test identity.
func authenticatedProvider() *mockProvider {
	return &mockProvider{
		CurrentUserFunc: func(_ context.Context, _, _ string) (*identity.Identity, error) {
			return &identity.Identity{
				UserID:    testUserID,
				Email:     testEmail,
				SessionID: testSessionID,
			}, nil
		},
	}
}

type testServer struct {
	provider *mockProvider
	store    *mockStore
	pages    *todolist.Pages
	router   *gin.Engine
}

func newTestServer(provider *mockProvider, store *mockStore) *testServer {
	gin.SetMode(gin.TestMode)

	pages := todolist.NewPages()
	handler := New(zerolog.Nop(), provider, store, pages)

	router := gin.New()
	router.SetHTMLTemplate(Templates())

	router.GET("/login", handler.HandleLoginPage)
	router.GET("/register", handler.HandleRegisterPage)
	router.POST("/auth/login", handler.HandleLogin)
	router.POST("/auth/register", handler.HandleRegister)
	router.GET("/auth/verify", handler.HandleVerify)
	router.POST("/auth/logout", handler.HandleSessionGate, handler.HandleLogout)
	router.GET("/dashboard", handler.HandleSessionGate, handler.HandleDashboard)

	todos := router.Group("/todos", handler.HandleSessionGate)
	todos.POST("", handler.HandleCreateTodo)
	todos.GET("/edit/cancel", handler.HandleCancelEdit)
	todos.GET("/:id/edit", handler.HandleStartEdit)
	todos.POST("/:id/toggle", handler.HandleToggleTodo)
	todos.POST("/:id/rename", handler.HandleRenameTodo)
	todos.POST("/:id/delete", handler.HandleDeleteTodo)

	return &testServer{
		provider: provider,
		store:    store,
		pages:    pages,
		router:   router,
	}
}

func (ts *testServer) get(t *testing.T, path string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authed {
		req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: "token"})
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if authed {
		req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: "token"})
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("Location = %q, want %q", got, location)
	}
}
