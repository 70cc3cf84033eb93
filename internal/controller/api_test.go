package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"todo-api/internal/auth"
	"todo-api/internal/controller"
	"todo-api/internal/routes"
	"todo-api/internal/store"
)

type testAPI struct {
	router http.Handler
	users  *store.MemUserStore
	todos  *store.MemTodoStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	todos := store.NewMemTodoStore()
	users := store.NewMemUserStore(todos)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	authenticator := auth.NewAuthenticator(users, tokens)
	handler := controller.New(users, todos, authenticator, nil, nil, nil)
	return &testAPI{
		router: routes.Router(handler, authenticator),
		users:  users,
		todos:  todos,
	}
}

func (api *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

func (api *testAPI) registerAndLogin(t *testing.T, username, password string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": password}
	if w := api.do(t, http.MethodPost, "/auth/register", "", creds); w.Code != http.StatusCreated {
		t.Fatalf("register %q: status %d, body %s", username, w.Code, w.Body.String())
	}
	w := api.do(t, http.MethodPost, "/auth/login", "", creds)
	if w.Code != http.StatusOK {
		t.Fatalf("login %q: status %d, body %s", username, w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.TokenType != "bearer" || resp.AccessToken == "" {
		t.Fatalf("login response = %+v", resp)
	}
	return resp.AccessToken
}

type todoOut struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

func decodeTodo(t *testing.T, w *httptest.ResponseRecorder) todoOut {
	t.Helper()
	var out todoOut
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode todo: %v (body %s)", err, w.Body.String())
	}
	return out
}

func TestRegister(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	creds := map[string]string{"username": "alice", "password": "pw"}

	w := api.do(t, http.MethodPost, "/auth/register", "", creds)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID == 0 || resp.Username != "alice" {
		t.Fatalf("register response = %+v", resp)
	}

	if w := api.do(t, http.MethodPost, "/auth/register", "", creds); w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status %d, want 409", w.Code)
	}

	long := map[string]string{"username": strings.Repeat("a", store.MaxUsernameLen+1), "password": "pw"}
	if w := api.do(t, http.MethodPost, "/auth/register", "", long); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overlong username: status %d, want 422", w.Code)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	api.registerAndLogin(t, "alice", "pw")

	wrongPW := api.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "alice", "password": "nope"})
	unknown := api.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "mallory", "password": "pw"})
	if wrongPW.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want 401, 401", wrongPW.Code, unknown.Code)
	}
	if wrongPW.Body.String() != unknown.Body.String() {
		t.Fatalf("failure bodies differ: %q vs %q", wrongPW.Body.String(), unknown.Body.String())
	}
}

func TestMe(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "alice", "pw")

	w := api.do(t, http.MethodGet, "/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("/me: status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Username != "alice" || resp.ID == 0 {
		t.Fatalf("/me response = %+v", resp)
	}
}

func TestUnauthorizedRequests(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	api.registerAndLogin(t, "alice", "pw")
	expired, err := auth.NewTokenService("test-secret", -time.Minute).Issue("alice")
	if err != nil {
		t.Fatalf("issue expired token: %v", err)
	}
	wrongKey, err := auth.NewTokenService("other-secret", time.Hour).Issue("alice")
	if err != nil {
		t.Fatalf("issue foreign token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "no token", token: ""},
		{name: "garbage token", token: "garbage"},
		{name: "expired token", token: expired},
		{name: "wrong secret", token: wrongKey},
	}
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/me"},
		{http.MethodGet, "/todos"},
		{http.MethodPost, "/todos"},
		{http.MethodGet, "/todos/1"},
		{http.MethodPatch, "/todos/1"},
		{http.MethodDelete, "/todos/1"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			for _, p := range paths {
				w := api.do(t, p.method, p.path, test.token, nil)
				if w.Code != http.StatusUnauthorized {
					t.Fatalf("%s %s: status %d, want 401", p.method, p.path, w.Code)
				}
			}
		})
	}
}

func TestTodoLifecycle(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "alice", "pw")

	// Fresh list is empty JSON array, not null.
	w := api.do(t, http.MethodGet, "/todos", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Fatalf("fresh list body = %q, want []", got)
	}

	w = api.do(t, http.MethodPost, "/todos", token, map[string]string{"title": "x"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body.String())
	}
	created := decodeTodo(t, w)
	if created.Title != "x" || created.Done {
		t.Fatalf("created todo = %+v", created)
	}

	w = api.do(t, http.MethodGet, fmt.Sprintf("/todos/%d", created.ID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: status %d", w.Code)
	}
	if got := decodeTodo(t, w); got != created {
		t.Fatalf("get = %+v, want %+v", got, created)
	}

	w = api.do(t, http.MethodDelete, fmt.Sprintf("/todos/%d", created.ID), token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", w.Code)
	}
	if w := api.do(t, http.MethodGet, fmt.Sprintf("/todos/%d", created.ID), token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d, want 404", w.Code)
	}
	if w := api.do(t, http.MethodDelete, fmt.Sprintf("/todos/%d", created.ID), token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: status %d, want 404", w.Code)
	}
}

func TestTodoListNewestFirst(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "alice", "pw")

	for _, title := range []string{"first", "second", "third"} {
		if w := api.do(t, http.MethodPost, "/todos", token, map[string]string{"title": title}); w.Code != http.StatusCreated {
			t.Fatalf("create %q: status %d", title, w.Code)
		}
	}
	w := api.do(t, http.MethodGet, "/todos", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	var list []todoOut
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list has %d items, want 3", len(list))
	}
	for i, want := range []string{"third", "second", "first"} {
		if list[i].Title != want {
			t.Fatalf("list[%d].Title = %q, want %q", i, list[i].Title, want)
		}
	}
}

func TestTodoPartialUpdates(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "alice", "pw")

	w := api.do(t, http.MethodPost, "/todos", token, map[string]string{"title": "original"})
	created := decodeTodo(t, w)
	path := fmt.Sprintf("/todos/%d", created.ID)

	w = api.do(t, http.MethodPatch, path, token, map[string]bool{"done": true})
	if w.Code != http.StatusOK {
		t.Fatalf("patch done: status %d, body %s", w.Code, w.Body.String())
	}
	if got := decodeTodo(t, w); got.Title != "original" || !got.Done {
		t.Fatalf("done-only patch = %+v", got)
	}

	w = api.do(t, http.MethodPatch, path, token, map[string]string{"title": "renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch title: status %d", w.Code)
	}
	if got := decodeTodo(t, w); got.Title != "renamed" || !got.Done {
		t.Fatalf("title-only patch = %+v", got)
	}

	// Query-parameter form of the same operation.
	w = api.do(t, http.MethodPatch, path+"?done=false&title=again", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("patch via query: status %d, body %s", w.Code, w.Body.String())
	}
	if got := decodeTodo(t, w); got.Title != "again" || got.Done {
		t.Fatalf("query patch = %+v", got)
	}

	if w := api.do(t, http.MethodPatch, path+"?done=maybe", token, nil); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad done value: status %d, want 422", w.Code)
	}
}

func TestTodoTitleValidation(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "alice", "pw")

	tests := []struct {
		name     string
		title    string
		wantCode int
	}{
		{name: "empty", title: "", wantCode: http.StatusUnprocessableEntity},
		{name: "max length", title: strings.Repeat("x", store.MaxTitleLen), wantCode: http.StatusCreated},
		{name: "one over", title: strings.Repeat("x", store.MaxTitleLen+1), wantCode: http.StatusUnprocessableEntity},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, "/todos", token, map[string]string{"title": test.title})
			if w.Code != test.wantCode {
				t.Fatalf("create (%d chars): status %d, want %d", len(test.title), w.Code, test.wantCode)
			}
		})
	}
}

func TestCrossUserIsolation(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	tokenA := api.registerAndLogin(t, "alice", "pw")
	tokenB := api.registerAndLogin(t, "bob", "pw")

	w := api.do(t, http.MethodPost, "/todos", tokenA, map[string]string{"title": "private"})
	created := decodeTodo(t, w)
	path := fmt.Sprintf("/todos/%d", created.ID)
	missing := "/todos/999999"

	// Bob touching Alice's todo must look exactly like touching nothing.
	for _, p := range []string{path, missing} {
		if w := api.do(t, http.MethodGet, p, tokenB, nil); w.Code != http.StatusNotFound {
			t.Fatalf("GET %s as bob: status %d, want 404", p, w.Code)
		}
		if w := api.do(t, http.MethodPatch, p, tokenB, map[string]bool{"done": true}); w.Code != http.StatusNotFound {
			t.Fatalf("PATCH %s as bob: status %d, want 404", p, w.Code)
		}
		if w := api.do(t, http.MethodDelete, p, tokenB, nil); w.Code != http.StatusNotFound {
			t.Fatalf("DELETE %s as bob: status %d, want 404", p, w.Code)
		}
	}

	var list []todoOut
	w = api.do(t, http.MethodGet, "/todos", tokenB, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode bob's list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("bob sees %d todos, want 0", len(list))
	}

	// Alice's todo is intact.
	if w := api.do(t, http.MethodGet, path, tokenA, nil); w.Code != http.StatusOK {
		t.Fatalf("GET %s as alice: status %d", path, w.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	if w := api.do(t, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("/health: status %d", w.Code)
	}
	if w := api.do(t, http.MethodGet, "/ready", "", nil); w.Code != http.StatusOK {
		t.Fatalf("/ready: status %d", w.Code)
	}
}
