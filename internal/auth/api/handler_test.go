package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/JayRenji/chat-app/internal/auth/session"
	"github.com/JayRenji/chat-app/internal/identity"
	"github.com/JayRenji/chat-app/internal/security/password"
)

func testHandler(t *testing.T) (*Handler, *http.ServeMux) {
	t.Helper()

	pw := password.DefaultConfig()
	pw.Cost = bcrypt.MinCost

	users := identity.NewMemoryStore()
	sessions, err := session.NewManager(
		session.Config{TTL: time.Hour, TokenBytes: 32},
		nil, users, session.NewMemoryStore(), pw,
	)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	cfg := DefaultConfig()
	cfg.UploadDir = t.TempDir()

	h := NewHandler(nil, cfg, users, sessions, pw)
	mux := http.NewServeMux()
	h.Register(mux)
	return h, mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	r := httptest.NewRequest(method, target, rd)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, w.Body.String())
	}
	return v
}

func registerAndLogin(t *testing.T, mux *http.ServeMux, username string) loginResponse {
	t.Helper()

	w := doJSON(t, mux, http.MethodPost, "/register", "", registerRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "pw1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, mux, http.MethodPost, "/login", "", loginRequest{
		Username: username,
		Password: "pw1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d: %s", w.Code, w.Body.String())
	}
	return decodeBody[loginResponse](t, w)
}

func TestRegister_DuplicateUsernameAndEmail(t *testing.T) {
	t.Parallel()

	_, mux := testHandler(t)

	w := doJSON(t, mux, http.MethodPost, "/register", "", registerRequest{
		Username: "alice", Email: "alice@example.com", Password: "pw1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("first register: %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, mux, http.MethodPost, "/register", "", registerRequest{
		Username: "Alice", Email: "other@example.com", Password: "pw1",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate username: %d", w.Code)
	}
	if body := decodeBody[errorBody](t, w); body.Error.Code != "username_taken" {
		t.Fatalf("code: %q", body.Error.Code)
	}

	w = doJSON(t, mux, http.MethodPost, "/register", "", registerRequest{
		Username: "bob", Email: "ALICE@example.com", Password: "pw1",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate email: %d", w.Code)
	}
	if body := decodeBody[errorBody](t, w); body.Error.Code != "email_registered" {
		t.Fatalf("code: %q", body.Error.Code)
	}
}

func TestRegister_InvalidInput(t *testing.T) {
	t.Parallel()

	_, mux := testHandler(t)

	cases := []struct {
		name string
		req  registerRequest
	}{
		{name: "missing username", req: registerRequest{Email: "a@example.com", Password: "pw1"}},
		{name: "bad email", req: registerRequest{Username: "a", Email: "not-an-email", Password: "pw1"}},
		{name: "missing password", req: registerRequest{Username: "a", Email: "a@example.com"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, mux, http.MethodPost, "/register", "", tc.req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	_, mux := testHandler(t)
	registerAndLogin(t, mux, "alice")

	wrongPw := doJSON(t, mux, http.MethodPost, "/login", "", loginRequest{Username: "alice", Password: "nope"})
	noUser := doJSON(t, mux, http.MethodPost, "/login", "", loginRequest{Username: "ghost", Password: "nope"})

	if wrongPw.Code != http.StatusUnauthorized || noUser.Code != http.StatusUnauthorized {
		t.Fatalf("codes: %d, %d", wrongPw.Code, noUser.Code)
	}

	a := decodeBody[errorBody](t, wrongPw)
	b := decodeBody[errorBody](t, noUser)
	if a != b {
		t.Fatalf("failure responses differ: %+v vs %+v", a, b)
	}
	if a.Error.Code != "invalid_credentials" {
		t.Fatalf("code: %q", a.Error.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	_, mux := testHandler(t)
	login := registerAndLogin(t, mux, "alice")

	if login.Token == "" {
		t.Fatalf("expected a session token")
	}

	w := doJSON(t, mux, http.MethodGet, "/me", login.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d: %s", w.Code, w.Body.String())
	}
	if me := decodeBody[userResponse](t, w); me.Username != "alice" {
		t.Fatalf("username: %q", me.Username)
	}

	// Logout twice: both succeed, the session dies once.
	for i := 0; i < 2; i++ {
		w = doJSON(t, mux, http.MethodPost, "/logout", login.Token, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("logout %d: %d", i, w.Code)
		}
	}

	w = doJSON(t, mux, http.MethodGet, "/me", login.Token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: %d", w.Code)
	}
}

func TestMe_RequiresToken(t *testing.T) {
	t.Parallel()

	_, mux := testHandler(t)

	w := doJSON(t, mux, http.MethodGet, "/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", w.Code)
	}

	w = doJSON(t, mux, http.MethodGet, "/me", "garbage-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: %d", w.Code)
	}
}

func TestProfileUpdate_PartialAndVisibleImmediately(t *testing.T) {
	t.Parallel()

	_, mux := testHandler(t)
	login := registerAndLogin(t, mux, "alice")

	first := "Alice"
	bio := "hello there"
	w := doJSON(t, mux, http.MethodPost, "/profile", login.Token, profileUpdateRequest{
		FirstName: &first,
		Bio:       &bio,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d: %s", w.Code, w.Body.String())
	}
	got := decodeBody[userResponse](t, w)
	if got.FirstName == nil || *got.FirstName != "Alice" {
		t.Fatalf("first name: %+v", got.FirstName)
	}
	if got.LastName != nil {
		t.Fatalf("last name should be untouched, got %q", *got.LastName)
	}

	// The session stores only the user id, so a fresh resolve sees the
	// updated profile without re-login.
	w = doJSON(t, mux, http.MethodGet, "/me", login.Token, nil)
	me := decodeBody[userResponse](t, w)
	if me.Bio == nil || *me.Bio != "hello there" {
		t.Fatalf("bio via /me: %+v", me.Bio)
	}
}

func TestAvatarUpload(t *testing.T) {
	t.Parallel()

	_, mux := testHandler(t)
	login := registerAndLogin(t, mux, "alice")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar", "me.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write([]byte("not-a-real-png")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/profile/picture", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("Authorization", "Bearer "+login.Token)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("upload: %d: %s", w.Code, w.Body.String())
	}

	got := decodeBody[userResponse](t, w)
	if got.AvatarURL == nil || !strings.HasPrefix(*got.AvatarURL, "/uploads/") {
		t.Fatalf("avatar url: %+v", got.AvatarURL)
	}
	if !strings.HasSuffix(*got.AvatarURL, "-me.png") {
		t.Fatalf("avatar url should keep the base name: %q", *got.AvatarURL)
	}
}

func TestAvatarUpload_RejectsUnsupportedType(t *testing.T) {
	t.Parallel()

	_, mux := testHandler(t)
	login := registerAndLogin(t, mux, "alice")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("avatar", "evil.exe")
	fmt.Fprint(part, "MZ")
	_ = mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/profile/picture", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("Authorization", "Bearer "+login.Token)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
}

func TestDecodeJSON_RejectsUnknownFieldsAndTrailingData(t *testing.T) {
	t.Parallel()

	_, mux := testHandler(t)

	for _, body := range []string{
		`{"username":"a","email":"a@example.com","password":"pw1","extra":true}`,
		`{"username":"a","email":"a@example.com","password":"pw1"}{"again":1}`,
	} {
		r := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: got %d", body, w.Code)
		}
	}
}
