package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JayRenji/chat-app/internal/auth/session"
	"github.com/JayRenji/chat-app/internal/identity"
	"github.com/JayRenji/chat-app/internal/security/password"
)

// Handler serves the account and session endpoints.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	users    identity.Store
	sessions *session.Manager
	pw       password.Config
	validate *validator.Validate
}

// NewHandler constructs the HTTP layer over the given stores.
func NewHandler(log *slog.Logger, cfg Config, users identity.Store, sessions *session.Manager, pw password.Config) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:      log,
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		pw:       pw,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register mounts the handler's routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("POST /logout", h.handleLogout)
	mux.HandleFunc("GET /me", h.handleMe)
	mux.HandleFunc("POST /profile", h.handleProfileUpdate)
	mux.HandleFunc("POST /profile/picture", h.handleAvatarUpload)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", validationMessage(err))
		return
	}

	hash, err := h.pw.Hash(req.Password)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
			writeError(w, http.StatusBadRequest, "invalid_password", err.Error())
			return
		}
		h.log.Error("register.hash.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "registration failed")
		return
	}

	user, err := h.users.CreateUser(r.Context(), identity.CreateUserInput{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Now:          time.Now().UTC(),
	})
	if err != nil {
		if field, ok := identity.ConflictField(err); ok {
			switch field {
			case "email":
				writeError(w, http.StatusBadRequest, "email_registered", "email is already registered")
			default:
				writeError(w, http.StatusBadRequest, "username_taken", "username is already taken")
			}
			return
		}
		if identity.IsInvalidInput(err) {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		h.log.Error("register.create.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "registration failed")
		return
	}

	h.log.Info("account.registered", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", validationMessage(err))
		return
	}

	issued, err := h.sessions.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if session.IsAuthFailure(err) {
			// The exact failure kind is logged but never leaks to the client.
			h.log.Info("login.denied", "username", req.Username, "err", err)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
			return
		}
		h.log.Error("login.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "login failed")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
		User:      toUserResponse(issued.User),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token != "" {
		if err := h.sessions.Invalidate(r.Context(), token); err != nil {
			h.log.Error("logout.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "internal", "logout failed")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req profileUpdateRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", validationMessage(err))
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, identity.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		if identity.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "session_invalid", "account no longer exists")
			return
		}
		h.log.Error("profile.update.fail", "user_id", user.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "profile update failed")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

func (h *Handler) handleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "bad_upload", "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_upload", "missing avatar file")
		return
	}
	defer func() { _ = file.Close() }()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedAvatarExt(ext) {
		writeError(w, http.StatusBadRequest, "bad_upload", fmt.Sprintf("unsupported file type: %s", ext))
		return
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		h.log.Error("avatar.mkdir.fail", "dir", h.cfg.UploadDir, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "upload failed")
		return
	}

	// Timestamp prefix keeps names unique; the base name is kept for
	// operator readability only, never trusted as a path.
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(header.Filename))
	dst := filepath.Join(h.cfg.UploadDir, name)

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		h.log.Error("avatar.create.fail", "path", dst, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "upload failed")
		return
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, file); err != nil {
		_ = os.Remove(dst)
		h.log.Error("avatar.write.fail", "path", dst, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "upload failed")
		return
	}

	updated, err := h.users.UpdateAvatar(r.Context(), user.ID, path.Join("/uploads", name))
	if err != nil {
		h.log.Error("avatar.update.fail", "user_id", user.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "upload failed")
		return
	}

	h.log.Info("avatar.updated", "user_id", user.ID, "file", name)
	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

// requireSession resolves the bearer token and writes 401 on failure.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) (identity.User, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "session_required", "missing bearer token")
		return identity.User{}, false
	}

	user, err := h.sessions.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotActive) {
			writeError(w, http.StatusUnauthorized, "session_invalid", "session is not active")
			return identity.User{}, false
		}
		h.log.Error("session.resolve.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "session lookup failed")
		return identity.User{}, false
	}
	return user, true
}

func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %s failed on %s", fe.Field(), fe.Tag())
	}
	return "invalid input"
}

func allowedAvatarExt(ext string) bool {
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return true
	}
	return false
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "upload"
	}
	// Collapse anything suspicious to a flat, portable name.
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
