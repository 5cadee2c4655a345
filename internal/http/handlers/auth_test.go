package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raxilor/ratehub/internal/auth"
	"github.com/raxilor/ratehub/internal/domain/user"
	"github.com/raxilor/ratehub/internal/http/handlers"
	"github.com/raxilor/ratehub/internal/security"
)

type fakeUsersRepo struct {
	getByEmailFn     func(ctx context.Context, email string) (user.User, error)
	getByIDFn        func(ctx context.Context, id string) (user.User, error)
	createFn         func(ctx context.Context, u user.User) (user.User, error)
	updatePasswordFn func(ctx context.Context, id, hash string) error

	created []user.User
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	if f.updatePasswordFn != nil {
		return f.updatePasswordFn(ctx, id, hash)
	}
	return nil
}

func testJWT() *auth.Manager {
	return auth.NewManager("test-secret", time.Hour)
}

func TestSignUpDefaultsRoleToUser(t *testing.T) {
	repo := &fakeUsersRepo{}
	h := handlers.NewAuthHandler(repo, repo, testJWT())

	r := gin.New()
	r.POST("/auth/signup", h.SignUp)

	body := `{
		"name": "Regular Platform User",
		"email": "new@example.com",
		"password": "Secret@1",
		"address": "789 Residential Street"
	}`

	w := doJSON(t, r, http.MethodPost, "/auth/signup", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	if len(repo.created) != 1 {
		t.Fatalf("created %d users, want 1", len(repo.created))
	}

	created := repo.created[0]

	if created.Role != user.RoleUser {
		t.Errorf("role = %q, want %q", created.Role, user.RoleUser)
	}

	if created.PasswordHash == "Secret@1" || created.PasswordHash == "" {
		t.Error("password was not hashed before persisting")
	}

	var resp struct {
		Token string       `json:"token"`
		User  user.Summary `json:"user"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	claims, err := testJWT().VerifyAccessToken(resp.Token)

	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}

	if claims.Role != user.RoleUser {
		t.Errorf("token role = %q, want %q", claims.Role, user.RoleUser)
	}
}

func TestSignUpRejectsAdminRole(t *testing.T) {
	repo := &fakeUsersRepo{}
	h := handlers.NewAuthHandler(repo, repo, testJWT())

	r := gin.New()
	r.POST("/auth/signup", h.SignUp)

	body := `{
		"name": "Sneaky Person Name",
		"email": "sneaky@example.com",
		"password": "Secret@1",
		"role": "Admin"
	}`

	w := doJSON(t, r, http.MethodPost, "/auth/signup", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	if len(repo.created) != 0 {
		t.Fatalf("created %d users, want 0", len(repo.created))
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	repo := &fakeUsersRepo{
		createFn: func(ctx context.Context, u user.User) (user.User, error) {
			return user.User{}, user.ErrEmailTaken
		},
	}
	h := handlers.NewAuthHandler(repo, repo, testJWT())

	r := gin.New()
	r.POST("/auth/signup", h.SignUp)

	body := `{
		"name": "Duplicate Email Person",
		"email": "taken@example.com",
		"password": "Secret@1"
	}`

	w := doJSON(t, r, http.MethodPost, "/auth/signup", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	if code := errorCode(t, w); code != "email_taken" {
		t.Fatalf("error code = %q, want email_taken", code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := security.HashPassword("right-password")

	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	repo := &fakeUsersRepo{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{ID: "u1", Email: email, PasswordHash: hash, Role: user.RoleUser}, nil
		},
	}
	h := handlers.NewAuthHandler(repo, repo, testJWT())

	r := gin.New()
	r.POST("/auth/login", h.Login)

	w := doJSON(t, r, http.MethodPost, "/auth/login", `{"email": "a@example.com", "password": "wrong-password"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	if code := errorCode(t, w); code != "invalid_credentials" {
		t.Fatalf("error code = %q, want invalid_credentials", code)
	}
}

func TestLoginUnknownEmailSameAnswer(t *testing.T) {
	repo := &fakeUsersRepo{}
	h := handlers.NewAuthHandler(repo, repo, testJWT())

	r := gin.New()
	r.POST("/auth/login", h.Login)

	w := doJSON(t, r, http.MethodPost, "/auth/login", `{"email": "nobody@example.com", "password": "whatever"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	// no account enumeration: identical code for unknown email and bad password
	if code := errorCode(t, w); code != "invalid_credentials" {
		t.Fatalf("error code = %q, want invalid_credentials", code)
	}
}

func TestLoginSuccessIssuesToken(t *testing.T) {
	hash, err := security.HashPassword("Admin@123")

	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	repo := &fakeUsersRepo{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{ID: "admin-1", Name: "System Administrator", Email: email, PasswordHash: hash, Role: user.RoleAdmin}, nil
		},
	}
	h := handlers.NewAuthHandler(repo, repo, testJWT())

	r := gin.New()
	r.POST("/auth/login", h.Login)

	w := doJSON(t, r, http.MethodPost, "/auth/login", `{"email": "admin@example.com", "password": "Admin@123"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string       `json:"token"`
		User  user.Summary `json:"user"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	claims, err := testJWT().VerifyAccessToken(resp.Token)

	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}

	if claims.UserID != "admin-1" || claims.Role != user.RoleAdmin {
		t.Errorf("claims = %+v, want admin-1/Admin", claims)
	}

	if resp.User.Email != "admin@example.com" {
		t.Errorf("user.email = %q", resp.User.Email)
	}
}

func TestUpdatePassword(t *testing.T) {
	hash, err := security.HashPassword("old-password")

	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	var storedHash string

	repo := &fakeUsersRepo{
		getByIDFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{ID: id, PasswordHash: hash, Role: user.RoleUser}, nil
		},
		updatePasswordFn: func(ctx context.Context, id, newHash string) error {
			storedHash = newHash
			return nil
		},
	}
	h := handlers.NewAuthHandler(repo, repo, testJWT())

	r := routerAs("u1", user.RoleUser, http.MethodPut, "/auth/update-password", h.UpdatePassword)

	// wrong current password is rejected

	w := doJSON(t, r, http.MethodPut, "/auth/update-password", `{"currentPassword": "nope", "newPassword": "new-password"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrong current: status = %d, want 400", w.Code)
	}

	if code := errorCode(t, w); code != "invalid_credentials" {
		t.Fatalf("error code = %q, want invalid_credentials", code)
	}

	// correct current password re-hashes and persists

	w = doJSON(t, r, http.MethodPut, "/auth/update-password", `{"currentPassword": "old-password", "newPassword": "new-password"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	if storedHash == "" || storedHash == "new-password" {
		t.Fatal("new password was not hashed and persisted")
	}

	if err := security.CheckPassword(storedHash, "new-password"); err != nil {
		t.Fatalf("stored hash does not match the new password: %v", err)
	}
}
