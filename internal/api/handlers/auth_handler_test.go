package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarroquinRiv/jarvis/internal/models"
)

func (f *fakeDB) CreateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.users == nil {
		f.users = map[string]*models.User{}
	}
	if _, exists := f.users[user.Email]; exists {
		return errors.New("duplicate email")
	}
	f.users[user.Email] = user
	return nil
}

func (f *fakeDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func postJSON(url, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}

func TestSignupAndLogin(t *testing.T) {
	db := newFakeDB()
	h := NewAuthHandler(db, "secret")

	req, rec := postJSON("/api/signup", `{"email":"Ana@Example.com","password":"hunter22"}`)
	h.Signup(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decodeBody(t, rec)["token"])

	// email is normalized, login with a different casing still works
	req, rec = postJSON("/api/login", `{"email":"ana@example.com","password":"hunter22"}`)
	h.Login(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decodeBody(t, rec)["token"])
}

func TestSignupMissingFields(t *testing.T) {
	h := NewAuthHandler(newFakeDB(), "secret")

	req, rec := postJSON("/api/signup", `{"email":"","password":""}`)
	h.Signup(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupDuplicateEmail(t *testing.T) {
	db := newFakeDB()
	h := NewAuthHandler(db, "secret")

	req, rec := postJSON("/api/signup", `{"email":"ana@example.com","password":"pw1"}`)
	h.Signup(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req, rec = postJSON("/api/signup", `{"email":"ana@example.com","password":"pw2"}`)
	h.Signup(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	db := newFakeDB()
	h := NewAuthHandler(db, "secret")

	req, rec := postJSON("/api/signup", `{"email":"ana@example.com","password":"correcta"}`)
	h.Signup(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req, rec = postJSON("/api/login", `{"email":"ana@example.com","password":"incorrecta"}`)
	h.Login(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Credenciales inválidas", decodeBody(t, rec)["error"])
}

func TestLoginUnknownUser(t *testing.T) {
	h := NewAuthHandler(newFakeDB(), "secret")

	req, rec := postJSON("/api/login", `{"email":"nadie@example.com","password":"x"}`)
	h.Login(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
