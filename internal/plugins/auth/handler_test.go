package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Register(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)

	c, rec := newJSONContext(http.MethodPost, "/auth/registration",
		`{"email":"a@x.com","password":"Secret123","first_name":"Ann","age":31}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
}

func TestHandler_Register_Validation(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)

	cases := map[string]int{
		`{"email":"not-an-email","password":"Secret123"}`:      http.StatusUnprocessableEntity,
		`{"email":"a@x.com","password":"short1A"}`:             http.StatusUnprocessableEntity,
		`{"email":"a@x.com","password":"alllowercase1"}`:       http.StatusUnprocessableEntity,
		`{"email":"a@x.com","password":"Has Space1"}`:          http.StatusUnprocessableEntity,
		`{"email":"a@x.com","password":"Secret123","age":200}`: http.StatusUnprocessableEntity,
		`{"email":"a@x.com"}`:                                  http.StatusBadRequest,
		`{"password":"Secret123"}`:                             http.StatusBadRequest,
		`{not json`:                                            http.StatusBadRequest,
	}
	for body, code := range cases {
		c, _ := newJSONContext(http.MethodPost, "/auth/registration", body)
		err := h.Register(c)
		if assert.Errorf(t, err, "body %s", body) {
			assertAppError(t, err, code)
		}
	}
}

func TestHandler_LoginLogoutMe(t *testing.T) {
	env := newTestEnv(t)
	env.repo.seed(t, "u1", "a@x.com", "Aa1!aaaa")
	h := NewHandler(env.svc)

	c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"Aa1!aaaa"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Me behind the middleware, and the hash never leaves the server.
	c, rec = newAuthContext("Bearer " + resp.AccessToken)
	require.NoError(t, RequireAuth(env.svc)(h.Me)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@x.com"`)
	assert.NotContains(t, rec.Body.String(), "password")

	c, rec = newAuthContext("Bearer " + resp.AccessToken)
	require.NoError(t, RequireAuth(env.svc)(h.Logout)(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, _ = newAuthContext("Bearer " + resp.AccessToken)
	assertUnauthenticated(t, RequireAuth(env.svc)(h.Me)(c), ErrNoActiveSession)
}

func TestValidatePassword(t *testing.T) {
	assert.Empty(t, validatePassword("Aa1!aaaa"))
	assert.NotEmpty(t, validatePassword("Aa1!aaa"))
	assert.NotEmpty(t, validatePassword(strings.Repeat("A1", 37)))
	assert.NotEmpty(t, validatePassword("abcdefgh1"))
	assert.NotEmpty(t, validatePassword("ABCDEFGHI"))
}
