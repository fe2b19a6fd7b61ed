package echoapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makemyfuture/planner/core/user"
	emailsvc "github.com/makemyfuture/planner/services/email"
)

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}

func Test_userApi_signUp(t *testing.T) {
	env := setupTestServer(t, true)
	env.createUser(t, "awe", "awe@test.cd", "LeP@ssw0rd", true)

	t.Run("account created", func(t *testing.T) {
		body := marchallObj(t, user.NewUser{
			Username:        "hero",
			Email:           "hero@test.cd",
			Password:        "LeP@ssw0rd",
			PasswordConfirm: "LeP@ssw0rd",
		})
		req, rec := newRequest(http.MethodPost, "/v1/users/sign-up", body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp SignUpResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.AccountCreated)
		assert.Equal(t, "hero", resp.User.Username)
		assert.Equal(t, "hero@test.cd", resp.User.Email)
		assert.True(t, resp.User.IsActive)
		assert.NotEmpty(t, resp.User.ID)

		// the new account is signed straight in
		cookie := sessionCookie(t, rec)
		require.NotNil(t, cookie)
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
	})

	tests := []httpTest{
		{
			name: "username taken",
			body: marchallObj(t, user.NewUser{
				Username: "awe", Email: "awe2@test.cd",
				Password: "LeP@ssw0rd", PasswordConfirm: "LeP@ssw0rd",
			}),
			wantData: []byte(`{"username": "a user with this username already exists"}`),
		},
		{
			name: "email taken",
			body: marchallObj(t, user.NewUser{
				Username: "awe2", Email: "awe@test.cd",
				Password: "LeP@ssw0rd", PasswordConfirm: "LeP@ssw0rd",
			}),
			wantData: []byte(`{"email": "a user with this email already exists"}`),
		},
		{
			name: "password too short",
			body: marchallObj(t, user.NewUser{
				Username: "shorty", Email: "shorty@test.cd",
				Password: "L3P@s", PasswordConfirm: "L3P@s",
			}),
			wantData: []byte(`{"password": "password must contain at least 8 characters"}`),
		},
		{
			name: "password mismatch",
			body: marchallObj(t, user.NewUser{
				Username: "mismatch", Email: "mismatch@test.cd",
				Password: "LeP@ssw0rd", PasswordConfirm: "LeP@ssw0rd!",
			}),
			wantData: []byte(`{"password_confirm": "password_confirm must be equal to Password"}`),
		},
		{
			name: "password too similar to username",
			body: marchallObj(t, user.NewUser{
				Username: "Attr_Similar", Email: "attrsim@test.cd",
				Password: "@ttr_S1milar", PasswordConfirm: "@ttr_S1milar",
			}),
			wantData: []byte(`{"password": "password cannot be similar to user attributes"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/v1/users/sign-up"
			tt.wantCode = http.StatusBadRequest

			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_login(t *testing.T) {
	env := setupTestServer(t, true)
	env.createUser(t, "awe", "awe@test.cd", "LeP@ssw0rd", true)
	env.createUser(t, "ndog", "ndog@test.cd", "LeP@ssw0rd", false)

	t.Run("logged in", func(t *testing.T) {
		body := marchallObj(t, user.Credentials{Username: "awe", Password: "LeP@ssw0rd"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.LoggedIn)
		assert.Equal(t, "awe", resp.User.Username)
		assert.False(t, resp.User.LastLogin.IsZero())

		cookie := sessionCookie(t, rec)
		require.NotNil(t, cookie)
		assert.NotEmpty(t, cookie.Value)
	})

	t.Run("login works with email too", func(t *testing.T) {
		body := marchallObj(t, user.Credentials{Username: "awe@test.cd", Password: "LeP@ssw0rd"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	invalidCreds := []byte(`{"error": "invalid credentials"}`)
	tests := []httpTest{
		{
			name:     "unknown user",
			body:     marchallObj(t, user.Credentials{Username: "who", Password: "LeP@ssw0rd"}),
			wantData: invalidCreds,
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, user.Credentials{Username: "awe", Password: "L0LP@ssword"}),
			wantData: invalidCreds,
		},
		{
			name:     "deactivated account",
			body:     marchallObj(t, user.Credentials{Username: "ndog", Password: "LeP@ssw0rd"}),
			wantData: invalidCreds,
		},
		{
			name:     "missing fields",
			body:     []byte(`{}`),
			wantData: []byte(`{"username": "this field is required", "password": "this field is required"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/v1/users/login"
			tt.wantCode = http.StatusBadRequest

			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			assert.Nil(t, sessionCookie(t, rec))
		})
	}
}

func Test_userApi_logout(t *testing.T) {
	env := setupTestServer(t, true)
	usr := env.createUser(t, "awe", "awe@test.cd", "LeP@ssw0rd", true)
	token := env.getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/logout", token)
	env.server.ServeHTTP(rec, req)

	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`{"logged_out": true}`)}, rec)

	// cookie must be expired
	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.MaxAge < 0)
}

func Test_userApi_verifySession(t *testing.T) {
	env := setupTestServer(t, true)
	usr := env.createUser(t, "awe", "awe@test.cd", "LeP@ssw0rd", true)

	tests := []httpTest{
		{name: "anonymous", wantData: []byte(`{"is_signed_in": false}`)},
		{name: "garbage token", token: "not-a-jwt", wantData: []byte(`{"is_signed_in": false}`)},
		{name: "signed in", token: env.getToken(t, usr), wantData: []byte(`{"is_signed_in": true, "username": "awe"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodGet
			tt.path = "/v1/users/verify-session"
			tt.wantCode = http.StatusOK

			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_me(t *testing.T) {
	env := setupTestServer(t, true)
	usr := env.createUser(t, "awe", "awe@test.cd", "LeP@ssw0rd", true)
	naughty := env.createUser(t, "ndog", "ndog@test.cd", "LeP@ssw0rd", false)

	tests := []httpTest{
		{
			name:     "anonymous",
			wantCode: http.StatusUnauthorized,
			wantData: []byte(`{"error": "missing or malformed jwt"}`),
		},
		{
			name:     "deactivated account",
			token:    env.getToken(t, naughty),
			wantCode: http.StatusForbidden,
			wantData: []byte(`{"error": "account deactivated"}`),
		},
		{
			name:     "ok",
			token:    env.getToken(t, usr),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, usr),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", tt.token)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_passwordReset(t *testing.T) {
	env := setupTestServer(t, true)
	env.createUser(t, "awe", "awe@test.cd", "LeP@ssw0rd", true)

	successMsg := "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."

	t.Run("request sends a reset mail", func(t *testing.T) {
		emailsvc.SentMessages = nil // reset

		body := marchallObj(t, PasswordResetRequest{Email: "awe@test.cd"})
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", body)
		env.server.ServeHTTP(rec, req)

		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, SuccessResponse{Success: successMsg})}, rec)
		require.Len(t, emailsvc.SentMessages, 1)

		msg := emailsvc.SentMessages[0]
		assert.Equal(t, "password-reset", msg.TemplateName)
		data, ok := msg.TemplateData.(struct {
			Username string
			UID      string
			Token    string
		})
		require.True(t, ok)
		assert.Equal(t, "awe", data.Username)

		t.Run("confirm resets the password", func(t *testing.T) {
			body := marchallObj(t, user.ResetUserPassword{
				UID:             data.UID,
				Token:           data.Token,
				Password:        "newP@ssw0rd",
				PasswordConfirm: "newP@ssw0rd",
			})
			req, rec := newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
			env.server.ServeHTTP(rec, req)

			checkCodeAndData(t, httpTest{
				wantCode: http.StatusOK,
				wantData: marchallObj(t, SuccessResponse{Success: "Password has been reset with the new password."}),
			}, rec)

			// old password no longer works
			lgn := marchallObj(t, user.Credentials{Username: "awe", Password: "LeP@ssw0rd"})
			req, rec = newRequest(http.MethodPost, "/v1/users/login", lgn)
			env.server.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			// new one does
			lgn = marchallObj(t, user.Credentials{Username: "awe", Password: "newP@ssw0rd"})
			req, rec = newRequest(http.MethodPost, "/v1/users/login", lgn)
			env.server.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})

		t.Run("used token is no longer valid", func(t *testing.T) {
			body := marchallObj(t, user.ResetUserPassword{
				UID:             data.UID,
				Token:           data.Token,
				Password:        "an0therP@ss",
				PasswordConfirm: "an0therP@ss",
			})
			req, rec := newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
			env.server.ServeHTTP(rec, req)

			checkCodeAndData(t, httpTest{
				wantCode: http.StatusBadRequest,
				wantData: []byte(`{"error": "invalid token"}`),
			}, rec)
		})
	})

	t.Run("unknown email gets the same answer", func(t *testing.T) {
		body := marchallObj(t, PasswordResetRequest{Email: "who@test.cd"})
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", body)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, SuccessResponse{Success: successMsg})}, rec)
	})

	t.Run("garbage uid", func(t *testing.T) {
		body := marchallObj(t, user.ResetUserPassword{
			UID:             "lol",
			Token:           "lol-lol-lol",
			Password:        "newP@ssw0rd",
			PasswordConfirm: "newP@ssw0rd",
		})
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error": "invalid token"}`),
		}, rec)
	})
}
