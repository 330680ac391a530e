package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pupped/storefront/internal/auth"
	"github.com/pupped/storefront/internal/handlers"
	"github.com/pupped/storefront/internal/services"
	pkglogger "github.com/pupped/storefront/pkg/logger"
)

const sessionSecret = "0123456789abcdef0123456789abcdef"

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()

	sm, err := auth.NewSessionManager(auth.SessionConfig{
		Secret:     sessionSecret,
		CookieName: "pupped-admin-session",
		MaxAge:     24 * time.Hour,
	}, discardLogger())
	require.NoError(t, err)
	return sm
}

func loginRequest(t *testing.T, password, ip string) *http.Request {
	req := newJSONRequest(t, http.MethodPost, "/api/auth/login", handlers.LoginRequest{Password: password})
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	return req
}

func TestLogin_Success(t *testing.T) {
	mockAuth := &MockAuthService{
		VerifyPasswordFunc: func(ctx context.Context, ip, password string) (bool, error) {
			return password == "hunter2", nil
		},
	}
	handler := handlers.NewAuthHandler(mockAuth, newSessionManager(t), discardLogger())

	w := httptest.NewRecorder()
	handler.Login(w, loginRequest(t, "hunter2", "203.0.113.7"))

	var resp handlers.SuccessResponse
	assertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "pupped-admin-session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin_WrongPassword(t *testing.T) {
	mockAuth := &MockAuthService{
		CheckRateLimitFunc: func(ctx context.Context, ip string) (services.RateLimitResult, error) {
			return services.RateLimitResult{Allowed: true, RemainingAttempts: 3}, nil
		},
	}
	handler := handlers.NewAuthHandler(mockAuth, newSessionManager(t), discardLogger())

	w := httptest.NewRecorder()
	handler.Login(w, loginRequest(t, "nope", ""))

	resp := assertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
	assert.Equal(t, "Invalid password", resp.Message)
	require.NotNil(t, resp.RemainingAttempts)
	assert.Equal(t, 2, *resp.RemainingAttempts)
	assert.Empty(t, w.Result().Cookies())
}

func TestLogin_RateLimitedBeforeBodyIsRead(t *testing.T) {
	mockAuth := &MockAuthService{
		CheckRateLimitFunc: func(ctx context.Context, ip string) (services.RateLimitResult, error) {
			return services.RateLimitResult{Allowed: false}, nil
		},
	}
	handler := handlers.NewAuthHandler(mockAuth, newSessionManager(t), discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	resp := assertErrorResponse(t, w, http.StatusTooManyRequests, "rate_limit_exceeded")
	assert.Equal(t, "Too many login attempts. Please try again later.", resp.Message)
	assert.Zero(t, mockAuth.VerifyCalls)
}

func TestLogin_InvalidBody(t *testing.T) {
	mockAuth := &MockAuthService{}
	handler := handlers.NewAuthHandler(mockAuth, newSessionManager(t), discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	resp := assertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
	assert.Equal(t, "Invalid request", resp.Message)
	assert.Zero(t, mockAuth.VerifyCalls)
}

func TestLogin_EmptyPassword(t *testing.T) {
	mockAuth := &MockAuthService{}
	handler := handlers.NewAuthHandler(mockAuth, newSessionManager(t), discardLogger())

	w := httptest.NewRecorder()
	handler.Login(w, loginRequest(t, "", ""))

	resp := assertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
	assert.Equal(t, "Password is required", resp.Message)
	assert.Zero(t, mockAuth.VerifyCalls)
}

func TestLogin_NonStringPasswordIsWrongPassword(t *testing.T) {
	for _, body := range []string{`{"password":123}`, `{"password":true}`, `{"password":["hunter2"]}`, `{"password":{"a":1}}`} {
		t.Run(body, func(t *testing.T) {
			mockAuth := &MockAuthService{
				CheckRateLimitFunc: func(ctx context.Context, ip string) (services.RateLimitResult, error) {
					return services.RateLimitResult{Allowed: true, RemainingAttempts: 5}, nil
				},
			}
			handler := handlers.NewAuthHandler(mockAuth, newSessionManager(t), discardLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
			w := httptest.NewRecorder()
			handler.Login(w, req)

			resp := assertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
			assert.Equal(t, "Invalid password", resp.Message)
			require.NotNil(t, resp.RemainingAttempts)
			assert.Equal(t, 4, *resp.RemainingAttempts)
			assert.Equal(t, 1, mockAuth.RejectCalls)
			assert.Zero(t, mockAuth.VerifyCalls)
			assert.Empty(t, w.Result().Cookies())
		})
	}
}

func TestLogin_UnsuppliedPasswordValues(t *testing.T) {
	for _, body := range []string{`{}`, `{"password":null}`, `{"password":false}`, `{"password":0}`, `{"password":""}`} {
		t.Run(body, func(t *testing.T) {
			mockAuth := &MockAuthService{}
			handler := handlers.NewAuthHandler(mockAuth, newSessionManager(t), discardLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
			w := httptest.NewRecorder()
			handler.Login(w, req)

			resp := assertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
			assert.Equal(t, "Password is required", resp.Message)
			assert.Zero(t, mockAuth.VerifyCalls)
			assert.Zero(t, mockAuth.RejectCalls)
		})
	}
}

func TestLogin_RejectPasswordStorageFailure(t *testing.T) {
	mockAuth := &MockAuthService{
		RejectPasswordFunc: func(ctx context.Context, ip string) error {
			return errors.New("db down")
		},
	}
	handler := handlers.NewAuthHandler(mockAuth, newSessionManager(t), discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":42}`))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	assertErrorResponse(t, w, http.StatusInternalServerError, "internal_error")
}

func TestLogin_StorageFailures(t *testing.T) {
	t.Run("rate limit lookup", func(t *testing.T) {
		mockAuth := &MockAuthService{
			CheckRateLimitFunc: func(ctx context.Context, ip string) (services.RateLimitResult, error) {
				return services.RateLimitResult{}, errors.New("db down")
			},
		}
		handler := handlers.NewAuthHandler(mockAuth, newSessionManager(t), discardLogger())

		w := httptest.NewRecorder()
		handler.Login(w, loginRequest(t, "hunter2", ""))

		assertErrorResponse(t, w, http.StatusInternalServerError, "internal_error")
		assert.Zero(t, mockAuth.VerifyCalls)
	})

	t.Run("attempt recording", func(t *testing.T) {
		mockAuth := &MockAuthService{
			VerifyPasswordFunc: func(ctx context.Context, ip, password string) (bool, error) {
				return false, errors.New("db down")
			},
		}
		handler := handlers.NewAuthHandler(mockAuth, newSessionManager(t), discardLogger())

		w := httptest.NewRecorder()
		handler.Login(w, loginRequest(t, "hunter2", ""))

		assertErrorResponse(t, w, http.StatusInternalServerError, "internal_error")
		assert.Empty(t, w.Result().Cookies())
	})
}

func TestLogin_UsesForwardedClientIP(t *testing.T) {
	var seen []string
	mockAuth := &MockAuthService{
		CheckRateLimitFunc: func(ctx context.Context, ip string) (services.RateLimitResult, error) {
			seen = append(seen, ip)
			return services.RateLimitResult{Allowed: true, RemainingAttempts: 5}, nil
		},
		VerifyPasswordFunc: func(ctx context.Context, ip, password string) (bool, error) {
			seen = append(seen, ip)
			return false, nil
		},
	}
	handler := handlers.NewAuthHandler(mockAuth, newSessionManager(t), discardLogger())

	w := httptest.NewRecorder()
	handler.Login(w, loginRequest(t, "x", " 198.51.100.4 , 10.0.0.1"))

	assert.Equal(t, []string{"198.51.100.4", "198.51.100.4"}, seen)
}

func TestLogout(t *testing.T) {
	mockAuth := &MockAuthService{}
	handler := handlers.NewAuthHandler(mockAuth, newSessionManager(t), discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("X-Real-IP", "192.0.2.1")
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	var resp handlers.SuccessResponse
	assertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Equal(t, []string{"192.0.2.1"}, mockAuth.LogoutIPs)
}

// Five wrong passwords count the remaining attempts down to zero; the sixth
// request is refused before the password is compared, even a correct one.
func TestLogin_LockoutScenario(t *testing.T) {
	attempts := &memoryAttempts{}
	limiter := services.NewRateLimitService(attempts, services.RateLimitConfig{
		MaxFailedAttempts: 5,
		LookbackWindow:    15 * time.Minute,
	}, discardLogger())
	authService := services.NewAuthService("hunter2", limiter,
		auth.NewTimingDelay(auth.TimingConfig{}), discardLogger(), pkglogger.NewAuditLogger(discardLogger()))
	handler := handlers.NewAuthHandler(authService, newSessionManager(t), discardLogger())

	const ip = "203.0.113.50"
	for want := 4; want >= 0; want-- {
		w := httptest.NewRecorder()
		handler.Login(w, loginRequest(t, "wrong", ip))

		resp := assertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
		require.NotNil(t, resp.RemainingAttempts)
		assert.Equal(t, want, *resp.RemainingAttempts)
	}
	assert.Equal(t, 5, attempts.count())

	w := httptest.NewRecorder()
	handler.Login(w, loginRequest(t, "hunter2", ip))
	assertErrorResponse(t, w, http.StatusTooManyRequests, "rate_limit_exceeded")
	assert.Equal(t, 5, attempts.count(), "blocked requests are not recorded")

	// another client is unaffected
	w = httptest.NewRecorder()
	handler.Login(w, loginRequest(t, "hunter2", "198.51.100.9"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 6, attempts.count())
}

func TestLogin_FailuresAroundSuccessfulLoginStillCount(t *testing.T) {
	attempts := &memoryAttempts{}
	limiter := services.NewRateLimitService(attempts, services.RateLimitConfig{
		MaxFailedAttempts: 5,
		LookbackWindow:    15 * time.Minute,
	}, discardLogger())
	authService := services.NewAuthService("hunter2", limiter,
		auth.NewTimingDelay(auth.TimingConfig{}), discardLogger(), pkglogger.NewAuditLogger(discardLogger()))
	handler := handlers.NewAuthHandler(authService, newSessionManager(t), discardLogger())

	const ip = "203.0.113.77"
	wrong := func(wantRemaining int) {
		t.Helper()
		w := httptest.NewRecorder()
		handler.Login(w, loginRequest(t, "wrong", ip))

		resp := assertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
		require.NotNil(t, resp.RemainingAttempts)
		assert.Equal(t, wantRemaining, *resp.RemainingAttempts)
	}

	wrong(4)
	wrong(3)

	w := httptest.NewRecorder()
	handler.Login(w, loginRequest(t, "hunter2", ip))
	require.Equal(t, http.StatusOK, w.Code)

	wrong(2)
	wrong(1)
	wrong(0)

	w = httptest.NewRecorder()
	handler.Login(w, loginRequest(t, "hunter2", ip))
	assertErrorResponse(t, w, http.StatusTooManyRequests, "rate_limit_exceeded")
	assert.Equal(t, 6, attempts.count())
}
