package httpkit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"circletel_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type jwtConfig string

func (s jwtConfig) GetJWTAccessSecret() string { return string(s) }

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func newAuthEngine(secret string) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(jwtConfig(secret)), RequireRole("sales"), func(c *gin.Context) {
		id := MustGetIdentity(c)
		OK(c, gin.H{"userId": id.UserID().String()})
	})
	return r
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, "s3cret", jwt.MapClaims{
		"sub":   userID.String(),
		"type":  "access",
		"roles": []string{"sales"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newAuthEngine("s3cret").ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["userId"] != userID.String() {
		t.Fatalf("expected user id %s, got %s", userID, body["userId"])
	}
}

func TestAuthRequiredRejectsWrongSecretAndMissingRole(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  uuid.NewString(),
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other", claims))
	newAuthEngine("s3cret").ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "s3cret", claims))
	newAuthEngine("s3cret").ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without role, got %d", w.Code)
	}
}

func TestHandleErrorWritesCode(t *testing.T) {
	r := gin.New()
	r.GET("/typed", func(c *gin.Context) {
		HandleError(c, apperr.Conflict("quote cannot be edited").WithCode(apperr.CodeQuoteNotEditable))
	})
	r.GET("/untyped", func(c *gin.Context) {
		HandleError(c, errors.New("boom"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/typed", nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var body ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Code != apperr.CodeQuoteNotEditable {
		t.Fatalf("expected code %s, got %s", apperr.CodeQuoteNotEditable, body.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/untyped", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body = ErrorResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Code != apperr.CodeUnknown || body.Error != "boom" {
		t.Fatalf("expected UNKNOWN_ERROR with original message, got %s %q", body.Code, body.Error)
	}
}

func TestHandleErrorFillsMissingCode(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to render quote pdf", errors.New("font missing")))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	var body ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if w.Code != http.StatusInternalServerError || body.Code != apperr.CodeUnknown {
		t.Fatalf("expected 500 UNKNOWN_ERROR, got %d %s", w.Code, body.Code)
	}
	if body.Error != "failed to render quote pdf" {
		t.Fatalf("expected message to be kept, got %q", body.Error)
	}
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0.001), 1, nil)
	r := gin.New()
	r.Use(limiter.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	if first.Code != http.StatusNoContent || second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 204 then 429, got %d then %d", first.Code, second.Code)
	}
}

func TestRequestIDEchoesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	r.ServeHTTP(w, req)

	if got := w.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}
