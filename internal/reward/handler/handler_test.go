package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"coinguard/internal/reward/models"
	"coinguard/internal/reward/store/flags"
	"coinguard/internal/reward/store/rules"
	id "coinguard/pkg/domain"
	"coinguard/pkg/requestcontext"
	"coinguard/pkg/testutil"
)

// stubValidator returns a canned result or error.
type stubValidator struct {
	result *models.ValidationResult
	err    error

	gotUserID id.UserID
	gotAction id.Action
	gotMeta   models.ClientMetadata
}

func (s *stubValidator) Validate(_ context.Context, userID id.UserID, action id.Action, meta models.ClientMetadata) (*models.ValidationResult, error) {
	s.gotUserID = userID
	s.gotAction = action
	s.gotMeta = meta
	return s.result, s.err
}

type HandlerSuite struct {
	suite.Suite
	validator *stubValidator
	rules     *rules.MemoryStore
	flags     *flags.MemoryStore
	router    chi.Router
	userID    id.UserID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.validator = &stubValidator{}
	s.rules = rules.NewMemoryStore()
	s.flags = flags.NewMemoryStore()
	s.userID = testutil.TestIDs.UserID1

	h := New(s.validator, s.rules, s.flags, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	h.RegisterInternal(s.router)
}

func (s *HandlerSuite) postValidate(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rewards/validate", strings.NewReader(body))
	ctx := requestcontext.WithUserID(req.Context(), s.userID)
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.1", "test-agent")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req.WithContext(ctx))
	return w
}

func (s *HandlerSuite) TestValidateAccepted() {
	s.validator.result = &models.ValidationResult{
		Accepted:       true,
		AmountCredited: 5,
	}

	w := s.postValidate(`{"action":"daily_login","metadata":{"screen":"home"}}`)

	s.Equal(http.StatusOK, w.Code)
	var resp validateResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.Accepted)
	s.Equal(5, resp.AmountCredited)

	s.Equal(s.userID, s.validator.gotUserID)
	s.Equal("daily_login", s.validator.gotAction.String())
	s.Equal("203.0.113.1", s.validator.gotMeta.IPAddress)
	s.Equal("test-agent", s.validator.gotMeta.UserAgent)
	s.Equal("home", s.validator.gotMeta.Extra["screen"])
}

func (s *HandlerSuite) TestValidateCooldownRejection() {
	s.validator.result = &models.ValidationResult{
		Reason:            models.ReasonCooldownActive,
		RetryAfterSeconds: 17,
	}

	w := s.postValidate(`{"action":"scroll_page"}`)

	s.Equal(http.StatusTooManyRequests, w.Code)
	s.Equal("17", w.Header().Get("Retry-After"))
	s.Contains(w.Body.String(), "cooldown_active")
	s.Contains(w.Body.String(), `"retry_after_seconds":17`)
}

func (s *HandlerSuite) TestValidateDailyCapRejection() {
	s.validator.result = &models.ValidationResult{
		Reason:            models.ReasonDailyLimitReached,
		RetryAfterSeconds: 3600,
	}

	w := s.postValidate(`{"action":"scroll_page"}`)

	s.Equal(http.StatusTooManyRequests, w.Code)
	s.Equal("3600", w.Header().Get("Retry-After"))
	s.Contains(w.Body.String(), "daily_limit_reached")
}

func (s *HandlerSuite) TestValidateSuspiciousRejection() {
	s.validator.result = &models.ValidationResult{
		Reason:     models.ReasonSuspiciousActivity,
		Suspicious: true,
	}

	w := s.postValidate(`{"action":"scroll_page"}`)

	s.Equal(http.StatusForbidden, w.Code)
	s.Contains(w.Body.String(), "suspicious_activity")
	// The response must not leak which heuristic fired.
	s.NotContains(w.Body.String(), "burst")
	s.NotContains(w.Body.String(), "variance")
	s.Empty(w.Header().Get("Retry-After"))
}

func (s *HandlerSuite) TestValidateNotAuthorizedRejection() {
	s.validator.result = &models.ValidationResult{Reason: models.ReasonNotAuthorized}

	w := s.postValidate(`{"action":"unknown_action"}`)

	s.Equal(http.StatusForbidden, w.Code)
	s.Contains(w.Body.String(), "not_authorized")
}

func (s *HandlerSuite) TestValidateInfrastructureError() {
	s.validator.err = errors.New("store unavailable")

	w := s.postValidate(`{"action":"daily_login"}`)

	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *HandlerSuite) TestValidateBadInput() {
	s.Run("malformed JSON", func() {
		w := s.postValidate(`{"action":`)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("missing action", func() {
		w := s.postValidate(`{"metadata":{}}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("invalid action name", func() {
		w := s.postValidate(`{"action":"NOT VALID"}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("oversized action name", func() {
		w := s.postValidate(`{"action":"` + strings.Repeat("a", 200) + `"}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestValidateRequiresAuthentication() {
	// No user ID in context: the auth middleware never ran.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rewards/validate", strings.NewReader(`{"action":"daily_login"}`))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusInternalServerError, w.Code)
}

func (s *HandlerSuite) TestListRules() {
	rule := testutil.NewRuleBuilder().WithAction("daily_login").OncePerDay().Build()
	s.Require().NoError(s.rules.Put(context.Background(), rule))

	req := httptest.NewRequest(http.MethodGet, "/internal/v1/rules", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "daily_login")
}

func (s *HandlerSuite) TestListFlags() {
	flag := &models.SuspicionFlag{
		UserID:    s.userID,
		Action:    id.Action("scroll_page"),
		FlagType:  models.FlagRapidFire,
		Evidence:  map[string]any{"count": 11, "window_seconds": 60},
		CreatedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.flags.Append(context.Background(), flag))

	req := httptest.NewRequest(http.MethodGet, "/internal/v1/flags/"+s.userID.String(), nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "rapid_fire_actions")
}

func (s *HandlerSuite) TestListFlagsInvalidUserID() {
	req := httptest.NewRequest(http.MethodGet, "/internal/v1/flags/not-a-uuid", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}
