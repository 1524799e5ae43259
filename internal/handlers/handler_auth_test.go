package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

func sampleUser() *domain.User {
	return &domain.User{
		UserID:      testUserID,
		AuthUserID:  "auth-hanako",
		Email:       "hanako@example.com",
		DisplayName: "花子",
	}
}

// postWithCookie sends an unauthenticated JSON POST carrying the given cookie.
func (suite *HandlerTestSuite) postWithCookie(path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	suite.Require().NoError(err)
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) TestSignUp_ReturnsToken() {
	req := dto.SignUpRequest{InviteCode: "AB12CD", Email: "hanako@example.com", Password: "correct horse", Name: "花子"}
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)
	suite.mockIdentity.On("SignUp", mock.Anything, req).Return(sampleUser(), nil).Once()
	suite.mockToken.On("GenerateAccessToken", mock.Anything, sampleUser()).Return("jwt-token", expiresAt, nil).Once()

	w := suite.requestAs("", http.MethodPost, "/api/v1/auth/signup", req)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.LoginResponse
	suite.decode(w, &resp)
	suite.Equal("jwt-token", resp.Token)
	suite.Equal(expiresAt.Unix(), resp.ExpiresAt)
	suite.Equal(testUserID, resp.User.UserID)
}

func (suite *HandlerTestSuite) TestSignUp_InvalidInviteCode() {
	req := dto.SignUpRequest{InviteCode: "AB12CD", Email: "hanako@example.com", Password: "correct horse", Name: "花子"}
	suite.mockIdentity.On("SignUp", mock.Anything, req).
		Return(nil, fmt.Errorf("%w: invite code is invalid or expired", apperrors.ErrValidation)).Once()

	w := suite.requestAs("", http.MethodPost, "/api/v1/auth/signup", req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockToken.AssertNotCalled(suite.T(), "GenerateAccessToken", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestSignUp_ShortPasswordRejected() {
	w := suite.requestAs("", http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"inviteCode": "AB12CD", "email": "hanako@example.com", "password": "short", "name": "花子",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestLogin_WrongPassword() {
	suite.mockIdentity.On("SignIn", mock.Anything, "hanako@example.com", "wrong").
		Return(nil, fmt.Errorf("%w: bad credentials", apperrors.ErrUnauthorized)).Once()

	w := suite.requestAs("", http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "hanako@example.com", Password: "wrong"})

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("Invalid email or password", suite.errorMessage(w))
}

func (suite *HandlerTestSuite) TestLogin_RateLimited() {
	// The suite limits login to 3 requests a minute per client IP.
	for i := 0; i < 3; i++ {
		w := suite.requestAs("", http.MethodPost, "/api/v1/auth/login", "{}")
		suite.Equal(http.StatusBadRequest, w.Code)
	}

	w := suite.requestAs("", http.MethodPost, "/api/v1/auth/login", "{}")
	suite.Equal(http.StatusTooManyRequests, w.Code)
}

func (suite *HandlerTestSuite) TestGoogleLogin_SetsStateCookie() {
	suite.mockGoogle.On("GenerateStateString", mock.Anything).Return("state-123", nil).Once()
	suite.mockGoogle.On("GetGoogleLoginURL", mock.Anything, "state-123").Return("https://accounts.google.com/o/oauth2/auth?state=state-123").Once()

	w := suite.requestAs("", http.MethodGet, "/api/v1/auth/google/login", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.GoogleLoginResponse
	suite.decode(w, &resp)
	suite.Contains(resp.URL, "state-123")

	var stateCookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "oauth_state" {
			stateCookie = ck
		}
	}
	suite.Require().NotNil(stateCookie)
	suite.Equal("state-123", stateCookie.Value)
	suite.True(stateCookie.HttpOnly)
}

func (suite *HandlerTestSuite) TestGoogleExchange_StateMismatch() {
	body := dto.GoogleExchangeRequest{Code: "auth-code", State: "forged"}

	w := suite.postWithCookie("/api/v1/auth/google/exchange", body, &http.Cookie{Name: "oauth_state", Value: "state-123"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockGoogle.AssertNotCalled(suite.T(), "ExchangeCodeForToken", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestGoogleExchange_SignsInVerifiedMember() {
	token := (&oauth2.Token{AccessToken: "google-access"}).WithExtra(map[string]any{"id_token": "google-id-token"})
	payload := &idtoken.Payload{Subject: "google-sub", Claims: map[string]any{"email": "hanako@example.com", "email_verified": true}}
	expiresAt := time.Now().Add(time.Hour)

	suite.mockGoogle.On("ExchangeCodeForToken", mock.Anything, "auth-code").Return(token, nil).Once()
	suite.mockGoogle.On("ValidateGoogleIDToken", mock.Anything, "google-id-token").Return(payload, nil).Once()
	suite.mockIdentity.On("SignInWithEmail", mock.Anything, "hanako@example.com").Return(sampleUser(), nil).Once()
	suite.mockToken.On("GenerateAccessToken", mock.Anything, sampleUser()).Return("jwt-token", expiresAt, nil).Once()

	w := suite.postWithCookie("/api/v1/auth/google/exchange",
		dto.GoogleExchangeRequest{Code: "auth-code", State: "state-123"},
		&http.Cookie{Name: "oauth_state", Value: "state-123"})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	suite.decode(w, &resp)
	suite.Equal("jwt-token", resp.Token)
}

func (suite *HandlerTestSuite) TestGoogleExchange_UnverifiedEmail() {
	token := (&oauth2.Token{AccessToken: "google-access"}).WithExtra(map[string]any{"id_token": "google-id-token"})
	payload := &idtoken.Payload{Subject: "google-sub", Claims: map[string]any{"email": "hanako@example.com", "email_verified": false}}
	suite.mockGoogle.On("ExchangeCodeForToken", mock.Anything, "auth-code").Return(token, nil).Once()
	suite.mockGoogle.On("ValidateGoogleIDToken", mock.Anything, "google-id-token").Return(payload, nil).Once()

	w := suite.postWithCookie("/api/v1/auth/google/exchange",
		dto.GoogleExchangeRequest{Code: "auth-code", State: "state-123"},
		&http.Cookie{Name: "oauth_state", Value: "state-123"})

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockIdentity.AssertNotCalled(suite.T(), "SignInWithEmail", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestGoogleExchange_InvalidGrant() {
	suite.mockGoogle.On("ExchangeCodeForToken", mock.Anything, "stale-code").
		Return(nil, fmt.Errorf(`oauth2: "invalid_grant" "Bad Request"`)).Once()

	w := suite.postWithCookie("/api/v1/auth/google/exchange",
		dto.GoogleExchangeRequest{Code: "stale-code", State: "state-123"},
		&http.Cookie{Name: "oauth_state", Value: "state-123"})

	suite.Equal(http.StatusBadRequest, w.Code)
}
