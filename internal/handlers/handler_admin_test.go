package handlers_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/stretchr/testify/mock"
)

// adminRequest sends a raw body to an administrative route with the given service key.
func (suite *HandlerTestSuite) adminRequest(path, serviceKey, body string) *httptest.ResponseRecorder {
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if serviceKey != "" {
		req.Header.Set("X-Service-Key", serviceKey)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) TestAdmin_RejectsMissingOrWrongKey() {
	for _, key := range []string{"", "not-the-key"} {
		w := suite.adminRequest("/api/admin/delete-user", key, `{"authUserId":"auth-1"}`)
		suite.Equal(http.StatusUnauthorized, w.Code, "key %q", key)
	}
	suite.mockIdentity.AssertNotCalled(suite.T(), "DeleteIdentity", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestAdmin_UserTokenIsNotEnough() {
	req, err := http.NewRequest(http.MethodPost, "/api/proposals/recalculate", nil)
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(testUserID))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestAdminDeleteUser_MissingField() {
	w := suite.adminRequest("/api/admin/delete-user", testServiceKey, `{"authUserId":""}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.errorMessage(w), "authUserId")
}

func (suite *HandlerTestSuite) TestAdminDeleteUser_NotJSON() {
	w := suite.adminRequest("/api/admin/delete-user", testServiceKey, `authUserId=auth-1`)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestAdminDeleteUser_Success() {
	suite.mockIdentity.On("DeleteIdentity", mock.Anything, "auth-1").Return(nil).Once()

	w := suite.adminRequest("/api/admin/delete-user", testServiceKey, `{"authUserId":"auth-1"}`)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"success":true}`, w.Body.String())
}

func (suite *HandlerTestSuite) TestAdminMarkInviteCodeUsed_UnknownEmail() {
	suite.mockInviteCode.On("MarkUsedByEmail", mock.Anything, "code-1", "nobody@example.com").
		Return(fmt.Errorf("%w: no member with that email", apperrors.ErrNotFound)).Once()

	w := suite.adminRequest("/api/invite-code/mark-used", testServiceKey, `{"inviteCodeId":"code-1","email":"nobody@example.com"}`)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestAdminMarkInviteCodeUsed_RequiresBothFields() {
	w := suite.adminRequest("/api/invite-code/mark-used", testServiceKey, `{"inviteCodeId":"code-1"}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.errorMessage(w), "email")
}

func (suite *HandlerTestSuite) TestAdminRecalculate_EmptyBody() {
	suite.mockProposal.On("RecalculateProposals", mock.Anything).Return(nil).Once()

	w := suite.adminRequest("/api/proposals/recalculate", testServiceKey, "")

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"success":true}`, w.Body.String())
}
