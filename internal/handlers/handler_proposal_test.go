package handlers_test

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/stretchr/testify/mock"
)

func sampleProposal(status domain.ProposalStatus, expiresAt time.Time) *domain.DeletionProposal {
	return &domain.DeletionProposal{
		ProposalID:        "prop-1",
		FiscalYearID:      "fy-2024",
		FiscalYearName:    "2024年度",
		ProposedBy:        testUserID,
		ProposedAt:        expiresAt.Add(-48 * time.Hour),
		Status:            status,
		ExpiresAt:         expiresAt,
		TotalMembers:      4,
		RequiredApprovals: 2,
	}
}

func (suite *HandlerTestSuite) TestCreateProposal_Success() {
	p := sampleProposal(domain.ProposalPending, time.Now().Add(48*time.Hour))
	suite.mockProposal.On("ProposeDeletion", mock.Anything, "fy-2024", testUserID).Return(p, nil).Once()

	w := suite.request(http.MethodPost, "/api/v1/proposals", dto.CreateProposalRequest{FiscalYearID: "fy-2024"})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.ProposalResponse
	suite.decode(w, &resp)
	suite.Equal("prop-1", resp.ProposalID)
	suite.Equal(domain.ProposalPending, resp.Status)
	suite.Equal(2, resp.RequiredApprovals)
}

func (suite *HandlerTestSuite) TestCreateProposal_ActiveExists() {
	suite.mockProposal.On("ProposeDeletion", mock.Anything, "fy-2024", testUserID).
		Return(nil, fmt.Errorf("%w: fiscal year already has an active deletion proposal", apperrors.ErrConflict)).Once()

	w := suite.request(http.MethodPost, "/api/v1/proposals", dto.CreateProposalRequest{FiscalYearID: "fy-2024"})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestCastVote_ReturnsTally() {
	p := sampleProposal(domain.ProposalApproved, time.Now().Add(time.Hour))
	p.ApproveCount = 2
	suite.mockProposal.On("CastVote", mock.Anything, "prop-1", domain.VoteApprove, testUserID).Return(p, nil).Once()

	w := suite.request(http.MethodPost, "/api/v1/proposals/prop-1/votes", map[string]string{"vote": "approve"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ProposalResponse
	suite.decode(w, &resp)
	suite.Equal(domain.ProposalApproved, resp.Status)
	suite.Equal(2, resp.ApproveCount)
}

func (suite *HandlerTestSuite) TestCastVote_InvalidChoice() {
	w := suite.request(http.MethodPost, "/api/v1/proposals/prop-1/votes", map[string]string{"vote": "abstain"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockProposal.AssertNotCalled(suite.T(), "CastVote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestGetProposal_ShowsExpiryAndMyVote() {
	mine := domain.VoteReject
	detail := &domain.ProposalDetail{
		Proposal: *sampleProposal(domain.ProposalPending, time.Now().Add(-time.Minute)),
		Votes:    []domain.DeletionVote{{VoteID: "v1", ProposalID: "prop-1", UserID: testUserID, Vote: domain.VoteReject}},
		MyVote:   &mine,
	}
	suite.mockProposal.On("GetProposal", mock.Anything, "prop-1", testUserID).Return(detail, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/proposals/prop-1", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ProposalDetailResponse
	suite.decode(w, &resp)
	suite.Equal(domain.ProposalExpired, resp.Proposal.Status, "a lapsed pending proposal reads as expired")
	suite.Require().NotNil(resp.MyVote)
	suite.Equal(domain.VoteReject, *resp.MyVote)
	suite.Len(resp.Votes, 1)
}

func (suite *HandlerTestSuite) TestListProposals_FiltersByFiscalYear() {
	suite.mockProposal.On("ListProposals", mock.Anything, mock.MatchedBy(func(id *string) bool {
		return id != nil && *id == "fy-2024"
	})).Return([]domain.DeletionProposal{*sampleProposal(domain.ProposalPending, time.Now().Add(time.Hour))}, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/proposals?fiscalYearID=fy-2024", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.ProposalResponse
	suite.decode(w, &resp)
	suite.Len(resp, 1)
}

func (suite *HandlerTestSuite) TestCancelApproval_NotApproved() {
	suite.mockProposal.On("CancelApproval", mock.Anything, "prop-1", testUserID).
		Return(nil, fmt.Errorf("%w: only approved proposals can be cancelled", apperrors.ErrConflict)).Once()

	w := suite.request(http.MethodPost, "/api/v1/proposals/prop-1/cancel", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestExecuteProposal_Success() {
	executedAt := time.Now()
	p := sampleProposal(domain.ProposalExecuted, time.Now().Add(time.Hour))
	p.ExecutedAt = &executedAt
	result := &domain.DeletionResult{FiscalYearID: "fy-2024", FiscalYearName: "2024年度", TransactionCount: 12, WasCurrent: true, NewCurrentYearID: strPtr("fy-2023")}
	suite.mockProposal.On("ExecuteProposal", mock.Anything, "prop-1", testUserID).Return(p, result, nil).Once()

	w := suite.request(http.MethodPost, "/api/v1/proposals/prop-1/execute", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ExecuteProposalResponse
	suite.decode(w, &resp)
	suite.Equal(domain.ProposalExecuted, resp.Proposal.Status)
	suite.Equal(int64(12), resp.Deletion.TransactionCount)
	suite.Require().NotNil(resp.Deletion.NewCurrentYearID)
	suite.Equal("fy-2023", *resp.Deletion.NewCurrentYearID)
	suite.Empty(resp.Warning)
}

func (suite *HandlerTestSuite) TestExecuteProposal_PartialFailureWarns() {
	p := sampleProposal(domain.ProposalExecuted, time.Now().Add(time.Hour))
	result := &domain.DeletionResult{FiscalYearID: "fy-2024", TransactionCount: 3}
	suite.mockProposal.On("ExecuteProposal", mock.Anything, "prop-1", testUserID).
		Return(p, result, fmt.Errorf("%w: removing receipts: disk full", apperrors.ErrPartialFailure)).Once()

	w := suite.request(http.MethodPost, "/api/v1/proposals/prop-1/execute", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ExecuteProposalResponse
	suite.decode(w, &resp)
	suite.NotEmpty(resp.Warning)
	suite.Equal(int64(3), resp.Deletion.TransactionCount)
}

func (suite *HandlerTestSuite) TestExecuteProposal_NotApproved() {
	suite.mockProposal.On("ExecuteProposal", mock.Anything, "prop-1", testUserID).
		Return(nil, nil, fmt.Errorf("%w: proposal is pending", apperrors.ErrConflict)).Once()

	w := suite.request(http.MethodPost, "/api/v1/proposals/prop-1/execute", nil)

	suite.Equal(http.StatusConflict, w.Code)
}
