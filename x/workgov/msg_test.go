package workgov

import (
	"strings"
	"testing"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest"
)

func TestCreateProposalMsgValidate(t *testing.T) {
	bob := weavetest.NewCondition().Address()

	cases := map[string]struct {
		msg     CreateProposalMsg
		wantErr *errors.Error
	}{
		"valid royalty update": {
			msg: CreateProposalMsg{
				Metadata:         &weave.Metadata{Schema: 1},
				WorkID:           weavetest.SequenceID(1),
				Type:             Proposal_RoyaltyUpdate,
				Target:           bob,
				NewPercentageBps: 4000,
				Description:      "bob mixed the last three tracks",
			},
		},
		"valid add collaborator": {
			msg: CreateProposalMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				WorkID:      weavetest.SequenceID(1),
				Type:        Proposal_AddCollaborator,
				Target:      bob,
				Description: "bob joins for the second season",
			},
		},
		"missing metadata": {
			msg: CreateProposalMsg{
				WorkID:           weavetest.SequenceID(1),
				Type:             Proposal_RoyaltyUpdate,
				Target:           bob,
				NewPercentageBps: 4000,
				Description:      "bob mixed the last three tracks",
			},
			wantErr: errors.ErrMetadata,
		},
		"missing work id": {
			msg: CreateProposalMsg{
				Metadata:         &weave.Metadata{Schema: 1},
				Type:             Proposal_RoyaltyUpdate,
				Target:           bob,
				NewPercentageBps: 4000,
				Description:      "bob mixed the last three tracks",
			},
			wantErr: errors.ErrEmpty,
		},
		"unknown type": {
			msg: CreateProposalMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				WorkID:      weavetest.SequenceID(1),
				Type:        Proposal_Invalid,
				Target:      bob,
				Description: "bob mixed the last three tracks",
			},
			wantErr: ErrProposal,
		},
		"royalty update without a target": {
			msg: CreateProposalMsg{
				Metadata:         &weave.Metadata{Schema: 1},
				WorkID:           weavetest.SequenceID(1),
				Type:             Proposal_RoyaltyUpdate,
				NewPercentageBps: 4000,
				Description:      "bob mixed the last three tracks",
			},
			wantErr: errors.ErrEmpty,
		},
		"royalty update percentage of zero": {
			msg: CreateProposalMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				WorkID:      weavetest.SequenceID(1),
				Type:        Proposal_RoyaltyUpdate,
				Target:      bob,
				Description: "bob mixed the last three tracks",
			},
			wantErr: ErrProposal,
		},
		"royalty update percentage above the whole": {
			msg: CreateProposalMsg{
				Metadata:         &weave.Metadata{Schema: 1},
				WorkID:           weavetest.SequenceID(1),
				Type:             Proposal_RoyaltyUpdate,
				Target:           bob,
				NewPercentageBps: 10001,
				Description:      "bob mixed the last three tracks",
			},
			wantErr: ErrProposal,
		},
		"description too short": {
			msg: CreateProposalMsg{
				Metadata:         &weave.Metadata{Schema: 1},
				WorkID:           weavetest.SequenceID(1),
				Type:             Proposal_RoyaltyUpdate,
				Target:           bob,
				NewPercentageBps: 4000,
				Description:      "up",
			},
			wantErr: ErrProposal,
		},
		"description too long": {
			msg: CreateProposalMsg{
				Metadata:         &weave.Metadata{Schema: 1},
				WorkID:           weavetest.SequenceID(1),
				Type:             Proposal_RoyaltyUpdate,
				Target:           bob,
				NewPercentageBps: 4000,
				Description:      strings.Repeat("x", maxDescriptionLen+1),
			},
			wantErr: ErrProposal,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.msg.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %q", tc.wantErr, err)
			}
		})
	}
}

func TestVoteMsgValidate(t *testing.T) {
	cases := map[string]struct {
		msg     VoteMsg
		wantErr *errors.Error
	}{
		"valid approval": {
			msg: VoteMsg{
				Metadata:   &weave.Metadata{Schema: 1},
				ProposalID: weavetest.SequenceID(1),
				Approve:    true,
			},
		},
		"valid rejection": {
			msg: VoteMsg{
				Metadata:   &weave.Metadata{Schema: 1},
				ProposalID: weavetest.SequenceID(1),
			},
		},
		"missing metadata": {
			msg: VoteMsg{
				ProposalID: weavetest.SequenceID(1),
			},
			wantErr: errors.ErrMetadata,
		},
		"missing proposal id": {
			msg: VoteMsg{
				Metadata: &weave.Metadata{Schema: 1},
			},
			wantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.msg.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %q", tc.wantErr, err)
			}
		})
	}
}

func TestExecuteProposalMsgValidate(t *testing.T) {
	cases := map[string]struct {
		msg     ExecuteProposalMsg
		wantErr *errors.Error
	}{
		"valid message": {
			msg: ExecuteProposalMsg{
				Metadata:   &weave.Metadata{Schema: 1},
				ProposalID: weavetest.SequenceID(1),
			},
		},
		"missing proposal id": {
			msg: ExecuteProposalMsg{
				Metadata: &weave.Metadata{Schema: 1},
			},
			wantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.msg.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %q", tc.wantErr, err)
			}
		})
	}
}
