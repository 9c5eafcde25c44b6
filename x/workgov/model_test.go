package workgov

import (
	"testing"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest"
)

func TestProposalValidate(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()

	valid := Proposal{
		Metadata:         &weave.Metadata{Schema: 1},
		WorkID:           weavetest.SequenceID(1),
		Proposer:         alice,
		Type:             Proposal_RoyaltyUpdate,
		Target:           bob,
		NewPercentageBps: 4000,
		Description:      "rebalance the split after the remix",
		EligibleVoters:   3,
		SubmissionTime:   1500000000,
		VotingEndTime:    1500864000,
		Status:           Proposal_Active,
	}

	cases := map[string]struct {
		mod     func(p *Proposal)
		wantErr *errors.Error
	}{
		"valid proposal": {
			mod: func(p *Proposal) {},
		},
		"missing metadata": {
			mod:     func(p *Proposal) { p.Metadata = nil },
			wantErr: errors.ErrMetadata,
		},
		"missing work id": {
			mod:     func(p *Proposal) { p.WorkID = nil },
			wantErr: errors.ErrEmpty,
		},
		"unknown type": {
			mod:     func(p *Proposal) { p.Type = Proposal_Invalid },
			wantErr: ErrProposal,
		},
		"royalty update percentage of zero": {
			mod:     func(p *Proposal) { p.NewPercentageBps = 0 },
			wantErr: ErrProposal,
		},
		"royalty update percentage above the whole": {
			mod:     func(p *Proposal) { p.NewPercentageBps = 10001 },
			wantErr: ErrProposal,
		},
		"description too short": {
			mod:     func(p *Proposal) { p.Description = "ok" },
			wantErr: ErrProposal,
		},
		"no eligible voters": {
			mod:     func(p *Proposal) { p.EligibleVoters = 0 },
			wantErr: errors.ErrModel,
		},
		"more votes than voters": {
			mod: func(p *Proposal) {
				p.VotesFor = 2
				p.VotesAgainst = 2
			},
			wantErr: errors.ErrModel,
		},
		"voting ends before submission": {
			mod:     func(p *Proposal) { p.VotingEndTime = p.SubmissionTime - 1 },
			wantErr: errors.ErrModel,
		},
		"invalid status": {
			mod:     func(p *Proposal) { p.Status = Proposal_InvalidStatus },
			wantErr: errors.ErrState,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			p := *valid.Copy().(*Proposal)
			tc.mod(&p)
			if err := p.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %q", tc.wantErr, err)
			}
		})
	}
}

func TestProposalPassed(t *testing.T) {
	cases := map[string]struct {
		votesFor uint32
		eligible uint32
		want     bool
	}{
		"one of one":     {votesFor: 1, eligible: 1, want: true},
		"one of two":     {votesFor: 1, eligible: 2, want: false},
		"two of two":     {votesFor: 2, eligible: 2, want: true},
		"one of three":   {votesFor: 1, eligible: 3, want: false},
		"two of three":   {votesFor: 2, eligible: 3, want: true},
		"five of ten":    {votesFor: 5, eligible: 10, want: false},
		"six of ten":     {votesFor: 6, eligible: 10, want: true},
		"none of three":  {votesFor: 0, eligible: 3, want: false},
		"three of three": {votesFor: 3, eligible: 3, want: true},
		"four of seven":  {votesFor: 4, eligible: 7, want: true},
		"three of seven": {votesFor: 3, eligible: 7, want: false},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			p := Proposal{VotesFor: tc.votesFor, EligibleVoters: tc.eligible}
			if got := p.Passed(); got != tc.want {
				t.Fatalf("%d approvals of %d eligible: want %v, got %v",
					tc.votesFor, tc.eligible, tc.want, got)
			}
		})
	}
}

func TestVoteValidate(t *testing.T) {
	alice := weavetest.NewCondition().Address()

	cases := map[string]struct {
		model   Vote
		wantErr *errors.Error
	}{
		"valid vote": {
			model: Vote{
				Metadata: &weave.Metadata{Schema: 1},
				Voter:    alice,
				Approved: true,
				VotedAt:  1500000000,
			},
		},
		"missing metadata": {
			model: Vote{
				Voter:   alice,
				VotedAt: 1500000000,
			},
			wantErr: errors.ErrMetadata,
		},
		"missing voter": {
			model: Vote{
				Metadata: &weave.Metadata{Schema: 1},
				VotedAt:  1500000000,
			},
			wantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.model.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %q", tc.wantErr, err)
			}
		})
	}
}
