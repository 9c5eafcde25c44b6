package workgov

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/royalty/x/royalty"
	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/x/cash"
)

func TestGovernanceHandlers(t *testing.T) {
	creator := weavetest.NewCondition()
	aliceCond := weavetest.NewCondition()
	bobCond := weavetest.NewCondition()
	carolCond := weavetest.NewCondition()
	eve := weavetest.NewCondition()
	alice := aliceCond.Address()
	bob := bobCond.Address()
	carol := carolCond.Address()

	rt := app.NewRouter()
	auth := &weavetest.CtxAuth{Key: "auth"}
	cashctrl := cash.NewController(cash.NewBucket())
	royalty.RegisterRoutes(rt, auth, cashctrl)
	RegisterRoutes(rt, auth, royalty.NewController())

	// In below cases, weavetest.SequenceID(1) is the ID of the first work
	// and of the first proposal created. Sequences are reset for each test
	// case.
	workID := weavetest.SequenceID(1)
	proposalID := weavetest.SequenceID(1)

	// The voting period is ten days. A proposal submitted in block 101
	// can be voted on until this block, inclusive.
	const lastVotingBlock = 864101

	cases := map[string]struct {
		actions []action
		// wantProposal, when set, is compared to the vote counters and
		// the status of the first proposal after all actions are
		// applied.
		wantProposal *Proposal
	}{
		"proposal creation requires governance to be enabled": {
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &royalty.CreateWorkMsg{
						Metadata:       &weave.Metadata{Schema: 1},
						Title:          "Silent Running",
						Collaborators:  []weave.Address{alice, bob},
						PercentagesBps: []int32{6000, 4000},
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &CreateProposalMsg{
						Metadata:         &weave.Metadata{Schema: 1},
						WorkID:           workID,
						Type:             Proposal_RoyaltyUpdate,
						Target:           bob,
						NewPercentageBps: 5000,
						Description:      "bob deserves an equal cut",
					},
					blocksize:      101,
					wantCheckErr:   errors.ErrState,
					wantDeliverErr: errors.ErrState,
				},
			},
		},
		"proposal creation requires a collaborator signature": {
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &royalty.CreateWorkMsg{
						Metadata:          &weave.Metadata{Schema: 1},
						Title:             "Silent Running",
						Collaborators:     []weave.Address{alice, bob},
						PercentagesBps:    []int32{6000, 4000},
						GovernanceEnabled: true,
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{eve},
					msg: &CreateProposalMsg{
						Metadata:         &weave.Metadata{Schema: 1},
						WorkID:           workID,
						Type:             Proposal_RoyaltyUpdate,
						Target:           bob,
						NewPercentageBps: 5000,
						Description:      "bob deserves an equal cut",
					},
					blocksize:      101,
					wantCheckErr:   errors.ErrUnauthorized,
					wantDeliverErr: errors.ErrUnauthorized,
				},
			},
		},
		"proposal for an unknown work fails": {
			actions: []action{
				{
					conditions: []weave.Condition{aliceCond},
					msg: &CreateProposalMsg{
						Metadata:         &weave.Metadata{Schema: 1},
						WorkID:           []byte("work-with-this-id-does-not-exist"),
						Type:             Proposal_RoyaltyUpdate,
						Target:           bob,
						NewPercentageBps: 5000,
						Description:      "bob deserves an equal cut",
					},
					blocksize:      100,
					wantCheckErr:   errors.ErrNotFound,
					wantDeliverErr: errors.ErrNotFound,
				},
			},
		},
		"votes are counted per side": {
			wantProposal: &Proposal{
				VotesFor:       1,
				VotesAgainst:   1,
				EligibleVoters: 3,
				Status:         Proposal_Active,
			},
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &royalty.CreateWorkMsg{
						Metadata:          &weave.Metadata{Schema: 1},
						Title:             "Silent Running",
						Collaborators:     []weave.Address{alice, bob, carol},
						PercentagesBps:    []int32{4000, 3500, 2500},
						GovernanceEnabled: true,
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &CreateProposalMsg{
						Metadata:         &weave.Metadata{Schema: 1},
						WorkID:           workID,
						Type:             Proposal_RoyaltyUpdate,
						Target:           bob,
						NewPercentageBps: 5000,
						Description:      "bob deserves an equal cut",
					},
					blocksize: 101,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &VoteMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
						Approve:    true,
					},
					blocksize: 102,
				},
				{
					conditions: []weave.Condition{bobCond},
					msg: &VoteMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
					},
					blocksize: 103,
				},
			},
		},
		"a voter can vote only once": {
			wantProposal: &Proposal{
				VotesFor:       1,
				EligibleVoters: 2,
				Status:         Proposal_Active,
			},
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &royalty.CreateWorkMsg{
						Metadata:          &weave.Metadata{Schema: 1},
						Title:             "Silent Running",
						Collaborators:     []weave.Address{alice, bob},
						PercentagesBps:    []int32{6000, 4000},
						GovernanceEnabled: true,
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &CreateProposalMsg{
						Metadata:         &weave.Metadata{Schema: 1},
						WorkID:           workID,
						Type:             Proposal_RoyaltyUpdate,
						Target:           bob,
						NewPercentageBps: 5000,
						Description:      "bob deserves an equal cut",
					},
					blocksize: 101,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &VoteMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
						Approve:    true,
					},
					blocksize: 102,
				},
				// Changing the mind is not possible, the first vote
				// stands.
				{
					conditions: []weave.Condition{aliceCond},
					msg: &VoteMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
					},
					blocksize:      103,
					wantCheckErr:   ErrAlreadyVoted,
					wantDeliverErr: ErrAlreadyVoted,
				},
			},
		},
		"only a collaborator can vote": {
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &royalty.CreateWorkMsg{
						Metadata:          &weave.Metadata{Schema: 1},
						Title:             "Silent Running",
						Collaborators:     []weave.Address{alice, bob},
						PercentagesBps:    []int32{6000, 4000},
						GovernanceEnabled: true,
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &CreateProposalMsg{
						Metadata:         &weave.Metadata{Schema: 1},
						WorkID:           workID,
						Type:             Proposal_RoyaltyUpdate,
						Target:           bob,
						NewPercentageBps: 5000,
						Description:      "bob deserves an equal cut",
					},
					blocksize: 101,
				},
				{
					conditions: []weave.Condition{eve},
					msg: &VoteMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
						Approve:    true,
					},
					blocksize:      102,
					wantCheckErr:   errors.ErrUnauthorized,
					wantDeliverErr: errors.ErrUnauthorized,
				},
			},
		},
		"vote on an unknown proposal fails": {
			actions: []action{
				{
					conditions: []weave.Condition{aliceCond},
					msg: &VoteMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
						Approve:    true,
					},
					blocksize:      100,
					wantCheckErr:   errors.ErrNotFound,
					wantDeliverErr: errors.ErrNotFound,
				},
			},
		},
		"vote after the voting period fails": {
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &royalty.CreateWorkMsg{
						Metadata:          &weave.Metadata{Schema: 1},
						Title:             "Silent Running",
						Collaborators:     []weave.Address{alice, bob},
						PercentagesBps:    []int32{6000, 4000},
						GovernanceEnabled: true,
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &CreateProposalMsg{
						Metadata:         &weave.Metadata{Schema: 1},
						WorkID:           workID,
						Type:             Proposal_RoyaltyUpdate,
						Target:           bob,
						NewPercentageBps: 5000,
						Description:      "bob deserves an equal cut",
					},
					blocksize: 101,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &VoteMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
						Approve:    true,
					},
					blocksize:      lastVotingBlock + 1,
					wantCheckErr:   errors.ErrExpired,
					wantDeliverErr: errors.ErrExpired,
				},
			},
		},
		"vote at the very end of the voting period is counted": {
			wantProposal: &Proposal{
				VotesFor:       1,
				EligibleVoters: 2,
				Status:         Proposal_Active,
			},
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &royalty.CreateWorkMsg{
						Metadata:          &weave.Metadata{Schema: 1},
						Title:             "Silent Running",
						Collaborators:     []weave.Address{alice, bob},
						PercentagesBps:    []int32{6000, 4000},
						GovernanceEnabled: true,
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &CreateProposalMsg{
						Metadata:         &weave.Metadata{Schema: 1},
						WorkID:           workID,
						Type:             Proposal_RoyaltyUpdate,
						Target:           bob,
						NewPercentageBps: 5000,
						Description:      "bob deserves an equal cut",
					},
					blocksize: 101,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &VoteMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
						Approve:    true,
					},
					blocksize: lastVotingBlock,
				},
			},
		},
		"execution requires a majority of all eligible voters": {
			wantProposal: &Proposal{
				VotesFor:       1,
				EligibleVoters: 3,
				Status:         Proposal_Active,
			},
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &royalty.CreateWorkMsg{
						Metadata:          &weave.Metadata{Schema: 1},
						Title:             "Silent Running",
						Collaborators:     []weave.Address{alice, bob, carol},
						PercentagesBps:    []int32{4000, 3500, 2500},
						GovernanceEnabled: true,
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &CreateProposalMsg{
						Metadata:         &weave.Metadata{Schema: 1},
						WorkID:           workID,
						Type:             Proposal_RoyaltyUpdate,
						Target:           bob,
						NewPercentageBps: 5000,
						Description:      "bob deserves an equal cut",
					},
					blocksize: 101,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &VoteMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
						Approve:    true,
					},
					blocksize: 102,
				},
				// One of three approvals is not enough.
				{
					conditions: []weave.Condition{eve},
					msg: &ExecuteProposalMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
					},
					blocksize:      103,
					wantCheckErr:   ErrNotPassed,
					wantDeliverErr: ErrNotPassed,
				},
			},
		},
		"execution after the voting period fails": {
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &royalty.CreateWorkMsg{
						Metadata:          &weave.Metadata{Schema: 1},
						Title:             "Silent Running",
						Collaborators:     []weave.Address{alice, bob},
						PercentagesBps:    []int32{6000, 4000},
						GovernanceEnabled: true,
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &CreateProposalMsg{
						Metadata:         &weave.Metadata{Schema: 1},
						WorkID:           workID,
						Type:             Proposal_RoyaltyUpdate,
						Target:           bob,
						NewPercentageBps: 5000,
						Description:      "bob deserves an equal cut",
					},
					blocksize: 101,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &VoteMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
						Approve:    true,
					},
					blocksize: 102,
				},
				{
					conditions: []weave.Condition{bobCond},
					msg: &VoteMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
						Approve:    true,
					},
					blocksize: 103,
				},
				// The proposal passed but was not executed in time.
				{
					conditions: []weave.Condition{eve},
					msg: &ExecuteProposalMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
					},
					blocksize:      lastVotingBlock + 1,
					wantCheckErr:   errors.ErrExpired,
					wantDeliverErr: errors.ErrExpired,
				},
			},
		},
		"an executed proposal is settled": {
			wantProposal: &Proposal{
				VotesFor:       2,
				EligibleVoters: 3,
				Status:         Proposal_Executed,
			},
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &royalty.CreateWorkMsg{
						Metadata:          &weave.Metadata{Schema: 1},
						Title:             "Silent Running",
						Collaborators:     []weave.Address{alice, bob, carol},
						PercentagesBps:    []int32{4000, 3500, 2500},
						GovernanceEnabled: true,
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &CreateProposalMsg{
						Metadata:         &weave.Metadata{Schema: 1},
						WorkID:           workID,
						Type:             Proposal_RoyaltyUpdate,
						Target:           bob,
						NewPercentageBps: 5000,
						Description:      "bob deserves an equal cut",
					},
					blocksize: 101,
				},
				{
					conditions: []weave.Condition{aliceCond},
					msg: &VoteMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
						Approve:    true,
					},
					blocksize: 102,
				},
				{
					conditions: []weave.Condition{bobCond},
					msg: &VoteMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
						Approve:    true,
					},
					blocksize: 103,
				},
				// Anyone can execute a passed proposal.
				{
					conditions: []weave.Condition{eve},
					msg: &ExecuteProposalMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
					},
					blocksize: 104,
				},
				// Late votes are refused. The outcome is settled.
				{
					conditions: []weave.Condition{carolCond},
					msg: &VoteMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
						Approve:    true,
					},
					blocksize:      105,
					wantCheckErr:   errors.ErrState,
					wantDeliverErr: errors.ErrState,
				},
				// So is a second execution.
				{
					conditions: []weave.Condition{eve},
					msg: &ExecuteProposalMsg{
						Metadata:   &weave.Metadata{Schema: 1},
						ProposalID: proposalID,
					},
					blocksize:      106,
					wantCheckErr:   errors.ErrState,
					wantDeliverErr: errors.ErrState,
				},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()

			migration.MustInitPkg(db, "cash", "royalty", "workgov")

			rconf := royalty.Configuration{
				Metadata:       &weave.Metadata{Schema: 1},
				FeeCollector:   weavetest.NewCondition().Address(),
				PaymentTicker:  "IOV",
				PlatformFeeBps: 250,
			}
			if err := gconf.Save(db, "royalty", &rconf); err != nil {
				t.Fatalf("cannot save royalty configuration: %s", err)
			}
			conf := Configuration{
				Metadata:     &weave.Metadata{Schema: 1},
				VotingPeriod: defaultVotingPeriod,
			}
			if err := gconf.Save(db, "workgov", &conf); err != nil {
				t.Fatalf("cannot save configuration: %s", err)
			}

			for i, a := range tc.actions {
				cache := db.CacheWrap()
				if _, err := rt.Check(a.ctx(), cache, a.tx()); !a.wantCheckErr.Is(err) {
					t.Logf("want: %+v", a.wantCheckErr)
					t.Logf(" got: %+v", err)
					t.Fatalf("action %d check (%T)", i, a.msg)
				}
				cache.Discard()
				if a.wantCheckErr != nil {
					// Failed checks are causing the message to be ignored.
					continue
				}

				// Deliver on a cache so that a failed delivery can be
				// rolled back, the same way the savepoint decorator
				// does it.
				cache = db.CacheWrap()
				_, err := rt.Deliver(a.ctx(), cache, a.tx())
				if !a.wantDeliverErr.Is(err) {
					t.Logf("want: %+v", a.wantDeliverErr)
					t.Logf(" got: %+v", err)
					t.Fatalf("action %d delivery (%T)", i, a.msg)
				}
				if err != nil {
					cache.Discard()
				} else if err := cache.Write(); err != nil {
					t.Fatalf("action %d write cache: %s", i, err)
				}
			}

			if want := tc.wantProposal; want != nil {
				var proposal Proposal
				if err := NewProposalBucket().One(db, proposalID, &proposal); err != nil {
					t.Fatalf("cannot get proposal: %s", err)
				}
				if proposal.VotesFor != want.VotesFor {
					t.Errorf("want %d votes for, got %d", want.VotesFor, proposal.VotesFor)
				}
				if proposal.VotesAgainst != want.VotesAgainst {
					t.Errorf("want %d votes against, got %d", want.VotesAgainst, proposal.VotesAgainst)
				}
				if proposal.EligibleVoters != want.EligibleVoters {
					t.Errorf("want %d eligible voters, got %d", want.EligibleVoters, proposal.EligibleVoters)
				}
				if proposal.Status != want.Status {
					t.Errorf("want %s status, got %s", want.Status, proposal.Status)
				}
			}
		})
	}
}

// action represents a single request call that is handled by a handler.
type action struct {
	conditions     []weave.Condition
	msg            weave.Msg
	blocksize      int64
	wantCheckErr   *errors.Error
	wantDeliverErr *errors.Error
}

func (a *action) tx() weave.Tx {
	return &weavetest.Tx{Msg: a.msg}
}

func (a *action) ctx() weave.Context {
	ctx := weave.WithHeight(context.Background(), a.blocksize)
	ctx = weave.WithChainID(ctx, "testchain-123")
	ctx = weave.WithBlockTime(ctx, time.Unix(1500000000+a.blocksize, 0))
	auth := &weavetest.CtxAuth{Key: "auth"}
	return auth.SetConditions(ctx, a.conditions...)
}

// An approved royalty update overwrites the one targeted share. The other
// shares are untouched, so the collaborators are expected to rebalance the
// split with follow up proposals before the next distribution.
func TestExecuteRoyaltyUpdateOverwritesSingleShare(t *testing.T) {
	creator := weavetest.NewCondition()
	aliceCond := weavetest.NewCondition()
	bobCond := weavetest.NewCondition()
	alice := aliceCond.Address()
	bob := bobCond.Address()

	rt := app.NewRouter()
	auth := &weavetest.CtxAuth{Key: "auth"}
	cashctrl := cash.NewController(cash.NewBucket())
	royalty.RegisterRoutes(rt, auth, cashctrl)
	ctrl := royalty.NewController()
	RegisterRoutes(rt, auth, ctrl)

	db := store.MemStore()
	migration.MustInitPkg(db, "cash", "royalty", "workgov")

	rconf := royalty.Configuration{
		Metadata:       &weave.Metadata{Schema: 1},
		FeeCollector:   weavetest.NewCondition().Address(),
		PaymentTicker:  "IOV",
		PlatformFeeBps: 250,
	}
	if err := gconf.Save(db, "royalty", &rconf); err != nil {
		t.Fatalf("cannot save royalty configuration: %s", err)
	}
	conf := Configuration{
		Metadata:     &weave.Metadata{Schema: 1},
		VotingPeriod: defaultVotingPeriod,
	}
	if err := gconf.Save(db, "workgov", &conf); err != nil {
		t.Fatalf("cannot save configuration: %s", err)
	}

	workID := weavetest.SequenceID(1)
	proposalID := weavetest.SequenceID(1)

	actions := []action{
		{
			conditions: []weave.Condition{creator},
			msg: &royalty.CreateWorkMsg{
				Metadata:          &weave.Metadata{Schema: 1},
				Title:             "Silent Running",
				Collaborators:     []weave.Address{alice, bob},
				PercentagesBps:    []int32{6000, 4000},
				GovernanceEnabled: true,
			},
			blocksize: 100,
		},
		{
			conditions: []weave.Condition{bobCond},
			msg: &CreateProposalMsg{
				Metadata:         &weave.Metadata{Schema: 1},
				WorkID:           workID,
				Type:             Proposal_RoyaltyUpdate,
				Target:           bob,
				NewPercentageBps: 6000,
				Description:      "bob produced the whole second album",
			},
			blocksize: 101,
		},
		{
			conditions: []weave.Condition{aliceCond},
			msg: &VoteMsg{
				Metadata:   &weave.Metadata{Schema: 1},
				ProposalID: proposalID,
				Approve:    true,
			},
			blocksize: 102,
		},
		{
			conditions: []weave.Condition{bobCond},
			msg: &VoteMsg{
				Metadata:   &weave.Metadata{Schema: 1},
				ProposalID: proposalID,
				Approve:    true,
			},
			blocksize: 103,
		},
		{
			conditions: []weave.Condition{aliceCond},
			msg: &ExecuteProposalMsg{
				Metadata:   &weave.Metadata{Schema: 1},
				ProposalID: proposalID,
			},
			blocksize: 104,
		},
	}
	for i, a := range actions {
		if _, err := rt.Deliver(a.ctx(), db, a.tx()); err != nil {
			t.Fatalf("action %d delivery: %s", i, err)
		}
	}

	bobShare, err := ctrl.GetShare(db, workID, bob)
	if err != nil {
		t.Fatalf("cannot get bob share: %s", err)
	}
	if bobShare.PercentageBps != 6000 {
		t.Errorf("want bob share updated to 6000, got %d", bobShare.PercentageBps)
	}
	aliceShare, err := ctrl.GetShare(db, workID, alice)
	if err != nil {
		t.Fatalf("cannot get alice share: %s", err)
	}
	if aliceShare.PercentageBps != 6000 {
		t.Errorf("want alice share untouched at 6000, got %d", aliceShare.PercentageBps)
	}
	// The shares now sum up to 12000 basis points. Nothing prevents a
	// temporarily unbalanced split.
	if sum := aliceShare.PercentageBps + bobShare.PercentageBps; sum != 12000 {
		t.Errorf("want the shares to sum up to 12000, got %d", sum)
	}
}

// Collaborator membership proposals are decided on chain but the collaborator
// set of the work is not modified by their execution.
func TestExecuteMembershipProposalIsRecordedOnly(t *testing.T) {
	creator := weavetest.NewCondition()
	aliceCond := weavetest.NewCondition()
	bobCond := weavetest.NewCondition()
	alice := aliceCond.Address()
	bob := bobCond.Address()
	eve := weavetest.NewCondition().Address()

	rt := app.NewRouter()
	auth := &weavetest.CtxAuth{Key: "auth"}
	cashctrl := cash.NewController(cash.NewBucket())
	royalty.RegisterRoutes(rt, auth, cashctrl)
	ctrl := royalty.NewController()
	RegisterRoutes(rt, auth, ctrl)

	db := store.MemStore()
	migration.MustInitPkg(db, "cash", "royalty", "workgov")

	rconf := royalty.Configuration{
		Metadata:       &weave.Metadata{Schema: 1},
		FeeCollector:   weavetest.NewCondition().Address(),
		PaymentTicker:  "IOV",
		PlatformFeeBps: 250,
	}
	if err := gconf.Save(db, "royalty", &rconf); err != nil {
		t.Fatalf("cannot save royalty configuration: %s", err)
	}
	conf := Configuration{
		Metadata:     &weave.Metadata{Schema: 1},
		VotingPeriod: defaultVotingPeriod,
	}
	if err := gconf.Save(db, "workgov", &conf); err != nil {
		t.Fatalf("cannot save configuration: %s", err)
	}

	workID := weavetest.SequenceID(1)
	proposalID := weavetest.SequenceID(1)

	actions := []action{
		{
			conditions: []weave.Condition{creator},
			msg: &royalty.CreateWorkMsg{
				Metadata:          &weave.Metadata{Schema: 1},
				Title:             "Silent Running",
				Collaborators:     []weave.Address{alice, bob},
				PercentagesBps:    []int32{6000, 4000},
				GovernanceEnabled: true,
			},
			blocksize: 100,
		},
		{
			conditions: []weave.Condition{aliceCond},
			msg: &CreateProposalMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				WorkID:      workID,
				Type:        Proposal_AddCollaborator,
				Target:      eve,
				Description: "eve joins for the second season",
			},
			blocksize: 101,
		},
		{
			conditions: []weave.Condition{aliceCond},
			msg: &VoteMsg{
				Metadata:   &weave.Metadata{Schema: 1},
				ProposalID: proposalID,
				Approve:    true,
			},
			blocksize: 102,
		},
		{
			conditions: []weave.Condition{bobCond},
			msg: &VoteMsg{
				Metadata:   &weave.Metadata{Schema: 1},
				ProposalID: proposalID,
				Approve:    true,
			},
			blocksize: 103,
		},
		{
			conditions: []weave.Condition{aliceCond},
			msg: &ExecuteProposalMsg{
				Metadata:   &weave.Metadata{Schema: 1},
				ProposalID: proposalID,
			},
			blocksize: 104,
		},
	}
	for i, a := range actions {
		if _, err := rt.Deliver(a.ctx(), db, a.tx()); err != nil {
			t.Fatalf("action %d delivery: %s", i, err)
		}
	}

	var proposal Proposal
	if err := NewProposalBucket().One(db, proposalID, &proposal); err != nil {
		t.Fatalf("cannot get proposal: %s", err)
	}
	if proposal.Status != Proposal_Executed {
		t.Errorf("want the proposal executed, got %s", proposal.Status)
	}

	work, err := ctrl.GetWork(db, workID)
	if err != nil {
		t.Fatalf("cannot get work: %s", err)
	}
	if len(work.Collaborators) != 2 {
		t.Errorf("want the collaborator set untouched, got %v", work.Collaborators)
	}
	if work.HasCollaborator(eve) {
		t.Error("eve must not be a collaborator")
	}
}
