package workgov

import (
	"github.com/iov-one/royalty/x/royalty"
	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	createProposalCost  = 0
	voteCost            = 0
	executeProposalCost = 0
)

// RegisterQuery registers governance buckets for querying.
func RegisterQuery(qr weave.QueryRouter) {
	NewProposalBucket().Register("proposals", qr)
	NewVoteBucket().Register("votes", qr)
}

// WorkController allows to inspect works and update their royalty shares
// without the need to directly access the buckets.
// Required functionality is implemented by the x/royalty extension.
type WorkController interface {
	GetWork(weave.ReadOnlyKVStore, []byte) (*royalty.Work, error)
	SetPercentage(weave.KVStore, []byte, weave.Address, int32) error
}

// RegisterRoutes registers handlers for governance message processing.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, ctrl WorkController) {
	r = migration.SchemaMigratingRegistry("workgov", r)
	proposals := NewProposalBucket()
	votes := NewVoteBucket()
	r.Handle(&CreateProposalMsg{}, &createProposalHandler{
		auth:      auth,
		proposals: proposals,
		ctrl:      ctrl,
	})
	r.Handle(&VoteMsg{}, &voteHandler{
		auth:      auth,
		proposals: proposals,
		votes:     votes,
		ctrl:      ctrl,
	})
	r.Handle(&ExecuteProposalMsg{}, &executeProposalHandler{
		auth:      auth,
		proposals: proposals,
		ctrl:      ctrl,
	})
	r.Handle(&UpdateConfigurationMsg{},
		gconf.NewUpdateConfigurationHandler("workgov", &Configuration{}, auth, migration.CurrentAdmin))
}

type createProposalHandler struct {
	auth      x.Authenticator
	proposals orm.ModelBucket
	ctrl      WorkController
}

func (h *createProposalHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: createProposalCost}, nil
}

func (h *createProposalHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	work, err := h.ctrl.GetWork(db, msg.WorkID)
	if err != nil {
		return nil, err
	}
	proposer := mainSigner(ctx, h.auth).Address()

	conf := mustLoadConf(db)

	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	submitted := weave.AsUnixTime(now)

	// The set of voters allowed to decide on this proposal is fixed at
	// creation time. Collaborator changes made later must not affect the
	// outcome of a running vote.
	key, err := h.proposals.Put(db, nil, &Proposal{
		Metadata:         &weave.Metadata{Schema: 1},
		WorkID:           msg.WorkID,
		Proposer:         proposer,
		Type:             msg.Type,
		Target:           msg.Target,
		NewPercentageBps: msg.NewPercentageBps,
		Description:      msg.Description,
		EligibleVoters:   uint32(len(work.Collaborators)),
		SubmissionTime:   submitted,
		VotingEndTime:    submitted.Add(conf.VotingPeriod.Duration()),
		Status:           Proposal_Active,
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot store proposal")
	}

	res := weave.DeliverResult{
		Data: key,
		Tags: []common.KVPair{
			{Key: []byte("proposal-id"), Value: key},
			{Key: []byte("action"), Value: []byte("create-proposal")},
		},
	}
	return &res, nil
}

func (h *createProposalHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*CreateProposalMsg, error) {
	var msg CreateProposalMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	signer := mainSigner(ctx, h.auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "proposer signature required")
	}
	work, err := h.ctrl.GetWork(db, msg.WorkID)
	if err != nil {
		return nil, err
	}
	if !work.GovernanceEnabled {
		return nil, errors.Wrap(errors.ErrState, "work does not allow governance")
	}
	if !work.HasCollaborator(signer.Address()) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only a collaborator can propose")
	}
	return &msg, nil
}

type voteHandler struct {
	auth      x.Authenticator
	proposals orm.ModelBucket
	votes     orm.ModelBucket
	ctrl      WorkController
}

func (h *voteHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: voteCost}, nil
}

func (h *voteHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, proposal, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	voter := mainSigner(ctx, h.auth).Address()

	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}

	vote := &Vote{
		Metadata: &weave.Metadata{Schema: 1},
		Voter:    voter,
		Approved: msg.Approve,
		VotedAt:  weave.AsUnixTime(now),
	}
	if _, err := h.votes.Put(db, voteKey(msg.ProposalID, voter), vote); err != nil {
		return nil, errors.Wrap(err, "cannot store vote")
	}

	if msg.Approve {
		proposal.VotesFor++
	} else {
		proposal.VotesAgainst++
	}
	if _, err := h.proposals.Put(db, msg.ProposalID, proposal); err != nil {
		return nil, errors.Wrap(err, "cannot store proposal")
	}

	res := weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("proposal-id"), Value: msg.ProposalID},
			{Key: []byte("action"), Value: []byte("vote")},
		},
	}
	return &res, nil
}

func (h *voteHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*VoteMsg, *Proposal, error) {
	var msg VoteMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	signer := mainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "voter signature required")
	}
	var proposal Proposal
	if err := h.proposals.One(db, msg.ProposalID, &proposal); err != nil {
		return nil, nil, errors.Wrap(err, "cannot get proposal")
	}
	if proposal.Status != Proposal_Active {
		return nil, nil, errors.Wrapf(errors.ErrState, "proposal is %s", proposal.Status)
	}

	// Voting is possible until the end of the voting period, inclusive.
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "block time")
	}
	if now.After(proposal.VotingEndTime.Time()) {
		return nil, nil, errors.Wrap(errors.ErrExpired, "voting period is over")
	}

	work, err := h.ctrl.GetWork(db, proposal.WorkID)
	if err != nil {
		return nil, nil, err
	}
	if !work.HasCollaborator(signer.Address()) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only a collaborator can vote")
	}

	var cast Vote
	switch err := h.votes.One(db, voteKey(msg.ProposalID, signer.Address()), &cast); {
	case err == nil:
		return nil, nil, errors.Wrap(ErrAlreadyVoted, "only one vote per proposal")
	case errors.ErrNotFound.Is(err):
		// Vote not cast yet.
	default:
		return nil, nil, errors.Wrap(err, "cannot get vote")
	}
	return &msg, &proposal, nil
}

type executeProposalHandler struct {
	auth      x.Authenticator
	proposals orm.ModelBucket
	ctrl      WorkController
}

func (h *executeProposalHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: executeProposalCost}, nil
}

func (h *executeProposalHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, proposal, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	switch proposal.Type {
	case Proposal_RoyaltyUpdate:
		// Only the one targeted share is overwritten. Rebalancing the
		// remaining shares requires further proposals.
		if err := h.ctrl.SetPercentage(db, proposal.WorkID, proposal.Target, proposal.NewPercentageBps); err != nil {
			return nil, errors.Wrap(err, "cannot update share")
		}
	case Proposal_AddCollaborator, Proposal_RemoveCollaborator:
		// The decision is recorded on chain but the collaborator set is
		// not changed. Changing the set would require reissuing shares,
		// which is handled off chain for now.
	default:
		return nil, errors.Wrapf(ErrProposal, "unknown proposal type %s", proposal.Type)
	}

	proposal.Status = Proposal_Executed
	if _, err := h.proposals.Put(db, msg.ProposalID, proposal); err != nil {
		return nil, errors.Wrap(err, "cannot store proposal")
	}

	res := weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("proposal-id"), Value: msg.ProposalID},
			{Key: []byte("action"), Value: []byte("execute-proposal")},
		},
	}
	return &res, nil
}

// validate ensures the proposal can be executed. Any signer can execute a
// passed proposal, not only a collaborator of the work.
func (h *executeProposalHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ExecuteProposalMsg, *Proposal, error) {
	var msg ExecuteProposalMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if mainSigner(ctx, h.auth) == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "signature required")
	}
	var proposal Proposal
	if err := h.proposals.One(db, msg.ProposalID, &proposal); err != nil {
		return nil, nil, errors.Wrap(err, "cannot get proposal")
	}
	if proposal.Status != Proposal_Active {
		return nil, nil, errors.Wrapf(errors.ErrState, "proposal is %s", proposal.Status)
	}

	// Execution follows the same deadline as voting, inclusive.
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "block time")
	}
	if now.After(proposal.VotingEndTime.Time()) {
		return nil, nil, errors.Wrap(errors.ErrExpired, "voting period is over")
	}

	if !proposal.Passed() {
		return nil, nil, errors.Wrapf(ErrNotPassed, "%d of %d eligible voters approved",
			proposal.VotesFor, proposal.EligibleVoters)
	}
	return &msg, &proposal, nil
}

// mainSigner returns the first condition the transaction is authenticated
// with, or nil when there is none.
func mainSigner(ctx weave.Context, auth x.Authenticator) weave.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}
