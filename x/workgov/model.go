package workgov

import (
	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Proposal{}, migration.NoModification)
	migration.MustRegister(1, &Vote{}, migration.NoModification)
}

const (
	minDescriptionLen = 3
	maxDescriptionLen = 5000

	// Royalty percentages are expressed in basis points of this whole.
	wholeBps = 10000
)

var _ orm.CloneableData = (*Proposal)(nil)

func (p *Proposal) Validate() error {
	if err := p.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if len(p.WorkID) == 0 {
		return errors.Wrap(errors.ErrEmpty, "work id is required")
	}
	if err := p.Proposer.Validate(); err != nil {
		return errors.Wrap(err, "invalid proposer")
	}
	if err := validateAction(p.Type, p.Target, p.NewPercentageBps); err != nil {
		return err
	}
	if err := validateDescription(p.Description); err != nil {
		return err
	}
	if p.EligibleVoters == 0 {
		return errors.Wrap(errors.ErrModel, "no eligible voters")
	}
	if p.VotesFor+p.VotesAgainst > p.EligibleVoters {
		return errors.Wrap(errors.ErrModel, "more votes cast than eligible voters")
	}
	if err := p.SubmissionTime.Validate(); err != nil {
		return errors.Wrap(err, "invalid submission time")
	}
	if err := p.VotingEndTime.Validate(); err != nil {
		return errors.Wrap(err, "invalid voting end time")
	}
	if p.VotingEndTime < p.SubmissionTime {
		return errors.Wrap(errors.ErrModel, "voting cannot end before submission")
	}
	if p.Status != Proposal_Active && p.Status != Proposal_Executed {
		return errors.Wrapf(errors.ErrState, "invalid status %s", p.Status)
	}
	return nil
}

func (p *Proposal) Copy() orm.CloneableData {
	return &Proposal{
		Metadata:         p.Metadata.Copy(),
		WorkID:           append([]byte(nil), p.WorkID...),
		Proposer:         p.Proposer.Clone(),
		Type:             p.Type,
		Target:           p.Target.Clone(),
		NewPercentageBps: p.NewPercentageBps,
		Description:      p.Description,
		VotesFor:         p.VotesFor,
		VotesAgainst:     p.VotesAgainst,
		EligibleVoters:   p.EligibleVoters,
		SubmissionTime:   p.SubmissionTime,
		VotingEndTime:    p.VotingEndTime,
		Status:           p.Status,
	}
}

// Passed returns true if the proposal collected approvals from at least 51%
// of the eligible voters. The comparison is done on integers only so that no
// floating point rounding can tip the result.
func (p *Proposal) Passed() bool {
	return uint64(p.VotesFor)*100 >= uint64(p.EligibleVoters)*51
}

// validateAction returns an error if the given combination of a proposal type
// and its payload does not describe a valid governance action. This
// functionality is used by both the model and the message validation.
func validateAction(t Proposal_Type, target weave.Address, bps int32) error {
	switch t {
	case Proposal_RoyaltyUpdate:
		if err := target.Validate(); err != nil {
			return errors.Wrap(err, "invalid target")
		}
		if bps <= 0 || bps > wholeBps {
			return errors.Wrapf(ErrProposal, "percentage out of range: %d", bps)
		}
		return nil
	case Proposal_AddCollaborator, Proposal_RemoveCollaborator:
		if err := target.Validate(); err != nil {
			return errors.Wrap(err, "invalid target")
		}
		return nil
	default:
		return errors.Wrapf(ErrProposal, "unknown proposal type %s", t)
	}
}

func validateDescription(d string) error {
	switch n := len(d); {
	case n < minDescriptionLen:
		return errors.Wrapf(ErrProposal, "description shorter than %d characters", minDescriptionLen)
	case n > maxDescriptionLen:
		return errors.Wrapf(ErrProposal, "description longer than %d characters", maxDescriptionLen)
	}
	return nil
}

var _ orm.CloneableData = (*Vote)(nil)

func (v *Vote) Validate() error {
	if err := v.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if err := v.Voter.Validate(); err != nil {
		return errors.Wrap(err, "invalid voter")
	}
	if err := v.VotedAt.Validate(); err != nil {
		return errors.Wrap(err, "invalid vote time")
	}
	return nil
}

func (v *Vote) Copy() orm.CloneableData {
	return &Vote{
		Metadata: v.Metadata.Copy(),
		Voter:    v.Voter.Clone(),
		Approved: v.Approved,
		VotedAt:  v.VotedAt,
	}
}

// NewProposalBucket returns a bucket for managing proposals. Proposal IDs are
// assigned from a sequence.
func NewProposalBucket() orm.ModelBucket {
	b := orm.NewModelBucket("proposal", &Proposal{},
		orm.WithIDSequence(proposalSeq),
	)
	return migration.NewModelBucket("workgov", b)
}

var proposalSeq = orm.NewSequence("proposal", "id")

// NewVoteBucket returns a bucket for managing cast votes. Votes are stored
// under a composite key of the proposal ID and the voter address and are
// never deleted, so a second vote by the same voter is always detected.
func NewVoteBucket() orm.ModelBucket {
	b := orm.NewModelBucket("vote", &Vote{})
	return migration.NewModelBucket("workgov", b)
}

// voteKey is the unique identifier of a voter's vote on a proposal.
func voteKey(proposalID []byte, voter weave.Address) []byte {
	key := make([]byte, 0, len(proposalID)+len(voter))
	key = append(key, proposalID...)
	return append(key, voter...)
}
