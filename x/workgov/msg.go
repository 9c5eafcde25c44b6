package workgov

import (
	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &CreateProposalMsg{}, migration.NoModification)
	migration.MustRegister(1, &VoteMsg{}, migration.NoModification)
	migration.MustRegister(1, &ExecuteProposalMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ weave.Msg = (*CreateProposalMsg)(nil)

const pathCreateProposalMsg = "workgov/create_proposal"

func (msg *CreateProposalMsg) Path() string {
	return pathCreateProposalMsg
}

func (msg *CreateProposalMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if len(msg.WorkID) == 0 {
		return errors.Wrap(errors.ErrEmpty, "work id")
	}
	if err := validateAction(msg.Type, msg.Target, msg.NewPercentageBps); err != nil {
		return err
	}
	if err := validateDescription(msg.Description); err != nil {
		return err
	}
	return nil
}

var _ weave.Msg = (*VoteMsg)(nil)

const pathVoteMsg = "workgov/vote"

func (msg *VoteMsg) Path() string {
	return pathVoteMsg
}

func (msg *VoteMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if len(msg.ProposalID) == 0 {
		return errors.Wrap(errors.ErrEmpty, "proposal id")
	}
	return nil
}

var _ weave.Msg = (*ExecuteProposalMsg)(nil)

const pathExecuteProposalMsg = "workgov/execute"

func (msg *ExecuteProposalMsg) Path() string {
	return pathExecuteProposalMsg
}

func (msg *ExecuteProposalMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if len(msg.ProposalID) == 0 {
		return errors.Wrap(errors.ErrEmpty, "proposal id")
	}
	return nil
}

var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

const pathUpdateConfigurationMsg = "workgov/update_configuration"

func (msg *UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

func (msg *UpdateConfigurationMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if msg.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch is required")
	}
	return nil
}
