package royalty

import (
	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &CreateWorkMsg{}, migration.NoModification)
	migration.MustRegister(1, &ReceivePaymentMsg{}, migration.NoModification)
	migration.MustRegister(1, &DistributeMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ weave.Msg = (*CreateWorkMsg)(nil)

const pathCreateWorkMsg = "royalty/create_work"

func (msg *CreateWorkMsg) Path() string {
	return pathCreateWorkMsg
}

func (msg *CreateWorkMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if err := validateTitle(msg.Title, errors.ErrMsg); err != nil {
		return err
	}
	if err := validateCollaborators(msg.Collaborators, ErrCollaborators); err != nil {
		return err
	}
	if len(msg.PercentagesBps) != len(msg.Collaborators) {
		return errors.Wrapf(ErrPercentage,
			"%d percentages for %d collaborators",
			len(msg.PercentagesBps), len(msg.Collaborators))
	}
	if err := validatePercentages(msg.PercentagesBps, ErrPercentage); err != nil {
		return err
	}
	return nil
}

var _ weave.Msg = (*ReceivePaymentMsg)(nil)

const pathReceivePaymentMsg = "royalty/receive_payment"

func (msg *ReceivePaymentMsg) Path() string {
	return pathReceivePaymentMsg
}

func (msg *ReceivePaymentMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if len(msg.WorkID) == 0 {
		return errors.Wrap(errors.ErrEmpty, "work id")
	}
	if msg.Amount <= 0 {
		return errors.Wrapf(errors.ErrAmount, "amount must be positive: %d", msg.Amount)
	}
	if msg.Amount > coin.MaxInt {
		return errors.Wrapf(errors.ErrAmount, "amount out of range: %d", msg.Amount)
	}
	return nil
}

var _ weave.Msg = (*DistributeMsg)(nil)

const pathDistributeMsg = "royalty/distribute"

func (msg *DistributeMsg) Path() string {
	return pathDistributeMsg
}

func (msg *DistributeMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if len(msg.WorkID) == 0 {
		return errors.Wrap(errors.ErrEmpty, "work id")
	}
	return nil
}

var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

const pathUpdateConfigurationMsg = "royalty/update_configuration"

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
