package royalty

import (
	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Work{}, migration.NoModification)
	migration.MustRegister(1, &Share{}, migration.NoModification)
	migration.MustRegister(1, &Ledger{}, migration.NoModification)
}

var _ orm.CloneableData = (*Work)(nil)

func (w *Work) Validate() error {
	if err := w.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if err := validateTitle(w.Title, errors.ErrModel); err != nil {
		return err
	}
	if err := w.Creator.Validate(); err != nil {
		return errors.Wrap(err, "invalid creator")
	}
	if err := validateCollaborators(w.Collaborators, errors.ErrModel); err != nil {
		return err
	}
	if w.TotalRevenue < 0 {
		return errors.Wrap(errors.ErrModel, "negative total revenue")
	}
	if w.Status != Work_Active && w.Status != Work_Locked {
		return errors.Wrapf(errors.ErrState, "invalid status %s", w.Status)
	}
	return nil
}

func (w *Work) Copy() orm.CloneableData {
	cpy := &Work{
		Metadata:          w.Metadata.Copy(),
		Title:             w.Title,
		Creator:           w.Creator.Clone(),
		Collaborators:     make([]weave.Address, len(w.Collaborators)),
		TotalRevenue:      w.TotalRevenue,
		Status:            w.Status,
		GovernanceEnabled: w.GovernanceEnabled,
		CreatedAt:         w.CreatedAt,
	}
	for i := range w.Collaborators {
		cpy.Collaborators[i] = w.Collaborators[i].Clone()
	}
	return cpy
}

// HasCollaborator returns true if the given address is one of the work
// collaborators.
func (w *Work) HasCollaborator(a weave.Address) bool {
	for _, c := range w.Collaborators {
		if c.Equals(a) {
			return true
		}
	}
	return false
}

func validateTitle(title string, baseErr *errors.Error) error {
	switch n := len(title); {
	case n == 0:
		return errors.Wrap(baseErr, "title is required")
	case n > maxTitleLen:
		return errors.Wrapf(baseErr, "title longer than %d characters", maxTitleLen)
	}
	return nil
}

// validateCollaborators returns an error if the given list of collaborator
// addresses is not a valid set. This functionality is used by both the model
// and the message validation, which must return a different error class. That
// is why the base error is passed in.
func validateCollaborators(cs []weave.Address, baseErr *errors.Error) error {
	switch n := len(cs); {
	case n == 0:
		return errors.Wrap(baseErr, "no collaborators")
	case n > maxCollaborators:
		return errors.Wrapf(baseErr, "more than %d collaborators", maxCollaborators)
	}

	seen := make(map[string]struct{})
	for i, c := range cs {
		if err := c.Validate(); err != nil {
			return errors.Wrapf(err, "collaborator %d address", i)
		}
		addr := c.String()
		if _, ok := seen[addr]; ok {
			return errors.Wrapf(baseErr, "address %q is not unique", addr)
		}
		seen[addr] = struct{}{}
	}
	return nil
}

// validatePercentages returns an error if the given list of basis point
// percentages is not a valid royalty split. A valid split has every entry
// positive and all entries summing up to exactly the whole.
func validatePercentages(bps []int32, baseErr *errors.Error) error {
	if len(bps) == 0 {
		return errors.Wrap(baseErr, "no percentages")
	}
	var sum int64
	for i, p := range bps {
		if p <= 0 {
			return errors.Wrapf(baseErr, "percentage %d must be positive", i)
		}
		sum += int64(p)
	}
	if sum != wholeBps {
		return errors.Wrapf(baseErr, "percentages sum up to %d, not %d", sum, wholeBps)
	}
	return nil
}

const (
	// maxCollaborators bounds the collaborator set of a single work. A
	// bigger set makes the all-or-nothing distribution too fragile and
	// serves no real life scenario.
	maxCollaborators = 10

	maxTitleLen = 256
)

var _ orm.CloneableData = (*Share)(nil)

func (s *Share) Validate() error {
	if err := s.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if err := s.Collaborator.Validate(); err != nil {
		return errors.Wrap(err, "invalid collaborator")
	}
	if s.PercentageBps <= 0 || s.PercentageBps > wholeBps {
		return errors.Wrapf(errors.ErrModel, "percentage out of range: %d", s.PercentageBps)
	}
	if s.Earned < 0 {
		return errors.Wrap(errors.ErrModel, "negative earned amount")
	}
	return nil
}

func (s *Share) Copy() orm.CloneableData {
	return &Share{
		Metadata:       s.Metadata.Copy(),
		Collaborator:   s.Collaborator.Clone(),
		PercentageBps:  s.PercentageBps,
		Dynamic:        s.Dynamic,
		Earned:         s.Earned,
		LastWithdrawal: s.LastWithdrawal,
	}
}

var _ orm.CloneableData = (*Ledger)(nil)

func (l *Ledger) Validate() error {
	if err := l.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	if l.TotalReceived < 0 || l.TotalDistributed < 0 || l.Pending < 0 {
		return errors.Wrap(errors.ErrModel, "negative amount")
	}
	return nil
}

func (l *Ledger) Copy() orm.CloneableData {
	return &Ledger{
		Metadata:         l.Metadata.Copy(),
		TotalReceived:    l.TotalReceived,
		TotalDistributed: l.TotalDistributed,
		Pending:          l.Pending,
		LastDistribution: l.LastDistribution,
	}
}

// NewWorkBucket returns a bucket for managing works. Work IDs are assigned
// from a sequence.
func NewWorkBucket() orm.ModelBucket {
	b := orm.NewModelBucket("work", &Work{},
		orm.WithIDSequence(workSeq),
	)
	return migration.NewModelBucket("royalty", b)
}

var workSeq = orm.NewSequence("work", "id")

// NewShareBucket returns a bucket for managing royalty shares. Shares are
// stored under a composite key of the work ID and the collaborator address.
func NewShareBucket() orm.ModelBucket {
	b := orm.NewModelBucket("share", &Share{})
	return migration.NewModelBucket("royalty", b)
}

// shareKey is the unique identifier of a collaborator's share of a work.
func shareKey(workID []byte, collaborator weave.Address) []byte {
	key := make([]byte, 0, len(workID)+len(collaborator))
	key = append(key, workID...)
	return append(key, collaborator...)
}

// NewLedgerBucket returns a bucket for managing revenue ledgers. Each ledger
// is stored under the ID of its work.
func NewLedgerBucket() orm.ModelBucket {
	b := orm.NewModelBucket("ledger", &Ledger{})
	return migration.NewModelBucket("royalty", b)
}

// RevenueAccount returns the address of the account that holds the
// undistributed revenue of a work.
func RevenueAccount(workID []byte) weave.Address {
	return weave.NewCondition("royalty", "work", workID).Address()
}
