package royalty

import (
	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/orm"
)

// Controller provides access to the works and their royalty shares without
// exposing the storage layout. Other extensions operate on royalty state only
// through this type.
type Controller struct {
	works   orm.ModelBucket
	shares  orm.ModelBucket
	ledgers orm.ModelBucket
}

// NewController returns a controller using the default royalty buckets.
func NewController() *Controller {
	return &Controller{
		works:   NewWorkBucket(),
		shares:  NewShareBucket(),
		ledgers: NewLedgerBucket(),
	}
}

func (c *Controller) GetWork(db weave.ReadOnlyKVStore, workID []byte) (*Work, error) {
	var work Work
	if err := c.works.One(db, workID, &work); err != nil {
		return nil, errors.Wrap(err, "cannot get work")
	}
	return &work, nil
}

func (c *Controller) GetShare(db weave.ReadOnlyKVStore, workID []byte, collaborator weave.Address) (*Share, error) {
	var share Share
	if err := c.shares.One(db, shareKey(workID, collaborator), &share); err != nil {
		return nil, errors.Wrap(err, "cannot get share")
	}
	return &share, nil
}

func (c *Controller) GetLedger(db weave.ReadOnlyKVStore, workID []byte) (*Ledger, error) {
	var ledger Ledger
	if err := c.ledgers.One(db, workID, &ledger); err != nil {
		return nil, errors.Wrap(err, "cannot get ledger")
	}
	return &ledger, nil
}

// SetPercentage overwrites the royalty percentage of a single collaborator.
// Only that one share is written. No constraint is enforced on the sum of all
// shares of the work, the caller decides how the split is rebalanced.
func (c *Controller) SetPercentage(db weave.KVStore, workID []byte, collaborator weave.Address, bps int32) error {
	var share Share
	if err := c.shares.One(db, shareKey(workID, collaborator), &share); err != nil {
		return errors.Wrap(err, "cannot get share")
	}
	if bps <= 0 || bps > wholeBps {
		return errors.Wrapf(ErrPercentage, "basis points out of range: %d", bps)
	}
	share.PercentageBps = bps
	if _, err := c.shares.Put(db, shareKey(workID, collaborator), &share); err != nil {
		return errors.Wrap(err, "cannot store share")
	}
	return nil
}
