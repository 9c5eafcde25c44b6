package workgov

import (
	"time"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &Configuration{}, migration.NoModification)
}

// defaultVotingPeriod is the voting period applied when the genesis does not
// declare one.
const defaultVotingPeriod = weave.UnixDuration(10 * 24 * time.Hour / time.Second)

func (c *Configuration) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "invalid metadata")
	}
	// Owner is optional. Without an owner the configuration cannot be
	// updated after genesis.
	if len(c.Owner) != 0 {
		if err := c.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner address")
		}
	}
	if c.VotingPeriod <= 0 {
		return errors.Wrapf(errors.ErrState, "voting period must be positive: %s", c.VotingPeriod)
	}
	return nil
}

func mustLoadConf(db gconf.Store) Configuration {
	var conf Configuration
	if err := gconf.Load(db, "workgov", &conf); err != nil {
		err = errors.Wrap(err, "load configuration")
		panic(err)
	}
	return conf
}
