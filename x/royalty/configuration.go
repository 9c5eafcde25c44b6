package royalty

import (
	"regexp"

	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &Configuration{}, migration.NoModification)
}

// defaultPlatformFeeBps is the platform fee applied when the genesis does not
// declare one. 250 basis points is 2.5%.
const defaultPlatformFeeBps = 250

var isTicker = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

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
	if len(c.FeeCollector) == 0 {
		return errors.Wrap(errors.ErrState, "fee collector address missing")
	}
	if err := c.FeeCollector.Validate(); err != nil {
		return errors.Wrap(err, "fee collector address")
	}
	if !isTicker(c.PaymentTicker) {
		return errors.Wrapf(errors.ErrState, "invalid payment ticker %q", c.PaymentTicker)
	}
	if c.PlatformFeeBps < 0 || c.PlatformFeeBps >= wholeBps {
		return errors.Wrapf(errors.ErrState, "platform fee out of range: %d", c.PlatformFeeBps)
	}
	return nil
}

func mustLoadConf(db gconf.Store) Configuration {
	var conf Configuration
	if err := gconf.Load(db, "royalty", &conf); err != nil {
		err = errors.Wrap(err, "load configuration")
		panic(err)
	}
	return conf
}
