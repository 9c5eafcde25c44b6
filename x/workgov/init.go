package workgov

import (
	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ weave.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial configuration from genesis and save it to
// the database.
func (*Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, kv weave.KVStore) error {
	var confOptions weave.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(err, "read conf")
	}
	var conf Configuration
	if err := confOptions.ReadOptions("workgov", &conf); err != nil {
		return errors.Wrap(err, "read configuration")
	}
	if conf.Metadata == nil {
		conf.Metadata = &weave.Metadata{Schema: 1}
	}
	if conf.VotingPeriod == 0 {
		conf.VotingPeriod = defaultVotingPeriod
	}
	if err := gconf.Save(kv, "workgov", &conf); err != nil {
		return errors.Wrap(err, "cannot save configuration")
	}
	return nil
}
