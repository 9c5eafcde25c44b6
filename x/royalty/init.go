package royalty

import (
	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ weave.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial configuration and works from genesis and
// save them to the database.
func (*Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, kv weave.KVStore) error {
	var confOptions weave.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(err, "read conf")
	}
	var conf Configuration
	if err := confOptions.ReadOptions("royalty", &conf); err != nil {
		return errors.Wrap(err, "read configuration")
	}
	if conf.Metadata == nil {
		conf.Metadata = &weave.Metadata{Schema: 1}
	}
	if conf.PlatformFeeBps == 0 {
		conf.PlatformFeeBps = defaultPlatformFeeBps
	}
	if err := gconf.Save(kv, "royalty", &conf); err != nil {
		return errors.Wrap(err, "cannot save configuration")
	}

	var works []struct {
		Title             string          `json:"title"`
		Creator           weave.Address   `json:"creator"`
		Collaborators     []weave.Address `json:"collaborators"`
		PercentagesBps    []int32         `json:"percentages_bps"`
		GovernanceEnabled bool            `json:"governance_enabled"`
	}
	if err := opts.ReadOptions("royalty", &works); err != nil {
		return errors.Wrap(err, "cannot load works")
	}

	workBucket := NewWorkBucket()
	shareBucket := NewShareBucket()
	ledgerBucket := NewLedgerBucket()
	for i, w := range works {
		if len(w.PercentagesBps) != len(w.Collaborators) {
			return errors.Wrapf(ErrPercentage, "work #%d percentage count mismatch", i)
		}
		if err := validatePercentages(w.PercentagesBps, ErrPercentage); err != nil {
			return errors.Wrapf(err, "work #%d", i)
		}
		work := Work{
			Metadata:          &weave.Metadata{Schema: 1},
			Title:             w.Title,
			Creator:           w.Creator,
			Collaborators:     w.Collaborators,
			Status:            Work_Active,
			GovernanceEnabled: w.GovernanceEnabled,
		}
		key, err := workBucket.Put(kv, nil, &work)
		if err != nil {
			return errors.Wrapf(err, "cannot store #%d work", i)
		}
		for j, c := range w.Collaborators {
			share := Share{
				Metadata:      &weave.Metadata{Schema: 1},
				Collaborator:  c,
				PercentageBps: w.PercentagesBps[j],
			}
			if _, err := shareBucket.Put(kv, shareKey(key, c), &share); err != nil {
				return errors.Wrapf(err, "cannot store #%d work share", i)
			}
		}
		ledger := Ledger{
			Metadata: &weave.Metadata{Schema: 1},
		}
		if _, err := ledgerBucket.Put(kv, key, &ledger); err != nil {
			return errors.Wrapf(err, "cannot store #%d work ledger", i)
		}
	}
	return nil
}
