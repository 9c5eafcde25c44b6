package royalty

import (
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestController(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()

	db := store.MemStore()
	migration.MustInitPkg(db, "royalty")

	work := Work{
		Metadata:      &weave.Metadata{Schema: 1},
		Title:         "Night Train",
		Creator:       alice,
		Collaborators: []weave.Address{alice, bob},
		Status:        Work_Active,
	}
	workID, err := NewWorkBucket().Put(db, nil, &work)
	assert.Nil(t, err)
	shares := NewShareBucket()
	_, err = shares.Put(db, shareKey(workID, alice), &Share{
		Metadata:      &weave.Metadata{Schema: 1},
		Collaborator:  alice,
		PercentageBps: 7500,
	})
	assert.Nil(t, err)
	_, err = NewLedgerBucket().Put(db, workID, &Ledger{
		Metadata:      &weave.Metadata{Schema: 1},
		TotalReceived: 1000,
		Pending:       900,
	})
	assert.Nil(t, err)

	ctrl := NewController()

	got, err := ctrl.GetWork(db, workID)
	assert.Nil(t, err)
	assert.Equal(t, "Night Train", got.Title)
	if _, err := ctrl.GetWork(db, weavetest.SequenceID(42)); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}

	share, err := ctrl.GetShare(db, workID, alice)
	assert.Nil(t, err)
	assert.Equal(t, int32(7500), share.PercentageBps)
	if _, err := ctrl.GetShare(db, workID, bob); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}

	ledger, err := ctrl.GetLedger(db, workID)
	assert.Nil(t, err)
	assert.Equal(t, int64(900), ledger.Pending)

	if err := ctrl.SetPercentage(db, workID, alice, 10001); !ErrPercentage.Is(err) {
		t.Fatalf("want percentage error, got %+v", err)
	}
	assert.Nil(t, ctrl.SetPercentage(db, workID, alice, 2500))
	share, err = ctrl.GetShare(db, workID, alice)
	assert.Nil(t, err)
	assert.Equal(t, int32(2500), share.PercentageBps)
}
