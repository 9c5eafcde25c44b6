package royalty

import (
	"context"
	"testing"
	"time"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/x/cash"
)

func TestHandlers(t *testing.T) {
	creator := weavetest.NewCondition()
	payer := weavetest.NewCondition()
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()
	carol := weavetest.NewCondition().Address()
	collector := weavetest.NewCondition().Address()

	rt := app.NewRouter()
	auth := &weavetest.CtxAuth{Key: "auth"}
	ctrl := cash.NewController(cash.NewBucket())
	RegisterRoutes(rt, auth, ctrl)

	// In below cases, weavetest.SequenceID(1) is the ID of the first work
	// created. Sequence is reset for each test case.
	workID := weavetest.SequenceID(1)

	cases := map[string]struct {
		// prepareAccounts is used to set the funds for each declared
		// account, before executing actions.
		prepareAccounts []account
		// actions is a set of messages that will be handled by the
		// router. Successfully handled messages are altering the
		// state.
		actions []action
		// wantAccounts is used to declare desired state of each
		// account after all actions are applied.
		wantAccounts []account
	}{
		"work creation requires a valid royalty split": {
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &CreateWorkMsg{
						Metadata:       &weave.Metadata{Schema: 1},
						Title:          "Silent Running",
						Collaborators:  []weave.Address{alice, bob, carol},
						PercentagesBps: []int32{4000, 3500, 2000},
					},
					blocksize:    100,
					wantCheckErr: ErrPercentage,
				},
				{
					conditions: []weave.Condition{creator},
					msg: &CreateWorkMsg{
						Metadata:       &weave.Metadata{Schema: 1},
						Title:          "Silent Running",
						Collaborators:  []weave.Address{alice, bob, carol},
						PercentagesBps: []int32{4000, 3500},
					},
					blocksize:    101,
					wantCheckErr: ErrPercentage,
				},
				{
					conditions: []weave.Condition{creator},
					msg: &CreateWorkMsg{
						Metadata:       &weave.Metadata{Schema: 1},
						Title:          "Silent Running",
						Collaborators:  []weave.Address{alice, alice},
						PercentagesBps: []int32{5000, 5000},
					},
					blocksize:    102,
					wantCheckErr: ErrCollaborators,
				},
				{
					conditions: []weave.Condition{creator},
					msg: &CreateWorkMsg{
						Metadata:       &weave.Metadata{Schema: 1},
						Title:          "Silent Running",
						Collaborators:  nil,
						PercentagesBps: nil,
					},
					blocksize:    103,
					wantCheckErr: ErrCollaborators,
				},
				{
					conditions: []weave.Condition{creator},
					msg: &CreateWorkMsg{
						Metadata:       &weave.Metadata{Schema: 1},
						Title:          "",
						Collaborators:  []weave.Address{alice, bob, carol},
						PercentagesBps: []int32{4000, 3500, 2500},
					},
					blocksize:    104,
					wantCheckErr: errors.ErrMsg,
				},
				{
					conditions: []weave.Condition{creator},
					msg: &CreateWorkMsg{
						Metadata:       &weave.Metadata{Schema: 1},
						Title:          "Silent Running",
						Collaborators:  []weave.Address{alice, bob, carol},
						PercentagesBps: []int32{4000, 3500, 2500},
					},
					blocksize: 105,
				},
			},
		},
		"work creation requires a signature": {
			actions: []action{
				{
					conditions: nil,
					msg: &CreateWorkMsg{
						Metadata:       &weave.Metadata{Schema: 1},
						Title:          "Silent Running",
						Collaborators:  []weave.Address{alice, bob},
						PercentagesBps: []int32{5000, 5000},
					},
					blocksize:    100,
					wantCheckErr: errors.ErrUnauthorized,
				},
			},
		},
		"payment to an unknown work fails": {
			prepareAccounts: []account{
				{address: payer.Address(), coins: coin.Coins{coin.NewCoinp(100, 0, "IOV")}},
			},
			wantAccounts: []account{
				{address: payer.Address(), coins: coin.Coins{coin.NewCoinp(100, 0, "IOV")}},
			},
			actions: []action{
				{
					conditions: []weave.Condition{payer},
					msg: &ReceivePaymentMsg{
						Metadata: &weave.Metadata{Schema: 1},
						WorkID:   []byte("work-with-this-id-does-not-exist"),
						Amount:   100,
					},
					blocksize:      100,
					wantCheckErr:   errors.ErrNotFound,
					wantDeliverErr: errors.ErrNotFound,
				},
			},
		},
		"payment splits into platform fee and pending revenue": {
			prepareAccounts: []account{
				{address: payer.Address(), coins: coin.Coins{coin.NewCoinp(100000000, 0, "IOV")}},
			},
			wantAccounts: []account{
				{address: RevenueAccount(workID), coins: coin.Coins{coin.NewCoinp(97500000, 0, "IOV")}},
				{address: collector, coins: coin.Coins{coin.NewCoinp(2500000, 0, "IOV")}},
			},
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &CreateWorkMsg{
						Metadata:       &weave.Metadata{Schema: 1},
						Title:          "Silent Running",
						Collaborators:  []weave.Address{alice, bob, carol},
						PercentagesBps: []int32{4000, 3500, 2500},
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{payer},
					msg: &ReceivePaymentMsg{
						Metadata: &weave.Metadata{Schema: 1},
						WorkID:   workID,
						Amount:   100000000,
					},
					blocksize: 101,
				},
			},
		},
		"payment fails when the payer cannot afford it": {
			prepareAccounts: []account{
				{address: payer.Address(), coins: coin.Coins{coin.NewCoinp(10, 0, "IOV")}},
			},
			wantAccounts: []account{
				{address: payer.Address(), coins: coin.Coins{coin.NewCoinp(10, 0, "IOV")}},
			},
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &CreateWorkMsg{
						Metadata:       &weave.Metadata{Schema: 1},
						Title:          "Silent Running",
						Collaborators:  []weave.Address{alice, bob},
						PercentagesBps: []int32{5000, 5000},
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{payer},
					msg: &ReceivePaymentMsg{
						Metadata: &weave.Metadata{Schema: 1},
						WorkID:   workID,
						Amount:   100000,
					},
					blocksize:      101,
					wantDeliverErr: errors.ErrAmount,
				},
			},
		},
		"distribution pays every collaborator their cut": {
			prepareAccounts: []account{
				{address: payer.Address(), coins: coin.Coins{coin.NewCoinp(100000000, 0, "IOV")}},
			},
			wantAccounts: []account{
				{address: alice, coins: coin.Coins{coin.NewCoinp(39000000, 0, "IOV")}},
				{address: bob, coins: coin.Coins{coin.NewCoinp(34125000, 0, "IOV")}},
				{address: carol, coins: coin.Coins{coin.NewCoinp(24375000, 0, "IOV")}},
				{address: collector, coins: coin.Coins{coin.NewCoinp(2500000, 0, "IOV")}},
			},
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &CreateWorkMsg{
						Metadata:       &weave.Metadata{Schema: 1},
						Title:          "Silent Running",
						Collaborators:  []weave.Address{alice, bob, carol},
						PercentagesBps: []int32{4000, 3500, 2500},
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{payer},
					msg: &ReceivePaymentMsg{
						Metadata: &weave.Metadata{Schema: 1},
						WorkID:   workID,
						Amount:   100000000,
					},
					blocksize: 101,
				},
				{
					conditions: []weave.Condition{payer},
					msg: &DistributeMsg{
						Metadata: &weave.Metadata{Schema: 1},
						WorkID:   workID,
					},
					blocksize: 102,
				},
			},
		},
		"distribution without pending revenue fails": {
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &CreateWorkMsg{
						Metadata:       &weave.Metadata{Schema: 1},
						Title:          "Silent Running",
						Collaborators:  []weave.Address{alice, bob},
						PercentagesBps: []int32{5000, 5000},
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{payer},
					msg: &DistributeMsg{
						Metadata: &weave.Metadata{Schema: 1},
						WorkID:   workID,
					},
					blocksize:      101,
					wantDeliverErr: ErrNoRevenue,
				},
			},
		},
		"rounding residue stays on the revenue account": {
			prepareAccounts: []account{
				{address: payer.Address(), coins: coin.Coins{coin.NewCoinp(103, 0, "IOV")}},
			},
			wantAccounts: []account{
				// A 103 unit payment is charged a 2 unit fee. Of the
				// 101 units pending each collaborator is paid 33,
				// keeping 2 units back.
				{address: RevenueAccount(workID), coins: coin.Coins{coin.NewCoinp(2, 0, "IOV")}},
				{address: alice, coins: coin.Coins{coin.NewCoinp(33, 0, "IOV")}},
				{address: bob, coins: coin.Coins{coin.NewCoinp(33, 0, "IOV")}},
				{address: carol, coins: coin.Coins{coin.NewCoinp(33, 0, "IOV")}},
				{address: collector, coins: coin.Coins{coin.NewCoinp(2, 0, "IOV")}},
			},
			actions: []action{
				{
					conditions: []weave.Condition{creator},
					msg: &CreateWorkMsg{
						Metadata:       &weave.Metadata{Schema: 1},
						Title:          "Silent Running",
						Collaborators:  []weave.Address{alice, bob, carol},
						PercentagesBps: []int32{3333, 3333, 3334},
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{payer},
					msg: &ReceivePaymentMsg{
						Metadata: &weave.Metadata{Schema: 1},
						WorkID:   workID,
						Amount:   103,
					},
					blocksize: 101,
				},
				{
					conditions: []weave.Condition{payer},
					msg: &DistributeMsg{
						Metadata: &weave.Metadata{Schema: 1},
						WorkID:   workID,
					},
					blocksize: 102,
				},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()

			migration.MustInitPkg(db, "cash", "royalty")

			conf := Configuration{
				Metadata:       &weave.Metadata{Schema: 1},
				FeeCollector:   collector,
				PaymentTicker:  "IOV",
				PlatformFeeBps: 250,
			}
			if err := gconf.Save(db, "royalty", &conf); err != nil {
				t.Fatalf("cannot save configuration: %s", err)
			}

			for _, a := range tc.prepareAccounts {
				for _, c := range a.coins {
					if err := ctrl.CoinMint(db, a.address, *c); err != nil {
						t.Fatalf("cannot issue %q to %s: %s", c, a.address, err)
					}
				}
			}

			for i, a := range tc.actions {
				cache := db.CacheWrap()
				if _, err := rt.Check(a.ctx(), cache, a.tx()); !a.wantCheckErr.Is(err) {
					t.Logf("want: %+v", a.wantCheckErr)
					t.Logf(" got: %+v", err)
					t.Fatalf("action %d check (%T)", i, a.msg)
				}
				cache.Discard()
				if a.wantCheckErr != nil {
					// Failed checks are causing the message to be ignored.
					continue
				}

				// Deliver on a cache so that a failed delivery can be
				// rolled back, the same way the savepoint decorator
				// does it.
				cache = db.CacheWrap()
				_, err := rt.Deliver(a.ctx(), cache, a.tx())
				if !a.wantDeliverErr.Is(err) {
					t.Logf("want: %+v", a.wantDeliverErr)
					t.Logf(" got: %+v", err)
					t.Fatalf("action %d delivery (%T)", i, a.msg)
				}
				if err != nil {
					cache.Discard()
				} else if err := cache.Write(); err != nil {
					t.Fatalf("action %d write cache: %s", i, err)
				}
			}

			for i, a := range tc.wantAccounts {
				coins, err := ctrl.Balance(db, a.address)
				if err != nil {
					t.Fatalf("cannot get %+v balance: %s", a, err)
				}
				if !coins.Equals(a.coins) {
					t.Logf("want: %+v", a.coins)
					t.Logf("got: %+v", coins)
					t.Errorf("unexpected coins for account #%d (%s)", i, a.address)
				}
			}
		})
	}
}

// account represents a single account state - the coins/funds it holds.
type account struct {
	address weave.Address
	coins   coin.Coins
}

// action represents a single request call that is handled by a handler.
type action struct {
	conditions     []weave.Condition
	msg            weave.Msg
	blocksize      int64
	wantCheckErr   *errors.Error
	wantDeliverErr *errors.Error
}

func (a *action) tx() weave.Tx {
	return &weavetest.Tx{Msg: a.msg}
}

func (a *action) ctx() weave.Context {
	ctx := weave.WithHeight(context.Background(), a.blocksize)
	ctx = weave.WithChainID(ctx, "testchain-123")
	ctx = weave.WithBlockTime(ctx, time.Unix(1500000000+a.blocksize, 0))
	auth := &weavetest.CtxAuth{Key: "auth"}
	return auth.SetConditions(ctx, a.conditions...)
}

func TestPaymentUpdatesLedger(t *testing.T) {
	creator := weavetest.NewCondition()
	payer := weavetest.NewCondition()
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()

	rt := app.NewRouter()
	auth := &weavetest.CtxAuth{Key: "auth"}
	ctrl := cash.NewController(cash.NewBucket())
	RegisterRoutes(rt, auth, ctrl)

	db := store.MemStore()
	migration.MustInitPkg(db, "cash", "royalty")

	conf := Configuration{
		Metadata:       &weave.Metadata{Schema: 1},
		FeeCollector:   weavetest.NewCondition().Address(),
		PaymentTicker:  "IOV",
		PlatformFeeBps: 250,
	}
	if err := gconf.Save(db, "royalty", &conf); err != nil {
		t.Fatalf("cannot save configuration: %s", err)
	}
	if err := ctrl.CoinMint(db, payer.Address(), coin.NewCoin(200000000, 0, "IOV")); err != nil {
		t.Fatalf("cannot mint: %s", err)
	}

	actions := []action{
		{
			conditions: []weave.Condition{creator},
			msg: &CreateWorkMsg{
				Metadata:       &weave.Metadata{Schema: 1},
				Title:          "Silent Running",
				Collaborators:  []weave.Address{alice, bob},
				PercentagesBps: []int32{6000, 4000},
			},
			blocksize: 100,
		},
		{
			conditions: []weave.Condition{payer},
			msg: &ReceivePaymentMsg{
				Metadata: &weave.Metadata{Schema: 1},
				WorkID:   weavetest.SequenceID(1),
				Amount:   100000000,
			},
			blocksize: 101,
		},
		// A second payment is accumulated, there is no payment
		// deduplication.
		{
			conditions: []weave.Condition{payer},
			msg: &ReceivePaymentMsg{
				Metadata: &weave.Metadata{Schema: 1},
				WorkID:   weavetest.SequenceID(1),
				Amount:   100000000,
			},
			blocksize: 102,
		},
	}
	for i, a := range actions {
		if _, err := rt.Deliver(a.ctx(), db, a.tx()); err != nil {
			t.Fatalf("action %d delivery: %s", i, err)
		}
	}

	var ledger Ledger
	if err := NewLedgerBucket().One(db, weavetest.SequenceID(1), &ledger); err != nil {
		t.Fatalf("cannot get ledger: %s", err)
	}
	if want := int64(200000000); ledger.TotalReceived != want {
		t.Errorf("want %d total received, got %d", want, ledger.TotalReceived)
	}
	if want := int64(195000000); ledger.Pending != want {
		t.Errorf("want %d pending, got %d", want, ledger.Pending)
	}
	if ledger.TotalDistributed != 0 {
		t.Errorf("want no distribution, got %d", ledger.TotalDistributed)
	}

	var work Work
	if err := NewWorkBucket().One(db, weavetest.SequenceID(1), &work); err != nil {
		t.Fatalf("cannot get work: %s", err)
	}
	if want := int64(200000000); work.TotalRevenue != want {
		t.Errorf("want %d total revenue, got %d", want, work.TotalRevenue)
	}
}

// A distribution must either pay every collaborator or none. When one of the
// transfers cannot be made the whole distribution is rolled back.
func TestDistributeAllOrNothing(t *testing.T) {
	creator := weavetest.NewCondition()
	payer := weavetest.NewCondition()
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()

	rt := app.NewRouter()
	auth := &weavetest.CtxAuth{Key: "auth"}
	ctrl := cash.NewController(cash.NewBucket())
	RegisterRoutes(rt, auth, ctrl)

	db := store.MemStore()
	migration.MustInitPkg(db, "cash", "royalty")

	conf := Configuration{
		Metadata:       &weave.Metadata{Schema: 1},
		FeeCollector:   weavetest.NewCondition().Address(),
		PaymentTicker:  "IOV",
		PlatformFeeBps: 250,
	}
	if err := gconf.Save(db, "royalty", &conf); err != nil {
		t.Fatalf("cannot save configuration: %s", err)
	}
	if err := ctrl.CoinMint(db, payer.Address(), coin.NewCoin(100000, 0, "IOV")); err != nil {
		t.Fatalf("cannot mint: %s", err)
	}

	setup := []action{
		{
			conditions: []weave.Condition{creator},
			msg: &CreateWorkMsg{
				Metadata:       &weave.Metadata{Schema: 1},
				Title:          "Silent Running",
				Collaborators:  []weave.Address{alice, bob},
				PercentagesBps: []int32{6000, 4000},
			},
			blocksize: 100,
		},
		{
			conditions: []weave.Condition{payer},
			msg: &ReceivePaymentMsg{
				Metadata: &weave.Metadata{Schema: 1},
				WorkID:   weavetest.SequenceID(1),
				Amount:   100000,
			},
			blocksize: 101,
		},
	}
	for i, a := range setup {
		if _, err := rt.Deliver(a.ctx(), db, a.tx()); err != nil {
			t.Fatalf("action %d delivery: %s", i, err)
		}
	}

	// Drain a part of the revenue account. 87500 units remain, enough for
	// the first payout of 58500 but not for the second one of 39000.
	racc := RevenueAccount(weavetest.SequenceID(1))
	if err := ctrl.MoveCoins(db, racc, weavetest.NewCondition().Address(), coin.NewCoin(10000, 0, "IOV")); err != nil {
		t.Fatalf("cannot drain revenue account: %s", err)
	}

	distribute := action{
		conditions: []weave.Condition{payer},
		msg: &DistributeMsg{
			Metadata: &weave.Metadata{Schema: 1},
			WorkID:   weavetest.SequenceID(1),
		},
		blocksize: 102,
	}
	// Deliver on a cache, the same way the savepoint decorator isolates a
	// failing transaction.
	cache := db.CacheWrap()
	if _, err := rt.Deliver(distribute.ctx(), cache, distribute.tx()); !errors.ErrAmount.Is(err) {
		t.Fatalf("want an insufficient funds failure, got %+v", err)
	}
	cache.Discard()

	// The first collaborator payout was within the rolled back
	// transaction. Nobody must be paid.
	for _, addr := range []weave.Address{alice, bob} {
		coins, err := ctrl.Balance(db, addr)
		if err != nil && !errors.ErrNotFound.Is(err) {
			t.Fatalf("cannot get balance of %s: %s", addr, err)
		}
		if len(coins) != 0 {
			t.Errorf("collaborator %s was paid %s", addr, coins)
		}
	}

	var ledger Ledger
	if err := NewLedgerBucket().One(db, weavetest.SequenceID(1), &ledger); err != nil {
		t.Fatalf("cannot get ledger: %s", err)
	}
	if want := int64(97500); ledger.Pending != want {
		t.Errorf("want %d still pending, got %d", want, ledger.Pending)
	}
	if ledger.TotalDistributed != 0 {
		t.Errorf("want no distribution, got %d", ledger.TotalDistributed)
	}
}

// A locked work must not accept payments.
func TestReceivePaymentLockedWork(t *testing.T) {
	creator := weavetest.NewCondition()
	payer := weavetest.NewCondition()
	alice := weavetest.NewCondition().Address()

	rt := app.NewRouter()
	auth := &weavetest.CtxAuth{Key: "auth"}
	ctrl := cash.NewController(cash.NewBucket())
	RegisterRoutes(rt, auth, ctrl)

	db := store.MemStore()
	migration.MustInitPkg(db, "cash", "royalty")

	conf := Configuration{
		Metadata:       &weave.Metadata{Schema: 1},
		FeeCollector:   weavetest.NewCondition().Address(),
		PaymentTicker:  "IOV",
		PlatformFeeBps: 250,
	}
	if err := gconf.Save(db, "royalty", &conf); err != nil {
		t.Fatalf("cannot save configuration: %s", err)
	}
	if err := ctrl.CoinMint(db, payer.Address(), coin.NewCoin(100000, 0, "IOV")); err != nil {
		t.Fatalf("cannot mint: %s", err)
	}

	create := action{
		conditions: []weave.Condition{creator},
		msg: &CreateWorkMsg{
			Metadata:       &weave.Metadata{Schema: 1},
			Title:          "Locked Grooves",
			Collaborators:  []weave.Address{alice},
			PercentagesBps: []int32{10000},
		},
		blocksize: 100,
	}
	if _, err := rt.Deliver(create.ctx(), db, create.tx()); err != nil {
		t.Fatalf("cannot create work: %s", err)
	}

	works := NewWorkBucket()
	workID := weavetest.SequenceID(1)
	var work Work
	if err := works.One(db, workID, &work); err != nil {
		t.Fatalf("cannot get work: %s", err)
	}
	work.Status = Work_Locked
	if _, err := works.Put(db, workID, &work); err != nil {
		t.Fatalf("cannot lock work: %s", err)
	}

	pay := action{
		conditions: []weave.Condition{payer},
		msg: &ReceivePaymentMsg{
			Metadata: &weave.Metadata{Schema: 1},
			WorkID:   workID,
			Amount:   100000,
		},
		blocksize: 101,
	}
	cache := db.CacheWrap()
	if _, err := rt.Check(pay.ctx(), cache, pay.tx()); !ErrWorkLocked.Is(err) {
		t.Fatalf("check: want a locked work failure, got %+v", err)
	}
	cache.Discard()
	if _, err := rt.Deliver(pay.ctx(), db, pay.tx()); !ErrWorkLocked.Is(err) {
		t.Fatalf("deliver: want a locked work failure, got %+v", err)
	}

	var ledger Ledger
	if err := NewLedgerBucket().One(db, workID, &ledger); err != nil {
		t.Fatalf("cannot get ledger: %s", err)
	}
	if ledger.TotalReceived != 0 {
		t.Errorf("want no payment recorded, got %d received", ledger.TotalReceived)
	}
	if ledger.Pending != 0 {
		t.Errorf("want nothing pending, got %d", ledger.Pending)
	}
}
