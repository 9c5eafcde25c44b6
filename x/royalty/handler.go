package royalty

import (
	"encoding/binary"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	createWorkCost          = 0
	receivePaymentCost      = 0
	distributePerPayoutCost = 0
)

// RegisterQuery registers royalty buckets for querying.
func RegisterQuery(qr weave.QueryRouter) {
	NewWorkBucket().Register("works", qr)
	NewShareBucket().Register("shares", qr)
	NewLedgerBucket().Register("ledgers", qr)
}

// CashController allows to manage coins stored by the accounts without the
// need to directly access the bucket.
// Required functionality is implemented by the x/cash extension.
type CashController interface {
	Balance(weave.KVStore, weave.Address) (coin.Coins, error)
	MoveCoins(weave.KVStore, weave.Address, weave.Address, coin.Coin) error
}

// RegisterRoutes registers handlers for royalty message processing.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, ctrl CashController) {
	r = migration.SchemaMigratingRegistry("royalty", r)
	works := NewWorkBucket()
	shares := NewShareBucket()
	ledgers := NewLedgerBucket()
	r.Handle(&CreateWorkMsg{}, &createWorkHandler{
		auth:    auth,
		works:   works,
		shares:  shares,
		ledgers: ledgers,
	})
	r.Handle(&ReceivePaymentMsg{}, &receivePaymentHandler{
		auth:    auth,
		works:   works,
		ledgers: ledgers,
		ctrl:    ctrl,
	})
	r.Handle(&DistributeMsg{}, &distributeHandler{
		auth:    auth,
		works:   works,
		shares:  shares,
		ledgers: ledgers,
		ctrl:    ctrl,
	})
	r.Handle(&UpdateConfigurationMsg{},
		gconf.NewUpdateConfigurationHandler("royalty", &Configuration{}, auth, migration.CurrentAdmin))
}

type createWorkHandler struct {
	auth    x.Authenticator
	works   orm.ModelBucket
	shares  orm.ModelBucket
	ledgers orm.ModelBucket
}

func (h *createWorkHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: createWorkCost}, nil
}

func (h *createWorkHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	creator := mainSigner(ctx, h.auth).Address()

	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}

	key, err := h.works.Put(db, nil, &Work{
		Metadata:          &weave.Metadata{Schema: 1},
		Title:             msg.Title,
		Creator:           creator,
		Collaborators:     msg.Collaborators,
		TotalRevenue:      0,
		Status:            Work_Active,
		GovernanceEnabled: msg.GovernanceEnabled,
		CreatedAt:         weave.AsUnixTime(now),
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot store work")
	}

	for i, c := range msg.Collaborators {
		share := &Share{
			Metadata:      &weave.Metadata{Schema: 1},
			Collaborator:  c,
			PercentageBps: msg.PercentagesBps[i],
		}
		if _, err := h.shares.Put(db, shareKey(key, c), share); err != nil {
			return nil, errors.Wrapf(err, "cannot store share %d", i)
		}
	}

	ledger := &Ledger{
		Metadata: &weave.Metadata{Schema: 1},
	}
	if _, err := h.ledgers.Put(db, key, ledger); err != nil {
		return nil, errors.Wrap(err, "cannot store ledger")
	}

	res := weave.DeliverResult{
		Data: key,
		Tags: []common.KVPair{
			{Key: []byte("work-id"), Value: key},
			{Key: []byte("action"), Value: []byte("create-work")},
		},
	}
	return &res, nil
}

func (h *createWorkHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*CreateWorkMsg, error) {
	var msg CreateWorkMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if mainSigner(ctx, h.auth) == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "creator signature required")
	}
	return &msg, nil
}

type receivePaymentHandler struct {
	auth    x.Authenticator
	works   orm.ModelBucket
	ledgers orm.ModelBucket
	ctrl    CashController
}

func (h *receivePaymentHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: receivePaymentCost}, nil
}

func (h *receivePaymentHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	var work Work
	if err := h.works.One(db, msg.WorkID, &work); err != nil {
		return nil, errors.Wrap(err, "cannot get work")
	}

	conf := mustLoadConf(db)

	fee, err := Payout(msg.Amount, conf.PlatformFeeBps)
	if err != nil {
		return nil, errors.Wrap(err, "cannot compute platform fee")
	}
	net := msg.Amount - fee

	payer := mainSigner(ctx, h.auth).Address()
	racc := RevenueAccount(msg.WorkID)

	// The full payment is collected from the payer first. The platform fee
	// is then carved out of the revenue account, so that a failing fee
	// transfer cannot leave the payer charged.
	if err := h.ctrl.MoveCoins(db, payer, racc, payment(msg.Amount, &conf)); err != nil {
		return nil, errors.Wrap(err, "cannot collect payment")
	}
	if fee > 0 {
		if err := h.ctrl.MoveCoins(db, racc, conf.FeeCollector, payment(fee, &conf)); err != nil {
			return nil, errors.Wrap(err, "cannot collect platform fee")
		}
	}

	var ledger Ledger
	if err := h.ledgers.One(db, msg.WorkID, &ledger); err != nil {
		return nil, errors.Wrap(err, "cannot get ledger")
	}
	if ledger.TotalReceived > coin.MaxInt-msg.Amount {
		return nil, errors.Wrap(errors.ErrOverflow, "total received")
	}
	ledger.TotalReceived += msg.Amount
	ledger.Pending += net
	if _, err := h.ledgers.Put(db, msg.WorkID, &ledger); err != nil {
		return nil, errors.Wrap(err, "cannot store ledger")
	}

	work.TotalRevenue += msg.Amount
	if _, err := h.works.Put(db, msg.WorkID, &work); err != nil {
		return nil, errors.Wrap(err, "cannot store work")
	}

	res := weave.DeliverResult{
		Data: sequenceData(net),
		Tags: []common.KVPair{
			{Key: []byte("work-id"), Value: msg.WorkID},
			{Key: []byte("action"), Value: []byte("receive-payment")},
		},
	}
	return &res, nil
}

func (h *receivePaymentHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ReceivePaymentMsg, error) {
	var msg ReceivePaymentMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if mainSigner(ctx, h.auth) == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "payer signature required")
	}
	var work Work
	if err := h.works.One(db, msg.WorkID, &work); err != nil {
		return nil, errors.Wrap(err, "cannot get work")
	}
	if work.Status != Work_Active {
		return nil, errors.Wrapf(ErrWorkLocked, "work is %s", work.Status)
	}
	return &msg, nil
}

type distributeHandler struct {
	auth    x.Authenticator
	works   orm.ModelBucket
	shares  orm.ModelBucket
	ledgers orm.ModelBucket
	ctrl    CashController
}

func (h *distributeHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	var work Work
	if err := h.works.One(db, msg.WorkID, &work); err != nil {
		return nil, errors.Wrap(err, "cannot get work")
	}
	res := weave.CheckResult{
		GasAllocated: distributePerPayoutCost * int64(len(work.Collaborators)),
	}
	return &res, nil
}

func (h *distributeHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	var work Work
	if err := h.works.One(db, msg.WorkID, &work); err != nil {
		return nil, errors.Wrap(err, "cannot get work")
	}
	var ledger Ledger
	if err := h.ledgers.One(db, msg.WorkID, &ledger); err != nil {
		return nil, errors.Wrap(err, "cannot get ledger")
	}
	if ledger.Pending == 0 {
		return nil, errors.Wrap(ErrNoRevenue, "nothing to distribute")
	}

	conf := mustLoadConf(db)

	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}

	// Every collaborator is paid their cut of the whole pending amount,
	// in collaborator list order. A single failing transfer fails the
	// whole distribution. Shares too small to produce a single unit are
	// skipped, so up to one unit less than the number of collaborators
	// can be left behind on the revenue account.
	racc := RevenueAccount(msg.WorkID)
	for _, c := range work.Collaborators {
		var share Share
		if err := h.shares.One(db, shareKey(msg.WorkID, c), &share); err != nil {
			return nil, errors.Wrapf(err, "cannot get share of %q", c)
		}
		amount, err := Payout(ledger.Pending, share.PercentageBps)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot compute payout of %q", c)
		}
		if amount == 0 {
			continue
		}
		if err := h.ctrl.MoveCoins(db, racc, c, payment(amount, &conf)); err != nil {
			return nil, errors.Wrapf(err, "cannot pay out to %q", c)
		}
		share.Earned += amount
		share.LastWithdrawal = weave.AsUnixTime(now)
		if _, err := h.shares.Put(db, shareKey(msg.WorkID, c), &share); err != nil {
			return nil, errors.Wrapf(err, "cannot store share of %q", c)
		}
	}

	distributed := ledger.Pending
	ledger.TotalDistributed += distributed
	ledger.Pending = 0
	ledger.LastDistribution = weave.AsUnixTime(now)
	if _, err := h.ledgers.Put(db, msg.WorkID, &ledger); err != nil {
		return nil, errors.Wrap(err, "cannot store ledger")
	}

	res := weave.DeliverResult{
		Data: sequenceData(distributed),
		Tags: []common.KVPair{
			{Key: []byte("work-id"), Value: msg.WorkID},
			{Key: []byte("action"), Value: []byte("distribute")},
		},
	}
	return &res, nil
}

func (h *distributeHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*DistributeMsg, error) {
	var msg DistributeMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	var work Work
	if err := h.works.One(db, msg.WorkID, &work); err != nil {
		return nil, errors.Wrap(err, "cannot get work")
	}
	return &msg, nil
}

// mainSigner returns the first condition the transaction is authenticated
// with, or nil when there is none.
func mainSigner(ctx weave.Context, auth x.Authenticator) weave.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// payment expresses an amount of currency units as a coin of the configured
// payment ticker.
func payment(amount int64, conf *Configuration) coin.Coin {
	return coin.NewCoin(amount, 0, conf.PaymentTicker)
}

func sequenceData(n int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(n))
	return b
}
