package royaltyd

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/iov-one/royalty/x/royalty"
	"github.com/iov-one/royalty/x/workgov"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/commands/server"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/x/cash"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode
//
// You can set the payment ticker and the address of the account
// as optional arguments.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := "IOV"
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsCC(ticker) {
			return nil, fmt.Errorf("invalid ticker %s", ticker)
		}
	}

	var addr string
	if len(args) > 1 {
		addr = args[1]
	} else {
		// if no address provided, auto-generate one
		// and print out a recovery phrase
		bz, phrase, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = hex.EncodeToString(bz)
		fmt.Println(phrase)
	}

	opts := fmt.Sprintf(`
	  {
	    "cash": [
	      {
	        "address": "%s",
	        "coins": [
	          {"whole": 123456789, "ticker": "%s"}
	        ]
	      }
	    ],
	    "conf": {
	      "cash": {
	        "collector_address": "%s",
	        "minimal_fee": {}
	      },
	      "migration": {
	        "admin": "%s"
	      },
	      "royalty": {
	        "owner": "%s",
	        "fee_collector": "%s",
	        "payment_ticker": "%s",
	        "platform_fee_bps": 250
	      },
	      "workgov": {
	        "owner": "%s",
	        "voting_period": 864000
	      }
	    },
	    "initialize_schema": [
	      {"ver": 1, "pkg": "cash"},
	      {"ver": 1, "pkg": "sigs"},
	      {"ver": 1, "pkg": "royalty"},
	      {"ver": 1, "pkg": "workgov"}
	    ],
	    "royalty": []
	  }
	`, addr, ticker, addr, addr, addr, addr, ticker, addr)
	return []byte(opts), nil
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(options *server.Options) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if options.Home != "" {
		dbPath = filepath.Join(options.Home, "royalty.db")
	}

	stack := Stack()
	application, err := Application("royaltyd", stack, TxDecoder, dbPath, options.Debug)
	if err != nil {
		return nil, err
	}
	application.WithInit(app.ChainInitializers(
		&migration.Initializer{},
		&cash.Initializer{},
		&royalty.Initializer{},
		&workgov.Initializer{},
	))

	// set the logger and return
	application.WithLogger(options.Logger)
	return application, nil
}

// InlineApp instantiates an application running on top of the given
// store. It is used by the retry command to replay a block.
func InlineApp(kv weave.CommitKVStore, logger log.Logger, debug bool) abci.Application {
	stack := Stack()
	ctx := context.Background()
	store := app.NewStoreApp("royaltyd", kv, QueryRouter(), ctx)
	base := app.NewBaseApp(store, TxDecoder, stack, nil, debug)
	base.WithLogger(logger)
	return base
}

type output struct {
	Pubkey *crypto.PublicKey  `json:"pub_key"`
	Secret *crypto.PrivateKey `json:"secret"`
}

// GenerateCoinKey returns the address of a public key,
// along with a json representation of the keys.
// You can give coins to this address and
// import the keys in a client to use them
func GenerateCoinKey() (weave.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()
	addr := pubKey.Address()

	out := output{Pubkey: pubKey, Secret: privKey}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", err
	}

	return addr, string(keys), nil
}
