// Command chaind wires the block-production core into a runnable process:
// genesis ingestion, store, pool and engine construction, in that order,
// followed by the consensus engine's slot loop until shutdown. It is
// deliberately thin — no RPC surface, no gossip transport, no CLI beyond
// the run, genesis init and status subcommands below — those are out of
// the core's scope.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/consensus"
	"github.com/fewzfewz/scratchBlockchain/core/rawdb"
	"github.com/fewzfewz/scratchBlockchain/core/store"
	"github.com/fewzfewz/scratchBlockchain/core/txpool"
	"github.com/fewzfewz/scratchBlockchain/crypto"
	"github.com/fewzfewz/scratchBlockchain/genesis"
	"github.com/fewzfewz/scratchBlockchain/log"
	"github.com/fewzfewz/scratchBlockchain/params"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/crypto/ed25519"
)

func main() {
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Debug(fmt.Sprintf(format, args...))
	}))
	defer undo()
	if err != nil {
		log.Warn("failed to set GOMAXPROCS from cgroup limits", "err", err)
	}

	app := &cli.App{
		Name:  "chaind",
		Usage: "run or bootstrap a scratchBlockchain validator node",
		Commands: []*cli.Command{
			runCommand,
			genesisCommand,
			statusCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Crit("chaind exiting", "err", err)
	}
}

var dataDirFlag = &cli.StringFlag{
	Name:  "datadir",
	Usage: "directory holding the node's pebble data store",
	Value: "./chaindata",
}

var genesisFlag = &cli.StringFlag{
	Name:  "genesis",
	Usage: "path to the genesis YAML specification",
	Value: "./genesis.yaml",
}

var configFlag = &cli.StringFlag{
	Name:  "config",
	Usage: "path to the node's TOML configuration file",
}

var keyFlag = &cli.StringFlag{
	Name:  "nodekey",
	Usage: "path to this validator's 64-byte hex-encoded Ed25519 secret key",
}

var genesisCommand = &cli.Command{
	Name:  "genesis",
	Usage: "genesis-file operations",
	Subcommands: []*cli.Command{
		{
			Name:  "init",
			Usage: "write the genesis block into a fresh data directory",
			Flags: []cli.Flag{dataDirFlag, genesisFlag},
			Action: func(c *cli.Context) error {
				spec, err := genesis.Load(c.String(genesisFlag.Name))
				if err != nil {
					return err
				}
				db, err := rawdb.OpenPebble(c.String(dataDirFlag.Name))
				if err != nil {
					return fmt.Errorf("chaind: open store: %w", err)
				}
				defer db.Close()
				st, err := store.Open(db)
				if err != nil {
					return err
				}
				if err := genesis.Init(st, spec); err != nil {
					return err
				}
				log.Info("genesis written", "chain_id", spec.ChainID, "validators", len(spec.Validators))
				return nil
			},
		},
	},
}

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "run the consensus engine against an initialized data directory",
	Flags: []cli.Flag{dataDirFlag, genesisFlag, configFlag, keyFlag},
	Action: runNode,
}

func runNode(c *cli.Context) error {
	cfg := params.Default()
	if path := c.String(configFlag.Name); path != "" {
		loaded, err := params.Load(path)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	consensusCfg, err := cfg.ToConsensusConfig()
	if err != nil {
		return fmt.Errorf("chaind: config: %w", err)
	}

	spec, err := genesis.Load(c.String(genesisFlag.Name))
	if err != nil {
		return err
	}
	validators, err := spec.ValidatorSet()
	if err != nil {
		return err
	}

	db, err := rawdb.OpenPebble(c.String(dataDirFlag.Name))
	if err != nil {
		return fmt.Errorf("chaind: open store: %w", err)
	}
	defer db.Close()

	st, err := store.Open(db)
	if err != nil {
		return err
	}
	if _, ok := st.LatestHeight(); !ok {
		if err := genesis.Init(st, spec); err != nil {
			return fmt.Errorf("chaind: ingest genesis: %w", err)
		}
		log.Info("genesis ingested on empty store")
	}

	secretKey, self, err := loadOrGenerateKey(c.String(keyFlag.Name))
	if err != nil {
		return err
	}

	pool := txpool.New(txpool.Config{
		MaxCapacity:  consensusCfg.PoolCapacity,
		MaxPerSender: consensusCfg.PoolPerSender,
		MinFeePerGas: consensusCfg.MinFeePerGas,
	}, st)

	executor := consensus.NewValueTransferExecutor()
	engine := consensus.NewEngine(consensusCfg, validators, self, secretKey, st, pool, executor, nil, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("chaind starting", "self", self.Hex(), "slot", engine.Slot())
	if err := engine.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info("chaind shutdown complete", "slot", engine.Slot())
	return nil
}

var statusCommand = &cli.Command{
	Name:  "status",
	Usage: "print chain height and the active validator set for a data directory",
	Flags: []cli.Flag{dataDirFlag, genesisFlag},
	Action: func(c *cli.Context) error {
		db, err := rawdb.OpenPebble(c.String(dataDirFlag.Name))
		if err != nil {
			return fmt.Errorf("chaind: open store: %w", err)
		}
		defer db.Close()
		st, err := store.Open(db)
		if err != nil {
			return err
		}

		spec, err := genesis.Load(c.String(genesisFlag.Name))
		if err != nil {
			return err
		}
		validators, err := spec.ValidatorSet()
		if err != nil {
			return err
		}

		latest, _ := st.LatestHeight()
		fmt.Printf("latest_height=%d finalized_height=%d chain_id=%d\n", latest, st.FinalizedHeight(), spec.ChainID)

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"#", "address", "stake", "commission (ppm)"})
		for i, v := range validators.Validators {
			table.Append([]string{
				fmt.Sprintf("%d", i),
				v.Address.Hex(),
				v.Stake.String(),
				fmt.Sprintf("%d", v.CommissionRatePermille),
			})
		}
		table.Render()
		return nil
	},
}

// loadOrGenerateKey reads a 64-byte hex-encoded Ed25519 secret key from
// path, or — when path is empty — generates an ephemeral one for a
// single-node local run. A production deployment always passes --nodekey;
// this fallback only exists so `chaind run` is usable without one.
func loadOrGenerateKey(path string) (ed25519.PrivateKey, zondcommon.Address, error) {
	var secret ed25519.PrivateKey
	if path == "" {
		pub, sk, err := crypto.GenerateKeypair()
		if err != nil {
			return nil, zondcommon.Address{}, fmt.Errorf("chaind: generate ephemeral key: %w", err)
		}
		return sk, crypto.AddressFromPublicKey(pub), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zondcommon.Address{}, fmt.Errorf("chaind: read nodekey %s: %w", path, err)
	}
	raw, err := hex.DecodeString(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(string(data)), "0x")))
	if err != nil || len(raw) != ed25519.PrivateKeySize {
		return nil, zondcommon.Address{}, fmt.Errorf("chaind: nodekey %s: want %d hex-encoded bytes", path, ed25519.PrivateKeySize)
	}
	secret = ed25519.PrivateKey(raw)
	pub, err := crypto.PublicKeyFromBytes(secret.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, zondcommon.Address{}, fmt.Errorf("chaind: derive public key: %w", err)
	}
	return secret, crypto.AddressFromPublicKey(pub), nil
}
