package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"gorm.io/gorm"

	"voting-monitor/internal/collector"
	"voting-monitor/internal/config"
	"voting-monitor/internal/contract"
	dbpkg "voting-monitor/internal/db"
	"voting-monitor/internal/logger"
	"voting-monitor/internal/network"
	"voting-monitor/internal/reconcile"
	"voting-monitor/internal/roles"
	"voting-monitor/internal/wallet"
)

const (
	// UpdateChannelBufferSize is the controller subscription buffer feeding the TUI.
	UpdateChannelBufferSize = 64
	// TUICloseDelay gives the TUI time to restore the terminal after its channel closes.
	TUICloseDelay = 200 * time.Millisecond
)

// app is everything the commands share once wiring is done.
type app struct {
	cfg      config.Config
	log      *logger.Logger
	registry *network.Registry
	binding  network.Binding

	client  *ethclient.Client
	gormDB  *gorm.DB
	archive *dbpkg.Archive
	ctrl    *reconcile.Controller
	watcher *roles.PhaseWatcher
}

// loadRegistry builds the network bindings from the defaults, the optional manifest and the
// environment overrides.
func loadRegistry(cfg config.Config) (*network.Registry, error) {
	registry := network.Defaults(cfg.SepoliaRPCURL)
	if cfg.NetworksFile != "" {
		if _, err := os.Stat(cfg.NetworksFile); err == nil {
			manifest, err := network.LoadManifest(cfg.NetworksFile)
			if err != nil {
				return nil, err
			}
			registry.Merge(manifest)
		}
	}
	registry.Override(cfg.NetworkID, cfg.RPCURL, cfg.StartBlock)
	return registry, nil
}

// setup wires the controller. An unsupported network or an unreachable endpoint degrades to a
// controller with reads and actions disabled; only a bad key or a broken manifest is fatal.
func setup(ctx context.Context, cfg config.Config, log *logger.Logger) (*app, error) {
	registry, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, registry: registry}

	binding, supported := registry.Lookup(cfg.NetworkID)
	a.binding = binding
	if !supported {
		log.Warn().Uint64("network", cfg.NetworkID).Msg("no contract binding for network")
	}

	var (
		reader  reconcile.Reader
		logs    reconcile.LogSource
		signer  reconcile.Wallet
		archive reconcile.Archive
		voting  *contract.Voting
	)
	if supported {
		client, err := wallet.Dial(ctx, binding.RPCEndpoint, log)
		if err != nil {
			log.Error().Err(err).Msg("rpc endpoint unreachable, running disconnected")
			supported = false
		} else {
			a.client = client
			voting, err = contract.NewVoting(binding.ContractAddress, client)
			if err != nil {
				return nil, err
			}
			reader = voting
			logs = collector.NewCollector(voting, binding.StartBlock, log)
			a.watcher = roles.NewPhaseWatcher(voting)
		}
	}

	var account common.Address
	if !cfg.ReadOnly() {
		key, err := wallet.ParseKey(cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		account = crypto.PubkeyToAddress(key.PublicKey)
		if supported {
			w, err := wallet.New(ctx, a.client, voting, key, cfg.WaitMinedTimeout, log)
			if err != nil {
				return nil, err
			}
			signer = w
		}
	} else if cfg.Account != "" {
		if !common.IsHexAddress(cfg.Account) {
			return nil, fmt.Errorf("invalid ACCOUNT %q", cfg.Account)
		}
		account = common.HexToAddress(cfg.Account)
	}

	gormDB, err := dbpkg.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if gormDB != nil {
		log.Printf("DB connected")
		if err := dbpkg.AutoMigrate(gormDB); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Printf("Migrations applied")
		a.gormDB = gormDB
		a.archive = dbpkg.NewArchive(gormDB)
		archive = a.archive
	} else {
		log.Printf("DATABASE_URL not provided – persistence disabled")
	}

	a.ctrl = reconcile.New(reader, logs, reconcile.Options{
		NetworkID:           cfg.NetworkID,
		Supported:           supported,
		Account:             account,
		Wallet:              signer,
		Archive:             archive,
		KeepPartialTimeline: cfg.KeepPartialTimeline,
	}, log)
	return a, nil
}

// runRefresher runs a full pass every interval until ctx is done.
func (a *app) runRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.ctrl.Refresh(ctx); err != nil {
				a.log.Printf("periodic refresh skipped: %v", err)
			}
		}
	}
}

func (a *app) Close() {
	if a.ctrl != nil {
		a.ctrl.Close()
	}
	if a.client != nil {
		a.client.Close()
	}
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
