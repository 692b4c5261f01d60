package main

import (
	"github.com/nssa-network/nssa-wallet/internal/core/application"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var syncCmd = cli.Command{
	Name:  "sync",
	Usage: "scan the chain for notes received or spent by the private accounts",
	Flags: []cli.Flag{
		&cli.Uint64Flag{
			Name:  "to",
			Usage: "the block to sync to, defaults to the chain tip",
		},
	},
	Action: syncAction,
}

var height = cli.Command{
	Name:   "height",
	Usage:  "show the current chain height and the last synced block",
	Action: heightAction,
}

func syncAction(ctx *cli.Context) error {
	w, cleanup, err := getUnlockedWallet(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	syncSvc := w.SyncService()
	syncSvc.RegisterProgressHandler(func(p application.SyncProgress) {
		log.Infof(
			"synced block %d/%d: %d notes received, %d notes spent",
			p.LastSyncedBlock, p.TargetBlock, p.ReceivedNotes, p.SpentNotes,
		)
	})

	var cursor uint64
	if ctx.IsSet("to") {
		cursor, err = syncSvc.SyncToBlock(ctx.Context, ctx.Uint64("to"))
	} else {
		cursor, err = syncSvc.SyncToTip(ctx.Context)
	}
	// Whatever was applied before a failure is kept.
	if saveErr := w.WalletService().Save(ctx.Context); saveErr != nil {
		log.WithError(saveErr).Warn("failed to save wallet")
	}
	if err != nil {
		return err
	}

	printJSON(map[string]uint64{"last_synced_block": cursor})
	return nil
}

func heightAction(ctx *cli.Context) error {
	w, cleanup, err := getWallet()
	if err != nil {
		return err
	}
	defer cleanup()

	syncSvc := w.SyncService()
	tip, err := syncSvc.CurrentBlockHeight(ctx.Context)
	if err != nil {
		return err
	}
	cursor, err := syncSvc.LastSyncedBlock(ctx.Context)
	if err != nil {
		return err
	}
	printJSON(map[string]uint64{
		"height":            tip,
		"last_synced_block": cursor,
	})
	return nil
}
