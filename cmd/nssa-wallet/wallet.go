package main

import (
	"fmt"
	"strings"

	"github.com/nssa-network/nssa-wallet/pkg/wallet"
	"github.com/urfave/cli/v2"
)

var genseed = cli.Command{
	Name:   "genseed",
	Usage:  "generate a new mnemonic to initialize the wallet with",
	Action: genSeedAction,
}

var initwallet = cli.Command{
	Name:  "init",
	Usage: "initialize the wallet, generating a new mnemonic if none is given",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "seed",
			Usage: "the space separated mnemonic to restore the wallet from",
		},
	},
	Action: initWalletAction,
}

var status = cli.Command{
	Name:   "status",
	Usage:  "show whether the wallet is initialized and how far it is synced",
	Action: statusAction,
}

var changepassword = cli.Command{
	Name:  "change-password",
	Usage: "change the password encrypting the mnemonic",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "new-password",
			Usage:    "the new wallet password",
			Required: true,
		},
	},
	Action: changePasswordAction,
}

var exportmnemonic = cli.Command{
	Name:   "export-mnemonic",
	Usage:  "print the mnemonic of the wallet",
	Action: exportMnemonicAction,
}

func genSeedAction(ctx *cli.Context) error {
	w, cleanup, err := getWallet()
	if err != nil {
		return err
	}
	defer cleanup()

	mnemonic, err := w.WalletService().GenSeed(ctx.Context)
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(mnemonic, " "))
	return nil
}

func initWalletAction(ctx *cli.Context) error {
	seed := ctx.String("seed")
	restore := len(strings.TrimSpace(seed)) > 0
	if restore && !wallet.IsMnemonicValid(seed) {
		return fmt.Errorf("invalid mnemonic, check the words and their order")
	}

	password, err := getPassword(ctx)
	if err != nil {
		return err
	}

	w, cleanup, err := getWallet()
	if err != nil {
		return err
	}
	defer cleanup()

	walletSvc := w.WalletService()
	mnemonic := strings.Fields(seed)
	if !restore {
		if mnemonic, err = walletSvc.GenSeed(ctx.Context); err != nil {
			return err
		}
	}

	if err := walletSvc.InitWallet(ctx.Context, mnemonic, password); err != nil {
		return err
	}
	if err := walletSvc.Save(ctx.Context); err != nil {
		return err
	}

	if !restore {
		fmt.Println("Write down the mnemonic, it is the only backup of the wallet:")
		fmt.Println()
		fmt.Println(strings.Join(mnemonic, " "))
		fmt.Println()
	} else {
		fmt.Println("Recreate the accounts of the wallet in the same order before syncing.")
	}
	fmt.Println("Wallet is initialized")
	return nil
}

func statusAction(ctx *cli.Context) error {
	w, cleanup, err := getWallet()
	if err != nil {
		return err
	}
	defer cleanup()

	status, err := w.WalletService().Status(ctx.Context)
	if err != nil {
		return err
	}
	printJSON(map[string]interface{}{
		"initialized":       status.Initialized,
		"last_synced_block": status.LastSyncedBlock,
		"num_of_accounts":   status.NumOfAccounts,
	})
	return nil
}

func changePasswordAction(ctx *cli.Context) error {
	password, err := getPassword(ctx)
	if err != nil {
		return err
	}

	w, cleanup, err := getWallet()
	if err != nil {
		return err
	}
	defer cleanup()

	walletSvc := w.WalletService()
	if err := walletSvc.ChangePassword(
		ctx.Context, password, ctx.String("new-password"),
	); err != nil {
		return err
	}
	if err := walletSvc.Save(ctx.Context); err != nil {
		return err
	}

	fmt.Println("Password changed")
	return nil
}

func exportMnemonicAction(ctx *cli.Context) error {
	password, err := getPassword(ctx)
	if err != nil {
		return err
	}

	w, cleanup, err := getWallet()
	if err != nil {
		return err
	}
	defer cleanup()

	mnemonic, err := w.WalletService().GetMnemonic(ctx.Context, password)
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(mnemonic, " "))
	return nil
}
