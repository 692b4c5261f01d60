package main

import (
	"github.com/nssa-network/nssa-wallet/internal/core/application"
	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/urfave/cli/v2"
)

var (
	fromFlag = &cli.StringFlag{
		Name:     "from",
		Usage:    "the id of the sender account",
		Required: true,
	}
	toFlag = &cli.StringFlag{
		Name:  "to",
		Usage: "the id of the receiver account",
	}
	amountFlag = &cli.StringFlag{
		Name:     "amount",
		Usage:    "the amount to transfer",
		Required: true,
	}
	npkFlag = &cli.StringFlag{
		Name:  "npk",
		Usage: "the hex nullifier public key of a foreign private receiver",
	}
	vpkFlag = &cli.StringFlag{
		Name:  "vpk",
		Usage: "the hex viewing public key of a foreign private receiver",
	}
)

var send = cli.Command{
	Name:  "send",
	Usage: "transfer funds between accounts",
	Subcommands: []*cli.Command{
		{
			Name:   "public",
			Usage:  "transfer from a public account to another public account",
			Flags:  []cli.Flag{fromFlag, toFlag, amountFlag},
			Action: sendPublicAction,
		},
		{
			Name: "shielded",
			Usage: "transfer from a public account to a private one, either " +
				"owned (--to) or foreign (--npk and --vpk)",
			Flags:  []cli.Flag{fromFlag, toFlag, npkFlag, vpkFlag, amountFlag},
			Action: sendShieldedAction,
		},
		{
			Name:   "deshielded",
			Usage:  "transfer from a private account to a public one",
			Flags:  []cli.Flag{fromFlag, toFlag, amountFlag},
			Action: sendDeshieldedAction,
		},
		{
			Name: "private",
			Usage: "transfer from a private account to another private one, " +
				"either owned (--to) or foreign (--npk and --vpk)",
			Flags:  []cli.Flag{fromFlag, toFlag, npkFlag, vpkFlag, amountFlag},
			Action: sendPrivateAction,
		},
	},
}

var register = cli.Command{
	Name:   "register",
	Usage:  "initialize an account on chain",
	Flags:  []cli.Flag{accountIdFlag},
	Action: registerAction,
}

func sendPublicAction(ctx *cli.Context) error {
	from, to, amount, err := parseTransferFlags(ctx)
	if err != nil {
		return err
	}

	w, cleanup, err := getUnlockedWallet(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := w.TransferService().SendPublicTransfer(ctx.Context, from, to, amount)
	if err != nil {
		return err
	}
	return saveAndPrint(ctx, w, res)
}

func sendShieldedAction(ctx *cli.Context) error {
	from, amount, recipient, err := parsePrivateTransferFlags(ctx)
	if err != nil {
		return err
	}

	w, cleanup, err := getUnlockedWallet(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := w.TransferService().SendShieldedTransfer(
		ctx.Context, from, recipient, amount,
	)
	if err != nil {
		return err
	}
	return saveAndPrint(ctx, w, res)
}

func sendDeshieldedAction(ctx *cli.Context) error {
	from, to, amount, err := parseTransferFlags(ctx)
	if err != nil {
		return err
	}

	w, cleanup, err := getUnlockedWallet(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := w.TransferService().SendDeshieldedTransfer(
		ctx.Context, from, to, amount,
	)
	if err != nil {
		return err
	}
	return saveAndPrint(ctx, w, res)
}

func sendPrivateAction(ctx *cli.Context) error {
	from, amount, recipient, err := parsePrivateTransferFlags(ctx)
	if err != nil {
		return err
	}

	w, cleanup, err := getUnlockedWallet(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := w.TransferService().SendPrivateTransfer(
		ctx.Context, from, recipient, amount,
	)
	if err != nil {
		return err
	}
	return saveAndPrint(ctx, w, res)
}

func registerAction(ctx *cli.Context) error {
	id, err := domain.ParseAccountId(ctx.String(accountIdFlag.Name))
	if err != nil {
		return err
	}

	w, cleanup, err := getUnlockedWallet(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := w.TransferService().RegisterAccount(ctx.Context, id)
	if err != nil {
		return err
	}
	return saveAndPrint(ctx, w, res)
}

func parseTransferFlags(
	ctx *cli.Context,
) (from, to domain.AccountId, amount domain.Amount, err error) {
	if !ctx.IsSet(toFlag.Name) {
		err = &invalidUsageError{ctx, ctx.Command.Name}
		return
	}
	if from, err = domain.ParseAccountId(ctx.String(fromFlag.Name)); err != nil {
		return
	}
	if to, err = domain.ParseAccountId(ctx.String(toFlag.Name)); err != nil {
		return
	}
	amount, err = domain.ParseAmount(ctx.String(amountFlag.Name))
	return
}

// parsePrivateTransferFlags resolves the private receiver either from --to
// or from --npk and --vpk.
func parsePrivateTransferFlags(ctx *cli.Context) (
	from domain.AccountId, amount domain.Amount,
	recipient application.PrivateRecipient, err error,
) {
	if from, err = domain.ParseAccountId(ctx.String(fromFlag.Name)); err != nil {
		return
	}
	if amount, err = domain.ParseAmount(ctx.String(amountFlag.Name)); err != nil {
		return
	}

	if ctx.IsSet(toFlag.Name) {
		var to domain.AccountId
		if to, err = domain.ParseAccountId(ctx.String(toFlag.Name)); err != nil {
			return
		}
		recipient = application.NewOwnedRecipient(to)
		return
	}

	if !ctx.IsSet(npkFlag.Name) || !ctx.IsSet(vpkFlag.Name) {
		err = &invalidUsageError{ctx, ctx.Command.Name}
		return
	}
	npk, err := domain.ParseNullifierPublicKey(ctx.String(npkFlag.Name))
	if err != nil {
		return
	}
	vpk, err := domain.ParseViewingPublicKey(ctx.String(vpkFlag.Name))
	if err != nil {
		return
	}
	recipient = application.NewKeysRecipient(npk, vpk)
	return
}

func saveAndPrint(
	ctx *cli.Context, w *application.Wallet, res *application.TransferResult,
) error {
	if err := w.WalletService().Save(ctx.Context); err != nil {
		return err
	}
	return printResult(res)
}
