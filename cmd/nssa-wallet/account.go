package main

import (
	"encoding/hex"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/urfave/cli/v2"
)

var accountIdFlag = &cli.StringFlag{
	Name:     "account",
	Usage:    "the id of the account",
	Required: true,
}

var account = cli.Command{
	Name:  "account",
	Usage: "manage the accounts of the wallet",
	Subcommands: []*cli.Command{
		{
			Name:      "new",
			Usage:     "derive the next account of the given kind",
			ArgsUsage: "public|private",
			Action:    newAccountAction,
		},
		{
			Name:   "list",
			Usage:  "list the accounts of the wallet",
			Action: listAccountsAction,
		},
		{
			Name:   "get",
			Usage:  "show an account and its notes",
			Flags:  []cli.Flag{accountIdFlag},
			Action: getAccountAction,
		},
		{
			Name:  "label",
			Usage: "set the label of an account",
			Flags: []cli.Flag{
				accountIdFlag,
				&cli.StringFlag{
					Name:     "label",
					Usage:    "the label to set",
					Required: true,
				},
			},
			Action: labelAccountAction,
		},
		{
			Name:   "balance",
			Usage:  "show the balance of an account, public ones are fetched from the chain",
			Flags:  []cli.Flag{accountIdFlag},
			Action: balanceAction,
		},
		{
			Name:   "keys",
			Usage:  "show the public keys to receive funds on an account",
			Flags:  []cli.Flag{accountIdFlag},
			Action: keysAction,
		},
		{
			Name:   "chain",
			Usage:  "show the state of a public account on chain",
			Flags:  []cli.Flag{accountIdFlag},
			Action: chainAccountAction,
		},
	},
}

func newAccountAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	kind, err := domain.ParseAccountKind(ctx.Args().First())
	if err != nil {
		return err
	}

	w, cleanup, err := getUnlockedWallet(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := w.AccountService().CreateAccount(ctx.Context, kind)
	if err != nil {
		return err
	}
	if err := w.WalletService().Save(ctx.Context); err != nil {
		return err
	}

	printJSON(map[string]string{
		"account_id": id.String(),
		"kind":       kind.String(),
	})
	return nil
}

func listAccountsAction(ctx *cli.Context) error {
	w, cleanup, err := getWallet()
	if err != nil {
		return err
	}
	defer cleanup()

	accounts, err := w.AccountService().ListAccounts(ctx.Context)
	if err != nil {
		return err
	}

	list := make([]map[string]string, 0, len(accounts))
	for _, a := range accounts {
		list = append(list, map[string]string{
			"account_id": a.AccountId.String(),
			"kind":       a.Kind.String(),
			"label":      a.Label,
		})
	}
	printJSON(list)
	return nil
}

func getAccountAction(ctx *cli.Context) error {
	id, err := domain.ParseAccountId(ctx.String(accountIdFlag.Name))
	if err != nil {
		return err
	}

	w, cleanup, err := getWallet()
	if err != nil {
		return err
	}
	defer cleanup()

	a, err := w.AccountService().GetAccount(ctx.Context, id)
	if err != nil {
		return err
	}

	resp := map[string]interface{}{
		"account_id": a.AccountId.String(),
		"kind":       a.Kind.String(),
		"index":      a.Index,
		"label":      a.Label,
		"balance":    a.Balance.String(),
	}
	if a.IsPublic() {
		resp["public_key"] = a.PublicKey.String()
		printJSON(resp)
		return nil
	}

	notes := make([]map[string]interface{}, 0, len(a.Notes))
	for _, n := range a.Notes {
		notes = append(notes, map[string]interface{}{
			"commitment":     n.Commitment.String(),
			"balance":        n.Note.Balance.String(),
			"confirmed":      n.Confirmed,
			"block_id":       n.BlockId,
			"spent":          n.Spent,
			"spent_in_block": n.SpentInBlock,
		})
	}
	resp["initialized"] = a.Initialized
	resp["notes"] = notes
	printJSON(resp)
	return nil
}

func labelAccountAction(ctx *cli.Context) error {
	id, err := domain.ParseAccountId(ctx.String(accountIdFlag.Name))
	if err != nil {
		return err
	}

	w, cleanup, err := getWallet()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := w.AccountService().SetLabel(
		ctx.Context, id, ctx.String("label"),
	); err != nil {
		return err
	}
	return w.WalletService().Save(ctx.Context)
}

func balanceAction(ctx *cli.Context) error {
	id, err := domain.ParseAccountId(ctx.String(accountIdFlag.Name))
	if err != nil {
		return err
	}

	w, cleanup, err := getWallet()
	if err != nil {
		return err
	}
	defer cleanup()

	balance, err := w.AccountService().GetBalance(ctx.Context, id)
	if err != nil {
		return err
	}
	printJSON(map[string]string{
		"account_id": id.String(),
		"balance":    balance.String(),
	})
	return nil
}

func keysAction(ctx *cli.Context) error {
	id, err := domain.ParseAccountId(ctx.String(accountIdFlag.Name))
	if err != nil {
		return err
	}

	w, cleanup, err := getWallet()
	if err != nil {
		return err
	}
	defer cleanup()

	accountSvc := w.AccountService()
	a, err := accountSvc.GetAccount(ctx.Context, id)
	if err != nil {
		return err
	}
	if a.IsPublic() {
		pubkey, err := accountSvc.GetPublicKey(ctx.Context, id)
		if err != nil {
			return err
		}
		printJSON(map[string]string{"public_key": pubkey.String()})
		return nil
	}

	npk, vpk, err := accountSvc.GetPrivateKeys(ctx.Context, id)
	if err != nil {
		return err
	}
	printJSON(map[string]string{
		"nullifier_public_key": npk.String(),
		"viewing_public_key":   vpk.String(),
	})
	return nil
}

func chainAccountAction(ctx *cli.Context) error {
	id, err := domain.ParseAccountId(ctx.String(accountIdFlag.Name))
	if err != nil {
		return err
	}

	w, cleanup, err := getWallet()
	if err != nil {
		return err
	}
	defer cleanup()

	state, err := w.AccountService().GetAccountPublic(ctx.Context, id)
	if err != nil {
		return err
	}
	printJSON(map[string]string{
		"program_owner": state.ProgramOwner.String(),
		"balance":       state.Balance.String(),
		"nonce":         state.Nonce.String(),
		"data":          hex.EncodeToString(state.Data),
	})
	return nil
}
