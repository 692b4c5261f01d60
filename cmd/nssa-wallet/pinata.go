package main

import (
	"github.com/nssa-network/nssa-wallet/internal/core/application"
	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/urfave/cli/v2"
)

var pinataFlag = &cli.StringFlag{
	Name:     "pinata",
	Usage:    "the id of the pinata account",
	Required: true,
}

var pinata = cli.Command{
	Name:  "pinata",
	Usage: "solve pinata challenges and claim their prize",
	Subcommands: []*cli.Command{
		{
			Name:   "solve",
			Usage:  "find the solution of the current challenge of a pinata",
			Flags:  []cli.Flag{pinataFlag},
			Action: solvePinataAction,
		},
		{
			Name: "claim",
			Usage: "claim the prize of a pinata to a public or private account, " +
				"the challenge is solved if no solution is given",
			Flags: []cli.Flag{
				pinataFlag,
				&cli.StringFlag{
					Name:     "winner",
					Usage:    "the id of the account receiving the prize",
					Required: true,
				},
				&cli.Uint64Flag{
					Name:  "solution",
					Usage: "the solution of the challenge",
				},
			},
			Action: claimPinataAction,
		},
	},
}

func solvePinataAction(ctx *cli.Context) error {
	id, err := domain.ParseAccountId(ctx.String(pinataFlag.Name))
	if err != nil {
		return err
	}

	w, cleanup, err := getWallet()
	if err != nil {
		return err
	}
	defer cleanup()

	solution, err := w.PinataService().Solve(ctx.Context, id)
	if err != nil {
		return err
	}
	printJSON(map[string]uint64{"solution": solution})
	return nil
}

func claimPinataAction(ctx *cli.Context) error {
	pinataId, err := domain.ParseAccountId(ctx.String(pinataFlag.Name))
	if err != nil {
		return err
	}
	winner, err := domain.ParseAccountId(ctx.String("winner"))
	if err != nil {
		return err
	}

	w, cleanup, err := getUnlockedWallet(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	pinataSvc := w.PinataService()
	solution := ctx.Uint64("solution")
	if !ctx.IsSet("solution") {
		if solution, err = pinataSvc.Solve(ctx.Context, pinataId); err != nil {
			return err
		}
	}

	account, err := w.AccountService().GetAccount(ctx.Context, winner)
	if err != nil {
		return err
	}

	var res *application.TransferResult
	switch {
	case account.IsPublic():
		res, err = pinataSvc.Claim(ctx.Context, pinataId, winner, solution)
	case account.Initialized:
		res, err = pinataSvc.ClaimPrivateInitialized(
			ctx.Context, pinataId, winner, solution,
		)
	default:
		res, err = pinataSvc.ClaimPrivateUninitialized(
			ctx.Context, pinataId, winner, solution,
		)
	}
	if err != nil {
		return err
	}
	return saveAndPrint(ctx, w, res)
}
