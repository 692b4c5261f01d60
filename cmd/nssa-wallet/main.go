package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/nssa-network/nssa-wallet/internal/config"
	"github.com/nssa-network/nssa-wallet/internal/core/application"
	devprover "github.com/nssa-network/nssa-wallet/internal/infrastructure/prover/dev"
	httpsequencer "github.com/nssa-network/nssa-wallet/internal/infrastructure/sequencer/http"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	datadirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "the directory where the wallet state is stored",
	}
	sequencerFlag = &cli.StringFlag{
		Name:  "sequencer",
		Usage: "the url of the sequencer http API",
	}
	dbTypeFlag = &cli.StringFlag{
		Name:  "db",
		Usage: "the database type, either badger or inmemory",
	}
	logLevelFlag = &cli.IntFlag{
		Name:  "log-level",
		Usage: "the logging level, from 0 (panic) to 6 (trace)",
	}
	passwordFlag = &cli.StringFlag{
		Name:  "password",
		Usage: "the wallet password, defaults to the content of the password file",
	}
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "nssa-wallet"
	app.Usage = "Command line wallet for public and private accounts"
	app.Flags = []cli.Flag{
		datadirFlag, sequencerFlag, dbTypeFlag, logLevelFlag, passwordFlag,
	}
	app.Before = initConfig
	app.Commands = append(
		app.Commands,
		&genseed,
		&initwallet,
		&status,
		&changepassword,
		&exportmnemonic,
		&account,
		&syncCmd,
		&height,
		&send,
		&register,
		&pinata,
		&devnet,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func initConfig(ctx *cli.Context) error {
	overrides := make(map[string]interface{})
	if ctx.IsSet(datadirFlag.Name) {
		overrides[config.DatadirKey] = ctx.String(datadirFlag.Name)
	}
	if ctx.IsSet(sequencerFlag.Name) {
		overrides[config.SequencerAddrKey] = ctx.String(sequencerFlag.Name)
	}
	if ctx.IsSet(dbTypeFlag.Name) {
		overrides[config.DBTypeKey] = ctx.String(dbTypeFlag.Name)
	}
	if ctx.IsSet(logLevelFlag.Name) {
		overrides[config.LogLevelKey] = ctx.Int(logLevelFlag.Name)
	}

	if err := config.InitConfig(overrides); err != nil {
		return err
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
	return nil
}

// getWallet opens the wallet store in the configured datadir. The returned
// cleanup func must be called to release the store.
func getWallet() (*application.Wallet, func(), error) {
	sequencer, err := httpsequencer.NewClient(httpsequencer.Opts{
		Addr:              config.GetString(config.SequencerAddrKey),
		RequestTimeout:    config.GetDuration(config.SeqPollTimeoutKey),
		RequestsPerSecond: config.GetInt(config.SeqRequestsPerSecondKey),
	})
	if err != nil {
		return nil, nil, err
	}

	w, err := application.NewWallet(&application.Config{
		DBType:          config.GetString(config.DBTypeKey),
		DBConfig:        config.GetDbDir(),
		Sequencer:       sequencer,
		Prover:          devprover.NewProver(),
		MerkleTreeDepth: uint8(config.GetInt(config.MerkleTreeDepthKey)),
		BlockBatchSize:  config.GetInt(config.SeqBlockPollMaxAmountKey),
	})
	if err != nil {
		return nil, nil, err
	}
	return w, w.Close, nil
}

// getUnlockedWallet opens the wallet and unlocks it with the password given
// by flag or password file.
func getUnlockedWallet(ctx *cli.Context) (*application.Wallet, func(), error) {
	password, err := getPassword(ctx)
	if err != nil {
		return nil, nil, err
	}

	w, cleanup, err := getWallet()
	if err != nil {
		return nil, nil, err
	}
	if err := w.WalletService().UnlockWallet(ctx.Context, password); err != nil {
		cleanup()
		return nil, nil, err
	}
	return w, cleanup, nil
}

func getPassword(ctx *cli.Context) (string, error) {
	if password := ctx.String(passwordFlag.Name); password != "" {
		return password, nil
	}
	password, err := config.GetWalletPassword()
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", errors.New(
			"missing password, use --password or set NSSA_WALLET_WALLET_PASSWORD_FILE",
		)
	}
	return password, nil
}

func printJSON(resp interface{}) {
	buf, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to encode response: ", err)
		return
	}
	fmt.Println(string(buf))
}

func printResult(res *application.TransferResult) error {
	printJSON(map[string]interface{}{
		"tx_hash": res.TxHash.String(),
		"success": res.Success,
		"reason":  res.Reason,
	})
	if !res.Success {
		return fmt.Errorf("transaction rejected: %s", res.Reason)
	}
	return nil
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(
			os.Stderr, "[nssa-wallet] %s: %v\n", application.ErrorKind(err), err,
		)
	}
	os.Exit(1)
}
