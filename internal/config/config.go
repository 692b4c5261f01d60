package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/nssa-network/nssa-wallet/internal/core/application"
	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/spf13/viper"
)

const (
	// SequencerAddrKey is the <host:port> or URL of the sequencer HTTP API
	SequencerAddrKey = "SEQUENCER_ADDR"
	// DatadirKey is the local data directory to store the wallet state
	DatadirKey = "DATADIR"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// SeqPollTimeoutKey is the timeout of every request to the sequencer
	SeqPollTimeoutKey = "SEQ_POLL_TIMEOUT"
	// SeqBlockPollMaxAmountKey is the max number of blocks fetched
	// concurrently while syncing
	SeqBlockPollMaxAmountKey = "SEQ_BLOCK_POLL_MAX_AMOUNT"
	// SeqRequestsPerSecondKey caps the rate of requests to the sequencer, 0
	// means unlimited
	SeqRequestsPerSecondKey = "SEQ_REQUESTS_PER_SECOND"
	// MerkleTreeDepthKey is the depth of the commitment tree of the network
	MerkleTreeDepthKey = "MERKLE_TREE_DEPTH"
	// WalletPasswordFileKey is the path of a file containing the password to
	// unlock the wallet, used when no password is given explicitly
	WalletPasswordFileKey = "WALLET_PASSWORD_FILE"

	DbLocation    = "db"
	StatsLocation = "stats"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("nssa-wallet", false)

// InitConfig loads the configuration from env vars prefixed with NSSA_WALLET_.
// Entries of overrides, usually command line flags, take precedence.
func InitConfig(overrides map[string]interface{}) error {
	vip = viper.New()
	vip.SetEnvPrefix("NSSA_WALLET")
	vip.AutomaticEnv()

	vip.SetDefault(SequencerAddrKey, "http://127.0.0.1:3040")
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(DBTypeKey, application.DBBadger)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(SeqPollTimeoutKey, "12s")
	vip.SetDefault(SeqBlockPollMaxAmountKey, 100)
	vip.SetDefault(SeqRequestsPerSecondKey, 0)
	vip.SetDefault(MerkleTreeDepthKey, domain.DefaultMerkleTreeDepth)

	for key, value := range overrides {
		vip.Set(key, value)
	}

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDbDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

func GetStatsDir() string {
	return filepath.Join(GetDatadir(), StatsLocation)
}

// GetWalletPassword returns the content of the password file, if any,
// trimmed of the trailing new line.
func GetWalletPassword() (string, error) {
	path := GetString(WalletPasswordFileKey)
	if path == "" {
		return "", nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read password file: %w", err)
	}
	return strings.TrimRight(string(buf), "\r\n"), nil
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if len(GetString(SequencerAddrKey)) <= 0 {
		return fmt.Errorf("missing sequencer address")
	}

	dbType := GetString(DBTypeKey)
	if _, ok := application.SupportedDBType[dbType]; !ok {
		return fmt.Errorf("unsupported db type %s", dbType)
	}

	if GetDuration(SeqPollTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be a positive duration", SeqPollTimeoutKey)
	}
	if GetInt(SeqBlockPollMaxAmountKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", SeqBlockPollMaxAmountKey)
	}
	if GetInt(SeqRequestsPerSecondKey) < 0 {
		return fmt.Errorf("%s must not be negative", SeqRequestsPerSecondKey)
	}
	if depth := GetInt(MerkleTreeDepthKey); depth <= 0 || depth > 63 {
		return fmt.Errorf("%s must be in range [1, 63]", MerkleTreeDepthKey)
	}

	if path := GetString(WalletPasswordFileKey); path != "" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%s must be an existing path", WalletPasswordFileKey)
		}
	}

	return nil
}

func initDatadir() error {
	if GetString(DBTypeKey) != application.DBBadger {
		return nil
	}
	return makeDirectoryIfNotExists(GetDbDir())
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
