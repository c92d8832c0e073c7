package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/viper"
)

type Config struct {
	Datadir                 string
	HTTPPort                uint32
	LogLevel                uint32
	DbType                  string
	LedgerURL               string
	VaultAccount            string
	OwnerId                 string
	Relayers                []string
	FundingCheckInterval    time.Duration
	FundingPendingThreshold time.Duration
}

var (
	Datadir                 = "DATADIR"
	HTTPPort                = "HTTP_PORT"
	LogLevel                = "LOG_LEVEL"
	DbType                  = "DB_TYPE"
	LedgerURL               = "LEDGER_URL"
	VaultAccount            = "VAULT_ACCOUNT"
	OwnerId                 = "OWNER_ID"
	Relayers                = "RELAYERS"
	FundingCheckInterval    = "FUNDING_CHECK_INTERVAL"
	FundingPendingThreshold = "FUNDING_PENDING_THRESHOLD"

	defaultDatadir                 = appDatadir("lockboxd", false)
	defaultHTTPPort                = 7100
	defaultLogLevel                = 4
	defaultDbType                  = "badger"
	defaultFundingCheckInterval    = time.Minute
	defaultFundingPendingThreshold = 5 * time.Minute
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("LOCKBOXD")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(HTTPPort, defaultHTTPPort)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(DbType, defaultDbType)
	viper.SetDefault(FundingCheckInterval, defaultFundingCheckInterval)
	viper.SetDefault(FundingPendingThreshold, defaultFundingPendingThreshold)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	config := &Config{
		Datadir:                 viper.GetString(Datadir),
		HTTPPort:                viper.GetUint32(HTTPPort),
		LogLevel:                viper.GetUint32(LogLevel),
		DbType:                  viper.GetString(DbType),
		LedgerURL:               viper.GetString(LedgerURL),
		VaultAccount:            viper.GetString(VaultAccount),
		OwnerId:                 viper.GetString(OwnerId),
		Relayers:                viper.GetStringSlice(Relayers),
		FundingCheckInterval:    viper.GetDuration(FundingCheckInterval),
		FundingPendingThreshold: viper.GetDuration(FundingPendingThreshold),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if len(c.LedgerURL) == 0 {
		return fmt.Errorf("missing %s", LedgerURL)
	}
	if len(c.VaultAccount) == 0 {
		return fmt.Errorf("missing %s", VaultAccount)
	}
	if len(c.OwnerId) == 0 {
		return fmt.Errorf("missing %s", OwnerId)
	}
	return nil
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

// appDatadir returns an operating system specific directory to be used for
// storing application data for an application.
func appDatadir(appName string, roaming bool) string {
	if appName == "" || appName == "." {
		return "."
	}

	appName = strings.TrimPrefix(appName, ".")
	appNameUpper := string(unicode.ToUpper(rune(appName[0]))) + appName[1:]
	appNameLower := string(unicode.ToLower(rune(appName[0]))) + appName[1:]

	var homeDir string
	usr, err := user.Current()
	if err == nil {
		homeDir = usr.HomeDir
	}
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("LOCALAPPDATA")
		if roaming || appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData != "" {
			return filepath.Join(appData, appNameUpper)
		}

	case "darwin":
		if homeDir != "" {
			return filepath.Join(homeDir, "Library", "Application Support", appNameUpper)
		}

	case "plan9":
		if homeDir != "" {
			return filepath.Join(homeDir, appNameLower)
		}

	default:
		if homeDir != "" {
			return filepath.Join(homeDir, "."+appNameLower)
		}
	}

	return "."
}
