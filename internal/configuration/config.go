package configuration

import (
	"os"
	"time"

	"github.com/hsadmin/fancontrol/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Configuration struct {
	DbPath string `json:"dbPath"`

	// TempRollingWindowSize is the number of sensor readings averaged
	// before the engine sees a temperature
	TempRollingWindowSize int `json:"tempRollingWindowSize"`

	ControllerAdjustmentTickRate time.Duration `json:"controllerAdjustmentTickRate"`

	// TickIoTimeout bounds a single sensor read or actuator write,
	// so a stuck backend cannot stall a control loop indefinitely.
	TickIoTimeout time.Duration `json:"tickIoTimeout"`

	// MaxSensorFailures is the number of consecutive sensor read failures
	// after which a fan is reported as degraded.
	MaxSensorFailures int `json:"maxSensorFailures"`

	Api        ApiConfig        `json:"api"`
	Statistics StatisticsConfig `json:"statistics"`

	Fans    []FanConfig    `json:"fans"`
	Sensors []SensorConfig `json:"sensors"`
}

type ApiConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`

	// WriteTokens lists bearer tokens that grant write capability.
	// Requests presenting none of them are limited to read-only endpoints.
	WriteTokens []string `json:"writeTokens"`
}

type StatisticsConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("fancontrol")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/fancontrol/")
	}

	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("dbpath", "/etc/fancontrol/fancontrol.db")
	viper.SetDefault("TempRollingWindowSize", 10)
	viper.SetDefault("ControllerAdjustmentTickRate", 1*time.Second)
	viper.SetDefault("TickIoTimeout", 2*time.Second)
	viper.SetDefault("MaxSensorFailures", 3)

	viper.SetDefault("api.enabled", true)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 9449)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)

	viper.SetDefault("sensors", []SensorConfig{})
	viper.SetDefault("fans", []FanConfig{})
}

// DetectAndReadConfigFile detects the path of the first existing config file
func DetectAndReadConfigFile() string {
	readInConfig()
	return GetFilePath()
}

// readInConfig reads and parses the config file
func readInConfig() {
	if err := viper.ReadInConfig(); err != nil {
		// config file is required, so we fail here
		ui.Fatal("Error reading config file, %s", err)
	}
}

// GetFilePath this is only populated _after_ readInConfig()
func GetFilePath() string {
	return viper.ConfigFileUsed()
}

func LoadConfig() {
	// load default configuration values
	err := viper.Unmarshal(
		&CurrentConfig,
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			TimeOfDayHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)),
	)
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}
