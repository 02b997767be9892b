package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// settings carries runner-level collaborator configuration, loaded from the
// settings file and CONVOY_* environment variables. Per-run parameters stay
// on the command line.
type settings struct {
	GitHub struct {
		Repository  string `mapstructure:"repository"`
		AccessToken string `mapstructure:"access_token"`
	} `mapstructure:"github"`

	Slack struct {
		Webhook string `mapstructure:"webhook"`
		Channel string `mapstructure:"channel"`
	} `mapstructure:"slack"`

	Secrets struct {
		Endpoint  string `mapstructure:"endpoint"`
		Token     string `mapstructure:"token"`
		LocalRoot string `mapstructure:"local_root"`
	} `mapstructure:"secrets"`

	Storage struct {
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		Bucket    string `mapstructure:"bucket"`
		UseSSL    bool   `mapstructure:"use_ssl"`
	} `mapstructure:"storage"`

	Report struct {
		OutputPrefix string `mapstructure:"output_prefix"`
		LocalDir     string `mapstructure:"local_dir"`
	} `mapstructure:"report"`
}

func loadSettings(path string) (*settings, error) {
	v := viper.New()
	v.SetEnvPrefix("CONVOY")
	v.AutomaticEnv()

	v.SetDefault("secrets.local_root", "secrets")
	v.SetDefault("report.output_prefix", "ci/reports")
	v.SetDefault("report.local_dir", "reports")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings file: %w", err)
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return &s, nil
}
