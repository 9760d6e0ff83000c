package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the config file layout. Pointer fields distinguish an
// absent key from a zero value so defaults survive partial files.
type fileConfig struct {
	API struct {
		BaseURL        *string `yaml:"base_url"`
		AuthType       *string `yaml:"auth_type"`
		RequestTimeout *string `yaml:"request_timeout"`
	} `yaml:"api"`
	Business struct {
		Name                  *string `yaml:"name"`
		StampsPerCard         *int    `yaml:"stamps_per_card"`
		DefaultCouponID       *int64  `yaml:"default_coupon_id"`
		DefaultCouponName     *string `yaml:"default_coupon_name"`
		AllowDuplicateCoupons *bool   `yaml:"allow_duplicate_coupons"`
	} `yaml:"business"`
	UI struct {
		StampEmoji     *string `yaml:"stamp_emoji"`
		EmptySlotEmoji *string `yaml:"empty_slot_emoji"`
	} `yaml:"ui"`
	Server struct {
		RunAddress      *string `yaml:"run_address"`
		DatabaseURI     *string `yaml:"database_uri"`
		OperatorKeyHash *string `yaml:"operator_key_hash"`
		ShutdownTimeout *string `yaml:"shutdown_timeout"`
		LogLevel        *string `yaml:"log_level"`
	} `yaml:"server"`
}

// applyFile overlays values from a YAML (or JSON) file onto cfg.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, fc.API.BaseURL)
	setString(&cfg.AuthType, fc.API.AuthType)
	setString(&cfg.BusinessName, fc.Business.Name)
	setString(&cfg.DefaultCouponName, fc.Business.DefaultCouponName)
	setString(&cfg.StampEmoji, fc.UI.StampEmoji)
	setString(&cfg.EmptySlotEmoji, fc.UI.EmptySlotEmoji)
	setString(&cfg.RunAddress, fc.Server.RunAddress)
	setString(&cfg.DatabaseURI, fc.Server.DatabaseURI)
	setString(&cfg.OperatorKeyHash, fc.Server.OperatorKeyHash)

	if fc.Business.StampsPerCard != nil {
		cfg.StampsPerCard = *fc.Business.StampsPerCard
	}
	if fc.Business.DefaultCouponID != nil {
		cfg.DefaultCouponID = *fc.Business.DefaultCouponID
	}
	if fc.Business.AllowDuplicateCoupons != nil {
		cfg.AllowDuplicateCoupons = *fc.Business.AllowDuplicateCoupons
	}

	if fc.API.RequestTimeout != nil {
		if cfg.RequestTimeout, err = time.ParseDuration(*fc.API.RequestTimeout); err != nil {
			return fmt.Errorf("invalid request timeout in %s: %w", path, err)
		}
	}
	if fc.Server.ShutdownTimeout != nil {
		if cfg.ShutdownTimeout, err = time.ParseDuration(*fc.Server.ShutdownTimeout); err != nil {
			return fmt.Errorf("invalid shutdown timeout in %s: %w", path, err)
		}
	}
	if fc.Server.LogLevel != nil {
		if err := cfg.LogLevel.UnmarshalText([]byte(*fc.Server.LogLevel)); err != nil {
			return fmt.Errorf("invalid log level in %s: %w", path, err)
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}
