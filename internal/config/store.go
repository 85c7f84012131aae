package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// StoreProfile holds the per-deployment store settings a receipt is rendered
// with, plus the document number prefixes. Reloaded at runtime so a header
// change does not require a restart.
type StoreProfile struct {
	StoreName    string `mapstructure:"storeName"`
	AddressLine1 string `mapstructure:"addressLine1"`
	AddressLine2 string `mapstructure:"addressLine2"`
	Phone        string `mapstructure:"phone"`
	FooterNote   string `mapstructure:"footerNote"`

	Currency          string `mapstructure:"currency"`
	TransactionPrefix string `mapstructure:"transactionPrefix"`
	ReceiptPrefix     string `mapstructure:"receiptPrefix"`
}

func DefaultStoreProfile() StoreProfile {
	return StoreProfile{
		StoreName:         "Kasira Store",
		FooterNote:        "Thank you for your purchase",
		Currency:          "IDR",
		TransactionPrefix: "TRX",
		ReceiptPrefix:     "RCP",
	}
}

type StoreProfileHolder struct {
	current atomic.Value // holds StoreProfile
}

func NewStoreProfileHolder(log *zap.Logger) (*StoreProfileHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.store")

	v := viper.New()

	v.SetConfigName("store")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/kasira/config")
	v.AddConfigPath("/etc/kasira")
	v.AddConfigPath(".")

	v.SetEnvPrefix("KASIRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultStoreProfile()
	v.SetDefault("store.storeName", defaults.StoreName)
	v.SetDefault("store.footerNote", defaults.FooterNote)
	v.SetDefault("store.currency", defaults.Currency)
	v.SetDefault("store.transactionPrefix", defaults.TransactionPrefix)
	v.SetDefault("store.receiptPrefix", defaults.ReceiptPrefix)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var profile StoreProfile
	if err := v.UnmarshalKey("store", &profile); err != nil {
		return nil, err
	}
	if err := validateStoreProfile(profile); err != nil {
		return nil, err
	}

	holder := &StoreProfileHolder{}
	holder.current.Store(profile)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated StoreProfile
		if err := v.UnmarshalKey("store", &updated); err != nil {
			log.Warn("store profile reload failed", zap.Error(err))
			return
		}
		if err := validateStoreProfile(updated); err != nil {
			log.Warn("invalid store profile ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("store profile reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticStoreProfileHolder pins the holder to a fixed profile. Used by
// tests and one-off tooling that must not watch the filesystem.
func NewStaticStoreProfileHolder(profile StoreProfile) *StoreProfileHolder {
	holder := &StoreProfileHolder{}
	holder.current.Store(profile)
	return holder
}

func (h *StoreProfileHolder) Get() StoreProfile {
	return h.current.Load().(StoreProfile)
}

func validateStoreProfile(profile StoreProfile) error {
	if strings.TrimSpace(profile.StoreName) == "" {
		return errors.New("store.storeName cannot be empty")
	}
	if strings.TrimSpace(profile.TransactionPrefix) == "" {
		return errors.New("store.transactionPrefix cannot be empty")
	}
	if strings.TrimSpace(profile.ReceiptPrefix) == "" {
		return errors.New("store.receiptPrefix cannot be empty")
	}
	return nil
}
