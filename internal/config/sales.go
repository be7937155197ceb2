package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SalesConfig tunes the sale-drafting behavior without a redeploy.
type SalesConfig struct {
	DefaultLowStockThreshold int      `mapstructure:"defaultLowStockThreshold"`
	WalkInCustomerName       string   `mapstructure:"walkInCustomerName"`
	PaymentMethods           []string `mapstructure:"paymentMethods"`
}

func DefaultSalesConfig() SalesConfig {
	return SalesConfig{
		DefaultLowStockThreshold: 5,
		WalkInCustomerName:       "Walk-in Customer",
		PaymentMethods:           []string{"cash", "card", "bank_transfer", "mobile_money", "credit"},
	}
}

// AllowsPaymentMethod reports whether m is in the configured allow-list.
func (c SalesConfig) AllowsPaymentMethod(m string) bool {
	m = strings.ToLower(strings.TrimSpace(m))
	for _, allowed := range c.PaymentMethods {
		if m == allowed {
			return true
		}
	}
	return false
}

type SalesConfigHolder struct {
	current atomic.Value // holds SalesConfig
}

// NewSalesConfigHolder loads sales.yml and keeps it hot-reloaded.
func NewSalesConfigHolder() (*SalesConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("sales")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/bizcore/config") // Volume-mounted config
	v.AddConfigPath("/etc/bizcore")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("BIZCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultSalesConfig()
		v.SetDefault("sales.defaultLowStockThreshold", defaults.DefaultLowStockThreshold)
		v.SetDefault("sales.walkInCustomerName", defaults.WalkInCustomerName)
		v.SetDefault("sales.paymentMethods", defaults.PaymentMethods)
	}

	var cfg SalesConfig
	if err := v.UnmarshalKey("sales", &cfg); err != nil {
		return nil, err
	}
	if err := validateSalesConfig(cfg); err != nil {
		return nil, err
	}

	holder := &SalesConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SalesConfig
		if err := v.UnmarshalKey("sales", &updated); err != nil {
			log.Printf("[sales-config] reload failed: %v", err)
			return
		}
		if err := validateSalesConfig(updated); err != nil {
			log.Printf("[sales-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[sales-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticSalesConfigHolder wraps a fixed config, for tests.
func NewStaticSalesConfigHolder(cfg SalesConfig) *SalesConfigHolder {
	holder := &SalesConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *SalesConfigHolder) Get() SalesConfig {
	return h.current.Load().(SalesConfig)
}

func validateSalesConfig(cfg SalesConfig) error {
	if cfg.DefaultLowStockThreshold < 0 {
		return errors.New("sales.defaultLowStockThreshold cannot be negative")
	}
	if strings.TrimSpace(cfg.WalkInCustomerName) == "" {
		return errors.New("sales.walkInCustomerName cannot be empty")
	}
	if len(cfg.PaymentMethods) == 0 {
		return errors.New("sales.paymentMethods cannot be empty")
	}
	return nil
}
