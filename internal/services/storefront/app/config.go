package app

import (
	"time"

	"github.com/louisbranch/storefront/internal/platform/config"
	"github.com/louisbranch/storefront/internal/services/storefront/integration/notify"
	"github.com/louisbranch/storefront/internal/services/storefront/integration/postal"
)

// MemoryDBPath selects the in-process store instead of SQLite.
const MemoryDBPath = "memory"

// Config is the storefront service configuration. Env names are resolved
// under the STOREFRONT_ prefix.
type Config struct {
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:"localhost:8095"`
	DBPath             string        `env:"DB_PATH" envDefault:"data/storefront.db"`
	SessionSecret      string        `env:"SESSION_SECRET"`
	SecureCookies      bool          `env:"SECURE_COOKIES" envDefault:"false"`
	AdminToken         string        `env:"ADMIN_TOKEN"`
	PostalAPIURL       string        `env:"POSTAL_API_URL"`
	AMQPURL            string        `env:"AMQP_URL"`
	NotifyExchange     string        `env:"NOTIFY_EXCHANGE"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat          string        `env:"LOG_FORMAT" envDefault:"json"`
	ShopPhone          string        `env:"SHOP_PHONE" envDefault:"03-6555-0123"`
	PaymentRedirectURL string        `env:"PAYMENT_REDIRECT_URL"`
	CartTTL            time.Duration `env:"CART_TTL" envDefault:"24h"`
	CartPruneInterval  time.Duration `env:"CART_PRUNE_INTERVAL" envDefault:"10m"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnvWithPrefix(&cfg, config.EnvPrefix); err != nil {
		return Config{}, err
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.PostalAPIURL == "" {
		c.PostalAPIURL = postal.DefaultBaseURL
	}
	if c.NotifyExchange == "" {
		c.NotifyExchange = notify.DefaultExchange
	}
	if c.CartTTL <= 0 {
		c.CartTTL = 24 * time.Hour
	}
	if c.CartPruneInterval <= 0 {
		c.CartPruneInterval = 10 * time.Minute
	}
	return c
}
