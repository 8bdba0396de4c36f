package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPEndpoint string `envconfig:"CHAT_HTTP_ENDPOINT"`
	WSEndpoint   string `envconfig:"CHAT_WS_ENDPOINT"`
	// E2E_DEBUG_JSON dumps every GraphQL request and response body
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// Every scenario signs up fresh users with this password
	Password string `envconfig:"E2E_PASSWORD" default:"e2e-secret"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
