package httpclient

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AuthorizationConfig describes how the API key is attached to requests.
// Bearer-style APIs set type; key-header APIs (e.g. x-goog-api-key) set
// header. The secret itself always comes from the environment.
type AuthorizationConfig struct {
	Type        string `yaml:"type,omitempty"`   // e.g. "Bearer"
	Header      string `yaml:"header,omitempty"` // custom header name
	TokenEnvVar string `yaml:"token_env_var"`    // env var holding the token
}

// ClientConfig represents the YAML configuration for an HTTP client.
type ClientConfig struct {
	BaseURL          string               `yaml:"base_url"`
	Timeout          string               `yaml:"timeout"`
	Headers          map[string]string    `yaml:"headers"`
	Authorization    *AuthorizationConfig `yaml:"authorization,omitempty"`
	RetryCount       int                  `yaml:"retry_count"`
	RetryWaitTime    string               `yaml:"retry_wait_time"`
	MaxRetryWaitTime string               `yaml:"max_retry_wait_time"`
	EnableLogging    bool                 `yaml:"enable_logging"`
}

// APIConfigs represents a map of named API configurations.
type APIConfigs struct {
	Clients map[string]ClientConfig `yaml:"clients"`
}

// LoadConfig loads client configuration from a YAML file.
func LoadConfig(path string) (*APIConfigs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var configs APIConfigs
	if err := yaml.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("error parsing YAML config: %w", err)
	}

	return &configs, nil
}

// GetClientConfig returns a client config by name, resolving environment
// variables for the authorization token and header values.
func (c *APIConfigs) GetClientConfig(name string) (*ClientConfig, error) {
	config, ok := c.Clients[name]
	if !ok {
		return nil, fmt.Errorf("client config not found: %s", name)
	}

	if config.Authorization != nil {
		tokenEnvVar := config.Authorization.TokenEnvVar
		if tokenEnvVar == "" {
			return nil, fmt.Errorf("token_env_var is required in authorization configuration")
		}

		token := os.Getenv(tokenEnvVar)
		if token == "" {
			return nil, fmt.Errorf("environment variable %s for authorization token is required but not set", tokenEnvVar)
		}

		if config.Headers == nil {
			config.Headers = make(map[string]string)
		}

		if config.Authorization.Header != "" {
			config.Headers[config.Authorization.Header] = token
		} else {
			authType := config.Authorization.Type
			if authType == "" {
				authType = "Bearer"
			}
			config.Headers["Authorization"] = authType + " " + token
		}
	}

	// Resolve ${VAR_NAME} placeholders in remaining header values.
	for key, value := range config.Headers {
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envName := value[2 : len(value)-1]
			envValue := os.Getenv(envName)
			if envValue == "" {
				return nil, fmt.Errorf("environment variable %s is required but not set", envName)
			}
			config.Headers[key] = envValue
		}
	}

	return &config, nil
}

// ToConfig converts a ClientConfig to a httpclient.Config.
func (c *ClientConfig) ToConfig() (*Config, error) {
	config := DefaultConfig()

	if c.BaseURL == "" {
		return nil, fmt.Errorf("base_url is required in client configuration")
	}

	config.BaseURL = c.BaseURL
	config.Headers = c.Headers
	config.RetryCount = c.RetryCount
	config.EnableLogging = c.EnableLogging

	if c.Timeout == "" {
		return nil, fmt.Errorf("timeout is required in client configuration")
	}

	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration: %w", err)
	}
	config.Timeout = timeout

	if c.RetryWaitTime != "" {
		retryWait, err := time.ParseDuration(c.RetryWaitTime)
		if err != nil {
			return nil, fmt.Errorf("invalid retry wait time: %w", err)
		}
		config.RetryWaitTime = retryWait
	}

	if c.MaxRetryWaitTime != "" {
		maxRetryWait, err := time.ParseDuration(c.MaxRetryWaitTime)
		if err != nil {
			return nil, fmt.Errorf("invalid max retry wait time: %w", err)
		}
		config.MaxRetryWaitTime = maxRetryWait
	}

	return config, nil
}

// CreateClient creates a new HTTP client with this configuration.
func (c *ClientConfig) CreateClient() (*Client, error) {
	config, err := c.ToConfig()
	if err != nil {
		return nil, err
	}

	client := NewClient(config)

	if c.EnableLogging {
		client.WithMiddleware(LoggingMiddleware())
	}

	return client, nil
}
