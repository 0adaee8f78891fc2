package cli

import (
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	AuthAddr   string
	GameAddr   string
	ServerURL  string
	Passphrase string
	Token      string
	TokenFile  string
	Output     string
	Verbose    bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		AuthAddr:   getEnvOrDefault("NETPONG_AUTH_ADDR", "localhost:8081"),
		GameAddr:   getEnvOrDefault("NETPONG_GAME_ADDR", "localhost:8080"),
		ServerURL:  getEnvOrDefault("NETPONG_SERVER", "http://localhost:8082"),
		Passphrase: os.Getenv("NETPONG_PASSPHRASE"),
		Token:      os.Getenv("NETPONG_TOKEN"),
		TokenFile:  getEnvOrDefault("NETPONG_TOKEN_FILE", defaultTokenFile()),
		Output:     "text",
		Verbose:    false,
	}
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No token file is fine
		}
		return err
	}

	c.Token = string(data)
	return nil
}

// SaveToken saves the token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".netpong/token"
	}
	return filepath.Join(home, ".netpong", "token")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
