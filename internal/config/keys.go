package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "sk-...abc"
}

// CheckAPIKeys returns the status of all credentials the vendors use.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("Tushare Token", cfg.Vendors.TushareToken, "TRADINGAGENTS_VENDORS_TUSHARE_TOKEN"),
		checkKey("Search API Key", cfg.Search.APIKey, "TRADINGAGENTS_SEARCH_API_KEY"),
	}
}

func checkKey(name, value, envVar string) KeyStatus {
	status := KeyStatus{Name: name}
	if value == "" {
		status.Source = KeySourceNone
		return status
	}

	status.IsSet = true
	status.Masked = maskKey(value)
	if os.Getenv(envVar) == value {
		status.Source = KeySourceEnv
	} else {
		status.Source = KeySourceConfig
	}
	return status
}

// maskKey shows only the first and last few characters of a key.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
