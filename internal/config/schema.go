package config

// Config holds kaidan configuration.
// Loaded from config.yaml with KAIDAN_ environment overrides.
type Config struct {
	Server    ServerCfg    `mapstructure:"server" yaml:"server"`
	Providers ProvidersCfg `mapstructure:"providers" yaml:"providers"`
	Models    ModelsCfg    `mapstructure:"models" yaml:"models"`
	NDL       NDLCfg       `mapstructure:"ndl" yaml:"ndl"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// ProviderCfg configures one generation provider.
type ProviderCfg struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`   // API key (supports ${ENV_VAR} syntax)
	BaseURL string `mapstructure:"base_url" yaml:"base_url"` // Optional endpoint override
	Model   string `mapstructure:"model" yaml:"model"`       // Provider default model
}

// ProvidersCfg groups the generation providers.
type ProvidersCfg struct {
	Gemini ProviderCfg `mapstructure:"gemini" yaml:"gemini"`
	OpenAI ProviderCfg `mapstructure:"openai" yaml:"openai"`
}

// ModelsCfg selects which models serve each pipeline stage.
type ModelsCfg struct {
	// Intent is the fixed lightweight model used for intent extraction.
	Intent string `mapstructure:"intent" yaml:"intent"`
	// Answer is the default answer model when a request names none.
	Answer string `mapstructure:"answer" yaml:"answer"`
}

// NDLCfg configures the digital library search client.
type NDLCfg struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "0.0.0.0",
			Port: "8080",
		},
		Providers: ProvidersCfg{
			Gemini: ProviderCfg{
				APIKey: "${GEMINI_API_KEY}",
				Model:  "gemini-2.5-flash",
			},
			OpenAI: ProviderCfg{
				APIKey: "${OPENAI_API_KEY}",
				Model:  "gpt-4o-mini",
			},
		},
		Models: ModelsCfg{
			Intent: "gemini-2.5-flash-lite",
			Answer: "gemini-2.5-flash",
		},
		NDL: NDLCfg{
			BaseURL: "https://lab.ndl.go.jp/dl",
		},
	}
}
