// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Redis         RedisConfig             `mapstructure:"redis"`
	GenAI         GenAIConfig             `mapstructure:"genai"`
	Classifier    ClassifierConfig        `mapstructure:"classifier"`
	Handoff       HandoffConfig           `mapstructure:"handoff"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	RegistryPath  string                  `mapstructure:"registry_path"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	// OAuth is used when client_id is set, e.g. against a SaaS cluster.
	OAuth CamundaOAuthConfig `mapstructure:"oauth"`
}

type CamundaOAuthConfig struct {
	ClientID               string `mapstructure:"client_id"`
	ClientSecret           string `mapstructure:"client_secret"`
	Audience               string `mapstructure:"audience"`
	AuthorizationServerURL string `mapstructure:"authorization_server_url"`
}

type RedisConfig struct {
	Address     string `mapstructure:"address"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	PoolSize    int    `mapstructure:"pool_size"`
	DialTimeout int    `mapstructure:"dial_timeout"` // milliseconds
}

const (
	ProviderGemini  = "gemini"
	ProviderGateway = "gateway"
)

// GenAIConfig selects and configures the remote intent classification backend.
type GenAIConfig struct {
	Provider    string  `mapstructure:"provider"` // gemini | gateway
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"` // gateway only
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

const (
	StrategyRemote    = "remote"
	StrategyHeuristic = "heuristic"
)

type ClassifierConfig struct {
	Strategy string `mapstructure:"strategy"` // remote | heuristic
	Timeout  int    `mapstructure:"timeout"`  // milliseconds
}

// HandoffConfig controls publishing finished plans to redis for the
// retrieval and drafting services.
type HandoffConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TTL       int    `mapstructure:"ttl"` // seconds
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	MetricsAddress string `mapstructure:"metrics_address"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// WorkerConfig holds the settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
