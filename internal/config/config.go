package config

import "time"

// SMTPConfig configures OTP e-mail delivery. Delivery falls back to logging
// the code when Host is empty.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// GenAIConfig configures the document generation endpoint.
type GenAIConfig struct {
	Endpoint string
	Model    string
	APIKey   string
}

// S3Config configures the optional snapshot archive. Archiving is off when
// Bucket is empty.
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	// Passphrase, when set, seals archived snapshots.
	Passphrase   string
}

// SessionConfig configures remembered logins.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// Config holds runtime settings for the mindmap shell.
type Config struct {
	DatabaseDriver   string
	DatabaseDSN      string
	AutoSaveDelay    time.Duration
	OtpLifetime      time.Duration
	OperationTimeout time.Duration
	LogBackend       string
	LogLevel         string

	SMTP    SMTPConfig
	GenAI   GenAIConfig
	S3      S3Config
	Session SessionConfig
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "mindmap.db"
	c.AutoSaveDelay = 2 * time.Second
	c.OtpLifetime = 10 * time.Minute
	c.OperationTimeout = 10 * time.Second
	c.LogBackend = "slog"
	c.LogLevel = "info"

	c.SMTP = SMTPConfig{Port: "587", FromName: "Mindmap"}
	c.GenAI = GenAIConfig{
		Endpoint: "https://generativelanguage.googleapis.com",
		Model:    "gemini-2.0-flash",
	}
	c.S3 = S3Config{Region: "us-east-1"}
	c.Session = SessionConfig{TTL: 7 * 24 * time.Hour}
}

// LoadConfig applies defaults, then the JSON file (if any), then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
