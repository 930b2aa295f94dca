package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/mindmap/internal/flagx"
	"github.com/dmitrijs2005/mindmap/internal/timex"
)

// JsonConfig is the on-disk shape of the config file.
type JsonConfig struct {
	DatabaseDriver   string         `json:"database_driver"`
	DatabaseDSN      string         `json:"database_dsn"`
	AutoSaveDelay    timex.Duration `json:"autosave_delay"`
	OtpLifetime      timex.Duration `json:"otp_lifetime"`
	OperationTimeout timex.Duration `json:"operation_timeout"`
	LogBackend       string         `json:"log_backend"`
	LogLevel         string         `json:"log_level"`

	SMTP struct {
		Host     string `json:"host"`
		Port     string `json:"port"`
		Username string `json:"username"`
		Password string `json:"password"`
		From     string `json:"from"`
		FromName string `json:"from_name"`
	} `json:"smtp"`

	GenAI struct {
		Endpoint string `json:"endpoint"`
		Model    string `json:"model"`
		APIKey   string `json:"api_key"`
	} `json:"genai"`

	S3 struct {
		Bucket       string `json:"bucket"`
		Region       string `json:"region"`
		BaseEndpoint string `json:"base_endpoint"`
		AccessKey    string `json:"access_key"`
		SecretKey    string `json:"secret_key"`
		Passphrase   string `json:"passphrase"`
	} `json:"s3"`

	Session struct {
		Secret string         `json:"secret"`
		TTL    timex.Duration `json:"ttl"`
	} `json:"session"`
}

// parseJson overlays cfg with the file named by -c/-config. It panics on
// read or decode errors, like the flag stage.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.DatabaseDriver, jc.DatabaseDriver)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setDuration(&cfg.AutoSaveDelay, jc.AutoSaveDelay)
	setDuration(&cfg.OtpLifetime, jc.OtpLifetime)
	setDuration(&cfg.OperationTimeout, jc.OperationTimeout)
	setString(&cfg.LogBackend, jc.LogBackend)
	setString(&cfg.LogLevel, jc.LogLevel)

	setString(&cfg.SMTP.Host, jc.SMTP.Host)
	setString(&cfg.SMTP.Port, jc.SMTP.Port)
	setString(&cfg.SMTP.Username, jc.SMTP.Username)
	setString(&cfg.SMTP.Password, jc.SMTP.Password)
	setString(&cfg.SMTP.From, jc.SMTP.From)
	setString(&cfg.SMTP.FromName, jc.SMTP.FromName)

	setString(&cfg.GenAI.Endpoint, jc.GenAI.Endpoint)
	setString(&cfg.GenAI.Model, jc.GenAI.Model)
	setString(&cfg.GenAI.APIKey, jc.GenAI.APIKey)

	setString(&cfg.S3.Bucket, jc.S3.Bucket)
	setString(&cfg.S3.Region, jc.S3.Region)
	setString(&cfg.S3.BaseEndpoint, jc.S3.BaseEndpoint)
	setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
	setString(&cfg.S3.Passphrase, jc.S3.Passphrase)

	setString(&cfg.Session.Secret, jc.Session.Secret)
	setDuration(&cfg.Session.TTL, jc.Session.TTL)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
