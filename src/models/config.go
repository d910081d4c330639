package models

// MConfig Structure
type MConfig struct {
	Name     string      `yaml:"name"`
	Host     string      `yaml:"host"`
	Port     int         `yaml:"port"`
	LogLevel string      `yaml:"log_level"`
	Source   MRateSource `yaml:"rate_source"`
	Poll     MPollConfig `yaml:"poll"`
}

type MRateSource struct {
	EndpointURL    string `yaml:"endpoint_url"`
	RequestTimeout int    `yaml:"timeout"`
	UserAgent      string `yaml:"user_agent"`
}

type MPollConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}
