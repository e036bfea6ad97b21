package definitions

import "time"

// Global settings, Read from arrayctl flags
var (
	Debug     bool
	Username  string
	Password  string
	Endpoints []string
	ArrayType string
	Timeout   time.Duration
)

// Environment variables the credentials fall back to
const (
	EnvUsername = "ARRAY_USERNAME"
	EnvPassword = "ARRAY_PASSWORD"
)
