package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=3001"`
	AllowedOrigin        string        `env:"ALLOWED_ORIGIN,default=http://localhost:3000"`
	GeminiAPIKey         string        `env:"GEMINI_API_KEY"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=32"`
	TranslationTimeout   time.Duration `env:"TRANSLATION_TIMEOUT,default=10s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
}
