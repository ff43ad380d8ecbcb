package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	AIProvider           string
	GoogleAPIKey         string
	OpenAIAPIKey         string
	GeneratorModel       string
	GeneratorTemperature float32
	JudgeModel           string
	JudgeTemperature     float32
	EvaluationLogPath    string
	BatchItemDelay       time.Duration
	MaxTokens            int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EVALLAB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EvalLab API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("generator.model", "gemini-2.5-flash")
	v.SetDefault("generator.temperature", 0.5)
	v.SetDefault("judge.model", "gemini-2.5-flash")
	v.SetDefault("judge.temperature", 0.5)
	v.SetDefault("evaluation.log_path", "evaluations.csv")
	v.SetDefault("batch.item_delay", "1s")
	v.SetDefault("max_tokens", 2048)

	delayString := v.GetString("batch.item_delay")
	if delayString == "" {
		delayString = "1s"
	}

	delay, err := time.ParseDuration(delayString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid batch item delay: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		AIProvider:           strings.ToLower(v.GetString("ai.provider")),
		GoogleAPIKey:         v.GetString("google_api_key"),
		OpenAIAPIKey:         v.GetString("openai_api_key"),
		GeneratorModel:       v.GetString("generator.model"),
		GeneratorTemperature: float32(v.GetFloat64("generator.temperature")),
		JudgeModel:           v.GetString("judge.model"),
		JudgeTemperature:     float32(v.GetFloat64("judge.temperature")),
		EvaluationLogPath:    v.GetString("evaluation.log_path"),
		BatchItemDelay:       delay,
		MaxTokens:            v.GetInt("max_tokens"),
	}

	switch cfg.AIProvider {
	case "gemini", "openai":
	default:
		return Config{}, fmt.Errorf("unsupported ai provider %q", cfg.AIProvider)
	}

	if cfg.EvaluationLogPath == "" {
		cfg.EvaluationLogPath = "evaluations.csv"
	}

	return cfg, nil
}
