package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/xavierca1/fitness-sales/internal/entity"
)

// Config is read from the environment exactly once at startup and passed by
// reference into constructors. Business logic never touches os.Getenv.
type Config struct {
	ListenAddr  string
	DatabaseURL string

	Rabbit RabbitConfig
	SMTP   SMTPConfig

	// UniversalKey is the administrative replay token: a submission carrying
	// it is always treated as fresh and never leaves a draft behind.
	UniversalKey string

	// Jitter window for the delayed final delivery.
	DeliveryMin time.Duration
	DeliveryMax time.Duration

	SweepInterval time.Duration
	// ScheduleGrace is how long past a scheduled delivery the sweep waits
	// before assuming the original task died with the process.
	ScheduleGrace time.Duration

	// ProducedDir holds generated nutrition documents, uploaded workout
	// programs and the shared recipes book.
	ProducedDir string

	Forms        FormURLs
	ShortenLinks bool
}

type RabbitConfig struct {
	User string
	Pass string
	Host string
	Port string
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// FormURLs are the public re-input forms, one per resumable sale type, plus
// the staff form used to request a missing workout program.
type FormURLs struct {
	Beginner          string
	Advanced          string
	NutritionStandard string
	NutritionPro      string
	Coaching          string
	ProgramRequest    string
}

// URLFor returns the re-input form for a sale type. Posing and endo signups
// collect contact fields only, so they share the coaching form.
func (f FormURLs) URLFor(t entity.SaleType) string {
	switch t {
	case entity.SaleTypeBeginner:
		return f.Beginner
	case entity.SaleTypeAdvanced:
		return f.Advanced
	case entity.SaleTypeNutritionStandard:
		return f.NutritionStandard
	case entity.SaleTypeNutritionPro:
		return f.NutritionPro
	case entity.SaleTypeCoaching, entity.SaleTypePosing, entity.SaleTypeEndo:
		return f.Coaching
	case entity.SaleTypeProgramRequest:
		return f.ProgramRequest
	default:
		return ""
	}
}

func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:  envOr("LISTEN_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Rabbit: RabbitConfig{
			User: envOr("RABBITMQ_USER", "guest"),
			Pass: envOr("RABBITMQ_PASS", "guest"),
			Host: envOr("RABBITMQ_HOST", "localhost"),
			Port: envOr("RABBITMQ_PORT", "5672"),
		},
		SMTP: SMTPConfig{
			Host: os.Getenv("MAIL_HOST"),
			User: os.Getenv("MAIL_USER"),
			Pass: os.Getenv("MAIL_PASS"),
			From: envOr("MAIL_FROM", "noreply@example.com"),
		},
		UniversalKey: os.Getenv("UNIVERSAL_KEY"),
		ProducedDir:  envOr("PRODUCED_DIR", "produced"),
		Forms: FormURLs{
			Beginner:          os.Getenv("FORM_URL_BEGINNER"),
			Advanced:          os.Getenv("FORM_URL_ADVANCED"),
			NutritionStandard: os.Getenv("FORM_URL_NUTRITION_STANDARD"),
			NutritionPro:      os.Getenv("FORM_URL_NUTRITION_PRO"),
			Coaching:          os.Getenv("FORM_URL_COACHING"),
			ProgramRequest:    os.Getenv("FORM_URL_PROGRAM_REQUEST"),
		},
		ShortenLinks: envOr("SHORTEN_LINKS", "false") == "true",
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.UniversalKey == "" {
		return nil, fmt.Errorf("UNIVERSAL_KEY is required")
	}

	var err error
	if cfg.SMTP.Port, err = intEnv("MAIL_PORT", 587); err != nil {
		return nil, err
	}

	minMinutes, err := intEnv("DELIVERY_MIN_MINUTES", 10)
	if err != nil {
		return nil, err
	}
	maxMinutes, err := intEnv("DELIVERY_MAX_MINUTES", 45)
	if err != nil {
		return nil, err
	}
	if maxMinutes < minMinutes {
		return nil, fmt.Errorf("DELIVERY_MAX_MINUTES (%d) is below DELIVERY_MIN_MINUTES (%d)", maxMinutes, minMinutes)
	}
	cfg.DeliveryMin = time.Duration(minMinutes) * time.Minute
	cfg.DeliveryMax = time.Duration(maxMinutes) * time.Minute

	sweepMinutes, err := intEnv("SWEEP_INTERVAL_MINUTES", 10)
	if err != nil {
		return nil, err
	}
	cfg.SweepInterval = time.Duration(sweepMinutes) * time.Minute

	graceMinutes, err := intEnv("SCHEDULE_GRACE_MINUTES", 5)
	if err != nil {
		return nil, err
	}
	cfg.ScheduleGrace = time.Duration(graceMinutes) * time.Minute

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
