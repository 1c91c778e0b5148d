package cmd

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string `validate:"required,numeric"`

	DBHost     string `validate:"required"`
	DBPort     string `validate:"required,numeric"`
	DBUser     string `validate:"required"`
	DBPassword string
	DBName     string `validate:"required"`
	DBSslMode  string `validate:"required,oneof=disable require verify-ca verify-full"`

	VATRate       string `validate:"required,numeric"`
	WaybillPrefix string `validate:"required,len=2,alpha,uppercase"`

	StorageDriver string `validate:"required,oneof=local gridfs"`
	StorageDir    string `validate:"required_if=StorageDriver local"`
	MongoURI      string `validate:"required_if=StorageDriver gridfs"`
	MongoDatabase string `validate:"required_if=StorageDriver gridfs"`

	KafkaBrokers             []string `validate:"omitempty,dive,hostname_port"`
	KafkaShipmentStatusTopic string   `validate:"required_with=KafkaBrokers"`

	AdminUsername string `validate:"required_with=AdminPassword"`
	AdminPassword string `validate:"required_with=AdminUsername"`

	QRBackfillSchedule string
}

// LoadConfig reads .env if present, then the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	return Config{
		HTTPPort:                 env("HTTP_PORT", "8080"),
		DBHost:                   env("DB_HOST", "localhost"),
		DBPort:                   env("DB_PORT", "5432"),
		DBUser:                   env("DB_USER", "postgres"),
		DBPassword:               env("DB_PASSWORD", ""),
		DBName:                   env("DB_NAME", "exportdocs"),
		DBSslMode:                env("DB_SSLMODE", "disable"),
		VATRate:                  env("VAT_RATE", "0.07"),
		WaybillPrefix:            env("WAYBILL_PREFIX", "EX"),
		StorageDriver:            env("STORAGE_DRIVER", "local"),
		StorageDir:               env("STORAGE_DIR", "./uploads"),
		MongoURI:                 env("MONGO_URI", ""),
		MongoDatabase:            env("MONGO_DATABASE", "exportdocs"),
		KafkaBrokers:             list(env("KAFKA_HOST", "")),
		KafkaShipmentStatusTopic: env("KAFKA_SHIPMENT_STATUS_TOPIC", "shipment.status.changed"),
		AdminUsername:            env("ADMIN_USERNAME", ""),
		AdminPassword:            env("ADMIN_PASSWORD", ""),
		QRBackfillSchedule:       env("QR_BACKFILL_SCHEDULE", ""),
	}, nil
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func env(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func list(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
