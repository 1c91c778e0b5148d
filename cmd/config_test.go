package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		HTTPPort:      "8080",
		DBHost:        "localhost",
		DBPort:        "5432",
		DBUser:        "exportdocs",
		DBName:        "exportdocs",
		DBSslMode:     "disable",
		VATRate:       "0.07",
		WaybillPrefix: "EX",
		StorageDriver: "local",
		StorageDir:    "./uploads",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "lowercase prefix", mutate: func(c *Config) { c.WaybillPrefix = "ex" }, wantErr: true},
		{name: "three letter prefix", mutate: func(c *Config) { c.WaybillPrefix = "EXP" }, wantErr: true},
		{name: "unknown storage driver", mutate: func(c *Config) { c.StorageDriver = "s3" }, wantErr: true},
		{name: "gridfs without uri", mutate: func(c *Config) { c.StorageDriver = "gridfs" }, wantErr: true},
		{name: "gridfs", mutate: func(c *Config) {
			c.StorageDriver = "gridfs"
			c.MongoURI = "mongodb://localhost:27017"
			c.MongoDatabase = "exportdocs"
		}},
		{name: "kafka broker without port", mutate: func(c *Config) {
			c.KafkaBrokers = []string{"kafka"}
			c.KafkaShipmentStatusTopic = "shipment.status.changed"
		}, wantErr: true},
		{name: "kafka", mutate: func(c *Config) {
			c.KafkaBrokers = []string{"kafka:9092"}
			c.KafkaShipmentStatusTopic = "shipment.status.changed"
		}},
		{name: "admin without password", mutate: func(c *Config) { c.AdminUsername = "admin" }, wantErr: true},
		{name: "non-numeric VAT rate", mutate: func(c *Config) { c.VATRate = "seven" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_ReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WAYBILL_PREFIX", "TH")
	t.Setenv("KAFKA_HOST", "kafka-1:9092, kafka-2:9092")

	c, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "TH", c.WaybillPrefix)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.KafkaBrokers)
	assert.Equal(t, "0.07", c.VATRate)
}
