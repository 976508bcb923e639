package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

func Load() error {
	// API Configuration
	viper.SetDefault("API_ADDR", ":8080")
	viper.SetDefault("API_URL", "http://localhost:8080")
	viper.SetDefault("MAX_UPLOAD_MB", 10)
	viper.SetDefault("HISTORY_LIMIT", 5)
	viper.SetDefault("REPORT_DETAIL_ROWS", 50)

	// Database Configuration
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_DSN", "equipment.db")

	// MQTT Configuration
	viper.SetDefault("MQTT_BROKER", "tcp://localhost:1883")
	viper.SetDefault("MQTT_TOPIC", "equipment/datasets/+")
	viper.SetDefault("MQTT_CLIENT_ID", "equipment-ingestor")

	// AWS Configuration
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_S3_BUCKET", "equipment-reports")
	viper.SetDefault("AWS_SNS_TOPIC_ARN", "")
	viper.SetDefault("USE_CLOUD_SERVICES", "false") // Toggle for local vs cloud

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	viper.AutomaticEnv()

	if file := viper.GetString("CONFIG_FILE"); file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", file, err)
		}
	}
	return Current().Validate()
}

func APIAddr() string        { return viper.GetString("API_ADDR") }
func APIURL() string         { return strings.TrimRight(viper.GetString("API_URL"), "/") }
func DBDriver() string       { return viper.GetString("DB_DRIVER") }
func DBDSN() string          { return viper.GetString("DB_DSN") }
func MQTTBroker() string     { return viper.GetString("MQTT_BROKER") }
func MQTTTopic() string      { return viper.GetString("MQTT_TOPIC") }
func MQTTClientID() string   { return viper.GetString("MQTT_CLIENT_ID") }
func AWSRegion() string      { return viper.GetString("AWS_REGION") }
func S3Bucket() string       { return viper.GetString("AWS_S3_BUCKET") }
func SNSTopicArn() string    { return viper.GetString("AWS_SNS_TOPIC_ARN") }
func UseCloudServices() bool { return viper.GetBool("USE_CLOUD_SERVICES") }
func LogLevel() string       { return viper.GetString("LOG_LEVEL") }
func LogFormat() string      { return viper.GetString("LOG_FORMAT") }
func MaxUploadBytes() int    { return viper.GetInt("MAX_UPLOAD_MB") << 20 }
func HistoryLimit() int      { return viper.GetInt("HISTORY_LIMIT") }
func ReportDetailRows() int  { return viper.GetInt("REPORT_DETAIL_ROWS") }

// Settings is a point-in-time copy of the configuration.
type Settings struct {
	APIAddr          string `validate:"required"`
	DBDriver         string `validate:"required,oneof=pgx sqlite"`
	DBDSN            string `validate:"required"`
	MQTTBroker       string `validate:"required"`
	MQTTTopic        string `validate:"required"`
	AWSRegion        string
	S3Bucket         string `validate:"required_if=UseCloudServices true"`
	SNSTopicArn      string
	UseCloudServices bool
	LogLevel         string `validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFormat        string `validate:"oneof=json console"`
	MaxUploadMB      int    `validate:"min=1,max=512"`
	HistoryLimit     int    `validate:"min=1,max=100"`
	ReportDetailRows int    `validate:"min=1,max=1000"`
}

func Current() Settings {
	return Settings{
		APIAddr:          APIAddr(),
		DBDriver:         DBDriver(),
		DBDSN:            DBDSN(),
		MQTTBroker:       MQTTBroker(),
		MQTTTopic:        MQTTTopic(),
		AWSRegion:        AWSRegion(),
		S3Bucket:         S3Bucket(),
		SNSTopicArn:      SNSTopicArn(),
		UseCloudServices: UseCloudServices(),
		LogLevel:         strings.ToLower(LogLevel()),
		LogFormat:        strings.ToLower(LogFormat()),
		MaxUploadMB:      viper.GetInt("MAX_UPLOAD_MB"),
		HistoryLimit:     HistoryLimit(),
		ReportDetailRows: ReportDetailRows(),
	}
}

var validate = validator.New()

func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
