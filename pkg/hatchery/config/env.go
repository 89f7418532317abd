package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig is the process environment as read by WithEnv.
type envConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DBSchema     string `env:"HATCHERY_DB_SCHEMA"`
	BadgerPath   string `env:"BADGER_PATH" env-default:"./data/badger"`

	StorageType    string `env:"STORAGE_TYPE" env-default:"memory"`
	FSBaseDir      string `env:"FS_BASE_DIR" env-default:"./data/images"`
	FetchURLPrefix string `env:"ASSET_FETCH_URL_PREFIX"`
	PublicIDPrefix string `env:"ASSET_PUBLIC_ID_PREFIX"`

	S3Bucket          string `env:"AWS_S3_BUCKET"`
	S3Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Endpoint        string `env:"AWS_S3_ENDPOINT"`
	S3UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	S3EnableSSE       bool   `env:"AWS_S3_ENABLE_SSE" env-default:"false"`
	S3SSEAlgorithm    string `env:"AWS_S3_SSE_ALGORITHM" env-default:"AES256"`
	S3SSEKMSKeyID     string `env:"AWS_S3_SSE_KMS_KEY_ID"`
	S3CreateBucket    bool   `env:"AWS_S3_CREATE_BUCKET_IF_NOT_EXIST" env-default:"false"`

	CloudinaryUploadURL string `env:"CLOUDINARY_UPLOAD_URL"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	TempDir       string `env:"TEMP_DIR"`
	MaxImageBytes int64  `env:"MAX_IMAGE_BYTES" env-default:"10485760"`
}

// WithEnv replaces the configuration with values read from the process
// environment. Unset variables fall back to the library defaults, so it
// belongs first in the option list; later options override it.
//
//	PORT, ENVIRONMENT
//	DATABASE_TYPE (memory|postgres|badger), DATABASE_URL, HATCHERY_DB_SCHEMA, BADGER_PATH
//	STORAGE_TYPE (memory|fs|s3|cloudinary), FS_BASE_DIR
//	ASSET_FETCH_URL_PREFIX, ASSET_PUBLIC_ID_PREFIX
//	AWS_S3_BUCKET, AWS_S3_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY,
//	AWS_S3_ENDPOINT, AWS_S3_USE_PATH_STYLE, AWS_S3_ENABLE_SSE,
//	AWS_S3_SSE_ALGORITHM, AWS_S3_SSE_KMS_KEY_ID, AWS_S3_CREATE_BUCKET_IF_NOT_EXIST
//	CLOUDINARY_UPLOAD_URL, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET
//	TEMP_DIR, MAX_IMAGE_BYTES
//
// ASSET_FETCH_URL_PREFIX has no default; set it to the public URL of the
// asset host so stored image URLs resolve.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		c.Port = env.Port
		c.Environment = env.Environment
		c.DatabaseType = env.DatabaseType
		c.DatabaseURL = env.DatabaseURL
		c.DBSchema = env.DBSchema
		c.BadgerPath = env.BadgerPath

		c.StorageType = env.StorageType
		c.FSBaseDir = env.FSBaseDir
		c.FetchURLPrefix = env.FetchURLPrefix
		c.PublicIDPrefix = env.PublicIDPrefix
		c.S3 = S3Config{
			Bucket:          env.S3Bucket,
			Region:          env.S3Region,
			AccessKeyID:     env.S3AccessKeyID,
			SecretAccessKey: env.S3SecretAccessKey,
			Endpoint:        env.S3Endpoint,
			UsePathStyle:    env.S3UsePathStyle,
			EnableSSE:       env.S3EnableSSE,
			SSEAlgorithm:    env.S3SSEAlgorithm,
			SSEKMSKeyID:     env.S3SSEKMSKeyID,
			EnsureBucket:    env.S3CreateBucket,
		}
		c.Cloudinary = CloudinaryConfig{
			UploadURL: env.CloudinaryUploadURL,
			APIKey:    env.CloudinaryAPIKey,
			APISecret: env.CloudinaryAPISecret,
		}

		c.TempDir = env.TempDir
		if c.TempDir == "" {
			c.TempDir = os.TempDir()
		}
		c.MaxImageBytes = env.MaxImageBytes
		return nil
	}
}
