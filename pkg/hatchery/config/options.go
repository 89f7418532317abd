package config

import (
	"fmt"
	"log/slog"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the record store backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		switch dbType {
		case "memory":
		case "postgres":
			if url == "" {
				return fmt.Errorf("database URL is required for postgres")
			}
		case "badger":
			if url == "" {
				return fmt.Errorf("database path is required for badger")
			}
			c.BadgerPath = url
			url = ""
		default:
			return fmt.Errorf("database type must be 'memory', 'postgres' or 'badger', got: %s", dbType)
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithMemoryStorage keeps uploaded images in process memory
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.StorageType = "memory"
		return nil
	}
}

// WithFilesystemStorage writes uploaded images under baseDir
func WithFilesystemStorage(baseDir string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.StorageType = "fs"
		c.FSBaseDir = baseDir
		return nil
	}
}

// WithS3Storage uploads images to an S3 bucket
func WithS3Storage(s3 S3Config) Option {
	return func(c *ServerConfig) error {
		if s3.Bucket == "" {
			return fmt.Errorf("s3 bucket cannot be empty")
		}
		if s3.Region == "" {
			s3.Region = c.S3.Region
		}
		if s3.SSEAlgorithm == "" {
			s3.SSEAlgorithm = c.S3.SSEAlgorithm
		}
		c.StorageType = "s3"
		c.S3 = s3
		return nil
	}
}

// WithCloudinaryStorage uploads images with signed multipart requests
func WithCloudinaryStorage(uploadURL, apiKey, apiSecret string) Option {
	return func(c *ServerConfig) error {
		if uploadURL == "" {
			return fmt.Errorf("cloudinary upload URL cannot be empty")
		}
		if apiKey == "" || apiSecret == "" {
			return fmt.Errorf("cloudinary API key and secret cannot be empty")
		}
		c.StorageType = "cloudinary"
		c.Cloudinary = CloudinaryConfig{
			UploadURL: uploadURL,
			APIKey:    apiKey,
			APISecret: apiSecret,
		}
		return nil
	}
}

// WithFetchURLPrefix sets the prefix the image URL is built from. It must
// address the server that serves uploaded objects; hatchery serves none.
func WithFetchURLPrefix(prefix string) Option {
	return func(c *ServerConfig) error {
		c.FetchURLPrefix = prefix
		return nil
	}
}

// WithPublicIDPrefix sets the prefix of the identifier assets are stored under
func WithPublicIDPrefix(prefix string) Option {
	return func(c *ServerConfig) error {
		c.PublicIDPrefix = prefix
		return nil
	}
}

// WithTempDir sets the directory in-memory uploads are spilled to
func WithTempDir(dir string) Option {
	return func(c *ServerConfig) error {
		if dir == "" {
			return fmt.Errorf("temp directory cannot be empty")
		}
		c.TempDir = dir
		return nil
	}
}

// WithMaxImageBytes caps the size of an uploaded image
func WithMaxImageBytes(n int64) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("max image bytes must be positive, got: %d", n)
		}
		c.MaxImageBytes = n
		return nil
	}
}

// WithSlugAttempts sets how many slugs are tried before giving up
func WithSlugAttempts(n int) Option {
	return func(c *ServerConfig) error {
		if n < 1 {
			return fmt.Errorf("slug attempts must be at least 1, got: %d", n)
		}
		c.SlugAttempts = n
		return nil
	}
}

// WithMaxInsertConflicts sets how many duplicate-slug inserts are retried
func WithMaxInsertConflicts(n int) Option {
	return func(c *ServerConfig) error {
		if n < 0 {
			return fmt.Errorf("max insert conflicts cannot be negative, got: %d", n)
		}
		c.MaxInsertConflicts = n
		return nil
	}
}

// WithLogger sets the logger handed to the service and its backends
func WithLogger(logger *slog.Logger) Option {
	return func(c *ServerConfig) error {
		c.Logger = logger
		return nil
	}
}
