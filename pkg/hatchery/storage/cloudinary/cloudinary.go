package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/tendant/hatchery/pkg/hatchery"
)

// Config options for the signed-upload backend
type Config struct {
	UploadURL      string // Upload endpoint, e.g. https://api.cloudinary.com/v1_1/<cloud>/image/upload
	APIKey         string
	APISecret      string
	PublicIDPrefix string // Prepended to the slug to form public_id
	HTTPClient     *http.Client
	Now            func() time.Time
	Logger         *slog.Logger
}

// Backend uploads images to a Cloudinary-compatible host with a signed
// multipart POST. It implements hatchery.BlobStore.
type Backend struct {
	uploadURL  string
	prefix     string
	signer     *Signer
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a new signed-upload backend
func New(config Config) (*Backend, error) {
	if config.UploadURL == "" {
		return nil, errors.New("upload URL is required")
	}
	if config.APIKey == "" || config.APISecret == "" {
		return nil, errors.New("API key and secret are required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Backend{
		uploadURL:  config.UploadURL,
		prefix:     config.PublicIDPrefix,
		signer:     NewSigner(config.APIKey, config.APISecret, config.Now),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// PublicID returns the identifier the host stores the image under
func (b *Backend) PublicID(slug string) string {
	return b.prefix + slug
}

// Upload makes one signed upload attempt. Transport errors and non-2xx
// responses are returned as *hatchery.UploadError.
func (b *Backend) Upload(ctx context.Context, slug string, reader io.Reader) error {
	publicID := b.PublicID(slug)
	cred, err := b.signer.Credential(publicID)
	if err != nil {
		return err
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeForm(form, cred, slug, reader))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.uploadURL, pr)
	if err != nil {
		pr.Close()
		<-done
		return &hatchery.UploadError{Backend: "cloudinary", PublicID: publicID, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := b.httpClient.Do(req)
	// Unblock the form writer if the host answered before reading the body,
	// and make sure it no longer reads from reader once we return.
	pr.Close()
	<-done
	if err != nil {
		return &hatchery.UploadError{Backend: "cloudinary", PublicID: publicID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &hatchery.UploadError{
			Backend:    "cloudinary",
			PublicID:   publicID,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response %s: %s", resp.Status, body),
		}
	}
	io.Copy(io.Discard, resp.Body)

	b.logger.Debug("Uploaded asset", "public_id", publicID, "status", resp.StatusCode)
	return nil
}

func writeForm(form *multipart.Writer, cred Credential, slug string, reader io.Reader) error {
	fields := []struct{ name, value string }{
		{"api_key", cred.APIKey},
		{"timestamp", cred.Timestamp},
		{"signature", cred.Signature},
		{"public_id", cred.PublicID},
	}
	for _, f := range fields {
		if err := form.WriteField(f.name, f.value); err != nil {
			return err
		}
	}

	part, err := form.CreateFormFile("file", slug)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, reader); err != nil {
		return err
	}
	return form.Close()
}
