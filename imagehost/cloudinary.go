// Package imagehost uploads trade screenshots to a Cloudinary-compatible
// image host and returns their public URLs.
package imagehost

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://api.cloudinary.com"
	DefaultFolder  = "trade-journal"
)

// ErrNotConfigured is returned when cloud name, key or secret is missing.
var ErrNotConfigured = errors.New("image host is not configured")

// UploadError is a failed upload as reported by the host.
type UploadError struct {
	Status  int
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upload failed (status %d): %s", e.Status, e.Message)
	}
	return "upload failed: " + e.Message
}

func (e *UploadError) Unwrap() error { return e.Err }

// Config identifies the account uploads go to.
type Config struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	CloudName string `yaml:"cloud_name" json:"cloud_name"`
	APIKey    string `yaml:"api_key" json:"api_key"`
	APISecret string `yaml:"api_secret" json:"api_secret,omitempty"`
	Folder    string `yaml:"folder" json:"folder"`
}

// Configured reports whether uploads can be signed.
func (c Config) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Uploader performs signed uploads.
type Uploader struct {
	cfg  Config
	http *resty.Client
	now  func() time.Time
}

// New returns an uploader for cfg. Empty base URL and folder take the defaults.
func New(cfg Config) *Uploader {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Folder == "" {
		cfg.Folder = DefaultFolder
	}
	return &Uploader{
		cfg:  cfg,
		http: resty.New().SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).SetTimeout(60 * time.Second),
		now:  time.Now,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Upload sends image (a data URI or remote URL) stored under filename and
// returns its https URL.
func (u *Uploader) Upload(ctx context.Context, image, filename string) (string, error) {
	if !u.cfg.Configured() {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(image) == "" {
		return "", &UploadError{Message: "image is required"}
	}

	params := map[string]string{
		"folder":    u.cfg.Folder,
		"timestamp": strconv.FormatInt(u.now().Unix(), 10),
	}
	if filename != "" {
		params["public_id"] = filename
	}

	form := map[string]string{
		"file":      image,
		"api_key":   u.cfg.APIKey,
		"signature": Sign(params, u.cfg.APISecret),
	}
	for k, v := range params {
		form[k] = v
	}

	var out uploadResponse
	resp, err := u.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		SetError(&out).
		Post("/v1_1/" + u.cfg.CloudName + "/auto/upload")
	if err != nil {
		return "", &UploadError{Message: err.Error(), Err: err}
	}
	if resp.IsError() {
		msg := resp.Status()
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", &UploadError{Status: resp.StatusCode(), Message: msg}
	}
	if out.SecureURL == "" {
		return "", &UploadError{Status: resp.StatusCode(), Message: "response has no secure_url"}
	}
	return out.SecureURL, nil
}

// Sign computes the upload signature: the sorted key=value pairs joined by
// '&', followed by the secret, hashed with SHA-1.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	b.WriteString(secret)

	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
