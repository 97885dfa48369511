package media

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUploadFailed wraps any collaborator failure on the upload path. A send
// is aborted on this error; no message row is created with a broken image
// reference.
var ErrUploadFailed = errors.New("image upload failed")

// Upload is the stable reference returned by the collaborator: a serving URL
// and the handle needed to delete the resource later.
type Upload struct {
	URL      string
	PublicID string
}

// Uploader stores and deletes image attachments in external object storage.
type Uploader interface {
	Upload(ctx context.Context, base64Image string) (Upload, error)
	Destroy(ctx context.Context, publicID string) error
}

// CloudinaryUploader talks to the Cloudinary HTTP API using signed requests.
type CloudinaryUploader struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	baseURL   string
	client    *http.Client
}

// NewCloudinaryUploader builds the collaborator. All requests are bounded by
// the client timeout.
func NewCloudinaryUploader(cloudName, apiKey, apiSecret, folder string) *CloudinaryUploader {
	return &CloudinaryUploader{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    folder,
		baseURL:   "https://api.cloudinary.com/v1_1",
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether credentials are present. Image sends are
// rejected up front when they are not.
func (u *CloudinaryUploader) Configured() bool {
	return u.cloudName != "" && u.apiKey != "" && u.apiSecret != ""
}

// Upload pushes a base64-encoded image and returns its URL and public id.
func (u *CloudinaryUploader) Upload(ctx context.Context, base64Image string) (Upload, error) {
	if !u.Configured() {
		return Upload{}, fmt.Errorf("%w: uploader is not configured", ErrUploadFailed)
	}
	if base64Image == "" {
		return Upload{}, fmt.Errorf("%w: empty image payload", ErrUploadFailed)
	}

	// Accept both raw base64 and data-URI payloads.
	payload := base64Image
	if i := strings.Index(base64Image, ","); i != -1 {
		payload = base64Image[i+1:]
	}

	publicID := uuid.NewString()
	if u.folder != "" {
		publicID = u.folder + "/" + publicID
	}
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Add("file", "data:image/jpeg;base64,"+payload)
	form.Add("api_key", u.apiKey)
	form.Add("public_id", publicID)
	form.Add("timestamp", timestamp)
	form.Add("signature", u.sign(fmt.Sprintf("public_id=%s&timestamp=%s", publicID, timestamp)))

	endpoint := fmt.Sprintf("%s/%s/image/upload", u.baseURL, u.cloudName)
	body, err := u.post(ctx, endpoint, form)
	if err != nil {
		return Upload{}, err
	}

	var result struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		PublicID  string `json:"public_id"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return Upload{}, fmt.Errorf("%w: decode response: %v", ErrUploadFailed, err)
	}
	if result.Error.Message != "" {
		return Upload{}, fmt.Errorf("%w: %s", ErrUploadFailed, result.Error.Message)
	}

	servingURL := result.SecureURL
	if servingURL == "" {
		servingURL = result.URL
	}
	if servingURL == "" {
		return Upload{}, fmt.Errorf("%w: no url in response", ErrUploadFailed)
	}
	return Upload{URL: servingURL, PublicID: result.PublicID}, nil
}

// Destroy removes an uploaded image by public id. Callers on cleanup paths
// treat a failure here as best-effort and only log it.
func (u *CloudinaryUploader) Destroy(ctx context.Context, publicID string) error {
	if !u.Configured() {
		return errors.New("uploader is not configured")
	}
	if publicID == "" {
		return errors.New("empty public id")
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	form := url.Values{}
	form.Add("api_key", u.apiKey)
	form.Add("public_id", publicID)
	form.Add("timestamp", timestamp)
	form.Add("signature", u.sign(fmt.Sprintf("public_id=%s&timestamp=%s", publicID, timestamp)))

	endpoint := fmt.Sprintf("%s/%s/image/destroy", u.baseURL, u.cloudName)
	body, err := u.post(ctx, endpoint, form)
	if err != nil {
		return err
	}

	var result struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode destroy response: %w", err)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("destroy returned %q", result.Result)
	}
	return nil
}

func (u *CloudinaryUploader) post(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUploadFailed, err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUploadFailed, res.StatusCode, body)
	}
	return body, nil
}

// Cloudinary signatures are SHA1 over the sorted params plus the API secret.
func (u *CloudinaryUploader) sign(params string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(params+u.apiSecret)))
}
