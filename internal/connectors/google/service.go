package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/docgap/internal/core/domain"
)

// ServiceConfig selects how the Drive client authenticates.
// The first non-empty credential wins: AccessToken, CredentialsFile, APIKey.
type ServiceConfig struct {
	// AccessToken is an OAuth access token with drive.readonly scope.
	AccessToken string

	// CredentialsFile is a service account or authorized user JSON file.
	CredentialsFile string

	// APIKey reads publicly shared files only.
	APIKey string

	// Endpoint overrides the API base URL.
	Endpoint string

	// HTTPClient replaces the transport entirely. Credentials are ignored.
	HTTPClient *http.Client
}

func (c ServiceConfig) options() ([]option.ClientOption, error) {
	var opts []option.ClientOption
	switch {
	case c.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(c.HTTPClient))
	case c.AccessToken != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.AccessToken, TokenType: "Bearer"})
		opts = append(opts, option.WithTokenSource(ts))
	case c.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(c.CredentialsFile), option.WithScopes(drive.DriveReadonlyScope))
	case c.APIKey != "":
		opts = append(opts, option.WithAPIKey(c.APIKey))
	default:
		return nil, fmt.Errorf("%w: google drive needs an access token, credentials file or API key", domain.ErrAuthInvalid)
	}

	if c.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.Endpoint))
	}
	return opts, nil
}

// NewDriveService creates a Google Drive API service.
func NewDriveService(ctx context.Context, cfg ServiceConfig) (*drive.Service, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return svc, nil
}
