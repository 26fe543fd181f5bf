package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/domain/model"
	"github.com/m-mizutani/updraft/pkg/domain/types"
)

// DefaultTimeout bounds a single registry request
const DefaultTimeout = 10 * time.Second

// maxArchiveSize caps a downloaded release archive
const maxArchiveSize = 512 << 20

type client struct {
	githubClient *github.Client
	timeout      time.Duration
}

// config holds registry client settings collected from options
type config struct {
	httpClient *http.Client
	token      string
	baseURL    string
	timeout    time.Duration
	app        *appAuth
}

// appAuth identifies a GitHub App installation
type appAuth struct {
	appID          int64
	installationID int64
	privateKey     []byte
}

// Option is a functional option for the registry client
type Option func(*config)

// WithToken authenticates requests with a personal access or installation token
func WithToken(token string) Option {
	return func(c *config) {
		c.token = token
	}
}

// WithBaseURL points the client at a different API root (GitHub Enterprise, tests)
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the timeout applied to every registry request
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = timeout
	}
}

// WithAppInstallation authenticates as a GitHub App installation. It takes
// precedence over WithToken.
func WithAppInstallation(appID, installationID int64, privateKey []byte) Option {
	return func(c *config) {
		c.app = &appAuth{
			appID:          appID,
			installationID: installationID,
			privateKey:     privateKey,
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *config) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new release registry client backed by the GitHub REST API
func NewClient(opts ...Option) (interfaces.RegistryClient, error) {
	cfg := &config{
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	httpClient := cfg.httpClient
	if cfg.app != nil {
		base := http.DefaultTransport
		if httpClient != nil && httpClient.Transport != nil {
			base = httpClient.Transport
		}

		// Create GitHub App transport
		itr, err := ghinstallation.New(base, cfg.app.appID, cfg.app.installationID, cfg.app.privateKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create GitHub App transport",
				goerr.V("app_id", cfg.app.appID),
				goerr.V("installation_id", cfg.app.installationID))
		}
		if cfg.baseURL != "" {
			itr.BaseURL = strings.TrimSuffix(cfg.baseURL, "/")
		}
		httpClient = &http.Client{Transport: itr}
	}

	githubClient := github.NewClient(httpClient)
	if cfg.token != "" && cfg.app == nil {
		githubClient = githubClient.WithAuthToken(cfg.token)
	}

	if cfg.baseURL != "" {
		baseURL := cfg.baseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub API base URL", goerr.V("base_url", cfg.baseURL))
		}
		githubClient.BaseURL = u
	}

	if cfg.timeout <= 0 {
		cfg.timeout = DefaultTimeout
	}

	return &client{
		githubClient: githubClient,
		timeout:      cfg.timeout,
	}, nil
}

// FetchLatestRelease fetches the latest published release of a repository
func (c *client) FetchLatestRelease(ctx context.Context, repo model.Repository) (*model.ReleaseInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	release, resp, err := c.githubClient.Repositories.GetLatestRelease(ctx, repo.Owner, repo.Repo)
	if err != nil {
		if isDecodeError(err) {
			return nil, goerr.Wrap(err, "failed to decode latest release",
				goerr.V("repository", repo.FullName()),
				goerr.T(types.ErrTagMalformedPayload))
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, goerr.Wrap(err, "failed to fetch latest release",
			goerr.V("repository", repo.FullName()),
			goerr.V("status", status),
			goerr.T(types.ErrTagRegistryUnavailable))
	}

	if resp != nil && resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status code for latest release",
			goerr.V("repository", repo.FullName()),
			goerr.V("status", resp.StatusCode),
			goerr.T(types.ErrTagRegistryUnavailable))
	}

	if release == nil || release.GetTagName() == "" {
		return nil, goerr.New("latest release has no tag_name",
			goerr.V("repository", repo.FullName()),
			goerr.T(types.ErrTagMalformedPayload))
	}

	// Use Get*() helper methods for nil-safe access to optional fields
	return &model.ReleaseInfo{
		TagName:     release.GetTagName(),
		Name:        release.GetName(),
		PublishedAt: release.GetPublishedAt().Time,
		Body:        release.GetBody(),
		ArchiveURL:  release.GetZipballURL(),
		HTMLURL:     release.GetHTMLURL(),
		FetchedAt:   time.Now(),
	}, nil
}

// DownloadArchive downloads a release archive, following registry redirects
func (c *client) DownloadArchive(ctx context.Context, archiveURL string) ([]byte, error) {
	req, err := c.githubClient.NewRequest(http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create download request", goerr.V("url", archiveURL))
	}

	resp, err := c.githubClient.BareDo(ctx, req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download archive",
			goerr.V("url", archiveURL),
			goerr.T(types.ErrTagRegistryUnavailable))
	}
	defer resp.Body.Close()

	// Read the entire response, bounded
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveSize+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read archive body",
			goerr.V("url", archiveURL),
			goerr.T(types.ErrTagRegistryUnavailable))
	}
	if len(data) > maxArchiveSize {
		return nil, goerr.New("archive exceeds size limit",
			goerr.V("url", archiveURL),
			goerr.V("limit", maxArchiveSize))
	}

	return data, nil
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF)
}
