package github

import (
	"context"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagship/pkg/domain/model"
	"github.com/m-mizutani/tagship/pkg/domain/types"
)

// Client publishes release assets to a GitHub repository.
type Client struct {
	gh    *github.Client
	owner string
	repo  string

	token          string
	appID          int64
	installationID int64
	privateKey     []byte
	apiURL         string
	uploadURL      string
}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithToken authenticates with a personal access or workflow token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithAppAuth authenticates as a GitHub App installation.
func WithAppAuth(appID, installationID int64, privateKey []byte) Option {
	return func(c *Client) {
		c.appID = appID
		c.installationID = installationID
		c.privateKey = privateKey
	}
}

// WithURLs overrides the API and upload endpoints (tests, GitHub Enterprise).
func WithURLs(apiURL, uploadURL string) Option {
	return func(c *Client) {
		c.apiURL = apiURL
		c.uploadURL = uploadURL
	}
}

// NewClient creates a GitHub release client for owner/repo.
func NewClient(owner, repo string, opts ...Option) (*Client, error) {
	c := &Client{
		owner: owner,
		repo:  repo,
	}

	for _, opt := range opts {
		opt(c)
	}

	switch {
	case c.token != "":
		c.gh = github.NewClient(nil).WithAuthToken(c.token)

	case c.appID != 0:
		itr, err := ghinstallation.New(http.DefaultTransport, c.appID, c.installationID, c.privateKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create GitHub App transport")
		}
		c.gh = github.NewClient(&http.Client{Transport: itr})

	default:
		return nil, goerr.New("no GitHub credentials: token or app auth required")
	}

	if c.apiURL != "" {
		gh, err := c.gh.WithEnterpriseURLs(c.apiURL, c.uploadURL)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub endpoint URLs",
				goerr.V("api_url", c.apiURL),
				goerr.V("upload_url", c.uploadURL),
			)
		}
		c.gh = gh
	}

	return c, nil
}

// UploadAsset uploads the file at path to the release tagged trigger.Tag
// under assetName. A pre-existing asset of the same name is removed first,
// so re-publishing the same asset name is idempotent.
func (c *Client) UploadAsset(ctx context.Context, trigger model.Trigger, assetName, path string) error {
	logger := ctxlog.From(ctx)

	release, _, err := c.gh.Repositories.GetReleaseByTag(ctx, c.owner, c.repo, trigger.Tag)
	if err != nil {
		return goerr.Wrap(err, "failed to get release for tag",
			goerr.T(types.ErrTagPublish),
			goerr.V("tag", trigger.Tag),
		)
	}

	if err := c.deleteExistingAsset(ctx, release.GetID(), assetName); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return goerr.Wrap(err, "failed to open artifact",
			goerr.T(types.ErrTagPublish),
			goerr.V("path", path),
		)
	}
	defer file.Close()

	asset, _, err := c.gh.Repositories.UploadReleaseAsset(ctx, c.owner, c.repo, release.GetID(),
		&github.UploadOptions{Name: assetName}, file)
	if err != nil {
		return goerr.Wrap(err, "failed to upload release asset",
			goerr.T(types.ErrTagPublish),
			goerr.V("tag", trigger.Tag),
			goerr.V("asset", assetName),
		)
	}

	logger.Info("Uploaded release asset",
		"tag", trigger.Tag,
		"asset", asset.GetName(),
		"asset_id", asset.GetID(),
	)

	return nil
}

// deleteExistingAsset removes an asset with the same name from the release,
// if one exists. GitHub rejects duplicate asset names, so overwrite means
// delete-then-upload.
func (c *Client) deleteExistingAsset(ctx context.Context, releaseID int64, assetName string) error {
	logger := ctxlog.From(ctx)

	opts := &github.ListOptions{PerPage: 100}
	for {
		assets, resp, err := c.gh.Repositories.ListReleaseAssets(ctx, c.owner, c.repo, releaseID, opts)
		if err != nil {
			return goerr.Wrap(err, "failed to list release assets",
				goerr.T(types.ErrTagPublish),
				goerr.V("release_id", releaseID),
			)
		}

		for _, asset := range assets {
			if asset.GetName() != assetName {
				continue
			}

			if _, err := c.gh.Repositories.DeleteReleaseAsset(ctx, c.owner, c.repo, asset.GetID()); err != nil {
				return goerr.Wrap(err, "failed to delete existing release asset",
					goerr.T(types.ErrTagPublish),
					goerr.V("asset", assetName),
					goerr.V("asset_id", asset.GetID()),
				)
			}

			logger.Info("Replaced existing release asset",
				"asset", assetName,
				"asset_id", asset.GetID(),
			)
			return nil
		}

		if resp.NextPage == 0 {
			return nil
		}
		opts.Page = resp.NextPage
	}
}
