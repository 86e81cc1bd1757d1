package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	githubinfra "github.com/m-mizutani/tagship/pkg/infra/github"
)

// GitHub holds release publishing configuration. The token is an opaque
// credential passed through to the API client unmodified.
type GitHub struct {
	Owner          string
	Repo           string
	Token          string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-owner",
			Usage:       "Repository owner of the release",
			Required:    true,
			Destination: &c.Owner,
			Sources:     cli.EnvVars("TAGSHIP_GITHUB_OWNER"),
		},
		&cli.StringFlag{
			Name:        "github-repo",
			Usage:       "Repository name of the release",
			Required:    true,
			Destination: &c.Repo,
			Sources:     cli.EnvVars("TAGSHIP_GITHUB_REPO"),
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub access token",
			Destination: &c.Token,
			Sources:     cli.EnvVars("TAGSHIP_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID (alternative to token auth)",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("TAGSHIP_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("TAGSHIP_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to the GitHub App private key",
			Destination: &c.PrivateKeyPath,
			Sources:     cli.EnvVars("TAGSHIP_GITHUB_PRIVATE_KEY"),
		},
	}
}

// NewClient builds the release client from the configured credentials.
func (c *GitHub) NewClient() (*githubinfra.Client, error) {
	if c.Token != "" {
		return githubinfra.NewClient(c.Owner, c.Repo, githubinfra.WithToken(c.Token))
	}

	if c.AppID != 0 {
		key, err := os.ReadFile(c.PrivateKeyPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read GitHub App private key",
				goerr.V("path", c.PrivateKeyPath),
			)
		}
		return githubinfra.NewClient(c.Owner, c.Repo,
			githubinfra.WithAppAuth(c.AppID, c.InstallationID, key),
		)
	}

	return nil, goerr.New("GitHub credentials required: set --github-token or GitHub App flags")
}
