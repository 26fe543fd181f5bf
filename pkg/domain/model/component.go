package model

import (
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/types"
)

// DefaultBranch is used when a component does not declare a branch
const DefaultBranch = "main"

// Repository identifies a release registry location. Branch is informational only
// and never used to select releases.
type Repository struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
}

// ParseRepository parses an "owner/repo" declaration
func ParseRepository(fullName, branch string) (Repository, error) {
	parts := strings.Split(strings.TrimSpace(fullName), "/")
	if len(parts) != 2 {
		return Repository{}, goerr.New("repository must be in owner/repo form",
			goerr.V("repository", fullName),
			goerr.T(types.ErrTagInvalidManifest))
	}

	owner := strings.TrimSpace(parts[0])
	repo := strings.TrimSpace(parts[1])
	if owner == "" || repo == "" {
		return Repository{}, goerr.New("repository owner and name must not be empty",
			goerr.V("repository", fullName),
			goerr.T(types.ErrTagInvalidManifest))
	}

	branch = strings.TrimSpace(branch)
	if branch == "" {
		branch = DefaultBranch
	}

	return Repository{Owner: owner, Repo: repo, Branch: branch}, nil
}

// FullName returns "owner/repo"
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Repo
}

// CacheKey returns the key used for release metadata caching. GitHub treats owner
// and repository names case-insensitively, so the key does too.
func (r Repository) CacheKey() string {
	return strings.ToLower(r.FullName())
}

// IsZero reports whether no repository has been declared
func (r Repository) IsZero() bool {
	return r.Owner == "" && r.Repo == ""
}

// Matches reports whether both values point at the same registry location
func (r Repository) Matches(other Repository) bool {
	return r.CacheKey() == other.CacheKey()
}

// Component is an installed, trackable unit. Values are immutable for the
// duration of a check pass.
type Component struct {
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Author      string     `json:"author,omitempty"`
	Homepage    string     `json:"homepage,omitempty"`
	Version     string     `json:"version"`
	Repository  Repository `json:"repository"`
	InstallDir  string     `json:"install_dir,omitempty"`
}

// Tracked reports whether the component declares repository coordinates
func (c Component) Tracked() bool {
	return !c.Repository.IsZero()
}

// DirName is the directory name the component's files must live under
func (c Component) DirName() string {
	if c.InstallDir != "" {
		return filepath.Base(filepath.Clean(c.InstallDir))
	}
	return c.Slug
}

// ChangelogURL points at the changelog section of the repository README
func (c Component) ChangelogURL() string {
	return "https://github.com/" + c.Repository.FullName() + "?tab=readme-ov-file#changelog"
}
