package manifest

import (
	"bytes"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/model"
	"github.com/m-mizutani/updraft/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
)

// entry is a single [[component]] table
type entry struct {
	Slug        string `toml:"slug"`
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Repository  string `toml:"repository"`
	Branch      string `toml:"branch"`
	InstallDir  string `toml:"install_dir"`
	Homepage    string `toml:"homepage"`
	Author      string `toml:"author"`
	Description string `toml:"description"`
}

type document struct {
	Components []entry `toml:"component"`
}

// Load reads component declarations from a TOML file
func Load(path string) ([]model.Component, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read manifest",
			goerr.V("path", path),
			goerr.T(types.ErrTagInvalidManifest))
	}

	components, err := Parse(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load manifest",
			goerr.V("path", path),
			goerr.T(types.ErrTagInvalidManifest))
	}

	return components, nil
}

// Parse decodes component declarations. Components without a repository are
// returned untracked.
func Parse(data []byte) ([]model.Component, error) {
	var doc document
	if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse manifest TOML",
			goerr.T(types.ErrTagInvalidManifest))
	}

	seen := make(map[string]bool, len(doc.Components))
	components := make([]model.Component, 0, len(doc.Components))

	for i, e := range doc.Components {
		comp, err := e.toComponent()
		if err != nil {
			return nil, goerr.Wrap(err, "invalid component declaration",
				goerr.V("index", i),
				goerr.V("slug", e.Slug),
				goerr.T(types.ErrTagInvalidManifest))
		}

		if seen[comp.Slug] {
			return nil, goerr.New("duplicate component slug",
				goerr.V("slug", comp.Slug),
				goerr.T(types.ErrTagInvalidManifest))
		}
		seen[comp.Slug] = true

		components = append(components, comp)
	}

	return components, nil
}

func (e entry) toComponent() (model.Component, error) {
	slug := strings.TrimSpace(e.Slug)
	if slug == "" {
		return model.Component{}, goerr.New("slug is required")
	}
	if strings.ContainsAny(slug, `/\`) || slug == "." || slug == ".." {
		return model.Component{}, goerr.New("slug must be a plain name")
	}

	version := strings.TrimSpace(e.Version)
	if version == "" {
		return model.Component{}, goerr.New("version is required")
	}

	comp := model.Component{
		Slug:        slug,
		Name:        strings.TrimSpace(e.Name),
		Description: e.Description,
		Author:      e.Author,
		Homepage:    e.Homepage,
		Version:     version,
		InstallDir:  e.InstallDir,
	}

	if strings.TrimSpace(e.Repository) != "" {
		repo, err := model.ParseRepository(e.Repository, e.Branch)
		if err != nil {
			return model.Component{}, err
		}
		comp.Repository = repo
	}

	return comp, nil
}
