package bootstrap

import (
	"git.home.luguber.info/inful/agentboot/internal/config"
	"git.home.luguber.info/inful/agentboot/internal/git"
)

// Descriptors returns one descriptor per logical repository. In single-repo
// mode the combined repository is returned once, named "source". A missing
// section yields a descriptor with an empty URL so it is reported as not
// ready rather than skipped.
func Descriptors(cfg *config.Config, workspaceRoot string) []git.Descriptor {
	if cfg.SameRepo {
		return []git.Descriptor{descriptor(config.SlotSource, cfg.Combined(), workspaceRoot)}
	}
	return []git.Descriptor{
		descriptor(config.SlotSpec, cfg.SpecRepo, workspaceRoot),
		descriptor(config.SlotSource, cfg.SourceRepo, workspaceRoot),
	}
}

func descriptor(name string, rc *config.RepoConfig, root string) git.Descriptor {
	if rc == nil {
		return git.Descriptor{
			Name:      name,
			Branch:    config.DefaultBranch,
			LocalPath: config.ResolvePath(root, name, ""),
		}
	}
	path := rc.Path
	if path == "" {
		path = config.ResolvePath(root, name, "")
	}
	return git.Descriptor{Name: name, URL: rc.URL, Branch: rc.Branch, LocalPath: path}
}
