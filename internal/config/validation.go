package config

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Validate checks a defaulted configuration and returns every problem found,
// joined. Missing repository URLs are not reported here: they make that one
// repository not ready instead of failing the run.
func Validate(cfg *Config) error {
	var errs []error

	for _, slot := range []string{SlotSpec, SlotSource} {
		rc := cfg.Repo(slot)
		if rc == nil {
			continue
		}
		if rc.URL != "" {
			if _, err := transport.NewEndpoint(rc.URL); err != nil {
				errs = append(errs, fmt.Errorf("%s_repo.url %q: %w", slot, rc.URL, err))
			}
		}
		if err := plumbing.NewBranchReferenceName(rc.Branch).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s_repo.branch %q: %w", slot, rc.Branch, err))
		}
	}

	if !cfg.SameRepo && cfg.SpecRepo != nil && cfg.SourceRepo != nil &&
		cfg.SpecRepo.URL != "" && cfg.SourceRepo.URL != "" &&
		cfg.SpecRepo.Path == cfg.SourceRepo.Path {
		errs = append(errs, fmt.Errorf("spec_repo.path and source_repo.path both resolve to %s; set docs_and_source_same_repo for a single repository", cfg.SpecRepo.Path))
	}

	return errors.Join(errs...)
}
