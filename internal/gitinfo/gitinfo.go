// Package gitinfo resolves run identity fields from a local git checkout.
package gitinfo

import (
	"fmt"

	git "github.com/go-git/go-git/v5"
)

// Info carries the git identity of a pipeline run.
type Info struct {
	Branch   string
	Revision string
	RepoURL  string
}

// Resolve opens the repository at path and reads HEAD plus the origin
// remote URL.
func Resolve(path string) (Info, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Info{}, fmt.Errorf("open git repository at %s: %w", path, err)
	}

	head, err := repo.Head()
	if err != nil {
		return Info{}, fmt.Errorf("read HEAD: %w", err)
	}

	info := Info{
		Revision: head.Hash().String(),
	}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	remote, err := repo.Remote("origin")
	if err == nil && len(remote.Config().URLs) > 0 {
		info.RepoURL = remote.Config().URLs[0]
	}

	return info, nil
}
