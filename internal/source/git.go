// Package source fetches content from a remote git repository before
// discovery. Local content directories need no fetch; this is only used
// when content.git is configured.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/docsite/internal/config"
)

// Fetch clones the configured content repository into its work dir, or
// fast-forwards an existing clone. It returns the local path of the
// content directory inside the checkout.
func Fetch(ctx context.Context, src *config.GitSource, contentDir string) (string, error) {
	if src == nil {
		return contentDir, nil
	}

	repoPath, err := filepath.Abs(src.WorkDir)
	if err != nil {
		return "", fmt.Errorf("resolve work dir: %w", err)
	}

	if _, statErr := os.Stat(filepath.Join(repoPath, ".git")); statErr == nil {
		if err := pull(ctx, repoPath, src.Branch); err != nil {
			return "", err
		}
	} else {
		if err := clone(ctx, src, repoPath); err != nil {
			return "", err
		}
	}

	// Content lives at the configured content dir relative to the checkout.
	local := filepath.Join(repoPath, filepath.FromSlash(contentDir))
	if st, err := os.Stat(local); err != nil || !st.IsDir() {
		return "", fmt.Errorf("content dir %s not found in repository %s", contentDir, src.URL)
	}
	return local, nil
}

func clone(ctx context.Context, src *config.GitSource, repoPath string) error {
	slog.Info("cloning content repository", "url", src.URL, "branch", src.Branch, "path", repoPath)

	opts := &git.CloneOptions{
		URL:           src.URL,
		ReferenceName: plumbing.NewBranchReferenceName(src.Branch),
		SingleBranch:  true,
	}
	repo, err := git.PlainCloneContext(ctx, repoPath, false, opts)
	if err != nil {
		return fmt.Errorf("clone %s: %w", src.URL, err)
	}
	if ref, herr := repo.Head(); herr == nil {
		slog.Info("content repository cloned", "commit", ref.Hash().String()[:8])
	}
	return nil
}

func pull(ctx context.Context, repoPath, branch string) error {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", repoPath, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}

	err = wt.PullContext(ctx, &git.PullOptions{
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		slog.Debug("content repository up to date", "path", repoPath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("pull %s: %w", repoPath, err)
	}
	slog.Info("content repository updated", "path", repoPath)
	return nil
}
