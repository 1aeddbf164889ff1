package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
)

// initContentRepo creates a local repository with a content/ directory on
// branch main, usable as a clone source.
func initContentRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "content"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content", "index.md"), []byte("# Home\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("content")
	require.NoError(t, err)
	_, err = wt.Commit("add content", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestFetch_NilSourceIsPassthrough(t *testing.T) {
	local, err := Fetch(context.Background(), nil, "./content")
	require.NoError(t, err)
	require.Equal(t, "./content", local)
}

func TestFetch_ClonesAndReturnsContentDir(t *testing.T) {
	remote := initContentRepo(t)
	src := &config.GitSource{
		URL:     remote,
		Branch:  "main",
		WorkDir: filepath.Join(t.TempDir(), "checkout"),
	}

	local, err := Fetch(context.Background(), src, "content")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(local, "index.md"))
	require.NoError(t, err)

	// Second fetch reuses the existing checkout (pull path).
	again, err := Fetch(context.Background(), src, "content")
	require.NoError(t, err)
	require.Equal(t, local, again)
}

func TestFetch_MissingContentDirFails(t *testing.T) {
	remote := initContentRepo(t)
	src := &config.GitSource{
		URL:     remote,
		Branch:  "main",
		WorkDir: filepath.Join(t.TempDir(), "checkout"),
	}

	_, err := Fetch(context.Background(), src, "docs")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found in repository")
}
