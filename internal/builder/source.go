package builder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/qobs-build/apmbuild/internal/msg"
)

// LocateSource checks that the vendored tree is on disk. It never fetches:
// the returned error tells the user how to get it.
func LocateSource(req Request, remote string) error {
	stat, err := os.Stat(req.SourceDir)
	if err == nil && stat.IsDir() {
		return nil
	}
	if err == nil {
		err = errors.New("not a directory")
	}

	rel, relErr := filepath.Rel(req.ManifestDir, req.SourceDir)
	if relErr != nil {
		rel = req.SourceDir
	}

	return &StageError{
		Kind:     ErrMissingSource,
		Stage:    "locate",
		Path:     req.SourceDir,
		ExitCode: -1,
		Err:      err,
		Hint: fmt.Sprintf("Please clone the source:\n    git clone %s %s\nor run `apmbuild fetch`",
			remote, filepath.ToSlash(rel)),
	}
}

type gitURL struct {
	cleanURL    string
	branch      string
	commitOrTag string
}

// parseGitURL splits a remote of the form
//
//	https://host/owner/repo@branch#rev
//
// into its parts. Both suffixes are optional.
func parseGitURL(rawURL string) (res gitURL) {
	base, rev, _ := strings.Cut(rawURL, "#")
	res.commitOrTag = rev

	// only look for a branch after the last path separator so user@host URLs survive
	slash := strings.LastIndex(base, "/")
	if at := strings.LastIndex(base, "@"); at > slash {
		res.branch = base[at+1:]
		base = base[:at]
	}
	res.cleanURL = base

	if !strings.HasSuffix(res.cleanURL, ".git") {
		res.cleanURL += ".git"
	}

	return
}

// cloneRepository is swapped out in tests.
var cloneRepository = git.PlainClone

// FetchSource clones remote into the request's source directory. An existing
// directory is left alone.
func FetchSource(req Request, remote string) error {
	if _, err := os.Stat(req.SourceDir); err == nil {
		msg.Info("source already present at %s", req.SourceDir)
		return nil
	}
	parsed := parseGitURL(remote)

	msg.Status("Fetching", "%s", parsed.cleanURL)
	cloneOptions := &git.CloneOptions{
		URL:               parsed.cleanURL,
		Progress:          &msg.IndentWriter{Indent: "    ", W: msg.Out},
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	}
	if parsed.commitOrTag == "" {
		cloneOptions.Depth = 1 // we can do a shallow clone of the latest commit
	}
	if parsed.branch != "" {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(parsed.branch)
		cloneOptions.SingleBranch = true
	}

	repo, err := cloneRepository(req.SourceDir, cloneOptions)
	if err != nil {
		os.RemoveAll(req.SourceDir)
		return fmt.Errorf("failed to clone %s: %w", parsed.cleanURL, err)
	}

	if parsed.commitOrTag == "" {
		return nil
	}

	// a tree at the wrong revision would pass LocateSource, so it goes too
	if err := checkoutRevision(repo, parsed.commitOrTag); err != nil {
		os.RemoveAll(req.SourceDir)
		return err
	}
	return nil
}

func checkoutRevision(repo *git.Repository, rev string) error {
	w, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("could not get worktree: %w", err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return fmt.Errorf("could not resolve revision `%s`: %w", rev, err)
	}
	if err := w.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return fmt.Errorf("failed to checkout `%s`: %w", rev, err)
	}
	return nil
}
