package builder

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v6"
)

func TestLocateSource(t *testing.T) {
	root := t.TempDir()
	req := Request{ManifestDir: root, SourceDir: filepath.Join(root, "webrtc-src")}

	err := LocateSource(req, defaultRemote)
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("err = %v, want ErrMissingSource", err)
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Path != req.SourceDir {
		t.Errorf("error does not name the expected path: %v", err)
	}
	if !strings.Contains(stageErr.Hint, defaultRemote) {
		t.Errorf("hint = %q, want the remote", stageErr.Hint)
	}

	writeFile(t, req.SourceDir, "not a directory")
	if err := LocateSource(req, defaultRemote); !errors.Is(err, ErrMissingSource) {
		t.Errorf("file in place of the source tree: err = %v", err)
	}

	if err := os.Remove(req.SourceDir); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(req.SourceDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := LocateSource(req, defaultRemote); err != nil {
		t.Errorf("present source: %v", err)
	}
}

func TestParseGitURL(t *testing.T) {
	tests := []struct {
		in   string
		want gitURL
	}{
		{"https://github.com/cross-platform/webrtc-audio-processing", gitURL{cleanURL: "https://github.com/cross-platform/webrtc-audio-processing.git"}},
		{"https://gitlab.freedesktop.org/pulseaudio/webrtc-audio-processing.git@v1.3", gitURL{cleanURL: "https://gitlab.freedesktop.org/pulseaudio/webrtc-audio-processing.git", branch: "v1.3"}},
		{"https://example.com/apm@main#8e258a1", gitURL{cleanURL: "https://example.com/apm.git", branch: "main", commitOrTag: "8e258a1"}},
		{"git@github.com:owner/apm.git#v1.3", gitURL{cleanURL: "git@github.com:owner/apm.git", commitOrTag: "v1.3"}},
	}
	for _, tt := range tests {
		if got := parseGitURL(tt.in); got != tt.want {
			t.Errorf("parseGitURL(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestFetchSourceExisting(t *testing.T) {
	root := t.TempDir()
	req := Request{ManifestDir: root, SourceDir: filepath.Join(root, "webrtc-src")}
	writeFile(t, filepath.Join(req.SourceDir, "meson.build"), "")

	// an existing tree is never touched, so no network access happens here
	if err := FetchSource(req, "https://invalid.example/apm"); err != nil {
		t.Fatal(err)
	}
}

func TestFetchSourceRemovesFailedCheckout(t *testing.T) {
	orig := cloneRepository
	t.Cleanup(func() { cloneRepository = orig })

	tests := []struct {
		name   string
		remote string
		clone  func(path string, o *git.CloneOptions) (*git.Repository, error)
	}{
		{
			name:   "clone fails",
			remote: "https://invalid.example/apm",
			clone: func(path string, o *git.CloneOptions) (*git.Repository, error) {
				writeFile(t, filepath.Join(path, "partial"), "")
				return nil, errors.New("connection reset")
			},
		},
		{
			name:   "revision missing",
			remote: "https://invalid.example/apm#v9.9",
			clone: func(path string, o *git.CloneOptions) (*git.Repository, error) {
				// an empty repository resolves no revision at all
				return git.PlainInit(path, false)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			req := Request{ManifestDir: root, SourceDir: filepath.Join(root, "webrtc-src")}
			cloneRepository = tt.clone

			if err := FetchSource(req, tt.remote); err == nil {
				t.Fatal("FetchSource succeeded")
			}
			if _, err := os.Stat(req.SourceDir); !os.IsNotExist(err) {
				t.Errorf("source dir left behind after a failed fetch: %v", err)
			}
			if err := LocateSource(req, tt.remote); !errors.Is(err, ErrMissingSource) {
				t.Errorf("LocateSource after a failed fetch: %v", err)
			}
		})
	}
}
