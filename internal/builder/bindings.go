package builder

import (
	"os"
	"path/filepath"

	"github.com/qobs-build/apmbuild/internal/bindgen"
	"github.com/qobs-build/apmbuild/internal/msg"
)

// generateBindings writes the binding descriptor for the configured header
// into the output directory. A failed run leaves no descriptor behind, not
// even one from an earlier run.
func (b *Builder) generateBindings(req Request) (string, error) {
	header := req.ManifestPath(b.cfg.Bindings.Header)
	out := b.cfg.Bindings.Output
	if !filepath.IsAbs(out) {
		out = filepath.Join(req.OutDir, out)
	}

	msg.Status("Generating", "%s", filepath.Base(out))
	d, err := bindgen.Generate(header, out, b.cfg.Bindings.Allow)
	if err != nil {
		os.Remove(out)
		return "", &StageError{Kind: ErrBindingGeneration, Stage: "bindings", Path: header, ExitCode: -1, Err: err}
	}
	msg.Info("%s: %d functions, %d types, %d constants", filepath.Base(header), len(d.Functions), len(d.Types), len(d.Constants))
	return out, nil
}
