// apmbuild init [dir]
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/qobs-build/apmbuild/internal/builder"
	"github.com/qobs-build/apmbuild/internal/msg"
	"github.com/spf13/cobra"
)

func writefile(content string, elem ...string) {
	path := filepath.Join(elem...)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err = os.WriteFile(path, []byte(content), 0o644); err != nil {
			msg.Fatal("create file %s: %v", path, err)
		}
		fmt.Printf("%s file: %s\n", color.HiGreenString("Created"), filepath.ToSlash(path))
	}
}

func mkdir(elem ...string) {
	path := filepath.Join(elem...)
	if err := os.MkdirAll(path, 0o755); err != nil {
		msg.Fatal("mkdir %s: %v", path, err)
	}
}

func getProgramName() string {
	if len(os.Args) == 0 {
		return "apmbuild"
	}
	basename := filepath.Base(os.Args[0])
	return strings.TrimSuffix(basename, filepath.Ext(basename))
}

const manifestTemplate = `[source]
dir = "webrtc-src"
remote = "https://github.com/cross-platform/webrtc-audio-processing.git"

[native]
system = "meson"
cxx_std = "c++17"
libraries = ["webrtc_audio_processing"]

# extra configure arguments on Windows only
[native.'target_os == "windows"']
args = ["-Ddefault_library=static"]

[shim]
source = "wrapper.cpp"
header = "wrapper.h"
name = "apm_shim"

[bindings]
header = "wrapper.h"
output = "bindings.json"
allow = ["apm_.*", "Apm.*", "APM_.*"]

[profile.release]
buildtype = "release"
defines = { NDEBUG = "" }
`

const headerTemplate = `#ifndef APM_WRAPPER_H
#define APM_WRAPPER_H

#include <stddef.h>

#ifdef __cplusplus
extern "C" {
#endif

/** Opaque handle to an audio processing module. */
typedef struct ApmHandle ApmHandle;

/// Creates a processor for interleaved-free float frames. Returns NULL on failure.
ApmHandle* apm_create(int sample_rate_hz, size_t num_channels);

void apm_destroy(ApmHandle* handle);

/// Processes one 10 ms capture frame in place. Returns 0 on success.
int apm_process_capture(ApmHandle* handle, float* const* channels);

/// Feeds one 10 ms render (far end) frame. Returns 0 on success.
int apm_process_render(ApmHandle* handle, float* const* channels);

int apm_set_stream_delay_ms(ApmHandle* handle, int delay_ms);

#ifdef __cplusplus
} // extern "C"
#endif

#endif
`

const shimTemplate = `#include "wrapper.h"

#include <modules/audio_processing/include/audio_processing.h>

struct ApmHandle {
  rtc::scoped_refptr<webrtc::AudioProcessing> apm;
  webrtc::StreamConfig config;
};

extern "C" {

ApmHandle* apm_create(int sample_rate_hz, size_t num_channels) {
  auto* handle = new ApmHandle;
  handle->apm = webrtc::AudioProcessingBuilder().Create();
  if (!handle->apm) {
    delete handle;
    return nullptr;
  }

  webrtc::AudioProcessing::Config config;
  config.echo_canceller.enabled = true;
  config.noise_suppression.enabled = true;
  config.gain_controller1.enabled = true;
  handle->apm->ApplyConfig(config);
  handle->config = webrtc::StreamConfig(sample_rate_hz, num_channels);
  return handle;
}

void apm_destroy(ApmHandle* handle) { delete handle; }

int apm_process_capture(ApmHandle* handle, float* const* channels) {
  return handle->apm->ProcessStream(channels, handle->config, handle->config, channels);
}

int apm_process_render(ApmHandle* handle, float* const* channels) {
  return handle->apm->ProcessReverseStream(channels, handle->config, handle->config, channels);
}

int apm_set_stream_delay_ms(ApmHandle* handle, int delay_ms) {
  return handle->apm->set_stream_delay_ms(delay_ms);
}

}  // extern "C"
`

// initIn scaffolds a manifest root in an existing directory. Files that
// already exist are left alone.
func initIn(dir string) {
	writefile(manifestTemplate, dir, builder.ConfigFilename)
	writefile(headerTemplate, dir, "wrapper.h")
	writefile(shimTemplate, dir, "wrapper.cpp")
	writefile(`build/
webrtc-src/
`, dir, ".gitignore")

	programName := getProgramName()
	fmt.Printf("You can now do %s to get the source, then %s to build.\n",
		color.HiCyanString(programName+" fetch "+dir), color.HiCyanString(programName+" "+dir))
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create apmbuild.toml and a starter shim in a directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := targetPath(args)
		mkdir(dir)
		initIn(dir)
	},
}

func init() {
	// apmbuild init subcommand
	rootCmd.AddCommand(initCmd)
}
