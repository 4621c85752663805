package ytdlp

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"codeberg.org/gruf/go-ffmpreg/ffmpreg"
	"codeberg.org/gruf/go-ffmpreg/wasm"
	"github.com/tetratelabs/wazero"
)

// WasmTranscoder runs the embedded ffmpeg build, so hosts without an
// ffmpeg binary can still use the audio fallback.
type WasmTranscoder struct{}

// Transcode writes 16 kHz mono PCM WAV, which keeps a ten minute clip
// under the speech API's upload limit.
func (WasmTranscoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return err
	}
	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return err
	}

	inputDir := filepath.Dir(absInput)
	outputDir := filepath.Dir(absOutput)

	rc, err := ffmpreg.Ffmpeg(ctx, wasm.Args{
		Stderr: io.Discard,
		Stdout: io.Discard,
		Args: []string{
			"-i", absInput,
			"-vn",
			"-ar", "16000",
			"-ac", "1",
			"-c:a", "pcm_s16le",
			"-y",
			absOutput,
		},
		Config: func(cfg wazero.ModuleConfig) wazero.ModuleConfig {
			return cfg.WithFSConfig(wazero.NewFSConfig().
				WithDirMount(inputDir, inputDir).
				WithDirMount(outputDir, outputDir))
		},
	})
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	if rc != 0 {
		return fmt.Errorf("ffmpeg exited with code %d", rc)
	}
	return nil
}
