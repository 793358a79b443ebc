package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/transcript"
)

// openInput returns stdin for "" and "-".
func openInput(stdin io.Reader, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NotFound("input file", path).WithCause(err)
	}
	return f, nil
}

// writeOutput calls write with stdout, or with a created file when path is set.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// forSpeaker narrows res to one speaker; an empty speaker keeps everything.
func forSpeaker(res *transcript.Result, speaker string) (*transcript.Result, error) {
	if speaker == "" {
		return res, nil
	}
	sub, ok := res.ForSpeaker(speaker)
	if !ok {
		return nil, errors.NotFound("speaker", speaker)
	}
	return sub, nil
}
