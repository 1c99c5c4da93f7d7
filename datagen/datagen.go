// Package datagen produces synthetic line-oriented test files: random
// strings over a fixed alphabet, one per line, with lengths distributed
// uniformly in [1, maxLen).
package datagen

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"

	"github.com/golang/glog"
	"github.com/spf13/afero"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	// ErrMaxLen error returns when maxLen leaves no valid string length
	ErrMaxLen = errors.New("max string length must be at least 2")
	// ErrNumLines error returns when the requested line count is negative
	ErrNumLines = errors.New("number of lines must not be negative")
)

// Generate writes numLines random strings to path, one per line. Runs with
// the same seed produce identical files.
func Generate(fs afero.Fs, path string, numLines, maxLen int, seed int64) error {
	if numLines < 0 {
		return ErrNumLines
	}
	if maxLen < 2 {
		return ErrMaxLen
	}
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s with error: %+v", path, err)
	}
	defer f.Close()

	rnd := rand.New(rand.NewSource(seed))
	writer := bufio.NewWriter(f)
	for i := 0; i < numLines; i++ {
		length := 1 + rnd.Intn(maxLen-1)
		for j := 0; j < length; j++ {
			if err := writer.WriteByte(alphabet[rnd.Intn(len(alphabet))]); err != nil {
				return fmt.Errorf("failed to write file %s with error: %+v", path, err)
			}
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write file %s with error: %+v", path, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush file %s with error: %+v", path, err)
	}
	glog.V(4).Infof("Generated %d lines in %s", numLines, path)

	return nil
}
