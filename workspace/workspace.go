// Package workspace manages the scratch directory owned by a single sort
// run. All chunk and intermediate merge files live here; the directory is
// removed once the final result has been moved out.
package workspace

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/golang/glog"
	"github.com/spf13/afero"
)

const dirSuffix = "__tmp"

var (
	// ErrNotEmpty error returns when Remove is called while temp files remain
	ErrNotEmpty = errors.New("workspace is not empty")
)

// Workspace is the scratch directory for one sort run. A workspace is
// exclusively owned by its run; concurrent runs on different inputs get
// distinct directories because the path is derived from the input path.
type Workspace struct {
	fs  afero.Fs
	dir string
}

// New creates the scratch directory next to the input file and returns a
// Workspace rooted at it.
func New(fs afero.Fs, inputPath string) (*Workspace, error) {
	dir := inputPath + dirSuffix
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace directory %s with error: %+v", dir, err)
	}
	glog.V(5).Infof("Created workspace directory: %s", dir)

	return &Workspace{
		fs:  fs,
		dir: dir,
	}, nil
}

// Dir returns the workspace directory path.
func (w *Workspace) Dir() string {
	return w.dir
}

// SplitPath returns the temp-file path for the chunk produced by the split
// phase with the given index.
func (w *Workspace) SplitPath(index int) string {
	return filepath.Join(w.dir, fmt.Sprintf("split_%d.txt", index))
}

// MergePath returns the temp-file path for the output of the given merge
// group within the given pass.
func (w *Workspace) MergePath(pass, index int) string {
	return filepath.Join(w.dir, fmt.Sprintf("merge_%d_%d.txt", pass, index))
}

// List returns the paths of all temp files currently in the workspace,
// sorted by name so that pass grouping is deterministic.
func (w *Workspace) List() ([]string, error) {
	infos, err := afero.ReadDir(w.fs, w.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace directory %s with error: %+v", w.dir, err)
	}
	files := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		files = append(files, filepath.Join(w.dir, info.Name()))
	}
	sort.Strings(files)

	return files, nil
}

// Remove deletes the workspace directory. The directory must be empty, the
// caller moves the final result out before calling Remove.
func (w *Workspace) Remove() error {
	files, err := w.List()
	if err != nil {
		return err
	}
	if len(files) != 0 {
		return ErrNotEmpty
	}
	if err := w.fs.Remove(w.dir); err != nil {
		return fmt.Errorf("failed to remove workspace directory %s with error: %+v", w.dir, err)
	}
	glog.V(5).Infof("Removed workspace directory: %s", w.dir)

	return nil
}
