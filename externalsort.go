// Package externalsort sorts line-oriented files that do not fit in
// memory. The input is split into memory-bounded, internally sorted chunk
// files, which are then reduced to a single sorted output by repeated
// k-way merge passes whose fan-in is derived from the memory budget.
package externalsort

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/afero"

	"github.com/NikolayLutsyak/external-sort/merge"
	"github.com/NikolayLutsyak/external-sort/plan"
	"github.com/NikolayLutsyak/external-sort/split"
	"github.com/NikolayLutsyak/external-sort/sysmem"
	"github.com/NikolayLutsyak/external-sort/workspace"
)

// DefaultBufferSize is the streaming buffer size used when the caller does
// not configure one.
const DefaultBufferSize = 4096

const sortedSuffix = "__sorted"

var (
	// ErrEmptyPath error returns when Sort is called without an input path
	ErrEmptyPath = errors.New("input file path is empty")
	// ErrMemoryLimit error returns when the configured memory limit is not positive
	ErrMemoryLimit = errors.New("memory limit must be positive")
	// ErrMergeIncomplete error returns when the merge passes fail to reduce the workspace to one file
	ErrMergeIncomplete = errors.New("merge passes did not reduce workspace to a single file")
)

// Sorter sorts files under a fixed memory limit. A single Sorter may be
// used for multiple runs; each run owns its own workspace directory
// derived from the input path.
type Sorter struct {
	fs               afero.Fs
	memoryLimit      int64
	bufferSize       int64
	updateBufferSize bool
}

// Option configures a Sorter.
type Option func(*Sorter)

// WithMemoryLimit sets the memory limit in bytes. Without it the limit
// defaults to all currently available system memory.
func WithMemoryLimit(limit int64) Option {
	return func(s *Sorter) {
		s.memoryLimit = limit
	}
}

// WithBufferSize sets the streaming buffer size in bytes.
func WithBufferSize(size int64) Option {
	return func(s *Sorter) {
		s.bufferSize = size
	}
}

// WithFixedBufferSize keeps the configured buffer size instead of letting
// the planner raise it to its upper bound.
func WithFixedBufferSize() Option {
	return func(s *Sorter) {
		s.updateBufferSize = false
	}
}

// WithFs sets the filesystem the run operates on. Defaults to the OS
// filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *Sorter) {
		s.fs = fs
	}
}

// New returns a Sorter with the given options applied.
func New(opts ...Option) (*Sorter, error) {
	s := &Sorter{
		fs:               afero.NewOsFs(),
		bufferSize:       DefaultBufferSize,
		updateBufferSize: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.memoryLimit == 0 {
		available, err := sysmem.Available()
		if err != nil {
			return nil, err
		}
		s.memoryLimit = available
	}
	if s.memoryLimit <= 0 {
		return nil, ErrMemoryLimit
	}
	if s.bufferSize < plan.MinBufferSize {
		return nil, plan.ErrBufferSize
	}

	return s, nil
}

// Sort sorts the lines of filePath and writes the result to savePath.
// When savePath is empty the destination is derived by inserting the
// "__sorted" suffix before the input's extension. On any I/O failure the
// error is propagated and temp files are left in place for inspection; no
// partial result is promoted to the destination.
func (s *Sorter) Sort(filePath, savePath string) error {
	if filePath == "" {
		return ErrEmptyPath
	}
	if savePath == "" {
		savePath = deriveSavePath(filePath)
	}
	glog.V(3).Infof("Sorting %s into %s with memory limit %d and buffer size %d",
		filePath, savePath, s.memoryLimit, s.bufferSize)

	ws, err := workspace.New(s.fs, filePath)
	if err != nil {
		return err
	}
	splitter := split.New(s.fs, s.memoryLimit, int(s.bufferSize))
	chunkCount, err := splitter.Split(filePath, ws.SplitPath)
	if err != nil {
		return err
	}

	switch chunkCount {
	case 0:
		return s.finishEmpty(ws, savePath)
	case 1:
		return s.finalize(ws, ws.SplitPath(0), savePath)
	default:
		return s.mergeAll(ws, chunkCount, savePath)
	}
}

// mergeAll runs the planned number of merge passes over the workspace and
// moves the surviving file to the destination.
func (s *Sorter) mergeAll(ws *workspace.Workspace, chunkCount int, savePath string) error {
	p, err := plan.Plan(chunkCount, s.memoryLimit, s.bufferSize, s.updateBufferSize)
	if err != nil {
		return err
	}
	for pass := 0; pass < p.NumPasses; pass++ {
		// The listing is snapshotted before merging so a pass never
		// consumes its own outputs.
		files, err := ws.List()
		if err != nil {
			return err
		}
		glog.V(4).Infof("Merge pass %d over %d files", pass, len(files))
		for start := 0; start < len(files); start += p.FanIn {
			end := start + p.FanIn
			if end > len(files) {
				end = len(files)
			}
			group := files[start:end]
			outPath := ws.MergePath(pass, start/p.FanIn)
			if len(group) == 1 {
				// A single-file group is already sorted; pass it through.
				if err := s.fs.Rename(group[0], outPath); err != nil {
					return fmt.Errorf("failed to rename %s to %s with error: %+v", group[0], outPath, err)
				}
				continue
			}
			if err := merge.Merge(s.fs, group, outPath, int(p.BufferSize)); err != nil {
				return err
			}
		}
	}
	files, err := ws.List()
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return ErrMergeIncomplete
	}

	return s.finalize(ws, files[0], savePath)
}

// finishEmpty handles an empty input: the destination exists and is empty,
// the workspace is removed.
func (s *Sorter) finishEmpty(ws *workspace.Workspace, savePath string) error {
	f, err := s.fs.Create(savePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s with error: %+v", savePath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file %s with error: %+v", savePath, err)
	}

	return ws.Remove()
}

// finalize moves the last surviving temp file to the destination and
// removes the workspace.
func (s *Sorter) finalize(ws *workspace.Workspace, tempPath, savePath string) error {
	if err := s.fs.Rename(tempPath, savePath); err != nil {
		return fmt.Errorf("failed to rename %s to %s with error: %+v", tempPath, savePath, err)
	}
	glog.V(3).Infof("Sorted output saved to %s", savePath)

	return ws.Remove()
}

// deriveSavePath inserts the sorted suffix before the input's extension.
func deriveSavePath(filePath string) string {
	ext := filepath.Ext(filePath)
	return strings.TrimSuffix(filePath, ext) + sortedSuffix + ext
}
