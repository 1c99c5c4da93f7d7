// Package merge combines sorted line files into one sorted output using a
// streaming k-way merge. At most one buffered record per open input is
// resident at a time, so the merged total may vastly exceed the memory
// limit.
package merge

import (
	"bufio"
	"container/heap"
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/spf13/afero"
)

// source is one open input with its current head line.
type source struct {
	reader *bufio.Reader
	line   string
	index  int
}

// sourceHeap orders sources by their head line; equal lines are broken by
// input index, which makes the merge output deterministic.
type sourceHeap []*source

func (h sourceHeap) Len() int { return len(h) }
func (h sourceHeap) Less(i, j int) bool {
	if h[i].line != h[j].line {
		return h[i].line < h[j].line
	}
	return h[i].index < h[j].index
}
func (h sourceHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *sourceHeap) Push(x interface{}) { *h = append(*h, x.(*source)) }
func (h *sourceHeap) Pop() interface{} {
	old := *h
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return s
}

var _ heap.Interface = &sourceHeap{}

// Merge streams the sorted input files into one sorted output file, then
// deletes every input. Each input contributes one read buffer of the given
// size, plus one buffer for the output stream. All file handles opened
// here are released on every exit path; the inputs are removed only after
// a fully successful merge.
func Merge(fs afero.Fs, inputs []string, output string, bufferSize int) error {
	opened := make([]afero.File, 0, len(inputs))
	defer func() {
		for _, f := range opened {
			if f != nil {
				f.Close()
			}
		}
	}()

	h := make(sourceHeap, 0, len(inputs))
	for i, path := range inputs {
		f, err := fs.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open merge input %s with error: %+v", path, err)
		}
		opened = append(opened, f)
		src := &source{
			reader: bufio.NewReaderSize(f, bufferSize),
			index:  i,
		}
		ok, err := advance(src)
		if err != nil {
			return fmt.Errorf("failed to read merge input %s with error: %+v", path, err)
		}
		if ok {
			h = append(h, src)
		}
	}
	heap.Init(&h)

	out, err := fs.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create merge output %s with error: %+v", output, err)
	}
	writer := bufio.NewWriterSize(out, bufferSize)
	for h.Len() > 0 {
		src := h[0]
		if _, err := writer.WriteString(src.line); err != nil {
			out.Close()
			return fmt.Errorf("failed to write merge output %s with error: %+v", output, err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			out.Close()
			return fmt.Errorf("failed to write merge output %s with error: %+v", output, err)
		}
		ok, err := advance(src)
		if err != nil {
			out.Close()
			return fmt.Errorf("failed to read merge input %s with error: %+v", inputs[src.index], err)
		}
		if ok {
			heap.Fix(&h, 0)
		} else {
			// Exhausted sources simply leave the heap; they are not
			// re-queried.
			heap.Pop(&h)
		}
	}
	if err := writer.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("failed to flush merge output %s with error: %+v", output, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close merge output %s with error: %+v", output, err)
	}

	for i, f := range opened {
		opened[i] = nil
		f.Close()
		if err := fs.Remove(inputs[i]); err != nil {
			return fmt.Errorf("failed to remove merge input %s with error: %+v", inputs[i], err)
		}
	}
	glog.V(5).Infof("Merged %d files into %s", len(inputs), output)

	return nil
}

// advance loads the next line into the source, reporting false once the
// source is exhausted.
func advance(src *source) (bool, error) {
	line, err := src.reader.ReadString('\n')
	if err == io.EOF {
		if len(line) == 0 {
			return false, nil
		}
		src.line = line
		return true, nil
	}
	if err != nil {
		return false, err
	}
	src.line = line[:len(line)-1]
	return true, nil
}
