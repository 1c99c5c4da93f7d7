// Package split partitions the input file into memory-bounded blocks and
// writes each block, sorted, to its own chunk file.
package split

import (
	"bufio"
	"container/heap"
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/spf13/afero"
)

// lineHeap is a min-heap over the lines of one loaded block. Popping the
// minimum repeatedly drains the block in sorted order without allocating a
// second full-size buffer, the block already occupies the memory budget.
type lineHeap []string

func (h lineHeap) Len() int            { return len(h) }
func (h lineHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h lineHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *lineHeap) Push(x interface{}) { *h = append(*h, x.(string)) }
func (h *lineHeap) Pop() interface{} {
	old := *h
	n := len(old)
	line := old[n-1]
	old[n-1] = ""
	*h = old[:n-1]
	return line
}

var _ heap.Interface = &lineHeap{}

// Splitter reads an input stream in blocks bounded by the memory limit and
// materializes each block as a sorted chunk file.
type Splitter struct {
	fs          afero.Fs
	memoryLimit int64
	bufferSize  int
	// carry holds a line read past the block boundary, it opens the next
	// block instead of pushing the current one over the limit.
	carry    string
	hasCarry bool
}

// New returns a Splitter writing chunks through the given filesystem.
func New(fs afero.Fs, memoryLimit int64, bufferSize int) *Splitter {
	return &Splitter{
		fs:          fs,
		memoryLimit: memoryLimit,
		bufferSize:  bufferSize,
	}
}

// Split reads the whole input and writes one sorted chunk file per block,
// naming chunk i with pathFor(i). It returns the number of chunks written.
// An empty input produces zero chunks.
func (s *Splitter) Split(inputPath string, pathFor func(index int) string) (int, error) {
	input, err := s.fs.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open input file %s with error: %+v", inputPath, err)
	}
	defer input.Close()

	reader := bufio.NewReaderSize(input, s.bufferSize)
	index := 0
	for {
		block, err := s.readBlock(reader)
		if err != nil {
			return index, err
		}
		if len(block) == 0 {
			break
		}
		chunkPath := pathFor(index)
		if err := s.writeSorted(block, chunkPath); err != nil {
			return index, err
		}
		glog.V(5).Infof("Wrote chunk %s with %d lines", chunkPath, len(block))
		index++
	}
	glog.V(4).Infof("Split %s into %d chunks", inputPath, index)

	return index, nil
}

// readBlock reads lines until adding the next one would exceed the memory
// limit. A line that does not fit is carried over to the next block, so a
// block never exceeds the limit unless a single line alone is larger than
// the limit, in which case that line forms a block of its own.
func (s *Splitter) readBlock(reader *bufio.Reader) ([]string, error) {
	var block []string
	var size int64
	for {
		var line string
		if s.hasCarry {
			line, s.hasCarry = s.carry, false
			s.carry = ""
		} else {
			var err error
			line, err = readLine(reader)
			if err == io.EOF {
				return block, nil
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read input with error: %+v", err)
			}
		}
		lineSize := int64(len(line)) + 1
		if len(block) > 0 && size+lineSize > s.memoryLimit {
			s.carry, s.hasCarry = line, true
			return block, nil
		}
		block = append(block, line)
		size += lineSize
		if size >= s.memoryLimit {
			return block, nil
		}
	}
}

// readLine returns the next line without its separator. A final line with
// no trailing separator is still returned, io.EOF is reported only once no
// data remains.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err == io.EOF {
		if len(line) == 0 {
			return "", io.EOF
		}
		return line, nil
	}
	if err != nil {
		return "", err
	}
	return line[:len(line)-1], nil
}

// writeSorted heap-sorts the block in place and streams it to the chunk
// file, one line at a time.
func (s *Splitter) writeSorted(block []string, path string) error {
	chunk, err := s.fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chunk file %s with error: %+v", path, err)
	}
	writer := bufio.NewWriterSize(chunk, s.bufferSize)

	h := lineHeap(block)
	heap.Init(&h)
	for h.Len() > 0 {
		line := heap.Pop(&h).(string)
		if _, err := writer.WriteString(line); err != nil {
			chunk.Close()
			return fmt.Errorf("failed to write chunk file %s with error: %+v", path, err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			chunk.Close()
			return fmt.Errorf("failed to write chunk file %s with error: %+v", path, err)
		}
	}
	if err := writer.Flush(); err != nil {
		chunk.Close()
		return fmt.Errorf("failed to flush chunk file %s with error: %+v", path, err)
	}
	if err := chunk.Close(); err != nil {
		return fmt.Errorf("failed to close chunk file %s with error: %+v", path, err)
	}

	return nil
}
