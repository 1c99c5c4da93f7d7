// extsort sorts the lines of a file that may not fit in memory and writes
// the result to another file.
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"

	externalsort "github.com/NikolayLutsyak/external-sort"
)

var (
	filePath         string
	savePath         string
	memoryLimit      int64
	bufferSize       int64
	updateBufferSize bool
)

func init() {
	flag.StringVar(&filePath, "file-path", "", "Path to the file that should be sorted.")
	flag.StringVar(&savePath, "save-path", "", "Path where to save the result. If empty, the input path with suffix '__sorted' before the extension is used.")
	flag.Int64Var(&memoryLimit, "memory-limit", 0, "Memory limit in bytes. If 0, all available RAM is used.")
	flag.Int64Var(&bufferSize, "buffer-size", externalsort.DefaultBufferSize, "Buffer size in bytes for reading and writing files.")
	flag.BoolVar(&updateBufferSize, "update-buffer-size", true, "Whether the planner may raise the buffer size to its upper bound.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	opts := []externalsort.Option{
		externalsort.WithBufferSize(bufferSize),
	}
	if memoryLimit != 0 {
		opts = append(opts, externalsort.WithMemoryLimit(memoryLimit))
	}
	if !updateBufferSize {
		opts = append(opts, externalsort.WithFixedBufferSize())
	}
	sorter, err := externalsort.New(opts...)
	if err != nil {
		glog.Errorf("failed to initialize sorter with error: %+v", err)
		os.Exit(1)
	}
	if err := sorter.Sort(filePath, savePath); err != nil {
		glog.Errorf("failed to sort %s with error: %+v", filePath, err)
		os.Exit(1)
	}
}
