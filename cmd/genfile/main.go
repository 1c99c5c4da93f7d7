// genfile generates a file of random strings, one per line, for exercising
// the sorter.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/afero"

	"github.com/NikolayLutsyak/external-sort/datagen"
)

var (
	filePath  string
	numLines  int
	maxStrLen int
	seed      int64
)

func init() {
	flag.StringVar(&filePath, "file-path", "", "Path to the file where data will be stored.")
	flag.IntVar(&numLines, "num-lines", 0, "Number of lines in the file.")
	flag.IntVar(&maxStrLen, "max-string-len", 0, "Maximum number of characters in a line. Lengths are distributed uniformly from 1 to max-string-len exclusive.")
	flag.Int64Var(&seed, "seed", 0, "Random seed. If 0, the current time is used.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if err := datagen.Generate(afero.NewOsFs(), filePath, numLines, maxStrLen, seed); err != nil {
		glog.Errorf("failed to generate %s with error: %+v", filePath, err)
		os.Exit(1)
	}
}
