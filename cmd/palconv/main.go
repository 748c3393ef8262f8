// Package main implements a converter of binary palette tables into C++ source code
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/prgrom/internal/config"
	"github.com/retroenv/prgrom/internal/palette"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

const (
	exitUsage         = 1
	exitInvalidLength = 2
	exitFailure       = 3
)

func main() {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	debug := flags.Bool("debug", false, "enable debug logging")

	_ = flags.Parse(os.Args[1:])
	args := flags.Args()
	if len(args) != 1 {
		printBanner()
		fmt.Printf("usage: palconv [options] <palette file>\n\n")
		fmt.Printf("convert a binary table of %d RGB entries into a C++ default palette code snippet\n\n", palette.Entries)
		flags.PrintDefaults()
		os.Exit(exitUsage)
	}

	logger := config.CreateLogger(os.Stderr, *debug, false)
	os.Exit(convert(logger, os.Stdout, args[0]))
}

func printBanner() {
	fmt.Println("[-------------------------------------]")
	fmt.Println("[ palconv - palette table converter   ]")
	fmt.Printf("[-------------------------------------]\n\n")
	fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
}

func convert(logger *log.Logger, output io.Writer, file string) int {
	data, err := os.ReadFile(file)
	if err != nil {
		logger.Error("Reading palette file failed", log.String("file", file), log.Err(err))
		return exitFailure
	}
	logger.Debug("Read palette file", log.String("file", file), log.Int("size", len(data)))

	if err := palette.Format(output, data); err != nil {
		logger.Error("Converting palette failed", log.Err(err))
		if palette.IsInvalidLength(err) {
			return exitInvalidLength
		}
		return exitFailure
	}
	return 0
}
