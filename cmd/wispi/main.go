package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/sirupsen/logrus"
	"wisp/internal"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	log := logrus.New()

	switch args[0] {
	case "run":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		os.Exit(runFile(args[1], log))
	case "repl":
		runREPL(log)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: wispi run /path/to/source.wisp")
	fmt.Println("       wispi repl")
}

type stdoutLogger struct{}

func (stdoutLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

func runFile(path string, log *logrus.Logger) int {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		log.WithField("path", path).Error(err)
		return 1
	}

	program, parseErrs := internal.ParseProgram(string(b))
	for _, pe := range parseErrs {
		internal.LogUnrecovered(log, pe)
	}
	if len(parseErrs) > 0 {
		return 1
	}

	interp := internal.NewInterpreter(stdoutLogger{})
	if err := interp.Run(program); err != nil {
		internal.LogUnrecovered(log, err)
		return 1
	}
	return 0
}
