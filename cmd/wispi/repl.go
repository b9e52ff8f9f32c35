package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/labstack/gommon/color"
	"github.com/sirupsen/logrus"
	"wisp/internal"
)

// runREPL implements the "wispi repl" subcommand: one interpreter instance
// persists across lines, so declarations and function definitions from
// earlier lines stay visible; a leading ':' line is a meta-command rather
// than source text.
func runREPL(log *logrus.Logger) {
	c := color.New()
	interp := internal.NewInterpreter(stdoutLogger{})
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println(c.Cyan("wispi repl — :gc for allocator stats, :quit to exit"))
	for {
		fmt.Print(c.Green("> "))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if !runMeta(interp, line) {
				return
			}
			continue
		}
		evalLine(interp, line, log)
	}
}

func runMeta(interp *internal.Interpreter, cmd string) bool {
	switch cmd {
	case ":quit", ":q":
		return false
	case ":gc":
		fmt.Println(interp.Collect())
	default:
		fmt.Println(color.Red("unknown meta-command: " + cmd))
	}
	return true
}

// evalLine tries the line as a declaration, then a statement, then a bare
// expression — a REPL user types "x" as often as they type "var x = 1;"
// or "x = x + 1;".
func evalLine(interp *internal.Interpreter, line string, log *logrus.Logger) {
	if decl, errs := internal.ParseDeclList(line); len(errs) == 0 {
		if err := interp.EvalDeclList(decl); err != nil {
			internal.LogUnrecovered(log, err)
		}
		return
	}
	if stmt, errs := internal.ParseStmt(line); len(errs) == 0 {
		if err := interp.EvalStmt(stmt); err != nil {
			internal.LogUnrecovered(log, err)
		}
		return
	}
	expr, errs := internal.ParseExp(line)
	if len(errs) > 0 {
		for _, e := range errs {
			internal.LogUnrecovered(log, e)
		}
		return
	}
	v, err := interp.EvalExp(expr)
	if err != nil {
		internal.LogUnrecovered(log, err)
		return
	}
	fmt.Println(v.Repr())
}
