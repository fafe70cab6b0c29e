package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/panyam/coredsl/loader"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const historyFile = ".coredsl_history"

const replHelp = `REPL commands:
  :load <file>   Load and validate a file
  :def <name>    Evaluate against another core or instruction set
  :state         Show every state variable of the current definition
  :help          Show this message
  :quit          Exit the REPL
Anything else is evaluated as a constant expression.
`

var replCmd = &cobra.Command{
	Use:   "repl [file]",
	Short: "Interactive constant evaluation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := &repl{out: cmd.OutOrStdout(), errs: cmd.ErrOrStderr()}
		if len(args) == 1 {
			r.execute(":load " + args[0])
		}

		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)

		home, _ := os.UserHomeDir()
		histPath := filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()

		fmt.Fprintln(r.out, "CoreDSL REPL. Type :help for commands, Ctrl+D exits.")
		for {
			line, err := ln.Prompt(r.prompt())
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(r.out)
				return nil
			}
			if err != nil {
				return err
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			ln.AppendHistory(line)
			if r.execute(line) {
				return nil
			}
		}
	},
}

func init() {
	AddCommand(replCmd)
}

type repl struct {
	out, errs io.Writer
	s         *session
}

func (r *repl) prompt() string {
	if r.s == nil {
		return "coredsl> "
	}
	return fmt.Sprintf("coredsl[%s]> ", r.s.def.EntityName())
}

func (r *repl) fail(err error) {
	fmt.Fprintln(r.errs, color.RedString(err.Error()))
}

// execute runs one line of input and reports whether the REPL should exit.
func (r *repl) execute(line string) (quit bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		if r.s == nil {
			r.fail(errors.New("no file loaded, use :load <file>"))
			return false
		}
		v, err := r.s.eval(line)
		if err != nil {
			r.fail(err)
			return false
		}
		fmt.Fprintln(r.out, color.CyanString(v.String()))
		return false
	}

	command, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case "quit", "q":
		return true
	case "help", "h":
		fmt.Fprint(r.out, replHelp)
	case "load":
		if arg == "" {
			r.fail(errors.New("usage: :load <file>"))
			break
		}
		s, err := openSession(arg, loader.Options{}, r.errs)
		if err != nil {
			r.fail(err)
			break
		}
		r.s = s
		fmt.Fprintf(r.out, "loaded %s, evaluating in %s\n", s.result.Root.URI, s.def.EntityName())
	case "def":
		if r.s == nil {
			r.fail(errors.New("no file loaded, use :load <file>"))
			break
		}
		if err := r.s.selectDefinition(arg); err != nil {
			r.fail(err)
		}
	case "state":
		if r.s == nil {
			r.fail(errors.New("no file loaded, use :load <file>"))
			break
		}
		for _, entry := range r.s.state() {
			fmt.Fprintf(r.out, "%s.%s : %s = %s\n", entry.Owner, entry.Declarator.Name, entry.Type, entry.Value)
		}
	default:
		r.fail(fmt.Errorf("unknown command ':%s', type :help", command))
	}
	return false
}
