/*
Rundump loads a UTF-8 text file into a run tree and prints statistics on the
tree's shape, optionally listing its leaves and writing a Graphviz DOT file.

Usage:

	rundump [flags] file

Output is colored if stdout is a terminal.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Leeeon233/egwalker-paper/btree"
	"github.com/Leeeon233/egwalker-paper/textfile"
	"github.com/fatih/color"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/uax11"
	"golang.org/x/term"
)

func main() {
	color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "rundump: %v\n", err)
		}
		os.Exit(1)
	}
}

// options holds the command line settings.
type options struct {
	fragSize   int64
	leaves     bool
	dot        string
	maxEntries int
	at         int
	progress   bool
	trace      string
	width      int
}

func parseArgs(args []string, stderr io.Writer) (options, string, error) {
	var opts options
	fs := flag.NewFlagSet("rundump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Int64Var(&opts.fragSize, "frag", 0, "fragment size in bytes for loading (0 chooses from file size)")
	fs.BoolVar(&opts.leaves, "leaves", false, "list every leaf with a preview of its text")
	fs.StringVar(&opts.dot, "dot", "", "write tree structure in DOT format to `file` (- for stdout)")
	fs.IntVar(&opts.maxEntries, "entries", 3, "chunks listed per leaf in DOT output")
	fs.IntVar(&opts.at, "at", -1, "print the character at this character position")
	fs.BoolVar(&opts.progress, "progress", false, "report loaded fragments on stderr")
	fs.StringVar(&opts.trace, "trace", "Error", "trace level (Debug, Info, Error)")
	fs.IntVar(&opts.width, "width", 0, "line width for leaf previews (0 uses the terminal width)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: rundump [flags] file")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, "", errors.New("expecting exactly one file argument")
	}
	return opts, fs.Arg(0), nil
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, name, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}
	tracing.SetTraceSelector(tracing.SelectorForAdapter(gologadapter.GetAdapter()))
	tracing.Select("egwalker").SetTraceLevel(tracing.TraceLevelFromString(opts.trace))
	//
	var watchers []func(textfile.Fragment)
	if opts.progress {
		watchers = append(watchers, func(f textfile.Fragment) {
			fmt.Fprintf(stderr, "loaded %d bytes at %d\n", len(f.Text), f.Pos)
		})
	}
	text, err := textfile.Load(context.Background(), name, opts.fragSize, watchers...)
	if err != nil {
		return err
	}
	if err := text.Check(); err != nil {
		return fmt.Errorf("inconsistent tree: %w", err)
	}
	printStats(stdout, name, text)
	if opts.at >= 0 {
		if err := printCharAt(stdout, text, opts.at); err != nil {
			return err
		}
	}
	if opts.leaves {
		width := opts.width
		if width <= 0 {
			width = terminalWidth()
		}
		printLeaves(stdout, text, width, uax11.ContextFromEnvironment())
	}
	if opts.dot != "" {
		return writeDot(stdout, text, opts.dot, opts.maxEntries)
	}
	return nil
}

var (
	labelColor = color.New(color.FgBlue)
	valueColor = color.New(color.FgRed, color.Bold)
)

func printStats(w io.Writer, name string, text *textfile.Text) {
	s := text.Summary()
	leaves := 0
	for range text.Leaves() {
		leaves++
	}
	stat := func(label string, value int) {
		labelColor.Fprintf(w, "%-8s", label)
		valueColor.Fprintf(w, "%10d\n", value)
	}
	fmt.Fprintln(w, name)
	stat("chars", s.Chars)
	stat("bytes", s.Bytes)
	stat("lines", s.Lines)
	stat("chunks", text.Count())
	stat("leaves", leaves)
	stat("height", text.Height())
}

func printCharAt(w io.Writer, text *textfile.Text, pos int) error {
	c, err := text.CursorAtPos(pos, false)
	if err != nil {
		return err
	}
	r, err := btree.GetItem[rune](c)
	if err != nil {
		return err
	}
	offset, err := c.CountOffsetPos()
	if err != nil {
		return err
	}
	labelColor.Fprintf(w, "char %d", pos)
	fmt.Fprintf(w, " at byte %d in leaf %d: %q\n", offset, c.Leaf(), r)
	return nil
}

func printLeaves(w io.Writer, text *textfile.Text, width int, ctx *uax11.Context) {
	for id, chunks := range text.Leaves() {
		var b strings.Builder
		chars := 0
		for _, c := range chunks {
			b.WriteString(c.String())
			chars += c.Len()
		}
		head := fmt.Sprintf("leaf %4d %3d chunks %6d chars ", id, len(chunks), chars)
		labelColor.Fprint(w, head)
		preview := strings.NewReplacer("\n", "⏎", "\t", "→").Replace(b.String())
		fmt.Fprintln(w, clip(preview, width-len(head), ctx))
	}
}

// clip shortens s to at most width display cells, cutting between grapheme
// clusters.
func clip(s string, width int, ctx *uax11.Context) string {
	if width <= 1 {
		return ""
	}
	gstr := graphemesOf(s)
	if uax11.StringWidth(gstr, ctx) <= width {
		return s
	}
	var b strings.Builder
	used := 0
	for i := 0; i < gstr.Len(); i++ {
		g := gstr.Nth(i)
		gw := uax11.StringWidth(graphemesOf(g), ctx)
		if used+gw > width-1 {
			break
		}
		b.WriteString(g)
		used += gw
	}
	b.WriteString("…")
	return b.String()
}

// terminalWidth follows the line width heuristics for console output.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 10 {
		return 80
	}
	return w
}

func writeDot(stdout io.Writer, text *textfile.Text, dest string, maxEntries int) error {
	if dest == "-" {
		return text.ToDot(stdout, maxEntries)
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if err := text.ToDot(f, maxEntries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var setupGraphemes sync.Once

func graphemesOf(s string) grapheme.String {
	setupGraphemes.Do(grapheme.SetupGraphemeClasses)
	return grapheme.StringFromString(s)
}
