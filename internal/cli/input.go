// Package cli handles cmd line input for DBG and testing the bridge by hand.
//
// Every line becomes a protocol request sent through the dispatcher, the same way a
// host would, so the REPL exercises the full request path.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/wordbridge/pkg/dispatch"
	"github.com/bastiangx/wordbridge/pkg/protocol"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	wordStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	inputStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#d7827e", Dark: "#ea9a97"})
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"})
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// InputHandler reads REPL lines, dispatches them and prints the responses.
type InputHandler struct {
	dispatcher   *dispatch.Dispatcher
	chain        bool
	showPackages bool
	in           io.Reader
	out          io.Writer
	requestCount int
}

// NewInputHandler returns a handler on stdin/stdout. With chain set, every input
// request also fetches suggestions.
func NewInputHandler(d *dispatch.Dispatcher, chain, showPackages bool) *InputHandler {
	return &InputHandler{
		dispatcher:   d,
		chain:        chain,
		showPackages: showPackages,
		in:           os.Stdin,
		out:          os.Stdout,
	}
}

// WithIO replaces the input and output streams.
func (h *InputHandler) WithIO(in io.Reader, out io.Writer) *InputHandler {
	h.in, h.out = in, out
	return h
}

// Start begins the interface loop. It returns nil at end of input or on :quit.
func (h *InputHandler) Start() error {
	fmt.Fprintln(h.out, inputStyle.Render("WordBridge CLI [BETA]"))
	fmt.Fprintln(h.out, dimStyle.Render("type text to insert it, :help for commands (Ctrl+C to exit)"))
	if h.showPackages {
		h.printPackages()
	}

	reader := bufio.NewReader(h.in)
	for {
		fmt.Fprint(h.out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			if herr := h.handleInput(line); errors.Is(herr, errQuit) {
				return nil
			}
		}
		if err != nil {
			fmt.Fprintln(h.out)
			return nil
		}
	}
}

// handleInput runs one line.
func (h *InputHandler) handleInput(line string) error {
	req, local, err := parseLine(line, h.chain)
	if err != nil {
		fmt.Fprintln(h.out, errorStyle.Render(err.Error()))
		return nil
	}
	switch local {
	case "quit":
		return errQuit
	case "help":
		fmt.Fprintln(h.out, helpText)
		return nil
	case "packages":
		h.printPackages()
		return nil
	case "dicts":
		h.printDictionaries()
		return nil
	}

	h.requestCount++
	req.ID = fmt.Sprintf("cli_%03d", h.requestCount)

	start := time.Now()
	resp := h.dispatcher.Dispatch(req)
	log.Debugf("Took [ %v ] for %s", time.Since(start), req.Code())

	h.printResponse(req, resp)
	return nil
}

func (h *InputHandler) printResponse(req protocol.Request, resp protocol.Response) {
	if !resp.Code.OK() {
		fmt.Fprintln(h.out, errorStyle.Render(fmt.Sprintf("%s (%d)", resp.Code, int(resp.Code))))
	}
	fetched := req.Code() == protocol.RequestGetSuggestions || req.Chained()
	if !fetched || len(resp.Data) < 2 {
		if resp.Code.OK() {
			fmt.Fprintln(h.out, dimStyle.Render("ok"))
		}
		return
	}

	prefix, suffix, suggestions := protocol.SuggestionData(resp.Data)
	fmt.Fprintf(h.out, "%s%s%s\n", inputStyle.Render(prefix), cursorStyle.Render("|"), inputStyle.Render(suffix))
	if len(suggestions) == 0 {
		fmt.Fprintln(h.out, dimStyle.Render("no suggestions"))
		return
	}
	for i, s := range suggestions {
		fmt.Fprintf(h.out, "%2d. %s\n", i+1, wordStyle.Render(s))
	}
}

func (h *InputHandler) printPackages() {
	pkgs, err := h.dispatcher.Installed()
	if err != nil {
		fmt.Fprintln(h.out, errorStyle.Render(fmt.Sprintf("packages: %v", err)))
		return
	}
	if len(pkgs) == 0 {
		fmt.Fprintln(h.out, dimStyle.Render("no packages installed"))
		return
	}
	for _, p := range pkgs {
		fmt.Fprintf(h.out, "%3d  %s  (%d components)\n", p.ID, wordStyle.Render(p.Name), len(p.Components))
	}
}

func (h *InputHandler) printDictionaries() {
	dicts, err := h.dispatcher.Dictionaries(nil)
	if err != nil {
		fmt.Fprintln(h.out, errorStyle.Render(fmt.Sprintf("dictionaries: %v", err)))
		return
	}
	if len(dicts) == 0 {
		fmt.Fprintln(h.out, dimStyle.Render("no dictionaries"))
		return
	}
	for _, d := range dicts {
		state := dimStyle.Render("inactive")
		if d.Active {
			state = wordStyle.Render("active")
		}
		fmt.Fprintf(h.out, "%2d  %-12s %-8s %s\n", d.Priority, d.FileName, d.Language, state)
	}
}
