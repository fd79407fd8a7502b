package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bastiangx/wordbridge/pkg/protocol"
)

// errQuit ends the loop.
var errQuit = errors.New("quit")

// commandPrefix marks a line as a command instead of text to insert.
const commandPrefix = ":"

// helpText lists the REPL commands.
const helpText = `text            insert text at the cursor
:reset          clear the input
:back [n]       delete n characters before the cursor
:del [n]        delete n characters after the cursor
:left [n]       move the cursor left
:right [n]      move the cursor right
:cursor <pos>   move the cursor to pos
:pick <i>       insert suggestion i (1-based)
:suggest        show suggestions
:learn on|off   toggle learning
:install        install new packages
:uninstall      uninstall all packages
:dicts [a,b]    list dictionaries, or set the active list
:packages       list installed packages
:raw m.. [| d]  send raw meta ints and data strings
:quit           exit`

// parseLine turns one REPL line into a request. Commands handled by the REPL
// itself return their name in local and no request.
func parseLine(line string, chain bool) (req protocol.Request, local string, err error) {
	if !strings.HasPrefix(line, commandPrefix) {
		return protocol.InsertString(line, chain), "", nil
	}

	fields := strings.Fields(strings.TrimPrefix(line, commandPrefix))
	if len(fields) == 0 {
		return protocol.Request{}, "", fmt.Errorf("empty command")
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "reset":
		return protocol.Reset(chain), "", nil
	case "back", "del", "left", "right":
		n, err := optionalCount(args)
		if err != nil {
			return protocol.Request{}, "", err
		}
		switch name {
		case "back":
			return protocol.Remove(n, 0, chain), "", nil
		case "del":
			return protocol.Remove(0, n, chain), "", nil
		case "left":
			return protocol.Move(n, 0, chain), "", nil
		default:
			return protocol.Move(0, n, chain), "", nil
		}
	case "cursor":
		pos, err := requiredInt(name, args)
		if err != nil {
			return protocol.Request{}, "", err
		}
		return protocol.SetCursor(pos, chain), "", nil
	case "pick":
		i, err := requiredInt(name, args)
		if err != nil {
			return protocol.Request{}, "", err
		}
		return protocol.InsertSuggestion(i-1, chain), "", nil
	case "suggest":
		return protocol.GetSuggestions(), "", nil
	case "learn":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return protocol.Request{}, "", fmt.Errorf("usage: :learn on|off")
		}
		return protocol.ConfigureLearning(args[0] == "on"), "", nil
	case "install":
		return protocol.InstallPackages(), "", nil
	case "uninstall":
		return protocol.UninstallPackages(), "", nil
	case "dicts":
		if len(args) == 0 {
			return protocol.Request{}, name, nil
		}
		return protocol.SetActiveDictionaries(strings.Join(args, "")), "", nil
	case "raw":
		return parseRaw(args)
	case "packages", "help", "quit":
		return protocol.Request{}, name, nil
	default:
		return protocol.Request{}, "", fmt.Errorf("unknown command %q, try :help", name)
	}
}

func optionalCount(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid count %q", args[0])
	}
	return n, nil
}

func requiredInt(name string, args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("usage: :%s <n>", name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[0])
	}
	return n, nil
}

// parseRaw reads "10 17 | some text" as meta [10 17] and data ["some text"].
func parseRaw(args []string) (protocol.Request, string, error) {
	req := protocol.Request{Meta: []int{}, Data: []string{}}
	for i, a := range args {
		if a == "|" {
			if rest := strings.Join(args[i+1:], " "); rest != "" {
				req.Data = append(req.Data, rest)
			}
			break
		}
		n, err := strconv.Atoi(a)
		if err != nil {
			return protocol.Request{}, "", fmt.Errorf("invalid meta value %q", a)
		}
		req.Meta = append(req.Meta, n)
	}
	return req, "", nil
}
