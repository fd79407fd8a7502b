package memengine

import (
	"path"

	"github.com/bastiangx/wordbridge/pkg/engine"
)

// SetHook installs h for cmd, replacing any previous hook.
func (e *Engine) SetHook(cmd engine.Command, h Hook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks[cmd] = h
}

// ClearHooks removes every hook.
func (e *Engine) ClearHooks() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = make(map[engine.Command]Hook)
}

// FailCommand makes every call of cmd fail with engine.ResultError.
func (e *Engine) FailCommand(cmd engine.Command) {
	e.SetHook(cmd, func(any, any) engine.Result { return engine.ResultError })
}

// FailPackageInstall makes installing the named package fail.
func (e *Engine) FailPackageInstall(name string) {
	e.SetHook(engine.CmdPackageInstall, func(arg1, _ any) engine.Result {
		if n, ok := arg1.(string); ok && n == name {
			return engine.ResultError
		}
		return engine.ResultSuccess
	})
}

// Calls returns the recorded commands.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// CallCount is how many times cmd was run.
func (e *Engine) CallCount(cmd engine.Command) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, c := range e.calls {
		if c.Command == cmd {
			n++
		}
	}
	return n
}

// InstallAttempts lists package names passed to CmdPackageInstall, in order.
func (e *Engine) InstallAttempts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var names []string
	for _, c := range e.calls {
		if c.Command != engine.CmdPackageInstall {
			continue
		}
		if n, ok := c.Arg1.(string); ok {
			names = append(names, n)
		}
	}
	return names
}

// InstalledNames lists the installed packages in install order.
func (e *Engine) InstalledNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.installed))
	for _, p := range e.installed {
		names = append(names, p.name)
	}
	return names
}

// Outstanding is the number of allocations not yet released.
func (e *Engine) Outstanding() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.outstanding)
}

// Buffer returns the input buffer and the cursor position.
func (e *Engine) Buffer() (string, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return string(e.buffer), e.cursor
}

// DictionaryStates returns the state of every loaded dictionary keyed by file name.
func (e *Engine) DictionaryStates() map[string]engine.DictState {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]engine.DictState, len(e.dicts))
	for _, d := range e.dicts {
		out[d.info.FileName] = d.state
	}
	return out
}

// LearnOptions returns the current learning options.
func (e *Engine) LearnOptions() engine.LearnOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.learn
}

// filterDictionaries applies a language match to dicts. A nil match keeps all.
func filterDictionaries(dicts []*dictionary, match *engine.LanguageMatch) ([]*dictionary, error) {
	if match == nil {
		return dicts, nil
	}
	switch match.Mode {
	case engine.LangFiltering:
		var out []*dictionary
		for _, d := range dicts {
			if _, ok, err := firstMatch(d.info.Language, match.Patterns); err != nil {
				return nil, err
			} else if ok {
				out = append(out, d)
			}
		}
		return out, nil
	case engine.LangLookup:
		var out []*dictionary
		for i := range match.Patterns {
			for _, d := range dicts {
				idx, ok, err := firstMatch(d.info.Language, match.Patterns)
				if err != nil {
					return nil, err
				}
				if ok && idx == i {
					out = append(out, d)
				}
			}
		}
		return out, nil
	default:
		return nil, path.ErrBadPattern
	}
}

func firstMatch(lang string, patterns []string) (int, bool, error) {
	for i, p := range patterns {
		ok, err := path.Match(p, lang)
		if err != nil {
			return 0, false, err
		}
		if ok {
			return i, true, nil
		}
	}
	return 0, false, nil
}
