/*
Package dispatch maps protocol requests onto the session, the package synchronizer
and the dictionary assigner, and turns their outcomes into response codes.

Every request runs as a two-step pipeline. The primary operation runs first; if it
fails the response carries the operation's error code and no data. If it succeeds and
the request is chainable and asks for it (Meta[1] == GET_SUGGESTIONS), a suggestion
response is built next. A failing fetch at that point reports GET_SUGGESTIONS' error
code while the mutation stands.

A Dispatcher serializes requests; a second caller waits for the first to finish,
chained fetch included.
*/
package dispatch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bastiangx/wordbridge/pkg/dictionary"
	"github.com/bastiangx/wordbridge/pkg/engine"
	"github.com/bastiangx/wordbridge/pkg/packages"
	"github.com/bastiangx/wordbridge/pkg/protocol"
	"github.com/bastiangx/wordbridge/pkg/session"
	"github.com/charmbracelet/log"
)

// ErrInvalidRequest is returned for requests whose arguments fail validation.
var ErrInvalidRequest = errors.New("dispatch: invalid request")

// Options controls what Create does after the engine is up.
type Options struct {
	// InstallOnCreate installs new packages right after creation.
	InstallOnCreate bool
	// ActiveDictionaries, if set, is applied as the active list after creation.
	ActiveDictionaries string
	// Learning, if set, is applied after creation.
	Learning *bool
}

// operation is one row of the dispatch table.
type operation struct {
	fail      protocol.ResponseCode
	chainable bool
	fetch     bool // the result is the suggestion response itself
	run       func(d *Dispatcher, req protocol.Request) error
}

var operations = map[protocol.RequestCode]operation{
	protocol.RequestResetInput: {
		fail:      protocol.ResponseErrorReset,
		chainable: true,
		run: func(d *Dispatcher, _ protocol.Request) error {
			return d.session.Reset()
		},
	},
	protocol.RequestInsertString: {
		fail:      protocol.ResponseErrorInsertString,
		chainable: true,
		run: func(d *Dispatcher, req protocol.Request) error {
			if len(req.Data) == 0 {
				return fmt.Errorf("%w: no text", ErrInvalidRequest)
			}
			return d.session.InsertString(req.Data[0])
		},
	},
	protocol.RequestMoveCursor: {
		fail:      protocol.ResponseErrorMoveCursor,
		chainable: true,
		run: func(d *Dispatcher, req protocol.Request) error {
			if len(req.Meta) <= 3 {
				return fmt.Errorf("%w: move needs left and right counts", ErrInvalidRequest)
			}
			return d.session.MoveCursor(engine.SeekRelative, req.Meta[3]-req.Meta[2])
		},
	},
	protocol.RequestRemoveChars: {
		fail:      protocol.ResponseErrorRemoveChars,
		chainable: true,
		run: func(d *Dispatcher, req protocol.Request) error {
			if len(req.Meta) <= 3 {
				return fmt.Errorf("%w: remove needs before and after counts", ErrInvalidRequest)
			}
			return d.session.Remove(req.Meta[2], req.Meta[3])
		},
	},
	protocol.RequestInsertSuggestion: {
		fail:      protocol.ResponseErrorInsertSuggestion,
		chainable: true,
		run: func(d *Dispatcher, req protocol.Request) error {
			if len(req.Meta) <= 2 {
				return fmt.Errorf("%w: no suggestion index", ErrInvalidRequest)
			}
			return d.session.InsertSuggestion(req.Meta[2])
		},
	},
	protocol.RequestConfigureLearning: {
		fail: protocol.ResponseErrorConfigureLearning,
		run: func(d *Dispatcher, req protocol.Request) error {
			if len(req.Meta) <= 1 {
				return fmt.Errorf("%w: no learning flag", ErrInvalidRequest)
			}
			return d.session.ConfigureLearning(req.Meta[1] != 0)
		},
	},
	protocol.RequestSetCursor: {
		fail:      protocol.ResponseErrorSetCursor,
		chainable: true,
		run: func(d *Dispatcher, req protocol.Request) error {
			if len(req.Meta) <= 2 {
				return fmt.Errorf("%w: no cursor position", ErrInvalidRequest)
			}
			return d.session.MoveCursor(engine.SeekStart, req.Meta[2])
		},
	},
	protocol.RequestGetSuggestions: {
		fail:  protocol.ResponseErrorGetSuggestions,
		fetch: true,
	},
	protocol.RequestInstallPackages: {
		fail: protocol.ResponseErrorInstallPackages,
		run: func(d *Dispatcher, _ protocol.Request) error {
			return d.packages.InstallNew()
		},
	},
	protocol.RequestUninstallPackages: {
		fail: protocol.ResponseErrorUninstallPackages,
		run: func(d *Dispatcher, _ protocol.Request) error {
			return d.packages.UninstallAll()
		},
	},
	protocol.RequestSetActiveDictionaries: {
		fail: protocol.ResponseErrorSetActiveDictionaries,
		run: func(d *Dispatcher, req protocol.Request) error {
			if len(req.Data) == 0 {
				return fmt.Errorf("%w: no dictionary list", ErrInvalidRequest)
			}
			return d.dicts.SetActiveList(req.Data[0])
		},
	},
}

// Dispatcher owns one session and answers requests against it.
type Dispatcher struct {
	mu       sync.Mutex
	session  *session.Session
	packages *packages.Synchronizer
	dicts    *dictionary.Assigner
	opts     Options
	logger   *log.Logger
}

// New returns a dispatcher whose session acquires the engine from loader.
func New(loader engine.Loader, opts Options, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	s := session.New(loader, logger.WithPrefix("session"))
	return &Dispatcher{
		session:  s,
		packages: packages.New(s, logger.WithPrefix("packages")),
		dicts:    dictionary.New(s, logger.WithPrefix("dictionary")),
		opts:     opts,
		logger:   logger,
	}
}

// Create creates the engine session, then installs new packages and applies the
// configured dictionary list and learning flag. Only the session creation is fatal;
// the follow-up steps are logged when they fail.
func (d *Dispatcher) Create(basePath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.session.Create(basePath); err != nil {
		return err
	}
	if d.opts.InstallOnCreate {
		if err := d.packages.InstallNew(); err != nil {
			d.logger.Warnf("Package install on create failed: %v", err)
		}
	}
	if d.opts.ActiveDictionaries != "" {
		if err := d.dicts.SetActiveList(d.opts.ActiveDictionaries); err != nil {
			d.logger.Warnf("Failed to apply active dictionaries %q: %v", d.opts.ActiveDictionaries, err)
		}
	}
	if d.opts.Learning != nil {
		if err := d.session.ConfigureLearning(*d.opts.Learning); err != nil {
			d.logger.Warnf("Failed to configure learning: %v", err)
		}
	}
	return nil
}

// Destroy tears the session down. It is safe to call more than once.
func (d *Dispatcher) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.session.Destroy()
}

// IsCreated reports whether the session is live.
func (d *Dispatcher) IsCreated() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session.IsCreated()
}

// Dispatch answers req. It never panics and never returns a nil Data slice.
func (d *Dispatcher) Dispatch(req protocol.Request) protocol.Response {
	d.mu.Lock()
	defer d.mu.Unlock()

	resp := d.dispatch(req)
	resp.ID = req.ID
	if resp.Data == nil {
		resp.Data = []string{}
	}
	return resp
}

func (d *Dispatcher) dispatch(req protocol.Request) (resp protocol.Response) {
	code := req.Code()
	op, ok := operations[code]
	if len(req.Meta) == 0 || !ok {
		d.logger.Debug("Unrecognised request", "meta", req.Meta)
		return protocol.Response{Code: protocol.ResponseErrorUnrecognisedMsgType}
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Errorf("Panic in %s: %v", code, r)
			resp = protocol.Response{Code: op.fail}
		}
	}()

	d.logger.Debug("Dispatch", "op", code, "meta", req.Meta, "data", len(req.Data))
	if op.fetch {
		return d.suggestionResponse()
	}
	if err := op.run(d, req); err != nil {
		d.logger.Debugf("%s failed: %v", code, err)
		return protocol.Response{Code: op.fail}
	}
	if op.chainable && req.Chained() {
		return d.suggestionResponse()
	}
	return protocol.Response{Code: protocol.ResponseOK}
}

// suggestionResponse builds [prefix, suffix, suggestions...]. Prefix and suffix are
// written first and survive a failed fetch.
func (d *Dispatcher) suggestionResponse() protocol.Response {
	data := []string{"", ""}
	if cw, err := d.session.CurrentWord(); err == nil {
		data[0], data[1] = cw.FixedPrefix, cw.FixedSuffix
	} else {
		d.logger.Debugf("No current word: %v", err)
	}

	set, err := d.session.FetchSuggestions()
	if err != nil {
		d.logger.Debugf("Suggestion fetch failed: %v", err)
		return protocol.Response{Code: protocol.ResponseErrorGetSuggestions, Data: data}
	}
	data = append(data, set.Texts()...)
	return protocol.Response{Code: protocol.ResponseOK, Data: data}
}

// Installed lists installed packages.
func (d *Dispatcher) Installed() ([]engine.Package, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.packages.Installed()
}

// Available lists packages the engine can install.
func (d *Dispatcher) Available() ([]engine.Package, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.packages.Available()
}

// Dictionaries lists known dictionaries, optionally filtered by language.
func (d *Dispatcher) Dictionaries(filter *engine.LanguageMatch) ([]engine.Dictionary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dicts.List(filter)
}

// Learning reports whether learning is on.
func (d *Dispatcher) Learning() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session.LearningEnabled()
}
