/*
Package memengine is an in-process prediction engine behind the engine capability surface.

It keeps installed packages, dictionary states, the input buffer and learning options
in memory and answers suggestion requests by prefix lookup over patricia tries built
from package word lists. It is deterministic, which makes it the test double for the
bridge, and it also backs the CLI and server when no native engine is available.

Packages come from Option values and, after Create, from TOML manifests found in
<base path>/packages. Installed packages survive Destroy and a later Create on the same
Engine the same way an on-disk install would.

Tests drive failure paths through hooks:

	e := memengine.New(memengine.WithPackages(specs...))
	e.FailPackageInstall("frefr")
	e.FailCommand(engine.CmdSuggestionsGet)

and check resource discipline with Outstanding, which counts allocations handed out
and not yet released.
*/
package memengine

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"unicode"

	"github.com/bastiangx/wordbridge/pkg/engine"
	"github.com/charmbracelet/log"
)

// DefaultMaxSuggestions is the size of a suggestion set unless overridden.
const DefaultMaxSuggestions = 8

// Hook intercepts a command before it runs. A failure result stops the command.
type Hook func(arg1, arg2 any) engine.Result

// Call records one RunCommand invocation.
type Call struct {
	Command engine.Command
	Arg1    any
	Arg2    any
}

// Option configures an Engine.
type Option func(*Engine)

// WithPackages adds available packages.
func WithPackages(specs ...PackageSpec) Option {
	return func(e *Engine) { e.fixtures = append(e.fixtures, specs...) }
}

// WithInstalled marks packages as installed before the first Create.
func WithInstalled(specs ...PackageSpec) Option {
	return func(e *Engine) {
		for _, s := range specs {
			e.install(s)
		}
	}
}

// WithMaxSuggestions caps the suggestion set size.
func WithMaxSuggestions(n int) Option {
	return func(e *Engine) { e.maxSuggestions = n }
}

// WithLogger sets the logger for engine traces.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

type installedPackage struct {
	name       string
	id         engine.PackageID
	components []engine.Component
}

type dictionary struct {
	pkg   engine.PackageID
	info  engine.DictionaryInfo
	state engine.DictState
	index *wordIndex
	order int
}

// Engine is the in-memory engine. The zero value is not usable; use New.
type Engine struct {
	mu     sync.Mutex
	logger *log.Logger

	created   bool
	cfg       engine.Config
	fixtures  []PackageSpec
	available []PackageSpec
	installed []*installedPackage
	dicts     []*dictionary
	learned   *wordIndex
	learn     engine.LearnOptions

	buffer  []rune
	cursor  int
	set     engine.SuggestionSetID
	current []engine.Suggestion
	fetched bool

	nextPackage engine.PackageID
	nextAlloc   uint64
	nextOrder   int
	outstanding map[uint64]engine.Command

	hooks map[engine.Command]Hook
	calls []Call

	maxSuggestions int
	opened         int
	closed         int
}

// New creates an engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:         log.Default(),
		learned:        newWordIndex(nil),
		learn:          engine.LearnEnabled,
		outstanding:    make(map[uint64]engine.Command),
		hooks:          make(map[engine.Command]Hook),
		maxSuggestions: DefaultMaxSuggestions,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Loader returns a loader yielding a module that exports this engine.
func (e *Engine) Loader() engine.Loader {
	return engine.LoaderFunc(func() (engine.Module, error) {
		e.mu.Lock()
		e.opened++
		e.mu.Unlock()
		return &engine.SymbolTable{
			Symbols: engine.Exports(e),
			OnClose: func() error {
				e.mu.Lock()
				e.closed++
				e.mu.Unlock()
				return nil
			},
		}, nil
	})
}

// ModulesOpen is the number of loaded modules not yet closed.
func (e *Engine) ModulesOpen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opened - e.closed
}

// Create implements engine.Engine.
func (e *Engine) Create(cfg engine.Config) engine.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.created {
		return engine.ResultAlreadyExists
	}
	e.cfg = cfg
	e.available = append([]PackageSpec(nil), e.fixtures...)
	if cfg.BasePath != "" {
		dir := filepath.Join(cfg.BasePath, PackagesDir)
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			specs, err := LoadManifests(dir)
			if err != nil {
				e.logger.Warnf("Failed to read packages from %s: %v", dir, err)
			}
			e.available = append(e.available, specs...)
		}
	}
	e.resetInput()
	e.created = true
	e.logger.Debug("engine created", "base", cfg.BasePath, "locking", cfg.LockingEnabled, "available", len(e.available))
	return engine.ResultSuccess
}

// Destroy implements engine.Engine.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.created = false
	e.resetInput()
	e.logger.Debug("engine destroyed")
}

// ReleaseAllocation implements engine.Commander.
func (e *Engine) ReleaseAllocation(alloc engine.Allocation) engine.Result {
	if alloc == nil {
		return engine.ResultInvalidArgument
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	a := alloc.Allocation()
	if a == nil || !a.Held() {
		return engine.ResultSuccess
	}
	if _, ok := e.outstanding[a.ID]; !ok {
		return engine.ResultNotFound
	}
	delete(e.outstanding, a.ID)
	a.ID = 0
	return engine.ResultSuccess
}

// RunCommand implements engine.Commander.
func (e *Engine) RunCommand(cmd engine.Command, arg1, arg2 any) engine.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, Call{Command: cmd, Arg1: arg1, Arg2: arg2})
	if !e.created {
		return engine.ResultNotCreated
	}
	if hook, ok := e.hooks[cmd]; ok {
		if r := hook(arg1, arg2); r.Failed() {
			return r
		}
	}

	switch cmd {
	case engine.CmdPackageGetAvailable:
		return e.packageGetAvailable(arg1)
	case engine.CmdPackageGetInstalled:
		return e.packageGetInstalled(arg1)
	case engine.CmdPackageInstall:
		return e.packageInstall(arg1, arg2)
	case engine.CmdPackageUninstall:
		return e.packageUninstall(arg1)
	case engine.CmdComponentGetAvailable:
		return e.componentList(arg1, false)
	case engine.CmdComponentGetLoaded:
		return e.componentList(arg1, true)
	case engine.CmdDictionaryGetList:
		return e.dictionaryGetList(arg1, arg2)
	case engine.CmdDictionarySetStates:
		return e.dictionarySetStates(arg1, arg2)
	case engine.CmdInputReset:
		e.resetInput()
		return engine.ResultSuccess
	case engine.CmdInputInsertString:
		return e.insertString(arg1)
	case engine.CmdInputMoveCursor:
		return e.moveCursor(arg1, arg2)
	case engine.CmdInputRemove:
		return e.remove(arg1)
	case engine.CmdInputInsertSuggestion:
		return e.insertSuggestion(arg1, arg2)
	case engine.CmdInputGetCurrentWord:
		return e.currentWord(arg1)
	case engine.CmdSuggestionsGet:
		return e.suggestions(arg1, arg2)
	case engine.CmdLearnGetOptions:
		opts, ok := arg1.(*engine.LearnOptions)
		if !ok || opts == nil {
			return engine.ResultInvalidArgument
		}
		*opts = e.learn
		return engine.ResultSuccess
	case engine.CmdLearnSetOptions:
		opts, ok := arg1.(engine.LearnOptions)
		if !ok {
			return engine.ResultInvalidArgument
		}
		e.learn = opts
		return engine.ResultSuccess
	default:
		return engine.ResultNotSupported
	}
}

// allocate marks a as held, dropping any allocation it still carried.
func (e *Engine) allocate(a *engine.Alloc, cmd engine.Command) {
	if a.Held() {
		delete(e.outstanding, a.ID)
	}
	e.nextAlloc++
	a.ID = e.nextAlloc
	e.outstanding[a.ID] = cmd
}

func (e *Engine) packageGetAvailable(arg1 any) engine.Result {
	list, ok := arg1.(*engine.PackageList)
	if !ok || list == nil {
		return engine.ResultInvalidArgument
	}
	// No package files is reported as an error, like an empty packages folder.
	if len(e.available) == 0 {
		return engine.ResultNotFound
	}
	list.Packages = make([]engine.Package, 0, len(e.available))
	for _, spec := range e.available {
		list.Packages = append(list.Packages, engine.Package{
			Name:       spec.Name,
			Components: componentsOf(spec, false),
		})
	}
	e.allocate(&list.Alloc, engine.CmdPackageGetAvailable)
	return engine.ResultSuccess
}

func (e *Engine) packageGetInstalled(arg1 any) engine.Result {
	list, ok := arg1.(*engine.PackageList)
	if !ok || list == nil {
		return engine.ResultInvalidArgument
	}
	list.Packages = make([]engine.Package, 0, len(e.installed))
	for _, p := range e.installed {
		list.Packages = append(list.Packages, engine.Package{
			Name:       p.name,
			ID:         p.id,
			Components: append([]engine.Component(nil), p.components...),
		})
	}
	e.allocate(&list.Alloc, engine.CmdPackageGetInstalled)
	return engine.ResultSuccess
}

func (e *Engine) packageInstall(arg1, arg2 any) engine.Result {
	name, ok := arg1.(string)
	if !ok || name == "" {
		return engine.ResultInvalidArgument
	}
	for _, p := range e.installed {
		if p.name == name {
			return engine.ResultAlreadyExists
		}
	}
	for _, spec := range e.available {
		if spec.Name != name {
			continue
		}
		id := e.install(spec)
		if out, ok := arg2.(*engine.PackageID); ok && out != nil {
			*out = id
		}
		e.logger.Debug("installed package", "name", name, "id", id)
		return engine.ResultSuccess
	}
	return engine.ResultNotFound
}

// install registers spec as installed and loads its dictionaries.
func (e *Engine) install(spec PackageSpec) engine.PackageID {
	e.nextPackage++
	p := &installedPackage{
		name:       spec.Name,
		id:         e.nextPackage,
		components: componentsOf(spec, true),
	}
	e.installed = append(e.installed, p)

	for _, c := range spec.Components {
		if c.componentType() != engine.ComponentDictionary || c.Dictionary == nil {
			continue
		}
		d := &dictionary{
			pkg: p.id,
			info: engine.DictionaryInfo{
				FileName:    c.Dictionary.FileName,
				DisplayName: c.Dictionary.DisplayName,
				Language:    c.Dictionary.Language,
				Version:     c.Version,
			},
			state: engine.DictState{
				ComponentID: engine.ComponentID(c.ID),
				Loaded:      true,
				Active:      true,
				Priority:    len(e.dicts),
			},
			index: newWordIndex(c.Dictionary.Words),
			order: e.nextOrder,
		}
		e.nextOrder++
		e.dicts = append(e.dicts, d)
	}
	return p.id
}

func (e *Engine) packageUninstall(arg1 any) engine.Result {
	id, ok := arg1.(engine.PackageID)
	if !ok {
		return engine.ResultInvalidArgument
	}
	for i, p := range e.installed {
		if p.id != id {
			continue
		}
		e.installed = append(e.installed[:i], e.installed[i+1:]...)
		kept := e.dicts[:0]
		for _, d := range e.dicts {
			if d.pkg != id {
				kept = append(kept, d)
			}
		}
		e.dicts = kept
		e.normalizePriorities()
		e.logger.Debug("uninstalled package", "name", p.name, "id", id)
		return engine.ResultSuccess
	}
	return engine.ResultNotFound
}

func componentsOf(spec PackageSpec, installed bool) []engine.Component {
	comps := make([]engine.Component, 0, len(spec.Components))
	for _, c := range spec.Components {
		comp := engine.Component{
			ID:      engine.ComponentID(c.ID),
			Type:    c.componentType(),
			Version: c.Version,
			Loaded:  installed && c.componentType() != engine.ComponentOther,
		}
		if c.Dictionary != nil {
			comp.Extra = &engine.DictionaryInfo{
				FileName:    c.Dictionary.FileName,
				DisplayName: c.Dictionary.DisplayName,
				Language:    c.Dictionary.Language,
				Version:     c.Version,
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

func (e *Engine) componentList(arg1 any, loadedOnly bool) engine.Result {
	list, ok := arg1.(*engine.ComponentList)
	if !ok || list == nil {
		return engine.ResultInvalidArgument
	}
	list.Components = list.Components[:0]
	for _, p := range e.installed {
		for _, c := range p.components {
			if loadedOnly && !c.Loaded {
				continue
			}
			list.Components = append(list.Components, c)
		}
	}
	cmd := engine.CmdComponentGetAvailable
	if loadedOnly {
		cmd = engine.CmdComponentGetLoaded
	}
	e.allocate(&list.Alloc, cmd)
	return engine.ResultSuccess
}

func (e *Engine) dictionaryGetList(arg1, arg2 any) engine.Result {
	list, ok := arg1.(*engine.DictionaryList)
	if !ok || list == nil {
		return engine.ResultInvalidArgument
	}
	var match *engine.LanguageMatch
	if arg2 != nil {
		if match, ok = arg2.(*engine.LanguageMatch); !ok {
			return engine.ResultInvalidArgument
		}
	}

	selected, err := filterDictionaries(e.dicts, match)
	if err != nil {
		return engine.ResultInvalidArgument
	}
	list.Info = make([]engine.DictionaryInfo, len(selected))
	list.States = make([]engine.DictState, len(selected))
	for i, d := range selected {
		list.Info[i] = d.info
		list.States[i] = d.state
	}
	e.allocate(&list.Alloc, engine.CmdDictionaryGetList)
	return engine.ResultSuccess
}

func (e *Engine) dictionarySetStates(arg1, arg2 any) engine.Result {
	states, ok := arg1.([]engine.DictState)
	if !ok {
		return engine.ResultInvalidArgument
	}
	count, ok := arg2.(int)
	if !ok || count != len(states) {
		return engine.ResultInvalidArgument
	}

	// Validate everything first so a bad entry leaves all states untouched.
	targets := make([]*dictionary, len(states))
	for i, st := range states {
		d := e.dictionaryByComponent(st.ComponentID)
		if d == nil {
			return engine.ResultNotFound
		}
		targets[i] = d
	}
	for i, st := range states {
		d := targets[i]
		if st.FieldMask&engine.DictStateActive != 0 {
			d.state.Active = st.Active
		}
		if st.FieldMask&engine.DictStatePriority != 0 {
			d.state.Priority = st.Priority
		}
	}
	e.normalizePriorities()
	return engine.ResultSuccess
}

func (e *Engine) dictionaryByComponent(id engine.ComponentID) *dictionary {
	for _, d := range e.dicts {
		if d.state.ComponentID == id {
			return d
		}
	}
	return nil
}

// normalizePriorities assigns dense priorities: active dictionaries first by
// requested priority, then inactive ones, ties broken by install order.
func (e *Engine) normalizePriorities() {
	ordered := append([]*dictionary(nil), e.dicts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.state.Active != b.state.Active {
			return a.state.Active
		}
		if a.state.Priority != b.state.Priority {
			return a.state.Priority < b.state.Priority
		}
		return a.order < b.order
	})
	for i, d := range ordered {
		d.state.Priority = i
	}
}

// invalidate drops the current suggestion set.
func (e *Engine) invalidate() {
	e.current = nil
	e.fetched = false
}

func (e *Engine) resetInput() {
	e.buffer = e.buffer[:0]
	e.cursor = 0
	e.invalidate()
}

func (e *Engine) insertString(arg1 any) engine.Result {
	in, ok := arg1.(*engine.InsertString)
	if !ok || in == nil {
		return engine.ResultInvalidArgument
	}
	runes := []rune(in.Text)
	if in.Length < 0 || in.Length > len(runes) {
		return engine.ResultInvalidArgument
	}
	e.insertAtCursor(runes[:in.Length])
	return engine.ResultSuccess
}

func (e *Engine) insertAtCursor(runes []rune) {
	for _, r := range runes {
		if !isWordRune(r) {
			e.learnWordBeforeCursor()
		}
		e.buffer = append(e.buffer, 0)
		copy(e.buffer[e.cursor+1:], e.buffer[e.cursor:])
		e.buffer[e.cursor] = r
		e.cursor++
	}
	e.invalidate()
}

// learnWordBeforeCursor adds a finished word unknown to every dictionary.
func (e *Engine) learnWordBeforeCursor() {
	if e.learn&engine.LearnEnabled == 0 {
		return
	}
	start := e.cursor
	for start > 0 && isWordRune(e.buffer[start-1]) {
		start--
	}
	word := string(e.buffer[start:e.cursor])
	if len([]rune(word)) < 2 {
		return
	}
	for _, d := range e.dicts {
		if d.index.contains(word) {
			return
		}
	}
	e.learned.bump(word)
}

func (e *Engine) moveCursor(arg1, arg2 any) engine.Result {
	mode, ok := arg1.(engine.SeekMode)
	if !ok {
		return engine.ResultInvalidArgument
	}
	amount, ok := arg2.(int)
	if !ok {
		return engine.ResultInvalidArgument
	}

	var pos int
	switch mode {
	case engine.SeekStart:
		pos = amount
	case engine.SeekRelative:
		pos = e.cursor + amount
	case engine.SeekEnd:
		pos = len(e.buffer) + amount
	default:
		return engine.ResultInvalidArgument
	}
	if pos < 0 || pos > len(e.buffer) {
		return engine.ResultOutOfRange
	}
	e.cursor = pos
	e.invalidate()
	return engine.ResultSuccess
}

func (e *Engine) remove(arg1 any) engine.Result {
	rc, ok := arg1.(*engine.RemoveChars)
	if !ok || rc == nil || rc.BeforeCursor < 0 || rc.AfterCursor < 0 {
		return engine.ResultInvalidArgument
	}
	if rc.BeforeCursor > e.cursor || rc.AfterCursor > len(e.buffer)-e.cursor {
		return engine.ResultOutOfRange
	}
	start := e.cursor - rc.BeforeCursor
	end := e.cursor + rc.AfterCursor
	e.buffer = append(e.buffer[:start], e.buffer[end:]...)
	e.cursor = start
	e.invalidate()
	return engine.ResultSuccess
}

// wordSpan returns the bounds of the word touching the cursor.
func (e *Engine) wordSpan() (int, int) {
	start, end := e.cursor, e.cursor
	for start > 0 && isWordRune(e.buffer[start-1]) {
		start--
	}
	for end < len(e.buffer) && isWordRune(e.buffer[end]) {
		end++
	}
	return start, end
}

func (e *Engine) currentWord(arg1 any) engine.Result {
	cw, ok := arg1.(*engine.CurrentWord)
	if !ok || cw == nil {
		return engine.ResultInvalidArgument
	}
	start, end := e.wordSpan()
	cw.FixedPrefix = string(e.buffer[start:e.cursor])
	cw.FixedSuffix = string(e.buffer[e.cursor:end])
	return engine.ResultSuccess
}

func (e *Engine) suggestions(arg1, arg2 any) engine.Result {
	if req, ok := arg1.(*engine.SuggestionRequest); !ok || req == nil {
		return engine.ResultInvalidArgument
	}
	reply, ok := arg2.(*engine.SuggestionReply)
	if !ok || reply == nil {
		return engine.ResultInvalidArgument
	}

	start, _ := e.wordSpan()
	typed := string(e.buffer[start:e.cursor])

	e.set++
	e.current = e.current[:0]
	if typed != "" {
		lower := toLower(typed)
		found := make(map[string]candidate)
		for _, d := range e.dicts {
			if d.state.Active {
				d.index.search(lower, d.state.Priority, found)
			}
		}
		e.learned.search(lower, len(e.dicts), found)
		for i, c := range rank(found, e.maxSuggestions) {
			e.current = append(e.current, engine.Suggestion{
				ID:   engine.SuggestionID(i + 1),
				Text: applyCapitalization(c.word, typed),
			})
		}
	}
	e.fetched = true

	reply.Set = e.set
	reply.Suggestions = append([]engine.Suggestion(nil), e.current...)
	e.allocate(&reply.Alloc, engine.CmdSuggestionsGet)
	return engine.ResultSuccess
}

func (e *Engine) insertSuggestion(arg1, arg2 any) engine.Result {
	req, ok := arg1.(*engine.InsertSuggestionRequest)
	if !ok || req == nil {
		return engine.ResultInvalidArgument
	}
	if !e.fetched || req.Set != e.set {
		return engine.ResultInvalidArgument
	}
	var text string
	found := false
	for _, s := range e.current {
		if s.ID == req.SuggestionID {
			text, found = s.Text, true
			break
		}
	}
	if !found {
		return engine.ResultNotFound
	}

	start, end := e.wordSpan()
	e.buffer = append(e.buffer[:start], e.buffer[end:]...)
	e.cursor = start
	inserted := []rune(text)
	if req.AppendSpace {
		inserted = append(inserted, ' ')
	}
	e.insertAtCursor(inserted)
	if e.learn&engine.LearnEnabled != 0 {
		e.learned.bump(text)
	}

	if reply, ok := arg2.(*engine.InsertSuggestionReply); ok && reply != nil {
		reply.Inserted = string(inserted)
		e.allocate(&reply.Alloc, engine.CmdInputInsertSuggestion)
	}
	return engine.ResultSuccess
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-'
}

func toLower(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return string(runes)
}
