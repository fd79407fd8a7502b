/*
Package dictionary sets which engine dictionaries are active and in what order.

SetActiveList takes a comma-delimited preference list such as "enggb,frefr,lavlv".
Names are matched exactly against the dictionary file names the engine reports.
Requested names the engine does not know are dropped. Each known dictionary found in
the remaining list becomes active with its position as priority; every other one
becomes inactive with priority count-1, leaving their relative order to the engine.
All states go to the engine in a single set-states call because the engine settles
final priorities across the whole set.
*/
package dictionary

import (
	"fmt"

	"github.com/bastiangx/wordbridge/internal/utils"
	"github.com/bastiangx/wordbridge/pkg/engine"
	"github.com/charmbracelet/log"
)

const (
	// MaxDictionaries caps the number of names read from a preference list.
	MaxDictionaries = 100
	// MaxStringLength bounds dictionary name comparison.
	MaxStringLength = 1024
	// ListSeparator delimits names in a preference list.
	ListSeparator = ","
)

// Assigner computes and applies dictionary activation.
type Assigner struct {
	eng    engine.Commander
	logger *log.Logger
}

// New returns an assigner issuing commands through eng.
func New(eng engine.Commander, logger *log.Logger) *Assigner {
	if logger == nil {
		logger = log.Default()
	}
	return &Assigner{eng: eng, logger: logger}
}

func (a *Assigner) release(list *engine.DictionaryList) {
	if !list.Held() {
		return
	}
	if r := a.eng.ReleaseAllocation(list); r.Failed() {
		a.logger.Warnf("Failed to release dictionary list: %s", r)
	}
}

// SetActiveList activates the dictionaries named in csv, in that priority order, and
// deactivates the rest. The dictionary list is released whatever the outcome.
func (a *Assigner) SetActiveList(csv string) error {
	var list engine.DictionaryList
	if err := engine.Check(engine.CmdDictionaryGetList,
		a.eng.RunCommand(engine.CmdDictionaryGetList, &list, nil)); err != nil {
		return fmt.Errorf("failed to list dictionaries: %w", err)
	}
	defer a.release(&list)

	names := make([]string, len(list.Info))
	for i, info := range list.Info {
		names[i] = info.FileName
	}

	states := Assign(names, csv)
	for i := range states {
		// Carry the engine's identity fields, the rest comes from Assign.
		states[i].ComponentID = list.States[i].ComponentID
		states[i].Loaded = list.States[i].Loaded
		if states[i].Active {
			a.logger.Debugf("Activating %s priority %d", names[i], states[i].Priority)
		} else {
			a.logger.Debugf("Deactivating %s", names[i])
		}
	}

	if err := engine.Check(engine.CmdDictionarySetStates,
		a.eng.RunCommand(engine.CmdDictionarySetStates, states, len(states))); err != nil {
		return fmt.Errorf("failed to set dictionary states: %w", err)
	}
	return nil
}

// Assign derives the state for every known dictionary from a preference list.
// The result is parallel to known; only Active, Priority and FieldMask are set.
func Assign(known []string, csv string) []engine.DictState {
	requested := utils.SplitList(csv, ListSeparator, MaxDictionaries)

	// Unknown names and repeats are dropped so priorities stay dense.
	required := make([]string, 0, len(requested))
	for _, name := range requested {
		if utils.IndexBounded(known, name, MaxStringLength) < 0 {
			continue
		}
		if utils.IndexBounded(required, name, MaxStringLength) >= 0 {
			continue
		}
		required = append(required, name)
	}

	states := make([]engine.DictState, len(known))
	for i, name := range known {
		st := &states[i]
		st.FieldMask = engine.DictStateActive | engine.DictStatePriority
		if p := utils.IndexBounded(required, name, MaxStringLength); p >= 0 {
			st.Active = true
			st.Priority = p
		} else {
			st.Active = false
			st.Priority = len(known) - 1
		}
	}
	return states
}

// List returns every dictionary the engine knows, optionally filtered by language.
func (a *Assigner) List(filter *engine.LanguageMatch) ([]engine.Dictionary, error) {
	var list engine.DictionaryList
	var arg2 any
	if filter != nil {
		arg2 = filter
	}
	if err := engine.Check(engine.CmdDictionaryGetList,
		a.eng.RunCommand(engine.CmdDictionaryGetList, &list, arg2)); err != nil {
		return nil, fmt.Errorf("failed to list dictionaries: %w", err)
	}
	defer a.release(&list)

	out := make([]engine.Dictionary, len(list.Info))
	for i, info := range list.Info {
		st := list.States[i]
		out[i] = engine.Dictionary{
			FileName:    info.FileName,
			DisplayName: info.DisplayName,
			Language:    info.Language,
			Version:     info.Version,
			ComponentID: st.ComponentID,
			Loaded:      st.Loaded,
			Active:      st.Active,
			Priority:    st.Priority,
		}
	}
	return out, nil
}
