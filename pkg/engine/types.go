package engine

// Alloc marks a buffer filled by the engine. ID is set by the engine when it
// allocates; zero means nothing is held.
type Alloc struct {
	ID uint64
}

// Allocation is implemented by every reply type that embeds Alloc.
type Allocation interface {
	Allocation() *Alloc
}

// Allocation implements Allocation.
func (a *Alloc) Allocation() *Alloc { return a }

// Held reports whether the engine allocated into a.
func (a *Alloc) Held() bool { return a.ID != 0 }

type (
	PackageID    uint32
	ComponentID  uint32
	SuggestionID uint32
	// SuggestionSetID tags one suggestion fetch; commits must quote it.
	SuggestionSetID uint32
)

// ComponentType of a package component.
type ComponentType int

const (
	ComponentOther ComponentType = iota
	ComponentEngine
	ComponentDictionary
)

func (t ComponentType) String() string {
	switch t {
	case ComponentEngine:
		return "engine"
	case ComponentDictionary:
		return "dictionary"
	default:
		return "other"
	}
}

// Component is a unit inside a package.
type Component struct {
	ID      ComponentID
	Type    ComponentType
	Version uint32
	Loaded  bool
	// Extra is *DictionaryInfo for dictionary components, nil otherwise.
	Extra any
}

// Package is an installable bundle of components. Name is its identity.
type Package struct {
	Name       string
	ID         PackageID
	Components []Component
}

// PackageList is filled by CmdPackageGetAvailable and CmdPackageGetInstalled.
type PackageList struct {
	Alloc
	Packages []Package
}

// ComponentList is filled by CmdComponentGetAvailable and CmdComponentGetLoaded.
type ComponentList struct {
	Alloc
	Components []Component
}

// DictionaryInfo describes a dictionary file.
type DictionaryInfo struct {
	FileName    string
	DisplayName string
	Language    string
	Version     uint32
}

// DictStateMask selects which DictState fields a set-states call applies.
type DictStateMask uint32

const (
	DictStateActive DictStateMask = 1 << iota
	DictStatePriority
)

// DictState is the mutable state of one dictionary.
type DictState struct {
	ComponentID ComponentID
	FieldMask   DictStateMask
	Loaded      bool
	Active      bool
	Priority    int
}

// DictionaryList is filled by CmdDictionaryGetList. Info and States are parallel.
type DictionaryList struct {
	Alloc
	Info   []DictionaryInfo
	States []DictState
}

// Dictionary is the flattened view of one DictionaryList entry.
type Dictionary struct {
	FileName    string
	DisplayName string
	Language    string
	Version     uint32
	ComponentID ComponentID
	Loaded      bool
	Active      bool
	Priority    int
}

// LanguageMatchMode selects how a LanguageMatch is applied.
type LanguageMatchMode int

const (
	// LangFiltering keeps dictionaries whose language matches any pattern.
	LangFiltering LanguageMatchMode = iota + 1
	// LangLookup orders dictionaries by the first pattern they match and keeps matches only.
	LangLookup
)

// LanguageMatch filters CmdDictionaryGetList by language tag patterns like "en-*-x-dict".
type LanguageMatch struct {
	Mode     LanguageMatchMode
	Patterns []string
}

// InsertString is the argument of CmdInputInsertString.
type InsertString struct {
	Text string
	// Length is the number of characters of Text to insert.
	Length int
}

// SeekMode of a cursor move.
type SeekMode int

const (
	SeekStart SeekMode = iota
	SeekRelative
	SeekEnd
)

// RemoveChars is the argument of CmdInputRemove.
type RemoveChars struct {
	BeforeCursor int
	AfterCursor  int
}

// CurrentWord is the snapshot of text around the cursor.
type CurrentWord struct {
	FixedPrefix string
	FixedSuffix string
}

// Suggestion is one candidate for the current word.
type Suggestion struct {
	ID   SuggestionID
	Text string
}

// SuggestionRequest is the argument of CmdSuggestionsGet. Tag zero means no filtering.
type SuggestionRequest struct {
	Tag uint32
}

// SuggestionReply is filled by CmdSuggestionsGet.
type SuggestionReply struct {
	Alloc
	Set         SuggestionSetID
	Suggestions []Suggestion
}

// InsertSuggestionRequest commits a suggestion from a previous fetch.
type InsertSuggestionRequest struct {
	SuggestionID SuggestionID
	Set          SuggestionSetID
	AppendSpace  bool
}

// InsertSuggestionReply is filled by CmdInputInsertSuggestion.
type InsertSuggestionReply struct {
	Alloc
	Inserted string
}

// LearnOptions is the learning option bit set.
type LearnOptions uint32

const (
	LearnEnabled LearnOptions = 1 << iota
	LearnAutoAdd
)
