package engine

import "fmt"

// Command identifies an engine operation passed to RunCommand.
//
// Argument conventions, arg1 / arg2:
//
//	CmdPackageGetAvailable    *PackageList / nil
//	CmdPackageGetInstalled    *PackageList / nil
//	CmdPackageInstall         string (package name) / *PackageID
//	CmdPackageUninstall       PackageID / nil
//	CmdComponentGetAvailable  *ComponentList / nil
//	CmdComponentGetLoaded     *ComponentList / nil
//	CmdDictionaryGetList      *DictionaryList / *LanguageMatch (nil for no filtering)
//	CmdDictionarySetStates    []DictState / int (count)
//	CmdInputReset             nil / nil
//	CmdInputInsertString      *InsertString / nil
//	CmdInputMoveCursor        SeekMode / int
//	CmdInputRemove            *RemoveChars / nil
//	CmdInputInsertSuggestion  *InsertSuggestionRequest / *InsertSuggestionReply
//	CmdInputGetCurrentWord    *CurrentWord / nil
//	CmdSuggestionsGet         *SuggestionRequest / *SuggestionReply
//	CmdLearnGetOptions        *LearnOptions / nil
//	CmdLearnSetOptions        LearnOptions / nil
type Command uint16

const (
	CmdPackageGetAvailable Command = iota + 1
	CmdPackageGetInstalled
	CmdPackageInstall
	CmdPackageUninstall
	CmdComponentGetAvailable
	CmdComponentGetLoaded
	CmdDictionaryGetList
	CmdDictionarySetStates
	CmdInputReset
	CmdInputInsertString
	CmdInputMoveCursor
	CmdInputRemove
	CmdInputInsertSuggestion
	CmdInputGetCurrentWord
	CmdSuggestionsGet
	CmdLearnGetOptions
	CmdLearnSetOptions
)

var commandNames = map[Command]string{
	CmdPackageGetAvailable:   "PACKAGE_GETAVAILABLE",
	CmdPackageGetInstalled:   "PACKAGE_GETINSTALLED",
	CmdPackageInstall:        "PACKAGE_INSTALL",
	CmdPackageUninstall:      "PACKAGE_UNINSTALL",
	CmdComponentGetAvailable: "COMPONENT_GETAVAILABLE",
	CmdComponentGetLoaded:    "COMPONENT_GETLOADED",
	CmdDictionaryGetList:     "DICTIONARY_GETLIST",
	CmdDictionarySetStates:   "DICTIONARY_SETSTATES",
	CmdInputReset:            "INPUTMGR_RESET",
	CmdInputInsertString:     "INPUTMGR_INSERTSTRING",
	CmdInputMoveCursor:       "INPUTMGR_MOVECURSOR",
	CmdInputRemove:           "INPUTMGR_REMOVE",
	CmdInputInsertSuggestion: "INPUTMGR_INSERTSUGG",
	CmdInputGetCurrentWord:   "INPUTMGR_GETCURRWORD",
	CmdSuggestionsGet:        "SUGGS_GETSUGGESTIONS",
	CmdLearnGetOptions:       "LEARN_GETOPTIONS",
	CmdLearnSetOptions:       "LEARN_SETOPTIONS",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CMD_%d", uint16(c))
}
