package session

import (
	"fmt"
	"unicode/utf8"

	"github.com/bastiangx/wordbridge/pkg/engine"
)

// Reset clears the input buffer.
func (s *Session) Reset() error {
	defer s.dropSuggestions()
	return s.run(engine.CmdInputReset, nil, nil)
}

// InsertString inserts text at the cursor.
func (s *Session) InsertString(text string) error {
	defer s.dropSuggestions()
	in := &engine.InsertString{Text: text, Length: utf8.RuneCountInString(text)}
	return s.run(engine.CmdInputInsertString, in, nil)
}

// MoveCursor moves the cursor by amount relative to mode.
func (s *Session) MoveCursor(mode engine.SeekMode, amount int) error {
	defer s.dropSuggestions()
	return s.run(engine.CmdInputMoveCursor, mode, amount)
}

// Remove deletes characters before and after the cursor.
func (s *Session) Remove(before, after int) error {
	defer s.dropSuggestions()
	return s.run(engine.CmdInputRemove, &engine.RemoveChars{BeforeCursor: before, AfterCursor: after}, nil)
}

// InsertSuggestion commits the suggestion at index of the current set.
// An index outside the set is rejected before the engine is called and leaves the
// set untouched.
func (s *Session) InsertSuggestion(index int) error {
	if !s.created {
		return ErrNotCreated
	}
	if index < 0 || index >= len(s.cache.Suggestions) {
		return fmt.Errorf("%w: index %d, %d suggestions", ErrStaleSuggestion, index, len(s.cache.Suggestions))
	}
	defer s.dropSuggestions()

	req := &engine.InsertSuggestionRequest{
		SuggestionID: s.cache.Suggestions[index].ID,
		Set:          s.cache.Set,
	}
	var reply engine.InsertSuggestionReply
	err := s.run(engine.CmdInputInsertSuggestion, req, &reply)
	s.release(&reply)
	return err
}

// CurrentWord returns the text around the cursor.
func (s *Session) CurrentWord() (engine.CurrentWord, error) {
	var cw engine.CurrentWord
	if err := s.run(engine.CmdInputGetCurrentWord, &cw, nil); err != nil {
		return engine.CurrentWord{}, err
	}
	return cw, nil
}

// FetchSuggestions replaces the cached set with a fresh fetch. On failure the cache
// stays empty.
func (s *Session) FetchSuggestions() (SuggestionSet, error) {
	s.dropSuggestions()

	var reply engine.SuggestionReply
	if err := s.run(engine.CmdSuggestionsGet, &engine.SuggestionRequest{}, &reply); err != nil {
		if s.created {
			s.release(&reply)
		}
		return SuggestionSet{}, err
	}
	s.cache = reply
	return s.Suggestions(), nil
}

// Suggestions returns a copy of the cached set.
func (s *Session) Suggestions() SuggestionSet {
	return SuggestionSet{
		Tag:         s.cache.Set,
		Suggestions: append([]engine.Suggestion(nil), s.cache.Suggestions...),
	}
}

// LearningEnabled reads the learning flag.
func (s *Session) LearningEnabled() (bool, error) {
	var opts engine.LearnOptions
	if err := s.run(engine.CmdLearnGetOptions, &opts, nil); err != nil {
		return false, err
	}
	return opts&engine.LearnEnabled != 0, nil
}

// ConfigureLearning sets the learning flag, writing only when it differs.
func (s *Session) ConfigureLearning(enable bool) error {
	var opts engine.LearnOptions
	if err := s.run(engine.CmdLearnGetOptions, &opts, nil); err != nil {
		return err
	}
	if (opts&engine.LearnEnabled != 0) == enable {
		return nil
	}
	return s.run(engine.CmdLearnSetOptions, opts^engine.LearnEnabled, nil)
}
