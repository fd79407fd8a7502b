package protocol

// Request is one host call. ID is echoed back so clients can match responses.
type Request struct {
	ID   string   `msgpack:"id"`
	Meta []int    `msgpack:"m"`
	Data []string `msgpack:"d"`
}

// Response answers one Request.
type Response struct {
	ID   string       `msgpack:"id"`
	Code ResponseCode `msgpack:"c"`
	Data []string     `msgpack:"d"`
}

// Code returns Meta[0], or 0 for a request without meta.
func (r Request) Code() RequestCode {
	if len(r.Meta) == 0 {
		return 0
	}
	return RequestCode(r.Meta[0])
}

// Chained reports whether the request asks for a suggestion fetch after the op.
func (r Request) Chained() bool {
	return len(r.Meta) > 1 && RequestCode(r.Meta[1]) == RequestGetSuggestions
}

// MetaAt returns Meta[i] and whether it is present.
func (r Request) MetaAt(i int) (int, bool) {
	if i < 0 || i >= len(r.Meta) {
		return 0, false
	}
	return r.Meta[i], true
}

func chainFlag(chain bool) int {
	if chain {
		return int(RequestGetSuggestions)
	}
	return 0
}

func request(code RequestCode, chain bool, args ...int) Request {
	meta := append([]int{int(code), chainFlag(chain)}, args...)
	return Request{Meta: meta, Data: []string{}}
}

// Reset builds a RESET_INPUT request.
func Reset(chain bool) Request {
	return request(RequestResetInput, chain)
}

// InsertString builds an INSERT_STRING request.
func InsertString(text string, chain bool) Request {
	req := request(RequestInsertString, chain)
	req.Data = []string{text}
	return req
}

// Move builds a MOVE_CURSOR request; the cursor moves right-left characters.
func Move(left, right int, chain bool) Request {
	return request(RequestMoveCursor, chain, left, right)
}

// Left moves the cursor n characters left and fetches suggestions.
func Left(n int) Request { return Move(n, 0, true) }

// Right moves the cursor n characters right and fetches suggestions.
func Right(n int) Request { return Move(0, n, true) }

// Remove builds a REMOVE_CHARS request.
func Remove(before, after int, chain bool) Request {
	return request(RequestRemoveChars, chain, before, after)
}

// Backspace removes n characters before the cursor and fetches suggestions.
func Backspace(n int) Request { return Remove(n, 0, true) }

// Delete removes n characters after the cursor and fetches suggestions.
func Delete(n int) Request { return Remove(0, n, true) }

// InsertSuggestion builds an INSERT_SUGGESTION request for the index-th suggestion.
func InsertSuggestion(index int, chain bool) Request {
	return request(RequestInsertSuggestion, chain, index)
}

// ConfigureLearning builds a CONFIGURE_LEARNING request.
func ConfigureLearning(on bool) Request {
	flag := 0
	if on {
		flag = 1
	}
	return Request{Meta: []int{int(RequestConfigureLearning), flag}, Data: []string{}}
}

// SetCursor builds a SET_CURSOR request to an absolute position.
func SetCursor(pos int, chain bool) Request {
	return request(RequestSetCursor, chain, pos)
}

// GetSuggestions builds a GET_SUGGESTIONS request.
func GetSuggestions() Request {
	return Request{Meta: []int{int(RequestGetSuggestions)}, Data: []string{}}
}

// InstallPackages builds an INSTALL_PACKAGES request.
func InstallPackages() Request {
	return Request{Meta: []int{int(RequestInstallPackages)}, Data: []string{}}
}

// UninstallPackages builds an UNINSTALL_PACKAGES request.
func UninstallPackages() Request {
	return Request{Meta: []int{int(RequestUninstallPackages)}, Data: []string{}}
}

// SetActiveDictionaries builds a SET_ACTIVE_DICTIONARIES request for a comma list.
func SetActiveDictionaries(names string) Request {
	return Request{Meta: []int{int(RequestSetActiveDictionaries)}, Data: []string{names}}
}

// SuggestionData splits a suggestion response into its fixed prefix, fixed suffix
// and suggestion texts. Missing entries read as empty.
func SuggestionData(data []string) (prefix, suffix string, suggestions []string) {
	if len(data) > 0 {
		prefix = data[0]
	}
	if len(data) > 1 {
		suffix = data[1]
		suggestions = data[2:]
	}
	return prefix, suffix, suggestions
}
