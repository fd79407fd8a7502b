/*
Package protocol defines the array protocol between the host and the bridge.

A request is a list of small integers (meta) and a list of strings (data):

	Meta[0]  request code
	Meta[1]  RequestGetSuggestions to chain a suggestion fetch, or an op flag
	Meta[2:] op-specific integers

A response is a code and a list of strings. Suggestion responses always lead with the
current word prefix and suffix, followed by zero or more suggestions:

	Code 0, Data ["hel", "", "hello", "help", "helmet"]

Codes are a fixed contract shared with hosts; the values below must never be
renumbered.

	code  request                  meta                      data
	10    RESET_INPUT              [10, chain]                -
	11    INSERT_STRING            [11, chain]                [text]
	12    MOVE_CURSOR              [12, chain, left, right]   -
	13    REMOVE_CHARS             [13, chain, back, delete]  -
	14    INSERT_SUGGESTION        [14, chain, index]         -
	15    CONFIGURE_LEARNING       [15, on]                   -
	16    SET_CURSOR               [16, chain, position]      -
	17    GET_SUGGESTIONS          [17]                       -
	18    INSTALL_PACKAGES         [18]                       -
	19    UNINSTALL_PACKAGES       [19]                       -
	20    SET_ACTIVE_DICTIONARIES  [20]                       [names csv]
*/
package protocol

import "fmt"

// RequestCode is Meta[0] of a request.
type RequestCode int

const (
	RequestResetInput            RequestCode = 10
	RequestInsertString          RequestCode = 11
	RequestMoveCursor            RequestCode = 12
	RequestRemoveChars           RequestCode = 13
	RequestInsertSuggestion      RequestCode = 14
	RequestConfigureLearning     RequestCode = 15
	RequestSetCursor             RequestCode = 16
	RequestGetSuggestions        RequestCode = 17
	RequestInstallPackages       RequestCode = 18
	RequestUninstallPackages     RequestCode = 19
	RequestSetActiveDictionaries RequestCode = 20
)

// ResponseCode is the status of a response.
type ResponseCode int

const (
	ResponseOK ResponseCode = 0

	ResponseErrorUnrecognisedMsgType   ResponseCode = 200
	ResponseErrorBufferOverflow        ResponseCode = 201
	ResponseErrorReset                 ResponseCode = 210
	ResponseErrorInsertString          ResponseCode = 211
	ResponseErrorMoveCursor            ResponseCode = 212
	ResponseErrorRemoveChars           ResponseCode = 213
	ResponseErrorInsertSuggestion      ResponseCode = 214
	ResponseErrorConfigureLearning     ResponseCode = 215
	ResponseErrorSetCursor             ResponseCode = 216
	ResponseErrorGetSuggestions        ResponseCode = 217
	ResponseErrorInstallPackages       ResponseCode = 218
	ResponseErrorUninstallPackages     ResponseCode = 219
	ResponseErrorSetActiveDictionaries ResponseCode = 220
)

// RequestNames maps request codes to names for logging.
var RequestNames = map[RequestCode]string{
	RequestResetInput:            "RESET_INPUT",
	RequestInsertString:          "INSERT_STRING",
	RequestMoveCursor:            "MOVE_CURSOR",
	RequestRemoveChars:           "REMOVE_CHARS",
	RequestInsertSuggestion:      "INSERT_SUGGESTION",
	RequestConfigureLearning:     "CONFIGURE_LEARNING",
	RequestSetCursor:             "SET_CURSOR",
	RequestGetSuggestions:        "GET_SUGGESTIONS",
	RequestInstallPackages:       "INSTALL_PACKAGES",
	RequestUninstallPackages:     "UNINSTALL_PACKAGES",
	RequestSetActiveDictionaries: "SET_ACTIVE_DICTIONARIES",
}

// ResponseNames maps response codes to names for logging.
var ResponseNames = map[ResponseCode]string{
	ResponseOK:                         "OK",
	ResponseErrorUnrecognisedMsgType:   "ERROR_UNRECOGNISED_MSG_TYPE",
	ResponseErrorBufferOverflow:        "ERROR_BUFFER_OVERFLOW",
	ResponseErrorReset:                 "ERROR_RESET",
	ResponseErrorInsertString:          "ERROR_INSERT_STRING",
	ResponseErrorMoveCursor:            "ERROR_MOVE_CURSOR",
	ResponseErrorRemoveChars:           "ERROR_REMOVE_CHARS",
	ResponseErrorInsertSuggestion:      "ERROR_INSERT_SUGGESTION",
	ResponseErrorConfigureLearning:     "ERROR_CONFIGURE_LEARNING",
	ResponseErrorSetCursor:             "ERROR_SET_CURSOR",
	ResponseErrorGetSuggestions:        "ERROR_GET_SUGGESTIONS",
	ResponseErrorInstallPackages:       "ERROR_INSTALL_PACKAGES",
	ResponseErrorUninstallPackages:     "ERROR_UNINSTALL_PACKAGES",
	ResponseErrorSetActiveDictionaries: "ERROR_SET_ACTIVE_DICTIONARIES",
}

func (c RequestCode) String() string {
	if name, ok := RequestNames[c]; ok {
		return name
	}
	return fmt.Sprintf("REQUEST_%d", int(c))
}

func (c ResponseCode) String() string {
	if name, ok := ResponseNames[c]; ok {
		return name
	}
	return fmt.Sprintf("RESPONSE_%d", int(c))
}

// OK reports whether c is the success code.
func (c ResponseCode) OK() bool { return c == ResponseOK }
