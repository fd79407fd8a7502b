/*
Package server carries protocol requests to a dispatcher over msgpack on stdin/stdout.

# IPC

The server operates on a request response model where clients send msgpack-encoded
requests via stdin and receive one response per request through stdout. Each message
carries an ID the response echoes.

A request is a map with the meta integers and data strings of the array protocol:

	{"id": "req_001", "m": [11, 17], "d": ["hel"]}

The response carries the code and data strings; suggestion responses lead with the
fixed prefix and suffix of the current word:

	{"id": "req_001", "c": 0, "d": ["hel", "", "hello", "help"]}

The first message the server writes is a ready map:

	{"status": "ready"}

Requests with more data strings than the configured limit, or a string longer than
the configured length, are answered with ERROR_BUFFER_OVERFLOW without reaching the
dispatcher. A message that does not decode as a request is answered with
ERROR_UNRECOGNISED_MSG_TYPE and an empty ID.

Messages are processed synchronously in arrival order.
*/
package server

import "github.com/bastiangx/wordbridge/pkg/protocol"

// Handler answers requests. dispatch.Dispatcher implements it.
type Handler interface {
	Dispatch(req protocol.Request) protocol.Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(req protocol.Request) protocol.Response

// Dispatch calls f.
func (f HandlerFunc) Dispatch(req protocol.Request) protocol.Response { return f(req) }

// StatusMessage is the ready signal sent before any response.
type StatusMessage struct {
	Status string `msgpack:"status"`
}

// StatusReady is the Status of the ready signal.
const StatusReady = "ready"
