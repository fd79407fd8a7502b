package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/bastiangx/wordbridge/pkg/config"
	"github.com/bastiangx/wordbridge/pkg/protocol"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for one dispatcher
type Server struct {
	handler Handler
	limits  config.ServerConfig
	writer  *bufio.Writer
	logger  *log.Logger

	dec *msgpack.Decoder
	enc *msgpack.Encoder

	requests int
}

// NewServer creates a server using stdin/stdout for IPC
func NewServer(handler Handler, limits config.ServerConfig, logger *log.Logger) *Server {
	return NewServerWithIO(handler, limits, os.Stdin, os.Stdout, logger)
}

// NewServerWithIO creates a server over the given streams.
func NewServerWithIO(handler Handler, limits config.ServerConfig, r io.Reader, w io.Writer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	bw := bufio.NewWriter(w)
	return &Server{
		handler: handler,
		limits:  limits,
		writer:  bw,
		logger:  logger,
		dec:     msgpack.NewDecoder(bufio.NewReader(r)),
		enc:     msgpack.NewEncoder(bw),
	}
}

// Start sends the ready signal and serves requests until the input ends.
// A clean end of input returns nil.
func (s *Server) Start() error {
	s.logger.Debug("Starting Server.")

	if err := s.send(StatusMessage{Status: StatusReady}); err != nil {
		return fmt.Errorf("failed to send ready signal: %w", err)
	}

	for {
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debugf("Input closed after %d requests", s.requests)
				return nil
			}
			s.logger.Errorf("Reading from stdin: %v", err)
			return err
		}
		s.requests++
		if err := s.send(s.handle(raw)); err != nil {
			return fmt.Errorf("failed to send response: %w", err)
		}
	}
}

// handle decodes one message and answers it.
func (s *Server) handle(raw msgpack.RawMessage) protocol.Response {
	var req protocol.Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.logger.Warnf("Unmarshaling request: %v", err)
		return protocol.Response{Code: protocol.ResponseErrorUnrecognisedMsgType, Data: []string{}}
	}
	if err := s.checkLimits(req); err != nil {
		s.logger.Warnf("Rejected request %s: %v", req.ID, err)
		return protocol.Response{ID: req.ID, Code: protocol.ResponseErrorBufferOverflow, Data: []string{}}
	}
	return s.handler.Dispatch(req)
}

// checkLimits applies the configured bounds; a zero bound is unlimited.
func (s *Server) checkLimits(req protocol.Request) error {
	if max := s.limits.MaxRequestStrings; max > 0 && len(req.Data) > max {
		return fmt.Errorf("%d data strings, limit %d", len(req.Data), max)
	}
	if max := s.limits.MaxStringLength; max > 0 {
		for i, d := range req.Data {
			if n := utf8.RuneCountInString(d); n > max {
				return fmt.Errorf("data string %d has %d characters, limit %d", i, n, max)
			}
		}
	}
	return nil
}

// send encodes v and flushes it to the client.
func (s *Server) send(v any) error {
	if err := s.enc.Encode(v); err != nil {
		s.logger.Errorf("Marshaling response: %v", err)
		return err
	}
	return s.writer.Flush()
}

// Requests is the number of messages read so far.
func (s *Server) Requests() int { return s.requests }
