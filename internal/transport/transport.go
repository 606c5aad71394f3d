// Package transport moves framed JSON-RPC messages between the server and a peer.
package transport

// file: internal/transport/transport.go

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/logging"
)

// MaxMessageSize is the largest frame accepted in either direction.
const MaxMessageSize = 1024 * 1024

// Transport sends and receives JSON-RPC messages. Implementations must allow
// one reader and many concurrent writers.
type Transport interface {
	// ReadMessage returns the next frame. Framing errors leave the transport usable.
	ReadMessage(ctx context.Context) ([]byte, error)
	// WriteMessage sends one frame.
	WriteMessage(ctx context.Context, message []byte) error
	// Close releases the underlying stream.
	Close() error
}

// ValidateMessage checks that message is a JSON object carrying jsonrpc "2.0".
// Everything beyond the envelope is left to the dispatcher.
func ValidateMessage(message []byte) error {
	var envelope struct {
		JSONRPC *string `json:"jsonrpc"`
	}
	trimmed := bytes.TrimSpace(message)
	if len(trimmed) == 0 {
		return NewParseError(message, io.ErrUnexpectedEOF)
	}
	if !json.Valid(trimmed) {
		return NewParseError(message, json.Unmarshal(trimmed, &envelope))
	}
	if trimmed[0] != '{' {
		return NewError(ErrInvalidMessage, "message must be a JSON object", nil).
			WithContext("messagePreview", preview(message))
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return NewError(ErrInvalidMessage, "malformed 'jsonrpc' field", err).
			WithContext("messagePreview", preview(message))
	}
	if envelope.JSONRPC == nil {
		return NewError(ErrInvalidMessage, "missing 'jsonrpc' field", nil).
			WithContext("messagePreview", preview(message))
	}
	if *envelope.JSONRPC != "2.0" {
		return NewError(ErrInvalidMessage, "unsupported JSON-RPC version", nil).
			WithContext("version", *envelope.JSONRPC).
			WithContext("messagePreview", preview(message))
	}
	return nil
}

// NDJSONTransport frames messages as newline-delimited JSON over a byte stream,
// typically the process's stdin and stdout.
type NDJSONTransport struct {
	reader    *bufio.Reader
	writer    io.Writer
	closer    io.Closer
	readLock  sync.Mutex
	writeLock sync.Mutex
	closeLock sync.RWMutex
	closed    bool
	logger    logging.Logger
}

// NewNDJSONTransport wraps r and w. closer may be nil.
func NewNDJSONTransport(r io.Reader, w io.Writer, closer io.Closer) *NDJSONTransport {
	return &NDJSONTransport{
		reader: bufio.NewReader(r),
		writer: w,
		closer: closer,
		logger: logging.GetLogger("ndjson_transport"),
	}
}

func (t *NDJSONTransport) isClosed() bool {
	t.closeLock.RLock()
	defer t.closeLock.RUnlock()
	return t.closed
}

type readResult struct {
	data []byte
	err  error
}

// ReadMessage reads one line. Blank lines are skipped. An oversized line is
// consumed entirely before the size error is returned, so the next read starts
// on a fresh frame.
func (t *NDJSONTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	if t.isClosed() {
		return nil, NewClosedError("read")
	}

	resultCh := make(chan readResult, 1)
	go func() {
		// A read abandoned by a cancelled context still owns the reader until its line arrives.
		t.readLock.Lock()
		defer t.readLock.Unlock()
		for {
			line, err := t.readLine()
			if err != nil {
				resultCh <- readResult{nil, err}
				return
			}
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			t.logger.Debug("Received raw message.", "size", len(line), "contentPreview", preview(line))
			resultCh <- readResult{line, ValidateMessage(line)}
			return
		}
	}()

	select {
	case <-ctx.Done():
		return nil, NewTimeoutError("read", ctx.Err())
	case result := <-resultCh:
		if result.err != nil && !IsFramingError(result.err) {
			t.logger.Debug("Read ended.", "error", result.err)
		}
		return result.data, result.err
	}
}

func (t *NDJSONTransport) readLine() ([]byte, error) {
	var buffer bytes.Buffer
	total := 0
	for {
		chunk, isPrefix, err := t.reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, NewError(ErrTransportClosed, "peer closed the stream", err)
			}
			return nil, NewError(ErrGeneric, "failed to read from stream", err)
		}
		total += len(chunk)
		if total <= MaxMessageSize {
			buffer.Write(chunk)
		}
		if !isPrefix {
			break
		}
	}
	if total > MaxMessageSize {
		return nil, NewMessageSizeError(total, MaxMessageSize, buffer.Bytes())
	}
	return buffer.Bytes(), nil
}

// WriteMessage writes message followed by a newline. Writes are serialized.
func (t *NDJSONTransport) WriteMessage(ctx context.Context, message []byte) error {
	if t.isClosed() {
		return NewClosedError("write")
	}
	if len(message) > MaxMessageSize {
		return NewMessageSizeError(len(message), MaxMessageSize, message)
	}
	if bytes.IndexByte(message, '\n') >= 0 {
		// Compact JSON never contains a raw newline; indented JSON must be compacted.
		var compacted bytes.Buffer
		if err := json.Compact(&compacted, message); err != nil {
			return NewParseError(message, err)
		}
		message = compacted.Bytes()
	}

	t.writeLock.Lock()
	defer t.writeLock.Unlock()

	if err := ctx.Err(); err != nil {
		return NewTimeoutError("write", err)
	}

	buf := make([]byte, len(message)+1)
	copy(buf, message)
	buf[len(message)] = '\n'

	t.logger.Debug("Writing message.", "size", len(buf), "contentPreview", preview(message))
	n, err := t.writer.Write(buf)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		t.logger.Error("Failed to write message.", "error", err)
		return NewError(ErrGeneric, "failed to write message", err)
	}
	return nil
}

// Close marks the transport closed and closes the underlying stream, if any.
func (t *NDJSONTransport) Close() error {
	t.closeLock.Lock()
	defer t.closeLock.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.logger.Info("Closing NDJSON transport.")
	if t.closer != nil {
		if err := t.closer.Close(); err != nil {
			return NewError(ErrTransportClosed, "failed to close underlying transport stream", err)
		}
	}
	return nil
}
