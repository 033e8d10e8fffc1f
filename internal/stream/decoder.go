// Package stream decodes chat-completion event streams into assistant text.
//
// A Decoder is fed raw chunks in arrival order. Chunks may split lines or
// JSON payloads at any byte. Malformed events are dropped and never surface
// as errors. A Decoder is not safe for concurrent use.
package stream

import (
	"encoding/json"
	"strings"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

type lineKind int

const (
	lineSkipped lineKind = iota
	lineDone
	lineInvalid
	lineEmpty
	lineContent
)

// event is the subset of a chat-completion chunk the decoder reads
type event struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Decoder accumulates deltas for a single chat response
type Decoder struct {
	buf     string
	message strings.Builder
	done    bool
}

// NewDecoder creates a decoder for one chat session
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed consumes a chunk and returns the deltas completed by it
func (d *Decoder) Feed(chunk string) []string {
	if d.done {
		return nil
	}
	d.buf += chunk

	var deltas []string
	for {
		idx := strings.IndexByte(d.buf, '\n')
		if idx < 0 {
			break
		}
		line := d.buf[:idx]
		d.buf = d.buf[idx+1:]

		kind, content := decodeLine(line)
		switch kind {
		case lineDone:
			// Lines already buffered behind the sentinel are dropped.
			d.done = true
			d.buf = ""
			return deltas
		case lineContent:
			d.message.WriteString(content)
			deltas = append(deltas, content)
		}
	}
	return deltas
}

// Message returns the text accumulated so far
func (d *Decoder) Message() string {
	return d.message.String()
}

// Done reports whether the [DONE] sentinel has been seen
func (d *Decoder) Done() bool {
	return d.done
}

func decodeLine(raw string) (lineKind, string) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, ":") {
		return lineSkipped, ""
	}
	if !strings.HasPrefix(line, dataPrefix) {
		return lineSkipped, ""
	}
	payload := strings.TrimSpace(line[len(dataPrefix):])
	if payload == doneSentinel {
		return lineDone, ""
	}

	var ev event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return lineInvalid, ""
	}
	if len(ev.Choices) == 0 {
		return lineEmpty, ""
	}
	content := ev.Choices[0].Delta.Content
	if content == nil || *content == "" {
		return lineEmpty, ""
	}
	return lineContent, *content
}
