package conversation

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize is the maximum size of a single JSONL line (1MB).
const maxLineSize = 1024 * 1024

// ParseResult holds parsed messages plus counts of skipped input.
type ParseResult struct {
	Messages []Message
	// Skipped counts lines or entries that could not be parsed or had
	// an empty content field. Malformed input is tolerated, not fatal.
	Skipped int
}

// ParseFile reads a conversation from path. Files beginning with '[' are
// parsed as a JSON array of messages; anything else is treated as JSONL
// with one message object per line.
func ParseFile(path string) (*ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse reads a conversation from r in JSON-array or JSONL form.
func Parse(r io.Reader) (*ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return parseArray(trimmed)
	}
	return parseLines(data)
}

// parseArray parses a JSON array of messages.
func parseArray(data []byte) (*ParseResult, error) {
	var raw []Message
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse conversation array: %w", err)
	}

	result := &ParseResult{}
	for _, m := range raw {
		if !keep(m) {
			result.Skipped++
			continue
		}
		result.Messages = append(result.Messages, m)
	}
	return result, nil
}

// parseLines parses JSONL, skipping lines that fail to unmarshal.
func parseLines(data []byte) (*ParseResult, error) {
	result := &ParseResult{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var m Message
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			result.Skipped++
			continue
		}
		if !keep(m) {
			result.Skipped++
			continue
		}
		result.Messages = append(result.Messages, m)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}
	return result, nil
}

// keep reports whether a parsed entry is a usable conversation turn.
func keep(m Message) bool {
	if m.Content == "" {
		return false
	}
	return m.Role == RoleUser || m.Role == RoleAssistant
}
