package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/jsonkit/internal/errors" // Custom errors package
	"github.com/mcncl/jsonkit/internal/models"
)

const (
	// DefaultMaxInputBytes bounds the size of a single document.
	DefaultMaxInputBytes int64 = 10 << 20
	// DefaultMaxDepth bounds container nesting.
	DefaultMaxDepth = 1000
)

// Limits bounds the resources a single parse may use.
// A zero field disables that bound.
type Limits struct {
	MaxInputBytes int64
	MaxDepth      int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxInputBytes: DefaultMaxInputBytes,
		MaxDepth:      DefaultMaxDepth,
	}
}

// Parser turns JSON text into models.Value trees.
type Parser struct {
	limits Limits
}

// NewParser creates a Parser with the default limits.
func NewParser() *Parser {
	return &Parser{limits: DefaultLimits()}
}

// NewParserWithLimits creates a Parser with custom limits.
func NewParserWithLimits(limits Limits) *Parser {
	return &Parser{limits: limits}
}

// Limits returns the limits of p.
func (p *Parser) Limits() Limits {
	return p.limits
}

// Parse reads a single JSON document from reader.
func (p *Parser) Parse(reader io.Reader) (models.Value, error) {
	r := reader
	if p.limits.MaxInputBytes > 0 {
		r = io.LimitReader(reader, p.limits.MaxInputBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Value{}, errors.NewInputError("failed to read input", err)
	}
	return p.ParseBytes(data)
}

// ParseString parses JSON from a string
func (p *Parser) ParseString(jsonString string) (models.Value, error) {
	return p.ParseBytes([]byte(jsonString))
}

// ParseBytes parses a single JSON document held in data.
func (p *Parser) ParseBytes(data []byte) (models.Value, error) {
	if p.limits.MaxInputBytes > 0 && int64(len(data)) > p.limits.MaxInputBytes {
		return models.Value{}, errors.NewLimitError(
			fmt.Sprintf("input is larger than %d bytes", p.limits.MaxInputBytes),
			errors.ErrInputTooLarge,
		)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Value{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // keep number literals intact

	s := &scan{dec: decoder, data: data, maxDepth: p.limits.MaxDepth}
	if at := invalidUTF8(data); at >= 0 {
		return models.Value{}, errors.NewParsingErrorAt("invalid UTF-8 in input", s.position(int64(at)), errors.ErrInvalidJSON)
	}
	root, err := s.value(0)
	if err != nil {
		return models.Value{}, err
	}

	// Only whitespace may follow the root value.
	offset := decoder.InputOffset()
	if _, err := decoder.Token(); err == nil {
		return models.Value{}, errors.NewParsingErrorAt(
			"unexpected data after the top-level value",
			s.position(offset),
			errors.ErrMultipleJSON,
		)
	} else if !stderrors.Is(err, io.EOF) {
		return models.Value{}, s.fail(err)
	}

	// The decoder replaces unpaired surrogate escapes with U+FFFD.
	if at := loneSurrogate(data); at >= 0 {
		return models.Value{}, errors.NewParsingErrorAt(
			"unpaired UTF-16 surrogate in string escape",
			s.position(int64(at)),
			errors.ErrInvalidJSON,
		)
	}

	return root, nil
}

// invalidUTF8 returns the offset of the first byte that is not part of a
// valid UTF-8 sequence, or -1.
func invalidUTF8(data []byte) int {
	if utf8.Valid(data) {
		return -1
	}
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// loneSurrogate returns the offset of the first \uXXXX escape that encodes
// half of a surrogate pair without its other half, or -1. data must be
// well-formed JSON.
func loneSurrogate(data []byte) int {
	inString := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if !inString {
			inString = c == '"'
			continue
		}
		switch c {
		case '"':
			inString = false
		case '\\':
			if data[i+1] != 'u' {
				i++
				continue
			}
			r := hex4(data[i+2 : i+6])
			if !utf16.IsSurrogate(r) {
				i += 5
				continue
			}
			if r < 0xdc00 && i+11 < len(data) && data[i+6] == '\\' && data[i+7] == 'u' {
				if low := hex4(data[i+8 : i+12]); low >= 0xdc00 && low <= 0xdfff {
					i += 11
					continue
				}
			}
			return i
		}
	}
	return -1
}

func hex4(b []byte) rune {
	n, err := strconv.ParseUint(string(b), 16, 32)
	if err != nil {
		return utf8.RuneError
	}
	return rune(n)
}

// ParseFile parses JSON from a file path
func (p *Parser) ParseFile(filePath string) (models.Value, error) {
	data, err := ReadFile(filePath, p.limits.MaxInputBytes)
	if err != nil {
		return models.Value{}, err
	}
	return p.ParseBytes(data)
}

// ReadFile reads a JSON file, refusing empty files and files larger than
// maxBytes (when positive).
func ReadFile(filePath string, maxBytes int64) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrFileNotFound)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to open file '%s'", filePath), err)
	}
	defer func() {
		_ = file.Close()
	}()

	stat, err := file.Stat()
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to get file stats for '%s'", filePath), err)
	}
	if stat.Size() == 0 {
		return nil, errors.NewInputError(fmt.Sprintf("input file '%s' is empty", filePath), errors.ErrFileEmpty)
	}
	if maxBytes > 0 && stat.Size() > maxBytes {
		return nil, errors.NewLimitError(
			fmt.Sprintf("file '%s' is larger than %d bytes", filePath, maxBytes),
			errors.ErrInputTooLarge,
		)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to read file '%s'", filePath), err)
	}
	return data, nil
}

// Parse reads a JSON document from reader using the default limits.
func Parse(reader io.Reader) (models.Value, error) {
	return NewParser().Parse(reader)
}

// ParseString parses a JSON document from a string using the default limits.
func ParseString(jsonString string) (models.Value, error) {
	return NewParser().ParseString(jsonString)
}

// ParseFile parses a JSON file using the default limits.
func ParseFile(filePath string) (models.Value, error) {
	return NewParser().ParseFile(filePath)
}

// scan walks the decoder's token stream and builds the value tree.
// The decoder guarantees bracket matching and comma/colon placement; scan
// adds depth tracking and ordered object members.
type scan struct {
	dec      *json.Decoder
	data     []byte
	maxDepth int
}

func (s *scan) value(depth int) (models.Value, error) {
	start := s.dec.InputOffset()
	tok, err := s.dec.Token()
	if err != nil {
		return models.Value{}, s.fail(err)
	}

	switch t := tok.(type) {
	case json.Delim:
		if s.maxDepth > 0 && depth+1 > s.maxDepth {
			return models.Value{}, errors.NewLimitError(
				fmt.Sprintf("nesting deeper than %d levels at %s", s.maxDepth, s.position(start)),
				errors.ErrDepthExceeded,
			)
		}
		switch t {
		case '[':
			return s.array(depth + 1)
		case '{':
			return s.object(depth + 1)
		}
		// Closing delimiters never reach here: Token reports them as syntax
		// errors when no value is allowed.
		return models.Value{}, errors.NewParsingErrorAt(
			fmt.Sprintf("unexpected delimiter %q", rune(t)),
			s.position(start),
			errors.ErrInvalidJSON,
		)
	case nil:
		return models.Null(), nil
	case bool:
		return models.Bool(t), nil
	case json.Number:
		return models.Number(string(t)), nil
	case string:
		return models.String(t), nil
	default:
		return models.Value{}, errors.NewParsingErrorAt(
			fmt.Sprintf("unexpected token of type %T", t),
			s.position(start),
			errors.ErrInvalidJSON,
		)
	}
}

func (s *scan) array(depth int) (models.Value, error) {
	var items []models.Value
	for s.dec.More() {
		item, err := s.value(depth)
		if err != nil {
			return models.Value{}, err
		}
		items = append(items, item)
	}
	if err := s.closing(); err != nil {
		return models.Value{}, err
	}
	return models.Array(items...), nil
}

func (s *scan) object(depth int) (models.Value, error) {
	var members []models.Member
	for s.dec.More() {
		start := s.dec.InputOffset()
		tok, err := s.dec.Token()
		if err != nil {
			return models.Value{}, s.fail(err)
		}
		key, ok := tok.(string)
		if !ok {
			return models.Value{}, errors.NewParsingErrorAt(
				"object key must be a string",
				s.position(start),
				errors.ErrInvalidJSON,
			)
		}
		val, err := s.value(depth)
		if err != nil {
			return models.Value{}, err
		}
		members = append(members, models.Member{Key: key, Value: val})
	}
	if err := s.closing(); err != nil {
		return models.Value{}, err
	}
	return models.Object(members...), nil
}

// closing consumes the delimiter that ends the current container.
func (s *scan) closing() error {
	if _, err := s.dec.Token(); err != nil {
		return s.fail(err)
	}
	return nil
}

// fail converts a decoder error into a parsing error with a position.
func (s *scan) fail(err error) error {
	offset := s.dec.InputOffset()
	if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingErrorAt(
			"unexpected end of JSON input",
			s.position(int64(len(s.data))),
			errors.ErrUnexpectedEnd,
		)
	}
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingErrorAt(syntaxError.Error(), s.position(offset), errors.ErrInvalidJSON)
	}
	return errors.NewParsingErrorAt("failed to decode JSON", s.position(offset), err)
}

// position converts a byte offset into a line and column.
func (s *scan) position(offset int64) models.Position {
	if offset > int64(len(s.data)) {
		offset = int64(len(s.data))
	}
	prefix := s.data[:offset]
	line := bytes.Count(prefix, []byte{'\n'}) + 1
	lineStart := bytes.LastIndexByte(prefix, '\n') + 1
	return models.Position{
		Offset: offset,
		Line:   line,
		Column: utf8.RuneCount(prefix[lineStart:]) + 1,
	}
}
