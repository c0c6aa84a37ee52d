package lang

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ardnew/hocon/log"
)

// parse reads a HOCON (or JSON) document into its assignment stream.
// Include directives are expanded through lc as they are encountered, so
// the returned stream is self-contained.
func parse(ctx context.Context, text string, lc LoadContext) (Stream, error) {
	p := &parser{
		ctx:    ctx,
		lc:     lc,
		input:  []byte(text),
		line:   1,
		col:    1,
		logger: lc.cfg.logger,
	}

	s, err := p.parseDocument()
	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("assignments", len(s)),
		slog.Int("depth", lc.Depth),
	)

	return s, nil
}

// parser holds the parser state.
type parser struct {
	ctx    context.Context
	lc     LoadContext
	input  []byte
	pos    int
	line   int
	col    int
	logger log.Logger
}

// Every parse function returns a stream whose paths are relative to the
// value being parsed; callers nest it under the key that owns it.

// parseDocument parses the root: a braced or brace-less object, or an
// array.
func (p *parser) parseDocument() (Stream, error) {
	p.skipWhitespaceAndComments()

	var (
		s   Stream
		err error
	)

	switch p.peek() {
	case '[':
		var elems []Stream

		elems, err = p.parseArray()
		s = arrayStream(elems)
	case '{':
		s, err = p.parseObject()
	default:
		s, err = p.parseFields(0)
	}

	if err != nil {
		return nil, err
	}

	p.skipWhitespaceAndComments()

	if !p.eof() {
		return nil, p.errorf("unexpected %q after end of document", p.peek())
	}

	return s, nil
}

// parseObject parses: '{' Fields '}'.
func (p *parser) parseObject() (Stream, error) {
	if !p.expect('{') {
		return nil, p.errorf("expected '{'")
	}

	s, err := p.parseFields('}')
	if err != nil {
		return nil, err
	}

	if len(s) == 0 {
		s.Add(nil, EmptyObject())
	}

	return s, nil
}

// parseFields parses fields and include statements up to closing, which
// it consumes. A zero closing reads to the end of input.
func (p *parser) parseFields(closing rune) (Stream, error) {
	var s Stream

	for {
		p.skipSeparators()

		if p.eof() {
			if closing != 0 {
				return nil, p.errorf("expected %q", closing)
			}

			return s, nil
		}

		if closing != 0 && p.expect(closing) {
			return s, nil
		}

		var (
			fs  Stream
			err error
		)

		if p.atInclude() {
			fs, err = p.parseIncludeStatement()
		} else {
			fs, err = p.parseField()
		}

		if err != nil {
			return nil, err
		}

		s.Append(fs)

		if err := p.endOfEntry(closing); err != nil {
			return nil, err
		}
	}
}

// parseField parses: Key (':' | '=' | '+=') Value, or Key Object.
func (p *parser) parseField() (Stream, error) {
	key, err := p.parseKey()
	if err != nil {
		return nil, err
	}

	p.skipSpaces()

	appending := false

	switch {
	case p.peek() == '{':
	case p.peek() == ':' || p.peek() == '=':
		p.advance()
	case p.peekN(2) == "+=":
		p.advanceN(2)

		appending = true
	default:
		return nil, p.errorf("expected ':', '=', '+=', or '{' after key %s", key)
	}

	p.skipWhitespaceAndComments()

	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	if appending {
		return v.AppendTo(key, uuid.NewString()), nil
	}

	return v.Nest(key), nil
}

// parseKey parses a path expression made of quoted and unquoted pieces.
// Whitespace between pieces belongs to the key.
func (p *parser) parseKey() (Path, error) {
	var (
		path    Path
		seg     strings.Builder
		quoted  bool
		started bool
	)

	flush := func() error {
		if !started {
			return p.errorf("empty key segment")
		}

		if quoted {
			path = append(path, Key(seg.String()))
		} else {
			path = append(path, UnquotedKey(seg.String()))
		}

		seg.Reset()

		quoted, started = false, false

		return nil
	}

scan:
	for {
		c := p.peek()

		switch {
		case p.eof():
			break scan

		case c == '"':
			str, err := p.parseQuoted()
			if err != nil {
				return nil, err
			}

			seg.WriteString(str)

			quoted, started = true, true

		case c == '.':
			if err := flush(); err != nil {
				return nil, err
			}

			p.advance()

		case c == ' ' || c == '\t':
			ws := p.scanSpaces()
			if !started || !p.keyContinues() {
				break scan
			}

			seg.WriteString(ws)

		case isUnquotedChar(c) && !p.atComment():
			seg.WriteString(p.scanUnquoted(true))

			started = true

		default:
			break scan
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return path, nil
}

func (p *parser) keyContinues() bool {
	c := p.peek()

	return c == '"' || (isUnquotedChar(c) && c != '.' && !p.atComment())
}

// piece is one token of a value concatenation.
type piece struct {
	object Stream
	elems  []Stream
	raw    Raw
	kind   pieceKind
}

type pieceKind int

const (
	pieceScalar pieceKind = iota
	pieceSpace
	pieceObject
	pieceArray
)

// parseValue parses a value concatenation up to the end of its field or
// element.
func (p *parser) parseValue() (Stream, error) {
	if p.atInclude() {
		s, err := p.parseIncludeStatement()
		if err != nil {
			return nil, err
		}

		if len(s) == 0 {
			s.Add(nil, EmptyObject())
		}

		return s, nil
	}

	var pieces []piece

scan:
	for {
		c := p.peek()

		switch {
		case p.eof(), p.atNewline(), p.atComment(),
			c == ',', c == '}', c == ']':
			break scan

		case unicode.IsSpace(c):
			pieces = append(pieces, piece{
				kind: pieceSpace,
				raw:  Unquoted(p.scanSpaces()),
			})

		case c == '{':
			s, err := p.parseObject()
			if err != nil {
				return nil, err
			}

			pieces = append(pieces, piece{kind: pieceObject, object: s})

		case c == '[':
			elems, err := p.parseArray()
			if err != nil {
				return nil, err
			}

			pieces = append(pieces, piece{kind: pieceArray, elems: elems})

		case p.peekN(2) == "${":
			r, err := p.parseSubstitution()
			if err != nil {
				return nil, err
			}

			pieces = append(pieces, piece{raw: r})

		case c == '"':
			str, err := p.parseQuoted()
			if err != nil {
				return nil, err
			}

			pieces = append(pieces, piece{raw: Str(str)})

		case isUnquotedChar(c):
			pieces = append(pieces, piece{raw: Unquoted(p.scanUnquoted(false))})

		default:
			return nil, p.errorf("unexpected %q in value", c)
		}
	}

	return p.assemble(pieces)
}

// assemble turns the pieces of one value into its stream.
//
// Scalars and substitutions become a single concatenation. Objects are
// merged in order. The first array is the base and the elements of later
// arrays are appended to it; a substitution may only lead the sequence.
func (p *parser) assemble(pieces []piece) (Stream, error) {
	var (
		solid      []piece
		containers bool
	)

	for _, pc := range pieces {
		switch pc.kind {
		case pieceSpace:
			continue
		case pieceObject, pieceArray:
			containers = true
		}

		solid = append(solid, pc)
	}

	if len(solid) == 0 {
		return nil, p.errorf("expected value")
	}

	var s Stream

	if !containers {
		if len(solid) == 1 && solid[0].raw.Kind == RawUnquoted {
			s.Add(nil, literal(solid[0].raw.Str))

			return s, nil
		}

		items := make([]Raw, len(pieces))
		for i, pc := range pieces {
			items[i] = pc.raw
		}

		s.Add(nil, Concat(items...))

		return s, nil
	}

	var array, object bool

	for i, pc := range solid {
		switch pc.kind {
		case pieceObject:
			if array {
				return nil, p.errorf("cannot concatenate an object with an array")
			}

			object = true

			s.Append(pc.object)

		case pieceArray:
			if object {
				return nil, p.errorf("cannot concatenate an array with an object")
			}

			if i == 0 {
				s.Append(arrayStream(pc.elems))
			} else {
				for _, e := range pc.elems {
					s.Append(e.AppendTo(nil, uuid.NewString()))
				}
			}

			array = true

		default:
			if pc.raw.Kind != RawSubstitution {
				return nil, p.errorf("cannot concatenate %s with a container", pc.raw.Kind)
			}

			if array {
				return nil, p.errorf("a substitution cannot follow an array literal")
			}

			s.Add(nil, pc.raw)
		}
	}

	return s, nil
}

// arrayStream lays out parsed elements as an array. The leading empty
// array makes a reassignment replace, rather than merge into, an earlier
// array at the same path.
func arrayStream(elems []Stream) Stream {
	var s Stream

	s.Add(nil, EmptyArray())

	for i, e := range elems {
		s.Append(e.Element(int64(i)))
	}

	return s
}

// literal classifies a lone unquoted token.
func literal(text string) Raw {
	switch text {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "null":
		return Null()
	}

	if numeric(text) {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Int(i)
		}

		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return Real(f)
		}
	}

	return Unquoted(text)
}

func numeric(s string) bool {
	if s == "" || (s[0] != '-' && !isDigit(s[0])) {
		return false
	}

	for i := range len(s) {
		if !isDigit(s[i]) && !strings.ContainsRune(".-+eE", rune(s[i])) {
			return false
		}
	}

	return true
}

// parseArray parses: '[' (Value (Sep Value)* Sep?)? ']'.
func (p *parser) parseArray() ([]Stream, error) {
	if !p.expect('[') {
		return nil, p.errorf("expected '['")
	}

	var elems []Stream

	for {
		p.skipSeparators()

		if p.eof() {
			return nil, p.errorf("expected ']'")
		}

		if p.expect(']') {
			return elems, nil
		}

		e, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		elems = append(elems, e)

		if err := p.endOfEntry(']'); err != nil {
			return nil, err
		}
	}
}

// parseSubstitution parses: '${' '?'? Path '}'.
func (p *parser) parseSubstitution() (Raw, error) {
	p.advanceN(2)

	optional := p.expect('?')
	start := p.pos

	for !p.eof() && p.peek() != '}' {
		switch {
		case p.atNewline():
			return Raw{}, p.errorf("newline in substitution")
		case p.peek() == '"':
			if _, err := p.parseQuoted(); err != nil {
				return Raw{}, err
			}
		default:
			p.advance()
		}
	}

	end := p.pos

	if !p.expect('}') {
		return Raw{}, p.errorf("unterminated substitution")
	}

	target, err := ParsePath(strings.TrimSpace(string(p.input[start:end])))
	if err != nil {
		return Raw{}, ErrParseFailed.Wrap(err).With(p.where()...)
	}

	if optional {
		return OptionalSubst(target), nil
	}

	return Subst(target), nil
}

// parseQuoted parses a single- or triple-quoted string.
func (p *parser) parseQuoted() (string, error) {
	if p.peekN(3) == `"""` {
		return p.parseTripleQuoted()
	}

	if !p.expect('"') {
		return "", p.errorf("expected '\"'")
	}

	var sb strings.Builder

	for {
		if p.eof() {
			return "", p.errorf("unterminated string")
		}

		switch c := p.peek(); c {
		case '"':
			p.advance()

			return sb.String(), nil

		case '\n':
			return "", p.errorf("newline in quoted string")

		case '\\':
			p.advance()

			r, err := p.parseEscape()
			if err != nil {
				return "", err
			}

			sb.WriteRune(r)

		default:
			sb.WriteRune(c)
			p.advance()
		}
	}
}

func (p *parser) parseEscape() (rune, error) {
	if p.eof() {
		return 0, p.errorf("unterminated escape")
	}

	c := p.peek()
	p.advance()

	switch c {
	case '"', '\\', '/':
		return c, nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'u':
		r, err := p.parseHex4()
		if err != nil {
			return 0, err
		}

		if utf16.IsSurrogate(r) && p.peekN(2) == `\u` {
			p.advanceN(2)

			lo, err := p.parseHex4()
			if err != nil {
				return 0, err
			}

			return utf16.DecodeRune(r, lo), nil
		}

		return r, nil
	}

	return 0, p.errorf("invalid escape '\\%c'", c)
}

func (p *parser) parseHex4() (rune, error) {
	hex := p.peekN(4)

	n, err := strconv.ParseUint(hex, 16, 32)
	if len(hex) < 4 || err != nil {
		return 0, p.errorf("invalid unicode escape %q", hex)
	}

	p.advanceN(4)

	return rune(n), nil
}

// parseTripleQuoted parses a raw string delimited by '"""'. Quotes beyond
// the closing three belong to the string.
func (p *parser) parseTripleQuoted() (string, error) {
	p.advanceN(3)

	start := p.pos

	for !p.eof() {
		if p.peekN(3) == `"""` {
			for p.peekN(4) == `""""` {
				p.advance()
			}

			text := string(p.input[start:p.pos])
			p.advanceN(3)

			return text, nil
		}

		p.advance()
	}

	return "", p.errorf("unterminated triple-quoted string")
}

var includeForms = []struct {
	open string
	kind IncludeKind
}{
	{"file(", IncludeFile},
	{"url(", IncludeURL},
	{"classpath(", IncludeClasspath},
}

// atInclude reports whether the input continues with an include directive.
func (p *parser) atInclude() bool {
	const word = "include"

	if p.peekN(len(word)) != word {
		return false
	}

	rest := p.input[p.pos+len(word):]

	trimmed := bytes.TrimLeft(rest, " \t")
	if len(trimmed) == len(rest) || len(trimmed) == 0 {
		return false
	}

	if trimmed[0] == '"' || bytes.HasPrefix(trimmed, []byte("required(")) {
		return true
	}

	for _, form := range includeForms {
		if bytes.HasPrefix(trimmed, []byte(form.open)) {
			return true
		}
	}

	return false
}

// parseIncludeStatement parses an include directive and returns the
// stream of the included document.
func (p *parser) parseIncludeStatement() (Stream, error) {
	p.advanceN(len("include"))
	p.skipSpaces()

	var (
		inc Include
		err error
	)

	if p.peekN(len("required(")) == "required(" {
		p.advanceN(len("required("))
		p.skipSpaces()

		if inc, err = p.parseIncludeTarget(); err != nil {
			return nil, err
		}

		p.skipSpaces()

		if !p.expect(')') {
			return nil, p.errorf("expected ')' closing required(")
		}

		inc.Required = true
	} else if inc, err = p.parseIncludeTarget(); err != nil {
		return nil, err
	}

	return p.lc.include(p.ctx, inc, nil)
}

func (p *parser) parseIncludeTarget() (Include, error) {
	for _, form := range includeForms {
		if p.peekN(len(form.open)) != form.open {
			continue
		}

		p.advanceN(len(form.open))
		p.skipSpaces()

		target, err := p.parseQuoted()
		if err != nil {
			return Include{}, err
		}

		p.skipSpaces()

		if !p.expect(')') {
			return Include{}, p.errorf("expected ')' closing %s", form.open)
		}

		return Include{Target: target, Kind: form.kind}, nil
	}

	if p.peek() != '"' {
		return Include{}, p.errorf("expected quoted include target")
	}

	target, err := p.parseQuoted()
	if err != nil {
		return Include{}, err
	}

	inc := Include{Target: target, Kind: IncludeFile}

	if u, err := url.Parse(target); err == nil {
		switch u.Scheme {
		case "http", "https", "file":
			inc.Kind = IncludeURL
		}
	}

	return inc, nil
}

// endOfEntry consumes the rest of the line after a field or element and
// checks that a separator or the closing bracket follows.
func (p *parser) endOfEntry(closing rune) error {
	p.skipSpaces()

	if p.atComment() {
		p.skipLineComment()
	}

	if p.eof() || p.atNewline() || p.peek() == ',' ||
		(closing != 0 && p.peek() == closing) {
		return nil
	}

	return p.errorf("expected newline or ',' before %q", p.peek())
}

// isUnquotedChar reports whether c may appear in unquoted text.
func isUnquotedChar(c rune) bool {
	if c == 0 || unicode.IsSpace(c) {
		return false
	}

	return !strings.ContainsRune("$\"{}[]:=,+#`^?!@*&\\", c)
}

// scanUnquoted consumes a run of unquoted text. Keys also stop at '.'.
// A '+' is taken as the sign of a numeric exponent.
func (p *parser) scanUnquoted(key bool) string {
	start := p.pos

	for !p.eof() {
		c := p.peek()

		if c == '+' && !key && p.pos > start &&
			(p.input[p.pos-1] == 'e' || p.input[p.pos-1] == 'E') &&
			numeric(string(p.input[start:p.pos])) {
			p.advance()

			continue
		}

		if !isUnquotedChar(c) || p.atComment() || (key && c == '.') {
			break
		}

		p.advance()
	}

	return string(p.input[start:p.pos])
}

// Helper methods

func (p *parser) errorf(format string, args ...any) *Error {
	return ErrParseFailed.Wrap(fmt.Errorf(format, args...)).With(p.where()...)
}

func (p *parser) where() []slog.Attr {
	return []slog.Attr{
		slog.Int("line", p.line),
		slog.Int("column", p.col),
	}
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) advanceN(n int) {
	for range n {
		p.advance()
	}
}

func (p *parser) expect(ch rune) bool {
	if p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) atNewline() bool {
	return p.peek() == '\n' || p.peekN(2) == "\r\n"
}

func (p *parser) atComment() bool {
	return p.peek() == '#' || p.peekN(2) == "//"
}

// scanSpaces consumes whitespace up to the next newline.
func (p *parser) scanSpaces() string {
	start := p.pos

	for !p.eof() && !p.atNewline() && unicode.IsSpace(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos])
}

func (p *parser) skipSpaces() {
	p.scanSpaces()
}

func (p *parser) skipWhitespace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

func (p *parser) skipWhitespaceAndComments() {
	for {
		p.skipWhitespace()

		if !p.atComment() {
			return
		}

		p.skipLineComment()
	}
}

// skipSeparators skips whitespace, comments, and commas between entries.
func (p *parser) skipSeparators() {
	for {
		p.skipWhitespaceAndComments()

		if !p.expect(',') {
			return
		}
	}
}

func (p *parser) skipLineComment() {
	for !p.eof() && p.peek() != '\n' {
		p.advance()
	}
}
