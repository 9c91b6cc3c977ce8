package document

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
)

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenName
	tokenString
	tokenArray
	tokenDict
	tokenOther
)

// contentToken is one operand of a content-stream operator.
type contentToken struct {
	kind  tokenKind
	num   float64
	str   []byte // decoded bytes of a string operand
	items []contentToken
	raw   []byte // source bytes, used when the token is written back
}

// contentOp is one operator with its operands. start and end delimit the
// whole operation, operands included, in the source stream.
type contentOp struct {
	operator   string
	operands   []contentToken
	start, end int
}

type contentLexer struct {
	data []byte
	pos  int
}

func isContentSpace(c byte) bool {
	return c == 0 || c == '\t' || c == '\n' || c == '\f' || c == '\r' || c == ' '
}

func isContentDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *contentLexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		if !isContentSpace(c) {
			return
		}
		l.pos++
	}
}

func (l *contentLexer) regular() []byte {
	start := l.pos
	for l.pos < len(l.data) && !isContentSpace(l.data[l.pos]) && !isContentDelim(l.data[l.pos]) {
		l.pos++
	}
	return l.data[start:l.pos]
}

// next returns either an operand or, when keyword is non-empty, an operator.
// ok is false at the end of the stream.
func (l *contentLexer) next() (tok contentToken, keyword string, ok bool, err error) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return tok, "", false, nil
	}
	start := l.pos
	c := l.data[l.pos]

	switch {
	case c == '(':
		tok, err = l.literalString()
	case c == '<' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '<':
		tok, err = l.dict()
	case c == '<':
		tok, err = l.hexString()
	case c == '[':
		tok, err = l.array()
	case c == '/':
		l.pos++
		tok = contentToken{kind: tokenName, str: l.regular()}
	case c == ')' || c == '>' || c == ']':
		return tok, "", false, fmt.Errorf("unexpected %q at offset %d", c, l.pos)
	case c == '{' || c == '}':
		l.pos++
		tok = contentToken{kind: tokenOther}
	default:
		word := l.regular()
		if len(word) == 0 {
			return tok, "", false, fmt.Errorf("unexpected %q at offset %d", c, l.pos)
		}
		if n, perr := strconv.ParseFloat(string(word), 64); perr == nil {
			tok = contentToken{kind: tokenNumber, num: n}
		} else {
			switch string(word) {
			case "true", "false", "null":
				tok = contentToken{kind: tokenOther}
			default:
				return tok, string(word), true, nil
			}
		}
	}
	if err != nil {
		return tok, "", false, err
	}
	tok.raw = l.data[start:l.pos]
	return tok, "", true, nil
}

func (l *contentLexer) literalString() (contentToken, error) {
	l.pos++ // (
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return contentToken{kind: tokenString, str: out}, nil
			}
		case '\\':
			if l.pos >= len(l.data) {
				return contentToken{}, errors.New("unterminated string")
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						v = v*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
			continue
		}
		out = append(out, c)
	}
	return contentToken{}, errors.New("unterminated string")
}

func (l *contentLexer) hexString() (contentToken, error) {
	l.pos++ // <
	var digits []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			out := make([]byte, len(digits)/2)
			for i := range out {
				v, err := strconv.ParseUint(string(digits[2*i:2*i+2]), 16, 8)
				if err != nil {
					return contentToken{}, fmt.Errorf("bad hex string: %w", err)
				}
				out[i] = byte(v)
			}
			return contentToken{kind: tokenString, str: out}, nil
		}
		if !isContentSpace(c) {
			digits = append(digits, c)
		}
	}
	return contentToken{}, errors.New("unterminated hex string")
}

func (l *contentLexer) array() (contentToken, error) {
	l.pos++ // [
	tok := contentToken{kind: tokenArray}
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return contentToken{}, errors.New("unterminated array")
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return tok, nil
		}
		item, keyword, ok, err := l.next()
		if err != nil {
			return contentToken{}, err
		}
		if !ok {
			return contentToken{}, errors.New("unterminated array")
		}
		if keyword != "" {
			item = contentToken{kind: tokenOther, raw: []byte(keyword)}
		}
		tok.items = append(tok.items, item)
	}
}

func (l *contentLexer) dict() (contentToken, error) {
	l.pos += 2 // <<
	for {
		l.skipSpace()
		if l.pos+1 < len(l.data) && l.data[l.pos] == '>' && l.data[l.pos+1] == '>' {
			l.pos += 2
			return contentToken{kind: tokenDict}, nil
		}
		_, _, ok, err := l.next()
		if err != nil {
			return contentToken{}, err
		}
		if !ok {
			return contentToken{}, errors.New("unterminated dictionary")
		}
	}
}

// inlineImage skips the data of an inline image, positioned just after the
// ID operator, up to and including the closing EI.
func (l *contentLexer) inlineImage() error {
	if l.pos < len(l.data) && isContentSpace(l.data[l.pos]) {
		l.pos++
	}
	for i := l.pos; i+1 < len(l.data); i++ {
		if l.data[i] != 'E' || l.data[i+1] != 'I' {
			continue
		}
		if i > 0 && !isContentSpace(l.data[i-1]) {
			continue
		}
		if i+2 < len(l.data) && !isContentSpace(l.data[i+2]) && !isContentDelim(l.data[i+2]) {
			continue
		}
		l.pos = i + 2
		return nil
	}
	return errors.New("unterminated inline image")
}

// parseContent splits a decoded content stream into operations. An inline
// image is returned as a single BI operation spanning through EI.
func parseContent(data []byte) ([]contentOp, error) {
	l := &contentLexer{data: data}
	var ops []contentOp
	var operands []contentToken
	start := -1
	for {
		l.skipSpace()
		if start < 0 {
			start = l.pos
		}
		tok, keyword, ok, err := l.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if keyword == "" {
			operands = append(operands, tok)
			continue
		}
		if keyword == "BI" {
			if err := l.skipInlineDict(); err != nil {
				return nil, err
			}
			if err := l.inlineImage(); err != nil {
				return nil, err
			}
		}
		ops = append(ops, contentOp{operator: keyword, operands: operands, start: start, end: l.pos})
		operands = nil
		start = -1
	}
	return ops, nil
}

// skipInlineDict consumes the key/value pairs of an inline image through
// the ID operator.
func (l *contentLexer) skipInlineDict() error {
	for {
		_, keyword, ok, err := l.next()
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("inline image without ID")
		}
		if keyword == "ID" {
			return nil
		}
	}
}

// matrix is a PDF transformation matrix [a b c d e f].
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// mul returns m followed by n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

func translate(tx, ty float64) matrix {
	return matrix{1, 0, 0, 1, tx, ty}
}

// bounds accumulates the bounding box of a set of points.
type bounds struct {
	Rect
	set bool
}

func (b *bounds) add(x, y float64) {
	if !b.set {
		b.Rect = Rect{X0: x, Y0: y, X1: x, Y1: y}
		b.set = true
		return
	}
	b.X0 = math.Min(b.X0, x)
	b.Y0 = math.Min(b.Y0, y)
	b.X1 = math.Max(b.X1, x)
	b.Y1 = math.Max(b.Y1, y)
}

// addBox adds the corners of the box (x0,y0)-(x1,y1) mapped through m.
func (b *bounds) addBox(m matrix, x0, y0, x1, y1 float64) {
	for _, p := range [4][2]float64{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
		b.add(m.apply(p[0], p[1]))
	}
}

// fontMetrics holds the glyph widths of one font, in thousandths of a unit
// of text space.
type fontMetrics struct {
	firstChar int
	widths    []float64
	missing   float64
	composite bool
}

// defaultGlyphWidth is used for fonts that carry no width table, such as the
// standard 14.
const defaultGlyphWidth = 600

func (f *fontMetrics) width(code int) float64 {
	if f == nil {
		return defaultGlyphWidth
	}
	if i := code - f.firstChar; i >= 0 && i < len(f.widths) && f.widths[i] > 0 {
		return f.widths[i]
	}
	if f.missing > 0 {
		return f.missing
	}
	return defaultGlyphWidth
}

// codes splits a shown string into character codes.
func (f *fontMetrics) codes(s []byte) []int {
	if f != nil && f.composite {
		out := make([]int, 0, len(s)/2)
		for i := 0; i+1 < len(s); i += 2 {
			out = append(out, int(s[i])<<8|int(s[i+1]))
		}
		return out
	}
	out := make([]int, len(s))
	for i, c := range s {
		out[i] = int(c)
	}
	return out
}

type graphicsState struct {
	ctm       matrix
	font      *fontMetrics
	size      float64
	charSpace float64
	wordSpace float64
	scale     float64
	leading   float64
	rise      float64
}

// containTolerance widens redaction rects when testing whether a drawing lies
// inside one, absorbing rounding between render pixels and page units.
const containTolerance = 1.0

type contentRedactor struct {
	rects []Rect
	fonts map[string]*fontMetrics

	state graphicsState
	stack []graphicsState
	tm    matrix
	tlm   matrix

	drop    []bool
	replace map[int][]byte

	pathStart int
	path      bounds
	clip      bool
}

// redactContent returns content with every operation that draws inside rects
// removed.
//
// Rects are in the content's user space. Text is removed when a shown run
// touches a rect; the run is replaced with an equal horizontal advance so
// text after it on the same line stays in place. Paths, images and form
// XObjects are removed only when they lie entirely inside a rect, so a large
// background drawing under a marker survives. Clipping paths and shadings are
// kept.
func redactContent(content []byte, rects []Rect, fonts map[string]*fontMetrics) ([]byte, error) {
	ops, err := parseContent(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content stream: %w", err)
	}

	r := &contentRedactor{
		rects:     rects,
		fonts:     fonts,
		state:     graphicsState{ctm: identity, scale: 1},
		tm:        identity,
		tlm:       identity,
		drop:      make([]bool, len(ops)),
		replace:   make(map[int][]byte),
		pathStart: -1,
	}
	for i := range ops {
		r.step(i, ops[i])
	}

	var out bytes.Buffer
	for i, op := range ops {
		if rep, ok := r.replace[i]; ok {
			out.Write(rep)
			out.WriteByte('\n')
			continue
		}
		if r.drop[i] {
			continue
		}
		out.Write(content[op.start:op.end])
		out.WriteByte('\n')
	}
	return out.Bytes(), nil
}

func numbers(operands []contentToken, n int) ([]float64, bool) {
	if len(operands) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i, tok := range operands[len(operands)-n:] {
		if tok.kind != tokenNumber {
			return nil, false
		}
		out[i] = tok.num
	}
	return out, true
}

func (r *contentRedactor) step(i int, op contentOp) {
	st := &r.state
	switch op.operator {
	case "q":
		r.stack = append(r.stack, r.state)
	case "Q":
		if n := len(r.stack); n > 0 {
			r.state = r.stack[n-1]
			r.stack = r.stack[:n-1]
		}
	case "cm":
		if v, ok := numbers(op.operands, 6); ok {
			st.ctm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}.mul(st.ctm)
		}

	case "m", "l", "c", "v", "y", "re", "h":
		r.buildPath(i, op)
	case "W", "W*":
		r.clip = true
	case "S", "s", "f", "F", "f*", "B", "B*", "b", "b*", "n":
		r.paintPath(i, op.operator)

	case "Do", "BI":
		var b bounds
		b.addBox(st.ctm, 0, 0, 1, 1)
		if r.contained(b.Rect) {
			r.drop[i] = true
		}

	case "BT":
		r.tm, r.tlm = identity, identity
	case "Tf":
		if len(op.operands) >= 2 && op.operands[len(op.operands)-2].kind == tokenName {
			st.font = r.fonts[string(op.operands[len(op.operands)-2].str)]
		}
		if v, ok := numbers(op.operands, 1); ok {
			st.size = v[0]
		}
	case "Tc":
		if v, ok := numbers(op.operands, 1); ok {
			st.charSpace = v[0]
		}
	case "Tw":
		if v, ok := numbers(op.operands, 1); ok {
			st.wordSpace = v[0]
		}
	case "Tz":
		if v, ok := numbers(op.operands, 1); ok {
			st.scale = v[0] / 100
		}
	case "TL":
		if v, ok := numbers(op.operands, 1); ok {
			st.leading = v[0]
		}
	case "Ts":
		if v, ok := numbers(op.operands, 1); ok {
			st.rise = v[0]
		}
	case "Td", "TD":
		if v, ok := numbers(op.operands, 2); ok {
			if op.operator == "TD" {
				st.leading = -v[1]
			}
			r.moveLine(v[0], v[1])
		}
	case "Tm":
		if v, ok := numbers(op.operands, 6); ok {
			r.tlm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}
			r.tm = r.tlm
		}
	case "T*":
		r.moveLine(0, -st.leading)

	case "Tj":
		if s, ok := lastString(op.operands); ok {
			if adv, hit := r.show(s); hit {
				r.replace[i] = r.spacer(adv)
			}
		}
	case "'":
		r.moveLine(0, -st.leading)
		if s, ok := lastString(op.operands); ok {
			if adv, hit := r.show(s); hit {
				r.replace[i] = append([]byte("T* "), r.spacer(adv)...)
			}
		}
	case "\"":
		v, ok := numbers(op.operands[:max(len(op.operands)-1, 0)], 2)
		if ok {
			st.wordSpace, st.charSpace = v[0], v[1]
		}
		r.moveLine(0, -st.leading)
		if s, ok2 := lastString(op.operands); ok2 {
			if adv, hit := r.show(s); hit {
				rep := "T* "
				if ok {
					rep = fmt.Sprintf("%s Tw %s Tc T* ", formatNumber(v[0]), formatNumber(v[1]))
				}
				r.replace[i] = append([]byte(rep), r.spacer(adv)...)
			}
		}
	case "TJ":
		if len(op.operands) > 0 && op.operands[len(op.operands)-1].kind == tokenArray {
			r.showArray(i, op.operands[len(op.operands)-1])
		}
	}
}

func lastString(operands []contentToken) ([]byte, bool) {
	if len(operands) == 0 || operands[len(operands)-1].kind != tokenString {
		return nil, false
	}
	return operands[len(operands)-1].str, true
}

func (r *contentRedactor) buildPath(i int, op contentOp) {
	if r.pathStart < 0 {
		r.pathStart = i
		r.path = bounds{}
		r.clip = false
	}
	ctm := r.state.ctm
	var n int
	switch op.operator {
	case "m", "l":
		n = 2
	case "c":
		n = 6
	case "v", "y":
		n = 4
	case "re":
		if v, ok := numbers(op.operands, 4); ok {
			r.path.addBox(ctm, v[0], v[1], v[0]+v[2], v[1]+v[3])
		}
		return
	default:
		return
	}
	if v, ok := numbers(op.operands, n); ok {
		for j := 0; j+1 < n; j += 2 {
			r.path.add(ctm.apply(v[j], v[j+1]))
		}
	}
}

func (r *contentRedactor) paintPath(i int, operator string) {
	start := r.pathStart
	r.pathStart = -1
	if start < 0 || r.clip || operator == "n" || !r.path.set {
		return
	}
	if r.contained(r.path.Rect) {
		for j := start; j <= i; j++ {
			r.drop[j] = true
		}
	}
}

func (r *contentRedactor) moveLine(tx, ty float64) {
	r.tlm = translate(tx, ty).mul(r.tlm)
	r.tm = r.tlm
}

// show advances the text matrix over s and reports the advance and whether
// the run touches a redaction rect.
func (r *contentRedactor) show(s []byte) (float64, bool) {
	st := &r.state
	advance := 0.0
	for _, code := range st.font.codes(s) {
		w := st.font.width(code)/1000*st.size + st.charSpace
		if code == ' ' && (st.font == nil || !st.font.composite) {
			w += st.wordSpace
		}
		advance += w * st.scale
	}

	var b bounds
	trm := r.tm.mul(st.ctm)
	b.addBox(trm, 0, st.rise-0.25*st.size, advance, st.rise+st.size)
	r.tm = translate(advance, 0).mul(r.tm)
	return advance, r.touches(b.Rect)
}

// spacer returns a TJ operation that advances the text position by adv
// without painting anything.
func (r *contentRedactor) spacer(adv float64) []byte {
	unit := r.state.size * r.state.scale
	if unit == 0 || adv == 0 {
		return []byte("[] TJ")
	}
	return []byte("[" + formatNumber(-adv/unit*1000) + "] TJ")
}

func (r *contentRedactor) showArray(i int, arr contentToken) {
	var out bytes.Buffer
	hit := false
	out.WriteByte('[')
	for _, item := range arr.items {
		switch item.kind {
		case tokenString:
			adv, touched := r.show(item.str)
			if touched {
				hit = true
				if unit := r.state.size * r.state.scale; unit != 0 {
					out.WriteString(formatNumber(-adv / unit * 1000))
					out.WriteByte(' ')
				}
				continue
			}
		case tokenNumber:
			r.tm = translate(-item.num/1000*r.state.size*r.state.scale, 0).mul(r.tm)
		}
		out.Write(item.raw)
		out.WriteByte(' ')
	}
	out.WriteString("] TJ")
	if hit {
		r.replace[i] = out.Bytes()
	}
}

func (r *contentRedactor) touches(b Rect) bool {
	for _, rect := range r.rects {
		if b.X0 < rect.X1 && rect.X0 < b.X1 && b.Y0 < rect.Y1 && rect.Y0 < b.Y1 {
			return true
		}
	}
	return false
}

func (r *contentRedactor) contained(b Rect) bool {
	for _, rect := range r.rects {
		if b.X0 >= rect.X0-containTolerance && b.X1 <= rect.X1+containTolerance &&
			b.Y0 >= rect.Y0-containTolerance && b.Y1 <= rect.Y1+containTolerance {
			return true
		}
	}
	return false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
