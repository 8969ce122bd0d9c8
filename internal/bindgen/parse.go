package bindgen

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// qualifiers that may lead a declaration but never name it
var storageWords = map[string]bool{
	"extern": true, "static": true, "inline": true, "__inline": true, "__inline__": true,
}

// identifiers that are part of a type and never a parameter name
var typeWords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"_Bool": true, "bool": true, "const": true, "volatile": true, "restrict": true,
	"struct": true, "union": true, "enum": true,
}

type parser struct {
	d         *Descriptor
	doc       []string
	docEnd    int
	externDep int
	macros    map[string]macro

	// the doc of the last finished declaration and the line it ended on,
	// for comments trailing it
	prevDoc  *string
	prevLine int
}

// macro is a #define. params is nil for object-like macros.
type macro struct {
	function bool
	params   []string
	body     []token
}

// Parse extracts the declarations of a C header. name is recorded in the
// descriptor as the header's name.
func Parse(name string, src []byte) (*Descriptor, error) {
	toks, err := lex(string(src))
	if err != nil {
		return nil, err
	}

	p := &parser{
		d: &Descriptor{
			ID:        descriptorID(src),
			Header:    name,
			Functions: []Function{},
			Types:     []Type{},
			Constants: []Constant{},
		},
		macros: make(map[string]macro),
	}

	var decl []token
	var declDoc string
	depth := 0

	for i := 0; i < len(toks); i++ {
		if expanded, ok := p.expand(toks, i); ok {
			toks = expanded
			i--
			continue
		}
		t := toks[i]

		switch t.kind {
		case tokComment:
			// comments inside a declaration document nothing
			if len(decl) == 0 {
				p.addComment(t)
			}
			continue
		case tokDirective:
			p.directive(t)
			continue
		}

		if len(decl) == 0 {
			// extern "C" { ... } and bare extern "C" prefixes
			if t.kind == tokIdent && t.text == "extern" && i+1 < len(toks) && toks[i+1].kind == tokString {
				i++
				if i+1 < len(toks) && toks[i+1].is("{") {
					i++
					p.externDep++
				}
				continue
			}
			if t.is("}") && p.externDep > 0 {
				p.externDep--
				continue
			}
			if t.is(";") {
				continue
			}
			declDoc = p.takeDoc(t.line)
		}

		switch {
		case t.is("{"):
			// an inline function definition: skip the body and keep the prototype
			if depth == 0 && len(decl) > 0 && decl[len(decl)-1].is(")") {
				i = skipBody(toks, i)
				before := p.counts()
				if err := p.declaration(decl, declDoc, true); err != nil {
					return nil, fmt.Errorf("line %d: %w", decl[0].line, err)
				}
				p.declared(before, toks[min(i, len(toks)-1)].line)
				decl = nil
				continue
			}
			depth++
		case t.is("}"):
			depth--
		case t.is(";") && depth == 0:
			before := p.counts()
			if err := p.declaration(decl, declDoc, false); err != nil {
				return nil, fmt.Errorf("line %d: %w", decl[0].line, err)
			}
			p.declared(before, t.line)
			decl = nil
			continue
		}
		decl = append(decl, t)
	}

	if len(decl) > 0 {
		return nil, fmt.Errorf("line %d: unterminated declaration", decl[0].line)
	}
	return p.d, nil
}

func skipBody(toks []token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch {
		case toks[i].is("{"):
			depth++
		case toks[i].is("}"):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(toks)
}

func (p *parser) counts() [4]int {
	return [4]int{len(p.d.Functions), len(p.d.Types), len(p.d.Constants), len(p.d.Variables)}
}

// declared remembers the doc of whatever the declaration ending on line
// added, so a comment trailing it on the same line lands there.
func (p *parser) declared(before [4]int, line int) {
	p.prevDoc, p.prevLine = nil, line
	d := p.d
	switch {
	case len(d.Functions) > before[0]:
		p.prevDoc = &d.Functions[len(d.Functions)-1].Doc
	case len(d.Types) > before[1]:
		p.prevDoc = &d.Types[len(d.Types)-1].Doc
	case len(d.Constants) > before[2]:
		p.prevDoc = &d.Constants[len(d.Constants)-1].Doc
	case len(d.Variables) > before[3]:
		p.prevDoc = &d.Variables[len(d.Variables)-1].Doc
	}
}

// isTrailingDoc reports whether a comment uses the doxygen markers for
// documenting the member before it.
func isTrailingDoc(text string) bool {
	return strings.HasPrefix(text, "/**<") || strings.HasPrefix(text, "/*!<") ||
		strings.HasPrefix(text, "///<") || strings.HasPrefix(text, "//!<")
}

func (p *parser) addComment(t token) {
	text := cleanComment(t.text)
	if t.line == p.prevLine || isTrailingDoc(t.text) {
		if p.prevDoc != nil && text != "" {
			if *p.prevDoc != "" {
				*p.prevDoc += "\n"
			}
			*p.prevDoc += text
		}
		return
	}
	p.prevDoc = nil

	if p.doc != nil && t.line > p.docEnd+1 {
		p.doc = nil
	}
	if text != "" {
		p.doc = append(p.doc, text)
	}
	p.docEnd = t.endLine
}

// takeDoc returns the comment block ending on the line just above line.
func (p *parser) takeDoc(line int) string {
	defer func() { p.doc = nil }()
	if p.doc == nil || p.docEnd < line-1 {
		return ""
	}
	return strings.Join(p.doc, "\n")
}

func cleanComment(text string) string {
	if strings.HasPrefix(text, "//") {
		return strings.TrimSpace(strings.TrimLeft(text, "/!<"))
	}
	text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	text = strings.TrimLeft(text, "*!<")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// directive records #define macros for expansion and the object-like ones
// with a constant value as constants. Other directives are ignored.
func (p *parser) directive(t token) {
	doc := p.takeDoc(t.line)
	p.prevDoc = nil

	text := strings.TrimSpace(strings.TrimPrefix(t.text, "#"))
	if name, ok := strings.CutPrefix(text, "undef "); ok {
		delete(p.macros, strings.TrimSpace(name))
		return
	}
	rest, ok := strings.CutPrefix(text, "define")
	if !ok || rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return
	}
	rest = strings.TrimSpace(rest)

	end := 0
	for end < len(rest) && isIdentChar(rest[end]) {
		end++
	}
	name, value := rest[:end], strings.TrimSpace(rest[end:])
	if name == "" {
		return
	}

	if strings.HasPrefix(rest[end:], "(") {
		params, body, ok := strings.Cut(rest[end+1:], ")")
		if !ok {
			return
		}
		m := macro{function: true}
		for _, param := range strings.Split(params, ",") {
			if param = strings.TrimSpace(param); param != "" {
				m.params = append(m.params, param)
			}
		}
		p.define(name, m, strings.TrimSpace(body))
		return
	}

	p.define(name, macro{}, value)
	if value == "" {
		return
	}
	kind := constantKind(value)
	if kind == "" {
		return
	}
	p.d.Constants = append(p.d.Constants, Constant{Name: name, Kind: kind, Value: value, Doc: doc})
}

// define registers a macro unless its body uses stringizing or pasting,
// which expansion does not implement.
func (p *parser) define(name string, m macro, body string) {
	if strings.Contains(body, "#") {
		return
	}
	toks, err := lex(body)
	if err != nil {
		return
	}
	m.body = toks
	p.macros[name] = m
}

// expand replaces the macro invocation at toks[i] with the macro's body and
// reports whether it did. The result is rescanned by the caller, tokens
// never expand a macro they came out of.
func (p *parser) expand(toks []token, i int) ([]token, bool) {
	t := toks[i]
	if t.kind != tokIdent || slices.Contains(t.hide, t.text) {
		return toks, false
	}
	m, ok := p.macros[t.text]
	if !ok {
		return toks, false
	}

	end := i + 1
	var args [][]token
	if m.function {
		open := i + 1
		for open < len(toks) && toks[open].kind == tokComment {
			open++
		}
		if open >= len(toks) || !toks[open].is("(") {
			return toks, false // a function-like macro name without arguments stays as is
		}
		if args, end, ok = macroArgs(toks, open); !ok {
			return toks, false
		}
	}

	hide := append(slices.Clone(t.hide), t.text)
	var out []token
	for _, b := range m.body {
		if b.kind == tokIdent {
			if idx := slices.Index(m.params, b.text); idx >= 0 {
				if idx < len(args) {
					out = append(out, args[idx]...)
				}
				continue
			}
		}
		b.line, b.endLine, b.hide = t.line, t.line, hide
		out = append(out, b)
	}
	return slices.Concat(toks[:i], out, toks[end:]), true
}

// macroArgs splits the arguments of an invocation whose "(" is toks[open].
// It returns the index just past the closing parenthesis.
func macroArgs(toks []token, open int) ([][]token, int, bool) {
	var args [][]token
	var cur []token
	depth := 0
	for i := open; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.kind == tokComment || t.kind == tokDirective:
			continue
		case t.is("("):
			depth++
			if depth == 1 {
				continue
			}
		case t.is(")"):
			depth--
			if depth == 0 {
				return append(args, cur), i + 1, true
			}
		case t.is(",") && depth == 1:
			args = append(args, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	return nil, 0, false
}

func constantKind(value string) string {
	toks, err := lex(value)
	if err != nil || len(toks) == 0 {
		return ""
	}
	if len(toks) == 1 {
		switch toks[0].kind {
		case tokString:
			return ConstString
		case tokChar:
			return ConstChar
		case tokNumber:
			if _, ok := parseInt(toks[0].text); ok {
				return ConstInt
			}
			if _, err := strconv.ParseFloat(strings.TrimRight(toks[0].text, "fFlL"), 64); err == nil {
				return ConstFloat
			}
			return ""
		case tokIdent:
			// an alias of another macro or keyword is not a constant by itself
			return ""
		}
	}
	for _, tok := range toks {
		switch tok.kind {
		case tokNumber, tokIdent, tokChar:
		case tokPunct:
			if !strings.Contains("()+-*/%<<>>|&^~!", tok.text) {
				return ""
			}
		default:
			return ""
		}
	}
	if toks[0].is("(") || toks[0].is("-") || toks[0].is("~") || toks[0].kind == tokNumber {
		if len(toks) == 2 && toks[0].is("-") {
			if _, ok := parseInt(toks[1].text); ok {
				return ConstInt
			}
		}
		return ConstExpr
	}
	return ""
}

// parseInt understands C integer literals, including suffixes.
func parseInt(text string) (int64, bool) {
	text = strings.TrimRight(text, "uUlL")
	if text == "" {
		return 0, false
	}
	if len(text) > 1 && text[0] == '0' && isDigit(text[1]) {
		text = "0o" + text[1:]
	}
	v, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(text, 0, 64)
		if uerr != nil {
			return 0, false
		}
		return int64(u), true
	}
	return v, true
}

// stripDecorations drops storage classes and compiler attributes and reports
// whether the declaration was marked inline.
func stripDecorations(toks []token) ([]token, bool) {
	var out []token
	inline := false
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.kind == tokIdent {
			if storageWords[t.text] {
				inline = inline || strings.Contains(t.text, "inline")
				continue
			}
			if (t.text == "__attribute__" || t.text == "__declspec") && i+1 < len(toks) && toks[i+1].is("(") {
				i = matchParen(toks, i+1)
				continue
			}
		}
		out = append(out, t)
	}
	return out, inline
}

// matchParen returns the index of the parenthesis closing toks[open].
func matchParen(toks []token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch {
		case toks[i].is("("), toks[i].is("["):
			depth++
		case toks[i].is(")"), toks[i].is("]"):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(toks) - 1
}

func (p *parser) declaration(toks []token, doc string, inlineBody bool) error {
	toks, inline := stripDecorations(toks)
	if len(toks) == 0 {
		return nil
	}
	inline = inline || inlineBody

	if toks[0].kind == tokIdent && toks[0].text == "typedef" {
		return p.typedef(toks[1:], doc)
	}

	if isRecordKeyword(toks[0]) {
		if brace := indexOf(toks, "{"); brace >= 0 {
			if closing := matchBrace(toks, brace); closing == len(toks)-1 {
				typ, err := p.record(toks, brace, closing)
				if err != nil {
					return err
				}
				typ.Doc = doc
				p.d.Types = append(p.d.Types, typ)
				return nil
			}
		} else if len(toks) == 2 && toks[1].kind == tokIdent {
			p.d.Types = append(p.d.Types, Type{Name: toks[1].text, Kind: KindOpaque, Tag: toks[1].text, Doc: doc})
			return nil
		}
	}

	if paren := indexAtDepth(toks, "("); paren > 0 {
		if paren+1 < len(toks) && toks[paren+1].is("*") {
			// function pointer variable
			name := pointerName(toks[paren:])
			p.d.Variables = append(p.d.Variables, Variable{Name: name, Type: join(without(toks, name)), Doc: doc})
			return nil
		}
		fn, err := function(toks, paren)
		if err != nil {
			return err
		}
		fn.Inline = inline
		fn.Doc = doc
		p.d.Functions = append(p.d.Functions, fn)
		return nil
	}

	for _, v := range declarators(toks) {
		p.d.Variables = append(p.d.Variables, Variable{Name: v.Name, Type: v.Type, Doc: doc})
	}
	return nil
}

func isRecordKeyword(t token) bool {
	return t.kind == tokIdent && (t.text == "struct" || t.text == "union" || t.text == "enum")
}

func indexOf(toks []token, punct string) int {
	for i, t := range toks {
		if t.is(punct) {
			return i
		}
	}
	return -1
}

// indexAtDepth finds punct outside any braces.
func indexAtDepth(toks []token, punct string) int {
	depth := 0
	for i, t := range toks {
		switch {
		case t.is("{"):
			depth++
		case t.is("}"):
			depth--
		case depth == 0 && t.is(punct):
			return i
		}
	}
	return -1
}

func matchBrace(toks []token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch {
		case toks[i].is("{"):
			depth++
		case toks[i].is("}"):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (p *parser) typedef(toks []token, doc string) error {
	if len(toks) < 2 {
		return fmt.Errorf("incomplete typedef")
	}

	if isRecordKeyword(toks[0]) {
		if brace := indexOf(toks, "{"); brace >= 0 {
			closing := matchBrace(toks, brace)
			if closing < 0 {
				return fmt.Errorf("unbalanced braces in typedef")
			}
			typ, err := p.record(toks, brace, closing)
			if err != nil {
				return err
			}
			typ.Name = ""
			for _, t := range toks[closing+1:] {
				if t.kind == tokIdent {
					typ.Name = t.text
					break
				}
			}
			if typ.Name == "" {
				return fmt.Errorf("typedef %s has no name", typ.Tag)
			}
			typ.Doc = doc
			p.d.Types = append(p.d.Types, typ)
			return nil
		}
	}

	if paren := indexOf(toks, "("); paren > 0 && paren+1 < len(toks) && toks[paren+1].is("*") {
		name := pointerName(toks[paren:])
		if name == "" {
			return fmt.Errorf("unnamed function pointer typedef")
		}
		p.d.Types = append(p.d.Types, Type{Name: name, Kind: KindCallback, Underlying: join(without(toks, name)), Doc: doc})
		return nil
	}

	nameIdx := declaratorName(toks)
	if nameIdx < 0 {
		return fmt.Errorf("typedef has no name")
	}
	name := toks[nameIdx].text
	underlying := append(append([]token{}, toks[:nameIdx]...), toks[nameIdx+1:]...)

	typ := Type{Name: name, Kind: KindAlias, Underlying: join(underlying), Doc: doc}
	// typedef struct tag name; hides the layout from callers
	if len(underlying) == 2 && isRecordKeyword(underlying[0]) && underlying[0].text != "enum" {
		typ.Kind = KindOpaque
		typ.Tag = underlying[1].text
	}
	p.d.Types = append(p.d.Types, typ)
	return nil
}

// declaratorName returns the index of the declared name: the last identifier
// before any array suffix or bit-field width.
func declaratorName(toks []token) int {
	end := len(toks)
	for i, t := range toks {
		if t.is("[") || t.is(":") {
			end = i
			break
		}
	}
	for i := end - 1; i >= 0; i-- {
		if toks[i].kind == tokIdent {
			if typeWords[toks[i].text] {
				return -1
			}
			return i
		}
		if !toks[i].is("*") {
			return -1
		}
	}
	return -1
}

// pointerName finds NAME in "( * NAME )".
func pointerName(toks []token) string {
	for i := 0; i+1 < len(toks); i++ {
		if toks[i].is("*") && toks[i+1].kind == tokIdent && !typeWords[toks[i+1].text] {
			return toks[i+1].text
		}
		if toks[i].is(")") {
			break
		}
	}
	return ""
}

func without(toks []token, name string) []token {
	out := make([]token, 0, len(toks))
	removed := false
	for _, t := range toks {
		if !removed && t.kind == tokIdent && t.text == name {
			removed = true
			continue
		}
		out = append(out, t)
	}
	return out
}

func (p *parser) record(toks []token, brace, closing int) (Type, error) {
	typ := Type{Kind: toks[0].text}
	if brace > 1 && toks[1].kind == tokIdent {
		typ.Tag = toks[1].text
		typ.Name = typ.Tag
	}
	body := toks[brace+1 : closing]

	if typ.Kind == KindEnum {
		enumerators, err := enumerators(body)
		if err != nil {
			return typ, err
		}
		typ.Enumerators = enumerators
		return typ, nil
	}

	for _, member := range splitTop(body, ";") {
		if len(member) == 0 {
			continue
		}
		typ.Fields = append(typ.Fields, fields(member)...)
	}
	return typ, nil
}

func enumerators(body []token) ([]Enumerator, error) {
	var out []Enumerator
	var next int64
	known := true
	prev := ""

	for _, item := range splitTop(body, ",") {
		if len(item) == 0 {
			continue
		}
		if item[0].kind != tokIdent {
			return nil, fmt.Errorf("unexpected %q in enum", item[0].text)
		}
		e := Enumerator{Name: item[0].text}

		switch {
		case len(item) > 2 && item[1].is("="):
			expr := item[2:]
			if v, ok := evalEnumValue(expr, out); ok {
				next, known = v, true
				e.Value = strconv.FormatInt(v, 10)
			} else {
				known = false
				e.Value = join(expr)
			}
		case known:
			e.Value = strconv.FormatInt(next, 10)
		default:
			e.Value = prev + " + 1"
		}

		next++
		prev = e.Name
		out = append(out, e)
	}
	return out, nil
}

// evalEnumValue handles literals, negated literals and references to earlier
// enumerators. Anything else is kept as an expression.
func evalEnumValue(expr []token, seen []Enumerator) (int64, bool) {
	neg := false
	if len(expr) == 2 && expr[0].is("-") {
		neg, expr = true, expr[1:]
	}
	if len(expr) != 1 {
		return 0, false
	}

	var v int64
	var ok bool
	switch expr[0].kind {
	case tokNumber:
		v, ok = parseInt(expr[0].text)
	case tokChar:
		if r, _, _, err := strconv.UnquoteChar(strings.Trim(expr[0].text, "'"), '\''); err == nil {
			v, ok = int64(r), true
		}
	case tokIdent:
		for _, e := range seen {
			if e.Name == expr[0].text {
				v, ok = parseInt(e.Value)
			}
		}
	}
	if neg {
		v = -v
	}
	return v, ok
}

// fields turns one struct member declaration into fields, expanding
// comma-separated declarators that share a base type.
func fields(member []token) []Field {
	var out []Field
	for _, v := range declarators(member) {
		f := Field{Name: v.Name, Type: v.Type}
		if colon := indexOf(v.toks, ":"); colon >= 0 {
			f.Bits = join(v.toks[colon+1:])
		}
		out = append(out, f)
	}
	return out
}

type declarator struct {
	Name string
	Type string
	toks []token
}

func declarators(toks []token) []declarator {
	parts := splitTop(toks, ",")
	if len(parts) == 0 || len(parts[0]) == 0 {
		return nil
	}

	first := parts[0]
	if paren := indexOf(first, "("); paren >= 0 && paren+1 < len(first) && first[paren+1].is("*") {
		name := pointerName(first[paren:])
		return []declarator{{Name: name, Type: join(without(first, name)), toks: first}}
	}

	nameIdx := declaratorName(first)
	if nameIdx < 0 {
		return nil
	}
	// base type shared by the following declarators, without pointer stars
	base := first[:nameIdx]
	for len(base) > 0 && base[len(base)-1].is("*") {
		base = base[:len(base)-1]
	}

	var out []declarator
	for i, part := range parts {
		full := part
		if i > 0 {
			full = append(append([]token{}, base...), part...)
		}
		idx := declaratorName(full)
		if idx < 0 {
			continue
		}
		typ := append(append([]token{}, full[:idx]...), arraySuffix(full[idx+1:])...)
		out = append(out, declarator{Name: full[idx].text, Type: join(typ), toks: full})
	}
	return out
}

// arraySuffix keeps the [N] part of a declarator and drops a bit-field width.
func arraySuffix(toks []token) []token {
	if colon := indexOf(toks, ":"); colon >= 0 {
		return toks[:colon]
	}
	return toks
}

func function(toks []token, paren int) (Function, error) {
	if toks[paren-1].kind != tokIdent {
		return Function{}, fmt.Errorf("cannot find function name before %q", toks[paren].text)
	}
	closing := matchParen(toks, paren)
	fn := Function{
		Name:    toks[paren-1].text,
		Returns: join(toks[:paren-1]),
		Params:  []Param{},
	}
	if fn.Returns == "" {
		fn.Returns = "int"
	}

	args := toks[paren+1 : closing]
	if len(args) == 1 && args[0].kind == tokIdent && args[0].text == "void" {
		return fn, nil
	}
	for _, arg := range splitTop(args, ",") {
		if len(arg) == 0 {
			continue
		}
		if len(arg) == 1 && arg[0].is("...") {
			fn.Variadic = true
			continue
		}
		fn.Params = append(fn.Params, param(arg))
	}
	return fn, nil
}

func param(toks []token) Param {
	if paren := indexOf(toks, "("); paren >= 0 && paren+1 < len(toks) && toks[paren+1].is("*") {
		name := pointerName(toks[paren:])
		return Param{Name: name, Type: join(without(toks, name))}
	}

	idx := declaratorName(toks)
	// a lone type such as "int" or "struct foo" has no name
	if idx <= 0 || (idx == 1 && isRecordKeyword(toks[0])) {
		return Param{Type: join(toks)}
	}
	typ := append(append([]token{}, toks[:idx]...), toks[idx+1:]...)
	return Param{Name: toks[idx].text, Type: join(typ)}
}

// splitTop splits toks on sep outside of (), [] and {}.
func splitTop(toks []token, sep string) [][]token {
	var out [][]token
	depth, start := 0, 0
	for i, t := range toks {
		switch {
		case t.is("("), t.is("["), t.is("{"):
			depth++
		case t.is(")"), t.is("]"), t.is("}"):
			depth--
		case depth == 0 && t.is(sep):
			out = append(out, toks[start:i])
			start = i + 1
		}
	}
	if start < len(toks) {
		out = append(out, toks[start:])
	}
	return out
}

// join renders tokens back into a compact C type spelling such as
// "const float* const*" or "void (*)(void*, int)".
func join(toks []token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 {
			prev := toks[i-1]
			switch {
			case prev.word() && t.word(),
				prev.is("*") && t.word(),
				prev.is(","),
				prev.word() && t.is("("):
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.text)
	}
	return sb.String()
}
