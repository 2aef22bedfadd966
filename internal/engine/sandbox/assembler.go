package sandbox

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/corearena/internal/engine"
)

const (
	opLive byte = 0x01
	opSt   byte = 0x03
	opJmp  byte = 0x09
	opFork byte = 0x0c
)

var opSizes = map[string]int{
	"live": 1,
	"st":   3,
	"jmp":  2,
	"fork": 2,
}

// Compiler assembles sandbox champion sources.
type Compiler struct{}

func NewCompiler() Compiler { return Compiler{} }

type token struct {
	text   string
	col    int
	quoted bool
}

type item struct {
	row      int
	addr     int
	mnemonic token
	operands []token
	raw      []byte
}

// Compile implements engine.Compiler. Failures are *engine.CompileError.
func (Compiler) Compile(source string) (engine.Champion, error) {
	var (
		name, comment string
		hasName       bool
		items         []item
		labels        = make(map[string]int)
		addr          int
	)

	lines := strings.Split(source, "\n")
	for row, line := range lines {
		line = strings.TrimRight(line, "\r")
		toks, err := tokenize(line, row)
		if err != nil {
			return engine.Champion{}, err
		}

		if len(toks) >= 2 && toks[1].text == ":" && !toks[0].quoted {
			label := toks[0]
			if !isIdent(label.text) {
				return engine.Champion{}, errorAt(row, label, "invalid label %q", label.text)
			}
			if _, dup := labels[label.text]; dup {
				return engine.Champion{}, errorAt(row, label, "label %q already defined", label.text)
			}
			labels[label.text] = addr
			toks = toks[2:]
		}
		if len(toks) == 0 {
			continue
		}

		head, args := toks[0], toks[1:]
		switch head.text {
		case ".name", ".comment":
			if len(args) != 1 || !args[0].quoted {
				return engine.Champion{}, errorAt(row, head, "%s expects one quoted string", head.text)
			}
			if head.text == ".name" {
				if len(args[0].text) > NameLength {
					return engine.Champion{}, errorAt(row, args[0], "name longer than %d bytes", NameLength)
				}
				name, hasName = args[0].text, true
			} else {
				if len(args[0].text) > CommentLength {
					return engine.Champion{}, errorAt(row, args[0], "comment longer than %d bytes", CommentLength)
				}
				comment = args[0].text
			}
		case ".byte":
			if len(args) == 0 {
				return engine.Champion{}, errorAt(row, head, ".byte expects at least one value")
			}
			raw := make([]byte, 0, len(args))
			for _, a := range args {
				v, err := parseByte(a)
				if err != nil {
					return engine.Champion{}, errorAt(row, a, "%v", err)
				}
				raw = append(raw, v)
			}
			items = append(items, item{row: row, addr: addr, mnemonic: head, raw: raw})
			addr += len(raw)
		default:
			size, ok := opSizes[head.text]
			if !ok {
				return engine.Champion{}, errorAt(row, head, "unknown instruction %q", head.text)
			}
			if want := size - 1; len(args) != want {
				return engine.Champion{}, errorAt(row, head, "%s expects %d operand(s), got %d", head.text, want, len(args))
			}
			items = append(items, item{row: row, addr: addr, mnemonic: head, operands: args})
			addr += size
		}
	}

	if !hasName {
		return engine.Champion{}, &engine.CompileError{Reason: "missing .name directive", Err: engine.ErrInvalidChampion}
	}
	if addr == 0 {
		return engine.Champion{}, &engine.CompileError{Reason: "champion has no code", Err: engine.ErrInvalidChampion}
	}
	if addr > MaxCodeSize {
		return engine.Champion{}, &engine.CompileError{
			Reason: fmt.Sprintf("champion is %d bytes, limit is %d", addr, MaxCodeSize),
			Err:    engine.ErrInvalidChampion,
		}
	}

	code := make([]byte, 0, addr)
	for _, it := range items {
		if it.raw != nil {
			code = append(code, it.raw...)
			continue
		}
		switch it.mnemonic.text {
		case "live":
			code = append(code, opLive)
		case "jmp", "fork":
			off, err := resolveOffset(it.operands[0], it.addr, labels)
			if err != nil {
				return engine.Champion{}, errorAt(it.row, it.operands[0], "%v", err)
			}
			op := opJmp
			if it.mnemonic.text == "fork" {
				op = opFork
			}
			code = append(code, op, off)
		case "st":
			off, err := resolveOffset(it.operands[0], it.addr, labels)
			if err != nil {
				return engine.Champion{}, errorAt(it.row, it.operands[0], "%v", err)
			}
			v, err := parseByte(it.operands[1])
			if err != nil {
				return engine.Champion{}, errorAt(it.row, it.operands[1], "%v", err)
			}
			code = append(code, opSt, off, v)
		}
	}

	img, err := EncodeImage(name, comment, code)
	if err != nil {
		return engine.Champion{}, &engine.CompileError{Reason: err.Error(), Err: engine.ErrInvalidChampion}
	}
	return engine.Champion{Name: name, Comment: comment, ByteCode: img, CodeSize: len(code)}, nil
}

func tokenize(line string, row int) ([]token, *engine.CompileError) {
	var toks []token
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == ',':
			i++
		case c == '#' || c == ';':
			return toks, nil
		case c == ':':
			toks = append(toks, token{text: ":", col: i})
			i++
		case c == '"':
			end := strings.IndexByte(line[i+1:], '"')
			if end < 0 {
				return nil, &engine.CompileError{
					Reason: "unterminated string",
					Region: &engine.Region{FromRow: row, FromCol: i, ToRow: row, ToCol: len(line)},
				}
			}
			toks = append(toks, token{text: line[i+1 : i+1+end], col: i, quoted: true})
			i += end + 2
		default:
			start := i
			for i < len(line) && !strings.ContainsRune(" \t,:#;\"", rune(line[i])) {
				i++
			}
			toks = append(toks, token{text: line[start:i], col: start})
		}
	}
	return toks, nil
}

func errorAt(row int, tok token, format string, args ...any) *engine.CompileError {
	width := len(tok.text)
	if tok.quoted {
		width += 2
	}
	return &engine.CompileError{
		Reason: fmt.Sprintf(format, args...),
		Region: &engine.Region{FromRow: row, FromCol: tok.col, ToRow: row, ToCol: tok.col + width},
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !letter && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func parseNumber(tok token) (int64, error) {
	if tok.quoted {
		return 0, fmt.Errorf("expected a number, got a string")
	}
	v, err := strconv.ParseInt(tok.text, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", tok.text)
	}
	return v, nil
}

func parseByte(tok token) (byte, error) {
	v, err := parseNumber(tok)
	if err != nil {
		return 0, err
	}
	if v < -128 || v > 255 {
		return 0, fmt.Errorf("value %d does not fit in a byte", v)
	}
	return byte(v), nil
}

func resolveOffset(tok token, addr int, labels map[string]int) (byte, error) {
	var off int64
	if target, ok := labels[tok.text]; ok && !tok.quoted {
		off = int64(target - addr)
	} else if isIdent(tok.text) {
		return 0, fmt.Errorf("undefined label %q", tok.text)
	} else {
		v, err := parseNumber(tok)
		if err != nil {
			return 0, err
		}
		off = v
	}
	if off < -128 || off > 127 {
		return 0, fmt.Errorf("offset %d out of range [-128, 127]", off)
	}
	return byte(int8(off)), nil
}
