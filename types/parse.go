package types

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/hupe1980/duckvec/internal/errs"
)

var aliases = map[string]Type{
	"BOOL": TypeBoolean, "BOOLEAN": TypeBoolean, "LOGICAL": TypeBoolean,
	"TINYINT": TypeTinyInt, "INT1": TypeTinyInt,
	"SMALLINT": TypeSmallInt, "INT2": TypeSmallInt, "SHORT": TypeSmallInt,
	"INTEGER": TypeInteger, "INT": TypeInteger, "INT4": TypeInteger, "SIGNED": TypeInteger,
	"BIGINT": TypeBigInt, "INT8": TypeBigInt, "LONG": TypeBigInt,
	"UTINYINT": TypeUTinyInt, "USMALLINT": TypeUSmallInt, "UINTEGER": TypeUInteger, "UBIGINT": TypeUBigInt,
	"HUGEINT": TypeHugeInt, "INT128": TypeHugeInt, "UHUGEINT": TypeUHugeInt, "UINT128": TypeUHugeInt,
	"VARINT": TypeVarInt,
	"FLOAT": TypeFloat, "FLOAT4": TypeFloat, "REAL": TypeFloat,
	"DOUBLE": TypeDouble, "FLOAT8": TypeDouble,
	"VARCHAR": TypeVarchar, "TEXT": TypeVarchar, "STRING": TypeVarchar, "CHAR": TypeVarchar, "BPCHAR": TypeVarchar,
	"BLOB": TypeBlob, "BYTEA": TypeBlob, "BINARY": TypeBlob, "VARBINARY": TypeBlob,
	"BIT": TypeBit, "BITSTRING": TypeBit,
	"UUID": TypeUUID, "INTERVAL": TypeInterval,
	"DATE": TypeDate, "TIME": TypeTime, "TIMETZ": TypeTimeTZ,
	"TIMESTAMP": TypeTimestamp, "DATETIME": TypeTimestamp,
	"TIMESTAMP_S": TypeTimestampS, "TIMESTAMP_MS": TypeTimestampMS, "TIMESTAMP_NS": TypeTimestampNS,
	"TIMESTAMPTZ": TypeTimestampTZ,
}

// Parse reads a SQL type spelling such as "DECIMAL(18,3)", "VARCHAR[]",
// "INTEGER[4]", "STRUCT(a INTEGER, b MAP(VARCHAR, DOUBLE))" or "ENUM('x','y')".
func Parse(s string) (*LogicalType, error) {
	p := &parser{toks: tokenize(s)}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, errs.Unsupported("unexpected %q in type %q", p.peek(), s)
	}
	return t, nil
}

type parser struct {
	toks []string
	pos  int
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() string {
	if p.done() {
		return ""
	}
	return p.toks[p.pos]
}

func (p *parser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) expect(tok string) error {
	if got := p.next(); got != tok {
		return errs.Unsupported("expected %q, got %q", tok, got)
	}
	return nil
}

func (p *parser) number() (int, error) {
	tok := p.next()
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, errs.Unsupported("expected number, got %q", tok)
	}
	return n, nil
}

func (p *parser) parseType() (*LogicalType, error) {
	t, err := p.parseBase()
	if err != nil {
		return nil, err
	}
	for p.peek() == "[" {
		p.next()
		if p.peek() == "]" {
			p.next()
			if t, err = NewList(t); err != nil {
				return nil, err
			}
			continue
		}
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		if t, err = NewArray(t, n); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (p *parser) parseBase() (*LogicalType, error) {
	name := strings.ToUpper(p.next())
	switch name {
	case "DECIMAL", "NUMERIC":
		if p.peek() != "(" {
			return NewDecimal(18, 3)
		}
		p.next()
		w, err := p.number()
		if err != nil {
			return nil, err
		}
		s := 0
		if p.peek() == "," {
			p.next()
			if s, err = p.number(); err != nil {
				return nil, err
			}
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		if w < 0 || w > 255 || s < 0 || s > 255 {
			return nil, errs.Unsupported("DECIMAL(%d,%d)", w, s)
		}
		return NewDecimal(uint8(w), uint8(s))
	case "ENUM":
		if err := p.expect("("); err != nil {
			return nil, err
		}
		var dict []string
		for {
			tok := p.next()
			if len(tok) < 2 || tok[0] != '\'' {
				return nil, errs.Unsupported("expected quoted enum member, got %q", tok)
			}
			dict = append(dict, strings.ReplaceAll(tok[1:len(tok)-1], "''", "'"))
			if p.peek() != "," {
				break
			}
			p.next()
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return NewEnum(dict)
	case "STRUCT", "ROW":
		if err := p.expect("("); err != nil {
			return nil, err
		}
		var fields []Field
		for {
			fname := p.next()
			if fname == "" {
				return nil, errs.Unsupported("unterminated STRUCT")
			}
			ft, err := p.parseType()
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Name: strings.Trim(fname, `"`), Type: ft})
			if p.peek() != "," {
				break
			}
			p.next()
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return NewStruct(fields...)
	case "MAP":
		if err := p.expect("("); err != nil {
			return nil, err
		}
		k, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		v, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return NewMap(k, v)
	case "TIME", "TIMESTAMP":
		if p.withTimeZone() {
			if name == "TIME" {
				return NewPrimitive(TypeTimeTZ)
			}
			return NewPrimitive(TypeTimestampTZ)
		}
	}
	id, ok := aliases[name]
	if !ok {
		return nil, errs.Unsupported("unknown type %q", name)
	}
	return NewPrimitive(id)
}

func (p *parser) withTimeZone() bool {
	if p.pos+2 >= len(p.toks) {
		return false
	}
	if strings.EqualFold(p.toks[p.pos], "WITH") && strings.EqualFold(p.toks[p.pos+1], "TIME") &&
		strings.EqualFold(p.toks[p.pos+2], "ZONE") {
		p.pos += 3
		return true
	}
	return false
}

func tokenize(s string) []string {
	var toks []string
	r := []rune(s)
	for i := 0; i < len(r); {
		c := r[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case strings.ContainsRune("()[],", c):
			toks = append(toks, string(c))
			i++
		case c == '\'' || c == '"':
			j := i + 1
			for j < len(r) {
				if r[j] == c {
					if j+1 < len(r) && r[j+1] == c {
						j += 2
						continue
					}
					break
				}
				j++
			}
			end := min(j+1, len(r))
			toks = append(toks, string(r[i:end]))
			i = end
		default:
			j := i
			for j < len(r) && !unicode.IsSpace(r[j]) && !strings.ContainsRune("()[],'\"", r[j]) {
				j++
			}
			toks = append(toks, string(r[i:j]))
			i = j
		}
	}
	return toks
}
