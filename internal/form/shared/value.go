package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"NYCU-SDC/form-engine-backend/internal"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindStringArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindStringArray:
		return "string_array"
	default:
		return "unknown"
	}
}

// Value is a single answer. It is one of string, number, boolean, array of
// strings or null; any other JSON shape is rejected when decoding.
type Value struct {
	kind  Kind
	str   string
	num   float64
	b     bool
	array []string
}

func Null() Value { return Value{kind: KindNull} }

func String(s string) Value { return Value{kind: KindString, str: s} }

func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func StringArray(items []string) Value {
	copied := make([]string, len(items))
	copy(copied, items)
	return Value{kind: KindStringArray, array: copied}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsStringArray() ([]string, bool) {
	if v.kind != KindStringArray {
		return nil, false
	}
	copied := make([]string, len(v.array))
	copy(copied, v.array)
	return copied, true
}

// Text renders the value for tabular output such as spreadsheets.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindStringArray:
		return strings.Join(v.array, "; ")
	default:
		return ""
	}
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindStringArray:
		if len(v.array) != len(other.array) {
			return false
		}
		for i := range v.array {
			if v.array[i] != other.array[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindStringArray:
		if v.array == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.array)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty value", internal.ErrInvalidAnswerValue)
	}

	switch trimmed[0] {
	case 'n':
		if string(trimmed) != "null" {
			return fmt.Errorf("%w: %s", internal.ErrInvalidAnswerValue, trimmed)
		}
		*v = Null()
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("%w: %v", internal.ErrInvalidAnswerValue, err)
		}
		*v = String(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return fmt.Errorf("%w: %v", internal.ErrInvalidAnswerValue, err)
		}
		*v = Bool(b)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("%w: %v", internal.ErrInvalidAnswerValue, err)
		}
		array := make([]string, 0, len(items))
		for i, item := range items {
			var s string
			item = bytes.TrimSpace(item)
			if len(item) == 0 || item[0] != '"' {
				return fmt.Errorf("%w: array element %d is not a string", internal.ErrInvalidAnswerValue, i)
			}
			if err := json.Unmarshal(item, &s); err != nil {
				return fmt.Errorf("%w: %v", internal.ErrInvalidAnswerValue, err)
			}
			array = append(array, s)
		}
		*v = Value{kind: KindStringArray, array: array}
	case '{':
		return fmt.Errorf("%w: objects are not supported", internal.ErrInvalidAnswerValue)
	default:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("%w: %v", internal.ErrInvalidAnswerValue, err)
		}
		*v = Number(n)
	}

	return nil
}

// Answers maps a key (field id or field name) to its answer value.
type Answers map[string]Value

// DecodeAnswers parses a stored or submitted answer document. An empty
// document decodes to an empty map.
func DecodeAnswers(raw []byte) (Answers, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return Answers{}, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: answers must be an object", internal.ErrInvalidAnswerValue)
	}

	answers := Answers{}
	if err := json.Unmarshal(trimmed, &answers); err != nil {
		if errors.Is(err, internal.ErrInvalidAnswerValue) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", internal.ErrInvalidAnswerValue, err)
	}
	return answers, nil
}

// Encode serializes the answers for storage. A nil map encodes as {}.
func (a Answers) Encode() ([]byte, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]Value(a))
}
