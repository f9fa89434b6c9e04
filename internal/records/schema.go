// Package records stores simple owner-scoped rows (educations, experiences)
// described by a field schema, so each record type needs a struct and a
// Schema rather than its own repository and handler.
package records

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dataportfolio/portfolio-api/internal/validation"
)

const DateLayout = "2006-01-02"

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid record")
)

type Kind int

const (
	Text Kind = iota
	Date
)

type Field struct {
	Name     string
	Kind     Kind
	Required bool
	MaxLen   int
}

// Schema describes one table. Columns id, owner_id and created_at are implied.
type Schema struct {
	Table   string
	Fields  []Field
	OrderBy string
	// Range names a start/end date pair that must not be inverted.
	Range [2]string
}

// Values are parsed column values keyed by field name. A nil value clears
// an optional column.
type Values map[string]any

func (s Schema) field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Parse validates a decoded JSON body. With partial set only the supplied
// fields are checked and returned; otherwise every required field must be present.
func (s Schema) Parse(body map[string]any, partial bool) (Values, error) {
	var problems []string
	out := make(Values, len(body))

	for key := range body {
		if _, ok := s.field(key); !ok {
			problems = append(problems, fmt.Sprintf("%s is not a known field", key))
		}
	}

	for _, f := range s.Fields {
		raw, present := body[f.Name]
		if !present && partial {
			continue
		}

		str, err := asString(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s %s", f.Name, err))
			continue
		}
		str = strings.TrimSpace(str)

		if err := validation.Var(f.Name, str, f.tag()); err != nil {
			problems = append(problems, err.Error())
			continue
		}

		switch {
		case str == "":
			out[f.Name] = nil
		case f.Kind == Date:
			d, _ := time.Parse(DateLayout, str)
			out[f.Name] = d
		default:
			out[f.Name] = str
		}
	}

	if len(problems) == 0 && partial && len(out) == 0 {
		problems = append(problems, "nothing to update")
	}
	if len(problems) == 0 {
		if msg := s.checkRange(out); msg != "" {
			problems = append(problems, msg)
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return out, nil
}

func (f Field) tag() string {
	var parts []string
	if f.Required {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "omitempty")
	}
	if f.MaxLen > 0 {
		parts = append(parts, "max="+strconv.Itoa(f.MaxLen))
	}
	if f.Kind == Date {
		parts = append(parts, "datetime="+DateLayout)
	}
	return strings.Join(parts, ",")
}

func (s Schema) checkRange(v Values) string {
	if s.Range[0] == "" {
		return ""
	}
	start, ok1 := v[s.Range[0]].(time.Time)
	end, ok2 := v[s.Range[1]].(time.Time)
	if ok1 && ok2 && end.Before(start) {
		return s.rangeMessage()
	}
	return ""
}

func asString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	default:
		return "", errors.New("must be a string")
	}
}
