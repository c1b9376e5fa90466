package primitive

import (
	"encoding/base64"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pborman/uuid"

	"github.com/HeliosSoftware/hfs-sub000/hfs/tree"
)

type pattern string

func (p pattern) compile() *regexp.Regexp {
	return regexp.MustCompile("^(?:" + string(p) + ")$")
}

const (
	year = `([0-9]([0-9]([0-9][1-9]|[1-9]0)|[1-9]00)|[1-9]000)`
	zone = `(Z|(\+|-)((0[0-9]|1[0-3]):[0-5][0-9]|14:00))`
	hms  = `([01][0-9]|2[0-3]):[0-5][0-9]:([0-5][0-9]|60)(\.[0-9]+)?`

	datePattern     pattern = year + `(-(0[1-9]|1[0-2])(-(0[1-9]|[1-2][0-9]|3[0-1]))?)?`
	dateTimePattern pattern = year + `(-(0[1-9]|1[0-2])(-(0[1-9]|[1-2][0-9]|3[0-1])(T` + hms + zone + `)?)?)?`
	instantPattern  pattern = year + `-(0[1-9]|1[0-2])-(0[1-9]|[1-2][0-9]|3[0-1])T` + hms + zone
	timePattern     pattern = hms
	codePattern     pattern = `[^\s]+( [^\s]+)*`
	idPattern       pattern = `[A-Za-z0-9\-\.]{1,64}`
	oidPattern      pattern = `urn:oid:[0-2](\.(0|[1-9][0-9]*))+`
	uriPattern      pattern = `\S+`
	uuidPattern     pattern = `urn:uuid:[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`
	integerPattern  pattern = `-?(0|[1-9][0-9]*)`
)

var (
	dateRegex     = datePattern.compile()
	dateTimeRegex = dateTimePattern.compile()
	instantRegex  = instantPattern.compile()
	timeRegex     = timePattern.compile()
	codeRegex     = codePattern.compile()
	idRegex       = idPattern.compile()
	oidRegex      = oidPattern.compile()
	uriRegex      = uriPattern.compile()
	uuidRegex     = uuidPattern.compile()
	integerRegex  = integerPattern.compile()
)

func init() {
	register(booleanRule{})

	register(integerRule{name: "integer", min: math.MinInt32, max: math.MaxInt32})
	register(integerRule{name: "positiveInt", min: 1, max: math.MaxInt32})
	register(integerRule{name: "unsignedInt", min: 0, max: math.MaxInt32})
	register(integer64Rule{})
	register(decimalRule{})
	register(base64Rule{})

	register(textRule{name: "string", check: nonEmpty})
	register(textRule{name: "markdown", check: nonEmpty})
	register(textRule{name: "xhtml", check: nonEmpty})
	register(textRule{name: "code", check: matches(codeRegex)})
	register(textRule{name: "id", check: matches(idRegex)})
	register(textRule{name: "uri", check: matches(uriRegex)})
	register(textRule{name: "url", check: matches(uriRegex)})
	register(textRule{name: "canonical", check: matches(uriRegex)})
	register(textRule{name: "oid", check: matches(oidRegex)})
	register(textRule{name: "uuid", check: isUUID})
	register(textRule{name: "date", check: calendar(dateRegex)})
	register(textRule{name: "dateTime", check: calendar(dateTimeRegex)})
	register(textRule{name: "instant", check: calendar(instantRegex)})
	register(textRule{name: "time", check: matches(timeRegex)})
}

type booleanRule struct{}

func (booleanRule) Name() string { return "boolean" }

func (booleanRule) Parse(n *tree.Node) (interface{}, error) {
	if n.Kind() != tree.Bool {
		return nil, wrongKind(tree.Bool, n)
	}
	return n.Bool(), nil
}

func (r booleanRule) Format(v interface{}) (*tree.Node, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, wrongType(r.Name(), v)
	}
	return tree.NewBool(b), nil
}

// integerRule covers the 32-bit integer types, bounded by [min, max].
type integerRule struct {
	name     string
	min, max int64
}

func (r integerRule) Name() string { return r.name }

func (r integerRule) Parse(n *tree.Node) (interface{}, error) {
	if n.Kind() != tree.Number {
		return nil, wrongKind(tree.Number, n)
	}
	if !integerRegex.MatchString(n.Text()) {
		return nil, fmt.Errorf("%s is not an integer literal", n.Text())
	}
	i, err := strconv.ParseInt(n.Text(), 10, 64)
	if err != nil || i < r.min || i > r.max {
		return nil, fmt.Errorf("%s is out of range for %s", n.Text(), r.name)
	}
	return i, nil
}

func (r integerRule) Format(v interface{}) (*tree.Node, error) {
	i, ok := asInt64(v)
	if !ok {
		return nil, wrongType(r.name, v)
	}
	if i < r.min || i > r.max {
		return nil, fmt.Errorf("%d is out of range for %s", i, r.name)
	}
	return tree.NewNumber(strconv.FormatInt(i, 10)), nil
}

// integer64Rule is carried in a JSON string, JSON numbers lose precision past 2^53.
type integer64Rule struct{}

func (integer64Rule) Name() string { return "integer64" }

func (integer64Rule) Parse(n *tree.Node) (interface{}, error) {
	if n.Kind() != tree.String {
		return nil, wrongKind(tree.String, n)
	}
	if !integerRegex.MatchString(n.Text()) {
		return nil, fmt.Errorf("%q is not an integer literal", n.Text())
	}
	i, err := strconv.ParseInt(n.Text(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is out of range for integer64", n.Text())
	}
	return i, nil
}

func (r integer64Rule) Format(v interface{}) (*tree.Node, error) {
	i, ok := asInt64(v)
	if !ok {
		return nil, wrongType(r.Name(), v)
	}
	return tree.NewString(strconv.FormatInt(i, 10)), nil
}

func asInt64(v interface{}) (int64, bool) {
	switch i := v.(type) {
	case int64:
		return i, true
	case int:
		return int64(i), true
	case int32:
		return int64(i), true
	}
	return 0, false
}

type decimalRule struct{}

func (decimalRule) Name() string { return "decimal" }

func (decimalRule) Parse(n *tree.Node) (interface{}, error) {
	if n.Kind() != tree.Number {
		return nil, wrongKind(tree.Number, n)
	}
	return DecimalFromString(n.Text())
}

func (r decimalRule) Format(v interface{}) (*tree.Node, error) {
	d, ok := v.(Decimal)
	if !ok {
		return nil, wrongType(r.Name(), v)
	}
	if d.IsZero() {
		return nil, fmt.Errorf("decimal has no literal")
	}
	return tree.NewNumber(d.String()), nil
}

type base64Rule struct{}

func (base64Rule) Name() string { return "base64Binary" }

func (base64Rule) Parse(n *tree.Node) (interface{}, error) {
	if n.Kind() != tree.String {
		return nil, wrongKind(tree.String, n)
	}
	b, err := base64.StdEncoding.Strict().DecodeString(n.Text())
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %v", err)
	}
	return b, nil
}

func (r base64Rule) Format(v interface{}) (*tree.Node, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, wrongType(r.Name(), v)
	}
	return tree.NewString(base64.StdEncoding.EncodeToString(b)), nil
}

// textRule is any primitive carried as a JSON string and held as a Go string.
type textRule struct {
	name  string
	check func(string) error
}

func (r textRule) Name() string { return r.name }

func (r textRule) Parse(n *tree.Node) (interface{}, error) {
	if n.Kind() != tree.String {
		return nil, wrongKind(tree.String, n)
	}
	if err := r.check(n.Text()); err != nil {
		return nil, err
	}
	return n.Text(), nil
}

func (r textRule) Format(v interface{}) (*tree.Node, error) {
	s, ok := v.(string)
	if !ok {
		return nil, wrongType(r.name, v)
	}
	if err := r.check(s); err != nil {
		return nil, err
	}
	return tree.NewString(s), nil
}

func nonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("string must contain non-whitespace characters")
	}
	return nil
}

func matches(re *regexp.Regexp) func(string) error {
	return func(s string) error {
		if !re.MatchString(s) {
			return fmt.Errorf("%q does not match %s", s, re.String())
		}
		return nil
	}
}

// calendar adds a real-date check to the date patterns, which accept 2021-02-30.
func calendar(re *regexp.Regexp) func(string) error {
	match := matches(re)
	return func(s string) error {
		if err := match(s); err != nil {
			return err
		}
		if len(s) >= len("2006-01-02") {
			if _, err := time.Parse("2006-01-02", s[:10]); err != nil {
				return fmt.Errorf("%q is not a calendar date", s)
			}
		}
		return nil
	}
}

func isUUID(s string) error {
	if !uuidRegex.MatchString(s) {
		return fmt.Errorf("%q is not a lowercase urn:uuid: URI", s)
	}
	if u := uuid.Parse(strings.TrimPrefix(s, "urn:uuid:")); u == nil {
		return fmt.Errorf("%q is not a valid UUID", s)
	}
	return nil
}
