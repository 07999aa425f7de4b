package annotations

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// markerAST is the grammar root of a marker literal:
//
//	@Name
//	@Name(value)
//	@Name(key=value, key={a, b}, key="text", key=5, key=true)
type markerAST struct {
	Name string     `parser:"'@' @Ident"`
	Args []*argAST  `parser:"( '(' ( @@ ( ',' @@ )* )? ')' )?"`
	Pos  lexer.Position
}

type argAST struct {
	Key   string    `parser:"( @Ident '=' )?"`
	Value *valueAST `parser:"@@"`
}

type valueAST struct {
	String *string     `parser:"  @String"`
	Number *int        `parser:"| @Int"`
	Bool   *boolean    `parser:"| @('true' | 'false')"`
	Ref    *string     `parser:"| @Ident"`
	Empty  bool        `parser:"| @( '{' '}' )"`
	List   []*valueAST `parser:"| '{' @@ ( ',' @@ )* '}'"`
}

type boolean bool

func (b *boolean) Capture(values []string) error {
	*b = values[0] == "true"
	return nil
}

var markerLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*(\.[a-zA-Z_$][a-zA-Z0-9_$]*)*`},
	{Name: "Punct", Pattern: `[@(){},=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Parser turns marker literals into validated Marker instances
type Parser struct {
	grammar   *participle.Parser[markerAST]
	registry  SchemaRegistry
	validator SchemaValidator
}

// NewParser creates a marker parser. A nil registry disables schema
// validation and every marker is returned with its raw attribute values.
func NewParser(registry SchemaRegistry) *Parser {
	grammar := participle.MustBuild[markerAST](
		participle.Lexer(markerLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)

	return &Parser{
		grammar:   grammar,
		registry:  registry,
		validator: NewValidator(),
	}
}

// Parse parses a single marker literal
func (p *Parser) Parse(text string, loc SourceLocation) (*Marker, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "@") {
		return nil, &SyntaxError{
			Msg:  fmt.Sprintf("marker %q must start with '@'", text),
			Loc:  loc,
			Hint: "Use format: @Name or @Name(key=value)",
		}
	}

	ast, err := p.grammar.ParseString(loc.File, text)
	if err != nil {
		return nil, p.syntaxError(err, loc)
	}

	marker := &Marker{
		Name:       ast.Name,
		Attributes: make(map[string]interface{}),
		Explicit:   make(map[string]bool),
		Location:   loc,
		Raw:        text,
	}

	for _, arg := range ast.Args {
		key := arg.Key
		if key == "" {
			key = "value"
		}
		if _, dup := marker.Attributes[key]; dup {
			return nil, &SyntaxError{
				Msg:  fmt.Sprintf("duplicate attribute '%s' in @%s", key, ast.Name),
				Loc:  loc,
				Hint: "Each attribute may appear once",
			}
		}
		marker.Attributes[key] = arg.Value.convert()
		marker.Explicit[key] = true
	}

	markerType, err := ParseMarkerType(ast.Name)
	if err != nil {
		// Not ours; keep it on the element so readers can still see it.
		marker.Type = ForeignMarker
		return marker, nil
	}
	marker.Type = markerType

	if err := p.Validate(marker); err != nil {
		return nil, err
	}
	return marker, nil
}

// Validate applies defaults, converts attribute types and checks the marker
// against its registered schema.
func (p *Parser) Validate(marker *Marker) error {
	if p.registry == nil || marker.Type == ForeignMarker {
		return nil
	}

	schema, err := p.registry.GetSchema(marker.Type)
	if err != nil {
		return &SchemaError{
			Msg:  fmt.Sprintf("no schema found for marker type: %s", marker.Type),
			Loc:  marker.Location,
			Hint: "Check if the marker type is registered",
		}
	}

	if err := p.validator.ApplyDefaults(marker, schema); err != nil {
		return err
	}
	if err := p.validator.TransformAttributes(marker, schema); err != nil {
		return err
	}
	return p.validator.Validate(marker, schema)
}

// CheckTarget verifies that the marker may be attached to an element of the
// given granularity.
func (p *Parser) CheckTarget(marker *Marker, target Target) error {
	if p.registry == nil || marker.Type == ForeignMarker {
		return nil
	}
	schema, err := p.registry.GetSchema(marker.Type)
	if err != nil {
		return err
	}
	if schema.Targets&target == 0 {
		return &SchemaError{
			Msg:  fmt.Sprintf("@%s is not allowed on a %s", marker.Type, target),
			Loc:  marker.Location,
			Hint: fmt.Sprintf("@%s may be placed on: %s", marker.Type, schema.Targets),
		}
	}
	return nil
}

func (p *Parser) syntaxError(err error, loc SourceLocation) *SyntaxError {
	serr := &SyntaxError{
		Msg:  err.Error(),
		Loc:  loc,
		Hint: "Marker format: @Name, @Name(value) or @Name(key=value, list={a, b})",
	}
	var perr participle.Error
	if errors.As(err, &perr) {
		serr.Msg = perr.Message()
		pos := perr.Position()
		if loc.Line == 0 {
			serr.Loc.Line = pos.Line
		}
		serr.Loc.Column = pos.Column
	}
	return serr
}

func (v *valueAST) convert() interface{} {
	switch {
	case v.String != nil:
		return *v.String
	case v.Number != nil:
		return *v.Number
	case v.Bool != nil:
		return bool(*v.Bool)
	case v.Ref != nil:
		return strings.TrimSuffix(*v.Ref, ".class")
	case v.Empty:
		return []string{}
	}

	items := make([]string, 0, len(v.List))
	for _, item := range v.List {
		if s, ok := item.convert().(string); ok {
			items = append(items, s)
			continue
		}
		items = append(items, fmt.Sprintf("%v", item.convert()))
	}
	return items
}
