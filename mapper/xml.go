package mapper

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/forgeline/dynsql/node"
)

// Option configures document parsing.
type Option func(*parser)

// WithSubstitutionPattern guards every ${} substitution in the document: a
// substituted value that does not match the pattern in full aborts the
// invocation instead of being spliced into the statement.
func WithSubstitutionPattern(re *regexp.Regexp) Option {
	return func(p *parser) { p.pattern = re }
}

// Parse reads one mapper document. Whitespace between elements is layout, not
// SQL: runs of whitespace inside text chunks collapse to a single space.
func Parse(r io.Reader, opts ...Option) (*Mapper, error) {
	p := &parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p.parse(xml.NewDecoder(r))
}

// ParseFile reads a mapper document from disk.
func ParseFile(path string, opts ...Option) (*Mapper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Parse(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

type parser struct {
	pattern *regexp.Regexp
	mapper  *Mapper
}

func (p *parser) parse(dec *xml.Decoder) (*Mapper, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("document has no <mapper> element")
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "mapper" {
			return nil, fmt.Errorf("unexpected root element <%s>, want <mapper>", se.Name.Local)
		}
		return p.parseMapper(dec, se)
	}
}

func (p *parser) parseMapper(dec *xml.Decoder, root xml.StartElement) (*Mapper, error) {
	namespace := attr(root, "namespace")
	if namespace == "" {
		return nil, fmt.Errorf("<mapper> requires a namespace attribute")
	}
	p.mapper = &Mapper{
		Namespace:  namespace,
		Statements: make(map[string]*Statement),
		fragments:  make(map[string]node.Node),
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == "mapper" {
				return p.mapper, nil
			}
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("mapper %s: stray text %q outside a statement", namespace, strings.TrimSpace(string(t)))
			}
		case xml.StartElement:
			switch t.Name.Local {
			case "sql":
				if err := p.parseFragment(dec, t); err != nil {
					return nil, err
				}
			case "select":
				if err := p.parseStatement(dec, t, KindSelect); err != nil {
					return nil, err
				}
			case "insert":
				if err := p.parseStatement(dec, t, KindInsert); err != nil {
					return nil, err
				}
			case "update":
				if err := p.parseStatement(dec, t, KindUpdate); err != nil {
					return nil, err
				}
			case "delete":
				if err := p.parseStatement(dec, t, KindDelete); err != nil {
					return nil, err
				}
			default:
				return nil, fmt.Errorf("mapper %s: unexpected element <%s>", namespace, t.Name.Local)
			}
		}
	}
}

func (p *parser) parseFragment(dec *xml.Decoder, se xml.StartElement) error {
	id := attr(se, "id")
	if id == "" {
		return fmt.Errorf("mapper %s: <sql> requires an id attribute", p.mapper.Namespace)
	}
	if _, exists := p.mapper.fragments[id]; exists {
		return fmt.Errorf("mapper %s: duplicate sql fragment %q", p.mapper.Namespace, id)
	}
	body, err := p.parseBody(dec, se)
	if err != nil {
		return err
	}
	p.mapper.fragments[id] = body
	return nil
}

func (p *parser) parseStatement(dec *xml.Decoder, se xml.StartElement, kind StatementKind) error {
	id := attr(se, "id")
	if id == "" {
		return fmt.Errorf("mapper %s: <%s> requires an id attribute", p.mapper.Namespace, kind)
	}
	if _, exists := p.mapper.Statements[id]; exists {
		return fmt.Errorf("mapper %s: duplicate statement id %q", p.mapper.Namespace, id)
	}
	body, err := p.parseBody(dec, se)
	if err != nil {
		return fmt.Errorf("statement %s.%s: %w", p.mapper.Namespace, id, err)
	}
	p.mapper.Statements[id] = &Statement{
		ID:           id,
		Namespace:    p.mapper.Namespace,
		Kind:         kind,
		Root:         body,
		KeyGenerator: attr(se, "keyGenerator"),
		KeyProperty:  attr(se, "keyProperty"),
	}
	return nil
}

// parseBody compiles the mixed content of an element into a node tree,
// recursing through the dynamic elements.
func (p *parser) parseBody(dec *xml.Decoder, parent xml.StartElement) (node.Node, error) {
	var children []node.Node
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == parent.Name.Local {
				return wrap(children), nil
			}
		case xml.CharData:
			if text := collapseSpace(string(t)); text != "" {
				children = append(children, p.textNode(text))
			}
		case xml.StartElement:
			child, err := p.parseElement(dec, t)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
	}
}

func (p *parser) parseElement(dec *xml.Decoder, se xml.StartElement) (node.Node, error) {
	switch se.Name.Local {
	case "if":
		test := attr(se, "test")
		if test == "" {
			return nil, fmt.Errorf("<if> requires a test attribute")
		}
		body, err := p.parseBody(dec, se)
		if err != nil {
			return nil, err
		}
		return &node.If{Test: test, Child: body}, nil

	case "choose":
		return p.parseChoose(dec, se)

	case "where":
		body, err := p.parseBody(dec, se)
		if err != nil {
			return nil, err
		}
		return node.Where(body), nil

	case "set":
		body, err := p.parseBody(dec, se)
		if err != nil {
			return nil, err
		}
		return node.Set(body), nil

	case "trim":
		body, err := p.parseBody(dec, se)
		if err != nil {
			return nil, err
		}
		return &node.Trim{
			Prefix:          attr(se, "prefix"),
			Suffix:          attr(se, "suffix"),
			PrefixOverrides: splitOverrides(attr(se, "prefixOverrides")),
			SuffixOverrides: splitOverrides(attr(se, "suffixOverrides")),
			Child:           body,
		}, nil

	case "foreach":
		collection := attr(se, "collection")
		if collection == "" {
			return nil, fmt.Errorf("<foreach> requires a collection attribute")
		}
		body, err := p.parseBody(dec, se)
		if err != nil {
			return nil, err
		}
		return &node.ForEach{
			Collection: collection,
			Item:       attr(se, "item"),
			Index:      attr(se, "index"),
			Open:       attr(se, "open"),
			Close:      attr(se, "close"),
			Separator:  attr(se, "separator"),
			Child:      body,
		}, nil

	case "bind":
		name, value := attr(se, "name"), attr(se, "value")
		if name == "" || value == "" {
			return nil, fmt.Errorf("<bind> requires name and value attributes")
		}
		if err := dec.Skip(); err != nil {
			return nil, err
		}
		return &node.Bind{Name: name, Expr: value}, nil

	case "include":
		refid := attr(se, "refid")
		if refid == "" {
			return nil, fmt.Errorf("<include> requires a refid attribute")
		}
		if err := dec.Skip(); err != nil {
			return nil, err
		}
		return &includeNode{mapper: p.mapper, refid: refid}, nil

	case "when", "otherwise":
		return nil, fmt.Errorf("<%s> is only valid inside <choose>", se.Name.Local)

	default:
		return nil, fmt.Errorf("unexpected element <%s>", se.Name.Local)
	}
}

func (p *parser) parseChoose(dec *xml.Decoder, se xml.StartElement) (node.Node, error) {
	choose := &node.Choose{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == "choose" {
				if len(choose.Whens) == 0 {
					return nil, fmt.Errorf("<choose> requires at least one <when>")
				}
				return choose, nil
			}
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("text inside <choose> must be wrapped in <when> or <otherwise>")
			}
		case xml.StartElement:
			switch t.Name.Local {
			case "when":
				test := attr(t, "test")
				if test == "" {
					return nil, fmt.Errorf("<when> requires a test attribute")
				}
				body, err := p.parseBody(dec, t)
				if err != nil {
					return nil, err
				}
				choose.Whens = append(choose.Whens, &node.If{Test: test, Child: body})
			case "otherwise":
				if choose.Otherwise != nil {
					return nil, fmt.Errorf("<choose> allows a single <otherwise>")
				}
				body, err := p.parseBody(dec, t)
				if err != nil {
					return nil, err
				}
				choose.Otherwise = body
			default:
				return nil, fmt.Errorf("unexpected element <%s> inside <choose>", t.Name.Local)
			}
		}
	}
}

// textNode classifies a text chunk: plain chunks become StaticText, chunks
// carrying ${} go through the substituting node.
func (p *parser) textNode(text string) node.Node {
	n := &node.Text{Text: text, Pattern: p.pattern}
	if n.Dynamic() {
		return n
	}
	return &node.StaticText{Text: text}
}

func wrap(children []node.Node) node.Node {
	if len(children) == 1 {
		return children[0]
	}
	return node.Mixed(children)
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// splitOverrides splits a |-separated override list. Tokens keep their
// trailing whitespace; "AND |OR " matches the connective plus the space that
// separates it from the rest of the clause.
func splitOverrides(list string) []string {
	if list == "" {
		return nil
	}
	parts := strings.Split(list, "|")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func collapseSpace(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}
