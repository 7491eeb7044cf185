package node

import "strings"

// Decorator contexts. Each wraps an existing Context, overrides AppendSQL (and
// for the trimming variant, SQL), and delegates everything else through the
// embedded interface so the shared bindings map and sequence counter stay
// intact down the chain.

// prefixedContext gates a constant prefix behind the first non-blank append.
// The prefix is only written when the wrapped context already holds output,
// there is nothing to separate from otherwise. Once the gate fires it never
// re-applies within the same decorator instance.
type prefixedContext struct {
	Context
	prefix  string
	applied bool
}

func newPrefixedContext(wrapped Context, prefix string) *prefixedContext {
	return &prefixedContext{Context: wrapped, prefix: prefix}
}

func (p *prefixedContext) AppendSQL(fragment string) {
	if !p.applied && strings.TrimSpace(fragment) != "" {
		p.applied = true
		if p.prefix != "" && strings.TrimSpace(p.Context.SQL()) != "" {
			p.Context.AppendSQL(p.prefix)
		}
	}
	p.Context.AppendSQL(fragment)
}

// trimmedContext buffers every append instead of forwarding it. Commit trims
// the buffer, strips at most one matching override token from each end,
// inserts the configured replacement prefix/suffix, and forwards the processed
// text with exactly one real append. Prefix and suffix substitution each apply
// at most once even across repeated commits.
type trimmedContext struct {
	Context
	buffer strings.Builder

	prefix          string
	suffix          string
	prefixOverrides []string
	suffixOverrides []string

	prefixApplied bool
	suffixApplied bool
}

func newTrimmedContext(wrapped Context, n *Trim) *trimmedContext {
	return &trimmedContext{
		Context:         wrapped,
		prefix:          n.Prefix,
		suffix:          n.Suffix,
		prefixOverrides: n.PrefixOverrides,
		suffixOverrides: n.SuffixOverrides,
	}
}

func (t *trimmedContext) AppendSQL(fragment string) {
	t.buffer.WriteString(fragment)
	t.buffer.WriteByte(' ')
}

// SQL reports the buffered content only: a nested gate asking "is there
// anything to separate from" must see the clause under construction, not the
// outer statement.
func (t *trimmedContext) SQL() string {
	return strings.TrimSpace(t.buffer.String())
}

func (t *trimmedContext) Commit() {
	text := strings.TrimSpace(t.buffer.String())
	if text != "" {
		text = t.applyPrefix(text)
		text = t.applySuffix(text)
	}
	t.Context.AppendSQL(text)
}

func (t *trimmedContext) applyPrefix(text string) string {
	if t.prefixApplied {
		return text
	}
	t.prefixApplied = true
	upper := strings.ToUpper(text)
	for _, override := range t.prefixOverrides {
		if strings.HasPrefix(upper, strings.ToUpper(override)) {
			text = text[len(override):]
			break
		}
	}
	if t.prefix != "" {
		text = t.prefix + " " + text
	}
	return text
}

func (t *trimmedContext) applySuffix(text string) string {
	if t.suffixApplied {
		return text
	}
	t.suffixApplied = true
	upper := strings.ToUpper(text)
	for _, override := range t.suffixOverrides {
		if strings.HasSuffix(upper, strings.ToUpper(override)) {
			text = strings.TrimRight(text[:len(text)-len(override)], " \t\n\r")
			break
		}
	}
	if t.suffix != "" {
		text = text + " " + t.suffix
	}
	return text
}

// itemFilterContext rewrites parameter placeholders inside a loop body so each
// iteration's #{item} references that iteration's disambiguated binding. Only
// an exact leading match of the item name (or, failing that, the index name)
// is rewritten, and only when the name ends the placeholder or is followed by
// whitespace, '.', ',' or ':', so partial-name collisions pass through.
type itemFilterContext struct {
	Context
	itemName  string
	itemKey   string
	indexName string
	indexKey  string
}

func (f *itemFilterContext) AppendSQL(fragment string) {
	f.Context.AppendSQL(f.rewrite(fragment))
}

func (f *itemFilterContext) rewrite(text string) string {
	if !strings.Contains(text, "#{") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 16)
	for {
		start := strings.Index(text, "#{")
		if start < 0 {
			b.WriteString(text)
			break
		}
		end := strings.Index(text[start:], "}")
		if end < 0 {
			b.WriteString(text)
			break
		}
		end += start
		b.WriteString(text[:start])
		b.WriteString("#{")
		b.WriteString(f.rewriteInner(text[start+2 : end]))
		b.WriteByte('}')
		text = text[end+1:]
	}
	return b.String()
}

func (f *itemFilterContext) rewriteInner(inner string) string {
	trimmed := strings.TrimLeft(inner, " \t")
	lead := inner[:len(inner)-len(trimmed)]
	for _, sub := range [2][2]string{{f.itemName, f.itemKey}, {f.indexName, f.indexKey}} {
		name, replacement := sub[0], sub[1]
		if name == "" || !strings.HasPrefix(trimmed, name) {
			continue
		}
		rest := trimmed[len(name):]
		if rest == "" || isNameBoundary(rest[0]) {
			return lead + replacement + rest
		}
	}
	return inner
}

func isNameBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '.', ',', ':':
		return true
	}
	return false
}
