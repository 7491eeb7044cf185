package mapper

import (
	"fmt"
	"reflect"
	"sync"
)

// Configuration is the cross-mapper statement registry. Statements register
// under their namespace-qualified id; a bare id also resolves as long as it
// is unambiguous across namespaces.
type Configuration struct {
	mu         sync.RWMutex
	statements map[string]*Statement
	short      map[string][]*Statement
}

func NewConfiguration() *Configuration {
	return &Configuration{
		statements: make(map[string]*Statement),
		short:      make(map[string][]*Statement),
	}
}

// AddMapper registers every statement of a parsed document. A full id that is
// already registered is an error.
func (c *Configuration) AddMapper(m *Mapper) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, st := range m.Statements {
		full := st.FullID()
		if _, exists := c.statements[full]; exists {
			return fmt.Errorf("statement %s is already registered", full)
		}
	}
	for _, st := range m.Statements {
		c.statements[st.FullID()] = st
		c.short[st.ID] = append(c.short[st.ID], st)
	}
	return nil
}

// Statement resolves an id, qualified or bare.
func (c *Configuration) Statement(id string) (*Statement, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if st, ok := c.statements[id]; ok {
		return st, nil
	}
	switch candidates := c.short[id]; len(candidates) {
	case 0:
		return nil, fmt.Errorf("unknown statement %q", id)
	case 1:
		return candidates[0], nil
	default:
		return nil, fmt.Errorf("statement id %q is ambiguous across %d namespaces, qualify it", id, len(candidates))
	}
}

// BindParamType attaches the Go argument type to a statement, narrowing
// placeholder type inference. Documents cannot name Go types, so this is
// done in code after registration. prototype may be a reflect.Type or a
// throwaway value of the argument type.
func (c *Configuration) BindParamType(id string, prototype any) error {
	st, err := c.Statement(id)
	if err != nil {
		return err
	}
	if t, ok := prototype.(reflect.Type); ok {
		st.ParamType = t
		return nil
	}
	st.ParamType = reflect.TypeOf(prototype)
	return nil
}
