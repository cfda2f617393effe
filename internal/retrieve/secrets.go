package retrieve

import "github.com/systmms/keymaster/internal/secure"

// Secrets is the result of a retrieval: resolved names in request order
// mapped to sealed values. Call Destroy once the values have been used.
type Secrets struct {
	names  []string
	values map[string]*secure.Value
}

func (s *Secrets) add(name string, v *secure.Value) {
	s.names = append(s.names, name)
	s.values[name] = v
}

// Names returns the resolved names in the order they were requested.
func (s *Secrets) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Get returns the sealed value for name.
func (s *Secrets) Get(name string) (*secure.Value, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[name]
	return v, ok
}

// Len returns the number of resolved secrets.
func (s *Secrets) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Each calls fn with every resolved secret's plaintext in request order,
// stopping at the first error.
func (s *Secrets) Each(fn func(name string, plain []byte) error) error {
	for _, name := range s.Names() {
		err := s.values[name].Reveal(func(plain []byte) error {
			return fn(name, plain)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Destroy wipes every value. It is safe to call more than once.
func (s *Secrets) Destroy() {
	if s == nil {
		return
	}
	for _, v := range s.values {
		v.Destroy()
	}
}
