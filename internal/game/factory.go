package game

// Factory resolves a Type to its Rules implementation. Rules values are
// stateless, so the factory builds each one once and hands out the shared
// instance.
type Factory struct {
	rules map[Type]Rules
}

func NewFactory(nimCfg NimConfig) *Factory {
	return &Factory{
		rules: map[Type]Rules{
			TypeNim: NewNimRules(nimCfg),
		},
	}
}

func (f *Factory) Rules(t Type) (Rules, error) {
	r, ok := f.rules[t]
	if !ok {
		return nil, ErrInvalidGameType
	}
	return r, nil
}

// Types lists the supported game types.
func (f *Factory) Types() []Type {
	out := make([]Type, 0, len(f.rules))
	for t := range f.rules {
		out = append(out, t)
	}
	return out
}
