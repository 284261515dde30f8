package warden

// WildcardField is the field name that registers a type-level fallback
// rule, matching any field of the type not otherwise listed.
const WildcardField = "*"

// Ruleset maps (type, field) pairs to rules. It is built once,
// single-threaded, at process initialization and treated as immutable
// afterwards; concurrent lookups and Authorize calls need no
// synchronization. Registering after initialization is not supported.
type Ruleset struct {
	types map[string]map[string]Rule
	hook  EvalHook
}

// Option configures a Ruleset.
type Option func(*Ruleset)

// WithEvalHook sets the hook that receives the internal detail of
// every denial. The hook is where the caller logs rule failures; that
// detail is never part of the error returned to the API consumer.
func WithEvalHook(hook EvalHook) Option {
	return func(s *Ruleset) {
		s.hook = hook
	}
}

// NewRuleset returns an empty ruleset. Every lookup on an empty
// ruleset resolves to the built-in deny-by-default rule.
func NewRuleset(opts ...Option) *Ruleset {
	s := &Ruleset{types: make(map[string]map[string]Rule)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register inserts or overwrites the rule for the given type and
// field. Registering WildcardField sets the type-level fallback.
// Register must only be called during initialization.
func (s *Ruleset) Register(object, field string, rule Rule) {
	if s.types == nil {
		s.types = make(map[string]map[string]Rule)
	}
	fields, ok := s.types[object]
	if !ok {
		fields = make(map[string]Rule)
		s.types[object] = fields
	}
	fields[field] = rule
}

// RegisterType sets the type-level fallback rule, shorthand for
// Register(object, WildcardField, rule).
func (s *Ruleset) RegisterType(object string, rule Rule) {
	s.Register(object, WildcardField, rule)
}

// Lookup returns the applicable rule for the given type and field, in
// order of precedence: the exact field match, else the type-level
// wildcard, else the built-in deny-by-default rule. Lookup never
// returns nil.
func (s *Ruleset) Lookup(object, field string) Rule {
	if fields, ok := s.types[object]; ok {
		if rule, ok := fields[field]; ok {
			return rule
		}
		if rule, ok := fields[WildcardField]; ok {
			return rule
		}
	}
	return fixedDecision{Deny}
}
