package compare

import (
	"sync"

	"asset-reconciler/core/rules"
)

// EqualFunc decides whether two normalized values are equivalent for a field.
type EqualFunc func(a, b string, cfg *FieldConfig) bool

// Strategy is a named equality rule for fields of one data type.
type Strategy struct {
	Name     string
	DataType rules.DataType
	// Applies selects the fields handled by this strategy.
	Applies func(field string, p *Profile) bool
	Equal   EqualFunc

	// builtin marks the numeric and date fallbacks that compare whole columns.
	builtin bool
}

// Registry resolves the strategy for a (data type, field) pair. Strategies are tried in
// registration order and the first one that applies wins; otherwise the data type's
// fallback is used.
type Registry struct {
	mu         sync.RWMutex
	strategies []Strategy
	fallbacks  map[rules.DataType]Strategy
}

// NewRegistry returns a registry with only the built-in fallbacks.
func NewRegistry() *Registry {
	return &Registry{
		fallbacks: map[rules.DataType]Strategy{
			rules.Text:    {Name: "text", DataType: rules.Text, Equal: textEqual},
			rules.Numeric: {Name: "numeric", DataType: rules.Numeric, Equal: numericEqual, builtin: true},
			rules.Date:    {Name: "date", DataType: rules.Date, Equal: dateEqual, builtin: true},
		},
	}
}

// Register appends a strategy with the lowest priority among the registered ones.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	r.strategies = append(r.strategies, s)
	r.mu.Unlock()
}

// Override inserts a strategy ahead of every registered one.
func (r *Registry) Override(s Strategy) {
	r.mu.Lock()
	r.strategies = append([]Strategy{s}, r.strategies...)
	r.mu.Unlock()
}

// SetFallback replaces the fallback for a data type.
func (r *Registry) SetFallback(dt rules.DataType, fn EqualFunc) {
	r.mu.Lock()
	r.fallbacks[dt] = Strategy{Name: string(dt), DataType: dt, Equal: fn}
	r.mu.Unlock()
}

// Resolve returns the strategy for a field and whether it is the type fallback.
func (r *Registry) Resolve(dt rules.DataType, field string, p *Profile) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.strategies {
		if s.DataType == dt && s.Applies != nil && s.Applies(field, p) {
			return s, false
		}
	}
	if fb, ok := r.fallbacks[dt]; ok {
		return fb, true
	}
	return r.fallbacks[rules.Text], true
}

// Names lists registered strategy names in priority order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		out[i] = s.Name
	}
	return out
}

// DefaultRegistry registers the text overrides in priority order: regulatory attribute,
// boolean synonyms, depreciation method, enum, asset category, combination membership.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Strategy{
		Name:     "regulatory",
		DataType: rules.Text,
		Applies:  func(f string, p *Profile) bool { return p.RegulatoryField != "" && f == p.RegulatoryField },
		Equal:    regulatoryEqual,
	})
	r.Register(Strategy{
		Name:     "boolean",
		DataType: rules.Text,
		Applies:  func(f string, p *Profile) bool { return contains(p.BooleanFields, f) },
		Equal:    booleanEqual,
	})
	r.Register(Strategy{
		Name:     "depreciation_method",
		DataType: rules.Text,
		Applies: func(f string, p *Profile) bool {
			return p.DepreciationMethodField != "" && f == p.DepreciationMethodField
		},
		Equal: depreciationMethodEqual,
	})
	r.Register(Strategy{
		Name:     "enum",
		DataType: rules.Text,
		Applies:  func(f string, p *Profile) bool { return p.EnumField != "" && f == p.EnumField },
		Equal:    enumEqual,
	})
	r.Register(Strategy{
		Name:     "category",
		DataType: rules.Text,
		Applies:  func(f string, p *Profile) bool { return p.CategoryField != "" && f == p.CategoryField },
		Equal:    categoryEqual,
	})
	r.Register(Strategy{
		Name:     "combo",
		DataType: rules.Text,
		Applies:  func(f string, p *Profile) bool { return contains(p.ComboFields, f) },
		Equal:    comboEqual,
	})
	return r
}
