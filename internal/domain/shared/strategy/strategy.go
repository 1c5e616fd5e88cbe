package strategy

// Strategy is a named pricing source that can describe itself to operators
type Strategy interface {
	Name() string
	Description() string
}

// BaseStrategy carries the name and description shared by every pricing strategy
type BaseStrategy struct {
	name        string
	description string
}

// NewBaseStrategy creates a new BaseStrategy
func NewBaseStrategy(name, description string) BaseStrategy {
	return BaseStrategy{name: name, description: description}
}

// Name returns the registry name
func (s BaseStrategy) Name() string {
	return s.name
}

// Description returns the strategy description
func (s BaseStrategy) Description() string {
	return s.description
}
