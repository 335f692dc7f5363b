package model

// Range is an inclusive [Min, Max] interval of human-denominated amounts.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}
