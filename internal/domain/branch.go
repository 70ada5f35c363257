package domain

// Branch is a physical location (table filial). Every user has a home branch.
type Branch struct {
	ID      int64
	Name    string
	Address *string
}
