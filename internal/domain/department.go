package domain

// Department is static reference data (table setor). Tickets carry two
// department references: origin and destination.
type Department struct {
	ID   int64
	Name string
}
