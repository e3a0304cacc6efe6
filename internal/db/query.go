package db

// Operator is a query filter operator.
type Operator string

const (
	OpEqual         Operator = "=="
	OpArrayContains Operator = "array-contains"
)

// Direction is the sort direction of an order-by.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Filter is one condition of a Query.
type Filter struct {
	Field string
	Op    Operator
	Value interface{}
}

// Query is a composable collection query: filters are ANDed, at most one
// order-by applies, and Limit <= 0 means unlimited. Query values are
// immutable; each builder method returns a copy.
type Query struct {
	Filters   []Filter
	OrderBy   string
	Direction Direction
	Limit     int
}

// Where adds an equality filter.
func (q Query) Where(field string, value interface{}) Query {
	q.Filters = append(append([]Filter{}, q.Filters...), Filter{Field: field, Op: OpEqual, Value: value})
	return q
}

// WhereArrayContains adds an array-membership filter.
func (q Query) WhereArrayContains(field string, value interface{}) Query {
	q.Filters = append(append([]Filter{}, q.Filters...), Filter{Field: field, Op: OpArrayContains, Value: value})
	return q
}

// Order sets the order-by field and direction.
func (q Query) Order(field string, dir Direction) Query {
	q.OrderBy = field
	q.Direction = dir
	return q
}

// Take limits the number of results.
func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}
