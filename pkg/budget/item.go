package budget

// Item is anything with a stable name of key type K and a Value budget.
// Concepts, Tasks, TaskLinks, TermLinks, and premise records all implement
// this (spec §3).
type Item[K comparable] interface {
	Name() K
	Budget() Value
	SetBudget(Value)
}
