package service

import "orgmessages/internal/models"

// Result is the outcome of every MessageService operation. The set of
// implementations is closed by the unexported marker method; callers switch
// on the concrete type and must keep a default branch.
type Result interface {
	result()
}

type Success[T any] struct {
	Value T
}

type Created struct {
	Value models.Message
}

type Updated struct{}

type Deleted struct{}

type NotFound struct {
	Reason string
}

type Conflict struct {
	Reason string
}

// ValidationError maps a field name to every violation found for it.
type ValidationError struct {
	Errors map[string][]string
}

func (Success[T]) result()      {}
func (Created) result()         {}
func (Updated) result()         {}
func (Deleted) result()         {}
func (NotFound) result()        {}
func (Conflict) result()        {}
func (ValidationError) result() {}
