package typesystem

import "fmt"

// UnifyError is returned by Unify/Bind on failure. format_message-style
// prose rendering lives in the analyzer (§4.2 "Natural-language error
// rendering"); this type only carries the structured mismatch.
type UnifyError struct {
	Expected Type
	Got      Type
	Reason   string
}

func (e *UnifyError) Error() string {
	if e.Expected == nil || e.Got == nil {
		return e.Reason
	}
	return fmt.Sprintf("cannot unify %s with %s: %s", e.Expected.String(), e.Got.String(), e.Reason)
}

func errMismatch(expected, got Type, reason string) error {
	return &UnifyError{Expected: expected, Got: got, Reason: reason}
}

// InfiniteTypeError is the occurs-check failure (§4.2 "Occurs check").
type InfiniteTypeError struct {
	Var TVar
	In  Type
}

func (e *InfiniteTypeError) Error() string {
	return fmt.Sprintf("infinite type: %s occurs in %s", e.Var.String(), e.In.String())
}
