// SPDX-License-Identifier: AGPL-3.0-or-later
package resolver

import "fmt"

// UnknownParameterError reports a supplied parameter id that is not declared
// in the parameter file. It is raised before any mandatory checks run.
type UnknownParameterError struct {
	ID string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("parameter %s is not defined in the parameter file", e.ID)
}

// MissingMandatoryError reports a mandatory top-level parameter that was
// never supplied.
type MissingMandatoryError struct {
	ID string
}

func (e *MissingMandatoryError) Error() string {
	return fmt.Sprintf("missing mandatory parameter %s", e.ID)
}

// MissingSubparameterError reports an activated parent whose mandatory
// sub-parameter was not supplied.
type MissingSubparameterError struct {
	Parent  string
	Missing string
}

func (e *MissingSubparameterError) Error() string {
	return fmt.Sprintf("mandatory sub-parameter %s of %s must also be present", e.Missing, e.Parent)
}

// InconsistentSchemaError reports a parameter file the resolver cannot act
// on, e.g. an enumerated parent with no alternative left once the default is
// removed, or a boolean parent whose default is neither yes nor no.
type InconsistentSchemaError struct {
	Parent string
	Reason string
}

func (e *InconsistentSchemaError) Error() string {
	return fmt.Sprintf("inconsistent parameter file: %s: %s", e.Parent, e.Reason)
}
