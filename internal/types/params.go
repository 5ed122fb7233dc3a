// SPDX-License-Identifier: AGPL-3.0-or-later
package types

// ParameterType tags the declared type of a task parameter. Values stay
// plain strings on the wire regardless of declared type; coercion is the
// dispatcher's concern, not the resolver's.
type ParameterType string

const (
	TypeBool     ParameterType = "bool"
	TypeInt      ParameterType = "int"
	TypeReal     ParameterType = "real"
	TypeString   ParameterType = "string"
	TypeFilename ParameterType = "filename"
)

// ParameterSpec describes one declared parameter or sub-parameter from a
// task parameter file.
type ParameterSpec struct {
	ID          string
	Type        ParameterType
	Mandatory   bool
	List        bool
	Default     string
	Description string
	Constraints string
	// Alternatives holds the ordered CASE/ITEM literals declared for a
	// string parameter with an enumerated choice. Empty otherwise.
	Alternatives []string
}

// Origin records how a resolved value came to be.
type Origin int

const (
	// OriginDefault means the value is the parameter file default.
	OriginDefault Origin = iota
	// OriginImplicit means the value was inferred from the presence of a
	// sub-parameter (implicit activation).
	OriginImplicit
	// OriginExplicit means the caller supplied the value.
	OriginExplicit
)

func (o Origin) String() string {
	switch o {
	case OriginImplicit:
		return "implicit"
	case OriginExplicit:
		return "explicit"
	default:
		return "default"
	}
}

// ResolvedValue is one entry of the resolved argument map.
type ResolvedValue struct {
	Value  string
	Origin Origin
}

// Explicit reports whether the caller supplied the value. Downstream
// logging and re-invocation rely on this flag.
func (v ResolvedValue) Explicit() bool { return v.Origin == OriginExplicit }

// ResolvedArgumentMap is the final, fully-defaulted, validated id -> value
// mapping handed to task execution. It carries one entry per parameter
// declared in the parameter file.
type ResolvedArgumentMap map[string]ResolvedValue

// Values flattens the map to plain id -> value strings.
func (m ResolvedArgumentMap) Values() map[string]string {
	out := make(map[string]string, len(m))
	for id, v := range m {
		out[id] = v.Value
	}
	return out
}
