// SPDX-License-Identifier: AGPL-3.0-or-later

// Package resolver merges parameter-file defaults, caller-supplied values
// and implicit parent activations into one final, validated argument map.
package resolver

import (
	"sort"

	"github.com/sasrun-org/sasrun/internal/paramfile"
	"github.com/sasrun-org/sasrun/internal/types"
)

// Resolve computes the resolved argument map for a parsed schema and the
// explicit parameters the caller supplied. order fixes the sequence in which
// explicit ids are checked; pass the tokenizer's order, or nil for sorted
// ids. All failures are fatal and reported before any dispatch; a partial
// map is never returned.
func Resolve(s *paramfile.Schema, explicit map[string]string, order []string) (types.ResolvedArgumentMap, error) {
	ids := explicitIDs(explicit, order)

	// Unknown keys fail first so later mandatory-closure errors cannot
	// mask them.
	for _, id := range ids {
		if _, ok := s.Registry[id]; !ok {
			return nil, &UnknownParameterError{ID: id}
		}
	}

	implicit := make(map[string]string)

	for _, parent := range s.ClosureParents {
		attributed := s.Closure[parent]
		subs := s.MandatoryChildren(parent)
		selfMandatory := len(attributed) != len(subs)
		_, parentSupplied := explicit[parent]

		if selfMandatory && !parentSupplied && s.Registry[parent].Default == "" {
			return nil, &MissingMandatoryError{ID: parent}
		}

		if len(subs) == 0 {
			continue
		}

		supplied := 0
		var missing []string
		for _, c := range subs {
			if _, ok := explicit[c]; ok {
				supplied++
			} else {
				missing = append(missing, c)
			}
		}

		// Supplying the parent or any of its mandatory children
		// activates the parent; all mandatory children must then be
		// present.
		if (parentSupplied || supplied > 0) && len(missing) > 0 {
			return nil, &MissingSubparameterError{Parent: parent, Missing: missing[0]}
		}

		if !parentSupplied && supplied == len(subs) {
			val, err := activationValue(s.Registry[parent], parent)
			if err != nil {
				return nil, err
			}
			if val != "" {
				implicit[parent] = val
			}
		}
	}

	inferOptionalParents(s, explicit, ids, implicit)

	out := make(types.ResolvedArgumentMap, len(s.Registry))
	for id, spec := range s.Registry {
		out[id] = types.ResolvedValue{Value: spec.Default, Origin: types.OriginDefault}
	}
	for id, v := range implicit {
		out[id] = types.ResolvedValue{Value: v, Origin: types.OriginImplicit}
	}
	for id, v := range explicit {
		out[id] = types.ResolvedValue{Value: v, Origin: types.OriginExplicit}
	}
	return out, nil
}

// activationValue computes the implicit value for a parent whose mandatory
// children were all supplied. Boolean parents flip their default; enumerated
// string parents take the first alternative left after removing the default.
// The alternatives list is read-only input: the remainder is computed fresh
// on every resolution so repeated resolutions against one schema agree.
func activationValue(spec types.ParameterSpec, parent string) (string, error) {
	switch spec.Type {
	case types.TypeBool:
		switch spec.Default {
		case "no":
			return "yes", nil
		case "yes":
			return "no", nil
		default:
			return "", &InconsistentSchemaError{Parent: parent, Reason: "boolean default is neither yes nor no"}
		}
	case types.TypeString:
		if len(spec.Alternatives) == 0 {
			return "", nil
		}
		for _, alt := range spec.Alternatives {
			if alt != spec.Default {
				return alt, nil
			}
		}
		return "", &InconsistentSchemaError{Parent: parent, Reason: "no alternative value left after removing the default"}
	default:
		// Parents of other types keep their default; nothing to infer.
		return "", nil
	}
}

// inferOptionalParents applies the implicit flip to boolean parents outside
// the mandatory closure: when a caller sets a sub-parameter of a parent and
// neither the parent nor that sub-parameter is mandatory, the parent cannot
// keep its default.
func inferOptionalParents(s *paramfile.Schema, explicit map[string]string, ids []string, implicit map[string]string) {
	mandatory := make(map[string]struct{}, len(s.Mandatory))
	for _, m := range s.Mandatory {
		mandatory[m] = struct{}{}
	}

	var parents []string
	for _, id := range s.Order {
		if _, isMand := mandatory[id]; isMand || len(s.Tree[id]) == 0 {
			continue
		}
		for _, sub := range s.Tree[id] {
			if _, isMand := mandatory[sub]; !isMand {
				parents = append(parents, id)
				break
			}
		}
	}

	for _, a := range ids {
		if _, isMand := mandatory[a]; isMand {
			continue
		}
		for _, parent := range parents {
			if !containsString(s.Tree[parent], a) {
				continue
			}
			if _, ok := explicit[parent]; ok {
				break
			}
			if _, ok := implicit[parent]; ok {
				break
			}
			spec := s.Registry[parent]
			if spec.Type == types.TypeBool {
				switch spec.Default {
				case "no":
					implicit[parent] = "yes"
				case "yes":
					implicit[parent] = "no"
				}
			}
			break
		}
	}
}

func explicitIDs(explicit map[string]string, order []string) []string {
	if len(order) > 0 {
		return order
	}
	ids := make([]string, 0, len(explicit))
	for id := range explicit {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
