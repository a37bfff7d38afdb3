package config

// Merge combines base and overlay into a new Mapping.
//
// For every key present in either input:
//  1. present in only one input: the value is copied as-is
//  2. both values are sequences: base elements followed by overlay elements,
//     without de-duplication
//  3. both values are mappings: merged recursively with these same rules
//  4. anything else (both scalars, or the shapes disagree): the overlay value
//     wins and the base value is discarded
//
// Rule 4 never produces an error. Neither input is modified and the result
// shares no maps or slices with them. A *MalformedInputError is returned,
// with no partial result, when either input references itself or holds a nil
// entry.
func Merge(base, overlay Mapping) (Mapping, error) {
	b, err := cloneMapping(base)
	if err != nil {
		return nil, err
	}
	o, err := cloneMapping(overlay)
	if err != nil {
		return nil, err
	}
	return mergeMapping(b, o), nil
}

// MergeAll folds Merge over fragments from left to right, so later fragments
// take precedence over earlier ones. With no fragments the result is an empty
// Mapping.
func MergeAll(fragments ...Mapping) (Mapping, error) {
	out := Mapping{}
	for _, f := range fragments {
		merged, err := Merge(out, f)
		if err != nil {
			return nil, err
		}
		out = merged
	}
	return out, nil
}

// MergeMaps is Merge for untyped maps, as returned by ConfigSource.Load.
func MergeMaps(base, overlay map[string]any) (map[string]any, error) {
	b, err := MappingFrom(base)
	if err != nil {
		return nil, err
	}
	o, err := MappingFrom(overlay)
	if err != nil {
		return nil, err
	}
	return mergeMapping(b, o).ToMap(), nil
}

// mergeMapping merges two private, acyclic copies. It consumes both
// arguments and may reuse their storage.
func mergeMapping(base, overlay Mapping) Mapping {
	out := make(Mapping, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, ov := range overlay {
		bv, ok := out[k]
		if !ok {
			out[k] = ov
			continue
		}
		out[k] = mergeValue(bv, ov)
	}
	return out
}

func mergeValue(base, overlay Value) Value {
	switch o := overlay.(type) {
	case Sequence:
		if b, ok := base.(Sequence); ok {
			out := make(Sequence, 0, len(b)+len(o))
			out = append(out, b...)
			return append(out, o...)
		}
	case Mapping:
		if b, ok := base.(Mapping); ok {
			return mergeMapping(b, o)
		}
	}
	return overlay
}

func cloneMapping(m Mapping) (Mapping, error) {
	if len(m) == 0 {
		return Mapping{}, nil
	}
	v, err := newConverter().fromValue(m, "")
	if err != nil {
		return nil, err
	}
	return v.(Mapping), nil
}
