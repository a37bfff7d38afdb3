package config

import (
	"reflect"
	"sort"
	"strings"
)

// diffEvent builds the Event published after a reload. Changed keys are the
// top-level `config` tag names of the struct fields that differ, falling
// back to the Go field name for untagged fields. Non-struct values produce
// an Event without changed keys.
func diffEvent(old, new any) Event {
	evt := Event{OldConfig: old, NewConfig: new}
	if old == nil || new == nil {
		return evt
	}

	oldVal := reflect.Indirect(reflect.ValueOf(old))
	newVal := reflect.Indirect(reflect.ValueOf(new))
	if oldVal.Kind() != reflect.Struct || oldVal.Type() != newVal.Type() {
		return evt
	}

	typ := oldVal.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		if !reflect.DeepEqual(oldVal.Field(i).Interface(), newVal.Field(i).Interface()) {
			evt.ChangedKeys = append(evt.ChangedKeys, keyName(field))
		}
	}
	return evt
}

func keyName(field reflect.StructField) string {
	tag, _, _ := strings.Cut(field.Tag.Get("config"), ",")
	if tag == "" || tag == "-" {
		return field.Name
	}
	return tag
}

// ChangedKeys returns, in sorted order, the top-level keys whose values
// differ between old and new, including keys present in only one of them.
func ChangedKeys(old, new Mapping) []string {
	var keys []string
	for k, ov := range old {
		if nv, ok := new[k]; !ok || !Equal(ov, nv) {
			keys = append(keys, k)
		}
	}
	for k := range new {
		if _, ok := old[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
