/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package record

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/tomoncle/datamapper/errors"
	"github.com/tomoncle/datamapper/naming"
	"github.com/tomoncle/datamapper/types"
)

// DefaultSeparator separates a key prefix from the rest of the key.
const DefaultSeparator = "_"

// Object is a loosely-typed property bag keyed by canonical snake_case field
// names. Callers may address fields by camelCase names; they are translated
// with naming.Underscore before every lookup.
//
// Fields can only be introduced through New or SetFromMap. Get and Set on an
// unknown field fail with errors.ErrFieldNotFound.
type Object struct {
	data map[string]interface{}
	keys []string
}

// New creates an object from a raw key/value mapping such as a database row.
// Keys are canonicalized; the input map is not retained.
func New(data map[string]interface{}) *Object {
	o := &Object{data: make(map[string]interface{}, len(data))}
	o.merge(data)
	return o
}

// Get returns the value of an existing field.
func (o *Object) Get(key string) (interface{}, error) {
	key = naming.Underscore(key)
	v, ok := o.data[key]
	if !ok {
		return nil, errors.NewFieldNotFoundError(key)
	}
	return v, nil
}

// Set overwrites an existing field.
func (o *Object) Set(key string, value interface{}) error {
	key = naming.Underscore(key)
	if _, ok := o.data[key]; !ok {
		return errors.NewFieldNotFoundError(key)
	}
	o.data[key] = value
	return nil
}

// Has reports whether the field exists, even when its value is nil.
func (o *Object) Has(key string) bool {
	_, ok := o.data[naming.Underscore(key)]
	return ok
}

// GetOr returns the field value, or def when the field is nil or absent.
func (o *Object) GetOr(key string, def interface{}) interface{} {
	v, ok := o.data[naming.Underscore(key)]
	if !ok || v == nil {
		return def
	}
	return v
}

// Call invokes a convention accessor by name: "getFirstName" reads
// first_name (an optional argument is the default returned for nil or
// absent values) and "setFirstName" writes it. Any other verb fails with
// errors.ErrInvalidAccessor.
func (o *Object) Call(accessor string, args ...interface{}) (interface{}, error) {
	if len(accessor) <= 3 {
		return nil, errors.NewInvalidAccessorError(accessor)
	}
	verb, name := accessor[:3], accessor[3:]
	switch verb {
	case "get":
		var def interface{}
		if len(args) > 0 {
			def = args[0]
		}
		return o.GetOr(name, def), nil
	case "set":
		if len(args) != 1 {
			return nil, errors.NewArgumentCountMismatchError([]string{naming.Underscore(name)}, len(args))
		}
		return nil, o.Set(name, args[0])
	default:
		return nil, errors.NewInvalidAccessorError(accessor)
	}
}

// RawData returns a shallow copy of the canonical mapping.
func (o *Object) RawData() map[string]interface{} {
	out := make(map[string]interface{}, len(o.data))
	for k, v := range o.data {
		out[k] = v
	}
	return out
}

// ToMap is an alias of RawData used when serializing materialized rows.
func (o *Object) ToMap() map[string]interface{} {
	return o.RawData()
}

// Keys returns the canonical field names in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.data)
}

// DataWithKeyPrefix returns the fields whose key starts with prefix+separator,
// re-keyed without that prefix. An empty separator means DefaultSeparator.
func (o *Object) DataWithKeyPrefix(prefix, separator string) map[string]interface{} {
	if separator == "" {
		separator = DefaultSeparator
	}
	lead := prefix + separator
	out := make(map[string]interface{})
	for _, k := range o.keys {
		if strings.HasPrefix(k, lead) {
			out[k[len(lead):]] = o.data[k]
		}
	}
	return out
}

// SetFromMap merges data into the object; incoming keys win on conflict.
// It is the only way to add new fields to an existing object.
func (o *Object) SetFromMap(data map[string]interface{}) {
	o.merge(data)
}

// ToJSON returns the fields as a JSON column value.
func (o *Object) ToJSON() types.JsonObject {
	return types.JsonObject(o.RawData())
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.data)
}

func (o *Object) merge(data map[string]interface{}) {
	incoming := make([]string, 0, len(data))
	for k := range data {
		incoming = append(incoming, k)
	}
	sort.Strings(incoming)
	for _, k := range incoming {
		key := naming.Underscore(k)
		if _, ok := o.data[key]; !ok {
			o.keys = append(o.keys, key)
		}
		o.data[key] = data[k]
	}
}
