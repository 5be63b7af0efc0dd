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

// Model is the contract a data object fulfils to be materialized by a Set
// and persisted by a service. *Object implements it, and so does any struct
// embedding *Object.
type Model interface {
	RawData() map[string]interface{}
	SetFromMap(data map[string]interface{})
	ToMap() map[string]interface{}
}

// Factory builds a data object from a raw row.
type Factory[T Model] func(row map[string]interface{}) T

// ObjectFactory is the default factory, producing plain *Object values.
func ObjectFactory(row map[string]interface{}) *Object {
	return New(row)
}
