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

package types

// Sentinel number and name reported by an enum value outside its declared set.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
)

// BaseEnum is implemented by the small closed value sets of this module,
// such as finder actions.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Name() string
}

// EnumByName returns the first valid value whose Name equals name.
func EnumByName[E BaseEnum](name string, values ...E) (E, bool) {
	for _, v := range values {
		if v.IsValid() && v.Name() == name {
			return v, true
		}
	}
	var zero E
	return zero, false
}
