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

package finder

import "github.com/tomoncle/datamapper/types"

// Action is the verb of a finder operation.
type Action int

const (
	ActionUnknown Action = iota
	// ActionFind returns the first matching object, or nothing.
	ActionFind
	// ActionFetch returns every matching object as a result set.
	ActionFetch
)

var _ types.BaseEnum = ActionFind

var actionNames = map[Action]string{
	ActionFind:  "find",
	ActionFetch: "fetch",
}

func (a Action) IsValid() bool {
	_, ok := actionNames[a]
	return ok
}

func (a Action) Number() int {
	if !a.IsValid() {
		return types.IllegalValue
	}
	return int(a)
}

func (a Action) String() string {
	return a.Name()
}

func (a Action) Name() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return types.IllegalName
}

// ParseAction maps "find" and "fetch" to their Action.
func ParseAction(s string) Action {
	if a, ok := types.EnumByName(s, ActionFind, ActionFetch); ok {
		return a
	}
	return ActionUnknown
}
