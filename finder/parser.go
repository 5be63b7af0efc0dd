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

import (
	"regexp"
	"strings"

	"github.com/tomoncle/datamapper/errors"
	"github.com/tomoncle/datamapper/naming"
)

// columnSeparator splits the column part of a By operation. The split is a
// literal substring split, so a column whose camelCase name contains "And"
// at a word boundary cannot be addressed by name.
const columnSeparator = "And"

var operationPattern = regexp.MustCompile(`^(find|fetch)(By)?`)

// Invocation is a parsed finder operation.
type Invocation struct {
	Name    string
	Action  Action
	Columns []string // canonical column names; empty means primary key
	By      bool
}

// Parse resolves names such as "find", "fetch", "findByName" and
// "fetchByProductIdAndColor".
func Parse(name string) (Invocation, error) {
	m := operationPattern.FindStringSubmatch(name)
	if m == nil {
		return Invocation{}, errors.NewUnknownOperationError(name, "")
	}

	inv := Invocation{Name: name, Action: ParseAction(m[1]), By: m[2] != ""}
	if !inv.By {
		return inv, nil
	}

	rest := name[len(m[0]):]
	if rest == "" {
		return Invocation{}, errors.NewUnknownOperationError(name, "no column after By")
	}
	for _, segment := range strings.Split(rest, columnSeparator) {
		if segment == "" {
			return Invocation{}, errors.NewUnknownOperationError(name, "empty column name")
		}
		inv.Columns = append(inv.Columns, naming.Underscore(segment))
	}
	return inv, nil
}
