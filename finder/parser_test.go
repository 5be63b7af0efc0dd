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

package finder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/datamapper/errors"
	"github.com/tomoncle/datamapper/finder"
	"github.com/tomoncle/datamapper/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		action  finder.Action
		by      bool
		columns []string
	}{
		{"find", finder.ActionFind, false, nil},
		{"fetch", finder.ActionFetch, false, nil},
		{"findByName", finder.ActionFind, true, []string{"name"}},
		{"fetchByName", finder.ActionFetch, true, []string{"name"}},
		{"fetchByProductIdAndColor", finder.ActionFetch, true, []string{"product_id", "color"}},
		{"findByFirstNameAndLastNameAndAge", finder.ActionFind, true, []string{"first_name", "last_name", "age"}},
		{"findByuserID", finder.ActionFind, true, []string{"user_id"}},
		{"fetchAll", finder.ActionFetch, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := finder.Parse(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, inv.Name)
			assert.Equal(t, tt.action, inv.Action)
			assert.Equal(t, tt.by, inv.By)
			assert.Equal(t, tt.columns, inv.Columns)
		})
	}
}

func TestParseUnknownOperation(t *testing.T) {
	for _, name := range []string{"", "loadAll", "Find", "getName", "findBy", "findByNameAnd", "fetchByAndName"} {
		_, err := finder.Parse(name)
		assert.True(t, errors.IsUnknownOperation(err), name)
	}
}

// The separator split is literal: a column whose name contains "And" at a
// camelCase boundary is split in two.
func TestParseLiteralSeparator(t *testing.T) {
	inv, err := finder.Parse("findByBrandAndModel")
	require.NoError(t, err)
	assert.Equal(t, []string{"brand", "model"}, inv.Columns)

	inv, err = finder.Parse("findByRockAndRoll")
	require.NoError(t, err)
	assert.Equal(t, []string{"rock", "roll"}, inv.Columns)
}

func TestAction(t *testing.T) {
	var _ types.BaseEnum = finder.ActionFetch

	assert.True(t, finder.ActionFind.IsValid())
	assert.Equal(t, "fetch", finder.ActionFetch.String())
	assert.Equal(t, finder.ActionFind, finder.ParseAction("find"))
	assert.Equal(t, finder.ActionUnknown, finder.ParseAction("load"))
	assert.False(t, finder.ActionUnknown.IsValid())
	assert.Equal(t, types.IllegalValue, finder.ActionUnknown.Number())
	assert.Equal(t, types.IllegalName, finder.ActionUnknown.Name())
}
