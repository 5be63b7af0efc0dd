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

package naming

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// Underscore converts a camelCase identifier to its canonical snake_case
// form, e.g. firstName to first_name.
//
// A separator is inserted only where an ASCII uppercase letter directly
// follows an ASCII lowercase letter, so runs of capitals stay together
// (userID becomes user_id, HTTPServer becomes httpserver). The result is
// lowercased as a whole.
func Underscore(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if i > 0 && isUpper(c) && isLower(s[i-1]) {
			b.WriteByte('_')
		}
		b.WriteByte(c)
	}
	return strings.ToLower(b.String())
}

// TableName returns the conventional table name for a service name:
// "Products" maps to "products" and "ProductColors" to "product_colors".
func TableName(service string) string {
	return strcase.ToSnake(service)
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
