// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package schema

// Type is the closed set of column type tags.
type Type uint8

const (
	// AnyType places no constraint on the column's values.
	AnyType Type = iota
	// IntType is a signed integer column.
	IntType
	// FloatType is a floating-point column.
	FloatType
	// StringType is a string column.
	StringType
	// BoolType is a boolean column.
	BoolType
	// DateType covers date and datetime columns.
	DateType
)

// String returns the canonical name of this type tag.
func (t Type) String() string {
	switch t {
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case StringType:
		return "str"
	case BoolType:
		return "bool"
	case DateType:
		return "date"
	default:
		return "any"
	}
}

// ParseType maps a host-language type name onto its type tag, or fails for
// names outside the closed set.
func ParseType(name string) (Type, bool) {
	switch name {
	case "int":
		return IntType, true
	case "float":
		return FloatType, true
	case "str", "string":
		return StringType, true
	case "bool":
		return BoolType, true
	case "date", "datetime", "Timestamp":
		return DateType, true
	case "Any", "object":
		return AnyType, true
	}
	//
	return AnyType, false
}
