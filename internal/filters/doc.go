// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters selects flattened settings rows with --filter expressions.
//
// A spec is a comma-delimited (TFSET_FILTER_DELIM overrides the delimiter)
// list of key-operator-target expressions. Every expression must hold for a
// row to be kept. The keys are the row fields, "path" and "value".
//
// Operators, each negated by a leading "!":
//
//   - = : exact match (numeric for numbers)
//   - ~ : case-insensitive match
//   - ^ : prefix match
//   - < : less than (numeric for numbers)
//   - > : greater than (numeric for numbers)
//   - @ : contains substring, or membership for lists and nodes
//   - / : regular expression match
//
// Examples:
//
//   - "path^app." : settings under app
//   - "value!=" : settings whose value is not empty
//   - "path/port$,value>1024" : ports above 1024
package filters
