// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package hclexpr evaluates HCL expressions and attribute-only HCL documents
// into plain Go values. It backs `tfset set --expr` and .hcl defaults files.
package hclexpr
