// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package hclexpr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/tryfunc"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/tfctl/tfset/internal/log"
)

// Eval parses and evaluates a single HCL expression, such as `["a", "b"]`,
// `{ port = 8080 }` or `upper("x")`, and returns it as a Go value.
func Eval(expression string) (any, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(expression), "expr", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse expression: %s", diags.Error())
	}

	val, diags := expr.Value(evalContext())
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate expression: %s", diags.Error())
	}
	log.Tracef("expression evaluated: type=%s", val.Type().FriendlyName())

	return ToGo(val), nil
}

// DecodeFile evaluates every top-level attribute of an HCL document. Blocks
// are not supported; nested values are written as object expressions.
func DecodeFile(src []byte, filename string) (map[string]any, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %s", filename, diags.Error())
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read attributes of %s: %s", filename, diags.Error())
	}

	ctx := evalContext()
	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(ctx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate %s in %s: %s", name, filename, diags.Error())
		}
		out[name] = ToGo(val)
	}
	log.Debugf("hcl decoded: file=%s, attrs=%d", filename, len(out))

	return out, nil
}

// ToGo converts a cty value into nil, bool, int64, float64, string, []any or
// map[string]any.
func ToGo(val cty.Value) any {
	if val.IsNull() || !val.IsKnown() {
		return nil
	}

	ty := val.Type()
	switch {
	case ty == cty.Bool:
		return val.True()
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == 0 {
				return i
			}
		}
		f, _ := bf.Float64()
		return f
	case ty == cty.String:
		return val.AsString()
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		result := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			result = append(result, ToGo(elem))
		}
		return result
	case ty.IsObjectType() || ty.IsMapType():
		result := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			result[key.AsString()] = ToGo(elem)
		}
		return result
	default:
		return fmt.Sprintf("%#v", val)
	}
}

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: Functions(),
	}
}

// Functions returns the function table available to expressions.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"abs":    stdlib.AbsoluteFunc,
		"ceil":   stdlib.CeilFunc,
		"floor":  stdlib.FloorFunc,
		"max":    stdlib.MaxFunc,
		"min":    stdlib.MinFunc,
		"pow":    stdlib.PowFunc,
		"signum": stdlib.SignumFunc,

		"chomp":      stdlib.ChompFunc,
		"format":     stdlib.FormatFunc,
		"indent":     stdlib.IndentFunc,
		"join":       stdlib.JoinFunc,
		"lower":      stdlib.LowerFunc,
		"replace":    stdlib.ReplaceFunc,
		"split":      stdlib.SplitFunc,
		"substr":     stdlib.SubstrFunc,
		"title":      stdlib.TitleFunc,
		"trim":       stdlib.TrimFunc,
		"trimprefix": stdlib.TrimPrefixFunc,
		"trimspace":  stdlib.TrimSpaceFunc,
		"trimsuffix": stdlib.TrimSuffixFunc,
		"upper":      stdlib.UpperFunc,

		"coalesce": stdlib.CoalesceFunc,
		"concat":   stdlib.ConcatFunc,
		"contains": stdlib.ContainsFunc,
		"distinct": stdlib.DistinctFunc,
		"element":  stdlib.ElementFunc,
		"flatten":  stdlib.FlattenFunc,
		"keys":     stdlib.KeysFunc,
		"length":   stdlib.LengthFunc,
		"lookup":   stdlib.LookupFunc,
		"merge":    stdlib.MergeFunc,
		"range":    stdlib.RangeFunc,
		"reverse":  stdlib.ReverseListFunc,
		"slice":    stdlib.SliceFunc,
		"sort":     stdlib.SortFunc,
		"values":   stdlib.ValuesFunc,
		"zipmap":   stdlib.ZipmapFunc,

		"csvdecode":  stdlib.CSVDecodeFunc,
		"jsondecode": stdlib.JSONDecodeFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
		"parseint":   stdlib.ParseIntFunc,

		"regex":    stdlib.RegexFunc,
		"regexall": stdlib.RegexAllFunc,

		"try": tryfunc.TryFunc,
		"can": tryfunc.CanFunc,
	}
}
