package runner

import (
	"fmt"
	"reflect"

	"github.com/fetchplan/fetchplan/internal/ast"
	"github.com/fetchplan/fetchplan/internal/cache"
)

// rewrite performs the cache-driven collapse step of spec §4.6: every Req
// satisfied by c becomes Pure, and Join/Bind nodes whose children are now
// Pure collapse by applying their combiner or continuation. It never
// dispatches a fetch itself — that only happens between rewrite passes,
// in RunEnv's round loop.
func rewrite(n ast.Node, c cache.Cache, typeCheck bool) ast.Node {
	switch v := n.(type) {
	case ast.Pure:
		return v
	case ast.Err:
		return v
	case ast.Req:
		val, ok := c.Get(v.Key())
		if !ok {
			return v
		}
		if typeCheck && v.ValueType != nil {
			if got := reflect.TypeOf(val); got != v.ValueType {
				panic(fmt.Sprintf("fetchplan: cache value for source %q identity %v has type %s, want %s",
					v.Src.Name(), v.Identity, got, v.ValueType))
			}
		}
		return ast.Pure{Value: val}
	case ast.Join:
		left := rewrite(v.Left, c, typeCheck)
		right := rewrite(v.Right, c, typeCheck)
		if le, ok := left.(ast.Err); ok {
			return le
		}
		if re, ok := right.(ast.Err); ok {
			return re
		}
		lp, lok := left.(ast.Pure)
		rp, rok := right.(ast.Pure)
		if lok && rok {
			return ast.Pure{Value: v.Combine(lp.Value, rp.Value)}
		}
		return ast.Join{Left: left, Right: right, Combine: v.Combine}
	case ast.Bind:
		left := rewrite(v.Left, c, typeCheck)
		if le, ok := left.(ast.Err); ok {
			return le
		}
		if lp, ok := left.(ast.Pure); ok {
			return rewrite(v.K(lp.Value), c, typeCheck)
		}
		return ast.Bind{Left: left, K: v.K}
	default:
		panic(fmt.Sprintf("fetchplan: unknown ast.Node variant %T", n))
	}
}
