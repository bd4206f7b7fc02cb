package runner

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/fetchplan/fetchplan/internal/ast"
	"github.com/fetchplan/fetchplan/internal/cache"
)

type stubSource struct{ name string }

func (s stubSource) Name() string { return s.name }
func (s stubSource) FetchOne(ctx context.Context, id any) (any, bool, error) {
	return id, true, nil
}
func (s stubSource) FetchMany(ctx context.Context, ids []any) (map[any]any, error) {
	return nil, nil
}

func TestRewriteLeavesUncachedReqUntouched(t *testing.T) {
	n := ast.Req{Src: stubSource{"s"}, Identity: 1}
	got := rewrite(n, cache.NewInMemory(), false)
	if _, ok := got.(ast.Req); !ok {
		t.Fatalf("rewrite() = %T, want it to remain an ast.Req", got)
	}
}

func TestRewriteCollapsesCachedReqToPure(t *testing.T) {
	c := cache.NewInMemory()
	c.Put(ast.CacheKey{Source: "s", Identity: 1}, "value")

	got := rewrite(ast.Req{Src: stubSource{"s"}, Identity: 1}, c, false)
	p, ok := got.(ast.Pure)
	if !ok || p.Value != "value" {
		t.Fatalf("rewrite() = %#v, want Pure{\"value\"}", got)
	}
}

func TestRewriteJoinCollapsesWhenBothCached(t *testing.T) {
	c := cache.NewInMemory()
	c.Put(ast.CacheKey{Source: "s", Identity: 1}, 1)
	c.Put(ast.CacheKey{Source: "s", Identity: 2}, 2)

	n := ast.Join{
		Left:    ast.Req{Src: stubSource{"s"}, Identity: 1},
		Right:   ast.Req{Src: stubSource{"s"}, Identity: 2},
		Combine: func(l, r any) any { return l.(int) + r.(int) },
	}
	got := rewrite(n, c, false)
	p, ok := got.(ast.Pure)
	if !ok || p.Value != 3 {
		t.Fatalf("rewrite() = %#v, want Pure{3}", got)
	}
}

func TestRewriteJoinPropagatesErrBeforeCombining(t *testing.T) {
	boom := errors.New("boom")
	c := cache.NewInMemory()
	c.Put(ast.CacheKey{Source: "s", Identity: 2}, 2)

	n := ast.Join{
		Left:    ast.Err{Payload: boom},
		Right:   ast.Req{Src: stubSource{"s"}, Identity: 2},
		Combine: func(l, r any) any { t.Fatal("combine must not run when a side errored"); return nil },
	}
	got := rewrite(n, c, false)
	e, ok := got.(ast.Err)
	if !ok || e.Payload != boom {
		t.Fatalf("rewrite() = %#v, want Err{boom}", got)
	}
}

func TestRewriteBindAppliesContinuationOnceLeftIsPure(t *testing.T) {
	c := cache.NewInMemory()
	n := ast.Bind{
		Left: ast.Pure{Value: 1},
		K:    func(v any) ast.Node { return ast.Pure{Value: v.(int) + 41} },
	}
	got := rewrite(n, c, false)
	p, ok := got.(ast.Pure)
	if !ok || p.Value != 42 {
		t.Fatalf("rewrite() = %#v, want Pure{42}", got)
	}
}

func TestRewriteBindLeavesContinuationOpaqueUntilLeftResolves(t *testing.T) {
	c := cache.NewInMemory()
	n := ast.Bind{
		Left: ast.Req{Src: stubSource{"s"}, Identity: 1},
		K:    func(any) ast.Node { t.Fatal("continuation must not run before Left resolves"); return nil },
	}
	got := rewrite(n, c, false)
	if _, ok := got.(ast.Bind); !ok {
		t.Fatalf("rewrite() = %#v, want it to remain an ast.Bind", got)
	}
}

func TestRewriteBindPropagatesErrFromLeft(t *testing.T) {
	boom := errors.New("boom")
	c := cache.NewInMemory()
	n := ast.Bind{
		Left: ast.Err{Payload: boom},
		K:    func(any) ast.Node { t.Fatal("continuation must not run after an error"); return nil },
	}
	got := rewrite(n, c, false)
	e, ok := got.(ast.Err)
	if !ok || e.Payload != boom {
		t.Fatalf("rewrite() = %#v, want Err{boom}", got)
	}
}

func TestRewriteTypeCheckingPanicsOnMismatch(t *testing.T) {
	c := cache.NewInMemory()
	c.Put(ast.CacheKey{Source: "s", Identity: 1}, "a string")

	defer func() {
		if recover() == nil {
			t.Fatal("expected rewrite to panic on a cache value/type mismatch")
		}
	}()
	rewrite(ast.Req{Src: stubSource{"s"}, Identity: 1, ValueType: reflect.TypeOf(0)}, c, true)
}

func TestRewriteTypeCheckingPassesOnMatch(t *testing.T) {
	c := cache.NewInMemory()
	c.Put(ast.CacheKey{Source: "s", Identity: 1}, 7)

	got := rewrite(ast.Req{Src: stubSource{"s"}, Identity: 1, ValueType: reflect.TypeOf(0)}, c, true)
	if p, ok := got.(ast.Pure); !ok || p.Value != 7 {
		t.Fatalf("rewrite() = %#v, want Pure{7}", got)
	}
}
