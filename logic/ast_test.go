package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVars(t *testing.T) {
	t.Run("first appearance order, deduped", func(t *testing.T) {
		n := NewCompound(And,
			NewStatement("PARENT_OF", Var("x"), Var("y")),
			NewStatement("PARENT_OF", Var("y"), Var("z")),
			NewStatement("ALIVE", Var("x")),
		)
		assert.Equal(t, []string{"x", "y", "z"}, Vars(n))
	})

	t.Run("ground tree has no vars", func(t *testing.T) {
		n := NewStatement("IS_A", Lit("Dog"), Lit("mammal"))
		assert.Empty(t, Vars(n))
	})

	t.Run("vars under Not are collected", func(t *testing.T) {
		n := NewCompound(Not, NewStatement("JAILED", Var("p")))
		assert.Equal(t, []string{"p"}, Vars(n))
	})
}

func TestFlatten(t *testing.T) {
	likes := NewStatement("LIKES", Lit("Alice"), Lit("Bob"))
	knows := NewStatement("KNOWS", Lit("Bob"), Lit("Carol"))
	jailed := NewStatement("JAILED", Lit("Bob"))

	tree := NewCompound(And,
		likes,
		NewCompound(Or, knows, NewCompound(Not, jailed)),
	)

	t.Run("descends And and Or but not Not", func(t *testing.T) {
		got := Flatten(tree)
		require.Len(t, got, 2)
		assert.Same(t, likes, got[0])
		assert.Same(t, knows, got[1])
	})

	t.Run("FlattenAll includes negated leaves", func(t *testing.T) {
		got := FlattenAll(tree)
		require.Len(t, got, 3)
		assert.Same(t, jailed, got[2])
	})

	t.Run("unresolved ref contributes nothing", func(t *testing.T) {
		got := Flatten(NewCompound(And, likes, NewRef("sibling")))
		assert.Len(t, got, 1)
	})
}

func TestStatementFormat(t *testing.T) {
	s := NewStatement("OWES", Var("who"), Lit("Bank"), Var("amount"))

	t.Run("unresolved holes keep question marks", func(t *testing.T) {
		assert.Equal(t, "OWES(?who, Bank, ?amount)", s.String())
	})

	t.Run("resolver substitutes bound holes", func(t *testing.T) {
		got := s.Format(func(name string) (string, bool) {
			if name == "who" {
				return "Mallory", true
			}
			return "", false
		})
		assert.Equal(t, "OWES(Mallory, Bank, ?amount)", got)
	})
}

func TestLevel(t *testing.T) {
	t.Run("ground statement counts node plus args", func(t *testing.T) {
		n := NewStatement("IS_A", Lit("Dog"), Lit("mammal"))
		assert.Equal(t, 3, Level(n, nil))
	})

	t.Run("unbound holes do not count", func(t *testing.T) {
		n := NewStatement("IS_A", Var("x"), Lit("mammal"))
		assert.Equal(t, 2, Level(n, nil))
	})

	t.Run("binding a hole raises the level", func(t *testing.T) {
		n := NewStatement("IS_A", Var("x"), Lit("mammal"))
		lvl := Level(n, func(name string) bool { return name == "x" })
		assert.Equal(t, 3, lvl)
	})

	t.Run("compounds sum their parts", func(t *testing.T) {
		n := NewCompound(And,
			NewStatement("A", Lit("a")),
			NewStatement("B", Lit("b")),
		)
		assert.Equal(t, 5, Level(n, nil))
	})
}

func TestResolveRefs(t *testing.T) {
	base := NewStatement("SIBLING_OF", Var("x"), Var("y"))
	table := map[string]Node{"sibling": base}

	t.Run("replaces refs with registered trees", func(t *testing.T) {
		tree := NewCompound(And, NewRef("sibling"), NewStatement("ALIVE", Var("x")))

		got, err := ResolveRefs(tree, table)
		require.NoError(t, err)

		parts := Flatten(got)
		require.Len(t, parts, 2)
		assert.Equal(t, "SIBLING_OF", parts[0].Operator)
	})

	t.Run("missing ref fails", func(t *testing.T) {
		_, err := ResolveRefs(NewRef("nope"), table)

		var refErr *ErrUnresolvedRef
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, "nope", refErr.Name)
	})

	t.Run("ref chains resolve through", func(t *testing.T) {
		chained := map[string]Node{
			"a": NewRef("b"),
			"b": base,
		}

		got, err := ResolveRefs(NewRef("a"), chained)
		require.NoError(t, err)
		assert.Same(t, base, got)
	})

	t.Run("ref cycle fails instead of spinning", func(t *testing.T) {
		cyclic := map[string]Node{
			"a": NewRef("b"),
			"b": NewRef("a"),
		}

		_, err := ResolveRefs(NewRef("a"), cyclic)

		var refErr *ErrUnresolvedRef
		require.ErrorAs(t, err, &refErr)
	})

	t.Run("original tree is not mutated", func(t *testing.T) {
		tree := NewCompound(And, NewRef("sibling"))

		_, err := ResolveRefs(tree, table)
		require.NoError(t, err)

		_, stillRef := tree.Parts[0].(*Ref)
		assert.True(t, stillRef)
	})
}
