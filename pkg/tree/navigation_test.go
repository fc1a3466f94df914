package tree_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTree creates:
//
//	/
//	├── A
//	│   ├── 0
//	│   └── 1
//	├── B
//	└── C
//	    └── x
//	        ├── y
//	        └── z
func buildTree(t *testing.T) *tree.Node {
	t.Helper()
	root := tree.New("")
	a, err := root.Push("A", map[string]any{"block": "A"})
	require.NoError(t, err)
	_, _ = a.Push("", map[string]any{"trial": 0})
	_, _ = a.Push("", map[string]any{"trial": 1})
	_, _ = root.Push("B", map[string]any{"block": "B"})
	c, _ := root.Push("C", nil)
	x, _ := c.Push("x", nil)
	_, _ = x.Push("y", nil)
	_, _ = x.Push("z", map[string]any{})
	return root
}

func TestNext_LeafOrderTotality(t *testing.T) {
	root := buildTree(t)
	want := root.LeafNodes()
	assert.Equal(t, []string{"A/0", "A/1", "B", "C/x/y", "C/x/z"}, want)

	root.Reset()
	got := []string{root.CurrentPathString()}
	for leaf := root.Next(); leaf != nil; leaf = root.Next() {
		assert.Equal(t, leaf.PathString(), root.CurrentPathString())
		got = append(got, leaf.PathString())
	}
	assert.Equal(t, want, got)

	// at the end: nil and unchanged
	assert.Nil(t, root.Next())
	assert.Equal(t, "C/x/z", root.CurrentPathString())
	assert.False(t, root.HasNext())

	back := []string{root.CurrentPathString()}
	for leaf := root.Prev(); leaf != nil; leaf = root.Prev() {
		back = append(back, leaf.PathString())
	}
	for i, j := 0, len(back)-1; i < j; i, j = i+1, j-1 {
		back[i], back[j] = back[j], back[i]
	}
	assert.Equal(t, want, back)
	assert.Nil(t, root.Prev())
	assert.Equal(t, "A/0", root.CurrentPathString())
	assert.False(t, root.HasPrev())
}

func TestPrev_DescendsToLastChild(t *testing.T) {
	root := buildTree(t)
	require.NoError(t, root.GoTo("B"))
	leaf := root.Prev()
	require.NotNil(t, leaf)
	assert.Equal(t, "A/1", leaf.PathString())
}

func TestPeek_DoesNotMove(t *testing.T) {
	root := buildTree(t)
	require.NoError(t, root.GoTo("A/1"))

	next := root.PeekNext()
	require.NotNil(t, next)
	assert.Equal(t, "B", next.PathString())
	prev := root.PeekPrev()
	require.NotNil(t, prev)
	assert.Equal(t, "A/0", prev.PathString())
	assert.Equal(t, "A/1", root.CurrentPathString())
}

func TestGoTo(t *testing.T) {
	root := buildTree(t)

	require.NoError(t, root.GoTo("C"))
	assert.Equal(t, "C/x/y", root.CurrentPathString())

	require.NoError(t, root.GoToPath([]string{"A", "1"}))
	assert.Equal(t, []string{"A", "1"}, root.CurrentPath())

	err := root.GoTo("A/9")
	assert.ErrorIs(t, err, domain.ErrInvalidPath)
	assert.Equal(t, "A/1", root.CurrentPathString(), "failed goto must not move")
}

func TestReset(t *testing.T) {
	root := buildTree(t)
	require.NoError(t, root.GoTo("C/x/z"))
	root.Reset()
	assert.Equal(t, "A/0", root.CurrentPathString())
}

func TestNext_EmptyTree(t *testing.T) {
	root := tree.New("")
	assert.Nil(t, root.Next())
	assert.Nil(t, root.Prev())
	assert.Equal(t, []string{}, root.CurrentPath())
}

func TestNext_DeepRandomShapes(t *testing.T) {
	for shape := 1; shape <= 4; shape++ {
		t.Run(fmt.Sprintf("fanout-%d", shape), func(t *testing.T) {
			root := tree.New("")
			var grow func(n *tree.Node, depth int)
			grow = func(n *tree.Node, depth int) {
				if depth == 0 {
					return
				}
				for i := 0; i < shape+depth%2; i++ {
					ch, err := n.Push("", nil)
					require.NoError(t, err)
					grow(ch, depth-1)
				}
			}
			grow(root, 3)

			count := 1
			for root.Next() != nil {
				count++
			}
			assert.Equal(t, root.CountLeafNodes(), count)
		})
	}
}

func TestDataAlongPath(t *testing.T) {
	root := buildTree(t)
	require.NoError(t, root.GoTo("A/1"))
	assert.Equal(t, []any{
		map[string]any{"block": "A"},
		map[string]any{"trial": 1},
	}, root.DataAlongPath())
	assert.Equal(t, map[string]any{"trial": 1}, root.CurrentData())

	require.NoError(t, root.GoTo("C/x/z"))
	assert.Empty(t, root.DataAlongPath())

	a, _ := root.ChildByID("A")
	require.NoError(t, root.GoTo("A/0"))
	assert.Equal(t, []any{
		map[string]any{"block": "A"},
		map[string]any{"trial": 0},
	}, a.DataAlongPath())
}

func TestCurrentData_NoChildren(t *testing.T) {
	root := tree.New("")
	root.SetData(map[string]any{"k": "v"})
	assert.Equal(t, map[string]any{"k": "v"}, root.CurrentData())
}

func TestBlockInfo(t *testing.T) {
	root := buildTree(t)
	require.NoError(t, root.GoTo("A/1"))
	assert.Equal(t, 0, root.BlockIndex())
	assert.Equal(t, 2, root.BlockLength())

	require.NoError(t, root.GoTo("B"))
	assert.Equal(t, -1, root.BlockIndex())
	assert.Equal(t, 3, root.BlockLength())
}

func TestPaths(t *testing.T) {
	root := buildTree(t)
	c, _ := root.ChildByID("C")
	x, _ := c.ChildByID("x")
	z, _ := x.ChildByID("z")

	assert.Equal(t, []string{"C", "x", "z"}, z.Path())
	assert.Equal(t, "C/x/z", z.PathString())
	assert.Equal(t, "", root.PathString())
	assert.Equal(t, []string{"A", "A/0", "A/1", "B", "C", "C/x", "C/x/y", "C/x/z"}, root.ExistingPaths())

	a, _ := root.ChildByID("A")
	first, _ := a.Child(0)
	assert.True(t, first.IsFirstLeaf())
	assert.False(t, z.IsFirstLeaf())
	assert.False(t, a.IsFirstLeaf())
}

func TestSetDataAtPath(t *testing.T) {
	root := buildTree(t)
	require.NoError(t, root.SetDataAtPath("C/x", map[string]any{"set": true}))
	c, _ := root.ChildByID("C")
	x, _ := c.ChildByID("x")
	assert.Equal(t, map[string]any{"set": true}, x.Data())

	assert.ErrorIs(t, root.SetDataAtPath("C/x", "not an object"), domain.ErrInvalidArgument)
	assert.ErrorIs(t, root.SetDataAtPath("C/x", nil), domain.ErrInvalidArgument)
	assert.ErrorIs(t, root.SetDataAtPath("C/q", map[string]any{}), domain.ErrInvalidPath)
}
