package chainindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	id  int
	exp int
}

func byExp(a, b entry) bool { return a.exp < b.exp }

func TestView_InsertOrderedAndStableTies(t *testing.T) {
	v := NewView(byExp)
	e1 := &entry{id: 1, exp: 5}
	e2 := &entry{id: 2, exp: 3}
	e3 := &entry{id: 3, exp: 5} // ties with e1, must sort after it (FIFO)
	e4 := &entry{id: 4, exp: 1}

	v.Insert(e1)
	v.Insert(e2)
	v.Insert(e3)
	v.Insert(e4)

	got := v.All()
	require.Len(t, got, 4)
	assert.Equal(t, []int{4, 2, 1, 3}, []int{got[0].id, got[1].id, got[2].id, got[3].id})
}

func TestView_LowerUpperBound(t *testing.T) {
	v := NewView(byExp)
	for _, e := range []entry{{1, 1}, {2, 3}, {3, 3}, {4, 5}} {
		e := e
		v.Insert(&e)
	}
	lb := v.LowerBound(entry{exp: 3})
	require.True(t, lb.Valid())
	assert.Equal(t, 2, lb.Item().id)

	ub := v.UpperBound(entry{exp: 3})
	require.True(t, ub.Valid())
	assert.Equal(t, 4, ub.Item().id)
}

func TestView_RemoveAndFront(t *testing.T) {
	v := NewView(byExp)
	e1 := &entry{id: 1, exp: 1}
	e2 := &entry{id: 2, exp: 2}
	v.Insert(e1)
	v.Insert(e2)

	assert.Equal(t, e1, v.Front())
	v.Remove(e1)
	assert.Equal(t, e2, v.Front())
	assert.Equal(t, 1, v.Len())
}

func TestView_Descending(t *testing.T) {
	v := NewView(Descending(byExp))
	for _, e := range []entry{{1, 1}, {2, 3}, {3, 2}} {
		e := e
		v.Insert(&e)
	}
	got := v.All()
	assert.Equal(t, []int{2, 3, 1}, []int{got[0].id, got[1].id, got[2].id})
}

func TestView_ReindexOnKeyChange(t *testing.T) {
	v := NewView(byExp)
	e1 := &entry{id: 1, exp: 1}
	e2 := &entry{id: 2, exp: 2}
	v.Insert(e1)
	v.Insert(e2)

	e1.exp = 5
	v.Reindex(e1)

	got := v.All()
	assert.Equal(t, []int{2, 1}, []int{got[0].id, got[1].id})
}

func TestPrimary_CRUD(t *testing.T) {
	p := NewPrimary[int, entry]()
	e := &entry{id: 7, exp: 1}
	p.Put(7, e)
	assert.Equal(t, e, p.Get(7))
	assert.Equal(t, 1, p.Len())
	p.Delete(7)
	assert.Nil(t, p.Get(7))
	assert.Equal(t, 0, p.Len())
}

// TestView_EmptyBehavior documents that an empty view's iterators are never
// Valid, matching the while-loop idiom the sweepers rely on.
func TestView_EmptyBehavior(t *testing.T) {
	v := NewView(byExp)
	assert.True(t, v.Empty())
	assert.Nil(t, v.Front())
	assert.False(t, v.Begin().Valid())
}
