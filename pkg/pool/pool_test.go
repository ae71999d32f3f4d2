package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	values []int
}

func TestPool(t *testing.T) {
	p := New(
		func() *item { return &item{values: make([]int, 0, 8)} },
		func(i *item) { i.values = i.values[:0] },
	)

	a := p.Get()
	a.values = append(a.values, 1, 2)
	allocated, inUse := p.Stats()
	assert.Equal(t, int64(1), allocated)
	assert.Equal(t, int64(1), inUse)

	p.Put(a)
	assert.Empty(t, a.values, "reset runs on Put")
	_, inUse = p.Stats()
	assert.Equal(t, int64(0), inUse)
}

func TestBuffers(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("journal")
	PutBuffer(buf)

	again := GetBuffer()
	assert.Equal(t, 0, again.Len())
	PutBuffer(again)

	big := bytes.NewBuffer(make([]byte, 0, maxPooledBuffer+1))
	buffers.Get()
	PutBuffer(big)
	_, inUse := buffers.Stats()
	assert.Equal(t, int64(0), inUse)
}
