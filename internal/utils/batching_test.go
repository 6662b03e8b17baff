package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchBufferAddAndClear(t *testing.T) {
	b := NewBatchBuffer[int]()
	assert.Nil(t, b.GetAndClear())

	assert.Equal(t, 1, b.Add(1))
	assert.Equal(t, 2, b.Add(2))
	assert.Equal(t, 2, b.Size())

	assert.Equal(t, []int{1, 2}, b.GetAndClear())
	assert.Equal(t, 0, b.Size())
	assert.Nil(t, b.GetAndClear())
}

func TestBatchBufferConcurrentAdds(t *testing.T) {
	b := NewBatchBuffer[int]()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Add(i)
		}(i)
	}
	wg.Wait()
	assert.Len(t, b.GetAndClear(), 100)
}
