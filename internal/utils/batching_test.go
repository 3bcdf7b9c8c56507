package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchBuffer_AddReportsFull(t *testing.T) {
	b := NewBatchBuffer[int](3)

	assert.False(t, b.Add(1))
	assert.False(t, b.Add(2))
	assert.True(t, b.Add(3))
	assert.Equal(t, 3, b.Size())

	assert.Equal(t, []int{1, 2, 3}, b.GetAndClear())
	assert.False(t, b.HasData())
	assert.Nil(t, b.GetAndClear())
}

func TestBatchBuffer_ConcurrentAdds(t *testing.T) {
	b := NewBatchBuffer[int](0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b.Add(n)
		}(i)
	}
	wg.Wait()

	assert.Len(t, b.GetAndClear(), 50)
}

func TestChunk(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5, 6}, {7}}, Chunk(items, 3))
	assert.Nil(t, Chunk([]int{}, 3))
	assert.Len(t, Chunk(make([]int, 25), DYNAMODB_BATCH_SIZE), 1)
}
