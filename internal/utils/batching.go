package utils

import (
	"sync"
)

const (
	// DynamoDB BatchWriteItem accepts at most 25 requests.
	DYNAMODB_BATCH_SIZE = 25
	DEFAULT_BATCH_SIZE  = 10
)

// BatchBuffer collects items until a caller drains them. Safe for
// concurrent use.
type BatchBuffer[T any] struct {
	buffer     []T
	capacity   int
	bufferLock sync.Mutex
}

func NewBatchBuffer[T any](capacity int) *BatchBuffer[T] {
	if capacity <= 0 {
		capacity = DEFAULT_BATCH_SIZE
	}
	return &BatchBuffer[T]{
		buffer:   make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Add appends item and reports whether the buffer reached capacity.
func (b *BatchBuffer[T]) Add(item T) bool {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()

	b.buffer = append(b.buffer, item)
	return len(b.buffer) >= b.capacity
}

func (b *BatchBuffer[T]) GetAndClear() []T {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()

	if len(b.buffer) == 0 {
		return nil
	}

	batch := b.buffer
	b.buffer = make([]T, 0, b.capacity)
	return batch
}

func (b *BatchBuffer[T]) Size() int {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()
	return len(b.buffer)
}

func (b *BatchBuffer[T]) HasData() bool {
	return b.Size() > 0
}

// Chunk splits items into consecutive groups of at most size.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DEFAULT_BATCH_SIZE
	}
	var chunks [][]T
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		chunks = append(chunks, items[i:end])
	}
	return chunks
}
