package sync

import (
	"fmt"
	base "sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripedLock_HappyPath(t *testing.T) {
	workerCount := 64
	operationCount := 1000

	l := NewStripedLock(4)

	var wg base.WaitGroup
	startChan := make(chan struct{})
	data := make([]int, workerCount)

	for i := 0; i < workerCount; i++ {
		wg.Add(1)

		go func(workerID int) {
			defer wg.Done()

			<-startChan

			key := []byte(fmt.Sprintf("worker%d", workerID))
			for j := 0; j < operationCount; j++ {
				mu := l.Get(key)
				mu.Lock()
				data[workerID]++
				mu.Unlock()
			}
		}(i)
	}

	close(startChan)
	wg.Wait()

	for _, val := range data {
		assert.EqualValues(t, operationCount, val)
	}
}

func TestStripedLock_ConsistentMapping(t *testing.T) {
	l := NewStripedLock(16)

	for i := 0; i < 100; i++ {
		key := []byte(fmt.Sprintf("key%d", i))
		assert.Same(t, l.Get(key), l.Get(key))
	}
}
