package progression

import (
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	var km keyedMutex
	counts := map[string]*int{"a": new(int), "b": new(int)}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for key := range counts {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				unlock := km.Lock(key)
				*counts[key]++
				unlock()
			}(key)
		}
	}
	wg.Wait()

	if *counts["a"] != 50 || *counts["b"] != 50 {
		t.Errorf("a=%d b=%d, want 50 each", *counts["a"], *counts["b"])
	}
	if km.size() != 0 {
		t.Errorf("expected all keys released, %d live", km.size())
	}
}
