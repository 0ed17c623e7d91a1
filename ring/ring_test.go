package ring_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/Alia5/keyscan/ring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapacity(t *testing.T) {
	type testCase struct {
		name     string
		capacity int
		wantErr  bool
	}

	cases := []testCase{
		{name: "one", capacity: 1},
		{name: "two", capacity: 2},
		{name: "default", capacity: 8},
		{name: "large", capacity: 256},
		{name: "zero", capacity: 0, wantErr: true},
		{name: "negative", capacity: -4, wantErr: true},
		{name: "not power of two", capacity: 6, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := ring.New[uint64](tc.capacity)
			if tc.wantErr {
				assert.True(t, errors.Is(err, ring.ErrCapacity))
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.capacity, b.Cap())
			assert.Equal(t, 0, b.Len())
		})
	}
}

func TestPushPop(t *testing.T) {
	b, err := ring.New[uint64](4)
	require.NoError(t, err)

	_, ok := b.Pop()
	assert.False(t, ok)

	b.Push(1)
	b.Push(2)
	assert.Equal(t, 2, b.Len())

	v, ok := b.Pop()
	assert.True(t, ok)
	assert.Equal(t, uint64(1), v)
	v, ok = b.Pop()
	assert.True(t, ok)
	assert.Equal(t, uint64(2), v)

	_, ok = b.Pop()
	assert.False(t, ok)
	assert.Equal(t, 0, b.Len())
}

func TestOverwriteOldest(t *testing.T) {
	b, err := ring.New[uint64](4)
	require.NoError(t, err)

	for i := uint64(1); i <= 5; i++ {
		b.Push(i)
	}
	assert.Equal(t, 4, b.Len())

	var got []uint64
	for {
		v, ok := b.Pop()
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []uint64{2, 3, 4, 5}, got)
}

func TestWrapAround(t *testing.T) {
	b, err := ring.New[int](2)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		b.Push(i)
		v, ok := b.Pop()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	assert.Equal(t, 0, b.Len())
}

func TestFlush(t *testing.T) {
	b, err := ring.New[uint64](8)
	require.NoError(t, err)

	b.Push(1)
	b.Push(2)
	b.Push(3)
	b.Flush()
	assert.Equal(t, 0, b.Len())
	_, ok := b.Pop()
	assert.False(t, ok)

	b.Push(9)
	v, ok := b.Pop()
	assert.True(t, ok)
	assert.Equal(t, uint64(9), v)
}

func TestConcurrentProducerConsumer(t *testing.T) {
	const n = 10000
	b, err := ring.New[int](16)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= n; i++ {
			b.Push(i)
		}
	}()

	last := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		v, ok := b.Pop()
		if ok {
			// entries may be dropped on overflow but never reordered
			assert.Greater(t, v, last)
			last = v
			continue
		}
		select {
		case <-done:
			if b.Len() == 0 {
				assert.LessOrEqual(t, last, n)
				return
			}
		default:
		}
	}
}

func BenchmarkPushPop(b *testing.B) {
	r, err := ring.New[uint64](8)
	require.NoError(b, err)
	for b.Loop() {
		r.Push(1)
		_, _ = r.Pop()
	}
}
