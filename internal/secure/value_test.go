package secure

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantNil bool
	}{
		{name: "text secret", data: []byte("my-secret-password")},
		{name: "binary data", data: []byte{0x00, 0xFF, 0x10, 0x20}},
		{name: "empty data", data: []byte{}, wantNil: true},
		{name: "nil data", data: nil, wantNil: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := Seal(tt.data)
			if tt.wantNil {
				assert.Nil(t, v)
				return
			}
			require.NotNil(t, v)
			defer v.Destroy()
		})
	}
}

func TestSealWipesSource(t *testing.T) {
	t.Parallel()

	src := []byte("wipe-me-please")
	v := Seal(src)
	require.NotNil(t, v)
	defer v.Destroy()

	assert.Equal(t, make([]byte, len(src)), src)
	assert.Equal(t, len("wipe-me-please"), v.Len())
}

func TestReveal(t *testing.T) {
	t.Parallel()

	// memguard zeroes the source, so compare against a separate copy.
	v := Seal([]byte("super-secret-data"))
	require.NotNil(t, v)
	defer v.Destroy()

	err := v.Reveal(func(plain []byte) error {
		assert.True(t, bytes.Equal(plain, []byte("super-secret-data")))
		return nil
	})
	require.NoError(t, err)

	// Revealing twice yields the same plaintext.
	assert.Equal(t, "super-secret-data", v.String())
}

func TestRevealPropagatesCallbackError(t *testing.T) {
	t.Parallel()

	v := Seal([]byte("value"))
	require.NotNil(t, v)
	defer v.Destroy()

	boom := errors.New("boom")
	err := v.Reveal(func([]byte) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestDestroy(t *testing.T) {
	t.Parallel()

	v := Seal([]byte("secret-to-destroy"))
	require.NotNil(t, v)

	v.Destroy()
	v.Destroy()

	assert.Equal(t, 0, v.Len())
	assert.ErrorIs(t, v.Reveal(func([]byte) error { return nil }), ErrDestroyed)
	assert.Empty(t, v.String())
}

func TestNilValue(t *testing.T) {
	t.Parallel()

	var v *Value
	assert.Equal(t, 0, v.Len())
	assert.ErrorIs(t, v.Reveal(func([]byte) error { return nil }), ErrDestroyed)
	v.Destroy()
}

func TestConcurrentReveal(t *testing.T) {
	t.Parallel()

	v := Seal([]byte("concurrent-secret"))
	require.NotNil(t, v)
	defer v.Destroy()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "concurrent-secret", v.String())
		}()
	}
	wg.Wait()
}

func BenchmarkSeal(b *testing.B) {
	b.Run("Seal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			v := Seal([]byte("benchmark-secret-data"))
			v.Destroy()
		}
	})

	b.Run("Reveal", func(b *testing.B) {
		v := Seal([]byte("benchmark-secret-data"))
		defer v.Destroy()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = v.Reveal(func([]byte) error { return nil })
		}
	})
}
