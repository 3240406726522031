package ocr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tinyPNG is the 8-byte PNG signature followed by padding, enough for
// content-type sniffing without a real image.
var tinyPNG = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 16)...)

func newTestEngine(t *testing.T, handler http.HandlerFunc) *Engine {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEngine(Config{ServerURL: srv.URL})
}

func TestRecognize_Success(t *testing.T) {
	var gotLanguage, gotAccept string
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		gotLanguage = r.Header.Get("X-Tika-OCRLanguage")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("  Invoice #42\nTotal: 100 EUR  "))
	})

	text, err := engine.Recognize(context.Background(), tinyPNG, Options{})
	require.NoError(t, err)

	assert.Equal(t, "Invoice #42\nTotal: 100 EUR", text)
	assert.Equal(t, "fra+eng", gotLanguage)
	assert.Equal(t, "text/plain", gotAccept)
}

func TestRecognize_LanguageOverride(t *testing.T) {
	var gotLanguage string
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		gotLanguage = r.Header.Get("X-Tika-OCRLanguage")
		w.Write([]byte("hallo"))
	})

	_, err := engine.Recognize(context.Background(), tinyPNG, Options{Languages: []string{"deu"}})
	require.NoError(t, err)
	assert.Equal(t, "deu", gotLanguage)
}

func TestRecognize_NoTextFound(t *testing.T) {
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("   \n\t  "))
	})

	_, err := engine.Recognize(context.Background(), tinyPNG, Options{})
	assert.ErrorIs(t, err, ErrNoTextFound)
}

func TestRecognize_EngineUnavailable(t *testing.T) {
	engine := NewEngine(Config{ServerURL: "http://127.0.0.1:1", Timeout: 500 * time.Millisecond})

	_, err := engine.Recognize(context.Background(), tinyPNG, Options{})
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}

func TestRecognize_NotConfigured(t *testing.T) {
	engine := NewEngine(Config{})

	_, err := engine.Recognize(context.Background(), tinyPNG, Options{})
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}

func TestRecognize_BackendError(t *testing.T) {
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unprocessable image", http.StatusUnprocessableEntity)
	})

	_, err := engine.Recognize(context.Background(), tinyPNG, Options{})
	assert.ErrorIs(t, err, ErrRecognitionFailed)
	assert.NotErrorIs(t, err, ErrNoTextFound)
}

func TestRecognize_ProgressIsMonotonic(t *testing.T) {
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("some text"))
	})

	progress := make(chan ProgressEvent, 16)
	_, err := engine.Recognize(context.Background(), tinyPNG, Options{Progress: progress})
	require.NoError(t, err)
	close(progress)

	last := -1
	var final int
	for ev := range progress {
		assert.Greater(t, ev.Percent, last, "progress must be monotonically increasing")
		last = ev.Percent
		final = ev.Percent
	}
	assert.Equal(t, 100, final)
}

func TestRecognize_ProgressNeverBlocks(t *testing.T) {
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("some text"))
	})

	// Full channel with no reader; recognition must still complete.
	progress := make(chan ProgressEvent)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := engine.Recognize(context.Background(), tinyPNG, Options{Progress: progress})
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("recognition blocked on a full progress channel")
	}
}

func TestRecognize_SerializesJobs(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		cur := inFlight.Add(1)
		if cur > maxInFlight.Load() {
			maxInFlight.Store(cur)
		}
		time.Sleep(30 * time.Millisecond)
		inFlight.Add(-1)
		w.Write([]byte("text"))
	})

	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := engine.Recognize(context.Background(), tinyPNG, Options{})
			done <- err
		}()
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, <-done)
	}

	assert.Equal(t, int32(1), maxInFlight.Load(), "OCR jobs must run one at a time by default")
}

func TestRecognize_ContextCancelledWhileQueued(t *testing.T) {
	block := make(chan struct{})
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		<-block
		w.Write([]byte("text"))
	})
	defer close(block)

	// Occupy the single slot.
	go engine.Recognize(context.Background(), tinyPNG, Options{})
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := engine.Recognize(ctx, tinyPNG, Options{})
	assert.True(t, errors.Is(err, context.Canceled))
}
