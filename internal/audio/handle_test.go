package audio

import (
	"testing"
	"time"
)

func pcmOfFrames(n int) []byte {
	return make([]byte, n*BytesPerSample)
}

func TestHandle_StartAndStop(t *testing.T) {
	factory := NewMemFactory()
	h := NewHandle(factory, pcmOfFrames(1000))

	p, err := h.Start(1.0)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !p.IsPlaying() {
		t.Error("player not playing after Start")
	}

	h.Stop()
	if p.IsPlaying() {
		t.Error("player still playing after Stop")
	}
	if !factory.Last().Closed() {
		t.Error("player not closed after Stop")
	}
}

func TestHandle_StartReplacesActivePlayer(t *testing.T) {
	factory := NewMemFactory()
	h := NewHandle(factory, pcmOfFrames(1000))

	if _, err := h.Start(1.0); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if _, err := h.Start(1.0); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}

	players := factory.Players()
	if len(players) != 2 {
		t.Fatalf("created %d players, want 2", len(players))
	}
	if !players[0].Closed() {
		t.Error("first player leaked: not closed when replaced")
	}
	if players[1].Closed() {
		t.Error("second player closed unexpectedly")
	}
}

func TestHandle_SlowRateStretchesStream(t *testing.T) {
	factory := NewMemFactory()
	h := NewHandle(factory, pcmOfFrames(700))

	if _, err := h.Start(0.7); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// 700 frames at rate 0.7 stretch to 1000 frames.
	if got := factory.Last().Len(); got != 1000*BytesPerSample {
		t.Errorf("stretched stream is %d bytes, want %d", got, 1000*BytesPerSample)
	}
}

func TestHandle_ReleaseIsIdempotentAndFinal(t *testing.T) {
	factory := NewMemFactory()
	h := NewHandle(factory, pcmOfFrames(100))

	if _, err := h.Start(1.0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	h.Release()
	h.Release() // second release must be a no-op

	if !h.Released() {
		t.Error("handle not marked released")
	}
	if !factory.Last().Closed() {
		t.Error("active player not closed on Release")
	}
	if _, err := h.Start(1.0); err != ErrReleased {
		t.Errorf("Start after Release returned %v, want ErrReleased", err)
	}
}

func TestHandle_Duration(t *testing.T) {
	h := NewHandle(NewMemFactory(), pcmOfFrames(SampleRate))
	if got := h.Duration(); got != time.Second {
		t.Errorf("Duration = %v, want %v", got, time.Second)
	}
}
