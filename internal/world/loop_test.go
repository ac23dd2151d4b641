package world

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openmyr/myrgo/internal/data"
	"github.com/openmyr/myrgo/internal/model"
)

func TestGameLoop_TicksAndStops(t *testing.T) {
	wm := NewManager(NopNotifier{}, testMonsterRegistry(t), DefaultConfig())
	wm.LoadMaps([]*data.MapTemplate{testMapTemplate(0, 10, 10)})

	ticked := make(chan struct{}, 1)
	p := newTestPlayer(1, "a")
	p.SetTickFunc(func(time.Duration) {
		select {
		case ticked <- struct{}{}:
		default:
		}
	})
	if !wm.TransitionToMap(p, model.NewPosition(0, 0, 0)) {
		t.Fatal("transition failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewGameLoop(wm, 5*time.Millisecond).Run(ctx)
	}()

	select {
	case <-ticked:
	case <-time.After(time.Second):
		t.Fatal("player tick never fired")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on cancel")
	}
}
