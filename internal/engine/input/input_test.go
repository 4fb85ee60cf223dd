package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		event    sdl.Event
		want     EventType
		wantQuit bool
	}{
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, EventQuit, true},
		{"resize", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 640, Data2: 480}, EventWindowResize, false},
		{"minimized", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_MINIMIZED}, EventMinimized, false},
		{"restored", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESTORED}, EventRestored, false},
		{"device reset", &sdl.RenderEvent{Type: sdl.RENDER_DEVICE_RESET}, EventDeviceReset, false},
		{"targets reset", &sdl.RenderEvent{Type: sdl.RENDER_TARGETS_RESET}, EventDeviceReset, false},
		{"key down", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_F}}, EventKeyDown, false},
		{"wheel", &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: -1}, EventMouseWheel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New()
			if quit := in.translate(tt.event); quit != tt.wantQuit {
				t.Errorf("quit = %v, want %v", quit, tt.wantQuit)
			}
			if !in.Has(tt.want) {
				t.Errorf("events = %+v, want type %d", in.Events(), tt.want)
			}
		})
	}
}

func TestTranslateResizeCarriesSize(t *testing.T) {
	in := New()
	in.translate(&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 800, Data2: 600})

	events := in.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Width != 800 || events[0].Height != 600 {
		t.Errorf("size = %dx%d, want 800x600", events[0].Width, events[0].Height)
	}
}

func TestIsKeyPressed(t *testing.T) {
	in := New()
	in.translate(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_ESCAPE}})

	if !in.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		t.Error("escape not reported as pressed")
	}
	if in.IsKeyPressed(sdl.SCANCODE_F) {
		t.Error("F reported as pressed")
	}
}
