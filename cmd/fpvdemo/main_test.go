package main

import (
	"testing"

	"github.com/gogpu/fpv"
)

func TestCheckFlags(t *testing.T) {
	tests := []struct {
		name                  string
		frames, width, height int
		wantErr               bool
	}{
		{"defaults", 240, 300, 300, false},
		{"zero frames", 0, 1, 1, false},
		{"negative frames", -1, 300, 300, true},
		{"zero width", 10, 0, 300, true},
		{"negative width", 10, -300, 300, true},
		{"negative height", 10, 300, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkFlags(tt.frames, tt.width, tt.height)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkFlags(%d, %d, %d) error = %v, wantErr %v",
					tt.frames, tt.width, tt.height, err, tt.wantErr)
			}
		})
	}
}

func TestRunRecordBackend(t *testing.T) {
	if err := run(fpv.DefaultConfig(), "record", 130, 64, 48); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if err := run(fpv.DefaultConfig(), "record", 1, -64, 48); err == nil {
		t.Error("run with negative width should fail")
	}
}
