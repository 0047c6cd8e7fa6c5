package browser

import (
	"runtime"
	"testing"
)

func TestOpenSupported(t *testing.T) {
	switch runtime.GOOS {
	case "darwin", "linux", "windows":
	default:
		t.Skipf("Unsupported platform: %s", runtime.GOOS)
	}
	if _, _, err := command(runtime.GOOS, "https://example.com"); err != nil {
		t.Errorf("command() error = %v", err)
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantErr  bool
	}{
		{"darwin", "open", false},
		{"linux", "xdg-open", false},
		{"windows", "rundll32", false},
		{"plan9", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args, err := command(tt.goos, "https://example.com/cb")
			if (err != nil) != tt.wantErr {
				t.Fatalf("command(%q) error = %v", tt.goos, err)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if !tt.wantErr && args[len(args)-1] != "https://example.com/cb" {
				t.Errorf("args = %v, url must be last", args)
			}
		})
	}
}
