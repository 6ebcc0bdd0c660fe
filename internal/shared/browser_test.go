package shared

import (
	"errors"
	"slices"
	"testing"
)

func TestOpenBrowser(t *testing.T) {
	stub := func(t *testing.T, goos string) *[]string {
		t.Helper()
		origRuntime, origStart := getRuntime, startCmd
		t.Cleanup(func() { getRuntime, startCmd = origRuntime, origStart })

		var got []string
		getRuntime = func() string { return goos }
		startCmd = func(name string, args ...string) error {
			got = append([]string{name}, args...)
			return nil
		}
		return &got
	}

	link := "http://127.0.0.1:3000/?share=%7B%7D"

	tests := []struct {
		goos string
		want []string
	}{
		{"darwin", []string{"open", link}},
		{"linux", []string{"xdg-open", link}},
		{"windows", []string{"rundll32", "url.dll,FileProtocolHandler", link}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			got := stub(t, tt.goos)
			if err := OpenBrowser(link); err != nil {
				t.Fatalf("OpenBrowser() error = %v", err)
			}
			if !slices.Equal(*got, tt.want) {
				t.Errorf("started %v, want %v", *got, tt.want)
			}
		})
	}

	t.Run("unsupported platform", func(t *testing.T) {
		got := stub(t, "plan9")
		if err := OpenBrowser(link); err == nil {
			t.Error("expected error for unsupported platform")
		}
		if len(*got) != 0 {
			t.Errorf("expected nothing started, got %v", *got)
		}
	})

	t.Run("rejects non-web URLs", func(t *testing.T) {
		got := stub(t, "linux")
		for _, bad := range []string{"file:///etc/passwd", "javascript:alert(1)", "not a url", ""} {
			if err := OpenBrowser(bad); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("OpenBrowser(%q) error = %v, want ErrInvalidArgument", bad, err)
			}
		}
		if len(*got) != 0 {
			t.Errorf("expected nothing started, got %v", *got)
		}
	})

	t.Run("start failure", func(t *testing.T) {
		stub(t, "linux")
		startCmd = func(string, ...string) error { return errors.New("exec: not found") }
		if err := OpenBrowser(link); err == nil {
			t.Error("expected error when the opener fails")
		}
	})
}
