package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		err  error
		want Kind
	}{
		{StartupError("bind", base), KindStartup},
		{ConnectionError("recv", base), KindConnection},
		{ResourceError("open store", base), KindResource},
		{ShutdownError("remove store", base), KindShutdown},
		{fmt.Errorf("wrapped: %w", ResourceError("open store", base)), KindResource},
		{base, KindUnknown},
		{nil, KindUnknown},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	err := ConnectionError("recv", ErrPeerClosed)
	if !errors.Is(err, ErrPeerClosed) {
		t.Fatalf("errors.Is(%v, ErrPeerClosed) = false", err)
	}
	if got := err.Error(); got != "connection: recv: "+ErrPeerClosed.Error() {
		t.Errorf("Error() = %q", got)
	}
}
