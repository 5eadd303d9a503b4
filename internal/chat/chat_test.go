package chat

import (
	"context"
	"errors"
	"testing"
)

func TestValidateChannel(t *testing.T) {
	tests := []struct {
		channel string
		ok      bool
	}{
		{"general", true},
		{"ward-3", true},
		{"night_shift", true},
		{"0emergency", true},
		{"", false},
		{"-leading-dash", false},
		{"UPPER", false},
		{"has space", false},
		{"chat:general", false},
	}

	for _, tc := range tests {
		err := ValidateChannel(tc.channel)
		if tc.ok && err != nil {
			t.Errorf("ValidateChannel(%q) = %v, want nil", tc.channel, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidChannel) {
			t.Errorf("ValidateChannel(%q) = %v, want ErrInvalidChannel", tc.channel, err)
		}
	}
}

func TestPostRejectsBadInputBeforeRedis(t *testing.T) {
	// Redis is never reached when validation fails, so a nil client is
	// safe here.
	svc := NewService(nil, 100)
	ctx := context.Background()

	if _, err := svc.Post(ctx, "Bad Channel", "uid", "Name", "hi"); !errors.Is(err, ErrInvalidChannel) {
		t.Fatalf("expected ErrInvalidChannel, got %v", err)
	}
	if _, err := svc.Post(ctx, "general", "uid", "Name", "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := svc.History(ctx, "Bad Channel"); !errors.Is(err, ErrInvalidChannel) {
		t.Fatalf("expected ErrInvalidChannel, got %v", err)
	}
}
