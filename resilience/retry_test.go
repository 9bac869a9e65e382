package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

// recordSleep captures requested delays without waiting.
func recordSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func TestNewRetry(t *testing.T) {
	r := NewRetry(RetryConfig{})

	if r.config.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", r.config.MaxAttempts)
	}
	if r.config.InitialDelay != 500*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 500ms", r.config.InitialDelay)
	}
	if r.config.MaxDelay != 5*time.Second {
		t.Errorf("MaxDelay = %v, want 5s", r.config.MaxDelay)
	}
	if r.config.Multiplier != 2.0 {
		t.Errorf("Multiplier = %f, want 2.0", r.config.Multiplier)
	}
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	var delays []time.Duration
	r := NewRetry(RetryConfig{Sleep: recordSleep(&delays)})

	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if len(delays) != 0 {
		t.Errorf("delays = %v, want none", delays)
	}
}

func TestRetry_SuccessOnRetry(t *testing.T) {
	var delays []time.Duration
	r := NewRetry(RetryConfig{Sleep: recordSleep(&delays)})

	attempts := 0
	testErr := errors.New("503")

	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return testErr
		}
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	want := []time.Duration{500 * time.Millisecond, time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delays[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestRetry_ExhaustedAttempts(t *testing.T) {
	var delays []time.Duration
	r := NewRetry(RetryConfig{Sleep: recordSleep(&delays)})

	attempts := 0
	testErr := errors.New("persistent error")

	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return testErr
	})

	if !errors.Is(err, testErr) {
		t.Errorf("Execute() error = %v, want wrapping %v", err, testErr)
	}
	if !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Errorf("Execute() error = %v, want wrapping ErrMaxRetriesExceeded", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	r := NewRetry(RetryConfig{
		MaxAttempts:  10,
		InitialDelay: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := r.Execute(ctx, func(ctx context.Context) error {
		attempts++
		cancel()
		return errors.New("network down")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetry_RetryIf(t *testing.T) {
	retryableErr := errors.New("retryable")
	nonRetryableErr := errors.New("non-retryable")

	var delays []time.Duration
	r := NewRetry(RetryConfig{
		Sleep: recordSleep(&delays),
		RetryIf: func(err error) bool {
			return errors.Is(err, retryableErr)
		},
	})

	tests := []struct {
		name         string
		err          error
		wantAttempts int
	}{
		{"retryable error", retryableErr, 3},
		{"non-retryable error", nonRetryableErr, 1},
		{"permanent overrides RetryIf", Permanent(retryableErr), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := r.Execute(context.Background(), func(ctx context.Context) error {
				attempts++
				return tt.err
			})
			if !errors.Is(err, tt.err) && !errors.Is(err, errors.Unwrap(tt.err)) {
				t.Errorf("Execute() error = %v, want %v", err, tt.err)
			}
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
		})
	}
}

func TestRetry_OnRetry(t *testing.T) {
	var attemptsSeen []int
	var delays []time.Duration

	r := NewRetry(RetryConfig{
		Sleep: recordSleep(&delays),
		OnRetry: func(attempt int, err error, delay time.Duration) {
			attemptsSeen = append(attemptsSeen, attempt)
		},
	})

	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("boom")
	})

	if len(attemptsSeen) != 2 {
		t.Fatalf("callbacks = %d, want 2", len(attemptsSeen))
	}
	if attemptsSeen[0] != 1 || attemptsSeen[1] != 2 {
		t.Errorf("callback attempts = %v, want [1 2]", attemptsSeen)
	}
}

func TestRetry_Delay(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RetryConfig
		attempt int
		want    time.Duration
	}{
		{"exponential first", RetryConfig{}, 1, 500 * time.Millisecond},
		{"exponential second", RetryConfig{}, 2, time.Second},
		{"exponential third", RetryConfig{}, 3, 2 * time.Second},
		{"exponential capped", RetryConfig{}, 10, 5 * time.Second},
		{"linear", RetryConfig{Strategy: BackoffLinear, InitialDelay: 10 * time.Millisecond}, 3, 30 * time.Millisecond},
		{"constant", RetryConfig{Strategy: BackoffConstant, InitialDelay: 10 * time.Millisecond}, 5, 10 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewRetry(tt.cfg).Delay(tt.attempt); got != tt.want {
				t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestRetry_DelayJitterBounds(t *testing.T) {
	r := NewRetry(RetryConfig{Jitter: true})
	for i := 0; i < 100; i++ {
		got := r.Delay(1)
		if got < 500*time.Millisecond || got >= 625*time.Millisecond {
			t.Fatalf("Delay(1) = %v, want within [500ms, 625ms)", got)
		}
	}
}

func TestPermanent(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) != nil")
	}
	base := errors.New("bad request")
	err := Permanent(base)
	if !IsPermanent(err) {
		t.Error("IsPermanent() = false, want true")
	}
	if !errors.Is(err, base) {
		t.Error("Permanent() does not unwrap to the original error")
	}
	if IsPermanent(base) {
		t.Error("IsPermanent(plain) = true, want false")
	}
}
