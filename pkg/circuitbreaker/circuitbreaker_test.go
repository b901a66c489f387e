package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

// fakeClock 可手动推进的时钟
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var errUnavailable = errors.New("redis unavailable")

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	return NewCircuitBreaker("test", Config{
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		Now: clock.Now,
	})
}

// TestCircuitBreaker_ClosedState 测试关闭状态（正常）
func TestCircuitBreaker_ClosedState(t *testing.T) {
	cb := newTestBreaker(&fakeClock{now: time.Unix(0, 0)})

	for i := 0; i < 10; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("期望成功，实际失败: %v", err)
		}
	}

	if cb.State() != StateClosed {
		t.Errorf("期望状态为CLOSED，实际%s", cb.State())
	}
	if counts := cb.Counts(); counts.TotalSuccesses != 10 {
		t.Errorf("期望成功10次，实际%d次", counts.TotalSuccesses)
	}
}

// TestCircuitBreaker_OpenState 测试连续失败后熔断
func TestCircuitBreaker_OpenState(t *testing.T) {
	cb := newTestBreaker(&fakeClock{now: time.Unix(0, 0)})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errUnavailable })
	}

	if cb.State() != StateOpen {
		t.Fatalf("期望状态为OPEN，实际%s", cb.State())
	}

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrOpenState) {
		t.Errorf("期望ErrOpenState，实际%v", err)
	}
	if called {
		t.Error("熔断状态下不应执行请求")
	}
}

// TestCircuitBreaker_HalfOpenRecovery 测试超时后半开探测并恢复
func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	cb := newTestBreaker(clock)

	var transitions []string
	cb.SetStateChangeCallback(func(name string, from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errUnavailable })
	}

	clock.Advance(31 * time.Second)
	if cb.State() != StateHalfOpen {
		t.Fatalf("期望状态为HALF_OPEN，实际%s", cb.State())
	}

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("半开状态探测请求应该通过: %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("探测成功后应恢复为CLOSED，实际%s", cb.State())
	}

	want := []string{"CLOSED->OPEN", "OPEN->HALF_OPEN", "HALF_OPEN->CLOSED"}
	if len(transitions) != len(want) {
		t.Fatalf("状态变化次数错误: %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("第%d次状态变化: expected=%s, got=%s", i, want[i], transitions[i])
		}
	}
}

// TestCircuitBreaker_HalfOpenFailure 测试半开状态探测失败重新熔断
func TestCircuitBreaker_HalfOpenFailure(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errUnavailable })
	}
	clock.Advance(31 * time.Second)

	_ = cb.Execute(func() error { return errUnavailable })
	if cb.State() != StateOpen {
		t.Errorf("探测失败应回到OPEN，实际%s", cb.State())
	}
}

// TestCircuitBreaker_IntervalReset 测试统计窗口过期清零
func TestCircuitBreaker_IntervalReset(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	cb := newTestBreaker(clock)

	_ = cb.Execute(func() error { return errUnavailable })
	_ = cb.Execute(func() error { return errUnavailable })

	clock.Advance(11 * time.Second)
	_ = cb.Execute(func() error { return errUnavailable })

	if cb.State() != StateClosed {
		t.Errorf("窗口过期后计数应清零，不应熔断，实际%s", cb.State())
	}
}

func TestCounts_FailureRate(t *testing.T) {
	c := Counts{Requests: 4, TotalFailures: 1}
	if c.FailureRate() != 0.25 {
		t.Errorf("失败率错误: %f", c.FailureRate())
	}
	empty := Counts{}
	if empty.FailureRate() != 0 {
		t.Error("无请求时失败率应为0")
	}
}
