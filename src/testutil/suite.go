package testutil

import (
	"fmt"
	"testing"
	"time"
)

// Timer จับเวลาการทำงานของ test แต่ละกรณี
type Timer struct {
	start time.Time
	name  string
}

func NewTimer(name string) *Timer {
	return &Timer{start: time.Now(), name: name}
}

// Stop หยุดจับเวลาแล้วพิมพ์ระยะเวลาที่ใช้
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	fmt.Printf("⏱️  %s took %v\n", t.name, d)
	return d
}

// Result ผลของ test หนึ่งกรณี
type Result struct {
	Name     string
	Duration time.Duration
	Passed   bool
}

// Suite รวบรวมผลของ test หลายกรณีแล้วสรุปตอนจบ
type Suite struct {
	Name    string
	Passed  int
	Failed  int
	Total   time.Duration
	Results []Result
}

func NewSuite(name string) *Suite {
	return &Suite{Name: name, Results: make([]Result, 0)}
}

// Run รัน subtest พร้อมจับเวลาและบันทึกผลลง suite
func (s *Suite) Run(t *testing.T, name string, fn func(t *testing.T)) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		timer := NewTimer(name)
		defer func() {
			d := timer.Stop()
			s.add(Result{Name: name, Duration: d, Passed: !t.Failed()})
		}()
		fn(t)
	})
}

func (s *Suite) add(r Result) {
	s.Results = append(s.Results, r)
	s.Total += r.Duration
	if r.Passed {
		s.Passed++
	} else {
		s.Failed++
	}
}

// PrintSummary พิมพ์สรุปผลของ suite
func (s *Suite) PrintSummary() {
	count := len(s.Results)
	if count == 0 {
		return
	}
	fmt.Printf("\n📊 Test Suite Summary: %s\n", s.Name)
	fmt.Printf("   Total Tests: %d\n", count)
	fmt.Printf("   Passed: %d ✅\n", s.Passed)
	fmt.Printf("   Failed: %d ❌\n", s.Failed)
	fmt.Printf("   Total Time: %v\n", s.Total)
	fmt.Printf("   Average Time: %v\n", s.Total/time.Duration(count))
	fmt.Printf("   Success Rate: %.2f%%\n", float64(s.Passed)/float64(count)*100)
	for _, r := range s.Results {
		status := "✅"
		if !r.Passed {
			status = "❌"
		}
		fmt.Printf("   %s %s: %v\n", status, r.Name, r.Duration)
	}
	fmt.Println()
}

// SlowWarning แจ้งเตือน (ไม่ทำให้ test ล้ม) เมื่อใช้เวลาเกินที่คาดไว้
func SlowWarning(t *testing.T, name string, d, limit time.Duration) {
	t.Helper()
	if d > limit {
		t.Logf("⚠️ %s took %v, expected less than %v", name, d, limit)
		return
	}
	t.Logf("✅ %s took %v (under %v limit)", name, d, limit)
}
