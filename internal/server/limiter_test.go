package server

import "testing"

func TestLimiterAllowsWithinBurst(t *testing.T) {
	r := newLimiterRegistry(1, 3)

	for i := 0; i < 3; i++ {
		if !r.Allow("10.0.0.1") {
			t.Fatalf("Allow() = false on call %d within burst", i+1)
		}
	}
	if r.Allow("10.0.0.1") {
		t.Error("Allow() = true after burst exhausted")
	}
}

func TestLimiterBucketsPerIP(t *testing.T) {
	r := newLimiterRegistry(1, 1)

	if !r.Allow("10.0.0.1") {
		t.Fatal("Allow() = false for first client")
	}
	// A different client has its own bucket.
	if !r.Allow("10.0.0.2") {
		t.Error("Allow() = false for second client")
	}
	if r.Allow("10.0.0.1") {
		t.Error("Allow() = true for exhausted first client")
	}
}
