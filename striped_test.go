package hashset

import "testing"

func TestStripedConstructorDefaults(t *testing.T) {
	s := NewStriped[int](0, 0, intHasher)
	if got := s.stripeCount(); got != defaultStripes {
		t.Fatalf("stripeCount() = %d, want default %d when stripes=0", got, defaultStripes)
	}
	if got := len(s.bucketsSnapshot()); got != kMinBuckets {
		t.Fatalf("bucket count = %d, want %d", got, kMinBuckets)
	}
}

// TestStripedStripeCountInvariance drives the table until the bucket count
// grows well past the initial stripe count, and confirms the lock array
// never changes size.
func TestStripedStripeCountInvariance(t *testing.T) {
	s := NewStriped[int](4, 8, intHasher)
	for i := 0; i < 2000; i++ {
		s.Add(i)
	}
	if got := len(s.bucketsSnapshot()); got < 256 {
		t.Fatalf("bucket count = %d, want >= 256 after 2000 inserts", got)
	}
	if got := s.stripeCount(); got != 8 {
		t.Fatalf("stripeCount() = %d, want unchanged 8", got)
	}
}

func TestStripedShrinksOnRemove(t *testing.T) {
	s := NewStriped[int](4, 8, intHasher)
	for i := 0; i < 400; i++ {
		s.Add(i)
	}
	grown := len(s.bucketsSnapshot())
	for i := 0; i < 395; i++ {
		s.Remove(i)
	}
	if got := len(s.bucketsSnapshot()); got >= grown {
		t.Fatalf("bucket count after removing most elements = %d, want < %d", got, grown)
	}
	if s.stripeCount() != 8 {
		t.Fatalf("stripeCount() changed after shrink, want unchanged 8")
	}
}

func TestStripedRemoveAbsentIsNoop(t *testing.T) {
	s := NewStriped[int](4, 8, intHasher)
	s.Add(1)
	if s.Remove(999) {
		t.Fatalf("Remove(999) = true, want false")
	}
	if got := s.Size(); got != 1 {
		t.Fatalf("Size() = %d, want 1", got)
	}
}
