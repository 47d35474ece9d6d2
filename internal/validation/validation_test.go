package validation

import "testing"

func TestEmail(t *testing.T) {
	valid := []string{"a@example.com", "first.last+tag@shop.co.in"}
	invalid := []string{"", "plain", "a@", "@example.com", "a b@example.com"}
	for _, s := range valid {
		if !Email(s) {
			t.Fatalf("expected %q valid", s)
		}
	}
	for _, s := range invalid {
		if Email(s) {
			t.Fatalf("expected %q invalid", s)
		}
	}
}
