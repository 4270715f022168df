package floor

import "testing"

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"1":    true,
		"999":  true,
		"B1":   true,
		"B99":  true,
		"0":    false,
		"B0":   false,
		"01":   false,
		"B01":  false,
		"1000": false,
		"B100": false,
		"":     false,
		"A1":   false,
	}
	for in, want := range cases {
		if got := Valid(in); got != want {
			t.Errorf("Valid(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLeTotalOrder(t *testing.T) {
	order := []string{"B99", "B2", "B1", "1", "2", "999"}
	for i := range order {
		for j := range order {
			want := i <= j
			if got := Le(order[i], order[j]); got != want {
				t.Errorf("Le(%q, %q) = %v, want %v", order[i], order[j], got, want)
			}
		}
	}
}

func TestStepRoundTrip(t *testing.T) {
	for _, f := range []string{"B99", "B2", "B1", "1", "2", "998", "999"} {
		if up := StepUp(f); up != "999" && f != "999" {
			if down := StepDown(up); down != f {
				t.Errorf("StepDown(StepUp(%q)) = %q, want %q", f, down, f)
			}
		}
	}
}

func TestStepClampsAtExtremes(t *testing.T) {
	if got := StepUp("999"); got != "999" {
		t.Errorf("StepUp(999) = %q, want 999", got)
	}
	if got := StepDown("B99"); got != "B99" {
		t.Errorf("StepDown(B99) = %q, want B99", got)
	}
}

func TestStepCrossesGroundBoundary(t *testing.T) {
	if got := StepUp("B1"); got != "1" {
		t.Errorf("StepUp(B1) = %q, want 1", got)
	}
	if got := StepDown("1"); got != "B1" {
		t.Errorf("StepDown(1) = %q, want B1", got)
	}
}

func TestWithin(t *testing.T) {
	if !Within("B1", "B10", "10") {
		t.Errorf("expected B1 within [B10, 10]")
	}
	if Within("B20", "B10", "10") {
		t.Errorf("expected B20 outside [B10, 10]")
	}
}
