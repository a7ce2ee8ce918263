package scoring

import "testing"

func TestCreditFormula(t *testing.T) {
	got := Credit(1.0, 3, 2)
	want := 1.0 * (3.0 / 3) * 0.5
	if got != want {
		t.Fatalf("want %v got %v", want, got)
	}
}

func TestCreditKFloorsAtOne(t *testing.T) {
	got := Credit(2.0, 3, 0)
	want := 2.0 * 1.0 * 1.0
	if got != want {
		t.Fatalf("want %v got %v", want, got)
	}
}

func TestUpdateWeightClampsToBounds(t *testing.T) {
	if got := UpdateWeight(0.1, -100, 1.0); got != MinWeight {
		t.Errorf("want floor %v, got %v", MinWeight, got)
	}
	if got := UpdateWeight(5.0, 100, 1.0); got != MaxWeight {
		t.Errorf("want ceiling %v, got %v", MaxWeight, got)
	}
}

func TestUpdateWeightEMA(t *testing.T) {
	got := UpdateWeight(1.0, 2.0, 0.1)
	want := 0.9*1.0 + 0.1*2.0
	if got != want {
		t.Fatalf("want %v got %v", want, got)
	}
}

func TestGoodMemoryIncreasesBadMemoryDecreases(t *testing.T) {
	taskScore := 1.0
	goodCredit := Credit(taskScore, 3, 2)
	badCredit := Credit(taskScore, 0, 2)

	// Start below the credit a perfect self-report assigns (0.5) so the EMA
	// step has room to move the good weight up and the bad weight down.
	const startWeight = 0.3
	goodWeight := UpdateWeight(startWeight, goodCredit, DefaultLearningRate)
	badWeight := UpdateWeight(startWeight, badCredit, DefaultLearningRate)

	if goodWeight <= startWeight {
		t.Errorf("expected good memory weight to strictly increase from %v, got %v", startWeight, goodWeight)
	}
	if badWeight >= startWeight {
		t.Errorf("expected bad memory weight to strictly decrease from %v, got %v", startWeight, badWeight)
	}
}

func TestPenalizeFloorsAtMinWeight(t *testing.T) {
	if got := Penalize(0.15, 0.01); got != MinWeight {
		t.Errorf("want %v got %v", MinWeight, got)
	}
}
