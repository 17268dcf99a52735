package optfolio

import (
	"testing"
)

// open builds an opening transaction for pairing tests.
func open(day, ticker, expiration string, strike float64, optionType OptionType, quantity float64, price float64) Transaction {
	typ := BoughtToOpen
	if quantity < 0 {
		typ = SoldToOpen
	}
	return Transaction{
		Ticker:     ticker,
		Expiration: MustParseDate(expiration),
		Strike:     USD(strike),
		OptionType: optionType,
		Quantity:   Q(quantity),
		Price:      USD(price),
		Date:       MustParseDate(day),
		Type:       typ,
	}
}

func TestPair_IronCondor(t *testing.T) {
	txs := []Transaction{
		open("2025-06-02", "XYZ", "2025-06-20", 95, Put, -5, 2.10),
		open("2025-06-02", "XYZ", "2025-06-20", 90, Put, 5, 1.20),
		open("2025-06-02", "XYZ", "2025-06-20", 110, Call, -5, 2.30),
		open("2025-06-02", "XYZ", "2025-06-20", 115, Call, 5, 1.10),
	}

	spreads := Pair(txs)
	if len(spreads) != 1 {
		t.Fatalf("Pair() returned %d spreads, want 1: %v", len(spreads), spreads)
	}

	got := spreads[0]
	if got.Strategy != IronCondor {
		t.Errorf("Strategy = %q, want %q", got.Strategy, IronCondor)
	}
	if !got.Quantity.Equal(Q(5)) {
		t.Errorf("Quantity = %s, want 5", got.Quantity)
	}
	wantStrikes := []float64{90, 95, 110, 115}
	if len(got.Legs) != 4 {
		t.Fatalf("len(Legs) = %d, want 4", len(got.Legs))
	}
	for i, want := range wantStrikes {
		if !got.Legs[i].Strike.Equal(USD(want)) {
			t.Errorf("Legs[%d].Strike = %s, want %v", i, got.Legs[i].Strike.Dec(), want)
		}
	}
}

func TestPair_QuantityConservation(t *testing.T) {
	// 10 long at 100, 7 short at 110: a 7-lot vertical plus 3 naked longs.
	txs := []Transaction{
		open("2025-06-02", "XYZ", "2025-06-20", 100, Call, 10, 3.00),
		open("2025-06-02", "XYZ", "2025-06-20", 110, Call, -7, 1.50),
	}

	spreads := Pair(txs)
	if len(spreads) != 2 {
		t.Fatalf("Pair() returned %d spreads, want 2: %v", len(spreads), spreads)
	}

	vertical := spreads[0]
	if vertical.Strategy != Vertical {
		t.Fatalf("spreads[0].Strategy = %q, want %q", vertical.Strategy, Vertical)
	}
	if !vertical.Quantity.Equal(Q(7)) {
		t.Errorf("vertical Quantity = %s, want 7", vertical.Quantity)
	}
	if !vertical.Legs[0].Quantity.Equal(Q(7)) || !vertical.Legs[1].Quantity.Equal(Q(-7)) {
		t.Errorf("vertical leg quantities = %s, %s, want 7, -7", vertical.Legs[0].Quantity, vertical.Legs[1].Quantity)
	}
	if !vertical.Legs[0].Strike.Equal(USD(100)) {
		t.Errorf("vertical long leg strike = %s, want 100", vertical.Legs[0].Strike.Dec())
	}

	naked := spreads[1]
	if naked.Strategy != Naked {
		t.Fatalf("spreads[1].Strategy = %q, want %q", naked.Strategy, Naked)
	}
	if !naked.Quantity.Equal(Q(3)) {
		t.Errorf("naked Quantity = %s, want 3", naked.Quantity)
	}

	// No quantity is lost or duplicated across the classification.
	var net Quantity
	for _, s := range spreads {
		for _, l := range s.Legs {
			net = net.Add(l.Quantity)
		}
	}
	if !net.Equal(Q(3)) {
		t.Errorf("net leg quantity = %s, want 3", net)
	}
}

func TestPair_StraddlesAndStrangles(t *testing.T) {
	testCases := []struct {
		name         string
		txs          []Transaction
		wantStrategy StrategyType
		wantQuantity Quantity
	}{
		{
			name: "long straddle on equal strikes",
			txs: []Transaction{
				open("2025-06-02", "XYZ", "2025-06-20", 100, Call, 2, 3.00),
				open("2025-06-02", "XYZ", "2025-06-20", 100, Put, 2, 2.80),
			},
			wantStrategy: LongStraddle,
			wantQuantity: Q(2),
		},
		{
			name: "long strangle on distinct strikes",
			txs: []Transaction{
				open("2025-06-02", "XYZ", "2025-06-20", 105, Call, 2, 1.90),
				open("2025-06-02", "XYZ", "2025-06-20", 95, Put, 2, 1.70),
			},
			wantStrategy: LongStrangle,
			wantQuantity: Q(2),
		},
		{
			name: "short straddle",
			txs: []Transaction{
				open("2025-06-02", "XYZ", "2025-06-20", 100, Call, -3, 3.00),
				open("2025-06-02", "XYZ", "2025-06-20", 100, Put, -3, 2.80),
			},
			wantStrategy: ShortStraddle,
			wantQuantity: Q(3),
		},
		{
			name: "short strangle",
			txs: []Transaction{
				open("2025-06-02", "XYZ", "2025-06-20", 110, Call, -1, 1.10),
				open("2025-06-02", "XYZ", "2025-06-20", 90, Put, -1, 1.05),
			},
			wantStrategy: ShortStrangle,
			wantQuantity: Q(1),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			spreads := Pair(tc.txs)
			if len(spreads) != 1 {
				t.Fatalf("Pair() returned %d spreads, want 1: %v", len(spreads), spreads)
			}
			got := spreads[0]
			if got.Strategy != tc.wantStrategy {
				t.Errorf("Strategy = %q, want %q", got.Strategy, tc.wantStrategy)
			}
			if !got.Quantity.Equal(tc.wantQuantity) {
				t.Errorf("Quantity = %s, want %s", got.Quantity, tc.wantQuantity)
			}
		})
	}
}

func TestPair_MixedGroupSkipsStraddles(t *testing.T) {
	// A long call and a short put never form a strangle; the group is mixed
	// direction so both legs stay naked.
	txs := []Transaction{
		open("2025-06-02", "XYZ", "2025-06-20", 105, Call, 2, 1.90),
		open("2025-06-02", "XYZ", "2025-06-20", 95, Put, -2, 1.70),
	}

	spreads := Pair(txs)
	if len(spreads) != 2 {
		t.Fatalf("Pair() returned %d spreads, want 2: %v", len(spreads), spreads)
	}
	for _, s := range spreads {
		if s.Strategy != Naked {
			t.Errorf("Strategy = %q, want %q", s.Strategy, Naked)
		}
	}
}

func TestPair_StraddleResidueFallsThrough(t *testing.T) {
	// 5 long calls and 3 long puts: a 3-lot straddle and 2 naked calls.
	txs := []Transaction{
		open("2025-06-02", "XYZ", "2025-06-20", 100, Call, 5, 3.00),
		open("2025-06-02", "XYZ", "2025-06-20", 100, Put, 3, 2.80),
	}

	spreads := Pair(txs)
	if len(spreads) != 2 {
		t.Fatalf("Pair() returned %d spreads, want 2: %v", len(spreads), spreads)
	}
	if spreads[0].Strategy != LongStraddle || !spreads[0].Quantity.Equal(Q(3)) {
		t.Errorf("spreads[0] = %v, want 3-lot long straddle", spreads[0])
	}
	if spreads[1].Strategy != Naked || !spreads[1].Quantity.Equal(Q(2)) {
		t.Errorf("spreads[1] = %v, want 2 naked calls", spreads[1])
	}
}

func TestPair_UnbalancedCondorFallsThrough(t *testing.T) {
	// Condor shape but mismatched quantities: classification falls to
	// per-type vertical pairing instead.
	txs := []Transaction{
		open("2025-06-02", "XYZ", "2025-06-20", 90, Put, 5, 1.20),
		open("2025-06-02", "XYZ", "2025-06-20", 95, Put, -5, 2.10),
		open("2025-06-02", "XYZ", "2025-06-20", 110, Call, -3, 2.30),
		open("2025-06-02", "XYZ", "2025-06-20", 115, Call, 3, 1.10),
	}

	spreads := Pair(txs)
	if len(spreads) != 2 {
		t.Fatalf("Pair() returned %d spreads, want 2: %v", len(spreads), spreads)
	}
	for _, s := range spreads {
		if s.Strategy != Vertical {
			t.Errorf("Strategy = %q, want %q", s.Strategy, Vertical)
		}
	}
}

func TestPair_GroupsByDayTickerExpiration(t *testing.T) {
	// Identical legs on different days never pair together.
	txs := []Transaction{
		open("2025-06-02", "XYZ", "2025-06-20", 100, Call, 1, 3.00),
		open("2025-06-03", "XYZ", "2025-06-20", 110, Call, -1, 1.50),
	}

	spreads := Pair(txs)
	if len(spreads) != 2 {
		t.Fatalf("Pair() returned %d spreads, want 2: %v", len(spreads), spreads)
	}
	for _, s := range spreads {
		if s.Strategy != Naked {
			t.Errorf("Strategy = %q, want %q", s.Strategy, Naked)
		}
	}
}

func TestPair_IgnoresNonOpeningTransactions(t *testing.T) {
	closing := open("2025-06-02", "XYZ", "2025-06-20", 100, Call, -1, 3.50)
	closing.Type = SoldToClose

	spreads := Pair([]Transaction{closing})
	if len(spreads) != 0 {
		t.Fatalf("Pair() returned %d spreads, want 0: %v", len(spreads), spreads)
	}
}
