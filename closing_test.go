package optfolio

import "testing"

func TestResolveClosingPrices(t *testing.T) {
	today := MustParseDate("2025-07-01")
	expiration := MustParseDate("2025-06-20")

	txn := func(typ TxnType, strike float64, optionType OptionType, qty, price float64, day string) Transaction {
		return Transaction{
			Ticker:     "XYZ",
			Expiration: expiration,
			Strike:     USD(strike),
			OptionType: optionType,
			Quantity:   Q(qty),
			Price:      USD(price),
			Date:       MustParseDate(day),
			Type:       typ,
		}
	}

	t.Run("explicit closes blend into a weighted average", func(t *testing.T) {
		txs := []Transaction{
			txn(SoldToClose, 100, Call, 3, 2.50, "2025-06-10"),
			txn(SoldToClose, 100, Call, 1, 3.50, "2025-06-12"),
		}
		prices := ResolveClosingPrices(txs, nil, today)

		key := ContractKey("XYZ", expiration, USD(100), Call)
		got, ok := prices[key]
		if !ok {
			t.Fatalf("no price resolved for %q", key)
		}
		// (3*2.50 + 1*3.50) / 4 = 2.75
		if !got.Equal(USD(2.75)) {
			t.Errorf("price = %s, want 2.75", got.Dec())
		}
	})

	t.Run("assignment values at intrinsic against max same-day stock price", func(t *testing.T) {
		txs := []Transaction{txn(OptionAssigned, 100, Call, -1, 0, "2025-06-20")}
		stocks := []StockTransaction{
			{Ticker: "XYZ", Date: MustParseDate("2025-06-20"), Quantity: Q(100), Price: USD(103)},
			{Ticker: "XYZ", Date: MustParseDate("2025-06-20"), Quantity: Q(100), Price: USD(105)},
			{Ticker: "XYZ", Date: MustParseDate("2025-06-21"), Quantity: Q(100), Price: USD(110)}, // different day, ignored
		}
		prices := ResolveClosingPrices(txs, stocks, today)

		got, ok := prices[ContractKey("XYZ", expiration, USD(100), Call)]
		if !ok {
			t.Fatal("no price resolved for assigned call")
		}
		if !got.Equal(USD(5)) {
			t.Errorf("price = %s, want 5", got.Dec())
		}
	})

	t.Run("exercised put intrinsic is floored at zero", func(t *testing.T) {
		txs := []Transaction{txn(OptionExercised, 100, Put, 1, 0, "2025-06-20")}
		stocks := []StockTransaction{
			{Ticker: "XYZ", Date: MustParseDate("2025-06-20"), Quantity: Q(-100), Price: USD(105)},
		}
		prices := ResolveClosingPrices(txs, stocks, today)

		got, ok := prices[ContractKey("XYZ", expiration, USD(100), Put)]
		if !ok {
			t.Fatal("no price resolved for exercised put")
		}
		if !got.IsZero() {
			t.Errorf("price = %s, want 0", got.Dec())
		}
	})

	t.Run("expired before today resolves to zero", func(t *testing.T) {
		txs := []Transaction{txn(BoughtToOpen, 100, Call, 1, 2.00, "2025-06-02")}
		prices := ResolveClosingPrices(txs, nil, today)

		got, ok := prices[ContractKey("XYZ", expiration, USD(100), Call)]
		if !ok {
			t.Fatal("no price resolved for expired contract")
		}
		if !got.IsZero() {
			t.Errorf("price = %s, want 0", got.Dec())
		}
	})

	t.Run("explicit expiry record settles at zero without waiting for the date", func(t *testing.T) {
		expired := txn(OptionExpired, 100, Call, -1, 0, "2025-06-20")
		expired.Expiration = MustParseDate("2025-12-19") // still in the future
		prices := ResolveClosingPrices([]Transaction{expired}, nil, today)

		got, ok := prices[ContractKey("XYZ", MustParseDate("2025-12-19"), USD(100), Call)]
		if !ok {
			t.Fatal("no price resolved for explicitly expired contract")
		}
		if !got.IsZero() {
			t.Errorf("price = %s, want 0", got.Dec())
		}
	})

	t.Run("explicit close wins over an expiry record", func(t *testing.T) {
		txs := []Transaction{
			txn(SoldToClose, 100, Call, 1, 0.35, "2025-06-18"),
			txn(OptionExpired, 100, Call, -1, 0, "2025-06-20"),
		}
		prices := ResolveClosingPrices(txs, nil, today)

		got := prices[ContractKey("XYZ", expiration, USD(100), Call)]
		if !got.Equal(USD(0.35)) {
			t.Errorf("price = %s, want the explicit close at 0.35", got.Dec())
		}
	})

	t.Run("not yet expired contracts stay unresolved", func(t *testing.T) {
		open := txn(BoughtToOpen, 100, Call, 1, 2.00, "2025-06-02")
		open.Expiration = MustParseDate("2025-12-19")
		prices := ResolveClosingPrices([]Transaction{open}, nil, today)

		if len(prices) != 0 {
			t.Errorf("resolved %d prices, want 0: %v", len(prices), prices)
		}
	})

	t.Run("earlier tier is never overwritten", func(t *testing.T) {
		// An explicit close and an assignment on the same contract: the
		// explicit close wins even though both tiers apply.
		txs := []Transaction{
			txn(BoughtToOpen, 100, Call, -1, 2.00, "2025-06-02"),
			txn(BoughtToCover, 100, Call, 1, 1.40, "2025-06-15"),
			txn(OptionAssigned, 100, Call, -1, 0, "2025-06-20"),
		}
		stocks := []StockTransaction{
			{Ticker: "XYZ", Date: MustParseDate("2025-06-20"), Quantity: Q(100), Price: USD(105)},
		}
		prices := ResolveClosingPrices(txs, stocks, today)

		got := prices[ContractKey("XYZ", expiration, USD(100), Call)]
		if !got.Equal(USD(1.40)) {
			t.Errorf("price = %s, want the explicit close at 1.40", got.Dec())
		}
	})

	t.Run("assignment without same-day stock price stays unresolved until expiry", func(t *testing.T) {
		txs := []Transaction{txn(OptionAssigned, 100, Call, -1, 0, "2025-06-20")}
		prices := ResolveClosingPrices(txs, nil, today)

		if _, ok := prices[ContractKey("XYZ", expiration, USD(100), Call)]; ok {
			t.Error("resolved a price with no same-day stock trade to value against")
		}
	})
}

func TestClosingPrices_Sorted(t *testing.T) {
	prices := ClosingPrices{
		"B|2025-06-20|100|CALL": USD(1),
		"A|2025-06-20|100|CALL": USD(2),
	}
	var keys []string
	for key := range prices.Sorted() {
		keys = append(keys, key)
	}
	if len(keys) != 2 || keys[0] != "A|2025-06-20|100|CALL" || keys[1] != "B|2025-06-20|100|CALL" {
		t.Errorf("Sorted() order = %v", keys)
	}
}
