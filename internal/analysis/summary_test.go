package analysis

import (
	"testing"

	"candlewatch/internal/domain"
)

func TestVoteLabelThresholds(t *testing.T) {
	cases := []struct {
		name             string
		buy, sell, total int
		want             domain.SummaryLabel
	}{
		{"empty set", 0, 0, 0, domain.SummaryNeutral},
		{"unanimous buy", 10, 0, 10, domain.SummaryStrongBuy},
		{"seventy percent buy", 7, 3, 10, domain.SummaryStrongBuy},
		{"majority buy", 5, 5, 10, domain.SummaryBuy},
		{"unanimous sell", 0, 10, 10, domain.SummaryStrongSell},
		{"majority sell", 4, 5, 10, domain.SummarySell},
		{"split with abstentions", 3, 3, 10, domain.SummaryNeutral},
		{"all abstain", 0, 0, 10, domain.SummaryNeutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := VoteLabel(tc.buy, tc.sell, tc.total); got != tc.want {
				t.Fatalf("VoteLabel(%d,%d,%d) = %s, want %s", tc.buy, tc.sell, tc.total, got, tc.want)
			}
		})
	}
}

func TestCountVotesUsesFullVocabulary(t *testing.T) {
	signals := []domain.Signal{
		domain.SignalBuy,
		domain.SignalOversold,
		domain.SignalAccumulation,
		domain.SignalBuyingPressure,
		domain.SignalBullish,
		domain.SignalSell,
		domain.SignalOverbought,
		domain.SignalNeutral,
		domain.SignalHighVolatility,
		domain.SignalNotApplicable,
	}
	buy, sell := countVotes(signals)
	if buy != 5 {
		t.Fatalf("buy = %d, want 5", buy)
	}
	if sell != 2 {
		t.Fatalf("sell = %d, want 2", sell)
	}
}

func TestUnionVotePolicyRevotesOverUnion(t *testing.T) {
	// Indicators split 2 buy / 2 sell; MAs add 3 buys. The union is
	// 5 buy / 2 sell, which crosses the 0.7 line.
	indicators := []domain.Signal{domain.SignalBuy, domain.SignalBuy, domain.SignalSell, domain.SignalSell}
	mas := []domain.Signal{domain.SignalBuy, domain.SignalBuy, domain.SignalBuy}

	got := UnionVotePolicy{}.Summarize(indicators, mas)
	if got.TechnicalIndicators != domain.SummaryBuy {
		t.Fatalf("indicators summary = %s, want Buy", got.TechnicalIndicators)
	}
	if got.MovingAverages != domain.SummaryStrongBuy {
		t.Fatalf("moving averages summary = %s, want Strong Buy", got.MovingAverages)
	}
	if got.Overall != domain.SummaryStrongBuy {
		t.Fatalf("overall = %s, want Strong Buy", got.Overall)
	}
}

func TestUnionVotePolicyEmptySetsAreNeutral(t *testing.T) {
	got := UnionVotePolicy{}.Summarize(nil, nil)
	want := domain.SummaryTriplet{
		Overall:             domain.SummaryNeutral,
		TechnicalIndicators: domain.SummaryNeutral,
		MovingAverages:      domain.SummaryNeutral,
	}
	if got != want {
		t.Fatalf("got %+v, want all Neutral", got)
	}
}

func TestAgreementPolicyRequiresBothSides(t *testing.T) {
	bullish := []domain.Signal{domain.SignalBuy, domain.SignalBuy, domain.SignalBuy}
	bearish := []domain.Signal{domain.SignalSell, domain.SignalSell, domain.SignalSell}
	mixed := []domain.Signal{domain.SignalBuy, domain.SignalSell, domain.SignalNeutral}

	cases := []struct {
		name        string
		indicators  []domain.Signal
		mas         []domain.Signal
		wantOverall domain.SummaryLabel
	}{
		{"both bullish", bullish, bullish, domain.SummaryBuy},
		{"both bearish", bearish, bearish, domain.SummarySell},
		{"disagreement", bullish, bearish, domain.SummaryNeutral},
		{"one side undecided", bullish, mixed, domain.SummaryNeutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AgreementPolicy{}.Summarize(tc.indicators, tc.mas)
			if got.Overall != tc.wantOverall {
				t.Fatalf("overall = %s, want %s", got.Overall, tc.wantOverall)
			}
		})
	}
}
