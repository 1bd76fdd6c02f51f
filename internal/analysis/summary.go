package analysis

import "candlewatch/internal/domain"

// VoteLabel folds buy/sell counts into a five-tier label. An empty set
// is Neutral; everything else follows the ratio thresholds.
func VoteLabel(buyCount, sellCount, total int) domain.SummaryLabel {
	if total == 0 {
		return domain.SummaryNeutral
	}
	buyRatio := float64(buyCount) / float64(total)
	sellRatio := float64(sellCount) / float64(total)
	switch {
	case buyRatio >= 0.7:
		return domain.SummaryStrongBuy
	case buyRatio >= 0.5:
		return domain.SummaryBuy
	case sellRatio >= 0.7:
		return domain.SummaryStrongSell
	case sellRatio >= 0.5:
		return domain.SummarySell
	default:
		return domain.SummaryNeutral
	}
}

func countVotes(signals []domain.Signal) (buy, sell int) {
	for _, s := range signals {
		switch {
		case s.IsBullish():
			buy++
		case s.IsBearish():
			sell++
		}
	}
	return buy, sell
}

// SummaryPolicy derives the three-way verdict from the indicator and
// moving-average signal sets. The two policies differ only in how the
// overall label is formed; they are deliberately kept distinct rather
// than unified, since each acquisition path shipped with its own rule.
type SummaryPolicy interface {
	Summarize(indicators, movingAverages []domain.Signal) domain.SummaryTriplet
}

// UnionVotePolicy re-votes over the union of both sets for the overall
// label. Used by the remote path.
type UnionVotePolicy struct{}

func (UnionVotePolicy) Summarize(indicators, movingAverages []domain.Signal) domain.SummaryTriplet {
	indBuy, indSell := countVotes(indicators)
	maBuy, maSell := countVotes(movingAverages)
	return domain.SummaryTriplet{
		TechnicalIndicators: VoteLabel(indBuy, indSell, len(indicators)),
		MovingAverages:      VoteLabel(maBuy, maSell, len(movingAverages)),
		Overall:             VoteLabel(indBuy+maBuy, indSell+maSell, len(indicators)+len(movingAverages)),
	}
}

// AgreementPolicy requires the two sub-summaries to agree on a
// direction before the overall label leaves Neutral. Used by the local
// path.
type AgreementPolicy struct{}

func (AgreementPolicy) Summarize(indicators, movingAverages []domain.Signal) domain.SummaryTriplet {
	indBuy, indSell := countVotes(indicators)
	maBuy, maSell := countVotes(movingAverages)
	ind := VoteLabel(indBuy, indSell, len(indicators))
	ma := VoteLabel(maBuy, maSell, len(movingAverages))

	overall := domain.SummaryNeutral
	switch {
	case ind.Bullish() && ma.Bullish():
		overall = domain.SummaryBuy
	case ind.Bearish() && ma.Bearish():
		overall = domain.SummarySell
	}
	return domain.SummaryTriplet{
		Overall:             overall,
		TechnicalIndicators: ind,
		MovingAverages:      ma,
	}
}
