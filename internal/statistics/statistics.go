package statistics

import (
	"fmt"
	"math"
	"sort"
)

// RoundResult represents the settled outcome of a single round
type RoundResult struct {
	Stake   int    // Amount debited at the start of the round
	Payout  int    // Amount credited at settlement, zero on a loss
	Outcome string // Engine outcome code (win, push, jackpot, ...)
}

// Net is the payout minus the stake
func (r RoundResult) Net() int {
	return r.Payout - r.Stake
}

// Statistics tracks wager simulation statistics
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // Store all values for median/percentile calculation

	Wagered  int64 // Total stakes debited
	Returned int64 // Total payouts credited

	Wins   int // Rounds with payout above the stake
	Losses int // Rounds with payout below the stake
	Pushes int // Rounds returning exactly the stake

	Outcomes  map[string]int // Rounds per engine outcome code
	MaxPayout int            // Largest single payout observed
}

// Mean returns the mean net result per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// RTP returns the return to player: total returned over total wagered
func (s *Statistics) RTP() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return float64(s.Returned) / float64(s.Wagered)
}

// HouseEdge is the share of each stake the house keeps on average
func (s *Statistics) HouseEdge() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return 1 - s.RTP()
}

// WinRate returns the share of rounds the player came out ahead
func (s *Statistics) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Rounds)
}

// Add incorporates a new round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	net := float64(result.Net())
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)

	s.Wagered += int64(result.Stake)
	s.Returned += int64(result.Payout)

	switch {
	case net > 0:
		s.Wins++
	case net < 0:
		s.Losses++
	default:
		s.Pushes++
	}

	if s.Outcomes == nil {
		s.Outcomes = make(map[string]int)
	}
	s.Outcomes[result.Outcome]++

	if result.Payout > s.MaxPayout {
		s.MaxPayout = result.Payout
	}
}

// Merge folds another set of statistics into this one
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)
	s.Wagered += other.Wagered
	s.Returned += other.Returned
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.MaxPayout = max(s.MaxPayout, other.MaxPayout)

	if len(other.Outcomes) > 0 && s.Outcomes == nil {
		s.Outcomes = make(map[string]int, len(other.Outcomes))
	}
	for k, v := range other.Outcomes {
		s.Outcomes[k] += v
	}
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// IsLedgerBalanced checks the net total matches returned minus wagered
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.SumNet-float64(s.Returned-s.Wagered)) <= 1e-6
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: net=%.0f, returned=%d, wagered=%d",
			s.SumNet, s.Returned, s.Wagered)
	}

	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}

	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}

	if s.Wins+s.Losses+s.Pushes != s.Rounds {
		return fmt.Errorf("wins, losses and pushes (%d) do not add up to rounds (%d)",
			s.Wins+s.Losses+s.Pushes, s.Rounds)
	}

	total := 0
	for _, n := range s.Outcomes {
		total += n
	}
	if total != s.Rounds {
		return fmt.Errorf("outcome total (%d) does not match rounds (%d)", total, s.Rounds)
	}

	return nil
}
