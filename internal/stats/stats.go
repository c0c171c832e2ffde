// Package stats summarises a trimming run: how many reads carried a tail,
// how long the tails were and what the trimmed reads look like.
package stats

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Accumulator collects per-read lengths. The zero value is ready to use. It
// is not safe for concurrent use.
type Accumulator struct {
	tails []float64
	kept  []int

	basesIn, basesOut int
	trimmed, allTail  int
}

// Add records a read of readLen bases with a tail of tailLen bases.
func (a *Accumulator) Add(readLen, tailLen int) {
	a.tails = append(a.tails, float64(tailLen))
	a.kept = append(a.kept, readLen-tailLen)
	a.basesIn += readLen
	a.basesOut += readLen - tailLen
	if tailLen > 0 {
		a.trimmed++
	}
	if tailLen == readLen {
		a.allTail++
	}
}

// Merge folds other into a.
func (a *Accumulator) Merge(other *Accumulator) {
	a.tails = append(a.tails, other.tails...)
	a.kept = append(a.kept, other.kept...)
	a.basesIn += other.basesIn
	a.basesOut += other.basesOut
	a.trimmed += other.trimmed
	a.allTail += other.allTail
}

// Len returns the number of reads recorded.
func (a *Accumulator) Len() int { return len(a.tails) }

// Summary is the aggregate view of a run.
type Summary struct {
	Reads        int     `json:"reads"`
	TrimmedReads int     `json:"trimmed_reads"`
	AllTailReads int     `json:"all_tail_reads"`
	BasesIn      int     `json:"bases_in"`
	BasesOut     int     `json:"bases_out"`
	MeanTail     float64 `json:"mean_tail"` // over trimmed reads only
	MedianTail   float64 `json:"median_tail"`
	MaxTail      int     `json:"max_tail"`
	KeptN50      int     `json:"kept_n50"`
}

// BasesTrimmed returns the number of bases removed.
func (s Summary) BasesTrimmed() int { return s.BasesIn - s.BasesOut }

// TrimmedRatio returns the fraction of reads that lost a tail.
func (s Summary) TrimmedRatio() float64 {
	if s.Reads == 0 {
		return 0
	}
	return float64(s.TrimmedReads) / float64(s.Reads)
}

// Summary computes the aggregate statistics.
func (a *Accumulator) Summary() Summary {
	s := Summary{
		Reads:        len(a.tails),
		TrimmedReads: a.trimmed,
		AllTailReads: a.allTail,
		BasesIn:      a.basesIn,
		BasesOut:     a.basesOut,
		KeptN50:      N50(a.kept),
	}

	var tails []float64
	for _, t := range a.tails {
		if t > 0 {
			tails = append(tails, t)
		}
	}
	if len(tails) == 0 {
		return s
	}
	slices.Sort(tails)
	s.MeanTail = stat.Mean(tails, nil)
	s.MedianTail = median(tails)
	s.MaxTail = int(tails[len(tails)-1])
	return s
}

// median of sorted values, averaging the middle pair for even lengths.
func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// N50 returns the length L such that reads of length >= L hold at least half
// of all bases. It is 0 for no reads.
func N50(lengths []int) int {
	if len(lengths) == 0 {
		return 0
	}
	sorted := slices.Clone(lengths)
	slices.Sort(sorted)
	slices.Reverse(sorted)

	total := 0
	for _, l := range sorted {
		total += l
	}
	half := (total + 1) / 2
	running := 0
	for _, l := range sorted {
		running += l
		if running >= half {
			return l
		}
	}
	return sorted[len(sorted)-1]
}

func (s Summary) String() string {
	return fmt.Sprintf(`TrimSummary {
  reads: %d
  trimmed: %d (%.1f%%)
  entirely poly-A: %d
  bases in/out: %d / %d (%d trimmed)
  tail length mean/median/max: %.1f / %.1f / %d
  kept N50: %d
}`, s.Reads, s.TrimmedReads, s.TrimmedRatio()*100, s.AllTailReads,
		s.BasesIn, s.BasesOut, s.BasesTrimmed(),
		s.MeanTail, s.MedianTail, s.MaxTail, s.KeptN50)
}

// TailHistogram bins tail lengths of trimmed reads.
type TailHistogram struct {
	Bins     []int
	BinWidth int
}

// Histogram builds a tail histogram with numBins bins of width binWidth.
// Tails longer than the last bin land in it.
func (a *Accumulator) Histogram(numBins, binWidth int) (*TailHistogram, error) {
	if numBins <= 0 {
		return nil, fmt.Errorf("numBins must be positive")
	}
	if binWidth <= 0 {
		return nil, fmt.Errorf("binWidth must be positive")
	}

	bins := make([]int, numBins)
	for _, t := range a.tails {
		if t == 0 {
			continue
		}
		idx := min(int(t)/binWidth, numBins-1)
		bins[idx]++
	}
	return &TailHistogram{Bins: bins, BinWidth: binWidth}, nil
}

func (h *TailHistogram) String() string {
	var sb strings.Builder
	sb.WriteString("Tail Length Histogram:\n")
	for i, count := range h.Bins {
		start := i * h.BinWidth
		end := start + h.BinWidth
		label := fmt.Sprintf("%5d-%5d", start, end)
		if i == len(h.Bins)-1 {
			label = fmt.Sprintf("%5d+     ", start)
		}
		fmt.Fprintf(&sb, "%s: %s (%d)\n", label, strings.Repeat("#", count/5), count)
	}
	return sb.String()
}
