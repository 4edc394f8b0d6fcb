package status

import (
	"math"
	"sort"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

const (
	trendBuckets   = 12
	minBucketWidth = time.Minute
	spikeSigma     = 2.0
)

// Trend summarises how errors are spread over the report window.
type Trend struct {
	BucketWidth time.Duration
	Counts      []int
	Mean        float64
	Median      float64
	StdDev      float64
	// Spikes holds the start of every bucket above mean + 2σ.
	Spikes []time.Time
}

// errorTrend buckets error logs between from and to. Logs without a timestamp
// or outside the range are ignored.
func errorTrend(logs []datadogV2.Log, from, to time.Time) Trend {
	span := to.Sub(from)
	width := span / trendBuckets
	if width < minBucketWidth {
		width = minBucketWidth
	}
	n := int((span + width - 1) / width)
	if n < 1 {
		n = 1
	}

	t := Trend{BucketWidth: width, Counts: make([]int, n)}
	for _, l := range logs {
		if l.Attributes == nil || l.Attributes.Timestamp == nil || l.Attributes.Status == nil {
			continue
		}
		if !isError(normalizeStatus(*l.Attributes.Status)) {
			continue
		}
		offset := l.Attributes.Timestamp.Sub(from)
		if offset < 0 || offset > span {
			continue
		}
		// A log stamped exactly at the end of the range belongs to the last bucket.
		idx := min(int(offset/width), n-1)
		t.Counts[idx]++
	}

	t.Mean = mean(t.Counts)
	t.Median = median(t.Counts)
	t.StdDev = stdDev(t.Counts, t.Mean)

	if t.StdDev > 0 {
		threshold := t.Mean + spikeSigma*t.StdDev
		for i, c := range t.Counts {
			if float64(c) > threshold {
				t.Spikes = append(t.Spikes, from.Add(time.Duration(i)*width))
			}
		}
	}

	return t
}

func mean(counts []int) float64 {
	if len(counts) == 0 {
		return 0
	}
	sum := 0
	for _, c := range counts {
		sum += c
	}
	return float64(sum) / float64(len(counts))
}

func median(counts []int) float64 {
	if len(counts) == 0 {
		return 0
	}
	sorted := make([]int, len(counts))
	copy(sorted, counts)
	sort.Ints(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return float64(sorted[n/2-1]+sorted[n/2]) / 2
	}
	return float64(sorted[n/2])
}

func stdDev(counts []int, mean float64) float64 {
	if len(counts) == 0 {
		return 0
	}
	variance := 0.0
	for _, c := range counts {
		diff := float64(c) - mean
		variance += diff * diff
	}
	variance /= float64(len(counts))
	return math.Sqrt(variance)
}
