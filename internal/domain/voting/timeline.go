package voting

import (
	"sort"
	"time"

	"github.com/jhoicas/encuestas-api/internal/domain/entity"
)

// TimelinePoint bucket con conteo propio y acumulado.
type TimelinePoint struct {
	Label      string
	Votes      int64
	Cumulative int64
}

// Timeline ordena cronológicamente los buckets, fusiona duplicados y acumula.
func Timeline(bucket entity.Bucket, buckets []entity.TimeBucket) []TimelinePoint {
	merged := make(map[int64]int64, len(buckets))
	for _, b := range buckets {
		merged[bucket.Truncate(b.Start).Unix()] += b.Votes
	}
	keys := make([]int64, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]TimelinePoint, 0, len(keys))
	var total int64
	for _, k := range keys {
		total += merged[k]
		out = append(out, TimelinePoint{
			Label:      bucket.Label(unixUTC(k)),
			Votes:      merged[k],
			Cumulative: total,
		})
	}
	return out
}

func unixUTC(sec int64) time.Time { return time.Unix(sec, 0).UTC() }
