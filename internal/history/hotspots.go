package history

import (
	"math"
	"sort"
	"time"
)

// RecencyHorizon is the age at which a change carries its minimum weight.
const RecencyHorizon = 730 // days

// Hotspot is the churn score of one file.
type Hotspot struct {
	File            string  `json:"file"`
	ChangeFrequency int     `json:"changeFrequency"`
	AuthorCount     int     `json:"authorCount"`
	LastModified    string  `json:"lastModified"`
	Score           float64 `json:"score"`
	IsHot           bool    `json:"isHot"`
}

// Hotspots is the hotspot artifact.
type Hotspots struct {
	Hotspots        []Hotspot `json:"hotspots"`
	CommitsAnalyzed int       `json:"commitsAnalyzed"`
	Threshold       float64   `json:"threshold"`
	Mean            float64   `json:"mean"`
	StdDev          float64   `json:"stdDev"`
}

// EmptyHotspots is the artifact reported when history is unavailable.
func EmptyHotspots() Hotspots {
	return Hotspots{Hotspots: []Hotspot{}}
}

// Lookup returns the hotspot for file.
func (h Hotspots) Lookup(file string) (Hotspot, bool) {
	for _, hs := range h.Hotspots {
		if hs.File == file {
			return hs, true
		}
	}
	return Hotspot{}, false
}

// RecencyWeight scales a change by its age in days: 1 for today, decaying
// linearly to a floor of 0.5.
func RecencyWeight(ageDays float64) float64 {
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Max(0.5, 1-ageDays/RecencyHorizon)
}

// ScoreHotspots scores every file in files against the churn view. Ages are
// measured from the start of now's UTC day. A file is hot when its score
// exceeds mean + 2 standard deviations of the nonzero scores, with the
// threshold rounded to two decimals before comparing.
func ScoreHotspots(files []string, stats Numstat, now time.Time) Hotspots {
	today := now.UTC().Truncate(24 * time.Hour)

	h := EmptyHotspots()
	h.CommitsAnalyzed = stats.Commits

	var nonzero []float64
	for _, f := range files {
		fc, ok := stats.Files[f]
		if !ok || fc.Changes == 0 {
			h.Hotspots = append(h.Hotspots, Hotspot{File: f})
			continue
		}
		age := today.Sub(fc.LastTime).Hours() / 24
		score := Round2(float64(fc.Changes) * float64(len(fc.Authors)) * RecencyWeight(age))
		h.Hotspots = append(h.Hotspots, Hotspot{
			File:            f,
			ChangeFrequency: fc.Changes,
			AuthorCount:     len(fc.Authors),
			LastModified:    fc.LastModified,
			Score:           score,
		})
		if score > 0 {
			nonzero = append(nonzero, score)
		}
	}

	mean, sd := meanStdDev(nonzero)
	h.Threshold = Round2(mean + 2*sd)
	h.Mean = Round2(mean)
	h.StdDev = Round2(sd)
	for i := range h.Hotspots {
		h.Hotspots[i].IsHot = h.Hotspots[i].Score > h.Threshold
	}

	sort.SliceStable(h.Hotspots, func(i, j int) bool {
		a, b := h.Hotspots[i], h.Hotspots[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.File < b.File
	})
	return h
}

// meanStdDev returns the mean and population standard deviation of xs.
func meanStdDev(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	sq := 0.0
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(sq / float64(len(xs)))
}
