package judge

import (
	"math"
	"regexp"
	"strconv"

	"github.com/noah-isme/eval-lab-api/internal/models"
)

// Metric labels appear in judge output either bare ("Relevance: 7") or
// with a Score suffix ("Relevance Score: 7"), optionally wrapped in
// markdown emphasis. Each pattern tolerates both.
var (
	relevancePattern   = regexp.MustCompile(`(?i)relevance(?:\s+score)?[:\s*-]*(\d{1,2})`)
	clarityPattern     = regexp.MustCompile(`(?i)clarity(?:\s+score)?[:\s*-]*(\d{1,2})`)
	consistencyPattern = regexp.MustCompile(`(?i)consistency(?:\s+score)?[:\s*-]*(\d{1,2})`)
	creativityPattern  = regexp.MustCompile(`(?i)creativity(?:/innovation)?(?:\s+score)?[:\s*-]*(\d{1,2})`)

	totalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total\s+score[:\s*-]*(\d{1,2})`),
		regexp.MustCompile(`(?i)total\s+rating[:\s*-]*(\d{1,2})`),
	}
)

// extractMetric scans text for every occurrence of the metric's label
// followed by a number. The first in-range value wins. A label whose only
// values fall outside [1,10] yields an out-of-range score, and a label that
// never appears yields an absent score. Absent is never reported as zero.
func extractMetric(pattern *regexp.Regexp, text string) models.Score {
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return models.Score{}
	}
	first := -1
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n >= 1 && n <= 10 {
			return models.PresentScore(n)
		}
		if first < 0 {
			first = n
		}
	}
	if first < 0 {
		return models.Score{}
	}
	return models.OutOfRangeScore(first)
}

// extractTotal prefers an explicit total label in the judge's response and
// falls back to the rounded arithmetic mean of whichever per-metric scores
// parsed successfully.
func extractTotal(text string, metrics ...models.Score) models.Score {
	for _, pattern := range totalPatterns {
		if score := extractMetric(pattern, text); score.State != models.ScoreAbsent {
			return score
		}
	}

	sum, count := 0, 0
	for _, score := range metrics {
		if score.Present() {
			sum += score.Value
			count++
		}
	}
	if count == 0 {
		return models.Score{}
	}
	return models.PresentScore(int(math.Round(float64(sum) / float64(count))))
}
