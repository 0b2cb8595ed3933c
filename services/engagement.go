package services

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Recommendation is the discrete action derived from an engagement score.
type Recommendation string

const (
	RecommendSwitch   Recommendation = "SWITCH"
	RecommendFollowUp Recommendation = "FOLLOW_UP"
	RecommendContinue Recommendation = "CONTINUE"
)

// Message is the host-facing advice for the recommendation.
func (r Recommendation) Message() string {
	switch r {
	case RecommendSwitch:
		return "Consider switching topics or asking more engaging questions"
	case RecommendFollowUp:
		return "Try asking follow-up questions about specific points"
	default:
		return "Good engagement - continue current approach"
	}
}

// lengthNorm is the response length (code points) treated as fully engaged.
const lengthNorm = 200.0

// EngagementScore maps the average response length and a trend of recent lengths to [0,1].
// A trend whose first observation is 0 contributes no trend.
func EngagementScore(avgLength float64, lengthTrend []int) float64 {
	base := math.Min(1, avgLength/lengthNorm)
	if len(lengthTrend) == 0 {
		return clamp01(base)
	}
	return clamp01((base + relativeTrend(lengthTrend)) / 2)
}

func relativeTrend(lengths []int) float64 {
	first, last := lengths[0], lengths[len(lengths)-1]
	if first == 0 {
		return 0
	}
	return float64(last-first) / float64(first)
}

func Recommend(score float64) Recommendation {
	switch {
	case score < 0.3:
		return RecommendSwitch
	case score < 0.6:
		return RecommendFollowUp
	default:
		return RecommendContinue
	}
}

// ResponseLengthStats returns the mean response length and the lengths of the last three responses.
func ResponseLengthStats(responses []string) (avg float64, trend []int) {
	if len(responses) == 0 {
		return 0, []int{}
	}
	total := 0
	for _, r := range responses {
		total += utf8.RuneCountInString(r)
	}
	recent := responses[max(0, len(responses)-3):]
	trend = make([]int, len(recent))
	for i, r := range recent {
		trend[i] = utf8.RuneCountInString(r)
	}
	return float64(total) / float64(len(responses)), trend
}

// BlendedEngagementScore averages a length-based score with a model-assessed score.
// Here the trend is added rather than averaged, bounded to ±0.5, and needs two points.
func BlendedEngagementScore(avgLength float64, lengthTrend []int, modelScore float64) float64 {
	base := math.Min(1, avgLength/lengthNorm)
	trend := 0.0
	if len(lengthTrend) >= 2 {
		trend = math.Max(-0.5, math.Min(0.5, relativeTrend(lengthTrend)))
	}
	return clamp01((clamp01(base+trend) + clamp01(modelScore)) / 2)
}

type IndicatorLevel string

const (
	IndicatorHigh   IndicatorLevel = "high"
	IndicatorMedium IndicatorLevel = "medium"
	IndicatorLow    IndicatorLevel = "low"
)

type Indicator struct {
	Type    IndicatorLevel `json:"type"`
	Message string         `json:"message"`
}

// EngagementIndicator grades a single response by its length and average word length.
func EngagementIndicator(text string) Indicator {
	length := utf8.RuneCountInString(text)
	words := max(1, len(strings.Fields(text)))
	avgWord := float64(length) / float64(words)

	switch {
	case length > 200 && avgWord > 4:
		return Indicator{Type: IndicatorHigh, Message: "Detailed and engaged response"}
	case length > 100 || (length > 50 && avgWord > 5):
		return Indicator{Type: IndicatorMedium, Message: "Moderate engagement"}
	default:
		return Indicator{Type: IndicatorLow, Message: "Brief or limited response"}
	}
}

// TopicProgress is a 0-100 percentage; five exchanges complete a topic.
func TopicProgress(discussionLength int) int {
	return int(math.Round(math.Min(100, float64(discussionLength)/5*100)))
}

func ShouldTransitionTopic(engagement float64, discussionLength, repetitions int) bool {
	return engagement < 0.4 || discussionLength > 10 || repetitions > 3
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
