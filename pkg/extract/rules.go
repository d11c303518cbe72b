package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Metric names the ExtractedMetrics field a Rule feeds.
type Metric string

const (
	MetricPeers    Metric = "peers"
	MetricHeight   Metric = "height"
	MetricHashrate Metric = "hashrate"
)

var metricOrder = map[Metric]int{
	MetricPeers:    0,
	MetricHeight:   1,
	MetricHashrate: 2,
}

// Rule is one recognized textual form of a metric.
//
// The first capture group holds the number. Hashrate rules may carry a second
// group with the SI prefix of the unit (k, M, G, T, P, E). Lower Priority
// values are tried first.
type Rule struct {
	Name     string
	Metric   Metric
	Priority int
	Pattern  *regexp.Regexp
}

const number = `([0-9][0-9,]*)`

// DefaultRules returns the built-in rule set ordered by metric then priority.
//
// Peers:
//
//	10 peers-ratio       "peers: 8/50"
//	20 peers-connected   "connected to 8 peers"
//	30 peers-count-key   "peer_count=8", "numPeers: 8"
//	40 peers-json        `"peerCount": 8`
//	50 peers-kv          "peers=8"
//
// Height:
//
//	10 height-kv              "height: 4501", "best_height=4501"
//	20 height-block-number    "block_number: 4501", "blockNumber=4501"
//	30 height-block-event     "imported block #4501", "mined block 4501"
//	40 height-segment-number  "Imported new chain segment number=4501"
//	50 height-hashed-number   "number=4501 hash=0x1f..."
//	90 height-loose           "height reached 4501"
//
// A bare "number=N" only counts as a height next to block context, so lines
// such as "peer number=3" never override the chain height.
//
// Hashrate:
//
//	10 hashrate-labelled  "hashrate: 12.5 MH/s"
//	20 hashrate-unit      "12.5 MH/s"
func DefaultRules() []Rule {
	rules := []Rule{
		{Name: "peers-ratio", Metric: MetricPeers, Priority: 10,
			Pattern: regexp.MustCompile(`(?i)\bpeers?\s*[:=]\s*` + number + `\s*/\s*[0-9][0-9,]*`)},
		{Name: "peers-connected", Metric: MetricPeers, Priority: 20,
			Pattern: regexp.MustCompile(`(?i)\bconnected\s+(?:to\s+)?` + number + `\s+peers?\b`)},
		{Name: "peers-count-key", Metric: MetricPeers, Priority: 30,
			Pattern: regexp.MustCompile(`(?i)\b(?:peer_count|peercount|numpeers|num_peers|connected_peers)\s*[:=]\s*` + number)},
		{Name: "peers-json", Metric: MetricPeers, Priority: 40,
			Pattern: regexp.MustCompile(`(?i)["'](?:peercount|connectedpeers|peers)["']\s*:\s*` + number)},
		{Name: "peers-kv", Metric: MetricPeers, Priority: 50,
			Pattern: regexp.MustCompile(`(?i)\bpeers?\s*[:=]\s*` + number + `\b`)},

		{Name: "height-kv", Metric: MetricHeight, Priority: 10,
			Pattern: regexp.MustCompile(`(?i)\b(?:best[ _]|tip[ _])?height\s*[:=]\s*` + number)},
		{Name: "height-block-number", Metric: MetricHeight, Priority: 20,
			Pattern: regexp.MustCompile(`(?i)\bblock[ _-]?(?:number|num)\s*[:=]\s*` + number)},
		{Name: "height-block-event", Metric: MetricHeight, Priority: 30,
			Pattern: regexp.MustCompile(`(?i)\b(?:imported|new|sealed|mined)\s+block\s+#?` + number)},
		{Name: "height-segment-number", Metric: MetricHeight, Priority: 40,
			Pattern: regexp.MustCompile(`(?i)\b(?:chain\s+segment|blocks?)\b.{0,48}?\bnumber\s*[:=]\s*` + number)},
		{Name: "height-hashed-number", Metric: MetricHeight, Priority: 50,
			Pattern: regexp.MustCompile(`(?i)\bnumber\s*[:=]\s*` + number + `\s+hash\s*[:=]`)},
		{Name: "height-loose", Metric: MetricHeight, Priority: 90,
			Pattern: regexp.MustCompile(`(?i)\bheight\b\D{0,16}?` + number)},

		{Name: "hashrate-labelled", Metric: MetricHashrate, Priority: 10,
			Pattern: regexp.MustCompile(`(?i)\bhash\s*rate\b\D{0,16}?([0-9][0-9.,]*)\s*([kmgtpe]?)h/s`)},
		{Name: "hashrate-unit", Metric: MetricHashrate, Priority: 20,
			Pattern: regexp.MustCompile(`(?i)\b([0-9][0-9.,]*)\s*([kmgtpe]?)h/s\b`)},
	}

	sortRules(rules)
	return rules
}

func sortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Metric != rules[j].Metric {
			return metricOrder[rules[i].Metric] < metricOrder[rules[j].Metric]
		}
		return rules[i].Priority < rules[j].Priority
	})
}

// Value applies the rule to a single line. The boolean is false when the
// pattern does not match or when no match parses as a number.
func (r Rule) Value(line string) (float64, bool) {
	if r.Metric == MetricHashrate {
		return r.floatValue(line)
	}
	v, ok := r.intValue(line)
	return float64(v), ok
}

func (r Rule) intValue(line string) (int64, bool) {
	for _, m := range r.Pattern.FindAllStringSubmatch(line, -1) {
		if len(m) < 2 {
			continue
		}
		if v, err := strconv.ParseInt(stripSeparators(m[1]), 10, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func (r Rule) floatValue(line string) (float64, bool) {
	for _, m := range r.Pattern.FindAllStringSubmatch(line, -1) {
		if len(m) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(stripSeparators(m[1]), 64)
		if err != nil {
			continue
		}
		if len(m) > 2 {
			v *= unitMultiplier(m[2])
		}
		return v, true
	}
	return 0, false
}

func stripSeparators(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

func unitMultiplier(prefix string) float64 {
	switch strings.ToLower(prefix) {
	case "k":
		return 1e3
	case "m":
		return 1e6
	case "g":
		return 1e9
	case "t":
		return 1e12
	case "p":
		return 1e15
	case "e":
		return 1e18
	default:
		return 1
	}
}
