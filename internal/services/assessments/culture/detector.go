// Package culture classifies free-text member messages for cultural signals
// and message register. Detection is a pure rule-table lookup: an ordered
// list of weighted expressions per culture, a colloquial-to-clinical phrase
// table, and fixed register thresholds. No state, no I/O.
package culture

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"
	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var patternTableYAML []byte

// DetectionThreshold is the minimum accumulated confidence for a culture to
// count as detected.
const DetectionThreshold = 0.25

// shortMessageWords is the word count under which a single casual marker is
// enough to classify the register as conversational.
const shortMessageWords = 12

// Register describes the overall voice of a message.
type Register string

const (
	RegisterFormal         Register = "formal"
	RegisterConversational Register = "conversational"
	RegisterCodeSwitching  Register = "code_switching"
	RegisterClinical       Register = "clinical"
)

// Detection is one culture that cleared the detection threshold.
type Detection struct {
	Culture    string
	Confidence float64
}

// ColloquialHit is one colloquial phrase found in the message together with
// its clinical vocabulary mapping.
type ColloquialHit struct {
	Phrase   string
	Clinical string
}

// Signal is the classification result for one message.
type Signal struct {
	Detected          []Detection
	PrimaryCulture    string
	PrimaryConfidence float64
	Register          Register
	Colloquial        []ColloquialHit
}

type patternSpec struct {
	Expr   string  `yaml:"expr"`
	Weight float64 `yaml:"weight"`
}

type cultureSpec struct {
	Culture  string        `yaml:"culture"`
	Patterns []patternSpec `yaml:"patterns"`
}

type tableSpec struct {
	Cultures           []cultureSpec     `yaml:"cultures"`
	ColloquialMappings map[string]string `yaml:"colloquial_mappings"`
	ClinicalTerms      []string          `yaml:"clinical_terms"`
	CasualMarkers      []string          `yaml:"casual_markers"`
}

type culturePattern struct {
	expr   *regexp.Regexp
	weight float64
}

type cultureGroup struct {
	name     string
	patterns []culturePattern
}

// Detector holds the compiled rule table.
type Detector struct {
	cultures      []cultureGroup
	colloquial    map[string]string
	phrases       []string
	phraseMatcher *ahocorasick.Automaton
	clinicalTerms []string
	casualMarkers []string
}

// NewDetector compiles the embedded pattern table.
func NewDetector() (*Detector, error) {
	var table tableSpec
	if err := yaml.Unmarshal(patternTableYAML, &table); err != nil {
		return nil, fmt.Errorf("parse pattern table: %w", err)
	}
	if len(table.Cultures) == 0 {
		return nil, fmt.Errorf("pattern table has no cultures")
	}

	detector := &Detector{
		colloquial:    make(map[string]string, len(table.ColloquialMappings)),
		clinicalTerms: canonicalizeAll(table.ClinicalTerms),
		casualMarkers: canonicalizeAll(table.CasualMarkers),
	}

	for _, spec := range table.Cultures {
		name := strings.TrimSpace(spec.Culture)
		if name == "" {
			return nil, fmt.Errorf("pattern table has a culture without a name")
		}
		group := cultureGroup{name: name}
		for _, pattern := range spec.Patterns {
			compiled, err := regexp.Compile("(?i)" + pattern.Expr)
			if err != nil {
				return nil, fmt.Errorf("compile pattern %q for %s: %w", pattern.Expr, name, err)
			}
			if pattern.Weight <= 0 {
				return nil, fmt.Errorf("pattern %q for %s has non-positive weight", pattern.Expr, name)
			}
			group.patterns = append(group.patterns, culturePattern{expr: compiled, weight: pattern.Weight})
		}
		detector.cultures = append(detector.cultures, group)
	}
	sort.Slice(detector.cultures, func(i, j int) bool {
		return detector.cultures[i].name < detector.cultures[j].name
	})

	for phrase, clinical := range table.ColloquialMappings {
		key := canonicalize(phrase)
		if key == "" || strings.TrimSpace(clinical) == "" {
			return nil, fmt.Errorf("colloquial mapping %q is incomplete", phrase)
		}
		detector.colloquial[key] = strings.TrimSpace(clinical)
	}
	detector.phrases = make([]string, 0, len(detector.colloquial))
	for phrase := range detector.colloquial {
		detector.phrases = append(detector.phrases, phrase)
	}
	sort.Strings(detector.phrases)

	matcher, err := ahocorasick.NewBuilder().
		AddStrings(detector.phrases).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build colloquial matcher: %w", err)
	}
	detector.phraseMatcher = matcher

	return detector, nil
}

// ColloquialMappings returns a copy of the colloquial-to-clinical table.
func (d *Detector) ColloquialMappings() map[string]string {
	if d == nil {
		return nil
	}
	mappings := make(map[string]string, len(d.colloquial))
	for phrase, clinical := range d.colloquial {
		mappings[phrase] = clinical
	}
	return mappings
}

// Detect classifies one message. The result is deterministic and invariant
// to call order; confidences are clamped to [0, 1].
func (d *Detector) Detect(message string) Signal {
	signal := Signal{Register: RegisterFormal}
	if d == nil {
		return signal
	}
	canon := canonicalize(message)
	if canon == "" {
		return signal
	}

	for _, group := range d.cultures {
		confidence := 0.0
		for _, pattern := range group.patterns {
			if pattern.expr.MatchString(message) {
				confidence += pattern.weight
			}
		}
		if confidence > 1.0 {
			confidence = 1.0
		}
		if confidence >= DetectionThreshold {
			signal.Detected = append(signal.Detected, Detection{
				Culture:    group.name,
				Confidence: confidence,
			})
		}
	}
	sort.SliceStable(signal.Detected, func(i, j int) bool {
		if signal.Detected[i].Confidence != signal.Detected[j].Confidence {
			return signal.Detected[i].Confidence > signal.Detected[j].Confidence
		}
		return signal.Detected[i].Culture < signal.Detected[j].Culture
	})
	if len(signal.Detected) > 0 {
		signal.PrimaryCulture = signal.Detected[0].Culture
		signal.PrimaryConfidence = signal.Detected[0].Confidence
	}

	signal.Colloquial = d.matchColloquial(canon)
	signal.Register = d.classifyRegister(canon)
	return signal
}

func (d *Detector) matchColloquial(canon string) []ColloquialHit {
	if d.phraseMatcher == nil {
		return nil
	}
	haystack := []byte(canon)
	seen := make(map[string]bool)
	var hits []ColloquialHit
	for _, match := range d.phraseMatcher.FindAllOverlapping(haystack) {
		if match.PatternID < 0 || match.PatternID >= len(d.phrases) {
			continue
		}
		if !wordBounded(canon, match.Start, match.End) {
			continue
		}
		phrase := d.phrases[match.PatternID]
		if seen[phrase] {
			continue
		}
		seen[phrase] = true
		hits = append(hits, ColloquialHit{
			Phrase:   phrase,
			Clinical: d.colloquial[phrase],
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Phrase < hits[j].Phrase })
	return hits
}

func (d *Detector) classifyRegister(canon string) Register {
	clinicalHits := countDistinctTerms(canon, d.clinicalTerms)
	casualHits := countDistinctTerms(canon, d.casualMarkers)
	wordCount := len(strings.Fields(canon))

	switch {
	case clinicalHits >= 2:
		return RegisterClinical
	case clinicalHits >= 1 && casualHits >= 1:
		return RegisterCodeSwitching
	case casualHits >= 2:
		return RegisterConversational
	case wordCount < shortMessageWords && casualHits >= 1:
		return RegisterConversational
	default:
		return RegisterFormal
	}
}

// ContextBlock renders the signal as a human-readable block for downstream
// prompting.
func (s Signal) ContextBlock() string {
	var b strings.Builder
	b.WriteString("Cultural context:\n")
	if len(s.Detected) == 0 {
		b.WriteString("  no cultural signals detected\n")
	} else {
		for _, detection := range s.Detected {
			fmt.Fprintf(&b, "  %s (confidence %.2f)\n", detection.Culture, detection.Confidence)
		}
	}
	fmt.Fprintf(&b, "Register: %s\n", s.Register)
	if len(s.Colloquial) > 0 {
		b.WriteString("Colloquial vocabulary:\n")
		for _, hit := range s.Colloquial {
			fmt.Fprintf(&b, "  %q -> %s\n", hit.Phrase, hit.Clinical)
		}
	}
	return b.String()
}

func canonicalize(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	lastWasSpace := true
	for _, r := range strings.ToLower(value) {
		switch r {
		case '‘', '’':
			r = '\''
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return strings.TrimSpace(b.String())
}

func canonicalizeAll(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		canon := canonicalize(value)
		if canon != "" {
			result = append(result, canon)
		}
	}
	sort.Strings(result)
	return result
}

func countDistinctTerms(canon string, terms []string) int {
	count := 0
	for _, term := range terms {
		if containsBoundedTerm(canon, term) {
			count++
		}
	}
	return count
}

func containsBoundedTerm(canon string, term string) bool {
	start := 0
	for {
		idx := strings.Index(canon[start:], term)
		if idx < 0 {
			return false
		}
		absolute := start + idx
		if wordBounded(canon, absolute, absolute+len(term)) {
			return true
		}
		start = absolute + 1
	}
}

func wordBounded(canon string, start int, end int) bool {
	if start > 0 && isWordByte(canon[start-1]) {
		return false
	}
	if end < len(canon) && isWordByte(canon[end]) {
		return false
	}
	return true
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
