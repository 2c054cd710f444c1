// Package risk scores every file for change risk from its path, its
// external dependencies, its churn and the mitigations it shows.
package risk

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dusk-indust/dontreadme/internal/extract"
	"github.com/dusk-indust/dontreadme/internal/history"
	"github.com/dusk-indust/dontreadme/internal/source"
)

// Domain is the sensitive area a path belongs to.
type Domain string

const (
	DomainAuth       Domain = "auth"
	DomainPayment    Domain = "payment"
	DomainAPI        Domain = "api"
	DomainDatabase   Domain = "database"
	DomainFileSystem Domain = "file-system"
	DomainCrypto     Domain = "crypto"
	DomainUserData   Domain = "user-data"
	DomainAdmin      Domain = "admin"
	DomainConfig     Domain = "config"
	DomainGeneral    Domain = "general"
)

// Severity buckets a final score.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities from low (1) to critical (4). Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// ParseSeverity accepts a severity name in any case.
func ParseSeverity(name string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(name)))
	if s.Rank() == 0 {
		return "", fmt.Errorf("unknown severity %q", name)
	}
	return s, nil
}

// Tunables.
const (
	// MeanScale divides a non-hot file's score by mean*MeanScale when
	// computing its hotspot multiplier.
	MeanScale     = 4.0
	HotMultiplier = 1.5
	TopN          = 10
	generalRisk   = 2
)

var domainPatterns = []struct {
	re       *regexp.Regexp
	domain   Domain
	baseRisk int
}{
	{regexp.MustCompile(`(?i)\bauth`), DomainAuth, 9},
	{regexp.MustCompile(`(?i)\bpayment|billing|checkout|stripe|charge`), DomainPayment, 10},
	{regexp.MustCompile(`(?i)\bapi\b|routes?|endpoint|handler`), DomainAPI, 7},
	{regexp.MustCompile(`(?i)\bdb\b|database|prisma|sequelize|knex|migration`), DomainDatabase, 7},
	{regexp.MustCompile(`(?i)\bfs\b|file-?system|upload|storage|s3`), DomainFileSystem, 6},
	{regexp.MustCompile(`(?i)\bcrypt|encrypt|decrypt|hash|secret|token|jwt|oauth`), DomainCrypto, 9},
	{regexp.MustCompile(`(?i)\buser|profile|account|session`), DomainUserData, 7},
	{regexp.MustCompile(`(?i)\badmin|dashboard|manage`), DomainAdmin, 8},
	{regexp.MustCompile(`(?i)\bconfig|env|settings`), DomainConfig, 5},
}

// Mitigation names.
const (
	MitigationTests           = "has-tests"
	MitigationValidation      = "has-validation"
	MitigationRateLimiting    = "has-rate-limiting"
	MitigationSecurityHeaders = "has-security-headers"
	MitigationAuditLogging    = "has-audit-logging"
	MitigationCompanionTest   = "has-companion-test"
)

// Mitigation patterns are case-sensitive.
var mitigationPatterns = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`\.test\.|\.spec\.|__test__|__spec__`), MitigationTests},
	{regexp.MustCompile(`validate|sanitize|escape|zod|joi|yup`), MitigationValidation},
	{regexp.MustCompile(`rate-?limit|throttle`), MitigationRateLimiting},
	{regexp.MustCompile(`helmet|cors|csrf|csp`), MitigationSecurityHeaders},
	{regexp.MustCompile(`audit|log|monitor`), MitigationAuditLogging},
}

// Entry is the risk assessment of one file.
type Entry struct {
	File              string   `json:"file"`
	Domain            Domain   `json:"domain"`
	BaseRisk          int      `json:"baseRisk"`
	HotspotMultiplier float64  `json:"hotspotMultiplier"`
	ExternalDepCount  int      `json:"externalDepCount"`
	Mitigations       []string `json:"mitigations"`
	FinalScore        float64  `json:"finalScore"`
	Severity          Severity `json:"severity"`
}

// Summary counts entries per severity.
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Profile is the risk-profile artifact.
type Profile struct {
	Entries     []Entry  `json:"entries"`
	Summary     Summary  `json:"summary"`
	HighestRisk []string `json:"highestRisk"`
}

// EmptyProfile is the artifact reported when the analysis did not run.
func EmptyProfile() Profile {
	return Profile{Entries: []Entry{}, HighestRisk: []string{}}
}

// ClassifyDomain returns the first domain whose pattern matches path.
func ClassifyDomain(path string) (Domain, int) {
	for _, p := range domainPatterns {
		if p.re.MatchString(path) {
			return p.domain, p.baseRisk
		}
	}
	return DomainGeneral, generalRisk
}

// SeverityOf buckets a final score.
func SeverityOf(score float64) Severity {
	switch {
	case score >= 12:
		return SeverityCritical
	case score >= 8:
		return SeverityHigh
	case score >= 4:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// HotspotMultiplier scales risk by churn. hot wins outright; otherwise a
// nonzero score adds up to half again relative to the corpus mean.
func HotspotMultiplier(h history.Hotspot, ok bool, mean float64) float64 {
	switch {
	case !ok:
		return 1
	case h.IsHot:
		return HotMultiplier
	case h.Score > 0:
		div := mean * MeanScale
		if div == 0 {
			div = 1
		}
		return 1 + h.Score/div*0.5
	default:
		return 1
	}
}

// MitigationFactor discounts risk by 10% per mitigation, down to half.
func MitigationFactor(n int) float64 {
	f := 1 - 0.1*float64(n)
	if f < 0.5 {
		return 0.5
	}
	return f
}

// FinalScore combines the factors and rounds to two decimals.
func FinalScore(baseRisk int, multiplier float64, externalDeps, mitigations int) float64 {
	return history.Round2(float64(baseRisk) * multiplier * (1 + float64(externalDeps)*0.1) * MitigationFactor(mitigations))
}

// Mitigations lists the mitigations evident in a file's text or path, plus
// a companion test file when exists reports one.
func Mitigations(path, text string, exists func(string) bool) []string {
	var out []string
	for _, m := range mitigationPatterns {
		if m.re.MatchString(text) || m.re.MatchString(path) {
			out = append(out, m.name)
		}
	}
	if exists != nil {
		for _, variant := range companionTests(path) {
			if exists(variant) {
				out = append(out, MitigationCompanionTest)
				break
			}
		}
	}
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return out
}

func companionTests(path string) []string {
	var out []string
	switch {
	case strings.HasSuffix(path, ".ts"):
		stem := strings.TrimSuffix(path, ".ts")
		out = append(out, stem+".test.ts", stem+".spec.ts")
	case strings.HasSuffix(path, ".tsx"):
		out = append(out, strings.TrimSuffix(path, ".tsx")+".test.tsx")
	case strings.HasSuffix(path, ".js"):
		out = append(out, strings.TrimSuffix(path, ".js")+".test.js")
	}
	return out
}

// Score assesses every listed file in files. Files that could not be read
// are scored from their path and churn alone. reader is consulted for
// companion test files and may be nil.
func Score(files *source.Set, reader source.Reader, scanner extract.Scanner, hotspots history.Hotspots) Profile {
	byFile := make(map[string]history.Hotspot, len(hotspots.Hotspots))
	for _, h := range hotspots.Hotspots {
		byFile[h.File] = h
	}
	var exists func(string) bool
	if reader != nil {
		exists = reader.Exists
	}

	p := EmptyProfile()
	for _, path := range files.Paths() {
		domain, base := ClassifyDomain(path)
		h, ok := byFile[path]
		mult := HotspotMultiplier(h, ok, hotspots.Mean)

		ext := 0
		mitigations := []string{}
		if f, readable := files.Get(path); readable {
			ext = scanner.Scan(f.Path, f.Text).ExternalImportCount()
			mitigations = Mitigations(path, f.Text, exists)
		}

		final := FinalScore(base, mult, ext, len(mitigations))
		p.Entries = append(p.Entries, Entry{
			File:              path,
			Domain:            domain,
			BaseRisk:          base,
			HotspotMultiplier: history.Round2(mult),
			ExternalDepCount:  ext,
			Mitigations:       mitigations,
			FinalScore:        final,
			Severity:          SeverityOf(final),
		})
	}

	sort.SliceStable(p.Entries, func(i, j int) bool {
		a, b := p.Entries[i], p.Entries[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		return a.File < b.File
	})

	for i, e := range p.Entries {
		switch e.Severity {
		case SeverityCritical:
			p.Summary.Critical++
		case SeverityHigh:
			p.Summary.High++
		case SeverityMedium:
			p.Summary.Medium++
		default:
			p.Summary.Low++
		}
		if i < TopN {
			p.HighestRisk = append(p.HighestRisk, e.File)
		}
	}
	return p
}
