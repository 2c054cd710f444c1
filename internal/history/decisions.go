package history

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DecisionType is the conventional-commit family a decision belongs to.
type DecisionType string

const (
	TypeFeat     DecisionType = "feat"
	TypeFix      DecisionType = "fix"
	TypeRefactor DecisionType = "refactor"
	TypeInfra    DecisionType = "infra"
	TypeDocs     DecisionType = "docs"
	TypeTest     DecisionType = "test"
	TypeChore    DecisionType = "chore"
)

// MergeWindow is the largest gap (exclusive) between two commits of the same
// decision.
const MergeWindow = 2 * time.Hour

// DecisionCommit is the part of a commit recorded on a decision.
type DecisionCommit struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

// DateRange is an inclusive span of ISO 8601 dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Decision is a run of related commits.
type Decision struct {
	ID        string           `json:"id"`
	Type      DecisionType     `json:"type"`
	Summary   string           `json:"summary"`
	Commits   []DecisionCommit `json:"commits"`
	Files     []string         `json:"files"`
	DateRange DateRange        `json:"dateRange"`
}

// Decisions is the decision log artifact.
type Decisions struct {
	Decisions            []Decision `json:"decisions"`
	TotalCommitsAnalyzed int        `json:"totalCommitsAnalyzed"`
	DateRange            DateRange  `json:"dateRange"`
}

// EmptyDecisions is the artifact reported when history is unavailable.
func EmptyDecisions() Decisions {
	return Decisions{Decisions: []Decision{}}
}

var typePatterns = []struct {
	re  *regexp.Regexp
	typ DecisionType
}{
	{regexp.MustCompile(`(?i)^feat(\(|:|\s|!)`), TypeFeat},
	{regexp.MustCompile(`(?i)^fix(\(|:|\s|!)`), TypeFix},
	{regexp.MustCompile(`(?i)^refactor(\(|:|\s|!)`), TypeRefactor},
	{regexp.MustCompile(`(?i)^(ci|infra|build|chore\(deps\))(\(|:|\s|!)`), TypeInfra},
	{regexp.MustCompile(`(?i)^docs?(\(|:|\s|!)`), TypeDocs},
	{regexp.MustCompile(`(?i)^test(\(|:|\s|!)`), TypeTest},
	{regexp.MustCompile(`(?i)^chore(\(|:|\s|!)`), TypeChore},
	{regexp.MustCompile(`(?i)^(style|perf|revert)(\(|:|\s|!)`), TypeChore},
	// free-text fallbacks
	{regexp.MustCompile(`(?i)\badd(s|ed|ing)?\b`), TypeFeat},
	{regexp.MustCompile(`(?i)\bfix(es|ed|ing)?\b`), TypeFix},
	{regexp.MustCompile(`(?i)\brefactor`), TypeRefactor},
	{regexp.MustCompile(`(?i)\b(update|upgrade|bump)\b.*\b(dep|package|version)`), TypeInfra},
	{regexp.MustCompile(`(?i)\bdoc(s|ument)`), TypeDocs},
	{regexp.MustCompile(`(?i)\btest`), TypeTest},
}

// summaryPrefixRe matches a type keyword followed by a colon, after an
// optional scope, or by whitespace. "Fixed" and "features" are left alone.
var summaryPrefixRe = regexp.MustCompile(`(?i)^(feat|fix|refactor|docs|test|chore|ci|build|style|perf|revert)((\([^)]*\))?!?:\s*|\s+)`)

// ClassifyCommit returns the decision type of a commit message.
func ClassifyCommit(message string) DecisionType {
	for _, p := range typePatterns {
		if p.re.MatchString(message) {
			return p.typ
		}
	}
	return TypeChore
}

// BuildDecisions clusters commits, given newest first, into decisions. A
// commit joins the open decision when it has the same type as the
// decision's latest commit, lies within MergeWindow of it and touches at
// least one of the same files.
func BuildDecisions(commits []Commit) Decisions {
	d := EmptyDecisions()
	d.TotalCommitsAnalyzed = len(commits)
	if len(commits) == 0 {
		return d
	}
	d.DateRange = dateRange(commits)

	cluster := []Commit{commits[0]}
	for _, c := range commits[1:] {
		last := cluster[len(cluster)-1]
		if ClassifyCommit(c.Message) == ClassifyCommit(last.Message) &&
			absDuration(c.When.Sub(last.When)) < MergeWindow &&
			overlaps(c.Files, last.Files) {
			cluster = append(cluster, c)
			continue
		}
		d.Decisions = append(d.Decisions, toDecision(cluster, len(d.Decisions)))
		cluster = []Commit{c}
	}
	d.Decisions = append(d.Decisions, toDecision(cluster, len(d.Decisions)))
	return d
}

func toDecision(cluster []Commit, id int) Decision {
	first := cluster[0]
	commits := make([]DecisionCommit, 0, len(cluster))
	var files []string
	for _, c := range cluster {
		commits = append(commits, DecisionCommit{
			Hash:    c.Hash,
			Author:  c.Author,
			Date:    c.Date,
			Message: c.Message,
		})
		files = append(files, c.Files...)
	}

	summary := strings.TrimSpace(summaryPrefixRe.ReplaceAllString(first.Message, ""))
	if summary == "" {
		summary = first.Message
	}

	return Decision{
		ID:        "decision-" + strconv.Itoa(id),
		Type:      ClassifyCommit(first.Message),
		Summary:   summary,
		Commits:   commits,
		Files:     sortedUnique(files),
		DateRange: dateRange(cluster),
	}
}

// dateRange returns the earliest and latest dates, compared as instants.
func dateRange(commits []Commit) DateRange {
	minC, maxC := commits[0], commits[0]
	for _, c := range commits[1:] {
		if c.When.Before(minC.When) {
			minC = c
		}
		if c.When.After(maxC.When) {
			maxC = c
		}
	}
	return DateRange{Start: minC.Date, End: maxC.Date}
}

func overlaps(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, f := range a {
		set[f] = true
	}
	for _, f := range b {
		if set[f] {
			return true
		}
	}
	return false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func sortedUnique(ss []string) []string {
	if len(ss) == 0 {
		return []string{}
	}
	out := append([]string(nil), ss...)
	sort.Strings(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}
