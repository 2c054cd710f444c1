package history

import (
	"regexp"
	"strings"
	"time"
)

var numstatLineRe = regexp.MustCompile(`^(\d+|-)\t(\d+|-)\t(.+)$`)

// ParseLog reads the output of
//
//	git log --format=%H%x00%an%x00%aI%x00%s --name-only
//
// A line holding NUL bytes starts a commit; the non-empty lines after it are
// that commit's files. Headers with missing fields or an unparseable date
// are dropped together with their files.
func ParseLog(out string) []Commit {
	var commits []Commit
	var cur *Commit
	flush := func() {
		if cur != nil {
			commits = append(commits, *cur)
			cur = nil
		}
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.Contains(line, "\x00") {
			flush()
			parts := strings.Split(line, "\x00")
			if len(parts) < 4 {
				continue
			}
			when, err := time.Parse(time.RFC3339, parts[2])
			if err != nil {
				continue
			}
			cur = &Commit{
				Hash:    parts[0],
				Author:  parts[1],
				Date:    parts[2],
				When:    when,
				Message: parts[3],
				Files:   []string{},
			}
			continue
		}
		if cur == nil || strings.TrimSpace(line) == "" {
			continue
		}
		cur.Files = append(cur.Files, line)
	}
	flush()
	return commits
}

// ParseNumstat reads the output of
//
//	git log --numstat --format=%H%x00%an%x00%aI
//
// and tallies changes per path. Renamed paths are credited to their new
// name.
func ParseNumstat(out string) Numstat {
	ns := Numstat{Files: map[string]*FileChurn{}}
	var author, date string
	var when time.Time
	inCommit := false

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.Contains(line, "\x00") {
			parts := strings.Split(line, "\x00")
			inCommit = false
			if len(parts) < 3 {
				continue
			}
			t, err := time.Parse(time.RFC3339, parts[2])
			if err != nil {
				continue
			}
			author, date, when = parts[1], parts[2], t
			inCommit = true
			ns.Commits++
			continue
		}
		if !inCommit {
			continue
		}
		m := numstatLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		file := RenamedPath(m[3])
		fc, ok := ns.Files[file]
		if !ok {
			fc = &FileChurn{}
			ns.Files[file] = fc
		}
		fc.Changes++
		if !contains(fc.Authors, author) {
			fc.Authors = append(fc.Authors, author)
		}
		if fc.LastModified == "" || when.After(fc.LastTime) {
			fc.LastModified = date
			fc.LastTime = when
		}
	}
	return ns
}

// RenamedPath resolves git's rename notation ("old => new" or
// "dir/{old => new}/file") to the destination path.
func RenamedPath(p string) string {
	if open := strings.Index(p, "{"); open >= 0 {
		if n := strings.Index(p[open:], "}"); n >= 0 {
			closing := open + n
			inner := p[open+1 : closing]
			if arrow := strings.Index(inner, " => "); arrow >= 0 {
				joined := p[:open] + inner[arrow+4:] + p[closing+1:]
				return strings.TrimPrefix(strings.ReplaceAll(joined, "//", "/"), "/")
			}
		}
	}
	if arrow := strings.Index(p, " => "); arrow >= 0 {
		return p[arrow+4:]
	}
	return p
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
