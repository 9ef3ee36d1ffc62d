package tui

import (
	"slices"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// accountPicker is a filterable list of account ids.
type accountPicker struct {
	title    string
	items    []string
	filtered []string
	query    string
	cursor   int
}

func newAccountPicker(title string, ids []string, current string) *accountPicker {
	p := &accountPicker{title: title, items: append([]string(nil), ids...)}
	p.rebuild()
	for i, id := range p.filtered {
		if id == current {
			p.cursor = i
			break
		}
	}
	return p
}

func (p *accountPicker) current() (string, bool) {
	if p == nil || len(p.filtered) == 0 {
		return "", false
	}
	return p.filtered[p.cursor], true
}

func (p *accountPicker) up() {
	if p.cursor > 0 {
		p.cursor--
	}
}

func (p *accountPicker) down() {
	if p.cursor < len(p.filtered)-1 {
		p.cursor++
	}
}

func (p *accountPicker) backspace() {
	if p.query == "" {
		return
	}
	r := []rune(p.query)
	p.setQuery(string(r[:len(r)-1]))
}

func (p *accountPicker) typeRunes(runes []rune) {
	for _, r := range runes {
		if r < 32 || r == 127 {
			return
		}
	}
	p.setQuery(p.query + string(runes))
}

func (p *accountPicker) setQuery(q string) {
	p.query = q
	p.rebuild()
}

type scoredID struct {
	id    string
	score int
	dist  int
	index int
}

// rebuild keeps ids containing the query as a subsequence, best first:
// higher match score, then smaller edit distance, then original order.
func (p *accountPicker) rebuild() {
	q := strings.ToLower(strings.TrimSpace(p.query))
	scored := make([]scoredID, 0, len(p.items))
	for idx, id := range p.items {
		ok, score := idMatchScore(id, q)
		if !ok {
			continue
		}
		dist := 0
		if q != "" {
			dist = levenshtein.ComputeDistance(strings.ToLower(id), q)
		}
		scored = append(scored, scoredID{id: id, score: score, dist: dist, index: idx})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if scored[i].dist != scored[j].dist {
			return scored[i].dist < scored[j].dist
		}
		return scored[i].index < scored[j].index
	})
	p.filtered = p.filtered[:0]
	for _, s := range scored {
		p.filtered = append(p.filtered, s.id)
	}
	if p.cursor >= len(p.filtered) {
		p.cursor = len(p.filtered) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// idMatchScore reports whether query (lower case) is a subsequence of id and
// how well the match lines up with the id's dash-separated segments.
func idMatchScore(id, query string) (bool, int) {
	if query == "" {
		return true, 0
	}
	lower := strings.ToLower(id)

	score := len(query)
	pos := -1
	for qi := 0; qi < len(query); qi++ {
		next := strings.IndexByte(lower[pos+1:], query[qi])
		if next < 0 {
			return false, 0
		}
		at := pos + 1 + next
		switch {
		case at == 0:
			score += 10
		case lower[at-1] == '-':
			score += 5
		}
		if qi > 0 && at == pos+1 {
			score += 2
		}
		pos = at
	}

	if slices.Contains(strings.Split(lower, "-"), query) {
		score += 15
	}
	if lower == query {
		score += 20
	}
	return true, score
}
