// Package fragments resolves platform-conditional content fragments. A
// fragment set maps platform tags to content variants for one slot; the
// resolver picks exactly one variant for any requested tag, falling back
// silently to the default. Absence of a platform variant is an expected,
// common case and never a hard error.
package fragments

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/docsite/internal/docs"
)

// Ref is one resolved fragment variant.
type Ref struct {
	Tag        string
	SourcePath string
	Body       []byte
}

// Match classifies how a variant was selected.
type Match string

const (
	MatchExact   Match = "exact"
	MatchDefault Match = "default"
	MatchFirst   Match = "first" // set lacks both requested and default tag
)

// Set holds the variants for one slot. Tags within a set are unique by
// construction: each variant comes from a distinct <slot>.<tag>.md file.
type Set struct {
	Slot    string
	Section string
	byTag   map[string]Ref
}

// Tags returns the set's platform tags in sorted order.
func (s *Set) Tags() []string {
	tags := make([]string, 0, len(s.byTag))
	for t := range s.byTag {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Resolve returns exactly one variant: the exact match for requested, else
// the defaultTag variant, else the lexicographically first variant. A Set
// is never empty, so a variant always exists.
func (s *Set) Resolve(requested, defaultTag string) (Ref, Match) {
	if r, ok := s.byTag[requested]; ok {
		return r, MatchExact
	}
	if r, ok := s.byTag[defaultTag]; ok {
		return r, MatchDefault
	}
	tags := s.Tags()
	return s.byTag[tags[0]], MatchFirst
}

// Index locates fragment sets by section and slot.
type Index struct {
	sets map[string]*Set
}

func key(section, slot string) string { return section + "\x00" + slot }

// BuildIndex groups discovered fragment files into sets.
func BuildIndex(files []docs.DocFile) (*Index, error) {
	idx := &Index{sets: make(map[string]*Set)}
	for _, f := range files {
		if !f.IsFragment {
			continue
		}
		k := key(f.Section, f.FragmentSlot)
		set, ok := idx.sets[k]
		if !ok {
			set = &Set{Slot: f.FragmentSlot, Section: f.Section, byTag: make(map[string]Ref)}
			idx.sets[k] = set
		}
		if _, dup := set.byTag[f.FragmentTag]; dup {
			return nil, fmt.Errorf("fragment %s/%s: duplicate tag %s", f.Section, f.FragmentSlot, f.FragmentTag)
		}
		set.byTag[f.FragmentTag] = Ref{Tag: f.FragmentTag, SourcePath: f.RelativePath, Body: f.Body}
	}
	return idx, nil
}

// Lookup finds the fragment set for a slot referenced from a page in the
// given section. Slots are section-scoped; a page only sees sets that live
// beside it.
func (i *Index) Lookup(section, slot string) (*Set, bool) {
	s, ok := i.sets[key(section, slot)]
	return s, ok
}

// Len returns the number of fragment sets.
func (i *Index) Len() int { return len(i.sets) }
