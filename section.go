package adsmeta

import "iter"

// Section is the run of member triples that belong to one file.
type Section struct {
	Key     string
	Members []Triple
}

type groupState int

const (
	noSection groupState = iota
	inSection
)

// GroupSections partitions a triple sequence into sections.
//
// A triple with a non-empty key is a header. Outside a section, a header
// opens one and everything else is dropped. Inside a section, a triple that
// satisfies member is appended, unless it is a header for a different key;
// a header that is not a member, or a member header for a different key,
// closes the current section and opens the next one. There is no end marker:
// the next header, or the end of input, closes a section.
//
// A member header is the first member of the section it opens, which covers
// helpers that print the file name on every stream line.
func GroupSections(triples iter.Seq2[Triple, error], key func(Triple) string, member func(Triple) bool) iter.Seq2[Section, error] {
	return func(yield func(Section, error) bool) {
		state := noSection
		var cur Section

		for t, err := range triples {
			if err != nil {
				yield(Section{}, err)
				return
			}

			k := key(t)
			belongs := member(t)

			switch state {
			case noSection:
				if k == "" {
					continue
				}
				cur = openSection(k, t, belongs)
				state = inSection

			case inSection:
				if belongs && (k == "" || k == cur.Key) {
					cur.Members = append(cur.Members, t)
					continue
				}
				if k == "" {
					continue
				}
				if !yield(cur, nil) {
					return
				}
				cur = openSection(k, t, belongs)
			}
		}

		if state == inSection {
			yield(cur, nil)
		}
	}
}

func openSection(key string, header Triple, belongs bool) Section {
	s := Section{Key: key}
	if belongs {
		s.Members = append(s.Members, header)
	}
	return s
}
