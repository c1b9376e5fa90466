package codec

import (
	"strconv"
	"strings"
)

// Step is one element of a Path: a member name or, when Member is empty, an
// array index.
type Step struct {
	Member string
	Index  int
}

// Path locates a fragment of a document by wire member names and array
// indexes, starting with the root resourceType:
//
//	Patient.contact[0].name._given[1]
type Path []Step

func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if s.Member == "" {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Member)
	}
	return b.String()
}

// loc is the decoder's view of a Path: a parent-linked chain that costs one
// allocation per step and is only turned into a Path when an error is built.
type loc struct {
	parent *loc
	member string
	index  int
}

func rootLoc(name string) *loc {
	return &loc{member: name}
}

func (l *loc) child(member string) *loc {
	return &loc{parent: l, member: member}
}

func (l *loc) at(index int) *loc {
	return &loc{parent: l, index: index}
}

func (l *loc) path() Path {
	n := 0
	for cur := l; cur != nil; cur = cur.parent {
		n++
	}
	p := make(Path, n)
	for cur := l; cur != nil; cur = cur.parent {
		n--
		p[n] = Step{Member: cur.member, Index: cur.index}
	}
	return p
}

func (l *loc) String() string {
	return l.path().String()
}
