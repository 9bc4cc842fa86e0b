package kzerr

import (
	"fmt"
	"strings"
)

// Problem is a problem of an entry in a list, such as an endpoint in the endpoints file.
type Problem struct {
	Index int
	ID    string
	Err   error
}

func (p Problem) Unwrap() error {
	return p.Err
}

func (p Problem) Error() string {
	return p.Err.Error()
}

// Problems collects the problems of the entries in a section, to report them all at once.
//
// The zero Problems of a section has no problem; call Err to get it as an error.
type Problems struct {
	What    error
	Section string
	List    []Problem
}

// Add records err as a problem of the entry at index. Nil err is ignored.
func (ps *Problems) Add(index int, id string, err error) {
	if err == nil {
		return
	}
	ps.List = append(ps.List, Problem{Index: index, ID: id, Err: err})
}

// Addf is Add with fmt.Errorf.
func (ps *Problems) Addf(index int, id, format string, values ...interface{}) {
	ps.Add(index, id, fmt.Errorf(format, values...))
}

// Indexes returns the indexes of the entries that have problems, in the order they were added.
// An entry that has multiple problems appears only once.
func (ps Problems) Indexes() []int {
	var idx []int
	seen := make(map[int]bool)
	for _, p := range ps.List {
		if !seen[p.Index] {
			seen[p.Index] = true
			idx = append(idx, p.Index)
		}
	}
	return idx
}

// Err returns ps as an error, or nil if there is no problem.
func (ps Problems) Err() error {
	if len(ps.List) == 0 {
		return nil
	}
	return ps
}

// Error prints each problem on its own line, prefixed by the position of the entry.
//
//	invalid endpoints file:
//	  endpoints[0] (gateway): invalid address
//	  endpoints[2]: empty id
func (ps Problems) Error() string {
	var sb strings.Builder
	sb.WriteString(ps.What.Error())
	sb.WriteString(":")

	for _, p := range ps.List {
		pos := fmt.Sprintf("%s[%d]", ps.Section, p.Index)
		if p.ID != "" {
			pos += fmt.Sprintf(" (%s)", p.ID)
		}

		lines := strings.Split(p.Err.Error(), "\n")
		fmt.Fprintf(&sb, "\n  %s: %s", pos, lines[0])
		for _, l := range lines[1:] {
			sb.WriteString("\n    " + l)
		}
	}

	return sb.String()
}

// Unwrap returns the What member and every problem, so that errors.Is and errors.As see all of them.
func (ps Problems) Unwrap() []error {
	errs := make([]error, 0, len(ps.List)+1)
	errs = append(errs, ps.What)
	for _, p := range ps.List {
		errs = append(errs, p)
	}
	return errs
}
