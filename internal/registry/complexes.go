package registry

import (
	"sort"
	"strings"

	"github.com/dgallion1/edufin/internal/ledger"
)

// Component link categories.
const (
	LinkSchool    = "szkola"
	LinkPreschool = "przedszkole"
	LinkOther     = "inne"
)

const compoundUnit = "jednostka złożona"

// Component is a register row that belongs to a complex.
type Component struct {
	Row  Row
	Link string
}

// Complex is a school-and-preschool complex with its components.
type Complex struct {
	Parent     Row
	Components []Component

	SchoolNames       string  // " | "-joined, unique, in register order
	PreschoolNames    string
	SchoolStudents    float64
	PreschoolStudents float64
}

// Computed is the enrollment derived from the components.
func (c Complex) Computed() float64 {
	return c.SchoolStudents + c.PreschoolStudents
}

// Reported is the enrollment the register gives for the complex itself.
func (c Complex) Reported() ledger.Value {
	return c.Parent.Students.Value
}

// LinkOf tells schools from preschools by the component's entity type.
func LinkOf(entityType string) string {
	t := strings.ToLower(entityType)
	switch {
	case strings.Contains(t, "przedszko"):
		return LinkPreschool
	case strings.Contains(t, "szko"):
		return LinkSchool
	default:
		return LinkOther
	}
}

func isSchoolPreschoolComplex(r Row) bool {
	name := strings.ToLower(r.Name)
	return r.SchoolKind == compoundUnit &&
		strings.Contains(name, "szkolno") &&
		strings.Contains(name, "przedszko")
}

// Complexes finds every school-and-preschool complex in rows, attaches the
// rows whose ParentID points at it and sorts by Computed, largest first.
func Complexes(rows []Row) []Complex {
	var out []Complex
	byID := make(map[string]int)
	for _, r := range rows {
		if !isSchoolPreschoolComplex(r) {
			continue
		}
		if r.ID != "" {
			if _, dup := byID[r.ID]; !dup {
				byID[r.ID] = len(out)
			}
		}
		out = append(out, Complex{Parent: r})
	}

	for _, r := range rows {
		if r.ParentID == "" {
			continue
		}
		i, ok := byID[r.ParentID]
		if !ok {
			continue
		}
		out[i].Components = append(out[i].Components, Component{Row: r, Link: LinkOf(r.EntityType)})
	}

	for i := range out {
		c := &out[i]
		var schools, preschools []string
		for _, comp := range c.Components {
			n := valueOrZero(comp.Row.Students.Value)
			switch comp.Link {
			case LinkSchool:
				c.SchoolStudents += n
				schools = appendUnique(schools, comp.Row.Name)
			case LinkPreschool:
				c.PreschoolStudents += n
				preschools = appendUnique(preschools, comp.Row.Name)
			}
		}
		c.SchoolNames = strings.Join(schools, " | ")
		c.PreschoolNames = strings.Join(preschools, " | ")
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Computed() > out[j].Computed() })
	return out
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
