package catalog

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned on lookups of codes absent from the catalog.
	ErrNotFound = errors.New("course not found")
)

// Catalog holds the full course listing for one academic year, read-only
// after Load. It is shared by every planning session in the process.
type Catalog struct {
	divisions []Division
	areas     []RequirementArea
	courses   []*Course // original catalog order

	byCode     map[string]*Course
	byDivision map[string][]*Course
	areaByCode map[string]*RequirementArea
}

// Load parses a raw catalog document into Division buckets and a
// code-indexed lookup table. It fails with a *MalformedError if a class
// record lacks a division, number or name, has a non-positive unit count,
// or shares its code with an earlier record.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding catalog document")
	}

	cat := &Catalog{
		byCode:     make(map[string]*Course, len(doc.Classes)),
		byDivision: make(map[string][]*Course),
		areaByCode: make(map[string]*RequirementArea, len(doc.Areas)),
	}

	for _, div := range doc.Divisions {
		for code, name := range div {
			cat.divisions = append(cat.divisions, Division{Code: code, Name: name})
		}
	}
	for _, area := range doc.Areas {
		for code, name := range area {
			cat.areas = append(cat.areas, RequirementArea{Code: code, Name: name})
		}
	}
	for i := range cat.areas {
		cat.areaByCode[cat.areas[i].Code] = &cat.areas[i]
	}

	for i, raw := range doc.Classes {
		switch {
		case raw.Division == "":
			return nil, &MalformedError{Index: i, Reason: "missing division"}
		case raw.Number == "":
			return nil, &MalformedError{Index: i, Reason: "missing number"}
		case raw.Name == "":
			return nil, &MalformedError{Index: i, Reason: "missing name"}
		case raw.Units <= 0:
			return nil, &MalformedError{Index: i, Reason: "units must be positive"}
		}

		course := &Course{
			Division: raw.Division,
			Number:   raw.Number,
			Name:     raw.Name,
			Units:    raw.Units,
			Areas:    raw.Areas,
		}
		code := course.Code()
		if _, exists := cat.byCode[code]; exists {
			return nil, &MalformedError{Index: i, Reason: "duplicate code " + code}
		}

		cat.courses = append(cat.courses, course)
		cat.byCode[code] = course
		cat.byDivision[course.Division] = append(cat.byDivision[course.Division], course)
		for _, acr := range course.Areas {
			if area, ok := cat.areaByCode[acr]; ok {
				area.Courses = append(area.Courses, code)
			}
		}
	}
	return cat, nil
}

// Lookup returns the course with the exact (case-sensitive) code.
func (cat *Catalog) Lookup(code string) (Course, error) {
	if course, ok := cat.byCode[code]; ok {
		return *course, nil
	}
	return Course{}, errors.Wrap(ErrNotFound, code)
}

// Has reports whether code names a real course.
func (cat *Catalog) Has(code string) bool {
	_, ok := cat.byCode[code]
	return ok
}

func (cat *Catalog) Divisions() []Division {
	divs := make([]Division, len(cat.divisions))
	copy(divs, cat.divisions)
	return divs
}

func (cat *Catalog) Areas() []RequirementArea {
	areas := make([]RequirementArea, len(cat.areas))
	copy(areas, cat.areas)
	return areas
}

func (cat *Catalog) Area(code string) (RequirementArea, error) {
	if area, ok := cat.areaByCode[code]; ok {
		return *area, nil
	}
	return RequirementArea{}, errors.Wrap(ErrNotFound, code)
}

func (cat *Catalog) Len() int { return len(cat.courses) }

// CoursesIn iterates the courses of a division in original catalog order.
// Each call returns a fresh iterator; unknown divisions iterate nothing.
func (cat *Catalog) CoursesIn(division string) *CourseIter {
	return &CourseIter{src: cat.byDivision[division]}
}

// Search iterates courses whose name or code contains term,
// case-insensitively. An empty term matches everything.
func (cat *Catalog) Search(term string) *CourseIter {
	term = strings.ToLower(strings.TrimSpace(term))
	return &CourseIter{
		src: cat.courses,
		match: func(c *Course) bool {
			return strings.Contains(strings.ToLower(c.Name), term) ||
				strings.Contains(strings.ToLower(c.Code()), term)
		},
	}
}

// CourseIter is a lazy, restartable cursor over catalog courses.
type CourseIter struct {
	src   []*Course
	match func(*Course) bool
	pos   int
}

// Next returns the next matching course, or ok=false when exhausted.
func (it *CourseIter) Next() (Course, bool) {
	for it.pos < len(it.src) {
		course := it.src[it.pos]
		it.pos++
		if it.match == nil || it.match(course) {
			return *course, true
		}
	}
	return Course{}, false
}

// Reset restarts the iterator from the beginning.
func (it *CourseIter) Reset() { it.pos = 0 }

// Collect drains the iterator into a slice.
func (it *CourseIter) Collect() []Course {
	var courses []Course
	for c, ok := it.Next(); ok; c, ok = it.Next() {
		courses = append(courses, c)
	}
	return courses
}
