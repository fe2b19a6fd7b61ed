package catalog

import (
	"encoding/json"
	"fmt"
)

// Course is a single catalog entry, immutable after load.
// Its code, "DIVISION-NUMBER" (e.g. "MATH-101C"), is unique catalog-wide.
type Course struct {
	Division string   `json:"division"`
	Number   string   `json:"number"`
	Name     string   `json:"name"`
	Units    float64  `json:"units"`
	Areas    []string `json:"areas,omitempty"`
}

func (c Course) Code() string {
	return c.Division + "-" + c.Number
}

// Division groups courses for catalog browsing (e.g. "MATH": "Mathematics").
type Division struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// RequirementArea groups course codes under a transfer/graduation requirement,
// independently of division. A course may belong to any number of areas.
type RequirementArea struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Courses []string `json:"courses"`
}

// MalformedError reports a catalog document that cannot serve: a class record
// missing its division, number or name, a non-positive unit count, or two
// records sharing a code.
type MalformedError struct {
	Index  int // position of the offending record in CLASSES
	Reason string
}

func (err *MalformedError) Error() string {
	return fmt.Sprintf("malformed catalog: class record %d: %s", err.Index, err.Reason)
}

// document mirrors the raw catalog JSON shape:
// {AREAS: [{acr: name}], DIVISIONS: [{acr: name}], CLASSES: [{...}]}
type (
	document struct {
		Areas     []map[string]string `json:"AREAS"`
		Divisions []map[string]string `json:"DIVISIONS"`
		Classes   []rawClass          `json:"CLASSES"`
	}

	rawClass struct {
		Division string   `json:"DIVISION"`
		Number   string   `json:"NUMBER"`
		Name     string   `json:"NAME"`
		Units    float64  `json:"UNITS"`
		Areas    areaList `json:"AREA-ACR"`
	}

	// areaList tolerates both a single area acronym and an array of them.
	areaList []string
)

func (al *areaList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one != "" {
			*al = []string{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*al = many
	return nil
}
