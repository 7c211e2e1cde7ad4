// Package model contains the feed types passed between layers.
package model

// StandingsFeed is the medal standings resource as served upstream.
type StandingsFeed struct {
	MedalStandings *MedalTable `json:"medalStandings"`
}

// MedalTable wraps the ranked rows.
type MedalTable struct {
	Rows []MedalStanding `json:"medalsTable"`
}

// MedalStanding is one organisation's row in the medal table.
// Counts may be reported flat, inside MedalsNumber, or both.
type MedalStanding struct {
	OrganisationCode string             `json:"organisation"`
	Description      string             `json:"description,omitempty"`
	OrganisationName string             `json:"organisationName,omitempty"`
	Rank             int                `json:"rank"`
	Gold             *int               `json:"gold,omitempty"`
	Silver           *int               `json:"silver,omitempty"`
	Bronze           *int               `json:"bronze,omitempty"`
	Total            *int               `json:"total,omitempty"`
	MedalsNumber     []MedalCount       `json:"medalsNumber,omitempty"`
	Disciplines      []DisciplineMedals `json:"disciplines,omitempty"`
}

// MedalCount is a typed count block; the one with Type "Total" carries the overall counts.
type MedalCount struct {
	Type   string `json:"type"`
	Gold   *int   `json:"gold,omitempty"`
	Silver *int   `json:"silver,omitempty"`
	Bronze *int   `json:"bronze,omitempty"`
	Total  *int   `json:"total,omitempty"`
}

// DisciplineMedals is the per-discipline breakdown of a standing.
type DisciplineMedals struct {
	Name   string `json:"name"`
	Gold   int    `json:"gold"`
	Silver int    `json:"silver"`
	Bronze int    `json:"bronze"`
}

// totalType marks the MedalCount entry holding overall counts.
const totalType = "Total"

// Tally holds resolved medal counts.
type Tally struct {
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Bronze int `json:"bronze"`
	Total  int `json:"total"`
}

// Consistent reports whether Total equals the sum of the three metals.
func (t Tally) Consistent() bool {
	return t.Total == t.Gold+t.Silver+t.Bronze
}

// Rows returns the table rows, or nil when the feed carried no table.
func (f StandingsFeed) Rows() []MedalStanding {
	if f.MedalStandings == nil {
		return nil
	}
	return f.MedalStandings.Rows
}

// Name returns the display name, preferring description over organisation name over code.
func (s MedalStanding) Name() string {
	switch {
	case s.Description != "":
		return s.Description
	case s.OrganisationName != "":
		return s.OrganisationName
	default:
		return s.OrganisationCode
	}
}

// Tally resolves the counts at read time. Each metal comes from the Total
// medalsNumber entry, then the flat field, then zero. A missing total is
// computed from the metals; a reported total is kept even if it disagrees.
func (s MedalStanding) Tally() Tally {
	var agg MedalCount
	for _, c := range s.MedalsNumber {
		if c.Type == totalType {
			agg = c
			break
		}
	}

	t := Tally{
		Gold:   firstOf(agg.Gold, s.Gold),
		Silver: firstOf(agg.Silver, s.Silver),
		Bronze: firstOf(agg.Bronze, s.Bronze),
	}
	if agg.Total != nil {
		t.Total = *agg.Total
	} else if s.Total != nil {
		t.Total = *s.Total
	} else {
		t.Total = t.Gold + t.Silver + t.Bronze
	}
	return t
}

func firstOf(vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

// Standing is the normalised read shape of a table row.
type Standing struct {
	OrganisationCode string             `json:"organisationCode"`
	OrganisationName string             `json:"organisationName"`
	Rank             int                `json:"rank"`
	Tally
	Consistent  bool               `json:"consistent"`
	Disciplines []DisciplineMedals `json:"disciplines"`
}

// Normalize resolves every row into its read shape, preserving feed order.
func (f StandingsFeed) Normalize() []Standing {
	rows := f.Rows()
	out := make([]Standing, 0, len(rows))
	for _, r := range rows {
		t := r.Tally()
		disciplines := r.Disciplines
		if disciplines == nil {
			disciplines = []DisciplineMedals{}
		}
		out = append(out, Standing{
			OrganisationCode: r.OrganisationCode,
			OrganisationName: r.Name(),
			Rank:             r.Rank,
			Tally:            t,
			Consistent:       t.Consistent(),
			Disciplines:      disciplines,
		})
	}
	return out
}
