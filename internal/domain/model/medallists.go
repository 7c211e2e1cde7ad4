package model

import (
	"encoding/json"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// MedalType is the normalised colour of a medal.
type MedalType string

// Medal colours. Feed values ME_GOLD, ME_SILVER and ME_BRONZE map onto these.
const (
	Gold    MedalType = "GOLD"
	Silver  MedalType = "SILVER"
	Bronze  MedalType = "BRONZE"
	Unknown MedalType = "UNKNOWN"
)

// ParseMedalType normalises a feed medal type.
func ParseMedalType(s string) MedalType {
	switch strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "ME_") {
	case "GOLD":
		return Gold
	case "SILVER":
		return Silver
	case "BRONZE":
		return Bronze
	default:
		return Unknown
	}
}

// UnmarshalJSON accepts both ME_-prefixed and plain colour names.
func (t *MedalType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseMedalType(s)
	return nil
}

// Order ranks gold first; unknown types sort last.
func (t MedalType) Order() int {
	switch t {
	case Gold:
		return 0
	case Silver:
		return 1
	case Bronze:
		return 2
	default:
		return 3
	}
}

// MedallistsFeed is the medallist resource as served upstream.
type MedallistsFeed struct {
	Athletes []Medallist `json:"athletes"`
}

// Medallist is an athlete (or team) holding at least one medal.
type Medallist struct {
	TVName           string  `json:"tvName,omitempty"`
	FullName         string  `json:"fullName"`
	OrganisationCode string  `json:"organisation"`
	OrganisationName string  `json:"organisationName"`
	Medals           []Medal `json:"medals"`
}

// Medal is one award won by a medallist.
type Medal struct {
	MedalType      MedalType `json:"medalType"`
	EventName      string    `json:"eventName"`
	DisciplineName string    `json:"disciplineName"`
	DisciplineCode string    `json:"disciplineCode"`
	Date           string    `json:"date,omitempty"`
}

// AthleteName is the short broadcast name, falling back to the full name.
func (m Medallist) AthleteName() string {
	if m.TVName != "" {
		return m.TVName
	}
	return m.FullName
}

// MedalRecord is one (athlete, medal) pair, flattened for listing and filtering.
type MedalRecord struct {
	AthleteName      string    `json:"athleteName"`
	FullName         string    `json:"fullName"`
	OrganisationCode string    `json:"organisationCode"`
	OrganisationName string    `json:"organisationName"`
	MedalType        MedalType `json:"medalType"`
	EventName        string    `json:"eventName"`
	DisciplineName   string    `json:"disciplineName"`
	DisciplineCode   string    `json:"disciplineCode"`
	Date             string    `json:"date,omitempty"`
}

// Records flattens every athlete's medals in feed order.
func (f MedallistsFeed) Records() []MedalRecord {
	var out []MedalRecord
	for _, a := range f.Athletes {
		for _, m := range a.Medals {
			out = append(out, MedalRecord{
				AthleteName:      a.AthleteName(),
				FullName:         a.FullName,
				OrganisationCode: a.OrganisationCode,
				OrganisationName: a.OrganisationName,
				MedalType:        m.MedalType,
				EventName:        m.EventName,
				DisciplineName:   m.DisciplineName,
				DisciplineCode:   m.DisciplineCode,
				Date:             m.Date,
			})
		}
	}
	return out
}

// RecordFilter selects medal records. Empty fields match everything.
type RecordFilter struct {
	Discipline string
	Country    string // organisation name or code
	MedalType  MedalType
}

// IsZero reports whether the filter selects everything.
func (f RecordFilter) IsZero() bool {
	return f.Discipline == "" && f.Country == "" && f.MedalType == ""
}

// Match reports whether r passes the filter.
func (f RecordFilter) Match(r MedalRecord) bool {
	if f.Discipline != "" && r.DisciplineName != f.Discipline {
		return false
	}
	if f.Country != "" && r.OrganisationName != f.Country && r.OrganisationCode != f.Country {
		return false
	}
	if f.MedalType != "" && r.MedalType != f.MedalType {
		return false
	}
	return true
}

// FilterRecords keeps matching records and orders them gold, silver, bronze,
// then by athlete name under French collation.
func FilterRecords(records []MedalRecord, f RecordFilter) []MedalRecord {
	col := collate.New(language.French)
	out := make([]MedalRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := out[i].MedalType.Order(), out[j].MedalType.Order()
		if oi != oj {
			return oi < oj
		}
		return col.CompareString(out[i].AthleteName, out[j].AthleteName) < 0
	})
	return out
}

// Disciplines lists distinct discipline names, sorted.
func Disciplines(records []MedalRecord) []string {
	return distinct(records, func(r MedalRecord) string { return r.DisciplineName })
}

// Countries lists distinct organisation names, sorted.
func Countries(records []MedalRecord) []string {
	return distinct(records, func(r MedalRecord) string { return r.OrganisationName })
}

func distinct(records []MedalRecord, key func(MedalRecord) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
