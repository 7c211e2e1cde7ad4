// Package podium attaches medal winners to finished competition units.
package podium

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/okian/medalboard/internal/domain/model"
)

// Result is one podium place.
type Result struct {
	AthleteName      string          `json:"athleteName"`
	OrganisationCode string          `json:"organisationCode"`
	MedalType        model.MedalType `json:"medalType"`
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// EventNamesMatch reports whether a schedule event name and a medal event
// name refer to the same event: equal after case folding, or one containing
// the other. An empty name never matches.
func EventNamesMatch(a, b string) bool {
	fa, fb := fold(a), fold(b)
	if fa == "" || fb == "" {
		return false
	}
	return fa == fb || strings.Contains(fa, fb) || strings.Contains(fb, fa)
}

// DisciplinesMatch compares discipline names ignoring case.
func DisciplinesMatch(a, b string) bool {
	fa := fold(a)
	return fa != "" && fa == fold(b)
}

// Match returns the podium for a finished medal unit: every medal from any
// athlete whose discipline and event match the unit, ordered gold, silver,
// bronze with feed order kept among equals. Units that are not finished
// medal events get an empty podium.
func Match(unit model.ScheduleUnit, medallists []model.Medallist) []Result {
	out := []Result{}
	if !unit.Finished() || !unit.MedalEvent {
		return out
	}

	for _, a := range medallists {
		for _, m := range a.Medals {
			if m.MedalType == model.Unknown || m.MedalType == "" {
				continue
			}
			if !DisciplinesMatch(unit.DisciplineName, m.DisciplineName) {
				continue
			}
			if !EventNamesMatch(unit.EventName, m.EventName) {
				continue
			}
			out = append(out, Result{
				AthleteName:      a.AthleteName(),
				OrganisationCode: a.OrganisationCode,
				MedalType:        m.MedalType,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MedalType.Order() < out[j].MedalType.Order()
	})
	return out
}
