package service

import (
	"context"
	"encoding/json"

	"github.com/okian/medalboard/internal/domain/model"
	"github.com/okian/medalboard/internal/domain/podium"
	"github.com/okian/medalboard/internal/domain/schedule"
	"github.com/okian/medalboard/pkg/logger"
	"github.com/okian/medalboard/pkg/metrics"
)

// BoardUnit is a schedule unit with its podium, empty unless it is a
// finished medal event with known results.
type BoardUnit struct {
	model.ScheduleUnit
	Podium []podium.Result `json:"podium"`
}

// UnmarshalJSON decodes the unit and its podium. Without it the embedded
// unit's decoder would be promoted and the podium dropped.
func (u *BoardUnit) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &u.ScheduleUnit); err != nil {
		return err
	}
	var rest struct {
		Podium []podium.Result `json:"podium"`
	}
	if err := json.Unmarshal(b, &rest); err != nil {
		return err
	}
	u.Podium = rest.Podium
	return nil
}

// Board is one civil day ready for display.
type Board struct {
	Date            string         `json:"date"`
	Period          schedule.Phase `json:"period"`
	NotFinished     []BoardUnit    `json:"notFinished"`
	Finished        []BoardUnit    `json:"finished"`
	Other           []BoardUnit    `json:"other"`
	MedallistsError string         `json:"medallistsError,omitempty"`
	LastUpdate      *string        `json:"lastUpdate"`
}

// Board builds the day view for date: the schedule bucketed in the
// reference zone, split by progress, with podiums on finished medal units.
// A medallist failure leaves podiums empty and is reported on the board.
func (s *Service) Board(ctx context.Context, date string, force bool) (Board, error) {
	day, err := s.DailySchedule(ctx, date, force)
	if err != nil {
		return Board{}, err
	}

	b := Board{Date: date, Period: s.Period()}

	var athletes []model.Medallist
	medallists, err := s.Medallists(ctx, force)
	if err != nil {
		b.MedallistsError = err.Error()
		s.logger.Warn(ctx, "board without podiums",
			logger.String("date", date),
			logger.Error(err),
		)
	} else {
		athletes = medallists.Athletes
	}

	parts := schedule.Partition(schedule.BucketByDate(day.Units, date, s.loc))
	b.NotFinished = s.withPodiums(parts.NotFinished, athletes)
	b.Finished = s.withPodiums(parts.Finished, athletes)
	b.Other = s.withPodiums(parts.Other, athletes)
	b.LastUpdate = s.LastUpdateISO()
	return b, nil
}

func (s *Service) withPodiums(units []model.ScheduleUnit, athletes []model.Medallist) []BoardUnit {
	out := make([]BoardUnit, 0, len(units))
	for _, u := range units {
		bu := BoardUnit{ScheduleUnit: u, Podium: []podium.Result{}}
		if u.Finished() && u.MedalEvent && athletes != nil {
			bu.Podium = podium.Match(u, athletes)
			metrics.RecordPodiumLookup(len(bu.Podium) > 0)
		}
		out = append(out, bu)
	}
	return out
}
