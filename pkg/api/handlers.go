package api

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/samber/lo"

	"github.com/mpapenbr/racepace/pkg/analysis/chartdata"
	"github.com/mpapenbr/racepace/pkg/analysis/degradation"
	"github.com/mpapenbr/racepace/pkg/analysis/laps"
	"github.com/mpapenbr/racepace/pkg/analysis/sectors"
	"github.com/mpapenbr/racepace/pkg/format"
	"github.com/mpapenbr/racepace/pkg/model"
)

type (
	lapsResponse struct {
		SessionKey int            `json:"sessionKey"`
		Mode       chartdata.Mode `json:"mode"`
		Drivers    []int          `json:"drivers"`
		Rows       []model.LapRow `json:"rows"`
	}
	degradationEntry struct {
		Result          model.DegradationResult `json:"result"`
		Tyre            string                  `json:"tyre"`
		DegradationText string                  `json:"degradationText"`
		RSquaredText    string                  `json:"rSquaredText"`
		Reliable        bool                    `json:"reliable"`
	}
	degradationResponse struct {
		SessionKey int                `json:"sessionKey"`
		Stints     []degradationEntry `json:"stints"`
	}
	stintsResponse struct {
		SessionKey int               `json:"sessionKey"`
		Stints     []model.StintLaps `json:"stints"`
	}
	bestLapResponse struct {
		SessionKey   int             `json:"sessionKey"`
		DriverNumber int             `json:"driverNumber"`
		Lap          model.LapRecord `json:"lap"`
		LapTime      string          `json:"lapTime"`
	}
	sectorRow struct {
		Stat     model.DriverSectorStat `json:"stat"`
		Position string                 `json:"position"`
		LapTime  string                 `json:"lapTime"`
		Sectors  [3]string              `json:"sectors"`
		Delta    string                 `json:"delta"`
	}
	sectorsResponse struct {
		SessionKey  int               `json:"sessionKey"`
		OverallBest model.SectorTimes `json:"overallBest"`
		Rows        []sectorRow       `json:"rows"`
	}
	pitLapsResponse struct {
		SessionKey int                    `json:"sessionKey"`
		Laps       []model.LapWithPitInfo `json:"laps"`
	}
)

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) analysis(w http.ResponseWriter, r *http.Request) {
	key, err := sessionKeyParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	drivers, err := parseDrivers(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.Analyze(r.Context(), key, drivers)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, res)
}

// load reads session key and driver selection and fetches the session data.
// An empty selection is replaced by all drivers of the session.
func (h *Handler) load(r *http.Request) (int, []int, *model.SessionData, error) {
	key, err := sessionKeyParam(r)
	if err != nil {
		return 0, nil, nil, err
	}
	drivers, err := parseDrivers(r)
	if err != nil {
		return 0, nil, nil, err
	}
	data, err := h.svc.SessionData(r.Context(), key)
	if err != nil {
		return 0, nil, nil, err
	}
	if len(drivers) == 0 {
		drivers = data.DriverNumbers()
	}
	return key, drivers, data, nil
}

func (h *Handler) laps(w http.ResponseWriter, r *http.Request) {
	mode, err := chartdata.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	from, err := optionalInt(r, "from")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	to, err := optionalInt(r, "to")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if from > 0 && to > 0 && from > to {
		h.fail(w, r, badRequest("from %d is after to %d", from, to))
		return
	}
	key, drivers, data, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := chartdata.Shape(data.Laps, drivers, mode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, lapsResponse{
		SessionKey: key,
		Mode:       mode,
		Drivers:    drivers,
		Rows:       laps.FilterByRange(rows, from, to),
	})
}

func (h *Handler) degradation(w http.ResponseWriter, r *http.Request) {
	minLaps, err := optionalInt(r, "minLaps")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	key, drivers, data, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	opts := []degradation.Option{}
	if minLaps > 0 {
		opts = append(opts, degradation.WithMinimumLaps(minLaps))
	}
	res, err := degradation.Compute(data.Laps, selectedStints(data.Stints, drivers), opts...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, degradationResponse{
		SessionKey: key,
		Stints: lo.Map(res, func(d model.DegradationResult, _ int) degradationEntry {
			return degradationEntry{
				Result:          d,
				Tyre:            format.TyreAbbreviation(d.Compound),
				DegradationText: format.DegradationPerLap(d.DegradationPerLap),
				RSquaredText:    format.RSquared(d.RSquared),
				Reliable:        d.Reliable(),
			}
		}),
	})
}

func (h *Handler) stints(w http.ResponseWriter, r *http.Request) {
	key, drivers, data, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := model.ValidateStints(data.Stints); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, stintsResponse{
		SessionKey: key,
		Stints:     laps.ByStint(data.Laps, selectedStints(data.Stints, drivers)),
	})
}

func (h *Handler) bestLap(w http.ResponseWriter, r *http.Request) {
	driver, err := positiveInt(chi.URLParam(r, "driverNumber"), "driver number")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	key, _, data, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := model.ValidateLaps(data.Laps); err != nil {
		h.fail(w, r, err)
		return
	}
	best, ok := laps.BestLap(data.Laps, driver)
	if !ok {
		h.writeError(w, r, http.StatusNotFound, errNoValidLap(driver))
		return
	}
	h.writeJSON(w, r, http.StatusOK, bestLapResponse{
		SessionKey:   key,
		DriverNumber: driver,
		Lap:          best,
		LapTime:      format.LapTime(best.LapDuration),
	})
}

func (h *Handler) sectors(w http.ResponseWriter, r *http.Request) {
	lap, err := optionalInt(r, "lap")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	key, drivers, data, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	perf, err := sectors.ComputeSectorPerformance(data.Laps, drivers, lap)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, sectorsResponse{
		SessionKey:  key,
		OverallBest: perf.OverallBest,
		Rows: lo.Map(perf.Drivers, func(s model.DriverSectorStat, _ int) sectorRow {
			return sectorRow{
				Stat:     s,
				Position: format.Position(s.Position),
				LapTime:  format.LapTime(s.Lap.LapDuration),
				Sectors: [3]string{
					format.SectorTime(s.Lap.Sector1Duration),
					format.SectorTime(s.Lap.Sector2Duration),
					format.SectorTime(s.Lap.Sector3Duration),
				},
				Delta: lo.Ternary(s.Position == 1, "", format.Delta(s.Delta)),
			}
		}),
	})
}

func (h *Handler) pitLaps(w http.ResponseWriter, r *http.Request) {
	key, drivers, data, err := h.load(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := model.ValidateLaps(data.Laps); err != nil {
		h.fail(w, r, err)
		return
	}
	selected := laps.SortByLapNumber(laps.ForDrivers(data.Laps, drivers))
	enriched := laps.EnrichWithPitInfo(selected, data.PitStops)
	if r.URL.Query().Get("pitOnly") == "true" {
		enriched = lo.Filter(enriched, func(l model.LapWithPitInfo, _ int) bool {
			return l.IsPitLap
		})
	}
	h.writeJSON(w, r, http.StatusOK, pitLapsResponse{SessionKey: key, Laps: enriched})
}

func selectedStints(stints []model.StintRecord, drivers []int) []model.StintRecord {
	return lo.Filter(stints, func(s model.StintRecord, _ int) bool {
		return lo.Contains(drivers, s.DriverNumber)
	})
}
