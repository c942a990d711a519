package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/dispatch"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/services"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/workflow"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/ingest"
)

// pageData is the view model shared by every page
type pageData struct {
	Title string
	Flash []string

	// index
	CanImport bool
	Preview   []dispatch.Well

	// filter
	Zones         []string
	SelectedZones []string
	RigCount      int

	// select_pulling
	Wells []string
	Slots []rigSlot

	// hs
	Hours []wellHours

	// assign
	Header   []string
	Rows     []matrixRow
	Warnings []string
}

type rigSlot struct {
	Index int
	Label string
	Well  string
	Hours float64
}

type wellHours struct {
	Well  string
	Hours float64
}

type matrixRow struct {
	Cells []matrixCell
}

type matrixCell struct {
	Text  string
	Class string
}

// wellColumns are the matrix columns holding well names
var wellColumns = []int{1, 4, 7, 10}

func newMatrixRow(record []string, recommendation dispatch.Recommendation) matrixRow {
	cells := make([]matrixCell, len(record))
	for i, text := range record {
		cells[i].Text = text
		switch {
		case i == len(record)-1:
			cells[i].Class = services.RecommendationClass(recommendation)
		case slices.Contains(wellColumns, i):
			cells[i].Class = "well"
		}
	}
	return matrixRow{Cells: cells}
}

// withSession loads the caller's session and hands it to fn. Storage
// failures end the request with a 500.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session)) {
	sess, err := s.loadSession(w, r)
	if err != nil {
		s.serverError(w, err)
		return
	}
	fn(sess)
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.logger.Error("Request failed", zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// redirect stores the messages in the session and sends the browser to path
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, sess *session, path string, messages ...string) {
	for _, m := range messages {
		sess.state = sess.state.WithFlash(m)
	}
	if err := s.saveSession(r.Context(), sess); err != nil {
		s.serverError(w, err)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// show renders a page with the pending messages, clearing them from the session
func (s *Server) show(w http.ResponseWriter, r *http.Request, sess *session, page string, data *pageData) {
	messages, state := sess.state.TakeFlash()
	sess.state = state
	data.Flash = append(messages, data.Flash...)

	if err := s.saveSession(r.Context(), sess); err != nil {
		s.serverError(w, err)
		return
	}
	s.render(w, page, data)
}

// requireStage redirects to the first incomplete step when the session has
// not reached the given stage
func (s *Server) requireStage(w http.ResponseWriter, r *http.Request, sess *session, stage workflow.Stage) bool {
	current := sess.state.Stage()
	if current >= stage {
		return true
	}
	missing := steps[current+1]
	s.redirect(w, r, sess, missing.path, missing.message)
	return false
}

func (s *Server) canImport() bool {
	return s.sheets != nil && s.cfg.Sheets.WellsSheetID != ""
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		s.show(w, r, sess, "index", &pageData{Title: "Cargar pozos", CanImport: s.canImport()})
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.UploadLimitMB<<20)

		file, header, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			s.redirect(w, r, sess, "/", msgNoFileInRequest)
			return
		}
		if err != nil {
			s.redirect(w, r, sess, "/", uploadErrorMessage(err))
			return
		}
		defer file.Close()

		if header.Filename == "" {
			s.redirect(w, r, sess, "/", msgNoFileSelected)
			return
		}

		result, err := services.LoadWells(r.Context(), services.WellSource{
			FileName: header.Filename,
			Body:     file,
		}, nil, s.recorder, s.logger)
		if err != nil {
			s.redirect(w, r, sess, "/", uploadErrorMessage(err))
			return
		}

		s.acceptWells(w, r, sess, result)
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		if !s.canImport() {
			s.redirect(w, r, sess, "/", msgImportNotEnabled)
			return
		}

		result, err := services.LoadWells(r.Context(), services.WellSource{
			SheetID: s.cfg.Sheets.WellsSheetID,
			Tab:     s.cfg.Sheets.WellsTab,
		}, s.sheets, s.recorder, s.logger)
		if err != nil {
			s.redirect(w, r, sess, "/", uploadErrorMessage(err))
			return
		}

		s.acceptWells(w, r, sess, result)
	})
}

// acceptWells starts a new plan from the parsed wells and shows a preview
func (s *Server) acceptWells(w http.ResponseWriter, r *http.Request, sess *session, result *ingest.ParseResult) {
	state, err := sess.state.Upload(result.Table)
	if err != nil {
		s.redirect(w, r, sess, "/", uploadErrorMessage(err))
		return
	}
	sess.state = state
	sess.record.Fingerprint = ""
	sess.record.Result = nil

	flash := append([]string{msgUploadOK}, cleaningMessages(result.DroppedRows, result.DuplicateRows)...)
	s.show(w, r, sess, "index", &pageData{
		Title:     "Cargar pozos",
		Flash:     flash,
		CanImport: s.canImport(),
		Preview:   result.Preview,
	})
}

func (s *Server) handleFilterForm(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		if !s.requireStage(w, r, sess, workflow.StageUploaded) {
			return
		}

		rigCount := sess.state.RigCount
		if rigCount == 0 {
			rigCount = s.cfg.Dispatch.DefaultRigCount
		}

		s.show(w, r, sess, "filter", &pageData{
			Title:         "Filtrar zonas",
			Zones:         sess.state.Table().Zones(),
			SelectedZones: sess.state.Zones,
			RigCount:      rigCount,
		})
	})
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		if !s.requireStage(w, r, sess, workflow.StageUploaded) {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		// An unparsable count falls back to the configured default
		rigCount, _ := strconv.Atoi(r.PostFormValue("pulling_count"))

		state, err := sess.state.SelectZones(r.PostForm["zonas"], rigCount, s.cfg.Dispatch.DefaultRigCount)
		if errors.Is(err, workflow.ErrNoZones) {
			s.redirect(w, r, sess, "/filter", msgNoZones)
			return
		}
		if err != nil {
			s.serverError(w, err)
			return
		}

		sess.state = state
		s.redirect(w, r, sess, "/select_pulling", selectedZonesMessage(state.Zones))
	})
}

func (s *Server) handleSelectPullingForm(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		if !s.requireStage(w, r, sess, workflow.StageZonesSelected) {
			return
		}

		wells := sess.state.FilteredTable().Names()
		slices.Sort(wells)

		slots := make([]rigSlot, sess.state.RigCount)
		for i := range slots {
			slots[i] = rigSlot{Index: i + 1, Label: dispatch.RigLabel(i)}
			if i < len(sess.state.Rigs) {
				slots[i].Well = sess.state.Rigs[i].CurrentWell
				slots[i].Hours = sess.state.Rigs[i].RemainingHours
			}
		}

		s.show(w, r, sess, "select_pulling", &pageData{
			Title: "Selección de pulling",
			Wells: wells,
			Slots: slots,
		})
	})
}

func (s *Server) handleSelectPulling(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		if !s.requireStage(w, r, sess, workflow.StageZonesSelected) {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		inputs := make([]workflow.RigInput, sess.state.RigCount)
		for i := range inputs {
			n := strconv.Itoa(i + 1)
			inputs[i] = workflow.RigInput{
				Well:  r.PostFormValue("pulling_pozo_" + n),
				Hours: r.PostFormValue("pulling_tiempo_" + n),
			}
		}

		state, err := sess.state.AssignRigs(inputs)
		switch {
		case errors.Is(err, workflow.ErrDuplicateWell):
			s.redirect(w, r, sess, "/select_pulling", msgDuplicateWell)
			return
		case errors.Is(err, workflow.ErrUnknownWell):
			s.redirect(w, r, sess, "/select_pulling", msgUnknownWell)
			return
		case errors.Is(err, workflow.ErrInvalidHours):
			s.redirect(w, r, sess, "/select_pulling", msgNegativeHours)
			return
		case err != nil:
			s.serverError(w, err)
			return
		}

		sess.state = state
		s.redirect(w, r, sess, "/hs", msgRigsConfirmed)
	})
}

func (s *Server) handleHoursForm(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		if !s.requireStage(w, r, sess, workflow.StageRigsAssigned) {
			return
		}

		remaining := sess.state.RemainingWells()
		if len(remaining) == 0 {
			s.redirect(w, r, sess, "/select_pulling", msgNoCandidates)
			return
		}
		slices.Sort(remaining)

		hours := make([]wellHours, len(remaining))
		for i, name := range remaining {
			hours[i] = wellHours{Well: name, Hours: sess.state.Availability.Hours(name)}
		}

		s.show(w, r, sess, "hs", &pageData{
			Title: "HS disponibilidad",
			Hours: hours,
		})
	})
}

func (s *Server) handleHours(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		if !s.requireStage(w, r, sess, workflow.StageRigsAssigned) {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		hours := make(map[string]string)
		for _, name := range sess.state.RemainingWells() {
			hours[name] = r.PostFormValue("hs_" + name)
		}

		state, err := sess.state.SetAvailability(hours)
		switch {
		case errors.Is(err, workflow.ErrNoCandidates):
			s.redirect(w, r, sess, "/select_pulling", msgNoCandidates)
			return
		case errors.Is(err, workflow.ErrInvalidHours):
			s.redirect(w, r, sess, "/hs", msgNegativeHours)
			return
		case err != nil:
			s.serverError(w, err)
			return
		}

		sess.state = state
		s.redirect(w, r, sess, "/assign", msgHoursConfirmed)
	})
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		if !s.requireStage(w, r, sess, workflow.StageAvailabilitySet) {
			return
		}

		report := s.cachedReport(sess)
		if report == nil {
			var err error
			report, err = services.PlanDispatch(r.Context(), sess.state, s.cfg.Dispatch, s.recorder, s.logger)
			if err != nil {
				s.redirect(w, r, sess, "/hs", planErrorMessage(err))
				return
			}

			data, err := json.Marshal(report)
			if err != nil {
				s.serverError(w, err)
				return
			}
			sess.record.Fingerprint = report.Fingerprint
			sess.record.Result = data
			s.recorder.IncrementSessionEvent(eventCompleted)
		}

		records := report.Records()
		rows := make([]matrixRow, len(records))
		for i, record := range records {
			rows[i] = newMatrixRow(record, report.Rows[i].Recommendation)
		}

		s.show(w, r, sess, "assign", &pageData{
			Title:    "Matriz de prioridad",
			Flash:    []string{msgAssignCompleted},
			Header:   services.MatrixHeader,
			Rows:     rows,
			Warnings: report.WarningMessages(),
		})
	})
}

// cachedReport returns the stored result when it was computed from the
// current inputs
func (s *Server) cachedReport(sess *session) *services.Report {
	if len(sess.record.Result) == 0 || sess.record.Fingerprint != sess.state.Fingerprint() {
		return nil
	}

	var report services.Report
	if err := json.Unmarshal(sess.record.Result, &report); err != nil {
		s.logger.Warn("Discarding unreadable cached result", zap.String("session", sess.record.ID), zap.Error(err))
		return nil
	}
	s.logger.Debug("Serving cached result", zap.String("fingerprint", report.Fingerprint))
	return &report
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := s.store.DeleteSession(r.Context(), cookie.Value); err != nil {
			s.serverError(w, err)
			return
		}
		s.recorder.IncrementSessionEvent(eventReset)
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
