package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/lazypower/kaizen/internal/civil"
	"github.com/lazypower/kaizen/internal/taxonomy"
)

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, map[string]any{
		"q":    q,
		"tree": s.eng.Tree(q),
	})
}

func (s *Server) handleAddAbility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Parent string `json:"parent"`
	}
	if !decode(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := s.eng.AddAbility(name, req.Parent); err != nil {
		writeErr(w, err)
		return
	}
	detail, err := s.eng.Tag(name)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleGetAbility(w http.ResponseWriter, r *http.Request) {
	detail, err := s.eng.Tag(param(r, "name"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleUpdateAbility renames and/or moves a tag. A present "parent" of
// null or "" makes the tag a root; an absent one leaves it in place.
func (s *Server) handleUpdateAbility(w http.ResponseWriter, r *http.Request) {
	name := param(r, "name")
	var req struct {
		Name   string          `json:"name"`
		Parent json.RawMessage `json:"parent"`
	}
	if !decode(w, r, &req) {
		return
	}

	if newName := strings.TrimSpace(req.Name); newName != "" && newName != name {
		if err := s.eng.RenameAbility(name, newName); err != nil {
			writeErr(w, err)
			return
		}
		name = newName
	}
	if len(req.Parent) > 0 {
		var parent *string
		if err := json.Unmarshal(req.Parent, &parent); err != nil {
			writeError(w, http.StatusBadRequest, "parent must be a string or null")
			return
		}
		newParent := ""
		if parent != nil {
			newParent = *parent
		}
		if err := s.eng.MoveAbility(name, newParent); err != nil {
			writeErr(w, err)
			return
		}
	}

	detail, err := s.eng.Tag(name)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleRemoveAbility(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.RemoveAbility(param(r, "name")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleAddPoint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &req) {
		return
	}
	idx, err := s.eng.AddPoint(param(r, "name"), req.Content)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"index": idx})
}

func (s *Server) handleRemovePoint(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.pathIndex(w, r)
	if !ok {
		return
	}
	if err := s.eng.RemovePoint(param(r, "name"), idx); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	due := s.eng.DueToday()
	writeJSON(w, http.StatusOK, map[string]any{
		"date":  s.eng.Today().String(),
		"count": len(due),
		"items": due,
	})
}

func (s *Server) handleStudy(w http.ResponseWriter, r *http.Request) {
	count := 0
	if c := r.URL.Query().Get("count"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "count must be a non-negative integer")
			return
		}
		count = n
	}
	items := s.eng.DailyStudy(count)
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(items),
		"items": items,
	})
}

type pointRef struct {
	Tag   string `json:"tag"`
	Index *int   `json:"index"`
}

func (s *Server) handleLearn(w http.ResponseWriter, r *http.Request) {
	s.handlePointUpdate(w, r, s.eng.StartLearning)
}

func (s *Server) handleRecalled(w http.ResponseWriter, r *http.Request) {
	s.handlePointUpdate(w, r, s.eng.MarkRecalled)
}

func (s *Server) handlePointUpdate(w http.ResponseWriter, r *http.Request, fn func(string, int) (taxonomy.KnowledgePoint, error)) {
	var req pointRef
	if !decode(w, r, &req) {
		return
	}
	if req.Tag == "" || req.Index == nil {
		writeError(w, http.StatusBadRequest, "tag and index required")
		return
	}
	p, err := fn(req.Tag, *req.Index)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"records": s.eng.DailyProgress(),
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	report, err := s.eng.SyncDailyProgress()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":   s.eng.SyncMode().String(),
		"report": report,
	})
}

func (s *Server) handleSetNotes(w http.ResponseWriter, r *http.Request) {
	day, ok := s.pathDate(w, r)
	if !ok {
		return
	}
	var req struct {
		Notes string   `json:"notes"`
		Tags  []string `json:"tags"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.eng.SetDailyNotes(day, req.Notes, req.Tags); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "date": day.String()})
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"goals": s.eng.Goals()})
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text    string     `json:"text"`
		DueDate civil.Date `json:"due_date"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.eng.AddGoal(req.Text, req.DueDate); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"goals": s.eng.Goals()})
}

func (s *Server) pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(param(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return 0, false
	}
	return idx, true
}

func (s *Server) handleCompleteGoal(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.pathIndex(w, r)
	if !ok {
		return
	}
	if err := s.eng.CompleteGoal(idx); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": s.eng.Goals()})
}

func (s *Server) handleRemoveGoal(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.pathIndex(w, r)
	if !ok {
		return
	}
	if err := s.eng.RemoveGoal(idx); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": s.eng.Goals()})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tasks": s.eng.Tasks()})
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string     `json:"name"`
		DueDate   civil.Date `json:"due_date"`
		Abilities []string   `json:"abilities"`
	}
	if !decode(w, r, &req) {
		return
	}
	task, err := s.eng.AddTask(req.Name, req.DueDate, req.Abilities)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleRecordProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
		Progress    *int   `json:"progress"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Progress == nil {
		writeError(w, http.StatusBadRequest, "progress required")
		return
	}
	task, err := s.eng.RecordProgress(param(r, "name"), req.Description, *req.Progress)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDiary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"diary": s.eng.Diary()})
}

func (s *Server) pathDate(w http.ResponseWriter, r *http.Request) (civil.Date, bool) {
	day, err := civil.Parse(param(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return civil.Date{}, false
	}
	return day, true
}

func (s *Server) handleAddDiary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EntryDate civil.Date `json:"entry_date"`
		Summary   string     `json:"summary"`
		Category  string     `json:"category"`
		Tags      []string   `json:"tags"`
		Links     []string   `json:"links"`
	}
	if !decode(w, r, &req) {
		return
	}
	entry, err := s.eng.AddDiaryEntry(req.EntryDate, req.Summary, req.Category, req.Tags, req.Links)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleDiaryEntry(w http.ResponseWriter, r *http.Request) {
	day, ok := s.pathDate(w, r)
	if !ok {
		return
	}
	entry, err := s.eng.DiaryEntry(day)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleRemoveDiary(w http.ResponseWriter, r *http.Request) {
	day, ok := s.pathDate(w, r)
	if !ok {
		return
	}
	if err := s.eng.RemoveDiaryEntry(day); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "date": day.String()})
}

func (s *Server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"summaries": s.eng.Summaries()})
}

func (s *Server) handleAddSummary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string     `json:"title"`
		Content     string     `json:"content"`
		SummaryDate civil.Date `json:"summary_date"`
	}
	if !decode(w, r, &req) {
		return
	}
	sum, err := s.eng.AddSummary(req.Title, req.Content, req.SummaryDate)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sum)
}

func (s *Server) handleRemoveSummary(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.pathIndex(w, r)
	if !ok {
		return
	}
	if err := s.eng.RemoveSummary(idx); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": s.eng.Summaries()})
}
