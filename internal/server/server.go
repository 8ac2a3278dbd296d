package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/bramble/internal/activity"
	"github.com/dukerupert/bramble/internal/generate"
	"github.com/dukerupert/bramble/internal/model"
	"github.com/dukerupert/bramble/internal/points"
	"github.com/dukerupert/bramble/internal/push"
	"github.com/dukerupert/bramble/internal/recurrence"
	"github.com/dukerupert/bramble/internal/scheduler"
	"github.com/dukerupert/bramble/internal/settlement"
	"github.com/dukerupert/bramble/internal/store"
	ws "github.com/dukerupert/bramble/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	members      *store.FamilyMemberStore
	schedules    *store.ScheduleStore
	tasks        *store.TaskStore
	goals        *store.GoalStore
	pushStore    *store.PushStore
	pointsSvc    *points.Service
	activitySvc  *activity.Service
	pushService  *push.Service
	generator    *generate.Runner
	settler      *settlement.Runner
	weekStartDay time.Weekday
	logger       *slog.Logger
}

func New(db *sql.DB, hub *ws.Hub, members *store.FamilyMemberStore, schedules *store.ScheduleStore, tasks *store.TaskStore, goals *store.GoalStore, pushStore *store.PushStore, pointsSvc *points.Service, activitySvc *activity.Service, pushService *push.Service, generator *generate.Runner, settler *settlement.Runner, weekStartDay time.Weekday, logger *slog.Logger) *Server {
	return &Server{
		db:           db,
		hub:          hub,
		members:      members,
		schedules:    schedules,
		tasks:        tasks,
		goals:        goals,
		pushStore:    pushStore,
		pointsSvc:    pointsSvc,
		activitySvc:  activitySvc,
		pushService:  pushService,
		generator:    generator,
		settler:      settler,
		weekStartDay: weekStartDay,
		logger:       logger,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.health)
	mux.Handle("GET /ws", s.hub)

	mux.HandleFunc("GET /api/members", s.listMembers)
	mux.HandleFunc("POST /api/members", s.createMember)
	mux.HandleFunc("GET /api/members/{id}/points", s.memberBalance)

	mux.HandleFunc("GET /api/schedules", s.listSchedules)
	mux.HandleFunc("POST /api/schedules", s.createSchedule)
	mux.HandleFunc("PUT /api/schedules/{id}", s.updateSchedule)
	mux.HandleFunc("DELETE /api/schedules/{id}", s.archiveSchedule)

	mux.HandleFunc("GET /api/tasks", s.listTasks)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.completeTask)

	mux.HandleFunc("GET /api/goals", s.listGoals)
	mux.HandleFunc("POST /api/goals", s.createGoal)
	mux.HandleFunc("POST /api/goals/{id}/deductions", s.addDeduction)

	mux.HandleFunc("GET /api/activity", s.listActivity)

	if s.pushService != nil {
		mux.HandleFunc("GET /api/push/vapid-key", s.vapidKey)
		mux.HandleFunc("POST /api/push/subscribe", s.pushSubscribe)
		mux.HandleFunc("DELETE /api/push/subscribe", s.pushUnsubscribe)
	}

	mux.HandleFunc("POST /api/admin/generate", s.runGenerate)
	mux.HandleFunc("POST /api/admin/settle", s.runSettle)

	return mux
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.members.List()
	if err != nil {
		s.fail(w, "list members", err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) createMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Role        string `json:"role"`
		Color       string `json:"color"`
		AvatarEmoji string `json:"avatar_emoji"`
		SortOrder   int    `json:"sort_order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Role != model.RoleParent && req.Role != model.RoleKid {
		writeError(w, http.StatusBadRequest, "role must be parent or kid")
		return
	}
	member, err := s.members.Create(req.Name, req.Role, req.Color, req.AvatarEmoji, req.SortOrder)
	if err != nil {
		s.fail(w, "create member", err)
		return
	}
	s.hub.Broadcast(ws.NewMessage("member", "created", member.ID, nil))
	writeJSON(w, http.StatusCreated, member)
}

func (s *Server) memberBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	balance, err := s.pointsSvc.Balance(id)
	if err != nil {
		s.fail(w, "get balance", err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (s *Server) listSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.schedules.ListActive()
	if err != nil {
		s.fail(w, "list schedules", err)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

type scheduleRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Points         int     `json:"points"`
	RecurrenceRule string  `json:"recurrence_rule"`
	AssignedTo     *int64  `json:"assigned_to"`
	AssignedRole   *string `json:"assigned_role"`
}

func (req *scheduleRequest) validate() string {
	if req.Title == "" {
		return "title is required"
	}
	if _, err := recurrence.Parse(req.RecurrenceRule); err != nil {
		return "invalid recurrence rule: " + err.Error()
	}
	return ""
}

func (s *Server) createSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	sched, err := s.schedules.Create(req.Title, req.Description, req.Points, req.RecurrenceRule, req.AssignedTo, req.AssignedRole)
	if err != nil {
		s.fail(w, "create schedule", err)
		return
	}
	s.hub.Broadcast(ws.NewMessage("schedule", "created", sched.ID, nil))
	writeJSON(w, http.StatusCreated, sched)
}

func (s *Server) updateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	sched, err := s.schedules.Update(id, req.Title, req.Description, req.Points, req.RecurrenceRule, req.AssignedTo, req.AssignedRole)
	if err != nil {
		s.fail(w, "update schedule", err)
		return
	}
	if sched == nil {
		writeError(w, http.StatusNotFound, "schedule not found")
		return
	}
	s.hub.Broadcast(ws.NewMessage("schedule", "updated", sched.ID, nil))
	writeJSON(w, http.StatusOK, sched)
}

func (s *Server) archiveSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.schedules.Archive(id); err != nil {
		s.fail(w, "archive schedule", err)
		return
	}
	s.hub.Broadcast(ws.NewMessage("schedule", "archived", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.ListOpen()
	if err != nil {
		s.fail(w, "list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) completeTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		CompletedBy *int64 `json:"completed_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	task, err := s.tasks.Complete(id, req.CompletedBy)
	if err != nil {
		s.fail(w, "complete task", err)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	// Completing a task credits its points to whoever completed it.
	if req.CompletedBy != nil && task.Points > 0 {
		_, err := s.pointsSvc.Award(points.AwardRequest{
			MemberID:  *req.CompletedBy,
			Points:    task.Points,
			Source:    model.AwardSourceTask,
			Reference: "task-" + strconv.FormatInt(task.ID, 10),
			Note:      task.Title,
		}, true)
		if err != nil {
			s.fail(w, "award task points", err)
			return
		}
		if s.activitySvc != nil {
			if err := s.activitySvc.Record(model.ActivityTaskCompleted, req.CompletedBy, task.Points, task.Title); err != nil {
				s.logger.Error("record task completion", "task_id", task.ID, "error", err)
			}
		}
	}

	s.hub.Broadcast(ws.NewMessage("task", "completed", task.ID, map[string]any{
		"points": task.Points,
	}))
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	weekStart := scheduler.WeekStart(time.Now(), s.weekStartDay)
	if raw := r.URL.Query().Get("week"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "week must be YYYY-MM-DD")
			return
		}
		weekStart = parsed
	}
	goals, err := s.goals.ListActiveForWeek(weekStart)
	if err != nil {
		s.fail(w, "list goals", err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID  int64  `json:"member_id"`
		WeekStart string `json:"week_start"`
		MaxPoints int    `json:"max_points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	weekStart := scheduler.WeekStart(time.Now(), s.weekStartDay)
	if req.WeekStart != "" {
		parsed, err := time.Parse("2006-01-02", req.WeekStart)
		if err != nil {
			writeError(w, http.StatusBadRequest, "week_start must be YYYY-MM-DD")
			return
		}
		weekStart = parsed
	}
	goal, err := s.goals.Create(req.MemberID, weekStart, req.MaxPoints)
	if err != nil {
		s.fail(w, "create goal", err)
		return
	}
	s.hub.Broadcast(ws.NewMessage("goal", "created", goal.ID, nil))
	writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) addDeduction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount     int    `json:"amount"`
		Reason     string `json:"reason"`
		RecordedBy *int64 `json:"recorded_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	deduction, err := s.goals.AddDeduction(id, req.Amount, req.Reason, req.RecordedBy)
	if err != nil {
		s.fail(w, "add deduction", err)
		return
	}
	s.hub.Broadcast(ws.NewMessage("goal", "deducted", id, map[string]any{
		"amount": req.Amount,
	}))
	writeJSON(w, http.StatusCreated, deduction)
}

func (s *Server) listActivity(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	entries, err := s.activitySvc.Recent(limit)
	if err != nil {
		s.fail(w, "list activity", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) vapidKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": s.pushService.VAPIDPublicKey()})
}

func (s *Server) pushSubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID   int64  `json:"member_id"`
		Endpoint   string `json:"endpoint"`
		P256dhKey  string `json:"p256dh_key"`
		AuthKey    string `json:"auth_key"`
		DeviceName string `json:"device_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Endpoint == "" || req.P256dhKey == "" || req.AuthKey == "" {
		writeError(w, http.StatusBadRequest, "endpoint, p256dh_key, and auth_key are required")
		return
	}
	sub, err := s.pushStore.Create(req.MemberID, req.Endpoint, req.P256dhKey, req.AuthKey, req.DeviceName)
	if err != nil {
		s.fail(w, "save subscription", err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) pushUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.pushStore.DeleteByEndpoint(req.Endpoint); err != nil {
		s.fail(w, "delete subscription", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// runGenerate triggers task generation for today without waiting for the
// scheduler tick. Useful after creating schedules.
func (s *Server) runGenerate(w http.ResponseWriter, r *http.Request) {
	summary, err := s.generator.GenerateForDate(time.Now())
	if err != nil {
		s.fail(w, "generate tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// runSettle settles the week given by ?week=YYYY-MM-DD, defaulting to the
// previous week relative to now.
func (s *Server) runSettle(w http.ResponseWriter, r *http.Request) {
	weekStart := scheduler.WeekStart(time.Now(), s.weekStartDay).AddDate(0, 0, -7)
	if raw := r.URL.Query().Get("week"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "week must be YYYY-MM-DD")
			return
		}
		weekStart = parsed
	}
	summary, err := s.settler.ProcessWeek(weekStart)
	if err != nil {
		s.fail(w, "settle goals", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, "error", err)
	writeError(w, http.StatusInternalServerError, op+" failed")
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
