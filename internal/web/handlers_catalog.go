package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dstockton/storeaudit/internal/core"
)

// handleListDepartments returns the full catalog with questions.
func (s *Server) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := s.service.Departments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load departments")
		return
	}
	if departments == nil {
		departments = []core.Department{}
	}
	writeJSON(w, departments)
}

// handleCreateDepartment adds a department to the catalog. Creating a
// department whose name already exists (case-insensitive) returns the
// existing one.
func (s *Server) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "department name is required")
		return
	}

	dept, err := s.service.CreateDepartment(r.Context(), req.Name, req.Icon)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create department")
		return
	}

	writeJSONStatus(w, http.StatusCreated, dept)
}

// handleListQuestions returns one department's questions in catalog order.
func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	departmentID, err := uuid.Parse(chi.URLParam(r, "departmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid department ID")
		return
	}

	questions, err := s.service.Questions(r.Context(), departmentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load questions")
		return
	}
	if questions == nil {
		questions = []core.Question{}
	}
	writeJSON(w, questions)
}

// handleCreateQuestion adds a single question to a department.
func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var q core.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if q.DepartmentID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "department_id is required")
		return
	}
	if strings.TrimSpace(q.Text) == "" {
		writeError(w, http.StatusBadRequest, "question text is required")
		return
	}
	if q.AnswerType == "" {
		q.AnswerType = core.AnswerYesNo
	}
	if !q.AnswerType.Valid() {
		writeError(w, http.StatusBadRequest, "invalid answer type")
		return
	}
	if q.PointsYes < 0 || q.PointsPartial < 0 || q.PointsNo < 0 {
		writeError(w, http.StatusBadRequest, "points must be non-negative")
		return
	}
	if q.RiskCategory == "" {
		q.RiskCategory = core.DefaultRiskCategory
	}
	if q.AnswerType == core.AnswerYesNo {
		q.PointsPartial = 0
	}

	created, err := s.service.CreateQuestion(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create question")
		return
	}

	writeJSONStatus(w, http.StatusCreated, created)
}
