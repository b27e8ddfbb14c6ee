package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/prompts"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/router"
)

type generateRequest struct {
	Problem   string `json:"problem"`
	ProjectID string `json:"project_id"`
	Mode      string `json:"mode"`
	UserID    string `json:"user_id"`
}

type generateResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Problem) == "" {
		writeError(w, http.StatusBadRequest, "problem is required")
		return
	}

	mode := engine.ModeCreate
	switch req.Mode {
	case "", "create":
	case "update":
		mode = engine.ModeUpdate
		if req.ProjectID == "" {
			writeError(w, http.StatusBadRequest, "project_id is required in update mode")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "mode must be create or update")
		return
	}

	answer, err := s.loop.Run(r.Context(), req.Problem, req.ProjectID, mode, req.UserID)
	if err != nil {
		s.log.Error().Err(err).Str("project", req.ProjectID).Msg("generate failed")
		status, msg := userMessage(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Answer: answer})
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type chatResponse struct {
	Reply    string   `json:"reply"`
	Action   string   `json:"action"`
	Project  string   `json:"project,omitempty"`
	Projects []string `json:"projects,omitempty"`
}

// handleChat is the conversational front of the builder: it classifies
// the message and either answers directly or routes it into the agent.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	owner := req.UserID
	known, err := s.files.List(r.Context(), owner)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list projects for chat")
		known = nil
	}

	intent := router.Classify(req.Message, known)
	resp := chatResponse{Action: intent.Action.String(), Project: intent.Project}

	s.sessions.AppendChat(sessionKey(owner), engine.RoleUser, req.Message)

	switch intent.Action {
	case router.ActionShow:
		if known == nil {
			known = []string{}
		}
		resp.Projects = known
		if len(known) == 0 {
			resp.Reply = "You don't have any projects yet. Ask me to build one!"
		} else {
			resp.Reply = fmt.Sprintf("You have %d project(s): %s", len(known), strings.Join(known, ", "))
		}

	case router.ActionBuild, router.ActionDeploy:
		answer, err := s.loop.Run(r.Context(), req.Message, intent.Project, engine.ModeCreate, req.UserID)
		if err != nil {
			s.chatError(w, err)
			return
		}
		resp.Reply = answer

	case router.ActionUpdate:
		if intent.Project == "" {
			resp.Reply = "Which project would you like to update? Say for example: update my-portfolio to add a contact form."
			break
		}
		answer, err := s.loop.Run(r.Context(), req.Message, intent.Project, engine.ModeUpdate, req.UserID)
		if err != nil {
			s.chatError(w, err)
			return
		}
		resp.Reply = answer

	default: // greet, general
		reply, err := s.smallTalk(r, req.Message, owner, known)
		if err != nil {
			s.chatError(w, err)
			return
		}
		resp.Reply = reply
	}

	s.sessions.AppendChat(sessionKey(owner), engine.RoleModel, resp.Reply)
	writeJSON(w, http.StatusOK, resp)
}

// smallTalk answers greetings and general questions with a single model
// call, seeded with the recent chat transcript and the project list.
func (s *Server) smallTalk(r *http.Request, message, owner string, known []string) (string, error) {
	builder, err := prompts.NewPromptBuilder(prompts.DefaultRegistry(), "assistant_chat", prompts.PromptV1)
	if err != nil {
		return "", err
	}
	builder.AddFragment("The user's projects: {{projects}}")
	if len(known) > 0 {
		builder.SetVariable("projects", strings.Join(known, ", "))
	} else {
		builder.SetVariable("projects", "(none yet)")
	}
	if transcript := s.sessions.FormatChat(sessionKey(owner)); transcript != "" {
		builder.AddFragment("Recent conversation:\n" + transcript)
	}

	out, err := s.gateway.Generate(r.Context(),
		[]engine.Turn{engine.UserTurn(message)},
		builder.Build(), nil, engine.GenParams{Temperature: 0.7})
	if err != nil {
		return "", err
	}
	if out.Kind != engine.OutcomeText || strings.TrimSpace(out.Text) == "" {
		return "I'm not sure how to help with that. Try asking me to build a website.", nil
	}
	return out.Text, nil
}

func (s *Server) chatError(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("chat failed")
	status, msg := userMessage(err)
	writeError(w, status, msg)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "project name is required")
		return
	}
	owner := r.URL.Query().Get("user_id")

	if err := s.files.DeleteProject(r.Context(), owner, name); err != nil {
		s.log.Error().Err(err).Str("project", name).Msg("delete failed")
		writeError(w, http.StatusNotFound, fmt.Sprintf("project %s not found", name))
		return
	}
	s.sessions.DeleteHistory(name)

	writeJSON(w, http.StatusOK, map[string]any{"project": name, "deleted": true})
}

func sessionKey(userID string) string {
	if userID == "" {
		return "anonymous"
	}
	return userID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
