package handler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nephsir/jobfinder/internal/application"
	"github.com/nephsir/jobfinder/internal/job"
	"github.com/nephsir/jobfinder/internal/realtime"
	"github.com/nephsir/jobfinder/internal/server"
)

// ClientEvents dispatches socket events into the same domain services the
// REST endpoints use. Applying over the socket persists exactly like a
// POST /api/applications would, so the two submission paths cannot drift.
type ClientEvents struct {
	svr             server.Server
	jobRepo         *job.Repository
	applicationRepo *application.Repository
	hub             realtime.Emitter
}

func NewClientEvents(svr server.Server, jobRepo *job.Repository, applicationRepo *application.Repository, hub realtime.Emitter) *ClientEvents {
	return &ClientEvents{svr: svr, jobRepo: jobRepo, applicationRepo: applicationRepo, hub: hub}
}

func (e *ClientEvents) HandleClientEvent(c *realtime.Client, event string, data json.RawMessage) {
	switch event {
	case "applyJob":
		e.applyJob(c, data)
	case "searchJobs":
		e.searchJobs(c, data)
	case "sendNotification":
		e.sendNotification(data)
	}
}

func (e *ClientEvents) applyJob(c *realtime.Client, data json.RawMessage) {
	var req applicationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.Emit("applicationConfirmed", map[string]interface{}{
			"success": false,
			"message": "Invalid application payload",
		})
		return
	}
	a := req.toApplication()
	created, err := e.applicationRepo.CreateApplication(&a)
	if err != nil {
		if err != application.ErrInvalidJob {
			e.svr.Log(err, "unable to create application over socket")
		}
		c.Emit("applicationConfirmed", map[string]interface{}{
			"success": false,
			"message": "Could not submit application",
		})
		return
	}
	if created {
		e.hub.Broadcast("newApplication", newApplicationEvent(a))
	}
	c.Emit("applicationConfirmed", map[string]interface{}{
		"success":       true,
		"message":       fmt.Sprintf("Successfully applied to %s", a.JobTitle),
		"applicationId": a.ID,
	})
}

func (e *ClientEvents) searchJobs(c *realtime.Client, data json.RawMessage) {
	var query struct {
		Keyword  string `json:"keyword"`
		Location string `json:"location"`
		Category string `json:"category"`
		Type     string `json:"type"`
	}
	if err := json.Unmarshal(data, &query); err != nil {
		return
	}
	jobs, err := e.jobRepo.SearchJobs(job.SearchFilters{
		Keyword:  query.Keyword,
		Location: query.Location,
		Category: query.Category,
		Type:     query.Type,
	})
	if err != nil {
		e.svr.Log(err, "unable to search jobs over socket")
		return
	}
	c.Emit("searchResults", map[string]interface{}{
		"query":     query,
		"results":   jobs,
		"count":     len(jobs),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (e *ClientEvents) sendNotification(data json.RawMessage) {
	var req struct {
		UserID  string `json:"userId"`
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.UserID == "" {
		return
	}
	e.hub.ToUser(req.UserID, "notification", map[string]interface{}{
		"type":      req.Type,
		"message":   req.Message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
