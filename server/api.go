package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/dagkit/errors"
	"github.com/kbukum/dagkit/op"
	"github.com/kbukum/dagkit/persist"
	"github.com/kbukum/dagkit/pipeline"
	"github.com/kbukum/dagkit/validation"
)

// NodeRequest is the payload for creating a node.
type NodeRequest struct {
	ID         string     `json:"id" validate:"required"`
	Type       string     `json:"type" validate:"required"`
	Parameters []op.Param `json:"parameters"`
}

// EdgeRequest is the payload for creating an edge.
type EdgeRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// FrameRequest is the payload for loading series into the frame.
type FrameRequest struct {
	Columns map[string][]float64 `json:"columns" validate:"required,min=1"`
}

// NodeOutcome is the per-node slice of an execution summary.
type NodeOutcome struct {
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// ExecutionSummary is the response body for a completed run.
type ExecutionSummary struct {
	RunID      string                 `json:"run_id"`
	Status     string                 `json:"status"`
	Stages     int                    `json:"stages"`
	DurationMS int64                  `json:"duration_ms"`
	Succeeded  int                    `json:"succeeded"`
	Failed     int                    `json:"failed"`
	Pending    int                    `json:"pending"`
	Nodes      map[string]NodeOutcome `json:"nodes"`
}

// API exposes a pipeline over REST.
type API struct {
	pipeline *pipeline.Pipeline
}

// NewAPI creates the REST surface for a pipeline.
func NewAPI(p *pipeline.Pipeline) *API {
	return &API{pipeline: p}
}

// RegisterRoutes mounts the API under /api/v1.
func (a *API) RegisterRoutes(engine *gin.Engine) {
	v1 := engine.Group("/api/v1")
	v1.POST("/nodes", a.addNode)
	v1.DELETE("/nodes/:id", a.removeNode)
	v1.POST("/edges", a.addEdge)
	v1.DELETE("/edges/:source/:target", a.removeEdge)
	v1.POST("/execute", a.execute)
	v1.GET("/graph", a.exportGraph)
	v1.PUT("/graph", a.loadGraph)
	v1.POST("/frame", a.loadFrame)
	v1.GET("/frame", a.describeFrame)
}

func (a *API) addNode(c *gin.Context) {
	var req NodeRequest
	if err := bindJSON(c, &req); err != nil {
		RespondWithError(c, err)
		return
	}
	if err := a.pipeline.AddNode(req.ID, op.Kind(req.Type), req.Parameters); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondCreated(c, gin.H{"id": req.ID})
}

func (a *API) removeNode(c *gin.Context) {
	if err := a.pipeline.RemoveNode(c.Param("id")); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondNoContent(c)
}

func (a *API) addEdge(c *gin.Context) {
	var req EdgeRequest
	if err := bindJSON(c, &req); err != nil {
		RespondWithError(c, err)
		return
	}
	if err := a.pipeline.AddEdge(req.Source, req.Target); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondCreated(c, gin.H{"source": req.Source, "target": req.Target})
}

func (a *API) removeEdge(c *gin.Context) {
	if err := a.pipeline.RemoveEdge(c.Param("source"), c.Param("target")); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondNoContent(c)
}

func (a *API) execute(c *gin.Context) {
	res, err := a.pipeline.Execute(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}

	succeeded, failed, pending := res.Counts()
	summary := ExecutionSummary{
		RunID:      res.RunID,
		Status:     "succeeded",
		Stages:     res.Stages,
		DurationMS: res.Duration.Milliseconds(),
		Succeeded:  succeeded,
		Failed:     failed,
		Pending:    pending,
		Nodes:      make(map[string]NodeOutcome, len(res.Nodes())),
	}
	for _, nr := range res.Nodes() {
		outcome := NodeOutcome{
			Status:     string(nr.Status),
			Attempts:   nr.Attempts,
			DurationMS: nr.Duration.Milliseconds(),
		}
		if nr.Err != nil {
			outcome.Error = nr.Err.Error()
		}
		summary.Nodes[nr.ID] = outcome
	}
	RespondOK(c, summary)
}

// exportGraph returns the bare document, not the data envelope, so the body
// can be fed back to PUT /graph or saved to disk unchanged.
func (a *API) exportGraph(c *gin.Context) {
	c.JSON(http.StatusOK, a.pipeline.Export())
}

func (a *API) loadGraph(c *gin.Context) {
	var doc persist.Document
	if err := bindJSON(c, &doc); err != nil {
		RespondWithError(c, err)
		return
	}
	if err := a.pipeline.Load(doc); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondNoContent(c)
}

func (a *API) loadFrame(c *gin.Context) {
	var req FrameRequest
	if err := bindJSON(c, &req); err != nil {
		RespondWithError(c, err)
		return
	}
	for name, values := range req.Columns {
		a.pipeline.SetSeries(name, values)
	}
	RespondNoContent(c)
}

func (a *API) describeFrame(c *gin.Context) {
	RespondOK(c, gin.H{"columns": a.pipeline.SeriesSizes()})
}

// bindJSON decodes the request body into dst and validates it, mapping both
// failure modes to INVALID_INPUT.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.Validation(fmt.Sprintf("malformed request body: %v", err))
	}
	return validation.Validate(dst)
}
