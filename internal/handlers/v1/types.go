package v1

import (
	"net/http"

	"github.com/dataservice/chat2query/internal/client"
	"github.com/dataservice/chat2query/internal/service"
	"github.com/dataservice/chat2query/internal/store/model"
	"github.com/go-chi/render"
)

// Connection replaces the server-side connection for one call. All fields
// are required when it is present.
type Connection struct {
	BaseURL    string `json:"base_url" validate:"required,http_url"`
	PublicKey  string `json:"public_key" validate:"required"`
	PrivateKey string `json:"private_key" validate:"required"`
	ClusterID  string `json:"cluster_id" validate:"required,cluster_id"`
	Database   string `json:"database" validate:"required"`
}

func (c *Connection) toService() *service.Connection {
	if c == nil {
		return nil
	}
	return &service.Connection{
		BaseURL:    c.BaseURL,
		PublicKey:  c.PublicKey,
		PrivateKey: c.PrivateKey,
		ClusterID:  c.ClusterID,
		Database:   c.Database,
	}
}

type AskRequest struct {
	Question   string      `json:"question" validate:"required"`
	Connection *Connection `json:"connection,omitempty"`
}

type DataSummaryRequest struct {
	Connection *Connection `json:"connection,omitempty"`
}

type TodoRequest struct {
	Title string `json:"title" validate:"todo_title"`
}

type ToggleAllRequest struct {
	Completed bool `json:"completed"`
}

type ListTodosParams struct {
	Page   int    `validate:"min=1"`
	Limit  int    `validate:"min=1,max=100"`
	Filter string `validate:"todo_filter"`
}

type GatewayParams struct {
	Endpoint string `validate:"required,endpoint_path"`
}

type AnswerReply struct {
	*service.Answer
}

func (a AnswerReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type JobReply struct {
	*client.Job
}

func (j JobReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type DataSummaryReply struct {
	*client.DataSummaryJob
}

func (d DataSummaryReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type GatewayReply struct {
	*client.SQLEndpointResponse
}

func (g GatewayReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type TodoListReply struct {
	Success bool         `json:"success"`
	Todos   []model.Todo `json:"todos"`
	Total   int64        `json:"total"`
}

func (t TodoListReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type TodoReply struct {
	Success  bool        `json:"success"`
	Todo     *model.Todo `json:"todo,omitempty"`
	Affected *int64      `json:"affected,omitempty"`
	status   int
}

func (t TodoReply) Render(w http.ResponseWriter, r *http.Request) error {
	if t.status != 0 {
		render.Status(r, t.status)
	}
	return nil
}

type HealthReply struct {
	Status string `json:"status"`
}

func (h HealthReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type InfoReply struct {
	GitCommit  string `json:"gitCommit"`
	GitVersion string `json:"gitVersion"`
}

func (i InfoReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
