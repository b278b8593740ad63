package v1

import (
	"net/http"

	"github.com/dataservice/chat2query/pkg/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// Gateway forwards GET /gateway/<endpoint>?<params> to the Data API.
func (h *ServiceHandler) Gateway(w http.ResponseWriter, r *http.Request) {
	params := GatewayParams{Endpoint: chi.URLParam(r, "*")}
	logger := log.NewDebugLogger("gateway_handler").WithContext(r.Context()).Operation("query_endpoint").WithString("endpoint", params.Endpoint).Build()

	if err := h.validator.Struct(params); err != nil {
		renderServiceError(w, r, err)
		return
	}

	resp, err := h.dashboardSrv.Query(r.Context(), params.Endpoint, r.URL.Query())
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().Log()
	_ = render.Render(w, r, GatewayReply{resp})
}
