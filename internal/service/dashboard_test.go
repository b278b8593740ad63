package service_test

import (
	"context"
	"errors"
	"net/url"

	"github.com/dataservice/chat2query/internal/client"
	"github.com/dataservice/chat2query/internal/service"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeDataAPI struct {
	endpoint string
	params   url.Values
}

func (f *fakeDataAPI) Query(_ context.Context, endpoint string, params url.Values) (*client.SQLEndpointResponse, error) {
	f.endpoint = endpoint
	f.params = params
	return &client.SQLEndpointResponse{
		Type: "sql_endpoint",
		Data: client.EndpointData{
			Columns: []client.EndpointColumn{{Col: "total"}},
			Rows:    []map[string]any{{"total": "12"}},
			Result:  client.EndpointResult{Code: 200, Message: "Query OK!"},
		},
	}, nil
}

var _ = Describe("dashboard service", func() {
	It("forwards the endpoint and parameters", func() {
		api := &fakeDataAPI{}
		svc := service.NewDashboardService(api)

		resp, err := svc.Query(context.TODO(), "sales/by_region", url.Values{"region": {"eu"}})
		Expect(err).To(BeNil())
		Expect(resp.ColumnNames()).To(Equal([]string{"total"}))
		Expect(api.endpoint).To(Equal("sales/by_region"))
		Expect(api.params.Get("region")).To(Equal("eu"))
	})

	It("fails without a configured client", func() {
		svc := service.NewDashboardService(nil)

		_, err := svc.Query(context.TODO(), "x", nil)
		var disabled *service.ErrDataAPIDisabled
		Expect(errors.As(err, &disabled)).To(BeTrue())
	})
})
