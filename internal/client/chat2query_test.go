package client_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dataservice/chat2query/internal/client"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// countingBackoff records every suspension the poll loop asks for.
type countingBackoff struct {
	delay time.Duration
	calls atomic.Int32
}

func (b *countingBackoff) Next(int) time.Duration {
	b.calls.Add(1)
	return b.delay
}

// fakeService plays the remote task API. Each poll of a job pops the next
// scripted response; the last one is repeated once the script is exhausted.
type fakeService struct {
	mu          sync.Mutex
	submitCode  int
	submitBody  string
	jobID       string
	script      []string
	polls       int
	submits     int
	inFlight    atomic.Int32
	overlapped  atomic.Bool
	lastAuth    string
	lastPayload map[string]any
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	submit := func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.submits++
		f.lastAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		f.lastPayload = map[string]any{}
		_ = json.Unmarshal(body, &f.lastPayload)

		if f.submitCode != 0 && f.submitCode != http.StatusOK {
			w.WriteHeader(f.submitCode)
			return
		}
		if f.submitBody != "" {
			_, _ = io.WriteString(w, f.submitBody)
			return
		}
		_, _ = io.WriteString(w, `{"code":200,"msg":"","result":{"job_id":"`+f.jobID+`"}}`)
	}
	mux.HandleFunc("POST /v3/chat2data", submit)
	mux.HandleFunc("POST /v3/dataSummaries", submit)
	mux.HandleFunc("GET /v2/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.inFlight.Add(1) > 1 {
			f.overlapped.Store(true)
		}
		defer f.inFlight.Add(-1)
		// keep the request open long enough for an overlapping poll to be seen
		time.Sleep(2 * time.Millisecond)

		f.mu.Lock()
		defer f.mu.Unlock()
		f.lastAuth = r.Header.Get("Authorization")
		idx := f.polls
		if idx >= len(f.script) {
			idx = len(f.script) - 1
		}
		f.polls++
		_, _ = io.WriteString(w, f.script[idx])
	})
	return mux
}

func (f *fakeService) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func (f *fakeService) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

func jobEnvelope(jobID, status, reason, result string) string {
	if result == "" {
		result = "null"
	}
	return `{"code":200,"msg":"","result":{"job_id":"` + jobID + `","status":"` + status +
		`","reason":"` + reason + `","ended_at":1700000000,"result":` + result + `}}`
}

var _ = Describe("chat2query client", func() {
	var (
		ctx     context.Context
		fake    *fakeService
		server  *httptest.Server
		backoff *countingBackoff
		c       *client.Chat2Query
	)

	service := func(url string) client.Service {
		return client.Service{
			Server:      url,
			Credentials: client.Credentials{PublicKey: "public", PrivateKey: "private"},
			ClusterID:   "10000",
			Database:    "sp500insight",
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		fake = &fakeService{}
		server = httptest.NewServer(fake.handler())
		backoff = &countingBackoff{delay: time.Millisecond}
		c = client.NewChat2Query(service(server.URL),
			client.WithHTTPClient(server.Client()),
			client.WithDefaultPollOptions(client.WithBackoff(backoff)))
	})

	AfterEach(func() {
		server.Close()
	})

	Context("awaiting a job", func() {
		It("returns the done record after two polls and one suspension", func() {
			fake.jobID = "abc"
			fake.script = []string{
				jobEnvelope("abc", "running", "", ""),
				jobEnvelope("abc", "done", "", `{"sql":"SELECT 1"}`),
			}

			job, err := c.SubmitAndAwait(ctx, client.Chat2DataTask{Question: "how many rows?"})
			Expect(err).To(BeNil())
			Expect(job.ID).To(Equal("abc"))
			Expect(job.Status).To(Equal(client.JobStatusDone))
			Expect(job.HasResult()).To(BeTrue())
			Expect(job.Ended()).To(Equal(time.Unix(1700000000, 0)))
			Expect(fake.pollCount()).To(Equal(2))
			Expect(backoff.calls.Load()).To(BeEquivalentTo(1))
		})

		It("returns a failed job on the first poll without suspending", func() {
			fake.jobID = "x"
			fake.script = []string{jobEnvelope("x", "failed", "syntax error", "")}

			job, err := c.SubmitAndAwait(ctx, client.Chat2DataTask{Question: "drop everything"})
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal(client.JobStatusFailed))
			Expect(job.Reason).To(Equal("syntax error"))
			Expect(job.HasResult()).To(BeFalse())
			Expect(fake.pollCount()).To(Equal(1))
			Expect(backoff.calls.Load()).To(BeZero())

			var failure *client.ApplicationFailure
			Expect(errors.As(job.Err(), &failure)).To(BeTrue())
			Expect(failure.Message).To(Equal("syntax error"))
			Expect(failure.Code).To(BeZero())
			Expect(failure.JobID).To(Equal("x"))
			Expect(failure.IsJobFailure()).To(BeTrue())
		})

		It("fails with a transport error and never polls when submit returns 500", func() {
			fake.submitCode = http.StatusInternalServerError

			job, err := c.SubmitAndAwait(ctx, client.Chat2DataTask{Question: "q"})
			Expect(job).To(BeNil())
			Expect(client.IsTransportError(err)).To(BeTrue())
			Expect(err.Error()).To(Equal("HTTP status: 500, Internal Server Error"))

			var transportErr *client.TransportError
			Expect(errors.As(err, &transportErr)).To(BeTrue())
			Expect(transportErr.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(fake.pollCount()).To(BeZero())
		})

		It("treats a non-200 envelope code on a poll as an application failure", func() {
			fake.jobID = "abc"
			fake.script = []string{`{"code":403,"msg":"unauthorized","result":null}`}

			job, err := c.AwaitJob(ctx, "abc")
			Expect(job).To(BeNil())
			Expect(client.IsApplicationFailure(err)).To(BeTrue())
			Expect(client.IsTransportError(err)).To(BeFalse())
			Expect(err.Error()).To(Equal("unauthorized"))

			var failure *client.ApplicationFailure
			Expect(errors.As(err, &failure)).To(BeTrue())
			Expect(failure.Code).To(Equal(403))
			Expect(failure.IsJobFailure()).To(BeFalse())
			Expect(fake.pollCount()).To(Equal(1))
			Expect(backoff.calls.Load()).To(BeZero())
		})

		It("treats a non-2xx poll as a transport error without retrying", func() {
			server.Close()
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			c = client.NewChat2Query(service(server.URL), client.WithDefaultPollOptions(client.WithBackoff(backoff)))

			_, err := c.AwaitJob(ctx, "abc")
			Expect(client.IsTransportError(err)).To(BeTrue())
			Expect(err.Error()).To(Equal("HTTP status: 502, Bad Gateway"))
			Expect(backoff.calls.Load()).To(BeZero())
		})

		It("reports a poll with no status record as malformed without retrying", func() {
			fake.jobID = "abc"
			fake.script = []string{`{"code":200,"msg":"","result":null}`}

			job, err := c.AwaitJob(ctx, "abc")
			Expect(job).To(BeNil())
			Expect(errors.Is(err, client.ErrMalformedResponse)).To(BeTrue())
			Expect(fake.pollCount()).To(Equal(1))
			Expect(backoff.calls.Load()).To(BeZero())
		})

		It("reports an unknown or missing status as malformed without retrying", func() {
			for _, body := range []string{
				jobEnvelope("abc", "queued", "", ""),
				`{"code":200,"msg":"","result":{"job_id":"abc"}}`,
			} {
				fake.jobID = "abc"
				fake.script = []string{body}

				_, err := c.AwaitJob(ctx, "abc")
				Expect(errors.Is(err, client.ErrMalformedResponse)).To(BeTrue(), body)
			}
			Expect(fake.pollCount()).To(Equal(2))
			Expect(backoff.calls.Load()).To(BeZero())
		})

		It("waits at least the minimum delay when the backoff returns none", func() {
			fake.jobID = "abc"
			fake.script = []string{
				jobEnvelope("abc", "running", "", ""),
				jobEnvelope("abc", "running", "", ""),
				jobEnvelope("abc", "done", "", `{}`),
			}
			backoff.delay = -time.Second

			start := time.Now()
			_, err := c.AwaitJob(ctx, "abc")
			Expect(err).To(BeNil())
			Expect(fake.pollCount()).To(Equal(3))
			Expect(time.Since(start)).To(BeNumerically(">=", 2*client.MinPollDelay))
		})

		It("reports a refused connection on poll as a transport error", func() {
			server.Close()
			c = client.NewChat2Query(service(server.URL), client.WithDefaultPollOptions(client.WithBackoff(backoff)))

			job, err := c.AwaitJob(ctx, "abc")
			Expect(job).To(BeNil())

			var transportErr *client.TransportError
			Expect(errors.As(err, &transportErr)).To(BeTrue())
			Expect(transportErr.Err).NotTo(BeNil())
			Expect(transportErr.StatusCode).To(BeZero())
			Expect(backoff.calls.Load()).To(BeZero())
		})

		It("returns the same terminal payload when a finished job is awaited again", func() {
			fake.jobID = "abc"
			fake.script = []string{jobEnvelope("abc", "done", "", `{"sql":"SELECT 1"}`)}

			first, err := c.AwaitJob(ctx, "abc")
			Expect(err).To(BeNil())
			second, err := c.AwaitJob(ctx, "abc")
			Expect(err).To(BeNil())
			Expect(second).To(Equal(first))
		})

		It("never issues overlapping polls", func() {
			fake.jobID = "abc"
			fake.script = []string{
				jobEnvelope("abc", "init", "", ""),
				jobEnvelope("abc", "running", "", ""),
				jobEnvelope("abc", "running", "", ""),
				jobEnvelope("abc", "running", "", ""),
				jobEnvelope("abc", "done", "", `{}`),
			}
			backoff.delay = 0

			_, err := c.AwaitJob(ctx, "abc")
			Expect(err).To(BeNil())
			Expect(fake.pollCount()).To(Equal(5))
			Expect(fake.overlapped.Load()).To(BeFalse())
		})

		It("stops after the configured number of polls", func() {
			fake.jobID = "abc"
			fake.script = []string{jobEnvelope("abc", "running", "", "")}

			_, err := c.AwaitJob(ctx, "abc", client.WithMaxAttempts(3))
			Expect(errors.Is(err, client.ErrMaxAttemptsExceeded)).To(BeTrue())
			Expect(fake.pollCount()).To(Equal(3))
			Expect(backoff.calls.Load()).To(BeEquivalentTo(2))
		})

		It("stops when the timeout expires", func() {
			fake.jobID = "abc"
			fake.script = []string{jobEnvelope("abc", "running", "", "")}

			_, err := c.AwaitJob(ctx, "abc", client.WithInterval(time.Hour), client.WithTimeout(20*time.Millisecond))
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("abc"))
			Expect(fake.pollCount()).To(Equal(1))
		})

		It("stops when the caller cancels", func() {
			fake.jobID = "abc"
			fake.script = []string{jobEnvelope("abc", "running", "", "")}

			cctx, cancel := context.WithCancel(ctx)
			time.AfterFunc(20*time.Millisecond, cancel)

			_, err := c.AwaitJob(cctx, "abc", client.WithInterval(time.Hour))
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})

	Context("submitting", func() {
		It("sends basic auth built from the key pair", func() {
			fake.jobID = "abc"
			_, err := c.Submit(ctx, client.Chat2DataTask{Question: "q"})
			Expect(err).To(BeNil())

			expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("public:private"))
			Expect(fake.lastAuth).To(Equal(expected))
		})

		It("sends the question against the configured database", func() {
			fake.jobID = "abc"
			_, err := c.Submit(ctx, client.Chat2DataTask{Question: "top 5 companies"})
			Expect(err).To(BeNil())
			Expect(fake.lastPayload).To(Equal(map[string]any{
				"cluster_id":        "10000",
				"database":          "sp500insight",
				"question":          "top 5 companies",
				"sql_generate_mode": "direct",
			}))
		})

		It("reports a refused connection on submit as a transport error", func() {
			server.Close()
			c = client.NewChat2Query(service(server.URL), client.WithDefaultPollOptions(client.WithBackoff(backoff)))

			jobID, err := c.Submit(ctx, client.Chat2DataTask{Question: "q"})
			Expect(jobID).To(BeEmpty())
			Expect(client.IsTransportError(err)).To(BeTrue())

			var transportErr *client.TransportError
			Expect(errors.As(err, &transportErr)).To(BeTrue())
			Expect(transportErr.Err).NotTo(BeNil())
			Expect(err.Error()).To(HavePrefix("transport error: "))
		})

		It("reports an envelope failure on submit", func() {
			fake.submitBody = `{"code":400,"msg":"cluster not found","result":null}`
			_, err := c.Submit(ctx, client.Chat2DataTask{Question: "q"})
			Expect(client.IsApplicationFailure(err)).To(BeTrue())
			Expect(err.Error()).To(Equal("cluster not found"))
		})

		It("reports a body that is not json as malformed", func() {
			fake.submitBody = `<html>oops</html>`
			_, err := c.Submit(ctx, client.Chat2DataTask{Question: "q"})
			Expect(errors.Is(err, client.ErrMalformedResponse)).To(BeTrue())
		})

		It("reports a submission without job id as malformed", func() {
			fake.submitBody = `{"code":200,"msg":"","result":{}}`
			_, err := c.Submit(ctx, client.Chat2DataTask{Question: "q"})
			Expect(errors.Is(err, client.ErrMalformedResponse)).To(BeTrue())
		})

		It("uses the credentials of a derived client without touching the original", func() {
			fake.jobID = "abc"
			other := c.WithService(c.Service().WithCredentials(client.Credentials{PublicKey: "alice", PrivateKey: "secret"}))

			_, err := other.Submit(ctx, client.Chat2DataTask{Question: "q"})
			Expect(err).To(BeNil())
			Expect(fake.lastAuth).To(Equal("Basic " + base64.StdEncoding.EncodeToString([]byte("alice:secret"))))

			_, err = c.Submit(ctx, client.Chat2DataTask{Question: "q"})
			Expect(err).To(BeNil())
			Expect(fake.lastAuth).To(Equal("Basic " + base64.StdEncoding.EncodeToString([]byte("public:private"))))
			Expect(fake.submitCount()).To(Equal(2))
		})
	})

	Context("typed helpers", func() {
		It("decodes the answer of a finished question", func() {
			fake.jobID = "abc"
			fake.script = []string{jobEnvelope("abc", "done", "", `{
				"clarified_task":"List the companies",
				"sql":"SELECT name FROM companies",
				"sql_error":null,
				"status":"done",
				"task_id":"t1",
				"type":"data_retrieval",
				"data":{"columns":[{"col":"name"}],"rows":[["Apple"],["Nvidia"]]}
			}`)}

			job, err := c.Ask(ctx, "which companies?")
			Expect(err).To(BeNil())
			Expect(job.Answer).NotTo(BeNil())
			Expect(job.Answer.ClarifiedTask).To(Equal("List the companies"))
			Expect(job.Answer.SQL).To(Equal("SELECT name FROM companies"))
			Expect(job.Answer.SQLError).To(BeNil())
			Expect(job.Answer.ColumnNames()).To(Equal([]string{"name"}))
			Expect(job.Answer.Data.Rows).To(HaveLen(2))
		})

		It("leaves the answer empty for a failed question", func() {
			fake.jobID = "abc"
			fake.script = []string{jobEnvelope("abc", "failed", "quota exceeded", "")}

			job, err := c.Ask(ctx, "q")
			Expect(err).To(BeNil())
			Expect(job.Answer).To(BeNil())
			Expect(job.Reason).To(Equal("quota exceeded"))
		})

		It("submits a reusable default data summary", func() {
			fake.jobID = "sum"
			fake.script = []string{jobEnvelope("sum", "done", "", `{
				"cluster_id":"10000",
				"data_summary_id":42,
				"database":"sp500insight",
				"default":true,
				"summary":"S&P 500 companies",
				"keywords":["stocks"],
				"tables":{"companies":{"name":"companies","description":"listed companies","columns":{"name":{"name":"name","description":"company name"}}}}
			}`)}

			job, err := c.GetDataSummary(ctx)
			Expect(err).To(BeNil())
			Expect(fake.lastPayload).To(HaveKeyWithValue("reuse", true))
			Expect(fake.lastPayload).To(HaveKeyWithValue("default", true))
			Expect(fake.lastPayload).To(HaveKeyWithValue("description", ""))
			Expect(job.Summary).NotTo(BeNil())
			Expect(job.Summary.DataSummaryID).To(BeEquivalentTo(42))
			Expect(job.Summary.Tables).To(HaveKey("companies"))
			Expect(job.Summary.Keywords).To(ConsistOf("stocks"))
		})
	})

	Context("decoding a job", func() {
		It("refuses to decode a job that is not done", func() {
			job := client.Job{ID: "abc", Status: client.JobStatusRunning}
			var v map[string]any
			err := job.Decode(&v)
			Expect(err).NotTo(BeNil())
			Expect(strings.Contains(err.Error(), "running")).To(BeTrue())
		})

		It("has no error for a job that is not failed", func() {
			job := client.Job{ID: "abc", Status: client.JobStatusDone}
			Expect(job.Err()).To(BeNil())
		})
	})
})
