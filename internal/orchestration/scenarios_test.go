package orchestration

import (
	"context"
	"errors"
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/oauth2"

	"github.com/imamik/pipelinekit/internal/config"
	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/provisioning"
	testutil "github.com/imamik/pipelinekit/internal/testing"
)

var _ = Describe("Provisioning a repository", func() {
	var (
		ctx      context.Context
		cancel   context.CancelFunc
		plane    *testutil.FakeControlPlane
		observer *testutil.RecordingObserver
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(cancel)
		plane = testutil.NewFakeControlPlane(GinkgoT())
		observer = testutil.NewRecordingObserver()
	})

	newOrchestrator := func(cfg *config.Config, opts ...Option) *Orchestrator {
		plane.ApplyEndpoints(cfg)
		base := []Option{
			WithObserver(observer),
			WithTimeouts(testutil.FastTimeouts()),
			WithSourceToken(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "ghp_scenario"})),
		}
		return New(plane.DevOpsClient(), cfg, append(base, opts...)...)
	}

	Context("scenario A: a GitHub repository in an existing organization", func() {
		It("connects GitHub, authorizes it and returns the run link", func() {
			plane.GitHubReadiness = []bool{false, true}
			orch := newOrchestrator(testutil.NewConfigBuilder().Build())

			runURL, err := orch.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(runURL).NotTo(BeEmpty())
			Expect(runURL).To(HavePrefix(plane.Server.URL))

			state := orch.State()
			By("parsing the remote")
			Expect(state.Repository.Provider).To(Equal(domain.ProviderGitHub))
			Expect(state.Repository.RepositoryID).To(Equal("acme/widget"))

			By("creating a ready, authorized GitHub connection")
			Expect(state.SourceConnection).NotTo(BeNil())
			Expect(state.SourceConnection.Kind).To(Equal(domain.ConnectionSourceControl))
			Expect(state.SourceConnection.State).To(Equal(domain.ConnectionReady))
			Expect(state.SourceConnection.AuthorizedForAllPipelines).To(BeTrue())
			created := plane.CallsTo(http.MethodPost, "/_apis/serviceendpoint/endpoints")
			Expect(created).To(HaveLen(2))
			Expect(created[0].JSON()["type"]).To(Equal("github"))
			Expect(created[1].JSON()["type"]).To(Equal("azurerm"))
			Expect(plane.CallsContaining(http.MethodPatch, "/pipelinePermissions/endpoint/"+state.SourceConnection.ID)).To(HaveLen(1))

			By("creating a definition that references the connection")
			defs := plane.CallsTo(http.MethodPost, "/_apis/build/definitions")
			Expect(defs).To(HaveLen(1))
			repo := defs[0].JSON()["repository"].(map[string]any)
			props := repo["properties"].(map[string]any)
			Expect(props["connectedServiceId"]).To(Equal(state.SourceConnection.ID))
			Expect(props["apiUrl"]).To(HaveSuffix("/repos/acme/widget"))
			Expect(plane.CallsTo(http.MethodPost, "/_apis/build/builds")).To(HaveLen(1))

			Expect(state.Run.WebURL).To(Equal(runURL))
			Expect(observer.EventsOfType(provisioning.EventPhaseFailed)).To(BeEmpty())
		})

		It("creates the service principal when none is configured", func() {
			plane.ServicePrincipalFailures = 1
			orch := newOrchestrator(
				testutil.NewConfigBuilder().WithCreatedServicePrincipal().Build(),
				WithIdentity(plane.AzureClient()),
			)

			_, err := orch.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(orch.State().ServicePrincipal).NotTo(BeNil())
			Expect(plane.CallsTo(http.MethodPost, "/servicePrincipals")).To(HaveLen(2))

			cloud := plane.CallsTo(http.MethodPost, "/_apis/serviceendpoint/endpoints")[1].JSON()
			auth := cloud["authorization"].(map[string]any)["parameters"].(map[string]any)
			Expect(auth["serviceprincipalid"]).To(Equal(orch.State().ServicePrincipal.ClientID))
		})

		It("uses the aggregated create-and-run call when configured", func() {
			orch := newOrchestrator(testutil.NewConfigBuilder().WithStrategy(config.StrategyAggregated).Build())

			runURL, err := orch.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(runURL).To(ContainSubstring("buildId=107"))
			Expect(plane.CallsTo(http.MethodPost, "/_apis/Contribution/HierarchyQuery")).To(HaveLen(1))
			Expect(plane.CallsContaining(http.MethodPost, "/_apis/build/")).To(BeEmpty())
		})
	})

	Context("scenario B: an invalid organization name", func() {
		DescribeTable("is rejected before any network call",
			func(cfg *config.Config) {
				_, err := newOrchestrator(cfg).Run(ctx)

				Expect(err).To(HaveOccurred())
				Expect(errors.Is(err, domain.ErrValidation)).To(BeTrue())
				var step *domain.StepError
				Expect(errors.As(err, &step)).To(BeTrue())
				Expect(step.Step).To(Equal("organization"))
				Expect(plane.Calls()).To(BeEmpty())
			},
			Entry("existing organization", testutil.NewConfigBuilder().WithOrganization("-bad").Build()),
			Entry("new organization", testutil.NewConfigBuilder().WithNewOrganization("-bad", "").Build()),
		)
	})

	Context("scenario C: the connection cannot be authorized", func() {
		It("fails with AuthorizationFailed and stops calling the control plane", func() {
			plane.DenyAuthorization = true
			orch := newOrchestrator(testutil.NewConfigBuilder().Build())

			runURL, err := orch.Run(ctx)
			Expect(runURL).To(BeEmpty())
			Expect(errors.Is(err, domain.ErrAuthorizationFailed)).To(BeTrue())
			var authErr *domain.AuthorizationFailedError
			Expect(errors.As(err, &authErr)).To(BeTrue())
			Expect(authErr.ConnectionID).NotTo(BeEmpty())
			Expect(orch.State().SourceConnection).To(BeNil())

			calls := plane.Calls()
			last := calls[len(calls)-1]
			Expect(last.Method).To(Equal(http.MethodPatch))
			Expect(strings.HasSuffix(last.Path, "/pipelinePermissions/endpoint/"+authErr.ConnectionID)).To(BeTrue())
			Expect(plane.CallsTo(http.MethodPost, "/_apis/serviceendpoint/endpoints")).To(HaveLen(1))
			Expect(plane.CallsContaining(http.MethodPost, "/_apis/build/")).To(BeEmpty())
		})
	})

	Context("cancellation", func() {
		It("stops polling when the caller cancels", func() {
			plane.GitHubReadiness = []bool{false}
			orch := newOrchestrator(testutil.NewConfigBuilder().Build(), WithObserver(cancellingObserver{
				RecordingObserver: observer,
				cancel:            cancel,
			}))

			_, err := orch.Run(ctx)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(plane.CallsContaining(http.MethodGet, "/_apis/serviceendpoint/endpoints/")).To(HaveLen(1))
		})
	})
})

// cancellingObserver cancels the run on the first readiness wait.
type cancellingObserver struct {
	*testutil.RecordingObserver
	cancel context.CancelFunc
}

func (o cancellingObserver) Event(e provisioning.Event) {
	o.RecordingObserver.Event(e)
	if e.Type == provisioning.EventResourceWaiting {
		o.cancel()
	}
}

func (o cancellingObserver) WithFields(fields map[string]string) provisioning.Observer {
	child := o.RecordingObserver.WithFields(fields).(*testutil.RecordingObserver)
	return cancellingObserver{RecordingObserver: child, cancel: o.cancel}
}
