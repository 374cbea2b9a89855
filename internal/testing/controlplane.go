package testing

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"github.com/imamik/pipelinekit/internal/config"
	"github.com/imamik/pipelinekit/internal/platform/azure"
	"github.com/imamik/pipelinekit/internal/platform/devops"
	"github.com/imamik/pipelinekit/internal/platform/rest"
)

// Call is one request received by the fake control plane.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// JSON decodes the request body into a generic map.
func (c Call) JSON() map[string]any {
	var out map[string]any
	_ = json.Unmarshal(c.Body, &out)
	return out
}

// FakeControlPlane serves the control plane, graph and management APIs from
// one httptest server. Fields script its behavior and may be set before the
// first request.
type FakeControlPlane struct {
	Server *httptest.Server

	// UserID is the authenticated user; empty makes connection data fail
	// until a profile is created.
	UserID string
	// Organizations lists the organizations the user belongs to.
	Organizations []string
	// TakenNames are organization names the availability check refuses.
	TakenNames []string
	// Projects maps existing project names to ids.
	Projects map[string]string
	// Repositories maps hosted repository names to ids.
	Repositories map[string]string
	// ExistingEndpoints are returned by endpoint listings.
	ExistingEndpoints []devops.ServiceEndpoint
	// GitHubReadiness scripts isReady for successive polls of a GitHub
	// connection; the last value repeats. Empty means ready.
	GitHubReadiness []bool
	// CloudStates scripts operationStatus.state for successive polls of a
	// cloud connection; the last value repeats. Empty means "Ready".
	CloudStates []string
	// DenyAuthorization answers pipeline authorization with authorized=false.
	DenyAuthorization bool
	// PendingOperations is how many polls an operation stays "inProgress".
	PendingOperations int
	// ServicePrincipalFailures is how many service principal creations fail
	// with 400 before one succeeds.
	ServicePrincipalFailures int

	mu        sync.Mutex
	calls     []Call
	profile   bool
	nextID    int
	endpoints map[string]*fakeEndpoint
	opPolls   map[string]int
	spCalls   int
}

type fakeEndpoint struct {
	devops.ServiceEndpoint
	polls int
}

// TB is the part of testing.TB the fake needs; GinkgoT() satisfies it too.
type TB interface {
	Helper()
	Cleanup(func())
}

// NewFakeControlPlane starts a fake and closes it when the test ends.
func NewFakeControlPlane(t TB) *FakeControlPlane {
	t.Helper()
	f := &FakeControlPlane{
		UserID:        "user-1",
		Organizations: []string{TestOrganization},
		Projects:      map[string]string{},
		Repositories:  map[string]string{},
		endpoints:     map[string]*fakeEndpoint{},
		opPolls:       map[string]int{},
	}
	f.Server = httptest.NewServer(f.routes())
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeControlPlane) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /accounts/_apis/connectiondata", f.connectionData)
	mux.HandleFunc("POST /accounts/_apis/_AzureProfile/CreateProfile", f.createProfile)
	mux.HandleFunc("GET /accounts/_apis/accounts", f.listAccounts)
	mux.HandleFunc("GET /acquisition/_apis/HostAcquisition/NameAvailability/{name}", f.nameAvailability)
	mux.HandleFunc("POST /acquisition/_apis/HostAcquisition/collections", f.createCollection)
	mux.HandleFunc("GET /operations/{id}", f.getOperation)

	mux.HandleFunc("GET /{org}/_apis/projects", f.listProjects)
	mux.HandleFunc("GET /{org}/_apis/projects/{project}", f.getProject)
	mux.HandleFunc("POST /{org}/_apis/projects", f.createProject)
	mux.HandleFunc("GET /{org}/{project}/_apis/git/repositories/{repo}", f.getRepository)

	mux.HandleFunc("POST /{org}/{project}/_apis/serviceendpoint/endpoints", f.createEndpoint)
	mux.HandleFunc("GET /{org}/{project}/_apis/serviceendpoint/endpoints", f.listEndpoints)
	mux.HandleFunc("GET /{org}/{project}/_apis/serviceendpoint/endpoints/{id}", f.getEndpoint)
	mux.HandleFunc("PATCH /{org}/{project}/_apis/pipelines/pipelinePermissions/endpoint/{id}", f.authorize)

	mux.HandleFunc("POST /{org}/{project}/_apis/build/definitions", f.createDefinition)
	mux.HandleFunc("POST /{org}/{project}/_apis/build/builds", f.queueBuild)
	mux.HandleFunc("POST /{org}/_apis/Contribution/HierarchyQuery", f.createAndRun)

	mux.HandleFunc("POST /graph/{tenant}/applications", f.createApplication)
	mux.HandleFunc("POST /graph/{tenant}/servicePrincipals", f.createServicePrincipal)
	mux.HandleFunc("PUT /management/{scope...}", f.assignRole)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.calls = append(f.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Body: body})
		f.mu.Unlock()
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		mux.ServeHTTP(w, r)
	})
}

// Calls returns every request received so far.
func (f *FakeControlPlane) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the requests with the given method whose path ends with
// suffix.
func (f *FakeControlPlane) CallsTo(method, suffix string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method && strings.HasSuffix(c.Path, suffix) {
			out = append(out, c)
		}
	}
	return out
}

// CallsContaining returns the requests with the given method whose path
// contains part.
func (f *FakeControlPlane) CallsContaining(method, part string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method && strings.Contains(c.Path, part) {
			out = append(out, c)
		}
	}
	return out
}

// Endpoints returns the control plane service roots of the fake.
func (f *FakeControlPlane) Endpoints() devops.Endpoints {
	return devops.Endpoints{
		Accounts:             f.Server.URL + "/accounts",
		Acquisition:          f.Server.URL + "/acquisition",
		OrganizationTemplate: f.Server.URL + "/{organization}",
	}
}

// OrganizationURL is the base URL the fake serves an organization under.
func (f *FakeControlPlane) OrganizationURL(name string) string {
	return f.Server.URL + "/" + name
}

// ApplyEndpoints points every endpoint of cfg at the fake.
func (f *FakeControlPlane) ApplyEndpoints(cfg *config.Config) {
	ep := f.Endpoints()
	cfg.Endpoints.Accounts = ep.Accounts
	cfg.Endpoints.Acquisition = ep.Acquisition
	cfg.Endpoints.OrganizationTemplate = ep.OrganizationTemplate
	cfg.Endpoints.Graph = f.Server.URL + "/graph"
	cfg.Endpoints.Management = f.Server.URL + "/management"
}

// RESTClient returns a request layer authenticated with a static token.
func (f *FakeControlPlane) RESTClient(opts ...rest.Option) *rest.Client {
	opts = append([]rest.Option{rest.WithHTTPClient(f.Server.Client())}, opts...)
	return rest.NewClient(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}), opts...)
}

// DevOpsClient returns a control plane client talking to the fake.
func (f *FakeControlPlane) DevOpsClient() *devops.Client {
	return devops.NewClient(f.RESTClient(), f.Endpoints())
}

// AzureClient returns a cloud identity client talking to the fake.
func (f *FakeControlPlane) AzureClient() *azure.Client {
	rc := f.RESTClient()
	return azure.NewClient(rc, rc,
		azure.WithGraphURL(f.Server.URL+"/graph"),
		azure.WithManagementURL(f.Server.URL+"/management"),
	)
}

func (f *FakeControlPlane) id(prefix string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (f *FakeControlPlane) connectionData(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	id, profile := f.UserID, f.profile
	f.mu.Unlock()
	if id == "" && !profile {
		writeError(w, http.StatusUnauthorized, "VS800075: The user has no profile")
		return
	}
	if id == "" {
		id = "user-profile"
	}
	writeJSON(w, http.StatusOK, devops.ConnectionData{AuthenticatedUser: devops.Identity{ID: id}})
}

func (f *FakeControlPlane) createProfile(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	f.profile = true
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (f *FakeControlPlane) listAccounts(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	names := append([]string(nil), f.Organizations...)
	f.mu.Unlock()

	accounts := make([]map[string]any, 0, len(names))
	for i, name := range names {
		accounts = append(accounts, map[string]any{
			"accountId":   fmt.Sprintf("org-%d", i+1),
			"accountName": name,
			"properties": map[string]any{
				devops.ServiceURLProperty: map[string]string{"$type": "System.String", "$value": f.OrganizationURL(name) + "/"},
			},
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(accounts), "value": accounts})
}

func (f *FakeControlPlane) nameAvailability(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	available := true
	for _, taken := range append(append([]string(nil), f.TakenNames...), f.Organizations...) {
		if strings.EqualFold(taken, name) {
			available = false
		}
	}
	res := devops.NameAvailability{Name: name, IsAvailable: available}
	if !available {
		res.UnavailabilityReason = "The name " + name + " is already in use."
	}
	writeJSON(w, http.StatusOK, res)
}

func (f *FakeControlPlane) createCollection(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("collectionName")
	opID := f.id("op")

	f.mu.Lock()
	f.Organizations = append(f.Organizations, name)
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, devops.Collection{
		ID:   f.id("collection"),
		Name: name,
		Operation: &devops.OperationReference{
			ID:     opID,
			Status: "queued",
			URL:    f.Server.URL + "/operations/" + opID,
		},
	})
}

func (f *FakeControlPlane) getOperation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	f.mu.Lock()
	f.opPolls[id]++
	polls := f.opPolls[id]
	f.mu.Unlock()

	status := "succeeded"
	if polls <= f.PendingOperations {
		status = "inProgress"
	}
	writeJSON(w, http.StatusOK, devops.Operation{ID: id, Status: status, URL: f.Server.URL + r.URL.Path})
}

func (f *FakeControlPlane) getProject(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("project")
	f.mu.Lock()
	id, ok := f.Projects[name]
	f.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "TF200016: The following project does not exist: "+name+".")
		return
	}
	writeJSON(w, http.StatusOK, devops.Project{ID: id, Name: name, State: "wellFormed"})
}

func (f *FakeControlPlane) listProjects(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	names := make([]string, 0, len(f.Projects))
	for name := range f.Projects {
		names = append(names, name)
	}
	projects := make([]devops.Project, 0, len(names))
	sort.Strings(names)
	for _, name := range names {
		projects = append(projects, devops.Project{ID: f.Projects[name], Name: name, State: "wellFormed"})
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"count": len(projects), "value": projects})
}

func (f *FakeControlPlane) createProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "project name is required")
		return
	}
	id := f.id("project")
	opID := f.id("op")

	f.mu.Lock()
	f.Projects[req.Name] = id
	f.mu.Unlock()

	writeJSON(w, http.StatusAccepted, devops.OperationReference{
		ID:     opID,
		Status: "queued",
		URL:    f.Server.URL + "/operations/" + opID,
	})
}

func (f *FakeControlPlane) getRepository(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("repo")
	project := r.PathValue("project")
	f.mu.Lock()
	id, ok := f.Repositories[name]
	projectID := f.Projects[project]
	f.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "TF401019: The Git repository with name or identifier "+name+" does not exist.")
		return
	}
	writeJSON(w, http.StatusOK, devops.Repository{
		ID:            id,
		Name:          name,
		DefaultBranch: "refs/heads/main",
		Project:       devops.Project{ID: projectID, Name: project},
	})
}

func (f *FakeControlPlane) createEndpoint(w http.ResponseWriter, r *http.Request) {
	var ep devops.ServiceEndpoint
	if err := decode(r, &ep); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ep.ID = f.id("endpoint")
	ep.IsReady = false
	if ep.Type == "azurerm" {
		ep.OperationStatus = &devops.EndpointOperationStatus{State: "InProgress"}
	}
	// Credentials are write-only.
	ep.Authorization.Parameters = nil

	f.mu.Lock()
	f.endpoints[ep.ID] = &fakeEndpoint{ServiceEndpoint: ep}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, ep)
}

func (f *FakeControlPlane) listEndpoints(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	out := []devops.ServiceEndpoint{}
	for _, ep := range f.ExistingEndpoints {
		if typ == "" || ep.Type == typ {
			out = append(out, ep)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "value": out})
}

func (f *FakeControlPlane) getEndpoint(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	f.mu.Lock()
	defer f.mu.Unlock()

	ep, ok := f.endpoints[id]
	if !ok {
		for _, existing := range f.ExistingEndpoints {
			if existing.ID == id {
				writeJSON(w, http.StatusOK, existing)
				return
			}
		}
		writeError(w, http.StatusNotFound, "endpoint "+id+" not found")
		return
	}

	ep.polls++
	out := ep.ServiceEndpoint
	switch out.Type {
	case "github":
		out.IsReady = true
		if n := len(f.GitHubReadiness); n > 0 {
			out.IsReady = f.GitHubReadiness[min(ep.polls, n)-1]
		}
	case "azurerm":
		state := "Ready"
		if n := len(f.CloudStates); n > 0 {
			state = f.CloudStates[min(ep.polls, n)-1]
		}
		out.OperationStatus = &devops.EndpointOperationStatus{State: state}
		if strings.EqualFold(state, "failed") {
			out.OperationStatus.StatusMessage = "Failed to obtain the Json Web Token (JWT) using service principal client ID."
		}
		out.IsReady = strings.EqualFold(state, "ready")
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeControlPlane) authorize(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	writeJSON(w, http.StatusOK, devops.PipelinePermission{
		AllPipelines: &devops.PipelineAuthorization{Authorized: !f.DenyAuthorization},
		Resource:     devops.PermissionResource{ID: id, Type: "endpoint"},
	})
}

func (f *FakeControlPlane) createDefinition(w http.ResponseWriter, r *http.Request) {
	var def devops.BuildDefinition
	if err := decode(r, &def); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.mu.Lock()
	f.nextID++
	def.ID = f.nextID
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, def)
}

func (f *FakeControlPlane) queueBuild(w http.ResponseWriter, r *http.Request) {
	var req devops.QueueBuildRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	buildID := 100 + req.Definition.ID
	writeJSON(w, http.StatusOK, devops.Build{
		ID:          buildID,
		BuildNumber: "20260101.1",
		Status:      "notStarted",
		Links: devops.BuildLinks{Web: devops.Link{
			Href: fmt.Sprintf("%s/%s/%s/_build/results?buildId=%d", f.Server.URL, r.PathValue("org"), r.PathValue("project"), buildID),
		}},
	})
}

func (f *FakeControlPlane) createAndRun(w http.ResponseWriter, r *http.Request) {
	var query struct {
		DataProviderContext struct {
			Properties devops.CreateAndRunContext `json:"properties"`
		} `json:"dataProviderContext"`
	}
	if err := decode(r, &query); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	project := query.DataProviderContext.Properties.SourcePage.RouteValues["project"]
	writeJSON(w, http.StatusOK, map[string]any{
		"dataProviders": map[string]any{
			devops.CreateAndRunContributionID: devops.CreateAndRunResult{
				PipelineID:          7,
				PipelineBuildWebURL: fmt.Sprintf("%s/%s/%s/_build/results?buildId=107", f.Server.URL, r.PathValue("org"), project),
			},
		},
	})
}

func (f *FakeControlPlane) createApplication(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, azure.Application{AppID: f.id("app"), ObjectID: f.id("app-object")})
}

func (f *FakeControlPlane) createServicePrincipal(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	_ = decode(r, &req)

	f.mu.Lock()
	f.spCalls++
	fail := f.spCalls <= f.ServicePrincipalFailures
	f.mu.Unlock()
	if fail {
		writeError(w, http.StatusBadRequest, "When using this permission, the backing application of the service principal being created must in the local tenant")
		return
	}
	writeJSON(w, http.StatusCreated, azure.ServicePrincipal{ObjectID: f.id("sp-object"), AppID: req["appId"]})
}

func (f *FakeControlPlane) assignRole(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, azure.RoleAssignment{ID: "/" + r.PathValue("scope"), Name: f.id("assignment")})
}
